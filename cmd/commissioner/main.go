// commissioner is a demo driving a full commissioning flow over the
// in-memory pipe transport: petition the (scripted) network authority,
// pre-approve a joiner, process its finalize message, and show the
// deep-sleep gate tracking the session's obligations.
//
// Usage:
//
//	commissioner [options]
//
// Options:
//
//	-id    commissioner ID sent with the petition (default: "demo-commissioner")
//	-eui64 joiner EUI-64 as 16 hex digits (default: 0102030405060708)
//	-pskd  joiner pre-shared credential (default: "J01NME")
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pion/logging"

	"github.com/threadmesh/commissioner/pkg/commissioning"
	"github.com/threadmesh/commissioner/pkg/meshcop"
	"github.com/threadmesh/commissioner/pkg/stack"
	"github.com/threadmesh/commissioner/pkg/transport"
)

const iface = commissioning.InterfaceID(1)

func main() {
	commissionerID := flag.String("id", "demo-commissioner", "commissioner ID")
	euiHex := flag.String("eui64", "0102030405060708", "joiner EUI-64 (16 hex digits)")
	pskd := flag.String("pskd", "J01NME", "joiner PSKd")
	flag.Parse()

	var eui64 commissioning.EUI64
	raw, err := hex.DecodeString(*euiHex)
	if err != nil || len(raw) != len(eui64) {
		log.Fatalf("invalid EUI-64 %q", *euiHex)
	}
	copy(eui64[:], raw)

	loggerFactory := logging.NewDefaultLoggerFactory()
	pipe := transport.NewPipe(loggerFactory)
	defer pipe.Close()

	st, err := stack.New(stack.Config{
		Transport:     pipe.Transport(),
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		log.Fatalf("failed to create stack: %v", err)
	}

	if err := st.Register(iface); err != nil {
		log.Fatalf("register: %v", err)
	}

	if err := st.PetitionStart(iface, *commissionerID, func(_ commissioning.InterfaceID, s commissioning.State) {
		fmt.Printf("petition outcome: %s\n", s)
	}); err != nil {
		log.Fatalf("petition: %v", err)
	}
	if pipe.Transport().WaitProcess(time.Second) == 0 {
		log.Fatal("no petition response from authority")
	}

	if err := st.DeviceAdd(iface, false, eui64, []byte(*pskd), func(_ commissioning.InterfaceID, id commissioning.EUI64, msg []byte) commissioning.Decision {
		fin, err := meshcop.ParseFinalize(msg)
		if err != nil {
			fmt.Printf("joiner %s: unparseable finalize: %v\n", id, err)
			return commissioning.DecisionReject
		}
		fmt.Printf("joiner %s: vendor %q model %q\n", id, fin.VendorName, fin.VendorModel)
		return commissioning.DecisionAccept
	}); err != nil {
		log.Fatalf("device add: %v", err)
	}

	finalize, err := (&meshcop.FinalizeMessage{
		State:       meshcop.StateAccept,
		VendorName:  "Example Vendor",
		VendorModel: "Sensor-1",
	}).Encode()
	if err != nil {
		log.Fatalf("encode finalize: %v", err)
	}

	fmt.Printf("known joiner: %s\n", st.HandleJoinerFinalization(iface, eui64, finalize))
	fmt.Printf("unknown joiner: %s\n", st.HandleJoinerFinalization(iface, commissioning.EUI64{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, finalize))

	fmt.Printf("sleep budget with active session: %v\n", st.CheckSleepPossibility())

	if err := st.Unregister(iface); err != nil {
		log.Fatalf("unregister: %v", err)
	}
	fmt.Printf("sleep budget after unregister: %v\n", st.CheckSleepPossibility())
}
