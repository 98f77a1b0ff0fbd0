package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func newTestScanner(t *testing.T, resolver MDNSResolver) *MDNSScanner {
	t.Helper()
	s, err := NewMDNSScanner(MDNSScannerConfig{
		MDNSResolver: resolver,
		ScanTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewMDNSScanner() error: %v", err)
	}
	return s
}

func TestScanForNetworks(t *testing.T) {
	mock := NewMockMDNSResolver()
	mock.RegisterService(ServiceMeshCoP, &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{
			Instance: "OpenThread Border Router",
			Service:  ServiceMeshCoP,
			Domain:   "local.",
		},
		HostName: "otbr.local.",
		Port:     49191,
		Text:     []string{"nn=ThreadHome", "xp=\x01\x02\x03\x04\x05\x06\x07\x08", "rv=1"},
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.10")},
		AddrIPv6: []net.IP{net.ParseIP("fd00::1")},
	})

	agents, err := newTestScanner(t, mock).ScanForNetworks(context.Background())
	if err != nil {
		t.Fatalf("ScanForNetworks() error: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("found %d agents, want 1", len(agents))
	}

	a := agents[0]
	if a.InstanceName != "OpenThread Border Router" {
		t.Errorf("InstanceName = %q", a.InstanceName)
	}
	if a.HostName != "otbr.local." {
		t.Errorf("HostName = %q", a.HostName)
	}
	if a.Port != 49191 {
		t.Errorf("Port = %d, want 49191", a.Port)
	}
	if a.NetworkName != "ThreadHome" {
		t.Errorf("NetworkName = %q, want ThreadHome", a.NetworkName)
	}
	if want := []byte{1, 2, 3, 4, 5, 6, 7, 8}; string(a.ExtendedPANID) != string(want) {
		t.Errorf("ExtendedPANID = %x, want %x", a.ExtendedPANID, want)
	}
	if a.Text["rv"] != "1" {
		t.Errorf("Text[rv] = %q, want 1", a.Text["rv"])
	}

	// IPv6 sorts first.
	if len(a.IPs) != 2 || !a.IPs[0].Equal(net.ParseIP("fd00::1")) {
		t.Errorf("IPs = %v, want IPv6 first", a.IPs)
	}
}

// slowResolver reproduces the production resolver's timing: Browse
// returns immediately, entries arrive later from its own goroutine, and
// the resolver closes the channel when the context ends.
type slowResolver struct {
	entries []*zeroconf.ServiceEntry
	delay   time.Duration
}

func (r *slowResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	go func() {
		defer close(entries)
		for _, entry := range r.entries {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return
			}
			select {
			case entries <- entry:
			case <-ctx.Done():
				return
			}
		}
		<-ctx.Done()
	}()
	return nil
}

func TestScanForNetworksCollectsLateDeliveries(t *testing.T) {
	resolver := &slowResolver{
		delay: 20 * time.Millisecond,
		entries: []*zeroconf.ServiceEntry{
			{ServiceRecord: zeroconf.ServiceRecord{Instance: "ba1", Service: ServiceMeshCoP}, Text: []string{"nn=A"}},
			{ServiceRecord: zeroconf.ServiceRecord{Instance: "ba2", Service: ServiceMeshCoP}, Text: []string{"nn=B"}},
		},
	}

	agents, err := newTestScanner(t, resolver).ScanForNetworks(context.Background())
	if err != nil {
		t.Fatalf("ScanForNetworks() error: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("found %d agents, want 2; scan must outlive Browse returning", len(agents))
	}
	if agents[0].InstanceName != "ba1" || agents[1].InstanceName != "ba2" {
		t.Errorf("agents = %q, %q; want ba1, ba2", agents[0].InstanceName, agents[1].InstanceName)
	}
}

type failingResolver struct {
	err error
}

func (r *failingResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return r.err
}

func TestScanForNetworksBrowseError(t *testing.T) {
	browseErr := errors.New("no multicast interface")
	_, err := newTestScanner(t, &failingResolver{err: browseErr}).ScanForNetworks(context.Background())
	if !errors.Is(err, browseErr) {
		t.Errorf("ScanForNetworks() error = %v, want %v", err, browseErr)
	}
}

func TestScanForNetworksEmpty(t *testing.T) {
	agents, err := newTestScanner(t, NewMockMDNSResolver()).ScanForNetworks(context.Background())
	if err != nil {
		t.Fatalf("ScanForNetworks() error: %v", err)
	}
	if len(agents) != 0 {
		t.Errorf("found %d agents, want 0", len(agents))
	}
}

func TestScanForNetworksIgnoresMalformedTXT(t *testing.T) {
	mock := NewMockMDNSResolver()
	mock.RegisterService(ServiceMeshCoP, &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "ba", Service: ServiceMeshCoP},
		Text:          []string{"not-a-pair", "nn=Mesh"},
	})

	agents, err := newTestScanner(t, mock).ScanForNetworks(context.Background())
	if err != nil {
		t.Fatalf("ScanForNetworks() error: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("found %d agents, want 1", len(agents))
	}
	if agents[0].NetworkName != "Mesh" {
		t.Errorf("NetworkName = %q, want Mesh", agents[0].NetworkName)
	}
	if _, ok := agents[0].Text["not-a-pair"]; ok {
		t.Error("malformed TXT entry was kept")
	}
}
