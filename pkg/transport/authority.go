package transport

import (
	"net"
	"sync"

	"github.com/pion/logging"

	"github.com/threadmesh/commissioner/pkg/commissioning"
	"github.com/threadmesh/commissioner/pkg/meshcop"
)

// Authority is the scripted network-authority side of a Pipe. It answers
// petition and keep-alive frames with queued states, defaulting to Accept
// once a script runs out.
type Authority struct {
	conn net.Conn
	log  logging.LeveledLogger

	mu              sync.Mutex
	petitionScript  []commissioning.State
	keepAliveScript []commissioning.State
	petitionIDs     []string
	keepAlives      int
	sessionID       uint16
}

func newAuthority(conn net.Conn, loggerFactory logging.LoggerFactory) *Authority {
	a := &Authority{conn: conn}
	if loggerFactory != nil {
		a.log = loggerFactory.NewLogger("authority")
	}
	return a
}

// QueuePetitionResponses scripts the next petition answers, in order.
func (a *Authority) QueuePetitionResponses(states ...commissioning.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.petitionScript = append(a.petitionScript, states...)
}

// QueueKeepAliveResponses scripts the next keep-alive answers, in order.
func (a *Authority) QueueKeepAliveResponses(states ...commissioning.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keepAliveScript = append(a.keepAliveScript, states...)
}

// PetitionRequests returns the commissioner IDs received so far.
func (a *Authority) PetitionRequests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.petitionIDs...)
}

// KeepAlives returns the number of keep-alive frames received so far.
func (a *Authority) KeepAlives() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keepAlives
}

// serve answers frames until the connection closes.
func (a *Authority) serve() {
	buf := make([]byte, 1500)
	for {
		n, err := a.conn.Read(buf)
		if err != nil {
			return
		}
		f, err := decodeFrame(buf[:n])
		if err != nil {
			if a.log != nil {
				a.log.Warnf("dropping frame: %v", err)
			}
			continue
		}
		switch f.cmd {
		case cmdPetitionReq:
			a.handlePetition(f)
		case cmdKeepAliveReq:
			a.handleKeepAlive(f)
		}
	}
}

func (a *Authority) handlePetition(f frame) {
	id, err := meshcop.Find(f.payload, meshcop.TypeCommissionerID)
	if err != nil {
		if a.log != nil {
			a.log.Warnf("iface %d: bad petition: %v", f.iface, err)
		}
		return
	}

	a.mu.Lock()
	a.petitionIDs = append(a.petitionIDs, string(id))
	st := a.popLocked(&a.petitionScript)
	a.sessionID++
	sessionID := a.sessionID
	a.mu.Unlock()

	if a.log != nil {
		a.log.Infof("iface %d: petition from %q -> %s", f.iface, id, st)
	}
	a.conn.Write(encodeResponse(cmdPetitionRsp, f.iface, st, sessionID))
}

func (a *Authority) handleKeepAlive(f frame) {
	a.mu.Lock()
	a.keepAlives++
	st := a.popLocked(&a.keepAliveScript)
	sessionID := a.sessionID
	a.mu.Unlock()

	a.conn.Write(encodeResponse(cmdKeepAliveRsp, f.iface, st, sessionID))
}

// popLocked takes the next scripted state, defaulting to Accept.
func (a *Authority) popLocked(script *[]commissioning.State) commissioning.State {
	if len(*script) == 0 {
		return commissioning.StateAccept
	}
	st := (*script)[0]
	*script = (*script)[1:]
	return st
}
