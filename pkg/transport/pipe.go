package transport

import (
	"net"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/pion/transport/v3/test"

	"github.com/threadmesh/commissioner/pkg/commissioning"
)

// tickInterval is how often the bridge pump delivers queued packets.
const tickInterval = 1 * time.Millisecond

// respBacklog bounds undelivered authority responses.
const respBacklog = 64

// Pipe wires a commissioner-side transport and a scripted Authority over
// an in-memory packet bridge.
//
// Frames are pumped between the endpoints by a background ticker standing
// in for a radio driver; authority answers queue up
// inside the transport until the host drains them with Process or
// WaitProcess, so completions always fire on the host's own thread of
// control.
type Pipe struct {
	bridge    *test.Bridge
	transport *PipeTransport
	authority *Authority

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewPipe creates a connected transport/authority pair.
func NewPipe(loggerFactory logging.LoggerFactory) *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}
	p.transport = newPipeTransport(p.bridge.GetConn0(), loggerFactory)
	p.authority = newAuthority(p.bridge.GetConn1(), loggerFactory)

	p.wg.Add(3)
	go p.pump()
	go func() {
		defer p.wg.Done()
		p.transport.readLoop()
	}()
	go func() {
		defer p.wg.Done()
		p.authority.serve()
	}()

	return p
}

// Transport returns the commissioner-side transport endpoint.
func (p *Pipe) Transport() *PipeTransport {
	return p.transport
}

// Authority returns the scripted network authority endpoint.
func (p *Pipe) Authority() *Authority {
	return p.authority
}

// pump delivers queued bridge packets until the pipe is closed.
func (p *Pipe) pump() {
	defer p.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.bridge.Tick()
		}
	}
}

// Close shuts down both endpoints and the pump.
func (p *Pipe) Close() error {
	p.once.Do(func() {
		close(p.stopCh)
		p.bridge.GetConn0().Close()
		p.bridge.GetConn1().Close()
	})
	p.wg.Wait()
	return nil
}

type response struct {
	iface commissioning.InterfaceID
	state commissioning.State
}

// PipeTransport is the commissioner side of a Pipe. It implements
// commissioning.Transport.
type PipeTransport struct {
	conn   net.Conn
	respCh chan response
	log    logging.LeveledLogger

	mu        sync.Mutex
	connected bool
	pending   map[commissioning.InterfaceID][]func(commissioning.State)
}

func newPipeTransport(conn net.Conn, loggerFactory logging.LoggerFactory) *PipeTransport {
	t := &PipeTransport{
		conn:      conn,
		respCh:    make(chan response, respBacklog),
		connected: true,
		pending:   make(map[commissioning.InterfaceID][]func(commissioning.State)),
	}
	if loggerFactory != nil {
		t.log = loggerFactory.NewLogger("transport-pipe")
	}
	return t
}

// SetConnected simulates network attachment. While disconnected, sends
// fail with commissioning.ErrNoNetwork.
func (t *PipeTransport) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

// SendPetition implements commissioning.Transport.
func (t *PipeTransport) SendPetition(iface commissioning.InterfaceID, commissionerID string, done func(commissioning.State)) error {
	frame, err := encodePetitionReq(iface, commissionerID)
	if err != nil {
		return err
	}
	return t.send(iface, frame, done)
}

// SendKeepAlive implements commissioning.Transport.
func (t *PipeTransport) SendKeepAlive(iface commissioning.InterfaceID, state commissioning.State, done func(commissioning.State)) error {
	return t.send(iface, encodeKeepAliveReq(iface, state), done)
}

func (t *PipeTransport) send(iface commissioning.InterfaceID, frame []byte, done func(commissioning.State)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return commissioning.ErrNoNetwork
	}
	if _, err := t.conn.Write(frame); err != nil {
		if t.log != nil {
			t.log.Warnf("send failed: %v", err)
		}
		return err
	}
	if done != nil {
		t.pending[iface] = append(t.pending[iface], done)
	}
	return nil
}

// readLoop queues authority responses until the connection closes.
func (t *PipeTransport) readLoop() {
	buf := make([]byte, 1500)
	for {
		n, err := t.conn.Read(buf)
		if err != nil {
			return
		}
		f, err := decodeFrame(buf[:n])
		if err != nil {
			if t.log != nil {
				t.log.Warnf("dropping frame: %v", err)
			}
			continue
		}
		if f.cmd != cmdPetitionRsp && f.cmd != cmdKeepAliveRsp {
			continue
		}
		st, err := responseState(f.payload)
		if err != nil {
			if t.log != nil {
				t.log.Warnf("dropping response: %v", err)
			}
			continue
		}
		t.respCh <- response{iface: f.iface, state: st}
	}
}

// Process delivers all queued responses to their completions, in the
// order the corresponding requests were issued per interface, on the
// caller's goroutine. It returns the number of completions invoked.
func (t *PipeTransport) Process() int {
	count := 0
	for {
		select {
		case r := <-t.respCh:
			t.deliver(r)
			count++
		default:
			return count
		}
	}
}

// WaitProcess blocks until at least one response is delivered or the
// timeout expires, then drains the rest. It returns the number of
// completions invoked.
func (t *PipeTransport) WaitProcess(timeout time.Duration) int {
	select {
	case r := <-t.respCh:
		t.deliver(r)
		return 1 + t.Process()
	case <-time.After(timeout):
		return 0
	}
}

func (t *PipeTransport) deliver(r response) {
	t.mu.Lock()
	queue := t.pending[r.iface]
	var done func(commissioning.State)
	if len(queue) > 0 {
		done = queue[0]
		t.pending[r.iface] = queue[1:]
	}
	t.mu.Unlock()

	if done == nil {
		if t.log != nil {
			t.log.Warnf("iface %d: response with no outstanding request", r.iface)
		}
		return
	}
	done(r.state)
}
