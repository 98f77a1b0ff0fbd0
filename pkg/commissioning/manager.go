package commissioning

import (
	"time"

	"github.com/pion/logging"
)

// ManagerConfig configures the Manager.
type ManagerConfig struct {
	// Transport carries petition and keep-alive messages to the network
	// authority. Required.
	Transport Transport

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory

	// Clock overrides the time source. Defaults to time.Now.
	Clock func() time.Time
}

// Manager is the process-wide commissioner table: one Session plus one
// device Registry per registered interface. It is an explicit object
// owned by the host's stack context; there is no package-level state.
//
// Manager implements the sleep gate's obligation source contract through
// SleepBudget and ElapseTime.
type Manager struct {
	config   ManagerConfig
	sessions map[InterfaceID]*Session
	log      logging.LeveledLogger
	now      func() time.Time
}

// NewManager creates a Manager with the given configuration.
func NewManager(config ManagerConfig) (*Manager, error) {
	if config.Transport == nil {
		return nil, ErrNilTransport
	}
	m := &Manager{
		config:   config,
		sessions: make(map[InterfaceID]*Session),
		now:      config.Clock,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if config.LoggerFactory != nil {
		m.log = config.LoggerFactory.NewLogger("commissioning")
	}
	return m, nil
}

// Register creates the commissioner session and device registry for an
// interface. Registering an interface twice without an intervening
// Unregister fails with ErrAlreadyRegistered.
func (m *Manager) Register(iface InterfaceID) error {
	if _, ok := m.sessions[iface]; ok {
		return ErrAlreadyRegistered
	}
	m.sessions[iface] = newSession(iface, m.config.Transport, m.log, m.now)
	if m.log != nil {
		m.log.Infof("iface %d: commissioner registered", iface)
	}
	return nil
}

// Unregister tears down the interface's commissioner: the session is
// closed in any state, outstanding completions are suppressed, deadlines
// cleared and the device registry emptied.
func (m *Manager) Unregister(iface InterfaceID) error {
	s, ok := m.sessions[iface]
	if !ok {
		return ErrUnknownInterface
	}
	s.close()
	delete(m.sessions, iface)
	if m.log != nil {
		m.log.Infof("iface %d: commissioner unregistered", iface)
	}
	return nil
}

// Session returns the interface's session, or ErrNotRegistered.
func (m *Manager) Session(iface InterfaceID) (*Session, error) {
	s, ok := m.sessions[iface]
	if !ok {
		return nil, ErrNotRegistered
	}
	return s, nil
}

// PetitionStart starts the commissioning petition for an interface.
// See Session.PetitionStart.
func (m *Manager) PetitionStart(iface InterfaceID, commissionerID string, cb StatusCallback) error {
	s, ok := m.sessions[iface]
	if !ok {
		return ErrNotRegistered
	}
	return s.PetitionStart(commissionerID, cb)
}

// PetitionKeepAlive refreshes the interface's petition.
// See Session.PetitionKeepAlive.
func (m *Manager) PetitionKeepAlive(iface InterfaceID, reported State) error {
	s, ok := m.sessions[iface]
	if !ok {
		return ErrNotRegistered
	}
	return s.PetitionKeepAlive(reported)
}

// DeviceAdd inserts or replaces a joinable device for the interface.
func (m *Manager) DeviceAdd(iface InterfaceID, shortEUI64 bool, eui64 EUI64, pskd []byte, cb FinalizationCallback) error {
	s, ok := m.sessions[iface]
	if !ok {
		return ErrUnknownInterface
	}
	return s.registry.Add(eui64, shortEUI64, pskd, cb)
}

// DeviceDelete removes a joinable device. Deleting an identity that was
// never added is an idempotent no-op.
func (m *Manager) DeviceDelete(iface InterfaceID, eui64 EUI64) error {
	s, ok := m.sessions[iface]
	if !ok {
		return ErrUnknownInterface
	}
	s.registry.Delete(eui64)
	return nil
}

// DeviceNext enumerates the interface's devices in insertion order. Pass
// a nil cursor to start; the returned cursor resumes after the returned
// entry. See Registry.Next for cursor semantics.
func (m *Manager) DeviceNext(c *Cursor, iface InterfaceID) (*Cursor, *Device, error) {
	s, ok := m.sessions[iface]
	if !ok {
		return nil, nil, ErrUnknownInterface
	}
	return s.registry.Next(c)
}

// HandleJoinerFinalization decides a joiner finalize message received on
// the interface. Unknown interfaces and unknown identities reject without
// invoking any callback.
func (m *Manager) HandleJoinerFinalization(iface InterfaceID, eui64 EUI64, message []byte) Decision {
	s, ok := m.sessions[iface]
	if !ok {
		if m.log != nil {
			m.log.Debugf("iface %d: finalization on unknown interface", iface)
		}
		return DecisionReject
	}
	return NewDispatcher(s.registry, m.log).HandleFinalization(iface, eui64, message)
}

// SleepBudget returns the tightest sleep budget across all sessions:
// zero when any session blocks sleep, otherwise the minimum remaining
// deadline. The second return is false when no session holds an
// obligation.
func (m *Manager) SleepBudget() (time.Duration, bool) {
	var min time.Duration
	found := false
	for _, s := range m.sessions {
		b, ok := s.sleepBudget()
		if !ok {
			continue
		}
		if b == 0 {
			return 0, true
		}
		if !found || b < min {
			min = b
			found = true
		}
	}
	return min, found
}

// ElapseTime accounts for d of stack-suspended time on every session's
// armed deadline. Called by the sleep gate during wake resynchronization;
// no other writer touches the deadlines.
func (m *Manager) ElapseTime(d time.Duration) {
	for _, s := range m.sessions {
		s.elapseTime(d)
	}
}
