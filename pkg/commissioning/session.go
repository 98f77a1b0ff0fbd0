package commissioning

import (
	"errors"
	"time"

	"github.com/pion/logging"
)

// Session is the petition state machine of one registered interface.
//
// Sessions are created by Manager.Register and torn down by
// Manager.Unregister. All methods must be called from the host's single
// thread of control; transport completions are delivered on that same
// thread and are suppressed once the session generation moves on.
type Session struct {
	iface     InterfaceID
	state     SessionState
	transport Transport
	registry  *Registry
	log       logging.LeveledLogger
	now       func() time.Time

	commissionerID string
	statusCB       StatusCallback

	// generation stamps outstanding transport completions; Unregister
	// bumps it so late completions become no-ops.
	generation uint64

	// keepAliveDeadline is the authority-side session expiry, armed while
	// the session is Active. The sleep gate reads it through SleepBudget;
	// only session transitions write it.
	keepAliveDeadline time.Time
	deadlineArmed     bool
}

func newSession(iface InterfaceID, tr Transport, log logging.LeveledLogger, now func() time.Time) *Session {
	return &Session{
		iface:     iface,
		state:     SessionRegistered,
		transport: tr,
		registry:  NewRegistry(),
		log:       log,
		now:       now,
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.state
}

// CommissionerID returns the operator label supplied to PetitionStart.
func (s *Session) CommissionerID() string {
	return s.commissionerID
}

// Registry returns the interface's joinable device registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// PetitionStart sends a commissioning petition to the network authority.
// The session moves to PetitionPending; the authority's answer arrives
// later through cb. When no authority is reachable the session stays
// Registered, ErrNoNetwork is returned, and NoNetwork is reported through
// cb so callers relying on asynchronous notification see the outcome too.
func (s *Session) PetitionStart(commissionerID string, cb StatusCallback) error {
	switch s.state {
	case SessionPetitionPending, SessionActive:
		return ErrPetitionInProgress
	}
	s.commissionerID = commissionerID
	s.statusCB = cb

	gen := s.generation
	err := s.transport.SendPetition(s.iface, commissionerID, func(st State) {
		s.completePetition(gen, st)
	})
	if errors.Is(err, ErrNoNetwork) {
		if s.log != nil {
			s.log.Warnf("iface %d: petition with no network attached", s.iface)
		}
		s.state = SessionRegistered
		s.notify(StateNoNetwork)
		return ErrNoNetwork
	}
	if err != nil {
		return err
	}

	s.state = SessionPetitionPending
	if s.log != nil {
		s.log.Infof("iface %d: petition sent as %q", s.iface, commissionerID)
	}
	return nil
}

// PetitionKeepAlive refreshes an outstanding petition. The reported state
// tells the authority whether the commissioner wants to keep (Accept) or
// end (Reject) the grant. Only meaningful while PetitionPending or Active.
func (s *Session) PetitionKeepAlive(reported State) error {
	if s.state != SessionPetitionPending && s.state != SessionActive {
		return ErrNoPetition
	}
	gen := s.generation
	err := s.transport.SendKeepAlive(s.iface, reported, func(st State) {
		s.completeKeepAlive(gen, st)
	})
	if err != nil {
		if s.log != nil {
			s.log.Warnf("iface %d: keep-alive send failed: %v", s.iface, err)
		}
		return err
	}
	return nil
}

// completePetition applies the authority's petition answer.
func (s *Session) completePetition(gen uint64, st State) {
	if gen != s.generation || s.state != SessionPetitionPending {
		if s.log != nil {
			s.log.Debugf("iface %d: dropping stale petition response %s", s.iface, st)
		}
		return
	}
	switch st {
	case StateAccept:
		s.state = SessionActive
		s.armDeadline()
	case StateReject:
		s.state = SessionRejected
		s.clearDeadline()
	case StatePending:
		// Stay PetitionPending; the caller retries or awaits.
	case StateNoNetwork:
		s.state = SessionRegistered
		s.clearDeadline()
	}
	if s.log != nil {
		s.log.Infof("iface %d: petition %s, session %s", s.iface, st, s.state)
	}
	s.notify(st)
}

// completeKeepAlive applies the authority's keep-alive answer.
func (s *Session) completeKeepAlive(gen uint64, st State) {
	if gen != s.generation || (s.state != SessionActive && s.state != SessionPetitionPending) {
		if s.log != nil {
			s.log.Debugf("iface %d: dropping stale keep-alive response %s", s.iface, st)
		}
		return
	}
	switch st {
	case StateAccept:
		s.state = SessionActive
		s.armDeadline()
	case StateReject:
		s.state = SessionRejected
		s.clearDeadline()
	case StatePending:
		// No change.
	case StateNoNetwork:
		s.state = SessionRegistered
		s.clearDeadline()
	}
	s.notify(st)
}

// close tears the session down: outstanding completions are suppressed,
// deadlines cleared and the registry emptied.
func (s *Session) close() {
	s.generation++
	s.state = SessionUnregistered
	s.clearDeadline()
	s.registry.Clear()
	s.statusCB = nil
}

func (s *Session) notify(st State) {
	if s.statusCB != nil {
		s.statusCB(s.iface, st)
	}
}

func (s *Session) armDeadline() {
	s.keepAliveDeadline = s.now().Add(SessionTimeout)
	s.deadlineArmed = true
}

func (s *Session) clearDeadline() {
	s.deadlineArmed = false
	s.keepAliveDeadline = time.Time{}
}

// sleepBudget returns how long the stack may sleep before this session
// misses an obligation. A pending petition blocks sleep entirely, as does
// an active session within one keep-alive interval of its expiry. The
// second return is false when the session holds no obligation at all.
func (s *Session) sleepBudget() (time.Duration, bool) {
	switch s.state {
	case SessionPetitionPending:
		return 0, true
	case SessionActive:
		if !s.deadlineArmed {
			return 0, false
		}
		remaining := s.keepAliveDeadline.Sub(s.now())
		if remaining <= KeepAliveInterval {
			return 0, true
		}
		return remaining, true
	default:
		return 0, false
	}
}

// elapseTime accounts for d of stack-suspended time by pulling the armed
// deadline closer. The host clock is assumed frozen during sleep.
func (s *Session) elapseTime(d time.Duration) {
	if s.deadlineArmed {
		s.keepAliveDeadline = s.keepAliveDeadline.Add(-d)
	}
}
