package commissioning

// State is the commissioning outcome reported by the network authority
// after a petition or keep-alive request.
type State int

const (
	// StateAccept indicates the petition or keep-alive was granted.
	StateAccept State = iota

	// StatePending indicates the authority has not decided yet; the caller
	// is expected to retry or await a further report.
	StatePending

	// StateReject indicates the authority refused the request.
	StateReject

	// StateNoNetwork indicates no network authority was reachable.
	StateNoNetwork
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateAccept:
		return "Accept"
	case StatePending:
		return "Pending"
	case StateReject:
		return "Reject"
	case StateNoNetwork:
		return "NoNetwork"
	default:
		return "Unknown"
	}
}

// SessionState is the per-interface petition session state machine.
type SessionState int

const (
	// SessionUnregistered is the state before Register (and after Unregister).
	SessionUnregistered SessionState = iota

	// SessionRegistered indicates the interface is registered but no
	// petition has been started.
	SessionRegistered

	// SessionPetitionPending indicates a petition request is outstanding.
	SessionPetitionPending

	// SessionActive indicates the authority granted the petition; the
	// commissioner holds commissioning rights and owes keep-alives.
	SessionActive

	// SessionRejected indicates the authority refused the petition or a
	// keep-alive; the session is over until a new petition is started.
	SessionRejected
)

// String returns a human-readable representation of the session state.
func (s SessionState) String() string {
	switch s {
	case SessionUnregistered:
		return "Unregistered"
	case SessionRegistered:
		return "Registered"
	case SessionPetitionPending:
		return "PetitionPending"
	case SessionActive:
		return "Active"
	case SessionRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Decision is the outcome of a joiner finalization.
type Decision int

const (
	// DecisionAccept admits the joiner.
	DecisionAccept Decision = 0

	// DecisionReject refuses the joiner.
	DecisionReject Decision = 1
)

// String returns a human-readable representation of the decision.
func (d Decision) String() string {
	if d == DecisionAccept {
		return "Accept"
	}
	return "Reject"
}
