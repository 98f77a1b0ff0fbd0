package commissioning

import (
	"encoding/hex"
	"time"
)

// InterfaceID identifies one network interface / stack instance. It is
// supplied by the host, not owned by this package.
type InterfaceID int8

// EUI64 is the 8-byte globally unique device identifier used as the
// registry key.
type EUI64 [8]byte

// String returns the EUI-64 as lowercase hex.
func (e EUI64) String() string {
	return hex.EncodeToString(e[:])
}

// KeepAliveInterval is the cadence at which an active commissioner must
// refresh its petition.
const KeepAliveInterval = 40 * time.Second

// SessionTimeout is how long a granted petition stays valid without a
// keep-alive before the authority drops the commissioner.
const SessionTimeout = 120 * time.Second

// StatusCallback reports the asynchronous outcome of a petition or
// keep-alive request. A nil callback is allowed; transitions then happen
// unreported.
type StatusCallback func(iface InterfaceID, state State)

// FinalizationCallback decides whether a joiner that reached finalization
// is admitted. The message buffer carries the joiner's MeshCoP TLV set and
// is passed through unmodified; use the meshcop package to parse it.
type FinalizationCallback func(iface InterfaceID, eui64 EUI64, message []byte) Decision

// Transport is the collaborating lower layer that carries petition and
// keep-alive messages to the network authority. Sends are fire-and-forget:
// the authority's answer arrives later through the done completion, on the
// host's single thread of control.
//
// SendPetition and SendKeepAlive return ErrNoNetwork when no authority is
// reachable; the caller must scan for networks and retry.
type Transport interface {
	SendPetition(iface InterfaceID, commissionerID string, done func(State)) error
	SendKeepAlive(iface InterfaceID, state State, done func(State)) error
}
