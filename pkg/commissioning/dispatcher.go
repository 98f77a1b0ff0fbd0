package commissioning

import "github.com/pion/logging"

// Dispatcher resolves joiner finalize messages against a device registry.
//
// This is the security decision point of the commissioner: an identity
// that was never added through the registry is rejected without invoking
// any callback; a known identity is delegated to exactly its own entry's
// callback. The message buffer is opaque here and handed through
// unmodified.
type Dispatcher struct {
	registry *Registry
	log      logging.LeveledLogger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, log logging.LeveledLogger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

// HandleFinalization decides the fate of a joiner that reached
// finalization. Unknown identities are silently rejected (default deny).
func (d *Dispatcher) HandleFinalization(iface InterfaceID, eui64 EUI64, message []byte) Decision {
	dev := d.registry.Lookup(eui64)
	if dev == nil {
		if d.log != nil {
			d.log.Debugf("iface %d: rejecting unknown joiner %s", iface, eui64)
		}
		return DecisionReject
	}
	if dev.Finalize == nil {
		// Pre-approved with no veto callback registered.
		return DecisionAccept
	}
	decision := dev.Finalize(iface, eui64, message)
	if d.log != nil {
		d.log.Infof("iface %d: joiner %s finalization %s", iface, eui64, decision)
	}
	return decision
}
