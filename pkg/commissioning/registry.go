package commissioning

import (
	"github.com/threadmesh/commissioner/pkg/meshcop"
)

// Device is one pre-approved joiner entry in the Registry.
type Device struct {
	// EUI64 is the joiner's factory identifier.
	EUI64 EUI64

	// ShortEUI64 selects the derived (hashed) joiner ID when building the
	// steering data membership filter.
	ShortEUI64 bool

	// PSKd is the joiner's pre-shared credential, 1-32 bytes.
	PSKd []byte

	// Finalize decides the joiner's finalization. A nil callback admits
	// the device: it was pre-approved by Add and no veto is registered.
	Finalize FinalizationCallback
}

// JoinerID returns the identifier this device contributes to the steering
// data filter: the derived short form when ShortEUI64 is set, the raw
// EUI-64 otherwise.
func (d *Device) JoinerID() [8]byte {
	if d.ShortEUI64 {
		return meshcop.JoinerID(d.EUI64)
	}
	return d.EUI64
}

// Registry holds the joinable devices of one interface in insertion order.
//
// The registry is owned by, and dies with, the interface's commissioner
// session. At most one entry exists per EUI-64; re-adding an identity
// replaces the prior entry's credential, flag and callback in place
// (last-write-wins).
type Registry struct {
	devices    []*Device
	byEUI64    map[EUI64]int
	generation uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byEUI64: make(map[EUI64]int)}
}

// Add inserts or replaces the entry for eui64. The PSKd is copied and must
// be 1-32 bytes; replacement swaps the whole entry at once, so no mix of
// old and new fields is ever observable.
func (r *Registry) Add(eui64 EUI64, shortEUI64 bool, pskd []byte, cb FinalizationCallback) error {
	if len(pskd) < meshcop.MinPSKdLength || len(pskd) > meshcop.MaxPSKdLength {
		return ErrInvalidCredentialLength
	}
	dev := &Device{
		EUI64:      eui64,
		ShortEUI64: shortEUI64,
		PSKd:       append([]byte(nil), pskd...),
		Finalize:   cb,
	}
	r.generation++
	if i, ok := r.byEUI64[eui64]; ok {
		r.devices[i] = dev
		return nil
	}
	r.byEUI64[eui64] = len(r.devices)
	r.devices = append(r.devices, dev)
	return nil
}

// Delete removes the entry for eui64. Deleting an absent identity is an
// idempotent no-op.
func (r *Registry) Delete(eui64 EUI64) {
	i, ok := r.byEUI64[eui64]
	if !ok {
		return
	}
	r.generation++
	r.devices = append(r.devices[:i], r.devices[i+1:]...)
	delete(r.byEUI64, eui64)
	for j := i; j < len(r.devices); j++ {
		r.byEUI64[r.devices[j].EUI64] = j
	}
}

// Lookup returns the entry for eui64, or nil if none exists.
func (r *Registry) Lookup(eui64 EUI64) *Device {
	if i, ok := r.byEUI64[eui64]; ok {
		return r.devices[i]
	}
	return nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.devices)
}

// Clear removes all entries.
func (r *Registry) Clear() {
	r.generation++
	r.devices = nil
	r.byEUI64 = make(map[EUI64]int)
}

// Cursor is an opaque resume point for Next. A nil cursor starts from the
// first entry. Cursors are bound to the registry contents at issue time:
// any mutation invalidates all outstanding cursors.
type Cursor struct {
	pos        int
	generation uint64
}

// Next returns the entry after the cursor position, in insertion order,
// together with the cursor to pass on the following call. It returns
// (nil, nil, nil) when the registry is exhausted and ErrCursorInvalidated
// when the registry was mutated since the cursor was issued.
func (r *Registry) Next(c *Cursor) (*Cursor, *Device, error) {
	pos := 0
	if c != nil {
		if c.generation != r.generation {
			return nil, nil, ErrCursorInvalidated
		}
		pos = c.pos + 1
	}
	if pos >= len(r.devices) {
		return nil, nil, nil
	}
	return &Cursor{pos: pos, generation: r.generation}, r.devices[pos], nil
}

// SteeringData builds the membership filter over all registered joiner
// IDs. An empty registry yields an empty (admit-none) filter.
func (r *Registry) SteeringData(length int) (*meshcop.SteeringData, error) {
	sd, err := meshcop.NewSteeringData(length)
	if err != nil {
		return nil, err
	}
	for _, dev := range r.devices {
		sd.Allow(dev.JoinerID())
	}
	return sd, nil
}
