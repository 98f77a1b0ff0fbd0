// Package meshcop implements the MeshCoP (Mesh Commissioning Protocol)
// data formats used by the commissioner: the TLV wire encoding, the typed
// joiner finalize message, the steering data membership filter, and the
// PSKc/PSKd credential helpers.
//
// The commissioner core treats protocol buffers as opaque; this package is
// the collaborating codec that finalization callbacks and the transport
// framing use to interpret them.
//
// Key concepts:
//   - TLV: one type octet, one length octet (0xFF escapes to a 16-bit
//     big-endian extended length), then the value.
//   - Joiner ID: either the factory EUI-64 itself, or its short form (the
//     first 8 bytes of SHA-256 over the EUI-64) when the device uses the
//     derived identifier.
//   - Steering data: a bloom filter over joiner IDs that lets a joiner
//     check pre-approval without the commissioner revealing the full
//     device list.
package meshcop
