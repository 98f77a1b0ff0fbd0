// Package commissioning implements the commissioner-side control logic for
// admitting joiner devices into a Thread-style mesh.
//
// The Manager owns one Session and one device Registry per network
// interface. An operator registers an interface, petitions the network
// authority for commissioning rights, keeps the grant alive, and populates
// the registry with the devices expected to join. Incoming joiner finalize
// messages are resolved against the registry: unknown identities are always
// rejected, known identities are delegated to their registered callback.
//
// Concurrency: the package is designed for a single-threaded,
// run-to-completion host. Public operations and transport completions must
// be invoked from one logical thread of control per process; callers that
// dispatch from multiple goroutines must serialize externally. No operation
// blocks; anything that crosses the network completes later through a
// status callback.
//
// Key concepts:
//   - Petition: request to the network authority (leader) for the right to
//     commission. Granted petitions must be refreshed with keep-alive
//     messages every KeepAliveInterval.
//   - EUI64/PSKd: the identity and pre-shared credential of a pre-approved
//     joiner device.
//   - Finalization: the joiner's last commissioning message; the accept or
//     reject decision point.
package commissioning
