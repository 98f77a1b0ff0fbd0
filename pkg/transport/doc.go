// Package transport provides an in-memory implementation of the
// commissioner's transport collaborator, built on pion's test bridge.
//
// The pipe transport and the scripted Authority form a virtual network:
// petition and keep-alive frames flow from the commissioner endpoint to
// the authority endpoint, the authority answers per its script, and the
// answers surface as commissioning.State completions when the host pumps
// Process. No real network I/O is involved; tests and the demo binary use
// this as their fabric. Production hosts plug their own secured transport
// into commissioning.Transport instead.
package transport
