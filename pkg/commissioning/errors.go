package commissioning

import "errors"

var (
	// ErrUnknownInterface indicates no commissioner exists for the interface.
	ErrUnknownInterface = errors.New("commissioning: unknown interface")

	// ErrNotRegistered indicates the interface has not been registered.
	ErrNotRegistered = errors.New("commissioning: interface not registered")

	// ErrAlreadyRegistered indicates the interface is already registered.
	ErrAlreadyRegistered = errors.New("commissioning: interface already registered")

	// ErrInvalidCredentialLength indicates a PSKd outside the 1-32 byte range.
	ErrInvalidCredentialLength = errors.New("commissioning: credential length must be 1-32 bytes")

	// ErrPetitionInProgress indicates a petition is already pending or active.
	ErrPetitionInProgress = errors.New("commissioning: petition already in progress")

	// ErrNoPetition indicates a keep-alive with no pending or active petition.
	ErrNoPetition = errors.New("commissioning: no petition in progress")

	// ErrNoNetwork indicates no network authority is reachable; the caller
	// must scan for networks and retry.
	ErrNoNetwork = errors.New("commissioning: no network available")

	// ErrCursorInvalidated indicates the registry was mutated while a
	// cursor was outstanding.
	ErrCursorInvalidated = errors.New("commissioning: cursor invalidated by registry mutation")

	// ErrNilTransport indicates the Manager was configured without a transport.
	ErrNilTransport = errors.New("commissioning: nil transport")
)
