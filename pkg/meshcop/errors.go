package meshcop

import "errors"

var (
	// ErrTruncated is returned when a TLV buffer ends mid-element.
	ErrTruncated = errors.New("meshcop: truncated TLV")

	// ErrValueTooLong is returned when a value exceeds the extended length limit.
	ErrValueTooLong = errors.New("meshcop: value too long")

	// ErrInvalidPSKdLength is returned when a PSKd is outside the 1-32 byte range.
	ErrInvalidPSKdLength = errors.New("meshcop: PSKd length must be 1-32 bytes")

	// ErrInvalidState is returned when a State TLV carries an unknown value.
	ErrInvalidState = errors.New("meshcop: invalid state value")

	// ErrInvalidFilterLength is returned for an unusable steering data length.
	ErrInvalidFilterLength = errors.New("meshcop: steering data length must be 1-16 bytes")

	// ErrNoElement is returned when element accessors are used before Next.
	ErrNoElement = errors.New("meshcop: no current element")
)
