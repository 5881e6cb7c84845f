package security

import "errors"

var (
	// ErrMalformed is wrapped by every decoding error.
	ErrMalformed = errors.New("malformed security descriptor")
	// ErrNotSupported is returned when the platform or file system cannot
	// produce a security descriptor.
	ErrNotSupported = errors.New("security descriptor query not supported")
	// ErrInvalidSID is returned when a SID string cannot be parsed.
	ErrInvalidSID = errors.New("invalid SID string")
)
