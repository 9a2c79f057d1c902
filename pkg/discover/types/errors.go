package types

import "errors"

// Sentinel errors for the error kinds described by the core's error
// handling design: resource-exhaustion, configuration-invalid,
// transport-io, message-malformed and teardown.
var (
	// ErrInvalidOption is returned by SetOption when the requested value
	// would violate an option invariant (e.g. checkInterval > nodeTimeout).
	ErrInvalidOption = errors.New("discover: invalid option value")

	// ErrUnknownOption is returned by SetOption/GetOption for a name that
	// isn't part of the option table.
	ErrUnknownOption = errors.New("discover: unknown option")

	// ErrAlreadyStarted is returned by Start when the instance is already
	// running.
	ErrAlreadyStarted = errors.New("discover: instance already started")

	// ErrReleased is returned by SetOption, Send and Start when called
	// after Release. The other operations do not check for release.
	ErrReleased = errors.New("discover: instance released")
)
