package llm

import "errors"

var (
	// ErrUnavailable indicates the model server is unreachable.
	ErrUnavailable = errors.New("model server unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the server response could not be decoded.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all attempts failed.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrEmptyReply indicates the model answered with only whitespace.
	ErrEmptyReply = errors.New("llm returned an empty reply")
)
