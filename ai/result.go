package ai

import "fmt"

// Status classifies the outcome of a language-model capability call.
type Status int

const (
	// StatusOK means the call succeeded and produced well-formed output.
	StatusOK Status = iota
	// StatusUnavailable means the capability is disabled or could not be reached.
	StatusUnavailable
	// StatusMalformed means the capability answered but the output did not parse.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of a capability call: a parsed value on StatusOK,
// or the cause of failure otherwise.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// Success wraps a well-formed value.
func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

// Unavailable reports a capability that is disabled or unreachable.
func Unavailable[T any](err error) Result[T] {
	if err == nil {
		err = ErrCapabilityUnavailable
	}
	return Result[T]{Status: StatusUnavailable, Err: err}
}

// Malformed reports output that could not be parsed into T.
func Malformed[T any](err error) Result[T] {
	if err == nil {
		err = ErrMalformedOutput
	}
	return Result[T]{Status: StatusMalformed, Err: err}
}

// OK reports whether the result carries a usable value.
func (r Result[T]) OK() bool {
	return r.Status == StatusOK
}
