package ai

import "errors"

var (
	// ErrCapabilityUnavailable is returned when a capability is disabled or unreachable.
	ErrCapabilityUnavailable = errors.New("ai capability unavailable")

	// ErrMalformedOutput is returned when model output cannot be parsed.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrUnknownProviderKind is returned for a provider kind outside the closed set.
	ErrUnknownProviderKind = errors.New("unknown AI provider kind")
)
