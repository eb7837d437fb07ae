package facilitator

import "errors"

// Routing failure kinds.
var (
	// ErrNotInRoster means the gateway returned a string that is not an
	// exact (trimmed) match of any roster id. The offending string is
	// carried in the wrapping error message.
	ErrNotInRoster = errors.New("chosen speaker not in roster")

	// ErrGatewayFailed wraps a gateway error raised during routing.
	ErrGatewayFailed = errors.New("facilitator gateway call failed")

	// ErrEmptyRoster means Decide was called with no eligible speakers.
	ErrEmptyRoster = errors.New("roster is empty")
)
