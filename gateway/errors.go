package gateway

import "errors"

// Gateway failure kinds. Implementations wrap these so callers can use
// errors.Is regardless of transport detail.
var (
	// ErrUnavailable covers transport failures: connection errors,
	// timeouts, and non-2xx endpoint responses.
	ErrUnavailable = errors.New("gateway unavailable")

	// ErrMalformed covers responses that arrived but miss the expected
	// payload shape (undecodable body, empty choices).
	ErrMalformed = errors.New("gateway response malformed")

	// ErrCapabilityLoop is returned when capability round-trips exceed
	// the configured bound without the model producing a final response.
	ErrCapabilityLoop = errors.New("capability round-trips exceeded")
)
