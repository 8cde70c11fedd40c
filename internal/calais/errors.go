package calais

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every failure returned by the client wraps exactly one of these.
var (
	// ErrInvalidConfig indicates a value outside a configuration whitelist.
	// It is always reported before any network activity.
	ErrInvalidConfig = errors.New("calais: invalid config")

	// ErrTransport indicates that no usable response was obtained from the service.
	ErrTransport = errors.New("calais: transport error")

	// ErrAPI indicates the service answered with an error status.
	ErrAPI = errors.New("calais: api error")

	// ErrParse indicates a successful response whose body is not a JSON object.
	ErrParse = errors.New("calais: parse error")
)

// APIError is returned when the service answers with a non-2xx status.
// Fault holds the service's faultstring when the body carried a fault envelope,
// otherwise the HTTP status text.
type APIError struct {
	StatusCode int
	Status     string
	Fault      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calais: api error (%d): %s", e.StatusCode, e.Fault)
}

// Unwrap lets callers match with errors.Is(err, ErrAPI).
func (e *APIError) Unwrap() error {
	return ErrAPI
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
