package oracle

import (
	"fmt"

	"sieve/internal/services"
)

// TransportError reports a probe that never produced an HTTP response.
type TransportError struct {
	Identifier string
	URL        string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Identifier, e.Err)
}

// Unwrap exposes both the transport marker and the underlying cause.
func (e *TransportError) Unwrap() []error {
	return []error{services.ErrTransport, e.Err}
}
