package candidates

import (
	"errors"
	"fmt"
	"strings"

	"sieve/internal/services"
)

// ErrAlreadyResolved is returned when a terminal record is written again.
var ErrAlreadyResolved = errors.New("record already resolved")

// LoadError reports a missing or unparseable candidate source.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrLoad}
	}
	return []error{services.ErrLoad, e.Err}
}

// SchemaError reports that no header matched the identifier column, neither
// exactly nor through the substring hint.
type SchemaError struct {
	Path    string
	Column  string
	Hint    string
	Headers []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("resolve identifier column in %s: no header equals %q or contains %q (headers: %s)",
		e.Path, e.Column, e.Hint, strings.Join(e.Headers, ", "))
}

func (e *SchemaError) Unwrap() error {
	return services.ErrSchema
}
