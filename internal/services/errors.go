package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLoad          = errors.New("load error")
	ErrSchema        = errors.New("schema error")
	ErrTransport     = errors.New("probe transport error")
	ErrCheckpoint    = errors.New("checkpoint error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort a run before any probing happens.
// Transport and checkpoint failures are isolated by the engine and never fatal.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrTransport), errors.Is(err, ErrCheckpoint):
		return false
	default:
		return true
	}
}

// Hint returns a short operator-facing next step for a classified error.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrSchema):
		return "rename the identifier column to the configured input.column or adjust input.column_hint"
	case errors.Is(err, ErrLoad):
		return "check the source path and that the file is a delimited table"
	case errors.Is(err, ErrConfiguration):
		return "edit the config file (create one with 'sieve config init')"
	case errors.Is(err, ErrCheckpoint):
		return "check free disk space and directory permissions next to the source file"
	case errors.Is(err, ErrTransport):
		return "check network connectivity and oracle.url_template"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sieve failure"
	}
	return strings.Join(parts, ": ")
}
