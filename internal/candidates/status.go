package candidates

import (
	"fmt"
	"strings"
)

// Status is the classification state of a single identifier.
type Status int

const (
	StatusUnknown Status = iota
	StatusConfirmed
	StatusRejected
	// StatusErrored marks a record whose probe failed at the transport level.
	StatusErrored
)

// StatusColumn is the header appended to checkpoint and result files.
const StatusColumn = "Status"

// String returns the token written to checkpoint and result files.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusConfirmed:
		return "GOOD"
	case StatusRejected:
		return "BAD"
	case StatusErrored:
		return "ERROR"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terminal reports whether the status is final for the current run.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected || s == StatusErrored
}

// ParseStatus maps a file token back to a Status.
func ParseStatus(token string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "UNKNOWN", "":
		return StatusUnknown, nil
	case "GOOD":
		return StatusConfirmed, nil
	case "BAD":
		return StatusRejected, nil
	case "ERROR":
		return StatusErrored, nil
	default:
		return StatusUnknown, fmt.Errorf("unknown status %q", token)
	}
}
