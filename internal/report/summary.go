package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"sieve/internal/candidates"
	"sieve/internal/engine"
)

// Summary holds the final totals. It is derived from Store counts, never from
// the engine's running counters.
type Summary struct {
	Total   int
	Checked int
	Valid   int
	Invalid int
	Errored int
	Pending int
}

// Summarize converts store counts into a Summary.
func Summarize(c candidates.Counts) Summary {
	return Summary{
		Total:   c.Total,
		Checked: c.Resolved(),
		Valid:   c.Confirmed,
		Invalid: c.Rejected,
		Errored: c.Errored,
		Pending: c.Unknown,
	}
}

// String renders the one-line summary, e.g. "3 checked, 1 valid, 2 invalid".
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d checked, %d valid, %d invalid", s.Checked, s.Valid, s.Invalid)
	if s.Errored > 0 {
		fmt.Fprintf(&b, ", %d errored", s.Errored)
	}
	return b.String()
}

// Lines renders the multi-line summary printed at the end of a run.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("%s identifiers have been checked.", humanize.Comma(int64(s.Checked))),
		fmt.Sprintf("%s were valid", humanize.Comma(int64(s.Valid))),
		fmt.Sprintf("%s were invalid", humanize.Comma(int64(s.Invalid))),
	}
	if s.Errored > 0 {
		lines = append(lines, fmt.Sprintf("%s could not be checked (retry with --resume --retry-errors)", humanize.Comma(int64(s.Errored))))
	}
	if s.Pending > 0 {
		lines = append(lines, fmt.Sprintf("%s are still pending", humanize.Comma(int64(s.Pending))))
	}
	return lines
}

// ProgressLine renders the live progress text.
func ProgressLine(p engine.Progress) string {
	return fmt.Sprintf("Completed %d of %d | Good found: %d | Bad found: %d", p.Completed, p.Total, p.Confirmed, p.Rejected)
}

// CountsTable renders status totals for a store as a table.
func CountsTable(c candidates.Counts) string {
	percent := func(n int) string {
		if c.Total == 0 {
			return "0%"
		}
		return humanize.FormatFloat("#.#", float64(n)/float64(c.Total)*100) + "%"
	}
	rows := [][]string{
		{candidates.StatusConfirmed.String(), humanize.Comma(int64(c.Confirmed)), percent(c.Confirmed)},
		{candidates.StatusRejected.String(), humanize.Comma(int64(c.Rejected)), percent(c.Rejected)},
		{candidates.StatusErrored.String(), humanize.Comma(int64(c.Errored)), percent(c.Errored)},
		{candidates.StatusUnknown.String(), humanize.Comma(int64(c.Unknown)), percent(c.Unknown)},
		{"TOTAL", humanize.Comma(int64(c.Total)), ""},
	}
	return RenderTable([]string{"Status", "Records", "Share"}, rows, []Alignment{AlignLeft, AlignRight, AlignRight})
}
