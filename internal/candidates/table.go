package candidates

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table is a point-in-time copy of a Store in file shape: auxiliary columns
// plus one status per row.
type Table struct {
	Header   []string
	Rows     [][]string
	Statuses []Status
}

// Write encodes the table with a trailing Status column.
func (t *Table) Write(w io.Writer, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	header := make([]string, 0, len(t.Header)+1)
	header = append(header, t.Header...)
	header = append(header, StatusColumn)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, 0, len(t.Header)+1)
	for i, row := range t.Rows {
		line = append(line[:0], row...)
		line = append(line, t.Statuses[i].String())
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DelimiterFor picks the field separator for path: tab for .tsv and .tab
// files, comma otherwise.
func DelimiterFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}
