package candidates

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadOptions controls how a candidate file is parsed.
type LoadOptions struct {
	// Column is the exact identifier header.
	Column string
	// Hint is the case-insensitive substring tried when Column is absent.
	Hint string
	// Delimiter overrides the separator chosen by DelimiterFor.
	Delimiter rune
	// RequireStatus makes a missing or malformed Status column a LoadError.
	// Checkpoints are loaded this way; raw sources are not.
	RequireStatus bool
}

// Load reads a delimited candidate file into a Store.
//
// Statuses come from the Status column when RequireStatus is set; otherwise
// any Status column is dropped and every record starts UNKNOWN. When the
// identifier column is found through the hint, its header is renamed to
// opts.Column so later snapshots resolve by exact match.
func Load(path string, opts LoadOptions) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		reason := "open source"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "source does not exist"
		}
		return nil, &LoadError{Path: path, Reason: reason, Err: err}
	}
	defer file.Close()

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = DelimiterFor(path)
	}

	decoded := transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.Comma = delimiter
	reader.LazyQuotes = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "parse delimited data", Err: err}
	}
	if len(lines) == 0 {
		return nil, &LoadError{Path: path, Reason: "missing header row"}
	}

	header := lines[0]
	statusIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == StatusColumn {
			statusIdx = i
			break
		}
	}
	if opts.RequireStatus && statusIdx < 0 {
		return nil, &LoadError{Path: path, Reason: "missing " + StatusColumn + " column"}
	}

	auxHeader := dropColumn(header, statusIdx)
	column, renamed, err := resolveColumn(path, auxHeader, opts.Column, opts.Hint)
	if err != nil {
		return nil, err
	}
	if renamed {
		auxHeader[column] = opts.Column
	}

	body := lines[1:]
	store := &Store{
		header:  auxHeader,
		column:  column,
		rows:    make([][]string, len(body)),
		records: make([]Record, len(body)),
	}
	for i, line := range body {
		status := StatusUnknown
		if opts.RequireStatus {
			parsed, perr := ParseStatus(line[statusIdx])
			if perr != nil {
				return nil, &LoadError{Path: path, Reason: "parse status on data row " + strconv.Itoa(i+1), Err: perr}
			}
			status = parsed
		}
		row := dropColumn(line, statusIdx)
		store.rows[i] = row
		store.records[i] = Record{Index: i, Value: strings.TrimSpace(row[column]), Status: status}
	}
	return store, nil
}

// resolveColumn finds the identifier header: exact match first, then the
// first header containing hint (case-insensitive). It never guesses beyond that.
func resolveColumn(path string, header []string, column, hint string) (int, bool, error) {
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			return i, false, nil
		}
	}
	if needle := strings.ToLower(strings.TrimSpace(hint)); needle != "" {
		for i, name := range header {
			if strings.Contains(strings.ToLower(name), needle) {
				return i, true, nil
			}
		}
	}
	return 0, false, &SchemaError{Path: path, Column: column, Hint: hint, Headers: append([]string(nil), header...)}
}

func dropColumn(line []string, idx int) []string {
	out := make([]string, 0, len(line))
	for i, v := range line {
		if i == idx {
			continue
		}
		out = append(out, v)
	}
	return out
}
