package candidates

import (
	"fmt"
	"sync"
)

// Record is one identifier and its classification.
type Record struct {
	Index  int
	Value  string
	Status Status
}

// Counts summarizes statuses across a Store. It is always derived, never stored.
type Counts struct {
	Total     int
	Unknown   int
	Confirmed int
	Rejected  int
	Errored   int
}

// Resolved returns the number of records holding a terminal status.
func (c Counts) Resolved() int {
	return c.Total - c.Unknown
}

// Store is the ordered, lock-guarded collection of identifier records.
type Store struct {
	mu      sync.RWMutex
	header  []string
	column  int
	rows    [][]string
	records []Record
}

// NewStore builds a Store from identifier values, all UNKNOWN. The header
// holds a single column named column.
func NewStore(column string, values []string) *Store {
	rows := make([][]string, len(values))
	records := make([]Record, len(values))
	for i, v := range values {
		rows[i] = []string{v}
		records[i] = Record{Index: i, Value: v}
	}
	return &Store{header: []string{column}, rows: rows, records: records}
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Column returns the identifier header name.
func (s *Store) Column() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.header[s.column]
}

// Record returns the record at index i.
func (s *Store) Record(i int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.records) {
		return Record{}, false
	}
	return s.records[i], true
}

// Records returns a copy of every record in index order.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Pending returns the UNKNOWN records at or after offset, in index order.
func (s *Store) Pending(offset int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	var out []Record
	for i := offset; i < len(s.records); i++ {
		if s.records[i].Status == StatusUnknown {
			out = append(out, s.records[i])
		}
	}
	return out
}

// FirstUnknown returns the index of the first UNKNOWN record.
func (s *Store) FirstUnknown() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, rec := range s.records {
		if rec.Status == StatusUnknown {
			return i, true
		}
	}
	return 0, false
}

// ResumeOffset is the index of the first UNKNOWN record, or 0 when none remain.
func (s *Store) ResumeOffset() int {
	idx, _ := s.FirstUnknown()
	return idx
}

// Resolve records the terminal status for the record at index i. Writing a
// record twice returns ErrAlreadyResolved and leaves the first status intact.
func (s *Store) Resolve(i int, status Status) error {
	if !status.Terminal() {
		return fmt.Errorf("resolve record %d: %s is not a terminal status", i, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.records) {
		return fmt.Errorf("resolve record %d: index out of range [0,%d)", i, len(s.records))
	}
	if current := s.records[i].Status; current.Terminal() {
		return fmt.Errorf("resolve record %d to %s: already %s: %w", i, status, current, ErrAlreadyResolved)
	}
	s.records[i].Status = status
	return nil
}

// RetryErrored turns ERROR records back into UNKNOWN so they are probed again.
// It must only be called before a run starts dispatching work.
func (s *Store) RetryErrored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	reset := 0
	for i := range s.records {
		if s.records[i].Status == StatusErrored {
			s.records[i].Status = StatusUnknown
			reset++
		}
	}
	return reset
}

// Counts recomputes status totals.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{Total: len(s.records)}
	for _, rec := range s.records {
		switch rec.Status {
		case StatusConfirmed:
			c.Confirmed++
		case StatusRejected:
			c.Rejected++
		case StatusErrored:
			c.Errored++
		default:
			c.Unknown++
		}
	}
	return c
}

// Snapshot copies the store into a Table at a single instant. Rows are shared
// with the Store because they are never mutated after load.
func (s *Store) Snapshot() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	header := make([]string, len(s.header))
	copy(header, s.header)
	rows := make([][]string, len(s.rows))
	copy(rows, s.rows)
	statuses := make([]Status, len(s.records))
	for i, rec := range s.records {
		statuses[i] = rec.Status
	}
	return &Table{Header: header, Rows: rows, Statuses: statuses}
}
