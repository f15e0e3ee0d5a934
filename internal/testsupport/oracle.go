package testsupport

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Oracle is an httptest server answering 200 for known identifiers under
// /lookup/ and 404 for everything else. It counts hits per identifier.
type Oracle struct {
	*httptest.Server

	mu    sync.Mutex
	known map[string]bool
	hits  map[string]int
}

// NewOracle starts a stub oracle confirming the given identifiers. The server
// is closed when the test ends.
func NewOracle(t testing.TB, confirmed ...string) *Oracle {
	t.Helper()

	o := &Oracle{known: map[string]bool{}, hits: map[string]int{}}
	for _, id := range confirmed {
		o.known[id] = true
	}
	o.Server = httptest.NewServer(http.HandlerFunc(o.serve))
	t.Cleanup(o.Close)
	return o
}

func (o *Oracle) serve(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/lookup/")
	id, err := url.PathUnescape(raw)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	o.mu.Lock()
	o.hits[id]++
	known := o.known[id]
	o.mu.Unlock()
	if known {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// Hits returns how many times identifier was probed.
func (o *Oracle) Hits(identifier string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hits[identifier]
}

// TotalHits returns the number of probes received.
func (o *Oracle) TotalHits() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	total := 0
	for _, n := range o.hits {
		total += n
	}
	return total
}
