package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteCandidates writes a comma separated candidate file with a single
// header column and one identifier per row, returning its path.
func WriteCandidates(t testing.TB, dir, name, column string, identifiers ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(column)
	b.WriteByte('\n')
	for _, id := range identifiers {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return WriteFile(t, filepath.Join(dir, name), b.String())
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
