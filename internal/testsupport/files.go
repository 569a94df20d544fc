package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

var fixturePattern = []byte("vidingest fixture\n")

// WriteFile writes exactly size bytes of a fixed pattern to path, creating
// parent directories. Files of equal size therefore share a content hash.
// A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := bytes.Repeat(fixturePattern, int(size)/len(fixturePattern)+1)[:size]
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
