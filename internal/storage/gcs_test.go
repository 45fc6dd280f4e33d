package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.json")

	if err := writeFileAtomic(path, strings.NewReader(`{"id":"1"}`)); err != nil {
		t.Fatalf("writeFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"id":"1"}` {
		t.Errorf("content = %q", data)
	}
	assertOnlyFile(t, dir, "post.json")
}

func TestWriteFileAtomicInterruptedCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.json")
	copyErr := errors.New("connection reset")

	err := writeFileAtomic(path, &failingReader{data: `{"id":`, err: copyErr})
	if !errors.Is(err, copyErr) {
		t.Fatalf("writeFileAtomic() error = %v, want %v", err, copyErr)
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial file left at %s (stat error %v)", path, err)
	}
	assertOnlyFile(t, dir, "")

	// A later pull sees no local file and fetches it again.
	if err := writeFileAtomic(path, strings.NewReader("{}")); err != nil {
		t.Fatalf("retry writeFileAtomic() error = %v", err)
	}
	assertOnlyFile(t, dir, "post.json")
}

func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	switch {
	case name == "" && len(names) != 0:
		t.Errorf("dir entries = %v, want none", names)
	case name != "" && (len(names) != 1 || names[0] != name):
		t.Errorf("dir entries = %v, want [%s]", names, name)
	}
}
