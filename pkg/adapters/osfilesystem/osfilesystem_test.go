package osfilesystem

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesParentDirectories(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "out", "nested", "report.md")
	data := []byte("# report\n")

	if err := fs.WriteFile(path, data); err != nil {
		t.Fatalf("WriteFile into a missing directory failed: %v", err)
	}

	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read back %q, want %q", got, data)
	}

	ok, err := fs.Exists(filepath.Dir(path))
	if err != nil || !ok {
		t.Errorf("parent directory missing after WriteFile (ok=%t, err=%v)", ok, err)
	}
}

func TestExistsMissingPath(t *testing.T) {
	fs := New()
	ok, err := fs.Exists(filepath.Join(t.TempDir(), "nothing-here"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Exists reported a missing path as present")
	}
}
