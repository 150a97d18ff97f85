package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	scriptruntime "github.com/wippyai/script-runtime"
)

func TestDirOpen(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "lib", "math.js"), []byte("// math"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDir(root)

	data, err := d.Open("lib/math.js")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(data) != "// math" {
		t.Errorf("Open returned %q", data)
	}

	if _, err := d.Open("lib/missing.js"); !errors.Is(err, scriptruntime.ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
}

func TestDirRejectsEscapingIDs(t *testing.T) {
	d := NewDir(t.TempDir())

	for _, id := range []string{"", "/etc/passwd", "../secret.js", "a/../../b.js", "a//b.js"} {
		if _, err := d.Open(id); !errors.Is(err, scriptruntime.ErrNotFound) {
			t.Errorf("Open(%q) = %v, want ErrNotFound", id, err)
		}
	}
}

func TestDirFileAsDirectoryIsAMiss(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "foo.js"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDir(root)
	// Candidate expansion probes "foo.js/index.js" paths through files.
	if _, err := d.Open("foo.js/index.js"); !errors.Is(err, scriptruntime.ErrNotFound) {
		t.Errorf("path through file = %v, want ErrNotFound", err)
	}
}

func TestMapProvider(t *testing.T) {
	m := NewMap(map[string]string{"a.js": "// a"})

	if data, err := m.Open("a.js"); err != nil || string(data) != "// a" {
		t.Fatalf("Open = %q, %v", data, err)
	}

	m.Set("b.js", "// b")
	if _, err := m.Open("b.js"); err != nil {
		t.Errorf("Open after Set failed: %v", err)
	}

	m.Delete("a.js")
	if _, err := m.Open("a.js"); !errors.Is(err, scriptruntime.ErrNotFound) {
		t.Errorf("Open after Delete = %v, want ErrNotFound", err)
	}
}
