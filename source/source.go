package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	scriptruntime "github.com/wippyai/script-runtime"
)

// Dir serves module source from files under a root directory. Module
// ids are forward-slash paths relative to the root; ids that escape
// the root are rejected as not found.
type Dir struct {
	root string
}

// NewDir creates a directory-backed provider rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the provider's root directory.
func (d *Dir) Root() string {
	return d.root
}

// Open reads the file for id. Missing files map to ErrNotFound; any
// other failure is a hard read error.
func (d *Dir) Open(id string) ([]byte, error) {
	if !validID(id) {
		return nil, scriptruntime.ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, scriptruntime.ErrNotFound
		}
		// Requesting a file path through an existing file (e.g.
		// "foo.js/index.js") surfaces ENOTDIR; that is a miss, not a
		// hard failure.
		if isNotDir(err) {
			return nil, scriptruntime.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func validID(id string) bool {
	if id == "" || strings.HasPrefix(id, "/") {
		return false
	}
	for _, seg := range strings.Split(id, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func isNotDir(err error) bool {
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		return false
	}
	return strings.Contains(pathErr.Err.Error(), "not a directory")
}

// Map serves module source from memory. Safe for concurrent mutation,
// so tests and watchers can edit it while the runtime reads.
type Map struct {
	mu      sync.RWMutex
	sources map[string][]byte
}

// NewMap creates a provider preloaded with the given sources. Keys are
// canonical module ids, values are source text.
func NewMap(sources map[string]string) *Map {
	m := &Map{sources: make(map[string][]byte, len(sources))}
	for id, src := range sources {
		m.sources[id] = []byte(src)
	}
	return m
}

// Open returns the stored source for id or ErrNotFound.
func (m *Map) Open(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.sources[id]
	if !ok {
		return nil, scriptruntime.ErrNotFound
	}
	return data, nil
}

// Set stores or replaces the source for id.
func (m *Map) Set(id, src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[id] = []byte(src)
}

// Delete removes the source for id.
func (m *Map) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sources, id)
}

var _ scriptruntime.SourceProvider = (*Dir)(nil)
var _ scriptruntime.SourceProvider = (*Map)(nil)
