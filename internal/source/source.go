// Package source abstracts where programs come from. The linter core only
// sees the Source interface; hosts plug in a directory of serialized
// program files, an in-memory set, or their own asset database.
package source

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bplint/bplint/pkg/models"
)

// Source enumerates and loads programs by their logical path.
type Source interface {
	// List returns the logical paths of all programs under the given
	// folder prefixes. Empty filters mean everything.
	List(pathFilters []string) ([]string, error)

	// Load materializes one program. The returned program is owned by the
	// caller and safe to read until the next scan discards it.
	Load(path string) (*models.Program, error)
}

// Memory is a Source over an in-process program set. Used by hosts that
// already hold their programs and throughout the test suite.
type Memory struct {
	mu       sync.RWMutex
	programs map[string]*models.Program
}

// NewMemory builds a Memory source from the given programs, keyed by
// their Path.
func NewMemory(programs ...*models.Program) *Memory {
	m := &Memory{programs: make(map[string]*models.Program, len(programs))}
	for _, p := range programs {
		m.programs[p.Path] = p
	}
	return m
}

// Add registers or replaces a program.
func (m *Memory) Add(p *models.Program) {
	m.mu.Lock()
	m.programs[p.Path] = p
	m.mu.Unlock()
}

// List returns matching program paths in sorted order.
func (m *Memory) List(pathFilters []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.programs))
	for path := range m.programs {
		if matchesAny(path, pathFilters) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load returns the program registered under path.
func (m *Memory) Load(path string) (*models.Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.programs[path]
	if !ok {
		return nil, fmt.Errorf("program not found: %s", path)
	}
	return p, nil
}

func matchesAny(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, pre := range prefixes {
		if pre != "" && strings.HasPrefix(path, pre) {
			return true
		}
	}
	return false
}
