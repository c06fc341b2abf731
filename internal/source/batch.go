package source

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/bplint/bplint/pkg/models"
)

// LoadError is one program that failed to load.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// LoadErrors collects failures across a batch load.
type LoadErrors struct {
	mu     sync.Mutex
	Errors []LoadError
}

// Add appends an error. Safe for concurrent use.
func (e *LoadErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, LoadError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors reports whether any load failed.
func (e *LoadErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

func (e *LoadErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d programs failed to load (first: %v)", len(e.Errors), e.Errors[0])
}

// ProgressFunc is called after each program finishes loading, whether it
// succeeded or not.
type ProgressFunc func()

// ErrorFunc receives each load failure. Nil skips failures silently.
type ErrorFunc func(path string, err error)

// LoadAll loads the given programs in parallel and returns the successes
// in arbitrary order. If maxWorkers is <= 0 it defaults to 2x NumCPU.
func LoadAll(src Source, paths []string, maxWorkers int, onProgress ProgressFunc, onError ErrorFunc) []*models.Program {
	if len(paths) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * 2
	}

	results := make([]*models.Program, 0, len(paths))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, path := range paths {
		path := path // per-iteration copy; required while go.mod targets go < 1.22
		p.Go(func() {
			prog, err := src.Load(path)
			if err != nil {
				if onError != nil {
					onError(path, err)
				}
				if onProgress != nil {
					onProgress()
				}
				return
			}
			if onProgress != nil {
				onProgress()
			}
			mu.Lock()
			results = append(results, prog)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}
