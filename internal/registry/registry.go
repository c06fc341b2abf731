// Package registry accumulates cross-program reference information: which
// function and delegate names are referenced anywhere in the corpus, and
// how often each function is called.
package registry

import (
	"sync"

	"github.com/bplint/bplint/pkg/models"
)

// Registry is the corpus-wide reference accumulator for one scan
// invocation. It is created by the orchestrator at scan start and passed
// into every detector run; nothing outlives the scan. Counts grow
// monotonically and are approximate, not exact: a program visited twice
// within the same scan increments its call counts again.
type Registry struct {
	mu         sync.RWMutex
	referenced map[string]struct{}
	callCounts map[string]int
	built      bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		referenced: make(map[string]struct{}),
		callCounts: make(map[string]int),
	}
}

// AddReference marks a function or delegate name as referenced.
func (r *Registry) AddReference(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	r.referenced[name] = struct{}{}
	r.mu.Unlock()
}

// AddCall marks a function as referenced and increments its call count.
func (r *Registry) AddCall(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	r.referenced[name] = struct{}{}
	r.callCounts[name]++
	r.mu.Unlock()
}

// Referenced reports whether the name was seen anywhere in the corpus.
func (r *Registry) Referenced(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.referenced[name]
	return ok
}

// CallCount returns how many call nodes target the named function.
func (r *Registry) CallCount(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callCounts[name]
}

// Built reports whether BuildFromCorpus already ran for this registry.
func (r *Registry) Built() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.built
}

// BuildFromCorpus records every program's outgoing references in one pass:
// call targets, delegate property names, handlers bound through delegate
// pins, and timer-style string-referenced handlers. It must run before the
// unused-function detector evaluates any single program, because a function
// may be called only from a different program.
func (r *Registry) BuildFromCorpus(programs []*models.Program) {
	for _, p := range programs {
		r.CollectProgram(p)
	}
	r.mu.Lock()
	r.built = true
	r.mu.Unlock()
}

// CollectProgram records one program's outgoing references.
func (r *Registry) CollectProgram(p *models.Program) {
	if p == nil {
		return
	}
	for _, g := range p.AllGraphs() {
		for _, n := range g.Nodes {
			r.collectNode(n)
		}
	}
}

func (r *Registry) collectNode(n *models.Node) {
	switch {
	case n.Kind == models.NodeCallFunction:
		r.AddCall(n.Member)
		if n.TimerFunction != "" {
			// Timer-style calls name their handler by string.
			r.AddReference(n.TimerFunction)
		}
	case n.Kind == models.NodeMacroInstance:
		r.AddReference(n.Member)
	case n.Kind.IsDelegate():
		r.AddReference(n.Member)
		if !n.Kind.BindsDelegate() {
			return
		}
		// Handlers wired into the binding pin count as referenced too.
		pin := n.DelegatePin()
		if pin == nil {
			return
		}
		for _, link := range pin.Links {
			if bound := link.Node(); bound != nil && bound.Kind == models.NodeCustomEvent {
				r.AddReference(bound.Member)
			}
		}
	}
}
