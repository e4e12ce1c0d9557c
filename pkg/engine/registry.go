// Package engine expands a parsed macro document into output text.
//
// Block macros are resolved by context and name against a Registry and
// called with their rendered children. Text runs go through the processor
// registered under the context's own name (the context renderer), after
// which every inline macro placeholder is replaced by its expansion.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/open-cli-collective/macroed/pkg/macro"
)

var (
	// ErrUnknownMacro is returned when no processor matches a macro's context and name.
	ErrUnknownMacro = errors.New("unknown macro")

	// ErrInvalidProcessor is returned by Register for processors missing a name or function.
	ErrInvalidProcessor = errors.New("invalid processor")
)

// Call is everything a processor gets for one macro occurrence.
type Call struct {
	Name     string
	Context  string
	Params   macro.Params
	Defaults map[string]any // the processor's own Params
	Content  string         // rendered children, or inline content
	Source   string         // raw text of the children, or inline content
	Inline   bool
}

// ProcessFunc expands one macro occurrence.
type ProcessFunc func(call *Call) (string, error)

// Processor binds a macro name in a context to its expansion.
// An empty Context registers the processor in macro.DefaultContext, which
// every other context falls back to.
type Processor struct {
	Name    string
	Context string
	Params  map[string]any
	Process ProcessFunc
}

// Registry maps (context, name) to processors. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	procs map[registryKey]Processor
}

type registryKey struct {
	context string
	name    string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[registryKey]Processor)}
}

// Register adds or replaces a processor.
func (r *Registry) Register(p Processor) error {
	if p.Name == "" || p.Process == nil {
		return fmt.Errorf("%w: name and process function are required", ErrInvalidProcessor)
	}
	if p.Context == "" {
		p.Context = macro.DefaultContext
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[registryKey{p.Context, p.Name}] = p
	return nil
}

// MustRegister is Register for processors known to be valid.
func (r *Registry) MustRegister(p Processor) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Get finds the processor registered for exactly context and name.
func (r *Registry) Get(context, name string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.procs[registryKey{context, name}]
	return p, ok
}

// Lookup finds the processor for name in context, falling back to the
// default context.
func (r *Registry) Lookup(context, name string) (Processor, bool) {
	if p, ok := r.Get(context, name); ok {
		return p, true
	}
	return r.Get(macro.DefaultContext, name)
}

// Names lists registered processors as "context:name", sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.procs))
	for k := range r.procs {
		names = append(names, k.context+":"+k.name)
	}
	sort.Strings(names)
	return names
}
