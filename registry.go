package datatest

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Registry holds every descriptor of a test binary. It is populated by the
// generated registration functions before the harness starts and is
// read-only afterwards: the harness freezes it, and any later Add panics.
type Registry struct {
	mu     sync.Mutex
	frozen atomic.Bool
	names  map[string]struct{}
	files  []*FilesTestDesc
	cases  []*CaseTestDesc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// AddFiles registers a file-driven test descriptor.
func (r *Registry) AddFiles(desc *FilesTestDesc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claim(desc.Name)
	slog.Debug("Registering file-driven test.", "name", desc.Name, "root", desc.Root)
	r.files = append(r.files, desc)
}

// AddCases registers a case-driven test descriptor.
func (r *Registry) AddCases(desc *CaseTestDesc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claim(desc.Name)
	slog.Debug("Registering case-driven test.", "name", desc.Name)
	r.cases = append(r.cases, desc)
}

func (r *Registry) claim(name string) {
	if r.frozen.Load() {
		panic(fmt.Sprintf("datatest: cannot register '%s': registry is frozen", name))
	}
	if _, exists := r.names[name]; exists {
		panic(fmt.Sprintf("datatest: test with name '%s' already registered", name))
	}
	r.names[name] = struct{}{}
}

// Freeze ends the registration phase. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Files freezes the registry and returns the file-driven descriptors in
// registration order. The returned slice must not be modified.
func (r *Registry) Files() []*FilesTestDesc {
	r.Freeze()
	return r.files
}

// Cases freezes the registry and returns the case-driven descriptors in
// registration order. The returned slice must not be modified.
func (r *Registry) Cases() []*CaseTestDesc {
	r.Freeze()
	return r.cases
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files) + len(r.cases)
}
