package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/vk/assetforge/internal/processor"
)

// Module is the interface that every built-in processor package implements
// to register itself.
type Module interface {
	Register(r *Registry) error
}

// DuplicateProcessorError is returned when a processor name is registered twice.
type DuplicateProcessorError struct {
	Name string
}

// Error implements the error interface for DuplicateProcessorError.
func (e *DuplicateProcessorError) Error() string {
	return fmt.Sprintf("processor '%s' is already registered", e.Name)
}

// UnknownProcessorError is returned when a processor name is not registered.
type UnknownProcessorError struct {
	Name string
}

// Error implements the error interface for UnknownProcessorError.
func (e *UnknownProcessorError) Error() string {
	return fmt.Sprintf("unknown processor '%s'", e.Name)
}

// InvalidDescriptorError is returned when a descriptor fails validation.
type InvalidDescriptorError struct {
	Name string
	Err  error
}

// Error implements the error interface for InvalidDescriptorError.
func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid descriptor for processor '%s': %v", e.Name, e.Err)
}

// Unwrap returns the underlying validation error.
func (e *InvalidDescriptorError) Unwrap() error {
	return e.Err
}

// registered holds one catalog entry.
type registered struct {
	descriptor *processor.Descriptor
	factory    processor.Factory
}

// Registry is the catalog of named processors.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registered
	order   []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*registered)}
}

// Register adds the processor built by factory, using the descriptor the
// processor returns from Describe.
func (r *Registry) Register(factory processor.Factory) error {
	return r.RegisterDescriptor(factory().Describe(), factory)
}

// RegisterDescriptor adds a processor under d.Name. It fails with
// *DuplicateProcessorError if the name is taken and with
// *InvalidDescriptorError if d does not validate.
func (r *Registry) RegisterDescriptor(d *processor.Descriptor, factory processor.Factory) error {
	if err := d.Validate(); err != nil {
		return &InvalidDescriptorError{Name: d.Name, Err: err}
	}
	if factory == nil {
		return &InvalidDescriptorError{Name: d.Name, Err: fmt.Errorf("factory is nil")}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.Name]; exists {
		return &DuplicateProcessorError{Name: d.Name}
	}
	slog.Debug("Registering processor.", "name", d.Name, "parameters", len(d.Parameters), "extensions", d.Extensions)
	r.entries[d.Name] = &registered{descriptor: d, factory: factory}
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*processor.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, &UnknownProcessorError{Name: name}
	}
	return e.descriptor, nil
}

// CreateInstance returns a fresh processor instance for name.
func (r *Registry) CreateInstance(name string) (processor.Processor, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownProcessorError{Name: name}
	}
	return e.factory(), nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []*processor.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*processor.Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].descriptor)
	}
	return out
}

// Len returns the number of registered processors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
