package command

import (
	"context"
	"sync"
)

// Loader constructs a command. It is the deferred part of a registration and
// is only called when its command is resolved.
type Loader func() (Command, error)

// Descriptor registers one command: a name and help line that are always
// available, and the loader that produces the implementation.
type Descriptor struct {
	Name  string
	Short string
	Load  Loader
}

// Registry is the fixed, ordered table of registered commands. Listing never
// loads anything; resolving loads exactly the requested command.
type Registry struct {
	descriptors []Descriptor
	index       map[string]int
	cache       sync.Map // map[string]Command
}

// NewRegistry creates a registry from descriptors in declaration order
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		index:       make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if err := validateDescriptor(d); err != nil {
			return nil, err
		}
		if _, exists := r.index[d.Name]; exists {
			return nil, &ErrCommandExists{Name: d.Name}
		}
		r.index[d.Name] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on an invalid table
func MustRegistry(descriptors ...Descriptor) *Registry {
	r, err := NewRegistry(descriptors...)
	if err != nil {
		panic(err)
	}
	return r
}

func validateDescriptor(d Descriptor) error {
	switch {
	case d.Name == "":
		return &ErrInvalidDescriptor{Reason: "empty name"}
	case d.Name[0] == '-':
		return &ErrInvalidDescriptor{Name: d.Name, Reason: "name cannot start with '-'"}
	case d.Load == nil:
		return &ErrInvalidDescriptor{Name: d.Name, Reason: "nil loader"}
	}
	return nil
}

// List returns the registered command names in declaration order
func (r *Registry) List() []string {
	names := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		names[i] = d.Name
	}
	return names
}

// Descriptors returns the registered descriptors in declaration order
func (r *Registry) Descriptors() []Descriptor {
	return append([]Descriptor(nil), r.descriptors...)
}

// Lookup returns the descriptor registered under name and whether it exists
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// Resolve returns the command registered under name, calling its loader on
// first use. Later calls return the same command.
func (r *Registry) Resolve(ctx context.Context, name string) (Command, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, &ErrCommandNotFound{Name: name}
	}
	if cached, ok := r.cache.Load(name); ok {
		return cached.(Command), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &ErrCommandLoad{Name: name, Err: err}
	}

	cmd, err := r.descriptors[i].Load()
	if err != nil {
		return nil, &ErrCommandLoad{Name: name, Err: err}
	}
	if cmd == nil {
		return nil, &ErrCommandLoad{Name: name, Err: errNilCommand}
	}

	actual, _ := r.cache.LoadOrStore(name, cmd)
	return actual.(Command), nil
}

// Loaded reports whether the command registered under name has been resolved
func (r *Registry) Loaded(name string) bool {
	_, ok := r.cache.Load(name)
	return ok
}
