// Package stdlib provides the stepviz built-in function and method registry.
package stdlib

import (
	"sort"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

// Fn represents a built-in function.
type Fn struct {
	Name    string
	Execute func(args []evaluator.Value) (evaluator.Value, error)
}

// Method represents a method dispatched on a receiver kind.
type Method struct {
	Receiver evaluator.Kind
	Name     string
	// Mutates marks methods that change the receiver in place.
	Mutates bool
	// Rebind marks mutating methods whose result replaces the receiver
	// binding rather than mutating the shared container.
	Rebind  bool
	Execute func(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error)
}

// Registry holds registered functions and methods.
type Registry struct {
	fns     map[string]*Fn
	methods map[string]*Method
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns:     make(map[string]*Fn),
		methods: make(map[string]*Method),
	}
}

// Register adds a function to the registry.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// RegisterMethod adds a method to the registry.
func (r *Registry) RegisterMethod(m Method) {
	r.methods[evaluator.MethodKey(m.Receiver, m.Name)] = &m
}

// Get retrieves a function by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// GetMethod retrieves a method by receiver kind and name.
func (r *Registry) GetMethod(kind evaluator.Kind, name string) *Method {
	return r.methods[evaluator.MethodKey(kind, name)]
}

// All returns all registered functions.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// AllMethods returns all registered methods keyed by evaluator.MethodKey.
func (r *Registry) AllMethods() map[string]*Method {
	return r.methods
}

// Names returns the sorted names of all registered functions.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins converts the registry into evaluator function table.
func (r *Registry) Builtins() map[string]*evaluator.BuiltinFn {
	out := make(map[string]*evaluator.BuiltinFn, len(r.fns))
	for name, fn := range r.fns {
		out[name] = &evaluator.BuiltinFn{Name: fn.Name, Execute: fn.Execute}
	}
	return out
}

// Methods converts the registry into the evaluator method table.
func (r *Registry) Methods() map[string]*evaluator.MethodFn {
	out := make(map[string]*evaluator.MethodFn, len(r.methods))
	for key, m := range r.methods {
		out[key] = &evaluator.MethodFn{
			Receiver: m.Receiver,
			Name:     m.Name,
			Mutates:  m.Mutates,
			Rebind:   m.Rebind,
			Execute:  m.Execute,
		}
	}
	return out
}
