package evaluator

// Env holds the variable bindings of one run. Insertion order is preserved
// and observable: it is the order variables are displayed in.
type Env struct {
	names    []string
	bindings map[string]Value
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Value)}
}

// Get looks up a variable by name.
func (e *Env) Get(name string) (Value, bool) {
	val, ok := e.bindings[name]
	return val, ok
}

// Set binds a variable. Rebinding keeps the original position.
func (e *Env) Set(name string, val Value) {
	if _, ok := e.bindings[name]; !ok {
		e.names = append(e.names, name)
	}
	e.bindings[name] = val
}

// Has checks whether a variable is defined.
func (e *Env) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Names returns variable names in insertion order.
func (e *Env) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of bound variables.
func (e *Env) Len() int {
	return len(e.names)
}

// Each calls fn for every binding in insertion order.
func (e *Env) Each(fn func(name string, val Value)) {
	for _, name := range e.names {
		fn(name, e.bindings[name])
	}
}
