// Package native implements the host-provided function bridge: the
// system.* and type.* modules required by every program, plus whatever
// additional (module, function, arity) triples an embedding host registers.
package native

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/mna/ore/internal/bytecode"
)

// Func is a native function implementation.
type Func func(args []bytecode.Value) (bytecode.Value, error)

type entry struct {
	arity int
	fn    Func
}

// Registry is a (module, function) lookup table backed by a swiss.Map, this
// module's general-purpose hash map throughout the native/memo layers.
// Bare-name lookups (from a local `native function name(...)` declaration,
// which carries no module qualifier) resolve by matching the function-name
// suffix, which is unambiguous as long as no two registered modules export
// the same function name — true of the required system/type set.
type Registry struct {
	byPath  *swiss.Map[string, entry]
	byName  map[string]string // bare function name -> "module.function", for unqualified lookups
	modules map[string]bool    // registered module names, for import validation

	spawn       func(path string, args []bytecode.Value) error
	requestExit func()
}

// NewRegistry creates an empty registry populated with the required
// system.* and type.* modules.
func NewRegistry() *Registry {
	r := &Registry{
		byPath:  swiss.NewMap[string, entry](32),
		byName:  make(map[string]string),
		modules: make(map[string]bool),
	}
	registerSystem(r)
	registerType(r)
	return r
}

// Register adds a (module, function) native with the given arity.
func (r *Registry) Register(module, function string, arity int, fn Func) {
	path := module + "." + function
	r.byPath.Put(path, entry{arity: arity, fn: fn})
	r.byName[function] = path
	r.modules[module] = true
}

// HasModule reports whether name is a registered native module, so an
// `import x from name;` can be validated without resolving a specific
// function. embed's ssa.LibraryLookup implementation consults it.
func (r *Registry) HasModule(name string) bool {
	return r.modules[name]
}

func (r *Registry) resolve(path string) (entry, bool) {
	if e, ok := r.byPath.Get(path); ok {
		return e, true
	}
	if modFn, ok := r.byName[path]; ok {
		return r.byPath.Get(modFn)
	}
	return entry{}, false
}

// Lookup reports the arity of a registered native, given either a bare
// function name or a "module.function"/"module/function" path. It
// satisfies ssa.NativeLookup.
func (r *Registry) Lookup(name string) (int, bool) {
	e, ok := r.resolve(normalizePath(name))
	return e.arity, ok
}

// Call invokes a registered native by path, satisfying vm.NativeRegistry.
func (r *Registry) Call(path string, args []bytecode.Value) (bytecode.Value, error) {
	e, ok := r.resolve(normalizePath(path))
	if !ok {
		return bytecode.Value{}, fmt.Errorf("no such native function: %s", path)
	}
	if len(args) != e.arity {
		return bytecode.Value{}, fmt.Errorf("native function %s expects %d arguments, got %d", path, e.arity, len(args))
	}
	return e.fn(args)
}

func normalizePath(path string) string {
	out := []byte(path)
	for i, c := range out {
		if c == '/' {
			out[i] = '.'
		}
	}
	return string(out)
}
