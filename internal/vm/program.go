package vm

import "github.com/mna/ore/internal/bytecode"

// Program is the set of compiled units an Executor can call into, each with
// its own global-variable store.
type Program struct {
	units   map[string]*bytecode.Unit
	globals map[string][]bytecode.Value
	order   []string
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{units: make(map[string]*bytecode.Unit), globals: make(map[string][]bytecode.Value)}
}

// Add registers a compiled unit, allocating its global-slot store.
func (p *Program) Add(u *bytecode.Unit) {
	if _, seen := p.units[u.Name]; !seen {
		p.order = append(p.order, u.Name)
	}
	p.units[u.Name] = u
	globals := make([]bytecode.Value, u.Globals)
	for i := range globals {
		globals[i] = bytecode.Null()
	}
	p.globals[u.Name] = globals
}

// Unit looks up a previously-added compiled unit by name.
func (p *Program) Unit(name string) (*bytecode.Unit, bool) {
	u, ok := p.units[name]
	return u, ok
}

// Units returns every loaded unit's short name, in the order the units were
// first added.
func (p *Program) Units() []string {
	return append([]string(nil), p.order...)
}
