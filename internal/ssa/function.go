package ssa

// LocalMap is an ordered mapping from ValueKey to a dense local-slot index.
type LocalMap struct {
	order []ValueKey
	index map[ValueKey]int
}

// Slot returns the dense slot for key, allocating a new one if needed.
func (m *LocalMap) Slot(key ValueKey) int {
	if m.index == nil {
		m.index = make(map[ValueKey]int)
	}
	if idx, ok := m.index[key]; ok {
		return idx
	}
	idx := len(m.order)
	m.order = append(m.order, key)
	m.index[key] = idx
	return idx
}

// Len returns the number of locals currently mapped.
func (m *LocalMap) Len() int { return len(m.order) }

// Keys returns the ValueKeys in slot order.
func (m *LocalMap) Keys() []ValueKey { return m.order }

// Function is a single compiled function: its name, arity, local variable
// map, and opcode table. Opcodes is nil for a native function, whose body
// is supplied by the host library bridge.
type Function struct {
	Name    string
	Arity   int
	Locals  LocalMap
	Opcodes *OpCodeTable // nil => native
	IsSync  bool
}

// Code is the lowered form of one compilation unit: its root-level
// statements (executed once at load time) and its declared functions.
type Code struct {
	IsRoot  bool
	Root    *OpCodeTable
	Funcs   []*Function
	Globals LocalMap
}

// FuncIndex returns the index of the function named name, or -1.
func (c *Code) FuncIndex(name string) int {
	for i, f := range c.Funcs {
		if f.Name == name {
			return i
		}
	}
	return -1
}
