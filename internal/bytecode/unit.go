package bytecode

import "github.com/mna/ore/internal/ssa"

// Instr is a single flattened instruction: ssa.Op's logical addresses and
// Operand payloads have been resolved to absolute indices. Op is reused
// directly from ssa rather than re-declared, since the bytecode stage adds
// no new instruction shapes beyond what semantic lowering already produces
// (it only resolves addresses and interns constants).
type Instr struct {
	Op     ssa.Op
	Const  int // index into the owning Unit's ConstPool, valid for Push, AddLocalImm and AddGlobalImm
	Local  int
	Global int
	Len    int
	Target int // absolute index into the same instruction slice, for jumps
	Path   string
}

// MethodInfo describes one declared function: its calling convention and,
// for non-native functions, where its code lives in Unit.FuncCode.
type MethodInfo struct {
	Name     string
	Arity    int
	IsSync   bool
	IsNative bool
	Addr     int  // index into Unit.FuncCode; meaningless (left 0) when IsNative
	Pure     bool // true iff every call in the body targets this same function and no global is touched; eligible for memoization
}

// Unit is one compiled compilation unit (one source file): its root-level
// code (run once at load time), its declared functions, and the constant
// pool and global-slot count they share.
type Unit struct {
	Name     string
	Consts   ConstPool
	Root     []Instr
	Funcs    []MethodInfo
	FuncCode [][]Instr
	Globals  int
}

// FuncIndex returns the index of the function named name in Funcs, or -1.
func (u *Unit) FuncIndex(name string) int {
	for i, f := range u.Funcs {
		if f.Name == name {
			return i
		}
	}
	return -1
}
