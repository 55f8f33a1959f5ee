package bytecode

import (
	"github.com/mna/ore/internal/ssa"
	"github.com/mna/ore/internal/ssaopt"
)

// Emit runs the ssaopt passes (dead-local compaction, immediate-op fusion)
// and flattens the result into a Unit.
func Emit(code *ssa.Code, unitName string) *Unit {
	u := &Unit{Name: unitName, Globals: code.Globals.Len()}
	u.Root = emitTable(ssaopt.FuseImmediateOps(code.Root), &u.Consts)

	for _, fn := range code.Funcs {
		mi := MethodInfo{Name: fn.Name, Arity: fn.Arity, IsSync: fn.IsSync}
		if fn.Opcodes == nil {
			mi.IsNative = true
			u.Funcs = append(u.Funcs, mi)
			u.FuncCode = append(u.FuncCode, nil)
			continue
		}
		ssaopt.CompactLocals(fn)
		instrs := emitTable(ssaopt.FuseImmediateOps(fn.Opcodes), &u.Consts)
		mi.Addr = len(u.FuncCode)
		mi.Pure = isPureSelfRecursive(fn.Name, instrs)
		u.Funcs = append(u.Funcs, mi)
		u.FuncCode = append(u.FuncCode, instrs)
	}
	return u
}

func emitTable(tab *ssa.OpCodeTable, pool *ConstPool) []Instr {
	codes := tab.All()
	out := make([]Instr, len(codes))
	for i, op := range codes {
		instr := Instr{
			Op:     op.Op,
			Local:  op.Local,
			Global: op.Global,
			Len:    op.Len,
			Path:   op.Path,
			Target: int(op.Target),
		}
		if op.Op == ssa.Push || op.Op == ssa.AddLocalImm || op.Op == ssa.AddGlobalImm {
			instr.Const = pool.Intern(operandToValue(op.Value))
		}
		out[i] = instr
	}
	return out
}

// isPureSelfRecursive reports whether name's body never touches a global
// and never calls anything but itself, making it safe to memoize: its
// result depends only on its scalar argument values.
func isPureSelfRecursive(name string, instrs []Instr) bool {
	for _, in := range instrs {
		switch in.Op {
		case ssa.LoadGlobal, ssa.StoreGlobal, ssa.AddGlobalImm:
			return false
		case ssa.Call:
			if in.Path != name {
				return false
			}
		}
	}
	return true
}

func operandToValue(o ssa.Operand) Value {
	switch o.Kind {
	case ssa.OpndImmInt:
		return Int(o.Int)
	case ssa.OpndImmFloat:
		return Float(o.Float)
	case ssa.OpndImmString:
		return String(o.Str)
	case ssa.OpndImmBool:
		return Bool(o.Bool)
	case ssa.OpndReference, ssa.OpndLibrary:
		return Ref(o.Name)
	case ssa.OpndThis:
		return Ref("this")
	default:
		return Null()
	}
}
