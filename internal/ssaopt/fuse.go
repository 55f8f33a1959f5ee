package ssaopt

import "github.com/mna/ore/internal/ssa"

// FuseImmediateOps rewrites the compound-assignment sequence
//
//	LoadLocal x; Push(ImmInt d); Add|Sub; StoreLocal x
//
// (and its global equivalent) into a single AddLocalImm/AddGlobalImm,
// folding Sub into a negated Add. It runs over a single OpCodeTable after
// jump targets have been fixed up, and since it only ever collapses four
// instructions into one without touching control flow that does not target
// the interior of the run, it never needs to renumber jumps a second time:
// callers rebuild the function's opcode stream from FuseImmediateOps'
// result rather than patching addresses in place.
func FuseImmediateOps(tab *ssa.OpCodeTable) *ssa.OpCodeTable {
	codes := tab.All()
	out := &ssa.OpCodeTable{}
	jumpTo := make(map[ssa.LocalAddr]ssa.LocalAddr, len(codes))

	i := 0
	for i < len(codes) {
		if fused, ok, consumed := tryFuseLocal(codes, i); ok {
			newAddr := out.Append(fused)
			for k := 0; k < consumed; k++ {
				jumpTo[ssa.LocalAddr(i+k)] = newAddr
			}
			i += consumed
			continue
		}
		if fused, ok, consumed := tryFuseGlobal(codes, i); ok {
			newAddr := out.Append(fused)
			for k := 0; k < consumed; k++ {
				jumpTo[ssa.LocalAddr(i+k)] = newAddr
			}
			i += consumed
			continue
		}
		newAddr := out.Append(codes[i])
		jumpTo[ssa.LocalAddr(i)] = newAddr
		i++
	}

	for idx := range out.All() {
		op := out.At(ssa.LocalAddr(idx))
		if isJump(op.Op) && op.Target != ssa.NoAddr {
			if mapped, ok := jumpTo[op.Target]; ok {
				op.Target = mapped
			}
		}
	}
	return out
}

func isJump(op ssa.Op) bool {
	return op == ssa.Jump || op == ssa.JumpIfFalse || op == ssa.JumpIfTrue
}

func tryFuseLocal(codes []ssa.OpCode, i int) (ssa.OpCode, bool, int) {
	if i+3 >= len(codes) {
		return ssa.OpCode{}, false, 0
	}
	load, push, arith, store := codes[i], codes[i+1], codes[i+2], codes[i+3]
	if load.Op != ssa.LoadLocal || push.Op != ssa.Push || store.Op != ssa.StoreLocal {
		return ssa.OpCode{}, false, 0
	}
	if load.Local != store.Local {
		return ssa.OpCode{}, false, 0
	}
	delta, ok := immDelta(push, arith)
	if !ok {
		return ssa.OpCode{}, false, 0
	}
	return ssa.OpCode{
		Op: ssa.AddLocalImm, Tok: load.Tok, Local: load.Local,
		Value: ssa.Operand{Kind: opndImmIntKind(), Int: delta},
	}, true, 4
}

func tryFuseGlobal(codes []ssa.OpCode, i int) (ssa.OpCode, bool, int) {
	if i+3 >= len(codes) {
		return ssa.OpCode{}, false, 0
	}
	load, push, arith, store := codes[i], codes[i+1], codes[i+2], codes[i+3]
	if load.Op != ssa.LoadGlobal || push.Op != ssa.Push || store.Op != ssa.StoreGlobal {
		return ssa.OpCode{}, false, 0
	}
	if load.Global != store.Global {
		return ssa.OpCode{}, false, 0
	}
	delta, ok := immDelta(push, arith)
	if !ok {
		return ssa.OpCode{}, false, 0
	}
	return ssa.OpCode{
		Op: ssa.AddGlobalImm, Tok: load.Tok, Global: load.Global,
		Value: ssa.Operand{Kind: opndImmIntKind(), Int: delta},
	}, true, 4
}

func immDelta(push, arith ssa.OpCode) (int64, bool) {
	if push.Value.Kind != opndImmIntKind() {
		return 0, false
	}
	switch arith.Op {
	case ssa.Add:
		return push.Value.Int, true
	case ssa.Sub:
		return -push.Value.Int, true
	default:
		return 0, false
	}
}

// opndImmIntKind is a tiny indirection so this file doesn't need to import
// ssa's unexported iota ordering assumptions beyond the exported constant.
func opndImmIntKind() ssa.OperandKind { return ssa.OpndImmInt }
