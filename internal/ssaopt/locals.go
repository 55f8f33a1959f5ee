// Package ssaopt runs optimization passes over lowered ssa.Code before
// bytecode emission: dead-local elimination and compaction, and peephole
// fusion of common local/global increment-by-immediate sequences.
package ssaopt

import "github.com/mna/ore/internal/ssa"

// CompactLocals reassigns a function's live local slots to a dense
// [0,n) range, dropping slots that were allocated (by the symbol table,
// during lowering) but never referenced by any opcode. A declared variable
// is always referenced by its initializing StoreLocal, so it keeps its slot
// even if it is never read. It rewrites every LoadLocal/StoreLocal/AddLocalImm reference in
// place and returns the function's new local count.
func CompactLocals(fn *ssa.Function) int {
	if fn.Opcodes == nil {
		return 0
	}
	used := map[int]bool{}
	codes := fn.Opcodes.All()
	for i := range codes {
		switch codes[i].Op {
		case ssa.LoadLocal, ssa.StoreLocal, ssa.AddLocalImm:
			used[codes[i].Local] = true
		}
	}

	remap := make(map[int]int, len(used))
	next := 0
	// Preserve argument slots 0..Arity-1 verbatim: the calling convention
	// pushes arguments into those fixed positions regardless of whether the
	// body happens to read every one of them.
	for i := 0; i < fn.Arity; i++ {
		remap[i] = i
		if i+1 > next {
			next = i + 1
		}
	}
	for slot := range used {
		if _, ok := remap[slot]; ok {
			continue
		}
	}
	// Deterministic order: walk slots in ascending order so compaction is
	// reproducible across runs.
	maxSlot := fn.Arity
	for slot := range used {
		if slot+1 > maxSlot {
			maxSlot = slot + 1
		}
	}
	for slot := fn.Arity; slot < maxSlot; slot++ {
		if !used[slot] {
			continue
		}
		if _, ok := remap[slot]; ok {
			continue
		}
		remap[slot] = next
		next++
	}

	for i := range codes {
		switch codes[i].Op {
		case ssa.LoadLocal, ssa.StoreLocal, ssa.AddLocalImm:
			if nl, ok := remap[codes[i].Local]; ok {
				fn.Opcodes.At(ssa.LocalAddr(i)).Local = nl
			}
		}
	}
	return next
}
