package ssa

import "github.com/mna/ore/internal/token"

// LocalAddr is a dense, non-negative index naming an OpCode within its
// OpCodeTable. It stays stable across table appends thanks to AppendTable's
// relocation.
type LocalAddr int

// NoAddr marks an unset address (an OpCode not yet inserted into a table,
// or a jump target not yet patched).
const NoAddr LocalAddr = -1

// Op is the closed set of SSA-IR opcodes.
type Op int

const ( //nolint:revive
	Nop Op = iota
	Push
	PopN
	LoadLocal
	StoreLocal
	LoadGlobal
	StoreGlobal
	ArrayNew
	ArrayGet
	ArraySet
	Add
	Sub
	Mul
	Div
	Mod
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Lt
	Gt
	Le
	Ge
	Eq
	Neq
	And
	Or
	Not
	Neg
	Pos
	AddLocalImm
	AddGlobalImm
	LazyJump // carries IsBreak; resolved to Jump by loop lowering
	Jump
	JumpIfFalse
	JumpIfTrue
	Call
	GetRef // pops two Ref operands, pushes Ref("lhs/rhs"); builds qualified call paths
	Return
)

// OpCode is a single SSA-IR instruction. Addr is the instruction's own
// logical address: it must equal the key under which it is stored in its
// OpCodeTable. Target is the resolved address for jump-family opcodes
// (NoAddr until patched).
type OpCode struct {
	Addr LocalAddr
	Op   Op
	Tok  token.Token

	Local  int
	Global int
	Len    int

	Value Operand // Push operand

	Target  LocalAddr
	IsBreak bool // LazyJump only

	Path string // Call path: "unit/function", a bare function name, or empty when resolved at runtime via GetRef
}

// OpCodeTable is an insertion-ordered mapping from logical address to
// OpCode.
type OpCodeTable struct {
	codes []OpCode
}

// Append adds op to the table at the next address and returns that
// address. The invariant op.Addr == key is maintained here.
func (t *OpCodeTable) Append(op OpCode) LocalAddr {
	addr := LocalAddr(len(t.codes))
	op.Addr = addr
	t.codes = append(t.codes, op)
	return addr
}

// Len returns the number of opcodes in the table.
func (t *OpCodeTable) Len() int { return len(t.codes) }

// At returns a pointer to the opcode at addr for in-place patching (e.g. of
// jump Targets).
func (t *OpCodeTable) At(addr LocalAddr) *OpCode { return &t.codes[addr] }

// All returns the table's opcodes in address order. Callers must not
// change the slice length; use At to mutate entries in place.
func (t *OpCodeTable) All() []OpCode { return t.codes }

// AppendTable appends every opcode of other into t, remapping other's
// logical addresses into t's fresh address range and rewriting every jump
// target inside the appended opcodes through the same map.
func (t *OpCodeTable) AppendTable(other *OpCodeTable) map[LocalAddr]LocalAddr {
	base := LocalAddr(len(t.codes))
	remap := make(map[LocalAddr]LocalAddr, len(other.codes))
	for _, op := range other.codes {
		remap[op.Addr] = base + op.Addr
	}
	for _, op := range other.codes {
		newOp := op
		newOp.Addr = remap[op.Addr]
		if isJumpOp(op.Op) && op.Target != NoAddr {
			newOp.Target = remap[op.Target]
		}
		t.Append(newOp)
	}
	return remap
}

func isJumpOp(op Op) bool {
	return op == Jump || op == JumpIfFalse || op == JumpIfTrue || op == LazyJump
}
