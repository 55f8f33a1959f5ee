package ssa

import "github.com/mna/ore/internal/ast"

// OperandKind is the closed set of operand shapes an expression can lower
// to.
type OperandKind int

const (
	OpndValue OperandKind = iota
	OpndLibrary
	OpndNull
	OpndThis
	OpndImmBool
	OpndImmInt
	OpndImmFloat
	OpndImmString
	OpndCall
	OpndReference
	OpndNested
)

// Operand is the result of lowering an expression: either a reference to an
// allocated Value, an immediate constant, a library/call/reference path, or
// (when folding was not possible) a nested binary expression carried
// through for the bytecode emitter to materialize via opcodes instead of a
// constant-pool entry.
type Operand struct {
	Kind OperandKind

	Value ValueKey

	Name string // Library name, Call path, or Reference path

	Bool  bool
	Int   int64
	Float float64
	Str   string

	Left, Right *Operand
	NestedOp    ast.BinOp
}

// IsImmediate reports whether the operand is a compile-time constant
// eligible for constant folding and direct constant-pool placement.
func (o Operand) IsImmediate() bool {
	switch o.Kind {
	case OpndNull, OpndImmBool, OpndImmInt, OpndImmFloat, OpndImmString:
		return true
	default:
		return false
	}
}

func (o Operand) guessedType() GuessedType {
	switch o.Kind {
	case OpndImmBool:
		return TypeBool
	case OpndImmInt:
		return TypeNumber
	case OpndImmFloat:
		return TypeFloat
	case OpndImmString:
		return TypeString
	case OpndNull:
		return TypeNull
	case OpndThis:
		return TypeThis
	case OpndReference, OpndLibrary, OpndCall:
		return TypeRef
	default:
		return TypeUnknown
	}
}
