package ssa

import (
	"strconv"

	"github.com/mna/ore/internal/ast"
	"github.com/mna/ore/internal/numeric"
)

// maxSafeInt is the largest (and, negated, the smallest) integer an IEEE-754
// double can represent without loss: 2^53-1.
const maxSafeInt = (int64(1) << 53) - 1

func safeInt(n int64) bool { return n >= -maxSafeInt && n <= maxSafeInt }

// resultType reports the statically-known result type of applying op to
// operands of guessed types lt/rt, and whether the combination is valid at
// all. A combination that is invalid regardless of runtime values (e.g. Bool
// + Array) is reported invalid so the caller can raise IllegalTypeCombination
// at compile time; a combination involving TypeUnknown is reported valid
// (the check is deferred to the VM, which raises TypeException instead).
func resultType(op ast.BinOp, lt, rt GuessedType) (res GuessedType, valid bool) {
	if lt == TypeUnknown || rt == TypeUnknown {
		return TypeUnknown, true
	}
	numeric := func(t GuessedType) bool { return t == TypeNumber || t == TypeFloat }
	switch op {
	case ast.OpAdd:
		if lt == TypeString || rt == TypeString {
			return TypeString, true
		}
		if numeric(lt) && numeric(rt) {
			if lt == TypeFloat || rt == TypeFloat {
				return TypeFloat, true
			}
			return TypeNumber, true
		}
		return TypeUnknown, false
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if numeric(lt) && numeric(rt) {
			if lt == TypeFloat || rt == TypeFloat {
				return TypeFloat, true
			}
			return TypeNumber, true
		}
		return TypeUnknown, false
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		if lt == TypeNumber && rt == TypeNumber {
			return TypeNumber, true
		}
		return TypeUnknown, false
	case ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
		if numeric(lt) && numeric(rt) {
			return TypeBool, true
		}
		return TypeUnknown, false
	case ast.OpEq, ast.OpNeq:
		// Every type combination is well-formed: mismatched types simply
		// compare unequal at runtime.
		return TypeBool, true
	case ast.OpAnd, ast.OpOr:
		if lt == TypeBool && rt == TypeBool {
			return TypeBool, true
		}
		return TypeUnknown, false
	default:
		return TypeUnknown, true
	}
}

// foldBinary attempts compile-time evaluation of a binary expression whose
// operands are both immediates. ok is false when either operand isn't an
// immediate, or op has no constant-folding rule (assignment operators, for
// instance, are never folded); the caller must then emit runtime opcodes
// instead. precisionLoss is true when an Int operand fell outside the safe
// range for an Int/Float mix, matching the original runtime's guard; folding
// still proceeds (promoting to Float) but the caller may want to surface a
// diagnostic.
func foldBinary(op ast.BinOp, l, r Operand) (result Operand, ok bool, precisionLoss bool) {
	if !l.IsImmediate() || !r.IsImmediate() {
		return Operand{}, false, false
	}

	asFloat := func(o Operand) (float64, bool, bool) {
		switch o.Kind {
		case OpndImmInt:
			return float64(o.Int), !safeInt(o.Int), true
		case OpndImmFloat:
			return o.Float, false, true
		default:
			return 0, false, false
		}
	}

	switch op {
	case ast.OpAdd:
		if l.Kind == OpndImmString || r.Kind == OpndImmString {
			return Operand{Kind: OpndImmString, Str: stringify(l) + stringify(r)}, true, false
		}
	case ast.OpEq, ast.OpNeq:
		eq := immediateEqual(l, r)
		if op == ast.OpNeq {
			eq = !eq
		}
		return Operand{Kind: OpndImmBool, Bool: eq}, true, false
	case ast.OpAnd, ast.OpOr:
		if l.Kind == OpndImmBool && r.Kind == OpndImmBool {
			v := l.Bool && r.Bool
			if op == ast.OpOr {
				v = l.Bool || r.Bool
			}
			return Operand{Kind: OpndImmBool, Bool: v}, true, false
		}
		return Operand{}, false, false
	}

	if l.Kind == OpndImmInt && r.Kind == OpndImmInt {
		switch op {
		case ast.OpAdd:
			return Operand{Kind: OpndImmInt, Int: l.Int + r.Int}, true, false
		case ast.OpSub:
			return Operand{Kind: OpndImmInt, Int: l.Int - r.Int}, true, false
		case ast.OpMul:
			return Operand{Kind: OpndImmInt, Int: l.Int * r.Int}, true, false
		case ast.OpDiv:
			if r.Int == 0 {
				return Operand{}, false, false
			}
			return Operand{Kind: OpndImmInt, Int: l.Int / r.Int}, true, false
		case ast.OpMod:
			if r.Int == 0 {
				return Operand{}, false, false
			}
			return Operand{Kind: OpndImmInt, Int: l.Int % r.Int}, true, false
		case ast.OpBitAnd:
			return Operand{Kind: OpndImmInt, Int: l.Int & r.Int}, true, false
		case ast.OpBitOr:
			return Operand{Kind: OpndImmInt, Int: l.Int | r.Int}, true, false
		case ast.OpBitXor:
			return Operand{Kind: OpndImmInt, Int: l.Int ^ r.Int}, true, false
		case ast.OpShl:
			return Operand{Kind: OpndImmInt, Int: l.Int << uint(r.Int)}, true, false
		case ast.OpShr:
			return Operand{Kind: OpndImmInt, Int: l.Int >> uint(r.Int)}, true, false
		case ast.OpLt:
			return Operand{Kind: OpndImmBool, Bool: l.Int < r.Int}, true, false
		case ast.OpGt:
			return Operand{Kind: OpndImmBool, Bool: l.Int > r.Int}, true, false
		case ast.OpLe:
			return Operand{Kind: OpndImmBool, Bool: l.Int <= r.Int}, true, false
		case ast.OpGe:
			return Operand{Kind: OpndImmBool, Bool: l.Int >= r.Int}, true, false
		}
		return Operand{}, false, false
	}

	lf, lloss, lok := asFloat(l)
	rf, rloss, rok := asFloat(r)
	if !lok || !rok {
		return Operand{}, false, false
	}
	loss := lloss || rloss
	switch op {
	case ast.OpAdd:
		return Operand{Kind: OpndImmFloat, Float: lf + rf}, true, loss
	case ast.OpSub:
		return Operand{Kind: OpndImmFloat, Float: lf - rf}, true, loss
	case ast.OpMul:
		return Operand{Kind: OpndImmFloat, Float: lf * rf}, true, loss
	case ast.OpDiv:
		if rf == 0 {
			return Operand{}, false, false
		}
		return Operand{Kind: OpndImmFloat, Float: lf / rf}, true, loss
	case ast.OpMod:
		if rf == 0 {
			return Operand{}, false, false
		}
		return Operand{Kind: OpndImmFloat, Float: float64(int64(lf) % int64(rf))}, true, loss
	case ast.OpLt:
		return Operand{Kind: OpndImmBool, Bool: lf < rf}, true, loss
	case ast.OpGt:
		return Operand{Kind: OpndImmBool, Bool: lf > rf}, true, loss
	case ast.OpLe:
		return Operand{Kind: OpndImmBool, Bool: lf <= rf}, true, loss
	case ast.OpGe:
		return Operand{Kind: OpndImmBool, Bool: lf >= rf}, true, loss
	default:
		return Operand{}, false, false
	}
}

// foldUnary attempts compile-time evaluation of a unary expression over an
// immediate operand. Pre/post inc/dec are never folded: they require an
// addressable lvalue and always lower to runtime Load/Store sequences.
func foldUnary(op ast.UnOp, v Operand) (Operand, bool) {
	if !v.IsImmediate() {
		return Operand{}, false
	}
	switch op {
	case ast.UnNeg:
		switch v.Kind {
		case OpndImmInt:
			return Operand{Kind: OpndImmInt, Int: -v.Int}, true
		case OpndImmFloat:
			return Operand{Kind: OpndImmFloat, Float: -v.Float}, true
		}
	case ast.UnPos:
		if v.Kind == OpndImmInt || v.Kind == OpndImmFloat {
			return v, true
		}
	case ast.UnNot:
		if v.Kind == OpndImmBool {
			return Operand{Kind: OpndImmBool, Bool: !v.Bool}, true
		}
	}
	return Operand{}, false
}

func stringify(o Operand) string {
	switch o.Kind {
	case OpndImmString:
		return o.Str
	case OpndImmInt:
		return strconv.FormatInt(o.Int, 10)
	case OpndImmFloat:
		return strconv.FormatFloat(o.Float, 'g', -1, 64)
	case OpndImmBool:
		if o.Bool {
			return "true"
		}
		return "false"
	case OpndNull:
		return "null"
	default:
		return ""
	}
}

// immediateEqual implements the original runtime's equality table: matching
// immediate kinds compare by value (floats within numeric.Epsilon, the
// same tolerance bytecode.Equal uses for the identical comparison at
// runtime, so constant folding a `==` can never disagree with evaluating
// it), anything else compares unequal rather than raising a type error.
func immediateEqual(l, r Operand) bool {
	if l.Kind != r.Kind {
		return false
	}
	switch l.Kind {
	case OpndImmInt:
		return l.Int == r.Int
	case OpndImmFloat:
		return numeric.FloatEqual(l.Float, r.Float)
	case OpndImmString:
		return l.Str == r.Str
	case OpndImmBool:
		return l.Bool == r.Bool
	case OpndNull:
		return true
	default:
		return false
	}
}
