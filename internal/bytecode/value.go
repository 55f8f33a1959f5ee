// Package bytecode flattens lowered ssa.Code into a linear instruction
// stream with a deduplicated constant pool and resolved jump addresses,
// ready for the vm package to execute.
package bytecode

import (
	"fmt"
	"math/big"

	"github.com/mna/ore/internal/numeric"
)

// Kind is the closed set of runtime value shapes.
type Kind int8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindRef
	KindArray
)

// Value is a tagged runtime value. Float uses math/big.Float rather than
// float64: it is the one deliberate standard-library exception in this
// module (see the grounding ledger) because no arbitrary-precision decimal
// library is available anywhere in the reference pack, and the source
// runtime this was ported from represents its Float as an arbitrary-
// precision big decimal rather than an IEEE double.
type Value struct {
	Kind  Kind
	Int   int64
	Float *big.Float
	Str   string
	Bool  bool
	Ref   string
	Arr   []Value
}

func Null() Value               { return Value{Kind: KindNull} }
func Int(n int64) Value         { return Value{Kind: KindInt, Int: n} }
func Float(f float64) Value     { return Value{Kind: KindFloat, Float: big.NewFloat(f)} }
func String(s string) Value     { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Ref(path string) Value     { return Value{Kind: KindRef, Ref: path} }
func Array(vs []Value) Value    { return Value{Kind: KindArray, Arr: vs} }

// Equal reports deep value equality, used for constant-pool deduplication
// and the VM's `==`/`!=` opcodes. Floats compare within numeric.Epsilon
// rather than bit-for-bit, the same tolerance internal/ssa's constant
// folder uses for the identical comparison at compile time, so a folded
// comparison and its runtime equivalent never disagree.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return numeric.BigFloatEqual(a.Float, b.Float)
	case KindString:
		return a.Str == b.Str
	case KindBool:
		return a.Bool == b.Bool
	case KindRef:
		return a.Ref == b.Ref
	case KindArray:
		if len(a.Arr) != len(b.Arr) {
			return false
		}
		for i := range a.Arr {
			if !Equal(a.Arr[i], b.Arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return v.Float.Text('g', -1)
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindRef:
		return v.Ref
	case KindArray:
		return fmt.Sprintf("%v", v.Arr)
	default:
		return "?"
	}
}

// Truthy reports the value's boolean coercion for use as a Bool; non-Bool
// values are never truthy, matching the original runtime's strict typing
// (And/Or/Not/JumpIfFalse all require an actual Bool operand).
func (v Value) Truthy() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}
