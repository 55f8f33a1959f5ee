package vm

import (
	"math/big"

	"github.com/mna/ore/internal/bytecode"
)

const maxSafeInt = (int64(1) << 53) - 1

func safeInt(n int64) bool { return n >= -maxSafeInt && n <= maxSafeInt }

func toFloat(v bytecode.Value) (*big.Float, bool, bool) {
	switch v.Kind {
	case bytecode.KindInt:
		return big.NewFloat(float64(v.Int)), !safeInt(v.Int), true
	case bytecode.KindFloat:
		return v.Float, false, true
	default:
		return nil, false, false
	}
}

func arith(op string, l, r bytecode.Value) (bytecode.Value, error) {
	if l.Kind == bytecode.KindInt && r.Kind == bytecode.KindInt {
		switch op {
		case "+":
			return bytecode.Int(l.Int + r.Int), nil
		case "-":
			return bytecode.Int(l.Int - r.Int), nil
		case "*":
			return bytecode.Int(l.Int * r.Int), nil
		case "/":
			if r.Int == 0 {
				return bytecode.Value{}, newErr(DivideByZero, "division by zero")
			}
			return bytecode.Int(l.Int / r.Int), nil
		case "%":
			if r.Int == 0 {
				return bytecode.Value{}, newErr(DivideByZero, "division by zero")
			}
			return bytecode.Int(l.Int % r.Int), nil
		}
	}
	if op == "+" && (l.Kind == bytecode.KindString || r.Kind == bytecode.KindString) {
		return bytecode.String(l.String() + r.String()), nil
	}
	lf, lloss, lok := toFloat(l)
	rf, rloss, rok := toFloat(r)
	if !lok || !rok {
		return bytecode.Value{}, newErr(TypeException, "%s to %s", kindName(l), kindName(r))
	}
	if lloss || rloss {
		return bytecode.Value{}, newErr(PrecisionLoss, "integer operand not representable as a safe float")
	}
	res := new(big.Float)
	switch op {
	case "+":
		res.Add(lf, rf)
	case "-":
		res.Sub(lf, rf)
	case "*":
		res.Mul(lf, rf)
	case "/":
		if rf.Sign() == 0 {
			return bytecode.Value{}, newErr(DivideByZero, "division by zero")
		}
		res.Quo(lf, rf)
	case "%":
		lv, _ := lf.Float64()
		rv, _ := rf.Float64()
		if rv == 0 {
			return bytecode.Value{}, newErr(DivideByZero, "division by zero")
		}
		res.SetFloat64(float64(int64(lv) % int64(rv)))
	}
	return bytecode.Value{Kind: bytecode.KindFloat, Float: res}, nil
}

func compare(op string, l, r bytecode.Value) (bytecode.Value, error) {
	if l.Kind == bytecode.KindInt && r.Kind == bytecode.KindInt {
		switch op {
		case "<":
			return bytecode.Bool(l.Int < r.Int), nil
		case ">":
			return bytecode.Bool(l.Int > r.Int), nil
		case "<=":
			return bytecode.Bool(l.Int <= r.Int), nil
		case ">=":
			return bytecode.Bool(l.Int >= r.Int), nil
		}
	}
	lf, lloss, lok := toFloat(l)
	rf, rloss, rok := toFloat(r)
	if !lok || !rok {
		return bytecode.Value{}, newErr(TypeException, "%s to %s", kindName(l), kindName(r))
	}
	if lloss || rloss {
		return bytecode.Value{}, newErr(PrecisionLoss, "integer operand not representable as a safe float")
	}
	cmp := lf.Cmp(rf)
	switch op {
	case "<":
		return bytecode.Bool(cmp < 0), nil
	case ">":
		return bytecode.Bool(cmp > 0), nil
	case "<=":
		return bytecode.Bool(cmp <= 0), nil
	case ">=":
		return bytecode.Bool(cmp >= 0), nil
	default:
		return bytecode.Value{}, newErr(VMError, "unknown comparison operator")
	}
}

// equal implements the original runtime's equality table: mismatched types
// (other than the numeric tower, which this VM keeps strictly typed) simply
// compare unequal instead of raising TypeException.
func equal(l, r bytecode.Value) bool {
	if l.Kind != r.Kind {
		return false
	}
	return bytecode.Equal(l, r)
}

func bitwise(op string, l, r bytecode.Value) (bytecode.Value, error) {
	if l.Kind != bytecode.KindInt || r.Kind != bytecode.KindInt {
		return bytecode.Value{}, newErr(TypeException, "%s to %s", kindName(l), kindName(r))
	}
	switch op {
	case "&":
		return bytecode.Int(l.Int & r.Int), nil
	case "|":
		return bytecode.Int(l.Int | r.Int), nil
	case "^":
		return bytecode.Int(l.Int ^ r.Int), nil
	case "<<":
		return bytecode.Int(l.Int << uint(r.Int)), nil
	case ">>":
		return bytecode.Int(l.Int >> uint(r.Int)), nil
	default:
		return bytecode.Value{}, newErr(VMError, "unknown bitwise operator")
	}
}

func logical(op string, l, r bytecode.Value) (bytecode.Value, error) {
	lb, lok := l.Truthy()
	rb, rok := r.Truthy()
	if !lok || !rok {
		return bytecode.Value{}, newErr(TypeException, "unknown to bool")
	}
	if op == "&&" {
		return bytecode.Bool(lb && rb), nil
	}
	return bytecode.Bool(lb || rb), nil
}

func negate(v bytecode.Value) (bytecode.Value, error) {
	switch v.Kind {
	case bytecode.KindInt:
		return bytecode.Int(-v.Int), nil
	case bytecode.KindFloat:
		return bytecode.Value{Kind: bytecode.KindFloat, Float: new(big.Float).Neg(v.Float)}, nil
	default:
		return bytecode.Value{}, newErr(TypeException, "%s to float or number", kindName(v))
	}
}

func not(v bytecode.Value) (bytecode.Value, error) {
	b, ok := v.Truthy()
	if !ok {
		return bytecode.Value{}, newErr(TypeException, "%s to bool", kindName(v))
	}
	return bytecode.Bool(!b), nil
}

func kindName(v bytecode.Value) string {
	switch v.Kind {
	case bytecode.KindInt:
		return "number"
	case bytecode.KindFloat:
		return "float"
	case bytecode.KindString:
		return "string"
	case bytecode.KindBool:
		return "bool"
	case bytecode.KindRef:
		return "ref"
	case bytecode.KindArray:
		return "array"
	default:
		return "null"
	}
}
