package native

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/mna/ore/internal/bytecode"
)

func registerType(r *Registry) {
	r.Register("type", "to_number", 1, func(args []bytecode.Value) (bytecode.Value, error) {
		switch args[0].Kind {
		case bytecode.KindString:
			n, err := strconv.ParseInt(args[0].Str, 10, 64)
			if err != nil {
				return bytecode.Value{}, fmt.Errorf("to_number: %q is not an integer", args[0].Str)
			}
			return bytecode.Int(n), nil
		case bytecode.KindFloat:
			f, _ := args[0].Float.Int64()
			return bytecode.Int(f), nil
		default:
			return bytecode.Value{}, fmt.Errorf("to_number: value not a string or float")
		}
	})

	r.Register("type", "to_float", 1, func(args []bytecode.Value) (bytecode.Value, error) {
		switch args[0].Kind {
		case bytecode.KindString:
			f, ok := new(big.Float).SetString(args[0].Str)
			if !ok {
				return bytecode.Value{}, fmt.Errorf("to_float: %q is not a number", args[0].Str)
			}
			return bytecode.Value{Kind: bytecode.KindFloat, Float: f}, nil
		case bytecode.KindInt:
			return bytecode.Float(float64(args[0].Int)), nil
		default:
			return bytecode.Value{}, fmt.Errorf("to_float: value not a string or number")
		}
	})

	r.Register("type", "check_type", 1, func(args []bytecode.Value) (bytecode.Value, error) {
		switch args[0].Kind {
		case bytecode.KindString:
			return bytecode.String("string"), nil
		case bytecode.KindFloat:
			return bytecode.String("float"), nil
		case bytecode.KindInt:
			return bytecode.String("number"), nil
		case bytecode.KindBool:
			return bytecode.String("bool"), nil
		case bytecode.KindArray:
			return bytecode.String("array"), nil
		case bytecode.KindRef:
			return bytecode.String("ref"), nil
		default:
			return bytecode.String("null"), nil
		}
	})
}
