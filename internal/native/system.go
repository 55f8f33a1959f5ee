package native

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/mna/ore/internal/bytecode"
)

var stdin = bufio.NewReader(os.Stdin)

// overflowError tags a native error as a representation-overflow fault
// (e.g. system.exit's code exceeding MaxInt32) rather than a generic
// type mismatch, so the VM's callNative can surface it as PrecisionLoss
// instead of the generic TypeException every other native error gets.
type overflowError struct{ msg string }

func (e *overflowError) Error() string  { return e.msg }
func (e *overflowError) Overflow() bool { return true }

// BindThreadHooks wires system.thread/system.thread_exit to the owning
// Executor's scoped worker pool. spawn launches path ("unit/function") as a
// new scoped worker; requestExit sets that pool's cooperative cancellation
// flag. Both are nil until an Executor binds them; calling either native
// before that returns a plain error rather than panicking, which the VM
// reports as a TypeException like any other native error (not as VMError).
func (r *Registry) BindThreadHooks(spawn func(path string, args []bytecode.Value) error, requestExit func()) {
	r.spawn = spawn
	r.requestExit = requestExit
}

func registerSystem(r *Registry) {
	r.Register("system", "print", 1, func(args []bytecode.Value) (bytecode.Value, error) {
		fmt.Print(formatValue(args[0]))
		return bytecode.Null(), nil
	})

	r.Register("system", "exit", 1, func(args []bytecode.Value) (bytecode.Value, error) {
		if args[0].Kind != bytecode.KindInt {
			return bytecode.Value{}, fmt.Errorf("exit: exit_code not a number")
		}
		if args[0].Int > math.MaxInt32 {
			return bytecode.Value{}, &overflowError{msg: "exit: exit_code > MAX_INT32"}
		}
		os.Exit(int(args[0].Int))
		return bytecode.Null(), nil
	})

	r.Register("system", "read", 0, func(args []bytecode.Value) (bytecode.Value, error) {
		b, err := stdin.ReadByte()
		if err != nil {
			return bytecode.String(""), nil
		}
		return bytecode.String(string(rune(b))), nil
	})

	r.Register("system", "thread", 1, func(args []bytecode.Value) (bytecode.Value, error) {
		if r.spawn == nil {
			return bytecode.Value{}, fmt.Errorf("system.thread: no thread pool bound to this call")
		}
		var path string
		switch args[0].Kind {
		case bytecode.KindString:
			path = args[0].Str
		case bytecode.KindRef:
			path = args[0].Ref
		default:
			return bytecode.Value{}, fmt.Errorf("thread: path not a string")
		}
		if err := r.spawn(path, nil); err != nil {
			return bytecode.Value{}, err
		}
		return bytecode.Null(), nil
	})

	r.Register("system", "thread_exit", 0, func(args []bytecode.Value) (bytecode.Value, error) {
		if r.requestExit == nil {
			return bytecode.Value{}, fmt.Errorf("system.thread_exit: no thread pool bound to this call")
		}
		r.requestExit()
		return bytecode.Null(), nil
	})
}

func formatValue(v bytecode.Value) string {
	switch v.Kind {
	case bytecode.KindRef:
		return "<ref:" + v.Ref + ">"
	case bytecode.KindArray:
		s := "["
		for _, e := range v.Arr {
			s += formatValue(e) + ","
		}
		return s + "]"
	default:
		return v.String()
	}
}
