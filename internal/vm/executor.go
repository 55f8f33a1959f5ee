// Package vm executes a bytecode.Unit: a single-loop, explicit-call-stack
// dispatcher mirroring the source runtime's interpretive loop rather than
// recursing through Go's own call stack for each ore-level function call.
package vm

import (
	"fmt"
	"strings"

	"github.com/mna/ore/internal/bytecode"
	"github.com/mna/ore/internal/concurrency"
	"github.com/mna/ore/internal/memo"
	"github.com/mna/ore/internal/ssa"
)

// NativeRegistry resolves and invokes a native function by path (either a
// bare name, for a local `native function` declaration, or a
// "module.function"/"module/function" path for an imported native module).
type NativeRegistry interface {
	Call(path string, args []bytecode.Value) (bytecode.Value, error)
}

// Executor runs one top-level call (and everything it transitively calls)
// against a shared Program. It is not safe for concurrent use by multiple
// goroutines directly; system.thread spawns a fresh Executor per worker
// (see Spawn) sharing the same Program, SyncTable and Memo.
type Executor struct {
	prog    *Program
	natives NativeRegistry
	sync    *concurrency.SyncTable
	threads *concurrency.ThreadManager
	memo    *memo.Cache

	frames []*frame
}

// NewExecutor creates an Executor. sync, threads and memoCache may be nil,
// in which case sync functions run unlocked, system.thread/thread_exit
// report an error, and pure functions are never memoized, respectively.
func NewExecutor(prog *Program, natives NativeRegistry, sync *concurrency.SyncTable, threads *concurrency.ThreadManager, memoCache *memo.Cache) *Executor {
	e := &Executor{prog: prog, natives: natives, sync: sync, threads: threads, memo: memoCache}
	e.bindThreads()
	return e
}

// threadBinder is satisfied by *native.Registry; matched structurally so
// this package does not import native.
type threadBinder interface {
	BindThreadHooks(spawn func(path string, args []bytecode.Value) error, requestExit func())
}

func (e *Executor) bindThreads() {
	if e.threads == nil {
		return
	}
	tb, ok := e.natives.(threadBinder)
	if !ok {
		return
	}
	tb.BindThreadHooks(
		func(path string, args []bytecode.Value) error { return e.Spawn(e.threads, path, args) },
		func() { e.threads.RequestExit() },
	)
}

// RunRoot executes unit's root-level statements once, in program load order.
func (e *Executor) RunRoot(unitName string) error {
	u, ok := e.prog.Unit(unitName)
	if !ok {
		return newErr(NoSuchFunction, "unknown unit %s", unitName)
	}
	e.frames = append(e.frames, &frame{unit: unitName, fn: "<root>", code: u.Root, pool: &u.Consts})
	_, err := e.run()
	return err
}

// Call invokes unit/function with args and runs it to completion.
func (e *Executor) Call(unitName, funcName string, args []bytecode.Value) (bytecode.Value, error) {
	u, ok := e.prog.Unit(unitName)
	if !ok {
		return e.callNative(unitName, funcName, args)
	}
	idx := u.FuncIndex(funcName)
	if idx < 0 {
		return bytecode.Null(), newErr(NoSuchFunction, "%s/%s", unitName, funcName)
	}
	mi := u.Funcs[idx]
	if mi.IsNative {
		return e.callNative("", mi.Name, args)
	}
	if v, found, err := e.memoLookup(unitName, mi, args); found {
		return v, err
	}
	e.pushFrame(unitName, u, idx, args)
	v, err := e.run()
	if err == nil {
		e.memoStore(unitName, mi, args, v)
	}
	return v, err
}

// Spawn starts "unit/function" as a new scoped worker on a fresh Executor
// that shares this Executor's Program, SyncTable and Memo, tracked by
// threads so the caller's top-level call can wait for it. It backs
// system.thread.
func (e *Executor) Spawn(threads *concurrency.ThreadManager, path string, args []bytecode.Value) error {
	unitName, funcName, ok := splitPath(path)
	if !ok {
		return newErr(TypeException, "thread: path should be \"file/func\"")
	}
	worker := NewExecutor(e.prog, e.natives, e.sync, threads, e.memo)
	threads.Go(func() {
		_, _ = worker.Call(unitName, funcName, args)
	})
	return nil
}

// overflowErr is satisfied by internal/native's overflow-tagged errors
// (e.g. system.exit's out-of-range code); matched structurally so this
// package does not import native, matching threadBinder's reasoning above.
type overflowErr interface {
	Overflow() bool
}

func (e *Executor) callNative(unitName, name string, args []bytecode.Value) (bytecode.Value, error) {
	if e.natives == nil {
		return bytecode.Value{}, newErr(NoSuchFunction, "no native registry bound")
	}
	path := name
	if unitName != "" {
		path = unitName + "." + name
	}
	v, err := e.natives.Call(path, args)
	if err != nil {
		if oe, ok := err.(overflowErr); ok && oe.Overflow() {
			return bytecode.Value{}, newErr(PrecisionLoss, "%v", err)
		}
		return bytecode.Value{}, newErr(TypeException, "%v", err)
	}
	return v, nil
}

func (e *Executor) memoLookup(unitName string, mi bytecode.MethodInfo, args []bytecode.Value) (bytecode.Value, bool, error) {
	if !mi.Pure || e.memo == nil {
		return bytecode.Value{}, false, nil
	}
	key, ok := memo.Key(unitName, mi.Name, args)
	if !ok {
		return bytecode.Value{}, false, nil
	}
	v, found := e.memo.Get(key)
	return v, found, nil
}

func (e *Executor) memoStore(unitName string, mi bytecode.MethodInfo, args []bytecode.Value, v bytecode.Value) {
	if !mi.Pure || e.memo == nil {
		return
	}
	if key, ok := memo.Key(unitName, mi.Name, args); ok {
		e.memo.Put(key, v)
	}
}

func (e *Executor) pushFrame(unitName string, u *bytecode.Unit, idx int, args []bytecode.Value) {
	mi := u.Funcs[idx]
	locals := make([]bytecode.Value, len(args))
	copy(locals, args)
	f := &frame{unit: unitName, fn: mi.Name, code: u.FuncCode[mi.Addr], pool: &u.Consts, locals: locals}
	if mi.IsSync && e.sync != nil {
		e.sync.Lock(concurrency.FuncKey{Unit: unitName, Func: mi.Name}, e)
		f.synced = true
	}
	e.frames = append(e.frames, f)
}

func (e *Executor) popFrame(result bytecode.Value) {
	top := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	if top.synced && e.sync != nil {
		e.sync.Unlock(concurrency.FuncKey{Unit: top.unit, Func: top.fn}, e)
	}
	if len(e.frames) > 0 {
		e.frames[len(e.frames)-1].push(result)
	}
}

// unwind runs when run's dispatch loop faults: it pops every remaining
// frame off the call stack, releasing each one's sync lock (so a failed
// call never leaves a sync-annotated function's reentrant lock held
// forever in the shared SyncTable), and appends a "\t at unit/fn" trace
// from innermost to outermost frame to err.
func (e *Executor) unwind(err error) error {
	var trace strings.Builder
	for len(e.frames) > 0 {
		top := e.frames[len(e.frames)-1]
		e.frames = e.frames[:len(e.frames)-1]
		if top.synced && e.sync != nil {
			e.sync.Unlock(concurrency.FuncKey{Unit: top.unit, Func: top.fn}, e)
		}
		fmt.Fprintf(&trace, "\n\t at %s/%s", top.unit, top.fn)
	}
	if trace.Len() == 0 {
		return err
	}
	return fmt.Errorf("%w%s", err, trace.String())
}

func splitPath(path string) (unit, fn string, ok bool) {
	i := strings.IndexByte(path, '/')
	if i < 0 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

// run drains the executor's call stack, returning the value of the
// outermost frame's Return once the stack empties.
func (e *Executor) run() (bytecode.Value, error) {
	var last bytecode.Value = bytecode.Null()
	for len(e.frames) > 0 {
		if e.threads != nil && e.threads.ExitRequested() {
			return last, nil
		}
		top := e.frames[len(e.frames)-1]
		if top.done() {
			last = bytecode.Null()
			e.popFrame(last)
			continue
		}
		instr := top.current()
		switch instr.Op {
		case ssa.Nop:
			top.pc++

		case ssa.Push:
			v := top.pool.At(instr.Const)
			if v.Kind == bytecode.KindRef && v.Ref == "this" {
				v = bytecode.Ref(top.unit)
			}
			top.push(v)
			top.pc++

		case ssa.PopN:
			if _, err := top.popN(instr.Len); err != nil {
				return last, e.unwind(err)
			}
			top.pc++

		case ssa.LoadLocal:
			v, err := top.local(instr.Local)
			if err != nil {
				return last, e.unwind(err)
			}
			top.push(v)
			top.pc++

		case ssa.StoreLocal:
			v, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			top.setLocal(instr.Local, v)
			top.pc++

		case ssa.LoadGlobal:
			top.push(e.prog.globals[top.unit][instr.Global])
			top.pc++

		case ssa.StoreGlobal:
			v, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			e.prog.globals[top.unit][instr.Global] = v
			top.pc++

		case ssa.AddLocalImm:
			cur, err := top.local(instr.Local)
			if err != nil {
				return last, e.unwind(err)
			}
			res, err := arith("+", cur, top.pool.At(instr.Const))
			if err != nil {
				return last, e.unwind(err)
			}
			top.setLocal(instr.Local, res)
			top.pc++

		case ssa.AddGlobalImm:
			cur := e.prog.globals[top.unit][instr.Global]
			res, err := arith("+", cur, top.pool.At(instr.Const))
			if err != nil {
				return last, e.unwind(err)
			}
			e.prog.globals[top.unit][instr.Global] = res
			top.pc++

		case ssa.ArrayNew:
			vals, err := top.popN(instr.Len)
			if err != nil {
				return last, e.unwind(err)
			}
			top.push(bytecode.Array(vals))
			top.pc++

		case ssa.ArrayGet:
			idx, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			arr, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			v, err := arrayIndex(arr, idx)
			if err != nil {
				return last, e.unwind(err)
			}
			top.push(v)
			top.pc++

		case ssa.ArraySet:
			val, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			idx, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			arr, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			if arr.Kind != bytecode.KindArray || idx.Kind != bytecode.KindInt {
				return last, e.unwind(newErr(TypeException, "index assignment target is not an array"))
			}
			if idx.Int < 0 || int(idx.Int) >= len(arr.Arr) {
				return last, e.unwind(newErr(IndexOutOfBounds, "index %d out of range", idx.Int))
			}
			arr.Arr[idx.Int] = val
			top.push(val)
			top.pc++

		case ssa.Add, ssa.Sub, ssa.Mul, ssa.Div, ssa.Mod,
			ssa.Lt, ssa.Gt, ssa.Le, ssa.Ge,
			ssa.Eq, ssa.Neq, ssa.And, ssa.Or,
			ssa.BitAnd, ssa.BitOr, ssa.BitXor, ssa.Shl, ssa.Shr:
			r, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			l, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			v, err := binaryOp(instr.Op, l, r)
			if err != nil {
				return last, e.unwind(err)
			}
			top.push(v)
			top.pc++

		case ssa.Not:
			v, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			res, err := not(v)
			if err != nil {
				return last, e.unwind(err)
			}
			top.push(res)
			top.pc++

		case ssa.Neg, ssa.Pos:
			v, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			if instr.Op == ssa.Pos {
				top.push(v)
			} else {
				res, err := negate(v)
				if err != nil {
					return last, e.unwind(err)
				}
				top.push(res)
			}
			top.pc++

		case ssa.Jump:
			top.pc = instr.Target

		case ssa.JumpIfFalse, ssa.JumpIfTrue:
			v, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			b, ok := v.Truthy()
			if !ok {
				return last, e.unwind(newErr(TypeException, "%s to bool", kindName(v)))
			}
			if (instr.Op == ssa.JumpIfFalse) == !b {
				top.pc = instr.Target
			} else {
				top.pc++
			}

		case ssa.LazyJump:
			return last, e.unwind(newErr(VMError, "unresolved lazy jump in %s/%s", top.unit, top.fn))

		case ssa.GetRef:
			r, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			l, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			if l.Kind != bytecode.KindRef || r.Kind != bytecode.KindRef {
				return last, e.unwind(newErr(VMError, "GetRef operands must be references"))
			}
			top.push(bytecode.Ref(l.Ref + "/" + r.Ref))
			top.pc++

		case ssa.Call:
			if err := e.dispatchCall(top, instr); err != nil {
				return last, e.unwind(err)
			}

		case ssa.Return:
			v, err := top.pop()
			if err != nil {
				return last, e.unwind(err)
			}
			last = v
			e.popFrame(v)

		default:
			return last, e.unwind(newErr(VMError, "unhandled opcode %v", instr.Op))
		}
	}
	return last, nil
}

// dispatchCall resolves and performs one Call instruction: the callee Ref
// was left on top's stack by the preceding Push/GetRef sequence, and its
// Len arguments below that.
func (e *Executor) dispatchCall(top *frame, instr bytecode.Instr) error {
	// lowerCall pushes the callee Ref, then the arguments on top of it, so
	// the operand stack (bottom to top) reads [callee, arg0, ..., argN-1].
	args, err := top.popN(instr.Len)
	if err != nil {
		return err
	}
	calleeVal, err := top.pop()
	if err != nil {
		return err
	}
	if calleeVal.Kind != bytecode.KindRef {
		return newErr(VMError, "call target is not a reference")
	}

	unitName, funcName, hasUnit := splitPath(calleeVal.Ref)
	if !hasUnit {
		unitName, funcName = top.unit, calleeVal.Ref
	}

	u, ok := e.prog.Unit(unitName)
	if !ok {
		v, err := e.callNative(unitName, funcName, args)
		if err != nil {
			return err
		}
		top.push(v)
		top.pc++
		return nil
	}
	idx := u.FuncIndex(funcName)
	if idx < 0 {
		return newErr(NoSuchFunction, "%s/%s", unitName, funcName)
	}
	mi := u.Funcs[idx]
	if mi.IsNative {
		v, err := e.callNative("", mi.Name, args)
		if err != nil {
			return err
		}
		top.push(v)
		top.pc++
		return nil
	}
	if v, found, err := e.memoLookup(unitName, mi, args); found {
		if err != nil {
			return err
		}
		top.push(v)
		top.pc++
		return nil
	}
	top.pc++
	e.pushFrame(unitName, u, idx, args)
	return nil
}

func arrayIndex(arr, idx bytecode.Value) (bytecode.Value, error) {
	if arr.Kind != bytecode.KindArray {
		return bytecode.Value{}, newErr(TypeException, "%s is not an array", kindName(arr))
	}
	if idx.Kind != bytecode.KindInt {
		return bytecode.Value{}, newErr(TypeException, "array index must be a number")
	}
	if idx.Int < 0 || int(idx.Int) >= len(arr.Arr) {
		return bytecode.Value{}, newErr(IndexOutOfBounds, "index %d out of range", idx.Int)
	}
	return arr.Arr[idx.Int], nil
}

func binaryOp(op ssa.Op, l, r bytecode.Value) (bytecode.Value, error) {
	switch op {
	case ssa.Add:
		return arith("+", l, r)
	case ssa.Sub:
		return arith("-", l, r)
	case ssa.Mul:
		return arith("*", l, r)
	case ssa.Div:
		return arith("/", l, r)
	case ssa.Mod:
		return arith("%", l, r)
	case ssa.Lt:
		return compare("<", l, r)
	case ssa.Gt:
		return compare(">", l, r)
	case ssa.Le:
		return compare("<=", l, r)
	case ssa.Ge:
		return compare(">=", l, r)
	case ssa.Eq:
		return bytecode.Bool(equal(l, r)), nil
	case ssa.Neq:
		return bytecode.Bool(!equal(l, r)), nil
	case ssa.And:
		return logical("&&", l, r)
	case ssa.Or:
		return logical("||", l, r)
	case ssa.BitAnd:
		return bitwise("&", l, r)
	case ssa.BitOr:
		return bitwise("|", l, r)
	case ssa.BitXor:
		return bitwise("^", l, r)
	case ssa.Shl:
		return bitwise("<<", l, r)
	case ssa.Shr:
		return bitwise(">>", l, r)
	default:
		return bytecode.Value{}, newErr(VMError, "unknown binary opcode %v", op)
	}
}
