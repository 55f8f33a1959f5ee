package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/bytecode"
	"github.com/mna/ore/internal/native"
	"github.com/mna/ore/internal/parser"
	"github.com/mna/ore/internal/ssa"
	"github.com/mna/ore/internal/vm"
)

// compileUnit parses, lowers and emits src as a unit named name, failing the
// test on any compile error.
func compileUnit(t *testing.T, name, src string) *bytecode.Unit {
	t.Helper()
	root, err := parser.Parse([]byte(src), name)
	require.NoError(t, err)
	code, _, err := ssa.Lower(root, name, nil, nil)
	require.NoError(t, err)
	return bytecode.Emit(code, name)
}

func newExecutor(units ...*bytecode.Unit) *vm.Executor {
	prog := vm.NewProgram()
	for _, u := range units {
		prog.Add(u)
	}
	return vm.NewExecutor(prog, native.NewRegistry(), nil, nil, nil)
}

func TestExecutorCallSimpleArithmetic(t *testing.T) {
	u := compileUnit(t, "main", `
function add(a, b) {
	return a + b;
}
`)
	ex := newExecutor(u)
	v, err := ex.Call("main", "add", []bytecode.Value{bytecode.Int(2), bytecode.Int(3)})
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(5), v)
}

func TestExecutorRecursiveFibonacci(t *testing.T) {
	u := compileUnit(t, "main", `
function fib(n) {
	if (n < 2) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}
`)
	ex := newExecutor(u)
	v, err := ex.Call("main", "fib", []bytecode.Value{bytecode.Int(10)})
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(55), v)
}

func TestExecutorIterativeLoop(t *testing.T) {
	u := compileUnit(t, "main", `
function sumTo(n) {
	var total = 0;
	for (var i = 0; i <= n; i++) {
		total += i;
	}
	return total;
}
`)
	ex := newExecutor(u)
	v, err := ex.Call("main", "sumTo", []bytecode.Value{bytecode.Int(10)})
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(55), v)
}

func TestExecutorArrayIndexAndAssign(t *testing.T) {
	u := compileUnit(t, "main", `
function touch() {
	var xs = [1, 2, 3];
	xs[1] = 99;
	return xs[1];
}
`)
	ex := newExecutor(u)
	v, err := ex.Call("main", "touch", nil)
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(99), v)
}

func TestExecutorCollatzSteps(t *testing.T) {
	u := compileUnit(t, "main", `
function steps(n) {
	var count = 0;
	while (n != 1) {
		if (n % 2 == 0) {
			n = n / 2;
		} else {
			n = 3 * n + 1;
		}
		count += 1;
	}
	return count;
}
`)
	ex := newExecutor(u)
	v, err := ex.Call("main", "steps", []bytecode.Value{bytecode.Int(27)})
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(111), v)
}

func TestExecutorBreakAndContinue(t *testing.T) {
	u := compileUnit(t, "main", `
function countEvens(n) {
	var count = 0;
	for (var i = 0; i < n; i++) {
		if (i % 2 != 0) {
			continue;
		}
		if (i >= 100) {
			break;
		}
		count += 1;
	}
	return count;
}
`)
	ex := newExecutor(u)
	v, err := ex.Call("main", "countEvens", []bytecode.Value{bytecode.Int(10)})
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(5), v)
}

func TestExecutorRunRootGlobals(t *testing.T) {
	u := compileUnit(t, "main", `
var x = 41;
x += 1;
`)
	ex := newExecutor(u)
	err := ex.RunRoot("main")
	require.NoError(t, err)
}

func TestExecutorCallUnknownFunctionErrors(t *testing.T) {
	u := compileUnit(t, "main", `function f() { return 1; }`)
	ex := newExecutor(u)
	_, err := ex.Call("main", "nope", nil)
	assert.Error(t, err)
}

func TestExecutorNativeSystemPrint(t *testing.T) {
	u := compileUnit(t, "main", `
import system;
function run() {
	system.print("hi");
	return 1;
}
`)
	ex := newExecutor(u)
	v, err := ex.Call("main", "run", nil)
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(1), v)
}

func TestExecutorCallCrossUnitViaImport(t *testing.T) {
	helper := compileUnit(t, "helper", `
function double(n) {
	return n * 2;
}
`)
	main := compileUnit(t, "main", `
import helper;
function callsHelper(n) {
	return helper.double(n);
}
`)
	ex := newExecutor(helper, main)
	v, err := ex.Call("main", "callsHelper", []bytecode.Value{bytecode.Int(4)})
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(8), v)
}

func TestExecutorCallViaThisWithinSameUnit(t *testing.T) {
	main := compileUnit(t, "main", `
function callsSelf(n) {
	return this.callsSelf2(n);
}
function callsSelf2(n) {
	return n + 1;
}
`)
	ex := newExecutor(main)
	v, err := ex.Call("main", "callsSelf", []bytecode.Value{bytecode.Int(4)})
	require.NoError(t, err)
	assert.Equal(t, bytecode.Int(5), v)
}
