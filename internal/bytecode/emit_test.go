package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/bytecode"
	"github.com/mna/ore/internal/parser"
	"github.com/mna/ore/internal/ssa"
)

func emitSrc(t *testing.T, src string) *bytecode.Unit {
	t.Helper()
	root, err := parser.Parse([]byte(src), "main")
	require.NoError(t, err)
	code, _, err := ssa.Lower(root, "main", nil, nil)
	require.NoError(t, err)
	return bytecode.Emit(code, "main")
}

func TestEmitPureSelfRecursiveFunctionIsMarkedPure(t *testing.T) {
	u := emitSrc(t, `
function fib(n) {
	if (n < 2) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}
`)
	idx := u.FuncIndex("fib")
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, u.Funcs[idx].Pure)
}

func TestEmitGlobalTouchingFunctionIsNotPure(t *testing.T) {
	u := emitSrc(t, `
var counter = 0;
function bump() {
	counter += 1;
	return counter;
}
`)
	idx := u.FuncIndex("bump")
	require.GreaterOrEqual(t, idx, 0)
	assert.False(t, u.Funcs[idx].Pure)
}

func TestEmitMutualRecursionIsNotPure(t *testing.T) {
	u := emitSrc(t, `
function isEven(n) {
	if (n == 0) {
		return true;
	}
	return isOdd(n - 1);
}
function isOdd(n) {
	if (n == 0) {
		return false;
	}
	return isEven(n - 1);
}
`)
	idx := u.FuncIndex("isEven")
	require.GreaterOrEqual(t, idx, 0)
	assert.False(t, u.Funcs[idx].Pure)
}

func TestEmitNativeFunctionHasNoCode(t *testing.T) {
	u := emitSrc(t, `native print(msg);`)
	idx := u.FuncIndex("print")
	require.GreaterOrEqual(t, idx, 0)
	mi := u.Funcs[idx]
	assert.True(t, mi.IsNative)
	assert.Nil(t, u.FuncCode[idx])
}

func TestEmitConstPoolDeduplicatesRepeatedLiteral(t *testing.T) {
	u := emitSrc(t, `
function twice() {
	var a = "same";
	var b = "same";
	return a;
}
`)
	// "same" should be interned exactly once despite appearing twice in source.
	count := 0
	for _, v := range u.Consts.All() {
		if v.Kind == bytecode.KindString && v.Str == "same" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
