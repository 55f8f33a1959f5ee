package ssa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/parser"
	"github.com/mna/ore/internal/ssa"
)

func TestLowerFoldsConstantArithmetic(t *testing.T) {
	root, err := parser.Parse([]byte(`
function f() {
	return 2 + 3 * 4;
}
`), "main")
	require.NoError(t, err)
	code, _, err := ssa.Lower(root, "main", nil, nil)
	require.NoError(t, err)

	fn := code.Funcs[code.FuncIndex("f")]
	codes := fn.Opcodes.All()
	// folded to a single Push(14) followed by Return, then the implicit
	// Push(null)+Return every function body ends with: no Add/Mul opcodes
	// should survive lowering.
	for _, op := range codes {
		assert.NotEqual(t, ssa.Mul, op.Op)
		assert.NotEqual(t, ssa.Add, op.Op)
	}
	require.Len(t, codes, 4)
	assert.Equal(t, ssa.Push, codes[0].Op)
	assert.Equal(t, int64(14), codes[0].Value.Int)
}

func TestLowerUndefinedSymbolIsError(t *testing.T) {
	root, err := parser.Parse([]byte(`
function f() {
	return undefinedVar;
}
`), "main")
	require.NoError(t, err)
	_, _, err = ssa.Lower(root, "main", nil, nil)
	assert.Error(t, err)
}

func TestLowerDuplicateFunctionIsError(t *testing.T) {
	root, err := parser.Parse([]byte(`
function f() { return 1; }
function f() { return 2; }
`), "main")
	require.NoError(t, err)
	_, _, err = ssa.Lower(root, "main", nil, nil)
	assert.Error(t, err)
}
