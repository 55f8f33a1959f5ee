package embed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/bytecode"
	"github.com/mna/ore/internal/embed"
)

func TestHandleCompileAndRunRoot(t *testing.T) {
	h := embed.Init()
	defer h.Free()

	h.AddFile("main.ore", []byte(`
var greeting = "hi";
`))
	require.Equal(t, embed.Success, h.Compile())
	require.Equal(t, embed.Success, h.InitializeExecutor(context.Background()))
}

func TestHandleCallFunction(t *testing.T) {
	h := embed.Init()
	defer h.Free()

	h.AddFile("main.ore", []byte(`
function add(a, b) {
	return a + b;
}
`))
	require.Equal(t, embed.Success, h.Compile())

	v, status := h.CallFunction(context.Background(), "main", "add", []bytecode.Value{bytecode.Int(2), bytecode.Int(3)})
	require.Equal(t, embed.Success, status)
	assert.Equal(t, bytecode.Int(5), v)
}

func TestHandleCompileParseError(t *testing.T) {
	h := embed.Init()
	defer h.Free()

	h.AddFile("main.ore", []byte(`function ( { `))
	status := h.Compile()
	assert.Equal(t, embed.ParseError, status)
	assert.Error(t, h.Err())
}

func TestHandleUnitNameStripsExtension(t *testing.T) {
	h := embed.Init()
	defer h.Free()

	h.AddFile("/some/path/to/script.ore", []byte(`function f() { return 1; }`))
	require.Equal(t, embed.Success, h.Compile())

	v, status := h.CallFunction(context.Background(), "script", "f", nil)
	require.Equal(t, embed.Success, status)
	assert.Equal(t, bytecode.Int(1), v)
}

func TestHandleMultiFileCrossUnitCall(t *testing.T) {
	h := embed.Init()
	defer h.Free()

	h.AddFile("helper.ore", []byte(`
function double(n) {
	return n * 2;
}
`))
	h.AddFile("main.ore", []byte(`
import helper;
function useHelper(n) {
	return helper.double(n);
}
`))
	require.Equal(t, embed.Success, h.Compile())

	v, status := h.CallFunction(context.Background(), "main", "useHelper", []bytecode.Value{bytecode.Int(21)})
	require.Equal(t, embed.Success, status)
	assert.Equal(t, bytecode.Int(42), v)
}

func TestHandleCompileUnknownImportIsError(t *testing.T) {
	h := embed.Init()
	defer h.Free()

	h.AddFile("main.ore", []byte(`
import nosuchlib;
`))
	status := h.Compile()
	assert.Equal(t, embed.ParseError, status)
	assert.Error(t, h.Err())
}

func TestHandleCallFunctionRuntimeError(t *testing.T) {
	h := embed.Init()
	defer h.Free()

	h.AddFile("main.ore", []byte(`function f() { return 1; }`))
	require.Equal(t, embed.Success, h.Compile())

	_, status := h.CallFunction(context.Background(), "main", "missing", nil)
	assert.Equal(t, embed.RuntimeError, status)
	assert.Error(t, h.Err())
}
