package native_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/bytecode"
	"github.com/mna/ore/internal/native"
)

func TestRegistryLookupBareNameAndPath(t *testing.T) {
	r := native.NewRegistry()

	arity, ok := r.Lookup("print")
	require.True(t, ok)
	assert.Equal(t, 1, arity)

	arity, ok = r.Lookup("system.print")
	require.True(t, ok)
	assert.Equal(t, 1, arity)

	arity, ok = r.Lookup("system/print")
	require.True(t, ok)
	assert.Equal(t, 1, arity)

	_, ok = r.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestRegistryCallArityMismatch(t *testing.T) {
	r := native.NewRegistry()
	_, err := r.Call("system.print", nil)
	assert.Error(t, err)
}

func TestRegistryCallUnknownPath(t *testing.T) {
	r := native.NewRegistry()
	_, err := r.Call("nope.nope", []bytecode.Value{bytecode.Int(1)})
	assert.Error(t, err)
}

func TestRegistryCustomRegisterOverridesNothingButAddsByName(t *testing.T) {
	r := native.NewRegistry()
	r.Register("custom", "greet", 1, func(args []bytecode.Value) (bytecode.Value, error) {
		return bytecode.String("hello " + args[0].Str), nil
	})

	v, err := r.Call("custom.greet", []bytecode.Value{bytecode.String("world")})
	require.NoError(t, err)
	assert.Equal(t, bytecode.String("hello world"), v)

	v, err = r.Call("greet", []bytecode.Value{bytecode.String("there")})
	require.NoError(t, err)
	assert.Equal(t, bytecode.String("hello there"), v)
}

func TestRegistryThreadHooksErrorBeforeBinding(t *testing.T) {
	r := native.NewRegistry()
	_, err := r.Call("system.thread", []bytecode.Value{bytecode.String("main/worker")})
	assert.Error(t, err)

	_, err = r.Call("system.thread_exit", nil)
	assert.Error(t, err)
}
