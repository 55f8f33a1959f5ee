package memo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/bytecode"
	"github.com/mna/ore/internal/memo"
)

func TestKeyScalarArgsAreStable(t *testing.T) {
	k1, ok := memo.Key("main", "fib", []bytecode.Value{bytecode.Int(10)})
	require.True(t, ok)
	k2, ok := memo.Key("main", "fib", []bytecode.Value{bytecode.Int(10)})
	require.True(t, ok)
	assert.Equal(t, k1, k2)

	k3, ok := memo.Key("main", "fib", []bytecode.Value{bytecode.Int(11)})
	require.True(t, ok)
	assert.NotEqual(t, k1, k3)
}

func TestKeyRejectsNonScalarArgs(t *testing.T) {
	_, ok := memo.Key("main", "f", []bytecode.Value{bytecode.Array(nil)})
	assert.False(t, ok)

	_, ok = memo.Key("main", "f", []bytecode.Value{bytecode.Float(1.5)})
	assert.False(t, ok)
}

func TestKeyAcceptsRefArgs(t *testing.T) {
	k1, ok := memo.Key("main", "f", []bytecode.Value{bytecode.Ref("main/g")})
	require.True(t, ok)

	k2, ok := memo.Key("main", "f", []bytecode.Value{bytecode.Ref("main/h")})
	require.True(t, ok)

	assert.NotEqual(t, k1, k2)
}

func TestCacheGetPutFirstWriterWins(t *testing.T) {
	c := memo.New()
	key, ok := memo.Key("main", "f", []bytecode.Value{bytecode.Int(1)})
	require.True(t, ok)

	_, found := c.Get(key)
	assert.False(t, found)

	c.Put(key, bytecode.Int(42))
	v, found := c.Get(key)
	require.True(t, found)
	assert.Equal(t, bytecode.Int(42), v)

	// a second Put for the same key must not overwrite the first value
	c.Put(key, bytecode.Int(99))
	v, found = c.Get(key)
	require.True(t, found)
	assert.Equal(t, bytecode.Int(42), v)

	assert.Equal(t, 1, c.Len())
}
