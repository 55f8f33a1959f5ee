// Package memo caches the results of pure self-recursive function calls,
// keyed by a snapshot of their scalar argument values. The VM consults the
// cache before every call to such a function, recursive calls included, but
// records a result only when a top-level Executor.Call returns; results of
// the nested recursive calls inside it are not recorded.
package memo

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dolthub/swiss"

	"github.com/mna/ore/internal/bytecode"
)

// Cache is a concurrency-safe, first-writer-wins memoization table shared
// by every Executor invocation within one embedding handle's lifetime.
// It is backed by a swiss.Map rather than the standard library's map both
// because that is this module's chosen general-purpose hash map (see the
// grounding ledger) and because Count() gives Len a cheap cache-size
// diagnostic.
type Cache struct {
	mu sync.Mutex
	m  *swiss.Map[string, bytecode.Value]
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{m: swiss.NewMap[string, bytecode.Value](64)}
}

// Key builds the cache key for a call to unit/function with the given
// scalar arguments. The key-safe scalar kinds are Int, Bool, String, Ref
// and Null; ok is false if any argument is Float (not a stable key: two
// equal-within-epsilon Floats may format differently) or Array (not
// hashable at all).
func Key(unit, function string, args []bytecode.Value) (key string, ok bool) {
	var b strings.Builder
	b.WriteString(unit)
	b.WriteByte('/')
	b.WriteString(function)
	for _, a := range args {
		b.WriteByte(':')
		switch a.Kind {
		case bytecode.KindInt:
			fmt.Fprintf(&b, "i%d", a.Int)
		case bytecode.KindString:
			fmt.Fprintf(&b, "s%q", a.Str)
		case bytecode.KindBool:
			fmt.Fprintf(&b, "b%t", a.Bool)
		case bytecode.KindRef:
			fmt.Fprintf(&b, "r%s", a.Ref)
		case bytecode.KindNull:
			b.WriteString("n")
		default:
			return "", false
		}
	}
	return b.String(), true
}

// Get looks up a previously memoized result.
func (c *Cache) Get(key string) (bytecode.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Get(key)
}

// Put records a result for key, unless one is already present: the first
// writer for a given key wins, matching the source runtime's behavior when
// two concurrent calls race to memoize the same arguments.
func (c *Cache) Put(key string, v bytecode.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m.Has(key) {
		return
	}
	c.m.Put(key, v)
}

// Len reports the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Count()
}
