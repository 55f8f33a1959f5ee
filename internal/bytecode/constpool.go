package bytecode

import "golang.org/x/exp/slices"

// ConstPool is a deduplicated table of constant Values referenced by Push
// instructions via index.
type ConstPool struct {
	values []Value
}

// Intern returns v's index in the pool, appending it if this is the first
// occurrence. Deduplication uses slices.IndexFunc over Equal rather than a
// map, since Value (carrying a *big.Float) is not comparable/hashable.
func (p *ConstPool) Intern(v Value) int {
	if idx := slices.IndexFunc(p.values, func(o Value) bool { return Equal(o, v) }); idx >= 0 {
		return idx
	}
	p.values = append(p.values, v)
	return len(p.values) - 1
}

// At returns the constant stored at idx.
func (p *ConstPool) At(idx int) Value { return p.values[idx] }

// Len returns the number of distinct constants interned.
func (p *ConstPool) Len() int { return len(p.values) }

// All returns the pool's constants in interning order.
func (p *ConstPool) All() []Value { return p.values }
