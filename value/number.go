// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import (
	"math"
	"strconv"
)

// Number is an IEEE-754 double. Pool-backed: rebound (not mutated in place
// while held) on reuse, per §3.2.
type Number struct {
	v    float64
	pool *Pool
	refs int
}

// Zero, One, and EmptyString (in string.go) are non-pool-backed singletons:
// hot constants that would otherwise churn the pool on every comparison and
// arithmetic identity.
var (
	Zero = &Number{v: 0}
	One  = &Number{v: 1}
)

// NewConstNumber returns a non-pool-backed Number for v, suitable for a
// compiled literal operand embedded directly in a Function's code: shared
// across every Machine that runs the Function, never recycled, exactly like
// Zero/One above.
func NewConstNumber(v float64) *Number { return &Number{v: v} }

func (n *Number) ToString(VM) string {
	return formatNumber(n.v)
}

func formatNumber(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if math.IsNaN(v) {
		return "nan"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (n *Number) CodeForm(vm VM, depth int) string { return n.ToString(vm) }

func (n *Number) Hash(int) uint64 {
	return math.Float64bits(n.v)
}

func (n *Number) Equality(other Value, depth int) float64 {
	o, ok := other.(*Number)
	if !ok {
		return 0
	}
	if n.v == o.v {
		return 1
	}
	return 0
}

func (n *Number) BoolValue() bool      { return n.v != 0 }
func (n *Number) IntValue() int64      { return int64(n.v) }
func (n *Number) DoubleValue() float64 { return n.v }
func (n *Number) TypeName() string     { return "number" }

func (n *Number) Val(Context, bool) (Value, error) { return n, nil }
func (n *Number) FullEval(Context) (Value, error)  { return n, nil }

// Ref increments the reference count and returns n. Singletons (pool==nil)
// treat this as a no-op.
func (n *Number) Ref() Value {
	if n.pool == nil {
		return n
	}
	n.refs++
	return n
}

// Unref decrements the reference count; at 0 the Number is recycled.
func (n *Number) Unref() {
	if n.pool == nil {
		return
	}
	n.refs--
	if n.refs <= 0 {
		n.pool.releaseNumber(n)
	}
}

func (n *Number) RefCount() int { return n.refs }
