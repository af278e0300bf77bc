// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import "strings"

// MaxListLen is the element-count cap on any single List result, per §3.1/§7.
const MaxListLen = 16 * 1024 * 1024

// List is an ordered, in-place-mutable sequence of Value. Pool-backed.
type List struct {
	items []Value
	pool  *Pool
	refs  int
}

// NewConstList returns a non-pool-backed List wrapping items, for a
// compiled list-literal template embedded directly in a Function's code
// (see value.NewConstNumber). Its elements are typically unresolved
// Temp/Var/constant exprs; FullEval walks them into a fresh pool-backed
// List at execution time.
func NewConstList(items []Value) *List { return &List{items: items} }

// Items returns the underlying slice. Callers that mutate it are
// responsible for ref/unref bookkeeping on displaced/inserted elements —
// prefer Set/Append for normal use.
func (l *List) Items() []Value { return l.items }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the element at a wrapped index (negative indices count from
// the end), or an index error if out of [-n, n-1].
func (l *List) At(i int) (Value, error) {
	idx, err := wrapIndex(i, len(l.items))
	if err != nil {
		return nil, err
	}
	return l.items[idx], nil
}

// Set stores v at a wrapped index, ref'ing v and unref'ing the displaced
// element.
func (l *List) Set(i int, v Value) error {
	idx, err := wrapIndex(i, len(l.items))
	if err != nil {
		return err
	}
	unrefIfPooled(l.items[idx])
	l.items[idx] = refIfPooled(v)
	return nil
}

// Append adds v to the end, ref'ing it, and errors if the list would exceed
// MaxListLen.
func (l *List) Append(v Value) error {
	if len(l.items) >= MaxListLen {
		return limitErr("list length exceeds %d elements", MaxListLen)
	}
	l.items = append(l.items, refIfPooled(v))
	return nil
}

// Pop removes and returns the last element, transferring ownership of its
// reference to the caller (the list's own ref is not released). Errors if
// the list is empty.
func (l *List) Pop() (Value, error) {
	n := len(l.items)
	if n == 0 {
		return nil, indexErr("pop from an empty list")
	}
	last := l.items[n-1]
	l.items = l.items[:n-1]
	return last, nil
}

func wrapIndex(i, n int) (int, error) {
	if n == 0 {
		return 0, indexErr("index %d out of range for empty sequence", i)
	}
	orig := i
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, indexErr("index %d out of range [-%d, %d]", orig, n, n-1)
	}
	return i, nil
}

func (l *List) ToString(vm VM) string {
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = it.ToString(vm)
	}
	return strings.Join(parts, ", ")
}

func (l *List) CodeForm(vm VM, depth int) string {
	if depth <= 0 {
		return "[...]"
	}
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = it.CodeForm(vm, depth-1)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Hash(depth int) uint64 {
	if depth <= 0 {
		return uint64(len(l.items))
	}
	var h uint64 = 14695981039346656037
	for _, it := range l.items {
		h ^= it.Hash(depth - 1)
		h *= 1099511628211
	}
	return h
}

// Equality is deep and returns the product of element equalities; differing
// length returns 0; exhausted recursion returns 0.5 (§4.1).
func (l *List) Equality(other Value, depth int) float64 {
	o, ok := other.(*List)
	if !ok {
		return 0
	}
	if len(l.items) != len(o.items) {
		return 0
	}
	if depth <= 0 {
		return 0.5
	}
	product := 1.0
	for i := range l.items {
		product *= l.items[i].Equality(o.items[i], depth-1)
		if product == 0 {
			return 0
		}
	}
	return product
}

func (l *List) BoolValue() bool      { return len(l.items) > 0 }
func (l *List) IntValue() int64      { return 0 }
func (l *List) DoubleValue() float64 { return 0 }
func (l *List) TypeName() string     { return "list" }

func (l *List) Val(Context, bool) (Value, error) { return l, nil }

// FullEval rewrites Temp/Var elements (and recurses into nested
// List/Map literals) to their resolved values, producing the "EvalCopy"
// each literal execution needs.
func (l *List) FullEval(ctx Context) (Value, error) {
	out := make([]Value, len(l.items))
	for i, it := range l.items {
		v, err := it.FullEval(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return ctx.VM().Pool().NewList(refAll(out)), nil
}

func refAll(vs []Value) []Value {
	return RefAll(vs)
}

// RefAll calls Ref on every pool-backed element of vs in place and returns
// vs, for a caller building a new container out of Values it doesn't
// already own a reference to (e.g. handing entries out of one container
// into a freshly allocated one — see Map.Keys callers).
func RefAll(vs []Value) []Value {
	for i, v := range vs {
		vs[i] = refIfPooled(v)
	}
	return vs
}

func (l *List) Ref() Value {
	if l.pool == nil {
		return l
	}
	l.refs++
	return l
}

func (l *List) Unref() {
	if l.pool == nil {
		return
	}
	l.refs--
	if l.refs <= 0 {
		l.pool.releaseList(l)
	}
}

func (l *List) RefCount() int { return l.refs }

func indexErr(format string, args ...interface{}) error { return newIndexError(format, args...) }
func limitErr(format string, args ...interface{}) error { return newLimitError(format, args...) }
