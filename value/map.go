// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import "strings"

// IsaKey is the reserved prototype-chain key. It is always the interned
// "__isa" String singleton (see intern.go).
const IsaKey = "__isa"

// mapEntry is one insertion-ordered (key, value) pair.
type mapEntry struct {
	key Value
	val Value
}

// Map is an insertion-ordered, structurally-keyed mapping Value→Value.
// Replacing a key by structural equality does not change its position.
// Pool-backed.
type Map struct {
	entries []mapEntry
	// index speeds up lookup by the key's Hash(1); collisions are resolved
	// by a linear scan within the bucket plus a full structural Equality
	// check, matching the fuzzy-equality-based keying rule of §3.2.
	index map[uint64][]int
	pool  *Pool
	refs  int
}

// NewConstMap returns an empty, non-pool-backed Map for a compiled
// map-literal template embedded directly in a Function's code (see
// value.NewConstNumber). Populate with Set; FullEval walks it into a fresh
// pool-backed Map at execution time.
func NewConstMap() *Map {
	m := &Map{}
	m.init()
	return m
}

func (m *Map) init() {
	m.entries = m.entries[:0]
	if m.index == nil {
		m.index = make(map[uint64][]int)
	} else {
		for k := range m.index {
			delete(m.index, k)
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []Value {
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.key
	}
	return out
}

// findIndex returns the entries index of a structurally-equal key, or -1.
func (m *Map) findIndex(key Value) int {
	h := key.Hash(1)
	for _, i := range m.index[h] {
		if m.entries[i].key.Equality(key, 1) >= 0.5 {
			return i
		}
	}
	return -1
}

// Lookup returns the value for key and whether it was present (without
// following __isa — see Resolve in resolve.go for the prototype walk).
func (m *Map) Lookup(key Value) (Value, bool) {
	i := m.findIndex(key)
	if i < 0 {
		return nil, false
	}
	return m.entries[i].val, true
}

// LookupString is a convenience wrapper for the common string-keyed case
// used by opcode dispatch and __isa traversal.
func (m *Map) LookupString(key string) (Value, bool) {
	return m.Lookup(newStaticString(key))
}

// Set stores key→val, replacing an existing structurally-equal key in
// place (preserving its position) or appending a new entry. Refs val and
// the new key (if inserted); unrefs the displaced value and, when replacing,
// unrefs the old key since the fresh key supersedes it (§3.2: "a fresh
// String key equal to an existing one replaces that entry").
func (m *Map) Set(key, val Value) {
	i := m.findIndex(key)
	if i >= 0 {
		unrefIfPooled(m.entries[i].val)
		unrefIfPooled(m.entries[i].key)
		m.entries[i].key = refIfPooled(key)
		m.entries[i].val = refIfPooled(val)
		return
	}
	idx := len(m.entries)
	m.entries = append(m.entries, mapEntry{key: refIfPooled(key), val: refIfPooled(val)})
	h := key.Hash(1)
	m.index[h] = append(m.index[h], idx)
}

// SetString is a convenience wrapper for string-keyed assignment.
func (m *Map) SetString(key string, val Value) {
	m.Set(newStaticString(key), val)
}

// Delete removes key's entry, if present, unref'ing its key and value and
// shifting later entries down to preserve insertion order. Reports whether
// anything was removed.
func (m *Map) Delete(key Value) bool {
	i := m.findIndex(key)
	if i < 0 {
		return false
	}
	unrefIfPooled(m.entries[i].key)
	unrefIfPooled(m.entries[i].val)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	m.index = make(map[uint64][]int, len(m.entries))
	for idx, e := range m.entries {
		h := e.key.Hash(1)
		m.index[h] = append(m.index[h], idx)
	}
	return true
}

// Isa returns the map's __isa parent, if any.
func (m *Map) Isa() (*Map, bool) {
	v, ok := m.LookupString(IsaKey)
	if !ok {
		return nil, false
	}
	parent, ok := v.(*Map)
	return parent, ok
}

// Merge returns a fresh Map holding this map's entries overlaid by other's
// (right wins on key collision), implementing Map `+` (§4.2).
func (m *Map) Merge(vm VM, other *Map) *Map {
	out := vm.Pool().NewMap()
	for _, e := range m.entries {
		out.Set(e.key, e.val)
	}
	for _, e := range other.entries {
		out.Set(e.key, e.val)
	}
	return out
}

// ElemAtOrdinal returns the one-shot mini-map {"key": k, "value": v} at
// ordinal index n, used by ElemBofIterA (§4.2, §4.5).
func (m *Map) ElemAtOrdinal(vm VM, n int) (Value, error) {
	if n < 0 || n >= len(m.entries) {
		return nil, newIndexError("map iteration index %d out of range [0, %d]", n, len(m.entries)-1)
	}
	e := m.entries[n]
	out := vm.Pool().NewMap()
	out.SetString("key", e.key)
	out.SetString("value", e.val)
	return out, nil
}

func (m *Map) ToString(vm VM) string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = e.key.ToString(vm) + ": " + e.val.ToString(vm)
	}
	return strings.Join(parts, ", ")
}

func (m *Map) CodeForm(vm VM, depth int) string {
	if depth <= 0 {
		return "{...}"
	}
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = e.key.CodeForm(vm, depth-1) + ": " + e.val.CodeForm(vm, depth-1)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *Map) Hash(depth int) uint64 {
	if depth <= 0 {
		return uint64(len(m.entries))
	}
	// Order-independent accumulation (XOR) so maps with the same entries
	// in different insertion orders still hash equal, matching the
	// structural-equality contract below.
	var h uint64
	for _, e := range m.entries {
		eh := e.key.Hash(depth-1)*31 + e.val.Hash(depth-1)
		h ^= eh
	}
	return h
}

// Equality is structural: every key in m must appear in other with an
// equal value, and vice versa (order-independent); exhausted recursion
// returns 0.5.
func (m *Map) Equality(other Value, depth int) float64 {
	o, ok := other.(*Map)
	if !ok {
		return 0
	}
	if len(m.entries) != len(o.entries) {
		return 0
	}
	if depth <= 0 {
		return 0.5
	}
	product := 1.0
	for _, e := range m.entries {
		ov, ok := o.Lookup(e.key)
		if !ok {
			return 0
		}
		product *= e.val.Equality(ov, depth-1)
		if product == 0 {
			return 0
		}
	}
	return product
}

func (m *Map) BoolValue() bool      { return len(m.entries) > 0 }
func (m *Map) IntValue() int64      { return 0 }
func (m *Map) DoubleValue() float64 { return 0 }
func (m *Map) TypeName() string     { return "map" }

func (m *Map) Val(Context, bool) (Value, error) { return m, nil }

func (m *Map) FullEval(ctx Context) (Value, error) {
	out := ctx.VM().Pool().NewMap()
	for _, e := range m.entries {
		k, err := e.key.FullEval(ctx)
		if err != nil {
			return nil, err
		}
		v, err := e.val.FullEval(ctx)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	return out, nil
}

func (m *Map) Ref() Value {
	if m.pool == nil {
		return m
	}
	m.refs++
	return m
}

func (m *Map) Unref() {
	if m.pool == nil {
		return
	}
	m.refs--
	if m.refs <= 0 {
		m.pool.releaseMap(m)
	}
}

func (m *Map) RefCount() int { return m.refs }
