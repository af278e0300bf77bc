// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import lru "github.com/hashicorp/golang-lru"

// Pooled is implemented by the five pool-backed variants (Number, String,
// List, Map, SeqElem). Create returns a value with refcount 1; Ref
// increments; Unref decrements and, on reaching 0, resets the value's state,
// releases any references it held, and returns it to the Pool's free list.
// Singletons (see intern.go) embed a nil *Pool and treat Ref/Unref as no-ops.
type Pooled interface {
	Value
	Ref() Value
	Unref()
	RefCount() int
}

// Pool is a per-Machine set of free-lists recycling pool-backed Values. One
// Pool belongs to exactly one Machine and must never be shared across
// goroutines — this is the Go-idiomatic reading of the source engine's
// per-thread free-list discipline (§5).
type Pool struct {
	numbers  []*Number
	strings  []*String
	lists    []*List
	maps     []*Map
	seqElems []*SeqElem

	created map[string]int64
	inUse   map[string]int64

	// lookupScratch memoizes fnvHash(s) for strings created by this Pool, a
	// hot path for Map key lookups and var-name dispatch where the same
	// handful of short strings ("self", a method name, a hot map key) get
	// hashed repeatedly. Bounded so a Machine that churns through many
	// distinct strings doesn't grow this unboundedly.
	lookupScratch *lru.Cache
}

const lookupScratchSize = 256

// NewPool creates an empty Pool.
func NewPool() *Pool {
	cache, err := lru.New(lookupScratchSize)
	if err != nil {
		// Only returns an error for a non-positive size, which lookupScratchSize
		// never is.
		panic(err)
	}
	return &Pool{
		created:       make(map[string]int64, 5),
		inUse:         make(map[string]int64, 5),
		lookupScratch: cache,
	}
}

// hashString returns fnvHash(s), serving it from lookupScratch when
// available.
func (p *Pool) hashString(s string) uint64 {
	if p == nil || p.lookupScratch == nil {
		return fnvHash(s)
	}
	if v, ok := p.lookupScratch.Get(s); ok {
		return v.(uint64)
	}
	h := fnvHash(s)
	p.lookupScratch.Add(s, h)
	return h
}

func (p *Pool) track(kind string, delta int64) {
	if delta > 0 {
		p.created[kind] += delta
	}
	p.inUse[kind] += delta
}

// NumInstancesInUse returns the number of live (refcount > 0) instances of
// the named variant ("number", "string", "list", "map", "seqelem").
// Property test hook for §8's pool invariant.
func (p *Pool) NumInstancesInUse(kind string) int64 { return p.inUse[kind] }

// TotalCreated returns the lifetime count of Create calls for kind,
// including recycled reuses counted once each time they are handed out.
func (p *Pool) TotalCreated(kind string) int64 { return p.created[kind] }

// ---- Number -----------------------------------------------------------

// NewNumber returns a fresh or recycled *Number with refcount 1.
func (p *Pool) NewNumber(v float64) *Number {
	var n *Number
	if l := len(p.numbers); l > 0 {
		n = p.numbers[l-1]
		p.numbers = p.numbers[:l-1]
	} else {
		n = &Number{}
	}
	n.v = v
	n.pool = p
	n.refs = 1
	p.track("number", 1)
	return n
}

func (p *Pool) releaseNumber(n *Number) {
	n.v = 0
	p.numbers = append(p.numbers, n)
	p.track("number", -1)
}

// ---- String -------------------------------------------------------------

// NewString returns a fresh or recycled *String with refcount 1.
func (p *Pool) NewString(v string) *String {
	var s *String
	if l := len(p.strings); l > 0 {
		s = p.strings[l-1]
		p.strings = p.strings[:l-1]
	} else {
		s = &String{}
	}
	s.v = v
	s.pool = p
	s.refs = 1
	p.track("string", 1)
	return s
}

func (p *Pool) releaseString(s *String) {
	s.v = ""
	p.strings = append(p.strings, s)
	p.track("string", -1)
}

// ---- List -----------------------------------------------------------------

// NewList returns a fresh or recycled *List with refcount 1.
func (p *Pool) NewList(elems []Value) *List {
	var l *List
	if n := len(p.lists); n > 0 {
		l = p.lists[n-1]
		p.lists = p.lists[:n-1]
	} else {
		l = &List{}
	}
	l.items = elems
	l.pool = p
	l.refs = 1
	p.track("list", 1)
	return l
}

func (p *Pool) releaseList(l *List) {
	for _, e := range l.items {
		unrefIfPooled(e)
	}
	l.items = nil
	p.lists = append(p.lists, l)
	p.track("list", -1)
}

// ---- Map --------------------------------------------------------------

// NewMap returns a fresh or recycled *Map with refcount 1.
func (p *Pool) NewMap() *Map {
	var m *Map
	if n := len(p.maps); n > 0 {
		m = p.maps[n-1]
		p.maps = p.maps[:n-1]
	} else {
		m = &Map{}
	}
	m.init()
	m.pool = p
	m.refs = 1
	p.track("map", 1)
	return m
}

func (p *Pool) releaseMap(m *Map) {
	for _, e := range m.entries {
		unrefIfPooled(e.key)
		unrefIfPooled(e.val)
	}
	m.entries = nil
	m.index = nil
	p.maps = append(p.maps, m)
	p.track("map", -1)
}

// ---- SeqElem ----------------------------------------------------------

// NewSeqElem returns a fresh or recycled *SeqElem with refcount 1.
func (p *Pool) NewSeqElem(seq, idx Value, noInvoke bool) *SeqElem {
	var s *SeqElem
	if n := len(p.seqElems); n > 0 {
		s = p.seqElems[n-1]
		p.seqElems = p.seqElems[:n-1]
	} else {
		s = &SeqElem{}
	}
	s.seq = seq
	s.idx = idx
	s.noInvoke = noInvoke
	s.pool = p
	s.refs = 1
	p.track("seqelem", 1)
	return s
}

func (p *Pool) releaseSeqElem(s *SeqElem) {
	unrefIfPooled(s.seq)
	unrefIfPooled(s.idx)
	s.seq, s.idx = nil, nil
	p.seqElems = append(p.seqElems, s)
	p.track("seqelem", -1)
}

// unrefIfPooled calls Unref on v if it is a pool-backed Value; singletons
// and non-pooled variants (Null, Function, Temp, Var, Custom) are no-ops.
func unrefIfPooled(v Value) {
	if v == nil {
		return
	}
	if p, ok := v.(Pooled); ok {
		p.Unref()
	}
}

// refIfPooled calls Ref on v if it is pool-backed, returning v either way.
// Used when a container takes ownership of a value being assigned into it.
func refIfPooled(v Value) Value {
	if p, ok := v.(Pooled); ok {
		return p.Ref()
	}
	return v
}
