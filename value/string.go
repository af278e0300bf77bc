// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import (
	"strconv"
	"strings"
)

// MaxStringLen is the combined-length cap on any single String result
// (concatenation, replication), per §3.1/§7.
const MaxStringLen = 16 * 1024 * 1024

// String is a UTF-16-compatible (here: Go string, treated as a rune
// sequence for indexing) character sequence, max length ~16M. Pool-backed:
// rebound, not mutated in place, on reuse.
type String struct {
	v    string
	pool *Pool
	refs int
}

// EmptyString is the non-pool-backed singleton for "".
var EmptyString Value = &String{v: ""}

func newStaticString(s string) *String { return &String{v: s} }

// NewConstString returns a non-pool-backed String for s, for a compiled
// literal operand embedded directly in a Function's code (see
// NewConstNumber).
func NewConstString(s string) *String { return &String{v: s} }

func (s *String) ToString(VM) string { return s.v }

func (s *String) CodeForm(vm VM, depth int) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s.v {
		if r == '"' {
			b.WriteString(`""`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// fnvHash is the same FNV-1a variant used for String and container hashing,
// so that equal strings embedded at different container depths still hash
// equal (§8: equality ≥ 0.5 ⇒ equal hash).
func fnvHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// Hash serves the string's content hash from its owning Pool's scratch
// cache when pool-backed (the common case, a Map key or var name), falling
// back to a direct computation for non-pool-backed singletons/consts.
func (s *String) Hash(int) uint64 { return s.pool.hashString(s.v) }

func (s *String) Equality(other Value, depth int) float64 {
	o, ok := other.(*String)
	if !ok {
		return 0
	}
	if s.v == o.v {
		return 1
	}
	return 0
}

func (s *String) BoolValue() bool { return s.v != "" }

func (s *String) IntValue() int64 {
	n, _, ok := parseLeadingNumber(s.v)
	if !ok {
		return 0
	}
	return int64(n)
}

func (s *String) DoubleValue() float64 {
	n, _, ok := parseLeadingNumber(s.v)
	if !ok {
		return 0
	}
	return n
}

func (s *String) TypeName() string { return "string" }

func (s *String) Val(Context, bool) (Value, error) { return s, nil }
func (s *String) FullEval(Context) (Value, error)  { return s, nil }

func (s *String) Ref() Value {
	if s.pool == nil {
		return s
	}
	s.refs++
	return s
}

func (s *String) Unref() {
	if s.pool == nil {
		return
	}
	s.refs--
	if s.refs <= 0 {
		s.pool.releaseString(s)
	}
}

func (s *String) RefCount() int { return s.refs }

// Runes returns the string's content as a rune slice, the unit List/String
// indexing and length operate on.
func (s *String) Runes() []rune { return []rune(s.v) }

// At returns the single-character String at rune index i, wrapping negative
// indices and erroring out of range, mirroring List.At's indexing rule.
func (s *String) At(vm VM, i int) (Value, error) {
	rs := s.Runes()
	idx, err := wrapIndex(i, len(rs))
	if err != nil {
		return nil, err
	}
	return vm.Pool().NewString(string(rs[idx])), nil
}

func parseLeadingNumber(s string) (float64, int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	sawDigits := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		sawDigits = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			sawDigits = true
		}
	}
	if !sawDigits {
		return 0, 0, false
	}
	_ = start
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, 0, false
	}
	return v, i, true
}
