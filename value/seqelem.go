// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

// SeqElem is an unresolved member/index access: (sequence, index, no-invoke).
// It is itself a first-class Value variant (rather than always being
// resolved eagerly) precisely so that a no-invoke access like `@obj.method`
// can be passed around as a reference before anything forces it. Pool-backed.
type SeqElem struct {
	seq      Value
	idx      Value
	noInvoke bool
	pool     *Pool
	refs     int
}

// NewConstSeqElem returns a non-pool-backed SeqElem wrapping seq/idx, for a
// compiled member/index operand (read or assignment target) embedded
// directly in a Function's code (see NewConstNumber). seq and idx are
// themselves typically a Var/Temp/constant, resolved dynamically against
// whatever Context runs the Function.
func NewConstSeqElem(seq, idx Value, noInvoke bool) *SeqElem {
	return &SeqElem{seq: seq, idx: idx, noInvoke: noInvoke}
}

func (s *SeqElem) Sequence() Value { return s.seq }
func (s *SeqElem) Index() Value    { return s.idx }
func (s *SeqElem) NoInvoke() bool  { return s.noInvoke }

func (s *SeqElem) ToString(vm VM) string {
	v, err := s.Val(nil, false)
	if err != nil || v == s {
		return "<" + s.seq.ToString(vm) + "." + s.idx.ToString(vm) + ">"
	}
	return v.ToString(vm)
}

func (s *SeqElem) CodeForm(vm VM, depth int) string {
	return "<" + s.seq.CodeForm(vm, depth) + "." + s.idx.CodeForm(vm, depth) + ">"
}

func (s *SeqElem) Hash(depth int) uint64 {
	return s.seq.Hash(depth)*31 + s.idx.Hash(depth)
}

func (s *SeqElem) Equality(other Value, depth int) float64 {
	o, ok := other.(*SeqElem)
	if !ok {
		return 0
	}
	if depth <= 0 {
		return 0.5
	}
	return s.seq.Equality(o.seq, depth-1) * s.idx.Equality(o.idx, depth-1)
}

func (s *SeqElem) BoolValue() bool      { return true }
func (s *SeqElem) IntValue() int64      { return 0 }
func (s *SeqElem) DoubleValue() float64 { return 0 }
func (s *SeqElem) TypeName() string     { return "seqelem" }

// Val resolves the member/index access via the §4.3 prototype walk, unless
// noInvoke is set, in which case the SeqElem is returned unresolved so it
// can be used as a reference (e.g. passed to a caller expecting `@obj.f`).
func (s *SeqElem) Val(ctx Context, takeRef bool) (Value, error) {
	if s.noInvoke {
		return s, nil
	}
	if ctx == nil {
		return s, nil
	}
	v, _, err := Resolve(s.seq, s.idx, ctx)
	if err != nil {
		return nil, err
	}
	if takeRef {
		return refIfPooled(v), nil
	}
	return v, nil
}

func (s *SeqElem) FullEval(ctx Context) (Value, error) { return s.Val(ctx, false) }

func (s *SeqElem) Ref() Value {
	if s.pool == nil {
		return s
	}
	s.refs++
	return s
}

func (s *SeqElem) Unref() {
	if s.pool == nil {
		return
	}
	s.refs--
	if s.refs <= 0 {
		s.pool.releaseSeqElem(s)
	}
}

func (s *SeqElem) RefCount() int { return s.refs }
