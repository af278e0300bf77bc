// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import (
	"runtime"
	"strings"
	"unsafe"
)

// Function owns its parameter list and an immutable compiled code sequence;
// multiple Values may share one Function. Not pool-backed — an ordinary
// garbage-collected Go value, since functions are long-lived and shared by
// reference rather than churned like Number/String/List/Map/SeqElem.
type Function struct {
	Params []Param
	Code   []Line // concrete elements are *tac.Line; see value.Line doc.
	// OuterVars is the closure's captured outer variable Map, or nil if this
	// function was never closed over a call frame (BindContextOfA sets it).
	OuterVars *Map
}

// NewFunction constructs a Function value. code is typically a []*tac.Line
// upcast element-wise to []value.Line by the caller (lang/compiler, or
// intrinsic.Intrinsic.GetFunc).
func NewFunction(params []Param, code []Line) *Function {
	f := &Function{Params: params, Code: code}
	runtime.SetFinalizer(f, (*Function).releaseOuterVars)
	return f
}

// releaseOuterVars drops f's hold on its captured closure Map once f itself
// becomes unreachable. Function is plain garbage-collected, not pool-backed
// (§5: functions are long-lived and shared by reference), so it has no
// explicit release call site of its own; the finalizer is the only place
// BindContext's Ref gets a matching Unref for a Function nobody rebinds
// again before dropping.
func (f *Function) releaseOuterVars() {
	if f.OuterVars != nil {
		f.OuterVars.Unref()
		f.OuterVars = nil
	}
}

func (f *Function) ToString(VM) string { return "FUNCTION()" }

func (f *Function) CodeForm(vm VM, depth int) string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		if p.Default != nil {
			names[i] = p.Name + "=" + p.Default.CodeForm(vm, depth)
		} else {
			names[i] = p.Name
		}
	}
	return "function(" + strings.Join(names, ", ") + ")"
}

// Hash is identity-based: two distinct Function values never hash equal
// even with identical code, matching Equality's reference-identity rule.
func (f *Function) Hash(int) uint64 {
	return uint64(uintptr(unsafe.Pointer(f)))
}

func (f *Function) Equality(other Value, depth int) float64 {
	o, ok := other.(*Function)
	if !ok {
		return 0
	}
	if f == o {
		return 1
	}
	return 0
}

func (f *Function) BoolValue() bool      { return true }
func (f *Function) IntValue() int64      { return 0 }
func (f *Function) DoubleValue() float64 { return 0 }
func (f *Function) TypeName() string     { return "function" }

func (f *Function) Val(Context, bool) (Value, error) { return f, nil }
func (f *Function) FullEval(Context) (Value, error)  { return f, nil }

// BindContext sets f's captured outer-variable map (BindContextOfA, §4.5),
// taking a reference on outer and releasing whatever map f previously
// captured. A Context's locals Map is owned by that Context and gets
// recycled back into the Pool's free list as soon as the Context is
// popped (machine/context.go's release) — without this Ref, a closure
// that outlives its creating call would end up pointing at a Map some
// unrelated later call has since reused.
func (f *Function) BindContext(outer *Map) {
	if outer != nil {
		outer.Ref()
	}
	if f.OuterVars != nil {
		f.OuterVars.Unref()
	}
	f.OuterVars = outer
}
