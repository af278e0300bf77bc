// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import "fmt"

// Temp is a non-negative integer index into the current Context's temporary
// slots. Not pool-backed — a plain immutable Go value.
type Temp int

func (t Temp) ToString(VM) string           { return fmt.Sprintf("_temp%d", int(t)) }
func (t Temp) CodeForm(VM, int) string      { return t.ToString(nil) }
func (t Temp) Hash(int) uint64              { return uint64(t) }
func (t Temp) BoolValue() bool              { return false }
func (t Temp) IntValue() int64              { return int64(t) }
func (t Temp) DoubleValue() float64         { return float64(t) }
func (t Temp) TypeName() string             { return "temp" }

func (t Temp) Equality(other Value, depth int) float64 {
	o, ok := other.(Temp)
	if ok && o == t {
		return 1
	}
	return 0
}

// Val resolves the temp slot against ctx.
func (t Temp) Val(ctx Context, takeRef bool) (Value, error) {
	v := ctx.GetTemp(int(t))
	if v == nil {
		return Null, nil
	}
	if takeRef {
		return refIfPooled(v), nil
	}
	return v, nil
}

func (t Temp) FullEval(ctx Context) (Value, error) { return t.Val(ctx, false) }

// Var is an identifier reference; noInvoke suppresses auto-resolution so a
// reference like `@name` can be passed around unresolved, mirroring SeqElem.
type Var struct {
	Name     string
	NoInvoke bool
}

// NewVar constructs a Var reference.
func NewVar(name string, noInvoke bool) Var { return Var{Name: name, NoInvoke: noInvoke} }

func (v Var) ToString(VM) string      { return v.Name }
func (v Var) CodeForm(VM, int) string { return v.Name }
func (v Var) Hash(int) uint64         { return fnvHash(v.Name) }
func (v Var) BoolValue() bool         { return false }
func (v Var) IntValue() int64         { return 0 }
func (v Var) DoubleValue() float64    { return 0 }
func (v Var) TypeName() string        { return "var" }

func (v Var) Equality(other Value, depth int) float64 {
	o, ok := other.(Var)
	if ok && o.Name == v.Name {
		return 1
	}
	return 0
}

// Val resolves the identifier against ctx's locals, falling back to the
// closure's outer variables. An identifier found in neither is a Runtime
// error (a bare identifier miss, as opposed to a Map member miss which is a
// Key error — see ElemBofA in the tac package).
func (v Var) Val(ctx Context, takeRef bool) (Value, error) {
	if v.NoInvoke {
		return v, nil
	}
	val, ok := ctx.GetVar(v.Name)
	if !ok {
		return nil, newRuntimeError("undefined identifier: %s", v.Name)
	}
	if takeRef {
		return refIfPooled(val), nil
	}
	return val, nil
}

func (v Var) FullEval(ctx Context) (Value, error) { return v.Val(ctx, false) }
