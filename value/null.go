// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

// nullValue is the singleton Null variant. It is never pool-backed.
type nullValue struct{}

// Null is the single MiniScript null value.
var Null Value = nullValue{}

func (nullValue) ToString(VM) string             { return "null" }
func (nullValue) CodeForm(VM, int) string         { return "null" }
func (nullValue) Hash(int) uint64                 { return 0 }
func (nullValue) BoolValue() bool                 { return false }
func (nullValue) IntValue() int64                 { return 0 }
func (nullValue) DoubleValue() float64            { return 0 }
func (nullValue) TypeName() string                { return "null" }
func (nullValue) Val(Context, bool) (Value, error) { return Null, nil }
func (v nullValue) FullEval(Context) (Value, error) { return v, nil }

func (nullValue) Equality(other Value, depth int) float64 {
	if _, ok := other.(nullValue); ok {
		return 1
	}
	return 0
}
