// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

// Custom is the contract a host-defined value type implements. Overrides
// for +, -, *, / are offered first whenever at least one operand is Custom;
// if an override reports ok=false the normal coercion/error path runs
// (§4.4). Custom values are not pool-backed; lifetime management is up to
// the host.
type Custom interface {
	Value

	// TypeFuncs returns this value's type-function map (the prototype
	// consulted by Resolve/IsA for member lookup and the default map
	// fallback chain).
	TypeFuncs() *Map

	// Lookup resolves a per-identifier member directly on the payload,
	// before falling back to TypeFuncs()/the __isa walk.
	Lookup(ident string) (Value, bool)

	Add(vm VM, other Value) (Value, bool)
	Sub(vm VM, other Value) (Value, bool)
	Mul(vm VM, other Value) (Value, bool)
	Div(vm VM, other Value) (Value, bool)
}

// BaseCustom is an embeddable helper providing default (no-op) plumbing for
// the parts of Custom that are rarely type-specific. A host's concrete type
// embeds BaseCustom and must still implement ToString, CodeForm, Hash,
// Equality, Val, and FullEval itself — those are identity-sensitive and a
// helper embedded by value cannot see the outer type's address to implement
// them correctly.
type BaseCustom struct {
	Types *Map
}

func (b *BaseCustom) TypeFuncs() *Map { return b.Types }

func (b *BaseCustom) Lookup(string) (Value, bool) { return nil, false }

func (b *BaseCustom) Add(VM, Value) (Value, bool) { return nil, false }
func (b *BaseCustom) Sub(VM, Value) (Value, bool) { return nil, false }
func (b *BaseCustom) Mul(VM, Value) (Value, bool) { return nil, false }
func (b *BaseCustom) Div(VM, Value) (Value, bool) { return nil, false }

func (b *BaseCustom) BoolValue() bool      { return true }
func (b *BaseCustom) IntValue() int64      { return 0 }
func (b *BaseCustom) DoubleValue() float64 { return 0 }
func (b *BaseCustom) TypeName() string     { return "custom" }
