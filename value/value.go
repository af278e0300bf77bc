// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package value implements the MiniScript value model: a tagged union of
// Null, Number, String, List, Map, Function, SeqElem, Temp, Var, and
// host-defined Custom variants, all satisfying a single Value contract.
//
// Design principles, carried over from the register-word value model this
// package replaces:
//   - Every variant is a concrete Go type implementing the Value interface;
//     type switches (not a discriminant field) drive per-opcode dispatch.
//   - Number, String, List, Map, and SeqElem are pool-backed and manually
//     reference counted (see pool.go); Null, Function, Temp, Var, and
//     Custom are ordinary garbage-collected Go values.
//   - The `__isa` prototype chain walk lives in resolve.go, colocated with
//     Map's internals rather than split into its own package.
package value

// VM is the subset of machine state the value model needs: the per-type
// default prototype maps installed by the intrinsic library, and the pool
// that owns pool-backed allocations. machine.Machine implements this.
type VM interface {
	MapType() *Map
	ListType() *Map
	StringType() *Map
	NumberType() *Map
	FunctionType() *Map
	Pool() *Pool
}

// Context is the subset of a call frame the value model needs to resolve
// Temp and Var references and to capture closures. machine.Context
// implements this.
type Context interface {
	VM() VM
	GetTemp(i int) Value
	SetTemp(i int, v Value)
	GetVar(name string) (Value, bool)
	SetVar(name string, v Value)
	Locals() *Map
	Outer() *Map

	// LineNum is the program counter: the index of the next Line to
	// execute out of the running Function's code. GotoA and friends set it
	// directly; ordinary execution advances it by one per step.
	LineNum() int
	SetLineNum(n int)

	// PushParam/TakeParams marshal CallFunctionA's arguments: PushParam is
	// called once per PushParam Line in source order, and CallFunctionA
	// (via the Machine) drains them in the same order when binding the
	// callee's parameters.
	PushParam(v Value)
	TakeParams(n int) []Value

	// Partial holds a suspended intrinsic's resume token and intermediate
	// value (§4.6, §9); ok is false when nothing is suspended.
	Partial() (token interface{}, val Value, ok bool)
	SetPartial(token interface{}, val Value)
	ClearPartial()
}

// Line is the marker interface a compiled TAC instruction implements so that
// value.Function can hold compiled code without value importing the tac
// package (which itself imports value). tac.Line is the sole implementation.
type Line interface {
	SourceLine() int
}

// Value is the contract every MiniScript value variant must satisfy.
type Value interface {
	// ToString returns the textual form used by `print` and string coercion.
	ToString(vm VM) string

	// CodeForm returns the programmer-readable literal form used for
	// implicit output (machine.reportImplicit): escaped strings, `[a, b]` lists, `{k: v}` maps.
	// depth bounds recursion; at depth 0 containers fall back to `[...]`/`{...}`.
	CodeForm(vm VM, depth int) string

	// Hash must agree with Equality: equal-at-0.5-or-above values at the
	// same depth must hash equal.
	Hash(depth int) uint64

	// Equality returns a fuzzy equality in [0, 1]; see §4.1.
	Equality(other Value, depth int) float64

	// BoolValue is the truthiness of this value (Null is the only falsy
	// non-numeric, non-empty value).
	BoolValue() bool

	// IntValue and DoubleValue coerce to a number; non-numeric values
	// default to 0.
	IntValue() int64
	DoubleValue() float64

	// TypeName names this variant for error messages ("number", "string", …).
	TypeName() string

	// Val evaluates this value to a concrete value against ctx. For Temp and
	// Var this resolves through the context; for SeqElem this triggers
	// member lookup; every other variant is the identity. takeRef requests
	// the returned value be reference-counted for the caller.
	Val(ctx Context, takeRef bool) (Value, error)

	// FullEval recursively resolves Temp/Var elements inside containers,
	// producing a value with no unresolved references.
	FullEval(ctx Context) (Value, error)
}

// Param is a function parameter: a name and an optional default value
// (nil means required).
type Param struct {
	Name    string
	Default Value
}

// ---- Fuzzy logic helpers (§4.1) --------------------------------------------

// AbsClamp01 treats a negative fuzzy value as positive before clamping to
// [0, 1]. Used by the `or` operator so that e.g. -0.3 or 0.3 behaves the
// same as 0.3 or 0.3.
func AbsClamp01(x float64) float64 {
	if x < 0 {
		x = -x
	}
	return Clamp01(x)
}

// Clamp01 restricts x to the closed interval [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// FuzzyAnd implements `A and B` = clamp01(|A| * |B|), applying AbsClamp01
// to each operand first, the same as FuzzyOr.
func FuzzyAnd(a, b float64) float64 {
	return Clamp01(AbsClamp01(a) * AbsClamp01(b))
}

// FuzzyOr implements `A or B` = clamp01(A + B - A*B), using AbsClamp01 on
// each operand first so a strictly-negative fuzzy input is not mistaken for
// falsity.
func FuzzyOr(a, b float64) float64 {
	fa, fb := AbsClamp01(a), AbsClamp01(b)
	return Clamp01(fa + fb - fa*fb)
}

// Truth reduces a fuzzy numeric result to a strict 0/1 Number, the
// convention used by AEqualB/ANotEqualB and friends.
func Truth(fuzzy float64) *Number {
	if fuzzy != 0 {
		return One
	}
	return Zero
}

// maxRecursionDepth bounds Equality/Hash/CodeForm recursion; beyond this the
// functions treat the comparison as indeterminate (0.5) or fall back to an
// elision form, matching §4.1's "recursion budget exhausts to 0.5".
const maxRecursionDepth = 64

// isaChainLimit is the maximum number of __isa hops resolve.go will follow
// before raising a limit-exceeded error (§3.2, §8).
const isaChainLimit = 1000

