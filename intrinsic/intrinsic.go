// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package intrinsic implements the host-function calling contract (§4.6):
// a registry of named Intrinsics, each a Go function of shape
// (Context) → (Result, error), with built-in support for cooperative
// suspension via the Context's partial-result slot.
package intrinsic

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/probeum/miniscript/value"
)

// Func is the shape of an intrinsic's host implementation. It reads its
// arguments from ctx's locals (bound by the Machine exactly like a regular
// function call, using Intrinsic's Params as the parameter list) and
// returns a Result. To suspend mid-computation, a Func calls ctx.Partial()
// to recover its last state, does one slice of work, and calls
// ctx.SetPartial with a fresh token before returning Result{Done: false} —
// the Machine will re-invoke the same CallIntrinsicA line next step.
type Func func(ctx value.Context) (Result, error)

// Result is what an intrinsic invocation produces for one step.
type Result struct {
	// Value is either the final result (Done == true) or ignored
	// (Done == false, in which case the intermediate state lives in ctx's
	// partial-result slot instead).
	Value value.Value
	Done  bool
}

// Done is a convenience constructor for a completed Result.
func Done(v value.Value) Result { return Result{Value: v, Done: true} }

// Suspend is a convenience constructor for a not-yet-done Result. token is
// stashed in ctx's partial slot by the caller, not by Suspend itself — see
// NewResumeToken.
func Suspend() Result { return Result{Done: false} }

// ResumeToken opaquely identifies one suspended invocation, so a Func can
// tell "am I being re-entered for the call I suspended, or is this a fresh
// call that happens to reuse the same Context slot" apart. The Machine and
// the VM never interpret it; only the Func that created it does.
type ResumeToken uuid.UUID

// NewResumeToken mints a fresh opaque token for a newly-suspended call.
func NewResumeToken() ResumeToken { return ResumeToken(uuid.New()) }

func (t ResumeToken) String() string { return uuid.UUID(t).String() }

// Intrinsic is one registered host function: an id, a parameter list (name
// + default, identical shape to value.Param so the Machine binds arguments
// the same way it does for a CallFunctionA), and the Go implementation.
type Intrinsic struct {
	Name   string
	Params []value.Param
	fn     Func
	marker *value.Function
}

// Create begins building a new Intrinsic named name. Call AddParam zero or
// more times, then GetFunc to obtain the callable value.Function the
// compiler/REPL binds a Var to (§6).
func Create(name string) *Intrinsic {
	return &Intrinsic{Name: name}
}

// AddParam appends a parameter; def may be nil for a required parameter.
func (in *Intrinsic) AddParam(name string, def value.Value) *Intrinsic {
	in.Params = append(in.Params, value.Param{Name: name, Default: def})
	return in
}

// SetFunc assigns the Go implementation.
func (in *Intrinsic) SetFunc(fn Func) *Intrinsic {
	in.fn = fn
	return in
}

// Invoke runs the intrinsic's Go implementation against ctx.
func (in *Intrinsic) Invoke(ctx value.Context) (Result, error) {
	if in.fn == nil {
		return Result{}, fmt.Errorf("intrinsic: %s has no implementation", in.Name)
	}
	return in.fn(ctx)
}

// GetFunc returns a value.Function marker standing in for this intrinsic,
// for code paths (closures, CodeForm) that expect a Function Value. Its
// Code is empty — the Machine recognizes calls to an intrinsic-backed
// function by Registry lookup on the Function's identity, not by running
// this Code. Idempotent: repeated calls return the same Function identity,
// since the Registry keys on that identity.
func (in *Intrinsic) GetFunc() *value.Function {
	if in.marker == nil {
		in.marker = value.NewFunction(in.Params, nil)
	}
	return in.marker
}

// Registry is the write-once-then-read-only table the intrinsic library
// installs at host startup (§5); host.Interpreter builds a fresh one on
// every Compile. Keyed by the
// *value.Function identity GetFunc() returned, so CallIntrinsicA's operand
// (the Function Value itself) is the lookup key — no separate numeric id
// namespace to keep in sync.
type Registry struct {
	byFunc     map[*value.Function]*Intrinsic
	nameToFunc map[string]*value.Function
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byFunc:     make(map[*value.Function]*Intrinsic),
		nameToFunc: make(map[string]*value.Function),
	}
}

// Register installs in, indexed by both its backing Function identity and
// its name, and returns the Function Value a Var can be bound to.
func (r *Registry) Register(in *Intrinsic) *value.Function {
	fn := in.GetFunc()
	r.byFunc[fn] = in
	r.nameToFunc[in.Name] = fn
	return fn
}

// Lookup resolves the Function operand of a CallIntrinsicA Line back to its
// Intrinsic.
func (r *Registry) Lookup(fn *value.Function) (*Intrinsic, bool) {
	in, ok := r.byFunc[fn]
	return in, ok
}

// LookupName resolves by the intrinsic's registered name to its Function
// Value. The compiler and host do not call it; they bind identifiers
// through the globals Map the stdlib Register functions fill.
func (r *Registry) LookupName(name string) (*value.Function, bool) {
	fn, ok := r.nameToFunc[name]
	return fn, ok
}
