// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package listintrinsics registers list-handling intrinsics (push, pop,
// len, join) over value.List, grounded in the teacher's stdlib/math
// array-operation texture (Len, Map, Reduce) but reshaped around
// MiniScript's mutable, pool-backed List rather than an immutable
// fixed-width U64Array.
package listintrinsics

import (
	"strings"

	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/interperr"
	"github.com/probeum/miniscript/value"
)

// Register installs every intrinsic in this package into reg and binds it
// by name in globals.
func Register(reg *intrinsic.Registry, globals *value.Map) {
	install(reg, globals, intrinsic.Create("len").
		AddParam("self", nil).
		SetFunc(length))
	install(reg, globals, intrinsic.Create("push").
		AddParam("self", nil).
		AddParam("value", nil).
		SetFunc(push))
	install(reg, globals, intrinsic.Create("pop").
		AddParam("self", nil).
		SetFunc(pop))
	install(reg, globals, intrinsic.Create("join").
		AddParam("self", nil).
		AddParam("sep", value.NewConstString(", ")).
		SetFunc(join))
}

func install(reg *intrinsic.Registry, globals *value.Map, in *intrinsic.Intrinsic) {
	globals.SetString(in.Name, reg.Register(in))
}

// length backs the single shared "len" intrinsic: listintrinsics registers
// it (rather than each collection package registering its own and
// clobbering the others in globals), dispatching on self's dynamic type
// so len() reads naturally over a List, Map, or String alike.
func length(ctx value.Context) (intrinsic.Result, error) {
	self, ok := ctx.GetVar("self")
	if !ok {
		return intrinsic.Result{}, interperr.NewRuntime("missing argument %q", "self")
	}
	var n int
	switch v := self.(type) {
	case *value.List:
		n = len(v.Items())
	case *value.Map:
		n = v.Len()
	case *value.String:
		n = len([]rune(v.ToString(ctx.VM())))
	default:
		return intrinsic.Result{}, interperr.NewType("len: unsupported type %s", self.TypeName())
	}
	return intrinsic.Done(ctx.VM().Pool().NewNumber(float64(n))), nil
}

func push(ctx value.Context) (intrinsic.Result, error) {
	lst, err := listArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	v, ok := ctx.GetVar("value")
	if !ok {
		return intrinsic.Result{}, interperr.NewRuntime("missing argument %q", "value")
	}
	if err := lst.Append(v); err != nil {
		return intrinsic.Result{}, err
	}
	return intrinsic.Done(lst), nil
}

func pop(ctx value.Context) (intrinsic.Result, error) {
	lst, err := listArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	last, err := lst.Pop()
	if err != nil {
		return intrinsic.Result{}, err
	}
	return intrinsic.Done(last), nil
}

func join(ctx value.Context) (intrinsic.Result, error) {
	lst, err := listArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	sep, ok := ctx.GetVar("sep")
	if !ok {
		return intrinsic.Result{}, interperr.NewRuntime("missing argument %q", "sep")
	}
	sepStr, ok := sep.(*value.String)
	if !ok {
		return intrinsic.Result{}, interperr.NewType("argument %q must be a string, got %s", "sep", sep.TypeName())
	}
	parts := make([]string, len(lst.Items()))
	for i, item := range lst.Items() {
		parts[i] = item.ToString(ctx.VM())
	}
	return intrinsic.Done(ctx.VM().Pool().NewString(strings.Join(parts, sepStr.ToString(ctx.VM())))), nil
}

func listArg(ctx value.Context, name string) (*value.List, error) {
	v, ok := ctx.GetVar(name)
	if !ok {
		return nil, interperr.NewRuntime("missing argument %q", name)
	}
	l, ok := v.(*value.List)
	if !ok {
		return nil, interperr.NewType("argument %q must be a list, got %s", name, v.TypeName())
	}
	return l, nil
}
