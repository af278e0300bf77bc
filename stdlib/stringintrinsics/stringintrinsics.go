// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package stringintrinsics registers string-handling intrinsics (upper,
// lower, trim, split, indexOf, replace) demonstrating the §4.6 calling
// contract over value.String, enriched beyond the teacher's own
// blockchain-flavored stdlib since MiniScript scripts manipulate text
// directly rather than array-programming over on-chain data.
package stringintrinsics

import (
	"strings"

	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/interperr"
	"github.com/probeum/miniscript/value"
)

// Register installs every intrinsic in this package into reg and binds it
// by name in globals.
func Register(reg *intrinsic.Registry, globals *value.Map) {
	install(reg, globals, unary("upper", strings.ToUpper))
	install(reg, globals, unary("lower", strings.ToLower))
	install(reg, globals, unary("trim", strings.TrimSpace))

	install(reg, globals, intrinsic.Create("indexOf").
		AddParam("self", nil).
		AddParam("needle", nil).
		SetFunc(indexOf))
	install(reg, globals, intrinsic.Create("split").
		AddParam("self", nil).
		AddParam("sep", value.NewConstString(" ")).
		SetFunc(split))
	install(reg, globals, intrinsic.Create("replace").
		AddParam("self", nil).
		AddParam("old", nil).
		AddParam("new", nil).
		SetFunc(replace))
}

func install(reg *intrinsic.Registry, globals *value.Map, in *intrinsic.Intrinsic) {
	globals.SetString(in.Name, reg.Register(in))
}

func unary(name string, f func(string) string) *intrinsic.Intrinsic {
	return intrinsic.Create(name).AddParam("self", nil).SetFunc(func(ctx value.Context) (intrinsic.Result, error) {
		s, err := stringArg(ctx, "self")
		if err != nil {
			return intrinsic.Result{}, err
		}
		return intrinsic.Done(ctx.VM().Pool().NewString(f(s))), nil
	})
}

func indexOf(ctx value.Context) (intrinsic.Result, error) {
	self, err := stringArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	needle, err := stringArg(ctx, "needle")
	if err != nil {
		return intrinsic.Result{}, err
	}
	return intrinsic.Done(ctx.VM().Pool().NewNumber(float64(strings.Index(self, needle)))), nil
}

func split(ctx value.Context) (intrinsic.Result, error) {
	self, err := stringArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	sep, err := stringArg(ctx, "sep")
	if err != nil {
		return intrinsic.Result{}, err
	}
	parts := strings.Split(self, sep)
	items := make([]value.Value, len(parts))
	pool := ctx.VM().Pool()
	for i, p := range parts {
		items[i] = pool.NewString(p)
	}
	return intrinsic.Done(pool.NewList(items)), nil
}

func replace(ctx value.Context) (intrinsic.Result, error) {
	self, err := stringArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	old, err := stringArg(ctx, "old")
	if err != nil {
		return intrinsic.Result{}, err
	}
	new_, err := stringArg(ctx, "new")
	if err != nil {
		return intrinsic.Result{}, err
	}
	return intrinsic.Done(ctx.VM().Pool().NewString(strings.ReplaceAll(self, old, new_))), nil
}

func stringArg(ctx value.Context, name string) (string, error) {
	v, ok := ctx.GetVar(name)
	if !ok {
		return "", interperr.NewRuntime("missing argument %q", name)
	}
	s, ok := v.(*value.String)
	if !ok {
		return "", interperr.NewType("argument %q must be a string, got %s", name, v.TypeName())
	}
	return s.ToString(ctx.VM()), nil
}
