// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package mathintrinsics registers a handful of numeric intrinsics
// (abs, floor, ceil, round, sqrt, pow, min, max) demonstrating the §4.6
// calling contract, grounded on the teacher's stdlib/math package's
// array-programming primitives but reshaped into MiniScript intrinsics
// (one argument binding per call, not batch array ops).
package mathintrinsics

import (
	"math"

	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/interperr"
	"github.com/probeum/miniscript/value"
)

// Register installs every intrinsic in this package into reg and binds it
// by name in globals, the Map the host sets as every top-level Context's
// outer scope.
func Register(reg *intrinsic.Registry, globals *value.Map) {
	install(reg, globals, unary("abs", math.Abs))
	install(reg, globals, unary("floor", math.Floor))
	install(reg, globals, unary("ceil", math.Ceil))
	install(reg, globals, unary("round", math.Round))
	install(reg, globals, unary("sqrt", math.Sqrt))

	install(reg, globals, intrinsic.Create("pow").
		AddParam("base", nil).
		AddParam("exp", nil).
		SetFunc(binaryFn(math.Pow)))
	install(reg, globals, intrinsic.Create("min").
		AddParam("a", nil).
		AddParam("b", nil).
		SetFunc(binaryFn(math.Min)))
	install(reg, globals, intrinsic.Create("max").
		AddParam("a", nil).
		AddParam("b", nil).
		SetFunc(binaryFn(math.Max)))
}

func install(reg *intrinsic.Registry, globals *value.Map, in *intrinsic.Intrinsic) {
	globals.SetString(in.Name, reg.Register(in))
}

func unary(name string, f func(float64) float64) *intrinsic.Intrinsic {
	return intrinsic.Create(name).AddParam("x", nil).SetFunc(func(ctx value.Context) (intrinsic.Result, error) {
		x, err := numberArg(ctx, "x")
		if err != nil {
			return intrinsic.Result{}, err
		}
		return intrinsic.Done(ctx.VM().Pool().NewNumber(f(x))), nil
	})
}

func binaryFn(f func(a, b float64) float64) intrinsic.Func {
	return func(ctx value.Context) (intrinsic.Result, error) {
		a, err := numberArgAny(ctx, "a", "base")
		if err != nil {
			return intrinsic.Result{}, err
		}
		// "base"/"exp" and "a"/"b" are both two-parameter intrinsics; reuse
		// this helper for either by trying both naming schemes.
		b, err := numberArgAny(ctx, "b", "exp")
		if err != nil {
			return intrinsic.Result{}, err
		}
		return intrinsic.Done(ctx.VM().Pool().NewNumber(f(a, b))), nil
	}
}

func numberArg(ctx value.Context, name string) (float64, error) {
	v, ok := ctx.GetVar(name)
	if !ok {
		return 0, interperr.NewRuntime("missing argument %q", name)
	}
	n, ok := v.(*value.Number)
	if !ok {
		return 0, interperr.NewType("argument %q must be a number, got %s", name, v.TypeName())
	}
	return n.DoubleValue(), nil
}

func numberArgAny(ctx value.Context, names ...string) (float64, error) {
	for _, name := range names {
		if v, ok := ctx.GetVar(name); ok {
			n, ok := v.(*value.Number)
			if !ok {
				return 0, interperr.NewType("argument %q must be a number, got %s", name, v.TypeName())
			}
			return n.DoubleValue(), nil
		}
	}
	return 0, interperr.NewRuntime("missing argument (one of %v)", names)
}
