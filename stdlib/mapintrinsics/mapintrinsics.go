// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package mapintrinsics registers map-handling intrinsics (keys, hasKey,
// remove) over value.Map, mirroring listintrinsics' shape but for the
// Map Value's insertion-ordered, structurally-keyed entries (§3.2). "len"
// is shared across collection types and lives in listintrinsics instead of
// being registered separately here.
package mapintrinsics

import (
	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/interperr"
	"github.com/probeum/miniscript/value"
)

// Register installs every intrinsic in this package into reg and binds it
// by name in globals.
func Register(reg *intrinsic.Registry, globals *value.Map) {
	install(reg, globals, intrinsic.Create("keys").
		AddParam("self", nil).
		SetFunc(keys))
	install(reg, globals, intrinsic.Create("hasKey").
		AddParam("self", nil).
		AddParam("key", nil).
		SetFunc(hasKey))
	install(reg, globals, intrinsic.Create("remove").
		AddParam("self", nil).
		AddParam("key", nil).
		SetFunc(remove))
}

func install(reg *intrinsic.Registry, globals *value.Map, in *intrinsic.Intrinsic) {
	globals.SetString(in.Name, reg.Register(in))
}

func keys(ctx value.Context) (intrinsic.Result, error) {
	m, err := mapArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	// m.Keys() hands back the same key Values m itself holds and indexes by;
	// they need their own reference before going into a new List, the same
	// way List.FullEval refs elements it's copying out (value/list.go).
	return intrinsic.Done(ctx.VM().Pool().NewList(value.RefAll(m.Keys()))), nil
}

func hasKey(ctx value.Context) (intrinsic.Result, error) {
	m, err := mapArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	key, ok := ctx.GetVar("key")
	if !ok {
		return intrinsic.Result{}, interperr.NewRuntime("missing argument %q", "key")
	}
	_, present := m.Lookup(key)
	return intrinsic.Done(fromBool(present)), nil
}

func remove(ctx value.Context) (intrinsic.Result, error) {
	m, err := mapArg(ctx, "self")
	if err != nil {
		return intrinsic.Result{}, err
	}
	key, ok := ctx.GetVar("key")
	if !ok {
		return intrinsic.Result{}, interperr.NewRuntime("missing argument %q", "key")
	}
	return intrinsic.Done(fromBool(m.Delete(key))), nil
}

// fromBool returns the shared Number singleton representing the fuzzy
// truth value of b, per §3.1's "booleans are just Numbers" convention.
func fromBool(b bool) value.Value {
	if b {
		return value.One
	}
	return value.Zero
}

func mapArg(ctx value.Context, name string) (*value.Map, error) {
	v, ok := ctx.GetVar(name)
	if !ok {
		return nil, interperr.NewRuntime("missing argument %q", name)
	}
	m, ok := v.(*value.Map)
	if !ok {
		return nil, interperr.NewType("argument %q must be a map, got %s", name, v.TypeName())
	}
	return m, nil
}
