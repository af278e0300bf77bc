// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

// Resolve implements the §4.3 prototype-chain walk for member/index access.
// Given a sequence and a key, it returns the found value together with the
// map that actually defined it (so callers like assignment-to-member can
// write back to the right place), walking up to isaChainLimit __isa hops
// before giving up with a limit-exceeded error.
//
// Temp and Var sequences are resolved one step (no ref) before the walk
// begins, so `x.field` works whether x is a bare identifier or an
// already-resolved value.
func Resolve(seq Value, key Value, ctx Context) (Value, *Map, error) {
	seq, err := ResolveSequence(seq, ctx)
	if err != nil {
		return nil, nil, err
	}

	switch s := seq.(type) {
	case *Map:
		return resolveOnMap(s, key, ctx.VM())
	case *List:
		return resolveViaDefaultMap(ctx.VM().ListType(), key, ctx.VM())
	case *String:
		return resolveViaDefaultMap(ctx.VM().StringType(), key, ctx.VM())
	case *Number:
		return resolveViaDefaultMap(ctx.VM().NumberType(), key, ctx.VM())
	case *Function:
		return resolveViaDefaultMap(ctx.VM().FunctionType(), key, ctx.VM())
	default:
		return nil, nil, newTypeError("cannot look up member on a %s", seq.TypeName())
	}
}

// ResolveSequence resolves a bare Temp or Var one step (no ref) so that
// callers doing their own dispatch on the concrete sequence type — tac's
// ElemBofA handling numeric List/String indexing outside the prototype walk
// — see the same concrete value Resolve would. Every other variant is
// returned unchanged.
func ResolveSequence(seq Value, ctx Context) (Value, error) {
	if t, ok := seq.(Temp); ok {
		return t.Val(ctx, false)
	}
	if v, ok := seq.(Var); ok {
		return v.Val(ctx, false)
	}
	return seq, nil
}

// resolveOnMap walks m's own entries, then its __isa chain, falling back to
// the VM's generic map type exactly once after an absent __isa.
func resolveOnMap(m *Map, key Value, vm VM) (Value, *Map, error) {
	cur := m
	fellBackToMapType := false
	for hops := 0; ; hops++ {
		if hops > isaChainLimit {
			return nil, nil, newLimitError("__isa chain exceeded %d hops", isaChainLimit)
		}
		if v, ok := cur.Lookup(key); ok {
			return v, cur, nil
		}
		parent, ok := cur.Isa()
		if ok {
			cur = parent
			continue
		}
		if fellBackToMapType || vm.MapType() == nil || vm.MapType() == cur {
			return nil, nil, newKeyError("key not found: %s", key.ToString(vm))
		}
		fellBackToMapType = true
		cur = vm.MapType()
	}
}

// resolveViaDefaultMap looks a key up on a per-type default map (and its own
// __isa chain, since intrinsic libraries are free to build one), used for
// List/String/Number/Function member access.
func resolveViaDefaultMap(typeMap *Map, key Value, vm VM) (Value, *Map, error) {
	if typeMap == nil {
		return nil, nil, newKeyError("key not found: %s", key.ToString(vm))
	}
	return resolveOnMap(typeMap, key, vm)
}

// IsA reports whether v's type (or, if v is itself a Map, v's own __isa
// chain) ever reaches t, walking the same chain Resolve does.
func IsA(v Value, t Value, vm VM) (bool, error) {
	tm, ok := t.(*Map)
	if !ok {
		return false, nil
	}
	var cur *Map
	switch s := v.(type) {
	case *Map:
		cur = s
	case *List:
		cur = vm.ListType()
	case *String:
		cur = vm.StringType()
	case *Number:
		cur = vm.NumberType()
	case *Function:
		cur = vm.FunctionType()
	default:
		return false, nil
	}
	for hops := 0; cur != nil; hops++ {
		if hops > isaChainLimit {
			return false, newLimitError("__isa chain exceeded %d hops", isaChainLimit)
		}
		if cur == tm {
			return true, nil
		}
		parent, ok := cur.Isa()
		if !ok {
			if cur != tm && vm.MapType() == tm && cur != vm.MapType() {
				return true, nil
			}
			return false, nil
		}
		cur = parent
	}
	return false, nil
}
