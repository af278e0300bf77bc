// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package tac

import (
	"math"
	"strings"

	"github.com/probeum/miniscript/value"
)

// binaryArith implements APlusB..AModB (§4.2). Custom overrides are offered
// first whenever either operand implements value.Custom (§4.4); if the
// override's ok is false, or neither operand is Custom, the built-in
// coercion rules below run. Only the left operand's override is consulted
// when both sides are Custom, since the override method already names the
// operation from that value's own perspective ("self <op> other").
func binaryArith(ctx value.Context, op Opcode, a, b value.Value) (value.Value, error) {
	if v, err, ok := customOverride(ctx.VM(), op, a, b); ok {
		return v, err
	}

	switch op {
	case APlusB:
		return addValues(ctx, a, b)
	case AMinusB:
		return subValues(ctx, a, b)
	case ATimesB:
		return mulValues(ctx, a, b)
	case ADividedByB:
		return divValues(ctx, a, b)
	case APowB:
		return powValues(ctx, a, b)
	case AModB:
		return modValues(ctx, a, b)
	}
	return nil, newRuntimeErrorf("unreachable arithmetic opcode %v", op)
}

func customOverride(vm value.VM, op Opcode, a, b value.Value) (value.Value, error, bool) {
	c, ok := a.(value.Custom)
	if !ok {
		c, ok = b.(value.Custom)
		if !ok {
			return nil, nil, false
		}
		a, b = b, a
	}
	var v value.Value
	var applied bool
	switch op {
	case APlusB:
		v, applied = c.Add(vm, b)
	case AMinusB:
		v, applied = c.Sub(vm, b)
	case ATimesB:
		v, applied = c.Mul(vm, b)
	case ADividedByB:
		v, applied = c.Div(vm, b)
	default:
		return nil, nil, false
	}
	if !applied {
		return nil, nil, false
	}
	return v, nil, true
}

func isString(v value.Value) bool {
	_, ok := v.(*value.String)
	return ok
}

func addValues(ctx value.Context, a, b value.Value) (value.Value, error) {
	if isString(a) || isString(b) {
		s := a.ToString(ctx.VM()) + b.ToString(ctx.VM())
		if len(s) > value.MaxStringLen {
			return nil, limitErrorf("string result exceeds %d bytes", value.MaxStringLen)
		}
		return ctx.VM().Pool().NewString(s), nil
	}
	if la, ok := a.(*value.List); ok {
		lb, ok := b.(*value.List)
		if !ok {
			return nil, typeErrorf("cannot add %s to a list", b.TypeName())
		}
		if la.Len()+lb.Len() > value.MaxListLen {
			return nil, limitErrorf("list result exceeds %d elements", value.MaxListLen)
		}
		out := make([]value.Value, 0, la.Len()+lb.Len())
		out = append(out, la.Items()...)
		out = append(out, lb.Items()...)
		return ctx.VM().Pool().NewList(refAllCopy(out)), nil
	}
	if ma, ok := a.(*value.Map); ok {
		mb, ok := b.(*value.Map)
		if !ok {
			return nil, typeErrorf("cannot add %s to a map", b.TypeName())
		}
		return ma.Merge(ctx.VM(), mb), nil
	}
	na, aok := a.(*value.Number)
	nb, bok := b.(*value.Number)
	if aok && bok {
		return ctx.VM().Pool().NewNumber(na.DoubleValue() + nb.DoubleValue()), nil
	}
	return nil, typeErrorf("cannot add %s and %s", a.TypeName(), b.TypeName())
}

// refAllCopy refs each element for a newly-constructed container that is
// taking its own slice of items (as opposed to List.FullEval's refAll,
// which refs into a freshly-resolved slice it already owns).
func refAllCopy(items []value.Value) []value.Value {
	out := make([]value.Value, len(items))
	for i, v := range items {
		out[i] = refOf(v)
	}
	return out
}

func refOf(v value.Value) value.Value {
	if p, ok := v.(value.Pooled); ok {
		return p.Ref()
	}
	return v
}

func subValues(ctx value.Context, a, b value.Value) (value.Value, error) {
	if sa, ok := a.(*value.String); ok {
		sb, ok := b.(*value.String)
		if !ok {
			return nil, typeErrorf("cannot subtract %s from a string", b.TypeName())
		}
		return ctx.VM().Pool().NewString(strings.TrimSuffix(sa.ToString(ctx.VM()), sb.ToString(ctx.VM()))), nil
	}
	na, aok := a.(*value.Number)
	nb, bok := b.(*value.Number)
	if aok && bok {
		return ctx.VM().Pool().NewNumber(na.DoubleValue() - nb.DoubleValue()), nil
	}
	return nil, typeErrorf("cannot subtract %s and %s", a.TypeName(), b.TypeName())
}

func mulValues(ctx value.Context, a, b value.Value) (value.Value, error) {
	if s, ok := stringAndFactor(a, b); ok {
		return replicateString(ctx, s.factor, s.str)
	}
	if l, ok := listAndFactor(a, b); ok {
		return replicateList(ctx, l.factor, l.list)
	}
	na, aok := a.(*value.Number)
	nb, bok := b.(*value.Number)
	if aok && bok {
		return ctx.VM().Pool().NewNumber(na.DoubleValue() * nb.DoubleValue()), nil
	}
	return nil, typeErrorf("cannot multiply %s and %s", a.TypeName(), b.TypeName())
}

func divValues(ctx value.Context, a, b value.Value) (value.Value, error) {
	if s, ok := stringAndFactor(a, b); ok {
		if s.factor == 0 {
			return value.EmptyString, nil
		}
		return replicateString(ctx, 1/s.factor, s.str)
	}
	if l, ok := listAndFactor(a, b); ok {
		if l.factor == 0 {
			return ctx.VM().Pool().NewList(nil), nil
		}
		return replicateList(ctx, 1/l.factor, l.list)
	}
	na, aok := a.(*value.Number)
	nb, bok := b.(*value.Number)
	if aok && bok {
		return ctx.VM().Pool().NewNumber(na.DoubleValue() / nb.DoubleValue()), nil
	}
	return nil, typeErrorf("cannot divide %s and %s", a.TypeName(), b.TypeName())
}

func powValues(ctx value.Context, a, b value.Value) (value.Value, error) {
	na, aok := a.(*value.Number)
	nb, bok := b.(*value.Number)
	if aok && bok {
		return ctx.VM().Pool().NewNumber(math.Pow(na.DoubleValue(), nb.DoubleValue())), nil
	}
	return nil, typeErrorf("cannot raise %s to the power of %s", a.TypeName(), b.TypeName())
}

func modValues(ctx value.Context, a, b value.Value) (value.Value, error) {
	na, aok := a.(*value.Number)
	nb, bok := b.(*value.Number)
	if aok && bok {
		return ctx.VM().Pool().NewNumber(math.Mod(na.DoubleValue(), nb.DoubleValue())), nil
	}
	return nil, typeErrorf("cannot take %s mod %s", a.TypeName(), b.TypeName())
}

type strFactor struct {
	str    *value.String
	factor float64
}

func stringAndFactor(a, b value.Value) (strFactor, bool) {
	if s, ok := a.(*value.String); ok {
		if n, ok := b.(*value.Number); ok {
			return strFactor{s, n.DoubleValue()}, true
		}
	}
	return strFactor{}, false
}

type listFactor struct {
	list   *value.List
	factor float64
}

func listAndFactor(a, b value.Value) (listFactor, bool) {
	if l, ok := a.(*value.List); ok {
		if n, ok := b.(*value.Number); ok {
			return listFactor{l, n.DoubleValue()}, true
		}
	}
	return listFactor{}, false
}

// replicateString implements `s * n`: the integer part of n full copies,
// plus that fraction of one more copy, capped at MaxStringLen.
func replicateString(ctx value.Context, factor float64, s *value.String) (value.Value, error) {
	if factor <= 0 {
		return value.EmptyString, nil
	}
	rs := s.Runes()
	whole := int(factor)
	frac := factor - float64(whole)
	var b strings.Builder
	for i := 0; i < whole; i++ {
		b.WriteString(string(rs))
		if b.Len() > value.MaxStringLen {
			return nil, limitErrorf("string result exceeds %d bytes", value.MaxStringLen)
		}
	}
	if frac > 0 {
		n := int(float64(len(rs)) * frac)
		b.WriteString(string(rs[:n]))
	}
	if b.Len() > value.MaxStringLen {
		return nil, limitErrorf("string result exceeds %d bytes", value.MaxStringLen)
	}
	return ctx.VM().Pool().NewString(b.String()), nil
}

// replicateList implements `l * n` analogously to replicateString.
func replicateList(ctx value.Context, factor float64, l *value.List) (value.Value, error) {
	if factor <= 0 {
		return ctx.VM().Pool().NewList(nil), nil
	}
	items := l.Items()
	whole := int(factor)
	frac := factor - float64(whole)
	out := make([]value.Value, 0, int(float64(len(items))*factor)+1)
	for i := 0; i < whole; i++ {
		out = append(out, items...)
		if len(out) > value.MaxListLen {
			return nil, limitErrorf("list result exceeds %d elements", value.MaxListLen)
		}
	}
	if frac > 0 {
		n := int(float64(len(items)) * frac)
		out = append(out, items[:n]...)
	}
	if len(out) > value.MaxListLen {
		return nil, limitErrorf("list result exceeds %d elements", value.MaxListLen)
	}
	return ctx.VM().Pool().NewList(refAllCopy(out)), nil
}

// compare implements the ordinal/numeric comparison operators; any other
// type pairing compares false (§4.5).
func compare(op Opcode, a, b value.Value) (value.Value, error) {
	var less, equal bool
	switch av := a.(type) {
	case *value.Number:
		bv, ok := b.(*value.Number)
		if !ok {
			return boolNumber(false), nil
		}
		less = av.DoubleValue() < bv.DoubleValue()
		equal = av.DoubleValue() == bv.DoubleValue()
	case *value.String:
		bv, ok := b.(*value.String)
		if !ok {
			return boolNumber(false), nil
		}
		c := strings.Compare(av.ToString(nil), bv.ToString(nil))
		less = c < 0
		equal = c == 0
	default:
		return boolNumber(false), nil
	}
	switch op {
	case AGreaterThanB:
		return boolNumber(!less && !equal), nil
	case AGreatOrEqualB:
		return boolNumber(!less), nil
	case ALessThanB:
		return boolNumber(less), nil
	case ALessOrEqualB:
		return boolNumber(less || equal), nil
	}
	return nil, newRuntimeErrorf("unreachable comparison opcode %v", op)
}
