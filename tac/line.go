// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package tac

import (
	"fmt"

	"github.com/probeum/miniscript/value"
)

// Line is one three-address-code instruction: an optional destination, an
// opcode, up to two operands, and the source line it was compiled from.
// Concrete Lines are what value.Function.Code holds (as value.Line, the
// marker interface that lets value reference tac without importing it).
type Line struct {
	Lhs   value.Value
	Op    Opcode
	RhsA  value.Value
	RhsB  value.Value
	SrcLn int
}

// New constructs a Line.
func New(lhs value.Value, op Opcode, rhsA, rhsB value.Value, srcLine int) *Line {
	return &Line{Lhs: lhs, Op: op, RhsA: rhsA, RhsB: rhsB, SrcLn: srcLine}
}

// SourceLine implements value.Line.
func (l *Line) SourceLine() int { return l.SrcLn }

func (l *Line) String() string {
	return fmt.Sprintf("%s %v %v %v", l.Op, l.Lhs, l.RhsA, l.RhsB)
}

// Signal tells the Machine what call-stack action, if any, a Line's
// evaluation requires. Everything else (assignment, arithmetic, branching)
// is fully handled inside Evaluate by writing directly to ctx.
type Signal int

const (
	// SigNone is ordinary execution: nothing further for the Machine to do.
	SigNone Signal = iota
	// SigReturn: pop ctx; if a caller frame remains, store Result there.
	SigReturn
	// SigCall: push a new Context for Call.Func, binding Call.ArgCount
	// arguments drained from ctx via TakeParams, and remember Lhs as where
	// the eventual return value goes in ctx.
	SigCall
	// SigIntrinsic: look up and invoke the intrinsic named by Intrinsic,
	// honoring ctx's suspended-partial-result protocol (§4.6), and store
	// the eventual done result at Lhs.
	SigIntrinsic
)

// CallInfo describes a pending CallFunctionA for the Machine to act on.
type CallInfo struct {
	Func     *value.Function
	ArgCount int
}

// EvalResult is what Evaluate returns after running one Line.
type EvalResult struct {
	Signal    Signal
	Result    value.Value // SigReturn: the value being returned
	Call      *CallInfo   // SigCall
	Intrinsic value.Value // SigIntrinsic: the id operand (rhsA)
}

// Evaluate executes l against ctx, per the §4.5 opcode table. The Machine
// calls this once per step, having already advanced ctx's line number past
// l (so GotoA and friends can overwrite it).
func (l *Line) Evaluate(ctx value.Context) (EvalResult, error) {
	switch l.Op {
	case Noop:
		return EvalResult{}, nil

	case AssignA, AssignImplicit:
		v, err := evalRhsForStore(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if err := store(ctx, l.Lhs, v); err != nil {
			return EvalResult{}, err
		}
		return EvalResult{}, nil

	case ReturnA:
		v, err := evalRhsForStore(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{Signal: SigReturn, Result: v}, nil

	case CopyA:
		v, err := evalRhsForStore(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if l.Lhs != nil {
			if err := store(ctx, l.Lhs, v); err != nil {
				return EvalResult{}, err
			}
		}
		return EvalResult{}, nil

	case APlusB, AMinusB, ATimesB, ADividedByB, APowB, AModB:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v, err := binaryArith(ctx, l.Op, a, b)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{}, store(ctx, l.Lhs, v)

	case AEqualB, ANotEqualB:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		eq := equalityOf(a, b)
		truth := value.Truth(eq).BoolValue()
		if l.Op == ANotEqualB {
			truth = !truth
		}
		return EvalResult{}, store(ctx, l.Lhs, boolNumber(truth))

	case AGreaterThanB, AGreatOrEqualB, ALessThanB, ALessOrEqualB:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v, err := compare(l.Op, a, b)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{}, store(ctx, l.Lhs, v)

	case AisaB:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		ok, err := isaCheck(a, b, ctx.VM())
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{}, store(ctx, l.Lhs, boolNumber(ok))

	case AAndB:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v := ctx.VM().Pool().NewNumber(value.FuzzyAnd(truthDegree(a), truthDegree(b)))
		return EvalResult{}, store(ctx, l.Lhs, v)

	case AOrB:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v := ctx.VM().Pool().NewNumber(value.FuzzyOr(truthDegree(a), truthDegree(b)))
		return EvalResult{}, store(ctx, l.Lhs, v)

	case NotA:
		a, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v := notOf(ctx, a)
		return EvalResult{}, store(ctx, l.Lhs, v)

	case GotoA:
		a, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		ctx.SetLineNum(int(a.IntValue()))
		return EvalResult{}, nil

	case GotoAifB, GotoAifTrulyB, GotoAifNotB:
		a, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		b, err := evalOperand(l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if branchTaken(l.Op, b) {
			ctx.SetLineNum(int(a.IntValue()))
		}
		return EvalResult{}, nil

	case PushParam:
		v, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		ctx.PushParam(v)
		return EvalResult{}, nil

	case CallFunctionA:
		fnVal, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		fn, ok := fnVal.(*value.Function)
		if !ok {
			return EvalResult{}, typeErrorf("cannot call a %s", fnVal.TypeName())
		}
		argCount := 0
		if l.RhsB != nil {
			b, err := evalOperand(l.RhsB, ctx)
			if err != nil {
				return EvalResult{}, err
			}
			argCount = int(b.IntValue())
		}
		return EvalResult{Signal: SigCall, Call: &CallInfo{Func: fn, ArgCount: argCount}}, nil

	case CallIntrinsicA:
		id, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{Signal: SigIntrinsic, Intrinsic: id}, nil

	case ElemBofA:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v, err := elemOf(ctx, a, b, false)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{}, store(ctx, l.Lhs, v)

	case ElemBofIterA:
		a, b, err := evalPair(l.RhsA, l.RhsB, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v, err := elemOf(ctx, a, b, true)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{}, store(ctx, l.Lhs, v)

	case LengthOfA:
		a, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		v, err := lengthOf(ctx, a)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{}, store(ctx, l.Lhs, v)

	case BindContextOfA:
		a, err := evalOperand(l.RhsA, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if fn, ok := a.(*value.Function); ok {
			fn.BindContext(ctx.Locals())
		}
		return EvalResult{}, nil

	default:
		return EvalResult{}, newRuntimeErrorf("unknown opcode %v", l.Op)
	}
}

// evalOperand is plain Val (no container EvalCopy) — used by every operand
// except the storeable right-hand side of AssignA/ReturnA/CopyA.
func evalOperand(v value.Value, ctx value.Context) (value.Value, error) {
	if v == nil {
		return value.Null, nil
	}
	return v.Val(ctx, false)
}

func evalPair(a, b value.Value, ctx value.Context) (value.Value, value.Value, error) {
	av, err := evalOperand(a, ctx)
	if err != nil {
		return nil, nil, err
	}
	bv, err := evalOperand(b, ctx)
	if err != nil {
		return nil, nil, err
	}
	return av, bv, nil
}

// evalRhsForStore implements "FullEval if it is a List or Map literal, else
// Val" (§4.5 AssignA/CopyA/ReturnA).
func evalRhsForStore(v value.Value, ctx value.Context) (value.Value, error) {
	if v == nil {
		return value.Null, nil
	}
	switch v.(type) {
	case *value.List, *value.Map:
		return v.FullEval(ctx)
	default:
		return v.Val(ctx, false)
	}
}

// store writes val to lhs: a Temp slot, a Var (local assignment), or a
// SeqElem (member/index assignment into the resolved Map/List).
func store(ctx value.Context, lhs value.Value, val value.Value) error {
	if lhs == nil {
		return nil
	}
	switch l := lhs.(type) {
	case value.Temp:
		ctx.SetTemp(int(l), val)
		return nil
	case value.Var:
		ctx.SetVar(l.Name, val)
		return nil
	case *value.SeqElem:
		return storeIntoSeqElem(ctx, l, val)
	default:
		return nil
	}
}

func storeIntoSeqElem(ctx value.Context, se *value.SeqElem, val value.Value) error {
	seq, err := value.ResolveSequence(se.Sequence(), ctx)
	if err != nil {
		return err
	}
	idx, err := evalOperand(se.Index(), ctx)
	if err != nil {
		return err
	}
	switch s := seq.(type) {
	case *value.Map:
		s.Set(idx, val)
		return nil
	case *value.List:
		return s.Set(int(idx.IntValue()), val)
	default:
		return typeErrorf("cannot assign into a %s", seq.TypeName())
	}
}

func boolNumber(b bool) *value.Number {
	if b {
		return value.One
	}
	return value.Zero
}

func equalityOf(a, b value.Value) float64 {
	return a.Equality(b, 64)
}

func truthDegree(v value.Value) float64 {
	if n, ok := v.(*value.Number); ok {
		return n.DoubleValue()
	}
	if v.BoolValue() {
		return 1
	}
	return 0
}

func notOf(ctx value.Context, a value.Value) value.Value {
	if a == value.Null {
		return value.One
	}
	if v, ok := a.(*value.Number); ok {
		return ctx.VM().Pool().NewNumber(1 - value.AbsClamp01(v.DoubleValue()))
	}
	return boolNumber(!a.BoolValue())
}

func branchTaken(op Opcode, b value.Value) bool {
	switch op {
	case GotoAifB:
		return b.BoolValue()
	case GotoAifTrulyB:
		return b.IntValue() != 0
	case GotoAifNotB:
		return !b.BoolValue()
	}
	return false
}

func isaCheck(a, b value.Value, vm value.VM) (bool, error) {
	if a == value.Null {
		return b == value.Null, nil
	}
	return value.IsA(a, b, vm)
}

func elemOf(ctx value.Context, seq, key value.Value, ordinal bool) (value.Value, error) {
	resolved, err := value.ResolveSequence(seq, ctx)
	if err != nil {
		return nil, err
	}
	switch s := resolved.(type) {
	case *value.Map:
		if ordinal {
			n, ok := key.(*value.Number)
			if !ok {
				return nil, typeErrorf("map iteration index must be a number, got %s", key.TypeName())
			}
			return s.ElemAtOrdinal(ctx.VM(), int(n.IntValue()))
		}
		v, _, err := value.Resolve(resolved, key, ctx)
		return v, err
	case *value.List:
		if n, ok := key.(*value.Number); ok {
			return s.At(int(n.IntValue()))
		}
		v, _, err := value.Resolve(resolved, key, ctx)
		return v, err
	case *value.String:
		if n, ok := key.(*value.Number); ok {
			return s.At(ctx.VM(), int(n.IntValue()))
		}
		v, _, err := value.Resolve(resolved, key, ctx)
		return v, err
	default:
		v, _, err := value.Resolve(resolved, key, ctx)
		return v, err
	}
}

func lengthOf(ctx value.Context, a value.Value) (value.Value, error) {
	switch v := a.(type) {
	case *value.String:
		return ctx.VM().Pool().NewNumber(float64(len(v.Runes()))), nil
	case *value.List:
		return ctx.VM().Pool().NewNumber(float64(v.Len())), nil
	case *value.Map:
		return ctx.VM().Pool().NewNumber(float64(v.Len())), nil
	default:
		return nil, typeErrorf("cannot take length of a %s", a.TypeName())
	}
}
