// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package machine

import (
	"testing"

	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/tac"
	"github.com/probeum/miniscript/value"
)

func lines(ls ...*tac.Line) []value.Line {
	out := make([]value.Line, len(ls))
	for i, l := range ls {
		out[i] = l
	}
	return out
}

// TestSimpleArithmeticReturn runs `return 2 + 3*4` as two temps and a return,
// pinning §8 scenario 1 end-to-end through the Machine.
func TestSimpleArithmeticReturn(t *testing.T) {
	m := New(nil)
	pool := m.Pool()

	code := lines(
		tac.New(value.Temp(0), tac.ATimesB, pool.NewNumber(3), pool.NewNumber(4), 1),
		tac.New(value.Temp(1), tac.APlusB, pool.NewNumber(2), value.Temp(0), 1),
		tac.New(nil, tac.ReturnA, value.Temp(1), nil, 1),
	)
	fn := value.NewFunction(nil, code)

	result, err := m.Run(fn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DoubleValue() != 14 {
		t.Errorf("script result = %v, want 14", result.DoubleValue())
	}
}

// TestNestedCallReturnPropagation pins the fix for the completion-tracking
// bug: a nested function's own completion must not stomp the outer script's
// eventual return value.
func TestNestedCallReturnPropagation(t *testing.T) {
	m := New(nil)
	pool := m.Pool()

	// inner(): return 10
	inner := value.NewFunction(nil, lines(
		tac.New(nil, tac.ReturnA, pool.NewNumber(10), nil, 1),
	))

	// outer(): call inner() -> temp0; return temp0 + 5
	code := lines(
		tac.New(value.Temp(0), tac.CallFunctionA, inner, pool.NewNumber(0), 1),
		tac.New(value.Temp(1), tac.APlusB, value.Temp(0), pool.NewNumber(5), 2),
		tac.New(nil, tac.ReturnA, value.Temp(1), nil, 2),
	)
	fn := value.NewFunction(nil, code)

	result, err := m.Run(fn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DoubleValue() != 15 {
		t.Errorf("outer script result = %v, want 15 (inner()=10 + 5)", result.DoubleValue())
	}
}

// TestSuspendableIntrinsic exercises CallIntrinsicA's suspend/resume
// protocol end to end: the intrinsic returns not-done once, then done.
func TestSuspendableIntrinsic(t *testing.T) {
	reg := intrinsic.NewRegistry()
	calls := 0
	in := intrinsic.Create("twoStep").SetFunc(func(ctx value.Context) (intrinsic.Result, error) {
		calls++
		if calls == 1 {
			ctx.SetPartial(intrinsic.NewResumeToken(), nil)
			return intrinsic.Suspend(), nil
		}
		return intrinsic.Done(ctx.VM().Pool().NewNumber(42)), nil
	})
	fnVal := reg.Register(in)

	m := New(reg)

	code := lines(
		tac.New(value.Temp(0), tac.CallIntrinsicA, fnVal, nil, 1),
		tac.New(nil, tac.ReturnA, value.Temp(0), nil, 1),
	)
	fn := value.NewFunction(nil, code)

	result, done, err := func() (value.Value, bool, error) {
		if err := m.pushCall(fn, nil, nil); err != nil {
			return nil, false, err
		}
		return m.RunUntilDone(0, true)
	}()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Fatalf("expected execution to pause on the first suspend, not finish")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one Invoke before suspending, got %d", calls)
	}

	result, done, err = m.RunUntilDone(0, true)
	if err != nil {
		t.Fatalf("unexpected error resuming: %v", err)
	}
	if !done {
		t.Fatal("expected execution to finish after the intrinsic completes")
	}
	if result.DoubleValue() != 42 {
		t.Errorf("result = %v, want 42", result.DoubleValue())
	}
}

// TestStepLimitStopsUnfinishedScript pins the §4.7 wall-clock-work cap: an
// infinite loop must not run forever, and RunUntilDone reports !done.
func TestStepLimitStopsUnfinishedScript(t *testing.T) {
	m := New(nil)
	pool := m.Pool()

	// Line 0: goto 0 (infinite loop).
	code := lines(
		tac.New(nil, tac.GotoA, pool.NewNumber(0), nil, 1),
	)
	fn := value.NewFunction(nil, code)

	if err := m.pushCall(fn, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, done, err := m.RunUntilDone(50, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Fatal("expected the step-limited run to report unfinished")
	}
}
