// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package machine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/probeum/miniscript/interperr"
	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/tac"
	"github.com/probeum/miniscript/value"
)

// DefaultStepLimit is the wall-clock-work cap per RunUntilDone call used by
// the reference host harness, per §4.7.
const DefaultStepLimit = 6000

// Machine is one script's execution engine: the pool, the per-type default
// prototype maps installed by the intrinsic library, the intrinsic
// registry, and the call stack of Contexts. Implements value.VM.
type Machine struct {
	pool *value.Pool

	mapType, listType, stringType, numberType, functionType *value.Map

	intrinsics *intrinsic.Registry

	stack []*Context

	// StandardOutput, ErrorOutput, and ImplicitOutput are the injectable
	// sinks from §6's host API. A nil StandardOutput or ImplicitOutput
	// prints to stdout; a nil ErrorOutput logs through log.Error.
	StandardOutput func(string)
	ErrorOutput    func(string)
	ImplicitOutput func(string)
}

// New creates a Machine with an empty pool and no type maps installed; the
// intrinsic library installs MapType/etc. via the Set* methods before any
// script runs.
func New(reg *intrinsic.Registry) *Machine {
	if reg == nil {
		reg = intrinsic.NewRegistry()
	}
	return &Machine{
		pool:       value.NewPool(),
		intrinsics: reg,
	}
}

func (m *Machine) Pool() *value.Pool           { return m.pool }
func (m *Machine) MapType() *value.Map         { return m.mapType }
func (m *Machine) ListType() *value.Map        { return m.listType }
func (m *Machine) StringType() *value.Map      { return m.stringType }
func (m *Machine) NumberType() *value.Map      { return m.numberType }
func (m *Machine) FunctionType() *value.Map    { return m.functionType }
func (m *Machine) Intrinsics() *intrinsic.Registry { return m.intrinsics }

func (m *Machine) SetMapType(t *value.Map)      { m.mapType = t }
func (m *Machine) SetListType(t *value.Map)     { m.listType = t }
func (m *Machine) SetStringType(t *value.Map)   { m.stringType = t }
func (m *Machine) SetNumberType(t *value.Map)   { m.numberType = t }
func (m *Machine) SetFunctionType(t *value.Map) { m.functionType = t }

// Top returns the currently-executing Context, or nil if the call stack is
// empty.
func (m *Machine) Top() *Context {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// pushCall binds fn's parameters from args (falling back to each
// parameter's default, erroring if neither is present) and pushes a new
// Context, whose eventual ReturnA value is written to returnLhs in the
// frame beneath it.
func (m *Machine) pushCall(fn *value.Function, args []value.Value, returnLhs value.Value) error {
	ctx := newContext(m, fn, returnLhs)
	if err := bindParams(ctx, fn.Params, args); err != nil {
		return err
	}
	m.stack = append(m.stack, ctx)
	return nil
}

// pushIntrinsicCall pushes a Context for an intrinsic call exactly like
// pushCall does for a regular CallFunctionA target — same parameter
// binding, same returnLhs bookkeeping — except the frame carries in
// instead of bytecode, so step (see stepIntrinsicFrame) invokes its Go
// implementation rather than evaluating tac.Lines. This lets the compiler
// emit one opcode, CallFunctionA, for every call expression: whether the
// callee resolves to a user function or an intrinsic-backed Function Value
// is a Machine-level concern, not a compile-time one.
func (m *Machine) pushIntrinsicCall(in *intrinsic.Intrinsic, args []value.Value, returnLhs value.Value) error {
	ctx := newContext(m, in.GetFunc(), returnLhs)
	if err := bindParams(ctx, in.Params, args); err != nil {
		return err
	}
	ctx.intr = in
	m.stack = append(m.stack, ctx)
	return nil
}

func bindParams(ctx *Context, params []value.Param, args []value.Value) error {
	for i, p := range params {
		var v value.Value
		switch {
		case i < len(args):
			v = args[i]
		case p.Default != nil:
			v = p.Default
		default:
			return interperr.NewRuntime("missing required argument %q calling function", p.Name)
		}
		ctx.SetVar(p.Name, v)
	}
	return nil
}

func (m *Machine) popCall() *Context {
	n := len(m.stack)
	if n == 0 {
		return nil
	}
	ctx := m.stack[n-1]
	m.stack = m.stack[:n-1]
	return ctx
}

// Run pushes fn as a new top-level call with args bound to its parameters
// and runs it to completion, a convenience wrapper over RunUntilDone for the
// common top-level-script case.
func (m *Machine) Run(fn *value.Function, args []value.Value) (value.Value, error) {
	if err := m.pushCall(fn, args, nil); err != nil {
		return nil, err
	}
	result, done, err := m.RunUntilDone(0, false)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, interperr.NewLimit("script did not finish within the step budget")
	}
	return result, nil
}

// Call pushes fn as a new top-level call (like Run) but exposes RunUntilDone's
// full stepLimit/returnEarlyOnPartial control, for a host that wants to run
// the compiled "main" function with a bounded step budget or cooperative
// suspension instead of Run's run-to-completion-or-error behavior.
func (m *Machine) Call(fn *value.Function, args []value.Value, stepLimit int, returnEarlyOnPartial bool) (value.Value, bool, error) {
	if err := m.pushCall(fn, args, nil); err != nil {
		return nil, false, err
	}
	return m.RunUntilDone(stepLimit, returnEarlyOnPartial)
}

// RunUntilDone steps the machine until the call stack empties, a suspended
// intrinsic is hit while returnEarlyOnPartial is set, or stepLimit steps
// have run (stepLimit <= 0 means DefaultStepLimit). It returns the value
// the outermost frame returned (or Null if the stack was already empty),
// whether execution actually finished, and any error encountered.
func (m *Machine) RunUntilDone(stepLimit int, returnEarlyOnPartial bool) (value.Value, bool, error) {
	if stepLimit <= 0 {
		stepLimit = DefaultStepLimit
	}
	var result value.Value = value.Null
	for i := 0; i < stepLimit; i++ {
		if m.Top() == nil {
			return result, true, nil
		}
		suspended, finished, stepResult, err := m.step()
		if err != nil {
			m.reportError(err)
			return nil, true, err
		}
		if finished {
			result = stepResult
		}
		if suspended && returnEarlyOnPartial {
			return result, false, nil
		}
	}
	return result, false, nil
}

// step executes exactly one Line of the top Context. finished reports
// whether that step emptied the call stack (the script as a whole
// completed), in which case result is its final answer.
func (m *Machine) step() (suspended bool, finished bool, result value.Value, err error) {
	ctx := m.Top()
	if ctx == nil {
		return false, true, value.Null, nil
	}
	if ctx.intr != nil {
		return m.stepIntrinsicFrame(ctx)
	}
	code := ctx.fn.Code
	if ctx.lineNum >= len(code) {
		m.finishFrame(ctx, value.Null)
		return false, m.Top() == nil, value.Null, nil
	}
	line, ok := code[ctx.lineNum].(*tac.Line)
	if !ok {
		return false, false, nil, interperr.NewRuntime("code slot %d is not a tac.Line", ctx.lineNum)
	}
	ctx.lineNum++

	res, evalErr := line.Evaluate(ctx)
	if evalErr != nil {
		if ie, ok := evalErr.(*interperr.Error); ok {
			evalErr = ie.WithLine(line.SourceLine())
		}
		return false, false, nil, evalErr
	}

	switch res.Signal {
	case tac.SigNone:
		if line.Op == tac.AssignImplicit {
			m.reportImplicit(ctx)
		}
		return false, false, nil, nil

	case tac.SigReturn:
		m.finishFrame(ctx, res.Result)
		return false, m.Top() == nil, res.Result, nil

	case tac.SigCall:
		args := ctx.TakeParams(res.Call.ArgCount)
		if in, ok := m.intrinsics.Lookup(res.Call.Func); ok {
			if err := m.pushIntrinsicCall(in, args, line.Lhs); err != nil {
				return false, false, nil, err
			}
			return false, false, nil, nil
		}
		if err := m.pushCall(res.Call.Func, args, line.Lhs); err != nil {
			return false, false, nil, err
		}
		return false, false, nil, nil

	case tac.SigIntrinsic:
		susp, ierr := m.stepIntrinsic(ctx, line, res.Intrinsic)
		return susp, false, nil, ierr
	}
	return false, false, nil, interperr.NewRuntime("unhandled evaluator signal %d", res.Signal)
}

// stepIntrinsicFrame runs one step of a Context pushed by pushIntrinsicCall:
// it has no bytecode, just ctx.intr's Go implementation, invoked with its
// arguments already bound into ctx.locals exactly like a regular call
// (§4.6). A not-done Result leaves the frame on the stack so the next step
// re-invokes the same intrinsic, recovering its state via ctx.Partial();
// a done Result pops the frame and stores its value in the caller, the
// same as returning from an ordinary function.
func (m *Machine) stepIntrinsicFrame(ctx *Context) (suspended, finished bool, result value.Value, err error) {
	res, ierr := ctx.intr.Invoke(ctx)
	if ierr != nil {
		ctx.ClearPartial()
		return false, false, nil, ierr
	}
	if !res.Done {
		return true, false, nil, nil
	}
	ctx.ClearPartial()
	m.finishFrame(ctx, res.Value)
	return false, m.Top() == nil, res.Value, nil
}

// stepIntrinsic invokes the intrinsic named by idVal against ctx, honoring
// the suspend/resume protocol: a not-done Result rewinds lineNum so the same
// CallIntrinsicA Line runs again next step (§4.6).
func (m *Machine) stepIntrinsic(ctx *Context, line *tac.Line, idVal value.Value) (bool, error) {
	fn, ok := idVal.(*value.Function)
	if !ok {
		return false, interperr.NewType("intrinsic id must be a function reference, got %s", idVal.TypeName())
	}
	in, ok := m.intrinsics.Lookup(fn)
	if !ok {
		return false, interperr.NewRuntime("no intrinsic registered for this function reference")
	}
	result, err := in.Invoke(ctx)
	if err != nil {
		ctx.ClearPartial()
		return false, err
	}
	if !result.Done {
		ctx.lineNum--
		return true, nil
	}
	ctx.ClearPartial()
	storeResult(ctx, line, result.Value)
	return false, nil
}

// storeResult writes an intrinsic's final value to the CallIntrinsicA
// Line's lhs, reusing the same Temp/Var destinations AssignA does.
func storeResult(ctx *Context, line *tac.Line, v value.Value) {
	switch l := line.Lhs.(type) {
	case value.Temp:
		ctx.SetTemp(int(l), v)
	case value.Var:
		ctx.SetVar(l.Name, v)
	}
}

// finishFrame pops ctx, releases its temporaries/locals, and — if a caller
// frame remains — stores the returned value at ctx.returnLhs there.
func (m *Machine) finishFrame(ctx *Context, result value.Value) {
	m.popCall()
	caller := m.Top()
	if caller != nil && ctx.returnLhs != nil {
		switch l := ctx.returnLhs.(type) {
		case value.Temp:
			caller.SetTemp(int(l), result)
		case value.Var:
			caller.SetVar(l.Name, result)
		}
	}
	ctx.release()
}

// reportImplicit surfaces the value a bare top-level expression statement
// produced — the REPL convention of printing `3 + 4`'s result without an
// explicit `print` call (§6). The value lives wherever AssignImplicit's lhs
// put it, conventionally the "_" Var.
func (m *Machine) reportImplicit(ctx *Context) {
	v, ok := ctx.GetVar("_")
	if !ok || v == value.Null {
		return
	}
	msg := v.CodeForm(m, 8)
	if m.ImplicitOutput != nil {
		m.ImplicitOutput(msg)
	} else {
		fmt.Println(msg)
	}
}

func (m *Machine) reportError(err error) {
	msg := err.Error()
	if m.ErrorOutput != nil {
		m.ErrorOutput(msg)
	} else {
		log.Error("miniscript: unhandled runtime error", "err", msg)
	}
}

func (m *Machine) Output(s string) {
	if m.StandardOutput != nil {
		m.StandardOutput(s)
		return
	}
	fmt.Println(s)
}
