// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package tac

import (
	"testing"

	"github.com/probeum/miniscript/value"
)

// ---- Minimal VM/Context fakes, mirroring value package's own test fakes ----

type fakeVM struct {
	pool                                      *value.Pool
	mapT, listT, stringT, numberT, functionT *value.Map
}

func newFakeVM() *fakeVM { return &fakeVM{pool: value.NewPool()} }

func (f *fakeVM) MapType() *value.Map      { return f.mapT }
func (f *fakeVM) ListType() *value.Map     { return f.listT }
func (f *fakeVM) StringType() *value.Map   { return f.stringT }
func (f *fakeVM) NumberType() *value.Map   { return f.numberT }
func (f *fakeVM) FunctionType() *value.Map { return f.functionT }
func (f *fakeVM) Pool() *value.Pool        { return f.pool }

type fakeContext struct {
	vm     value.VM
	temps  []value.Value
	locals *value.Map
	outer  *value.Map
	line   int
	params []value.Value
}

func newFakeContext(vm value.VM) *fakeContext {
	return &fakeContext{vm: vm, locals: vm.Pool().NewMap()}
}

func (c *fakeContext) VM() value.VM { return c.vm }
func (c *fakeContext) GetTemp(i int) value.Value {
	if i < 0 || i >= len(c.temps) {
		return nil
	}
	return c.temps[i]
}
func (c *fakeContext) SetTemp(i int, v value.Value) {
	for i >= len(c.temps) {
		c.temps = append(c.temps, value.Null)
	}
	c.temps[i] = v
}
func (c *fakeContext) GetVar(name string) (value.Value, bool) {
	if v, ok := c.locals.LookupString(name); ok {
		return v, true
	}
	if c.outer != nil {
		return c.outer.LookupString(name)
	}
	return nil, false
}
func (c *fakeContext) SetVar(name string, v value.Value) { c.locals.SetString(name, v) }
func (c *fakeContext) Locals() *value.Map                { return c.locals }
func (c *fakeContext) Outer() *value.Map                 { return c.outer }
func (c *fakeContext) LineNum() int                      { return c.line }
func (c *fakeContext) SetLineNum(n int)                  { c.line = n }
func (c *fakeContext) PushParam(v value.Value)           { c.params = append(c.params, v) }
func (c *fakeContext) TakeParams(n int) []value.Value {
	if n > len(c.params) {
		n = len(c.params)
	}
	out := c.params[:n]
	c.params = c.params[n:]
	return out
}
func (c *fakeContext) Partial() (interface{}, value.Value, bool) { return nil, nil, false }
func (c *fakeContext) SetPartial(interface{}, value.Value)       {}
func (c *fakeContext) ClearPartial()                             {}

func num(ctx *fakeContext, v float64) value.Value { return ctx.vm.Pool().NewNumber(v) }

func mustEval(t *testing.T, l *Line, ctx value.Context) EvalResult {
	t.Helper()
	res, err := l.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate(%v) returned unexpected error: %v", l, err)
	}
	return res
}

// ---- Arithmetic: 2 + 3 * 4 compiled as two lines, precedence baked into
// temp ordering (mirrors scenario 1 of §8). ----

func TestArithmeticPrecedence(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)

	mul := New(value.Temp(0), ATimesB, num(ctx, 3), num(ctx, 4), 1)
	mustEval(t, mul, ctx)

	add := New(value.Temp(1), APlusB, num(ctx, 2), value.Temp(0), 1)
	mustEval(t, add, ctx)

	got := ctx.GetTemp(1)
	if got.DoubleValue() != 14 {
		t.Errorf("2 + 3*4 = %v, want 14", got.DoubleValue())
	}
}

func TestMapMemberAccessAndSum(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	pool := vm.Pool()

	m := pool.NewMap()
	m.SetString("a", pool.NewNumber(1))
	m.SetString("b", pool.NewNumber(2))
	ctx.SetVar("m", m)

	getA := New(value.Temp(0), ElemBofA, value.NewVar("m", false), pool.NewString("a"), 1)
	mustEval(t, getA, ctx)
	getB := New(value.Temp(1), ElemBofA, value.NewVar("m", false), pool.NewString("b"), 1)
	mustEval(t, getB, ctx)

	sum := New(value.Temp(2), APlusB, value.Temp(0), value.Temp(1), 1)
	mustEval(t, sum, ctx)

	if got := ctx.GetTemp(2).DoubleValue(); got != 3 {
		t.Errorf("m.a + m.b = %v, want 3", got)
	}
}

func TestStringReplication(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	pool := vm.Pool()

	l1 := New(value.Temp(0), ATimesB, pool.NewString("ab"), pool.NewNumber(3), 1)
	mustEval(t, l1, ctx)
	if got := ctx.GetTemp(0).ToString(vm); got != "ababab" {
		t.Errorf(`"ab" * 3 = %q, want "ababab"`, got)
	}

	l2 := New(value.Temp(1), ATimesB, pool.NewString("ab"), pool.NewNumber(0.5), 1)
	mustEval(t, l2, ctx)
	if got := ctx.GetTemp(1).ToString(vm); got != "a" {
		t.Errorf(`"ab" * 0.5 = %q, want "a"`, got)
	}
}

func TestListConcatImmutable(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	pool := vm.Pool()

	l := pool.NewList([]value.Value{pool.NewNumber(1), pool.NewNumber(2), pool.NewNumber(3)})
	extra := pool.NewList([]value.Value{pool.NewNumber(4)})

	line := New(value.Temp(0), APlusB, l, extra, 1)
	mustEval(t, line, ctx)

	combined, ok := ctx.GetTemp(0).(*value.List)
	if !ok {
		t.Fatalf("expected a *value.List result")
	}
	if combined.Len() != 4 {
		t.Errorf("[1,2,3] + [4] has length %d, want 4", combined.Len())
	}
	if l.Len() != 3 {
		t.Errorf("original list mutated by +, now has length %d", l.Len())
	}
}

func TestPrototypeDispatch(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	pool := vm.Pool()

	animal := pool.NewMap()
	animal.SetString("speak", pool.NewString("?"))
	dog := pool.NewMap()
	dog.SetString(value.IsaKey, animal)
	ctx.SetVar("Dog", dog)

	line := New(value.Temp(0), ElemBofA, value.NewVar("Dog", false), pool.NewString("speak"), 1)
	mustEval(t, line, ctx)

	if got := ctx.GetTemp(0).ToString(vm); got != "?" {
		t.Errorf("Dog.speak = %q, want \"?\" (inherited via __isa)", got)
	}
}

func TestShortCircuitOrVsTruly(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	pool := vm.Pool()

	orLine := New(value.Temp(0), AOrB, pool.NewNumber(0), pool.NewNumber(0.3), 1)
	mustEval(t, orLine, ctx)
	result := ctx.GetTemp(0)
	if result.DoubleValue() != 0.3 {
		t.Errorf("0 or 0.3 = %v, want 0.3", result.DoubleValue())
	}
	if !result.BoolValue() {
		t.Errorf("fuzzy 0.3 must be truthy under BoolValue")
	}

	// GotoAifTrulyB must NOT branch on a fuzzy-but-strictly-zero IntValue.
	branch := New(nil, GotoAifTrulyB, pool.NewNumber(99), result, 1)
	ctx.SetLineNum(5)
	mustEval(t, branch, ctx)
	if ctx.LineNum() != 5 {
		t.Errorf("GotoAifTrulyB branched on fuzzy 0.3 (IntValue()==0), lineNum = %d, want unchanged 5", ctx.LineNum())
	}

	// But GotoAifB (plain truthy test) does take the branch.
	branch2 := New(nil, GotoAifB, pool.NewNumber(99), result, 1)
	ctx.SetLineNum(5)
	mustEval(t, branch2, ctx)
	if ctx.LineNum() != 99 {
		t.Errorf("GotoAifB should branch on truthy fuzzy 0.3, lineNum = %d, want 99", ctx.LineNum())
	}
}

func TestCallFunctionSignal(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	pool := vm.Pool()

	fn := value.NewFunction([]value.Param{{Name: "x"}}, nil)
	line := New(value.Temp(0), CallFunctionA, fn, pool.NewNumber(1), 1)
	res := mustEval(t, line, ctx)
	if res.Signal != SigCall {
		t.Fatalf("expected SigCall, got %v", res.Signal)
	}
	if res.Call.Func != fn || res.Call.ArgCount != 1 {
		t.Errorf("unexpected CallInfo: %+v", res.Call)
	}
}

func TestLengthOf(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	pool := vm.Pool()

	l := pool.NewList([]value.Value{pool.NewNumber(1), pool.NewNumber(2)})
	line := New(value.Temp(0), LengthOfA, l, nil, 1)
	mustEval(t, line, ctx)
	if got := ctx.GetTemp(0).IntValue(); got != 2 {
		t.Errorf("LengthOfA([1,2]) = %d, want 2", got)
	}
}
