// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import "testing"

// fakeVM is a minimal VM for tests that do not need real prototype maps.
type fakeVM struct {
	pool                                                      *Pool
	mapT, listT, stringT, numberT, functionT                  *Map
}

func newFakeVM() *fakeVM { return &fakeVM{pool: NewPool()} }

func (f *fakeVM) MapType() *Map      { return f.mapT }
func (f *fakeVM) ListType() *Map     { return f.listT }
func (f *fakeVM) StringType() *Map   { return f.stringT }
func (f *fakeVM) NumberType() *Map   { return f.numberT }
func (f *fakeVM) FunctionType() *Map { return f.functionT }
func (f *fakeVM) Pool() *Pool        { return f.pool }

// fakeContext is a minimal Context for direct value-package tests.
type fakeContext struct {
	vm     VM
	temps  []Value
	locals *Map
	outer  *Map
	line   int
	params []Value
}

func newFakeContext(vm VM) *fakeContext {
	return &fakeContext{vm: vm, locals: vm.Pool().NewMap()}
}

func (c *fakeContext) VM() VM { return c.vm }
func (c *fakeContext) GetTemp(i int) Value {
	if i < 0 || i >= len(c.temps) {
		return nil
	}
	return c.temps[i]
}
func (c *fakeContext) SetTemp(i int, v Value) {
	for i >= len(c.temps) {
		c.temps = append(c.temps, Null)
	}
	c.temps[i] = v
}
func (c *fakeContext) GetVar(name string) (Value, bool) {
	if v, ok := c.locals.LookupString(name); ok {
		return v, true
	}
	if c.outer != nil {
		return c.outer.LookupString(name)
	}
	return nil, false
}
func (c *fakeContext) SetVar(name string, v Value)          { c.locals.SetString(name, v) }
func (c *fakeContext) Locals() *Map                         { return c.locals }
func (c *fakeContext) Outer() *Map                          { return c.outer }
func (c *fakeContext) LineNum() int                         { return c.line }
func (c *fakeContext) SetLineNum(n int)                     { c.line = n }
func (c *fakeContext) PushParam(v Value)                    { c.params = append(c.params, v) }
func (c *fakeContext) TakeParams(n int) []Value {
	if n > len(c.params) {
		n = len(c.params)
	}
	out := c.params[:n]
	c.params = c.params[n:]
	return out
}
func (c *fakeContext) Partial() (interface{}, Value, bool) { return nil, nil, false }
func (c *fakeContext) SetPartial(interface{}, Value)       {}
func (c *fakeContext) ClearPartial()                       {}

func TestNumberFormatting(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{14, "14"},
		{-3, "-3"},
		{3.5, "3.5"},
	}
	for _, c := range cases {
		n := NewPool().NewNumber(c.v)
		if got := n.ToString(nil); got != c.want {
			t.Errorf("formatNumber(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestFuzzyLogic(t *testing.T) {
	if got := FuzzyAnd(0.5, 0.5); got != 0.25 {
		t.Errorf("FuzzyAnd(0.5, 0.5) = %v, want 0.25", got)
	}
	if got := FuzzyOr(0, 0.3); got != 0.3 {
		t.Errorf("FuzzyOr(0, 0.3) = %v, want 0.3", got)
	}
	if got := FuzzyOr(-0.3, 0.3); got <= 0 {
		t.Errorf("FuzzyOr(-0.3, 0.3) = %v, want positive (absClamp01 treats negative as positive)", got)
	}
}

func TestMapInsertionOrderPreservedOnReplace(t *testing.T) {
	pool := NewPool()
	m := pool.NewMap()
	m.SetString("a", pool.NewNumber(1))
	m.SetString("b", pool.NewNumber(2))
	m.SetString("a", pool.NewNumber(99))

	keys := m.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys after replace, got %d", len(keys))
	}
	if keys[0].ToString(nil) != "a" || keys[1].ToString(nil) != "b" {
		t.Fatalf("replace must not reorder entries, got %v", keys)
	}
	v, _ := m.LookupString("a")
	if v.DoubleValue() != 99 {
		t.Fatalf("expected replaced value 99, got %v", v.DoubleValue())
	}
}

func TestMapStructuralEquality(t *testing.T) {
	pool := NewPool()
	a := pool.NewMap()
	a.SetString("x", pool.NewNumber(1))
	b := pool.NewMap()
	b.SetString("x", pool.NewNumber(1))

	if eq := a.Equality(b, 8); eq < 0.5 {
		t.Errorf("structurally-equal maps should be equal, got %v", eq)
	}
	if a.Hash(8) != b.Hash(8) {
		t.Errorf("equal maps must hash equal (§8 invariant)")
	}
}

func TestListImmutabilityOnConcat(t *testing.T) {
	vm := newFakeVM()
	pool := vm.Pool()
	l := pool.NewList([]Value{pool.NewNumber(1), pool.NewNumber(2), pool.NewNumber(3)})
	other := pool.NewList([]Value{pool.NewNumber(4)})

	combined := pool.NewList(append(append([]Value{}, l.Items()...), other.Items()...))
	if combined.Len() != 4 {
		t.Fatalf("expected concatenated length 4, got %d", combined.Len())
	}
	if l.Len() != 3 {
		t.Fatalf("original list must be unchanged by concatenation, got len %d", l.Len())
	}
}

func TestPoolRecyclesReleasedNumbers(t *testing.T) {
	pool := NewPool()
	n := pool.NewNumber(42)
	if pool.NumInstancesInUse("number") != 1 {
		t.Fatalf("expected 1 in-use number, got %d", pool.NumInstancesInUse("number"))
	}
	n.Unref()
	if pool.NumInstancesInUse("number") != 0 {
		t.Fatalf("expected 0 in-use numbers after Unref, got %d", pool.NumInstancesInUse("number"))
	}
	n2 := pool.NewNumber(7)
	if n2 != n {
		t.Errorf("expected pool to recycle the freed Number, got a distinct allocation")
	}
}

func TestSeqElemNoInvokePassesAsReference(t *testing.T) {
	pool := NewPool()
	se := pool.NewSeqElem(NewVar("obj", false), newStaticString("method"), true)
	v, err := se.Val(nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Value(se) {
		t.Errorf("no-invoke SeqElem.Val must return itself unresolved")
	}
}

func TestUndefinedIdentifierIsRuntimeError(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	_, err := NewVar("nope", false).Val(ctx, false)
	if err == nil {
		t.Fatal("expected an error resolving an undefined identifier")
	}
}

func TestIsaWalk(t *testing.T) {
	vm := newFakeVM()
	pool := vm.Pool()
	animal := pool.NewMap()
	animal.SetString("speak", newStaticString("?"))
	dog := pool.NewMap()
	dog.SetString(IsaKey, animal)

	v, _, err := Resolve(dog, newStaticString("speak"), newFakeContext(vm))
	if err != nil {
		t.Fatalf("unexpected error walking __isa: %v", err)
	}
	if v.ToString(vm) != "?" {
		t.Errorf("expected inherited member \"?\", got %q", v.ToString(vm))
	}
}

func TestIsaChainCycleRaisesLimit(t *testing.T) {
	vm := newFakeVM()
	pool := vm.Pool()
	a := pool.NewMap()
	b := pool.NewMap()
	a.SetString(IsaKey, b)
	b.SetString(IsaKey, a)

	_, _, err := Resolve(a, newStaticString("nonexistent"), newFakeContext(vm))
	if err == nil {
		t.Fatal("expected a limit-exceeded error for a cyclic __isa chain")
	}
}
