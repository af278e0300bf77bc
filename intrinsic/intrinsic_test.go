// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package intrinsic

import (
	"testing"

	"github.com/probeum/miniscript/value"
)

// fakeVM and fakeContext are the minimal value.VM/value.Context doubles used
// across this module's test suites.
type fakeVM struct{ pool *value.Pool }

func newFakeVM() *fakeVM { return &fakeVM{pool: value.NewPool()} }

func (f *fakeVM) MapType() *value.Map      { return nil }
func (f *fakeVM) ListType() *value.Map     { return nil }
func (f *fakeVM) StringType() *value.Map   { return nil }
func (f *fakeVM) NumberType() *value.Map   { return nil }
func (f *fakeVM) FunctionType() *value.Map { return nil }
func (f *fakeVM) Pool() *value.Pool        { return f.pool }

type fakeContext struct {
	vm           value.VM
	locals       *value.Map
	partialToken interface{}
	partialVal   value.Value
	hasPartial   bool
}

func newFakeContext(vm value.VM) *fakeContext {
	return &fakeContext{vm: vm, locals: vm.Pool().NewMap()}
}

func (c *fakeContext) VM() value.VM                     { return c.vm }
func (c *fakeContext) GetTemp(int) value.Value          { return nil }
func (c *fakeContext) SetTemp(int, value.Value)         {}
func (c *fakeContext) GetVar(name string) (value.Value, bool) {
	return c.locals.LookupString(name)
}
func (c *fakeContext) SetVar(name string, v value.Value) { c.locals.SetString(name, v) }
func (c *fakeContext) Locals() *value.Map                { return c.locals }
func (c *fakeContext) Outer() *value.Map                 { return nil }
func (c *fakeContext) LineNum() int                      { return 0 }
func (c *fakeContext) SetLineNum(int)                    {}
func (c *fakeContext) PushParam(value.Value)              {}
func (c *fakeContext) TakeParams(int) []value.Value       { return nil }
func (c *fakeContext) Partial() (interface{}, value.Value, bool) {
	return c.partialToken, c.partialVal, c.hasPartial
}
func (c *fakeContext) SetPartial(token interface{}, v value.Value) {
	c.partialToken, c.partialVal, c.hasPartial = token, v, true
}
func (c *fakeContext) ClearPartial() {
	c.partialToken, c.partialVal, c.hasPartial = nil, nil, false
}

func TestRegisterLookupRoundTrip(t *testing.T) {
	reg := NewRegistry()
	vm := newFakeVM()

	in := Create("abs").AddParam("x", nil).SetFunc(func(ctx value.Context) (Result, error) {
		x, _ := ctx.GetVar("x")
		n := x.(*value.Number)
		v := n.DoubleValue()
		if v < 0 {
			v = -v
		}
		return Done(vm.Pool().NewNumber(v)), nil
	})
	fn := reg.Register(in)

	got, ok := reg.Lookup(fn)
	if !ok || got != in {
		t.Fatalf("Lookup(fn) = %v, %v; want the registered Intrinsic", got, ok)
	}
	byName, ok := reg.LookupName("abs")
	if !ok || byName != fn {
		t.Fatalf("LookupName(\"abs\") did not resolve back to the same Function identity")
	}
}

func TestGetFuncIsIdempotent(t *testing.T) {
	in := Create("noop")
	if in.GetFunc() != in.GetFunc() {
		t.Fatal("GetFunc must return a stable Function identity across calls")
	}
}

func TestInvokeRunsFunc(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)
	ctx.SetVar("x", vm.Pool().NewNumber(-4))

	in := Create("abs").AddParam("x", nil).SetFunc(func(ctx value.Context) (Result, error) {
		x, _ := ctx.GetVar("x")
		return Done(vm.Pool().NewNumber(-x.DoubleValue())), nil
	})

	res, err := in.Invoke(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Done || res.Value.DoubleValue() != 4 {
		t.Errorf("Invoke result = %+v, want Done with value 4", res)
	}
}

func TestInvokeWithoutFuncErrors(t *testing.T) {
	in := Create("unimplemented")
	if _, err := in.Invoke(newFakeContext(newFakeVM())); err == nil {
		t.Fatal("expected an error invoking an Intrinsic with no SetFunc")
	}
}

// TestSuspendResumeProtocol exercises the cooperative-suspension contract: a
// Func that counts up to 3 across repeated Invoke calls, stashing its
// progress in ctx's partial slot via a fresh ResumeToken each time.
func TestSuspendResumeProtocol(t *testing.T) {
	vm := newFakeVM()
	ctx := newFakeContext(vm)

	count := Create("count3").SetFunc(func(ctx value.Context) (Result, error) {
		_, val, ok := ctx.Partial()
		n := 0
		if ok {
			n = int(val.DoubleValue())
		}
		n++
		if n < 3 {
			ctx.SetPartial(NewResumeToken(), vm.Pool().NewNumber(float64(n)))
			return Suspend(), nil
		}
		return Done(vm.Pool().NewNumber(float64(n))), nil
	})

	var last Result
	for i := 0; i < 5; i++ {
		res, err := count.Invoke(ctx)
		if err != nil {
			t.Fatalf("unexpected error on step %d: %v", i, err)
		}
		last = res
		if res.Done {
			break
		}
	}
	if !last.Done || last.Value.DoubleValue() != 3 {
		t.Errorf("suspend/resume loop finished with %+v, want Done with value 3", last)
	}
}

func TestResumeTokenStringIsStable(t *testing.T) {
	tok := NewResumeToken()
	if tok.String() == "" {
		t.Error("ResumeToken.String() must not be empty")
	}
	if tok.String() != tok.String() {
		t.Error("ResumeToken.String() must be stable across calls")
	}
}
