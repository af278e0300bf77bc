// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package machine implements the Machine (VM) and Context call-stack model
// (§3.3, §4.7): the owner of the per-script Pool, the per-type default
// prototype maps, the intrinsic registry, and the stack of call frames the
// tac.Line evaluator steps through.
package machine

import (
	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/value"
)

// Context is one call frame: a running Function's program counter,
// temporary slots, local variables, captured outer (closure) variables, a
// pending-argument stack for the next CallFunctionA, and a suspended
// intrinsic's partial-result slot. Implements value.Context.
type Context struct {
	vm *Machine

	fn      *value.Function
	lineNum int
	temps   []value.Value
	locals  *value.Map
	outer   *value.Map

	params []value.Value

	// intr is set instead of running fn's (empty) Code when this frame
	// represents an intrinsic call pushed by pushIntrinsicCall — see
	// Machine.stepIntrinsicFrame.
	intr *intrinsic.Intrinsic

	partialToken interface{}
	partialVal   value.Value
	hasPartial   bool

	// returnLhs is where this frame's ReturnA value is written in the
	// *caller's* frame once this Context is popped; nil at the bottom of
	// the stack (the script's top-level call has nowhere further to store).
	returnLhs value.Value
}

// newContext constructs a fresh call frame for fn, with locals pre-seeded
// from bound parameters (by the Machine) and outer set to fn's captured
// closure variables, if any.
func newContext(vm *Machine, fn *value.Function, returnLhs value.Value) *Context {
	return &Context{
		vm:        vm,
		fn:        fn,
		locals:    vm.Pool().NewMap(),
		outer:     fn.OuterVars,
		returnLhs: returnLhs,
	}
}

func (c *Context) VM() value.VM { return c.vm }

func (c *Context) GetTemp(i int) value.Value {
	if i < 0 || i >= len(c.temps) {
		return nil
	}
	return c.temps[i]
}

func (c *Context) SetTemp(i int, v value.Value) {
	if i < 0 {
		return
	}
	for i >= len(c.temps) {
		c.temps = append(c.temps, value.Null)
	}
	if old := c.temps[i]; old == v {
		return
	} else if old != nil {
		unrefValue(old)
	}
	c.temps[i] = refValue(v)
}

// GetVar looks up name in locals first, then the closure's outer map,
// mirroring the source's scope-chain order (locals shadow outer).
func (c *Context) GetVar(name string) (value.Value, bool) {
	if v, ok := c.locals.LookupString(name); ok {
		return v, true
	}
	if c.outer != nil {
		if v, ok := c.outer.LookupString(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (c *Context) SetVar(name string, v value.Value) {
	c.locals.SetString(name, v)
}

func (c *Context) Locals() *value.Map { return c.locals }
func (c *Context) Outer() *value.Map  { return c.outer }

func (c *Context) LineNum() int     { return c.lineNum }
func (c *Context) SetLineNum(n int) { c.lineNum = n }

func (c *Context) PushParam(v value.Value) {
	c.params = append(c.params, refValue(v))
}

// TakeParams drains and returns up to n pending arguments in push order,
// clearing the param stack for the next call.
func (c *Context) TakeParams(n int) []value.Value {
	if n > len(c.params) {
		n = len(c.params)
	}
	out := c.params[:n]
	c.params = c.params[n:]
	return out
}

func (c *Context) Partial() (interface{}, value.Value, bool) {
	return c.partialToken, c.partialVal, c.hasPartial
}

func (c *Context) SetPartial(token interface{}, val value.Value) {
	c.partialToken, c.partialVal, c.hasPartial = token, val, true
}

func (c *Context) ClearPartial() {
	c.partialToken, c.partialVal, c.hasPartial = nil, nil, false
}

// release unrefs every temporary and local variable this frame owns, run
// when the Context is popped off the call stack (§3.3: "temporaries are
// released at pop").
func (c *Context) release() {
	for _, t := range c.temps {
		unrefValue(t)
	}
	c.temps = nil
	for _, p := range c.params {
		unrefValue(p)
	}
	c.params = nil
	unrefValue(c.locals)
}

func refValue(v value.Value) value.Value {
	if p, ok := v.(value.Pooled); ok {
		return p.Ref()
	}
	return v
}

func unrefValue(v value.Value) {
	if p, ok := v.(value.Pooled); ok {
		p.Unref()
	}
}
