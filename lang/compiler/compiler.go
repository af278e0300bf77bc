// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package compiler translates a MiniScript *ast.Program into the core's
// three-address code, collapsing the teacher's separate IR-builder and
// codegen stages into one pass: MiniScript's TAC is already a flat
// three-address form, so no intermediate SSA representation is needed
// before emitting it (§4.8).
package compiler

import (
	"fmt"

	"github.com/probeum/miniscript/lang/ast"
	"github.com/probeum/miniscript/tac"
	"github.com/probeum/miniscript/value"
)

// CompileProgram compiles prog into one *value.Function per top-level
// `name = function(...) ... end` declaration, plus an implicit "main"
// function holding every other top-level statement in source order. A
// top-level function assignment is compiled exactly once: the same
// *value.Function is both returned under its name here and bound into
// "main"'s locals (via the normal AssignA it compiles to), so calling it
// from later top-level code and looking it up via the returned map reach
// the same value.
//
// globals, if non-nil, is bound as every compiled function's OuterVars
// (value.Function.BindContext) — the host's intrinsic-library bindings
// (§5/§6), visible to script code as ordinary identifiers the same way a
// closure's captured outer scope is.
func CompileProgram(prog *ast.Program, globals *value.Map) (map[string]*value.Function, error) {
	c := &compiler{functions: make(map[string]*value.Function), globals: globals}
	main := newFuncBuilder()
	for _, stmt := range prog.Statements {
		if name, lit, ok := topLevelFunctionDecl(stmt); ok {
			fn, err := c.compileFunctionLit(lit)
			if err != nil {
				return nil, err
			}
			c.functions[name] = fn
			main.emit(value.NewVar(name, false), tac.AssignA, fn, nil, lit.Line())
			continue
		}
		if err := c.compileStmt(main, stmt); err != nil {
			return nil, err
		}
	}
	main.emit(nil, tac.ReturnA, nil, nil, main.lastLine())
	mainFn := value.NewFunction(nil, main.finish())
	mainFn.BindContext(globals)
	c.functions["main"] = mainFn
	return c.functions, nil
}

// topLevelFunctionDecl recognizes `name = function(...) ... end`.
func topLevelFunctionDecl(stmt ast.Statement) (string, *ast.FunctionLit, bool) {
	assign, ok := stmt.(*ast.AssignStmt)
	if !ok {
		return "", nil, false
	}
	ident, ok := assign.Target.(*ast.Ident)
	if !ok {
		return "", nil, false
	}
	lit, ok := assign.Value.(*ast.FunctionLit)
	if !ok {
		return "", nil, false
	}
	return ident.Name, lit, true
}

// compiler holds the cross-function state of a single CompileProgram run:
// the accumulating output map and the globals Map every compiled function
// is bound to as its outer scope; funcBuilder carries everything scoped to
// one function body.
type compiler struct {
	functions map[string]*value.Function
	globals   *value.Map
}

func (c *compiler) compileFunctionLit(lit *ast.FunctionLit) (*value.Function, error) {
	fb := newFuncBuilder()
	params := make([]value.Param, len(lit.Params))
	for i, p := range lit.Params {
		var def value.Value
		if p.Default != nil {
			v, err := c.compileExpr(fb, p.Default)
			if err != nil {
				return nil, err
			}
			def = v
		}
		params[i] = value.Param{Name: p.Name, Default: def}
	}
	for _, stmt := range lit.Body {
		if err := c.compileStmt(fb, stmt); err != nil {
			return nil, err
		}
	}
	fb.emit(nil, tac.ReturnA, nil, nil, fb.lastLine())
	fn := value.NewFunction(params, fb.finish())
	fn.BindContext(c.globals)
	return fn, nil
}

// ---- Statements ----------------------------------------------------------

func (c *compiler) compileStmt(fb *funcBuilder, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		return c.compileAssign(fb, s)
	case *ast.ExprStmt:
		v, err := c.compileExpr(fb, s.X)
		if err != nil {
			return err
		}
		fb.emit(value.NewVar("_", false), tac.AssignImplicit, v, nil, s.Line())
		return nil
	case *ast.ReturnStmt:
		var v value.Value
		if s.Value != nil {
			rv, err := c.compileExpr(fb, s.Value)
			if err != nil {
				return err
			}
			v = rv
		}
		fb.emit(nil, tac.ReturnA, v, nil, s.Line())
		return nil
	case *ast.BreakStmt:
		if fb.loop() == nil {
			return fmt.Errorf("line %d: break outside a loop", s.Line())
		}
		idx := fb.emit(nil, tac.GotoA, placeholder(), nil, s.Line())
		fb.loop().breaks = append(fb.loop().breaks, idx)
		return nil
	case *ast.ContinueStmt:
		lp := fb.loop()
		if lp == nil {
			return fmt.Errorf("line %d: continue outside a loop", s.Line())
		}
		fb.emit(nil, tac.GotoA, value.NewConstNumber(float64(lp.continueTarget)), nil, s.Line())
		return nil
	case *ast.IfStmt:
		return c.compileIf(fb, s)
	case *ast.WhileStmt:
		return c.compileWhile(fb, s)
	case *ast.ForStmt:
		return c.compileFor(fb, s)
	default:
		return fmt.Errorf("line %d: compiler: unsupported statement %T", stmt.Line(), stmt)
	}
}

func (c *compiler) compileAssign(fb *funcBuilder, s *ast.AssignStmt) error {
	rhs, err := c.compileExpr(fb, s.Value)
	if err != nil {
		return err
	}
	switch target := s.Target.(type) {
	case *ast.Ident:
		fb.emit(value.NewVar(target.Name, false), tac.AssignA, rhs, nil, s.Line())
		return nil
	case *ast.IndexExpr:
		seq, err := c.compileExpr(fb, target.Sequence)
		if err != nil {
			return err
		}
		key, err := c.compileExpr(fb, target.Key)
		if err != nil {
			return err
		}
		lhs := value.NewConstSeqElem(seq, key, false)
		fb.emit(lhs, tac.AssignA, rhs, nil, s.Line())
		return nil
	default:
		return fmt.Errorf("line %d: cannot assign to %T", s.Line(), s.Target)
	}
}

func (c *compiler) compileIf(fb *funcBuilder, s *ast.IfStmt) error {
	cond, err := c.compileExpr(fb, s.Cond)
	if err != nil {
		return err
	}
	jumpToElse := fb.emit(nil, tac.GotoAifNotB, placeholder(), cond, s.Line())
	for _, st := range s.Then {
		if err := c.compileStmt(fb, st); err != nil {
			return err
		}
	}
	if len(s.Else) == 0 {
		fb.patchGoto(jumpToElse, fb.here())
		return nil
	}
	jumpToEnd := fb.emit(nil, tac.GotoA, placeholder(), nil, s.Line())
	fb.patchGoto(jumpToElse, fb.here())
	for _, st := range s.Else {
		if err := c.compileStmt(fb, st); err != nil {
			return err
		}
	}
	fb.patchGoto(jumpToEnd, fb.here())
	return nil
}

func (c *compiler) compileWhile(fb *funcBuilder, s *ast.WhileStmt) error {
	loopStart := fb.here()
	cond, err := c.compileExpr(fb, s.Cond)
	if err != nil {
		return err
	}
	exitJump := fb.emit(nil, tac.GotoAifNotB, placeholder(), cond, s.Line())
	lp := fb.pushLoop(loopStart)
	for _, st := range s.Body {
		if err := c.compileStmt(fb, st); err != nil {
			return err
		}
	}
	fb.emit(nil, tac.GotoA, value.NewConstNumber(float64(loopStart)), nil, s.Line())
	fb.patchGoto(exitJump, fb.here())
	fb.popLoop(lp, fb.here())
	return nil
}

func (c *compiler) compileFor(fb *funcBuilder, s *ast.ForStmt) error {
	iterable, err := c.compileExpr(fb, s.Iterable)
	if err != nil {
		return err
	}
	iterTemp := fb.newTemp()
	fb.emit(iterTemp, tac.AssignA, iterable, nil, s.Line())

	idxTemp := fb.newTemp()
	fb.emit(idxTemp, tac.AssignA, value.NewConstNumber(-1), nil, s.Line())
	lenTemp := fb.newTemp()
	fb.emit(lenTemp, tac.LengthOfA, iterTemp, nil, s.Line())

	loopStart := fb.here()
	fb.emit(idxTemp, tac.APlusB, idxTemp, value.NewConstNumber(1), s.Line())
	condTemp := fb.newTemp()
	fb.emit(condTemp, tac.ALessThanB, idxTemp, lenTemp, s.Line())
	exitJump := fb.emit(nil, tac.GotoAifNotB, placeholder(), condTemp, s.Line())

	fb.emit(value.NewVar(s.Var, false), tac.ElemBofIterA, iterTemp, idxTemp, s.Line())

	lp := fb.pushLoop(loopStart)
	for _, st := range s.Body {
		if err := c.compileStmt(fb, st); err != nil {
			return err
		}
	}
	fb.emit(nil, tac.GotoA, value.NewConstNumber(float64(loopStart)), nil, s.Line())
	fb.patchGoto(exitJump, fb.here())
	fb.popLoop(lp, fb.here())
	return nil
}

// ---- Expressions -----------------------------------------------------

func (c *compiler) compileExpr(fb *funcBuilder, expr ast.Expression) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return value.NewConstNumber(e.Value), nil
	case *ast.StringLit:
		return value.NewConstString(e.Value), nil
	case *ast.BoolLit:
		if e.Value {
			return value.One, nil
		}
		return value.Zero, nil
	case *ast.NullLit:
		return value.Null, nil
	case *ast.Ident:
		return value.NewVar(e.Name, false), nil
	case *ast.SelfExpr:
		return value.NewVar("self", false), nil
	case *ast.SuperExpr:
		return value.NewVar("super", false), nil
	case *ast.PrefixExpr:
		return c.compilePrefix(fb, e)
	case *ast.InfixExpr:
		return c.compileInfix(fb, e)
	case *ast.IndexExpr:
		return c.compileIndex(fb, e)
	case *ast.CallExpr:
		return c.compileCall(fb, e)
	case *ast.ListLit:
		return c.compileListLit(fb, e)
	case *ast.MapLit:
		return c.compileMapLit(fb, e)
	case *ast.FunctionLit:
		return c.compileFunctionLit(e)
	default:
		return nil, fmt.Errorf("line %d: compiler: unsupported expression %T", expr.Line(), expr)
	}
}

func (c *compiler) compilePrefix(fb *funcBuilder, e *ast.PrefixExpr) (value.Value, error) {
	if n, ok := e.Operand.(*ast.NumberLit); ok && e.Op == "-" {
		return value.NewConstNumber(-n.Value), nil
	}
	operand, err := c.compileExpr(fb, e.Operand)
	if err != nil {
		return nil, err
	}
	t := fb.newTemp()
	switch e.Op {
	case "-":
		fb.emit(t, tac.AMinusB, value.NewConstNumber(0), operand, e.Line())
	case "not":
		fb.emit(t, tac.NotA, operand, nil, e.Line())
	default:
		return nil, fmt.Errorf("line %d: unknown prefix operator %q", e.Line(), e.Op)
	}
	return t, nil
}

var infixOpcodes = map[string]tac.Opcode{
	"+": tac.APlusB, "-": tac.AMinusB, "*": tac.ATimesB, "/": tac.ADividedByB,
	"^": tac.APowB, "%": tac.AModB,
	"==": tac.AEqualB, "!=": tac.ANotEqualB,
	"<": tac.ALessThanB, ">": tac.AGreaterThanB,
	"<=": tac.ALessOrEqualB, ">=": tac.AGreatOrEqualB,
	"isa": tac.AisaB, "and": tac.AAndB, "or": tac.AOrB,
}

// foldableArith folds a binary arithmetic expression over two literal
// numbers into one constant operand, avoiding a temp and an opcode for
// compile-time-known results like `2 + 3`.
func foldableArith(op string, l, r float64) (float64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r != 0 {
			return l / r, true
		}
	}
	return 0, false
}

func (c *compiler) compileInfix(fb *funcBuilder, e *ast.InfixExpr) (value.Value, error) {
	if ln, ok := e.Left.(*ast.NumberLit); ok {
		if rn, ok := e.Right.(*ast.NumberLit); ok {
			if folded, ok := foldableArith(e.Op, ln.Value, rn.Value); ok {
				return value.NewConstNumber(folded), nil
			}
		}
	}
	left, err := c.compileExpr(fb, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compileExpr(fb, e.Right)
	if err != nil {
		return nil, err
	}
	op, ok := infixOpcodes[e.Op]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown infix operator %q", e.Line(), e.Op)
	}
	t := fb.newTemp()
	fb.emit(t, op, left, right, e.Line())
	return t, nil
}

func (c *compiler) compileIndex(fb *funcBuilder, e *ast.IndexExpr) (value.Value, error) {
	seq, err := c.compileExpr(fb, e.Sequence)
	if err != nil {
		return nil, err
	}
	key, err := c.compileExpr(fb, e.Key)
	if err != nil {
		return nil, err
	}
	t := fb.newTemp()
	fb.emit(t, tac.ElemBofA, seq, key, e.Line())
	return t, nil
}

func (c *compiler) compileCall(fb *funcBuilder, e *ast.CallExpr) (value.Value, error) {
	callee, err := c.compileExpr(fb, e.Callee)
	if err != nil {
		return nil, err
	}
	for _, arg := range e.Args {
		av, err := c.compileExpr(fb, arg)
		if err != nil {
			return nil, err
		}
		fb.emit(nil, tac.PushParam, av, nil, e.Line())
	}
	t := fb.newTemp()
	fb.emit(t, tac.CallFunctionA, callee, value.NewConstNumber(float64(len(e.Args))), e.Line())
	return t, nil
}

func (c *compiler) compileListLit(fb *funcBuilder, e *ast.ListLit) (value.Value, error) {
	items := make([]value.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, err := c.compileExpr(fb, el)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return value.NewConstList(items), nil
}

func (c *compiler) compileMapLit(fb *funcBuilder, e *ast.MapLit) (value.Value, error) {
	m := value.NewConstMap()
	for _, entry := range e.Entries {
		k, err := c.compileExpr(fb, entry.Key)
		if err != nil {
			return nil, err
		}
		v, err := c.compileExpr(fb, entry.Value)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}
