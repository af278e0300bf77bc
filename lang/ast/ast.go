// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package ast defines the Abstract Syntax Tree for MiniScript source text,
// the input to lang/compiler's AST-to-TAC pass.
package ast

import (
	"bytes"
	"strings"

	"github.com/probeum/miniscript/lang/token"
)

// Node is the base interface every AST node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Line() int
}

// Expression is a marker interface for expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a marker interface for statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of every parse tree: a flat list of top-level
// statements (assignments, expression statements, function declarations
// assigned to a name, control flow).
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) Line() int {
	if len(p.Statements) > 0 {
		return p.Statements[0].Line()
	}
	return 0
}
func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteByte('\n')
	}
	return out.String()
}

type Base struct {
	Tok token.Token
}

func (b Base) TokenLiteral() string { return b.Tok.Literal }
func (b Base) Line() int            { return b.Tok.Pos.Line }

// ---- Expressions -----------------------------------------------------

// Ident is a bare identifier reference.
type Ident struct {
	Base
	Name string
}

func (*Ident) expressionNode()  {}
func (i *Ident) String() string { return i.Name }

// NumberLit is a numeric literal.
type NumberLit struct {
	Base
	Value float64
}

func (*NumberLit) expressionNode()  {}
func (n *NumberLit) String() string { return n.Tok.Literal }

// StringLit is a string literal.
type StringLit struct {
	Base
	Value string
}

func (*StringLit) expressionNode()  {}
func (s *StringLit) String() string { return "\"" + s.Value + "\"" }

// BoolLit is true/false, represented in MiniScript as a fuzzy 1/0 Number.
type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) expressionNode()  {}
func (b *BoolLit) String() string { return b.Tok.Literal }

// NullLit is the null literal.
type NullLit struct{ Base }

func (*NullLit) expressionNode()  {}
func (n *NullLit) String() string { return "null" }

// SelfExpr/SuperExpr reference the implicit receiver / its prototype.
type SelfExpr struct{ Base }
type SuperExpr struct{ Base }

func (*SelfExpr) expressionNode()   {}
func (s *SelfExpr) String() string  { return "self" }
func (*SuperExpr) expressionNode()  {}
func (s *SuperExpr) String() string { return "super" }

// ListLit is a [a, b, c] literal.
type ListLit struct {
	Base
	Elements []Expression
}

func (*ListLit) expressionNode() {}
func (l *ListLit) String() string {
	items := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		items[i] = e.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// MapEntry is one key:value pair of a MapLit.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// MapLit is a {k: v, ...} literal.
type MapLit struct {
	Base
	Entries []MapEntry
}

func (*MapLit) expressionNode() {}
func (m *MapLit) String() string {
	items := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		items[i] = e.Key.String() + ": " + e.Value.String()
	}
	return "{" + strings.Join(items, ", ") + "}"
}

// FunctionLit is `function(params) ... end`.
type FunctionLit struct {
	Base
	Params []Param
	Body   []Statement
}

// Param is one function parameter, with an optional default expression.
type Param struct {
	Name    string
	Default Expression
}

func (*FunctionLit) expressionNode() {}
func (f *FunctionLit) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return "function(" + strings.Join(names, ", ") + ")"
}

// PrefixExpr is `not x`, `-x`.
type PrefixExpr struct {
	Base
	Op      string
	Operand Expression
}

func (*PrefixExpr) expressionNode()  {}
func (p *PrefixExpr) String() string { return "(" + p.Op + p.Operand.String() + ")" }

// InfixExpr is `a OP b` for every binary operator (arithmetic, comparison,
// equality, and/or, isa).
type InfixExpr struct {
	Base
	Op    string
	Left  Expression
	Right Expression
}

func (*InfixExpr) expressionNode() {}
func (e *InfixExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")"
}

// IndexExpr is `seq[key]` or `seq.key`, indistinguishable once parsed (both
// compile to ElemBofA).
type IndexExpr struct {
	Base
	Sequence Expression
	Key      Expression
}

func (*IndexExpr) expressionNode() {}
func (e *IndexExpr) String() string {
	return e.Sequence.String() + "[" + e.Key.String() + "]"
}

// CallExpr is `fn(args...)`.
type CallExpr struct {
	Base
	Callee Expression
	Args   []Expression
}

func (*CallExpr) expressionNode() {}
func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// ---- Statements --------------------------------------------------------

// AssignStmt is `target = value`, where target is an Ident or IndexExpr.
type AssignStmt struct {
	Base
	Target Expression
	Value  Expression
}

func (*AssignStmt) statementNode() {}
func (s *AssignStmt) String() string {
	return s.Target.String() + " = " + s.Value.String()
}

// ExprStmt wraps a bare expression used as a statement (its value is
// assigned to the implicit result slot, per §4.5 AssignImplicit).
type ExprStmt struct {
	Base
	X Expression
}

func (*ExprStmt) statementNode()  {}
func (s *ExprStmt) String() string { return s.X.String() }

// ReturnStmt is `return expr` (expr may be nil, meaning return null).
type ReturnStmt struct {
	Base
	Value Expression
}

func (*ReturnStmt) statementNode() {}
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// BreakStmt / ContinueStmt exit or restart the nearest enclosing loop.
type BreakStmt struct{ Base }
type ContinueStmt struct{ Base }

func (*BreakStmt) statementNode()     {}
func (b *BreakStmt) String() string   { return "break" }
func (*ContinueStmt) statementNode()  {}
func (c *ContinueStmt) String() string { return "continue" }

// IfStmt is `if cond then ... [else ...] end`. Else may itself hold a single
// IfStmt (for `else if`) or a plain statement block.
type IfStmt struct {
	Base
	Cond Expression
	Then []Statement
	Else []Statement
}

func (*IfStmt) statementNode() {}
func (s *IfStmt) String() string {
	return "if " + s.Cond.String() + " then ... end"
}

// WhileStmt is `while cond ... end`.
type WhileStmt struct {
	Base
	Cond Expression
	Body []Statement
}

func (*WhileStmt) statementNode()  {}
func (s *WhileStmt) String() string { return "while " + s.Cond.String() + " ... end" }

// ForStmt is `for x in seq ... end`.
type ForStmt struct {
	Base
	Var      string
	Iterable Expression
	Body     []Statement
}

func (*ForStmt) statementNode() {}
func (s *ForStmt) String() string {
	return "for " + s.Var + " in " + s.Iterable.String() + " ... end"
}
