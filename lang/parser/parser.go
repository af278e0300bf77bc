// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package parser implements a recursive-descent, Pratt-style parser that
// turns MiniScript source text into an *ast.Program, covering the subset
// named in SPEC_FULL.md §1: assignment, arithmetic/comparison/logical
// expressions, indexing, list/map/function literals, if/else, while, for,
// return, function calls.
package parser

import (
	"fmt"

	"github.com/probeum/miniscript/lang/ast"
	"github.com/probeum/miniscript/lang/lexer"
	"github.com/probeum/miniscript/lang/token"
)

type precedence int

const (
	precLowest precedence = iota
	precOr
	precAnd
	precCmp
	precAdd
	precMul
	precPow
	precUnary
	precPostfix
)

var infixPrecedence = map[token.Type]precedence{
	token.OR:      precOr,
	token.AND:     precAnd,
	token.ISA:     precCmp,
	token.EQ:      precCmp,
	token.NEQ:     precCmp,
	token.LT:      precCmp,
	token.GT:      precCmp,
	token.LTE:     precCmp,
	token.GTE:     precCmp,
	token.PLUS:    precAdd,
	token.MINUS:   precAdd,
	token.STAR:    precMul,
	token.SLASH:   precMul,
	token.PERCENT: precMul,
	token.CARET:   precPow,
	token.DOT:     precPostfix,
	token.LBRACKET: precPostfix,
	token.LPAREN:  precPostfix,
}

// Parser holds the mutable state of a single parse run.
type Parser struct {
	lex  *lexer.Lexer
	cur  token.Token
	peek token.Token

	errors []error
}

// New primes a Parser over source.
func New(source string) *Parser {
	p := &Parser{lex: lexer.New(source)}
	p.advance()
	p.advance()
	return p
}

// Parse tokenizes and parses source, returning the Program AST plus any
// non-fatal errors collected along the way (the caller decides whether an
// incomplete parse — an EOF inside an open block — means "need more input").
func Parse(source string) (*ast.Program, []error) {
	p := New(source)
	prog := p.parseProgram()
	return prog, p.errors
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Errorf("line %d: %s", p.cur.Pos.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(typ token.Type) (token.Token, bool) {
	if p.cur.Type != typ {
		p.errorf("expected %s, got %s (%q)", typ, p.cur.Type, p.cur.Literal)
		return p.cur, false
	}
	tok := p.cur
	p.advance()
	return tok, true
}

func (p *Parser) skipNewlines() {
	for p.cur.Type == token.NEWLINE {
		p.advance()
	}
}

func (p *Parser) atBlockEnd() bool {
	switch p.cur.Type {
	case token.END, token.ELSE, token.EOF:
		return true
	}
	return false
}

// ---- Program / statement list -----------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for p.cur.Type != token.EOF {
		if s := p.parseStatement(); s != nil {
			prog.Statements = append(prog.Statements, s)
		}
		p.skipNewlines()
	}
	return prog
}

// parseBlock reads statements until atBlockEnd(), leaving cur on the
// terminator (END or ELSE) without consuming it.
func (p *Parser) parseBlock() []ast.Statement {
	var stmts []ast.Statement
	p.skipNewlines()
	for !p.atBlockEnd() {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.cur
	switch p.cur.Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		p.advance()
		return &ast.BreakStmt{Base: ast.Base{Tok: tok}}
	case token.CONTINUE:
		p.advance()
		return &ast.ContinueStmt{Base: ast.Base{Tok: tok}}
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement is an assignment or a bare expression statement.
func (p *Parser) parseSimpleStatement() ast.Statement {
	tok := p.cur
	expr := p.parseExpression(precLowest)
	if expr == nil {
		p.advance()
		return nil
	}
	if p.cur.Type == token.ASSIGN {
		p.advance()
		value := p.parseExpression(precLowest)
		return &ast.AssignStmt{Base: ast.Base{Tok: tok}, Target: expr, Value: value}
	}
	return &ast.ExprStmt{Base: ast.Base{Tok: tok}, X: expr}
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.cur
	p.advance() // consume 'if'
	cond := p.parseExpression(precLowest)
	if _, ok := p.expect(token.THEN); !ok {
		return nil
	}
	thenBody := p.parseBlock()
	var elseBody []ast.Statement
	if p.cur.Type == token.ELSE {
		p.advance()
		if p.cur.Type == token.IF {
			elseBody = []ast.Statement{p.parseIf()}
			return &ast.IfStmt{Base: ast.Base{Tok: tok}, Cond: cond, Then: thenBody, Else: elseBody}
		}
		elseBody = p.parseBlock()
	}
	p.expect(token.END)
	return &ast.IfStmt{Base: ast.Base{Tok: tok}, Cond: cond, Then: thenBody, Else: elseBody}
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.cur
	p.advance()
	cond := p.parseExpression(precLowest)
	body := p.parseBlock()
	p.expect(token.END)
	return &ast.WhileStmt{Base: ast.Base{Tok: tok}, Cond: cond, Body: body}
}

func (p *Parser) parseFor() ast.Statement {
	tok := p.cur
	p.advance()
	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.IN); !ok {
		return nil
	}
	iterable := p.parseExpression(precLowest)
	body := p.parseBlock()
	p.expect(token.END)
	return &ast.ForStmt{Base: ast.Base{Tok: tok}, Var: name.Literal, Iterable: iterable, Body: body}
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.cur
	p.advance()
	if p.cur.Type == token.NEWLINE || p.cur.Type == token.EOF || p.atBlockEnd() {
		return &ast.ReturnStmt{Base: ast.Base{Tok: tok}}
	}
	v := p.parseExpression(precLowest)
	return &ast.ReturnStmt{Base: ast.Base{Tok: tok}, Value: v}
}

// ---- Expressions (Pratt) -----------------------------------------------

func (p *Parser) parseExpression(prec precedence) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for p.cur.Type != token.NEWLINE && prec < precOf(p.cur.Type) {
		left = p.parseInfix(left)
	}
	return left
}

func precOf(t token.Type) precedence {
	if pr, ok := infixPrecedence[t]; ok {
		return pr
	}
	return precLowest
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur
	b := ast.Base{Tok: tok}
	switch tok.Type {
	case token.IDENT:
		p.advance()
		return &ast.Ident{Base: b, Name: tok.Literal}
	case token.NUMBER:
		p.advance()
		var f float64
		fmt.Sscanf(tok.Literal, "%g", &f)
		return &ast.NumberLit{Base: b, Value: f}
	case token.STRING:
		p.advance()
		return &ast.StringLit{Base: b, Value: tok.Literal}
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Base: b, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Base: b, Value: false}
	case token.NULL:
		p.advance()
		return &ast.NullLit{Base: b}
	case token.SELF:
		p.advance()
		return &ast.SelfExpr{Base: b}
	case token.SUPER:
		p.advance()
		return &ast.SuperExpr{Base: b}
	case token.MINUS:
		p.advance()
		operand := p.parseExpression(precUnary)
		return &ast.PrefixExpr{Base: b, Op: "-", Operand: operand}
	case token.NOT:
		p.advance()
		operand := p.parseExpression(precUnary)
		return &ast.PrefixExpr{Base: b, Op: "not", Operand: operand}
	case token.LPAREN:
		p.advance()
		e := p.parseExpression(precLowest)
		p.expect(token.RPAREN)
		return e
	case token.LBRACKET:
		return p.parseListLit()
	case token.LBRACE:
		return p.parseMapLit()
	case token.FUNCTION:
		return p.parseFunctionLit()
	default:
		p.errorf("unexpected token %s (%q) in expression", tok.Type, tok.Literal)
		return nil
	}
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	tok := p.cur
	switch tok.Type {
	case token.DOT:
		p.advance()
		key, ok := p.expect(token.IDENT)
		if !ok {
			return left
		}
		return &ast.IndexExpr{Base: ast.Base{Tok: tok}, Sequence: left, Key: &ast.StringLit{Base: ast.Base{Tok: key}, Value: key.Literal}}
	case token.LBRACKET:
		p.advance()
		key := p.parseExpression(precLowest)
		p.expect(token.RBRACKET)
		return &ast.IndexExpr{Base: ast.Base{Tok: tok}, Sequence: left, Key: key}
	case token.LPAREN:
		return p.parseCall(left)
	default:
		return p.parseBinary(left, tok)
	}
}

func (p *Parser) parseBinary(left ast.Expression, tok token.Token) ast.Expression {
	prec := precOf(tok.Type)
	p.advance()
	right := p.parseExpression(prec)
	return &ast.InfixExpr{Base: ast.Base{Tok: tok}, Op: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	tok := p.cur
	p.advance() // consume '('
	var args []ast.Expression
	if p.cur.Type != token.RPAREN {
		args = append(args, p.parseExpression(precLowest))
		for p.cur.Type == token.COMMA {
			p.advance()
			args = append(args, p.parseExpression(precLowest))
		}
	}
	p.expect(token.RPAREN)
	return &ast.CallExpr{Base: ast.Base{Tok: tok}, Callee: callee, Args: args}
}

func (p *Parser) parseListLit() ast.Expression {
	tok := p.cur
	p.advance() // consume '['
	lit := &ast.ListLit{Base: ast.Base{Tok: tok}}
	p.skipNewlines()
	if p.cur.Type != token.RBRACKET {
		lit.Elements = append(lit.Elements, p.parseExpression(precLowest))
		p.skipNewlines()
		for p.cur.Type == token.COMMA {
			p.advance()
			p.skipNewlines()
			lit.Elements = append(lit.Elements, p.parseExpression(precLowest))
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACKET)
	return lit
}

func (p *Parser) parseMapLit() ast.Expression {
	tok := p.cur
	p.advance() // consume '{'
	lit := &ast.MapLit{Base: ast.Base{Tok: tok}}
	p.skipNewlines()
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		key := p.parseExpression(precLowest)
		p.expect(token.COLON)
		val := p.parseExpression(precLowest)
		lit.Entries = append(lit.Entries, ast.MapEntry{Key: key, Value: val})
		p.skipNewlines()
		if p.cur.Type == token.COMMA {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return lit
}

func (p *Parser) parseFunctionLit() ast.Expression {
	tok := p.cur
	p.advance() // consume 'function'
	p.expect(token.LPAREN)
	var params []ast.Param
	if p.cur.Type != token.RPAREN {
		params = append(params, p.parseParam())
		for p.cur.Type == token.COMMA {
			p.advance()
			params = append(params, p.parseParam())
		}
	}
	p.expect(token.RPAREN)
	body := p.parseBlock()
	p.expect(token.END)
	return &ast.FunctionLit{Base: ast.Base{Tok: tok}, Params: params, Body: body}
}

func (p *Parser) parseParam() ast.Param {
	name, _ := p.expect(token.IDENT)
	param := ast.Param{Name: name.Literal}
	if p.cur.Type == token.ASSIGN {
		p.advance()
		param.Default = p.parseExpression(precLowest)
	}
	return param
}
