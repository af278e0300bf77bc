// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package lexer_test

import (
	"testing"

	"github.com/probeum/miniscript/lang/lexer"
	"github.com/probeum/miniscript/lang/token"
)

type tokenCase struct {
	typ     token.Type
	literal string
}

func runTokenize(t *testing.T, name, input string, want []tokenCase) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		toks := lexer.New(input).Tokenize()
		if len(toks) == 0 {
			t.Fatal("Tokenize returned empty slice")
		}
		if last := toks[len(toks)-1]; last.Type != token.EOF {
			t.Errorf("last token is %s, want EOF", last.Type)
		}
		body := toks[:len(toks)-1]
		if len(body) != len(want) {
			t.Fatalf("got %d tokens (excl. EOF), want %d: %v", len(body), len(want), body)
		}
		for i, w := range want {
			got := body[i]
			if got.Type != w.typ {
				t.Errorf("token[%d]: type = %s, want %s (literal %q)", i, got.Type, w.typ, got.Literal)
			}
			if got.Literal != w.literal {
				t.Errorf("token[%d]: literal = %q, want %q", i, got.Literal, w.literal)
			}
		}
	})
}

func TestArithmeticExpression(t *testing.T) {
	runTokenize(t, "precedence", "x = 2 + 3 * 4", []tokenCase{
		{token.IDENT, "x"}, {token.ASSIGN, "="}, {token.NUMBER, "2"},
		{token.PLUS, "+"}, {token.NUMBER, "3"}, {token.STAR, "*"}, {token.NUMBER, "4"},
	})
}

func TestKeywordsAndNewlines(t *testing.T) {
	runTokenize(t, "if-block", "if x < 10 then\n  return x\nend", []tokenCase{
		{token.IF, "if"}, {token.IDENT, "x"}, {token.LT, "<"}, {token.NUMBER, "10"}, {token.THEN, "then"},
		{token.NEWLINE, "\n"},
		{token.RETURN, "return"}, {token.IDENT, "x"},
		{token.NEWLINE, "\n"},
		{token.END, "end"},
	})
}

func TestStringLiteralWithEscapes(t *testing.T) {
	runTokenize(t, "escaped-string", `"hi\n\"there\""`, []tokenCase{
		{token.STRING, "hi\n\"there\""},
	})
}

func TestCommentIsSkippedNotNewline(t *testing.T) {
	runTokenize(t, "comment", "x = 1 // trailing comment\ny = 2", []tokenCase{
		{token.IDENT, "x"}, {token.ASSIGN, "="}, {token.NUMBER, "1"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "y"}, {token.ASSIGN, "="}, {token.NUMBER, "2"},
	})
}

func TestComparisonAndLogicalOperators(t *testing.T) {
	runTokenize(t, "comparisons", "a >= b and not c isa d", []tokenCase{
		{token.IDENT, "a"}, {token.GTE, ">="}, {token.IDENT, "b"},
		{token.AND, "and"}, {token.NOT, "not"}, {token.IDENT, "c"},
		{token.ISA, "isa"}, {token.IDENT, "d"},
	})
}

func TestFloatAndMapListLiterals(t *testing.T) {
	runTokenize(t, "literals", `m = {"a": 1.5}`, []tokenCase{
		{token.IDENT, "m"}, {token.ASSIGN, "="}, {token.LBRACE, "{"},
		{token.STRING, "a"}, {token.COLON, ":"}, {token.NUMBER, "1.5"}, {token.RBRACE, "}"},
	})
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	toks := lexer.New(`"unterminated`).Tokenize()
	if toks[0].Type != token.ILLEGAL {
		t.Errorf("expected ILLEGAL for an unterminated string, got %s", toks[0].Type)
	}
}
