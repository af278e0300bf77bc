// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package host_test

import (
	"testing"

	"github.com/probeum/miniscript/host"
)

func TestRunFileStyleProgram(t *testing.T) {
	var out []string
	it := host.NewInterpreter([]string{
		`x = abs(-3) + len([1, 2, 3])`,
		`print(x)`,
	})
	it.StandardOutput = func(s string) { out = append(out, s) }
	if err := it.Compile(); err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if it.NeedMoreInput() {
		t.Fatalf("unexpected NeedMoreInput on a complete program")
	}
	if err := it.RunUntilDone(0, false); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(out) != 1 || out[0] != "6" {
		t.Fatalf("got %v, want [\"6\"]", out)
	}
}

func TestREPLImplicitOutput(t *testing.T) {
	it := host.NewInterpreter(nil)
	if err := it.Compile(); err != nil {
		t.Fatalf("compile error: %v", err)
	}

	got, err := it.REPL("3 + 4")
	if err != nil {
		t.Fatalf("REPL error: %v", err)
	}
	if got != "7" {
		t.Fatalf("got %q, want \"7\"", got)
	}
}

func TestREPLUnterminatedBlockAsksForMore(t *testing.T) {
	it := host.NewInterpreter(nil)
	if err := it.Compile(); err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if _, err := it.REPL("if 1 == 1 then"); err != nil {
		t.Fatalf("REPL error: %v", err)
	}
	if !it.NeedMoreInput() {
		t.Fatalf("expected NeedMoreInput after an unclosed if")
	}

	got, err := it.REPL("end")
	if err != nil {
		t.Fatalf("REPL error on continuation: %v", err)
	}
	if it.NeedMoreInput() {
		t.Fatalf("NeedMoreInput should clear once the block closes")
	}
	_ = got
}

func TestREPLRejectsBadSyntax(t *testing.T) {
	it := host.NewInterpreter(nil)
	if err := it.Compile(); err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if _, err := it.REPL("1 + * 2"); err == nil {
		t.Fatalf("expected an error for a misplaced operator")
	}
	if it.NeedMoreInput() {
		t.Fatalf("a genuine syntax error should not ask for more input")
	}
}
