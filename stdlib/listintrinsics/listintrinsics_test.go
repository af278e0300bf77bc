// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package listintrinsics_test

import (
	"testing"

	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/lang/compiler"
	"github.com/probeum/miniscript/lang/parser"
	"github.com/probeum/miniscript/machine"
	"github.com/probeum/miniscript/stdlib/listintrinsics"
	"github.com/probeum/miniscript/value"
)

func runMain(t *testing.T, src string) value.Value {
	t.Helper()
	reg := intrinsic.NewRegistry()
	globals := value.NewConstMap()
	listintrinsics.Register(reg, globals)

	prog, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	fns, err := compiler.CompileProgram(prog, globals)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := machine.New(reg)
	result, err := m.Run(fns["main"], nil)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return result
}

func TestLenEndToEnd(t *testing.T) {
	got := runMain(t, "return len([1, 2, 3, 4])")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 4 {
		t.Fatalf("got %v, want 4", got)
	}
}

func TestPushEndToEnd(t *testing.T) {
	got := runMain(t, `lst = [1, 2]
push(lst, 3)
return len(lst)`)
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 3 {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestPopEndToEnd(t *testing.T) {
	got := runMain(t, `lst = [1, 2, 3]
return pop(lst)`)
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 3 {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestJoinEndToEnd(t *testing.T) {
	got := runMain(t, `return join(["a", "b", "c"], "-")`)
	if s, ok := got.(*value.String); !ok || s.ToString(nil) != "a-b-c" {
		t.Fatalf("got %v, want \"a-b-c\"", got)
	}
}
