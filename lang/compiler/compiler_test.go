// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package compiler_test

import (
	"testing"

	"github.com/probeum/miniscript/lang/compiler"
	"github.com/probeum/miniscript/lang/parser"
	"github.com/probeum/miniscript/machine"
	"github.com/probeum/miniscript/value"
)

func runMain(t *testing.T, src string) value.Value {
	t.Helper()
	prog, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	fns, err := compiler.CompileProgram(prog, nil)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	main, ok := fns["main"]
	if !ok {
		t.Fatal("compiler did not produce a main function")
	}
	m := machine.New(nil)
	result, err := m.Run(main, nil)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return result
}

func TestArithmeticPrecedenceEndToEnd(t *testing.T) {
	got := runMain(t, "x = 2 + 3 * 4\nreturn x")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 14 {
		t.Fatalf("got %v, want 14", got)
	}
}

func TestIfElseEndToEnd(t *testing.T) {
	got := runMain(t, "x = 5\nif x > 3 then\n  y = 1\nelse\n  y = 0\nend\nreturn y")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

func TestElseIfChainEndToEnd(t *testing.T) {
	got := runMain(t, "x = 2\nif x == 1 then\n  y = \"one\"\nelse if x == 2 then\n  y = \"two\"\nelse\n  y = \"many\"\nend\nreturn y")
	if s, ok := got.(*value.String); !ok || s.ToString(nil) != "two" {
		t.Fatalf("got %v, want \"two\"", got)
	}
}

func TestWhileLoopSumEndToEnd(t *testing.T) {
	got := runMain(t, "sum = 0\ni = 1\nwhile i <= 5\n  sum = sum + i\n  i = i + 1\nend\nreturn sum")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 15 {
		t.Fatalf("got %v, want 15", got)
	}
}

func TestForLoopOverListEndToEnd(t *testing.T) {
	got := runMain(t, "sum = 0\nfor item in [1, 2, 3, 4]\n  sum = sum + item\nend\nreturn sum")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 10 {
		t.Fatalf("got %v, want 10", got)
	}
}

func TestBreakAndContinueEndToEnd(t *testing.T) {
	got := runMain(t, `sum = 0
i = 0
while i < 10
  i = i + 1
  if i == 3 then
    continue
  end
  if i > 6 then
    break
  end
  sum = sum + i
end
return sum`)
	// i runs 1..10, skipping 3, stopping after processing up to 6:
	// 1+2+4+5+6 = 18
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 18 {
		t.Fatalf("got %v, want 18", got)
	}
}

func TestFunctionCallWithDefaultParamEndToEnd(t *testing.T) {
	got := runMain(t, "f = function(x, y = 10)\n  return x + y\nend\nreturn f(5)")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 15 {
		t.Fatalf("got %v, want 15", got)
	}
}

func TestNamedTopLevelFunctionIsExported(t *testing.T) {
	prog, errs := parser.Parse("f = function(x)\n  return x * 2\nend")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	fns, err := compiler.CompileProgram(prog, nil)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	fn, ok := fns["f"]
	if !ok {
		t.Fatal("expected CompileProgram to export top-level function \"f\"")
	}
	m := machine.New(nil)
	result, err := m.Run(fn, []value.Value{value.NewConstNumber(21)})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if n, ok := result.(*value.Number); !ok || n.DoubleValue() != 42 {
		t.Fatalf("got %v, want 42", result)
	}
}

func TestListAndMapLiteralEndToEnd(t *testing.T) {
	got := runMain(t, `m = {"a": 1, "b": 2}
return m["a"] + m.b`)
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 3 {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestIndexAssignmentEndToEnd(t *testing.T) {
	got := runMain(t, "lst = [1, 2, 3]\nlst[1] = 99\nreturn lst[1]")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 99 {
		t.Fatalf("got %v, want 99", got)
	}
}
