// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package mathintrinsics_test

import (
	"testing"

	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/lang/compiler"
	"github.com/probeum/miniscript/lang/parser"
	"github.com/probeum/miniscript/machine"
	"github.com/probeum/miniscript/stdlib/mathintrinsics"
	"github.com/probeum/miniscript/value"
)

func runMain(t *testing.T, src string) value.Value {
	t.Helper()
	reg := intrinsic.NewRegistry()
	globals := value.NewConstMap()
	mathintrinsics.Register(reg, globals)

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

func TestAbsEndToEnd(t *testing.T) {
	got := runMain(t, "return abs(-7)")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestSqrtAndFloorEndToEnd(t *testing.T) {
	got := runMain(t, "return floor(sqrt(50))")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestPowEndToEnd(t *testing.T) {
	got := runMain(t, "return pow(2, 10)")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 1024 {
		t.Fatalf("got %v, want 1024", got)
	}
}

func TestMinMaxEndToEnd(t *testing.T) {
	got := runMain(t, "return max(min(3, 7), 1)")
	if n, ok := got.(*value.Number); !ok || n.DoubleValue() != 3 {
		t.Fatalf("got %v, want 3", got)
	}
}
