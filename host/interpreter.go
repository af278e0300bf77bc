// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package host implements the embedding surface named in SPEC_FULL.md §6:
// Interpreter wires lang/compiler and machine.Machine together, installs
// the reference stdlib intrinsics and per-type default prototype maps, and
// exposes the line-oriented REPL contract a CLI or any other embedder
// drives (Compile/RunUntilDone/REPL/NeedMoreInput).
package host

import (
	"fmt"
	"os"
	"strings"

	"github.com/probeum/miniscript/interperr"
	"github.com/probeum/miniscript/intrinsic"
	"github.com/probeum/miniscript/lang/compiler"
	"github.com/probeum/miniscript/lang/parser"
	"github.com/probeum/miniscript/machine"
	"github.com/probeum/miniscript/stdlib/listintrinsics"
	"github.com/probeum/miniscript/stdlib/mapintrinsics"
	"github.com/probeum/miniscript/stdlib/mathintrinsics"
	"github.com/probeum/miniscript/stdlib/stringintrinsics"
	"github.com/probeum/miniscript/value"
)

// Interpreter is one script session: accumulated source lines, the compiled
// top-level functions from the most recent Compile, and the Machine that
// runs them. The zero value is not usable; construct with NewInterpreter.
type Interpreter struct {
	lines   []string
	globals *value.Map
	reg     *intrinsic.Registry
	vm      *machine.Machine
	fns     map[string]*value.Function

	needMoreInput bool

	// StandardOutput, ErrorOutput, and ImplicitOutput are the injectable
	// sinks §6 names; set before the first Compile call to override the
	// stdout/stderr/stdout defaults.
	StandardOutput func(string)
	ErrorOutput    func(string)
	ImplicitOutput func(string)
}

// NewInterpreter seeds a session with the accumulated source so far (may be
// empty for an interactive REPL that feeds lines one at a time via REPL).
func NewInterpreter(sourceLines []string) *Interpreter {
	it := &Interpreter{
		lines: append([]string(nil), sourceLines...),
	}
	it.StandardOutput = func(s string) { fmt.Println(s) }
	it.ErrorOutput = func(s string) { fmt.Fprintln(os.Stderr, s) }
	it.ImplicitOutput = func(s string) { fmt.Println(s) }
	return it
}

// installStdlib builds a fresh Registry/globals Map with every reference
// intrinsic package installed, the arrangement §5 calls "the intrinsic
// library" binding names into the scope every top-level Context inherits.
func installStdlib() (*intrinsic.Registry, *value.Map) {
	reg := intrinsic.NewRegistry()
	globals := value.NewConstMap()
	mathintrinsics.Register(reg, globals)
	stringintrinsics.Register(reg, globals)
	listintrinsics.Register(reg, globals)
	mapintrinsics.Register(reg, globals)
	printIn := intrinsic.Create("print").AddParam("s", value.EmptyString).SetFunc(func(ctx value.Context) (intrinsic.Result, error) {
		if s, ok := ctx.GetVar("s"); ok {
			if out, ok := ctx.VM().(interface{ Output(string) }); ok {
				out.Output(s.ToString(ctx.VM()))
			}
		}
		return intrinsic.Done(value.Null), nil
	})
	globals.SetString("print", reg.Register(printIn))
	return reg, globals
}

// Compile lexes/parses/compiles the accumulated source. A parse error whose
// message indicates the input ended mid-block (an unclosed if/while/for/
// function) sets NeedMoreInput instead of surfacing as a hard failure, so a
// REPL can prompt for a continuation line rather than reporting a syntax
// error on an otherwise-valid, still-growing program.
func (it *Interpreter) Compile() error {
	it.needMoreInput = false
	source := strings.Join(it.lines, "\n")
	prog, errs := parser.Parse(source)
	if len(errs) > 0 {
		if looksUnterminated(errs) {
			it.needMoreInput = true
			return nil
		}
		return interperr.NewRuntime("%s", formatParseErrors(errs))
	}
	it.reg, it.globals = installStdlib()
	fns, err := compiler.CompileProgram(prog, it.globals)
	if err != nil {
		return err
	}
	it.fns = fns
	it.vm = machine.New(it.reg)
	it.vm.SetMapType(value.NewConstMap())
	it.vm.SetListType(value.NewConstMap())
	it.vm.SetStringType(value.NewConstMap())
	it.vm.SetNumberType(value.NewConstMap())
	it.vm.SetFunctionType(value.NewConstMap())
	it.vm.StandardOutput = it.StandardOutput
	it.vm.ErrorOutput = it.ErrorOutput
	it.vm.ImplicitOutput = it.ImplicitOutput
	return nil
}

func looksUnterminated(errs []error) bool {
	for _, e := range errs {
		if strings.Contains(e.Error(), "got EOF") {
			return true
		}
	}
	return false
}

func formatParseErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// NeedMoreInput reports whether the most recent Compile call ended because
// the source looked like an unterminated block, the REPL continuation
// signal.
func (it *Interpreter) NeedMoreInput() bool { return it.needMoreInput }

// RunUntilDone runs the compiled "main" function (§1's Program entry
// point) to completion or until stepLimit steps have run, per §4.7.
func (it *Interpreter) RunUntilDone(stepLimit int, returnEarlyOnPartial bool) error {
	if it.vm == nil {
		return interperr.NewRuntime("Compile must run before RunUntilDone")
	}
	main, ok := it.fns["main"]
	if !ok {
		return nil
	}
	_, _, err := it.vm.Call(main, nil, stepLimit, returnEarlyOnPartial)
	return err
}

// REPL compiles and runs one more line of interactive input, appending it
// to the accumulated source. If the combined source is still incomplete
// (NeedMoreInput becomes true), line is kept pending and REPL returns an
// empty result so the caller can prompt for a continuation; otherwise the
// line's bare-expression value, if any, comes back via the §6 "implicit
// output" convention (AssignImplicit/ImplicitOutput) instead of requiring
// an explicit print call, the same as typing `3 + 4` at a calculator
// prompt.
func (it *Interpreter) REPL(line string) (string, error) {
	it.lines = append(it.lines, line)
	if err := it.Compile(); err != nil {
		it.lines = it.lines[:len(it.lines)-1]
		return "", err
	}
	if it.needMoreInput {
		return "", nil
	}
	main, ok := it.fns["main"]
	if !ok {
		return "", nil
	}
	var captured string
	it.vm.ImplicitOutput = func(s string) { captured = s }
	if _, _, err := it.vm.Call(main, nil, 0, false); err != nil {
		return "", err
	}
	return captured, nil
}

// Dispose releases the Machine and accumulated source, leaving the
// Interpreter ready for garbage collection.
func (it *Interpreter) Dispose() {
	it.vm = nil
	it.fns = nil
	it.lines = nil
	it.globals = nil
	it.reg = nil
}
