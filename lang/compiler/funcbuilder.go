// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package compiler

import (
	"github.com/probeum/miniscript/tac"
	"github.com/probeum/miniscript/value"
)

// funcBuilder accumulates one function's compiled Lines, mirroring the
// teacher's ir.Builder but flattened to a single instruction stream instead
// of basic blocks: MiniScript's TAC branches by absolute line number, so
// there is no block-graph to maintain, only a list of forward-jump patches.
type funcBuilder struct {
	lines     []*tac.Line
	tempCount int
	loops     []*loopCtx
}

// loopCtx tracks the state needed to compile break/continue inside one
// enclosing while/for: continueTarget is the line a `continue` jumps back
// to, and breaks collects the indices of GotoA lines a `break` emitted,
// patched to the loop's exit once the loop body is fully compiled.
type loopCtx struct {
	continueTarget int
	breaks         []int
}

func newFuncBuilder() *funcBuilder {
	return &funcBuilder{}
}

func (fb *funcBuilder) newTemp() value.Temp {
	t := value.Temp(fb.tempCount)
	fb.tempCount++
	return t
}

// emit appends a Line and returns its index, so callers needing a forward
// jump can patch it later via patchGoto.
func (fb *funcBuilder) emit(lhs value.Value, op tac.Opcode, rhsA, rhsB value.Value, srcLine int) int {
	fb.lines = append(fb.lines, tac.New(lhs, op, rhsA, rhsB, srcLine))
	return len(fb.lines) - 1
}

func (fb *funcBuilder) here() int { return len(fb.lines) }

func (fb *funcBuilder) lastLine() int {
	if len(fb.lines) == 0 {
		return 0
	}
	return fb.lines[len(fb.lines)-1].SourceLine()
}

// patchGoto rewrites the target operand of a GotoA/GotoAifB-family Line
// emitted earlier with a placeholder, once its real destination is known.
func (fb *funcBuilder) patchGoto(idx, target int) {
	fb.lines[idx].RhsA = value.NewConstNumber(float64(target))
}

// placeholder stands in for a not-yet-known jump target; patchGoto
// overwrites it before the Line is ever evaluated.
func placeholder() value.Value { return value.NewConstNumber(0) }

func (fb *funcBuilder) pushLoop(continueTarget int) *loopCtx {
	lp := &loopCtx{continueTarget: continueTarget}
	fb.loops = append(fb.loops, lp)
	return lp
}

// popLoop patches every break collected during the loop body to
// breakTarget (the first line after the loop) and pops the loop context.
func (fb *funcBuilder) popLoop(lp *loopCtx, breakTarget int) {
	for _, idx := range lp.breaks {
		fb.patchGoto(idx, breakTarget)
	}
	fb.loops = fb.loops[:len(fb.loops)-1]
}

func (fb *funcBuilder) loop() *loopCtx {
	if len(fb.loops) == 0 {
		return nil
	}
	return fb.loops[len(fb.loops)-1]
}

// finish upcasts the accumulated *tac.Line slice to []value.Line, the type
// value.Function.Code holds.
func (fb *funcBuilder) finish() []value.Line {
	out := make([]value.Line, len(fb.lines))
	for i, l := range fb.lines {
		out[i] = l
	}
	return out
}
