// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package tac implements the three-address-code Line evaluator: the §4.5
// opcode table that the machine package steps through one Line at a time.
package tac

// Opcode is the operation a Line performs. Unlike the register-VM's 4-byte
// fixed-width encoding, a Line carries its operands as value.Value directly
// (§3.3) rather than register indices, since MiniScript's unit of execution
// is a heterogeneous Value, not a 64-bit word.
type Opcode uint8

const (
	// Noop has no effect.
	Noop Opcode = iota

	// ---- Assignment ---------------------------------------------------

	// AssignA evaluates rhsA (FullEval if it is a List/Map literal, else Val)
	// and stores the result at lhs.
	AssignA
	// AssignImplicit is AssignA whose lhs is the implicit result slot "_".
	AssignImplicit
	// ReturnA evaluates rhsA like AssignA, stores it, and pops the Context.
	ReturnA
	// CopyA evaluate-copies rhsA: a fresh List/Map for container literals,
	// identity for everything else.
	CopyA

	// ---- Arithmetic (§4.2) ---------------------------------------------

	APlusB
	AMinusB
	ATimesB
	ADividedByB
	APowB
	AModB

	// ---- Equality & comparison (§4.1) -----------------------------------

	AEqualB
	ANotEqualB
	AGreaterThanB
	AGreatOrEqualB
	ALessThanB
	ALessOrEqualB

	// ---- Prototype & logic -----------------------------------------------

	// AisaB walks the prototype chain (§4.3); Null isa X ⇒ X is Null.
	AisaB
	AAndB
	AOrB
	// NotA is logical negation: §4.5.
	NotA

	// ---- Control flow -----------------------------------------------------

	// GotoA sets lineNum to A (a Number).
	GotoA
	// GotoAifB branches if B is truthy (BoolValue).
	GotoAifB
	// GotoAifTrulyB branches only if B.IntValue() != 0 (strict truth, used by
	// short-circuit `or` so a fuzzy 0.0001 does not fool it).
	GotoAifTrulyB
	// GotoAifNotB branches if B is falsy or null.
	GotoAifNotB

	// ---- Calls --------------------------------------------------------------

	// PushParam pushes rhsA onto the next call's argument stack.
	PushParam
	// CallFunctionA transfers to function rhsA with arg count rhsB.
	CallFunctionA
	// CallIntrinsicA invokes the intrinsic with id rhsA (§4.6).
	CallIntrinsicA

	// ---- Member/index access ------------------------------------------------

	// ElemBofA is member/index access: rhsA is the sequence, rhsB the key.
	ElemBofA
	// ElemBofIterA is ElemBofA but with ordinal (not keyed) Map iteration.
	ElemBofIterA
	// LengthOfA is string length / list count / map count.
	LengthOfA
	// BindContextOfA sets rhsA's closure (OuterVars) to the current Context's
	// variables.
	BindContextOfA

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	Noop:            "NOOP",
	AssignA:         "ASSIGN",
	AssignImplicit:  "ASSIGN_IMPLICIT",
	ReturnA:         "RETURN",
	CopyA:           "COPY",
	APlusB:          "APLUSB",
	AMinusB:         "AMINUSB",
	ATimesB:         "ATIMESB",
	ADividedByB:     "ADIVIDEDBYB",
	APowB:           "APOWB",
	AModB:           "AMODB",
	AEqualB:         "AEQUALB",
	ANotEqualB:      "ANOTEQUALB",
	AGreaterThanB:   "AGREATERTHANB",
	AGreatOrEqualB:  "AGREATOREQUALB",
	ALessThanB:      "ALESSTHANB",
	ALessOrEqualB:   "ALESSOREQUALB",
	AisaB:           "AISAB",
	AAndB:           "AANDB",
	AOrB:            "AORB",
	NotA:            "NOTA",
	GotoA:           "GOTOA",
	GotoAifB:        "GOTOAIFB",
	GotoAifTrulyB:   "GOTOAIFTRULYB",
	GotoAifNotB:     "GOTOAIFNOTB",
	PushParam:       "PUSHPARAM",
	CallFunctionA:   "CALLFUNCTIONA",
	CallIntrinsicA:  "CALLINTRINSICA",
	ElemBofA:        "ELEMBOFA",
	ElemBofIterA:    "ELEMBOFITERA",
	LengthOfA:       "LENGTHOFA",
	BindContextOfA:  "BINDCONTEXTOFA",
}

// String returns the opcode's mnemonic, used by Line.String for disassembly.
func (op Opcode) String() string {
	if int(op) >= len(opcodeNames) || opcodeNames[op] == "" {
		return "UNKNOWN"
	}
	return opcodeNames[op]
}
