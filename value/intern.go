// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

// Interned String singletons for identifiers the interpreter itself
// compares or constructs on nearly every opcode dispatch (§3.2, §9). These
// are not pool-backed: they live for the process lifetime, so refcounting
// them would only add bookkeeping for a Unref that should never fire.
var (
	SelfIdent  = newStaticString("self")
	SuperIdent = newStaticString("super")
	IsaIdent   = newStaticString(IsaKey)
	ToIdent    = newStaticString("to")
	FromIdent  = newStaticString("from")
	LenIdent   = newStaticString("len")
	SeqIdent   = newStaticString("seq")
	SpaceAtom  = newStaticString(" ")
)

var internedByText = map[string]*String{
	"self":  SelfIdent.(*String),
	"super": SuperIdent.(*String),
	IsaKey:  IsaIdent.(*String),
	"to":    ToIdent.(*String),
	"from":  FromIdent.(*String),
	"len":   LenIdent.(*String),
	"seq":   SeqIdent.(*String),
	" ":     SpaceAtom.(*String),
	"":      EmptyString.(*String),
}

// Create returns a String Value for s, reusing one of the interned
// singletons above for the handful of identifiers the runtime itself
// compares by reference, and otherwise allocating a fresh pooled String via
// pool. This lets hot paths like ElemBofA's "self"/"super"/"__isa" checks
// skip both allocation and refcounting.
func Create(pool *Pool, s string) Value {
	if v, ok := internedByText[s]; ok {
		return v
	}
	return pool.NewString(s)
}
