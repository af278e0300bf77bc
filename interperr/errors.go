// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package interperr defines the MiniScript error taxonomy (§7): a small set
// of distinct failure kinds, each carrying a message and an optional source
// line number, propagated by aborting the current TAC step and unwinding to
// the machine's run loop.
package interperr

import "fmt"

// Kind identifies one of the taxonomy's distinct failure categories.
type Kind int

const (
	// Compiler is raised by the (out-of-core) compiler at parse time.
	Compiler Kind = iota
	// Runtime is the catch-all for unexpected conditions: unknown opcode,
	// unreachable code path.
	Runtime
	// Type is raised when an operand has the wrong variant for an opcode
	// (e.g. indexing into a Number).
	Type
	// Key is raised when a Map lookup misses after the full __isa walk.
	Key
	// Index is raised for an out-of-range List/String index.
	Index
	// LimitExceeded is raised when a String/List result would exceed the
	// ~16M element/byte cap, or an __isa chain exceeds 1000 hops.
	LimitExceeded
)

func (k Kind) String() string {
	switch k {
	case Compiler:
		return "compiler error"
	case Runtime:
		return "runtime error"
	case Type:
		return "type error"
	case Key:
		return "key error"
	case Index:
		return "index error"
	case LimitExceeded:
		return "limit exceeded"
	default:
		return "unknown error"
	}
}

// Error is a single MiniScript taxonomy error: a Kind, a message, and an
// optional source line (0 means "not yet annotated").
type Error struct {
	Kind    Kind
	Message string
	Line    int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithLine returns a copy of e annotated with a source line, unless e
// already carries one (the innermost frame wins — the machine only
// annotates on the way out if Line is still zero).
func (e *Error) WithLine(line int) *Error {
	if e.Line != 0 {
		return e
	}
	cp := *e
	cp.Line = line
	return &cp
}

// New constructs a taxonomy error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewType is a convenience constructor for the common Type-error case.
func NewType(format string, args ...interface{}) *Error { return New(Type, format, args...) }

// NewKey is a convenience constructor for Key errors.
func NewKey(format string, args ...interface{}) *Error { return New(Key, format, args...) }

// NewIndex is a convenience constructor for Index errors.
func NewIndex(format string, args ...interface{}) *Error { return New(Index, format, args...) }

// NewLimit is a convenience constructor for LimitExceeded errors.
func NewLimit(format string, args ...interface{}) *Error { return New(LimitExceeded, format, args...) }

// NewRuntime is a convenience constructor for the catch-all Runtime case.
func NewRuntime(format string, args ...interface{}) *Error { return New(Runtime, format, args...) }

// As reports whether err is itself an *Error of the given kind; wrapped
// errors are not unwrapped.
func As(err error, kind Kind) (*Error, bool) {
	e, ok := err.(*Error)
	if !ok || e == nil {
		return nil, false
	}
	return e, e.Kind == kind
}
