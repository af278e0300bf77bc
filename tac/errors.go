// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package tac

import "github.com/probeum/miniscript/interperr"

func typeErrorf(format string, args ...interface{}) error {
	return interperr.New(interperr.Type, format, args...)
}

func newRuntimeErrorf(format string, args ...interface{}) error {
	return interperr.New(interperr.Runtime, format, args...)
}

func limitErrorf(format string, args ...interface{}) error {
	return interperr.New(interperr.LimitExceeded, format, args...)
}
