// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import "github.com/probeum/miniscript/interperr"

func newTypeError(format string, args ...interface{}) error {
	return interperr.NewType(format, args...)
}

func newKeyError(format string, args ...interface{}) error {
	return interperr.NewKey(format, args...)
}

func newIndexError(format string, args ...interface{}) error {
	return interperr.NewIndex(format, args...)
}

func newLimitError(format string, args ...interface{}) error {
	return interperr.NewLimit(format, args...)
}

func newRuntimeError(format string, args ...interface{}) error {
	return interperr.NewRuntime(format, args...)
}
