// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"errors"
	"fmt"
)

// The three error classes of the engine.  Construction-time problems are
// InvalidConnectivity or InvalidParameter and prevent a run from starting;
// KernelFailure occurs mid-run and halts it, preserving completed output.
// Use errors.Is to test the class of a returned error.
var (
	// ErrInvalidConnectivity reports malformed connectivity input:
	// index out of range, mismatched array lengths, bad delay, or a
	// disallowed self connection.
	ErrInvalidConnectivity = errors.New("invalid connectivity")

	// ErrInvalidParameter reports a model or run parameter outside its
	// valid domain.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrKernelFailure reports a non-finite state value produced by a
	// numerical kernel during a run.
	ErrKernelFailure = errors.New("kernel failure")
)

func connErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConnectivity, fmt.Sprintf(format, args...))
}

func paramErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func kernErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrKernelFailure, fmt.Sprintf(format, args...))
}
