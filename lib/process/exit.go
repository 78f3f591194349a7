// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit status
// and have already reported themselves.
type exitCoder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits with code 1.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(1)
}

// Exit terminates the process for an error returned by run(). Errors
// implementing ExitCode() exit silently with that code; any other
// non-nil error is reported by [Fatal]. A nil error returns.
func Exit(err error) {
	if err == nil {
		return
	}
	if code, handled := ExitCode(err); handled {
		os.Exit(code)
	}
	Fatal(err)
}

// ExitCode returns the exit status requested by err and whether err
// carries one.
func ExitCode(err error) (int, bool) {
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	return 1, false
}

// Report writes "error: err" to w. It is the non-exiting half of
// [Fatal], for callers that print before deciding whether to exit.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
