// Package main provides the typegraph CLI: schema validation, instance
// population validation, structural diff, merge, and code generation.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes.
const (
	exitSuccess = 0
	exitUserErr = 1 // invalid input: schema, data, or expression problems
	exitSysErr  = 2 // I/O, config, or other environment failures
)

// userError marks a failure caused by the input rather than the
// environment, so main maps it to exitUserErr.
type userError struct{ err error }

func (e userError) Error() string { return e.err.Error() }
func (e userError) Unwrap() error { return e.err }

func usage(err error) error { return userError{err: err} }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "typegraph:", err)
		var ue userError
		if errors.As(err, &ue) {
			os.Exit(exitUserErr)
		}
		os.Exit(exitSysErr)
	}
	os.Exit(exitSuccess)
}
