package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// loggedError marks an error fail() already reported through the logger.
type loggedError struct{ err error }

func (e *loggedError) Error() string { return e.err.Error() }
func (e *loggedError) Unwrap() error { return e.err }

// execute runs the root command and returns the process exit code. Errors
// not yet logged (flag parsing, required flags, input handling) are
// printed to stderr.
func execute(args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var logged *loggedError
	if !errors.As(err, &logged) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
