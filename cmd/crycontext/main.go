// Command crycontext runs the cry cause adjustment engine from the command
// line or as a gRPC service.
package main

import (
	"errors"
	"fmt"
	"os"
)

// exitError carries a non-default exit status, e.g. replay divergence.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
