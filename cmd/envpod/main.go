package main

import (
	"errors"
	"fmt"
	"os"
)

// exitCodeError carries an explicit process exit code through cobra's error
// return. Used by run (forwarded child code) and doctor (error findings).
type exitCodeError struct {
	code int
	msg  string
}

func (e exitCodeError) Error() string {
	return e.msg
}

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}

	var exit exitCodeError
	if errors.As(err, &exit) {
		if exit.msg != "" {
			fmt.Fprintln(os.Stderr, exit.msg)
		}
		os.Exit(exit.code)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
