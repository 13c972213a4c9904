package main

import (
	"errors"
	"fmt"
)

const (
	exitOK      = 0
	exitFailure = 1 // a file could not be transcoded
	exitUsage   = 2 // bad flags, paths or config
)

type exitError struct {
	Code    int
	Message string
	Err     error
}

func (e *exitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *exitError) Unwrap() error { return e.Err }

func usageError(msg string, err error) *exitError {
	return &exitError{Code: exitUsage, Message: msg, Err: err}
}

func failure(msg string, err error) *exitError {
	return &exitError{Code: exitFailure, Message: msg, Err: err}
}

// exitCode returns the code carried by err, or exitFailure for plain errors.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.Code
	}
	return exitFailure
}
