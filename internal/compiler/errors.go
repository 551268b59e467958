package compiler

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrToolchainUnavailable means the LaTeX engine is not on PATH.
	ErrToolchainUnavailable = errors.New("latex toolchain unavailable")

	// ErrCircuitOpen means recent compilations kept failing and calls are
	// being rejected until the breaker half-opens.
	ErrCircuitOpen = errors.New("compiler circuit open")
)

// CompilationError represents a LaTeX compilation failure
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// PageCountError is returned when no page counting tool succeeded.
type PageCountError struct {
	Message string
	Cause   error
}

func (e *PageCountError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("page count error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("page count error: %s", e.Message)
}

func (e *PageCountError) Unwrap() error {
	return e.Cause
}

// IsInfrastructure reports whether err is a toolchain or timeout failure
// rather than a problem with the document itself.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrToolchainUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
