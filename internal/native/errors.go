package native

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNativeCall           = errors.New("native call failed")
	ErrNotInitialized       = errors.New("native library not initialized")
	ErrLibraryNotConfigured = errors.New("native library path not configured: pass a path or set " + EnvLibraryPath)
	ErrAlreadyInitialized   = errors.New("native library already initialized from a different path")
	ErrHandlesAlive         = errors.New("native kernel handles still alive")
	ErrClosed               = errors.New("native library closed")
	ErrNullHandle           = errors.New("native create returned NULL")
	ErrUnknownHandle        = errors.New("unknown kernel handle")
)

// CallError reports a failed native entry point invocation.
// Every CallError matches ErrNativeCall with errors.Is.
type CallError struct {
	Symbol string // Entry point name, empty if resolution failed before one was chosen
	Err    error  // Underlying cause
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("native call failed: %v", e.Err)
	}
	return fmt.Sprintf("native call %s failed: %v", e.Symbol, e.Err)
}

// Unwrap returns the underlying error for error chaining.
func (e *CallError) Unwrap() error {
	return e.Err
}

// Is makes every CallError match ErrNativeCall.
func (e *CallError) Is(target error) bool {
	return target == ErrNativeCall
}

func callError(symbol string, err error) error {
	return &CallError{Symbol: symbol, Err: err}
}
