package kernel

import (
	"errors"

	"github.com/born-ml/hkernel/internal/native"
)

// Errors returned by Classifier. Match them with errors.Is; the wrapped
// message carries the details.
var (
	ErrUnsupportedPrecision = errors.New("unsupported precision")
	ErrConfiguration        = errors.New("invalid configuration")
	ErrUnknownKernel        = errors.New("unknown kernel")
	ErrShape                = errors.New("invalid input shape")
	ErrNotFitted            = errors.New("classifier is not fitted")

	// ErrNativeCall is matched by every *native.CallError.
	ErrNativeCall = native.ErrNativeCall
)
