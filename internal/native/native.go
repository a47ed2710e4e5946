// Package native drives the pre-built hierarchical-matrix kernel solver
// through its C entry points.
//
// The solver is loaded at runtime with goffi, so the module builds without
// cgo. Every entry point exists in a float and a double variant; the
// precision is selected from the tensor.DataType of the data being passed.
package native

import (
	"fmt"
	"unsafe"

	"github.com/born-ml/hkernel/internal/tensor"
)

// Handle is an opaque native kernel object.
// The zero Handle is the NULL kernel.
type Handle struct {
	ptr unsafe.Pointer
}

// NewHandle wraps a pointer returned by a create entry point.
func NewHandle(p unsafe.Pointer) Handle {
	return Handle{ptr: p}
}

// Pointer returns the raw native pointer.
func (h Handle) Pointer() unsafe.Pointer {
	return h.ptr
}

// IsNil reports whether h is the NULL kernel.
func (h Handle) IsNil() bool {
	return h.ptr == nil
}

// KernelType is the solver's integer kernel code.
type KernelType int32

// Kernel codes understood by the solver.
const (
	KernelGauss   KernelType = 0
	KernelLaplace KernelType = 1
)

// String returns the kernel name.
func (k KernelType) String() string {
	switch k {
	case KernelGauss:
		return "Gauss"
	case KernelLaplace:
		return "Laplace"
	default:
		return fmt.Sprintf("KernelType(%d)", int32(k))
	}
}

// FitMode selects one of the solver's fit entry points.
type FitMode int

// Fit entry points. HODLR exists only in the distributed variant.
const (
	FitHSS FitMode = iota
	FitHSSDistributed
	FitHODLRDistributed
)

// String returns the mode as it appears in the entry point name.
func (m FitMode) String() string {
	switch m {
	case FitHSS:
		return "HSS"
	case FitHSSDistributed:
		return "HSS_MPI"
	case FitHODLRDistributed:
		return "HODLR_MPI"
	default:
		return fmt.Sprintf("FitMode(%d)", int(m))
	}
}

// Collaborator is the contract of the native solver.
//
// Byte slices are the contiguous backing storage of tensor.Matrix values at
// dtype precision. Input slices are read-only; out must be pre-allocated to
// rows elements. Implementations must not retain labels, test or out past
// the call. train is retained by the solver until Destroy, and callers keep
// it alive for that long.
//
// Implementations:
//   - Library: the shared library loaded with goffi
//   - Mock: an in-process nearest-neighbour stand-in for tests
type Collaborator interface {
	CreateKernel(dtype tensor.DataType, rows, cols int, train []byte, h, lambda float64, kernel KernelType) (Handle, error)
	Fit(dtype tensor.DataType, mode FitMode, k Handle, labels []byte, args []string) error
	Predict(dtype tensor.DataType, k Handle, rows int, test, out []byte) error
	Destroy(dtype tensor.DataType, k Handle) error
}

const symbolPrefix = "STRUMPACK_"

func precisionSuffix(dtype tensor.DataType) (string, error) {
	switch dtype {
	case tensor.Float32:
		return "float", nil
	case tensor.Float64:
		return "double", nil
	default:
		return "", fmt.Errorf("precision %s has no native entry points", dtype)
	}
}

// CreateSymbol returns the create entry point name for dtype.
func CreateSymbol(dtype tensor.DataType) (string, error) {
	p, err := precisionSuffix(dtype)
	if err != nil {
		return "", err
	}
	return symbolPrefix + "create_kernel_" + p, nil
}

// FitSymbol returns the fit entry point name for mode and dtype.
func FitSymbol(mode FitMode, dtype tensor.DataType) (string, error) {
	p, err := precisionSuffix(dtype)
	if err != nil {
		return "", err
	}
	switch mode {
	case FitHSS, FitHSSDistributed, FitHODLRDistributed:
		return symbolPrefix + "kernel_fit_" + mode.String() + "_" + p, nil
	default:
		return "", fmt.Errorf("unknown fit mode %d", int(mode))
	}
}

// PredictSymbol returns the predict entry point name for dtype.
func PredictSymbol(dtype tensor.DataType) (string, error) {
	p, err := precisionSuffix(dtype)
	if err != nil {
		return "", err
	}
	return symbolPrefix + "kernel_predict_" + p, nil
}

// DestroySymbol returns the destroy entry point name for dtype.
func DestroySymbol(dtype tensor.DataType) (string, error) {
	p, err := precisionSuffix(dtype)
	if err != nil {
		return "", err
	}
	return symbolPrefix + "destroy_kernel_" + p, nil
}
