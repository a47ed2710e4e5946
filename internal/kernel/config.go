package kernel

import (
	"fmt"

	"github.com/born-ml/hkernel/internal/native"
)

// Kernel names accepted in Config.Kernel. "rbf" and "Gauss" are the same
// kernel.
const (
	KernelRBF     = "rbf"
	KernelGauss   = "Gauss"
	KernelLaplace = "Laplace"
)

// Approximation names accepted in Config.Approximation.
const (
	ApproximationHSS   = "HSS"
	ApproximationHODLR = "HODLR"
)

// Config holds the classifier hyperparameters. It is copied by New and
// validated by Fit, never at construction.
//
// In distributed runs every cooperating process must construct the
// classifier with an identical Config, Args included.
type Config struct {
	H             float64  `yaml:"h"`             // Kernel bandwidth
	Lambda        float64  `yaml:"lambda"`        // Ridge regularization
	Kernel        string   `yaml:"kernel"`        // rbf, Gauss or Laplace
	Approximation string   `yaml:"approximation"` // HSS or HODLR
	Distributed   bool     `yaml:"distributed"`   // Multi-process fit; required by HODLR
	Args          []string `yaml:"args,omitempty"`
}

// DefaultConfig returns h=1, λ=4, rbf kernel, local HSS.
func DefaultConfig() Config {
	return Config{
		H:             1.0,
		Lambda:        4.0,
		Kernel:        KernelRBF,
		Approximation: ApproximationHSS,
	}
}

// kernelType maps a kernel name to the solver code.
func kernelType(name string) (native.KernelType, bool) {
	switch name {
	case KernelRBF, KernelGauss:
		return native.KernelGauss, true
	case KernelLaplace:
		return native.KernelLaplace, true
	default:
		return 0, false
	}
}

// fitMode picks the fit entry point for approximation × distributed.
func fitMode(approximation string, distributed bool) (native.FitMode, error) {
	switch approximation {
	case ApproximationHSS:
		if distributed {
			return native.FitHSSDistributed, nil
		}
		return native.FitHSS, nil
	case ApproximationHODLR:
		if !distributed {
			return 0, fmt.Errorf("%w: HODLR requires distributed execution", ErrConfiguration)
		}
		return native.FitHODLRDistributed, nil
	default:
		return 0, fmt.Errorf("%w: approximation %q not recognized, should be %q or %q",
			ErrConfiguration, approximation, ApproximationHSS, ApproximationHODLR)
	}
}
