// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kernel provides a binary kernel ridge classifier backed by a
// native hierarchical-matrix (HSS/HODLR) solver.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/hkernel/kernel"
//	    "github.com/born-ml/hkernel/native"
//	)
//
//	if _, err := native.Init("/opt/strumpack/lib/libstrumpack.so"); err != nil {
//	    log.Fatal(err)
//	}
//	defer native.Shutdown()
//
//	clf := kernel.New(kernel.DefaultConfig())
//	defer clf.Close()
//
//	if _, err := clf.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	labels, err := clf.Predict(Xtest)
//
// A Classifier owns one native kernel handle. Close releases it; an
// unclosed classifier is released when garbage collected. Classifiers are
// not safe for concurrent use.
package kernel

import (
	"log/slog"

	"github.com/born-ml/hkernel/internal/kernel"
	"github.com/born-ml/hkernel/native"
)

// Classifier is a binary classifier over a native kernel handle.
type Classifier = kernel.Classifier

// Config holds the classifier hyperparameters.
type Config = kernel.Config

// Option configures a Classifier.
type Option = kernel.Option

// Kernel and approximation names.
const (
	KernelRBF          = kernel.KernelRBF
	KernelGauss        = kernel.KernelGauss
	KernelLaplace      = kernel.KernelLaplace
	ApproximationHSS   = kernel.ApproximationHSS
	ApproximationHODLR = kernel.ApproximationHODLR
)

// Errors returned by Classifier methods.
var (
	ErrUnsupportedPrecision = kernel.ErrUnsupportedPrecision
	ErrConfiguration        = kernel.ErrConfiguration
	ErrUnknownKernel        = kernel.ErrUnknownKernel
	ErrShape                = kernel.ErrShape
	ErrNotFitted            = kernel.ErrNotFitted
	ErrNativeCall           = kernel.ErrNativeCall
)

// DefaultConfig returns h=1, λ=4, rbf kernel, local HSS.
func DefaultConfig() Config {
	return kernel.DefaultConfig()
}

// New creates an unfitted classifier.
func New(cfg Config, opts ...Option) *Classifier {
	return kernel.New(cfg, opts...)
}

// WithCollaborator sets the native solver instead of the process-wide
// library.
func WithCollaborator(c native.Collaborator) Option {
	return kernel.WithCollaborator(c)
}

// WithLogger sets the logger for handle lifecycle records.
func WithLogger(l *slog.Logger) Option {
	return kernel.WithLogger(l)
}
