// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package native loads the hierarchical-matrix solver shared library.
//
// The library is process-wide state: Init loads it once from an explicit
// path or $HKERNEL_LIBRARY, and Shutdown unloads it after every classifier
// has been closed. Nothing is loaded from a built-in location.
package native

import (
	"github.com/born-ml/hkernel/internal/native"
)

// EnvLibraryPath is consulted when Init is given an empty path.
const EnvLibraryPath = native.EnvLibraryPath

// Collaborator is the native solver contract used by kernel.Classifier.
type Collaborator = native.Collaborator

// Library is a solver shared library loaded without cgo.
type Library = native.Library

// Mock is an in-process Collaborator for tests.
type Mock = native.Mock

// CallError reports a failed native entry point.
type CallError = native.CallError

// Errors.
var (
	ErrNativeCall           = native.ErrNativeCall
	ErrNotInitialized       = native.ErrNotInitialized
	ErrLibraryNotConfigured = native.ErrLibraryNotConfigured
	ErrAlreadyInitialized   = native.ErrAlreadyInitialized
	ErrHandlesAlive         = native.ErrHandlesAlive
)

// Init loads the process-wide library.
func Init(path string) (*Library, error) {
	return native.Init(path)
}

// Default returns the process-wide library.
func Default() (*Library, error) {
	return native.Default()
}

// Shutdown unloads the process-wide library once no kernels are alive.
func Shutdown() error {
	return native.Shutdown()
}

// Open loads a library outside the process-wide registry.
func Open(path string) (*Library, error) {
	return native.Open(path)
}

// NewMock creates an in-process solver stand-in.
func NewMock() *Mock {
	return native.NewMock()
}
