// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/hkernel/internal/tensor"
)

// Matrix is a dense row-major matrix with a runtime precision.
//
// Matrix provides:
//   - Shape and type information via Shape(), DType()
//   - Type-safe data access via AsFloat32(), AsFloat64()
//   - Precision conversion via Convert()
//   - gonum interop via Dims(), At(), T() and ToDense()
type Matrix = tensor.Matrix

// Shape holds {rows, cols}.
type Shape = tensor.Shape

// DataType represents runtime type information for matrices.
type DataType = tensor.DataType

// DType is the constraint for element types a Matrix can hold.
type DType = tensor.DType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
)

// New allocates a zero-filled rows×cols matrix.
func New(rows, cols int, dtype DataType) (*Matrix, error) {
	return tensor.New(rows, cols, dtype)
}

// FromSlice copies row-major values into a new matrix.
//
// Example:
//
//	X, err := tensor.FromSlice(2, 3, []float32{1, 2, 3, 4, 5, 6})
func FromSlice[T DType](rows, cols int, values []T) (*Matrix, error) {
	return tensor.FromSlice(rows, cols, values)
}

// FromRows copies equal-length rows into a new matrix.
func FromRows[T DType](rows [][]T) (*Matrix, error) {
	return tensor.FromRows(rows)
}

// FromDense copies a gonum matrix at the given float precision.
func FromDense(src mat.Matrix, dtype DataType) (*Matrix, error) {
	return tensor.FromDense(src, dtype)
}
