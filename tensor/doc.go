// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense matrix type consumed by the kernel
// classifier.
//
// # Overview
//
// A Matrix is row-major and backed by one contiguous buffer at a runtime
// precision. The buffer is handed to the native solver as-is, so no copy or
// conversion happens at the call boundary.
//
// # Basic Usage
//
//	import "github.com/born-ml/hkernel/tensor"
//
//	X, err := tensor.FromRows([][]float64{
//	    {0.1, 1.2},
//	    {2.3, 0.4},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	X32 := X.Convert(tensor.Float32)
//
// # Supported Data Types
//
// Matrices can hold float32, float64, int32, int64, uint8 and bool. The
// classifier accepts only float32 and float64 and rejects the rest.
//
// # gonum Interop
//
// Matrix implements gonum's mat.Matrix, and FromDense copies any
// mat.Matrix in at the chosen precision.
package tensor
