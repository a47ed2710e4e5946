package tensor

import (
	"fmt"
	"runtime"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/hkernel/internal/parallel"
)

// FromDense copies a gonum matrix into a new Matrix of the given float
// precision.
func FromDense(src mat.Matrix, dtype DataType) (*Matrix, error) {
	if !dtype.IsFloat() {
		return nil, fmt.Errorf("dense conversion to %s not supported", dtype)
	}
	r, c := src.Dims()
	m, err := New(r, c, dtype)
	if err != nil {
		return nil, err
	}
	parallel.For(r, func(i int) {
		for j := 0; j < c; j++ {
			m.setAt(i*c+j, src.At(i, j))
		}
	}, parallel.Config{Enabled: r*c >= 1<<14, NumWorkers: runtime.NumCPU(), MinChunkSize: 64})
	return m, nil
}

// ToDense widens m into a new gonum *mat.Dense.
func (m *Matrix) ToDense() *mat.Dense {
	return mat.NewDense(m.Rows(), m.Cols(), m.Float64s())
}

// Matrix satisfies mat.Matrix so it can be handed to gonum routines
// without copying.
var _ mat.Matrix = (*Matrix)(nil)

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (r, c int) { return m.shape[0], m.shape[1] }

// T returns the implicit transpose of m.
func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }
