package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNew_InvalidShape(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"zero rows", 0, 3},
		{"zero cols", 3, 0},
		{"negative", -1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.cols, Float64)
			assert.Error(t, err)
		})
	}
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	assert.Equal(t, Float32, m.DType())
	assert.Equal(t, Shape{2, 3}, m.Shape())
	assert.Equal(t, 2*3*4, m.ByteSize())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, m.AsFloat32())
	assert.Equal(t, 6.0, m.At(1, 2))
}

func TestFromRows_Ragged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	assert.Error(t, err)

	_, err = FromRows[float64](nil)
	assert.Error(t, err)
}

func TestFromSlice_CountMismatch(t *testing.T) {
	_, err := FromSlice(2, 2, []float64{1, 2, 3})
	assert.Error(t, err)
}

func TestAsFloat_WrongType(t *testing.T) {
	m, err := FromSlice(1, 2, []int32{1, 2})
	require.NoError(t, err)

	assert.Panics(t, func() { m.AsFloat64() })
	assert.Panics(t, func() { m.AsFloat32() })
	assert.Equal(t, Int32, m.DType())
	assert.False(t, m.DType().IsFloat())
}

func TestHasNonFinite(t *testing.T) {
	clean, err := FromSlice(1, 3, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, clean.HasNonFinite())

	nan, err := FromSlice(1, 3, []float32{1, float32(math.NaN()), 3})
	require.NoError(t, err)
	assert.True(t, nan.HasNonFinite())

	inf, err := FromSlice(1, 2, []float64{math.Inf(-1), 0})
	require.NoError(t, err)
	assert.True(t, inf.HasNonFinite())

	ints, err := FromSlice(1, 2, []int64{1, 2})
	require.NoError(t, err)
	assert.False(t, ints.HasNonFinite())
}

func TestClone_Independent(t *testing.T) {
	m, err := FromSlice(2, 1, []float64{1, 2})
	require.NoError(t, err)

	c := m.Clone()
	m.AsFloat64()[0] = 42

	assert.Equal(t, []float64{1, 2}, c.AsFloat64())
}

func TestConvert(t *testing.T) {
	m, err := FromSlice(2, 2, []float64{1.5, -2, 3, 4})
	require.NoError(t, err)

	f := m.Convert(Float32)
	assert.Equal(t, Float32, f.DType())
	assert.Equal(t, []float32{1.5, -2, 3, 4}, f.AsFloat32())

	back := f.Convert(Float64)
	assert.Equal(t, m.AsFloat64(), back.AsFloat64())
}

func TestVector(t *testing.T) {
	v, err := Vector([]float64{-1, 1, 1}, Float32)
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 1}, v.Shape())
	assert.Equal(t, []float32{-1, 1, 1}, v.AsFloat32())

	_, err = Vector(nil, Float64)
	assert.Error(t, err)
}

func TestDenseRoundTrip(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	m, err := FromDense(d, Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, m.AsFloat32())

	// Matrix is itself a mat.Matrix.
	assert.True(t, mat.Equal(d, m))
	assert.True(t, mat.Equal(d, m.ToDense()))
	assert.Equal(t, 4.0, m.T().At(0, 1))

	_, err = FromDense(d, Int32)
	assert.Error(t, err)
}

func TestParseDataType(t *testing.T) {
	dt, ok := ParseDataType("float32")
	assert.True(t, ok)
	assert.Equal(t, Float32, dt)

	_, ok = ParseDataType("complex128")
	assert.False(t, ok)
}

func TestConvert_LargeMatrixSplitsWork(t *testing.T) {
	rows, cols := 300, 100
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = float64(i) * 0.5
	}
	m, err := FromSlice(rows, cols, values)
	require.NoError(t, err)

	f := m.Convert(Float32)
	got := f.AsFloat32()
	for i, v := range values {
		require.Equal(t, float32(v), got[i], "element %d", i)
	}

	d, err := FromDense(m.ToDense(), Float32)
	require.NoError(t, err)
	assert.Equal(t, f.Bytes(), d.Bytes())
}

func TestZeroValueMatrix(t *testing.T) {
	var m Matrix
	assert.Zero(t, m.Rows())
	assert.False(t, m.HasNonFinite())
	assert.Empty(t, m.Float64s())
	assert.Empty(t, m.AsFloat32())
}
