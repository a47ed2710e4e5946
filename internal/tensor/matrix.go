package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/born-ml/hkernel/internal/parallel"
)

// Matrix is a dense row-major matrix backed by one contiguous byte buffer.
// The buffer layout is what the native solver reads: rows*cols elements of
// DType, native endianness, no padding between rows.
type Matrix struct {
	data  []byte
	shape Shape
	dtype DataType
}

// New allocates a zero-filled matrix.
func New(rows, cols int, dtype DataType) (*Matrix, error) {
	shape := Shape{rows, cols}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Matrix{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape,
		dtype: dtype,
	}, nil
}

// FromSlice copies row-major values into a new matrix of T's data type.
func FromSlice[T DType](rows, cols int, values []T) (*Matrix, error) {
	var dummy T
	m, err := New(rows, cols, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	if len(values) != m.NumElements() {
		return nil, fmt.Errorf("value count %d does not match shape %s", len(values), m.shape)
	}
	copy(view[T](m), values)
	return m, nil
}

// FromRows copies a slice of equal-length rows into a new matrix.
//
// Example:
//
//	m, err := tensor.FromRows([][]float32{{1, 2}, {3, 4}})
func FromRows[T DType](rows [][]T) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("invalid shape: no rows")
	}
	cols := len(rows[0])
	var dummy T
	m, err := New(len(rows), cols, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	dst := view[T](m)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), cols)
		}
		copy(dst[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// view reinterprets the buffer as []T without copying.
func view[T DType](m *Matrix) []T {
	if len(m.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&m.data[0])), m.NumElements())
}

// Shape returns the matrix dimensions.
func (m *Matrix) Shape() Shape { return m.shape }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.shape[0] }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.shape[1] }

// DType returns the element data type.
func (m *Matrix) DType() DataType { return m.dtype }

// NumElements returns rows*cols.
func (m *Matrix) NumElements() int { return m.shape.NumElements() }

// ByteSize returns the backing buffer size in bytes.
func (m *Matrix) ByteSize() int { return len(m.data) }

// Bytes returns the backing buffer.
// WARNING: this is the live storage, not a copy. Callers handing it to
// native code must treat it as read-only unless it is an output buffer.
func (m *Matrix) Bytes() []byte { return m.data }

// AsFloat32 interprets the data as []float32.
// Panics if the matrix dtype is not Float32.
func (m *Matrix) AsFloat32() []float32 {
	if m.dtype != Float32 {
		panic(fmt.Sprintf("matrix dtype is %s, not float32", m.dtype))
	}
	return view[float32](m)
}

// AsFloat64 interprets the data as []float64.
// Panics if the matrix dtype is not Float64.
func (m *Matrix) AsFloat64() []float64 {
	if m.dtype != Float64 {
		panic(fmt.Sprintf("matrix dtype is %s, not float64", m.dtype))
	}
	return view[float64](m)
}

// At returns element (i, j) widened to float64.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.shape[0] || j < 0 || j >= m.shape[1] {
		panic(fmt.Sprintf("index (%d, %d) out of range for shape %s", i, j, m.shape))
	}
	return m.valueAt(i*m.shape[1] + j)
}

func (m *Matrix) valueAt(idx int) float64 {
	off := idx * m.dtype.Size()
	b := m.data[off:]
	switch m.dtype {
	case Float32:
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(b)))
	case Float64:
		return math.Float64frombits(binary.NativeEndian.Uint64(b))
	case Int32:
		return float64(int32(binary.NativeEndian.Uint32(b)))
	case Int64:
		return float64(int64(binary.NativeEndian.Uint64(b)))
	case Uint8:
		return float64(b[0])
	case Bool:
		if b[0] != 0 {
			return 1
		}
		return 0
	default:
		panic("unknown data type")
	}
}

func (m *Matrix) setAt(idx int, v float64) {
	off := idx * m.dtype.Size()
	b := m.data[off:]
	switch m.dtype {
	case Float32:
		binary.NativeEndian.PutUint32(b, math.Float32bits(float32(v)))
	case Float64:
		binary.NativeEndian.PutUint64(b, math.Float64bits(v))
	case Int32:
		binary.NativeEndian.PutUint32(b, uint32(int32(v)))
	case Int64:
		binary.NativeEndian.PutUint64(b, uint64(int64(v)))
	case Uint8:
		b[0] = uint8(v)
	case Bool:
		b[0] = 0
		if v != 0 {
			b[0] = 1
		}
	default:
		panic("unknown data type")
	}
}

// Float64s returns a widened copy of the data in row-major order.
func (m *Matrix) Float64s() []float64 {
	out := make([]float64, m.NumElements())
	for i := range out {
		out[i] = m.valueAt(i)
	}
	return out
}

// HasNonFinite reports whether any element is NaN or ±Inf.
// Integer and bool matrices never contain non-finite values.
func (m *Matrix) HasNonFinite() bool {
	switch m.dtype {
	case Float32:
		for _, v := range view[float32](m) {
			if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
				return true
			}
		}
	case Float64:
		for _, v := range view[float64](m) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy with its own backing buffer.
func (m *Matrix) Clone() *Matrix {
	data := make([]byte, len(m.data))
	copy(data, m.data)
	return &Matrix{data: data, shape: m.shape, dtype: m.dtype}
}

// Convert returns a copy of m at the given data type.
// Converting to the same data type is equivalent to Clone.
func (m *Matrix) Convert(dtype DataType) *Matrix {
	if dtype == m.dtype {
		return m.Clone()
	}
	out := &Matrix{
		data:  make([]byte, m.NumElements()*dtype.Size()),
		shape: m.shape,
		dtype: dtype,
	}
	parallel.Range(m.NumElements(), func(s, e int) {
		for i := s; i < e; i++ {
			out.setAt(i, m.valueAt(i))
		}
	}, parallel.DefaultConfig())
	return out
}

// Vector builds an n×1 matrix of the given data type from float64 values.
// The kernel binding uses it to hand labels and scores across the native
// boundary at the training precision.
func Vector(values []float64, dtype DataType) (*Matrix, error) {
	m, err := New(len(values), 1, dtype)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		m.setAt(i, v)
	}
	return m, nil
}
