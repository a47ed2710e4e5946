package native

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/born-ml/hkernel/internal/tensor"
)

// Verify that Mock implements Collaborator.
var _ Collaborator = (*Mock)(nil)

// Mock is an in-process Collaborator for tests.
// It records every entry point name it is asked to run and answers predict
// with a 1-nearest-neighbour score: the neighbour's label minus the
// midpoint of the two training labels, so the lower label scores negative.
type Mock struct {
	// Failures injected into the matching entry point.
	FailCreate  error
	FailFit     error
	FailPredict error
	FailDestroy error

	mu        sync.Mutex
	calls     []string
	kernels   map[*mockKernel]struct{}
	destroyed int
	lastFit   FitRecord
}

// FitRecord captures the arguments of the most recent Fit.
type FitRecord struct {
	Mode   FitMode
	DType  tensor.DataType
	Labels []float64
	Args   []string
}

type mockKernel struct {
	dtype      tensor.DataType
	rows, cols int
	train      []byte // retained, read at predict time
	h, lambda  float64
	kernel     KernelType
	labels     []float64
	mid        float64
	fitted     bool
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{kernels: make(map[*mockKernel]struct{})}
}

func (m *Mock) record(name string, err error) string {
	if name == "" {
		name = fmt.Sprintf("invalid(%v)", err)
	}
	m.calls = append(m.calls, name)
	return name
}

// Calls returns the entry point names invoked so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Live returns the number of kernels created and not destroyed.
func (m *Mock) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.kernels)
}

// Destroyed returns the number of successful destroy calls.
func (m *Mock) Destroyed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// LastFit returns the arguments of the most recent Fit call.
func (m *Mock) LastFit() FitRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFit
}

func (m *Mock) lookup(k Handle) (*mockKernel, bool) {
	if k.IsNil() {
		return nil, false
	}
	mk := (*mockKernel)(k.Pointer())
	_, ok := m.kernels[mk]
	return mk, ok
}

// CreateKernel keeps a reference to the training buffer, like the solver
// does, and returns a new handle.
func (m *Mock) CreateKernel(dtype tensor.DataType, rows, cols int, train []byte, h, lambda float64, kernel KernelType) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, err := CreateSymbol(dtype)
	m.record(name, err)
	if err != nil {
		return Handle{}, callError("", err)
	}
	if m.FailCreate != nil {
		return Handle{}, callError(name, m.FailCreate)
	}
	if rows <= 0 || cols <= 0 || len(train) < rows*cols*dtype.Size() {
		return Handle{}, callError(name, fmt.Errorf("bad training buffer for %d×%d", rows, cols))
	}

	mk := &mockKernel{
		dtype:  dtype,
		rows:   rows,
		cols:   cols,
		train:  train,
		h:      h,
		lambda: lambda,
		kernel: kernel,
	}
	m.kernels[mk] = struct{}{}
	return NewHandle(unsafe.Pointer(mk)), nil
}

// Fit stores the labels on the kernel.
func (m *Mock) Fit(dtype tensor.DataType, mode FitMode, k Handle, labels []byte, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, err := FitSymbol(mode, dtype)
	m.record(name, err)
	if err != nil {
		return callError("", err)
	}
	mk, ok := m.lookup(k)
	if !ok {
		return callError(name, ErrUnknownHandle)
	}
	if mk.dtype != dtype {
		return callError(name, fmt.Errorf("kernel precision %s, call precision %s", mk.dtype, dtype))
	}
	if m.FailFit != nil {
		return callError(name, m.FailFit)
	}

	mk.labels = decodeFloats(dtype, labels, mk.rows)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range mk.labels {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mk.mid = (lo + hi) / 2
	mk.fitted = true
	m.lastFit = FitRecord{
		Mode:   mode,
		DType:  dtype,
		Labels: append([]float64(nil), mk.labels...),
		Args:   append([]string(nil), args...),
	}
	return nil
}

// Predict writes one score per test row into out.
func (m *Mock) Predict(dtype tensor.DataType, k Handle, rows int, test, out []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, err := PredictSymbol(dtype)
	m.record(name, err)
	if err != nil {
		return callError("", err)
	}
	mk, ok := m.lookup(k)
	if !ok {
		return callError(name, ErrUnknownHandle)
	}
	if !mk.fitted {
		return callError(name, fmt.Errorf("kernel not fitted"))
	}
	if m.FailPredict != nil {
		return callError(name, m.FailPredict)
	}

	x := decodeFloats(dtype, test, rows*mk.cols)
	train := decodeFloats(dtype, mk.train, mk.rows*mk.cols)
	scores := make([]float64, rows)
	for i := range scores {
		row := x[i*mk.cols : (i+1)*mk.cols]
		best, bestDist := 0, math.Inf(1)
		for j := 0; j < mk.rows; j++ {
			d := 0.0
			for c, v := range row {
				diff := v - train[j*mk.cols+c]
				d += diff * diff
			}
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		scores[i] = mk.labels[best] - mk.mid
	}
	encodeFloats(dtype, scores, out)
	return nil
}

// Destroy forgets the kernel. Destroying an unknown handle is an error,
// which is how tests detect a double release.
func (m *Mock) Destroy(dtype tensor.DataType, k Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, err := DestroySymbol(dtype)
	m.record(name, err)
	if err != nil {
		return callError("", err)
	}
	mk, ok := m.lookup(k)
	if !ok {
		return callError(name, ErrUnknownHandle)
	}
	delete(m.kernels, mk)
	if m.FailDestroy != nil {
		return callError(name, m.FailDestroy)
	}
	m.destroyed++
	return nil
}

func decodeFloats(dtype tensor.DataType, b []byte, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		switch dtype {
		case tensor.Float32:
			out[i] = float64(math.Float32frombits(binary.NativeEndian.Uint32(b[i*4:])))
		default:
			out[i] = math.Float64frombits(binary.NativeEndian.Uint64(b[i*8:]))
		}
	}
	return out
}

func encodeFloats(dtype tensor.DataType, values []float64, b []byte) {
	for i, v := range values {
		switch dtype {
		case tensor.Float32:
			binary.NativeEndian.PutUint32(b[i*4:], math.Float32bits(float32(v)))
		default:
			binary.NativeEndian.PutUint64(b[i*8:], math.Float64bits(v))
		}
	}
}
