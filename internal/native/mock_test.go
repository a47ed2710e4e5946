package native

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/hkernel/internal/tensor"
)

func TestMock_Lifecycle(t *testing.T) {
	m := NewMock()

	train, err := tensor.FromRows([][]float32{{0, 0}, {10, 10}})
	require.NoError(t, err)
	labels, err := tensor.Vector([]float64{3, 7}, tensor.Float32)
	require.NoError(t, err)

	k, err := m.CreateKernel(tensor.Float32, 2, 2, train.Bytes(), 1, 4, KernelGauss)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Live())

	require.NoError(t, m.Fit(tensor.Float32, FitHSS, k, labels.Bytes(), []string{"--verbose"}))
	rec := m.LastFit()
	assert.Equal(t, FitHSS, rec.Mode)
	assert.Equal(t, []float64{3, 7}, rec.Labels)
	assert.Equal(t, []string{"--verbose"}, rec.Args)

	test, err := tensor.FromRows([][]float32{{1, 1}, {9, 9}})
	require.NoError(t, err)
	out, err := tensor.New(2, 1, tensor.Float32)
	require.NoError(t, err)

	require.NoError(t, m.Predict(tensor.Float32, k, 2, test.Bytes(), out.Bytes()))
	assert.Equal(t, []float32{-2, 2}, out.AsFloat32())

	require.NoError(t, m.Destroy(tensor.Float32, k))
	assert.Equal(t, 0, m.Live())
	assert.Equal(t, 1, m.Destroyed())

	// A second destroy of the same handle is reported, not performed.
	err = m.Destroy(tensor.Float32, k)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.ErrorIs(t, err, ErrNativeCall)
	assert.Equal(t, 1, m.Destroyed())

	assert.Equal(t, []string{
		"STRUMPACK_create_kernel_float",
		"STRUMPACK_kernel_fit_HSS_float",
		"STRUMPACK_kernel_predict_float",
		"STRUMPACK_destroy_kernel_float",
		"STRUMPACK_destroy_kernel_float",
	}, m.Calls())
}

func TestMock_PredictBeforeFit(t *testing.T) {
	m := NewMock()
	train, err := tensor.FromRows([][]float64{{1}})
	require.NoError(t, err)

	k, err := m.CreateKernel(tensor.Float64, 1, 1, train.Bytes(), 1, 4, KernelLaplace)
	require.NoError(t, err)

	out, err := tensor.New(1, 1, tensor.Float64)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Predict(tensor.Float64, k, 1, train.Bytes(), out.Bytes()), ErrNativeCall)
}

func TestMock_InjectedFailures(t *testing.T) {
	boom := errors.New("boom")
	m := NewMock()
	m.FailCreate = boom

	train, err := tensor.FromRows([][]float64{{1}})
	require.NoError(t, err)

	_, err = m.CreateKernel(tensor.Float64, 1, 1, train.Bytes(), 1, 4, KernelGauss)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Live())
}

func TestMock_PrecisionMismatch(t *testing.T) {
	m := NewMock()
	train, err := tensor.FromRows([][]float64{{1}, {2}})
	require.NoError(t, err)
	labels, err := tensor.Vector([]float64{-1, 1}, tensor.Float32)
	require.NoError(t, err)

	k, err := m.CreateKernel(tensor.Float64, 2, 1, train.Bytes(), 1, 4, KernelGauss)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Fit(tensor.Float32, FitHSS, k, labels.Bytes(), nil), ErrNativeCall)
}
