package metrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]float64{1, -1, 1, 1}, []float64{1, 1, 1, -1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, acc, 1e-12)

	_, err = Accuracy([]float64{1}, nil)
	assert.Error(t, err)
	_, err = Accuracy(nil, nil)
	assert.Error(t, err)
}

func TestROC_Perfect(t *testing.T) {
	points, err := ROC([]float64{-2, -1, 1, 2}, []float64{0, 0, 1, 1}, 1)
	require.NoError(t, err)

	assert.Equal(t, ROCPoint{0, 0, math.Inf(1)}, points[0])
	last := points[len(points)-1]
	assert.Equal(t, 1.0, last.FPR)
	assert.Equal(t, 1.0, last.TPR)
	assert.InDelta(t, 1.0, AUC(points), 1e-12)
}

func TestROC_Inverted(t *testing.T) {
	points, err := ROC([]float64{2, 1, -1, -2}, []float64{0, 0, 1, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, AUC(points), 1e-12)
}

func TestROC_Ties(t *testing.T) {
	// All scores tied: one step straight to (1, 1), AUC is chance.
	points, err := ROC([]float64{0, 0, 0, 0}, []float64{-1, 1, -1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 0.5, AUC(points), 1e-12)
}

func TestROC_Errors(t *testing.T) {
	_, err := ROC([]float64{1, 2}, []float64{1, 1}, 1)
	assert.Error(t, err)
	_, err = ROC([]float64{1}, []float64{1, -1}, 1)
	assert.Error(t, err)
	_, err = ROC([]float64{math.NaN(), 1}, []float64{-1, 1}, 1)
	assert.Error(t, err)
}

func TestSaveROCPlot(t *testing.T) {
	points, err := ROC([]float64{-2, 0.5, -0.5, 2}, []float64{-1, -1, 1, 1}, 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "roc.png")
	require.NoError(t, SaveROCPlot(points, AUC(points), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
