package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/hkernel/internal/tensor"
)

func TestReadCSV_LastColumnLabel(t *testing.T) {
	in := "x1,x2,y\n1,2,-1\n3, 4,1\n5,6,1\n"
	d, err := ReadCSV(strings.NewReader(in), Options{LabelCol: -1, Header: true})
	require.NoError(t, err)

	assert.Equal(t, 3, d.Rows())
	assert.Equal(t, 2, d.Features())
	assert.True(t, d.Labeled())
	assert.Equal(t, []float64{-1, 1, 1}, d.Y)
	assert.True(t, mat.Equal(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}), d.X))
}

func TestReadCSV_FirstColumnLabel(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("0;1.5;2\n1;3;4\n"), Options{LabelCol: 0, Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, d.Y)
	assert.Equal(t, []float64{1.5, 2}, d.X.RawRowView(0))
}

func TestReadCSV_Unlabeled(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("1,2\n3,4\n"), Options{Unlabeled: true})
	require.NoError(t, err)
	assert.False(t, d.Labeled())
	assert.Equal(t, 2, d.Features())
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts Options
	}{
		{"empty", "", Options{LabelCol: -1}},
		{"header only", "a,b\n", Options{LabelCol: -1, Header: true}},
		{"not a number", "1,x,1\n", Options{LabelCol: -1}},
		{"ragged", "1,2,1\n3,1\n", Options{LabelCol: -1}},
		{"label out of range", "1,2\n", Options{LabelCol: 5}},
		{"label only", "1\n2\n", Options{LabelCol: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestLoadCSV_Matrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2,0\n3,4,1\n"), 0o600))

	d, err := LoadCSV(path, Options{LabelCol: -1})
	require.NoError(t, err)

	m, err := d.Matrix(tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, m.DType())
	assert.Equal(t, []float32{1, 2, 3, 4}, m.AsFloat32())

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}
