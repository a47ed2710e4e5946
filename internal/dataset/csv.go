// Package dataset loads numeric CSV files into feature matrices and label
// vectors.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/hkernel/internal/tensor"
)

// Options controls how a CSV file is read.
type Options struct {
	// LabelCol is the label column index. Negative values count from the
	// end, so -1 is the last column.
	LabelCol int
	// Unlabeled treats every column as a feature and leaves Y empty.
	Unlabeled bool
	// Header skips the first record.
	Header bool
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// Dataset is a feature matrix with optional labels.
type Dataset struct {
	X *mat.Dense
	Y []float64
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int {
	r, _ := d.X.Dims()
	return r
}

// Features returns the number of feature columns.
func (d *Dataset) Features() int {
	_, c := d.X.Dims()
	return c
}

// Labeled reports whether the dataset carries labels.
func (d *Dataset) Labeled() bool {
	return d.Y != nil
}

// Matrix converts the features to a tensor.Matrix at the given precision.
func (d *Dataset) Matrix(dtype tensor.DataType) (*tensor.Matrix, error) {
	return tensor.FromDense(d.X, dtype)
}

// LoadCSV reads a dataset from path.
func LoadCSV(path string, opts Options) (*Dataset, error) {
	//nolint:gosec // G304: dataset path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	d, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ReadCSV reads a dataset from r. Every field must parse as a float and
// every record must have the same number of fields.
func ReadCSV(r io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	var (
		values []float64
		labels []float64
		width  = -1
		label  = -1
		line   = 0
	)

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && opts.Header {
			continue
		}

		if width < 0 {
			width = len(rec)
			if !opts.Unlabeled {
				label = opts.LabelCol
				if label < 0 {
					label += width
				}
				if label < 0 || label >= width {
					return nil, fmt.Errorf("label column %d out of range for %d columns", opts.LabelCol, width)
				}
				if width < 2 {
					return nil, fmt.Errorf("need at least one feature column besides the label")
				}
			}
		}

		for i, s := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %d: %w", line, i+1, err)
			}
			if i == label {
				labels = append(labels, v)
			} else {
				values = append(values, v)
			}
		}
	}

	if width < 0 {
		return nil, fmt.Errorf("no data records")
	}

	features := width
	if label >= 0 {
		features--
	}
	rows := len(values) / features
	if rows == 0 {
		return nil, fmt.Errorf("no data records")
	}
	return &Dataset{
		X: mat.NewDense(rows, features, values),
		Y: labels,
	}, nil
}
