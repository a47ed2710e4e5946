// Package kernel implements a binary kernel ridge classifier backed by the
// native hierarchical-matrix solver.
//
// The classifier only validates, marshals and owns the native kernel handle;
// compression, factorization and prediction all happen in the solver.
//
// A Classifier is not safe for concurrent use. Fit, Predict and
// DecisionFunction block until the native call returns.
package kernel

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"

	"github.com/google/uuid"

	"github.com/born-ml/hkernel/internal/native"
	"github.com/born-ml/hkernel/internal/tensor"
)

// Classifier is a binary classifier over a native kernel handle.
//
// States: unfitted --Fit--> fitted --Close--> unfitted. Close is idempotent,
// and an instance dropped without Close is released by the garbage
// collector.
type Classifier struct {
	cfg    Config
	id     string
	logger *slog.Logger
	collab native.Collaborator

	res     *resource
	classes [2]float64
	cols    int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCollaborator sets the native solver. Without it, Fit uses the
// process-wide library from native.Default.
func WithCollaborator(c native.Collaborator) Option {
	return func(clf *Classifier) {
		clf.collab = c
	}
}

// WithLogger sets the logger for handle lifecycle records.
func WithLogger(l *slog.Logger) Option {
	return func(clf *Classifier) {
		if l != nil {
			clf.logger = l
		}
	}
}

// New creates an unfitted classifier. No validation and no native work
// happens here.
//
// Example:
//
//	clf := kernel.New(kernel.DefaultConfig())
//	defer clf.Close()
//	if _, err := clf.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	labels, err := clf.Predict(Xtest)
func New(cfg Config, opts ...Option) *Classifier {
	cfg.Args = append([]string(nil), cfg.Args...)
	c := &Classifier{
		cfg:    cfg,
		id:     uuid.NewString(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("classifier", c.id)
	c.res = &resource{logger: c.logger}
	runtime.AddCleanup(c, func(r *resource) { r.release() }, c.res)
	return c
}

// Config returns a copy of the classifier configuration.
func (c *Classifier) Config() Config {
	cfg := c.cfg
	cfg.Args = append([]string(nil), c.cfg.Args...)
	return cfg
}

// ID returns the instance id used in log records.
func (c *Classifier) ID() string {
	return c.id
}

// IsFitted reports whether a native kernel handle is alive.
func (c *Classifier) IsFitted() bool {
	c.res.mu.Lock()
	defer c.res.mu.Unlock()
	return c.res.held()
}

// Classes returns the two labels seen by the last successful Fit, in
// ascending order. Scores below zero map to the first.
func (c *Classifier) Classes() ([2]float64, bool) {
	if !c.IsFitted() {
		return [2]float64{}, false
	}
	return c.classes, true
}

// Precision returns the training precision, or false when unfitted.
func (c *Classifier) Precision() (tensor.DataType, bool) {
	c.res.mu.Lock()
	defer c.res.mu.Unlock()
	return c.res.dtype, c.res.held()
}

// Fit validates X and y, creates a native kernel at X's precision and
// fits it. A previously fitted handle is released first.
//
// Validation errors are returned before any native call and leave an
// existing fit untouched. A native failure leaves the classifier unfitted.
func (c *Classifier) Fit(X *tensor.Matrix, y []float64) (*Classifier, error) {
	kt, mode, err := c.validate(X)
	if err != nil {
		return nil, err
	}
	classes, err := checkTargets(X, y)
	if err != nil {
		return nil, err
	}

	collab := c.collab
	if collab == nil {
		lib, err := native.Default()
		if err != nil {
			return nil, &native.CallError{Err: err}
		}
		collab = lib
	}

	dtype := X.DType()
	labels, err := tensor.Vector(y, dtype)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	train := X.Clone()

	c.res.mu.Lock()
	defer c.res.mu.Unlock()

	if c.res.held() {
		c.logger.Debug("releasing previous kernel before refit")
		_ = c.res.releaseLocked()
	}

	h, err := collab.CreateKernel(dtype, train.Rows(), train.Cols(), train.Bytes(), c.cfg.H, c.cfg.Lambda, kt)
	if err != nil {
		return nil, err
	}
	c.res.adopt(collab, dtype, h, train)
	c.logger.Debug("kernel created",
		"rows", train.Rows(), "cols", train.Cols(), "dtype", dtype.String(),
		"kernel", kt.String(), "h", c.cfg.H, "lambda", c.cfg.Lambda)

	if err := collab.Fit(dtype, mode, h, labels.Bytes(), c.cfg.Args); err != nil {
		_ = c.res.releaseLocked()
		return nil, err
	}
	runtime.KeepAlive(labels)

	c.classes = classes
	c.cols = train.Cols()
	c.logger.Debug("kernel fitted", "mode", mode.String(), "args", len(c.cfg.Args))
	return c, nil
}

// validate runs the configuration checks in their documented order.
func (c *Classifier) validate(X *tensor.Matrix) (native.KernelType, native.FitMode, error) {
	if X == nil {
		return 0, 0, fmt.Errorf("%w: nil training matrix", ErrShape)
	}
	if !X.DType().IsFloat() {
		return 0, 0, fmt.Errorf("%w: %s, need float32 or float64", ErrUnsupportedPrecision, X.DType())
	}
	if c.cfg.Approximation == ApproximationHODLR && !c.cfg.Distributed {
		return 0, 0, fmt.Errorf("%w: HODLR requires distributed execution", ErrConfiguration)
	}
	kt, ok := kernelType(c.cfg.Kernel)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q, should be %q, %q or %q",
			ErrUnknownKernel, c.cfg.Kernel, KernelRBF, KernelGauss, KernelLaplace)
	}
	mode, err := fitMode(c.cfg.Approximation, c.cfg.Distributed)
	if err != nil {
		return 0, 0, err
	}
	if !positive(c.cfg.H) {
		return 0, 0, fmt.Errorf("%w: h must be positive and finite, got %v", ErrConfiguration, c.cfg.H)
	}
	if !positive(c.cfg.Lambda) {
		return 0, 0, fmt.Errorf("%w: lambda must be positive and finite, got %v", ErrConfiguration, c.cfg.Lambda)
	}
	return kt, mode, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// checkTargets checks X/y consistency and returns the two classes sorted.
// Labels are checked at X's precision, which is what the solver sees.
func checkTargets(X *tensor.Matrix, y []float64) ([2]float64, error) {
	var classes [2]float64
	if X.Rows() == 0 || X.Cols() == 0 {
		return classes, fmt.Errorf("%w: X is %s, need at least one row and column", ErrShape, X.Shape())
	}
	if len(y) != X.Rows() {
		return classes, fmt.Errorf("%w: X has %d rows, y has %d labels", ErrShape, X.Rows(), len(y))
	}
	if X.HasNonFinite() {
		return classes, fmt.Errorf("%w: X contains NaN or infinity", ErrShape)
	}

	single := X.DType() == tensor.Float32
	seen := make(map[float64]struct{}, 2)
	narrowed := make(map[float32]struct{}, 2)
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return classes, fmt.Errorf("%w: label %d is %v", ErrShape, i, v)
		}
		if single {
			f := float32(v)
			if math.IsInf(float64(f), 0) {
				return classes, fmt.Errorf("%w: label %d (%v) overflows float32", ErrShape, i, v)
			}
			narrowed[f] = struct{}{}
		}
		seen[v] = struct{}{}
	}
	if len(seen) != 2 {
		return classes, fmt.Errorf("%w: need exactly 2 classes, found %d", ErrShape, len(seen))
	}
	if single && len(narrowed) != 2 {
		return classes, fmt.Errorf("%w: the 2 classes are equal at float32 precision", ErrShape)
	}

	uniq := make([]float64, 0, 2)
	for v := range seen {
		uniq = append(uniq, v)
	}
	sort.Float64s(uniq)
	copy(classes[:], uniq)
	return classes, nil
}

// DecisionFunction returns the signed solver score of every row of X.
func (c *Classifier) DecisionFunction(X *tensor.Matrix) ([]float64, error) {
	scores, err := c.decide(X)
	if err != nil {
		return nil, err
	}
	return scores.Float64s(), nil
}

// Predict returns one class label per row of X: the lower class where the
// score is negative, the higher class otherwise.
func (c *Classifier) Predict(X *tensor.Matrix) ([]float64, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	labels := make([]float64, len(scores))
	for i, s := range scores {
		if s < 0 {
			labels[i] = c.classes[0]
		} else {
			labels[i] = c.classes[1]
		}
	}
	return labels, nil
}

// decide runs the native predict entry point into a fresh rows×1 buffer at
// the training precision.
func (c *Classifier) decide(X *tensor.Matrix) (*tensor.Matrix, error) {
	c.res.mu.Lock()
	defer c.res.mu.Unlock()

	if !c.res.held() {
		return nil, ErrNotFitted
	}
	if X == nil || X.Rows() == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrShape)
	}
	dtype := c.res.dtype
	if X.DType() != dtype {
		return nil, fmt.Errorf("%w: %s, classifier was fitted on %s", ErrUnsupportedPrecision, X.DType(), dtype)
	}
	if X.Cols() != c.cols {
		return nil, fmt.Errorf("%w: X has %d features, classifier was fitted on %d", ErrShape, X.Cols(), c.cols)
	}
	if X.HasNonFinite() {
		return nil, fmt.Errorf("%w: X contains NaN or infinity", ErrShape)
	}

	out, err := tensor.New(X.Rows(), 1, dtype)
	if err != nil {
		return nil, err
	}
	if err := c.res.collab.Predict(dtype, c.res.handle, X.Rows(), X.Bytes(), out.Bytes()); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the native kernel. It is safe to call on an unfitted
// classifier and more than once. Destroy failures are logged, never
// returned.
func (c *Classifier) Close() error {
	c.res.mu.Lock()
	defer c.res.mu.Unlock()
	_ = c.res.releaseLocked()
	return nil
}
