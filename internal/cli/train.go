package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/hkernel/internal/dataset"
	"github.com/born-ml/hkernel/internal/kernel"
	"github.com/born-ml/hkernel/internal/tensor"
)

// trainFlags are shared by every command that fits a classifier.
type trainFlags struct {
	train         string
	test          string
	labelCol      int
	header        bool
	testUnlabeled bool

	precision     string
	h             float64
	lambda        float64
	kernel        string
	approximation string
	distributed   bool
	args          []string
}

func (f *trainFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.train, "train", "", "training CSV (required)")
	fl.StringVar(&f.test, "test", "", "CSV to score (default: the training set)")
	fl.IntVar(&f.labelCol, "label-col", -1, "label column index, negative counts from the end")
	fl.BoolVar(&f.header, "header", false, "skip the first line of each CSV")
	fl.BoolVar(&f.testUnlabeled, "test-unlabeled", false, "the test CSV has no label column")

	// Classifier overrides; unset flags fall back to the config file.
	fl.StringVar(&f.precision, "precision", "", "matrix precision: float32 or float64")
	fl.Float64Var(&f.h, "h", 0, "kernel bandwidth")
	fl.Float64Var(&f.lambda, "lambda", 0, "regularization parameter")
	fl.StringVar(&f.kernel, "kernel", "", "kernel: rbf, Gauss or Laplace")
	fl.StringVar(&f.approximation, "approximation", "", "approximation: HSS or HODLR")
	fl.BoolVar(&f.distributed, "distributed", false, "use the distributed (MPI) fit")
	fl.StringArrayVar(&f.args, "arg", nil, "extra solver argument, repeatable")

	_ = cmd.MarkFlagRequired("train")
}

// classifierConfig merges changed flags over the config file.
func (a *App) classifierConfig(cmd *cobra.Command, f *trainFlags) (kernel.Config, tensor.DataType, error) {
	cfg := a.cfg.Classifier
	fl := cmd.Flags()
	if fl.Changed("h") {
		cfg.H = f.h
	}
	if fl.Changed("lambda") {
		cfg.Lambda = f.lambda
	}
	if fl.Changed("kernel") {
		cfg.Kernel = f.kernel
	}
	if fl.Changed("approximation") {
		cfg.Approximation = f.approximation
	}
	if fl.Changed("distributed") {
		cfg.Distributed = f.distributed
	}
	if fl.Changed("arg") {
		cfg.Args = f.args
	}

	file := *a.cfg
	if fl.Changed("precision") {
		file.Precision = f.precision
	}
	dtype, err := file.DType()
	if err != nil {
		return cfg, 0, err
	}
	return cfg, dtype, nil
}

// session is a fitted classifier together with the data to score.
type session struct {
	clf   *kernel.Classifier
	test  *dataset.Dataset
	testX *tensor.Matrix
	close func()
}

// fit loads the data, opens the solver and fits a classifier. The returned
// session must be closed.
func (a *App) fit(cmd *cobra.Command, f *trainFlags) (*session, error) {
	cfg, dtype, err := a.classifierConfig(cmd, f)
	if err != nil {
		return nil, err
	}

	train, err := dataset.LoadCSV(f.train, dataset.Options{LabelCol: f.labelCol, Header: f.header})
	if err != nil {
		return nil, err
	}
	test := train
	if f.test != "" {
		test, err = dataset.LoadCSV(f.test, dataset.Options{
			LabelCol:  f.labelCol,
			Header:    f.header,
			Unlabeled: f.testUnlabeled,
		})
		if err != nil {
			return nil, err
		}
	}

	trainX, err := train.Matrix(dtype)
	if err != nil {
		return nil, err
	}
	testX, err := test.Matrix(dtype)
	if err != nil {
		return nil, err
	}

	solver, unload, err := a.openSolver(a.cfg.LibraryPath(a.library))
	if err != nil {
		return nil, err
	}

	clf := kernel.New(cfg, kernel.WithCollaborator(solver), kernel.WithLogger(a.logger))
	closeAll := func() {
		_ = clf.Close()
		if err := unload(); err != nil {
			a.logger.Warn("unloading solver failed", "err", err)
		}
	}

	a.logger.Debug("fitting",
		"train", f.train, "rows", train.Rows(), "features", train.Features(),
		"precision", dtype.String(), "kernel", cfg.Kernel, "approximation", cfg.Approximation)
	if _, err := clf.Fit(trainX, train.Y); err != nil {
		closeAll()
		return nil, fmt.Errorf("fit: %w", err)
	}

	return &session{clf: clf, test: test, testX: testX, close: closeAll}, nil
}
