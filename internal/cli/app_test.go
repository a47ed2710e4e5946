package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/hkernel/internal/config"
	"github.com/born-ml/hkernel/internal/kernel"
	"github.com/born-ml/hkernel/internal/native"
)

type testApp struct {
	app      *App
	mock     *native.Mock
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	unloaded int
	libPath  string
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	ta := &testApp{
		mock:   native.NewMock(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ta.app = NewApp(
		WithIO(ta.stdout, ta.stderr),
		WithConfigLoader(func(string) (*config.Config, error) { return cfg, nil }),
		WithSolverFactory(func(path string) (native.Collaborator, func() error, error) {
			ta.libPath = path
			return ta.mock, func() error { ta.unloaded++; return nil }, nil
		}),
	)
	return ta
}

func (ta *testApp) run(args ...string) error {
	ta.app.SetArgs(args)
	return ta.app.Execute()
}

// writeBlobs writes n labelled rows split into two well separated groups.
func writeBlobs(t *testing.T, name string, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		label, base := -1, -5.0
		if i%2 == 1 {
			label, base = 1, 5.0
		}
		fmt.Fprintf(&b, "%g,%g,%d\n", base+float64(i)*0.01, base-float64(i)*0.02, label)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestPredictCommand(t *testing.T) {
	train := writeBlobs(t, "train.csv", 20)
	ta := newTestApp(t, nil)

	require.NoError(t, ta.run("predict", "--train", train, "--library", "/opt/libsolver.so"))

	lines := strings.Split(strings.TrimSpace(ta.stdout.String()), "\n")
	require.Len(t, lines, 20)
	for i, l := range lines {
		want := "-1"
		if i%2 == 1 {
			want = "1"
		}
		assert.Equal(t, want, l, "row %d", i)
	}
	assert.Contains(t, ta.stderr.String(), "accuracy: 1.0000 (20 samples)")
	assert.Equal(t, "/opt/libsolver.so", ta.libPath)
	assert.Equal(t, 1, ta.unloaded)
	assert.Equal(t, 0, ta.mock.Live(), "classifier must be closed before unloading")
}

func TestPredictCommand_ScoresAndFlags(t *testing.T) {
	train := writeBlobs(t, "train.csv", 10)
	test := writeBlobs(t, "test.csv", 4)
	ta := newTestApp(t, nil)

	require.NoError(t, ta.run("predict",
		"--train", train, "--test", test, "--scores",
		"--precision", "float32", "--kernel", "Laplace",
		"--approximation", "HSS", "--distributed",
		"--arg=--hss_rel_tol", "--arg=1e-2"))

	lines := strings.Split(strings.TrimSpace(ta.stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "-1,"))

	assert.Contains(t, ta.mock.Calls(), "STRUMPACK_kernel_fit_HSS_MPI_float")
	assert.Equal(t, []string{"--hss_rel_tol", "1e-2"}, ta.mock.LastFit().Args)
}

func TestPredictCommand_HODLRRequiresDistributed(t *testing.T) {
	train := writeBlobs(t, "train.csv", 10)
	ta := newTestApp(t, nil)

	err := ta.run("predict", "--train", train, "--approximation", "HODLR")
	assert.ErrorIs(t, err, kernel.ErrConfiguration)
	assert.Empty(t, ta.mock.Calls())
}

func TestPredictCommand_ConfigFile(t *testing.T) {
	train := writeBlobs(t, "train.csv", 10)
	cfg := config.Default()
	cfg.Library = "/from/config.so"
	cfg.Classifier.Kernel = "poly"
	t.Setenv(native.EnvLibraryPath, "")

	ta := newTestApp(t, cfg)
	err := ta.run("predict", "--train", train)
	assert.ErrorIs(t, err, kernel.ErrUnknownKernel)
	assert.Equal(t, "/from/config.so", ta.libPath)
	assert.Equal(t, 1, ta.unloaded)
}

func TestPredictCommand_MissingTrain(t *testing.T) {
	ta := newTestApp(t, nil)
	assert.Error(t, ta.run("predict"))
}

func TestROCCommand(t *testing.T) {
	train := writeBlobs(t, "train.csv", 20)
	plot := filepath.Join(t.TempDir(), "roc.png")
	ta := newTestApp(t, nil)

	require.NoError(t, ta.run("roc", "--train", train, "--plot", plot))
	assert.Equal(t, "auc: 1.000000\n", ta.stdout.String())

	info, err := os.Stat(plot)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestROCCommand_Unlabeled(t *testing.T) {
	train := writeBlobs(t, "train.csv", 4)
	ta := newTestApp(t, nil)
	assert.Error(t, ta.run("roc", "--train", train, "--test-unlabeled"))
	assert.Empty(t, ta.mock.Calls())
}

func TestVersionCommand(t *testing.T) {
	ta := newTestApp(t, nil)
	require.NoError(t, ta.run("version"))
	assert.Contains(t, ta.stdout.String(), "hkernel "+Version)
}
