// Package cli implements the hkernel command tree using Cobra.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/hkernel/internal/config"
	"github.com/born-ml/hkernel/internal/native"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// SolverFactory opens the native solver at path and returns it with a
// function that unloads it.
type SolverFactory func(path string) (native.Collaborator, func() error, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig ConfigLoader
	openSolver SolverFactory
	stdout     io.Writer
	stderr     io.Writer
	cfgFile    string
	library    string
	verbose    bool
	cfg        *config.Config
	logger     *slog.Logger
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithSolverFactory injects the native solver factory.
func WithSolverFactory(factory SolverFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.openSolver = factory
		}
	}
}

// WithIO injects process output streams.
func WithIO(stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// defaultSolverFactory loads the process-wide shared library.
func defaultSolverFactory(path string) (native.Collaborator, func() error, error) {
	lib, err := native.Init(path)
	if err != nil {
		return nil, nil, err
	}
	return lib, native.Shutdown, nil
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig: config.LoadConfig,
		openSolver: defaultSolverFactory,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hkernel",
		Short: "hkernel - hierarchical-matrix kernel classifier",
		Long: `hkernel fits a binary kernel ridge classifier with a native HSS/HODLR
solver and scores new data with it.

Distributed runs must be launched with the same flags on every process.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.hkernel/config.yaml)")
	root.PersistentFlags().StringVar(&a.library, "library", "", "native solver shared library (overrides $"+native.EnvLibraryPath+" and config)")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newPredictCommand())
	root.AddCommand(a.newROCCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// SetArgs overrides the command line, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) initConfig() error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
