// Package config handles CLI configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/hkernel/internal/kernel"
	"github.com/born-ml/hkernel/internal/native"
	"github.com/born-ml/hkernel/internal/tensor"
)

// Config represents the CLI configuration file.
//
// Example:
//
//	library: /opt/strumpack/lib/libstrumpack.so
//	precision: float32
//	classifier:
//	  h: 1.5
//	  lambda: 4
//	  kernel: Laplace
//	  approximation: HSS
//	  args: ["--hss_rel_tol", "1e-3"]
type Config struct {
	Library    string        `yaml:"library"`
	Precision  string        `yaml:"precision"`
	Classifier kernel.Config `yaml:"classifier"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Precision:  tensor.Float64.String(),
		Classifier: kernel.DefaultConfig(),
	}
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.hkernel/config.yaml
// - Windows: %USERPROFILE%\.hkernel\config.yaml
func DefaultConfigPath() string {
	var homeDir string

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		return "config.yaml"
	}

	return filepath.Join(homeDir, ".hkernel", "config.yaml")
}

// LoadConfig loads configuration from the specified path on top of the
// defaults. A missing file yields the defaults without error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := cfg.DType(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DType returns the configured matrix precision.
func (c *Config) DType() (tensor.DataType, error) {
	dt, ok := tensor.ParseDataType(c.Precision)
	if !ok || !dt.IsFloat() {
		return 0, fmt.Errorf("precision %q not supported, use float32 or float64", c.Precision)
	}
	return dt, nil
}

// LibraryPath picks the native library location in priority order: the
// explicit value, then $HKERNEL_LIBRARY, then the config file.
func (c *Config) LibraryPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(native.EnvLibraryPath); env != "" {
		return env
	}
	return c.Library
}
