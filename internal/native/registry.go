package native

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// EnvLibraryPath names the environment variable consulted when no explicit
// library path is given.
const EnvLibraryPath = "HKERNEL_LIBRARY"

// The process-wide library. Every cooperating process of a distributed run
// loads its own copy from the same path.
var (
	regMu   sync.Mutex
	current *Library
)

// ResolvePath picks the shared library location: the explicit path if set,
// otherwise $HKERNEL_LIBRARY. There is no built-in default location.
func ResolvePath(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvLibraryPath)
	}
	if path == "" {
		return "", ErrLibraryNotConfigured
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("native: resolve %s: %w", path, err)
	}
	return abs, nil
}

// Init loads the process-wide library. Calling Init again with the same
// path returns the loaded library; a different path is rejected until
// Shutdown.
func Init(path string) (*Library, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	regMu.Lock()
	defer regMu.Unlock()

	if current != nil {
		if current.Path() == resolved {
			return current, nil
		}
		return nil, fmt.Errorf("%w: loaded %s, requested %s", ErrAlreadyInitialized, current.Path(), resolved)
	}

	lib, err := Open(resolved)
	if err != nil {
		return nil, err
	}
	current = lib
	return lib, nil
}

// Default returns the process-wide library, or ErrNotInitialized.
func Default() (*Library, error) {
	regMu.Lock()
	defer regMu.Unlock()

	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

// Shutdown unloads the process-wide library. It fails with ErrHandlesAlive
// while any kernel created through it is still alive. Shutdown without a
// loaded library is a no-op.
func Shutdown() error {
	regMu.Lock()
	defer regMu.Unlock()

	if current == nil {
		return nil
	}
	if err := current.Close(); err != nil {
		return err
	}
	current = nil
	return nil
}
