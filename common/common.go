package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrNilPointer is returned when a method receives or is called on a nil
// pointer
var ErrNilPointer = errors.New("nil pointer")

// AppendError appends an error to a list of existing errors, either can be
// nil
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	if original == nil {
		return incoming
	}
	return fmt.Errorf("%w, %w", original, incoming)
}

// GetDefaultDataDir returns the default data directory for the given OS
func GetDefaultDataDir(env string) string {
	if env == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "AlgoTrader")
	}
	usr, err := os.UserHomeDir()
	if err != nil {
		dir, err := os.Getwd()
		if err != nil {
			return "."
		}
		return filepath.Join(dir, ".algotrader")
	}
	return filepath.Join(usr, ".algotrader")
}

// DefaultDataDir is GetDefaultDataDir for the running OS
func DefaultDataDir() string {
	return GetDefaultDataDir(runtime.GOOS)
}

// CreateDir creates a directory and any missing parents
func CreateDir(dir string) error {
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(dir, 0o770)
}
