package contract

import (
	"fmt"
	"os"
	"sync"
)

// workDirMu serializes every section that runs with a switched working directory.
var workDirMu sync.Mutex

// WithWorkDir runs fn with the process working directory set to dir.
// The previous directory is restored on every exit path, including panics.
func WithWorkDir(dir string, fn func() error) (err error) {
	workDirMu.Lock()
	defer workDirMu.Unlock()

	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("enter %s: %w", dir, err)
	}
	defer func() {
		if restoreErr := os.Chdir(prev); restoreErr != nil && err == nil {
			err = fmt.Errorf("restore working directory %s: %w", prev, restoreErr)
		}
	}()

	return fn()
}
