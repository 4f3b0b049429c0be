package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const runLockPollInterval = 50 * time.Millisecond

// RunLock is an exclusive lease serializing plan, generate and audit runs
// against one repository.
type RunLock struct {
	flock *flock.Flock
	path  string
}

func NewRunLock(path string) *RunLock {
	return &RunLock{flock: flock.New(path), path: path}
}

// Acquire polls for the lease until timeout elapses. A zero timeout tries
// exactly once. It fails with ErrRunInProgress when another holder keeps it.
func (l *RunLock) Acquire(ctx context.Context, timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.flock.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", l.path, err)
		}
		if locked {
			return nil
		}
		if timeout <= 0 || !time.Now().Before(deadline) {
			return fmt.Errorf("%s: %w", l.path, ErrRunInProgress)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(runLockPollInterval):
		}
	}
}

func (l *RunLock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
