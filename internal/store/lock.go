package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".rustbot.lock"

var ErrLocked = errors.New("data directory is used by another process")

// DirLock gives one process exclusive ownership of the data directory.
type DirLock struct {
	lock *flock.Flock
}

func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock data directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &DirLock{lock: lock}, nil
}

func (l *DirLock) Unlock() error {
	return l.lock.Unlock()
}
