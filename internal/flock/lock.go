package flock

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/workon/internal/errors"
)

// Lock is a held advisory lock on a file.
type Lock struct {
	file *os.File
}

// Acquire creates path if needed and locks it without blocking.
// A lock held elsewhere yields errors.ErrWorkDirLocked.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrapf(err, "create lock directory for %s", path)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // path is built from the work dir
	if err != nil {
		return nil, errors.Wrapf(err, "open lock file %s", path)
	}

	if err := Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(errors.ErrWorkDirLocked, "%s", path)
	}

	return &Lock{file: f}, nil
}

// Path returns the locked file path.
func (l *Lock) Path() string {
	return l.file.Name()
}

// Release unlocks and closes the lock file. The file itself is left in place;
// removing it would race with a process about to lock it.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := Unlock(l.file.Fd())
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
