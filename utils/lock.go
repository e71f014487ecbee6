package utils

import (
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// DirLock is an advisory, process-level lock backed by a lock file.
type DirLock struct {
	fl *flock.Flock
}

// TryLockFile takes an exclusive advisory lock on path without blocking. It returns an error if
// another process already holds it.
func TryLockFile(path string) (*DirLock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock %s", path)
	}
	if !locked {
		return nil, errors.Errorf("%s is locked by another process", path)
	}
	return &DirLock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	return l.fl.Path()
}

// Unlock releases the lock. The lock file itself is left in place.
func (l *DirLock) Unlock() error {
	return l.fl.Unlock()
}
