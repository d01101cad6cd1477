// Package runlock guards against two lectern runs sharing one data
// directory, which would break the queue's drain-once lifecycle.
package runlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock holds the exclusive run lock for a data directory.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the run lock inside dir, failing fast when another process
// holds it.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, "lectern.lock")
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another lectern run holds %s", path)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil || l.fl == nil {
		return ""
	}
	return l.fl.Path()
}
