// Package fileio opens NCOM inputs and outputs and guards output trees
// against concurrent runs.
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LockName is the lock file created in a locked directory.
const LockName = ".ncomconv.lock"

// ErrLocked is returned by LockDir when another process holds the lock.
var ErrLocked = errors.New("fileio: directory is locked by another run")

// ErrSameFile is returned when an output path names its own input.
var ErrSameFile = errors.New("fileio: output would overwrite input")

// SameFile reports whether a and b name the same file or directory, either
// by absolute path or, when both exist, by device and inode.
func SameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 == nil && err2 == nil && aa == bb {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// OpenSequential opens path for reading and hints the kernel that it will
// be read front to back. The hint is best-effort.
func OpenSequential(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	_ = adviseSequential(f)
	return f, nil
}

// CreateOutput creates (or truncates) path, creating parent directories as
// needed.
func CreateOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return os.Create(path)
}

// Lock is an advisory lock on a directory.
type Lock struct {
	f *os.File
}

// LockDir takes an exclusive, non-blocking lock on dir. The lock is held
// until Release.
func LockDir(dir string) (*Lock, error) {
	f, err := os.OpenFile(filepath.Join(dir, LockName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	name := l.f.Name()
	_ = unlockFile(l.f)
	err := l.f.Close()
	l.f = nil
	if rmErr := os.Remove(name); rmErr != nil && err == nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = rmErr
	}
	return err
}
