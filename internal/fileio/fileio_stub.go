//go:build !linux

package fileio

import "os"

// Read-ahead hints and flock are only wired up on Linux; elsewhere the
// output tree is not locked.

func adviseSequential(f *os.File) error { return nil }

func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
