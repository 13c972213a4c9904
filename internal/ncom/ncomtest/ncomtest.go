// Package ncomtest builds NCOM records and files for tests.
package ncomtest

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"ncomconv/internal/ncom"
)

// Record returns a record with pseudo-random opaque bytes derived from seed,
// the given coordinates (radians) and a valid checksum chain.
func Record(seed int64, latRad, lonRad float64) ncom.Record {
	rng := rand.New(rand.NewSource(seed))
	var r ncom.Record
	_, _ = rng.Read(r[:])
	r[0] = 0xE7
	return r.WithCoordinates(latRad, lonRad).WithChecksums()
}

// Corrupt returns a copy of r whose checksum chain no longer validates.
func Corrupt(r ncom.Record) ncom.Record {
	r[5] ^= 0x5A
	return r
}

// Concat returns the raw bytes of recs followed by tail.
func Concat(tail []byte, recs ...ncom.Record) []byte {
	out := make([]byte, 0, len(recs)*ncom.RecordSize+len(tail))
	for _, r := range recs {
		out = append(out, r[:]...)
	}
	return append(out, tail...)
}

// WriteFile writes recs (and tail) to path, creating parent directories.
func WriteFile(t *testing.T, path string, tail []byte, recs ...ncom.Record) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(path, Concat(tail, recs...), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}
