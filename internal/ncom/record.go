package ncom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"ncomconv/internal/bytesum"
)

// RecordSize is the length of one NCOM record in bytes.
const RecordSize = 72

const (
	offSync      = 0
	offChecksum1 = 22
	offLat       = 23
	offLon       = 31
	offCoordEnd  = 39
	offChecksum2 = 61
	offChecksum3 = 71

	checksumStart = 1
)

// ErrRecordSize is returned by Parse for input that is not exactly
// RecordSize bytes.
var ErrRecordSize = errors.New("ncom: record must be 72 bytes")

// Record is one 72-byte NCOM record.
type Record [RecordSize]byte

// Parse copies b into a Record.
func Parse(b []byte) (Record, error) {
	var r Record
	if len(b) != RecordSize {
		return r, fmt.Errorf("%w: got %d", ErrRecordSize, len(b))
	}
	copy(r[:], b)
	return r, nil
}

// Sync returns the sync byte.
func (r Record) Sync() byte { return r[offSync] }

// Checksums returns the three stored checksum bytes in chain order.
func (r Record) Checksums() [3]byte {
	return [3]byte{r[offChecksum1], r[offChecksum2], r[offChecksum3]}
}

// Valid reports whether all three stored checksums match the record
// contents.
func (r Record) Valid() bool {
	return r[offChecksum1] == bytesum.Unsigned(r[checksumStart:offChecksum1]) &&
		r[offChecksum2] == bytesum.Unsigned(r[checksumStart:offChecksum2]) &&
		r[offChecksum3] == bytesum.Unsigned(r[checksumStart:offChecksum3])
}

// Coordinates returns the latitude and longitude in radians.
func (r Record) Coordinates() (latRad, lonRad float64) {
	latRad = math.Float64frombits(binary.LittleEndian.Uint64(r[offLat:offLon]))
	lonRad = math.Float64frombits(binary.LittleEndian.Uint64(r[offLon:offCoordEnd]))
	return latRad, lonRad
}

// WithCoordinates returns a copy of r with latitude and longitude (radians)
// replaced. Checksums are not updated; see WithChecksums.
func (r Record) WithCoordinates(latRad, lonRad float64) Record {
	out := r
	binary.LittleEndian.PutUint64(out[offLat:offLon], math.Float64bits(latRad))
	binary.LittleEndian.PutUint64(out[offLon:offCoordEnd], math.Float64bits(lonRad))
	return out
}

// WithChecksums returns a copy of r with the checksum chain recomputed.
//
// Each checksum is written before the next one is summed, since checksum 2
// covers checksum 1 and checksum 3 covers checksum 2. The result always
// satisfies Valid.
func (r Record) WithChecksums() Record {
	out := r
	out[offChecksum1] = bytesum.Unsigned(out[checksumStart:offChecksum1])
	out[offChecksum2] = bytesum.Unsigned(out[checksumStart:offChecksum2])
	out[offChecksum3] = bytesum.Unsigned(out[checksumStart:offChecksum3])
	return out
}

// String formats the record as hex, one byte separated by spaces.
func (r Record) String() string {
	return fmt.Sprintf("% X", r[:])
}
