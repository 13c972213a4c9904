// Package transcode rewrites the coordinates of every valid record in an
// NCOM stream.
//
// Records whose checksum chain does not validate are copied through
// unmodified and counted as failed; they never abort the stream. Read and
// write errors do.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"ncomconv/internal/fileio"
	"ncomconv/internal/ncom"
)

const (
	rad2deg = 180.0 / math.Pi
	deg2rad = math.Pi / 180.0
)

// Transform maps a point between two geodetic frames. Arguments and results
// are degrees, longitude first.
type Transform func(lonDeg, latDeg float64) (float64, float64)

// Identity returns its input unchanged.
func Identity(lonDeg, latDeg float64) (float64, float64) { return lonDeg, latDeg }

// Stats counts the records of one transcoded stream.
type Stats struct {
	Total     int
	Converted int
	Failed    int

	// TrailingBytes is the length of a short final chunk. It is copied to
	// the output but not counted as a record.
	TrailingBytes int
}

// Ratio returns Converted/Total, or 0 for an empty stream.
func (s Stats) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Converted) / float64(s.Total)
}

// Add returns the element-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Total:         s.Total + o.Total,
		Converted:     s.Converted + o.Converted,
		Failed:        s.Failed + o.Failed,
		TrailingBytes: s.TrailingBytes + o.TrailingBytes,
	}
}

type Transcoder struct {
	Transform Transform
}

func New(t Transform) *Transcoder {
	if t == nil {
		t = Identity
	}
	return &Transcoder{Transform: t}
}

// Step transcodes one record. It returns the input unchanged and false when
// the checksum chain does not validate.
func (tc *Transcoder) Step(rec ncom.Record) (ncom.Record, bool) {
	if !rec.Valid() {
		return rec, false
	}
	latRad, lonRad := rec.Coordinates()
	lonDeg, latDeg := tc.Transform(lonRad*rad2deg, latRad*rad2deg)
	return rec.WithCoordinates(latDeg*deg2rad, lonDeg*deg2rad).WithChecksums(), true
}

// Transcode streams records from in to out. The output has exactly as many
// bytes as the input, in the same order.
func (tc *Transcoder) Transcode(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	var st Stats
	r := ncom.NewReader(in)
	w := ncom.NewWriter(out)

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return st, fmt.Errorf("read record %d: %w", st.Total, err)
		}

		st.Total++
		outRec, ok := tc.Step(rec)
		if ok {
			st.Converted++
		} else {
			st.Failed++
		}
		if err := w.Write(outRec); err != nil {
			return st, fmt.Errorf("write record %d: %w", st.Total-1, err)
		}
	}

	if tail := r.Trailing(); len(tail) > 0 {
		st.TrailingBytes = len(tail)
		if err := w.WriteRaw(tail); err != nil {
			return st, fmt.Errorf("write trailing bytes: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return st, fmt.Errorf("flush output: %w", err)
	}
	return st, nil
}

// TranscodeFile transcodes inPath into outPath, creating outPath's parent
// directories. outPath is always created, even if inPath is empty. It
// refuses with fileio.ErrSameFile when outPath is inPath.
func (tc *Transcoder) TranscodeFile(ctx context.Context, inPath, outPath string) (st Stats, err error) {
	if fileio.SameFile(inPath, outPath) {
		return st, fmt.Errorf("%w: %s", fileio.ErrSameFile, outPath)
	}
	in, err := fileio.OpenSequential(inPath)
	if err != nil {
		return st, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := fileio.CreateOutput(outPath)
	if err != nil {
		return st, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	return tc.Transcode(ctx, in, out)
}
