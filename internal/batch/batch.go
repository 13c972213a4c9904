// Package batch transcodes a set of NCOM files and reports each one at a
// severity derived from its checksum success ratio.
//
// Severity is advisory: every output file is written in full regardless of
// how many of its records failed validation. An I/O failure ends that file
// only; the batch moves on to the next one.
package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ncomconv/internal/discover"
	"ncomconv/internal/ledger"
	"ncomconv/internal/metrics"
	"ncomconv/internal/transcode"
)

// DefaultThreshold is the converted/total ratio below which a file is
// reported at error level.
const DefaultThreshold = 0.8

// Classify returns slog.LevelError for an empty file or one whose
// converted/total ratio is below threshold, and slog.LevelInfo otherwise.
func Classify(st transcode.Stats, threshold float64) slog.Level {
	if st.Total == 0 || st.Ratio() < threshold {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Ledger stores per-file outcomes between runs.
type Ledger interface {
	Lookup(rel string) (ledger.Entry, bool, error)
	Put(rel string, e ledger.Entry) error
	Delete(rel string) error
}

type Driver struct {
	Transcoder *transcode.Transcoder
	Logger     *slog.Logger
	Threshold  float64
	// Workers is the number of files transcoded at once. Records within a
	// file are always processed in order.
	Workers int
	// Direction names the coordinate transform. Ledger entries only match
	// runs with the same direction.
	Direction string

	Metrics       *metrics.Metrics
	Ledger        Ledger
	SkipUnchanged bool

	RunID string
	Now   func() time.Time
}

type FileResult struct {
	Job     discover.Job
	Stats   transcode.Stats
	Level   slog.Level
	Err     error
	Skipped bool
	Took    time.Duration
}

type Summary struct {
	RunID  string
	Files  []FileResult
	Totals transcode.Stats
}

// Failed counts files that ended with an error.
func (s Summary) Failed() int {
	n := 0
	for _, f := range s.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// LowRatio counts files that completed but were reported at error level.
func (s Summary) LowRatio() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil && !f.Skipped && f.Level >= slog.LevelError {
			n++
		}
	}
	return n
}

func (s Summary) Skipped() int {
	n := 0
	for _, f := range s.Files {
		if f.Skipped {
			n++
		}
	}
	return n
}

// Run transcodes jobs and returns their results in job order.
func (d *Driver) Run(ctx context.Context, jobs []discover.Job) Summary {
	log := d.logger().With("run", d.RunID)
	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	log.Info("batch started", "files", len(jobs), "workers", workers)

	results := make([]FileResult, len(jobs))
	if workers <= 1 {
		for i, job := range jobs {
			results[i] = d.runOne(ctx, log, i, len(jobs), job)
		}
	} else {
		idx := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range idx {
					results[i] = d.runOne(ctx, log, i, len(jobs), jobs[i])
				}
			}()
		}
		for i := range jobs {
			idx <- i
		}
		close(idx)
		wg.Wait()
	}

	sum := Summary{RunID: d.RunID, Files: results}
	for _, r := range results {
		sum.Totals = sum.Totals.Add(r.Stats)
	}
	d.Metrics.Finish(d.now())

	log.Info("batch finished",
		"files", len(jobs),
		"total", sum.Totals.Total,
		"converted", sum.Totals.Converted,
		"failed", sum.Totals.Failed,
		"low_ratio_files", sum.LowRatio(),
		"io_failures", sum.Failed(),
		"skipped", sum.Skipped(),
	)
	return sum
}

func (d *Driver) runOne(ctx context.Context, log *slog.Logger, i, n int, job discover.Job) FileResult {
	res := FileResult{Job: job, Level: slog.LevelInfo}
	flog := log.With("index", i+1, "count", n, "file", job.Input)

	if err := ctx.Err(); err != nil {
		res.Err = err
		res.Level = slog.LevelWarn
		flog.Warn("transcode not started", "error", err)
		return res
	}

	info, statErr := os.Stat(job.Input)
	if d.shouldSkip(flog, job, info, statErr) {
		res.Skipped = true
		d.Metrics.FileSkipped()
		flog.Info("transcode skipped, input unchanged")
		return res
	}

	flog.Info("transcode started", "out", job.Output)
	start := d.now()
	st, err := d.Transcoder.TranscodeFile(ctx, job.Input, job.Output)
	res.Stats = st
	res.Took = d.now().Sub(start)
	if err != nil {
		res.Err = err
		res.Level = slog.LevelError
		d.Metrics.FileIOError()
		flog.Error("transcode aborted", "error", err, "total", st.Total)
		d.forget(flog, job)
		return res
	}

	res.Level = Classify(st, d.threshold())
	outcome := metrics.OutcomeInfo
	if res.Level >= slog.LevelError {
		outcome = metrics.OutcomeError
	}
	d.Metrics.ObserveFile(outcome, st.Converted, st.Failed, st.TrailingBytes, res.Took)

	attrs := []any{
		"total", st.Total,
		"converted", st.Converted,
		"failed", st.Failed,
		"ratio", st.Ratio(),
	}
	if st.TrailingBytes > 0 {
		attrs = append(attrs, "trailing_bytes", st.TrailingBytes)
	}
	flog.Log(ctx, res.Level, "transcode finished", attrs...)

	d.remember(flog, job, info, statErr, st)
	return res
}

func (d *Driver) shouldSkip(log *slog.Logger, job discover.Job, info os.FileInfo, statErr error) bool {
	if !d.SkipUnchanged || d.Ledger == nil || statErr != nil {
		return false
	}
	e, ok, err := d.Ledger.Lookup(job.Rel)
	if err != nil {
		log.Warn("ledger lookup failed", "error", err)
		return false
	}
	if !ok || !e.Matches(info, d.Direction, absPath(job.Output)) {
		return false
	}
	if _, err := os.Stat(job.Output); err != nil {
		return false
	}
	return true
}

func (d *Driver) remember(log *slog.Logger, job discover.Job, info os.FileInfo, statErr error, st transcode.Stats) {
	if d.Ledger == nil || statErr != nil {
		return
	}
	err := d.Ledger.Put(job.Rel, ledger.Entry{
		RunID:      d.RunID,
		Direction:  d.Direction,
		Output:     absPath(job.Output),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		Total:      st.Total,
		Converted:  st.Converted,
		Failed:     st.Failed,
		Trailing:   st.TrailingBytes,
		FinishedAt: d.now(),
	})
	if err != nil {
		log.Warn("ledger update failed", "error", err)
	}
}

// forget drops the entry for a file whose output is no longer trustworthy.
func (d *Driver) forget(log *slog.Logger, job discover.Job) {
	if d.Ledger == nil {
		return
	}
	if err := d.Ledger.Delete(job.Rel); err != nil {
		log.Warn("ledger delete failed", "error", err)
	}
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Driver) threshold() float64 {
	if d.Threshold == 0 {
		return DefaultThreshold
	}
	return d.Threshold
}

func (d *Driver) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
