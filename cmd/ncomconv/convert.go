package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"ncomconv/internal/batch"
	"ncomconv/internal/config"
	"ncomconv/internal/discover"
	"ncomconv/internal/fileio"
	"ncomconv/internal/gcj02"
	"ncomconv/internal/ledger"
	"ncomconv/internal/logging"
	"ncomconv/internal/metrics"
	"ncomconv/internal/transcode"
)

func runConvert(cmd *cobra.Command, opts *rootOptions) (err error) {
	if opts.InPath == "" || opts.OutPath == "" {
		return usageError("both --input_file_path and --out_file_path are required", nil)
	}
	for _, p := range []string{opts.InPath, opts.OutPath} {
		if _, err := os.Stat(p); err != nil {
			return usageError("input or output path is not usable", err)
		}
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return usageError("invalid config", err)
	}

	jobs, err := discover.Plan(opts.InPath, opts.OutPath, cfg.Extension)
	if errors.Is(err, fileio.ErrSameFile) {
		return usageError("output path overlaps input", err)
	}
	if err != nil {
		return failure("listing input files", err)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	sink, err := logging.New(logging.Options{Dir: cfg.Log.Dir, Level: level, Console: cmd.ErrOrStderr()})
	if err != nil {
		return failure("logging setup failed", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = failure("closing log file", cerr)
		}
	}()
	log := sink.Logger

	lock, err := fileio.LockDir(opts.OutPath)
	if err != nil {
		return failure("output directory busy", err)
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			log.Warn("releasing output lock failed", "error", rerr)
		}
	}()

	d := &batch.Driver{
		Transcoder: transcode.New(transformFor(cfg.Direction)),
		Logger:     log,
		Threshold:  cfg.Threshold,
		Workers:    cfg.Workers,
		Direction:  cfg.Direction,
		RunID:      ksuid.New().String(),
	}
	if cfg.Metrics.Textfile != "" {
		d.Metrics = metrics.New()
	}
	if cfg.Ledger.Path != "" {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return failure("ledger unavailable", err)
		}
		defer func() {
			if cerr := l.Close(); cerr != nil {
				log.Warn("closing ledger failed", "error", cerr)
			}
		}()
		d.Ledger = l
		d.SkipUnchanged = cfg.Ledger.SkipUnchanged
	}

	log.Debug("input planned",
		"input", opts.InPath,
		"output", opts.OutPath,
		"ext", cfg.Extension,
		"direction", cfg.Direction,
		"threshold", cfg.Threshold,
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sum := d.Run(ctx, jobs)

	var metricsErr error
	if cfg.Metrics.Textfile != "" {
		if metricsErr = d.Metrics.WriteTextfile(cfg.Metrics.Textfile); metricsErr != nil {
			log.Error("writing metrics failed", "path", cfg.Metrics.Textfile, "error", metricsErr)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d files, %d records, %d converted, %d failed checksum, %d low ratio, %d skipped, %d errors\n",
		sum.RunID, len(sum.Files), sum.Totals.Total, sum.Totals.Converted, sum.Totals.Failed,
		sum.LowRatio(), sum.Skipped(), sum.Failed())

	if errors.Is(ctx.Err(), context.Canceled) {
		return failure("interrupted", ctx.Err())
	}
	if n := sum.Failed(); n > 0 {
		return failure(fmt.Sprintf("%d of %d files could not be converted", n, len(sum.Files)), nil)
	}
	if metricsErr != nil {
		return failure("writing metrics textfile", metricsErr)
	}
	return nil
}

// loadConfig reads --config (if any) and applies explicitly set flags over
// it.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return config.Config{}, err
		}
	}

	f := cmd.Flags()
	if f.Changed("threshold") {
		cfg.Threshold = opts.Threshold
	}
	if f.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if f.Changed("direction") {
		cfg.Direction = opts.Direction
	}
	if f.Changed("ext") {
		cfg.Extension = opts.Extension
	}
	if f.Changed("log-dir") {
		cfg.Log.Dir = opts.LogDir
	}
	if f.Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.MetricsFile
	}
	if f.Changed("ledger") {
		cfg.Ledger.Path = opts.LedgerPath
	}
	if f.Changed("skip-unchanged") {
		cfg.Ledger.SkipUnchanged = opts.SkipUnchanged
	}

	if err := cfg.Normalize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func transformFor(direction string) transcode.Transform {
	if direction == config.DirectionToWGS84 {
		return gcj02.ToWGS84
	}
	return gcj02.FromWGS84
}
