package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	InPath     string
	OutPath    string
	ConfigPath string
	Verbose    bool

	Threshold     float64
	Workers       int
	Direction     string
	Extension     string
	LogDir        string
	MetricsFile   string
	LedgerPath    string
	SkipUnchanged bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ncomconv -i <input dir> -o <output dir>",
		Short: "Convert NCOM coordinates between WGS84 and GCJ02",
		Long: `ncomconv finds every NCOM file under the input directory, rewrites the
position of each record whose checksums validate, and writes the result to
the same relative path under the output directory. Records that fail
validation are copied unchanged.

Each file is logged at INFO when at least the threshold share of its records
converted, and at ERROR otherwise.

Example:
  ncomconv -i ./raw -o ./gcj02
  ncomconv -i ./raw -o ./gcj02 --config ncomconv.yaml --workers 4`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("invalid flags", err)
	})

	f := cmd.Flags()
	f.StringVarP(&opts.InPath, "input_file_path", "i", "", "directory (or single file) of NCOM files to convert (required)")
	f.StringVarP(&opts.OutPath, "out_file_path", "o", "", "directory converted files are written to (required)")
	f.StringVar(&opts.ConfigPath, "config", "", "path to YAML config")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	f.Float64Var(&opts.Threshold, "threshold", 0, "minimum converted/total ratio for a file to be reported at INFO (default 0.8)")
	f.IntVar(&opts.Workers, "workers", 0, "number of files converted at once (default 1)")
	f.StringVar(&opts.Direction, "direction", "", "wgs84-to-gcj02 (default) or gcj02-to-wgs84")
	f.StringVar(&opts.Extension, "ext", "", "file extension to convert, case-insensitive (default .NCOM)")
	f.StringVar(&opts.LogDir, "log-dir", "", "directory for per-run log files")
	f.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	f.StringVar(&opts.LedgerPath, "ledger", "", "directory of the result ledger database")
	f.BoolVar(&opts.SkipUnchanged, "skip-unchanged", false, "skip inputs the ledger has already converted")

	cmd.AddCommand(newInspectCommand())
	return cmd
}
