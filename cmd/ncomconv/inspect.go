package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ncomconv/internal/batch"
	"ncomconv/internal/ncom"
	"ncomconv/internal/transcode"
)

type fileSummary struct {
	Path          string
	Records       int
	Valid         int
	Invalid       int
	FirstInvalid  int // -1 when every record validated
	TrailingBytes int
	SyncCounts    map[byte]int
}

func (s fileSummary) stats() transcode.Stats {
	return transcode.Stats{Total: s.Records, Converted: s.Valid, Failed: s.Invalid, TrailingBytes: s.TrailingBytes}
}

func newInspectCommand() *cobra.Command {
	threshold := batch.DefaultThreshold

	cmd := &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Validate NCOM files without converting them",
		Long: `inspect reads each file, checks the checksum chain of every record, and
prints the counts and the severity a conversion run would report.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold <= 0 || threshold > 1 {
				return usageError("threshold must be in (0,1]", nil)
			}
			for i, path := range args {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := printFileSummary(cmd.OutOrStdout(), path, threshold); err != nil {
					return failure("inspect "+path, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", threshold, "minimum valid/total ratio for INFO severity")
	return cmd
}

func summarizeNCOM(path string, r io.Reader) (fileSummary, error) {
	s := fileSummary{Path: path, FirstInvalid: -1, SyncCounts: map[byte]int{}}
	rr := ncom.NewReader(r)
	for {
		rec, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, err
		}
		s.SyncCounts[rec.Sync()]++
		if rec.Valid() {
			s.Valid++
		} else {
			if s.FirstInvalid < 0 {
				s.FirstInvalid = s.Records
			}
			s.Invalid++
		}
		s.Records++
	}
	s.TrailingBytes = len(rr.Trailing())
	return s, nil
}

func printFileSummary(w io.Writer, path string, threshold float64) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := summarizeNCOM(path, f)
	if err != nil {
		return err
	}

	st := s.stats()
	fmt.Fprintf(w, "path: %s\n", s.Path)
	fmt.Fprintf(w, "records: %d\n", s.Records)
	fmt.Fprintf(w, "valid: %d\n", s.Valid)
	fmt.Fprintf(w, "invalid: %d\n", s.Invalid)
	if s.FirstInvalid >= 0 {
		fmt.Fprintf(w, "first_invalid: %d\n", s.FirstInvalid)
	} else {
		fmt.Fprintf(w, "first_invalid: none\n")
	}
	fmt.Fprintf(w, "trailing_bytes: %d\n", s.TrailingBytes)
	fmt.Fprintf(w, "valid_ratio: %.3f\n", st.Ratio())
	fmt.Fprintf(w, "severity: %s\n", batch.Classify(st, threshold))

	fmt.Fprintf(w, "sync_counts:\n")
	for b := 0; b < 256; b++ {
		if n := s.SyncCounts[byte(b)]; n > 0 {
			fmt.Fprintf(w, "  0x%02X: %d\n", b, n)
		}
	}
	return nil
}
