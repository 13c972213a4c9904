// Package discover finds NCOM files under an input root and maps each one to
// its place under an output root.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ncomconv/internal/fileio"
)

// DefaultExtension is the extension NCOM loggers write.
const DefaultExtension = ".NCOM"

// Job is one input file and the output path it transcodes to.
type Job struct {
	Input  string
	Output string
	// Rel is Input relative to the input root, with forward slashes.
	Rel string
}

// ListFiles returns the regular files under root whose extension matches ext
// case-insensitively, in lexical order. skip, if non-empty, names a
// directory that is not descended into.
func ListFiles(root, ext, skip string) ([]string, error) {
	ext = normalizeExt(ext)
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skip != "" && path != root && fileio.SameFile(path, skip) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Plan lists the NCOM files under inRoot and pairs each with the mirrored
// path under outRoot. If inRoot is a single file, its output is placed
// directly under outRoot. Plan fails with fileio.ErrSameFile when outRoot
// is the input directory or any output would replace an input.
func Plan(inRoot, outRoot, ext string) ([]Job, error) {
	info, err := os.Stat(inRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		base := filepath.Base(inRoot)
		job := Job{Input: inRoot, Output: filepath.Join(outRoot, base), Rel: base}
		if fileio.SameFile(job.Input, job.Output) {
			return nil, fmt.Errorf("%w: %s", fileio.ErrSameFile, job.Output)
		}
		return []Job{job}, nil
	}
	if fileio.SameFile(inRoot, outRoot) {
		return nil, fmt.Errorf("%w: output directory %s is the input directory", fileio.ErrSameFile, outRoot)
	}

	files, err := ListFiles(inRoot, ext, outRoot)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(inRoot, f)
		if err != nil {
			return nil, fmt.Errorf("relative path of %s: %w", f, err)
		}
		job := Job{
			Input:  f,
			Output: filepath.Join(outRoot, rel),
			Rel:    filepath.ToSlash(rel),
		}
		if fileio.SameFile(job.Input, job.Output) {
			return nil, fmt.Errorf("%w: %s", fileio.ErrSameFile, job.Output)
		}
		jobs = append(jobs, job)
	}

	// An input root nested in the output root can map one input onto
	// another.
	inputs := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		inputs[absPath(j.Input)] = true
	}
	for _, j := range jobs {
		if inputs[absPath(j.Output)] {
			return nil, fmt.Errorf("%w: %s is also an input", fileio.ErrSameFile, j.Output)
		}
	}
	return jobs, nil
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}

func normalizeExt(ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
