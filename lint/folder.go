package lint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are file extensions checked by ValidateFolder by default.
var DefaultExtensions = []string{".cs"}

// Options control ValidateFolder.
type Options struct {
	Syntax Syntax
	// Extensions of files to check, DefaultExtensions if empty.
	Extensions []string
	// NoRecurse limits the check to files of the folder itself.
	NoRecurse bool
	// Ignore returns true for files and folders that should be skipped.
	Ignore func(path string) bool
	// Workers is the number of files checked in parallel, GOMAXPROCS if zero.
	Workers int
	Logger  *zap.Logger
}

/*
ValidateFolder checks source files in a folder and its subfolders.

Findings are grouped by file, files are ordered the way filepath.WalkDir
visits them. A path that does not exist or is not a folder is an error
wrapping ErrFolderNotFound.
*/
func ValidateFolder(ctx context.Context, path string, opts *Options) (bool, []FileFinding, error) {
	if opts == nil {
		opts = &Options{}
	}
	syntax := opts.Syntax.withDefaults()
	if err := syntax.validate(); err != nil {
		return false, nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return false, nil, err
	}
	if err != nil || !info.IsDir() {
		return false, nil, fmt.Errorf("%w: %s", ErrFolderNotFound, path)
	}

	files, err := collectFiles(path, opts)
	if err != nil {
		return false, nil, err
	}
	log.Debug("Checking files", zap.String("path", path), zap.Int("files", len(files)))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([][]Finding, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			findings, err := validateFile(file, syntax)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			log.Debug("File checked", zap.String("file", file), zap.Int("findings", len(findings)))
			results[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, nil, err
	}

	var all []FileFinding
	for i, findings := range results {
		for _, f := range findings {
			all = append(all, FileFinding{Path: files[i], Finding: f})
		}
	}
	return len(all) == 0, all, nil
}

func collectFiles(root string, opts *Options) ([]string, error) {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		ignored := opts.Ignore != nil && opts.Ignore(path)
		if d.IsDir() {
			if opts.NoRecurse || ignored {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored || !d.Type().IsRegular() {
			return nil
		}
		if slices.Contains(extensions, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func validateFile(path string, syntax Syntax) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	_, findings, err := syntax.ValidateReader(f)
	return findings, err
}
