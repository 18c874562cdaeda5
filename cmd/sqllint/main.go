// Command sqllint checks that SQL templates in source files bind every
// interpolated value as a query parameter.
//
// Usage:
//
//	sqllint [flags] [path]
//
// The exit code is 0 if no findings were reported, 1 if there are
// findings and 2 if the check could not be completed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/leporo/sqlbind/internal/config"
	"github.com/leporo/sqlbind/lint"
)

const (
	exitOK       = 0
	exitFindings = 1
	exitError    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sqllint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "Configuration file (default "+config.DefaultFile+" if present)")
		ext        = fs.String("ext", "", "Comma separated file extensions to check")
		ignore     = fs.String("ignore", "", "Comma separated glob patterns of files and folders to skip")
		noRecurse  = fs.Bool("no-recurse", false, "Do not check subfolders")
		sticky     = fs.Bool("sticky", false, "Keep SQL context open till the end of file")
		opener     = fs.String("opener", "", "Token sequence that starts a SQL template")
		binders    = fs.String("binders", "", "Initials of binding functions")
		format     = fs.String("format", "", "Report format: text, json or yaml")
		workers    = fs.Int("workers", 0, "Number of files checked in parallel")
		watchMode  = fs.Bool("watch", false, "Check files again when they change")
		verbose    = fs.Bool("v", false, "Verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	// Flags set explicitly override configuration
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ext":
			cfg.Extensions = splitList(*ext)
		case "ignore":
			cfg.Ignore = splitList(*ignore)
		case "no-recurse":
			cfg.NoRecurse = *noRecurse
		case "sticky":
			cfg.Sticky = *sticky
		case "opener":
			cfg.Opener = *opener
		case "binders":
			cfg.Binders = *binders
		case "format":
			cfg.Format = *format
		case "workers":
			cfg.Workers = *workers
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer func() { _ = log.Sync() }()

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	opts := options(cfg, root, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watchMode {
		if err := watch(ctx, root, opts, cfg, stdout); err != nil {
			log.Error("Watch failed", zap.Error(err))
			return exitError
		}
		return exitOK
	}

	report, err := check(ctx, root, opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	if err := writeReport(stdout, cfg.Format, report); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	if report.Count > 0 {
		return exitFindings
	}
	return exitOK
}

func check(ctx context.Context, root string, opts *lint.Options) (Report, error) {
	_, findings, err := lint.ValidateFolder(ctx, root, opts)
	if err != nil {
		return Report{}, err
	}
	if findings == nil {
		findings = []lint.FileFinding{}
	}
	return Report{Root: root, Findings: findings, Count: len(findings)}, nil
}

func options(cfg *config.Config, root string, log *zap.Logger) *lint.Options {
	return &lint.Options{
		Syntax:     cfg.Syntax(),
		Extensions: cfg.Extensions,
		NoRecurse:  cfg.NoRecurse,
		Ignore:     ignoreFunc(root, cfg.Ignore),
		Workers:    cfg.Workers,
		Logger:     log,
	}
}

// ignoreFunc matches glob patterns against the base name and
// the path relative to root.
func ignoreFunc(root string, patterns []string) func(path string) bool {
	if len(patterns) == 0 {
		return nil
	}
	return func(path string) bool {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		base := filepath.Base(path)
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, base); ok {
				return true
			}
			if ok, _ := filepath.Match(pattern, filepath.ToSlash(rel)); ok {
				return true
			}
		}
		return false
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return logConfig.Build()
}

func splitList(s string) []string {
	var res []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}
