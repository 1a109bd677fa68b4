package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/morozRed/architect/internal/config"
	"github.com/morozRed/architect/internal/document"
	"github.com/morozRed/architect/internal/errors"
	"github.com/morozRed/architect/internal/fileutil"
	"github.com/morozRed/architect/internal/languages"
	"github.com/morozRed/architect/internal/logging"
	"github.com/morozRed/architect/internal/output"
	"github.com/morozRed/architect/internal/parser"
	"github.com/morozRed/architect/internal/registry"
	"github.com/spf13/cobra"
)

// settings is everything one analysis command needs, resolved from the
// configuration file, the environment and the flags.
type settings struct {
	cfg        *config.Config
	rootPath   string
	input      output.Format
	output     output.Format
	outputFile string
	quiet      bool
	logger     *slog.Logger
}

func resolveSettings(cmd *cobra.Command) (*settings, error) {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return nil, err
	}
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, rootPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	input, out, err := parseFormats(cfg)
	if err != nil {
		return nil, err
	}
	outputFile, err := OptionalStringFlag(cmd, "output-file")
	if err != nil {
		return nil, err
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	level := logging.LevelFromVerbosity(verbosity, quiet, logging.LevelFromString(cfg.Logging.Level))
	logger := logging.WithRunID(logging.NewLogger(cmd.ErrOrStderr(), logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
	}))
	if cfg.File != "" {
		logger.Debug("loaded configuration", "file", cfg.File)
	}

	return &settings{
		cfg:        cfg,
		rootPath:   rootPath,
		input:      input,
		output:     out,
		outputFile: outputFile,
		quiet:      quiet,
		logger:     logger,
	}, nil
}

func (s *settings) paths(args []string) []string {
	if len(args) > 0 {
		return fileutil.DedupeStrings(args)
	}
	return s.cfg.Paths
}

func (s *settings) renderer() (output.Renderer, error) {
	return output.NewRenderer(s.output, output.Options{
		Pretty:         s.cfg.Pretty,
		ReferenceCount: s.cfg.ReferenceCount,
	})
}

// openOutput returns the destination for rendered output. Closing it is a
// no-op for stdout.
func (s *settings) openOutput(cmd *cobra.Command) (io.WriteCloser, error) {
	if s.outputFile == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return document.Create(s.outputFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// loadRegistry builds a registry from paths in the configured input format
// and returns the files it was built from.
func loadRegistry(ctx context.Context, cmd *cobra.Command, s *settings, paths []string) (*registry.Registry, []string, error) {
	r := registry.New()
	switch s.input {
	case output.FormatJSON:
		for _, path := range paths {
			if err := document.Load(r, path); err != nil {
				return nil, nil, err
			}
			s.logger.Debug("loaded document", "path", path, "symbols", r.Len())
		}
		return r, paths, nil
	case output.FormatSource:
		files, err := parseSources(ctx, cmd, s, r, paths)
		if err != nil {
			return nil, nil, err
		}
		return r, files, nil
	default:
		return nil, nil, errors.Newf(errors.UnsupportedFormat, "format %q cannot be used for input", s.input)
	}
}

func parseSources(ctx context.Context, cmd *cobra.Command, s *settings, r *registry.Registry, paths []string) ([]string, error) {
	ignoreRules, err := LoadIgnoreRules(s.rootPath)
	if err != nil {
		return nil, err
	}
	ignoreRules = fileutil.DedupeStrings(append(ignoreRules, s.cfg.Parser.Ignore...))

	frontend := languages.NewDefaultFrontend()
	frontend.Restrict(s.cfg.Parser.Extensions)
	s.logger.Debug("parsing sources", "paths", paths, "extensions", frontend.SupportedExtensions())

	progress := newParseProgressReporter(cmd.ErrOrStderr(), "parse", s.quiet)
	opts := parser.Options{
		Workers:     s.cfg.Parser.Workers,
		Ignore:      ignoreRules,
		MaxFileSize: s.cfg.Parser.MaxFileSize,
		Progress:    progress.Update,
		Logger:      s.logger,
	}
	if s.cfg.WorkingDirectory {
		opts.Filter = withinDirectory(s.rootPath)
	}

	result, err := frontend.ParsePaths(ctx, r, paths, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source files: %w", err)
	}
	progress.Done(len(result.Files))
	ReportParseIssues(s.logger, result.Issues)
	return result.Files, nil
}

func ReportParseIssues(logger *slog.Logger, issues []parser.ParseIssue) {
	for _, issue := range issues {
		attrs := []any{"file", issue.File}
		if issue.Language != "" {
			attrs = append(attrs, "language", issue.Language)
		}
		if issue.Severity == "error" {
			logger.Error(issue.Message, attrs...)
			continue
		}
		logger.Warn(issue.Message, attrs...)
	}
}
