package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/morozRed/architect/internal/errors"
	"github.com/morozRed/architect/internal/ignore"
	"github.com/morozRed/architect/internal/logging"
	"github.com/morozRed/architect/internal/registry"
	"golang.org/x/sync/errgroup"
)

// Frontend holds all registered language parsers
type Frontend struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
}

// NewFrontend creates an empty frontend
func NewFrontend() *Frontend {
	return &Frontend{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the frontend
func (f *Frontend) Register(p LanguageParser) {
	lang := p.Language()
	f.parsers[lang] = p
	for _, ext := range p.Extensions() {
		f.extToLang[strings.ToLower(ext)] = lang
	}
}

// ParserForFile returns the appropriate parser for a file
func (f *Frontend) ParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := f.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := f.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions, sorted
func (f *Frontend) SupportedExtensions() []string {
	exts := make([]string, 0, len(f.extToLang))
	for ext := range f.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Restrict keeps only the given extensions.
func (f *Frontend) Restrict(extensions []string) {
	if len(extensions) == 0 {
		return
	}
	keep := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		keep[ext] = true
	}
	for ext := range f.extToLang {
		if !keep[ext] {
			delete(f.extToLang, ext)
		}
	}
}

type sourceFile struct {
	path     string
	explicit bool
}

// ParsePaths parses every supported file named by paths (directories are
// walked) and folds them into r. Files are parsed concurrently; the registry
// is populated serially in path order so ids are deterministic.
func (f *Frontend) ParsePaths(ctx context.Context, r *registry.Registry, paths []string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	files, issues, err := f.collect(paths, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("collected source files", "count", len(files))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	units := make([]SourceUnit, len(files))
	fileIssues := make([][]ParseIssue, len(files))
	var progressMu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parser, _ := f.ParserForFile(file.path)
			content, err := os.ReadFile(file.path)
			if err != nil {
				if file.explicit {
					return errors.Wrap(errors.InputUnreadable, err, "cannot read source").WithPath(file.path)
				}
				fileIssues[i] = append(fileIssues[i], ParseIssue{
					File:     file.path,
					Language: parser.Language(),
					Severity: "error",
					Message:  err.Error(),
				})
				return nil
			}
			if opts.MaxFileSize > 0 && int64(len(content)) > opts.MaxFileSize {
				fileIssues[i] = append(fileIssues[i], ParseIssue{
					File:     file.path,
					Language: parser.Language(),
					Severity: "warning",
					Message:  fmt.Sprintf("skipped: %d bytes exceeds limit of %d", len(content), opts.MaxFileSize),
				})
				return nil
			}

			unit, err := parser.Parse(gctx, filepath.ToSlash(file.path), content)
			if err != nil {
				return errors.Wrap(errors.ParseFailure, err, "cannot parse source").WithPath(file.path)
			}
			units[i] = unit

			if opts.Progress != nil {
				progressMu.Lock()
				done++
				opts.Progress(file.path, done, len(files))
				progressMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		closeUnits(units)
		return nil, err
	}
	defer closeUnits(units)

	result := &Result{Files: make([]string, 0, len(files))}
	session := NewSession(r, logger)
	for i, unit := range units {
		issues = append(issues, fileIssues[i]...)
		if unit == nil {
			continue
		}
		if unit.HasSyntaxErrors() {
			parser, _ := f.ParserForFile(files[i].path)
			issues = append(issues, ParseIssue{
				File:     files[i].path,
				Language: parser.Language(),
				Severity: "warning",
				Message:  "syntax errors found; declarations around them may be missing",
			})
		}
		unit.Declare(session)
		result.Files = append(result.Files, files[i].path)
	}
	for _, unit := range units {
		if unit != nil {
			unit.Link(session)
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File == issues[j].File {
			return issues[i].Message < issues[j].Message
		}
		return issues[i].File < issues[j].File
	})
	result.Issues = issues
	return result, nil
}

// ParseDirectory parses every supported file below root.
func (f *Frontend) ParseDirectory(ctx context.Context, r *registry.Registry, root string, opts Options) (*Result, error) {
	return f.ParsePaths(ctx, r, []string{root}, opts)
}

func closeUnits(units []SourceUnit) {
	for _, unit := range units {
		if unit != nil {
			unit.Close()
		}
	}
}

// collect expands paths into a sorted, duplicate-free list of files.
func (f *Frontend) collect(paths []string, opts Options) ([]sourceFile, []ParseIssue, error) {
	matcher := ignore.NewMatcher(opts.Ignore)
	seen := make(map[string]bool)
	files := make([]sourceFile, 0)
	issues := make([]ParseIssue, 0)

	add := func(path string, explicit bool) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		if opts.Filter != nil && !opts.Filter(path) {
			return
		}
		seen[path] = true
		files = append(files, sourceFile{path: path, explicit: explicit})
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, nil, errors.Wrap(errors.InputUnreadable, err, "cannot access input").WithPath(root)
		}
		if !info.IsDir() {
			if _, ok := f.ParserForFile(root); !ok {
				return nil, nil, errors.Newf(errors.UnsupportedFormat, "no source parser for extension %q", filepath.Ext(root)).WithPath(root)
			}
			add(root, true)
			continue
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			relPath := path
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				relPath = rel
			}
			if err != nil {
				issues = append(issues, ParseIssue{
					File:     path,
					Severity: "warning",
					Message:  fmt.Sprintf("walk error: %v", err),
				})
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if matcher.ShouldIgnore(relPath, info.IsDir()) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if _, ok := f.ParserForFile(path); ok {
				add(path, false)
			}
			return nil
		})
		if err != nil {
			return nil, nil, errors.Wrap(errors.InputUnreadable, err, "cannot walk input").WithPath(root)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].path < files[j].path
	})
	return files, issues, nil
}
