package parser

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/morozRed/architect/internal/errors"
	"github.com/morozRed/architect/internal/registry"
)

type mockParser struct {
	lang   string
	exts   []string
	closed *atomic.Int32
}

func (m mockParser) Language() string {
	return m.lang
}

func (m mockParser) Extensions() []string {
	return m.exts
}

func (m mockParser) Parse(ctx context.Context, path string, content []byte) (SourceUnit, error) {
	text := strings.TrimSpace(string(content))
	if text == "fail" {
		return nil, stderrors.New("boom")
	}
	return &mockUnit{path: path, names: strings.Fields(text), closed: m.closed}, nil
}

// mockUnit declares one global per word; each symbol references the next one.
type mockUnit struct {
	path   string
	names  []string
	closed *atomic.Int32
}

func (u *mockUnit) Path() string          { return u.path }
func (u *mockUnit) HasSyntaxErrors() bool { return len(u.names) == 0 }

func (u *mockUnit) Declare(s *Session) {
	for _, name := range u.names {
		id := registry.SymbolIdentifier{Name: name, Type: "int"}
		if _, ok := s.Registry.Lookup(registry.RootNamespace, id); ok {
			continue
		}
		sym := s.Registry.CreateSymbol(registry.SymbolGlobal, true)
		sym.Identifier = id
		_ = s.Registry.AttachSymbol(sym.ID, registry.RootNamespace)
	}
}

func (u *mockUnit) Link(s *Session) {
	for i := 0; i+1 < len(u.names); i++ {
		from, _ := s.Registry.LookupName(registry.RootNamespace, u.names[i])
		to, _ := s.Registry.LookupName(registry.RootNamespace, u.names[i+1])
		_, _ = s.Registry.AddReference(from.ID, to.ID, registry.Reference{
			Location: registry.Location{Filename: u.path, Line: uint32(i + 1), Column: 1},
			Type:     registry.ReferenceAssociation,
		})
	}
}

func (u *mockUnit) Close() {
	if u.closed != nil {
		u.closed.Add(1)
	}
}

func newMockFrontend(closed *atomic.Int32) *Frontend {
	f := NewFrontend()
	f.Register(mockParser{lang: "mock", exts: []string{".mock", ".mk"}, closed: closed})
	return f
}

func TestFrontendParserForFile(t *testing.T) {
	f := newMockFrontend(nil)

	p, ok := f.ParserForFile("demo.MOCK")
	if !ok {
		t.Fatalf("expected parser for .MOCK extension")
	}
	if p.Language() != "mock" {
		t.Fatalf("expected language mock, got %s", p.Language())
	}
	if _, ok := f.ParserForFile("demo.txt"); ok {
		t.Fatalf("expected no parser for .txt")
	}

	f.Restrict([]string{"mock"})
	if got := f.SupportedExtensions(); len(got) != 1 || got[0] != ".mock" {
		t.Fatalf("expected only .mock after Restrict, got %v", got)
	}
}

func TestParseDirectoryRespectsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	var closed atomic.Int32
	f := newMockFrontend(&closed)

	mustWriteFile(t, filepath.Join(root, "keep.mock"), "alpha beta")
	mustWriteFile(t, filepath.Join(root, "skip", "ignored.mock"), "x")
	mustWriteFile(t, filepath.Join(root, "skip", "include.mock"), "beta gamma")
	mustWriteFile(t, filepath.Join(root, ".git", "hidden.mock"), "z")
	mustWriteFile(t, filepath.Join(root, "notes.txt"), "not parsed")

	r := registry.New()
	result, err := f.ParseDirectory(context.Background(), r, root, Options{
		Workers: 2,
		Ignore:  []string{"skip/*", "!skip/include.mock"},
	})
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}

	want := []string{filepath.Join(root, "keep.mock"), filepath.Join(root, "skip", "include.mock")}
	if len(result.Files) != len(want) {
		t.Fatalf("expected %d parsed files, got %v", len(want), result.Files)
	}
	for i := range want {
		if result.Files[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, result.Files)
		}
	}

	names := make([]string, 0, r.Len())
	for _, sym := range r.Symbols() {
		names = append(names, sym.Identifier.Name)
	}
	if strings.Join(names, ",") != "alpha,beta,gamma" {
		t.Fatalf("expected symbols declared in path order, got %v", names)
	}
	if targets := r.Symbol(1).Targets(); len(targets) != 1 || targets[0] != 2 {
		t.Fatalf("expected beta -> gamma across files, got %v", targets)
	}
	if closed.Load() != 2 {
		t.Fatalf("expected both units closed, got %d", closed.Load())
	}
}

func TestParsePathsReportsProgressAndIssues(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.mock"), "one two")
	mustWriteFile(t, filepath.Join(root, "empty.mock"), "")
	mustWriteFile(t, filepath.Join(root, "big.mk"), strings.Repeat("word ", 100))

	var calls int
	result, err := newMockFrontend(nil).ParsePaths(context.Background(), registry.New(), []string{root}, Options{
		MaxFileSize: 64,
		Progress: func(path string, done, total int) {
			calls++
			if total != 3 {
				t.Errorf("expected total 3, got %d", total)
			}
		},
	})
	if err != nil {
		t.Fatalf("ParsePaths failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected progress for 2 parsed files, got %d", calls)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected size and syntax issues, got %+v", result.Issues)
	}
	if !strings.Contains(result.Issues[0].Message, "exceeds limit") || result.Issues[0].Severity != "warning" {
		t.Fatalf("unexpected first issue: %+v", result.Issues[0])
	}
	if !strings.Contains(result.Issues[1].Message, "syntax errors") {
		t.Fatalf("unexpected second issue: %+v", result.Issues[1])
	}
}

func TestParsePathsFilter(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "in", "a.mock"), "a")
	mustWriteFile(t, filepath.Join(root, "out", "b.mock"), "b")

	r := registry.New()
	_, err := newMockFrontend(nil).ParsePaths(context.Background(), r, []string{root}, Options{
		Filter: func(path string) bool {
			return strings.Contains(filepath.ToSlash(path), "/in/")
		},
	})
	if err != nil {
		t.Fatalf("ParsePaths failed: %v", err)
	}
	if r.Len() != 1 || r.Symbol(0).Identifier.Name != "a" {
		t.Fatalf("expected only the filtered file to be parsed")
	}
}

func TestParsePathsErrors(t *testing.T) {
	root := t.TempDir()
	f := newMockFrontend(nil)

	_, err := f.ParsePaths(context.Background(), registry.New(), []string{filepath.Join(root, "missing.mock")}, Options{})
	if !stderrors.Is(err, errors.ErrInputUnreadable) {
		t.Fatalf("expected InputUnreadable, got %v", err)
	}

	mustWriteFile(t, filepath.Join(root, "notes.txt"), "x")
	_, err = f.ParsePaths(context.Background(), registry.New(), []string{filepath.Join(root, "notes.txt")}, Options{})
	if !stderrors.Is(err, errors.ErrUnsupportedFormat) {
		t.Fatalf("expected UnsupportedFormat, got %v", err)
	}

	mustWriteFile(t, filepath.Join(root, "bad.mock"), "fail")
	_, err = f.ParsePaths(context.Background(), registry.New(), []string{filepath.Join(root, "bad.mock")}, Options{})
	if !stderrors.Is(err, errors.ErrParseFailure) {
		t.Fatalf("expected ParseFailure, got %v", err)
	}
}

func TestSessionMarkLinked(t *testing.T) {
	s := NewSession(registry.New(), nil)
	if !s.MarkLinked(3) {
		t.Fatalf("first MarkLinked must return true")
	}
	if s.MarkLinked(3) {
		t.Fatalf("second MarkLinked must return false")
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
