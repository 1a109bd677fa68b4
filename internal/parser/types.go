package parser

import (
	"context"
	"log/slog"

	"github.com/morozRed/architect/internal/logging"
	"github.com/morozRed/architect/internal/registry"
)

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "cpp")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse builds the syntax tree of one file. It must be safe to call
	// from several goroutines at once.
	Parse(ctx context.Context, path string, content []byte) (SourceUnit, error)
}

// SourceUnit is one parsed file waiting to be folded into a registry.
// Declare runs for every unit before Link runs for any, so references can
// point at symbols declared later or in other files.
type SourceUnit interface {
	Path() string
	HasSyntaxErrors() bool

	// Declare creates the namespaces and symbols the file declares.
	Declare(s *Session)

	// Link records the references the file makes.
	Link(s *Session)

	// Close releases the syntax tree.
	Close()
}

// Session is the state shared by every unit folded into one registry.
type Session struct {
	Registry *registry.Registry
	Logger   *slog.Logger

	linked map[registry.SymbolID]bool
}

func NewSession(r *registry.Registry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Session{
		Registry: r,
		Logger:   logger,
		linked:   make(map[registry.SymbolID]bool),
	}
}

// MarkLinked reports whether the body of symbol id is being linked for the
// first time in this session.
func (s *Session) MarkLinked(id registry.SymbolID) bool {
	if s.linked[id] {
		return false
	}
	s.linked[id] = true
	return true
}

// ParseIssue captures non-fatal parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// Result lists what one ParsePaths call folded into the registry.
type Result struct {
	Files  []string
	Issues []ParseIssue
}

// Options control file discovery and parsing.
type Options struct {
	// Workers bounds concurrent file parsing; zero or less means one per CPU.
	Workers int

	// Ignore holds gitignore-style rules applied to directory walks.
	Ignore []string

	// Filter, when set, must return true for a file to be parsed.
	Filter func(path string) bool

	// MaxFileSize skips larger files when positive.
	MaxFileSize int64

	// Progress is called after each parsed file, never concurrently.
	Progress func(path string, done, total int)

	Logger *slog.Logger
}
