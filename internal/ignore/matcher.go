package ignore

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultRules are applied before user rules, which may negate them.
var DefaultRules = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"vendor/",
	"third_party/",
	"build/",
	"cmake-build-*/",
	"out/",
	"*.pb.h",
	"*.pb.cc",
}

// Matcher applies gitignore rules with "last rule wins" behavior.
type Matcher struct {
	gi        *gitignore.GitIgnore
	negations bool
}

// NewMatcher builds a matcher from user-provided .architectignore lines.
func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(DefaultRules)+len(userRules))
	all = append(all, DefaultRules...)
	negations := false
	for _, line := range userRules {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		all = append(all, line)
		if strings.HasPrefix(line, "!") {
			negations = true
		}
	}
	return &Matcher{gi: gitignore.CompileIgnoreLines(all...), negations: negations}
}

// ShouldIgnore returns true when relPath should be excluded. Directories are
// matched with a trailing slash so directory-only rules apply to them, and
// are never reported while a negation rule could re-include a file below.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(filepath.Clean(relPath))
	if relPath == "." || relPath == "" {
		return false
	}
	relPath = strings.TrimPrefix(relPath, "./")
	if isDir {
		if m.negations {
			return false
		}
		relPath += "/"
	}
	return m.gi.MatchesPath(relPath)
}
