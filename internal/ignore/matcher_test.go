package ignore

import "testing"

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"generated/**",
		"!generated/keep/api.h",
		"*.tmp",
		"# comment",
		"",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: "node_modules/pkg/index.h", isDir: false, ignored: true},
		{path: "third_party/zlib/zlib.h", isDir: false, ignored: true},
		{path: "proto/msg.pb.h", isDir: false, ignored: true},
		{path: "generated/lib/a.cpp", isDir: false, ignored: true},
		{path: "generated/keep/api.h", isDir: false, ignored: false},
		{path: "nested/cache.tmp", isDir: false, ignored: true},
		{path: "src/main.cpp", isDir: false, ignored: false},
		{path: "generated", isDir: true, ignored: false},
	}

	for _, tc := range cases {
		got := m.ShouldIgnore(tc.path, tc.isDir)
		if got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"!build/include/",
	})

	if !m.ShouldIgnore("build/out/file.cpp", false) {
		t.Fatalf("expected build/out/file.cpp to be ignored")
	}
	if m.ShouldIgnore("build/include/file.h", false) {
		t.Fatalf("expected build/include/file.h to be included")
	}
}

func TestMatcher_DirectoriesArePrunedWithoutNegations(t *testing.T) {
	m := NewMatcher([]string{"legacy/"})

	for path, ignored := range map[string]bool{
		".git":         true,
		"build":        true,
		"legacy":       true,
		"src/legacy":   true,
		"src":          false,
		".":            false,
		"src/builders": false,
	} {
		if got := m.ShouldIgnore(path, true); got != ignored {
			t.Fatalf("dir %s: expected ignored=%v, got %v", path, ignored, got)
		}
	}
}
