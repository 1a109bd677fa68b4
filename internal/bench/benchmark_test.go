package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/morozRed/architect/internal/graph"
	"github.com/morozRed/architect/internal/languages"
	"github.com/morozRed/architect/internal/parser"
	"github.com/morozRed/architect/internal/registry"
)

func BenchmarkParse_MediumRepo(b *testing.B) {
	root := b.TempDir()
	createSyntheticCppRepo(b, root, 250)

	frontend := languages.NewDefaultFrontend()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := registry.New()
		if _, err := frontend.ParseDirectory(context.Background(), r, root, parser.Options{}); err != nil {
			b.Fatalf("parse failed: %v", err)
		}
		if r.Len() == 0 {
			b.Fatalf("expected symbols")
		}
	}
}

func BenchmarkScc_MediumRepo(b *testing.B) {
	r := parseSyntheticRepo(b, 250)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if clusters := graph.ComputeScc(r, graph.Options{MinCardinality: 1}); len(clusters) != 1 {
			b.Fatalf("expected one component, got %d", len(clusters))
		}
	}
}

func BenchmarkCycles_MediumRepo(b *testing.B) {
	r := parseSyntheticRepo(b, 250)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if cycles := graph.ComputeCycles(r, graph.Options{}); len(cycles) != 1 {
			b.Fatalf("expected one cycle, got %d", len(cycles))
		}
	}
}

func BenchmarkReduce_MediumRepo(b *testing.B) {
	root := b.TempDir()
	createSyntheticCppRepo(b, root, 100)
	frontend := languages.NewDefaultFrontend()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		r := registry.New()
		if _, err := frontend.ParseDirectory(context.Background(), r, root, parser.Options{}); err != nil {
			b.Fatalf("parse failed: %v", err)
		}
		b.StartTimer()
		graph.RemoveRedundantDependencies(r)
	}
}

func parseSyntheticRepo(tb testing.TB, files int) *registry.Registry {
	tb.Helper()
	root := tb.TempDir()
	createSyntheticCppRepo(tb, root, files)

	r := registry.New()
	if _, err := languages.NewDefaultFrontend().ParseDirectory(context.Background(), r, root, parser.Options{}); err != nil {
		tb.Fatalf("parse failed: %v", err)
	}
	return r
}

// createSyntheticCppRepo writes one record per file, each pointing at the
// record of the next file so the records form a single ring, plus a helper
// function using its own record and the next one.
func createSyntheticCppRepo(tb testing.TB, root string, files int) {
	tb.Helper()

	for i := 0; i < files; i++ {
		dir := filepath.Join(root, fmt.Sprintf("mod%d", i%10))
		if err := os.MkdirAll(dir, 0755); err != nil {
			tb.Fatalf("mkdir failed: %v", err)
		}

		next := (i + 1) % files
		filePath := filepath.Join(root, fmt.Sprintf("mod%d", i%10), fmt.Sprintf("file_%03d.cpp", i))
		src := fmt.Sprintf(`namespace bench {

struct Node%[1]d {
	Node%[2]d *next;
};

int helper%[1]d(const Node%[1]d &node, Node%[2]d *after) {
	return 0;
}

}
`, i, next)

		if err := os.WriteFile(filePath, []byte(src), 0644); err != nil {
			tb.Fatalf("write failed: %v", err)
		}
	}
}
