package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/morozRed/architect/internal/graph"
)

// RunSummary describes one analysis run; it is logged, never printed to
// stdout, so it cannot corrupt rendered output.
type RunSummary struct {
	Mode     string
	Input    string
	Output   string
	Files    []string
	Stats    graph.Stats
	Removed  int
	Clusters int
	Duration time.Duration
}

func LogRunSummary(logger *slog.Logger, summary RunSummary) {
	attrs := []any{
		"input", summary.Input,
		"output", summary.Output,
		"files", len(summary.Files),
		"symbols", summary.Stats.Symbols,
		"defined", summary.Stats.Defined,
		"edges", summary.Stats.Edges,
		"references", summary.Stats.References,
		"duration_ms", summary.Duration.Milliseconds(),
	}
	if summary.Removed > 0 {
		attrs = append(attrs, "reduced", summary.Removed)
	}
	if summary.Mode != "dependencies" {
		attrs = append(attrs, "clusters", summary.Clusters)
	}
	logger.Info(summary.Mode+" complete", attrs...)

	if len(summary.Files) > 0 {
		logger.Debug("analysed files", "paths", SummarizePaths(summary.Files, 8))
	}
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
