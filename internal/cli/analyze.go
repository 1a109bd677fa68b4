package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/morozRed/architect/internal/graph"
	"github.com/morozRed/architect/internal/output"
	"github.com/morozRed/architect/internal/registry"
	"github.com/spf13/cobra"
)

func RunDependencies(cmd *cobra.Command, args []string) error {
	return analyze(cmd, args, "dependencies", nil)
}

func RunCycles(cmd *cobra.Command, args []string) error {
	return analyze(cmd, args, "cycles", func(ctx context.Context, s *settings, r *registry.Registry) ([]graph.Cluster, error) {
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}
		clusters, err := graph.ComputeCyclesContext(ctx, r, graph.Options{MinCardinality: uint32(s.cfg.Min)})
		if err != nil {
			return nil, fmt.Errorf("cycle enumeration stopped: %w", err)
		}
		return clusters, nil
	})
}

func RunScc(cmd *cobra.Command, args []string) error {
	return analyze(cmd, args, "scc", func(_ context.Context, s *settings, r *registry.Registry) ([]graph.Cluster, error) {
		return graph.ComputeScc(r, graph.Options{MinCardinality: uint32(s.cfg.Min)}), nil
	})
}

type clusterFunc func(ctx context.Context, s *settings, r *registry.Registry) ([]graph.Cluster, error)

// analyze loads the registry, optionally reduces it, and renders either the
// symbol listing (compute == nil) or the clusters compute returns.
func analyze(cmd *cobra.Command, args []string, mode string, compute clusterFunc) error {
	start := time.Now()
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	renderer, err := s.renderer()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r, files, err := loadRegistry(ctx, cmd, s, s.paths(args))
	if err != nil {
		return err
	}
	s.logger.Info("registry loaded", "symbols", r.Len(), "duration_ms", time.Since(start).Milliseconds())

	summary := RunSummary{
		Mode:   mode,
		Input:  string(s.input),
		Output: string(s.output),
		Files:  files,
	}
	if s.cfg.Reduce {
		summary.Removed = graph.RemoveRedundantDependencies(r)
		s.logger.Debug("removed redundant dependencies", "count", summary.Removed)
	}

	var clusters []graph.Cluster
	if compute != nil {
		clusters, err = compute(ctx, s, r)
		if err != nil {
			return err
		}
		summary.Clusters = len(clusters)
	}

	if err := render(cmd, s, renderer, r, clusters, compute != nil); err != nil {
		return err
	}

	summary.Stats = graph.ComputeStats(r)
	summary.Duration = time.Since(start)
	LogRunSummary(s.logger, summary)
	return nil
}

func render(cmd *cobra.Command, s *settings, renderer output.Renderer, r *registry.Registry, clusters []graph.Cluster, asClusters bool) (err error) {
	w, err := s.openOutput(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to write output: %w", closeErr)
		}
	}()

	if asClusters {
		err = renderer.Clusters(w, r, clusters)
	} else {
		err = renderer.Symbols(w, r)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
