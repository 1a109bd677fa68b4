package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/morozRed/architect/internal/document"
	"github.com/morozRed/architect/internal/fileutil"
	"github.com/morozRed/architect/internal/output"
	"github.com/morozRed/architect/internal/registry"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

// ErrGoldenMismatch is returned when parsed sources differ from the golden
// document.
var ErrGoldenMismatch = errors.New("registry differs from golden document")

func RunGolden(cmd *cobra.Command, args []string) error {
	goldenPath, sources := args[0], args[1:]
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	s.input = output.FormatSource

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	actual, _, err := loadRegistry(ctx, cmd, s, sources)
	if err != nil {
		return err
	}

	name := filepath.Base(goldenPath)
	out := cmd.OutOrStdout()
	if _, ok := fileutil.FirstExisting(goldenPath); !ok {
		var buf bytes.Buffer
		if err := document.Write(&buf, document.Encode(actual), true); err != nil {
			return err
		}
		if _, err := fileutil.WriteIfMissing(goldenPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write golden document: %w", err)
		}
		fmt.Fprintf(out, "%s: WRITTEN\n", name)
		return nil
	}

	expected := registry.New()
	if err := document.Load(expected, goldenPath); err != nil {
		return err
	}
	if actual.Equal(expected) {
		fmt.Fprintf(out, "%s: SUCCEEDED\n", name)
		return nil
	}

	diff, err := goldenDiff(expected, actual, goldenPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: FAILED\n%s", name, diff)
	return fmt.Errorf("%s: %w", goldenPath, ErrGoldenMismatch)
}

// goldenDiff renders both registries as pretty JSON and diffs them line by
// line.
func goldenDiff(expected, actual *registry.Registry, goldenPath string) (string, error) {
	var want, got bytes.Buffer
	if err := document.Write(&want, document.Encode(expected), true); err != nil {
		return "", err
	}
	if err := document.Write(&got, document.Encode(actual), true); err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want.String()),
		B:        difflib.SplitLines(got.String()),
		FromFile: goldenPath,
		ToFile:   "parsed",
		Context:  3,
	})
}
