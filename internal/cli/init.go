package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/morozRed/architect/internal/config"
	"github.com/morozRed/architect/internal/fileutil"
	"github.com/spf13/cobra"
)

const defaultIgnoreRules = `# Paths skipped while walking source directories (gitignore syntax).
# Built-in rules already exclude .git/, build/, vendor/, third_party/ and others.
`

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}

	format, err := OptionalStringFlag(cmd, "format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format == "" || format == "yml" {
		format = "yaml"
	}

	out := cmd.OutOrStdout()
	candidates := make([]string, 0, 4)
	for _, ext := range []string{"yaml", "yml", "toml", "json"} {
		candidates = append(candidates, filepath.Join(rootPath, config.FileName+"."+ext))
	}
	if existing, ok := fileutil.FirstExisting(candidates...); ok {
		fmt.Fprintf(out, "Configuration already exists at %s\n", existing)
	} else {
		data, err := config.DefaultConfig().Marshal(format)
		if err != nil {
			return err
		}
		path := filepath.Join(rootPath, config.FileName+"."+format)
		if _, err := fileutil.WriteIfMissing(path, []byte(fileutil.EnsureTrailingNewline(string(data))), 0644); err != nil {
			return fmt.Errorf("failed to write configuration: %w", err)
		}
		fmt.Fprintf(out, "Wrote configuration to %s\n", path)
	}

	ignorePath := filepath.Join(rootPath, IgnoreFile)
	written, err := fileutil.WriteIfMissing(ignorePath, []byte(defaultIgnoreRules), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", IgnoreFile, err)
	}
	if written {
		fmt.Fprintf(out, "Wrote ignore rules to %s\n", ignorePath)
	}
	return nil
}
