package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/architect/internal/config"
	"github.com/morozRed/architect/internal/output"
	"github.com/spf13/cobra"
)

// legacyFlags maps the single-dash long forms accepted by earlier releases
// to their current spelling.
var legacyFlags = map[string]string{
	"-rc": "--reference-count",
	"-wd": "--working-directory",
}

// NormalizeLegacyArgs rewrites legacy single-dash long flags so cobra can
// parse them. Arguments after "--" are left alone.
func NormalizeLegacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if replacement, ok := legacyFlags[name]; ok {
			if hasValue {
				replacement += "=" + value
			}
			arg = replacement
		}
		out = append(out, arg)
	}
	return out
}

func registerSharedFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.IntP("min", "m", 0, "Minimum cluster cardinality")
	flags.BoolP("pretty", "p", false, "Pretty print with indentations and line returns")
	flags.Bool("reference-count", false, "Display reference count on edges")
	flags.StringP("input", "i", "", "Input format: cpp|json")
	flags.StringP("output", "o", "", "Output format: console|dot|json")
	flags.String("output-file", "", "Write output to a file instead of stdout (.gz and .zst are compressed)")
	flags.Bool("working-directory", false, "Restrict symbol definitions to the working directory and below")
	flags.Bool("reduce", false, "Remove dependencies implied by other dependencies")
	flags.String("config", "", "Configuration file (default: .architect.* in the working directory)")
	flags.CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.BoolP("quiet", "q", false, "Suppress logs and progress")
	flags.String("log-format", "", "Log format: text|json")
	flags.Int("workers", 0, "Concurrent source parsers (default: one per CPU)")
	flags.Duration("timeout", 0, "Abort cycle enumeration after this long (0 disables)")
}

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

// applyFlagOverrides copies every flag the user set explicitly over the
// loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	read := func(name string, apply func() error) {
		if err != nil || flags.Lookup(name) == nil || !flags.Changed(name) {
			return
		}
		if applyErr := apply(); applyErr != nil {
			err = fmt.Errorf("failed to read --%s flag: %w", name, applyErr)
		}
	}

	read("min", func() (e error) { cfg.Min, e = flags.GetInt("min"); return })
	read("pretty", func() (e error) { cfg.Pretty, e = flags.GetBool("pretty"); return })
	read("reference-count", func() (e error) { cfg.ReferenceCount, e = flags.GetBool("reference-count"); return })
	read("input", func() (e error) { cfg.Input, e = flags.GetString("input"); return })
	read("output", func() (e error) { cfg.Output, e = flags.GetString("output"); return })
	read("working-directory", func() (e error) { cfg.WorkingDirectory, e = flags.GetBool("working-directory"); return })
	read("reduce", func() (e error) { cfg.Reduce, e = flags.GetBool("reduce"); return })
	read("log-format", func() (e error) { cfg.Logging.Format, e = flags.GetString("log-format"); return })
	read("workers", func() (e error) { cfg.Parser.Workers, e = flags.GetInt("workers"); return })
	read("timeout", func() (e error) { cfg.Timeout, e = flags.GetDuration("timeout"); return })
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func parseFormats(cfg *config.Config) (input, out output.Format, err error) {
	input, err = output.ParseFormat(cfg.Input)
	if err != nil {
		return "", "", err
	}
	out, err = output.ParseFormat(cfg.Output)
	if err != nil {
		return "", "", err
	}
	return input.InputOrDefault(), out.OutputOrDefault(), nil
}
