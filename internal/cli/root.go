package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "architect",
		Short: "Map dependencies between C and C++ symbols",
		Long: `Architect builds a typed graph of the namespaces, records, globals and
typedefs declared in C/C++ sources (or in a previously exported JSON
document) and reports their dependencies, cycles and strongly-connected
components.

Output goes to stdout; logs and progress go to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerSharedFlags(rootCmd)

	// Analysis Commands
	dependenciesCmd := &cobra.Command{
		Use:     "dependencies [paths...]",
		Aliases: []string{"deps", "d"},
		Short:   "Show the symbols and the references between them",
		RunE:    RunDependencies,
	}

	cyclesCmd := &cobra.Command{
		Use:     "cycles [paths...]",
		Aliases: []string{"c"},
		Short:   "Show dependency cycles",
		RunE:    RunCycles,
	}

	sccCmd := &cobra.Command{
		Use:   "scc [paths...]",
		Short: "Show strongly-connected components",
		RunE:  RunScc,
	}

	goldenCmd := &cobra.Command{
		Use:   "golden <golden.json> <sources...>",
		Short: "Compare parsed sources with a reference document",
		Long: `Parse the sources and compare the resulting registry with the golden
JSON document. The golden document is written (pretty printed) when it does
not exist yet; a mismatch prints a unified diff and fails.`,
		Args: cobra.MinimumNArgs(2),
		RunE: RunGolden,
	}

	// Setup Commands
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file in the current directory",
		Args:  cobra.NoArgs,
		RunE:  RunInit,
	}
	initCmd.Flags().String("format", "yaml", "Configuration format: yaml|toml")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "architect %s\n", version)
		},
	}

	rootCmd.AddCommand(
		dependenciesCmd,
		cyclesCmd,
		sccCmd,
		goldenCmd,
		initCmd,
		versionCmd,
	)

	return rootCmd
}
