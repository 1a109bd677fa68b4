package main

import (
	"fmt"
	"io"
	"os"

	"github.com/morozRed/architect/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := cli.NewRootCommand(version)
	rootCmd.SetArgs(cli.NormalizeLegacyArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "architect: %v\n", err)
		return 1
	}
	return 0
}
