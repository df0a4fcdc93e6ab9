// Package cli wires the dynlinq command-line surface: the interactive
// entry point named in spec.md's component table ("parse + evaluate
// against a sample struct"), built the way petal-labs-petalflow's cli
// package builds its own subcommands — one NewXxxCmd() factory per
// subcommand, wired into a shared root by cmd/dynlinq/main.go.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the dynlinq root command with all subcommands
// attached. Exposed as a function (rather than a package-level var)
// so tests can build an isolated command tree per test case.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "dynlinq",
		Short:         "Parse and evaluate Dynamic LINQ-style expressions",
		Long:          "dynlinq — a CLI for parsing and evaluating the dynlinq expression language against a sample record, and for inspecting its parsed IR.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
	}

	root.AddCommand(NewEvalCmd())
	root.AddCommand(NewDumpCmd())

	return root
}
