package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/parser"
)

// NewDumpCmd creates the "dump" subcommand.
func NewDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <expr>",
		Short: "Parse an expression and print its IR as YAML",
		Long:  "Parses <expr> with \"it\" bound to the demo Record type and prints the resulting expression tree, without evaluating it.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDump,
	}

	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	expr := args[0]

	lambda, err := parser.New().ParseLambdaIt(recordType, nil, expr)
	if err != nil {
		return exitError(exitParseError, "parsing %q: %v", expr, err)
	}

	out, err := ir.DumpYAML(lambda.Node.Body)
	if err != nil {
		return exitError(exitEvalError, "dumping %q: %v", expr, err)
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
