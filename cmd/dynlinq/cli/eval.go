package cli

import (
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/parser"
)

// NewEvalCmd creates the "eval" subcommand.
func NewEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Parse and evaluate an expression against a sample record",
		Long: "Parses <expr> with \"it\" bound to a demo Record (Name, Age, Active, " +
			"Score, Tags), evaluates it, and prints the result.",
		Args: cobra.ExactArgs(1),
		RunE: runEval,
	}

	cmd.Flags().String("data", "", "YAML file to load the record from (default: a built-in sample)")

	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	expr := args[0]
	dataPath, _ := cmd.Flags().GetString("data")

	record, err := loadRecord(dataPath)
	if err != nil {
		return exitError(exitUsage, "loading record: %v", err)
	}

	lambda, err := parser.New().ParseLambdaIt(recordType, nil, expr)
	if err != nil {
		return exitError(exitParseError, "parsing %q: %v", expr, err)
	}

	result, err := ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{reflect.ValueOf(record)})
	if err != nil {
		return exitError(exitEvalError, "evaluating %q: %v", expr, err)
	}

	if result.IsValid() {
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", result.Interface())
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "<nil>")
	}
	return nil
}
