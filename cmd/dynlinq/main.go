package main

import (
	"errors"
	"os"

	"github.com/exprlang/dynlinq"
	"github.com/exprlang/dynlinq/cmd/dynlinq/cli"
)

func main() {
	root := cli.NewRootCmd(dynlinq.Version())
	if err := root.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
