package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Type-check a mesh source file and print structured diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

func runCheck(path string) error {
	cf, err := parseAndCheck(path)
	if err != nil {
		return err
	}

	printReports(cf.warnings)
	printReports(cf.errs)

	if len(cf.errs) > 0 {
		fmt.Fprintf(os.Stderr, "%s: %d error(s)\n", path, len(cf.errs))
		os.Exit(1)
	}
	return nil
}
