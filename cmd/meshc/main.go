// Command meshc is the mesh compiler driver: the single-file lexer/parser,
// type-checker, and backend-IR emitter wired together behind a small
// cobra CLI (spec.md §2 lists the driver CLI as an "external collaborator"
// interface, not part of the specified core, but the ambient stack still
// needs one concrete entry point to exercise the pipeline end to end).
// Grounded on the teacher's cmd/ailang (a flag.FlagSet-driven
// run/repl/check/watch dispatcher) for the overall shape, rewritten onto
// cobra since spec's explicit non-goals rule out exactly the interactive
// surface (REPL/hot reload/LSP) the teacher's dispatcher centers on,
// leaving check and a one-shot backend-IR dump as the two real
// subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "meshc",
		Short:         "mesh compiler driver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())
	root.AddCommand(newEmitIRCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
