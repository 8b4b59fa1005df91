package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/htmlgrader/internal/checks"
	"github.com/nao1215/htmlgrader/internal/source"
)

// NewRootCmd creates the root command. Running it without a subcommand
// grades a document.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "htmlgrader",
		Short: "Check an HTML document against a list of CSS selectors",
		Long: `htmlgrader checks whether an HTML document contains the elements and
attributes described by a list of CSS selectors, and prints a JSON object
mapping every selector to true (at least one node matches) or false.

The checks file is a JSON array of selectors:

  ["h1", "p", "a[href]"]

The document is read from --file or fetched from --url. When both are given
--file wins. When neither is given nothing is checked.

Examples:
  # Grade a local file
  htmlgrader -c checks.json -f index.html

  # Grade a web page
  htmlgrader -c checks.json --url https://example.com/

  # Grade an onion service through an existing Tor proxy
  htmlgrader --url http://<address>.onion/ --tor-proxy 127.0.0.1:9050

  # Markdown report saved to a file, and recorded in the history database
  htmlgrader -f index.html -m -o report.md --save`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE:       validateInputFiles,
		RunE:          runCheckCmd,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	addCheckFlags(cmd)

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command with the process arguments and exits.
func Execute() {
	os.Exit(execute(normalizeArgs(os.Args[1:]), os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
//
// A missing input file is reported on stdout with exit 1. A failed fetch
// is reported on stderr but still exits 0; no report is written for it.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		var missing *checks.MissingFileError
		if errors.As(err, &missing) {
			fmt.Fprintln(stdout, missing.Error())
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if source.IsFetchError(err) {
			return 0
		}
		return 1
	}
	return 0
}
