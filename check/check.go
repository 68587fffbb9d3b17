// Package check implements the validate command: run structural and
// logical checks on a produced reference table and render the report.
package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/cnn"
	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/refcheck"
)

var infile string // Reference file to validate

var ValidateCmd cli.Command = cli.Command{
	Name:      "validate",
	Usage:     "Validate a curated reference file",
	UsageText: "curatedref validate <reference.cnn>",
	ArgsUsage: "<reference.cnn>",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:        "reference.cnn",
			UsageText:   "Reference table to validate.",
			Destination: &infile,
		},
	},
	Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if infile == "" {
			cli.ShowSubcommandHelp(cmd)
			return nil, cli.Exit("Error: No input file given", 1)
		}
		if _, err := os.Stat(infile); os.IsNotExist(err) {
			return nil, cli.Exit("Error: Input file does not exist", 1)
		}
		return ctx, nil
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		w := cmd.Writer
		if w == nil {
			w = os.Stdout
		}
		return Run(infile, w)
	},
}

// Run validates the reference file and prints the report. The returned
// error carries a non-zero exit status when any critical check failed.
func Run(path string, w io.Writer) error {
	t, err := cnn.Read(path)
	if err != nil {
		return cli.Exit("Error: Unable to load reference: "+err.Error(), 1)
	}

	report := refcheck.Validate(t)

	fmt.Fprintf(w, "Loaded %d bins from %s\n\n", report.Bins, path)
	for _, c := range report.Checks {
		fmt.Fprintf(w, "[%s] %-28s %s\n", status(c), c.Name, c.Detail)
	}

	// Summary table
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-30s | %s\n", "CHECK NAME", "STATUS")
	fmt.Fprintln(w, strings.Repeat("-", 45))
	for _, c := range report.Checks {
		fmt.Fprintf(w, "%-30s | %s\n", c.Name, status(c))
	}
	fmt.Fprintln(w, strings.Repeat("-", 45))

	fmt.Fprintln(w)
	if report.OK() {
		fmt.Fprintln(w, "Conclusion: file is VALID and ready for downstream analysis.")
		return nil
	}
	fmt.Fprintln(w, "Conclusion: file contains CRITICAL ERRORS. Do not use.")
	return cli.Exit("Error: Reference validation failed", 1)
}

func status(c refcheck.Check) string {
	if c.Passed {
		return "PASS"
	}
	if c.Advisory {
		return "WARN"
	}
	return "FAIL"
}
