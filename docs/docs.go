// Package docs implements the docs command, generating markdown
// documentation for the curatedref command tree.
package docs

import (
	"context"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"
)

var outfile string

var DocsCmd = cli.Command{
	Name:    "docs",
	Aliases: []string{"d"},
	Usage:   "Generate CLI documentation",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output markdown file",
			Value:       "cli.md",
			Destination: &outfile,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		md, err := docs.ToMarkdown(cmd.Root())
		if err != nil {
			return cli.Exit("Error: Unable to generate documentation: "+err.Error(), 1)
		}
		fi, err := os.Create(outfile)
		if err != nil {
			return cli.Exit("Error: Unable to create "+outfile, 1)
		}
		defer fi.Close()
		if _, err := fi.WriteString(md); err != nil {
			return cli.Exit("Error: Unable to write "+outfile, 1)
		}
		return nil
	},
}
