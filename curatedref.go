package main

import (
	"context"
	"log/slog"
	"net/mail"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/CenterForMedicalGeneticsGhent/curatedref/build"
	"github.com/CenterForMedicalGeneticsGhent/curatedref/check"
	"github.com/CenterForMedicalGeneticsGhent/curatedref/docs"
)

func main() {
	Cmd := &cli.Command{
		Name:    "curatedref",
		Version: "1.0.0",
		Authors: []any{
			&mail.Address{
				Name:    "CMGG ICT Team",
				Address: "ict.cmgg@uzgent.be",
			},
		},
		Copyright: "Copyright (c) " + time.Now().Format("2006") + " Center for Medical Genetics Ghent, Ghent University Hospital",
		Usage:     "build and validate curated copy-number reference profiles",
		UsageText: "curatedref [global options] command [command options] [arguments...]",
		Commands: []*cli.Command{
			&build.BuildCmd,
			&check.ValidateCmd,
			&docs.DocsCmd,
		},
		EnableShellCompletion: true,
		HideHelp:              false,
		HideVersion:           false,
		ShellComplete: func(ctx context.Context, cmd *cli.Command) {
			cli.DefaultAppComplete(ctx, cmd)
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cli.ShowAppHelp(cmd)
			return nil
		},
	}

	if err := Cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
