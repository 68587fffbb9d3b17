// Package build implements the build command: construct a curated
// copy-number reference from per-sample target and antitarget coverage
// tables, restricted by a sample/chromosome inclusion map.
package build

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/cnn"
	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/refbuild"
)

var (
	inputDir      string // Directory containing the coverage files
	outputPath    string // Output path for the curated reference
	inclusionPath string // Path to the inclusion map YAML
	excludeGlob   string // Glob pattern of sample IDs to exclude
	dumpPrefix    string // Prefix for working matrix dumps
)

var BuildCmd cli.Command = cli.Command{
	Name:      "build",
	Usage:     "Build a curated reference from coverage files",
	UsageText: "curatedref build -i <coverage dir> -m <inclusion.yaml> -o <reference.cnn>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Directory containing the per-sample .cnn coverage files",
			Required:    true,
			TakesFile:   true,
			Destination: &inputDir,
			Action: func(ctx context.Context, cmd *cli.Command, v string) error {
				info, err := os.Stat(v)
				if err != nil || !info.IsDir() {
					return cli.Exit("Error: Input directory does not exist", 1)
				}
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output path for the curated reference .cnn",
			Required:    true,
			Destination: &outputPath,
		},
		&cli.StringFlag{
			Name:        "inclusion",
			Aliases:     []string{"m"},
			Usage:       "YAML inclusion map of trusted chromosomes per sample",
			Required:    true,
			TakesFile:   true,
			Destination: &inclusionPath,
			Action: func(ctx context.Context, cmd *cli.Command, v string) error {
				if _, err := os.Stat(v); os.IsNotExist(err) {
					return cli.Exit("Error: Inclusion map file does not exist", 1)
				}
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "exclude-samples",
			Aliases:     []string{"e"},
			Usage:       "Glob pattern of sample IDs to exclude from the build",
			Destination: &excludeGlob,
		},
		&cli.StringFlag{
			Name:        "dump-matrix",
			Usage:       "Write the working matrices to <prefix>.targets.npz and <prefix>.antitargets.npz",
			Destination: &dumpPrefix,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return Run(inputDir, outputPath, inclusionPath, excludeGlob, dumpPrefix)
	},
}

// Run builds the curated reference: discover coverage files for the
// samples named in the inclusion map, reduce targets and antitargets
// separately, merge, sort and write. Any fatal error leaves no output
// file behind.
func Run(input, output, inclusion, exclude, dump string) error {
	incl, err := refbuild.LoadInclusionMap(inclusion)
	if err != nil {
		return cli.Exit("Error: Unable to load inclusion map: "+err.Error(), 1)
	}

	// Only samples defined in the inclusion map are looked up.
	disc, diags, err := refbuild.Discover(input, incl.SampleIDs(), exclude)
	replay(diags)
	if err != nil {
		return cli.Exit("Error: "+err.Error(), 1)
	}
	if len(disc.Resolved) == 0 {
		return cli.Exit("Error: No matching coverage files found. Check the input directory and inclusion map", 1)
	}

	slog.Info("processing targets")
	refTargets, diags, err := refbuild.Build(disc.Resolved, disc.Targets, incl, buildOptions(dump, "targets"))
	replay(diags)
	if err != nil {
		return cli.Exit("Error: Failed during target processing: "+err.Error(), 1)
	}

	slog.Info("processing antitargets")
	refAntitargets, diags, err := refbuild.Build(disc.Resolved, disc.Antitargets, incl, buildOptions(dump, "antitargets"))
	replay(diags)
	if err != nil {
		return cli.Exit("Error: Failed during antitarget processing: "+err.Error(), 1)
	}

	slog.Info("merging and saving")
	merged, err := cnn.Concat(refTargets, refAntitargets)
	if err != nil {
		return cli.Exit("Error: Unable to merge reference tables: "+err.Error(), 1)
	}
	cnn.SortByCoordinate(merged)

	if err := cnn.Write(merged, output); err != nil {
		return cli.Exit("Error: Unable to write reference: "+err.Error(), 1)
	}

	slog.Info("curated reference saved", "path", output)
	return nil
}

func buildOptions(dump, role string) refbuild.Options {
	if dump == "" {
		return refbuild.Options{}
	}
	return refbuild.Options{DumpMatrixPrefix: dump + "." + role}
}

// replay forwards core diagnostics through the process logger.
func replay(diags []refbuild.Diagnostic) {
	for _, d := range diags {
		if d.SampleID != "" {
			slog.Log(context.Background(), d.Level, d.Message, "sample", d.SampleID)
		} else {
			slog.Log(context.Background(), d.Level, d.Message)
		}
	}
}
