package refbuild

import (
	"fmt"
	"os"
	"path/filepath"

	"v.io/v23/glob"
)

// Coverage file suffixes produced by the upstream coverage step.
const (
	targetSuffix     = ".targetcoverage.cnn"
	antitargetSuffix = ".antitargetcoverage.cnn"
)

// Discovery is the result of resolving sample identifiers to coverage
// files. Resolved holds the identifiers that were found, in input order;
// a sample appears only when both its target and antitarget file exist.
type Discovery struct {
	Resolved    []string
	Targets     map[string]string
	Antitargets map[string]string
}

// Discover resolves each sample identifier to its coverage file pair under
// baseDir. Two locations are tried per sample: a per-sample subfolder
// (<dir>/<sid>/<sid>.targetcoverage.cnn), then the flat directory.
// Unresolved samples are reported as diagnostics without aborting
// discovery for the others. A non-empty excludePattern drops matching
// sample identifiers up front.
func Discover(baseDir string, ids []string, excludePattern string) (*Discovery, []Diagnostic, error) {
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, nil, err
	}

	var exclude *glob.Glob
	if excludePattern != "" {
		exclude, err = glob.Parse(excludePattern)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to parse sample exclusion glob: %w", err)
		}
	}

	d := &Discovery{
		Targets:     make(map[string]string),
		Antitargets: make(map[string]string),
	}
	var diags []Diagnostic

	for _, id := range ids {
		if exclude != nil && exclude.Head().Match(id) {
			diags = append(diags, infof(id, "sample excluded by glob pattern"))
			continue
		}

		// Subfolder check, then flat check.
		tPath := filepath.Join(baseDir, id, id+targetSuffix)
		aPath := filepath.Join(baseDir, id, id+antitargetSuffix)
		if !exists(tPath) || !exists(aPath) {
			tPath = filepath.Join(baseDir, id+targetSuffix)
			aPath = filepath.Join(baseDir, id+antitargetSuffix)
		}

		if exists(tPath) && exists(aPath) {
			d.Resolved = append(d.Resolved, id)
			d.Targets[id] = tPath
			d.Antitargets[id] = aPath
		} else {
			diags = append(diags, warnf(id, "coverage files not found for sample"))
		}
	}

	return d, diags, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
