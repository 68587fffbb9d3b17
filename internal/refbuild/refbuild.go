// Package refbuild builds a curated copy-number reference profile from a
// set of per-sample coverage tables. Only (sample, chromosome) pairs listed
// in the inclusion map contribute to the per-bin statistics; bins left
// without any trusted evidence fall back to a flat (log2 = 0) profile with
// globally averaged depth and spread.
package refbuild

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/cnn"
)

const (
	// spreadFloor is the minimum spread used for weight derivation, to
	// prevent division blow-up on near-zero spreads.
	spreadFloor = 1e-4

	// defaultDepth and defaultSpread are the fallbacks of last resort,
	// used only when no bin anywhere has a defined value.
	defaultDepth  = 1.0
	defaultSpread = 0.1
)

// Options control optional build behaviour.
type Options struct {
	// DumpMatrixPrefix, when set, writes the populated working matrices
	// to <prefix>.npz before reduction.
	DumpMatrixPrefix string
}

// ValidateCompatibility verifies that a candidate sample uses the exact
// same bin grid as the template: equal bin count, equal first start and
// equal last end. This is a deliberately coarse endpoint check; an internal
// reordering that preserves the boundary coordinates would pass. That
// limitation is accepted for robustness and speed, matching the behaviour
// downstream tooling was tuned against.
func ValidateCompatibility(template, candidate *cnn.Table, sampleID string) error {
	if template.Len() != candidate.Len() {
		return &BinMismatchError{
			SampleID: sampleID,
			Reason:   "bin count differs from template",
		}
	}
	if template.Bins[0].Start != candidate.Bins[0].Start ||
		template.Bins[template.Len()-1].End != candidate.Bins[candidate.Len()-1].End {
		return &BinMismatchError{
			SampleID: sampleID,
			Reason:   "boundary coordinates differ from template",
		}
	}
	return nil
}

// Build reduces the given per-sample coverage tables into one reference
// table. ids fixes the processing order; the first sample becomes the
// template whose bin grid and annotation columns are carried into the
// result. Per-sample failures are reported as diagnostics and the sample
// is dropped; the build only fails when no sample contributes at all.
func Build(ids []string, files map[string]string, incl InclusionMap, opts Options) (*cnn.Table, []Diagnostic, error) {
	if len(ids) == 0 {
		return nil, nil, ErrEmptyInput
	}
	var diags []Diagnostic

	// Load the template (first sample). Its bin grid and annotation
	// columns are the basis of the reference.
	template, err := cnn.Read(files[ids[0]])
	if err != nil {
		return nil, diags, err
	}
	nBins := template.Len()
	nSamples := len(ids)

	// Normalize the template chromosomes once; every sample's mask is
	// computed against this vector.
	templateChroms := make([]string, nBins)
	for i, bin := range template.Bins {
		templateChroms[i] = cnn.NormalizeChrom(bin.Chromosome)
	}

	diags = append(diags, infof("", "initializing matrix: %d bins x %d samples", nBins, nSamples))

	// Working matrices, NaN meaning "no trusted data".
	matLog2 := nanDense(nBins, nSamples)
	matDepth := nanDense(nBins, nSamples)

	validSamples := 0
	for col, id := range ids {
		curr := template
		if col != 0 {
			curr, err = cnn.Read(files[id])
			if err != nil {
				diags = append(diags, errorf(id, "unable to load sample: %v", err))
				continue
			}
			if err := ValidateCompatibility(template, curr, id); err != nil {
				diags = append(diags, errorf(id, "%v", err))
				continue
			}
		}

		allowed := incl.AllowedSet(id)
		if len(allowed) == 0 {
			diags = append(diags, warnf(id, "no allowed chromosomes in inclusion map, skipping"))
			continue
		}

		// Fill this sample's column at trusted positions only.
		for row := 0; row < nBins; row++ {
			if allowed[templateChroms[row]] {
				matLog2.Set(row, col, curr.Log2[row])
				matDepth.Set(row, col, curr.Depth[row])
			}
		}
		validSamples++
	}

	if validSamples == 0 {
		return nil, diags, ErrNoValidSamples
	}

	if opts.DumpMatrixPrefix != "" {
		if err := DumpMatrices(opts.DumpMatrixPrefix, matLog2, matDepth); err != nil {
			diags = append(diags, warnf("", "unable to dump matrices: %v", err))
		}
	}

	diags = append(diags, infof("", "computing reference statistics over %d samples", validSamples))

	// Row-wise reduction over trusted cells. A row without trusted cells
	// yields NaN; a row with a single trusted cell yields a mean but an
	// undefined spread.
	refLog2 := make([]float64, nBins)
	refDepth := make([]float64, nBins)
	refSpread := make([]float64, nBins)

	rowLog2 := make([]float64, nSamples)
	rowDepth := make([]float64, nSamples)
	for row := 0; row < nBins; row++ {
		mat.Row(rowLog2, row, matLog2)
		mat.Row(rowDepth, row, matDepth)

		trusted := compactDefined(rowLog2)
		switch len(trusted) {
		case 0:
			refLog2[row] = math.NaN()
			refSpread[row] = math.NaN()
		case 1:
			refLog2[row] = trusted[0]
			refSpread[row] = math.NaN()
		default:
			refLog2[row] = stat.Mean(trusted, nil)
			refSpread[row] = stat.StdDev(trusted, nil)
		}

		if depths := compactDefined(rowDepth); len(depths) > 0 {
			refDepth[row] = stat.Mean(depths, nil)
		} else {
			refDepth[row] = math.NaN()
		}
	}

	// Global fallback statistics, computed from pre-fallback values only
	// so that substituted values never contaminate the averages.
	globalDepth := meanDefined(refDepth, defaultDepth)
	globalSpread := meanDefined(refSpread, defaultSpread)

	nFallback := 0
	for row := 0; row < nBins; row++ {
		if math.IsNaN(refLog2[row]) {
			refLog2[row] = 0.0
			refDepth[row] = globalDepth
			refSpread[row] = globalSpread
			nFallback++
		}
		// Single-trusted-sample rows have a defined mean but an
		// undefined spread; they get the global spread as well.
		if math.IsNaN(refSpread[row]) {
			refSpread[row] = globalSpread
		}
	}
	if nFallback > 0 {
		diags = append(diags, warnf("", "flat fallback triggered for %d bins (%.2f%%)",
			nFallback, float64(nFallback)/float64(nBins)*100))
	}

	// Inverse-variance weights. Spread is clamped to the floor first, so
	// every bin leaves with a strictly positive spread and a finite
	// weight; bins at the floor share the maximum weight 1/floor².
	weight := make([]float64, nBins)
	for row := 0; row < nBins; row++ {
		refSpread[row] = math.Max(refSpread[row], spreadFloor)
		weight[row] = 1.0 / (refSpread[row] * refSpread[row])
	}

	ref := &cnn.Table{
		SampleID:    "reference",
		Bins:        template.Bins,
		Log2:        refLog2,
		Depth:       refDepth,
		Spread:      refSpread,
		Weight:      weight,
		AnnoColumns: template.AnnoColumns,
		Anno:        template.Anno,
	}
	return ref, diags, nil
}

// nanDense returns an r x c matrix with every cell set to NaN.
func nanDense(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = math.NaN()
	}
	return mat.NewDense(r, c, data)
}

// compactDefined returns the non-NaN values of row, reusing its backing
// array.
func compactDefined(row []float64) []float64 {
	out := row[:0]
	for _, v := range row {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// meanDefined returns the mean of the defined values, or def when none are
// defined.
func meanDefined(vals []float64, def float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return def
	}
	return sum / float64(n)
}
