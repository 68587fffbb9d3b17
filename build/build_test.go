package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/cnn"
	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/refcheck"
)

type bin struct {
	chrom      string
	start, end int
	log2       float64
	depth      float64
}

func writeCoverage(t *testing.T, path string, bins []bin) {
	t.Helper()
	var b strings.Builder
	b.WriteString("chromosome\tstart\tend\tgene\tlog2\tdepth\n")
	for _, r := range bins {
		fmt.Fprintf(&b, "%s\t%d\t%d\t-\t%g\t%g\n", r.chrom, r.start, r.end, r.log2, r.depth)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	targets := func(l1, l2, l3 float64) []bin {
		return []bin{
			{"chr1", 0, 1000, l1, 100},
			{"chr1", 1000, 2000, l2, 120},
			{"chr2", 0, 1000, l3, 90},
		}
	}
	antitargets := func(l1, l2 float64) []bin {
		return []bin{
			{"chr1", 2000, 3000, l1, 50},
			{"chr2", 1000, 2000, l2, 60},
			// No sample trusts chr3: this bin must come out flat.
			{"chr3", 0, 1000, 5.0, 5},
		}
	}

	writeCoverage(t, filepath.Join(dir, "A.targetcoverage.cnn"), targets(0.1, 0.2, 9))
	writeCoverage(t, filepath.Join(dir, "A.antitargetcoverage.cnn"), antitargets(0.3, 9))
	writeCoverage(t, filepath.Join(dir, "B.targetcoverage.cnn"), targets(9, 9, 0.4))
	writeCoverage(t, filepath.Join(dir, "B.antitargetcoverage.cnn"), antitargets(9, 0.5))

	inclusion := filepath.Join(dir, "inclusion.yaml")
	require.NoError(t, os.WriteFile(inclusion, []byte("A: [chr1]\nB: [chr2]\n"), 0o644))

	output := filepath.Join(dir, "out", "reference.cnn")
	require.NoError(t, Run(dir, output, inclusion, "", ""))

	ref, err := cnn.Read(output)
	require.NoError(t, err)
	require.Equal(t, 6, ref.Len())

	// Targets and antitargets are merged and sorted by coordinate.
	assert.Equal(t, []cnn.Bin{
		{Chromosome: "chr1", Start: 0, End: 1000},
		{Chromosome: "chr1", Start: 1000, End: 2000},
		{Chromosome: "chr1", Start: 2000, End: 3000},
		{Chromosome: "chr2", Start: 0, End: 1000},
		{Chromosome: "chr2", Start: 1000, End: 2000},
		{Chromosome: "chr3", Start: 0, End: 1000},
	}, ref.Bins)

	// Trusted values survive, the untrusted chr3 bin is flat.
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.0}, ref.Log2)

	// The produced file passes its own validator.
	report := refcheck.Validate(ref)
	assert.True(t, report.OK())
}

func TestRun_MissingInclusionMap(t *testing.T) {
	dir := t.TempDir()
	err := Run(dir, filepath.Join(dir, "out.cnn"), filepath.Join(dir, "nope.yaml"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inclusion map")
}

func TestRun_NoCoverageFiles(t *testing.T) {
	dir := t.TempDir()
	inclusion := filepath.Join(dir, "inclusion.yaml")
	require.NoError(t, os.WriteFile(inclusion, []byte("A: [chr1]\n"), 0o644))

	output := filepath.Join(dir, "out.cnn")
	err := Run(dir, output, inclusion, "", "")
	require.Error(t, err)

	// Fatal failure must not leave a partial output file behind.
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}
