package check

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/cnn"
)

func writeReference(t *testing.T, mangle func(*cnn.Table)) string {
	t.Helper()
	tab := &cnn.Table{
		Bins: []cnn.Bin{
			{Chromosome: "chr1", Start: 0, End: 1000},
			{Chromosome: "chr2", Start: 0, End: 1000},
		},
		Log2:   []float64{0.0, 0.25},
		Depth:  []float64{100, 90},
		Spread: []float64{0.1, 0.2},
		Weight: []float64{100, 25},
		Anno:   map[string][]string{},
	}
	if mangle != nil {
		mangle(tab)
	}
	path := filepath.Join(t.TempDir(), "reference.cnn")
	require.NoError(t, cnn.Write(tab, path))
	return path
}

func TestRun_Valid(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(writeReference(t, nil), &out))
	assert.Contains(t, out.String(), "[PASS] column structure")
	assert.Contains(t, out.String(), "CHECK NAME")
	assert.Contains(t, out.String(), fmt.Sprintf("%-30s | PASS", "flat fallback detection"))
	assert.Contains(t, out.String(), "file is VALID")
}

func TestRun_Invalid(t *testing.T) {
	path := writeReference(t, func(tab *cnn.Table) {
		tab.Log2[1] = math.NaN()
	})

	var out bytes.Buffer
	err := Run(path, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "[FAIL] nan values")
	assert.Contains(t, out.String(), "CRITICAL ERRORS")
}

func TestRun_Unreadable(t *testing.T) {
	var out bytes.Buffer
	err := Run(filepath.Join(t.TempDir(), "missing.cnn"), &out)
	require.Error(t, err)
}
