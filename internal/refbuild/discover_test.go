package refbuild

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("chromosome\tstart\tend\tlog2\tdepth\n"), 0o644))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	// nested: per-sample subfolder
	touch(t, filepath.Join(dir, "PT15-t", "PT15-t.targetcoverage.cnn"))
	touch(t, filepath.Join(dir, "PT15-t", "PT15-t.antitargetcoverage.cnn"))
	// flat
	touch(t, filepath.Join(dir, "PT20-t.targetcoverage.cnn"))
	touch(t, filepath.Join(dir, "PT20-t.antitargetcoverage.cnn"))
	// incomplete: target only
	touch(t, filepath.Join(dir, "PT32-t.targetcoverage.cnn"))

	ids := []string{"PT15-t", "PT20-t", "PT32-t", "PT61-t"}
	d, diags, err := Discover(dir, ids, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"PT15-t", "PT20-t"}, d.Resolved)
	assert.Equal(t, filepath.Join(dir, "PT15-t", "PT15-t.targetcoverage.cnn"), d.Targets["PT15-t"])
	assert.Equal(t, filepath.Join(dir, "PT20-t.antitargetcoverage.cnn"), d.Antitargets["PT20-t"])

	// Both the incomplete and the absent sample are reported, not fatal.
	unresolved := map[string]bool{}
	for _, diag := range diags {
		if strings.Contains(diag.Message, "not found") {
			unresolved[diag.SampleID] = true
		}
	}
	assert.True(t, unresolved["PT32-t"])
	assert.True(t, unresolved["PT61-t"])
}

func TestDiscover_ExcludeGlob(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "PT15-t.targetcoverage.cnn"))
	touch(t, filepath.Join(dir, "PT15-t.antitargetcoverage.cnn"))
	touch(t, filepath.Join(dir, "PTJ50-t.targetcoverage.cnn"))
	touch(t, filepath.Join(dir, "PTJ50-t.antitargetcoverage.cnn"))

	d, _, err := Discover(dir, []string{"PT15-t", "PTJ50-t"}, "PTJ*")
	require.NoError(t, err)
	assert.Equal(t, []string{"PT15-t"}, d.Resolved)
	assert.NotContains(t, d.Targets, "PTJ50-t")
}

func TestDiscover_BadGlob(t *testing.T) {
	_, _, err := Discover(t.TempDir(), []string{"A"}, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclusion glob")
}

func TestLoadInclusionMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inclusion.yaml")
	content := "PT20-t: [chr2, chr3]\nPT15-t:\n  - \"1\"\n  - chrX\nPT32-t: []\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadInclusionMap(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"PT15-t", "PT20-t", "PT32-t"}, m.SampleIDs())

	// Chromosomes are normalized to the chr prefix.
	assert.Equal(t, map[string]bool{"chr1": true, "chrX": true}, m.AllowedSet("PT15-t"))
	assert.Empty(t, m.AllowedSet("PT32-t"))
	assert.Empty(t, m.AllowedSet("unknown"))
}

func TestLoadInclusionMap_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inclusion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
	_, err := LoadInclusionMap(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no samples")
}
