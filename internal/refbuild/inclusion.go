package refbuild

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/CenterForMedicalGeneticsGhent/curatedref/internal/cnn"
)

// InclusionMap maps a sample identifier to the chromosomes whose coverage
// is trusted as diploid for that sample. Only listed chromosomes
// contribute; a sample with an empty or absent entry contributes nothing.
type InclusionMap map[string][]string

// LoadInclusionMap reads the inclusion map from a YAML file of the form
//
//	PT15-t: [chr1, chr2, chr3]
//	PT20-t: [chr2, chr4]
func LoadInclusionMap(path string) (InclusionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := make(InclusionMap)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%s: inclusion map contains no samples", path)
	}
	return m, nil
}

// AllowedSet returns the sample's trusted chromosomes as a set, normalized
// to the canonical "chr" prefix. The set is empty for unknown samples.
func (m InclusionMap) AllowedSet(sampleID string) map[string]bool {
	allowed := make(map[string]bool)
	for _, c := range m[sampleID] {
		allowed[cnn.NormalizeChrom(c)] = true
	}
	return allowed
}

// SampleIDs returns the sample identifiers in sorted order. Go maps do not
// iterate stably, and the first sample becomes the template, so iteration
// order has to be pinned.
func (m InclusionMap) SampleIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
