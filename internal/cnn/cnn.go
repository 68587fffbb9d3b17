// Package cnn implements reading, writing and merging of tab-separated
// per-bin coverage tables (.cnn), the interchange format between the
// coverage step and the reference builder.
package cnn

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Required columns of every coverage table. Any other column is treated as
// an annotation and passed through unchanged.
var requiredColumns = []string{"chromosome", "start", "end", "log2", "depth"}

// Bin is one genomic interval of the shared bin grid. Start is inclusive,
// End exclusive.
type Bin struct {
	Chromosome string
	Start      int
	End        int
}

// Table holds one coverage table: an ordered bin grid with parallel numeric
// columns plus any annotation columns copied verbatim from the source file.
// Spread and Weight are nil unless present in the source file.
type Table struct {
	SampleID string
	Bins     []Bin
	Log2     []float64
	Depth    []float64
	Spread   []float64
	Weight   []float64

	// Annotation columns in source order, e.g. "gene", "gc".
	AnnoColumns []string
	Anno        map[string][]string
}

// Len returns the number of bins.
func (t *Table) Len() int {
	return len(t.Bins)
}

// NormalizeChrom ensures a consistent "chr" prefix for comparisons.
func NormalizeChrom(name string) string {
	if strings.HasPrefix(name, "chr") {
		return name
	}
	return "chr" + name
}

// Read parses a tab-separated coverage table. The required columns must all
// be present; spread and weight are picked up when the file carries them.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Sample name is the filename prefix, e.g. PT15-t.targetcoverage.cnn
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	t.SampleID = base
	return t, nil
}

func parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	t := &Table{Anno: make(map[string][]string)}
	known := map[string]bool{
		"chromosome": true, "start": true, "end": true,
		"log2": true, "depth": true, "spread": true, "weight": true,
	}
	for _, name := range header {
		if !known[name] {
			t.AnnoColumns = append(t.AnnoColumns, name)
		}
	}
	_, hasSpread := colIdx["spread"]
	_, hasWeight := colIdx["weight"]

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		start, err := strconv.Atoi(record[colIdx["start"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid start: %w", line, err)
		}
		end, err := strconv.Atoi(record[colIdx["end"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid end: %w", line, err)
		}
		log2, err := strconv.ParseFloat(record[colIdx["log2"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid log2: %w", line, err)
		}
		depth, err := strconv.ParseFloat(record[colIdx["depth"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid depth: %w", line, err)
		}

		t.Bins = append(t.Bins, Bin{
			Chromosome: record[colIdx["chromosome"]],
			Start:      start,
			End:        end,
		})
		t.Log2 = append(t.Log2, log2)
		t.Depth = append(t.Depth, depth)

		if hasSpread {
			v, err := strconv.ParseFloat(record[colIdx["spread"]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid spread: %w", line, err)
			}
			t.Spread = append(t.Spread, v)
		}
		if hasWeight {
			v, err := strconv.ParseFloat(record[colIdx["weight"]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid weight: %w", line, err)
			}
			t.Weight = append(t.Weight, v)
		}
		for _, name := range t.AnnoColumns {
			t.Anno[name] = append(t.Anno[name], record[colIdx[name]])
		}
	}

	if len(t.Bins) == 0 {
		return nil, fmt.Errorf("table contains no bins")
	}
	return t, nil
}

// Write emits the table as a tab-separated file, creating the parent
// directory when needed. Spread and weight columns are written only when
// the table carries them.
func Write(t *Table, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(t, f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func write(t *Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := []string{"chromosome", "start", "end"}
	header = append(header, t.AnnoColumns...)
	header = append(header, "log2", "depth")
	if t.Spread != nil {
		header = append(header, "spread")
	}
	if t.Weight != nil {
		header = append(header, "weight")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, 0, len(header))
	for i, bin := range t.Bins {
		record = record[:0]
		record = append(record,
			bin.Chromosome,
			strconv.Itoa(bin.Start),
			strconv.Itoa(bin.End),
		)
		for _, name := range t.AnnoColumns {
			record = append(record, t.Anno[name][i])
		}
		record = append(record,
			strconv.FormatFloat(t.Log2[i], 'g', -1, 64),
			strconv.FormatFloat(t.Depth[i], 'g', -1, 64),
		)
		if t.Spread != nil {
			record = append(record, strconv.FormatFloat(t.Spread[i], 'g', -1, 64))
		}
		if t.Weight != nil {
			record = append(record, strconv.FormatFloat(t.Weight[i], 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Concat appends the bins of b to a copy of a. Both tables must carry the
// same annotation columns and the same set of numeric columns.
func Concat(a, b *Table) (*Table, error) {
	if len(a.AnnoColumns) != len(b.AnnoColumns) {
		return nil, fmt.Errorf("annotation columns differ: %v vs %v", a.AnnoColumns, b.AnnoColumns)
	}
	for i, name := range a.AnnoColumns {
		if b.AnnoColumns[i] != name {
			return nil, fmt.Errorf("annotation columns differ: %v vs %v", a.AnnoColumns, b.AnnoColumns)
		}
	}
	if (a.Spread == nil) != (b.Spread == nil) || (a.Weight == nil) != (b.Weight == nil) {
		return nil, fmt.Errorf("numeric columns differ between tables")
	}

	merged := &Table{
		SampleID:    a.SampleID,
		Bins:        append(append([]Bin{}, a.Bins...), b.Bins...),
		Log2:        append(append([]float64{}, a.Log2...), b.Log2...),
		Depth:       append(append([]float64{}, a.Depth...), b.Depth...),
		AnnoColumns: append([]string{}, a.AnnoColumns...),
		Anno:        make(map[string][]string, len(a.AnnoColumns)),
	}
	if a.Spread != nil {
		merged.Spread = append(append([]float64{}, a.Spread...), b.Spread...)
	}
	if a.Weight != nil {
		merged.Weight = append(append([]float64{}, a.Weight...), b.Weight...)
	}
	for _, name := range a.AnnoColumns {
		merged.Anno[name] = append(append([]string{}, a.Anno[name]...), b.Anno[name]...)
	}
	return merged, nil
}

// SortByCoordinate sorts the table in place by chromosome and start
// position. Chromosomes sort numerically where possible (chr2 before
// chr10), with non-numeric names (chrX, chrY) after the autosomes.
func SortByCoordinate(t *Table) {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		bx, by := t.Bins[idx[x]], t.Bins[idx[y]]
		cx, cy := chromRank(bx.Chromosome), chromRank(by.Chromosome)
		if cx != cy {
			return cx < cy
		}
		if bx.Chromosome != by.Chromosome {
			return bx.Chromosome < by.Chromosome
		}
		return bx.Start < by.Start
	})

	reorderBins(t.Bins, idx)
	reorderFloats(t.Log2, idx)
	reorderFloats(t.Depth, idx)
	reorderFloats(t.Spread, idx)
	reorderFloats(t.Weight, idx)
	for _, name := range t.AnnoColumns {
		reorderStrings(t.Anno[name], idx)
	}
}

// chromRank maps a chromosome name to its sort rank: autosome number when
// numeric, a large constant otherwise so chrX/chrY/chrM sort last.
func chromRank(name string) int {
	s := strings.TrimPrefix(NormalizeChrom(name), "chr")
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return 1 << 30
}

func reorderBins(s []Bin, idx []int) {
	out := make([]Bin, len(s))
	for i, j := range idx {
		out[i] = s[j]
	}
	copy(s, out)
}

func reorderFloats(s []float64, idx []int) {
	if s == nil {
		return
	}
	out := make([]float64, len(s))
	for i, j := range idx {
		out[i] = s[j]
	}
	copy(s, out)
}

func reorderStrings(s []string, idx []int) {
	out := make([]string, len(s))
	for i, j := range idx {
		out[i] = s[j]
	}
	copy(s, out)
}
