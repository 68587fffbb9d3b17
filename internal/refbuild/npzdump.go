package refbuild

import (
	"fmt"

	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// DumpMatrices writes the populated working matrices to <prefix>.npz for
// offline inspection (the arrays load directly in numpy), along with the
// matrix shape. Masked cells are NaN, matching the in-memory
// representation.
func DumpMatrices(prefix string, log2, depth *mat.Dense) error {
	f, err := npz.Create(prefix + ".npz")
	if err != nil {
		return fmt.Errorf("unable to create file %s.npz: %w", prefix, err)
	}
	defer f.Close()

	if err := f.Write("log2", log2); err != nil {
		return fmt.Errorf("unable to write to file %s.npz: %w", prefix, err)
	}
	if err := f.Write("depth", depth); err != nil {
		return fmt.Errorf("unable to write to file %s.npz: %w", prefix, err)
	}

	// Write the shape
	nBins, nSamples := log2.Dims()
	if err := f.Write("n_bins", int64(nBins)); err != nil {
		return fmt.Errorf("unable to write to file %s.npz: %w", prefix, err)
	}
	if err := f.Write("n_samples", int64(nSamples)); err != nil {
		return fmt.Errorf("unable to write to file %s.npz: %w", prefix, err)
	}
	return f.Close()
}
