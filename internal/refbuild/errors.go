package refbuild

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the reducer is invoked without any
	// input files. An empty sample set is a contract violation, not an
	// empty result.
	ErrEmptyInput = errors.New("no input files provided")

	// ErrNoValidSamples is returned when every sample was excluded by
	// per-sample failures. A reference built from nothing is meaningless.
	ErrNoValidSamples = errors.New("no valid samples were processed")
)

// BinMismatchError reports that a candidate sample's bin grid is not
// structurally identical to the template's.
type BinMismatchError struct {
	SampleID string
	Reason   string
}

func (e *BinMismatchError) Error() string {
	return fmt.Sprintf("bin mismatch in %s: %s", e.SampleID, e.Reason)
}
