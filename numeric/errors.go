package numeric

import "errors"

// Sentinel errors for NumericContext construction and inference.
var (
	// ErrInvalidDimensions indicates a non-positive row or column count.
	ErrInvalidDimensions = errors.New("numeric: dimensions must be > 0")

	// ErrIndexOutOfBounds indicates a row or column index outside a matrix's bounds.
	ErrIndexOutOfBounds = errors.New("numeric: index out of bounds")

	// ErrOutOfMemory names the allocation-failure error kind. No function in
	// this package returns it: capacity growth allocates with make, and the
	// runtime panics on a true allocation failure, which this package does
	// not attempt to recover from.
	ErrOutOfMemory = errors.New("numeric: allocation failed")

	// ErrNoInstance indicates an inference operation was requested before
	// SetNumItems (equivalently, set_instance) established T.
	ErrNoInstance = errors.New("numeric: no instance set (num_items == 0)")

	// ErrZeroScaleFactor indicates a column's total probability mass
	// underflowed to exactly zero: a zero-probability instance under the
	// current weights. The log-partition function is undefined; this is
	// fatal per spec §7, not a recoverable per-operation error.
	ErrZeroScaleFactor = errors.New("numeric: scale factor underflowed to zero")

	// ErrUnsupportedVariant indicates an operation was invoked against a
	// Context built for a different graph topology.
	ErrUnsupportedVariant = errors.New("numeric: operation unsupported for this variant")

	// ErrMissingTree indicates a tree-variant operation ran without a tree
	// having been attached via SetTree.
	ErrMissingTree = errors.New("numeric: tree variant requires SetTree before inference")

	// ErrMissingTables indicates a semi-Markov-variant Context was built
	// without semi-Markov tables.
	ErrMissingTables = errors.New("numeric: semi-Markov variant requires tables")

	// ErrBadLabelPath indicates a label sequence passed to PathScore or
	// Viterbi-adjacent checks has the wrong length or an out-of-range label.
	ErrBadLabelPath = errors.New("numeric: label path is malformed")
)
