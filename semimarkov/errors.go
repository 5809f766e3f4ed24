package semimarkov

import "errors"

// Sentinel errors for semi-Markov table construction.
var (
	// ErrInvalidNumLabels indicates a non-positive label count was supplied.
	ErrInvalidNumLabels = errors.New("semimarkov: num_labels must be > 0")

	// ErrInvalidMaxOrder indicates a max_order below 1 was supplied.
	ErrInvalidMaxOrder = errors.New("semimarkov: max_order must be >= 1")

	// ErrInvalidMaxSegLen indicates a max_seg_len of 0 or below -1 was supplied.
	ErrInvalidMaxSegLen = errors.New("semimarkov: max_seg_len must be -1 (unbounded) or >= 1")

	// ErrStateOutOfRange indicates a forward/backward state id outside the built table.
	ErrStateOutOfRange = errors.New("semimarkov: state id out of range")

	// ErrLabelOutOfRange indicates a label id outside [0, num_labels).
	ErrLabelOutOfRange = errors.New("semimarkov: label id out of range")
)
