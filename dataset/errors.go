package dataset

import "errors"

// Sentinel errors for dataset construction and validation.
var (
	// ErrEmptyInstance indicates an instance with zero items was supplied.
	// Spec: InvalidInstance, triggered by num_items == 0.
	ErrEmptyInstance = errors.New("dataset: instance has no items")

	// ErrLabelMismatch indicates the label slice length does not match the item count.
	ErrLabelMismatch = errors.New("dataset: labels length does not match items length")

	// ErrTreeMismatch indicates the tree slice length does not match the item count.
	ErrTreeMismatch = errors.New("dataset: tree length does not match items length")

	// ErrBadTreeNode indicates a tree node references an out-of-range parent or child,
	// a node whose SelfItem differs from its index, or a tree with more than one root.
	ErrBadTreeNode = errors.New("dataset: tree node references an out-of-range item")

	// ErrNoRoot indicates a tree-structured instance has no root (a node with Parent == NoParent).
	ErrNoRoot = errors.New("dataset: tree has no root")

	// ErrNegativeAttribute indicates an attribute id was negative.
	ErrNegativeAttribute = errors.New("dataset: attribute id must be >= 0")
)
