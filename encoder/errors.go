package encoder

import "errors"

// Sentinel errors for Encoder construction and operation (spec §7's error
// table, Encoder-raised kinds).
var (
	// ErrInvalidConfig indicates a bad Option value: fails option-exchange
	// with no side effects.
	ErrInvalidConfig = errors.New("encoder: invalid configuration value")

	// ErrInvalidInstance indicates an instance unusable for the requested
	// operation: nil, zero items, or (for Initialize) missing gold labels.
	ErrInvalidInstance = errors.New("encoder: invalid instance")

	// ErrUnsupportedVariant is fatal: an operation was invoked whose
	// required graph topology does not match this Encoder's variant.
	// Callers must discard the Encoder afterward; this is documented, not
	// enforced by a panic, to stay idiomatic Go.
	ErrUnsupportedVariant = errors.New("encoder: unsupported for this variant")

	// ErrNotInitialized indicates an operation requiring a FeatureIndex was
	// called before Initialize.
	ErrNotInitialized = errors.New("encoder: not initialized")

	// ErrNoWeights indicates an operation requiring level >= WEIGHT was
	// called before SetWeights.
	ErrNoWeights = errors.New("encoder: weights not set")

	// ErrNoInstance indicates an operation requiring level >= INSTANCE was
	// called before SetInstance.
	ErrNoInstance = errors.New("encoder: instance not set")
)
