package feature

import "errors"

var (
	// ErrInvalidDescriptor indicates a descriptor's src/dst/kind is malformed
	// (negative index, or a kind value outside the defined enum).
	ErrInvalidDescriptor = errors.New("feature: invalid descriptor")

	// ErrFeatureOutOfRange indicates a feature id outside [0, NumFeatures).
	ErrFeatureOutOfRange = errors.New("feature: feature id out of range")

	// ErrAttrOutOfRange indicates an attribute id outside [0, NumAttributes).
	ErrAttrOutOfRange = errors.New("feature: attribute id out of range")

	// ErrSourceOutOfRange indicates a transition source id outside its valid range.
	ErrSourceOutOfRange = errors.New("feature: source id out of range")
)
