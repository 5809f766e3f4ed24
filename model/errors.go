package model

import "errors"

var (
	// ErrInvalidModelFile indicates a bad magic, a size mismatch, or an
	// offset out of bounds while reading (spec §7 InvalidModelFile).
	ErrInvalidModelFile = errors.New("model: invalid model file")

	// ErrUnknownVariant indicates a type tag the reader does not recognize.
	ErrUnknownVariant = errors.New("model: unknown variant type tag")

	// ErrMissingSemiMarkovTable indicates a semi-Markov-tagged file with no
	// semi-Markov table chunk, or vice versa.
	ErrMissingSemiMarkovTable = errors.New("model: semi-Markov table chunk missing or unexpected")

	// ErrUnknownDictionaryKey indicates a String/ID lookup miss.
	ErrUnknownDictionaryKey = errors.New("model: dictionary key not found")
)
