// Package feature implements FeatureIndex, the immutable feature-indirection
// data model layered over numeric.Context: feature descriptors, the
// attribute→feature-id and source→feature-id lookup tables that let score
// assembly visit only the attributes and sources actually present, and the
// save-time dense remapping used by the model package before a weight
// vector is written to disk.
//
// A FeatureIndex is built once, from feature descriptors supplied by an
// external generator (the feature-extraction pipeline and the semi-Markov
// suffix-state enumerator are both explicitly out of scope here — this
// package only consumes their output), and is read-only thereafter.
package feature
