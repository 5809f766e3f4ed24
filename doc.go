// Package crflat is a first-order linear-chain CRF inference and training
// core, generalized over three graph topologies: an ordinary chain, a
// tree (each item has a parent instead of a predecessor), and a
// semi-Markov lattice (labels span variable-length segments).
//
// What crflat is:
//
//	A from-scratch reimplementation of the numerical heart of a CRF
//	toolkit — scaled forward-backward, Viterbi decoding, marginal and
//	gradient computation, and a chunked binary model format — without the
//	optimizer, the feature-extraction pipeline, or the CLI around it.
//
// Under the hood, the core is organized into four layers, each depending
// only on the layer below:
//
//	numeric/   — NumericContext: scratch matrices, scaled F/B, Viterbi, marginals
//	feature/   — FeatureIndex: feature descriptors and attribute/source indirection
//	encoder/   — Encoder: the level-cached facade an optimizer drives
//	model/     — ModelWriter/ModelReader: the chunked binary model format
//	dataset/   — borrowed instance/tree/segment types the optimizer supplies
//	semimarkov/ — SemiMarkovTables: forward/backward-state tables for segments
//
// A trained Encoder exposes exactly the operations an optimizer needs:
// set_weights, set_instance, viterbi, score, partition_factor, and
// objective_and_gradients (single-instance and batch). See encoder.Encoder.
//
//	go get github.com/katalvlaran/crflat
package crflat
