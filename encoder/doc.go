// Package encoder implements Encoder, the level-cached façade an optimizer
// drives: set_weights, set_instance, viterbi, score, partition_factor,
// objective_and_gradients (and its batch variant), features_on_path, and
// save_model, all layered over feature.Index and numeric.Context.
//
// The Encoder's defining idea is the level cache (spec §4.3): NONE → WEIGHT
// → INSTANCE → ALPHABETA → MARGINAL, each transition doing only the work
// the previous level hadn't already done, so a training loop that calls
// score and objective_and_gradients back to back on the same instance never
// recomputes α/β twice.
package encoder
