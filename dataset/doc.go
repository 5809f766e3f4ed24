// Package dataset defines the borrowed instance data a CRF training loop
// feeds into an Encoder: items (positions in a chain/tree/segment), the
// attributes observed at each item, the gold label sequence, and — for the
// tree variant — the parent/child edges connecting items.
//
// These types are intentionally thin. Populating them (tokenizing text,
// looking up attribute ids in a dictionary, assigning tree structure) is
// the feature-extraction pipeline's job, named as an external collaborator
// in the core's scope. dataset only validates shape: non-empty instances,
// label/tree slices aligned to items.
package dataset
