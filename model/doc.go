// Package model implements ModelWriter and ModelReader: the chunked,
// offset-indexed, little-endian binary format a trained Encoder is
// persisted to and loaded from (spec §4.4).
//
// The format is a fixed header followed by a features chunk, two
// feature-id-list ref chunks (by attribute and by transition source), two
// dictionary chunks (label and attribute id↔string), and, for the
// semi-Markov variant only, a suffix-automaton table chunk. Every chunk is
// reachable by a direct offset stored in the header, so reading any one
// chunk is O(1) seek + sequential decode; the dictionaries and feature
// records are a natural fit for an mmap'd read path since neither contains
// internal pointers, only flat arrays and offset tables.
package model
