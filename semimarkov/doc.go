// Package semimarkov holds the forward/backward-state tables a semi-Markov
// CRF's inference kernel needs: for each (state, label) pair, which state is
// reached and which transition pattern fires, plus the segment lengths
// admissible at each state.
//
// Populating these tables from real label-suffix features is the semi-Markov
// feature-generation subsystem's job — named as an external collaborator and
// out of scope for this core (spec §1). Build is this package's
// own minimal, self-contained construction of a canonical suffix automaton
// (every label-suffix of length 0..MaxOrder-1 is a forward state, every
// suffix of length 1..MaxOrder is a transition pattern) sufficient to drive
// and test the numeric kernel end to end; a production system would swap it
// for tables built from observed training data.
package semimarkov
