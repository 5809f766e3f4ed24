package semimarkov

// Unbounded marks Config.MaxSegLen as having no upper bound other than the
// instance's own length.
const Unbounded = -1

// Config carries the two semi-Markov-only options from encoder exchange:
// feature.max_seg_len and feature.max_order.
type Config struct {
	MaxSegLen int // -1 = unbounded within the sequence
	MaxOrder  int // >= 1; width of the label-suffix memory
}

// Tables is the spec's SemiMarkovTables: forward/backward-state automaton
// plus the pattern set that a semi-Markov NumericContext reads to drive
// its transition-score assembly and α/β/Viterbi recurrences. All fields
// are populated once by Build and are immutable thereafter.
type Tables struct {
	numLabels int
	cfg       Config

	// forwardSuffix[s] is the label suffix (oldest first) a forward state s
	// represents; len(forwardSuffix[s]) is in [0, MaxOrder-1].
	forwardSuffix [][]int

	// forwardNext[s][l] is the forward state reached by emitting label l
	// while in forward state s.
	forwardNext [][]int

	// forwardPattern[s][l] is the pattern id activated by emitting label l
	// while in forward state s.
	forwardPattern [][]int

	// patternSuffix[p] is the label suffix (oldest first) pattern p
	// represents; len(patternSuffix[p]) is in [1, MaxOrder].
	patternSuffix [][]int

	// patternLastLabel[p] == last_label(p): the newest label in patternSuffix[p].
	patternLastLabel []int

	// segLens is the set of segment lengths admissible at any state, shared
	// across states because this builder does not vary admissibility by
	// state; capped by cfg.MaxSegLen when bounded.
	segLens []int
}

// NumLabels returns L, the number of distinct output labels.
func (t *Tables) NumLabels() int { return t.numLabels }

// MaxOrder returns the configured transition memory width.
func (t *Tables) MaxOrder() int { return t.cfg.MaxOrder }

// MaxSegLen returns the configured segment length cap, or Unbounded.
func (t *Tables) MaxSegLen() int { return t.cfg.MaxSegLen }

// NumForwardStates returns the row count of α: one per label suffix of
// length 0..MaxOrder-1.
func (t *Tables) NumForwardStates() int { return len(t.forwardSuffix) }

// NumBackwardStates returns the row count of β. Build constructs no
// separate backward automaton; the backward states are the forward ones,
// so the counts coincide.
func (t *Tables) NumBackwardStates() int { return len(t.forwardSuffix) }

// NumPatterns returns the number of distinct transition patterns.
func (t *Tables) NumPatterns() int { return len(t.patternSuffix) }

// InitialForwardState returns the state representing "no label history
// yet": the empty suffix, always id 0 by construction.
func (t *Tables) InitialForwardState() int { return 0 }

// InitialBackwardState returns the backward counterpart of
// InitialForwardState.
func (t *Tables) InitialBackwardState() int { return 0 }

// ForwardTransition returns the forward state reached, and the pattern
// activated, by emitting label l while in forward state s.
func (t *Tables) ForwardTransition(s, l int) (nextState, pattern int, err error) {
	if s < 0 || s >= len(t.forwardNext) {
		return 0, 0, ErrStateOutOfRange
	}
	if l < 0 || l >= t.numLabels {
		return 0, 0, ErrLabelOutOfRange
	}

	return t.forwardNext[s][l], t.forwardPattern[s][l], nil
}

// BackwardTransition returns the backward state reached by emitting label
// l while in backward state s. It reads the forward transition table,
// since Build constructs no separate backward automaton.
func (t *Tables) BackwardTransition(s, l int) (nextState int, err error) {
	if s < 0 || s >= len(t.forwardNext) {
		return 0, ErrStateOutOfRange
	}
	if l < 0 || l >= t.numLabels {
		return 0, ErrLabelOutOfRange
	}

	return t.forwardNext[s][l], nil
}

// PatternToLastLabel returns last_label(p): the label emitted when pattern
// p terminates.
func (t *Tables) PatternToLastLabel(p int) (int, error) {
	if p < 0 || p >= len(t.patternLastLabel) {
		return 0, ErrStateOutOfRange
	}

	return t.patternLastLabel[p], nil
}

// SegmentLengths returns the segment lengths admissible at forward state s,
// in ascending order. The slice is shared and must not be mutated.
func (t *Tables) SegmentLengths(s int) ([]int, error) {
	if s < 0 || s >= len(t.forwardNext) {
		return nil, ErrStateOutOfRange
	}

	return t.segLens, nil
}
