package feature

import "fmt"

// Kind distinguishes a STATE feature (ties an attribute to a label) from a
// TRANSITION feature (ties a source state/forward-state to a destination
// label/pattern).
type Kind int

const (
	State Kind = iota
	Transition
)

func (k Kind) String() string {
	switch k {
	case State:
		return "state"
	case Transition:
		return "transition"
	default:
		return "unknown"
	}
}

// Descriptor is one row of the feature table (spec §3's FeatureDescriptor).
//
// For State features, Src is an attribute id and Dst is a label id. For
// Transition features in chain/tree models, Src and Dst are label ids; in
// semi-Markov models, Src is a forward-state id and Dst is a pattern id
// (its last label is semimarkov.Tables.PatternToLastLabel(Dst)).
type Descriptor struct {
	Kind         Kind
	Src          int
	Dst          int
	ObservedFreq float64
}

// Index is FeatureIndex: an immutable table of descriptors plus the
// attribute→feature-id and source→feature-id lookup lists that let score
// assembly touch only the attributes/sources present in an instance.
type Index struct {
	descriptors []Descriptor
	numAttrs    int
	numLabels   int

	attrFeatures   [][]int // size numAttrs; State feature ids keyed by Src (attribute id)
	sourceFeatures [][]int // size max observed Src+1; Transition feature ids keyed by Src
}

// NewIndex builds an Index from descs, validating every descriptor against
// numAttrs (the attribute-id space) and numLabels (the label-id space, used
// only to validate State.Dst — Transition ids are variant-dependent and are
// not range-checked here, since a semi-Markov Src is a forward-state id and
// Dst a pattern id, neither bounded by numLabels).
func NewIndex(descs []Descriptor, numAttrs, numLabels int) (*Index, error) {
	if numAttrs < 0 || numLabels <= 0 {
		return nil, fmt.Errorf("feature.NewIndex: %w", ErrInvalidDescriptor)
	}

	maxSource := -1
	for _, d := range descs {
		if d.Src < 0 || d.Dst < 0 {
			return nil, fmt.Errorf("feature.NewIndex: %w", ErrInvalidDescriptor)
		}
		switch d.Kind {
		case State:
			if d.Src >= numAttrs || d.Dst >= numLabels {
				return nil, fmt.Errorf("feature.NewIndex: %w", ErrInvalidDescriptor)
			}
		case Transition:
			if d.Src > maxSource {
				maxSource = d.Src
			}
		default:
			return nil, fmt.Errorf("feature.NewIndex: %w", ErrInvalidDescriptor)
		}
	}

	idx := &Index{
		descriptors:    append([]Descriptor(nil), descs...),
		numAttrs:       numAttrs,
		numLabels:      numLabels,
		attrFeatures:   make([][]int, numAttrs),
		sourceFeatures: make([][]int, maxSource+1),
	}
	for fid, d := range idx.descriptors {
		switch d.Kind {
		case State:
			idx.attrFeatures[d.Src] = append(idx.attrFeatures[d.Src], fid)
		case Transition:
			idx.sourceFeatures[d.Src] = append(idx.sourceFeatures[d.Src], fid)
		}
	}

	return idx, nil
}

// NumFeatures returns the total descriptor count.
func (idx *Index) NumFeatures() int { return len(idx.descriptors) }

// NumAttributes returns A, the attribute-id space size.
func (idx *Index) NumAttributes() int { return idx.numAttrs }

// NumLabels returns L, the label-id space size.
func (idx *Index) NumLabels() int { return idx.numLabels }

// Descriptor returns the fid-th feature descriptor.
func (idx *Index) Descriptor(fid int) (Descriptor, error) {
	if fid < 0 || fid >= len(idx.descriptors) {
		return Descriptor{}, ErrFeatureOutOfRange
	}

	return idx.descriptors[fid], nil
}

// AttrFeatures returns the State feature ids whose Src equals attrID, in
// the order they were added. The returned slice must not be mutated.
func (idx *Index) AttrFeatures(attrID int) []int {
	if attrID < 0 || attrID >= len(idx.attrFeatures) {
		return nil
	}

	return idx.attrFeatures[attrID]
}

// SourceFeatures returns the Transition feature ids whose Src equals
// srcID, in the order they were added. The returned slice must not be
// mutated.
func (idx *Index) SourceFeatures(srcID int) []int {
	if srcID < 0 || srcID >= len(idx.sourceFeatures) {
		return nil
	}

	return idx.sourceFeatures[srcID]
}
