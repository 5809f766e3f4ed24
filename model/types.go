package model

import "github.com/katalvlaran/crflat/feature"

// magic is the fixed 4-byte file tag (spec §4.4: magic[4]="lCRF").
var magic = [4]byte{'l', 'C', 'R', 'F'}

// formatVersion is bumped whenever the on-disk layout changes incompatibly.
const formatVersion = 1

// FeatureRecord is one row of the features chunk: a retained feature's
// compacted (type, src, dst, weight) — src is a dense new_attribute_id for
// State features, or a label/forward-state id (unchanged) for Transition
// features.
type FeatureRecord struct {
	Kind   feature.Kind
	Src    int
	Dst    int
	Weight float64
}

// SemiMarkovSnapshot is the semi-Markov table chunk's decoded contents
// (spec §4.4's "present only for that variant" chunk).
type SemiMarkovSnapshot struct {
	MaxOrder         int
	NumLabels        int
	NumStates        int
	NumBackwardStates int
	MaxSegLen        int
}

// header mirrors the fixed-size preamble (spec §4.4). Offsets are absolute
// byte positions from the start of the file; zero means "chunk absent"
// (only ever true of OffSemiMarkov).
type header struct {
	Size          uint64
	Type          [4]byte
	Version       uint32
	NumFeatures   uint32
	NumLabels     uint32
	NumAttrs      uint32
	OffFeatures   uint64
	OffLabelRefs  uint64
	OffAttrRefs   uint64
	OffLabelDict  uint64
	OffAttrDict   uint64
	OffSemiMarkov uint64
}

// headerSize is the byte length of the encoded header, magic included:
// magic(4) + size(8) + type(4) + version(4) + numFeatures(4) + numLabels(4)
// + numAttrs(4) + six uint64 chunk offsets(8 each).
const headerSize = 4 + 8 + 4 + 4 + 4 + 4 + 4 + 6*8

// Snapshot is everything Read/ReadFile decode from a file: enough to
// rebuild a feature.Index, a weight vector, both dictionaries, and (for
// semi-Markov) the table parameters semimarkov.Build needs to rebuild the
// tables.
type Snapshot struct {
	Type        [4]byte
	NumFeatures int
	NumLabels   int
	NumAttrs    int
	Features    []FeatureRecord
	AttrRefs    [][]int
	LabelRefs   [][]int
	LabelDict   *MapDictionary
	AttrDict    *MapDictionary
	SemiMarkov  *SemiMarkovSnapshot
}

// Weights extracts the dense weight vector implied by Features (index i
// holds the i-th retained feature's weight, matching new_feature_id order).
func (s *Snapshot) Weights() []float64 {
	w := make([]float64, len(s.Features))
	for i, rec := range s.Features {
		w[i] = rec.Weight
	}

	return w
}
