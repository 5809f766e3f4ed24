package feature

// Compaction is the pair of dense remapping tables produced at save time
// (spec §4.2 "Save-time remapping"): only features with a nonzero final
// weight are retained, each gets a dense NewFeatureID, and each attribute
// referenced by a retained State feature gets a dense NewAttrID. Entries
// for dropped features/attributes are -1.
type Compaction struct {
	NewFeatureID []int
	NewAttrID    []int
	NumFeatures  int
	NumAttrs     int
}

// Compact walks every descriptor in id order, assigning dense ids to the
// features w keeps nonzero and the attributes those retained State
// features reference. The mapping is deterministic (ascending original id
// order) so a save/reload round-trip is reproducible.
func (idx *Index) Compact(w []float64) Compaction {
	newFeatureID := make([]int, len(idx.descriptors))
	newAttrID := make([]int, idx.numAttrs)
	for i := range newAttrID {
		newAttrID[i] = -1
	}

	nextFeature, nextAttr := 0, 0
	for fid, d := range idx.descriptors {
		if w[fid] == 0 {
			newFeatureID[fid] = -1
			continue
		}
		newFeatureID[fid] = nextFeature
		nextFeature++
		if d.Kind == State && newAttrID[d.Src] == -1 {
			newAttrID[d.Src] = nextAttr
			nextAttr++
		}
	}

	return Compaction{
		NewFeatureID: newFeatureID,
		NewAttrID:    newAttrID,
		NumFeatures:  nextFeature,
		NumAttrs:     nextAttr,
	}
}
