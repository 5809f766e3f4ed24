package encoder

import (
	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/feature"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/katalvlaran/crflat/semimarkov"
)

// walkPathFeatures visits every (feature_id, value) pair active on path for
// inst: every STATE feature whose destination matches the item's assigned
// label, and every TRANSITION feature the variant's topology induces along
// path (chain: consecutive items; tree: parent/child edges; semi-Markov:
// the segmentation path induces over the forward-state automaton). Shared
// by Encoder.FeaturesOnPath and the gradient's observation-expectation
// term (spec §9's resolved "segment-aware sums, not the abort stub").
func walkPathFeatures(idx *feature.Index, variant numeric.Variant, sm *semimarkov.Tables, inst *dataset.Instance, path []int, visit func(fid int, value float64)) error {
	for t, item := range inst.Items {
		l := path[t]
		for _, attr := range item.Attrs {
			for _, fid := range idx.AttrFeatures(attr.ID) {
				d, _ := idx.Descriptor(fid)
				if d.Dst == l {
					visit(fid, attr.Value)
				}
			}
		}
	}

	emitTrans := func(src, dst int) {
		for _, fid := range idx.SourceFeatures(src) {
			d, _ := idx.Descriptor(fid)
			if d.Dst == dst {
				visit(fid, 1.0)
			}
		}
	}

	switch variant {
	case numeric.Chain:
		for t := 1; t < len(path); t++ {
			emitTrans(path[t-1], path[t])
		}
	case numeric.Tree:
		if inst.Tree == nil {
			return ErrInvalidInstance
		}
		for c, node := range inst.Tree {
			if node.Parent == dataset.NoParent {
				continue
			}
			emitTrans(path[node.Parent], path[c])
		}
	case numeric.SemiMarkov:
		if sm == nil {
			return ErrUnsupportedVariant
		}
		state := sm.InitialForwardState()
		i := 0
		for i < len(path) {
			j := i + 1
			for j < len(path) && path[j] == path[i] {
				j++
			}
			next, pattern, err := sm.ForwardTransition(state, path[i])
			if err != nil {
				return err
			}
			emitTrans(state, pattern)
			state = next
			i = j
		}
	}

	return nil
}
