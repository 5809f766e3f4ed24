package feature

import (
	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/numeric"
)

// AssembleState performs spec §4.1's "state score assembly": for each item
// t and each (attribute, value) pair on that item, every State feature
// keyed by the attribute accumulates weight[fid]*value*scale into
// ctx.state[t, feature.Dst]. Only attributes present on the instance are
// visited — O(nonzero attributes), per spec §3's FeatureRefs contract.
func (idx *Index) AssembleState(ctx *numeric.Context, inst *dataset.Instance, w []float64, scale float64) error {
	if inst == nil || len(inst.Items) == 0 {
		return dataset.ErrEmptyInstance
	}
	for t, item := range inst.Items {
		for _, attr := range item.Attrs {
			for _, fid := range idx.AttrFeatures(attr.ID) {
				d := idx.descriptors[fid]
				ctx.AddState(t, d.Dst, w[fid]*attr.Value*scale)
			}
		}
	}

	return nil
}

// AssembleTrans performs spec §4.1's "transition score assembly": for each
// source i (a label for chain/tree, a forward-state for semi-Markov), every
// Transition feature keyed by i writes weight[fid]*scale into
// ctx.trans[i, feature.Dst]. Independent of any instance — this is the
// WEIGHT level's work (spec §4.3's "*  → WEIGHT" row), run once per
// set_weights rather than per instance.
func (idx *Index) AssembleTrans(ctx *numeric.Context, w []float64, scale float64) error {
	rows := ctx.TransRows()
	for i := 0; i < rows; i++ {
		for _, fid := range idx.SourceFeatures(i) {
			d := idx.descriptors[fid]
			ctx.AddTrans(i, d.Dst, w[fid]*scale)
		}
	}

	return nil
}
