package feature_test

import (
	"testing"

	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/feature"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/stretchr/testify/require"
)

func TestAssembleStateAndTrans(t *testing.T) {
	descs := []feature.Descriptor{
		{Kind: feature.State, Src: 0, Dst: 0},
		{Kind: feature.State, Src: 0, Dst: 1},
		{Kind: feature.Transition, Src: 0, Dst: 1},
	}
	idx, err := feature.NewIndex(descs, 1, 2)
	require.NoError(t, err)

	inst, err := dataset.NewInstance([]dataset.Item{
		{Attrs: []dataset.Attribute{{ID: 0, Value: 2.0}}},
	}, nil)
	require.NoError(t, err)

	ctx, err := numeric.NewChainContext(2, 1)
	require.NoError(t, err)
	require.NoError(t, ctx.SetNumItems(1))

	w := []float64{0.5, 1.5, 2.0}
	require.NoError(t, idx.AssembleState(ctx, inst, w, 1.0))
	require.NoError(t, idx.AssembleTrans(ctx, w, 1.0))

	require.InDelta(t, 1.0, ctx.StateAt(0, 0), 1e-9)  // 0.5 * 2.0
	require.InDelta(t, 3.0, ctx.StateAt(0, 1), 1e-9)  // 1.5 * 2.0
	require.InDelta(t, 2.0, ctx.TransAt(0, 1), 1e-9)
}

func TestAssembleStateRejectsEmptyInstance(t *testing.T) {
	idx, err := feature.NewIndex(nil, 1, 1)
	require.NoError(t, err)
	ctx, err := numeric.NewChainContext(1, 1)
	require.NoError(t, err)

	err = idx.AssembleState(ctx, &dataset.Instance{}, nil, 1.0)
	require.ErrorIs(t, err, dataset.ErrEmptyInstance)
}
