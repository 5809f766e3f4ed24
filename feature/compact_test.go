package feature_test

import (
	"testing"

	"github.com/katalvlaran/crflat/feature"
	"github.com/stretchr/testify/require"
)

func TestCompactDropsZeroWeightFeaturesAndOrphanedAttrs(t *testing.T) {
	descs := []feature.Descriptor{
		{Kind: feature.State, Src: 0, Dst: 0}, // fid 0, kept
		{Kind: feature.State, Src: 1, Dst: 0}, // fid 1, dropped (zero weight)
		{Kind: feature.State, Src: 2, Dst: 1}, // fid 2, kept
		{Kind: feature.Transition, Src: 0, Dst: 1}, // fid 3, kept
	}
	idx, err := feature.NewIndex(descs, 3, 2)
	require.NoError(t, err)

	w := []float64{1.0, 0.0, 2.0, 0.5}
	c := idx.Compact(w)

	require.Equal(t, 3, c.NumFeatures)
	require.Equal(t, 2, c.NumAttrs)
	require.Equal(t, 0, c.NewFeatureID[0])
	require.Equal(t, -1, c.NewFeatureID[1])
	require.Equal(t, 1, c.NewFeatureID[2])
	require.Equal(t, 2, c.NewFeatureID[3])

	require.Equal(t, 0, c.NewAttrID[0]) // attr 0 referenced by retained fid 0
	require.Equal(t, -1, c.NewAttrID[1]) // attr 1 only referenced by dropped fid 1
	require.Equal(t, 1, c.NewAttrID[2]) // attr 2 referenced by retained fid 2
}
