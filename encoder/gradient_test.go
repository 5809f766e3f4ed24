package encoder

import (
	"math"
	"testing"

	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/stretchr/testify/require"
)

// TestGradientMatchesFiniteDifference is invariant 3: the analytic gradient
// from ObjectiveAndGradients must agree with a central finite difference on
// the loss, coordinate by coordinate.
func TestGradientMatchesFiniteDifference(t *testing.T) {
	e := New(numeric.Chain, WithPossibleStates(true), WithPossibleTransitions(true))
	_, err := e.Initialize(twoLabelChainDataset(t))
	require.NoError(t, err)

	base := make([]float64, e.idx.NumFeatures())
	for i := range base {
		base[i] = 0.1 * float64(i+1) * math.Pow(-1, float64(i))
	}

	inst, err := dataset.NewInstance(repeatItems(4), []int{0, 1, 0, 1})
	require.NoError(t, err)

	lossAt := func(w []float64) float64 {
		require.NoError(t, e.SetWeights(w, 1.0))
		require.NoError(t, e.SetInstance(inst))
		g := make([]float64, len(w))
		loss, lerr := e.ObjectiveAndGradients(g)
		require.NoError(t, lerr)

		return loss
	}

	require.NoError(t, e.SetWeights(base, 1.0))
	require.NoError(t, e.SetInstance(inst))
	analytic := make([]float64, len(base))
	_, err = e.ObjectiveAndGradients(analytic)
	require.NoError(t, err)

	const eps = 1e-6
	for i := range base {
		plus := append([]float64(nil), base...)
		minus := append([]float64(nil), base...)
		plus[i] += eps
		minus[i] -= eps
		fd := (lossAt(plus) - lossAt(minus)) / (2 * eps)
		require.InDelta(t, fd, analytic[i], 1e-4, "coordinate %d", i)
	}
}

// TestObjectiveAndGradientsBatchSumsInstances checks that the batch path,
// which rebuilds every instance from scratch per spec §4.3, sums to the
// same loss/gradient as calling the sequential, single-instance
// ObjectiveAndGradients over each instance in turn on the same Encoder.
func TestObjectiveAndGradientsBatchSumsInstances(t *testing.T) {
	e := New(numeric.Chain, WithPossibleStates(true), WithPossibleTransitions(true), WithConcurrency(2))
	_, err := e.Initialize(twoLabelChainDataset(t))
	require.NoError(t, err)

	w := make([]float64, e.idx.NumFeatures())
	for i := range w {
		w[i] = 0.05 * float64(i+1)
	}

	inst1, err := dataset.NewInstance(repeatItems(3), []int{0, 1, 0})
	require.NoError(t, err)
	inst2, err := dataset.NewInstance(repeatItems(2), []int{1, 1})
	require.NoError(t, err)
	ds := &dataset.Dataset{Instances: []dataset.Instance{*inst1, *inst2}}

	batchGrad := make([]float64, len(w))
	batchLoss, err := e.ObjectiveAndGradientsBatch(ds, w, batchGrad)
	require.NoError(t, err)

	require.NoError(t, e.SetWeights(w, 1.0))
	wantGrad := make([]float64, len(w))
	var wantLoss float64
	for i := range ds.Instances {
		require.NoError(t, e.SetInstance(&ds.Instances[i]))
		g := make([]float64, len(w))
		loss, lerr := e.ObjectiveAndGradients(g)
		require.NoError(t, lerr)
		wantLoss += loss
		for fid := range g {
			wantGrad[fid] += g[fid]
		}
	}

	require.InDelta(t, wantLoss, batchLoss, 1e-9)
	for fid := range w {
		require.InDelta(t, wantGrad[fid], batchGrad[fid], 1e-9)
	}
}
