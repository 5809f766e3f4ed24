package encoder

import (
	"math"
	"testing"

	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/feature"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/katalvlaran/crflat/semimarkov"
	"github.com/stretchr/testify/require"
)

// weightFor builds a weight vector by visiting every descriptor idx holds
// and asking pick for its value, so a test never has to guess the internal
// feature-id order the generator assigns.
func weightFor(t *testing.T, idx *feature.Index, pick func(d feature.Descriptor) float64) []float64 {
	t.Helper()
	w := make([]float64, idx.NumFeatures())
	for fid := range w {
		d, err := idx.Descriptor(fid)
		require.NoError(t, err)
		w[fid] = pick(d)
	}

	return w
}

func itemWith(attrID int, value float64) dataset.Item {
	return dataset.Item{Attrs: []dataset.Attribute{{ID: attrID, Value: value}}}
}

func repeatItems(n int) []dataset.Item {
	items := make([]dataset.Item, n)
	for i := range items {
		items[i] = itemWith(0, 1.0)
	}

	return items
}

// TestScenarioTwoStateChainLogNormAndViterbi is the two-state-chain
// end-to-end scenario: a single attribute always firing with value 1.0,
// equal (zero) state weights, and transition weights +1 on the diagonal,
// -1 off it. At T=3 the exact partition value is log(2*(2*cosh 1)^2) and
// Viterbi must recover the all-same-label path (ties broken toward the
// lower label id).
func TestScenarioTwoStateChainLogNormAndViterbi(t *testing.T) {
	e := New(numeric.Chain, WithPossibleStates(true), WithPossibleTransitions(true))
	n, err := e.Initialize(twoLabelChainDataset(t))
	require.NoError(t, err)
	require.Equal(t, 6, n)

	w := weightFor(t, e.idx, func(d feature.Descriptor) float64 {
		if d.Kind == feature.State {
			return 0
		}
		if d.Src == d.Dst {
			return 1
		}

		return -1
	})
	require.NoError(t, e.SetWeights(w, 1.0))

	inst, err := dataset.NewInstance(repeatItems(3), nil)
	require.NoError(t, err)
	require.NoError(t, e.SetInstance(inst))

	logNorm, err := e.PartitionFactor()
	require.NoError(t, err)
	want := math.Log(2 * math.Pow(2*math.Cosh(1), 2))
	require.InDelta(t, want, logNorm, 1e-9)

	path := make([]int, 3)
	score, err := e.Viterbi(path)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0}, path)
	require.InDelta(t, 2.0, score, 1e-9)
}

// TestScenarioAllZeroWeightsUniform is the all-zero-weights scenario: with
// every feature weight at 0, the partition value at T=5 over L=2 labels is
// exactly T*log(L), and Viterbi's tie-breaking recovers the all-label-0 path.
func TestScenarioAllZeroWeightsUniform(t *testing.T) {
	e := New(numeric.Chain, WithPossibleStates(true), WithPossibleTransitions(true))
	_, err := e.Initialize(twoLabelChainDataset(t))
	require.NoError(t, err)
	require.NoError(t, e.SetWeights(make([]float64, e.idx.NumFeatures()), 1.0))

	inst, err := dataset.NewInstance(repeatItems(5), nil)
	require.NoError(t, err)
	require.NoError(t, e.SetInstance(inst))

	logNorm, err := e.PartitionFactor()
	require.NoError(t, err)
	require.InDelta(t, 5*math.Log(2), logNorm, 1e-9)

	path := make([]int, 5)
	score, err := e.Viterbi(path)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0, 0, 0}, path)
	require.InDelta(t, 0.0, score, 1e-9)
}

// TestScenarioSingleItemMarginalsAreSoftmax is the single-item scenario: at
// T=1 there are no transitions to score, so the loss collapses to the
// negative log-softmax of the state scores, and the gradient on every
// transition feature is exactly zero.
func TestScenarioSingleItemMarginalsAreSoftmax(t *testing.T) {
	e := New(numeric.Chain, WithPossibleStates(true), WithPossibleTransitions(true))
	_, err := e.Initialize(twoLabelChainDataset(t))
	require.NoError(t, err)

	w := weightFor(t, e.idx, func(d feature.Descriptor) float64 {
		if d.Kind != feature.State {
			return 0.7 // irrelevant at T=1; included to prove it drops out
		}
		if d.Dst == 0 {
			return 0.5
		}

		return -0.3
	})
	require.NoError(t, e.SetWeights(w, 1.0))

	inst, err := dataset.NewInstance([]dataset.Item{itemWith(0, 1.0)}, []int{0})
	require.NoError(t, err)
	require.NoError(t, e.SetInstance(inst))

	logNorm, err := e.PartitionFactor()
	require.NoError(t, err)
	wantLogNorm := math.Log(math.Exp(0.5) + math.Exp(-0.3))
	require.InDelta(t, wantLogNorm, logNorm, 1e-9)

	gOut := make([]float64, e.idx.NumFeatures())
	loss, err := e.ObjectiveAndGradients(gOut)
	require.NoError(t, err)
	require.InDelta(t, wantLogNorm-0.5, loss, 1e-9)

	p0 := math.Exp(0.5) / (math.Exp(0.5) + math.Exp(-0.3))
	p1 := 1 - p0
	for fid := range gOut {
		d, _ := e.idx.Descriptor(fid)
		if d.Kind == feature.Transition {
			require.InDelta(t, 0.0, gOut[fid], 1e-9, "transition feature must not move at T=1")
			continue
		}
		if d.Dst == 0 {
			require.InDelta(t, p0-1, gOut[fid], 1e-9)
		} else {
			require.InDelta(t, p1, gOut[fid], 1e-9)
		}
	}
}

// treeStarDataset builds a root-with-two-leaves tree instance; labels, when
// non-nil, are the gold path used to generate training descriptors.
func treeStarDataset(t *testing.T, labels []int) *dataset.Instance {
	t.Helper()
	items := []dataset.Item{itemWith(0, 1), itemWith(0, 1), itemWith(0, 1)}
	tree := []dataset.TreeNode{
		{SelfItem: 0, Parent: dataset.NoParent, Children: []int{1, 2}},
		{SelfItem: 1, Parent: 0},
		{SelfItem: 2, Parent: 0},
	}
	inst, err := dataset.NewTreeInstance(items, labels, tree)
	require.NoError(t, err)

	return inst
}

// TestScenarioTreeStarDiffersFromFlattenedChain is the tree scenario: a
// three-node star's partition value must match a brute-force sum over
// every label assignment, and must not coincide with what a same-weighted
// three-item chain computes over the same label space (the star couples
// both leaves to the root; the chain couples each item only to its
// immediate predecessor).
func TestScenarioTreeStarDiffersFromFlattenedChain(t *testing.T) {
	treeEnc := New(numeric.Tree, WithPossibleStates(true), WithPossibleTransitions(true))
	treeDS := &dataset.Dataset{Instances: []dataset.Instance{*treeStarDataset(t, []int{0, 1, 0})}}
	_, err := treeEnc.Initialize(treeDS)
	require.NoError(t, err)

	sVals := []float64{0.2, -0.1}
	tVals := [2][2]float64{{0.5, -0.5}, {0.3, -0.3}}
	pick := func(d feature.Descriptor) float64 {
		if d.Kind == feature.State {
			return sVals[d.Dst]
		}

		return tVals[d.Src][d.Dst]
	}
	w := weightFor(t, treeEnc.idx, pick)
	require.NoError(t, treeEnc.SetWeights(w, 1.0))
	require.NoError(t, treeEnc.SetInstance(treeStarDataset(t, nil)))
	treeLogNorm, err := treeEnc.PartitionFactor()
	require.NoError(t, err)

	bruteForce := math.Inf(-1)
	for root := 0; root < 2; root++ {
		for l1 := 0; l1 < 2; l1++ {
			for l2 := 0; l2 < 2; l2++ {
				score := sVals[root] + sVals[l1] + sVals[l2] + tVals[root][l1] + tVals[root][l2]
				bruteForce = logAddExpTest(bruteForce, score)
			}
		}
	}
	require.InDelta(t, bruteForce, treeLogNorm, 1e-9)

	chainEnc := New(numeric.Chain, WithPossibleStates(true), WithPossibleTransitions(true))
	chainDS := twoLabelChainDataset(t)
	_, err = chainEnc.Initialize(chainDS)
	require.NoError(t, err)
	require.NoError(t, chainEnc.SetWeights(weightFor(t, chainEnc.idx, pick), 1.0))
	chainInst, err := dataset.NewInstance(repeatItems(3), nil)
	require.NoError(t, err)
	require.NoError(t, chainEnc.SetInstance(chainInst))
	chainLogNorm, err := chainEnc.PartitionFactor()
	require.NoError(t, err)

	require.Greater(t, math.Abs(treeLogNorm-chainLogNorm), 1e-6)
}

// logAddExpTest mirrors the package's own logAddExp for use from a brute
// force loop that accumulates over +/-Inf-initialized running totals.
func logAddExpTest(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if a < b {
		a, b = b, a
	}

	return a + math.Log1p(math.Exp(b-a))
}

// TestScenarioSemiMarkovMaxSegLenWidensPartition is the semi-Markov scenario:
// raising max_seg_len from 1 to 2 strictly widens the set of admissible
// segmentations (every length-1 segmentation is still admissible, plus new
// length-2 ones), so the partition value at max_seg_len=2 must match a
// brute-force sum over segmentations and must exceed the max_seg_len=1 case.
func TestScenarioSemiMarkovMaxSegLenWidensPartition(t *testing.T) {
	attrs := func(v float64) []dataset.Attribute { return []dataset.Attribute{{ID: 0, Value: v}} }
	trainInst, err := dataset.NewInstance([]dataset.Item{{Attrs: attrs(1)}, {Attrs: attrs(1)}}, []int{0, 1})
	require.NoError(t, err)
	ds := &dataset.Dataset{Instances: []dataset.Instance{*trainInst}}

	sVals := []float64{0.3, -0.2}
	tVals := []float64{0.4, -0.1}

	bruteForce := func(sm *semimarkov.Tables, maxSegLen, T int) float64 {
		total := 0.0
		var rec func(pos, state int, scoreSoFar float64)
		rec = func(pos, state int, scoreSoFar float64) {
			if pos == T {
				total += math.Exp(scoreSoFar)

				return
			}
			maxLen := maxSegLen
			if maxLen == semimarkov.Unbounded || maxLen > T-pos {
				maxLen = T - pos
			}
			for segLen := 1; segLen <= maxLen; segLen++ {
				for l := 0; l < 2; l++ {
					next, _, err := sm.ForwardTransition(state, l)
					require.NoError(t, err)
					segScore := sVals[l] * float64(segLen)
					rec(pos+segLen, next, scoreSoFar+segScore+tVals[l])
				}
			}
		}
		rec(0, sm.InitialForwardState(), 0)

		return math.Log(total)
	}

	var logNorms [2]float64
	for i, maxSegLen := range []int{1, 2} {
		e := New(numeric.SemiMarkov, WithMaxOrder(2), WithMaxSegLen(maxSegLen), WithPossibleStates(true), WithPossibleTransitions(true))
		_, err := e.Initialize(ds)
		require.NoError(t, err)

		w := weightFor(t, e.idx, func(d feature.Descriptor) float64 {
			if d.Kind == feature.State {
				return sVals[d.Dst]
			}
			lastLabel, lerr := e.sm.PatternToLastLabel(d.Dst)
			require.NoError(t, lerr)

			return tVals[lastLabel]
		})
		require.NoError(t, e.SetWeights(w, 1.0))

		inst, err := dataset.NewInstance([]dataset.Item{{Attrs: attrs(1)}, {Attrs: attrs(1)}}, nil)
		require.NoError(t, err)
		require.NoError(t, e.SetInstance(inst))

		logNorm, err := e.PartitionFactor()
		require.NoError(t, err)
		logNorms[i] = logNorm

		want := bruteForce(e.sm, maxSegLen, 2)
		require.InDelta(t, want, logNorm, 1e-9)
	}

	require.Greater(t, logNorms[1], logNorms[0])
}

// TestScenarioSaveReload is the save/reload scenario: serializing a trained
// model and loading it back must decode identically to the live Encoder,
// provided every weight is nonzero (Compact only drops zero-weight
// features, so an all-nonzero vector round-trips feature-for-feature).
func TestScenarioSaveReload(t *testing.T) {
	e := New(numeric.Chain, WithPossibleStates(true), WithPossibleTransitions(true))
	_, err := e.Initialize(twoLabelChainDataset(t))
	require.NoError(t, err)

	w := weightFor(t, e.idx, func(d feature.Descriptor) float64 {
		if d.Kind == feature.State {
			if d.Dst == 0 {
				return 0.3
			}

			return -0.2
		}
		if d.Src == d.Dst {
			return 0.4
		}

		return -0.4
	})
	require.NoError(t, e.SetWeights(w, 1.0))

	inst, err := dataset.NewInstance(repeatItems(4), nil)
	require.NoError(t, err)
	require.NoError(t, e.SetInstance(inst))
	wantPath := make([]int, 4)
	wantScore, err := e.Viterbi(wantPath)
	require.NoError(t, err)

	path := t.TempDir() + "/model.bin"
	require.NoError(t, e.SaveModel(path, w))

	e2, err := LoadModel(path, 4)
	require.NoError(t, err)
	require.NoError(t, e2.SetInstance(inst))
	gotPath := make([]int, 4)
	gotScore, err := e2.Viterbi(gotPath)
	require.NoError(t, err)

	require.Equal(t, wantPath, gotPath)
	require.InDelta(t, wantScore, gotScore, 1e-9)
}
