package numeric_test

import (
	"testing"

	"github.com/katalvlaran/crflat/numeric"
	"github.com/katalvlaran/crflat/semimarkov"
	"github.com/stretchr/testify/require"
)

func newSMContext(t *testing.T, numLabels int, cfg semimarkov.Config, capHint int) *numeric.Context {
	t.Helper()
	tbl, err := semimarkov.Build(numLabels, cfg)
	require.NoError(t, err)
	ctx, err := numeric.NewSemiMarkovContext(tbl, cfg, capHint)
	require.NoError(t, err)

	return ctx
}

func TestSemiMarkovMarginalsSumToOne(t *testing.T) {
	cfg := semimarkov.Config{MaxOrder: 1, MaxSegLen: 2}
	ctx := newSMContext(t, 2, cfg, 3)
	require.NoError(t, ctx.SetNumItems(3))

	ctx.AddState(0, 0, 0.3)
	ctx.AddState(0, 1, -0.1)
	ctx.AddState(1, 0, 0.1)
	ctx.AddState(1, 1, 0.2)
	ctx.AddState(2, 0, -0.2)
	ctx.AddState(2, 1, 0.4)
	for i := 0; i < ctx.TransRows(); i++ {
		for j := 0; j < ctx.TransCols(); j++ {
			ctx.AddTrans(i, j, 0.05*float64(j))
		}
	}

	require.NoError(t, ctx.ComputeAlphaBeta())
	require.NoError(t, ctx.ComputeMarginals())

	for tpos := 0; tpos < 3; tpos++ {
		sum := ctx.MExpState(tpos, 0) + ctx.MExpState(tpos, 1)
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestSemiMarkovViterbiScoreMatchesPathScore(t *testing.T) {
	cfg := semimarkov.Config{MaxOrder: 1, MaxSegLen: 2}
	ctx := newSMContext(t, 2, cfg, 5)
	require.NoError(t, ctx.SetNumItems(5))

	weights := [][]float64{{0.5, -0.2}, {0.1, 0.3}, {-0.1, 0.2}, {0.4, -0.3}, {0.2, 0.1}}
	for i, row := range weights {
		ctx.AddState(i, 0, row[0])
		ctx.AddState(i, 1, row[1])
	}
	for i := 0; i < ctx.TransRows(); i++ {
		for j := 0; j < ctx.TransCols(); j++ {
			ctx.AddTrans(i, j, 0.1*float64(j)-0.05*float64(i))
		}
	}

	path := make([]int, 5)
	viterbiScore, err := ctx.Viterbi(path)
	require.NoError(t, err)

	replayScore, err := ctx.PathScore(path)
	require.NoError(t, err)
	require.InDelta(t, viterbiScore, replayScore, 1e-9)
}

func TestSemiMarkovSingleItem(t *testing.T) {
	cfg := semimarkov.Config{MaxOrder: 1, MaxSegLen: semimarkov.Unbounded}
	ctx := newSMContext(t, 2, cfg, 1)
	require.NoError(t, ctx.SetNumItems(1))
	ctx.AddState(0, 0, 1.0)
	ctx.AddState(0, 1, -1.0)

	path := make([]int, 1)
	score, err := ctx.Viterbi(path)
	require.NoError(t, err)
	require.Equal(t, 0, path[0])
	require.Greater(t, score, 0.0)
}

func TestSemiMarkovRequiresTables(t *testing.T) {
	_, err := numeric.NewSemiMarkovContext(nil, semimarkov.Config{}, 1)
	require.ErrorIs(t, err, numeric.ErrMissingTables)
}

func TestSemiMarkovResetClearsSegPrefixDependentState(t *testing.T) {
	cfg := semimarkov.Config{MaxOrder: 1, MaxSegLen: 2}
	ctx := newSMContext(t, 2, cfg, 2)
	require.NoError(t, ctx.SetNumItems(2))
	ctx.AddState(0, 0, 3)
	ctx.Reset(numeric.ResetState)
	require.Equal(t, 0.0, ctx.StateAt(0, 0))
}
