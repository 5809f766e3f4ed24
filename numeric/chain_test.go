package numeric_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/crflat/numeric"
	"github.com/stretchr/testify/require"
)

func TestChainTwoStateMarginalsSumToOne(t *testing.T) {
	ctx, err := numeric.NewChainContext(2, 4)
	require.NoError(t, err)
	require.NoError(t, ctx.SetNumItems(3))

	for t := 0; t < 3; t++ {
		ctx.AddState(t, 0, 0.4)
		ctx.AddState(t, 1, -0.2)
	}
	ctx.AddTrans(0, 0, 0.1)
	ctx.AddTrans(0, 1, 0.3)
	ctx.AddTrans(1, 0, -0.1)
	ctx.AddTrans(1, 1, 0.2)
	ctx.Exponentiate()

	require.NoError(t, ctx.ComputeAlphaBeta())
	require.NoError(t, ctx.ComputeMarginals())

	for t := 0; t < 3; t++ {
		sum := ctx.MExpState(t, 0) + ctx.MExpState(t, 1)
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestChainAllZeroWeightsUniform(t *testing.T) {
	const L = 3
	ctx, err := numeric.NewChainContext(L, 2)
	require.NoError(t, err)
	require.NoError(t, ctx.SetNumItems(5))
	ctx.Exponentiate()

	require.NoError(t, ctx.ComputeAlphaBeta())
	require.NoError(t, ctx.ComputeMarginals())

	for tpos := 0; tpos < 5; tpos++ {
		for l := 0; l < L; l++ {
			require.InDelta(t, 1.0/L, ctx.MExpState(tpos, l), 1e-9)
		}
	}
}

func TestChainSingleItemPath(t *testing.T) {
	ctx, err := numeric.NewChainContext(2, 1)
	require.NoError(t, err)
	require.NoError(t, ctx.SetNumItems(1))
	ctx.AddState(0, 0, 1.0)
	ctx.AddState(0, 1, -1.0)
	ctx.Exponentiate()

	path := make([]int, 1)
	score, err := ctx.Viterbi(path)
	require.NoError(t, err)
	require.Equal(t, []int{0}, path)
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestChainViterbiMatchesBruteForce(t *testing.T) {
	const L = 2
	ctx, err := numeric.NewChainContext(L, 4)
	require.NoError(t, err)
	require.NoError(t, ctx.SetNumItems(4))

	weights := [][]float64{{0.5, -0.3}, {0.1, 0.2}, {-0.4, 0.6}, {0.3, 0.1}}
	for t, row := range weights {
		ctx.AddState(t, 0, row[0])
		ctx.AddState(t, 1, row[1])
	}
	ctx.AddTrans(0, 0, 0.2)
	ctx.AddTrans(0, 1, -0.1)
	ctx.AddTrans(1, 0, 0.05)
	ctx.AddTrans(1, 1, 0.3)
	ctx.Exponentiate()

	path := make([]int, 4)
	score, err := ctx.Viterbi(path)
	require.NoError(t, err)

	bestScore := math.Inf(-1)
	var best []int
	labels := make([]int, 4)
	var rec func(int)
	rec = func(pos int) {
		if pos == 4 {
			s, perr := ctx.PathScore(labels)
			require.NoError(t, perr)
			if s > bestScore {
				bestScore = s
				best = append([]int(nil), labels...)
			}

			return
		}
		for l := 0; l < L; l++ {
			labels[pos] = l
			rec(pos + 1)
		}
	}
	rec(0)

	require.InDelta(t, bestScore, score, 1e-9)
	require.Equal(t, best, path)
}

func TestChainPathScoreLengthMismatch(t *testing.T) {
	ctx, err := numeric.NewChainContext(2, 2)
	require.NoError(t, err)
	require.NoError(t, ctx.SetNumItems(2))

	_, err = ctx.PathScore([]int{0})
	require.ErrorIs(t, err, numeric.ErrBadLabelPath)
}

func TestChainResetClearsState(t *testing.T) {
	ctx, err := numeric.NewChainContext(2, 2)
	require.NoError(t, err)
	require.NoError(t, ctx.SetNumItems(2))
	ctx.AddState(0, 0, 5)
	ctx.Reset(numeric.ResetState)
	require.Equal(t, 0.0, ctx.StateAt(0, 0))
}
