package semimarkov_test

import (
	"testing"

	"github.com/katalvlaran/crflat/semimarkov"
	"github.com/stretchr/testify/require"
)

func TestBuildInvalidConfig(t *testing.T) {
	_, err := semimarkov.Build(0, semimarkov.Config{MaxOrder: 1, MaxSegLen: semimarkov.Unbounded})
	require.ErrorIs(t, err, semimarkov.ErrInvalidNumLabels)

	_, err = semimarkov.Build(2, semimarkov.Config{MaxOrder: 0, MaxSegLen: semimarkov.Unbounded})
	require.ErrorIs(t, err, semimarkov.ErrInvalidMaxOrder)

	_, err = semimarkov.Build(2, semimarkov.Config{MaxOrder: 1, MaxSegLen: -2})
	require.ErrorIs(t, err, semimarkov.ErrInvalidMaxSegLen)
}

func TestBuildOrderOneIsSingleState(t *testing.T) {
	tbl, err := semimarkov.Build(3, semimarkov.Config{MaxOrder: 1, MaxSegLen: 2})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumForwardStates())
	require.Equal(t, 3, tbl.NumPatterns()) // one pattern per label

	for l := 0; l < 3; l++ {
		next, pattern, err := tbl.ForwardTransition(0, l)
		require.NoError(t, err)
		require.Equal(t, 0, next) // always returns to the single state
		last, err := tbl.PatternToLastLabel(pattern)
		require.NoError(t, err)
		require.Equal(t, l, last)
	}
}

func TestBuildOrderTwoStateCount(t *testing.T) {
	tbl, err := semimarkov.Build(2, semimarkov.Config{MaxOrder: 2, MaxSegLen: semimarkov.Unbounded})
	require.NoError(t, err)
	// states: suffixes of length 0 (1) and length 1 (2) = 3
	require.Equal(t, 3, tbl.NumForwardStates())
	// patterns: suffixes of length 1 (2) and length 2 (4) = 6
	require.Equal(t, 6, tbl.NumPatterns())
}

func TestForwardTransitionOutOfRange(t *testing.T) {
	tbl, err := semimarkov.Build(2, semimarkov.Config{MaxOrder: 1, MaxSegLen: 1})
	require.NoError(t, err)

	_, _, err = tbl.ForwardTransition(99, 0)
	require.ErrorIs(t, err, semimarkov.ErrStateOutOfRange)

	_, _, err = tbl.ForwardTransition(0, 99)
	require.ErrorIs(t, err, semimarkov.ErrLabelOutOfRange)
}

func TestSegmentLengthsRespectsCap(t *testing.T) {
	tbl, err := semimarkov.Build(2, semimarkov.Config{MaxOrder: 1, MaxSegLen: 2})
	require.NoError(t, err)
	lens, err := tbl.SegmentLengths(0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, lens)
}
