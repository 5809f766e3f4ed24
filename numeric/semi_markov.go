package numeric

import (
	"math"

	"github.com/katalvlaran/crflat/semimarkov"
	"gonum.org/v1/gonum/floats"
)

// smExponentiate is a no-op for semi-Markov: unlike chain/tree, the
// semi-Markov recurrences stay in log space throughout (segment scores span
// a much wider dynamic range than single-item scores, per spec §4.1), so no
// exp_state/exp_trans matrices are ever built.
func smExponentiate(ctx *Context) {}

// logAddExp returns log(exp(a)+exp(b)), computed without overflow. Used for
// the incremental log-space accumulation the segment recurrences need in
// place of chain/tree's linear-space sums.
func logAddExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}

	return a + math.Log1p(math.Exp(b-a))
}

// buildSegPrefix fills seg_prefix so that the state-score sum over items
// [t0, t1] inclusive, for label l, is seg_prefix[t1+1][l] - seg_prefix[t0][l]
// (spec §4.1's segment score decomposition).
func buildSegPrefix(ctx *Context) {
	L := ctx.numLabels
	row0 := ctx.segPrefix.rowSlice(0)[:L]
	for l := range row0 {
		row0[l] = 0
	}
	for t := 0; t < ctx.numItems; t++ {
		prev := ctx.segPrefix.rowSlice(t)[:L]
		cur := ctx.segPrefix.rowSlice(t + 1)[:L]
		srow := ctx.state.rowSlice(t)[:L]
		for l := 0; l < L; l++ {
			cur[l] = prev[l] + srow[l]
		}
	}
}

// segScore returns the sum of state[t,l] for t in [t0, t1] inclusive.
func segScore(ctx *Context, t0, t1, l int) float64 {
	return ctx.segPrefix.at(t1+1, l) - ctx.segPrefix.at(t0, l)
}

// maxSegLenEff resolves the configured segment-length cap against the
// current instance, substituting num_items for Unbounded.
func (ctx *Context) maxSegLenEff() int {
	if ctx.smCfg.MaxSegLen == semimarkov.Unbounded {
		return ctx.numItems
	}

	return ctx.smCfg.MaxSegLen
}

// smAlphaBeta runs the semi-Markov forward-backward recurrence in log
// space: alpha[t, s] is the log-probability mass of every segmentation of
// items [0, t) ending in forward-state s, summed via logAddExp over every
// segment length and predecessor state/label consistent with the automaton
// (spec §4.1's semi-Markov variant).
func smAlphaBeta(ctx *Context) error {
	if ctx.numItems == 0 {
		return ErrNoInstance
	}
	if ctx.sm == nil {
		return ErrMissingTables
	}
	T := ctx.numItems
	nf := ctx.alphaCols
	maxLen := ctx.maxSegLenEff()
	buildSegPrefix(ctx)

	for l := 0; l < nf; l++ {
		ctx.alpha.set(0, l, math.Inf(-1))
	}
	ctx.alpha.set(0, ctx.sm.InitialForwardState(), 0)

	// alphaAt(t, s): log mass of every segmentation of items [0,t) ending in
	// state s, with alphaAt(0, init) = 0. Row t of ctx.alpha stores this.
	for end := 1; end <= T; end++ {
		row := ctx.alpha.rowSlice(end)[:nf]
		for l := range row {
			row[l] = math.Inf(-1)
		}
		segLenMax := maxLen
		if segLenMax > end {
			segLenMax = end
		}
		for segLen := 1; segLen <= segLenMax; segLen++ {
			start := end - segLen
			prevRow := ctx.alpha.rowSlice(start)[:nf]
			for s := 0; s < nf; s++ {
				if math.IsInf(prevRow[s], -1) {
					continue
				}
				for l := 0; l < ctx.numLabels; l++ {
					next, pattern, err := ctx.sm.ForwardTransition(s, l)
					if err != nil {
						return err
					}
					segSum := segScore(ctx, start, end-1, l)
					transScore := ctx.trans.at(s, pattern)
					cand := prevRow[s] + segSum + transScore
					row[next] = logAddExp(row[next], cand)
				}
			}
		}
	}

	lastRow := ctx.alpha.rowSlice(T)[:nf]
	ctx.logNorm = floats.LogSumExp(lastRow)

	// betaAt(t, s): log mass of every segmentation of items [t, T) starting
	// in state s. beta is stored shifted by one row the same way alpha is:
	// row t holds betaAt(t, ·), row T (beta(T, ·) == 0 for every state) is
	// never referenced directly, so beta only needs T rows (0..T-1). The
	// virtual betaAt(T, ·) == 0 boundary is handled inline below (tail = 0
	// when a segment's end reaches T) rather than stored.
	for start := T - 1; start >= 0; start-- {
		row := ctx.beta.rowSlice(start)[:nf]
		for l := range row {
			row[l] = math.Inf(-1)
		}
		segLenMax := maxLen
		if segLenMax > T-start {
			segLenMax = T - start
		}
		for segLen := 1; segLen <= segLenMax; segLen++ {
			end := start + segLen
			var nextRow []float64
			if end == T {
				nextRow = nil
			} else {
				nextRow = ctx.beta.rowSlice(end)[:nf]
			}
			for s := 0; s < nf; s++ {
				for l := 0; l < ctx.numLabels; l++ {
					next, pattern, err := ctx.sm.ForwardTransition(s, l)
					if err != nil {
						return err
					}
					var tail float64
					if end == T {
						tail = 0
					} else {
						tail = nextRow[next]
						if math.IsInf(tail, -1) {
							continue
						}
					}
					segSum := segScore(ctx, start, end-1, l)
					transScore := ctx.trans.at(s, pattern)
					cand := segSum + transScore + tail
					row[s] = logAddExp(row[s], cand)
				}
			}
		}
	}

	return nil
}

// smMarginals accumulates, for every segment [t0,t1] with label l
// consistent with some forward-state transition s->next, the posterior
// mass alpha(t0,s) + segScore + trans(s,pattern) + beta(t1+1,next) - log_norm
// into mexp_state for every item the segment covers, and into mexp_trans
// for the (s, pattern) pair realizing that transition.
func smMarginals(ctx *Context) error {
	if ctx.sm == nil {
		return ErrMissingTables
	}
	T := ctx.numItems
	L := ctx.numLabels
	nf := ctx.alphaCols
	maxLen := ctx.maxSegLenEff()

	ctx.mexpState.zero()
	ctx.mexpTrans.zero()

	for t0 := 0; t0 < T; t0++ {
		segLenMax := maxLen
		if segLenMax > T-t0 {
			segLenMax = T - t0
		}
		for segLen := 1; segLen <= segLenMax; segLen++ {
			t1 := t0 + segLen - 1
			alphaRow := ctx.alpha.rowSlice(t0)[:nf]
			var betaRow []float64
			if t1+1 < T {
				betaRow = ctx.beta.rowSlice(t1 + 1)[:nf]
			}
			for s := 0; s < nf; s++ {
				if math.IsInf(alphaRow[s], -1) {
					continue
				}
				for l := 0; l < L; l++ {
					next, pattern, err := ctx.sm.ForwardTransition(s, l)
					if err != nil {
						return err
					}
					var tail float64
					if t1+1 == T {
						tail = 0
					} else {
						tail = betaRow[next]
						if math.IsInf(tail, -1) {
							continue
						}
					}
					segSum := segScore(ctx, t0, t1, l)
					transScore := ctx.trans.at(s, pattern)
					logPost := alphaRow[s] + segSum + transScore + tail - ctx.logNorm
					post := math.Exp(logPost)
					for t := t0; t <= t1; t++ {
						ctx.mexpState.add(t, l, post)
					}
					ctx.AddMExpTrans(s, pattern, post)
				}
			}
		}
	}

	return nil
}

// smViterbi finds the highest-scoring segmentation and label assignment,
// storing the best predecessor state in back_edge, the segment's start row
// in back_end, and the segment's label in back_label, all indexed by
// [end-1][resultingState] (the row of the segment's last item and the
// forward state reached by taking it).
func smViterbi(ctx *Context, pathOut []int) (float64, error) {
	if ctx.numItems == 0 {
		return 0, ErrNoInstance
	}
	if ctx.sm == nil {
		return 0, ErrMissingTables
	}
	if len(pathOut) != ctx.numItems {
		return 0, ErrBadLabelPath
	}
	T := ctx.numItems
	nf := ctx.alphaCols
	maxLen := ctx.maxSegLenEff()
	buildSegPrefix(ctx)

	delta := ctx.delta
	for l := 0; l < nf; l++ {
		delta.set(0, l, math.Inf(-1))
	}
	delta.set(0, ctx.sm.InitialForwardState(), 0)

	for end := 1; end <= T; end++ {
		row := delta.rowSlice(end)[:nf]
		for l := range row {
			row[l] = math.Inf(-1)
		}
		segLenMax := maxLen
		if segLenMax > end {
			segLenMax = end
		}
		for segLen := 1; segLen <= segLenMax; segLen++ {
			start := end - segLen
			prevRow := delta.rowSlice(start)[:nf]
			for s := 0; s < nf; s++ {
				if math.IsInf(prevRow[s], -1) {
					continue
				}
				for l := 0; l < ctx.numLabels; l++ {
					next, pattern, err := ctx.sm.ForwardTransition(s, l)
					if err != nil {
						return 0, err
					}
					segSum := segScore(ctx, start, end-1, l)
					cand := prevRow[s] + segSum + ctx.trans.at(s, pattern)
					if cand > row[next] {
						row[next] = cand
						ctx.backEdge.set(end-1, next, s)
						ctx.backEnd.set(end-1, next, start)
						ctx.backLabel.set(end-1, next, l)
					}
				}
			}
		}
	}

	lastRow := delta.rowSlice(T)[:nf]
	bestScore := math.Inf(-1)
	bestState := 0
	for s := 0; s < nf; s++ {
		if lastRow[s] > bestScore {
			bestScore = lastRow[s]
			bestState = s
		}
	}

	end := T
	state := bestState
	for end > 0 {
		start := ctx.backEnd.at(end-1, state)
		label := ctx.backLabel.at(end-1, state)
		pred := ctx.backEdge.at(end-1, state)
		for t := start; t < end; t++ {
			pathOut[t] = label
		}
		end = start
		state = pred
	}

	return bestScore, nil
}

// smPathScore replays a given label sequence, finding its induced segment
// boundaries, and sums each segment's state-score total plus the
// transition score of the forward-state/pattern pair it realizes.
func smPathScore(ctx *Context, labels []int) (float64, error) {
	if len(labels) != ctx.numItems || ctx.sm == nil {
		return 0, ErrBadLabelPath
	}
	T := ctx.numItems
	buildSegPrefix(ctx)

	total := 0.0
	state := ctx.sm.InitialForwardState()
	t := 0
	for t < T {
		l := labels[t]
		segEnd := t
		for segEnd+1 < T && labels[segEnd+1] == l {
			segEnd++
		}
		next, pattern, err := ctx.sm.ForwardTransition(state, l)
		if err != nil {
			return 0, err
		}
		total += segScore(ctx, t, segEnd, l) + ctx.trans.at(state, pattern)
		state = next
		t = segEnd + 1
	}

	return total, nil
}

// smReset zeroes the matrices named by flags. Semi-Markov has no exp_trans
// (transitions stay in log space), so RF_ALL clears seg_prefix and the
// back-pointer matrices in its place.
func smReset(ctx *Context, flags ResetFlag) {
	if flags&ResetState != 0 {
		ctx.state.zero()
	}
	if flags&ResetTrans != 0 {
		ctx.trans.zero()
	}
	if flags == ResetAll {
		ctx.expState.zero()
		ctx.alpha.zero()
		ctx.beta.zero()
		ctx.mexpState.zero()
		ctx.mexpTrans.zero()
		ctx.backEdge.zero()
		ctx.backEnd.zero()
		ctx.backLabel.zero()
		ctx.segPrefix.zero()
		for i := range ctx.scaleFactor {
			ctx.scaleFactor[i] = 0
		}
		ctx.logNorm = 0
	}
}
