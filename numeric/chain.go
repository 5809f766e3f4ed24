package numeric

import "math"

import "gonum.org/v1/gonum/floats"

// chainExponentiate builds exp_state and exp_trans from the current
// log-space state/trans matrices. Shared by Chain and Tree: both keep
// transitions in linear (non-log) space, unlike semi-Markov (spec §4.1).
func chainExponentiate(ctx *Context) {
	for i := range ctx.expState.data {
		ctx.expState.data[i] = math.Exp(ctx.state.data[i])
	}
	for i := range ctx.expTrans.data {
		ctx.expTrans.data[i] = math.Exp(ctx.trans.data[i])
	}
}

// chainAlphaBeta runs the scaled forward-backward recurrence of spec §4.1.
func chainAlphaBeta(ctx *Context) error {
	if ctx.numItems == 0 {
		return ErrNoInstance
	}
	T, L := ctx.numItems, ctx.numLabels

	// alpha[0, l] = exp_state[0, l]; then scale column 0.
	copy(ctx.alpha.rowSlice(0), ctx.expState.rowSlice(0)[:L])
	if err := scaleColumn(ctx, 0); err != nil {
		return err
	}

	for t := 1; t < T; t++ {
		prev := ctx.alpha.rowSlice(t - 1)
		cur := ctx.alpha.rowSlice(t)
		for l := 0; l < L; l++ {
			var sum float64
			for i := 0; i < L; i++ {
				sum += prev[i] * ctx.expTrans.at(i, l)
			}
			cur[l] = ctx.expState.at(t, l) * sum
		}
		if err := scaleColumn(ctx, t); err != nil {
			return err
		}
	}

	// beta[T-1, l] = scale_factor[T-1].
	last := ctx.beta.rowSlice(T - 1)
	for l := range last {
		last[l] = ctx.scaleFactor[T-1]
	}
	for t := T - 2; t >= 0; t-- {
		cur := ctx.beta.rowSlice(t)
		next := ctx.beta.rowSlice(t + 1)
		scale := ctx.scaleFactor[t]
		for l := 0; l < L; l++ {
			var sum float64
			for j := 0; j < L; j++ {
				sum += ctx.expTrans.at(l, j) * ctx.expState.at(t+1, j) * next[j]
			}
			cur[l] = scale * sum
		}
	}

	logNorm := 0.0
	for t := 0; t < T; t++ {
		logNorm -= math.Log(ctx.scaleFactor[t])
	}
	ctx.logNorm = logNorm

	return nil
}

// scaleColumn normalizes alpha's row t to sum to 1 and records the
// reciprocal normalizer in scale_factor[t]. A zero total is a fatal
// arithmetic error (spec §7): the instance has zero probability under the
// current weights.
func scaleColumn(ctx *Context, t int) error {
	row := ctx.alpha.rowSlice(t)[:ctx.numLabels]
	total := floats.Sum(row)
	if total == 0 {
		return ErrZeroScaleFactor
	}
	scale := 1 / total
	floats.Scale(scale, row)
	ctx.scaleFactor[t] = scale

	return nil
}

// chainMarginals fills mexp_state and mexp_trans from alpha/beta/scale,
// per spec §4.1.
func chainMarginals(ctx *Context) error {
	T, L := ctx.numItems, ctx.numLabels
	ctx.mexpTrans.zero()

	for t := 0; t < T; t++ {
		for l := 0; l < L; l++ {
			ctx.mexpState.set(t, l, ctx.alpha.at(t, l)*ctx.beta.at(t, l)/ctx.scaleFactor[t])
		}
	}

	for t := 0; t < T-1; t++ {
		for i := 0; i < L; i++ {
			ai := ctx.alpha.at(t, i)
			if ai == 0 {
				continue
			}
			for j := 0; j < L; j++ {
				contrib := ai * ctx.expTrans.at(i, j) * ctx.expState.at(t+1, j) * ctx.beta.at(t+1, j)
				ctx.AddMExpTrans(i, j, contrib)
			}
		}
	}

	return nil
}

// chainViterbi runs the max-product (log-space) analogue of chainAlphaBeta,
// recording back-pointers and breaking ties toward the smaller predecessor
// id (spec §4.1).
func chainViterbi(ctx *Context, pathOut []int) (float64, error) {
	if ctx.numItems == 0 {
		return 0, ErrNoInstance
	}
	if len(pathOut) != ctx.numItems {
		return 0, ErrBadLabelPath
	}
	T, L := ctx.numItems, ctx.numLabels

	// delta[t,l] is dedicated Viterbi scratch, kept separate from alpha so
	// decoding never clobbers a cached forward pass (no scaling needed:
	// Viterbi is scale-invariant since only argmax matters).
	delta := ctx.delta
	for l := 0; l < L; l++ {
		delta.set(0, l, ctx.state.at(0, l))
	}
	for t := 1; t < T; t++ {
		for l := 0; l < L; l++ {
			best := math.Inf(-1)
			bestI := 0
			for i := 0; i < L; i++ {
				score := delta.at(t-1, i) + ctx.trans.at(i, l)
				if score > best {
					best = score
					bestI = i
				}
			}
			delta.set(t, l, best+ctx.state.at(t, l))
			ctx.backEdge.set(t, l, bestI)
		}
	}

	bestLast := math.Inf(-1)
	bestLabel := 0
	for l := 0; l < L; l++ {
		v := delta.at(T-1, l)
		if v > bestLast {
			bestLast = v
			bestLabel = l
		}
	}

	pathOut[T-1] = bestLabel
	for t := T - 1; t > 0; t-- {
		pathOut[t-1] = ctx.backEdge.at(t, pathOut[t])
	}

	return bestLast, nil
}

// chainPathScore sums state scores plus chain transition scores for a
// given label sequence (spec §4.1 "Path score").
func chainPathScore(ctx *Context, labels []int) (float64, error) {
	if len(labels) != ctx.numItems {
		return 0, ErrBadLabelPath
	}
	total := ctx.state.at(0, labels[0])
	for t := 1; t < ctx.numItems; t++ {
		total += ctx.trans.at(labels[t-1], labels[t]) + ctx.state.at(t, labels[t])
	}

	return total, nil
}
