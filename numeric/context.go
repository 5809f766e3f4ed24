package numeric

import "github.com/katalvlaran/crflat/dataset"
import "github.com/katalvlaran/crflat/semimarkov"

// minCapItems is the smallest capacity a freshly constructed Context
// allocates, avoiding repeated tiny reallocations for the first few
// instances of a training run.
const minCapItems = 8

// NewChainContext builds a Context for the ordinary linear-chain variant.
func NewChainContext(numLabels, capItemsHint int) (*Context, error) {
	if numLabels <= 0 {
		return nil, ErrInvalidDimensions
	}

	return newContext(Chain, numLabels, numLabels, numLabels, numLabels, numLabels, capItemsHint)
}

// NewTreeContext builds a Context for the tree-structured variant. The
// tree connecting items is supplied per instance via SetTree.
func NewTreeContext(numLabels, capItemsHint int) (*Context, error) {
	if numLabels <= 0 {
		return nil, ErrInvalidDimensions
	}

	return newContext(Tree, numLabels, numLabels, numLabels, numLabels, numLabels, capItemsHint)
}

// NewSemiMarkovContext builds a Context for the semi-Markov variant. tables
// is fixed for the Context's lifetime (rebuilding it means building a new
// Context).
func NewSemiMarkovContext(tables *semimarkov.Tables, cfg semimarkov.Config, capItemsHint int) (*Context, error) {
	if tables == nil {
		return nil, ErrMissingTables
	}

	ctx, err := newContext(SemiMarkov, tables.NumLabels(), tables.NumForwardStates(), tables.NumBackwardStates(),
		tables.NumForwardStates(), tables.NumPatterns(), capItemsHint)
	if err != nil {
		return nil, err
	}
	ctx.sm = tables
	ctx.smCfg = cfg

	return ctx, nil
}

// newContext allocates every scratch matrix at the given capacity and
// wires the variant's dispatch table.
func newContext(variant Variant, numLabels, alphaCols, betaCols, transRows, transCols, capItemsHint int) (*Context, error) {
	capItems := capItemsHint
	if capItems < minCapItems {
		capItems = minCapItems
	}

	// Semi-Markov's alpha/beta/delta are indexed by segment boundary (0..T
	// inclusive), one more row than the other variants' per-item indexing,
	// so they get an extra row of headroom.
	alphaRows := capItems
	if variant == SemiMarkov {
		alphaRows = capItems + 1
	}

	state, err := newMatrixF64(capItems, numLabels)
	if err != nil {
		return nil, err
	}
	trans, err := newMatrixF64(transRows, transCols)
	if err != nil {
		return nil, err
	}
	expState, err := newMatrixF64(capItems, numLabels)
	if err != nil {
		return nil, err
	}
	alpha, err := newMatrixF64(alphaRows, alphaCols)
	if err != nil {
		return nil, err
	}
	beta, err := newMatrixF64(alphaRows, betaCols)
	if err != nil {
		return nil, err
	}
	mexpState, err := newMatrixF64(capItems, numLabels)
	if err != nil {
		return nil, err
	}
	mexpTrans, err := newMatrixF64(transRows, transCols)
	if err != nil {
		return nil, err
	}
	backEdge, err := newMatrixInt(capItems, alphaCols)
	if err != nil {
		return nil, err
	}
	delta, err := newMatrixF64(alphaRows, alphaCols)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		variant:     variant,
		numLabels:   numLabels,
		capItems:    capItems,
		alphaCols:   alphaCols,
		betaCols:    betaCols,
		state:       state,
		trans:       trans,
		expState:    expState,
		alpha:       alpha,
		beta:        beta,
		scaleFactor: make([]float64, capItems),
		mexpState:   mexpState,
		mexpTrans:   mexpTrans,
		backEdge:    backEdge,
		delta:       delta,
	}

	if variant == Tree {
		childAlpha, err := newMatrixF64(capItems, numLabels)
		if err != nil {
			return nil, err
		}
		ctx.childAlpha = childAlpha
	}

	if variant != SemiMarkov {
		expTrans, err := newMatrixF64(transRows, transCols)
		if err != nil {
			return nil, err
		}
		ctx.expTrans = expTrans
	} else {
		backEnd, err := newMatrixInt(capItems, alphaCols)
		if err != nil {
			return nil, err
		}
		backLabel, err := newMatrixInt(capItems, alphaCols)
		if err != nil {
			return nil, err
		}
		segPrefix, err := newMatrixF64(capItems+1, numLabels)
		if err != nil {
			return nil, err
		}
		ctx.backEnd = backEnd
		ctx.backLabel = backLabel
		ctx.segPrefix = segPrefix
	}

	wireOps(ctx)

	return ctx, nil
}

// wireOps selects the six inference primitives once, per spec §9.
func wireOps(ctx *Context) {
	switch ctx.variant {
	case Chain:
		ctx.ops = variantOps{
			alphaBeta:    chainAlphaBeta,
			viterbi:      chainViterbi,
			marginals:    chainMarginals,
			pathScore:    chainPathScore,
			reset:        defaultReset,
			exponentiate: chainExponentiate,
		}
	case Tree:
		ctx.ops = variantOps{
			alphaBeta:    treeAlphaBeta,
			viterbi:      treeViterbi,
			marginals:    treeMarginals,
			pathScore:    treePathScore,
			reset:        defaultReset,
			exponentiate: chainExponentiate, // exp_state/exp_trans assembly is topology-agnostic
		}
	case SemiMarkov:
		ctx.ops = variantOps{
			alphaBeta:    smAlphaBeta,
			viterbi:      smViterbi,
			marginals:    smMarginals,
			pathScore:    smPathScore,
			reset:        smReset,
			exponentiate: smExponentiate,
		}
	}
}

// SetNumItems establishes T for the next instance, growing capacity
// (doubling) if num_items exceeds cap_items, per spec §4.1's reset policy.
func (ctx *Context) SetNumItems(numItems int) error {
	if numItems <= 0 {
		return ErrNoInstance
	}
	if numItems > ctx.capItems {
		newCap := ctx.capItems
		for newCap < numItems {
			newCap *= 2
		}
		ctx.capItems = newCap
		alphaRows := newCap
		if ctx.variant == SemiMarkov {
			alphaRows = newCap + 1
		}
		ctx.state.growRows(newCap)
		ctx.expState.growRows(newCap)
		ctx.alpha.growRows(alphaRows)
		ctx.beta.growRows(alphaRows)
		ctx.mexpState.growRows(newCap)
		ctx.backEdge.growRows(newCap)
		ctx.delta.growRows(alphaRows)
		if ctx.childAlpha != nil {
			ctx.childAlpha.growRows(newCap)
		}
		if ctx.backEnd != nil {
			ctx.backEnd.growRows(newCap)
		}
		if ctx.backLabel != nil {
			ctx.backLabel.growRows(newCap)
		}
		if ctx.segPrefix != nil {
			ctx.segPrefix.growRows(newCap + 1)
		}
		ctx.scaleFactor = append(ctx.scaleFactor, make([]float64, newCap-len(ctx.scaleFactor))...)
	}
	ctx.numItems = numItems

	return nil
}

// SetTree attaches the current instance's tree edges. Required before
// AlphaBeta/Viterbi/Marginals/PathScore for a Tree-variant Context.
func (ctx *Context) SetTree(tree []dataset.TreeNode) error {
	if ctx.variant != Tree {
		return ErrUnsupportedVariant
	}
	ctx.tree = tree

	return nil
}

// Reset zeroes the matrices named by flags, per spec §9's resolved
// RF_STATE/RF_TRANS/RF_ALL semantics.
func (ctx *Context) Reset(flags ResetFlag) {
	ctx.ops.reset(ctx, flags)
}

// defaultReset implements the spec's resolved reset semantics for
// chain/tree: RF_ALL zeroes everything including scale/alpha/beta/log_norm;
// RF_STATE/RF_TRANS touch only their named matrix.
func defaultReset(ctx *Context, flags ResetFlag) {
	if flags&ResetState != 0 {
		ctx.state.zero()
	}
	if flags&ResetTrans != 0 {
		ctx.trans.zero()
	}
	if flags == ResetAll {
		ctx.expState.zero()
		ctx.expTrans.zero()
		ctx.alpha.zero()
		ctx.beta.zero()
		ctx.mexpState.zero()
		ctx.mexpTrans.zero()
		ctx.backEdge.zero()
		for i := range ctx.scaleFactor {
			ctx.scaleFactor[i] = 0
		}
		if ctx.childAlpha != nil {
			ctx.childAlpha.zero()
		}
		ctx.logNorm = 0
	}
}

// StateAt returns state[t,l].
func (ctx *Context) StateAt(t, l int) float64 { return ctx.state.at(t, l) }

// AddState accumulates amount into state[t,l] (spec §4.1 state-score assembly).
func (ctx *Context) AddState(t, l int, amount float64) { ctx.state.add(t, l, amount) }

// TransAt returns trans[i,j].
func (ctx *Context) TransAt(i, j int) float64 { return ctx.trans.at(i, j) }

// AddTrans accumulates amount into trans[i,j] (spec §4.1 transition-score assembly).
func (ctx *Context) AddTrans(i, j int, amount float64) { ctx.trans.add(i, j, amount) }

// TransRows and TransCols expose the transition matrix's shape, which
// differs by variant (L×L for chain/tree, forward_states×patterns for
// semi-Markov).
func (ctx *Context) TransRows() int { return ctx.trans.rows }
func (ctx *Context) TransCols() int { return ctx.trans.cols }

// Exponentiate builds exp_state and exp_trans from the current state/trans
// matrices for chain/tree; for semi-Markov it is a no-op.
func (ctx *Context) Exponentiate() { ctx.ops.exponentiate(ctx) }

// ComputeAlphaBeta runs the scaled forward-backward recurrence (or its
// semi-Markov log-space analogue) for the active variant.
func (ctx *Context) ComputeAlphaBeta() error { return ctx.ops.alphaBeta(ctx) }

// ComputeMarginals fills mexp_state/mexp_trans from alpha/beta/scale.
func (ctx *Context) ComputeMarginals() error { return ctx.ops.marginals(ctx) }

// Viterbi finds the highest-scoring label path, writing it into pathOut
// (len(pathOut) must equal NumItems), and returns its score.
func (ctx *Context) Viterbi(pathOut []int) (float64, error) { return ctx.ops.viterbi(ctx, pathOut) }

// PathScore returns the total score (state + transition) of a given label
// sequence.
func (ctx *Context) PathScore(labels []int) (float64, error) { return ctx.ops.pathScore(ctx, labels) }

// MExpState returns the state marginal P(label_t == l | x).
func (ctx *Context) MExpState(t, l int) float64 { return ctx.mexpState.at(t, l) }

// MExpTrans returns the transition marginal mexp_trans[i,j].
func (ctx *Context) MExpTrans(i, j int) float64 { return ctx.mexpTrans.at(i, j) }

// AddMExpTrans accumulates into mexp_trans[i,j]; used by the marginal
// recurrences which sum contributions across t.
func (ctx *Context) AddMExpTrans(i, j int, amount float64) { ctx.mexpTrans.add(i, j, amount) }

// SemiMarkovTables returns the Context's fixed table set (nil for
// chain/tree).
func (ctx *Context) SemiMarkovTables() *semimarkov.Tables { return ctx.sm }
