// Package numeric implements the scaled forward-backward inference kernel
// (NumericContext in spec terms): per-instance scratch matrices and the
// scaled F/B, Viterbi, marginal, and path-score operations, parameterized
// over three graph topologies via a dispatch table chosen once per Context.
package numeric

import "github.com/katalvlaran/crflat/dataset"
import "github.com/katalvlaran/crflat/semimarkov"

// Variant names the graph topology a Context is built for. Fixed at
// construction; every operation not valid for the active Variant returns
// ErrUnsupportedVariant.
type Variant int

const (
	Chain Variant = iota
	Tree
	SemiMarkov
)

// String renders the variant's four-byte type tag used by the model format.
func (v Variant) String() string {
	switch v {
	case Chain:
		return "chn1"
	case Tree:
		return "tre1"
	case SemiMarkov:
		return "smc1"
	default:
		return "????"
	}
}

// ResetFlag selects which matrices Reset zeroes.
type ResetFlag int

const (
	// ResetState zeroes only the state-score matrix.
	ResetState ResetFlag = 1 << iota
	// ResetTrans zeroes only the transition-score matrix.
	ResetTrans
	// ResetAll zeroes every scratch matrix, including scale factors, alpha,
	// beta, child_alpha, and log_norm; the Viterbi delta scratch is not
	// cleared.
	ResetAll = ResetState | ResetTrans | 1<<30
)

// variantOps is the per-Context dispatch table: six function fields chosen
// once by wireOps when newContext builds the Context, per spec §9's "choose once per operation" design note. No
// switch on Variant occurs inside any hot inner loop.
type variantOps struct {
	alphaBeta    func(ctx *Context) error
	viterbi      func(ctx *Context, pathOut []int) (float64, error)
	marginals    func(ctx *Context) error
	pathScore    func(ctx *Context, labels []int) (float64, error)
	reset        func(ctx *Context, flags ResetFlag)
	exponentiate func(ctx *Context)
}

// Context is the spec's NumericContext: all per-instance scratch for one
// Encoder, reused across instances and grown monotonically.
type Context struct {
	variant   Variant
	numLabels int // L
	capItems  int // high-water mark driving allocation
	numItems  int // T, current instance

	alphaCols int // num_forward_states (== numLabels for chain/tree)
	betaCols  int // num_backward_states (== numLabels for chain/tree)

	state *matrixF64 // T x L
	trans *matrixF64 // L x L (chain/tree) or forward_states x patterns (semi-Markov)

	expState *matrixF64 // same shape as state; built lazily
	expTrans *matrixF64 // same shape as trans; chain/tree only (nil for semi-Markov)

	alpha       *matrixF64 // T x alphaCols
	beta        *matrixF64 // T x betaCols
	scaleFactor []float64  // T; unused (left at 0) for semi-Markov's log-space path
	childAlpha  *matrixF64 // T x L; tree only
	delta       *matrixF64 // T x alphaCols; Viterbi scratch, kept separate from alpha
	// so that decoding never clobbers a cached forward pass (Level idempotence, spec §8 inv. 5)

	mexpState *matrixF64 // T x L
	mexpTrans *matrixF64 // same shape as trans

	backEdge  *matrixInt // T x alphaCols
	backEnd   *matrixInt // T x alphaCols; semi-Markov only: segment start row
	backLabel *matrixInt // T x alphaCols; semi-Markov only: segment label
	segPrefix *matrixF64 // (T+1) x L; semi-Markov only: per-label state-score prefix sums

	logNorm float64

	tree []dataset.TreeNode    // current instance's tree edges; tree variant only
	sm   *semimarkov.Tables    // fixed for the Context's lifetime; semi-Markov only
	smCfg semimarkov.Config

	ops variantOps
}

// NumLabels returns L.
func (ctx *Context) NumLabels() int { return ctx.numLabels }

// NumItems returns T, the current instance's item count.
func (ctx *Context) NumItems() int { return ctx.numItems }

// CapItems returns the current high-water allocation capacity.
func (ctx *Context) CapItems() int { return ctx.capItems }

// Variant returns the graph topology this Context was built for.
func (ctx *Context) Variant() Variant { return ctx.variant }

// LogNorm returns log_norm, valid after AlphaBeta has been computed.
func (ctx *Context) LogNorm() float64 { return ctx.logNorm }

// AlphaCols returns the row width of the alpha matrix (num_forward_states).
func (ctx *Context) AlphaCols() int { return ctx.alphaCols }
