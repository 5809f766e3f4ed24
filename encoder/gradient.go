package encoder

import (
	"fmt"

	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/feature"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/katalvlaran/crflat/semimarkov"
	"golang.org/x/sync/errgroup"
)

// ObjectiveAndGradients computes −log P(y|x) and its gradient for the
// currently set instance (spec §6's objective_and_gradients), raising to
// MARGINAL if needed.
func (e *Encoder) ObjectiveAndGradients(gOut []float64) (float64, error) {
	if err := e.raiseTo(LevelMarginal); err != nil {
		return 0, err
	}
	if len(gOut) != e.idx.NumFeatures() {
		return 0, fmt.Errorf("encoder.ObjectiveAndGradients: %w", ErrInvalidInstance)
	}
	if e.inst.Labels == nil {
		return 0, fmt.Errorf("encoder.ObjectiveAndGradients: %w", ErrInvalidInstance)
	}

	score, err := e.ctx.PathScore(e.inst.Labels)
	if err != nil {
		return 0, fmt.Errorf("encoder.ObjectiveAndGradients: %w", err)
	}
	loss := e.ctx.LogNorm() - score

	addMarginalContribution(e.ctx, e.idx, e.inst, e.scale, gOut)
	if err := walkPathFeatures(e.idx, e.variant, e.sm, e.inst, e.inst.Labels, func(fid int, value float64) {
		gOut[fid] -= value * e.scale
	}); err != nil {
		return 0, fmt.Errorf("encoder.ObjectiveAndGradients: %w", err)
	}

	return loss, nil
}

// addMarginalContribution adds the model-expectation (positive) side of
// the gradient: marginal_probability·value·scale for every active state
// feature, marginal_probability·scale for every active transition feature
// (spec §4.3's "Gradient assembly").
func addMarginalContribution(ctx *numeric.Context, idx *feature.Index, inst *dataset.Instance, scale float64, gOut []float64) {
	for t, item := range inst.Items {
		for _, attr := range item.Attrs {
			for _, fid := range idx.AttrFeatures(attr.ID) {
				d, _ := idx.Descriptor(fid)
				gOut[fid] += ctx.MExpState(t, d.Dst) * attr.Value * scale
			}
		}
	}
	rows := ctx.TransRows()
	for i := 0; i < rows; i++ {
		for _, fid := range idx.SourceFeatures(i) {
			d, _ := idx.Descriptor(fid)
			gOut[fid] += ctx.MExpTrans(i, d.Dst) * scale
		}
	}
}

// ObjectiveAndGradientsBatch sums loss and gradient over every instance in
// ds under weights w (scale fixed at 1.0 — the batch signature of spec §6
// carries no per-call scale), bypassing the level cache entirely (spec
// §4.3: "performs its own reset-per-instance loop"). When
// Options.Concurrency > 1, instances are sharded across that many workers,
// each owning a private numeric.Context (spec §5: "each thread owns its
// own NumericContext"); an errgroup.Group joins the shards and the caller
// reduces their partial sums — no shared mutable state during the fan-out.
func (e *Encoder) ObjectiveAndGradientsBatch(ds *dataset.Dataset, w []float64, gOut []float64) (float64, error) {
	if e.idx == nil {
		return 0, fmt.Errorf("encoder.ObjectiveAndGradientsBatch: %w", ErrNotInitialized)
	}
	if len(w) != e.idx.NumFeatures() || len(gOut) != e.idx.NumFeatures() {
		return 0, fmt.Errorf("encoder.ObjectiveAndGradientsBatch: %w", ErrInvalidInstance)
	}
	for i := range gOut {
		gOut[i] = 0
	}
	n := ds.Len()
	if n == 0 {
		return 0, nil
	}

	concurrency := e.opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > n {
		concurrency = n
	}
	shardSize := (n + concurrency - 1) / concurrency

	partialLoss := make([]float64, concurrency)
	partialGrad := make([][]float64, concurrency)

	var g errgroup.Group
	for s := 0; s < concurrency; s++ {
		s := s
		start := s * shardSize
		end := start + shardSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			ctx, err := e.newWorkerContext()
			if err != nil {
				return err
			}
			grad := make([]float64, e.idx.NumFeatures())
			var loss float64
			for i := start; i < end; i++ {
				inst := &ds.Instances[i]
				l, err := computeInstanceLossGrad(ctx, e.idx, e.variant, e.sm, inst, w, 1.0, grad)
				if err != nil {
					return fmt.Errorf("encoder.ObjectiveAndGradientsBatch[%d]: %w", i, err)
				}
				loss += l
			}
			partialLoss[s] = loss
			partialGrad[s] = grad

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var totalLoss float64
	for s := 0; s < concurrency; s++ {
		totalLoss += partialLoss[s]
		for fid, v := range partialGrad[s] {
			gOut[fid] += v
		}
	}

	return totalLoss, nil
}

// newWorkerContext builds a fresh NumericContext matching this Encoder's
// variant and dimensions, for a batch worker's exclusive use.
func (e *Encoder) newWorkerContext() (*numeric.Context, error) {
	switch e.variant {
	case numeric.Chain:
		return numeric.NewChainContext(e.idx.NumLabels(), 8)
	case numeric.Tree:
		return numeric.NewTreeContext(e.idx.NumLabels(), 8)
	case numeric.SemiMarkov:
		return numeric.NewSemiMarkovContext(e.sm, semimarkov.Config{MaxOrder: e.opts.MaxOrder, MaxSegLen: e.opts.MaxSegLen}, 8)
	default:
		return nil, ErrUnsupportedVariant
	}
}

// computeInstanceLossGrad runs the full WEIGHT->MARGINAL pipeline for one
// instance on ctx and accumulates its loss/gradient contribution into
// gOut, per spec §4.3's per-instance gradient assembly. Used by the batch
// path, which rebuilds from scratch every instance rather than caching.
func computeInstanceLossGrad(ctx *numeric.Context, idx *feature.Index, variant numeric.Variant, sm *semimarkov.Tables, inst *dataset.Instance, w []float64, scale float64, gOut []float64) (float64, error) {
	if inst.Labels == nil {
		return 0, ErrInvalidInstance
	}
	if err := ctx.SetNumItems(inst.NumItems()); err != nil {
		return 0, err
	}
	if variant == numeric.Tree {
		if err := ctx.SetTree(inst.Tree); err != nil {
			return 0, err
		}
	}
	ctx.Reset(numeric.ResetTrans)
	if err := idx.AssembleTrans(ctx, w, scale); err != nil {
		return 0, err
	}
	ctx.Reset(numeric.ResetState)
	if err := idx.AssembleState(ctx, inst, w, scale); err != nil {
		return 0, err
	}
	ctx.Exponentiate()
	if err := ctx.ComputeAlphaBeta(); err != nil {
		return 0, err
	}
	if err := ctx.ComputeMarginals(); err != nil {
		return 0, err
	}

	score, err := ctx.PathScore(inst.Labels)
	if err != nil {
		return 0, err
	}
	loss := ctx.LogNorm() - score

	addMarginalContribution(ctx, idx, inst, scale, gOut)
	if err := walkPathFeatures(idx, variant, sm, inst, inst.Labels, func(fid int, value float64) {
		gOut[fid] -= value * scale
	}); err != nil {
		return 0, err
	}

	return loss, nil
}
