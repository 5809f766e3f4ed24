package encoder

import (
	"fmt"

	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/feature"
	"github.com/katalvlaran/crflat/model"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/katalvlaran/crflat/semimarkov"
)

// Encoder is the level-cached façade of spec §4.3: a FeatureIndex, a
// NumericContext, a borrowed weight vector and instance, and the level
// that records how much of that work is already done.
type Encoder struct {
	variant numeric.Variant
	opts    Options
	optsErr error // set by New when the initial options are invalid; surfaces at Initialize

	idx *feature.Index
	ctx *numeric.Context
	sm  *semimarkov.Tables

	w     []float64
	scale float64
	inst  *dataset.Instance

	level Level
}

// New constructs an Encoder for the given graph topology. Option errors
// are not returned here (matching the fixed signature of spec §6); they
// are stored and surface on the first call that needs them (Initialize).
func New(variant numeric.Variant, opts ...Option) *Encoder {
	o := defaultOptions()
	err := o.apply(opts...)

	return &Encoder{variant: variant, opts: o, optsErr: err, level: LevelNone}
}

// ExchangeOptions applies opts (if any) and returns the Encoder's current
// Options. A bad option in opts is stored (surfacing at the next
// Initialize, same convention as New) and leaves the current Options
// unchanged.
func (e *Encoder) ExchangeOptions(opts ...Option) Options {
	if len(opts) > 0 {
		working := e.opts
		if err := working.apply(opts...); err != nil {
			e.optsErr = err
		} else {
			e.opts = working
		}
	}

	return e.opts
}

// Initialize builds the FeatureIndex from ds via the built-in generator
// (generateDescriptors), allocates the NumericContext, and returns the
// resulting feature count (spec §6's initialize(variant, dataset)).
func (e *Encoder) Initialize(ds *dataset.Dataset) (int, error) {
	if e.optsErr != nil {
		err := e.optsErr
		e.optsErr = nil

		return 0, err
	}
	if ds.Len() == 0 {
		return 0, fmt.Errorf("encoder.Initialize: %w", ErrInvalidInstance)
	}

	var sm *semimarkov.Tables
	if e.variant == numeric.SemiMarkov {
		labels, err := maxLabel(ds)
		if err != nil {
			return 0, fmt.Errorf("encoder.Initialize: %w", err)
		}
		sm, err = semimarkov.Build(labels, semimarkov.Config{MaxOrder: e.opts.MaxOrder, MaxSegLen: e.opts.MaxSegLen})
		if err != nil {
			return 0, fmt.Errorf("encoder.Initialize: %w", err)
		}
	}

	descs, numAttrs, numLabels, err := generateDescriptors(ds, e.variant, e.opts, sm)
	if err != nil {
		return 0, fmt.Errorf("encoder.Initialize: %w", err)
	}
	idx, err := feature.NewIndex(descs, numAttrs, numLabels)
	if err != nil {
		return 0, fmt.Errorf("encoder.Initialize: %w", err)
	}

	var ctx *numeric.Context
	switch e.variant {
	case numeric.Chain:
		ctx, err = numeric.NewChainContext(numLabels, ds.Instances[0].NumItems())
	case numeric.Tree:
		ctx, err = numeric.NewTreeContext(numLabels, ds.Instances[0].NumItems())
	case numeric.SemiMarkov:
		ctx, err = numeric.NewSemiMarkovContext(sm, semimarkov.Config{MaxOrder: e.opts.MaxOrder, MaxSegLen: e.opts.MaxSegLen}, ds.Instances[0].NumItems())
	default:
		return 0, fmt.Errorf("encoder.Initialize: %w", ErrUnsupportedVariant)
	}
	if err != nil {
		return 0, fmt.Errorf("encoder.Initialize: %w", err)
	}

	e.idx = idx
	e.ctx = ctx
	e.sm = sm
	e.level = LevelNone

	return idx.NumFeatures(), nil
}

// maxLabel scans ds for 1 + the maximum gold label id, for sizing the
// semi-Markov tables before descriptors are generated.
func maxLabel(ds *dataset.Dataset) (int, error) {
	max := -1
	for i := range ds.Instances {
		for _, l := range ds.Instances[i].Labels {
			if l > max {
				max = l
			}
		}
	}
	if max < 0 {
		return 0, ErrInvalidInstance
	}

	return max + 1, nil
}

// SetWeights publishes the weight vector (spec §6's set_weights), lowering
// the level to NONE so the next operation rebuilds trans from scratch
// (spec §4.3: "resets level to the level below WEIGHT").
func (e *Encoder) SetWeights(w []float64, scale float64) error {
	if e.idx == nil {
		return fmt.Errorf("encoder.SetWeights: %w", ErrNotInitialized)
	}
	if len(w) != e.idx.NumFeatures() {
		return fmt.Errorf("encoder.SetWeights: %w", ErrInvalidInstance)
	}
	e.w = w
	e.scale = scale
	e.level = LevelNone

	return nil
}

// SetInstance publishes the current instance (spec §6's set_instance),
// lowering the level to WEIGHT if it was higher (spec §4.3: "resets level
// to below INSTANCE") while preserving any already-cached WEIGHT work.
func (e *Encoder) SetInstance(inst *dataset.Instance) error {
	if e.ctx == nil {
		return fmt.Errorf("encoder.SetInstance: %w", ErrNotInitialized)
	}
	if inst == nil || len(inst.Items) == 0 {
		return fmt.Errorf("encoder.SetInstance: %w", ErrInvalidInstance)
	}
	if e.variant == numeric.Tree && inst.Tree == nil {
		return fmt.Errorf("encoder.SetInstance: %w", ErrInvalidInstance)
	}
	if err := e.ctx.SetNumItems(inst.NumItems()); err != nil {
		return fmt.Errorf("encoder.SetInstance: %w", err)
	}
	if e.variant == numeric.Tree {
		if err := e.ctx.SetTree(inst.Tree); err != nil {
			return fmt.Errorf("encoder.SetInstance: %w", err)
		}
	}
	e.inst = inst
	if e.level > LevelWeight {
		e.level = LevelWeight
	}

	return nil
}

// raiseTo performs only the level transitions of spec §4.3's table that
// have not already run, in order: * -> WEIGHT -> INSTANCE -> ALPHABETA ->
// MARGINAL. Calling it repeatedly with the same target and no intervening
// SetWeights/SetInstance does no work (spec §8 invariant 5).
func (e *Encoder) raiseTo(target Level) error {
	if e.idx == nil || e.ctx == nil {
		return fmt.Errorf("encoder.raiseTo: %w", ErrNotInitialized)
	}
	if e.level < LevelWeight && target >= LevelWeight {
		if e.w == nil {
			return fmt.Errorf("encoder.raiseTo: %w", ErrNoWeights)
		}
		e.ctx.Reset(numeric.ResetTrans)
		if err := e.idx.AssembleTrans(e.ctx, e.w, e.scale); err != nil {
			return fmt.Errorf("encoder.raiseTo(WEIGHT): %w", err)
		}
		e.level = LevelWeight
	}
	if e.level < LevelInstance && target >= LevelInstance {
		if e.inst == nil {
			return fmt.Errorf("encoder.raiseTo: %w", ErrNoInstance)
		}
		e.ctx.Reset(numeric.ResetState)
		if err := e.idx.AssembleState(e.ctx, e.inst, e.w, e.scale); err != nil {
			return fmt.Errorf("encoder.raiseTo(INSTANCE): %w", err)
		}
		e.level = LevelInstance
	}
	if e.level < LevelAlphaBeta && target >= LevelAlphaBeta {
		e.ctx.Exponentiate()
		if err := e.ctx.ComputeAlphaBeta(); err != nil {
			return fmt.Errorf("encoder.raiseTo(ALPHABETA): %w", err)
		}
		e.level = LevelAlphaBeta
	}
	if e.level < LevelMarginal && target >= LevelMarginal {
		if err := e.ctx.ComputeMarginals(); err != nil {
			return fmt.Errorf("encoder.raiseTo(MARGINAL): %w", err)
		}
		e.level = LevelMarginal
	}

	return nil
}

// Score returns the total path score of a given label sequence (spec §6's
// score(path)); requires only level INSTANCE (state/trans, not alpha/beta).
func (e *Encoder) Score(path []int) (float64, error) {
	if err := e.raiseTo(LevelInstance); err != nil {
		return 0, err
	}
	v, err := e.ctx.PathScore(path)
	if err != nil {
		return 0, fmt.Errorf("encoder.Score: %w", err)
	}

	return v, nil
}

// Viterbi finds the highest-scoring label path (spec §6's viterbi(path_out)).
func (e *Encoder) Viterbi(pathOut []int) (float64, error) {
	if err := e.raiseTo(LevelInstance); err != nil {
		return 0, err
	}
	v, err := e.ctx.Viterbi(pathOut)
	if err != nil {
		return 0, fmt.Errorf("encoder.Viterbi: %w", err)
	}

	return v, nil
}

// PartitionFactor returns log_norm, raising to ALPHABETA if needed (spec
// §6's partition_factor()).
func (e *Encoder) PartitionFactor() (float64, error) {
	if err := e.raiseTo(LevelAlphaBeta); err != nil {
		return 0, err
	}

	return e.ctx.LogNorm(), nil
}

// FeaturesOnPath enumerates (feature_id, value) pairs active on a given
// label sequence for inst (spec §6's features_on_path); the instance set
// by SetInstance is not consulted. For STATE features it visits every
// (attribute, value) present on inst whose destination label matches path;
// for TRANSITION features it visits every adjacent edge the variant
// induces (chain: consecutive items; tree: parent/child edges;
// semi-Markov: the segmentation path induces over forward states).
func (e *Encoder) FeaturesOnPath(inst *dataset.Instance, path []int, cb func(featureID int, value float64)) error {
	if e.idx == nil {
		return fmt.Errorf("encoder.FeaturesOnPath: %w", ErrNotInitialized)
	}
	if inst == nil || len(inst.Items) != len(path) {
		return fmt.Errorf("encoder.FeaturesOnPath: %w", ErrInvalidInstance)
	}
	if err := walkPathFeatures(e.idx, e.variant, e.sm, inst, path, cb); err != nil {
		return fmt.Errorf("encoder.FeaturesOnPath: %w", err)
	}

	return nil
}

// SaveModel serializes the current FeatureIndex and weights w to path
// (spec §6's save_model). Dictionaries are a non-goal external collaborator
// (spec §4.4A); SaveModel uses a trivial numeric-string MapDictionary
// (ids stringified) since no string labels/attributes are known to the
// core itself.
func (e *Encoder) SaveModel(path string, w []float64) error {
	if e.idx == nil {
		return fmt.Errorf("encoder.SaveModel: %w", ErrNotInitialized)
	}
	labelDict := model.NewMapDictionary(numericStrings(e.idx.NumLabels()))
	attrDict := model.NewMapDictionary(numericStrings(e.idx.NumAttributes()))

	var smCfg semimarkov.Config
	if e.sm != nil {
		smCfg = semimarkov.Config{MaxOrder: e.opts.MaxOrder, MaxSegLen: e.opts.MaxSegLen}
	}
	wr := model.NewWriter(e.variant, e.idx, w, labelDict, attrDict, e.sm, smCfg)
	if err := wr.WriteFile(path); err != nil {
		return fmt.Errorf("encoder.SaveModel: %w", err)
	}

	return nil
}

// numericStrings renders "0".."n-1" as a dictionary's default entries.
func numericStrings(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%d", i)
	}

	return out
}
