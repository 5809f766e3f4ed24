package encoder

import (
	"sort"

	"github.com/katalvlaran/crflat/dataset"
	"github.com/katalvlaran/crflat/feature"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/katalvlaran/crflat/semimarkov"
)

// sortedKeys returns freq's keys in ascending (first, then second)
// order, so descriptor generation (and therefore feature ids) is
// deterministic across runs regardless of Go's randomized map iteration.
func sortedKeys(freq map[[2]int]float64) [][2]int {
	keys := make([][2]int, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}

		return keys[i][1] < keys[j][1]
	})

	return keys
}

// generateDescriptors is Initialize's built-in feature generator (spec
// §6's "generates features via the external generator"). The real
// generator is named a non-goal external collaborator (spec §1b); this is
// the core's own minimal, self-contained enumeration — observed
// (attribute, label) and adjacent-label co-occurrences, optionally
// widened to every combination by PossibleStates/PossibleTransitions —
// sufficient to drive and test the encoder end to end, in the same spirit
// as semimarkov.Build's "own minimal construction" of its tables.
func generateDescriptors(ds *dataset.Dataset, variant numeric.Variant, opts Options, sm *semimarkov.Tables) ([]feature.Descriptor, int, int, error) {
	numAttrs, numLabels, err := scanDimensions(ds)
	if err != nil {
		return nil, 0, 0, err
	}

	stateFreq := make(map[[2]int]float64)
	transFreq := make(map[[2]int]float64)

	for i := range ds.Instances {
		inst := &ds.Instances[i]
		if err := accumulateState(inst, stateFreq); err != nil {
			return nil, 0, 0, err
		}
		switch variant {
		case numeric.Chain:
			accumulateChainTrans(inst, transFreq)
		case numeric.Tree:
			if err := accumulateTreeTrans(inst, transFreq); err != nil {
				return nil, 0, 0, err
			}
		case numeric.SemiMarkov:
			if err := accumulateSemiMarkovTrans(inst, sm, transFreq); err != nil {
				return nil, 0, 0, err
			}
		}
	}

	var descs []feature.Descriptor
	if opts.PossibleStates {
		for a := 0; a < numAttrs; a++ {
			for l := 0; l < numLabels; l++ {
				freq := stateFreq[[2]int{a, l}]
				if freq < opts.MinFreq {
					continue
				}
				descs = append(descs, feature.Descriptor{Kind: feature.State, Src: a, Dst: l, ObservedFreq: freq})
			}
		}
	} else {
		for _, key := range sortedKeys(stateFreq) {
			freq := stateFreq[key]
			if freq < opts.MinFreq {
				continue
			}
			descs = append(descs, feature.Descriptor{Kind: feature.State, Src: key[0], Dst: key[1], ObservedFreq: freq})
		}
	}

	if opts.PossibleTransitions {
		descs = append(descs, possibleTransitionDescriptors(variant, numLabels, sm, transFreq, opts.MinFreq)...)
	} else {
		for _, key := range sortedKeys(transFreq) {
			freq := transFreq[key]
			if freq < opts.MinFreq {
				continue
			}
			descs = append(descs, feature.Descriptor{Kind: feature.Transition, Src: key[0], Dst: key[1], ObservedFreq: freq})
		}
	}

	return descs, numAttrs, numLabels, nil
}

// scanDimensions finds A (1 + max attribute id) and L (1 + max label id)
// across the dataset, requiring every instance to carry gold labels —
// Initialize trains from labeled data (spec §4.2 "built once per training
// run").
func scanDimensions(ds *dataset.Dataset) (numAttrs, numLabels int, err error) {
	maxAttr, maxLabel := -1, -1
	for i := range ds.Instances {
		inst := &ds.Instances[i]
		if len(inst.Items) == 0 {
			return 0, 0, ErrInvalidInstance
		}
		if len(inst.Labels) != len(inst.Items) {
			return 0, 0, ErrInvalidInstance
		}
		for _, item := range inst.Items {
			for _, attr := range item.Attrs {
				if attr.ID > maxAttr {
					maxAttr = attr.ID
				}
			}
		}
		for _, l := range inst.Labels {
			if l > maxLabel {
				maxLabel = l
			}
		}
	}
	if maxLabel < 0 {
		return 0, 0, ErrInvalidInstance
	}

	return maxAttr + 1, maxLabel + 1, nil
}

// accumulateState sums attribute values into stateFreq[attrID,label] over
// every item of inst, keyed by its gold label.
func accumulateState(inst *dataset.Instance, stateFreq map[[2]int]float64) error {
	for t, item := range inst.Items {
		label := inst.Labels[t]
		for _, attr := range item.Attrs {
			stateFreq[[2]int{attr.ID, label}] += attr.Value
		}
	}

	return nil
}

// accumulateChainTrans counts adjacent (prevLabel, curLabel) occurrences.
func accumulateChainTrans(inst *dataset.Instance, transFreq map[[2]int]float64) {
	for t := 1; t < len(inst.Labels); t++ {
		transFreq[[2]int{inst.Labels[t-1], inst.Labels[t]}]++
	}
}

// accumulateTreeTrans counts (parentLabel, childLabel) edges, matching
// numeric.treePathScore's trans[parentLabel, childLabel] orientation.
func accumulateTreeTrans(inst *dataset.Instance, transFreq map[[2]int]float64) error {
	if inst.Tree == nil {
		return ErrInvalidInstance
	}
	for c, node := range inst.Tree {
		if node.Parent == dataset.NoParent {
			continue
		}
		transFreq[[2]int{inst.Labels[node.Parent], inst.Labels[c]}]++
	}

	return nil
}

// accumulateSemiMarkovTrans induces the gold segmentation (maximal runs of
// identical labels, the same convention numeric.smPathScore uses) and
// walks it through sm's forward-state automaton, counting (state,pattern)
// occurrences.
func accumulateSemiMarkovTrans(inst *dataset.Instance, sm *semimarkov.Tables, transFreq map[[2]int]float64) error {
	if sm == nil {
		return ErrUnsupportedVariant
	}
	labels := inst.Labels
	state := sm.InitialForwardState()
	i := 0
	for i < len(labels) {
		j := i + 1
		for j < len(labels) && labels[j] == labels[i] {
			j++
		}
		next, pattern, err := sm.ForwardTransition(state, labels[i])
		if err != nil {
			return err
		}
		transFreq[[2]int{state, pattern}]++
		state = next
		i = j
	}

	return nil
}

// possibleTransitionDescriptors enumerates every structurally valid
// (src, dst) transition pair for the variant, merging in any observed
// frequency already counted.
func possibleTransitionDescriptors(variant numeric.Variant, numLabels int, sm *semimarkov.Tables, transFreq map[[2]int]float64, minFreq float64) []feature.Descriptor {
	var descs []feature.Descriptor
	switch variant {
	case numeric.Chain, numeric.Tree:
		for i := 0; i < numLabels; i++ {
			for j := 0; j < numLabels; j++ {
				freq := transFreq[[2]int{i, j}]
				if freq < minFreq {
					continue
				}
				descs = append(descs, feature.Descriptor{Kind: feature.Transition, Src: i, Dst: j, ObservedFreq: freq})
			}
		}
	case numeric.SemiMarkov:
		seen := make(map[[2]int]bool)
		for s := 0; s < sm.NumForwardStates(); s++ {
			for l := 0; l < numLabels; l++ {
				next, pattern, err := sm.ForwardTransition(s, l)
				_ = next
				if err != nil {
					continue
				}
				key := [2]int{s, pattern}
				if seen[key] {
					continue
				}
				seen[key] = true
				freq := transFreq[key]
				if freq < minFreq {
					continue
				}
				descs = append(descs, feature.Descriptor{Kind: feature.Transition, Src: s, Dst: pattern, ObservedFreq: freq})
			}
		}
	}

	return descs
}
