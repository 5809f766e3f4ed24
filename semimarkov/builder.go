package semimarkov

import "strconv"

// Build constructs the canonical suffix automaton for a semi-Markov model
// with numLabels output labels and the given Config.
//
// Stage 1 (Validate): numLabels > 0, MaxOrder >= 1, MaxSegLen == Unbounded
// or >= 1.
// Stage 2 (Enumerate forward states): breadth-first over label suffixes of
// length 0..MaxOrder-1, assigning dense ids in discovery order so state 0
// is always the empty suffix.
// Stage 3 (Enumerate transitions/patterns): for each state and label,
// build the extended suffix (the pattern) and its trimmed successor state,
// deduplicating patterns that represent the same suffix.
// Complexity: O(L^MaxOrder) states and patterns; MaxOrder is expected small
// (1-3) in practice, matching the spec's framing of higher-order semi-Markov
// transition features.
func Build(numLabels int, cfg Config) (*Tables, error) {
	if numLabels <= 0 {
		return nil, ErrInvalidNumLabels
	}
	if cfg.MaxOrder < 1 {
		return nil, ErrInvalidMaxOrder
	}
	if cfg.MaxSegLen != Unbounded && cfg.MaxSegLen < 1 {
		return nil, ErrInvalidMaxSegLen
	}

	t := &Tables{numLabels: numLabels, cfg: cfg}

	// Stage 2: BFS-enumerate forward states by label suffix, oldest label first.
	stateIndex := make(map[string]int)
	var suffixes [][]int
	enqueue := func(suffix []int) int {
		key := suffixKey(suffix)
		if id, ok := stateIndex[key]; ok {
			return id
		}
		id := len(suffixes)
		stateIndex[key] = id
		suffixes = append(suffixes, suffix)

		return id
	}
	enqueue(nil) // state 0: empty suffix
	for frontier := 0; frontier < len(suffixes); frontier++ {
		suffix := suffixes[frontier]
		if len(suffix) >= cfg.MaxOrder-1 {
			continue // states only hold suffixes up to length MaxOrder-1
		}
		for l := 0; l < numLabels; l++ {
			enqueue(appendLabel(suffix, l))
		}
	}
	t.forwardSuffix = suffixes

	// Stage 3: transitions and patterns.
	patternIndex := make(map[string]int)
	var patternSuffixes [][]int
	var patternLast []int
	internPattern := func(suffix []int) int {
		key := suffixKey(suffix)
		if id, ok := patternIndex[key]; ok {
			return id
		}
		id := len(patternSuffixes)
		patternIndex[key] = id
		patternSuffixes = append(patternSuffixes, suffix)
		patternLast = append(patternLast, suffix[len(suffix)-1])

		return id
	}

	t.forwardNext = make([][]int, len(suffixes))
	t.forwardPattern = make([][]int, len(suffixes))
	for s, suffix := range suffixes {
		t.forwardNext[s] = make([]int, numLabels)
		t.forwardPattern[s] = make([]int, numLabels)
		for l := 0; l < numLabels; l++ {
			extended := appendLabel(suffix, l)
			pid := internPattern(extended)
			trimmed := trimToOrder(extended, cfg.MaxOrder-1)
			// trimmed always names a state enumerated in stage 2, since that
			// stage covers every suffix of length 0..MaxOrder-1.
			next := stateIndex[suffixKey(trimmed)]
			t.forwardNext[s][l] = next
			t.forwardPattern[s][l] = pid
		}
	}
	t.patternSuffix = patternSuffixes
	t.patternLastLabel = patternLast

	// Segment lengths: 1..MaxSegLen, or a generous default cap when unbounded
	// (the numeric context clamps further by the instance's own length).
	segCap := cfg.MaxSegLen
	if segCap == Unbounded {
		segCap = 64
	}
	t.segLens = make([]int, segCap)
	for i := range t.segLens {
		t.segLens[i] = i + 1
	}

	return t, nil
}

// suffixKey encodes a label suffix into a map key deterministically.
func suffixKey(suffix []int) string {
	if len(suffix) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(suffix)*4)
	for i, l := range suffix {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(l), 10)
	}

	return string(buf)
}

// appendLabel returns a fresh slice equal to suffix with l appended.
func appendLabel(suffix []int, l int) []int {
	out := make([]int, len(suffix)+1)
	copy(out, suffix)
	out[len(suffix)] = l

	return out
}

// trimToOrder drops labels from the front of suffix until its length is
// at most maxLen (maxLen may be 0, the empty suffix).
func trimToOrder(suffix []int, maxLen int) []int {
	if maxLen < 0 {
		maxLen = 0
	}
	if len(suffix) <= maxLen {
		return suffix
	}

	return suffix[len(suffix)-maxLen:]
}
