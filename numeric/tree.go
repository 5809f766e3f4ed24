package numeric

import (
	"math"

	"github.com/katalvlaran/crflat/dataset"
)

// postOrder returns the tree's items in post-order (children before their
// parent), per spec §9's resolved traversal-order choice for α.
func postOrder(tree []dataset.TreeNode) []int {
	root := findRoot(tree)
	order := make([]int, 0, len(tree))
	var visit func(int)
	visit = func(n int) {
		for _, c := range tree[n].Children {
			visit(c)
		}
		order = append(order, n)
	}
	visit(root)

	return order
}

// findRoot returns the item index of the tree's root (Parent == NoParent).
// The tree was validated at construction (dataset.NewTreeInstance), so
// exactly one root exists.
func findRoot(tree []dataset.TreeNode) int {
	for _, node := range tree {
		if node.Parent == dataset.NoParent {
			return node.SelfItem
		}
	}

	return 0
}

// treeAlphaBeta runs the upward/downward message passing of spec §4.1's
// tree variant: post-order α, pre-order β (here, the reverse of the
// post-order, which also satisfies "parent before children").
//
// Transition orientation: exp_trans[i, l] is read with i = the parent's
// candidate label and l = the child's label (this file's resolution of the
// spec's two not-quite-consistent tree formulas; see DESIGN.md).
func treeAlphaBeta(ctx *Context) error {
	if ctx.numItems == 0 {
		return ErrNoInstance
	}
	if ctx.tree == nil {
		return ErrMissingTree
	}
	L := ctx.numLabels
	order := postOrder(ctx.tree)

	for _, p := range order {
		node := ctx.tree[p]
		row := ctx.alpha.rowSlice(p)[:L]
		copy(row, ctx.expState.rowSlice(p)[:L])
		for _, c := range node.Children {
			crow := ctx.childAlpha.rowSlice(c)[:L]
			for l := 0; l < L; l++ {
				row[l] *= crow[l]
			}
		}
		if err := scaleColumn(ctx, p); err != nil {
			return err
		}

		crow := ctx.childAlpha.rowSlice(p)[:L]
		for i := 0; i < L; i++ {
			var sum float64
			for l := 0; l < L; l++ {
				sum += ctx.expTrans.at(i, l) * row[l]
			}
			crow[i] = sum
		}
	}

	logNorm := 0.0
	for _, p := range order {
		logNorm -= math.Log(ctx.scaleFactor[p])
	}
	ctx.logNorm = logNorm

	for idx := len(order) - 1; idx >= 0; idx-- {
		p := order[idx]
		node := ctx.tree[p]
		brow := ctx.beta.rowSlice(p)[:L]
		if node.Parent == dataset.NoParent {
			scale := ctx.scaleFactor[p]
			for l := range brow {
				brow[l] = scale
			}
			continue
		}
		msg := parentMessageExcluding(ctx, node.Parent, p)
		scale := ctx.scaleFactor[p]
		for l := 0; l < L; l++ {
			var sum float64
			for i := 0; i < L; i++ {
				sum += ctx.expTrans.at(i, l) * msg[i]
			}
			brow[l] = scale * sum
		}
	}

	return nil
}

// parentMessageExcluding returns, for each candidate label i of parent,
// exp_state[parent,i] * beta[parent,i] multiplied by every sibling's
// child_alpha[sibling,i] except excludeChild's — the message parent would
// send down to excludeChild if excludeChild's own subtree were removed
// from parent's belief. Used for both β and the transition marginal (the
// same "everything except this edge" quantity both need).
func parentMessageExcluding(ctx *Context, parent, excludeChild int) []float64 {
	L := ctx.numLabels
	out := make([]float64, L)
	prow := ctx.beta.rowSlice(parent)[:L]
	srow := ctx.expState.rowSlice(parent)[:L]
	for i := 0; i < L; i++ {
		out[i] = srow[i] * prow[i]
	}
	for _, sib := range ctx.tree[parent].Children {
		if sib == excludeChild {
			continue
		}
		crow := ctx.childAlpha.rowSlice(sib)[:L]
		for i := 0; i < L; i++ {
			out[i] *= crow[i]
		}
	}

	return out
}

// treeMarginals fills mexp_state the same way as the chain, and
// mexp_trans per (parent-label, child-label) edge using the
// exclude-this-edge message (spec §4.1: "tree marginals follow the
// analogous message-passing derivation").
func treeMarginals(ctx *Context) error {
	if ctx.tree == nil {
		return ErrMissingTree
	}
	L := ctx.numLabels
	ctx.mexpTrans.zero()

	for t := 0; t < ctx.numItems; t++ {
		for l := 0; l < L; l++ {
			ctx.mexpState.set(t, l, ctx.alpha.at(t, l)*ctx.beta.at(t, l)/ctx.scaleFactor[t])
		}
	}

	for c, node := range ctx.tree {
		if node.Parent == dataset.NoParent {
			continue
		}
		p := node.Parent
		msg := parentMessageExcluding(ctx, p, c)
		arow := ctx.alpha.rowSlice(c)[:L]
		for i := 0; i < L; i++ {
			for j := 0; j < L; j++ {
				ctx.AddMExpTrans(i, j, msg[i]*ctx.expTrans.at(i, j)*arow[j])
			}
		}
	}

	return nil
}

// treeViterbi runs the tree analogue of chainViterbi: bottom-up max-sum in
// log space, with back_edge[child][parentLabel] recording the child's best
// own label for each possible parent label (spec §4.1's redefinition of
// back_edge for tree-structured CRFs), then a top-down pass assigning
// labels from the root down.
func treeViterbi(ctx *Context, pathOut []int) (float64, error) {
	if ctx.numItems == 0 {
		return 0, ErrNoInstance
	}
	if ctx.tree == nil {
		return 0, ErrMissingTree
	}
	if len(pathOut) != ctx.numItems {
		return 0, ErrBadLabelPath
	}
	L := ctx.numLabels
	order := postOrder(ctx.tree)
	delta := ctx.delta

	for _, p := range order {
		node := ctx.tree[p]
		row := delta.rowSlice(p)[:L]
		srow := ctx.state.rowSlice(p)[:L]
		copy(row, srow)
		for _, c := range node.Children {
			crow := delta.rowSlice(c)[:L]
			for l := 0; l < L; l++ {
				best := math.Inf(-1)
				bestI := 0
				for i := 0; i < L; i++ {
					score := crow[i] + ctx.trans.at(l, i)
					if score > best {
						best = score
						bestI = i
					}
				}
				row[l] += best
				ctx.backEdge.set(c, l, bestI)
			}
		}
	}

	root := findRoot(ctx.tree)
	rootRow := delta.rowSlice(root)[:L]
	bestScore := math.Inf(-1)
	bestLabel := 0
	for l := 0; l < L; l++ {
		if rootRow[l] > bestScore {
			bestScore = rootRow[l]
			bestLabel = l
		}
	}

	pathOut[root] = bestLabel
	preorder := make([]int, len(order))
	for i, p := range order {
		preorder[len(order)-1-i] = p
	}
	for _, p := range preorder {
		node := ctx.tree[p]
		for _, c := range node.Children {
			pathOut[c] = ctx.backEdge.at(c, pathOut[p])
		}
	}

	return bestScore, nil
}

// treePathScore sums state scores for every item plus trans[parentLabel,
// childLabel] for every parent-child edge.
func treePathScore(ctx *Context, labels []int) (float64, error) {
	if len(labels) != ctx.numItems || ctx.tree == nil {
		return 0, ErrBadLabelPath
	}
	total := 0.0
	for t := 0; t < ctx.numItems; t++ {
		total += ctx.state.at(t, labels[t])
	}
	for c, node := range ctx.tree {
		if node.Parent == dataset.NoParent {
			continue
		}
		total += ctx.trans.at(labels[node.Parent], labels[c])
	}

	return total, nil
}
