package dataset

// NoParent marks a TreeNode as the root of its tree: it has no parent item.
const NoParent = -1

// Attribute is an observed feature of an item: an attribute id (looked up
// in an external string dictionary) paired with its real-valued weight.
// A boolean attribute ("word is capitalized") is written with Value == 1.0.
type Attribute struct {
	ID    int     // attribute id, >= 0
	Value float64 // observed value, typically 1.0 for boolean attributes
}

// Item is one position in a chain, tree, or semi-Markov segment sequence:
// the set of attributes observed there. Item carries no label of its own;
// gold labels live in Instance.Labels, aligned by index.
type Item struct {
	Attrs []Attribute
}

// TreeNode describes one item's place in a tree-structured instance.
// SelfItem is the item index this node describes; Parent is the item
// index of its parent, or NoParent for the root; Children lists the item
// indices of its children in construction order.
type TreeNode struct {
	SelfItem int
	Parent   int
	Children []int
}

// Instance is one labeled (or unlabeled, for pure inference) training
// example: a sequence of items, an optional gold label per item, and,
// for tree-structured instances, the tree connecting them.
//
// Tree is nil for chain and semi-Markov instances. Labels is nil for
// instances used only for decoding (Viterbi/partition_factor/score), and
// required for objective_and_gradients and for the instances Initialize
// generates features from. score and features_on_path take their label
// sequence as an explicit argument.
type Instance struct {
	Items  []Item
	Labels []int
	Tree   []TreeNode
}

// NumItems returns the number of items (T) in the instance.
func (inst *Instance) NumItems() int {
	return len(inst.Items)
}

// NewInstance validates and constructs a chain or semi-Markov instance:
// items with an optional aligned label sequence, no tree.
//
// Stage 1 (Validate): items non-empty, labels (if present) aligned.
// Stage 2 (Finalize): return the populated Instance.
func NewInstance(items []Item, labels []int) (*Instance, error) {
	if len(items) == 0 {
		return nil, ErrEmptyInstance
	}
	if labels != nil && len(labels) != len(items) {
		return nil, ErrLabelMismatch
	}
	if err := validateAttrs(items); err != nil {
		return nil, err
	}

	return &Instance{Items: items, Labels: labels}, nil
}

// NewTreeInstance validates and constructs a tree-structured instance:
// items, an optional aligned label sequence, and one TreeNode per item
// describing parent/child edges. Exactly one node must have Parent ==
// NoParent (the root); every Parent and Children entry must reference a
// valid item index.
func NewTreeInstance(items []Item, labels []int, tree []TreeNode) (*Instance, error) {
	if len(items) == 0 {
		return nil, ErrEmptyInstance
	}
	if labels != nil && len(labels) != len(items) {
		return nil, ErrLabelMismatch
	}
	if len(tree) != len(items) {
		return nil, ErrTreeMismatch
	}
	if err := validateAttrs(items); err != nil {
		return nil, err
	}
	if err := validateTree(tree); err != nil {
		return nil, err
	}

	return &Instance{Items: items, Labels: labels, Tree: tree}, nil
}

// validateAttrs rejects negative attribute ids across every item.
func validateAttrs(items []Item) error {
	for _, it := range items {
		for _, a := range it.Attrs {
			if a.ID < 0 {
				return ErrNegativeAttribute
			}
		}
	}

	return nil
}

// validateTree checks parent/child index bounds and the presence of a
// unique root (a node whose Parent is NoParent).
func validateTree(tree []TreeNode) error {
	n := len(tree)
	roots := 0
	for i, node := range tree {
		if node.SelfItem != i {
			return ErrBadTreeNode
		}
		if node.Parent == NoParent {
			roots++
		} else if node.Parent < 0 || node.Parent >= n {
			return ErrBadTreeNode
		}
		for _, c := range node.Children {
			if c < 0 || c >= n {
				return ErrBadTreeNode
			}
		}
	}
	if roots == 0 {
		return ErrNoRoot
	}
	if roots > 1 {
		return ErrBadTreeNode
	}

	return nil
}

// Dataset is a batch of instances, the input to a batch training pass.
type Dataset struct {
	Instances []Instance
}

// Len returns the number of instances in the dataset.
func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}

	return len(ds.Instances)
}
