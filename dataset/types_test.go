package dataset_test

import (
	"testing"

	"github.com/katalvlaran/crflat/dataset"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceEmpty(t *testing.T) {
	_, err := dataset.NewInstance(nil, nil)
	require.ErrorIs(t, err, dataset.ErrEmptyInstance)
}

func TestNewInstanceLabelMismatch(t *testing.T) {
	items := []dataset.Item{{Attrs: []dataset.Attribute{{ID: 0, Value: 1}}}}
	_, err := dataset.NewInstance(items, []int{0, 1})
	require.ErrorIs(t, err, dataset.ErrLabelMismatch)
}

func TestNewInstanceNegativeAttribute(t *testing.T) {
	items := []dataset.Item{{Attrs: []dataset.Attribute{{ID: -1, Value: 1}}}}
	_, err := dataset.NewInstance(items, nil)
	require.ErrorIs(t, err, dataset.ErrNegativeAttribute)
}

func TestNewInstanceOK(t *testing.T) {
	items := []dataset.Item{
		{Attrs: []dataset.Attribute{{ID: 0, Value: 1}}},
		{Attrs: []dataset.Attribute{{ID: 1, Value: 1}}},
	}
	inst, err := dataset.NewInstance(items, []int{0, 1})
	require.NoError(t, err)
	require.Equal(t, 2, inst.NumItems())
}

func TestNewTreeInstanceStar(t *testing.T) {
	// root (0) with two leaves (1, 2).
	items := make([]dataset.Item, 3)
	tree := []dataset.TreeNode{
		{SelfItem: 0, Parent: dataset.NoParent, Children: []int{1, 2}},
		{SelfItem: 1, Parent: 0},
		{SelfItem: 2, Parent: 0},
	}
	inst, err := dataset.NewTreeInstance(items, nil, tree)
	require.NoError(t, err)
	require.Len(t, inst.Tree, 3)
}

func TestNewTreeInstanceNoRoot(t *testing.T) {
	items := make([]dataset.Item, 2)
	tree := []dataset.TreeNode{
		{SelfItem: 0, Parent: 1},
		{SelfItem: 1, Parent: 0},
	}
	_, err := dataset.NewTreeInstance(items, nil, tree)
	require.ErrorIs(t, err, dataset.ErrNoRoot)
}

func TestNewTreeInstanceBadIndex(t *testing.T) {
	items := make([]dataset.Item, 2)
	tree := []dataset.TreeNode{
		{SelfItem: 0, Parent: dataset.NoParent, Children: []int{5}},
		{SelfItem: 1, Parent: 0},
	}
	_, err := dataset.NewTreeInstance(items, nil, tree)
	require.ErrorIs(t, err, dataset.ErrBadTreeNode)
}

func TestDatasetLenNilSafe(t *testing.T) {
	var ds *dataset.Dataset
	require.Equal(t, 0, ds.Len())
}
