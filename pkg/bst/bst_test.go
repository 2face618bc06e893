package bst_test

import (
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
)

var demoKeys = []int{47, 21, 76, 18, 27, 52, 82}

func TestEmpty(t *testing.T) {
	t.Parallel()

	tree := bst.New[int]()

	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, tree.Height())
	assert.False(t, tree.Contains(47))
	assert.Equal(t, []int{}, tree.BFS())
	assert.Equal(t, []int{}, tree.DFSPreOrder())
	assert.Equal(t, []int{}, tree.DFSPostOrder())
	assert.Equal(t, []int{}, tree.DFSInOrder())
}

func TestZeroValueTree(t *testing.T) {
	t.Parallel()

	var tree bst.Tree[int]

	assert.Empty(t, tree.BFS())
	assert.False(t, tree.Contains(1))

	assert.True(t, tree.Insert(1))
	assert.True(t, tree.Insert(0))
	assert.Equal(t, []int{0, 1}, tree.DFSInOrder())
}

func TestDemoTree(t *testing.T) {
	t.Parallel()

	tree := bst.New(demoKeys...)

	require.Equal(t, 7, tree.Len())
	assert.Equal(t, 3, tree.Height())
	assert.Equal(t, []int{47, 21, 76, 18, 27, 52, 82}, tree.BFS())
	assert.Equal(t, []int{47, 21, 18, 27, 76, 52, 82}, tree.DFSPreOrder())
	assert.Equal(t, []int{18, 27, 21, 52, 82, 76, 47}, tree.DFSPostOrder())
	assert.Equal(t, []int{18, 21, 27, 47, 52, 76, 82}, tree.DFSInOrder())
}

func TestInsertDuplicate(t *testing.T) {
	t.Parallel()

	tree := bst.New(demoKeys...)
	before := tree.DFSPreOrder()

	for _, key := range demoKeys {
		assert.False(t, tree.Insert(key), "duplicate %d", key)
	}

	assert.Equal(t, len(demoKeys), tree.Len())
	assert.Equal(t, before, tree.DFSPreOrder())
}

func TestTraversalsDoNotShareResults(t *testing.T) {
	t.Parallel()

	tree := bst.New(demoKeys...)

	first := tree.BFS()
	first[0] = -1

	assert.Equal(t, 47, tree.BFS()[0])
	assert.Equal(t, tree.DFSInOrder(), tree.DFSInOrder())
}

func TestStringKeys(t *testing.T) {
	t.Parallel()

	tree := bst.New("m", "c", "x", "a", "e")

	assert.True(t, tree.Contains("e"))
	assert.False(t, tree.Contains("b"))
	assert.Equal(t, []string{"a", "c", "e", "m", "x"}, tree.DFSInOrder())
	assert.Equal(t, []string{"m", "c", "x", "a", "e"}, tree.BFS())
}

func TestDeepTree(t *testing.T) {
	t.Parallel()

	const size = 5000

	tree := bst.New[int]()
	for key := range size {
		tree.Insert(key)
	}

	assert.Equal(t, size, tree.Height())
	assert.Len(t, tree.DFSPostOrder(), size)
	assert.True(t, slices.IsSorted(tree.DFSInOrder()))
}

// Randomized tests.

// oracle is a sorted set of the keys inserted so far.
type oracle struct {
	data []int
}

func (o *oracle) Insert(key int) bool {
	idx, found := slices.BinarySearch(o.data, key)
	if found {
		return false
	}

	o.data = slices.Insert(o.data, idx, key)

	return true
}

func (o *oracle) Contains(key int) bool {
	_, found := slices.BinarySearch(o.data, key)

	return found
}

func TestRandomized(t *testing.T) {
	t.Parallel()

	for _, seed := range []int64{1, 7, 42, 2024} {
		t.Run(strconv.FormatInt(seed, 10), func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewSource(seed))
			tree := bst.New[int]()
			ref := &oracle{}

			for range 2000 {
				key := rng.Intn(1000)
				require.Equal(t, ref.Insert(key), tree.Insert(key), "insert %d", key)
			}

			for key := -10; key < 1010; key++ {
				require.Equal(t, ref.Contains(key), tree.Contains(key), "contains %d", key)
			}

			inOrder := tree.DFSInOrder()
			assert.Equal(t, ref.data, inOrder)
			assertStrictlyAscending(t, inOrder)

			assert.Len(t, tree.BFS(), tree.Len())
			assert.Len(t, tree.DFSPreOrder(), tree.Len())
			assert.Len(t, tree.DFSPostOrder(), tree.Len())

			assert.ElementsMatch(t, ref.data, tree.BFS())
			assert.ElementsMatch(t, ref.data, tree.DFSPreOrder())
			assert.ElementsMatch(t, ref.data, tree.DFSPostOrder())

			// The root comes first in pre-order and BFS and last in post-order.
			bfs := tree.BFS()
			post := tree.DFSPostOrder()
			assert.Equal(t, bfs[0], tree.DFSPreOrder()[0])
			assert.Equal(t, bfs[0], post[len(post)-1])
		})
	}
}

func assertStrictlyAscending(tb testing.TB, keys []int) {
	tb.Helper()

	for idx := 1; idx < len(keys); idx++ {
		assert.Less(tb, keys[idx-1], keys[idx], "index %d", idx)
	}
}

func TestTraversalData(t *testing.T) {
	t.Parallel()

	var tree *bst.Tree[int]

	datadriven.RunTest(t, "testdata/traversal", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "build":
			keys, err := parseKeys(d.Input)
			if err != nil {
				return err.Error()
			}

			tree = bst.New(keys...)

			return fmt.Sprintf("len=%d height=%d\n", tree.Len(), tree.Height())

		case "insert":
			keys, err := parseKeys(d.Input)
			if err != nil {
				return err.Error()
			}

			inserted := 0

			for _, key := range keys {
				if tree.Insert(key) {
					inserted++
				}
			}

			return fmt.Sprintf("inserted=%d len=%d\n", inserted, tree.Len())

		case "traverse":
			var order string
			d.ScanArgs(t, "order", &order)

			var keys []int

			switch order {
			case "bfs":
				keys = tree.BFS()
			case "preorder":
				keys = tree.DFSPreOrder()
			case "postorder":
				keys = tree.DFSPostOrder()
			case "inorder":
				keys = tree.DFSInOrder()
			default:
				return fmt.Sprintf("unknown order %q", order)
			}

			return fmt.Sprintf("%v\n", keys)

		case "contains":
			var key int
			d.ScanArgs(t, "key", &key)

			return fmt.Sprintf("%t\n", tree.Contains(key))

		default:
			return fmt.Sprintf("unknown command: %s", d.Cmd)
		}
	})
}

func parseKeys(input string) ([]int, error) {
	fields := strings.Fields(input)
	keys := make([]int, 0, len(fields))

	for _, field := range fields {
		key, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parse key %q: %w", field, err)
		}

		keys = append(keys, key)
	}

	return keys, nil
}
