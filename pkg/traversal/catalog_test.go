package traversal_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treewalk/pkg/traversal"
)

func TestCatalog_Builtin(t *testing.T) {
	t.Parallel()

	algs, err := traversal.Catalog()
	require.NoError(t, err)
	require.Len(t, algs, 4)

	for idx, order := range traversal.Orders() {
		assert.Equal(t, order.String(), algs[idx].ID)
		assert.Equal(t, order, algs[idx].Order())
		assert.NotEmpty(t, algs[idx].Name)
		assert.NotEmpty(t, algs[idx].Explanation)
	}

	assert.Equal(t, "O(w)", algs[traversal.BFS].SpaceComplexity)
	assert.Equal(t, "(Left, Node, Right)", algs[traversal.DFSInOrder].TraverseOrder)
	assert.Equal(t, "Intermediate", algs[traversal.DFSPostOrder].Difficulty)
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	t.Parallel()

	algs, err := traversal.Catalog()
	require.NoError(t, err)

	algs[0].Name = "changed"

	again, err := traversal.Catalog()
	require.NoError(t, err)
	assert.Equal(t, "Breadth-First Search", again[0].Name)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	alg, err := traversal.Lookup(traversal.DFSPreOrder)
	require.NoError(t, err)
	assert.Equal(t, "(Node, Left, Right)", alg.TraverseOrder)

	_, err = traversal.Lookup(traversal.Order(7))
	require.ErrorIs(t, err, traversal.ErrUnknownOrder)
}

const entryTemplate = `
  - id: %s
    name: n
    description: d
    difficulty: Beginner
    time_complexity: O(n)
    space_complexity: O(h)
    traverse_order: t
    explanation: e
    usage: u
`

func TestParseCatalog_Reorders(t *testing.T) {
	t.Parallel()

	doc := "algorithms:" +
		entry("DFSInOrder") + entry("BFS") + entry("DFSPostOrder") + entry("DFSPreOrder")

	algs, err := traversal.ParseCatalog([]byte(doc))
	require.NoError(t, err)

	for idx, order := range traversal.Orders() {
		assert.Equal(t, order.String(), algs[idx].ID)
	}
}

func TestParseCatalog_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"missing_entry", "algorithms:" + entry("BFS") + entry("DFSPreOrder") + entry("DFSInOrder")},
		{"duplicate_entry", "algorithms:" + entry("BFS") + entry("BFS") + entry("DFSPreOrder") + entry("DFSPostOrder") + entry("DFSInOrder")},
		{"unknown_id", "algorithms:" + entry("Zigzag")},
		{"bad_complexity", "algorithms:\n  - id: BFS\n    name: n\n    description: d\n    difficulty: Beginner\n    time_complexity: linear\n    space_complexity: O(w)\n    traverse_order: t\n    explanation: e\n    usage: u\n"},
		{"missing_field", "algorithms:\n  - id: BFS\n    name: n\n"},
		{"empty", "algorithms: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := traversal.ParseCatalog([]byte(tt.doc))
			require.ErrorIs(t, err, traversal.ErrInvalidCatalog)
		})
	}
}

func TestParseCatalog_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := traversal.ParseCatalog([]byte("algorithms: [\n"))
	require.Error(t, err)
}

func entry(id string) string {
	return fmt.Sprintf(entryTemplate, id)
}
