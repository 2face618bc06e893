package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/treewalk/cmd/treewalk/commands"
	"github.com/Sumatoshi-tech/treewalk/pkg/scheduler"
	"github.com/Sumatoshi-tech/treewalk/pkg/traversal"
)

const testConfig = `tree:
  keys: [47, 21, 76]
playback:
  interval: 1ms
logging:
  level: error
`

func writeConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "treewalk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	root := commands.NewRootCommand()

	var stdout, stderr bytes.Buffer

	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", writeConfig(t)}, args...))

	err := root.ExecuteContext(ctx)

	return stdout.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	assert.ElementsMatch(t, []string{"traverse", "play", "contains", "algorithms", "mcp", "version"}, names)

	for _, flag := range []string{"config", "verbose", "quiet"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestTraverse_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order string
		want  string
	}{
		{order: "BFS", want: "47 21 76 18 27 52 82\n"},
		{order: "preorder", want: "47 21 18 27 76 52 82\n"},
		{order: "DFSPostOrder", want: "18 27 21 52 82 76 47\n"},
		{order: "in", want: "18 21 27 47 52 76 82\n"},
	}

	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, context.Background(), "traverse", tt.order, "--keys", "47,21,76,18,27,52,82")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTraverse_DefaultsToConfiguredOrderAndKeys(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "traverse")
	require.NoError(t, err)
	assert.Equal(t, "47 21 76\n", out)
}

func TestTraverse_JSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "traverse", "postorder", "--format", "json")
	require.NoError(t, err)

	var report commands.TraverseReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, traversal.DFSPostOrder, report.Order)
	assert.Equal(t, []int{47, 21, 76}, report.Keys)
	assert.Equal(t, 3, report.Size)
	assert.Equal(t, 2, report.Height)
	assert.Equal(t, []int{21, 76, 47}, report.Sequence)
}

func TestTraverse_YAML(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "traverse", "bfs", "-f", "yaml")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "BFS", decoded["order"])
	assert.Equal(t, []any{47, 21, 76}, decoded["sequence"])
}

func TestTraverse_Errors(t *testing.T) {
	t.Parallel()

	_, err := execute(t, context.Background(), "traverse", "zigzag")
	require.ErrorIs(t, err, traversal.ErrUnknownOrder)

	_, err = execute(t, context.Background(), "traverse", "bfs", "--format", "xml")
	require.ErrorIs(t, err, commands.ErrUnknownFormat)
}

func TestContains(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "contains", "21")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(t, context.Background(), "contains", "99")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = execute(t, context.Background(), "contains", "99", "--keys", "1,99")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = execute(t, context.Background(), "contains", "abc")
	require.Error(t, err)
}

func TestAlgorithms_Table(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "algorithms")
	require.NoError(t, err)

	for _, want := range []string{"Breadth-First Search", "DFSPreOrder", "DFSPostOrder", "DFSInOrder", "(Left, Node, Right)"} {
		assert.Contains(t, out, want)
	}

	// Header and footer cells are upper-cased by the table style.
	upper := strings.ToUpper(out)
	assert.Contains(t, upper, "TOTAL: 4")
	assert.NotContains(t, upper, "EXPLANATION")

	out, err = execute(t, context.Background(), "algorithms", "--details")
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "EXPLANATION")
}

func TestAlgorithms_JSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "algorithms", "--format", "json")
	require.NoError(t, err)

	var algs []traversal.Algorithm
	require.NoError(t, json.Unmarshal([]byte(out), &algs))
	require.Len(t, algs, 4)
	assert.Equal(t, "BFS", algs[0].ID)
}

func TestPlay_CompletesSequence(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "play", "bfs", "--no-color")
	require.NoError(t, err)

	want := strings.Join([]string{
		"Breadth-First Search (Level by level, left to right within each level)",
		"  1st |  21  [47]  76 ",
		"  1st |  21  (47)  76 ",
		"  2nd | [21] (47)  76 ",
		"  2nd | (21) (47)  76 ",
		"  3rd | (21) (47) [76]",
		"  3rd | (21) (47) (76)",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestPlay_HiddenKeysAreSkipped(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "play", "inorder", "--no-color", "--hide", "47")
	require.NoError(t, err)

	assert.NotContains(t, out, "47")
	assert.Contains(t, out, "  2nd | (21) [76]\n")
}

func TestPlay_CancelClearsMarks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(t, ctx, "play", "bfs", "--no-color", "--interval", "1h")
	require.NoError(t, err)

	assert.Contains(t, out, "  1st |  21  [47]  76 \n")
	assert.Contains(t, out, "    - |  21   47   76 \n")
	assert.True(t, strings.HasSuffix(out, "canceled\n"))
	assert.NotContains(t, out, "2nd")
}

func TestPlay_RejectsNonPositiveInterval(t *testing.T) {
	t.Parallel()

	_, err := execute(t, context.Background(), "play", "bfs", "--no-color", "--interval", "0s")
	require.ErrorIs(t, err, scheduler.ErrInvalidInterval)
}

func TestPlay_ServesDiagnostics(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "play", "bfs", "--no-color", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "  3rd | (21) (47) (76)\n")
}

func TestPlay_Flags(t *testing.T) {
	t.Parallel()

	cmd := commands.NewPlayCommand(&commands.Globals{})

	for _, name := range []string{"keys", "hide", "interval", "metrics-addr", "no-color"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}

	assert.Equal(t, "2s", cmd.Flags().Lookup("interval").DefValue)
}

func TestMCPCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMCPCommand(&commands.Globals{})
	require.NotNil(t, cmd)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	flag := cmd.Flags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "treewalk "))
	assert.Contains(t, out, "commit:")
}
