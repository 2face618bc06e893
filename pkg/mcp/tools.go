package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
	"github.com/Sumatoshi-tech/treewalk/pkg/traversal"
)

// Tool name constants.
const (
	ToolNameTraverse   = "tree_traverse"
	ToolNameContains   = "tree_contains"
	ToolNameAlgorithms = "traversal_algorithms"
)

// MaxKeys bounds the keys a single call may insert.
const MaxKeys = 100_000

// Built trees are cached by insertion sequence. Trees are read-only once
// built, so concurrent tool calls may share them.
const (
	treeCacheEntries = 64
	treeCacheNodes   = 4 * MaxKeys
)

// Sentinel errors for tool input validation.
var (
	// ErrNoKeys indicates neither the call nor the server supplied keys.
	ErrNoKeys = errors.New("no keys to build the tree from")
	// ErrTooManyKeys indicates the keys input exceeds MaxKeys.
	ErrTooManyKeys = errors.New("too many keys")
)

// Input types (auto-generate JSON schemas via struct tags).

// TraverseInput is the input schema for the tree_traverse tool.
type TraverseInput struct {
	Keys  []int  `json:"keys,omitempty" jsonschema:"optional keys inserted in order to build the tree (default: configured keys)"`
	Order string `json:"order"          jsonschema:"traversal order: BFS, DFSPreOrder, DFSPostOrder or DFSInOrder"`
}

// ContainsInput is the input schema for the tree_contains tool.
type ContainsInput struct {
	Keys []int `json:"keys,omitempty" jsonschema:"optional keys inserted in order to build the tree (default: configured keys)"`
	Key  int   `json:"key"            jsonschema:"key to look up"`
}

// AlgorithmsInput is the input schema for the traversal_algorithms tool.
type AlgorithmsInput struct{}

// TraverseResult is the payload of a tree_traverse call.
type TraverseResult struct {
	Order     string              `json:"order"`
	Size      int                 `json:"size"`
	Height    int                 `json:"height"`
	Sequence  []int               `json:"sequence"`
	Algorithm traversal.Algorithm `json:"algorithm"`
}

// ContainsResult is the payload of a tree_contains call.
type ContainsResult struct {
	Key   int  `json:"key"`
	Found bool `json:"found"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) traverse(_ context.Context, input TraverseInput) (any, error) {
	order, err := traversal.ParseOrder(input.Order)
	if err != nil {
		return nil, err
	}

	tree, err := s.buildTree(input.Keys)
	if err != nil {
		return nil, err
	}

	seq, err := traversal.Run(tree, order)
	if err != nil {
		return nil, err
	}

	alg, err := traversal.Lookup(order)
	if err != nil {
		return nil, err
	}

	return TraverseResult{
		Order:     order.String(),
		Size:      tree.Len(),
		Height:    tree.Height(),
		Sequence:  seq,
		Algorithm: alg,
	}, nil
}

func (s *Server) contains(_ context.Context, input ContainsInput) (any, error) {
	tree, err := s.buildTree(input.Keys)
	if err != nil {
		return nil, err
	}

	return ContainsResult{Key: input.Key, Found: tree.Contains(input.Key)}, nil
}

func algorithms(context.Context, AlgorithmsInput) (any, error) {
	algs, err := traversal.Catalog()
	if err != nil {
		return nil, err
	}

	return algs, nil
}

func (s *Server) buildTree(keys []int) (*bst.Tree[int], error) {
	if len(keys) == 0 {
		keys = s.keys
	}

	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	if len(keys) > MaxKeys {
		return nil, errors.Wrapf(ErrTooManyKeys, "%d keys (max %d)", len(keys), MaxKeys)
	}

	id := treeID(keys)

	tree, ok := s.trees.Get(id)
	if ok {
		return tree, nil
	}

	tree = bst.New(keys...)
	s.trees.Put(id, tree)

	return tree, nil
}

// treeID identifies a tree by its insertion sequence, which fixes its shape.
func treeID(keys []int) string {
	var id strings.Builder

	for idx, key := range keys {
		if idx > 0 {
			id.WriteByte(',')
		}

		id.WriteString(strconv.Itoa(key))
	}

	return id.String()
}

// Error kinds label failed calls in metrics and spans.
const (
	kindNoKeys       = "no_keys"
	kindTooManyKeys  = "too_many_keys"
	kindUnknownOrder = "unknown_order"
	kindEncode       = "encode"
	kindInternal     = "internal"
)

var errEncode = errors.New("encode result")

// errorKind maps err onto a small fixed set of labels.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNoKeys):
		return kindNoKeys
	case errors.Is(err, ErrTooManyKeys):
		return kindTooManyKeys
	case errors.Is(err, traversal.ErrUnknownOrder):
		return kindUnknownOrder
	case errors.Is(err, errEncode):
		return kindEncode
	default:
		return kindInternal
	}
}

// errorResult reports err to the client as a tool error rather than a
// protocol error, so agents can read and correct it.
func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// jsonResult renders value as indented JSON text content.
func jsonResult(value any) (*mcpsdk.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "encode result"), errEncode)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}
