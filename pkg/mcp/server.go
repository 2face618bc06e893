// Package mcp serves tree traversals to AI agents as Model Context Protocol
// tools.
package mcp

import (
	"context"
	"log/slog"
	"slices"

	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
	"github.com/Sumatoshi-tech/treewalk/pkg/cache"
	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
)

const (
	implementationName = "treewalk"
	operationPrefix    = "mcp."
)

// ServerDeps are the collaborators of a Server. Only Keys affects tool
// results; the rest may be left nil.
type ServerDeps struct {
	// Keys build the tree for calls that do not pass their own.
	Keys []int

	// Version is reported during initialization. Empty reports "dev".
	Version string

	Logger  *slog.Logger
	Metrics *observability.REDMetrics
	Tracer  trace.Tracer
}

// Server is an MCP server with the tree tools registered.
type Server struct {
	inner   *mcpsdk.Server
	keys    []int
	trees   *cache.LRU[string, *bst.Tree[int]]
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
}

// NewServer registers every tool and returns a server ready to Run.
func NewServer(deps ServerDeps) *Server {
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	srv := &Server{
		inner: mcpsdk.NewServer(
			&mcpsdk.Implementation{Name: implementationName, Version: version},
			&mcpsdk.ServerOptions{Logger: deps.Logger},
		),
		keys: slices.Clone(deps.Keys),
		trees: cache.New(
			cache.WithMaxEntries[string, *bst.Tree[int]](treeCacheEntries),
			cache.WithMaxCost[string](treeCacheNodes, func(tree *bst.Tree[int]) int64 { return int64(tree.Len()) }),
		),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	addTool(srv, ToolNameTraverse, traverseToolDescription, srv.traverse)
	addTool(srv, ToolNameContains, containsToolDescription, srv.contains)
	addTool(srv, ToolNameAlgorithms, algorithmsToolDescription, algorithms)

	slices.Sort(srv.tools)

	return srv
}

// ListToolNames returns the registered tool names in sorted order.
func (s *Server) ListToolNames() []string {
	return slices.Clone(s.tools)
}

// Run serves on stdin and stdout until ctx is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport is Run over an arbitrary transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return errors.Wrap(err, "mcp server")
	}

	return nil
}

// toolFunc is a tool's domain logic. Its value is rendered as JSON; its
// error becomes a tool error the agent can read.
type toolFunc[In any] func(ctx context.Context, input In) (any, error)

type toolHandler[In any] = mcpsdk.ToolHandlerFor[In, ToolOutput]

func addTool[In any](s *Server, name, description string, fn toolFunc[In]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description}, instrument(s, name, fn))
	s.tools = append(s.tools, name)
}

// instrument adapts fn to the SDK and wraps it with a server span and RED
// metrics named "mcp.<tool>". Failures are labeled with their error kind.
// Sampled calls get a trailing "trace_id=<id>" text content so agents can
// quote it back.
func instrument[In any](s *Server, name string, fn toolFunc[In]) toolHandler[In] {
	op := operationPrefix + name

	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := crtime.NowMono()

		if s.metrics != nil {
			defer s.metrics.TrackInflight(ctx, op)()
		}

		var span trace.Span
		if s.tracer != nil {
			ctx, span = s.tracer.Start(ctx, op,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", name)),
			)
			defer span.End()
		}

		var (
			result *mcpsdk.CallToolResult
			output ToolOutput
		)

		value, err := fn(ctx, input)
		if err == nil {
			result, err = jsonResult(value)
			output = ToolOutput{Data: value}
		}

		var kind string
		if err != nil {
			kind = errorKind(err)
			result = errorResult(err)
			output = ToolOutput{}

			if span != nil {
				span.RecordError(err)
				span.SetAttributes(attribute.String("error.kind", kind))
				span.SetStatus(codes.Error, kind)
			}
		}

		if s.metrics != nil {
			s.metrics.RecordRequest(ctx, op, start.Elapsed(), kind)
		}

		if span != nil && span.SpanContext().IsSampled() {
			traceID := span.SpanContext().TraceID().String()
			result.Content = append(result.Content, &mcpsdk.TextContent{Text: "trace_id=" + traceID})
		}

		return result, output, nil
	}
}

const (
	traverseToolDescription = "Build a binary search tree and return its keys in the requested " +
		"traversal order (BFS, DFSPreOrder, DFSPostOrder, DFSInOrder). " +
		"Uses the configured keys unless keys are given."

	containsToolDescription = "Report whether a key is stored in the binary search tree. " +
		"Uses the configured keys unless keys are given."

	algorithmsToolDescription = "List the supported traversal algorithms with their complexity, " +
		"visiting order, explanation, and typical usage."
)
