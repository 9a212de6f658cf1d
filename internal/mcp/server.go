package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rahidz/oeismatcher/internal/config"
	"github.com/rahidz/oeismatcher/internal/daemon"
	"github.com/rahidz/oeismatcher/internal/pipeline"
	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/telemetry"
	"github.com/rahidz/oeismatcher/pkg/version"
)

// Server is the MCP server for the matcher. It exposes the analysis
// pipeline as tools an AI client can call to identify integer sequences.
type Server struct {
	mcp       *mcp.Server
	handler   *daemon.Handler
	st        store.IndexStore
	cfg       *config.Config
	indexPath string
	logger    *slog.Logger

	mu      sync.RWMutex
	metrics *telemetry.Metrics
}

// NewServer creates a new MCP server over an open store.
func NewServer(st store.IndexStore, cfg *config.Config, indexPath string) (*Server, error) {
	if st == nil {
		return nil, errors.New("index store is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		handler:   daemon.NewHandler(st, cfg, indexPath, nil),
		st:        st,
		cfg:       cfg,
		indexPath: indexPath,
		logger:    slog.Default(),
	}

	// Create MCP server with implementation info
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "oeismatch",
			Version: version.Version,
		},
		nil, // ServerOptions - capabilities are inferred from registered tools/resources
	)

	s.registerTools()

	return s, nil
}

// SetMetrics sets the query metrics collector for telemetry.
// When set, a query_metrics resource is registered.
func (s *Server) SetMetrics(m *telemetry.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
	s.handler = daemon.NewHandler(s.st, s.cfg, s.indexPath, m)

	if m != nil {
		s.registerQueryMetricsResource()
	}
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "oeismatch", version.Version
}

// ToolInfo describes one registered tool for listing.
type ToolInfo struct {
	Name        string
	Description string
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "analyze_sequence",
			Description: "Primary sequence identification tool. Runs the full pipeline: exact prefix/subsequence match, transform-chain search, similarity ranking, and linear-combination search against the local OEIS index.",
		},
		{
			Name:        "match_exact",
			Description: "Fast exact lookup only: does this sequence appear verbatim (as a prefix, or anywhere with subsequence=true) in the index? Supports ? wildcards.",
		},
		{
			Name:        "search_transforms",
			Description: "Find sequences whose known form is reached by transforming the query (scaling, differences, partial sums, and other unary transforms chained up to the given depth).",
		},
		{
			Name:        "search_combinations",
			Description: "Express the query as an integer linear combination of 2 or 3 indexed sequences, with small shifts and per-component transforms.",
		},
		{
			Name:        "index_status",
			Description: "Check whether the local sequence index is built and how many sequences it holds. Use before searching if results look empty.",
		},
	}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	infos := s.ListTools()

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_sequence",
		Description: infos[0].Description,
	}, s.mcpAnalyzeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "match_exact",
		Description: infos[1].Description,
	}, s.mcpMatchExactHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_transforms",
		Description: infos[2].Description,
	}, s.mcpSearchTransformsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_combinations",
		Description: infos[3].Description,
	}, s.mcpSearchCombinationsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_status",
		Description: infos[4].Description,
	}, s.mcpIndexStatusHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", len(infos)))
}

// analyze runs the pipeline via the shared daemon handler.
func (s *Server) analyze(ctx context.Context, params daemon.AnalyzeParams) (*pipeline.ResultJSON, error) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	res, err := handler.HandleAnalyze(ctx, params)
	if err != nil {
		return nil, MapError(err)
	}
	return res, nil
}

// mcpAnalyzeHandler is the MCP SDK handler for the analyze_sequence tool.
func (s *Server) mcpAnalyzeHandler(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (
	*mcp.CallToolResult,
	AnalyzeOutput,
	error,
) {
	if input.Query == "" {
		return nil, AnalyzeOutput{}, NewInvalidParamsError("query parameter is required")
	}

	depth := input.Depth
	if depth == 0 {
		depth = 1
	}

	res, err := s.analyze(ctx, daemon.AnalyzeParams{
		Query:       input.Query,
		Depth:       depth,
		Similarity:  input.Similarity,
		Combos:      input.Combos,
		Triples:     input.Triples,
		Limit:       input.Limit,
		Subsequence: input.Subsequence,
	})
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	output := AnalyzeOutput{
		Exact:        len(res.ExactMatches),
		Transform:    len(res.TransformMatches),
		Combinations: len(res.Combinations) + len(res.TripleCombinations),
	}
	output.Summary = FormatAnalysis(input.Query, res)
	return nil, output, nil
}

// mcpMatchExactHandler is the MCP SDK handler for the match_exact tool.
func (s *Server) mcpMatchExactHandler(ctx context.Context, _ *mcp.CallToolRequest, input MatchExactInput) (
	*mcp.CallToolResult,
	AnalyzeOutput,
	error,
) {
	if input.Query == "" {
		return nil, AnalyzeOutput{}, NewInvalidParamsError("query parameter is required")
	}

	res, err := s.analyze(ctx, daemon.AnalyzeParams{
		Query:       input.Query,
		Limit:       input.Limit,
		Subsequence: input.Subsequence,
	})
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	output := AnalyzeOutput{Exact: len(res.ExactMatches)}
	output.Summary = FormatAnalysis(input.Query, res)
	return nil, output, nil
}

// mcpSearchTransformsHandler is the MCP SDK handler for the search_transforms tool.
func (s *Server) mcpSearchTransformsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchTransformsInput) (
	*mcp.CallToolResult,
	AnalyzeOutput,
	error,
) {
	if input.Query == "" {
		return nil, AnalyzeOutput{}, NewInvalidParamsError("query parameter is required")
	}

	depth := input.Depth
	if depth <= 0 {
		depth = 1
	}
	if depth > 2 {
		depth = 2
	}

	res, err := s.analyze(ctx, daemon.AnalyzeParams{
		Query: input.Query,
		Depth: depth,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	output := AnalyzeOutput{
		Exact:     len(res.ExactMatches),
		Transform: len(res.TransformMatches),
	}
	output.Summary = FormatAnalysis(input.Query, res)
	return nil, output, nil
}

// mcpSearchCombinationsHandler is the MCP SDK handler for the search_combinations tool.
func (s *Server) mcpSearchCombinationsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchCombinationsInput) (
	*mcp.CallToolResult,
	AnalyzeOutput,
	error,
) {
	if input.Query == "" {
		return nil, AnalyzeOutput{}, NewInvalidParamsError("query parameter is required")
	}

	combos := input.Combos
	if combos == 0 {
		combos = 5
	}

	res, err := s.analyze(ctx, daemon.AnalyzeParams{
		Query:   input.Query,
		Combos:  combos,
		Triples: input.Triples,
	})
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	output := AnalyzeOutput{
		Exact:        len(res.ExactMatches),
		Combinations: len(res.Combinations) + len(res.TripleCombinations),
	}
	output.Summary = FormatAnalysis(input.Query, res)
	return nil, output, nil
}

// mcpIndexStatusHandler is the MCP SDK handler for the index_status tool.
func (s *Server) mcpIndexStatusHandler(_ context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	IndexStatusOutput,
	error,
) {
	stats, err := s.st.Stats()
	if err != nil {
		return nil, IndexStatusOutput{}, MapError(err)
	}

	output := IndexStatusOutput{
		Ready:         stats.Count > 0,
		IndexPath:     s.indexPath,
		SequenceCount: stats.Count,
		MinLength:     stats.MinLength,
		MaxLength:     stats.MaxLength,
	}
	output.Summary = FormatStatus(output)
	return nil, output, nil
}

// registerQueryMetricsResource exposes the telemetry snapshot as a resource.
func (s *Server) registerQueryMetricsResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "query_metrics",
			URI:         "oeismatch://metrics/queries",
			Description: "Aggregated query telemetry: class counts, stage latencies, zero-result queries",
			MIMEType:    "application/json",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			s.mu.RLock()
			m := s.metrics
			s.mu.RUnlock()
			if m == nil {
				return nil, NewInvalidParamsError("metrics collection is disabled")
			}

			data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
			if err != nil {
				return nil, MapError(err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{
						URI:      "oeismatch://metrics/queries",
						MIMEType: "application/json",
						Text:     string(data),
					},
				},
			}, nil
		},
	)
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		s.logger.Debug("Using stdio transport for JSON-RPC")
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	// The MCP server doesn't have a Close method - it stops when context is canceled
	return nil
}
