package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/portscope"
	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SelectionURI is the resource listing graphs under the host selection.
const SelectionURI = "portscope://selection"

// Inspector is what the MCP tools need from the inspection core.
// *portscope.Inspector satisfies it.
type Inspector interface {
	ListPorts(ctx context.Context, node string) ([]string, error)
	Extract(ctx context.Context, node, port string) (*domain.ExtractionResult, error)
	CreateMarkers(ctx context.Context, values []domain.Value, plugType string) ([]string, error)
	CreateMarkersFromCells(ctx context.Context, result *domain.ExtractionResult, cells []domain.CellRef) ([]string, error)
	SelectedGraphs(ctx context.Context) ([]string, error)
	ResolveNode(ctx context.Context, node string) (string, error)
}

// PortsResponse is the list_ports result.
type PortsResponse struct {
	Node  string   `json:"node" jsonschema_description:"The graph node that was inspected"`
	Ports []string `json:"ports" jsonschema_description:"Sorted names of the node's data ports"`
}

// ExtractResponse is the extract_port result. Result is omitted when the port
// is missing or carries no readable data.
type ExtractResponse struct {
	Node      string                   `json:"node"`
	Port      string                   `json:"port"`
	Present   bool                     `json:"present"`
	Rows      int                      `json:"rows"`
	Truncated bool                     `json:"truncated,omitempty"`
	Result    *domain.ExtractionResult `json:"result,omitempty"`
}

// MarkersResponse is the create_markers result.
type MarkersResponse struct {
	Markers []string `json:"markers" jsonschema_description:"Names of the created markers, already selected in the scene"`
}

// Server exposes an Inspector as an MCP server.
type Server struct {
	inspector Inspector
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(insp Inspector, opts ...Option) *Server {
	s := &Server{
		inspector: insp,
		mcpServer: server.NewMCPServer("portscope-mcp", strings.TrimSpace(portscope.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for embedding or in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_ports
	s.mcpServer.AddTool(mcp.NewTool("list_ports",
		mcp.WithDescription("List the data ports of a graph node. Without a node, uses the first graph under the scene selection."),
		mcp.WithString("node", mcp.Description("Graph node name (optional)")),
		mcp.WithOutputSchema[PortsResponse](),
	), mcp.NewStructuredToolHandler(s.HandleListPorts))

	// TOOL: extract_port
	s.mcpServer.AddTool(mcp.NewTool("extract_port",
		mcp.WithDescription("Read one port as a table: columns of values with the declared type and min/max of the first column."),
		mcp.WithString("node", mcp.Description("Graph node name (optional)")),
		mcp.WithString("port", mcp.Required(), mcp.Description("Port name")),
		mcp.WithNumber("max_rows", mcp.Description("Truncate every column to this many rows (optional)")),
	), mcp.NewStructuredToolHandler(s.HandleExtractPort))

	// TOOL: create_markers
	s.mcpServer.AddTool(mcp.NewTool("create_markers",
		mcp.WithDescription("Create locators in the scene. Either pass plug_type and values, or node, port and cells to place locators at table cells."),
		mcp.WithString("plug_type", mcp.Description("Declared type of the values: "+strings.Join(domain.MarkerPlugTypes(), ", "))),
		mcp.WithArray("values", mcp.Description("Positions (3 numbers) or matrices (16 numbers)")),
		mcp.WithString("node", mcp.Description("Graph node name, with port and cells")),
		mcp.WithString("port", mcp.Description("Port to read the cells from")),
		mcp.WithArray("cells", mcp.Description("Table cells as {row, column} objects")),
		mcp.WithOutputSchema[MarkersResponse](),
	), mcp.NewStructuredToolHandler(s.HandleCreateMarkers))
}

// HandleListPorts implements the list_ports tool.
func (s *Server) HandleListPorts(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PortsResponse, error) {
	var req struct {
		Node string `mapstructure:"node"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return PortsResponse{}, err
	}
	node, err := s.inspector.ResolveNode(ctx, req.Node)
	if err != nil {
		return PortsResponse{}, err
	}
	names, err := s.inspector.ListPorts(ctx, node)
	if err != nil {
		return PortsResponse{}, fmt.Errorf("list ports failed: %w", err)
	}
	return PortsResponse{Node: node, Ports: names}, nil
}

// HandleExtractPort implements the extract_port tool.
func (s *Server) HandleExtractPort(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ExtractResponse, error) {
	var req struct {
		Node    string `mapstructure:"node"`
		Port    string `mapstructure:"port"`
		MaxRows int    `mapstructure:"max_rows"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return ExtractResponse{}, err
	}
	if req.Port == "" {
		return ExtractResponse{}, errors.New("port is required")
	}
	node, err := s.inspector.ResolveNode(ctx, req.Node)
	if err != nil {
		return ExtractResponse{}, err
	}

	result, err := s.inspector.Extract(ctx, node, req.Port)
	if err != nil {
		return ExtractResponse{}, fmt.Errorf("extract failed: %w", err)
	}
	resp := ExtractResponse{Node: node, Port: req.Port, Present: result != nil}
	if result == nil {
		return resp, nil
	}
	resp.Rows = result.Rows()
	if req.MaxRows > 0 && resp.Rows > req.MaxRows {
		result = truncate(result, req.MaxRows)
		resp.Truncated = true
	}
	resp.Result = result
	return resp, nil
}

// HandleCreateMarkers implements the create_markers tool.
func (s *Server) HandleCreateMarkers(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (MarkersResponse, error) {
	var req struct {
		PlugType string           `mapstructure:"plug_type"`
		Values   []any            `mapstructure:"values"`
		Node     string           `mapstructure:"node"`
		Port     string           `mapstructure:"port"`
		Cells    []domain.CellRef `mapstructure:"cells"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return MarkersResponse{}, err
	}

	var (
		names []string
		err   error
	)
	switch {
	case req.Port != "":
		names, err = s.markersFromCells(ctx, req.Node, req.Port, req.Cells)
	case req.PlugType != "":
		values := make([]domain.Value, len(req.Values))
		for i, raw := range req.Values {
			values[i] = domain.FromRaw(raw)
		}
		names, err = s.inspector.CreateMarkers(ctx, values, req.PlugType)
	default:
		return MarkersResponse{}, errors.New("pass plug_type and values, or port and cells")
	}
	if err != nil {
		return MarkersResponse{}, fmt.Errorf("create markers failed: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return MarkersResponse{Markers: names}, nil
}

func (s *Server) markersFromCells(ctx context.Context, node, port string, cells []domain.CellRef) ([]string, error) {
	node, err := s.inspector.ResolveNode(ctx, node)
	if err != nil {
		return nil, err
	}
	result, err := s.inspector.Extract(ctx, node, port)
	if err != nil {
		return nil, err
	}
	return s.inspector.CreateMarkersFromCells(ctx, result, cells)
}

func (s *Server) registerResources() {
	// EXPOSE: portscope://selection
	s.mcpServer.AddResource(mcp.NewResource(SelectionURI, "Selected graphs",
		mcp.WithResourceDescription("Graph nodes under the current scene selection"),
		mcp.WithMIMEType("application/json"),
	), s.HandleSelection)
}

// HandleSelection serves the selection resource.
func (s *Server) HandleSelection(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	graphs, err := s.inspector.SelectedGraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	if graphs == nil {
		graphs = []string{}
	}
	jsonBytes, err := json.Marshal(map[string][]string{"graphs": graphs})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SelectionURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// truncate copies result keeping at most rows values per column.
func truncate(result *domain.ExtractionResult, rows int) *domain.ExtractionResult {
	cp := *result
	cp.Data = make([][]domain.Value, len(result.Data))
	for i, col := range result.Data {
		if len(col) > rows {
			col = col[:rows]
		}
		cp.Data[i] = col
	}
	return &cp
}
