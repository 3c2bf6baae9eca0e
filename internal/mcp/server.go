package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-smartform-parser/internal/config"
	"github.com/a3tai/mcp-smartform-parser/internal/descriptions"
	"github.com/a3tai/mcp-smartform-parser/internal/httpapi"
	"github.com/a3tai/mcp-smartform-parser/internal/smartform"
	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

// Option argument names shared by the parsing tools
const (
	argTrackGraphics      = "track_graphics"
	argTextBlockCapture   = "text_block_capture"
	argForceEmptyCaptions = "force_empty_captions"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *smartform.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *smartform.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool list is fixed at startup
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

func parseOptionArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithBoolean(argTrackGraphics,
			mcp.Description("Recognize graphic nodes (default from server configuration)"),
		),
		mcp.WithBoolean(argTextBlockCapture,
			mcp.Description("Collect TDLINE rows of %TEXT regions into window texts"),
		),
		mcp.WithBoolean(argForceEmptyCaptions,
			mcp.Description("Emit empty caption lists for every container"),
		),
	}
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register SmartForm parse tool
	parseTool := mcp.NewTool("smartform_parse", append([]mcp.ToolOption{
		mcp.WithDescription(descriptions.GetToolDescription("smartform_parse")),
		mcp.WithString("rows",
			mcp.Required(),
			mcp.Description("JSON array of SmartForm rows, or an object with a \"rows\" array"),
		),
	}, parseOptionArgs()...)...)
	s.mcpServer.AddTool(parseTool, s.handleParse)

	// Register SmartForm parse file tool
	parseFileTool := mcp.NewTool("smartform_parse_file", append([]mcp.ToolOption{
		mcp.WithDescription(descriptions.GetToolDescription("smartform_parse_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Row export file, relative to the configured directory"),
		),
	}, parseOptionArgs()...)...)
	s.mcpServer.AddTool(parseFileTool, s.handleParseFile)

	// Register legacy summary tool
	summaryTool := mcp.NewTool("smartform_summary",
		mcp.WithDescription(descriptions.GetToolDescription("smartform_summary")),
		mcp.WithString("rows", mcp.Description("JSON array of SmartForm rows")),
		mcp.WithString("path", mcp.Description("Row export file, used when rows is empty")),
	)
	s.mcpServer.AddTool(summaryTool, s.handleSummary)

	// Register row statistics tool
	statsTool := mcp.NewTool("smartform_stats", append([]mcp.ToolOption{
		mcp.WithDescription(descriptions.GetToolDescription("smartform_stats")),
		mcp.WithString("rows", mcp.Description("JSON array of SmartForm rows")),
		mcp.WithString("path", mcp.Description("Row export file, used when rows is empty")),
	}, parseOptionArgs()...)...)
	s.mcpServer.AddTool(statsTool, s.handleStats)

	// Register row export search tool
	searchTool := mcp.NewTool("smartform_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("smartform_search_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
		mcp.WithString("pattern",
			mcp.Description("Optional glob such as **/*invoice*.json, relative to the directory"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchDirectory)

	// Register server info tool
	serverInfoTool := mcp.NewTool("smartform_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("smartform_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleParse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.parseRequestFromArgs(request.GetArguments())
	if err != nil {
		return s.toolError(err), nil
	}
	if req.Rows == nil {
		return mcp.NewToolResultError("required argument \"rows\" not found"), nil
	}

	result, err := s.service.ParseRows(ctx, req)
	if err != nil {
		return s.toolError(err), nil
	}

	return s.jsonResult(s.formatParseHeader(result), result)
}

func (s *Server) handleParseFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return s.toolError(err), nil
	}

	req := smartform.ParseFileRequest{
		Path:    path,
		Options: s.optionsFromArgs(request.GetArguments()),
	}
	result, err := s.service.ParseFile(ctx, req)
	if err != nil {
		return s.toolError(err), nil
	}

	header := fmt.Sprintf("Parsed row export: %s\n", path) + s.formatParseHeader(result)
	return s.jsonResult(header, result)
}

func (s *Server) handleSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.resolveRows(ctx, request.GetArguments())
	if err != nil {
		return s.toolError(err), nil
	}

	summary, err := s.service.Summarize(ctx, req.Rows)
	if err != nil {
		return s.toolError(err), nil
	}

	header := fmt.Sprintf("SmartForm summary: %d page(s), %d main window(s), %d field(s), %d table type(s)\n",
		len(summary.Pages), len(summary.Windows), len(summary.Fields), len(summary.Tables))
	return s.jsonResult(header, summary)
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.resolveRows(ctx, request.GetArguments())
	if err != nil {
		return s.toolError(err), nil
	}

	stats, err := s.service.Stats(ctx, req)
	if err != nil {
		return s.toolError(err), nil
	}

	return mcp.NewToolResultText(s.formatStatsResult(stats)), nil
}

func (s *Server) handleSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.Directory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}
	pattern, _ := args["pattern"].(string) // glob over relative paths

	result, err := s.service.SearchDirectory(smartform.SearchDirectoryRequest{
		Directory: directory,
		Query:     query,
		Pattern:   pattern,
	})
	if err != nil {
		return s.toolError(err), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No row export files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.service.ServerInfo(s.config.ServerName, s.config.Version)
	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// parseRequestFromArgs reads the "rows" argument, which may be a JSON string
// or an already decoded array, together with any option overrides
func (s *Server) parseRequestFromArgs(args map[string]any) (smartform.ParseRequest, error) {
	var req smartform.ParseRequest

	var raw []byte
	switch rows := args["rows"].(type) {
	case nil:
		return req, nil
	case string:
		if strings.TrimSpace(rows) == "" {
			return req, nil
		}
		raw = []byte(rows)
	default:
		encoded, err := json.Marshal(rows)
		if err != nil {
			return req, fmt.Errorf("invalid rows argument: %w", err)
		}
		raw = encoded
	}

	// Inline rows count against the same limit as HTTP bodies
	if err := s.service.ValidateRequestSize(int64(len(raw))); err != nil {
		return req, err
	}

	req, err := smartform.DecodeParseRequest(raw)
	if err != nil {
		return req, err
	}
	if opts := s.optionsFromArgs(args); opts != nil {
		req.Options = opts
	}
	return req, nil
}

// resolveRows takes rows inline, or loads them from "path" when no rows
// are given
func (s *Server) resolveRows(ctx context.Context, args map[string]any) (smartform.ParseRequest, error) {
	req, err := s.parseRequestFromArgs(args)
	if err != nil || req.Rows != nil {
		return req, err
	}

	path, _ := args["path"].(string)
	if path == "" {
		return req, fmt.Errorf("either rows or path is required")
	}

	rows, err := s.service.ReadRows(ctx, path)
	if err != nil {
		return req, err
	}
	req.Rows = rows
	req.Options = s.optionsFromArgs(args)
	return req, nil
}

// optionsFromArgs collects the boolean option arguments that are present.
// It returns nil when there are none.
func (s *Server) optionsFromArgs(args map[string]any) *parser.OptionOverrides {
	var overrides parser.OptionOverrides
	found := false

	set := func(name string, target **bool) {
		if v, ok := args[name].(bool); ok {
			*target = &v
			found = true
		}
	}
	set(argTrackGraphics, &overrides.TrackGraphics)
	set(argTextBlockCapture, &overrides.TextBlockCapture)
	set(argForceEmptyCaptions, &overrides.ForceEmptyCaptions)

	if !found {
		return nil
	}
	return &overrides
}

// toolError reports err to the client. Internal faults are also logged when
// debugging, since their stack trace never reaches the client.
func (s *Server) toolError(err error) *mcp.CallToolResult {
	if s.config.IsDebug() && sferrors.IsType(err, sferrors.ErrorTypeInternalFault) {
		log.Printf("Tool call failed with %s severity: %v", sferrors.TypeOf(err).GetSeverity(), err)
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) jsonResult(header string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(header + "\n" + string(data)), nil
}

// Formatting methods
func (s *Server) formatParseHeader(result *parser.Result) string {
	windows, graphics := 0, 0
	for _, page := range result.Pages {
		windows += len(page.Windows)
		graphics += len(page.Graphics)
	}
	return fmt.Sprintf("SmartForm tree: %d page(s), %d window(s), %d graphic(s)\n",
		len(result.Pages), windows, graphics)
}

func (s *Server) formatStatsResult(stats *smartform.StatsResult) string {
	text := "SmartForm Row Statistics\n"
	text += fmt.Sprintf("Total rows: %d\n", stats.TotalRows)
	text += fmt.Sprintf("Max depth: %d\n", stats.MaxDepth)
	text += fmt.Sprintf("Markers: %d page, %d window, %d graphic\n",
		stats.PageMarkers, stats.WindowMarkers, stats.GraphicMarkers)
	text += fmt.Sprintf("Item rows: %d\n", stats.ItemRows)

	text += "\nTree:\n"
	text += fmt.Sprintf("  Pages: %d\n", stats.Pages)
	text += fmt.Sprintf("  Windows: %d\n", stats.Windows)
	text += fmt.Sprintf("  Graphics: %d\n", stats.Graphics)
	text += fmt.Sprintf("  Code blocks: %d\n", stats.CodeBlocks)
	text += fmt.Sprintf("  Distinct tables: %d\n", stats.Tables)
	text += fmt.Sprintf("  Distinct fields: %d\n", stats.Fields)

	// Element names in a stable order
	if len(stats.ElementCounts) > 0 {
		names := make([]string, 0, len(stats.ElementCounts))
		for name := range stats.ElementCounts {
			names = append(names, name)
		}
		sort.Strings(names)

		text += "\nElements:\n"
		for _, name := range names {
			text += fmt.Sprintf("  %s: %d\n", name, stats.ElementCounts[name])
		}
	}

	return text
}

func (s *Server) formatSearchDirectoryResult(result *smartform.SearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d row export file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	if result.Pattern != "" {
		text += fmt.Sprintf("Pattern: %s\n", result.Pattern)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatServerInfoResult(result *smartform.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max Request Size: %d MB\n", result.MaxRequestSize/(1024*1024))
	text += fmt.Sprintf("🔢 Max Rows: %d\n", result.MaxRows)
	text += fmt.Sprintf("⚙️  Parse Options: track_graphics=%t text_block_capture=%t force_empty_captions=%t\n",
		result.ParseOptions.TrackGraphics, result.ParseOptions.TextBlockCapture, result.ParseOptions.ForceEmptyCaptions)
	text += fmt.Sprintf("🗃️  Result Cache: %d/%d entries, %.1f%% hit rate\n\n",
		result.Cache.Size, result.Cache.Capacity, result.Cache.HitRate)

	// Directory contents
	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d row export files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No row export files found in default directory\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	switch {
	case s.config.IsServerMode():
		return s.runServerMode(ctx)
	case s.config.IsStdioMode():
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode: %s", s.config.Mode)
	}
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting SmartForm MCP server in stdio mode")
		log.Printf("Row export directory: %s", s.config.Directory)
	}

	// ServeStdio blocks until stdin is closed
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the HTTP API with MCP over streamable HTTP
// mounted next to it
func (s *Server) runServerMode(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("server not started: %w", err)
	}

	log.Printf("Starting SmartForm server on %s", s.config.Address())
	log.Printf("Row export directory: %s", s.config.Directory)

	// HTTP API and streamable MCP share one listener
	return httpapi.Serve(ctx, s.config.Address(), s.HTTPHandler())
}

// HTTPHandler returns the HTTP API with the MCP endpoint mounted at /mcp
func (s *Server) HTTPHandler() *httpapi.Handler {
	return httpapi.NewHandler(s.service,
		httpapi.WithMCP(server.NewStreamableHTTPServer(s.mcpServer)),
		httpapi.WithRequestLogging(s.config.IsDebug()),
	)
}
