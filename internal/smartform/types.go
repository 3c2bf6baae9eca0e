package smartform

import "github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"

// FileInfo represents information about a row export file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// ParseRequest represents a request to parse a row stream. Options that
// are set override the service defaults for this request only.
type ParseRequest struct {
	Rows    []parser.Row            `json:"rows"`
	Options *parser.OptionOverrides `json:"options,omitempty"`
}

// ParseFileRequest represents a request to parse a row export file
type ParseFileRequest struct {
	Path    string                  `json:"path"`
	Options *parser.OptionOverrides `json:"options,omitempty"`
}

// ParseBatchRequest represents a request to parse several documents
type ParseBatchRequest struct {
	Documents [][]parser.Row          `json:"documents"`
	Options   *parser.OptionOverrides `json:"options,omitempty"`
}

// SearchDirectoryRequest represents a request to search for row export files
type SearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
	Pattern   string `json:"pattern,omitempty"`
}

// Response Types

// ParseBatchResult holds one result per document, in request order
type ParseBatchResult struct {
	Results []*parser.Result `json:"results"`
	Count   int              `json:"count"`
}

// StatsResult describes a row stream and the tree built from it
type StatsResult struct {
	TotalRows      int            `json:"total_rows"`
	MaxDepth       int            `json:"max_depth"`
	ElementCounts  map[string]int `json:"element_counts"`
	PageMarkers    int            `json:"page_markers"`
	WindowMarkers  int            `json:"window_markers"`
	GraphicMarkers int            `json:"graphic_markers"`
	ItemRows       int            `json:"item_rows"`

	Pages      int `json:"pages"`
	Windows    int `json:"windows"`
	Graphics   int `json:"graphics"`
	CodeBlocks int `json:"code_blocks"`
	Tables     int `json:"tables"`
	Fields     int `json:"fields"`
}

// SearchDirectoryResult represents the result of a row export file search
type SearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
	Pattern     string     `json:"pattern,omitempty"`
}

// ToolInfo describes an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string         `json:"server_name"`
	Version           string         `json:"version"`
	DefaultDirectory  string         `json:"default_directory"`
	MaxRequestSize    int64          `json:"max_request_size"`
	MaxRows           int            `json:"max_rows"`
	ParseOptions      parser.Options `json:"parse_options"`
	Cache             CacheStats     `json:"cache"`
	AvailableTools    []ToolInfo     `json:"available_tools"`
	DirectoryContents []FileInfo     `json:"directory_contents"`
	UsageGuidance     string         `json:"usage_guidance"`
}
