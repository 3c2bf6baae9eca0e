package smartform

import "fmt"

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "smartform_parse",
			Description: "Parse SmartForm rows into a page/window/graphic tree",
			Usage: "Use this tool with the rows of a flattened SmartForm export. Returns pages with their " +
				"windows (rows, cells, texts, code, captions, fields, tables) and graphics.",
			Parameters: "rows (required): JSON array of row objects or {\"rows\": [...]}, " +
				"track_graphics, text_block_capture, force_empty_captions (optional): parse options",
		},
		{
			Name:        "smartform_parse_file",
			Description: "Parse a SmartForm row export file from the configured directory",
			Usage:       "Use this tool when the export is stored as a .json file next to the server.",
			Parameters:  "path (required): file path, relative to the configured directory or absolute inside it",
		},
		{
			Name:        "smartform_summary",
			Description: "Produce the flat summary of a SmartForm row stream",
			Usage: "Use this tool for a quick inventory of page names, MAIN windows, caption fields " +
				"and TYPENAME tables without building the tree.",
			Parameters: "rows or path (one required): inline rows or a row export file",
		},
		{
			Name:        "smartform_stats",
			Description: "Count elements, markers and tree nodes of a SmartForm row stream",
			Usage:       "Use this tool to check how large a form is before parsing it in full.",
			Parameters:  "rows or path (one required): inline rows or a row export file",
		},
		{
			Name:        "smartform_search_directory",
			Description: "Search for SmartForm row export files in a directory",
			Usage:       "Use this tool to find .json row exports by name.",
			Parameters: "directory (optional): directory to search (uses default if empty), " +
				"query (optional): search query for fuzzy matching, " +
				"pattern (optional): doublestar glob relative to the directory",
		},
		{
			Name:        "smartform_server_info",
			Description: "Get server information, limits and available row export files",
			Usage:       "Use this tool first to learn what the server can do.",
			Parameters:  "none",
		},
	}
}

func usageGuidance(maxRequestSize int64) string {
	return `SmartForm Parser Usage Guide:

1. FIND EXPORTS:
   - Use 'smartform_search_directory' to list .json row exports

2. INSPECT:
   - Use 'smartform_stats' to see row, marker and element counts
   - Use 'smartform_summary' for the flat page/window/field/table inventory

3. PARSE:
   - Use 'smartform_parse' with inline rows, or 'smartform_parse_file' with a path
   - Every page lists its windows and graphics; code, captions, fields and
     tables are collected per window

IMPORTANT NOTES:
- Rows must keep their export order
- Requests are limited to ` + fmt.Sprintf("%d", maxRequestSize/(1024*1024)) + `MB
- Table and field detection is heuristic`
}
