package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	// Parsing Tools
	SmartFormParseDescription = `Rebuild the page/window/graphic tree of a SmartForm from its flattened XML rows.

**When to use:** You have the row export of a SmartForm (one row per XML node, in document order) and need to know which pages, windows and graphics it defines and what each window references.

**Why it's useful:** Turns thousands of generic XML rows into a small tree. Every window lists its table rows, cells, text blocks, program code, captions, work-area fields and database tables.

**Examples:**
• Migration inventory: "Which database tables does the invoice form read, per window?"
• Documentation: "List all windows of ZSF_DELIVERY_NOTE and the captions they print"
• Code review: "Show the program lines attached to the MAIN window"

**Common workflows:**
1. Analysis: smartform_stats → smartform_parse → inspect windows
2. Comparison: Parse two form versions → diff tables and fields per window

**Best practices:** Keep rows in export order. Pass track_graphics=false to reproduce window-only output.`

	SmartFormParseFileDescription = `Parse a SmartForm row export stored as a .json file in the server's directory.

**When to use:** The export already sits next to the server, or is too large to paste inline.

**Why it's useful:** Same tree as smartform_parse without moving the rows through the conversation.

**Examples:**
• "Parse exports/zsf_invoice.json"
• "Parse zsf_order_confirmation.json with empty captions forced"

**Best practices:** Use smartform_search_directory to find the file first. Paths are relative to the configured directory.`

	SmartFormSummaryDescription = `Produce the flat summary of a SmartForm row stream without building the tree.

**When to use:** You only need the list of page names, MAIN windows, caption-like fields and TYPENAME tables of the whole form.

**Why it's useful:** A fast, document-wide inventory that matches the output of older SmartForm tooling.

**Examples:**
• "Which pages does this form have?"
• "List every caption and form name in the export"

**Best practices:** Page names keep their % prefix here. Use smartform_parse when you need per-window detail.`

	SmartFormStatsDescription = `Count rows, element names, container markers and resulting tree nodes of a SmartForm row stream.

**When to use:** Before a full parse, or to sanity check an export that produced an unexpected tree.

**Why it's useful:** Shows how many page, window and graphic markers the rows contain and how many containers the parser built from them.

**Examples:**
• "How deep is the XML and how many windows does it declare?"
• "Why did the parse return fewer pages than markers?" (repeated page names are merged)

**Best practices:** Compare marker counts with tree counts to spot windows that appear before any page.`

	// Search and Discovery Tools
	SmartFormSearchDirectoryDescription = `Find SmartForm row export files (.json) in a directory with fuzzy name matching.

**When to use:** Looking for the export of a particular form before parsing it.

**Examples:**
• "Find exports with invoice in the name"
• "List all row exports in archive/" (pattern: archive/**)

**Best practices:** Query words of four or more letters tolerate one typo. Leave directory empty to search the configured directory. Hidden directories are skipped.`

	SmartFormServerInfoDescription = `Get server information, active limits, parser options and available row exports.

**When to use:** At the start of a session to learn what the server can do and which exports exist.

**Best practices:** Check the parse options here; requests without options use them.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"smartform_parse":            SmartFormParseDescription,
	"smartform_parse_file":       SmartFormParseFileDescription,
	"smartform_summary":          SmartFormSummaryDescription,
	"smartform_stats":            SmartFormStatsDescription,
	"smartform_search_directory": SmartFormSearchDirectoryDescription,
	"smartform_server_info":      SmartFormServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
