package smartform

import (
	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

// ComputeStats describes a row stream together with the tree parsed from it.
// Table and field counts are distinct across the whole document.
func ComputeStats(rows []parser.Row, result *parser.Result) *StatsResult {
	stats := &StatsResult{
		TotalRows:     len(rows),
		ElementCounts: make(map[string]int),
	}

	for _, raw := range rows {
		row := parser.Normalize(raw)
		if row.Depth > stats.MaxDepth {
			stats.MaxDepth = row.Depth
		}
		if row.ElemName != "" {
			stats.ElementCounts[row.ElemName]++
		}

		switch row.ElemName {
		case parser.ElemItem:
			stats.ItemRows++
		case parser.ElemNodeType:
			switch row.TextPayload {
			case parser.MarkerPage:
				stats.PageMarkers++
			case parser.MarkerWindow:
				stats.WindowMarkers++
			case parser.MarkerGraphic:
				stats.GraphicMarkers++
			}
		}
	}

	if result == nil {
		return stats
	}

	tables := make(map[string]struct{})
	fields := make(map[string]struct{})
	collect := func(set map[string]struct{}, values []string) {
		for _, v := range values {
			set[v] = struct{}{}
		}
	}

	stats.Pages = len(result.Pages)
	for _, page := range result.Pages {
		stats.Windows += len(page.Windows)
		stats.Graphics += len(page.Graphics)
		for _, w := range page.Windows {
			stats.CodeBlocks += len(w.Code)
			collect(tables, w.Tables)
			collect(fields, w.Fields)
		}
		for _, g := range page.Graphics {
			collect(tables, g.Tables)
			collect(fields, g.Fields)
		}
	}
	stats.Tables = len(tables)
	stats.Fields = len(fields)

	return stats
}
