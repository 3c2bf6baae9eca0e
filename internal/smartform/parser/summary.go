package parser

import "strings"

// Summary is the flat, document-wide view of a row stream: every page,
// main window, caption-like field and table type, each sorted and unique.
type Summary struct {
	Pages   []PageRef           `json:"pages"`
	Windows []WindowRef         `json:"windows"`
	Fields  []map[string]string `json:"fields"`
	Tables  []TableRef          `json:"tables"`
}

// PageRef names a page in a Summary
type PageRef struct {
	PageName string `json:"page_name"`
}

// WindowRef names a window in a Summary
type WindowRef struct {
	WindowName string `json:"window_name"`
}

// TableRef names a table type in a Summary
type TableRef struct {
	TableType string `json:"table_type"`
}

const nodeTypeElement = "ELEMENT"

// Summarize scans rows without tracking containers. Page names keep their
// marker prefix, and only windows named MAIN are reported.
func Summarize(rows []Row) *Summary {
	pages := make(stringSet)
	windows := make(stringSet)
	fields := make(stringSet)
	tables := make(stringSet)

	for i := range rows {
		row := Normalize(rows[i])
		elem, text := row.ElemName, row.TextPayload

		if elem == ElemName && strings.HasPrefix(text, PrefixPage) {
			pages.add(text)
		}

		if row.NodeType == nodeTypeElement && elem == ElemName && strings.ToUpper(text) == "MAIN" {
			windows.add(text)
		}

		// unlike the tree extractors, empty captions are kept here
		if captionElements[elem] {
			fields.add(elem + ":" + text)
		}

		tables.add(ExtractTypeTables(elem, text)...)
	}

	summary := &Summary{
		Pages:   make([]PageRef, 0, len(pages)),
		Windows: make([]WindowRef, 0, len(windows)),
		Fields:  make([]map[string]string, 0, len(fields)),
		Tables:  make([]TableRef, 0, len(tables)),
	}
	for _, p := range pages.sorted() {
		summary.Pages = append(summary.Pages, PageRef{PageName: p})
	}
	for _, w := range windows.sorted() {
		summary.Windows = append(summary.Windows, WindowRef{WindowName: w})
	}
	for _, f := range fields.sorted() {
		key, value, _ := strings.Cut(f, ":")
		summary.Fields = append(summary.Fields, map[string]string{key: value})
	}
	for _, t := range tables.sorted() {
		summary.Tables = append(summary.Tables, TableRef{TableType: t})
	}

	return summary
}
