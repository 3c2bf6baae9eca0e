package parser

import (
	"regexp"
	"strings"
)

var (
	// FROM followed by a table identifier, e.g. "SELECT * FROM ztable INTO ..."
	sqlTablePattern = regexp.MustCompile(`(?i)FROM\s+([A-Za-z0-9_./]+)`)

	// work area qualified field, e.g. "gs_header-vbeln"
	workAreaFieldPattern = regexp.MustCompile(`[A-Za-z0-9_]+-[A-Za-z0-9_]+`)

	captionElements = map[string]bool{
		ElemCaption:   true,
		ElemFormName:  true,
		ElemNameField: true,
		ElemTypeName:  true,
	}
)

// Extraction holds everything the heuristic extractors found in one row
type Extraction struct {
	Captions []string
	Fields   []string
	Tables   []string
}

// Empty reports whether no extractor matched
func (e Extraction) Empty() bool {
	return len(e.Captions) == 0 && len(e.Fields) == 0 && len(e.Tables) == 0
}

// ExtractRow runs all heuristic extractors against a normalized row
func ExtractRow(elem, text string) Extraction {
	tables := ExtractSQLTables(text)
	tables = appendUnique(tables, ExtractTypeTables(elem, text)...)
	return Extraction{
		Captions: ExtractCaptions(elem, text),
		Fields:   ExtractFields(text),
		Tables:   tables,
	}
}

// ExtractCaptions returns "<elem>:<text>" for caption-bearing elements
func ExtractCaptions(elem, text string) []string {
	if text == "" || !captionElements[elem] {
		return nil
	}
	return []string{elem + ":" + text}
}

// ExtractSQLTables returns the uppercased table names named after FROM.
// A trailing statement terminator is not part of the name.
func ExtractSQLTables(text string) []string {
	var tables []string
	for _, m := range sqlTablePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimRight(m[1], ".")
		if name == "" {
			continue
		}
		tables = appendUnique(tables, strings.ToUpper(name))
	}
	return tables
}

// ExtractFields returns the uppercased <struct>-<field> references in text
func ExtractFields(text string) []string {
	var fields []string
	for _, m := range workAreaFieldPattern.FindAllString(text, -1) {
		fields = appendUnique(fields, strings.ToUpper(m))
	}
	return fields
}

// ExtractTypeTables treats a TYPENAME as a table type when it contains a "T"
// or, case-insensitively, "TAB". The check is deliberately broad.
func ExtractTypeTables(elem, text string) []string {
	if elem != ElemTypeName {
		return nil
	}
	if strings.Contains(text, "T") || strings.Contains(strings.ToUpper(text), "TAB") {
		return []string{text}
	}
	return nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
