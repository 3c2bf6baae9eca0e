package parser

import "strings"

// Normalize returns a copy of row with its textual fields trimmed. Absent
// strings already decode to "", so nothing else needs defaulting.
func Normalize(row Row) Row {
	row.Path = strings.TrimSpace(row.Path)
	row.ElemName = strings.TrimSpace(row.ElemName)
	row.ElemNS = strings.TrimSpace(row.ElemNS)
	row.NodeType = strings.TrimSpace(row.NodeType)
	row.TextPayload = strings.TrimSpace(row.TextPayload)
	return row
}
