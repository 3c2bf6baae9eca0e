package smartform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

// rowsOf builds rows from alternating element name / text pairs
func rowsOf(pairs ...string) []parser.Row {
	rows := make([]parser.Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, parser.Row{
			ID:          len(rows) + 1,
			ElemName:    pairs[i],
			TextPayload: pairs[i+1],
			NodeType:    "ELEMENT",
		})
	}
	return rows
}

func invoiceRows() []parser.Row {
	return rowsOf(
		"NODETYPE", "PA",
		"INAME", "%PAGE1",
		"NODETYPE", "WI",
		"INAME", "WIN1",
		"item", "SELECT * FROM ZTABLE1.",
		"CAPTION", "Hello",
	)
}

func writeRows(t *testing.T, dir, name string, rows []parser.Row) string {
	t.Helper()
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
