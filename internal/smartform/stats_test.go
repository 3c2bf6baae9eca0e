package smartform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

func TestComputeStats(t *testing.T) {
	rows := append(invoiceRows(), rowsOf(
		"NODETYPE", "GR", "INAME", "LOGO",
		"item", "ZVBAK-VBELN",
		"NODETYPE", "WI", "INAME", "WIN2",
		"item", "SELECT x FROM ztable2",
	)...)
	rows[0].TextPayload = " PA "
	rows[3].Depth = 4

	result, err := parser.Parse(rows)
	require.NoError(t, err)

	stats := ComputeStats(rows, result)
	assert.Equal(t, len(rows), stats.TotalRows)
	assert.Equal(t, 4, stats.MaxDepth)
	assert.Equal(t, 1, stats.PageMarkers)
	assert.Equal(t, 2, stats.WindowMarkers)
	assert.Equal(t, 1, stats.GraphicMarkers)
	assert.Equal(t, 3, stats.ItemRows)
	assert.Equal(t, 4, stats.ElementCounts["NODETYPE"])
	assert.Equal(t, 4, stats.ElementCounts["INAME"])
	assert.Equal(t, 1, stats.ElementCounts["CAPTION"])

	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 2, stats.Windows)
	assert.Equal(t, 1, stats.Graphics)
	assert.Equal(t, 2, stats.Tables)
	assert.Equal(t, 1, stats.Fields)
}

func TestComputeStats_NoResult(t *testing.T) {
	stats := ComputeStats(nil, nil)
	assert.Zero(t, stats.TotalRows)
	assert.NotNil(t, stats.ElementCounts)
	assert.Zero(t, stats.Pages)
}
