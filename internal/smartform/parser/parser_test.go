package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
)

func row(elem, text string) Row {
	return Row{ElemName: elem, TextPayload: text, NodeType: "ELEMENT"}
}

// rowsOf builds rows from alternating element name / text pairs
func rowsOf(pairs ...string) []Row {
	rows := make([]Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r := row(pairs[i], pairs[i+1])
		r.ID = len(rows) + 1
		rows = append(rows, r)
	}
	return rows
}

func mustParse(t *testing.T, opts Options, rows []Row) *Result {
	t.Helper()
	result, err := New(opts).Parse(rows)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestParse_EndToEnd(t *testing.T) {
	rows := rowsOf(
		"NODETYPE", "PA",
		"INAME", "%PAGE1",
		"NODETYPE", "WI",
		"INAME", "WIN1",
		"item", "SELECT * FROM ZTABLE1.",
		"CAPTION", "Hello",
	)

	result := mustParse(t, DefaultOptions(), rows)

	require.Len(t, result.Pages, 1)
	page := result.Pages[0]
	assert.Equal(t, "PAGE1", page.PageName)
	assert.Empty(t, page.Graphics)

	require.Len(t, page.Windows, 1)
	window := page.Windows[0]
	assert.Equal(t, "WIN1", window.WindowName)
	assert.Equal(t, []string{"ZTABLE1"}, window.Tables)
	assert.Equal(t, []string{"CAPTION:Hello"}, window.Captions)
	assert.Equal(t, []string{"SELECT * FROM ZTABLE1."}, window.Code)
	assert.Empty(t, window.Fields)
	assert.Empty(t, window.Rows)
	assert.Empty(t, window.Cells)
	assert.Empty(t, window.Texts)
}

func TestParse_EmptyInput(t *testing.T) {
	result := mustParse(t, DefaultOptions(), nil)
	assert.NotNil(t, result.Pages)
	assert.Empty(t, result.Pages)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pages":[]}`, string(data))
}

func TestParse_JSONShape(t *testing.T) {
	rows := rowsOf(
		"NODETYPE", "PA", "INAME", "%P",
		"NODETYPE", "GR", "INAME", "LOGO",
		"NODETYPE", "WI", "INAME", "MAIN",
	)

	data, err := json.Marshal(mustParse(t, DefaultOptions(), rows))
	require.NoError(t, err)
	assert.JSONEq(t, `{"pages":[{"page_name":"P",
		"windows":[{"window_name":"MAIN","rows":[],"cells":[],"texts":[],"code":[],
			"captions":[],"fields":[],"tables":[]}],
		"graphics":[{"graphic_name":"LOGO","captions":[],"fields":[],"tables":[]}]}]}`, string(data))
}

func TestParse_PageDeduplication(t *testing.T) {
	t.Run("immediately repeated name", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%PAGE1",
			"NODETYPE", "WI", "INAME", "W1",
			"NODETYPE", "PA", "INAME", "%PAGE1",
			"NODETYPE", "WI", "INAME", "W2",
		)

		result := mustParse(t, DefaultOptions(), rows)
		require.Len(t, result.Pages, 1)
		require.Len(t, result.Pages[0].Windows, 2)
		assert.Equal(t, "W1", result.Pages[0].Windows[0].WindowName)
		assert.Equal(t, "W2", result.Pages[0].Windows[1].WindowName)
	})

	t.Run("repeated name after another page", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%PAGE1",
			"NODETYPE", "PA", "INAME", "%PAGE2",
			"NODETYPE", "PA", "INAME", "%PAGE1",
		)

		result := mustParse(t, DefaultOptions(), rows)
		require.Len(t, result.Pages, 3)
		assert.Equal(t, "PAGE1", result.Pages[0].PageName)
		assert.Equal(t, "PAGE2", result.Pages[1].PageName)
		assert.Equal(t, "PAGE1", result.Pages[2].PageName)
	})

	t.Run("comparison uses the raw name", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%P1",
			"NODETYPE", "PA", "INAME", "P1",
		)

		result := mustParse(t, DefaultOptions(), rows)
		require.Len(t, result.Pages, 2)
		assert.Equal(t, "P1", result.Pages[0].PageName)
		assert.Equal(t, "P1", result.Pages[1].PageName)
	})

	t.Run("suppressed page still resets the window", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%PAGE1",
			"NODETYPE", "WI", "INAME", "W1",
			"NODETYPE", "PA", "INAME", "%PAGE1",
			"CAPTION", "orphan",
		)

		result := mustParse(t, DefaultOptions(), rows)
		require.Len(t, result.Pages, 1)
		assert.Empty(t, result.Pages[0].Windows[0].Captions)
	})
}

func TestParse_CodeBlocks(t *testing.T) {
	t.Run("run closed by a row marker", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%P",
			"NODETYPE", "WI", "INAME", "MAIN",
			"item", "* read header\nDATA lv_x TYPE i.",
			"item", "lv_x = 1. \" set counter",
			"INAME", "%ROW1",
		)

		window := mustParse(t, DefaultOptions(), rows).Pages[0].Windows[0]
		assert.Equal(t, []string{"DATA lv_x TYPE i.\nlv_x = 1."}, window.Code)
		assert.Equal(t, []string{"%ROW1"}, window.Rows)
	})

	t.Run("flushed at end of stream", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%P",
			"NODETYPE", "WI", "INAME", "MAIN",
			"item", "CLEAR gs_head.",
			"item", "gs_head-vbeln = lv_vbeln.",
		)

		window := mustParse(t, DefaultOptions(), rows).Pages[0].Windows[0]
		assert.Equal(t, []string{"CLEAR gs_head.\ngs_head-vbeln = lv_vbeln."}, window.Code)
		assert.Equal(t, []string{"GS_HEAD-VBELN"}, window.Fields)
	})

	t.Run("separate runs", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%P",
			"NODETYPE", "WI", "INAME", "MAIN",
			"item", "a = 1.",
			"CAPTION", "between",
			"item", "b = 2.",
			"INAME", "%CELL1",
		)

		window := mustParse(t, DefaultOptions(), rows).Pages[0].Windows[0]
		assert.Equal(t, []string{"a = 1.", "b = 2."}, window.Code)
		assert.Equal(t, []string{"%CELL1"}, window.Cells)
	})

	t.Run("comment-only run produces nothing", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%P",
			"NODETYPE", "WI", "INAME", "MAIN",
			"item", "* just a comment",
			"CAPTION", "x",
		)

		window := mustParse(t, DefaultOptions(), rows).Pages[0].Windows[0]
		assert.Empty(t, window.Code)
	})

	t.Run("window change keeps code with its window", func(t *testing.T) {
		rows := rowsOf(
			"NODETYPE", "PA", "INAME", "%P",
			"NODETYPE", "WI", "INAME", "W1",
			"item", "x = 1.",
			"NODETYPE", "WI", "INAME", "W2",
			"item", "y = 2.",
		)

		windows := mustParse(t, DefaultOptions(), rows).Pages[0].Windows
		require.Len(t, windows, 2)
		assert.Equal(t, []string{"x = 1."}, windows[0].Code)
		assert.Equal(t, []string{"y = 2."}, windows[1].Code)
	})
}

func TestParse_StructuralLists(t *testing.T) {
	opts := DefaultOptions()
	opts.TextBlockCapture = false

	rows := rowsOf(
		"NODETYPE", "PA", "INAME", "%P",
		"NODETYPE", "WI", "INAME", "MAIN",
		"INAME", "%ROW1",
		"INAME", "%CELL1",
		"INAME", "%CELL2",
		"INAME", "%TEXT1",
		"INAME", "%ROW2",
	)

	window := mustParse(t, opts, rows).Pages[0].Windows[0]
	assert.Equal(t, []string{"%ROW1", "%ROW2"}, window.Rows)
	assert.Equal(t, []string{"%CELL1", "%CELL2"}, window.Cells)
	assert.Equal(t, []string{"%TEXT1"}, window.Texts)
}

func TestParse_TextBlocks(t *testing.T) {
	rows := rowsOf(
		"NODETYPE", "PA", "INAME", "%P",
		"NODETYPE", "WI", "INAME", "MAIN",
		"INAME", "%TEXT1",
		"TDLINE", "Dear customer,",
		"TDLINE", "",
		"TDLINE", "  gs-a  ",
		"CAPTION", "ignored",
		"STYLE_NAME", "ZSTYLE",
		"CAPTION", "after",
	)

	t.Run("capture enabled", func(t *testing.T) {
		window := mustParse(t, DefaultOptions(), rows).Pages[0].Windows[0]
		assert.Equal(t, []string{"Dear customer,", "gs-a"}, window.Texts)
		assert.Equal(t, []string{"CAPTION:after"}, window.Captions)
		assert.Empty(t, window.Fields)
	})

	t.Run("capture disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.TextBlockCapture = false

		window := mustParse(t, opts, rows).Pages[0].Windows[0]
		assert.Equal(t, []string{"%TEXT1"}, window.Texts)
		assert.Equal(t, []string{"CAPTION:after", "CAPTION:ignored"}, window.Captions)
		assert.Equal(t, []string{"GS-A"}, window.Fields)
	})
}

func TestParse_Graphics(t *testing.T) {
	rows := rowsOf(
		"NODETYPE", "PA", "INAME", "%P",
		"NODETYPE", "GR", "INAME", "LOGO",
		"CAPTION", "Logo caption",
		"NODETYPE", "WI", "INAME", "MAIN",
		"NAME", "gs-f",
	)

	t.Run("tracked", func(t *testing.T) {
		page := mustParse(t, DefaultOptions(), rows).Pages[0]
		require.Len(t, page.Graphics, 1)
		graphic := page.Graphics[0]
		assert.Equal(t, "LOGO", graphic.GraphicName)
		assert.Equal(t, []string{"CAPTION:Logo caption", "NAME:gs-f"}, graphic.Captions)
		assert.Equal(t, []string{"GS-F"}, graphic.Fields)

		require.Len(t, page.Windows, 1)
		assert.Equal(t, []string{"NAME:gs-f"}, page.Windows[0].Captions)
		assert.Equal(t, []string{"GS-F"}, page.Windows[0].Fields)
	})

	t.Run("untracked", func(t *testing.T) {
		opts := DefaultOptions()
		opts.TrackGraphics = false

		page := mustParse(t, opts, rows).Pages[0]
		assert.Empty(t, page.Graphics)
		require.Len(t, page.Windows, 1)
		assert.Equal(t, []string{"NAME:gs-f"}, page.Windows[0].Captions)
	})

	t.Run("new page resets the graphic", func(t *testing.T) {
		more := append(append([]Row{}, rows...), rowsOf(
			"NODETYPE", "PA", "INAME", "%P2",
			"CAPTION", "orphan",
		)...)

		result := mustParse(t, DefaultOptions(), more)
		require.Len(t, result.Pages, 2)
		assert.NotContains(t, result.Pages[0].Graphics[0].Captions, "CAPTION:orphan")
	})
}

func TestParse_ForceEmptyCaptions(t *testing.T) {
	opts := DefaultOptions()
	opts.ForceEmptyCaptions = true

	rows := rowsOf(
		"NODETYPE", "PA", "INAME", "%P",
		"NODETYPE", "GR", "INAME", "LOGO",
		"NODETYPE", "WI", "INAME", "MAIN",
		"CAPTION", "Hello",
		"TYPENAME", "TY_TAB",
	)

	page := mustParse(t, opts, rows).Pages[0]
	assert.NotNil(t, page.Windows[0].Captions)
	assert.Empty(t, page.Windows[0].Captions)
	assert.Empty(t, page.Graphics[0].Captions)
	assert.Equal(t, []string{"TY_TAB"}, page.Windows[0].Tables)
}

func TestParse_ExtractionProperties(t *testing.T) {
	rows := rowsOf(
		"NODETYPE", "PA", "INAME", "%P",
		"NODETYPE", "WI", "INAME", "MAIN",
		"TYPENAME", "TY_T_ITEMS",
		"TYPENAME", "ztab_lines",
		"TYPENAME", "char10",
		"item", "SELECT * FROM zb INTO TABLE lt.",
		"item", "SELECT * FROM za WHERE a-b = c-d AND a-b = 1.",
	)

	window := mustParse(t, DefaultOptions(), rows).Pages[0].Windows[0]
	assert.Equal(t, []string{"TY_T_ITEMS", "ZA", "ZB", "ztab_lines"}, window.Tables)
	assert.Equal(t, []string{"A-B", "C-D"}, window.Fields)
	assert.Equal(t, []string{"TYPENAME:TY_T_ITEMS", "TYPENAME:char10", "TYPENAME:ztab_lines"}, window.Captions)
}

func TestParse_TolerantInput(t *testing.T) {
	t.Run("window without page is dropped", func(t *testing.T) {
		rows := rowsOf("NODETYPE", "WI", "INAME", "W1", "CAPTION", "x", "item", "a = 1.")
		result := mustParse(t, DefaultOptions(), rows)
		assert.Empty(t, result.Pages)
	})

	t.Run("pending marker waits for its name", func(t *testing.T) {
		rows := rowsOf("NODETYPE", "PA", "CAPTION", "x", "INAME", "%P1")
		result := mustParse(t, DefaultOptions(), rows)
		require.Len(t, result.Pages, 1)
		assert.Equal(t, "P1", result.Pages[0].PageName)
	})

	t.Run("rows outside any window are ignored", func(t *testing.T) {
		rows := rowsOf("CAPTION", "x", "item", "a = 1.", "NODETYPE", "PA", "INAME", "%P", "TYPENAME", "TT")
		result := mustParse(t, DefaultOptions(), rows)
		require.Len(t, result.Pages, 1)
		assert.Empty(t, result.Pages[0].Windows)
	})

	t.Run("padded fields are trimmed", func(t *testing.T) {
		rows := []Row{
			{ElemName: " NODETYPE ", TextPayload: " PA "},
			{ElemName: "INAME", TextPayload: "  %PAGE1\n"},
		}
		result := mustParse(t, DefaultOptions(), rows)
		require.Len(t, result.Pages, 1)
		assert.Equal(t, "PAGE1", result.Pages[0].PageName)
		assert.Equal(t, " PA ", rows[0].TextPayload, "input rows must not be modified")
	})
}

func TestParse_Idempotent(t *testing.T) {
	rows := rowsOf(
		"NODETYPE", "PA", "INAME", "%P",
		"NODETYPE", "WI", "INAME", "MAIN",
		"TYPENAME", "TY_T_A", "TYPENAME", "TY_T_B", "TYPENAME", "TY_T_C",
		"item", "SELECT * FROM z1. SELECT * FROM z2. x-y = a-b.",
		"CAPTION", "c", "NAME", "n", "FORMNAME", "f",
	)

	p := New(DefaultOptions())
	first, err := p.Parse(rows)
	require.NoError(t, err)
	second, err := p.Parse(rows)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestParse_PackageLevel(t *testing.T) {
	result, err := Parse(rowsOf("NODETYPE", "PA", "INAME", "%P"))
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, DefaultOptions(), New(DefaultOptions()).Options())
}

func TestNormalize(t *testing.T) {
	in := Row{ID: 7, Path: " /a/b ", ElemName: " INAME\t", ElemNS: " ns ", NodeType: " ELEMENT ", TextPayload: "\n MAIN "}
	out := Normalize(in)

	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "/a/b", out.Path)
	assert.Equal(t, "INAME", out.ElemName)
	assert.Equal(t, "ns", out.ElemNS)
	assert.Equal(t, "ELEMENT", out.NodeType)
	assert.Equal(t, "MAIN", out.TextPayload)
	assert.Equal(t, " INAME\t", in.ElemName)
}

func TestRowDecoding(t *testing.T) {
	var rows []Row
	err := json.Unmarshal([]byte(`[
		{"ID": 1, "PARENT_ID": 0, "DEPTH": 1, "PATH": "/sf", "ELEM_NAME": "NODETYPE",
		 "ELEM_NS": "", "NODE_TYPE": "ELEMENT", "ATTRIBUTES": [], "TEXT_PAYLOAD": "PA"},
		{"ID": 2, "ELEM_NAME": "INAME", "TEXT_PAYLOAD": "%PAGE1", "ATTRIBUTES": [{"k": "v"}, 3]},
		{"id": 3, "elem_name": "NODETYPE", "text_payload": "WI"}
	]`), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "/sf", rows[0].Path)
	assert.Equal(t, "", rows[1].Path)
	assert.Len(t, rows[1].Attributes, 2)
	assert.Equal(t, 3, rows[2].ID)
	assert.Equal(t, "WI", rows[2].TextPayload)
}

func TestParse_RecoversInternalFault(t *testing.T) {
	rows := rowsOf(
		"NODETYPE", "PA",
		"INAME", "%PAGE1",
		"CAPTION", "Hello",
		"item", "WRITE x.",
	)
	rows[2].ID = 77

	p := New(DefaultOptions())
	p.beforeRow = func(index int, row Row) {
		if row.ElemName == "CAPTION" {
			panic("caption handler exploded")
		}
	}

	result, err := p.Parse(rows)
	require.Error(t, err)
	assert.Nil(t, result)

	var sfErr *sferrors.SmartFormError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, sferrors.ErrorTypeInternalFault, sfErr.Type)
	assert.Equal(t, 2, sfErr.RowIndex)
	assert.Equal(t, 77, sfErr.RowID)
	assert.Contains(t, sfErr.Message, "caption handler exploded")
	assert.NotEmpty(t, sfErr.StackTrace)
	assert.False(t, sfErr.Type.IsClientError())
}

func TestParse_RecoversErrorPanic(t *testing.T) {
	cause := errors.New("index out of range")
	p := New(DefaultOptions())
	p.beforeRow = func(int, Row) { panic(cause) }

	_, err := p.Parse(rowsOf("INAME", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, sferrors.IsType(err, sferrors.ErrorTypeInternalFault))
}

func TestParse_FaultDoesNotLeakIntoNextCall(t *testing.T) {
	p := New(DefaultOptions())
	p.beforeRow = func(index int, _ Row) {
		if index == 0 {
			panic("first call only")
		}
	}
	_, err := p.Parse(rowsOf("INAME", "x"))
	require.Error(t, err)

	p.beforeRow = nil
	result, err := p.Parse(rowsOf("NODETYPE", "PA", "INAME", "%P"))
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "P", result.Pages[0].PageName)
}
