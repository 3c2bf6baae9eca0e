package parser

import (
	"strings"

	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
)

// Parser reconstructs SmartForm page trees from flattened rows. A Parser
// holds only its options and may be shared between goroutines.
type Parser struct {
	opts Options

	// beforeRow, when set, sees every normalized row before it is consumed
	beforeRow func(index int, row Row)
}

// New creates a parser with the given options
func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Options returns the parser's options
func (p *Parser) Options() Options {
	return p.opts
}

// Parse converts rows into a page tree in a single pass. Malformed input is
// tolerated; an error is only returned for an internal fault.
func (p *Parser) Parse(rows []Row) (result *Result, err error) {
	st := newParseState(p.opts)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			fault := sferrors.NewInternalFault(r)
			if st.index < len(rows) {
				fault.WithRow(st.index, rows[st.index].ID)
			}
			err = fault
		}
	}()

	for st.index = 0; st.index < len(rows); st.index++ {
		row := Normalize(rows[st.index])
		if p.beforeRow != nil {
			p.beforeRow(st.index, row)
		}
		st.consume(row)
	}
	st.finish()

	return st.result(), nil
}

// Parse parses rows with DefaultOptions
func Parse(rows []Row) (*Result, error) {
	return New(DefaultOptions()).Parse(rows)
}

// parseState is the per-call mutable state of one parse
type parseState struct {
	opts  Options
	index int

	tracker     TrackerState
	pages       []*pageBuilder
	lastPageRaw *string

	page    *pageBuilder
	window  *windowBuilder
	graphic *graphicBuilder

	code        codeBuffer
	inTextBlock bool
}

func newParseState(opts Options) *parseState {
	return &parseState{opts: opts, tracker: StateIdle}
}

func (s *parseState) consume(row Row) {
	next, transition := Step(s.tracker, row.ElemName, row.TextPayload, s.opts.TrackGraphics)
	s.tracker = next

	switch transition {
	case TransitionMarker:
		return
	case TransitionOpenPage:
		s.openPage(row.TextPayload)
		return
	case TransitionOpenWindow:
		s.openWindow(row.TextPayload)
		return
	case TransitionOpenGraphic:
		s.openGraphic(row.TextPayload)
		return
	}

	if s.opts.TextBlockCapture && s.captureText(row) {
		return
	}

	s.extract(row)
	s.classify(row)
}

// openPage opens a page unless the raw name repeats the last opened page.
// Either way the current window and graphic are reset.
func (s *parseState) openPage(raw string) {
	s.code.flush()
	s.window = nil
	s.graphic = nil

	if s.lastPageRaw != nil && *s.lastPageRaw == raw {
		return
	}

	page := newPageBuilder(raw)
	s.pages = append(s.pages, page)
	s.page = page
	s.lastPageRaw = &raw
}

// openWindow opens a window on the current page. Without a page the window
// still becomes current but is never emitted.
func (s *parseState) openWindow(name string) {
	s.code.flush()
	window := newWindowBuilder(name)
	if s.page != nil {
		s.page.windows = append(s.page.windows, window)
	}
	s.window = window
}

func (s *parseState) openGraphic(name string) {
	graphic := newGraphicBuilder(name)
	if s.page != nil {
		s.page.graphics = append(s.page.graphics, graphic)
	}
	s.graphic = graphic
}

// captureText handles the %TEXT ... STYLE_NAME region and reports whether
// the row was used by it.
func (s *parseState) captureText(row Row) bool {
	if !s.inTextBlock {
		if row.ElemName != ElemName || !strings.HasPrefix(row.TextPayload, PrefixText) {
			return false
		}
		s.code.flush()
		s.inTextBlock = true
		return true
	}

	switch row.ElemName {
	case ElemStyleName:
		s.inTextBlock = false
	case ElemTextLine:
		if row.TextPayload != "" && s.window != nil {
			s.window.texts = append(s.window.texts, row.TextPayload)
		}
	}
	return true
}

func (s *parseState) extract(row Row) {
	if s.window == nil && (s.graphic == nil || !s.opts.TrackGraphics) {
		return
	}

	found := ExtractRow(row.ElemName, row.TextPayload)
	if found.Empty() {
		return
	}

	if s.window != nil {
		s.window.acc.absorb(found)
	}
	if s.opts.TrackGraphics && s.graphic != nil {
		s.graphic.acc.absorb(found)
	}
}

func (s *parseState) classify(row Row) {
	if s.window == nil {
		return
	}

	switch Classify(row.ElemName, row.TextPayload) {
	case KindRow:
		s.code.flush()
		s.window.rows = append(s.window.rows, row.TextPayload)
	case KindCell:
		s.code.flush()
		s.window.cells = append(s.window.cells, row.TextPayload)
	case KindText:
		s.code.flush()
		s.window.texts = append(s.window.texts, row.TextPayload)
	case KindCode:
		s.code.add(s.window, row.TextPayload)
	default:
		s.code.flush()
	}
}

func (s *parseState) finish() {
	s.code.flush()
}

func (s *parseState) result() *Result {
	result := &Result{Pages: make([]Page, 0, len(s.pages))}
	for _, p := range s.pages {
		result.Pages = append(result.Pages, p.build(s.opts))
	}
	return result
}
