package parser

// Row is one node of a flattened SmartForm document. Sequence order is
// significant; the parser never mutates the rows it is given.
type Row struct {
	ID          int    `json:"ID"`
	ParentID    int    `json:"PARENT_ID"`
	Depth       int    `json:"DEPTH"`
	Path        string `json:"PATH"`
	ElemName    string `json:"ELEM_NAME"`
	ElemNS      string `json:"ELEM_NS"`
	NodeType    string `json:"NODE_TYPE"`
	Attributes  []any  `json:"ATTRIBUTES"`
	TextPayload string `json:"TEXT_PAYLOAD"`
}

// Result is the reconstructed document tree
type Result struct {
	Pages []Page `json:"pages"`
}

// Page is a top-level container holding windows and graphics
type Page struct {
	PageName string    `json:"page_name"`
	Windows  []Window  `json:"windows"`
	Graphics []Graphic `json:"graphics"`
}

// Window is an output area of a page with its structural lists and the
// references extracted from the rows seen while it was current.
type Window struct {
	WindowName string   `json:"window_name"`
	Rows       []string `json:"rows"`
	Cells      []string `json:"cells"`
	Texts      []string `json:"texts"`
	Code       []string `json:"code"`
	Captions   []string `json:"captions"`
	Fields     []string `json:"fields"`
	Tables     []string `json:"tables"`
}

// Graphic is a graphic node of a page
type Graphic struct {
	GraphicName string   `json:"graphic_name"`
	Captions    []string `json:"captions"`
	Fields      []string `json:"fields"`
	Tables      []string `json:"tables"`
}

// Options selects which parser behaviors are active
type Options struct {
	// TrackGraphics recognizes NODETYPE=GR markers and runs the heuristic
	// extractors against the current graphic as well as the current window.
	TrackGraphics bool `json:"track_graphics"`

	// TextBlockCapture collects TDLINE rows between an INAME=%TEXT... row and
	// the next STYLE_NAME row into the window's texts.
	TextBlockCapture bool `json:"text_block_capture"`

	// ForceEmptyCaptions emits an empty captions list for every container.
	ForceEmptyCaptions bool `json:"force_empty_captions"`
}

// OptionOverrides changes selected options for a single request. Fields
// left nil keep the value of the options they are applied to.
type OptionOverrides struct {
	TrackGraphics      *bool `json:"track_graphics,omitempty"`
	TextBlockCapture   *bool `json:"text_block_capture,omitempty"`
	ForceEmptyCaptions *bool `json:"force_empty_captions,omitempty"`
}

// Apply returns base with every set override applied. A nil receiver
// returns base unchanged.
func (o *OptionOverrides) Apply(base Options) Options {
	if o == nil {
		return base
	}
	if o.TrackGraphics != nil {
		base.TrackGraphics = *o.TrackGraphics
	}
	if o.TextBlockCapture != nil {
		base.TextBlockCapture = *o.TextBlockCapture
	}
	if o.ForceEmptyCaptions != nil {
		base.ForceEmptyCaptions = *o.ForceEmptyCaptions
	}
	return base
}

// DefaultOptions returns the options of the most complete parser variant
func DefaultOptions() Options {
	return Options{
		TrackGraphics:      true,
		TextBlockCapture:   true,
		ForceEmptyCaptions: false,
	}
}

// Element names and marker values of the SmartForm vocabulary
const (
	ElemNodeType  = "NODETYPE"
	ElemName      = "INAME"
	ElemItem      = "item"
	ElemTextLine  = "TDLINE"
	ElemStyleName = "STYLE_NAME"
	ElemCaption   = "CAPTION"
	ElemFormName  = "FORMNAME"
	ElemNameField = "NAME"
	ElemTypeName  = "TYPENAME"

	MarkerPage    = "PA"
	MarkerWindow  = "WI"
	MarkerGraphic = "GR"

	PrefixRow  = "%ROW"
	PrefixCell = "%CELL"
	PrefixText = "%TEXT"
	PrefixPage = "%PAGE"

	namePrefix = "%"
)
