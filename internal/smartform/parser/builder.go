package parser

import (
	"sort"
	"strings"
)

type stringSet map[string]struct{}

func (s stringSet) add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// sorted returns the members in lexicographic order, never nil
func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// accumulator collects extracted references for one container until the
// tree is finalized.
type accumulator struct {
	captions stringSet
	fields   stringSet
	tables   stringSet
}

func newAccumulator() accumulator {
	return accumulator{
		captions: make(stringSet),
		fields:   make(stringSet),
		tables:   make(stringSet),
	}
}

func (a *accumulator) absorb(e Extraction) {
	a.captions.add(e.Captions...)
	a.fields.add(e.Fields...)
	a.tables.add(e.Tables...)
}

func (a *accumulator) captionList(opts Options) []string {
	if opts.ForceEmptyCaptions {
		return []string{}
	}
	return a.captions.sorted()
}

type windowBuilder struct {
	name  string
	rows  []string
	cells []string
	texts []string
	code  []string
	acc   accumulator
}

func newWindowBuilder(name string) *windowBuilder {
	return &windowBuilder{
		name:  name,
		rows:  []string{},
		cells: []string{},
		texts: []string{},
		code:  []string{},
		acc:   newAccumulator(),
	}
}

func (b *windowBuilder) build(opts Options) Window {
	return Window{
		WindowName: b.name,
		Rows:       append([]string{}, b.rows...),
		Cells:      append([]string{}, b.cells...),
		Texts:      append([]string{}, b.texts...),
		Code:       append([]string{}, b.code...),
		Captions:   b.acc.captionList(opts),
		Fields:     b.acc.fields.sorted(),
		Tables:     b.acc.tables.sorted(),
	}
}

type graphicBuilder struct {
	name string
	acc  accumulator
}

func newGraphicBuilder(name string) *graphicBuilder {
	return &graphicBuilder{name: name, acc: newAccumulator()}
}

func (b *graphicBuilder) build(opts Options) Graphic {
	return Graphic{
		GraphicName: b.name,
		Captions:    b.acc.captionList(opts),
		Fields:      b.acc.fields.sorted(),
		Tables:      b.acc.tables.sorted(),
	}
}

type pageBuilder struct {
	name     string
	rawName  string
	windows  []*windowBuilder
	graphics []*graphicBuilder
}

func newPageBuilder(rawName string) *pageBuilder {
	return &pageBuilder{
		name:    strings.TrimPrefix(rawName, namePrefix),
		rawName: rawName,
	}
}

func (b *pageBuilder) build(opts Options) Page {
	page := Page{
		PageName: b.name,
		Windows:  make([]Window, 0, len(b.windows)),
		Graphics: make([]Graphic, 0, len(b.graphics)),
	}
	for _, w := range b.windows {
		page.Windows = append(page.Windows, w.build(opts))
	}
	for _, g := range b.graphics {
		page.Graphics = append(page.Graphics, g.build(opts))
	}
	return page
}

// codeBuffer holds the cleaned lines of a contiguous run of item rows
type codeBuffer struct {
	owner *windowBuilder
	lines []string
}

// add appends the cleaned lines of text to the pending fragment of owner. A
// fragment pending for a different window is flushed first.
func (b *codeBuffer) add(owner *windowBuilder, text string) {
	if b.owner != owner {
		b.flush()
		b.owner = owner
	}
	b.lines = append(b.lines, CleanCodeLines(text)...)
}

func (b *codeBuffer) pending() bool {
	return b.owner != nil && len(b.lines) > 0
}

// flush moves the pending fragment into its window's code list
func (b *codeBuffer) flush() {
	if b.pending() {
		b.owner.code = append(b.owner.code, strings.Join(b.lines, "\n"))
	}
	b.lines = nil
}
