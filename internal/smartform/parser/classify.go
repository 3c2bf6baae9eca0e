package parser

import (
	"strings"
	"unicode"
)

// StructuralKind is the bucket a window row falls into
type StructuralKind int

const (
	KindOther StructuralKind = iota
	KindRow
	KindCell
	KindText
	KindCode
)

// String returns a string representation of the StructuralKind
func (k StructuralKind) String() string {
	switch k {
	case KindRow:
		return "row"
	case KindCell:
		return "cell"
	case KindText:
		return "text"
	case KindCode:
		return "code"
	default:
		return "other"
	}
}

// Classify buckets a normalized row by its text prefix. First match wins.
func Classify(elem, text string) StructuralKind {
	switch {
	case strings.HasPrefix(text, PrefixRow):
		return KindRow
	case strings.HasPrefix(text, PrefixCell):
		return KindCell
	case strings.HasPrefix(text, PrefixText):
		return KindText
	case elem == ElemItem && text != "":
		return KindCode
	default:
		return KindOther
	}
}

// CleanCodeLines strips comments from a block of procedural code. Lines
// starting with "*" are dropped; a '"' starts an inline comment.
func CleanCodeLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			continue
		}
		if idx := strings.IndexByte(line, '"'); idx >= 0 {
			line = strings.TrimRightFunc(line[:idx], unicode.IsSpace)
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
