// Package render turns a document's bytes plus its active overlays into
// terminal cells, one line at a time. It replaces the fixed-Type
// Compositor the renderer package used to ship (a ghost-text/diff-preview
// specific overlay model): Iterator instead pulls composed styles straight
// from internal/overlay.Manager (via document.Document.StyleAt), so any
// overlay source -- a highlighter, diagnostics, a plugin -- renders through
// the same path with no renderer-side knowledge of what produced it.
package render

import (
	"github.com/rivo/uniseg"

	"github.com/keystorm-labs/buffercore/internal/document"
	"github.com/keystorm-labs/buffercore/internal/renderer"
)

// Cell is a single terminal cell: a rune (or the first rune of a wider
// grapheme cluster), its display width, and its composed style.
type Cell struct {
	Rune  rune
	Width int
	Style renderer.Style
}

// Line is one rendered line: its cells plus the byte offset the line starts
// at, for callers that need to map a screen column back to a buffer offset.
type Line struct {
	Number int64
	Start  int64
	Cells  []Cell
}

// Iterator renders document lines on demand. It holds no line cache itself;
// callers that render the same line repeatedly (e.g. between keystrokes on
// an unrelated line) should cache Line values on their own side.
type Iterator struct {
	doc *document.Document
}

// NewIterator wraps doc for rendering.
func NewIterator(doc *document.Document) *Iterator {
	return &Iterator{doc: doc}
}

// Line renders line (1-based) into grapheme-cluster cells, each styled by
// composing every overlay active at that cell's byte offset.
//
// Column accounting walks grapheme clusters via uniseg rather than raw
// runes, so a cell's Width matches what a terminal actually draws for
// combining marks and wide characters -- the same requirement overlay
// column math (see internal/overlay) depends on to stay aligned with the
// rendered line.
func (it *Iterator) Line(line uint32) (Line, error) {
	start, end, err := it.doc.LineRange(line)
	if err != nil {
		return Line{}, err
	}
	text, err := it.doc.Slice(start, end)
	if err != nil {
		return Line{}, err
	}

	result := Line{Number: int64(line), Start: start}
	offset := start
	state := -1
	str := string(text)
	for len(str) > 0 {
		var cluster string
		var width int
		cluster, str, width, state = uniseg.FirstGraphemeClusterInString(str, state)

		style, err := it.doc.StyleAt(offset)
		if err != nil {
			return Line{}, err
		}
		r := []rune(cluster)
		var lead rune
		if len(r) > 0 {
			lead = r[0]
		}
		result.Cells = append(result.Cells, Cell{Rune: lead, Width: width, Style: style})
		offset += int64(len(cluster))
	}
	return result, nil
}
