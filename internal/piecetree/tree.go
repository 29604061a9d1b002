// Package piecetree implements the buffer core's piece tree: an immutable,
// persistent, balanced binary tree of Piece references into append-only
// byte storages, indexed by byte offset and newline count.
//
// Every mutating method returns a new Tree value; the receiver is never
// modified, so callers (internal/document) can hold a prior Tree alive for
// readers while a writer builds the next one, without copying unmodified
// subtrees (O(log n) new nodes per edit, the rest shared with the
// predecessor).
package piecetree

import "fmt"

// Tree is an immutable sequence of pieces. The zero Tree is an empty
// document.
type Tree struct {
	root *Node
}

// Len returns the total byte length of the document.
func (t Tree) Len() int64 {
	return nodeSummary(t.root).Bytes
}

// IsEmpty reports whether the document has zero bytes.
func (t Tree) IsEmpty() bool {
	return t.Len() == 0
}

// LineCount returns the number of lines in the document (always >= 1,
// even for an empty document). It is exact only when every piece in the
// tree carries a newline index; see Piece.Newlines for the degraded case.
func (t Tree) LineCount() int64 {
	return nodeSummary(t.root).Newlines + 1
}

// Insert returns a new Tree with p inserted at byte offset at. Consecutive
// inserts that land at the current end of the document and are contiguous
// with the rightmost piece's storage range are coalesced into that piece
// rather than adding a new leaf.
func (t Tree) Insert(at int64, p Piece) (Tree, error) {
	if at < 0 || at > t.Len() {
		return t, fmt.Errorf("%w: insert at %d, length %d", ErrInvalidRange, at, t.Len())
	}
	if p.IsEmpty() {
		return t, nil
	}
	if at == t.Len() {
		if merged, ok := tryCoalesceAppend(t.root, p); ok {
			return Tree{root: merged}, nil
		}
	}
	return Tree{root: insertPiece(t.root, at, p)}, nil
}

// Delete returns a new Tree with the byte range [start, end) removed.
func (t Tree) Delete(start, end int64) (Tree, error) {
	length := t.Len()
	if start < 0 || end < start || end > length {
		return t, fmt.Errorf("%w: delete [%d, %d), length %d", ErrInvalidRange, start, end, length)
	}
	if start == end {
		return t, nil
	}
	return Tree{root: deleteRange(t.root, start, end)}, nil
}

// OffsetToPosition converts a byte offset to a 1-based line / 0-based
// column position in O(log n) when every piece on the path to offset
// carries a newline index. When a piece on the path lacks one (unloaded
// storage, large-file mode before a background scan), the column falls
// back to a best-effort value measured from the start of the document
// rather than the true line start.
func (t Tree) OffsetToPosition(offset int64) (Point, error) {
	if offset < 0 || offset > t.Len() {
		return Point{}, fmt.Errorf("%w: offset %d, length %d", ErrInvalidRange, offset, t.Len())
	}
	if t.root == nil {
		return Point{Line: 1, Column: 0}, nil
	}
	line := uint32(newlinesBeforeAbs(t.root, 0, offset)) + 1
	if nlOffset, ok := lastNewlineBeforeAbs(t.root, 0, offset); ok {
		return Point{Line: line, Column: uint32(offset - nlOffset - 1)}, nil
	}
	return Point{Line: line, Column: uint32(offset)}, nil
}

// PositionToOffset converts a 1-based line / 0-based column position to a
// byte offset. It returns ok=false when the line's start cannot be located
// exactly (some piece before it lacks a newline index); callers in
// large-file mode then fall back to the line-anchor approximation.
func (t Tree) PositionToOffset(line uint32, column uint32) (offset int64, ok bool) {
	if line <= 1 {
		return int64(column), true
	}
	if t.root == nil {
		return 0, false
	}
	lineStart, found := nthNewlineOffset(t.root, 0, int64(line)-2)
	if !found {
		return 0, false
	}
	return lineStart + 1 + int64(column), true
}
