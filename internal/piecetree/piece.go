package piecetree

import "github.com/keystorm-labs/buffercore/internal/storage"

// Piece is a leaf descriptor: a reference to a contiguous run of bytes held
// by some storage. Pieces never span two storages and are never empty
// inside a non-empty tree.
type Piece struct {
	StorageID storage.ID
	Start     int64 // byte offset within the storage
	Length    int64 // byte length of this run

	// Newlines is the number of line feeds within this piece. It is 0 both
	// when the piece genuinely has no newlines and when the count is
	// unknown (unloaded storage, or large-file mode before a background
	// scan) -- the two cases are indistinguishable from outside the piece,
	// by design (see spec's large-file mode).
	Newlines int64

	// index, when non-nil, gives O(1) lookup of newline positions within
	// this piece's byte range. It is populated whenever the piece was cut
	// from bytes the tree could actually see (a loaded storage); it is nil
	// for pieces over unloaded storage, which is exactly when Newlines is
	// "unknown" rather than "zero".
	index *newlineIndex
}

// IsEmpty reports whether the piece covers zero bytes.
func (p Piece) IsEmpty() bool {
	return p.Length == 0
}

// End returns the exclusive end offset of the piece within its storage.
func (p Piece) End() int64 {
	return p.Start + p.Length
}

// NewPiece builds a Piece referencing [start, start+length) of storage id,
// computing its newline index from bytes when the caller has them on hand
// (the usual case: text just appended to an added storage, or bytes read
// from a freshly loaded chunk). Pass nil bytes for a piece over storage the
// caller cannot see yet; Newlines is then left at 0 ("unknown"), per the
// piece tree's large-file degradation rule.
func NewPiece(id storage.ID, start, length int64, bytes []byte) Piece {
	return newPiece(id, start, length, bytes)
}

// newPiece builds a Piece, computing a newline index from raw bytes when
// they are available (loaded storage). Pass nil bytes for pieces over
// unloaded storage; Newlines is then left at 0 ("unknown").
func newPiece(id storage.ID, start, length int64, bytes []byte) Piece {
	p := Piece{StorageID: id, Start: start, Length: length}
	if bytes != nil {
		idx := computeNewlineIndex(bytes)
		p.index = &idx
		p.Newlines = int64(idx.Count())
	}
	return p
}

// split divides the piece at the given in-piece offset (0 < at < p.Length)
// into two pieces that together cover the same storage range. Newline
// counts are redistributed exactly when an index is available; otherwise
// both halves inherit "unknown" (0).
func (p Piece) split(at int64) (left, right Piece) {
	left = Piece{StorageID: p.StorageID, Start: p.Start, Length: at}
	right = Piece{StorageID: p.StorageID, Start: p.Start + at, Length: p.Length - at}
	if p.index != nil {
		leftIdx, rightIdx := p.index.split(at)
		left.index = &leftIdx
		left.Newlines = int64(leftIdx.Count())
		right.index = &rightIdx
		right.Newlines = int64(rightIdx.Count())
	}
	return left, right
}

// tryMerge attempts to coalesce two adjacent pieces of the same storage
// into one, returning ok=false when they are not contiguous (different
// storages, or a gap/overlap between them).
func (a Piece) tryMerge(b Piece) (merged Piece, ok bool) {
	if a.StorageID != b.StorageID || a.End() != b.Start {
		return Piece{}, false
	}
	merged = Piece{
		StorageID: a.StorageID,
		Start:     a.Start,
		Length:    a.Length + b.Length,
		Newlines:  a.Newlines + b.Newlines,
	}
	if a.index != nil && b.index != nil {
		idx := mergeNewlineIndexes(*a.index, a.Length, *b.index)
		merged.index = &idx
	}
	return merged, true
}
