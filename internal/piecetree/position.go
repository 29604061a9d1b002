package piecetree

// newlinesBeforeAbs returns the number of newlines strictly before the
// absolute document offset, descending the subtree rooted at n whose own
// range starts at base. The count is exact as long as every piece touched
// has a newline index; pieces over unloaded storage (index == nil)
// contribute 0, which is the same "unknown, treated as none yet" stance
// Piece.Newlines documents.
func newlinesBeforeAbs(n *Node, base, offset int64) int64 {
	if n == nil || offset <= base {
		return 0
	}
	if n.IsLeaf() {
		within := offset - base
		if within > n.piece.Length {
			within = n.piece.Length
		}
		if n.piece.index == nil {
			return 0
		}
		return int64(n.piece.index.CountBefore(within))
	}
	mid := base + n.left.summary.Bytes
	if offset <= mid {
		return newlinesBeforeAbs(n.left, base, offset)
	}
	return n.left.summary.Newlines + newlinesBeforeAbs(n.right, mid, offset)
}

// lastNewlineBeforeAbs returns the absolute offset of the last newline
// strictly before offset, and whether an indexed piece could answer it.
func lastNewlineBeforeAbs(n *Node, base, offset int64) (int64, bool) {
	if n == nil || offset <= base {
		return 0, false
	}
	if n.IsLeaf() {
		within := offset - base
		if within > n.piece.Length {
			within = n.piece.Length
		}
		if n.piece.index == nil {
			return 0, false
		}
		before := n.piece.index.CountBefore(within)
		if before == 0 {
			return 0, false
		}
		return base + n.piece.index.Position(before-1), true
	}
	mid := base + n.left.summary.Bytes
	if offset <= mid {
		return lastNewlineBeforeAbs(n.left, base, offset)
	}
	if pos, ok := lastNewlineBeforeAbs(n.right, mid, offset); ok {
		return pos, true
	}
	// The right subtree (up to offset) had no newline of its own; the
	// nearest one, if any, is the rightmost newline anywhere in the left
	// subtree.
	return lastNewlineInSubtree(n.left, base)
}

// lastNewlineInSubtree returns the absolute offset of the rightmost newline
// anywhere within the subtree rooted at n.
func lastNewlineInSubtree(n *Node, base int64) (int64, bool) {
	if n == nil {
		return 0, false
	}
	if n.IsLeaf() {
		if n.piece.index == nil || n.piece.index.Count() == 0 {
			return 0, false
		}
		return base + n.piece.index.Position(n.piece.index.Count()-1), true
	}
	mid := base + n.left.summary.Bytes
	if pos, ok := lastNewlineInSubtree(n.right, mid); ok {
		return pos, true
	}
	return lastNewlineInSubtree(n.left, base)
}

// nthNewlineOffset returns the absolute offset of the nth newline (0
// indexed) in the whole tree, or false if it falls inside an unindexed
// piece or past the last indexed newline.
func nthNewlineOffset(n *Node, base int64, nth int64) (int64, bool) {
	if n == nil || nth < 0 {
		return 0, false
	}
	if n.IsLeaf() {
		if n.piece.index == nil || nth >= int64(n.piece.index.Count()) {
			return 0, false
		}
		return base + n.piece.index.Position(uint32(nth)), true
	}
	if nth < n.left.summary.Newlines {
		return nthNewlineOffset(n.left, base, nth)
	}
	mid := base + n.left.summary.Bytes
	return nthNewlineOffset(n.right, mid, nth-n.left.summary.Newlines)
}
