package piecetree

// insertPiece returns the tree rooted at n with p inserted at byte offset
// at (0 <= at <= nodeSummary(n).Bytes).
func insertPiece(n *Node, at int64, p Piece) *Node {
	if n == nil {
		return leafNode(p)
	}
	if n.IsLeaf() {
		return insertIntoLeaf(n, at, p)
	}
	leftBytes := n.left.summary.Bytes
	if at <= leftBytes {
		return rebalance(newInternal(insertPiece(n.left, at, p), n.right))
	}
	return rebalance(newInternal(n.left, insertPiece(n.right, at-leftBytes, p)))
}

func insertIntoLeaf(n *Node, at int64, p Piece) *Node {
	switch {
	case at == 0:
		return rebalance(newInternal(leafNode(p), n))
	case at == n.piece.Length:
		return rebalance(newInternal(n, leafNode(p)))
	default:
		left, right := n.piece.split(at)
		return rebalance(newInternal(newInternal(leafNode(left), leafNode(p)), leafNode(right)))
	}
}

// tryCoalesceAppend attempts to merge p into the rightmost piece of the
// subtree rooted at n, returning the new subtree and true on success. It is
// used when an insert lands exactly at the end of the tree, so consecutive
// appends to the same added-text storage don't grow the tree by one leaf
// each (spec.md §4.2's coalescing allowance).
func tryCoalesceAppend(n *Node, p Piece) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.IsLeaf() {
		if merged, ok := n.piece.tryMerge(p); ok {
			return leafNode(merged), true
		}
		return nil, false
	}
	newRight, ok := tryCoalesceAppend(n.right, p)
	if !ok {
		return nil, false
	}
	return rebalance(newInternal(n.left, newRight)), true
}

// deleteRange returns the tree rooted at n with [start, end) removed. It may
// return nil if the whole subtree was deleted.
func deleteRange(n *Node, start, end int64) *Node {
	if n == nil || start >= end {
		return n
	}
	if n.IsLeaf() {
		return deleteFromLeaf(n, start, end)
	}
	leftBytes := n.left.summary.Bytes
	newLeft, newRight := n.left, n.right
	if start < leftBytes {
		hi := end
		if hi > leftBytes {
			hi = leftBytes
		}
		newLeft = deleteRange(n.left, start, hi)
	}
	if end > leftBytes {
		lo := start - leftBytes
		if lo < 0 {
			lo = 0
		}
		newRight = deleteRange(n.right, lo, end-leftBytes)
	}
	merged := buildInternal(newLeft, newRight)
	if merged == nil || merged.IsLeaf() {
		return merged
	}
	return rebalance(merged)
}

func deleteFromLeaf(n *Node, start, end int64) *Node {
	length := n.piece.Length
	switch {
	case start <= 0 && end >= length:
		return nil
	case start <= 0:
		_, right := n.piece.split(end)
		return leafNode(right)
	case end >= length:
		left, _ := n.piece.split(start)
		return leafNode(left)
	default:
		left, rest := n.piece.split(start)
		_, right := rest.split(end - start)
		return rebalance(newInternal(leafNode(left), leafNode(right)))
	}
}
