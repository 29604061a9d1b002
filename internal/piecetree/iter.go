package piecetree

import "github.com/keystorm-labs/buffercore/internal/storage"

// Run is one contiguous span of a Slice result: Length bytes of StorageID
// starting at byte offset Start within that storage.
type Run struct {
	StorageID storage.ID
	Start     int64
	Length    int64
}

// RunIterator yields the Runs of a prior Slice call in order.
type RunIterator struct {
	runs []Run
	pos  int
}

// Next advances the iterator and reports whether a Run is available.
func (it *RunIterator) Next() bool {
	it.pos++
	return it.pos <= len(it.runs)
}

// Run returns the current Run; valid only after a Next call returned true.
func (it *RunIterator) Run() Run {
	return it.runs[it.pos-1]
}

// Slice returns an iterator over the runs covering the byte range
// [start, end), in O(log n + k) where k is the number of runs: subtrees
// entirely outside the range are never visited.
func (t Tree) Slice(start, end int64) (*RunIterator, error) {
	length := t.Len()
	if start < 0 || end < start || end > length {
		return nil, invalidRangeErr(start, end, length)
	}
	it := &RunIterator{}
	if start == end {
		return it, nil
	}
	collectRuns(t.root, 0, start, end, &it.runs)
	return it, nil
}

func collectRuns(n *Node, base, start, end int64, out *[]Run) {
	if n == nil {
		return
	}
	nodeEnd := base + n.summary.Bytes
	if end <= base || start >= nodeEnd {
		return
	}
	if n.IsLeaf() {
		lo, hi := start, end
		if lo < base {
			lo = base
		}
		if hi > nodeEnd {
			hi = nodeEnd
		}
		*out = append(*out, Run{
			StorageID: n.piece.StorageID,
			Start:     n.piece.Start + (lo - base),
			Length:    hi - lo,
		})
		return
	}
	mid := base + n.left.summary.Bytes
	collectRuns(n.left, base, start, end, out)
	collectRuns(n.right, mid, start, end, out)
}
