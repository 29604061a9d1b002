package piecetree

// newlineIndex gives O(1)-ish lookup of newline positions within a single
// piece's byte range: a small inline array for the common case, falling
// back to a heap slice once a piece holds more than a handful of newlines.
type newlineIndex struct {
	inline    [4]uint32
	count     uint32
	positions []uint32 // only allocated when count > len(inline)
}

const maxInlineNewlines = 4

// computeNewlineIndex scans bytes and records every newline's offset.
func computeNewlineIndex(b []byte) newlineIndex {
	var idx newlineIndex
	for i, c := range b {
		if c == '\n' {
			idx.record(uint32(i))
		}
	}
	return idx
}

func (idx *newlineIndex) record(pos uint32) {
	if idx.count < maxInlineNewlines {
		idx.inline[idx.count] = pos
	} else {
		if idx.positions == nil {
			idx.positions = append(idx.positions, idx.inline[:]...)
		}
		idx.positions = append(idx.positions, pos)
	}
	idx.count++
}

// Count returns the number of newlines indexed.
func (idx *newlineIndex) Count() uint32 {
	return idx.count
}

// Position returns the byte offset of the nth newline (0-indexed), or -1.
func (idx *newlineIndex) Position(n uint32) int64 {
	if n >= idx.count {
		return -1
	}
	if idx.count <= maxInlineNewlines {
		return int64(idx.inline[n])
	}
	return int64(idx.positions[n])
}

// NewlineBefore returns the offset of the last newline strictly before
// offset, or -1 if none.
func (idx *newlineIndex) NewlineBefore(offset int64) int64 {
	result := int64(-1)
	for i := uint32(0); i < idx.count; i++ {
		pos := idx.Position(i)
		if pos < offset {
			result = pos
		} else {
			break
		}
	}
	return result
}

// CountBefore returns how many newlines lie strictly before offset.
func (idx *newlineIndex) CountBefore(offset int64) uint32 {
	n := uint32(0)
	for i := uint32(0); i < idx.count; i++ {
		if idx.Position(i) < offset {
			n++
		} else {
			break
		}
	}
	return n
}

// split partitions the index at an in-piece byte offset into the newline
// positions before and after it, the latter rebased to start at 0.
func (idx *newlineIndex) split(at int64) (left, right newlineIndex) {
	for i := uint32(0); i < idx.count; i++ {
		pos := idx.Position(i)
		if pos < at {
			left.record(uint32(pos))
		} else {
			right.record(uint32(pos - at))
		}
	}
	return left, right
}

// mergeNewlineIndexes concatenates two indexes, rebasing b's positions by
// aLen (the byte length of the piece a came from).
func mergeNewlineIndexes(a newlineIndex, aLen int64, b newlineIndex) newlineIndex {
	var merged newlineIndex
	for i := uint32(0); i < a.count; i++ {
		merged.record(uint32(a.Position(i)))
	}
	for i := uint32(0); i < b.count; i++ {
		merged.record(uint32(b.Position(i) + aLen))
	}
	return merged
}
