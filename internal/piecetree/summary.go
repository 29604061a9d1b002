package piecetree

// Summary aggregates the two quantities the piece tree needs at every node
// boundary: total bytes and total newlines of a subtree, the two fields
// spec.md §3 names (bytes_in_left_subtree, newlines_in_left_subtree) -- no
// UTF-16 or ASCII-fastpath flags, since the piece tree never needs to answer
// UTF-16 column queries.
type Summary struct {
	Bytes    int64
	Newlines int64
}

// Add returns the sum of two summaries.
func (s Summary) Add(o Summary) Summary {
	return Summary{Bytes: s.Bytes + o.Bytes, Newlines: s.Newlines + o.Newlines}
}

func summaryOfPiece(p Piece) Summary {
	return Summary{Bytes: p.Length, Newlines: p.Newlines}
}

// Point is a 1-based line, 0-based byte-column position, per spec.md §3.
type Point struct {
	Line   uint32
	Column uint32
}
