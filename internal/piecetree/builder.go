package piecetree

import "github.com/keystorm-labs/buffercore/internal/storage"

// Builder constructs a Tree incrementally from an ordered sequence of
// pieces, balancing as it goes rather than inserting one at a time from an
// empty Tree.
type Builder struct {
	root *Node
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AppendPiece adds p to the end of the tree under construction, coalescing
// with the previous piece when they are contiguous in the same storage.
func (b *Builder) AppendPiece(p Piece) {
	if p.IsEmpty() {
		return
	}
	if b.root == nil {
		b.root = leafNode(p)
		return
	}
	if merged, ok := tryCoalesceAppend(b.root, p); ok {
		b.root = merged
		return
	}
	b.root = rebalance(newInternal(b.root, leafNode(p)))
}

// Build returns the finished Tree.
func (b *Builder) Build() Tree {
	return Tree{root: b.root}
}

// FromStorage builds a single-piece Tree covering an entire Loaded storage,
// computing its newline index from the storage's bytes.
func FromStorage(s *storage.Storage) (Tree, error) {
	b := NewBuilder()
	if s.Len() == 0 {
		return b.Build(), nil
	}
	var bytes []byte
	if s.IsLoaded() {
		data, err := s.Bytes(0, s.Len())
		if err != nil {
			return Tree{}, err
		}
		bytes = data
	}
	b.AppendPiece(newPiece(s.ID(), 0, s.Len(), bytes))
	return b.Build(), nil
}
