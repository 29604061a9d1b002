package piecetree

import (
	"testing"

	"github.com/keystorm-labs/buffercore/internal/storage"
)

func mustPiece(t *testing.T, text string) Piece {
	t.Helper()
	s := storage.NewLoaded(storage.RoleAdded, []byte(text))
	return newPiece(s.ID(), 0, s.Len(), []byte(text))
}

func buildTree(t *testing.T, chunks ...string) Tree {
	t.Helper()
	tr := Tree{}
	for _, c := range chunks {
		var err error
		tr, err = tr.Insert(tr.Len(), mustPiece(t, c))
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	return tr
}

func TestEmptyTree(t *testing.T) {
	var tr Tree
	if !tr.IsEmpty() {
		t.Error("zero Tree should be empty")
	}
	if got := tr.LineCount(); got != 1 {
		t.Errorf("LineCount() = %d, want 1", got)
	}
	pt, err := tr.OffsetToPosition(0)
	if err != nil {
		t.Fatalf("OffsetToPosition() error = %v", err)
	}
	if pt != (Point{Line: 1, Column: 0}) {
		t.Errorf("OffsetToPosition(0) = %+v, want {1 0}", pt)
	}
}

func TestInsertAndSlice(t *testing.T) {
	tr := buildTree(t, "hello ", "world")
	if tr.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", tr.Len())
	}

	it, err := tr.Slice(0, tr.Len())
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	var runCount int
	var total int64
	for it.Next() {
		r := it.Run()
		if r.Length <= 0 {
			t.Errorf("run %d has non-positive length %d", runCount, r.Length)
		}
		total += r.Length
		runCount++
	}
	if total != tr.Len() {
		t.Errorf("total run bytes = %d, want %d", total, tr.Len())
	}
}

func TestInsertMidPieceSplits(t *testing.T) {
	tr := buildTree(t, "helloworld")
	tr, err := tr.Insert(5, mustPiece(t, " "))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if tr.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", tr.Len())
	}
}

func TestDeleteRange(t *testing.T) {
	tr := buildTree(t, "hello world")
	tr, err := tr.Delete(5, 6)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if tr.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", tr.Len())
	}
}

func TestDeleteEntireDocument(t *testing.T) {
	tr := buildTree(t, "hello")
	tr, err := tr.Delete(0, 5)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !tr.IsEmpty() {
		t.Error("expected empty tree after deleting everything")
	}
}

func TestDeleteInvalidRange(t *testing.T) {
	tr := buildTree(t, "hello")
	if _, err := tr.Delete(3, 1); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := tr.Delete(0, 100); err == nil {
		t.Error("expected error for out-of-bounds range")
	}
}

func TestOffsetToPositionAcrossPieces(t *testing.T) {
	tr := buildTree(t, "abc\n", "def\n", "ghi")

	tests := []struct {
		offset int64
		want   Point
	}{
		{0, Point{Line: 1, Column: 0}},
		{3, Point{Line: 1, Column: 3}}, // the '\n' itself
		{4, Point{Line: 2, Column: 0}}, // 'd', start of line 2
		{7, Point{Line: 2, Column: 3}},
		{8, Point{Line: 3, Column: 0}},
		{11, Point{Line: 3, Column: 3}}, // end of document
	}
	for _, tt := range tests {
		got, err := tr.OffsetToPosition(tt.offset)
		if err != nil {
			t.Fatalf("OffsetToPosition(%d) error = %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("OffsetToPosition(%d) = %+v, want %+v", tt.offset, got, tt.want)
		}
	}
}

func TestPositionToOffsetRoundTrip(t *testing.T) {
	tr := buildTree(t, "abc\n", "def\n", "ghi")
	for offset := int64(0); offset <= tr.Len(); offset++ {
		pt, err := tr.OffsetToPosition(offset)
		if err != nil {
			t.Fatalf("OffsetToPosition(%d) error = %v", offset, err)
		}
		got, ok := tr.PositionToOffset(pt.Line, pt.Column)
		if !ok {
			t.Fatalf("PositionToOffset(%+v) not ok", pt)
		}
		if got != offset {
			t.Errorf("PositionToOffset(%+v) = %d, want %d", pt, got, offset)
		}
	}
}

func TestInsertCoalescesAppendedText(t *testing.T) {
	tr := buildTree(t, "hello")
	before := 0
	countLeaves(tr.root, &before)

	s := storage.NewLoaded(storage.RoleAdded, nil)
	start, err := s.Append([]byte(" world"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	// simulate the document layer's append-then-insert flow: the piece it
	// hands to the tree is contiguous with whatever it last inserted from
	// the same storage.
	tr2, err := tr.Insert(tr.Len(), newPiece(s.ID(), start, 6, []byte(" world")))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	afterFirst := 0
	countLeaves(tr2.root, &afterFirst)
	if afterFirst != before+1 {
		t.Errorf("leaves after appending from a new storage = %d, want %d", afterFirst, before+1)
	}

	next, err := s.Append([]byte("!"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	tr3, err := tr2.Insert(tr2.Len(), newPiece(s.ID(), next, 1, []byte("!")))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	afterSecond := 0
	countLeaves(tr3.root, &afterSecond)
	if afterSecond != afterFirst {
		t.Errorf("leaves after contiguous append = %d, want %d (coalesced)", afterSecond, afterFirst)
	}
	if tr3.Len() != 12 {
		t.Errorf("Len() = %d, want 12", tr3.Len())
	}
}

func countLeaves(n *Node, count *int) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		*count++
		return
	}
	countLeaves(n.left, count)
	countLeaves(n.right, count)
}
