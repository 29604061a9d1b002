package document

import (
	"context"
	"fmt"

	"github.com/keystorm-labs/buffercore/internal/marker"
	"github.com/keystorm-labs/buffercore/internal/piecetree"
)

// Event is anything Apply accepts: Insert, Delete, or Replace.
type Event interface {
	isEvent()
}

// Insert inserts Bytes at Offset.
type Insert struct {
	Offset int64
	Bytes  []byte
}

func (Insert) isEvent() {}

// Delete removes the byte range [Start, End).
type Delete struct {
	Start, End int64
}

func (Delete) isEvent() {}

// Replace removes [Start, End) and inserts Bytes in its place.
type Replace struct {
	Start, End int64
	Bytes      []byte
}

func (Replace) isEvent() {}

// Apply is the document's single write path, implementing spec.md §4.6's
// four-step pipeline: validate, adjust markers, update the piece tree, swap
// state. It holds the document's lock for its entire body, so it is atomic
// from every other caller's perspective and, by construction, deadlocks
// against itself if a synchronous event handler calls Apply again -- hosts
// must not do that (see the package doc).
func (d *Document) Apply(ctx context.Context, ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := d.tree.Len()

	var rangeBefore, rangeAfter Range
	var destroyed []string

	switch e := ev.(type) {
	case Insert:
		if e.Offset < 0 || e.Offset > before {
			return fmt.Errorf("%w: insert at %d, length %d", ErrInvalidRange, e.Offset, before)
		}
		if err := d.insertLocked(e.Offset, e.Bytes); err != nil {
			return err
		}
		rangeBefore = Range{Start: e.Offset, End: e.Offset}
		rangeAfter = Range{Start: e.Offset, End: e.Offset + int64(len(e.Bytes))}

	case Delete:
		if e.Start < 0 || e.End < e.Start || e.End > before {
			return fmt.Errorf("%w: delete [%d,%d), length %d", ErrInvalidRange, e.Start, e.End, before)
		}
		ids, err := d.deleteLocked(e.Start, e.End)
		if err != nil {
			return err
		}
		destroyed = d.overlays.DropInvalidated(ids)
		rangeBefore = Range{Start: e.Start, End: e.End}
		rangeAfter = Range{Start: e.Start, End: e.Start}

	case Replace:
		if e.Start < 0 || e.End < e.Start || e.End > before {
			return fmt.Errorf("%w: replace [%d,%d), length %d", ErrInvalidRange, e.Start, e.End, before)
		}
		ids, err := d.deleteLocked(e.Start, e.End)
		if err != nil {
			return err
		}
		if err := d.insertLocked(e.Start, e.Bytes); err != nil {
			return err
		}
		destroyed = d.overlays.DropInvalidated(ids)
		rangeBefore = Range{Start: e.Start, End: e.End}
		rangeAfter = Range{Start: e.Start, End: e.Start + int64(len(e.Bytes))}

	default:
		return fmt.Errorf("%w: unknown event type %T", ErrInvalidRange, ev)
	}

	d.publishLocked(BufferChanged{DocumentID: d.id, RangeBefore: rangeBefore, RangeAfter: rangeAfter})
	if len(destroyed) > 0 {
		d.publishLocked(OverlaysInvalidated{DocumentID: d.id, OverlayIDs: destroyed})
	}
	_ = ctx // reserved: a future cancellable Apply variant would thread this into ScanLines-triggered loads
	return nil
}

// insertLocked implements the insert half of the pipeline: adjust markers
// first (so their positions reflect the pre-edit offsets, per spec.md §4.6
// step 2), then append the bytes to the added storage and splice a piece
// into the tree.
func (d *Document) insertLocked(offset int64, text []byte) error {
	if len(text) == 0 {
		return nil
	}
	if err := d.markers.AdjustForInsert(offset, int64(len(text))); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	start, err := d.added.Append(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	piece := piecetree.NewPiece(d.added.ID(), start, int64(len(text)), text)
	newTree, err := d.tree.Insert(offset, piece)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	d.tree = newTree
	return nil
}

// deleteLocked implements the delete half of the pipeline, returning the
// ids of markers destroyed by the deletion for the caller to feed to
// overlay.Manager.DropInvalidated.
func (d *Document) deleteLocked(start, end int64) ([]marker.ID, error) {
	if start == end {
		return nil, nil
	}
	ids, err := d.markers.AdjustForDelete(start, end-start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	newTree, err := d.tree.Delete(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	d.tree = newTree
	return ids, nil
}
