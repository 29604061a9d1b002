// Package document is the buffer core's editor-state orchestrator: it owns
// one document's byte storages, piece tree, marker list, and overlay
// manager, and exposes the single write path (Apply) plus the read queries
// a host needs, publishing events on an internal/event.Notifier as state
// changes.
//
// A mutex-guarded value wraps the piece tree + marker list + overlay
// manager triple spec.md §4.6 requires to stay consistent across an edit,
// swapped wholesale on every write.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/keystorm-labs/buffercore/internal/event"
	"github.com/keystorm-labs/buffercore/internal/marker"
	"github.com/keystorm-labs/buffercore/internal/overlay"
	"github.com/keystorm-labs/buffercore/internal/piecetree"
	"github.com/keystorm-labs/buffercore/internal/storage"
)

// Document is one open file's editor state. All exported methods are
// thread-safe; Apply holds the write lock for its entire body (see apply.go),
// which is also what makes calling Apply again from inside an event handler
// deadlock rather than silently re-enter, per spec.md §9.
type Document struct {
	mu sync.Mutex

	id      string
	path    string
	options Options
	large   bool

	storages *storage.Manager
	resolver piecetree.Resolver
	added    *storage.Storage

	tree     piecetree.Tree
	markers  *marker.List
	overlays *overlay.Manager

	notifier *event.Notifier
}

// New creates an empty in-memory document not backed by any file, useful
// for tests and for a host's "new buffer" command.
func New(notifier *event.Notifier, opts Options) *Document {
	storages := storage.NewManager(opts.chunkPolicy())
	added := storages.Register(storage.NewLoaded(storage.RoleAdded, nil))
	markers := marker.New()

	return &Document{
		id:       storage.NewID().String(),
		options:  opts,
		storages: storages,
		resolver: piecetree.ManagerResolver{Manager: storages},
		added:    added,
		tree:     piecetree.Tree{},
		markers:  markers,
		overlays: overlay.NewManager(markers),
		notifier: notifier,
	}
}

// Load opens path, choosing large-file mode per Options.LargeFileThreshold
// or Options.ForceLarge, and builds the initial piece tree, marker list, and
// overlay manager. notifier may be nil, in which case Apply publishes
// nothing (useful for tests that don't care about events).
func Load(path string, opts Options, notifier *event.Notifier) (*Document, error) {
	storages := storage.NewManager(opts.chunkPolicy())

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrIoFailed, path, err)
	}
	threshold := opts.LargeFileThreshold
	if threshold <= 0 {
		threshold = DefaultOptions().LargeFileThreshold
	}
	large := opts.ForceLarge || info.Size() >= threshold

	original, err := storages.OpenWholeFile(path, large)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	tree, err := piecetree.FromStorage(original)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	added := storages.Register(storage.NewLoaded(storage.RoleAdded, nil))
	markers := marker.New()
	if err := markers.AdjustForInsert(0, tree.Len()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	d := &Document{
		id:       storage.NewID().String(),
		path:     path,
		options:  opts,
		large:    large,
		storages: storages,
		resolver: piecetree.ManagerResolver{Manager: storages},
		added:    added,
		tree:     tree,
		markers:  markers,
		overlays: overlay.NewManager(markers),
		notifier: notifier,
	}

	if opts.ForceLineIndex || (opts.EagerLineIndex && !large) {
		if err := d.ScanLines(nil); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// IsLargeFile reports whether Load put this document into large-file mode.
func (d *Document) IsLargeFile() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.large
}

// TotalBytes returns the document's current byte length.
func (d *Document) TotalBytes() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree.Len()
}

// LineCount returns the document's line count, a lower bound in large-file
// mode until ScanLines has run (see piecetree.Tree.LineCount).
func (d *Document) LineCount() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree.LineCount()
}

// ByteAt returns the single byte at offset.
func (d *Document) ByteAt(offset int64) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.sliceLocked(offset, offset+1)
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: offset %d", ErrInvalidRange, offset)
	}
	return b[0], nil
}

// Slice materializes the byte range [start, end), forcing chunk loads for
// any unloaded storage the range touches and publishing chunk_loaded for
// each one.
func (d *Document) Slice(start, end int64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sliceLocked(start, end)
}

func (d *Document) sliceLocked(start, end int64) ([]byte, error) {
	it, err := d.tree.Slice(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	var out []byte
	for it.Next() {
		r := it.Run()
		before := d.loadedLocked(r.StorageID)
		b, err := d.resolver.Bytes(r.StorageID, r.Start, r.Start+r.Length)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
		}
		if !before && d.loadedLocked(r.StorageID) {
			d.publishLocked(ChunkLoaded{DocumentID: d.id, Range: Range{Start: r.Start, End: r.Start + r.Length}})
		}
		out = append(out, b...)
	}
	return out, nil
}

func (d *Document) loadedLocked(id storage.ID) bool {
	s, ok := d.storages.Get(id)
	return ok && s.IsLoaded()
}

// OffsetToPosition converts a byte offset to a 1-based line / 0-based
// column position.
func (d *Document) OffsetToPosition(offset int64) (piecetree.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.tree.OffsetToPosition(offset)
	if err != nil {
		return piecetree.Point{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return p, nil
}

// LineRange returns the byte range [start, end) of line (1-based), not
// including its trailing newline. It is exact only for lines the piece tree
// has already indexed; in large-file mode a line past the scanned region
// returns ErrLineUnknown.
func (d *Document) LineRange(line uint32) (start, end int64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start, ok := d.tree.PositionToOffset(line, 0)
	if !ok {
		return 0, 0, fmt.Errorf("%w: line %d unresolved", ErrLineUnknown, line)
	}
	total := d.tree.Len()
	nextStart, ok := d.tree.PositionToOffset(line+1, 0)
	switch {
	case !ok:
		end = total
	default:
		end = nextStart - 1 // exclude the newline byte itself
		if end < start {
			end = start
		}
	}
	if end > total {
		end = total
	}
	return start, end, nil
}

// PositionToOffset converts a 1-based line / 0-based column position to a
// byte offset. In large-file mode, for a line beyond the loaded/scanned
// region, it returns an approximate offset alongside ErrLineUnknown per
// spec.md §7 -- callers may use the approximation or retry after ScanLines.
func (d *Document) PositionToOffset(line, column uint32) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if offset, ok := d.tree.PositionToOffset(line, column); ok {
		return offset, nil
	}
	if d.large {
		return d.approximatePositionLocked(line, column), ErrLineUnknown
	}
	return 0, fmt.Errorf("%w: line %d unresolved", ErrLineUnknown, line)
}

// approximatePositionLocked implements spec.md §4.5's large-file
// position_to_offset approximation, grounded on
// original_source/src/line_anchor.rs's LineAnchorManager: estimate from
// assumed_line_length, then correct the estimate at most 4 times, each
// time moving by the remaining line difference times the assumed length
// (forward or back). It loads no chunks and returns the last estimate when
// the requested line is not reached.
func (d *Document) approximatePositionLocked(line, column uint32) int64 {
	assumed := d.options.AssumedLineLength
	if assumed <= 0 {
		assumed = DefaultOptions().AssumedLineLength
	}
	estimate := int64(line-1)*assumed + int64(column)
	total := d.tree.Len()
	if estimate < 0 {
		estimate = 0
	}
	if estimate > total {
		estimate = total
	}

	const boundedIterations = 4
	offset := estimate
	for i := 0; i < boundedIterations; i++ {
		p, err := d.tree.OffsetToPosition(offset)
		if err != nil {
			break
		}
		if p.Line == line {
			// Walk to the requested column within whatever we resolved.
			return offset - int64(p.Column) + int64(column)
		}
		delta := int64(line) - int64(p.Line)
		offset += delta * assumed
		if offset < 0 {
			offset = 0
		}
		if offset > total {
			offset = total
			break
		}
	}
	return offset
}

// Save streams the piece tree's bytes to path via write-to-temp + rename, so
// a crash mid-write never leaves a truncated file at the target path. On
// success, path's storage is redefined over the new on-disk file and the
// added storage is reset, matching spec.md §6's save contract.
func (d *Document) Save(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".buffercore-save-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	it, err := d.tree.Slice(0, d.tree.Len())
	if err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	var written []byte // only accumulated when !d.large, to reseed a loaded storage below
	for it.Next() {
		r := it.Run()
		b, err := d.resolver.Bytes(r.StorageID, r.Start, r.Start+r.Length)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("%w: %v", ErrIoFailed, err)
		}
		if _, err := tmp.Write(b); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: %v", ErrIoFailed, err)
		}
		if !d.large {
			written = append(written, b...)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	// Large documents keep their original storage unloaded after save, same
	// as at Load, rather than pulling the whole file back into memory just
	// because it was just written.
	var newOriginal *storage.Storage
	if d.large {
		newOriginal = storage.NewUnloaded(path, 0, d.tree.Len())
	} else {
		newOriginal = storage.NewLoadedChunk(path, 0, written)
	}
	d.storages.Register(newOriginal)
	newTree, err := piecetree.FromStorage(newOriginal)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	d.tree = newTree
	d.added = d.storages.Register(storage.NewLoaded(storage.RoleAdded, nil))
	d.path = path
	return nil
}

func (d *Document) publishLocked(ev any) {
	_ = d.notifier.Publish(context.Background(), ev)
}
