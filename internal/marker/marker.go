// Package marker implements the buffer core's gap-encoded marker list: a
// flat alternation of gaps and markers whose prefix sum of gap sizes always
// equals the document length, so a marker's position is recovered by
// summing the gaps before it rather than by storing an offset that every
// edit would need to rewrite.
//
// Insertion and deletion apply the same offset-transform rules a single
// sticky cursor would (shift past the edit, clamp into a deletion, stay put
// before it) but generalized to maintain every marker's position implicitly,
// for an arbitrary number of markers, in one structure.
package marker

import (
	"errors"

	"github.com/google/uuid"
)

// ID identifies a marker for its lifetime.
type ID = uuid.UUID

// Affinity decides which side of an insertion exactly at a marker's
// position that marker binds to.
type Affinity uint8

const (
	AffinityLeft Affinity = iota
	AffinityRight
)

func (a Affinity) String() string {
	if a == AffinityRight {
		return "right"
	}
	return "left"
}

// Role distinguishes an ordinary caller-created marker from one the
// large-file line-anchor mechanism installs to approximate line positions
// without a full newline index (see internal/document's line-anchor use).
type Role uint8

const (
	RoleNormal Role = iota
	RoleLineAnchor
)

var (
	// ErrInvalidPosition is returned for a negative offset, an offset past
	// the end of the document, or a negative length.
	ErrInvalidPosition = errors.New("marker: invalid position")
	// ErrNotFound is returned when an id names no live marker.
	ErrNotFound = errors.New("marker: not found")
)

type entryKind uint8

const (
	kindGap entryKind = iota
	kindMarker
)

type entry struct {
	kind entryKind

	gapSize int64 // valid iff kind == kindGap

	markerID ID       // valid iff kind == kindMarker
	affinity Affinity // valid iff kind == kindMarker
	role     Role     // valid iff kind == kindMarker
}

// List is a gap-encoded marker list. The zero value is not usable; use New.
type List struct {
	entries []entry
	index   map[ID]int // marker id -> index into entries
}

// New returns an empty marker list over a document of length 0.
func New() *List {
	return &List{
		entries: []entry{{kind: kindGap, gapSize: 0}},
		index:   make(map[ID]int),
	}
}

// Size returns the total of all gap sizes, which tracks the document's
// byte length as long as every edit is reported via AdjustForInsert /
// AdjustForDelete.
func (l *List) Size() int64 {
	var total int64
	for _, e := range l.entries {
		if e.kind == kindGap {
			total += e.gapSize
		}
	}
	return total
}

// Count returns the number of live markers.
func (l *List) Count() int {
	return len(l.index)
}

// Create locates the gap containing position, splits it, and inserts a new
// marker with the given affinity and role. When position lands exactly on
// an existing marker's boundary, aff decides which side of that marker the
// new one is placed on (see AdjustForInsert's boundary rule, which this
// mirrors so a marker created at a busy offset orders consistently with
// later insertions at the same point).
func (l *List) Create(position int64, aff Affinity, role Role) (ID, error) {
	idx, gapStart, ok := l.locateGap(position, aff)
	if !ok {
		return ID{}, ErrInvalidPosition
	}
	gap := l.entries[idx]
	within := position - gapStart

	id := uuid.New()
	replacement := []entry{
		{kind: kindGap, gapSize: within},
		{kind: kindMarker, markerID: id, affinity: aff, role: role},
		{kind: kindGap, gapSize: gap.gapSize - within},
	}
	newEntries := make([]entry, 0, len(l.entries)+2)
	newEntries = append(newEntries, l.entries[:idx]...)
	newEntries = append(newEntries, replacement...)
	newEntries = append(newEntries, l.entries[idx+1:]...)
	l.entries = newEntries
	l.reindex()
	return id, nil
}

// Delete removes a marker; the gaps on either side of it merge.
func (l *List) Delete(id ID) error {
	idx, ok := l.index[id]
	if !ok {
		return ErrNotFound
	}
	before := l.entries[idx-1]
	after := l.entries[idx+1]
	merged := entry{kind: kindGap, gapSize: before.gapSize + after.gapSize}

	newEntries := make([]entry, 0, len(l.entries)-2)
	newEntries = append(newEntries, l.entries[:idx-1]...)
	newEntries = append(newEntries, merged)
	newEntries = append(newEntries, l.entries[idx+2:]...)
	l.entries = newEntries
	l.reindex()
	return nil
}

// Position returns a marker's current byte offset: the sum of every gap
// before it. Naive O(m); spec-acceptable for m up to a few thousand
// markers (see package doc).
func (l *List) Position(id ID) (int64, error) {
	idx, ok := l.index[id]
	if !ok {
		return 0, ErrNotFound
	}
	var offset int64
	for i := 0; i < idx; i++ {
		if l.entries[i].kind == kindGap {
			offset += l.entries[i].gapSize
		}
	}
	return offset, nil
}

// Affinity returns a marker's affinity.
func (l *List) Affinity(id ID) (Affinity, error) {
	idx, ok := l.index[id]
	if !ok {
		return 0, ErrNotFound
	}
	return l.entries[idx].affinity, nil
}

// Role returns a marker's role.
func (l *List) Role(id ID) (Role, error) {
	idx, ok := l.index[id]
	if !ok {
		return 0, ErrNotFound
	}
	return l.entries[idx].role, nil
}

// IDs returns every live marker id, in document order.
func (l *List) IDs() []ID {
	ids := make([]ID, 0, len(l.index))
	for _, e := range l.entries {
		if e.kind == kindMarker {
			ids = append(ids, e.markerID)
		}
	}
	return ids
}

// locateGap finds the gap that position falls into. When position sits
// exactly at a marker boundary, aff picks the preceding gap (AffinityLeft)
// or the following gap (AffinityRight); either choice is valid when there
// is no marker there yet, and the same rule is what AdjustForInsert
// consults when one already exists.
func (l *List) locateGap(position int64, aff Affinity) (idx int, gapStart int64, ok bool) {
	if position < 0 {
		return 0, 0, false
	}
	var offset int64
	for i := 0; i < len(l.entries); i += 2 {
		gapEnd := offset + l.entries[i].gapSize
		switch {
		case position < gapEnd:
			return i, offset, true
		case position == gapEnd:
			last := i == len(l.entries)-1
			if last || aff == AffinityLeft {
				return i, offset, true
			}
			// AffinityRight and not last: the next gap starts exactly at
			// position, so defer to it.
		}
		offset = gapEnd
	}
	return 0, 0, false
}

func (l *List) reindex() {
	for k := range l.index {
		delete(l.index, k)
	}
	for i, e := range l.entries {
		if e.kind == kindMarker {
			l.index[e.markerID] = i
		}
	}
}
