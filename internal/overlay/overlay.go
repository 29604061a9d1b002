// Package overlay implements the buffer core's overlay manager: a set of
// annotations keyed by (start marker, end marker) with priorities and
// optional string identifiers, generalized from
// internal/renderer/overlay's fixed ghost-text/diff-preview/diagnostic
// Type enum to spec.md's open (start_marker, end_marker, style, priority,
// id?, payload?) tuple. An overlay's endpoints are markers rather than
// offsets, so it follows the text it annotates across edits without the
// manager itself doing any offset arithmetic.
package overlay

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/keystorm-labs/buffercore/internal/marker"
)

// Range is a resolved half-open byte range.
type Range struct {
	Start, End int64
}

// Contains reports whether offset lies within the range.
func (r Range) Contains(offset int64) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps reports whether r and o share any byte.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Overlay is one annotation over a text range. Start and end are resolved
// on demand from the marker list a Manager owns; Overlay itself only
// stores the marker ids, per spec.md's "resolve ids through the document,
// never embed direct pointers" guidance.
type Overlay struct {
	ID          string
	StartMarker marker.ID
	EndMarker   marker.ID
	Style       Style
	Priority    int32
	Payload     json.RawMessage
}

// Options configures Manager.Add. A caller-supplied ID enables
// remove_by_id_prefix batch removal and idempotent replace-by-id updates
// (see diagnostics.go); when empty, a random id is generated.
type Options struct {
	ID       string
	Priority int32
	Payload  json.RawMessage
}

// Manager owns the overlay set for one document and the marker list that
// anchors it.
type Manager struct {
	mu       sync.RWMutex
	markers  *marker.List
	overlays map[string]Overlay
}

// NewManager creates an overlay manager backed by markers. The manager does
// not own the marker list's lifetime beyond creating and deleting the
// entries its own overlays need; other marker users (cursors, line
// anchors) may share the same list.
func NewManager(markers *marker.List) *Manager {
	return &Manager{
		markers:  markers,
		overlays: make(map[string]Overlay),
	}
}

// Add creates the overlay's two markers, both right-affinity (text inserted
// exactly at the start shifts the overlay along with its text; text inserted
// exactly at the end extends it), and stores the overlay, returning its id.
func (m *Manager) Add(rng Range, style Style, opts Options) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	startID, err := m.markers.Create(rng.Start, marker.AffinityRight, marker.RoleNormal)
	if err != nil {
		return "", err
	}
	endID, err := m.markers.Create(rng.End, marker.AffinityRight, marker.RoleNormal)
	if err != nil {
		m.markers.Delete(startID)
		return "", err
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	m.overlays[id] = Overlay{
		ID:          id,
		StartMarker: startID,
		EndMarker:   endID,
		Style:       style,
		Priority:    opts.Priority,
		Payload:     opts.Payload,
	}
	return id, nil
}

// Remove destroys the overlay and its two markers.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(id)
}

func (m *Manager) removeLocked(id string) bool {
	ov, ok := m.overlays[id]
	if !ok {
		return false
	}
	m.markers.Delete(ov.StartMarker)
	m.markers.Delete(ov.EndMarker)
	delete(m.overlays, id)
	return true
}

// RemoveByIDPrefix removes every overlay whose id begins with prefix,
// returning how many were removed. This is the amortised batch-clear
// primitive spec.md §4.4 calls out for plugins replacing a whole class of
// overlays (e.g. one highlighter's spans) in one pass.
func (m *Manager) RemoveByIDPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id := range m.overlays {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		m.removeLocked(id)
	}
	return len(ids)
}

// Get returns an overlay's stored fields (endpoints unresolved) by id.
func (m *Manager) Get(id string) (Overlay, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ov, ok := m.overlays[id]
	return ov, ok
}

// Count returns the number of live overlays.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.overlays)
}

// Resolve returns an overlay's current byte range by looking up its
// markers' positions.
func (m *Manager) Resolve(ov Overlay) (Range, error) {
	start, err := m.markers.Position(ov.StartMarker)
	if err != nil {
		return Range{}, err
	}
	end, err := m.markers.Position(ov.EndMarker)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

// resolved pairs an overlay with its current range, for internal sorting.
type resolved struct {
	overlay Overlay
	rng     Range
}

// OverlapsOverlapping returns overlays whose resolved range intersects
// rng. A linear scan is acceptable up to ~1,000 overlays per spec.md
// §4.4; callers with larger overlay sets should batch queries rather than
// call this per rendered line.
func (m *Manager) OverlapsOverlapping(rng Range) ([]Overlay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Overlay
	for _, ov := range m.overlays {
		r, err := m.Resolve(ov)
		if err != nil {
			continue // marker gone; caller should have already dropped this via DropInvalidated
		}
		if r.Overlaps(rng) {
			out = append(out, ov)
		}
	}
	return out, nil
}

// AtPosition returns overlays active at offset, in ascending priority
// order (so a caller folding styles left-to-right gets "last wins" for
// conflicting attributes, per spec.md §4.4).
func (m *Manager) AtPosition(offset int64) ([]Overlay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []resolved
	for _, ov := range m.overlays {
		r, err := m.Resolve(ov)
		if err != nil {
			continue
		}
		if r.Contains(offset) {
			hits = append(hits, resolved{ov, r})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].overlay.Priority < hits[j].overlay.Priority
	})
	out := make([]Overlay, len(hits))
	for i, h := range hits {
		out[i] = h.overlay
	}
	return out, nil
}

// StyleAt folds every overlay active at offset into a single composed
// style, in priority order (see Compose).
func (m *Manager) StyleAt(offset int64) (Style, error) {
	overlays, err := m.AtPosition(offset)
	if err != nil {
		return Style{}, err
	}
	styles := make([]Style, len(overlays))
	for i, ov := range overlays {
		styles[i] = ov.Style
	}
	return Compose(styles), nil
}

// DropInvalidated removes every overlay that references one of the given
// (already-destroyed) marker ids, deleting its surviving endpoint marker
// too, and returns the ids of the overlays that were dropped. This is the
// document apply path's step for spec.md's MarkerNotFound handling: "an
// edit destroyed overlays by marker loss" surfaces as an
// overlays_invalidated event carrying this slice.
func (m *Manager) DropInvalidated(destroyedMarkers []marker.ID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	destroyed := make(map[marker.ID]bool, len(destroyedMarkers))
	for _, id := range destroyedMarkers {
		destroyed[id] = true
	}

	var invalidated []string
	for id, ov := range m.overlays {
		if !destroyed[ov.StartMarker] && !destroyed[ov.EndMarker] {
			continue
		}
		if !destroyed[ov.StartMarker] {
			m.markers.Delete(ov.StartMarker)
		}
		if !destroyed[ov.EndMarker] {
			m.markers.Delete(ov.EndMarker)
		}
		delete(m.overlays, id)
		invalidated = append(invalidated, id)
	}
	return invalidated
}
