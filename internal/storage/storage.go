// Package storage provides append-only and lazily-loaded byte storages that
// back the pieces held by a piece tree. A storage is either Loaded (its
// bytes live in memory) or Unloaded (a file region descriptor whose bytes
// are materialised on demand).
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ID uniquely identifies a storage. Storages are created and evicted
// throughout a document's lifetime, so ids are random (uuid v4) rather than
// sequential to avoid reuse hazards across that churn.
type ID = uuid.UUID

// NewID returns a fresh storage identifier.
func NewID() ID {
	return uuid.New()
}

// Role distinguishes the two kinds of storage a document holds.
type Role uint8

const (
	// RoleOriginal storages are read-only and derived from the file on load.
	// Their loaded bytes may be evicted back to unloaded form.
	RoleOriginal Role = iota

	// RoleAdded storages are append-only and hold text inserted by edits.
	// They are never evicted.
	RoleAdded
)

func (r Role) String() string {
	if r == RoleAdded {
		return "added"
	}
	return "original"
}

// Errors returned by storage operations.
var (
	// ErrRangeOutOfBounds indicates a requested byte range exceeds the storage length.
	ErrRangeOutOfBounds = errors.New("storage: range out of bounds")

	// ErrNotAppendable indicates Append was called on a non-added storage.
	ErrNotAppendable = errors.New("storage: not appendable")

	// ErrNoBackingFile indicates a load was requested on a storage with no file path.
	ErrNoBackingFile = errors.New("storage: no backing file")
)

// LineStarts is an ordered sequence of byte offsets, one per line start,
// including offset 0. It is only ever computed for loaded storages.
type LineStarts []int64

// Storage is a byte array that is either resident in memory (loaded) or
// described by a file region that has not yet been read (unloaded).
//
// A Storage's identity (id, role) never changes after creation; its
// residency (loaded vs. unloaded bytes) can change via Evict and load.
type Storage struct {
	mu sync.RWMutex

	id   ID
	role Role

	// Unloaded descriptor. Always valid once set, even after the storage
	// becomes loaded, so it can be evicted back to unloaded form.
	path       string
	fileOffset int64

	length int64 // total byte length, known even when unloaded

	loaded     bool
	data       []byte     // valid when loaded
	lineStarts LineStarts // nil if never computed
}

// NewLoaded creates a loaded storage directly from in-memory bytes.
func NewLoaded(role Role, data []byte) *Storage {
	return &Storage{
		id:     NewID(),
		role:   role,
		length: int64(len(data)),
		loaded: true,
		data:   data,
	}
}

// NewUnloaded creates an unloaded storage describing a region of a backing
// file. It never reads its own bytes; Manager.LoadChunk reads a sub-range
// into a new loaded chunk storage.
func NewUnloaded(path string, fileOffset, length int64) *Storage {
	return &Storage{
		id:         NewID(),
		role:       RoleOriginal,
		path:       path,
		fileOffset: fileOffset,
		length:     length,
	}
}

// NewLoadedChunk creates a loaded original storage whose bytes came from a
// specific region of a backing file. Because it remembers that region, it
// can later be evicted back to unloaded form.
func NewLoadedChunk(path string, fileOffset int64, data []byte) *Storage {
	return &Storage{
		id:         NewID(),
		role:       RoleOriginal,
		path:       path,
		fileOffset: fileOffset,
		length:     int64(len(data)),
		loaded:     true,
		data:       data,
	}
}

// ID returns the storage's identifier.
func (s *Storage) ID() ID {
	return s.id
}

// Role returns whether this is an original or added storage.
func (s *Storage) Role() Role {
	return s.role
}

// Len returns the total byte length of the storage, known even while unloaded.
func (s *Storage) Len() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.length
}

// IsLoaded reports whether the storage's bytes currently reside in memory.
func (s *Storage) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Path returns the backing file path, or "" if the storage has none
// (pure in-memory storages created via NewLoaded with no unload path).
func (s *Storage) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Bytes returns the sub-range [start, end) of the storage. If the storage
// is unloaded, it returns an error rather than reading the file; callers
// load the range through Manager.LoadChunk and read from the chunk it
// returns.
func (s *Storage) Bytes(start, end int64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if start < 0 || end > s.length || start > end {
		return nil, fmt.Errorf("%w: [%d,%d) of %d", ErrRangeOutOfBounds, start, end, s.length)
	}
	if !s.loaded {
		return nil, fmt.Errorf("storage %s: bytes not resident, load required", s.id)
	}
	return s.data[start:end], nil
}

// LineStarts returns the precomputed line-start index, if any has been
// computed. The second return value is false for unloaded storages or
// loaded storages whose index has not been built yet.
func (s *Storage) LineStarts() (LineStarts, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lineStarts == nil {
		return nil, false
	}
	return s.lineStarts, true
}

// SetLineStarts installs a precomputed line-start index. It is a no-op on
// unloaded storages; line-starts are never computed for lazily-loaded data.
func (s *Storage) SetLineStarts(ls LineStarts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return
	}
	s.lineStarts = ls
}

// Append adds bytes to an added storage and returns the starting offset of
// the appended region. It is only defined on RoleAdded storages.
func (s *Storage) Append(b []byte) (int64, error) {
	if len(b) == 0 {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.length, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.role != RoleAdded {
		return 0, ErrNotAppendable
	}
	start := s.length
	s.data = append(s.data, b...)
	s.length += int64(len(b))
	s.lineStarts = nil // stale; recomputed lazily on demand
	return start, nil
}

// load installs materialised bytes for an unloaded range, marking the
// storage loaded. Called by Manager after performing file I/O.
func (s *Storage) load(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.loaded = true
}

// evict discards resident bytes, reverting to unloaded form. It is the
// caller's responsibility (Manager) to only call this on RoleOriginal
// storages that have a backing path.
func (s *Storage) evict() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.role != RoleOriginal || s.path == "" {
		return
	}
	s.data = nil
	s.lineStarts = nil
	s.loaded = false
}
