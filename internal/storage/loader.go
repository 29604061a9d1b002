package storage

import (
	"fmt"
	"os"
	"sync"
)

// ChunkPolicy controls how much of an unloaded storage is materialised by a
// single chunk load.
type ChunkPolicy struct {
	// Alignment rounds the requested range outward to this boundary.
	Alignment int64

	// MinSize extends a load to at least this many bytes, clamped to the
	// storage's length.
	MinSize int64

	// MaxCachedChunks bounds how many loaded original chunks Manager keeps
	// resident at once. 0 disables eviction.
	MaxCachedChunks int
}

// DefaultChunkPolicy matches spec.md §4.1's defaults: 64 KiB alignment,
// 1 MiB minimum chunk, 100 cached chunks.
func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{
		Alignment:       64 * 1024,
		MinSize:         1024 * 1024,
		MaxCachedChunks: 100,
	}
}

// align rounds start down and end up to the policy's alignment boundary,
// extends the range to MinSize, and clamps to [0, total].
func (p ChunkPolicy) align(start, end, total int64) (int64, int64) {
	if p.Alignment > 0 {
		start -= start % p.Alignment
		if rem := end % p.Alignment; rem != 0 {
			end += p.Alignment - rem
		}
	}
	if p.MinSize > 0 && end-start < p.MinSize {
		end = start + p.MinSize
	}
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	return start, end
}

// fileReader abstracts file access so Manager can be tested without touching
// the filesystem.
type fileReader interface {
	ReadRangeAt(path string, offset, length int64) ([]byte, error)
	Size(path string) (int64, error)
}

// osFileReader reads chunks directly from the operating system's filesystem.
type osFileReader struct{}

func (osFileReader) Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (osFileReader) ReadRangeAt(path string, offset, length int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if n < len(buf) && err != nil {
		return buf[:n], fmt.Errorf("storage: read %s at %d: %w", path, offset, err)
	}
	return buf[:n], nil
}

// Manager owns the set of storages backing a document and performs chunk
// loading and LRU eviction of loaded original chunks. Added storages are
// pinned and never evicted.
type Manager struct {
	mu       sync.RWMutex
	policy   ChunkPolicy
	reader   fileReader
	storages map[ID]*Storage
	lru      *chunkLRU
}

// NewManager creates a storage manager with the given chunk-loading policy.
func NewManager(policy ChunkPolicy) *Manager {
	return &Manager{
		policy:   policy,
		reader:   osFileReader{},
		storages: make(map[ID]*Storage),
		lru:      newChunkLRU(policy.MaxCachedChunks),
	}
}

// Register adds a storage to the manager and returns it (for chaining).
func (m *Manager) Register(s *Storage) *Storage {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storages[s.id] = s
	if s.role == RoleOriginal && s.IsLoaded() {
		m.lru.touch(s.id, m.evictLocked)
	}
	return s
}

// Get looks up a registered storage by id.
func (m *Manager) Get(id ID) (*Storage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.storages[id]
	return s, ok
}

// OpenWholeFile stats path and returns either a fully loaded storage (when
// the file is small enough to read eagerly) or a single unloaded storage
// spanning the whole file, per the forceUnloaded flag chosen by the caller
// (typically because the file exceeded document.Options.LargeFileThreshold).
func (m *Manager) OpenWholeFile(path string, forceUnloaded bool) (*Storage, error) {
	size, err := m.reader.Size(path)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	if forceUnloaded {
		return m.Register(NewUnloaded(path, 0, size)), nil
	}
	data, err := m.reader.ReadRangeAt(path, 0, size)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return m.Register(NewLoadedChunk(path, 0, data)), nil
}

// LoadChunk materialises the requested [wantStart, wantEnd) sub-range of an
// unloaded storage, applying the manager's chunk policy for alignment and
// minimum size. It returns a new loaded Storage covering the actual (wider)
// range that was read, so the caller can splice it into the piece tree via a
// piece split; the source storage itself is left untouched.
func (m *Manager) LoadChunk(src *Storage, wantStart, wantEnd int64) (chunk *Storage, chunkStart, chunkEnd int64, err error) {
	if src.role != RoleOriginal || src.path == "" {
		return nil, 0, 0, fmt.Errorf("storage: %s has no backing file to load from", src.id)
	}
	total := src.Len()
	chunkStart, chunkEnd = m.policy.align(wantStart, wantEnd, total)

	data, err := m.reader.ReadRangeAt(src.path, src.fileOffset+chunkStart, chunkEnd-chunkStart)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("storage: load chunk of %s: %w", src.path, err)
	}
	chunk = NewLoadedChunk(src.path, src.fileOffset+chunkStart, data)
	m.Register(chunk)
	return chunk, chunkStart, chunkStart + int64(len(data)), nil
}

// Evict reclaims memory for cached original chunks least recently touched,
// down to the manager's MaxCachedChunks limit. It is safe to call at any
// time; RoleAdded storages and storages with no backing file are never
// evicted.
func (m *Manager) Evict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.shrink(m.evictLocked)
}

// evictLocked reverts a single storage to unloaded form. Caller must hold m.mu.
func (m *Manager) evictLocked(id ID) {
	s, ok := m.storages[id]
	if !ok {
		return
	}
	s.evict()
}

// Touch marks a loaded original storage as recently used, for LRU purposes.
// Call this whenever Bytes() is served from a chunk.
func (m *Manager) Touch(id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.storages[id]; ok && s.role == RoleOriginal && s.IsLoaded() {
		m.lru.touch(id, m.evictLocked)
	}
}
