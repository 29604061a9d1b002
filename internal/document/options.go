package document

import "github.com/keystorm-labs/buffercore/internal/storage"

// Options configures Load. Field names and defaults mirror spec.md §6's
// load(path, options) contract; a host reads these from wherever it likes
// (internal/config's TOML/env loaders, flags, hardcoded) — Load itself never
// touches a config file.
type Options struct {
	// LargeFileThreshold is the file size, in bytes, at or above which Load
	// puts the document into large-file mode. Default 100 MiB.
	LargeFileThreshold int64

	// ForceLarge puts the document into large-file mode regardless of size.
	ForceLarge bool

	// EagerLineIndex computes an exact line index immediately after Load,
	// even for a file small enough to load eagerly. Has no effect combined
	// with ForceLarge; use ForceLineIndex for that.
	EagerLineIndex bool

	// ForceLineIndex runs ScanLines immediately after Load even in
	// large-file mode, trading the fast-open guarantee for an exact
	// line_count() from the start.
	ForceLineIndex bool

	// ChunkSize is the minimum number of bytes a single lazy chunk load
	// materializes. Default 1 MiB.
	ChunkSize int64

	// ChunkAlignment rounds chunk load boundaries outward to this many
	// bytes. Default 64 KiB.
	ChunkAlignment int64

	// MaxCachedChunks bounds how many loaded original chunks stay resident
	// before LRU eviction. 0 disables eviction. Default 100.
	MaxCachedChunks int

	// AssumedLineLength seeds the large-file position_to_offset
	// approximation before any lines near the target have been scanned.
	// Default 80.
	AssumedLineLength int64
}

// DefaultOptions returns spec.md §6's documented defaults.
func DefaultOptions() Options {
	return Options{
		LargeFileThreshold: 100 * 1024 * 1024,
		ChunkSize:          1024 * 1024,
		ChunkAlignment:     64 * 1024,
		MaxCachedChunks:    100,
		AssumedLineLength:  80,
	}
}

func (o Options) chunkPolicy() storage.ChunkPolicy {
	p := storage.DefaultChunkPolicy()
	if o.ChunkSize > 0 {
		p.MinSize = o.ChunkSize
	}
	if o.ChunkAlignment > 0 {
		p.Alignment = o.ChunkAlignment
	}
	p.MaxCachedChunks = o.MaxCachedChunks
	return p
}
