package piecetree

import "github.com/keystorm-labs/buffercore/internal/storage"

// Resolver lets the tree ask for a piece's bytes to be materialized without
// depending on internal/storage.Manager directly, so piecetree stays usable
// with any byte-storage backend a caller wants to plug in.
type Resolver interface {
	// Bytes returns the byte range [start, end) of the storage identified by
	// id, triggering a chunk load if the storage is not currently loaded.
	Bytes(id storage.ID, start, end int64) ([]byte, error)
}

// ManagerResolver adapts a *storage.Manager to Resolver.
type ManagerResolver struct {
	Manager *storage.Manager
}

// Bytes implements Resolver.
func (r ManagerResolver) Bytes(id storage.ID, start, end int64) ([]byte, error) {
	s, ok := r.Manager.Get(id)
	if !ok {
		return nil, storage.ErrNoBackingFile
	}
	if s.IsLoaded() {
		return s.Bytes(start, end)
	}
	chunk, chunkStart, _, err := r.Manager.LoadChunk(s, start, end)
	if err != nil {
		return nil, err
	}
	return chunk.Bytes(start-chunkStart, end-chunkStart)
}

// ResolveText returns the full text a Run sequence describes, materializing
// any unloaded storage along the way via res. This is a convenience for
// small documents and tests; large-file callers should stream runs instead
// of joining them into one buffer.
func ResolveText(res Resolver, it *RunIterator) ([]byte, error) {
	var out []byte
	for it.Next() {
		r := it.Run()
		b, err := res.Bytes(r.StorageID, r.Start, r.Start+r.Length)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
