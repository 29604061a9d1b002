package document

import "github.com/keystorm-labs/buffercore/internal/event/topic"

// Event topics published by Document, mirroring spec.md §6's Core -> host
// event names.
const (
	TopicBufferChanged       topic.Topic = "document.buffer.changed"
	TopicOverlaysInvalidated topic.Topic = "document.overlays.invalidated"
	TopicChunkLoaded         topic.Topic = "document.chunk.loaded"
)

// Range is a half-open byte range, [Start, End).
type Range struct {
	Start, End int64
}

// BufferChanged is published synchronously after every successful Apply.
type BufferChanged struct {
	DocumentID  string
	RangeBefore Range
	RangeAfter  Range
}

// EventTopic implements event.TopicProvider.
func (BufferChanged) EventTopic() topic.Topic { return TopicBufferChanged }

// OverlaysInvalidated is published when an edit destroyed one or more
// markers that anchored live overlays; those overlays were already dropped
// by the time this fires.
type OverlaysInvalidated struct {
	DocumentID string
	OverlayIDs []string
}

// EventTopic implements event.TopicProvider.
func (OverlaysInvalidated) EventTopic() topic.Topic { return TopicOverlaysInvalidated }

// ChunkLoaded is published when a lazy chunk load completes, whether
// triggered by a read touching unloaded storage or by ScanLines.
type ChunkLoaded struct {
	DocumentID string
	Range      Range
}

// EventTopic implements event.TopicProvider.
func (ChunkLoaded) EventTopic() topic.Topic { return TopicChunkLoaded }
