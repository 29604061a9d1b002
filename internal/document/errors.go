package document

import "errors"

// Sentinel error kinds surfaced by Document: wrap with
// fmt.Errorf("...: %w", err) rather than a custom error hierarchy.
var (
	// ErrInvalidRange is returned when an offset or range falls outside
	// [0, total_bytes], or a range's start exceeds its end.
	ErrInvalidRange = errors.New("document: invalid range")

	// ErrIoFailed is returned when a chunk load or save encounters an I/O
	// error. The document's state is left unchanged.
	ErrIoFailed = errors.New("document: io failed")

	// ErrCancelled is returned when a host-supplied cancellation predicate
	// stops a background scan mid-flight. The document is left valid.
	ErrCancelled = errors.New("document: cancelled")

	// ErrLineUnknown is returned by PositionToOffset in large-file mode when
	// the target line's start cannot be located exactly.
	ErrLineUnknown = errors.New("document: line unknown")
)
