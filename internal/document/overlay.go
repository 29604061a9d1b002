package document

import "github.com/keystorm-labs/buffercore/internal/overlay"

// AddOverlay adds an overlay over [start, end), returning its id. Matches
// spec.md §6's add_overlay(range, style, {id?, priority?, payload?}).
func (d *Document) AddOverlay(start, end int64, style overlay.Style, opts overlay.Options) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays.Add(overlay.Range{Start: start, End: end}, style, opts)
}

// RemoveOverlay removes a single overlay by id.
func (d *Document) RemoveOverlay(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays.Remove(id)
}

// RemoveOverlaysByPrefix removes every overlay whose id begins with prefix,
// returning how many were removed.
func (d *Document) RemoveOverlaysByPrefix(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays.RemoveByIDPrefix(prefix)
}

// OverlaysIn returns every overlay whose current range intersects
// [start, end).
func (d *Document) OverlaysIn(start, end int64) ([]overlay.Overlay, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays.OverlapsOverlapping(overlay.Range{Start: start, End: end})
}

// StyleAt returns the composed style of every overlay active at offset.
func (d *Document) StyleAt(offset int64) (overlay.Style, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays.StyleAt(offset)
}

// AddDiagnostic projects a diagnostic onto the document as an overlay (see
// overlay.Manager.AddDiagnostic).
func (d *Document) AddDiagnostic(diag overlay.Diagnostic) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays.AddDiagnostic(diag)
}

// ReplaceDiagnostics performs an idempotent replace-by-prefix update of
// every diagnostic overlay.
func (d *Document) ReplaceDiagnostics(diagnostics []overlay.Diagnostic) (added, removed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlays.ReplaceDiagnostics(diagnostics)
}
