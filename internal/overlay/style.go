package overlay

import "github.com/keystorm-labs/buffercore/internal/renderer"

// Style is the visual style an overlay paints; it reuses
// internal/renderer's Style/Color/Attribute rather than defining a parallel
// set of types, since the render iterator composites this value straight
// onto cells.
type Style = renderer.Style

// Compose folds styles in ascending priority order into one result,
// implementing spec.md §4.4's composition rule: background and foreground
// colours are replaced by the highest-priority style that sets them
// (renderer.Style.Merge already only overwrites a channel when the
// incoming style's colour is non-default), and attribute flags — including
// underline and strikethrough — accumulate via OR across every active
// overlay, also exactly what Merge does. Pass styles already sorted
// ascending by priority (Manager.AtPosition does this).
func Compose(styles []Style) Style {
	var result Style
	for _, s := range styles {
		result = result.Merge(s)
	}
	return result
}
