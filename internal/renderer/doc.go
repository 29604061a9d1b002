// Package renderer provides display primitives shared by the buffer core's
// render iterator: text attributes, color handling, and composed styles.
//
// It is deliberately thin — no viewport, scrolling, or terminal backend.
// Those concerns belong to a host editor built on top of this module. The
// types here exist so internal/render and internal/overlay can describe
// styled output without depending on any particular display technology.
package renderer
