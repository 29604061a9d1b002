package overlay

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/keystorm-labs/buffercore/internal/renderer"
)

// Severity mirrors the LSP diagnostic severities, ordered so a lower
// numeric value means more severe (matching the priority ordering below).
type Severity uint8

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// severityPriority assigns each severity an overlay priority, grounded on
// original_source/src/lsp_diagnostics.rs's diagnostic_to_overlay, which
// gives errors the highest priority (painted last, on top) down to hints.
var severityPriority = map[Severity]int32{
	SeverityError:       100,
	SeverityWarning:     50,
	SeverityInformation: 30,
	SeverityHint:        10,
}

// Diagnostic is a host-supplied diagnostic to project onto the document as
// an overlay. Range is already resolved to byte offsets — converting from
// an LSP line/UTF-16-character position is the host's job (it owns the
// line index), not the overlay manager's.
type Diagnostic struct {
	Range    Range
	Severity Severity
	Message  string
	Source   string
}

// diagnosticID builds a stable overlay id from a diagnostic's start
// position and message, so the same diagnostic re-pushed by a language
// server maps to the same overlay id and can be recognized as unchanged.
// Grounded on lsp_diagnostics.rs's diagnostic_id, generalized from a
// line/character position to a byte range since this package has no
// line index of its own, and from an 8-character message prefix to the
// first 8 bytes (16 hex characters) of a SHA-1 digest of the whole message
// (collision-prone prefixes aren't worth the false-negative risk now that
// hashing is this cheap).
func diagnosticID(d Diagnostic) string {
	sum := sha1.Sum([]byte(d.Message))
	return fmt.Sprintf("diagnostic:%d:%s", d.Range.Start, hex.EncodeToString(sum[:8]))
}

const diagnosticIDPrefix = "diagnostic:"

// AddDiagnostic adds a single diagnostic as a background-highlight overlay,
// prioritized by severity.
func (m *Manager) AddDiagnostic(d Diagnostic) (string, error) {
	style := Style{Background: diagnosticColor(d.Severity)}
	payload, err := diagnosticPayload(d)
	if err != nil {
		return "", err
	}
	id := diagnosticID(d)
	return m.Add(d.Range, style, Options{
		ID:       id,
		Priority: severityPriority[d.Severity],
		Payload:  payload,
	})
}

// ReplaceDiagnostics performs an idempotent replace-by-prefix update:
// diagnostics already represented by an unchanged overlay are left alone,
// stale diagnostic overlays not present in the new set are removed, and new
// ones are added. This is the behavior spec.md's Non-goals section
// requires of the diagnostics-as-overlay-input path ("idempotent
// replace-by-prefix semantics, not clear-and-readd, so that repeated LSP
// diagnostic pushes do not invalidate overlays a user-facing highlighter
// still owns") — it only ever touches overlays with the "diagnostic:"
// prefix, never a highlighter's own overlays.
func (m *Manager) ReplaceDiagnostics(diagnostics []Diagnostic) (added, removed int) {
	m.mu.RLock()
	existing := make(map[string]bool)
	for id := range m.overlays {
		if len(id) >= len(diagnosticIDPrefix) && id[:len(diagnosticIDPrefix)] == diagnosticIDPrefix {
			existing[id] = true
		}
	}
	m.mu.RUnlock()

	incoming := make(map[string]bool, len(diagnostics))
	for _, d := range diagnostics {
		incoming[diagnosticID(d)] = true
	}

	for id := range existing {
		if !incoming[id] {
			if m.Remove(id) {
				removed++
			}
		}
	}
	for _, d := range diagnostics {
		id := diagnosticID(d)
		if existing[id] {
			continue
		}
		if _, err := m.AddDiagnostic(d); err == nil {
			added++
		}
	}
	return added, removed
}

func diagnosticColor(sev Severity) renderer.Color {
	switch sev {
	case SeverityError:
		return renderer.ColorFromRGB(0x5a, 0x1d, 0x1d)
	case SeverityWarning:
		return renderer.ColorFromRGB(0x5a, 0x4a, 0x1d)
	case SeverityInformation:
		return renderer.ColorFromRGB(0x1d, 0x3a, 0x5a)
	default:
		return renderer.ColorFromRGB(0x2a, 0x2a, 0x2a)
	}
}
