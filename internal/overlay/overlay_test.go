package overlay

import (
	"strconv"
	"testing"

	"github.com/keystorm-labs/buffercore/internal/marker"
	"github.com/keystorm-labs/buffercore/internal/renderer"
)

func newTestManager(t *testing.T, size int64) (*Manager, *marker.List) {
	t.Helper()
	markers := marker.New()
	if err := markers.AdjustForInsert(0, size); err != nil {
		t.Fatalf("AdjustForInsert() error = %v", err)
	}
	return NewManager(markers), markers
}

func TestAddResolveRemove(t *testing.T) {
	m, _ := newTestManager(t, 11)

	id, err := m.Add(Range{Start: 0, End: 5}, Style{}, Options{})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	ov, ok := m.Get(id)
	if !ok {
		t.Fatal("Get() returned ok=false")
	}
	rng, err := m.Resolve(ov)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rng != (Range{Start: 0, End: 5}) {
		t.Errorf("Resolve() = %+v, want {0 5}", rng)
	}

	if !m.Remove(id) {
		t.Error("Remove() = false, want true")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestOverlayAnchoringAcrossInsert(t *testing.T) {
	// "Hello World" -> insert "Beautiful " at offset 6.
	m, markers := newTestManager(t, 11)

	o1, _ := m.Add(Range{Start: 0, End: 5}, Style{}, Options{}) // HELLO
	o2, _ := m.Add(Range{Start: 6, End: 11}, Style{}, Options{}) // WORLD

	if err := markers.AdjustForInsert(6, int64(len("Beautiful "))); err != nil {
		t.Fatalf("AdjustForInsert() error = %v", err)
	}

	ov1, _ := m.Get(o1)
	r1, _ := m.Resolve(ov1)
	if r1 != (Range{Start: 0, End: 5}) {
		t.Errorf("O1 range = %+v, want {0 5}", r1)
	}

	ov2, _ := m.Get(o2)
	r2, _ := m.Resolve(ov2)
	if r2 != (Range{Start: 16, End: 21}) {
		t.Errorf("O2 range = %+v, want {16 21}", r2)
	}
}

func TestRemoveByIDPrefix(t *testing.T) {
	m, _ := newTestManager(t, 100)

	for i := 0; i < 100; i++ {
		if _, err := m.Add(Range{Start: int64(i), End: int64(i + 1)}, Style{}, Options{ID: "hl:" + strconv.Itoa(i+1)}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if _, err := m.Add(Range{Start: 0, End: 1}, Style{}, Options{ID: "other:1"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	removed := m.RemoveByIDPrefix("hl:")
	if removed != 100 {
		t.Errorf("RemoveByIDPrefix() = %d, want 100", removed)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	if _, ok := m.Get("other:1"); !ok {
		t.Error("other:1 should survive prefix removal")
	}
}

func TestAtPositionOrderedByPriority(t *testing.T) {
	m, _ := newTestManager(t, 10)

	red := renderer.ColorFromRGB(255, 0, 0)
	blue := renderer.ColorFromRGB(0, 0, 255)

	m.Add(Range{Start: 0, End: 10}, Style{Background: red}, Options{Priority: 10})
	m.Add(Range{Start: 0, End: 10}, Style{Background: blue}, Options{Priority: 20})

	style, err := m.StyleAt(5)
	if err != nil {
		t.Fatalf("StyleAt() error = %v", err)
	}
	if !style.Background.Equals(blue) {
		t.Errorf("StyleAt().Background = %v, want the higher-priority blue", style.Background)
	}
}

func TestDropInvalidatedOnMarkerLoss(t *testing.T) {
	m, markers := newTestManager(t, 10)
	id, _ := m.Add(Range{Start: 2, End: 8}, Style{}, Options{})

	ov, _ := m.Get(id)
	destroyed, err := markers.AdjustForDelete(0, 10) // delete everything
	if err != nil {
		t.Fatalf("AdjustForDelete() error = %v", err)
	}

	invalidated := m.DropInvalidated(destroyed)
	if len(invalidated) != 1 || invalidated[0] != id {
		t.Errorf("DropInvalidated() = %v, want [%v]", invalidated, id)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
	if _, err := markers.Position(ov.StartMarker); err != marker.ErrNotFound {
		t.Error("surviving marker should have been cleaned up too")
	}
}

func TestAddDiagnosticPriorityBySeverity(t *testing.T) {
	m, _ := newTestManager(t, 20)

	id, err := m.AddDiagnostic(Diagnostic{
		Range:    Range{Start: 0, End: 5},
		Severity: SeverityError,
		Message:  "undefined variable",
	})
	if err != nil {
		t.Fatalf("AddDiagnostic() error = %v", err)
	}
	ov, _ := m.Get(id)
	if ov.Priority != 100 {
		t.Errorf("error diagnostic priority = %d, want 100", ov.Priority)
	}
	msg, ok := PayloadField(ov.Payload, "message")
	if !ok || msg.String() != "undefined variable" {
		t.Errorf("payload message = %q, ok=%v", msg.String(), ok)
	}
}

func TestReplaceDiagnosticsIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t, 20)

	diags := []Diagnostic{
		{Range: Range{Start: 0, End: 5}, Severity: SeverityError, Message: "bad"},
		{Range: Range{Start: 6, End: 10}, Severity: SeverityWarning, Message: "meh"},
	}
	added, removed := m.ReplaceDiagnostics(diags)
	if added != 2 || removed != 0 {
		t.Errorf("first ReplaceDiagnostics: added=%d removed=%d, want 2,0", added, removed)
	}

	// A user-owned highlighter overlay must survive diagnostic churn.
	m.Add(Range{Start: 0, End: 1}, Style{}, Options{ID: "hl:keyword:1"})

	added, removed = m.ReplaceDiagnostics(diags)
	if added != 0 || removed != 0 {
		t.Errorf("repeat ReplaceDiagnostics: added=%d removed=%d, want 0,0 (unchanged)", added, removed)
	}
	if _, ok := m.Get("hl:keyword:1"); !ok {
		t.Error("highlighter overlay should not be touched by diagnostic replace")
	}

	added, removed = m.ReplaceDiagnostics(diags[:1])
	if added != 0 || removed != 1 {
		t.Errorf("shrinking ReplaceDiagnostics: added=%d removed=%d, want 0,1", added, removed)
	}
}
