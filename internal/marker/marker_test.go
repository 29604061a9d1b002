package marker

import "testing"

func TestCreateAndPosition(t *testing.T) {
	l := New()
	// Simulate a 10-byte document by growing the initial gap directly.
	if err := l.AdjustForInsert(0, 10); err != nil {
		t.Fatalf("AdjustForInsert() error = %v", err)
	}

	id, err := l.Create(4, AffinityLeft, RoleNormal)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	pos, err := l.Position(id)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	if pos != 4 {
		t.Errorf("Position() = %d, want 4", pos)
	}
	if l.Size() != 10 {
		t.Errorf("Size() = %d, want 10 (unchanged by Create)", l.Size())
	}
}

func TestDeleteMarkerMergesGaps(t *testing.T) {
	l := New()
	l.AdjustForInsert(0, 10)
	id, _ := l.Create(4, AffinityLeft, RoleNormal)

	if err := l.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if l.Count() != 0 {
		t.Errorf("Count() = %d, want 0", l.Count())
	}
	if l.Size() != 10 {
		t.Errorf("Size() = %d, want 10", l.Size())
	}
	if len(l.entries) != 1 {
		t.Errorf("entries = %v, want a single merged gap", l.entries)
	}
}

func TestAdjustForInsertBoundaryAffinity(t *testing.T) {
	l := New()
	l.AdjustForInsert(0, 10)

	left, _ := l.Create(5, AffinityLeft, RoleNormal)
	right, _ := l.Create(5, AffinityRight, RoleNormal)

	if err := l.AdjustForInsert(5, 3); err != nil {
		t.Fatalf("AdjustForInsert() error = %v", err)
	}

	leftPos, _ := l.Position(left)
	rightPos, _ := l.Position(right)
	if leftPos != 5 {
		t.Errorf("left-affinity marker position = %d, want 5 (unmoved)", leftPos)
	}
	if rightPos != 8 {
		t.Errorf("right-affinity marker position = %d, want 8 (moved past insert)", rightPos)
	}
}

func TestAdjustForDeleteDestroysInteriorMarkers(t *testing.T) {
	l := New()
	l.AdjustForInsert(0, 20)

	survivorBefore, _ := l.Create(2, AffinityRight, RoleNormal)
	interior, _ := l.Create(7, AffinityRight, RoleNormal)
	boundaryLeft, _ := l.Create(10, AffinityLeft, RoleNormal)
	survivorAfter, _ := l.Create(15, AffinityRight, RoleNormal)

	destroyed, err := l.AdjustForDelete(5, 5) // deletes [5, 10)
	if err != nil {
		t.Fatalf("AdjustForDelete() error = %v", err)
	}

	if len(destroyed) != 1 || destroyed[0] != interior {
		t.Errorf("destroyed = %v, want [%v]", destroyed, interior)
	}

	if pos, err := l.Position(boundaryLeft); err != nil || pos != 5 {
		t.Errorf("boundary left-affinity marker: pos=%d err=%v, want 5, nil", pos, err)
	}
	if pos, err := l.Position(survivorBefore); err != nil || pos != 2 {
		t.Errorf("survivorBefore: pos=%d err=%v, want 2, nil", pos, err)
	}
	if pos, err := l.Position(survivorAfter); err != nil || pos != 10 {
		t.Errorf("survivorAfter: pos=%d err=%v, want 10, nil", pos, err)
	}
	if l.Size() != 15 {
		t.Errorf("Size() = %d, want 15", l.Size())
	}
}

func TestAdjustForDeleteRightAffinityAtStartDestroyed(t *testing.T) {
	l := New()
	l.AdjustForInsert(0, 10)
	m, _ := l.Create(5, AffinityRight, RoleNormal)

	destroyed, err := l.AdjustForDelete(5, 2)
	if err != nil {
		t.Fatalf("AdjustForDelete() error = %v", err)
	}
	if len(destroyed) != 1 || destroyed[0] != m {
		t.Errorf("destroyed = %v, want [%v] (right-affinity marker at deletion start)", destroyed, m)
	}
}

func TestInvalidPosition(t *testing.T) {
	l := New()
	l.AdjustForInsert(0, 5)
	if _, err := l.Create(-1, AffinityLeft, RoleNormal); err != ErrInvalidPosition {
		t.Errorf("Create(-1) error = %v, want ErrInvalidPosition", err)
	}
	if _, err := l.Create(100, AffinityLeft, RoleNormal); err != ErrInvalidPosition {
		t.Errorf("Create(100) error = %v, want ErrInvalidPosition", err)
	}
}

func TestPositionNotFound(t *testing.T) {
	l := New()
	if _, err := l.Position(newTestID()); err != ErrNotFound {
		t.Errorf("Position() error = %v, want ErrNotFound", err)
	}
}

func newTestID() ID {
	l := New()
	l.AdjustForInsert(0, 1)
	id, _ := l.Create(0, AffinityLeft, RoleNormal)
	l.Delete(id)
	return id
}
