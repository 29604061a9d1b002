package storage

import "testing"

func TestNewLoaded(t *testing.T) {
	s := NewLoaded(RoleAdded, []byte("hello"))
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
	if !s.IsLoaded() {
		t.Error("NewLoaded storage should report loaded")
	}
	if s.Role() != RoleAdded {
		t.Errorf("Role() = %v, want RoleAdded", s.Role())
	}
}

func TestStorageBytes(t *testing.T) {
	s := NewLoaded(RoleOriginal, []byte("hello world"))

	tests := []struct {
		name    string
		start   int64
		end     int64
		want    string
		wantErr bool
	}{
		{"full range", 0, 11, "hello world", false},
		{"sub range", 0, 5, "hello", false},
		{"mid range", 6, 11, "world", false},
		{"empty range", 3, 3, "", false},
		{"out of bounds end", 0, 100, "", true},
		{"negative start", -1, 5, "", true},
		{"start after end", 5, 2, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Bytes(tt.start, tt.end)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Bytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStorageBytesUnloaded(t *testing.T) {
	s := NewUnloaded("/tmp/does-not-matter", 0, 100)
	if s.IsLoaded() {
		t.Fatal("NewUnloaded storage should not report loaded")
	}
	if _, err := s.Bytes(0, 10); err == nil {
		t.Error("Bytes() on unloaded storage should fail without a prior load")
	}
}

func TestStorageAppend(t *testing.T) {
	s := NewLoaded(RoleAdded, nil)

	start, err := s.Append([]byte("foo"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if start != 0 {
		t.Errorf("first Append start = %d, want 0", start)
	}

	start, err = s.Append([]byte("bar"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if start != 3 {
		t.Errorf("second Append start = %d, want 3", start)
	}

	got, _ := s.Bytes(0, 6)
	if string(got) != "foobar" {
		t.Errorf("Bytes() = %q, want %q", got, "foobar")
	}
}

func TestStorageAppendRejectsOriginal(t *testing.T) {
	s := NewLoaded(RoleOriginal, []byte("x"))
	if _, err := s.Append([]byte("y")); err != ErrNotAppendable {
		t.Errorf("Append() on original storage: err = %v, want ErrNotAppendable", err)
	}
}

func TestStorageLineStarts(t *testing.T) {
	s := NewLoaded(RoleOriginal, []byte("a\nb\nc"))
	if _, ok := s.LineStarts(); ok {
		t.Error("LineStarts() should start unset")
	}
	s.SetLineStarts(LineStarts{0, 2, 4})
	ls, ok := s.LineStarts()
	if !ok || len(ls) != 3 {
		t.Errorf("LineStarts() = %v, %v; want 3 starts", ls, ok)
	}
}

func TestStorageAppendInvalidatesLineStarts(t *testing.T) {
	s := NewLoaded(RoleAdded, []byte("a\n"))
	s.SetLineStarts(LineStarts{0})
	if _, err := s.Append([]byte("b")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, ok := s.LineStarts(); ok {
		t.Error("Append should invalidate a stale line-start index")
	}
}

func TestChunkPolicyAlign(t *testing.T) {
	p := ChunkPolicy{Alignment: 64 * 1024, MinSize: 1024 * 1024}
	total := int64(10 * 1024 * 1024)

	start, end := p.align(500_000_000%total, 500_000_050%total, total)
	if start%p.Alignment != 0 {
		t.Errorf("aligned start %d not a multiple of %d", start, p.Alignment)
	}
	if end-start < p.MinSize {
		t.Errorf("aligned range %d < MinSize %d", end-start, p.MinSize)
	}
	if end > total {
		t.Errorf("aligned end %d exceeds total %d", end, total)
	}
}

func TestChunkLRUEvictsBeyondLimit(t *testing.T) {
	lru := newChunkLRU(2)
	var evicted []ID
	evict := func(id ID) { evicted = append(evicted, id) }

	a, b, c := NewID(), NewID(), NewID()
	lru.touch(a, evict)
	lru.touch(b, evict)
	lru.touch(c, evict)

	if len(evicted) != 1 || evicted[0] != a {
		t.Errorf("evicted = %v, want [%v] (least recently used)", evicted, a)
	}
}

func TestChunkLRUTouchRefreshesRecency(t *testing.T) {
	lru := newChunkLRU(2)
	var evicted []ID
	evict := func(id ID) { evicted = append(evicted, id) }

	a, b, c := NewID(), NewID(), NewID()
	lru.touch(a, evict)
	lru.touch(b, evict)
	lru.touch(a, evict) // a is now most-recent again
	lru.touch(c, evict) // b should be evicted, not a

	if len(evicted) != 1 || evicted[0] != b {
		t.Errorf("evicted = %v, want [%v]", evicted, b)
	}
}
