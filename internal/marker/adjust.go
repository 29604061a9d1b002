package marker

// AdjustForInsert grows the gap that absorbs an insertion of length bytes
// at offset at. When at falls strictly inside a gap, that gap grows.
// When at falls exactly on a marker's position, the marker's own affinity
// decides: an AffinityLeft marker does not move and the insertion goes into
// a gap after it; an AffinityRight marker has the gap before it grow, so it
// moves past the insertion. Two markers with opposite affinities at the same
// offset both keep their sides, so the insertion lands in the (possibly
// zero-size) gap between them.
func (l *List) AdjustForInsert(at, length int64) error {
	if at < 0 || length < 0 {
		return ErrInvalidPosition
	}
	if length == 0 {
		return nil
	}
	var offset int64
	for i := 0; i < len(l.entries); i += 2 {
		gapEnd := offset + l.entries[i].gapSize
		switch {
		case at < gapEnd:
			l.entries[i].gapSize += length
			return nil
		case at == gapEnd:
			if i+1 >= len(l.entries) || l.entries[i+1].affinity == AffinityRight {
				l.entries[i].gapSize += length
				return nil
			}
		}
		offset = gapEnd
	}
	return ErrInvalidPosition
}

// AdjustForDelete removes the byte range [at, at+length) from every gap it
// overlaps and destroys any marker whose position falls inside that range,
// with one exception: a left-affinity marker positioned exactly at at
// survives, pinned at at. It returns the ids of destroyed markers so the
// overlay layer can drop overlays that depended on them.
func (l *List) AdjustForDelete(at, length int64) ([]ID, error) {
	if at < 0 || length < 0 {
		return nil, ErrInvalidPosition
	}
	if length == 0 {
		return nil, nil
	}
	end := at + length

	var destroyed []ID
	newEntries := make([]entry, 0, len(l.entries))
	var offset int64

	for i := 0; i < len(l.entries); {
		g := l.entries[i]
		gapStart := offset
		gapEnd := offset + g.gapSize

		lo, hi := max64(gapStart, at), min64(gapEnd, end)
		removed := int64(0)
		if hi > lo {
			removed = hi - lo
		}
		shrunk := entry{kind: kindGap, gapSize: g.gapSize - removed}
		offset = gapEnd
		i++

		if i >= len(l.entries) {
			newEntries = appendGap(newEntries, shrunk)
			break
		}

		m := l.entries[i]
		markerPos := gapEnd
		destroy := markerPos >= at && markerPos < end && !(markerPos == at && m.affinity == AffinityLeft)

		newEntries = appendGap(newEntries, shrunk)
		if destroy {
			destroyed = append(destroyed, m.markerID)
		} else {
			newEntries = append(newEntries, m)
		}
		i++
	}

	l.entries = newEntries
	l.reindex()
	return destroyed, nil
}

// appendGap appends g, merging it into the last entry if that entry is
// also a gap (the "adjacent shrunken gaps merge" invariant).
func appendGap(entries []entry, g entry) []entry {
	if n := len(entries); n > 0 && entries[n-1].kind == kindGap {
		entries[n-1].gapSize += g.gapSize
		return entries
	}
	return append(entries, g)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
