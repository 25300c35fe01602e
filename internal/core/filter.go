package core

import (
	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// ChangeFilter suppresses snapshots that do not move any of the sixty
// visible level fields relative to the last emitted snapshot. Downstream
// consumers only care about observable top-of-book movement; internal
// order churn below the visible depth is redundant. The filter owns the
// previous-snapshot and emission-index state, so independent
// reconstructions can each run their own instance.
type ChangeFilter struct {
	prev    *domain.Snapshot
	next    int64
	dropped int64
}

func NewChangeFilter() *ChangeFilter {
	return &ChangeFilter{}
}

// Decide compares the snapshot against the last emitted one. When it
// emits it stamps the snapshot's emission index and takes ownership of
// it as the new comparison baseline. The first snapshot ever offered is
// emitted unconditionally.
func (f *ChangeFilter) Decide(snap *domain.Snapshot) bool {
	if f.prev != nil && snap.LevelsEqual(f.prev) {
		f.dropped++
		return false
	}
	snap.Index = f.next
	f.next++
	f.prev = snap
	return true
}

// Emitted returns how many snapshots have been emitted so far, which is
// also the next emission index.
func (f *ChangeFilter) Emitted() int64 {
	return f.next
}

// Suppressed returns how many snapshots were dropped as unchanged.
func (f *ChangeFilter) Suppressed() int64 {
	return f.dropped
}

// Last returns the most recently emitted snapshot, or nil before the
// first emission.
func (f *ChangeFilter) Last() *domain.Snapshot {
	return f.prev
}
