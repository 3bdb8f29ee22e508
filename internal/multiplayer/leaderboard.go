package multiplayer

import (
	"sort"
	"sync"
)

// Leaderboard is the read-only view of other players' progress.
// Snapshots replace it wholesale; the last applied snapshot wins.
type Leaderboard struct {
	mu      sync.RWMutex
	records []PlayerRecord
	version uint64
}

// Replace discards the current view and starts a new snapshot.
func (l *Leaderboard) Replace(records []PlayerRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records[:0:0], records...)
	l.version++
}

// Add appends a record to the snapshot being received.
// A record for a name already present replaces it.
func (l *Leaderboard) Add(r PlayerRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		if l.records[i].Name == r.Name {
			l.records[i] = r
			l.version++
			return
		}
	}
	l.records = append(l.records, r)
	l.version++
}

// Entries returns the records sorted by score, highest first.
// Living players sort ahead of dead ones on equal score.
func (l *Leaderboard) Entries() []PlayerRecord {
	l.mu.RLock()
	out := append([]PlayerRecord(nil), l.records...)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return !out[i].Dead && out[j].Dead
	})
	return out
}

// Version increases on every change; presentation uses it to skip redraws.
func (l *Leaderboard) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Len returns the number of records.
func (l *Leaderboard) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
