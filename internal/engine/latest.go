package engine

import (
	"context"
	"sync"
)

// LatestRecord is a round sink retaining the most recently emitted record.
// The round loop writes through Record; API handlers read concurrently
// through Round and Snapshots. Records are immutable after emission, so
// handing out the stored slice is safe.
type LatestRecord struct {
	mu     sync.RWMutex
	record *RoundRecord
}

// Record stores the emitted record. Implements RoundSink.
func (l *LatestRecord) Record(_ context.Context, _ string, record *RoundRecord) error {
	l.mu.Lock()
	l.record = record
	l.mu.Unlock()
	return nil
}

// Round returns the last emitted round number, 0 before the first round.
func (l *LatestRecord) Round() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.record == nil {
		return 0
	}
	return l.record.Round
}

// Snapshots returns the participant snapshots of the last emitted round,
// nil before the first round completes.
func (l *LatestRecord) Snapshots() []Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.record == nil {
		return nil
	}
	return l.record.Snapshots
}

var _ RoundSink = (*LatestRecord)(nil)
