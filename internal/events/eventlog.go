// Package events provides the append-only log of everything that moves tokens
// or levels in the arena. Round records are assembled from slices of this log,
// and the log is the audit trail for post-season reporting.
package events

import (
	"sync"

	"github.com/cafegames/elimination-arena/internal/platform/metrics"
)

// Type defines the category of an arena event.
type Type string

const (
	TypeInterest      Type = "INTEREST"
	TypeEarn          Type = "EARN"
	TypeSpend         Type = "SPEND"
	TypeDonation      Type = "DONATION"
	TypeLoanIssued    Type = "LOAN_ISSUED"
	TypeLoanRepaid    Type = "LOAN_REPAID"
	TypeLoanDefault   Type = "LOAN_DEFAULT"
	TypeSelfRescue    Type = "SELF_RESCUE"
	TypeResurrection  Type = "RESURRECTION"
	TypeSurvivalBonus Type = "SURVIVAL_BONUS"
	TypeGroupBonus    Type = "GROUP_BONUS"
	TypeForfeit       Type = "FORFEIT"
	TypeJudgment      Type = "JUDGMENT"
	TypeElimination   Type = "ELIMINATION"
)

// Event is an immutable record of one action. Seq is assigned by the log at
// append time and is the only identifier an event needs: identical runs
// produce identical sequences.
type Event struct {
	Seq      int    `json:"seq"`
	Round    int    `json:"round"`
	Type     Type   `json:"type"`
	ActorID  string `json:"actor_id"`            // Who performed or received the action
	TargetID string `json:"target_id,omitempty"` // Counterparty, if any
	Amount   int    `json:"amount,omitempty"`    // Tokens moved or created
	Reason   string `json:"reason,omitempty"`
}

// Persister defines how an event is durably stored.
type Persister interface {
	Append(event Event) error
}

// Log is the in-memory append-only log, optionally written through to a
// Persister (SQLite in production).
type Log struct {
	mu        sync.RWMutex
	events    []Event
	persister Persister
}

// NewLog creates a new event log with an optional persister.
func NewLog(persister Persister) *Log {
	return &Log{
		events:    make([]Event, 0),
		persister: persister,
	}
}

// Append adds a new event to the log and assigns its sequence number.
// Events are immutable once appended.
func (l *Log) Append(event Event) Event {
	l.mu.Lock()
	event.Seq = len(l.events)
	l.events = append(l.events, event)
	l.mu.Unlock()

	if l.persister != nil {
		// Write through to persistent storage. Durability is best-effort;
		// the in-memory log remains the source of truth for the run.
		metrics.Get().RecordEventWrite(l.persister.Append(event))
	}
	return event
}

// Len returns the number of events appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Since returns a copy of all events with Seq >= seq.
func (l *Log) Since(seq int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= len(l.events) {
		return nil
	}
	out := make([]Event, len(l.events)-seq)
	copy(out, l.events[seq:])
	return out
}

// ByActor returns all events performed by a specific participant.
func (l *Log) ByActor(actorID string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Event
	for _, e := range l.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// ByRound returns all events that occurred in a specific round.
func (l *Log) ByRound(round int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Event
	for _, e := range l.events {
		if e.Round == round {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events.
func (l *Log) Replay() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
