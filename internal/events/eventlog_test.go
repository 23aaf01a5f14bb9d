package events

import (
	"errors"
	"testing"
)

type recordingPersister struct {
	appended []Event
	fail     bool
}

func (p *recordingPersister) Append(event Event) error {
	if p.fail {
		return errors.New("disk full")
	}
	p.appended = append(p.appended, event)
	return nil
}

func TestAppendAssignsSequentialSeq(t *testing.T) {
	log := NewLog(nil)

	first := log.Append(Event{Round: 1, Type: TypeInterest, ActorID: "Claude", Amount: 50})
	second := log.Append(Event{Round: 1, Type: TypeEarn, ActorID: "Grok", Amount: 500})

	if first.Seq != 0 || second.Seq != 1 {
		t.Errorf("Expected seq 0 then 1, got %d then %d", first.Seq, second.Seq)
	}
	if log.Len() != 2 {
		t.Errorf("Expected 2 events, got %d", log.Len())
	}
}

func TestSince(t *testing.T) {
	log := NewLog(nil)
	for i := 0; i < 5; i++ {
		log.Append(Event{Round: 1, Type: TypeEarn, ActorID: "Claude"})
	}

	tail := log.Since(3)
	if len(tail) != 2 {
		t.Fatalf("Expected 2 events since seq 3, got %d", len(tail))
	}
	if tail[0].Seq != 3 || tail[1].Seq != 4 {
		t.Errorf("Expected seqs 3,4, got %d,%d", tail[0].Seq, tail[1].Seq)
	}

	if got := log.Since(100); got != nil {
		t.Errorf("Expected nil past the end, got %v", got)
	}
}

func TestByActorAndByRound(t *testing.T) {
	log := NewLog(nil)
	log.Append(Event{Round: 1, Type: TypeEarn, ActorID: "Claude"})
	log.Append(Event{Round: 1, Type: TypeSpend, ActorID: "Grok"})
	log.Append(Event{Round: 2, Type: TypeEarn, ActorID: "Claude"})

	if got := log.ByActor("Claude"); len(got) != 2 {
		t.Errorf("Expected 2 events for Claude, got %d", len(got))
	}
	if got := log.ByRound(1); len(got) != 2 {
		t.Errorf("Expected 2 events in round 1, got %d", len(got))
	}
}

func TestAppendWritesThroughPersister(t *testing.T) {
	persister := &recordingPersister{}
	log := NewLog(persister)

	log.Append(Event{Round: 1, Type: TypeDonation, ActorID: "Claude", TargetID: "Grok", Amount: 300})

	if len(persister.appended) != 1 {
		t.Fatalf("Expected 1 persisted event, got %d", len(persister.appended))
	}
	if persister.appended[0].Seq != 0 {
		t.Errorf("Expected persisted event to carry assigned seq, got %d", persister.appended[0].Seq)
	}
}

func TestPersisterFailureDoesNotLoseEvents(t *testing.T) {
	persister := &recordingPersister{fail: true}
	log := NewLog(persister)

	log.Append(Event{Round: 1, Type: TypeEarn, ActorID: "Claude"})

	// The in-memory log stays authoritative even when the write-through fails
	if log.Len() != 1 {
		t.Errorf("Expected event retained in memory, got %d", log.Len())
	}
}

func TestReplayReturnsCopy(t *testing.T) {
	log := NewLog(nil)
	log.Append(Event{Round: 1, Type: TypeEarn, ActorID: "Claude"})

	history := log.Replay()
	history[0].ActorID = "mutated"

	if log.Replay()[0].ActorID != "Claude" {
		t.Errorf("Expected replay to return an independent copy")
	}
}
