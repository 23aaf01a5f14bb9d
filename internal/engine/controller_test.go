package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/cafegames/elimination-arena/internal/arena"
	"github.com/cafegames/elimination-arena/internal/domain/degradation"
	"github.com/cafegames/elimination-arena/internal/domain/participant"
	"github.com/cafegames/elimination-arena/internal/platform/logger"
)

type recordingSink struct {
	records []*RoundRecord
	err     error
}

func (s *recordingSink) Record(_ context.Context, _ string, record *RoundRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func newTestController(t *testing.T, f *fixture, maxRounds int, sinks ...RoundSink) *Controller {
	t.Helper()
	ctrl, err := NewController(degradation.Default(), f.engine, f.state.Roster, NewChallengeDeck(nil), maxRounds, logger.NewLogger(), sinks...)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return ctrl
}

func TestNewControllerRejectsTableGap(t *testing.T) {
	table := degradation.Default()
	delete(table, 2)

	roster := []*participant.Participant{
		participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000),
		participant.New("Grok", "grok-3", 0, 1000),
	}
	f := newFixture(roster, scriptedJudge{}, respondAll(roster), nil)

	if _, err := NewController(table, f.engine, roster, NewChallengeDeck(nil), 20, logger.NewLogger()); err == nil {
		t.Errorf("Expected startup refusal on incomplete degradation table")
	}
}

func TestNewControllerRejectsTinyRoster(t *testing.T) {
	roster := []*participant.Participant{participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)}
	f := newFixture(roster, scriptedJudge{}, respondAll(roster), nil)

	if _, err := NewController(degradation.Default(), f.engine, roster, NewChallengeDeck(nil), 20, logger.NewLogger()); err == nil {
		t.Errorf("Expected startup refusal with fewer than 2 participants")
	}
}

func TestRunStopsAtRoundLimit(t *testing.T) {
	roster := []*participant.Participant{
		participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000),
		participant.New("Grok", "grok-3", 0, 1000),
	}
	// Failing judge: nobody ever moves, so only the limit ends the season
	f := newFixture(roster, scriptedJudge{err: errors.New("judge offline")}, respondAll(roster), nil)
	ctrl := newTestController(t, f, 5)

	records, err := ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("Expected 5 rounds at the limit, got %d", len(records))
	}
}

func TestRunStopsWhenOneRemains(t *testing.T) {
	roster := []*participant.Participant{
		participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000),
		participant.New("Grok", "grok-3", -5, 1000),
	}
	judge := scriptedJudge{verdict: arena.Verdict{Best: "Claude", Worst: "Grok", Reasoning: "fading"}}
	f := newFixture(roster, judge, respondAll(roster), nil)
	ctrl := newTestController(t, f, 20)

	records, err := ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected season to end after the deciding round, got %d rounds", len(records))
	}
	if roster[1].Alive {
		t.Errorf("Expected Grok eliminated")
	}
}

func TestRunFeedsSinksAndToleratesFailures(t *testing.T) {
	roster := []*participant.Participant{
		participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000),
		participant.New("Grok", "grok-3", 0, 1000),
	}
	f := newFixture(roster, scriptedJudge{err: errors.New("judge offline")}, respondAll(roster), nil)
	healthy := &recordingSink{}
	broken := &recordingSink{err: errors.New("disk full")}
	ctrl := newTestController(t, f, 3, healthy, broken)

	if _, err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Expected sink failures not to abort the season, got %v", err)
	}
	if len(healthy.records) != 3 {
		t.Errorf("Expected 3 records delivered, got %d", len(healthy.records))
	}
}

func TestFinalStandingsOrdering(t *testing.T) {
	survivor := participant.New("Claude", "claude-sonnet-4-20250514", 2, 5000)
	lateLoss := participant.New("Grok", "grok-3", 0, 900)
	lateLoss.Alive = false
	lateLoss.EliminationRound = 12
	earlyLossRich := participant.New("DeepSeek", "deepseek-chat", 0, 3000)
	earlyLossRich.Alive = false
	earlyLossRich.EliminationRound = 4
	earlyLossPoor := participant.New("ChatGPT", "gpt-4o", 0, 100)
	earlyLossPoor.Alive = false
	earlyLossPoor.EliminationRound = 4

	roster := []*participant.Participant{earlyLossPoor, earlyLossRich, lateLoss, survivor}
	f := newFixture(roster, scriptedJudge{}, respondAll(roster), nil)
	ctrl := newTestController(t, f, 20)

	standings := ctrl.FinalStandings()

	want := []string{"Claude", "Grok", "DeepSeek", "ChatGPT"}
	for i, id := range want {
		if standings[i].ID != id {
			t.Errorf("Expected rank %d to be %s, got %s", i+1, id, standings[i].ID)
		}
		if standings[i].Rank != i+1 {
			t.Errorf("Expected rank %d, got %d", i+1, standings[i].Rank)
		}
	}
	if !standings[0].Survived {
		t.Errorf("Expected the survivor ranked first")
	}
}
