package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/cafegames/elimination-arena/internal/arena"
	"github.com/cafegames/elimination-arena/internal/domain/degradation"
	"github.com/cafegames/elimination-arena/internal/domain/participant"
	"github.com/cafegames/elimination-arena/internal/economy"
	"github.com/cafegames/elimination-arena/internal/events"
	"github.com/cafegames/elimination-arena/internal/platform/logger"
)

// Scripted adapters stand in for the LLM-backed ones.

type scriptedResponder struct {
	text string
	err  error
}

func (r scriptedResponder) Respond(_ context.Context, _ string, _ degradation.Config, _ string) (string, error) {
	return r.text, r.err
}

type scriptedJudge struct {
	verdict arena.Verdict
	err     error
}

func (j scriptedJudge) Judge(_ context.Context, _ string, _ map[string]string) (arena.Verdict, error) {
	return j.verdict, j.err
}

type scriptedCollector struct {
	intents []arena.Intent
	err     error
}

func (c scriptedCollector) Collect(_ context.Context, id string, _ string) ([]arena.Intent, error) {
	out := make([]arena.Intent, len(c.intents))
	copy(out, c.intents)
	for i := range out {
		out[i].ActorID = id
	}
	return out, c.err
}

type fixture struct {
	engine *RoundEngine
	state  *GameState
	log    *events.Log
}

func newFixture(roster []*participant.Participant, judge arena.Judge, responders map[string]arena.Responder, collectors map[string]arena.IntentCollector) *fixture {
	log := events.NewLog(nil)
	ledger := economy.NewLedger(economy.DefaultRules(), log)
	eng := NewRoundEngine(degradation.Default(), ledger, judge, responders, collectors, log, logger.NewLogger())
	return &fixture{
		engine: eng,
		state:  &GameState{GameID: "test-game", Roster: roster},
		log:    log,
	}
}

func respondAll(roster []*participant.Participant) map[string]arena.Responder {
	out := make(map[string]arena.Responder, len(roster))
	for _, p := range roster {
		out[p.ID] = scriptedResponder{text: "response from " + p.ID}
	}
	return out
}

func TestRoundBaselineEconomy(t *testing.T) {
	// With judgment failing, a round is pure economy: 1000 + 50 interest
	// + 100 survival + 300 group = 1450 for everyone.
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", 0, 1000)
	roster := []*participant.Participant{a, b}
	f := newFixture(roster, scriptedJudge{err: errors.New("judge offline")}, respondAll(roster), nil)

	record, err := f.engine.PlayRound(context.Background(), f.state, "challenge")
	if err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	for _, p := range roster {
		if p.TokenBank != 1450 {
			t.Errorf("Expected %s bank 1450, got %d", p.ID, p.TokenBank)
		}
		if p.Level != 0 {
			t.Errorf("Expected %s level unchanged, got %+d", p.ID, p.Level)
		}
	}
	if record.Judgment != nil {
		t.Errorf("Expected no judgment in record")
	}
	if !record.GroupBonusApplied {
		t.Errorf("Expected group bonus with full roster surviving")
	}
}

func TestJudgmentMutatesLevelsAndAwards(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", 0, 1000)
	roster := []*participant.Participant{a, b}
	judge := scriptedJudge{verdict: arena.Verdict{Best: "Claude", Worst: "Grok", Reasoning: "sharper"}}
	f := newFixture(roster, judge, respondAll(roster), nil)

	record, err := f.engine.PlayRound(context.Background(), f.state, "challenge")
	if err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	if a.Level != 1 {
		t.Errorf("Expected best promoted to +1, got %+d", a.Level)
	}
	if b.Level != -1 {
		t.Errorf("Expected worst demoted to -1, got %+d", b.Level)
	}
	// Best: 5% interest on 1000 first, then the 500 award, survival 100,
	// group 300. The award never earns interest in the round it is won.
	if a.TokenBank != 1950 {
		t.Errorf("Expected best bank 1950, got %d", a.TokenBank)
	}
	if b.TokenBank != 1450 {
		t.Errorf("Expected worst bank 1450, got %d", b.TokenBank)
	}
	if record.Promoted != "Claude" || record.Demoted != "Grok" {
		t.Errorf("Expected promoted Claude / demoted Grok, got %q/%q", record.Promoted, record.Demoted)
	}
}

func TestForfeitTakesTheDemotion(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", 0, 1000)
	c := participant.New("DeepSeek", "deepseek-chat", 0, 1000)
	roster := []*participant.Participant{a, b, c}

	responders := respondAll(roster)
	responders["DeepSeek"] = scriptedResponder{err: fmt.Errorf("timeout: %w", arena.ErrUpstreamUnavailable)}
	judge := scriptedJudge{verdict: arena.Verdict{Best: "Claude", Worst: "Grok", Reasoning: "weakest"}}
	f := newFixture(roster, judge, responders, nil)

	record, err := f.engine.PlayRound(context.Background(), f.state, "challenge")
	if err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	if len(record.Forfeits) != 1 || record.Forfeits[0] != "DeepSeek" {
		t.Fatalf("Expected DeepSeek forfeited, got %v", record.Forfeits)
	}
	if c.Level != -1 {
		t.Errorf("Expected forfeiter demoted, got %+d", c.Level)
	}
	if b.Level != 0 {
		t.Errorf("Expected judged worst spared when a forfeit exists, got %+d", b.Level)
	}
	if record.Demoted != "DeepSeek" {
		t.Errorf("Expected record.Demoted DeepSeek, got %q", record.Demoted)
	}
}

func TestEliminationAtFloorSkipsBonuses(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", -5, 1000)
	roster := []*participant.Participant{a, b}
	judge := scriptedJudge{verdict: arena.Verdict{Best: "Claude", Worst: "Grok", Reasoning: "collapsed"}}
	f := newFixture(roster, judge, respondAll(roster), nil)

	record, err := f.engine.PlayRound(context.Background(), f.state, "challenge")
	if err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	if b.Alive {
		t.Fatalf("Expected Grok eliminated at level %+d", b.Level)
	}
	if b.EliminationRound != 1 {
		t.Errorf("Expected elimination round 1, got %d", b.EliminationRound)
	}
	if len(record.Eliminated) != 1 || record.Eliminated[0] != "Grok" {
		t.Errorf("Expected Grok in eliminated list, got %v", record.Eliminated)
	}
	// Interest still applies while formally alive, but no survival or group
	// bonus lands at the sentinel level: 1000 + 50.
	if b.TokenBank != 1050 {
		t.Errorf("Expected eliminated bank 1050, got %d", b.TokenBank)
	}
	if record.GroupBonusApplied {
		t.Errorf("Expected no group bonus with a participant at the floor")
	}

	found := false
	for _, e := range record.Events {
		if e.Type == events.TypeElimination && e.ActorID == "Grok" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected elimination event in round record")
	}
}

func TestIndeterminateJudgmentWithOneResponse(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", 0, 1000)
	roster := []*participant.Participant{a, b}

	responders := respondAll(roster)
	responders["Grok"] = scriptedResponder{err: fmt.Errorf("rate limited: %w", arena.ErrUpstreamRejected)}
	judge := scriptedJudge{verdict: arena.Verdict{Best: "Claude", Worst: "Grok"}}
	f := newFixture(roster, judge, responders, nil)

	record, err := f.engine.PlayRound(context.Background(), f.state, "challenge")
	if err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	if record.Judgment != nil {
		t.Errorf("Expected indeterminate judgment with a single response")
	}
	if a.Level != 0 || b.Level != 0 {
		t.Errorf("Expected no level changes, got %+d/%+d", a.Level, b.Level)
	}
}

func TestSelfRescueBeforeEliminationCheck(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", -5, 2000)
	roster := []*participant.Participant{a, b}

	judge := scriptedJudge{verdict: arena.Verdict{Best: "Claude", Worst: "Grok", Reasoning: "rambling"}}
	collectors := map[string]arena.IntentCollector{
		"Grok": scriptedCollector{intents: []arena.Intent{{Kind: arena.IntentSelfRescue}}},
	}
	f := newFixture(roster, judge, respondAll(roster), collectors)

	record, err := f.engine.PlayRound(context.Background(), f.state, "challenge")
	if err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	// Demoted to the floor, then rescued before the elimination check fires
	if !b.Alive {
		t.Fatalf("Expected self-rescue to avert elimination")
	}
	if b.Level != participant.MinLevel+2 {
		t.Errorf("Expected level %+d after rescue, got %+d", participant.MinLevel+2, b.Level)
	}
	if len(record.Eliminated) != 0 {
		t.Errorf("Expected no eliminations, got %v", record.Eliminated)
	}
}

func TestDonationIntent(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", 0, 1000)
	roster := []*participant.Participant{a, b}

	collectors := map[string]arena.IntentCollector{
		"Claude": scriptedCollector{intents: []arena.Intent{{Kind: arena.IntentDonate, TargetID: "Grok", Amount: 200}}},
	}
	f := newFixture(roster, scriptedJudge{err: errors.New("judge offline")}, respondAll(roster), collectors)

	if _, err := f.engine.PlayRound(context.Background(), f.state, "challenge"); err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	// Both start the tick at 1150 (interest + survival), transfer 200,
	// then group bonus 300.
	if a.TokenBank != 1250 {
		t.Errorf("Expected donor bank 1250, got %d", a.TokenBank)
	}
	if b.TokenBank != 1650 {
		t.Errorf("Expected recipient bank 1650, got %d", b.TokenBank)
	}
	if a.Reputation != 1 {
		t.Errorf("Expected donor reputation +1, got %+d", a.Reputation)
	}
}

func TestInvalidIntentDropsWithoutSideEffects(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", 0, 1000)
	roster := []*participant.Participant{a, b}

	collectors := map[string]arena.IntentCollector{
		"Claude": scriptedCollector{intents: []arena.Intent{
			{Kind: arena.IntentDonate, TargetID: "Nobody", Amount: 200},
			{Kind: arena.IntentDonate, TargetID: "Grok", Amount: 999999},
		}},
	}
	f := newFixture(roster, scriptedJudge{err: errors.New("judge offline")}, respondAll(roster), collectors)

	if _, err := f.engine.PlayRound(context.Background(), f.state, "challenge"); err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	if a.TokenBank != 1450 || b.TokenBank != 1450 {
		t.Errorf("Expected invalid intents to move nothing, got %d/%d", a.TokenBank, b.TokenBank)
	}
}

func TestIdenticalRunsEmitIdenticalRecords(t *testing.T) {
	build := func() *fixture {
		a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
		b := participant.New("Grok", "grok-3", 0, 1000)
		c := participant.New("DeepSeek", "deepseek-chat", 0, 1000)
		roster := []*participant.Participant{a, b, c}
		judge := scriptedJudge{verdict: arena.Verdict{Best: "Claude", Worst: "DeepSeek", Reasoning: "fixed"}}
		collectors := map[string]arena.IntentCollector{
			"Claude": scriptedCollector{intents: []arena.Intent{{Kind: arena.IntentDonate, TargetID: "DeepSeek", Amount: 100}}},
		}
		return newFixture(roster, judge, respondAll(roster), collectors)
	}

	ctx := context.Background()
	f1, f2 := build(), build()

	for round := 0; round < 3; round++ {
		r1, err1 := f1.engine.PlayRound(ctx, f1.state, "challenge")
		r2, err2 := f2.engine.PlayRound(ctx, f2.state, "challenge")
		if err1 != nil || err2 != nil {
			t.Fatalf("PlayRound failed: %v / %v", err1, err2)
		}
		if !reflect.DeepEqual(r1, r2) {
			t.Fatalf("Round %d records diverged:\n%+v\n%+v", round+1, r1, r2)
		}
	}
}

func TestMissingResponderForfeitsEveryRound(t *testing.T) {
	a := participant.New("Claude", "claude-sonnet-4-20250514", 0, 1000)
	b := participant.New("Grok", "grok-3", 0, 1000)
	roster := []*participant.Participant{a, b}

	responders := map[string]arena.Responder{"Claude": scriptedResponder{text: "only one"}}
	f := newFixture(roster, scriptedJudge{}, responders, nil)

	record, err := f.engine.PlayRound(context.Background(), f.state, "challenge")
	if err != nil {
		t.Fatalf("PlayRound failed: %v", err)
	}

	if len(record.Forfeits) != 1 || record.Forfeits[0] != "Grok" {
		t.Errorf("Expected Grok forfeited without a responder, got %v", record.Forfeits)
	}
}
