// Package engine orchestrates the elimination season: the per-round state
// machine (degradation lookup, response collection, judgment, level
// mutation, economy tick, bonus and elimination checks) and the controller
// that runs rounds until a terminal condition.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafegames/elimination-arena/internal/arena"
	"github.com/cafegames/elimination-arena/internal/domain/degradation"
	"github.com/cafegames/elimination-arena/internal/domain/participant"
	"github.com/cafegames/elimination-arena/internal/economy"
	"github.com/cafegames/elimination-arena/internal/events"
	"github.com/cafegames/elimination-arena/internal/platform/logger"
	"github.com/cafegames/elimination-arena/internal/platform/metrics"
)

// Level delta applied to the judged best and worst response each round.
const judgmentDelta = 1

// GameState is the explicit mutable state of one season: the roster in
// registration order plus the round counter. It is owned by the Controller
// and lent to the engine for the duration of a single round call.
type GameState struct {
	GameID string
	Round  int
	Roster []*participant.Participant
}

// ByID finds a roster member. Returns nil for unknown ids.
func (s *GameState) ByID(id string) *participant.Participant {
	for _, p := range s.Roster {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AliveCount returns how many participants are still in play.
func (s *GameState) AliveCount() int {
	n := 0
	for _, p := range s.Roster {
		if p.Alive {
			n++
		}
	}
	return n
}

// Snapshot is a participant's state as captured in a round record.
type Snapshot struct {
	ID         string `json:"id"`
	Level      int    `json:"level"`
	TokenBank  int    `json:"token_bank"`
	Reputation int    `json:"reputation"`
	Alive      bool   `json:"alive"`
}

// RoundRecord is the immutable output of one round. Nothing in it is
// mutated after emission.
type RoundRecord struct {
	Round             int               `json:"round"`
	Challenge         string            `json:"challenge"`
	Responses         map[string]string `json:"responses"`
	Forfeits          []string          `json:"forfeits,omitempty"`
	Judgment          *arena.Verdict    `json:"judgment,omitempty"` // nil when indeterminate
	Promoted          string            `json:"promoted,omitempty"`
	Demoted           string            `json:"demoted,omitempty"`
	Events            []events.Event    `json:"events"`
	GroupBonusApplied bool              `json:"group_bonus_applied"`
	Eliminated        []string          `json:"eliminated,omitempty"`
	Snapshots         []Snapshot        `json:"snapshots"`
}

// RoundEngine plays a single round against a GameState. It retains no
// references to the state between calls.
type RoundEngine struct {
	table      degradation.Table
	ledger     *economy.Ledger
	judge      arena.Judge
	responders map[string]arena.Responder
	collectors map[string]arena.IntentCollector // optional, may be empty
	log        *events.Log
	logger     *logger.Logger
}

// NewRoundEngine wires the engine's collaborators. Responders are keyed by
// participant id; a participant with no responder forfeits every round.
func NewRoundEngine(
	table degradation.Table,
	ledger *economy.Ledger,
	judge arena.Judge,
	responders map[string]arena.Responder,
	collectors map[string]arena.IntentCollector,
	log *events.Log,
	lg *logger.Logger,
) *RoundEngine {
	return &RoundEngine{
		table:      table,
		ledger:     ledger,
		judge:      judge,
		responders: responders,
		collectors: collectors,
		log:        log,
		logger:     lg,
	}
}

// PlayRound executes the full round sequence and emits the round record.
func (e *RoundEngine) PlayRound(ctx context.Context, state *GameState, challenge string) (*RoundRecord, error) {
	state.Round++
	round := state.Round
	e.ledger.BeginRound(round)
	firstSeq := e.log.Len()

	record := &RoundRecord{
		Round:     round,
		Challenge: challenge,
		Responses: make(map[string]string),
	}

	// DEGRADE_LOOKUP + COLLECT: resolve each alive participant's resource
	// envelope and gather responses, in roster order. Adapter failures mark
	// the participant forfeited, never abort the round.
	for _, p := range state.Roster {
		if !p.Alive {
			continue
		}
		cfg, err := e.table.ConfigFor(p.Level)
		if err != nil {
			// Validate() at startup makes this unreachable; if it fires
			// anyway the table was mutated and the run must not continue.
			return nil, fmt.Errorf("round %d: %w", round, err)
		}

		responder, ok := e.responders[p.ID]
		if !ok {
			e.forfeit(record, p.ID, "no responder configured")
			continue
		}
		text, err := responder.Respond(ctx, p.ID, cfg, challenge)
		if err != nil {
			e.forfeit(record, p.ID, forfeitReason(err))
			continue
		}
		record.Responses[p.ID] = text
	}

	// JUDGE + MUTATE_LEVELS
	e.judgeAndMutate(ctx, state, record)

	// ECONOMY_TICK: interest, best-response award, loan maturity, survival
	// bonus, then the participants' own economic intents in a fixed order.
	// Interest lands before the award, so the award never compounds in the
	// round it is won.
	for _, p := range state.Roster {
		if p.Alive {
			e.ledger.ApplyInterest(p)
		}
	}
	if best := state.ByID(record.Promoted); best != nil {
		e.ledger.Earn(best, e.ledger.Rules().BestResponseAward, "best response")
	}
	e.ledger.TickLoans(state.Roster)
	e.ledger.SurvivalBonus(state.Roster)
	e.applyIntents(ctx, state)

	// BONUS_CHECK
	record.GroupBonusApplied = e.ledger.GroupBonusCheck(state.Roster)

	// ELIMINATION_CHECK
	for _, p := range state.Roster {
		if p.Alive && p.Level <= participant.MinLevel {
			p.Alive = false
			p.EliminationRound = round
			record.Eliminated = append(record.Eliminated, p.ID)
			e.log.Append(events.Event{
				Round:   round,
				Type:    events.TypeElimination,
				ActorID: p.ID,
				Reason:  fmt.Sprintf("reached level %+d", p.Level),
			})
			e.logger.Warn(fmt.Sprintf("%s has been ELIMINATED (reached level %+d)", p.ID, p.Level))
		}
	}

	// EMIT
	record.Events = e.log.Since(firstSeq)
	for _, p := range state.Roster {
		record.Snapshots = append(record.Snapshots, Snapshot{
			ID:         p.ID,
			Level:      p.Level,
			TokenBank:  p.TokenBank,
			Reputation: p.Reputation,
			Alive:      p.Alive,
		})
	}
	return record, nil
}

// judgeAndMutate runs the judgment and applies the level deltas. With fewer
// than two responses the round degrades to "no change". Forfeits are
// penalized at least as harshly as judged losses: when any participant
// forfeited, the demotion lands on the first forfeited participant in roster
// order instead of the judge's worst.
func (e *RoundEngine) judgeAndMutate(ctx context.Context, state *GameState, record *RoundRecord) {
	if len(record.Responses) < 2 {
		e.logger.Warn(fmt.Sprintf("round %d: judgment indeterminate with %d responses", record.Round, len(record.Responses)))
		return
	}

	verdict, err := e.judge.Judge(ctx, record.Challenge, record.Responses)
	metrics.Get().RecordJudgment(err != nil)
	if err != nil {
		e.logger.Warn(fmt.Sprintf("round %d: judgment failed, no level changes: %v", record.Round, err))
		return
	}
	record.Judgment = &verdict

	demoted := verdict.Worst
	if len(record.Forfeits) > 0 {
		demoted = record.Forfeits[0]
	}

	if best := state.ByID(verdict.Best); best != nil {
		best.AdjustLevel(judgmentDelta)
		record.Promoted = best.ID
	}
	if demoted != verdict.Best {
		if worst := state.ByID(demoted); worst != nil {
			worst.AdjustLevel(-judgmentDelta)
			record.Demoted = worst.ID
		}
	}

	e.log.Append(events.Event{
		Round:    record.Round,
		Type:     events.TypeJudgment,
		ActorID:  record.Promoted,
		TargetID: record.Demoted,
		Reason:   verdict.Reasoning,
	})
}

// applyIntents collects economic intents from every alive participant, then
// applies them grouped by kind: rescues, resurrections, donations, loan
// offers. The fixed order prevents order-dependent insolvency; invalid
// intents are dropped without side effects.
func (e *RoundEngine) applyIntents(ctx context.Context, state *GameState) {
	if len(e.collectors) == 0 {
		return
	}

	var collected []arena.Intent
	rules := e.ledger.Rules()
	for _, p := range state.Roster {
		if !p.Alive {
			continue
		}
		collector, ok := e.collectors[p.ID]
		if !ok {
			continue
		}
		briefing := arena.BuildBriefing(state.Round, p, state.Roster, rules)
		intents, err := collector.Collect(ctx, p.ID, briefing)
		if err != nil {
			e.logger.Warn(fmt.Sprintf("%s: intent collection failed: %v", p.ID, err))
			continue
		}
		collected = append(collected, intents...)
	}

	for _, kind := range []arena.IntentKind{arena.IntentSelfRescue, arena.IntentResurrect, arena.IntentDonate, arena.IntentLoan} {
		for _, in := range collected {
			if in.Kind != kind {
				continue
			}
			if err := e.applyIntent(state, in); err != nil {
				e.logger.Warn(fmt.Sprintf("intent %s by %s dropped: %v", in.Kind, in.ActorID, err))
			}
		}
	}
}

func (e *RoundEngine) applyIntent(state *GameState, in arena.Intent) error {
	actor := state.ByID(in.ActorID)
	if actor == nil {
		return fmt.Errorf("unknown actor %q", in.ActorID)
	}

	switch in.Kind {
	case arena.IntentSelfRescue:
		return e.ledger.SelfRescue(actor)
	case arena.IntentResurrect:
		target := state.ByID(in.TargetID)
		if target == nil {
			return fmt.Errorf("unknown target %q", in.TargetID)
		}
		return e.ledger.Resurrect(actor, target)
	case arena.IntentDonate:
		target := state.ByID(in.TargetID)
		if target == nil {
			return fmt.Errorf("unknown target %q", in.TargetID)
		}
		return e.ledger.Donate(actor, target, in.Amount)
	case arena.IntentLoan:
		target := state.ByID(in.TargetID)
		if target == nil {
			return fmt.Errorf("unknown target %q", in.TargetID)
		}
		_, err := e.ledger.IssueLoan(actor, target, in.Amount, in.InterestRate, in.DurationRounds)
		return err
	default:
		return fmt.Errorf("unknown intent kind %q", in.Kind)
	}
}

func (e *RoundEngine) forfeit(record *RoundRecord, id, reason string) {
	record.Forfeits = append(record.Forfeits, id)
	e.log.Append(events.Event{
		Round:   record.Round,
		Type:    events.TypeForfeit,
		ActorID: id,
		Reason:  reason,
	})
	e.logger.Warn(fmt.Sprintf("%s forfeits the round: %s", id, reason))
}

func forfeitReason(err error) string {
	switch {
	case errors.Is(err, arena.ErrUpstreamRejected):
		return "upstream rejected request"
	case errors.Is(err, arena.ErrUpstreamUnavailable):
		return "upstream unavailable"
	default:
		return "response failed"
	}
}
