package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cafegames/elimination-arena/internal/domain/degradation"
	"github.com/cafegames/elimination-arena/internal/domain/participant"
	"github.com/cafegames/elimination-arena/internal/platform/logger"
	"github.com/cafegames/elimination-arena/internal/platform/metrics"
)

// RoundSink receives each emitted round record: persistence, the spectator
// feed, and the standings cache all implement it. Sink errors are logged and
// never abort the season.
type RoundSink interface {
	Record(ctx context.Context, gameID string, record *RoundRecord) error
}

// Standing is one row of the final rankings.
type Standing struct {
	Rank             int    `json:"rank"`
	ID               string `json:"id"`
	Survived         bool   `json:"survived"`
	EliminationRound int    `json:"elimination_round,omitempty"`
	Level            int    `json:"level"`
	TokenBank        int    `json:"token_bank"`
	Reputation       int    `json:"reputation"`
}

// Controller owns the roster and runs rounds until a terminal condition:
// the round limit is reached, or at most one participant remains alive.
type Controller struct {
	engine    *RoundEngine
	state     *GameState
	deck      *ChallengeDeck
	maxRounds int
	sinks     []RoundSink
	logger    *logger.Logger
}

// NewController validates the degradation table and assembles a season.
// A table gap is a fatal configuration error: the run refuses to start
// rather than hit an undefined level transition mid-game.
func NewController(
	table degradation.Table,
	eng *RoundEngine,
	roster []*participant.Participant,
	deck *ChallengeDeck,
	maxRounds int,
	lg *logger.Logger,
	sinks ...RoundSink,
) (*Controller, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to start: %w", err)
	}
	if len(roster) < 2 {
		return nil, fmt.Errorf("refusing to start: roster needs at least 2 participants, got %d", len(roster))
	}
	return &Controller{
		engine:    eng,
		state:     &GameState{GameID: uuid.NewString(), Roster: roster},
		deck:      deck,
		maxRounds: maxRounds,
		sinks:     sinks,
		logger:    lg,
	}, nil
}

// SetGameID overrides the generated game id (used for reproducible runs).
func (c *Controller) SetGameID(id string) { c.state.GameID = id }

// GameID returns the season's identifier.
func (c *Controller) GameID() string { return c.state.GameID }

// State exposes the season state for read-only inspection (API handlers).
func (c *Controller) State() *GameState { return c.state }

// Run plays rounds to completion. It returns all emitted records; a non-nil
// error means a fatal mid-round failure, with the prior round's committed
// state as the valid recovery point.
func (c *Controller) Run(ctx context.Context) ([]*RoundRecord, error) {
	c.logger.Info(fmt.Sprintf("starting season %s: %d participants, max %d rounds", c.state.GameID, len(c.state.Roster), c.maxRounds))

	var records []*RoundRecord
	for c.state.Round < c.maxRounds {
		if alive := c.state.AliveCount(); alive <= 1 {
			c.logger.Info(fmt.Sprintf("only %d participant(s) remaining, ending season", alive))
			break
		}

		start := time.Now()
		record, err := c.engine.PlayRound(ctx, c.state, c.deck.Draw())
		if err != nil {
			return records, fmt.Errorf("season %s aborted: %w", c.state.GameID, err)
		}
		metrics.Get().RecordRound(time.Since(start))
		records = append(records, record)

		for _, sink := range c.sinks {
			if err := sink.Record(ctx, c.state.GameID, record); err != nil {
				c.logger.Error(fmt.Sprintf("round %d: sink failed: %v", record.Round, err))
			}
		}
	}

	c.logger.Info(fmt.Sprintf("season %s complete after %d rounds", c.state.GameID, c.state.Round))
	return records, nil
}

// FinalStandings ranks the roster: survivors first, then by elimination
// round (later is better), ties broken by token bank.
func (c *Controller) FinalStandings() []Standing {
	roster := make([]*participant.Participant, len(c.state.Roster))
	copy(roster, c.state.Roster)

	sort.SliceStable(roster, func(i, j int) bool {
		a, b := roster[i], roster[j]
		if a.Alive != b.Alive {
			return a.Alive
		}
		if !a.Alive && a.EliminationRound != b.EliminationRound {
			return a.EliminationRound > b.EliminationRound
		}
		return a.TokenBank > b.TokenBank
	})

	standings := make([]Standing, len(roster))
	for i, p := range roster {
		standings[i] = Standing{
			Rank:             i + 1,
			ID:               p.ID,
			Survived:         p.Alive,
			EliminationRound: p.EliminationRound,
			Level:            p.Level,
			TokenBank:        p.TokenBank,
			Reputation:       p.Reputation,
		}
	}
	return standings
}
