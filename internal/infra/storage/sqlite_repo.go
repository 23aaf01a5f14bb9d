package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cafegames/elimination-arena/internal/engine"
	"github.com/cafegames/elimination-arena/internal/events"
)

// SQLiteRoundRepository persists emitted round records. Records are
// append-only: a (game_id, round) pair is written exactly once.
type SQLiteRoundRepository struct {
	db *sql.DB
}

func NewSQLiteRoundRepository(db *sql.DB) *SQLiteRoundRepository {
	return &SQLiteRoundRepository{db: db}
}

// Record stores a round record as JSON. Implements the engine's round sink.
func (r *SQLiteRoundRepository) Record(ctx context.Context, gameID string, record *engine.RoundRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal round record: %w", err)
	}

	query := `INSERT INTO rounds (game_id, round, record) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, gameID, record.Round, string(payload)); err != nil {
		return fmt.Errorf("failed to persist round %d: %w", record.Round, err)
	}
	return nil
}

// GetByGameID returns all persisted round records for a game, in round order.
func (r *SQLiteRoundRepository) GetByGameID(ctx context.Context, gameID string) ([]*engine.RoundRecord, error) {
	query := `SELECT record FROM rounds WHERE game_id = ? ORDER BY round ASC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*engine.RoundRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var record engine.RoundRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// ---------------------------------------------------------
// SQLiteEventRepository
// ---------------------------------------------------------

// SQLiteEventRepository writes through the in-memory event log to SQLite.
// It is bound to one game id for the lifetime of a run.
type SQLiteEventRepository struct {
	db     *sql.DB
	gameID string
}

func NewSQLiteEventRepository(db *sql.DB, gameID string) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db, gameID: gameID}
}

// Append stores a single event. Implements the event log's persister.
func (r *SQLiteEventRepository) Append(event events.Event) error {
	query := `
		INSERT INTO economy_events (game_id, seq, round, event_type, actor_id, target_id, amount, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		r.gameID, event.Seq, event.Round, string(event.Type),
		event.ActorID, event.TargetID, event.Amount, event.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]events.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		var e events.Event
		var eventType string
		if err := rows.Scan(&e.Seq, &e.Round, &eventType, &e.ActorID, &e.TargetID, &e.Amount, &e.Reason); err != nil {
			return nil, err
		}
		e.Type = events.Type(eventType)
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetByRound returns the persisted events of one round, in sequence order.
func (r *SQLiteEventRepository) GetByRound(ctx context.Context, round int) ([]events.Event, error) {
	query := `SELECT seq, round, event_type, actor_id, target_id, amount, reason FROM economy_events WHERE game_id = ? AND round = ? ORDER BY seq ASC`
	return r.getMany(ctx, query, r.gameID, round)
}

// GetByActor returns all persisted events performed by a participant.
func (r *SQLiteEventRepository) GetByActor(ctx context.Context, actorID string) ([]events.Event, error) {
	query := `SELECT seq, round, event_type, actor_id, target_id, amount, reason FROM economy_events WHERE game_id = ? AND actor_id = ? ORDER BY seq ASC`
	return r.getMany(ctx, query, r.gameID, actorID)
}

// ---------------------------------------------------------
// SQLiteStandingsRepository
// ---------------------------------------------------------

type SQLiteStandingsRepository struct {
	db *sql.DB
}

func NewSQLiteStandingsRepository(db *sql.DB) *SQLiteStandingsRepository {
	return &SQLiteStandingsRepository{db: db}
}

// Save stores the final rankings of a completed season.
func (r *SQLiteStandingsRepository) Save(ctx context.Context, gameID string, standings []engine.Standing) error {
	query := `
		INSERT INTO standings (game_id, rank, participant_id, survived, elimination_round, level, token_bank, reputation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, participant_id) DO UPDATE SET
			rank=excluded.rank,
			survived=excluded.survived,
			elimination_round=excluded.elimination_round,
			level=excluded.level,
			token_bank=excluded.token_bank,
			reputation=excluded.reputation
	`
	for _, s := range standings {
		_, err := r.db.ExecContext(ctx, query,
			gameID, s.Rank, s.ID, s.Survived, s.EliminationRound, s.Level, s.TokenBank, s.Reputation,
		)
		if err != nil {
			return fmt.Errorf("failed to save standing for %s: %w", s.ID, err)
		}
	}
	return nil
}

// GetByGameID returns the stored rankings, best first.
func (r *SQLiteStandingsRepository) GetByGameID(ctx context.Context, gameID string) ([]engine.Standing, error) {
	query := `SELECT rank, participant_id, survived, elimination_round, level, token_bank, reputation FROM standings WHERE game_id = ? ORDER BY rank ASC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []engine.Standing
	for rows.Next() {
		var s engine.Standing
		if err := rows.Scan(&s.Rank, &s.ID, &s.Survived, &s.EliminationRound, &s.Level, &s.TokenBank, &s.Reputation); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
