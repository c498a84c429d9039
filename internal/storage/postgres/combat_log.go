package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tactics/internal/game/combat"
)

// ErrMatchLogNotFound is returned when no entries are archived for a match.
var ErrMatchLogNotFound = errors.New("match log not found")

// ArchivedEntry is one combat log entry as stored.
type ArchivedEntry struct {
	MatchID    string
	Entry      combat.LogEntry
	RecordedAt time.Time
}

// CombatLogRepository persists combat log entries. The table is append-only:
// rows are keyed by (match_id, round, sequence) and never updated.
type CombatLogRepository struct {
	db *pgxpool.Pool
}

// NewCombatLogRepository creates a CombatLogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCombatLogRepository(db *pgxpool.Pool) *CombatLogRepository {
	return &CombatLogRepository{db: db}
}

// Append stores entries for matchID in one transaction. Entries already
// archived under the same (round, sequence) are skipped, so re-delivery is harmless.
//
// Precondition: matchID must be non-empty.
// Postcondition: Returns the number of newly inserted rows, or an error with nothing stored.
func (r *CombatLogRepository) Append(ctx context.Context, matchID string, entries []combat.LogEntry) (int, error) {
	if matchID == "" {
		return 0, fmt.Errorf("appending combat log: match id must not be empty")
	}
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO combat_log
				(match_id, round, sequence, kind, message, actor_id, target_id, deltas, data)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (match_id, round, sequence) DO NOTHING`,
			matchID, e.Round, e.Sequence, string(e.Kind), e.Message,
			e.Payload.ActorID, e.Payload.TargetID, nonNilInts(e.Payload.Deltas), nonNilStrings(e.Payload.Data),
		)
	}
	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("inserting combat log entry: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("closing batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing combat log: %w", err)
	}
	return inserted, nil
}

// List returns every archived entry for matchID ordered by (round, sequence).
//
// Postcondition: Returns ErrMatchLogNotFound when nothing is archived for matchID.
func (r *CombatLogRepository) List(ctx context.Context, matchID string) ([]ArchivedEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT match_id, round, sequence, kind, message, actor_id, target_id, deltas, data, recorded_at
		FROM combat_log WHERE match_id = $1 ORDER BY round ASC, sequence ASC`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing combat log: %w", err)
	}
	defer rows.Close()

	var out []ArchivedEntry
	for rows.Next() {
		var a ArchivedEntry
		var kind string
		if err := rows.Scan(
			&a.MatchID, &a.Entry.Round, &a.Entry.Sequence, &kind, &a.Entry.Message,
			&a.Entry.Payload.ActorID, &a.Entry.Payload.TargetID,
			&a.Entry.Payload.Deltas, &a.Entry.Payload.Data, &a.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning combat log entry: %w", err)
		}
		a.Entry.Kind = combat.EntryKind(kind)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combat log: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrMatchLogNotFound
	}
	return out, nil
}

// Matches returns the IDs of every archived match, most recently recorded first.
func (r *CombatLogRepository) Matches(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT match_id FROM combat_log
		GROUP BY match_id ORDER BY MAX(recorded_at) DESC, match_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing archived matches: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting archived matches: %w", err)
	}
	return ids, nil
}

func nonNilInts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func nonNilStrings(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
