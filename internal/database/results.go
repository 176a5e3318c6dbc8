// internal/database/results.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nyonnyola/nyonnyola/internal/models"
)

// RecordSessionResult persists the final outcome of a session: the completed
// session row, each player's final score, and the per-round delta table for
// the scoreboard. It is a no-op when persistence is disabled.
func RecordSessionResult(ctx context.Context, sessionID uuid.UUID, res models.SessionResult) error {
	if DB == nil {
		return nil
	}

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertSession := `
			INSERT INTO sessions (id, status)
			VALUES ($1, 'completed')
			ON CONFLICT (id) DO UPDATE SET status = 'completed'
		`
		if _, e := tx.Exec(ctx, upsertSession, sessionID); e != nil {
			return e
		}

		for _, p := range res.Players {
			q := `
				INSERT INTO session_results (session_id, player_id, player_name, score)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (session_id, player_id)
				DO UPDATE SET player_name=$3, score=$4
			`
			if _, e := tx.Exec(ctx, q, sessionID, p.ID, p.Name, p.Score); e != nil {
				return e
			}
		}

		for _, r := range res.Rounds {
			deltas, e := json.Marshal(r.Deltas)
			if e != nil {
				return e
			}
			q := `
				INSERT INTO session_rounds (session_id, round, explainer_id, deltas)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (session_id, round)
				DO UPDATE SET explainer_id=$3, deltas=$4
			`
			if _, e := tx.Exec(ctx, q, sessionID, r.Round, r.ExplainerID, deltas); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert session result: %w", err)
	}
	return nil
}
