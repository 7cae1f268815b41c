package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/krishanu7/battleship-engine/db"
)

const WinnerPlayer = "PLAYER"

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type LeaderboardEntry struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	BestShots *int   `json:"best_shots,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// RecordResult stores a finished match and, for signed-in players, folds it
// into their stats.
func (s *Service) RecordResult(ctx context.Context, r db.Result) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (id, match_id, player_id, difficulty, winner, player_shots, ai_shots, client_ip, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.MatchID, r.PlayerID, r.Difficulty, r.Winner, r.PlayerShots, r.AiShots, r.ClientIP, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	if r.PlayerID.Valid {
		won := r.Winner == WinnerPlayer
		wins, losses := 0, 1
		var best sql.NullInt64
		if won {
			wins, losses = 1, 0
			best = sql.NullInt64{Int64: int64(r.PlayerShots), Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO stats (player_id, wins, losses, best_shots, updated_at) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (player_id) DO UPDATE SET
				wins = stats.wins + EXCLUDED.wins,
				losses = stats.losses + EXCLUDED.losses,
				best_shots = LEAST(COALESCE(stats.best_shots, EXCLUDED.best_shots), EXCLUDED.best_shots),
				updated_at = EXCLUDED.updated_at`,
			r.PlayerID.UUID, wins, losses, best, r.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	log.Printf("Recorded result for match %s: winner=%s, player shots=%d, ai shots=%d", r.MatchID, r.Winner, r.PlayerShots, r.AiShots)
	return nil
}

func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.player_id, u.username, s.wins, s.losses, s.best_shots, s.updated_at
		FROM stats s
		JOIN users u ON s.player_id = u.id
		ORDER BY s.wins DESC, s.best_shots ASC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	leaderboard := make([]LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry LeaderboardEntry
		var best sql.NullInt64
		var updated time.Time
		if err := rows.Scan(&entry.PlayerID, &entry.Username, &entry.Wins, &entry.Losses, &best, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		if best.Valid {
			b := int(best.Int64)
			entry.BestShots = &b
		}
		entry.UpdatedAt = updated.Format(time.RFC3339)
		leaderboard = append(leaderboard, entry)
	}
	return leaderboard, rows.Err()
}
