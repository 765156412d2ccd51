package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no record exists for the requested key.
var ErrNotFound = errors.New("store: not found")

// PlayerStats holds the counters the achievement rules evaluate.
type PlayerStats struct {
	CorrectAnswers     int      `json:"correct_answers"`
	WrongAnswers       int      `json:"wrong_answers"`
	FastCorrectAnswers int      `json:"fast_correct_answers"`
	HintsUsed          int      `json:"hints_used"`
	CategoriesPlayed   []string `json:"categories_played"`
}

// AchievementUnlock records when a player unlocked an achievement.
type AchievementUnlock struct {
	ID         string
	UnlockedAt time.Time
}

// PlayerRecord is the persisted form of a player's progress. It is the
// checkpoint unit: the game saves one after every answered question.
type PlayerRecord struct {
	Username     string
	Score        int
	Level        int
	Streak       int
	Stats        PlayerStats
	Difficulty   map[string]int // per-category difficulty level
	Achievements []AchievementUnlock
	UpdatedAt    time.Time
}

// PlayerRepo persists player progress.
type PlayerRepo interface {
	// Save upserts the record and its achievement unlocks.
	Save(ctx context.Context, rec *PlayerRecord) error

	// Load returns the record for username, or ErrNotFound.
	Load(ctx context.Context, username string) (*PlayerRecord, error)

	// Delete removes the player and their achievements.
	Delete(ctx context.Context, username string) error
}

type playerRepo struct {
	db *sql.DB
}

func (r *playerRepo) Save(ctx context.Context, rec *PlayerRecord) error {
	stats, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	diff, err := json.Marshal(rec.Difficulty)
	if err != nil {
		return fmt.Errorf("marshal difficulty: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (username, score, level, streak, stats, difficulty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			score = excluded.score,
			level = excluded.level,
			streak = excluded.streak,
			stats = excluded.stats,
			difficulty = excluded.difficulty,
			updated_at = excluded.updated_at`,
		rec.Username, rec.Score, rec.Level, rec.Streak,
		string(stats), string(diff), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}

	for _, a := range rec.Achievements {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO player_achievements (username, achievement_id, unlocked_at)
			VALUES (?, ?, ?)`,
			rec.Username, a.ID, a.UnlockedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert achievement %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (r *playerRepo) Load(ctx context.Context, username string) (*PlayerRecord, error) {
	rec := &PlayerRecord{Username: username}

	var stats, diff, updatedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT score, level, streak, stats, difficulty, updated_at
		FROM players WHERE username = ?`, username,
	).Scan(&rec.Score, &rec.Level, &rec.Streak, &stats, &diff, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}

	if err := json.Unmarshal([]byte(stats), &rec.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	if err := json.Unmarshal([]byte(diff), &rec.Difficulty); err != nil {
		return nil, fmt.Errorf("unmarshal difficulty: %w", err)
	}
	if t, terr := time.Parse(time.RFC3339, updatedAt); terr == nil {
		rec.UpdatedAt = t
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT achievement_id, unlocked_at
		FROM player_achievements WHERE username = ?
		ORDER BY unlocked_at`, username)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a AchievementUnlock
		var at string
		if err := rows.Scan(&a.ID, &at); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		if t, terr := time.Parse(time.RFC3339, at); terr == nil {
			a.UnlockedAt = t
		}
		rec.Achievements = append(rec.Achievements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate achievements: %w", err)
	}

	return rec, nil
}

func (r *playerRepo) Delete(ctx context.Context, username string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_achievements WHERE username = ?`, username); err != nil {
		return fmt.Errorf("delete achievements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE username = ?`, username); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	return tx.Commit()
}
