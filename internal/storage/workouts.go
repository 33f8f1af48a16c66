package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repsmith/internal/models"
)

// InsertWorkout inserts a completed workout. Returns true if inserted,
// false if duplicate.
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, performed_at, duration_sec, exercise_names, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.UserID, row.Name, row.PerformedAt, row.DurationSec, row.ExerciseNames, row.Notes)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetRecentWorkouts retrieves the most recent workouts for a user, newest
// first.
func (db *DB) GetRecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, performed_at, duration_sec, exercise_names, notes
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY performed_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.PerformedAt, &w.DurationSec, &w.ExerciseNames, &w.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// QueryWorkouts retrieves workouts in a time range.
func (db *DB) QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, performed_at, duration_sec, exercise_names, notes
		 FROM workouts
		 WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3
		 ORDER BY performed_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.PerformedAt, &w.DurationSec, &w.ExerciseNames, &w.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
