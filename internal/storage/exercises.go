package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repsmith/internal/models"
)

// FindExercises searches the exercise catalog. Filters are conjunctive:
// equipment matches when the exercise needs nothing outside the given
// list, muscle groups match on any overlap. Empty filters match all.
func (db *DB) FindExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error) {
	var conds []string
	var args []any

	if len(f.Equipment) > 0 {
		args = append(args, f.Equipment)
		conds = append(conds, fmt.Sprintf("equipment <@ $%d", len(args)))
	}
	if len(f.MuscleGroups) > 0 {
		args = append(args, f.MuscleGroups)
		conds = append(conds, fmt.Sprintf("primary_muscles && $%d", len(args)))
	}
	if len(f.ExcludeIDs) > 0 {
		args = append(args, f.ExcludeIDs)
		conds = append(conds, fmt.Sprintf("id != ALL($%d)", len(args)))
	}

	query := `SELECT id, name, primary_muscles, equipment, difficulty, category FROM exercises`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name ASC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.PrimaryMuscles, &ex.Equipment, &ex.Difficulty, &ex.Category); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

// GetExercise retrieves a single catalog entry by ID.
func (db *DB) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	var ex models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, primary_muscles, equipment, difficulty, category
		 FROM exercises WHERE id = $1`, id).
		Scan(&ex.ID, &ex.Name, &ex.PrimaryMuscles, &ex.Equipment, &ex.Difficulty, &ex.Category)
	if err != nil {
		return nil, fmt.Errorf("querying exercise %s: %w", id, err)
	}
	return &ex, nil
}
