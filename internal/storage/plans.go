package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/repsmith/internal/models"
	"github.com/google/uuid"
)

// InsertPlan persists an accepted generated plan. The full document is
// stored as JSON next to the queryable columns.
func (db *DB) InsertPlan(ctx context.Context, plan *models.WorkoutPlan, goal models.Goal) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO generated_plans (id, user_id, name, goal, source, quality, generated_at, plan_json)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT DO NOTHING`,
		plan.ID, plan.UserID, plan.Name, string(goal), string(plan.Metadata.Source),
		plan.Metadata.Quality, plan.Metadata.GeneratedAt, doc)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a persisted plan document by ID.
func (db *DB) GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*models.WorkoutPlan, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT plan_json FROM generated_plans WHERE id = $1 AND user_id = $2`,
		planID, userID).Scan(&doc)
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	var plan models.WorkoutPlan
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &plan, nil
}

// QueryPlans lists a user's persisted plans, newest first.
func (db *DB) QueryPlans(ctx context.Context, userID, limit int) ([]models.PlanRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, goal, source, quality, generated_at
		 FROM generated_plans
		 WHERE user_id = $1
		 ORDER BY generated_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var result []models.PlanRow
	for rows.Next() {
		var p models.PlanRow
		var source string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Goal, &source, &p.Quality, &p.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		p.Source = models.PlanSource(source)
		result = append(result, p)
	}
	return result, rows.Err()
}
