package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a completed workout ready for the workouts table.
type WorkoutRow struct {
	ID            uuid.UUID `json:"id"`
	UserID        int       `json:"user_id"`
	Name          string    `json:"name"`
	PerformedAt   time.Time `json:"performed_at"`
	DurationSec   float64   `json:"duration_sec"`
	ExerciseNames []string  `json:"exercise_names"`
	Notes         string    `json:"notes,omitempty"`
}

// PlanRow is a persisted generated plan. The full plan document is stored
// as JSON alongside the queryable columns.
type PlanRow struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int        `json:"user_id"`
	Name        string     `json:"name"`
	Goal        string     `json:"goal"`
	Source      PlanSource `json:"source"`
	Quality     int        `json:"quality"`
	GeneratedAt time.Time  `json:"generated_at"`
	PlanJSON    []byte     `json:"-"`
}
