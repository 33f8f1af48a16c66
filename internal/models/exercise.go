package models

import "time"

// Exercise is a catalog entry.
type Exercise struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PrimaryMuscles []string `json:"primary_muscles"`
	Equipment      []string `json:"equipment"`
	Difficulty     string   `json:"difficulty"`
	Category       string   `json:"category"`
}

// ExerciseFilter narrows a catalog search. Empty fields match everything.
type ExerciseFilter struct {
	Equipment    []string
	MuscleGroups []string
	ExcludeIDs   []string
	Limit        int
}

// UserProfile is the subset of account data the generation engine needs.
type UserProfile struct {
	UserID       int          `json:"user_id"`
	FitnessLevel FitnessLevel `json:"fitness_level"`
	CreatedAt    time.Time    `json:"created_at"`
}
