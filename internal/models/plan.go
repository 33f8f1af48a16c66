package models

import (
	"time"

	"github.com/google/uuid"
)

// Goal is a training goal. Unknown values resolve to GoalGeneralFitness
// rather than failing the request.
type Goal string

const (
	GoalStrength       Goal = "strength"
	GoalHypertrophy    Goal = "hypertrophy"
	GoalEndurance      Goal = "endurance"
	GoalWeightLoss     Goal = "weight_loss"
	GoalGeneralFitness Goal = "general_fitness"
)

// ParseGoal resolves a goal string to a known value, defaulting to
// general_fitness for unknown or empty input.
func ParseGoal(s string) Goal {
	switch Goal(s) {
	case GoalStrength, GoalHypertrophy, GoalEndurance, GoalWeightLoss, GoalGeneralFitness:
		return Goal(s)
	}
	return GoalGeneralFitness
}

// FitnessLevel is a self-declared training level. Unknown values resolve
// to LevelBeginner.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

// ParseFitnessLevel resolves a fitness level string, defaulting to beginner.
func ParseFitnessLevel(s string) FitnessLevel {
	switch FitnessLevel(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return FitnessLevel(s)
	}
	return LevelBeginner
}

// Duration bounds for a generated plan, in minutes.
const (
	MinPlanDuration = 10
	MaxPlanDuration = 180
)

// PlanRequest is the caller-supplied preference bag for plan generation.
type PlanRequest struct {
	UserID          int      `json:"user_id"`
	Goal            string   `json:"goal"`
	DurationMinutes int      `json:"duration_minutes"`
	FitnessLevel    string   `json:"fitness_level"`
	Equipment       []string `json:"equipment,omitempty"`
	MuscleGroups    []string `json:"muscle_groups,omitempty"`
	ExcludeIDs      []string `json:"exclude_exercise_ids,omitempty"`
}

// PlanSource identifies which path produced a plan.
type PlanSource string

const (
	SourceRemote   PlanSource = "remote"
	SourceCache    PlanSource = "cache"
	SourceFallback PlanSource = "fallback"
)

// Field bounds for PlanExercise. Out-of-range remote output is clamped to
// these before a plan leaves the engine.
const (
	MinSets        = 1
	MaxSets        = 10
	MinReps        = 1
	MaxReps        = 50
	MinRestSeconds = 15
	MaxRestSeconds = 300
)

// PlanExercise is one prescribed exercise in a generated plan.
type PlanExercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	RestSeconds int    `json:"rest_seconds"`
	Note        string `json:"note,omitempty"`
	Intensity   string `json:"intensity,omitempty"`
}

// PlanMetadata describes how a plan was produced.
type PlanMetadata struct {
	Source      PlanSource    `json:"source"`
	Model       string        `json:"model"`
	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"elapsed_ms"`
	Quality     int           `json:"quality"`
}

// WorkoutPlan is the output contract of the generation engine.
type WorkoutPlan struct {
	ID              uuid.UUID      `json:"id"`
	UserID          int            `json:"user_id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	DurationMinutes int            `json:"duration_minutes"`
	Difficulty      string         `json:"difficulty"`
	Exercises       []PlanExercise `json:"exercises"`
	Warmup          string         `json:"warmup,omitempty"`
	Cooldown        string         `json:"cooldown,omitempty"`
	Metadata        PlanMetadata   `json:"metadata"`
}

// AlternativeCriteria filters candidate exercises for alternative ranking.
type AlternativeCriteria struct {
	Equipment  []string `json:"equipment,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// Alternative is one ranked substitute exercise.
type Alternative struct {
	Exercise Exercise `json:"exercise"`
	Score    float64  `json:"score"`
	Reason   string   `json:"reason,omitempty"`
}
