package genai

import (
	"context"
	"time"

	"github.com/claude/repsmith/internal/models"
)

// CatalogStore provides exercise catalog lookups.
type CatalogStore interface {
	FindExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id string) (*models.Exercise, error)
}

// ProfileStore provides user account data. A missing profile is not an
// error for generation; the engine falls back to defaults.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int) (*models.UserProfile, error)
}

// HistoryStore provides recent workout history.
type HistoryStore interface {
	GetRecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error)
}

// GenerationParams tune a single remote completion call.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64
}

// RemoteClient is the untrusted, latency-variable text-generation
// dependency. Implementations must honor ctx cancellation so an expired
// attempt actually abandons the underlying call.
type RemoteClient interface {
	Complete(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Options configure the engine. Zero values are filled by Defaults.
type Options struct {
	Enabled         bool
	Model           string
	MaxRetries      int
	AttemptTimeout  time.Duration
	BaseDelay       time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// Defaults returns the standard engine options: 3 attempts, 20s per
// attempt, 500ms base backoff, 1h cache TTL, 256 cache entries.
func Defaults() Options {
	return Options{
		Model:           "claude-sonnet-4-5",
		MaxRetries:      3,
		AttemptTimeout:  20 * time.Second,
		BaseDelay:       500 * time.Millisecond,
		CacheTTL:        time.Hour,
		CacheMaxEntries: 256,
	}
}

func (o Options) withDefaults() Options {
	d := Defaults()
	if o.Model == "" {
		o.Model = d.Model
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = d.AttemptTimeout
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = d.BaseDelay
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = d.CacheTTL
	}
	if o.CacheMaxEntries <= 0 {
		o.CacheMaxEntries = d.CacheMaxEntries
	}
	return o
}
