package genai

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/claude/repsmith/internal/models"
)

// maxCandidates bounds the catalog slice handed to the prompt compiler.
const maxCandidates = 20

// historyWindow is how many recent workouts feed the frequency digest.
const historyWindow = 30

// ExerciseFrequency is one entry of the recent-history digest.
type ExerciseFrequency struct {
	Name  string
	Count int
}

// GenerationContext is the immutable, fully resolved view consumed by the
// prompt compiler and the fallback synthesizer. Built once per request.
type GenerationContext struct {
	UserID          int
	Goal            models.Goal
	Level           models.FitnessLevel
	Experience      models.FitnessLevel
	DurationMinutes int
	Equipment       []string
	MuscleGroups    []string
	Candidates      []models.Exercise
	RecentDigest    []ExerciseFrequency
}

// ContextBuilder assembles a GenerationContext from the request plus
// collaborator lookups. Lookup failures are soft: the build proceeds with
// documented defaults and logs a warning.
type ContextBuilder struct {
	catalog  CatalogStore
	profiles ProfileStore
	history  HistoryStore
	log      *slog.Logger
}

// NewContextBuilder wires a context builder.
func NewContextBuilder(catalog CatalogStore, profiles ProfileStore, history HistoryStore, log *slog.Logger) *ContextBuilder {
	return &ContextBuilder{catalog: catalog, profiles: profiles, history: history, log: log}
}

// Build resolves the request into a GenerationContext.
func (b *ContextBuilder) Build(ctx context.Context, req models.PlanRequest) *GenerationContext {
	gc := &GenerationContext{
		UserID:          req.UserID,
		Goal:            models.ParseGoal(req.Goal),
		Level:           models.ParseFitnessLevel(req.FitnessLevel),
		DurationMinutes: resolveDuration(req.DurationMinutes),
		Equipment:       normalizeTags(req.Equipment),
		MuscleGroups:    normalizeTags(req.MuscleGroups),
	}

	var workoutCount int
	var accountAge time.Duration

	if b.profiles != nil {
		profile, err := b.profiles.GetProfile(ctx, req.UserID)
		switch {
		case err != nil:
			b.log.Warn("profile lookup failed, using defaults", "user_id", req.UserID, "error", err)
		case profile != nil:
			if req.FitnessLevel == "" {
				gc.Level = profile.FitnessLevel
			}
			accountAge = time.Since(profile.CreatedAt)
		}
	}

	if b.history != nil {
		workouts, err := b.history.GetRecentWorkouts(ctx, req.UserID, historyWindow)
		if err != nil {
			b.log.Warn("history lookup failed, digest empty", "user_id", req.UserID, "error", err)
		} else {
			workoutCount = len(workouts)
			gc.RecentDigest = buildDigest(workouts)
		}
	}

	gc.Experience = classifyExperience(accountAge, workoutCount, gc.Level)

	if b.catalog != nil {
		candidates, err := b.catalog.FindExercises(ctx, models.ExerciseFilter{
			Equipment:    gc.Equipment,
			MuscleGroups: gc.MuscleGroups,
			ExcludeIDs:   req.ExcludeIDs,
			Limit:        maxCandidates,
		})
		if err != nil {
			b.log.Warn("catalog lookup failed, no candidates", "user_id", req.UserID, "error", err)
		} else {
			if len(candidates) > maxCandidates {
				candidates = candidates[:maxCandidates]
			}
			gc.Candidates = candidates
		}
	}

	return gc
}

// classifyExperience derives an experience class from account age and
// workout count. The declared level can lower the classification but never
// raise it: an account with two workouts is a beginner no matter what it
// claims.
func classifyExperience(age time.Duration, workouts int, declared models.FitnessLevel) models.FitnessLevel {
	const month = 30 * 24 * time.Hour

	computed := models.LevelBeginner
	switch {
	case age >= 18*month && workouts >= 150:
		computed = models.LevelAdvanced
	case age >= 6*month && workouts >= 30:
		computed = models.LevelIntermediate
	}

	if levelRank(declared) < levelRank(computed) {
		return declared
	}
	return computed
}

func levelRank(l models.FitnessLevel) int {
	switch l {
	case models.LevelAdvanced:
		return 2
	case models.LevelIntermediate:
		return 1
	}
	return 0
}

// resolveDuration clamps the requested duration into the valid range. A
// zero (unset) duration gets the 45-minute default.
func resolveDuration(minutes int) int {
	if minutes == 0 {
		return 45
	}
	if minutes < models.MinPlanDuration {
		return models.MinPlanDuration
	}
	if minutes > models.MaxPlanDuration {
		return models.MaxPlanDuration
	}
	return minutes
}

// normalizeTags lowercases, trims, dedupes, and sorts tag lists so the
// cache fingerprint is order-independent.
func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// buildDigest counts exercise name frequency across recent workouts and
// returns the top entries, most frequent first. Ties break by name so the
// digest is deterministic for a given history.
func buildDigest(workouts []models.WorkoutRow) []ExerciseFrequency {
	const digestSize = 8

	counts := map[string]int{}
	for _, w := range workouts {
		for _, name := range w.ExerciseNames {
			name = strings.TrimSpace(name)
			if name != "" {
				counts[name]++
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	digest := make([]ExerciseFrequency, 0, len(counts))
	for name, n := range counts {
		digest = append(digest, ExerciseFrequency{Name: name, Count: n})
	}
	sort.Slice(digest, func(i, j int) bool {
		if digest[i].Count != digest[j].Count {
			return digest[i].Count > digest[j].Count
		}
		return digest[i].Name < digest[j].Name
	})

	if len(digest) > digestSize {
		digest = digest[:digestSize]
	}
	return digest
}
