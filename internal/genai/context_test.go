package genai

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/claude/repsmith/internal/models"
)

// mockCatalog, mockProfiles, and mockHistory are shared by the context,
// engine, and alternatives tests.
type mockCatalog struct {
	exercises []models.Exercise
	err       error
	calls     int
}

func (m *mockCatalog) FindExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	excluded := map[string]bool{}
	for _, id := range f.ExcludeIDs {
		excluded[id] = true
	}
	var out []models.Exercise
	for _, ex := range m.exercises {
		if !excluded[ex.ID] {
			out = append(out, ex)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *mockCatalog) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	for _, ex := range m.exercises {
		if ex.ID == id {
			return &ex, nil
		}
	}
	return nil, errors.New("not found")
}

type mockProfiles struct {
	profile *models.UserProfile
	err     error
}

func (m *mockProfiles) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	return m.profile, m.err
}

type mockHistory struct {
	workouts []models.WorkoutRow
	err      error
}

func (m *mockHistory) GetRecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error) {
	return m.workouts, m.err
}

func workoutsWith(names ...[]string) []models.WorkoutRow {
	out := make([]models.WorkoutRow, len(names))
	for i, n := range names {
		out[i] = models.WorkoutRow{UserID: 1, ExerciseNames: n}
	}
	return out
}

func newTestBuilder(catalog *mockCatalog, profiles *mockProfiles, history *mockHistory) *ContextBuilder {
	return NewContextBuilder(catalog, profiles, history, testLogger())
}

func TestBuildResolvesDefaults(t *testing.T) {
	b := newTestBuilder(&mockCatalog{}, &mockProfiles{}, &mockHistory{})

	gc := b.Build(context.Background(), models.PlanRequest{
		UserID:       1,
		Goal:         "become a superhero",
		FitnessLevel: "elite",
	})

	if gc.Goal != models.GoalGeneralFitness {
		t.Errorf("goal = %q, want general_fitness", gc.Goal)
	}
	if gc.Level != models.LevelBeginner {
		t.Errorf("level = %q, want beginner", gc.Level)
	}
	if gc.DurationMinutes != 45 {
		t.Errorf("duration = %d, want default 45", gc.DurationMinutes)
	}
}

func TestBuildClampsDuration(t *testing.T) {
	b := newTestBuilder(&mockCatalog{}, &mockProfiles{}, &mockHistory{})

	low := b.Build(context.Background(), models.PlanRequest{UserID: 1, DurationMinutes: 3})
	if low.DurationMinutes != models.MinPlanDuration {
		t.Errorf("low duration = %d, want %d", low.DurationMinutes, models.MinPlanDuration)
	}
	high := b.Build(context.Background(), models.PlanRequest{UserID: 1, DurationMinutes: 600})
	if high.DurationMinutes != models.MaxPlanDuration {
		t.Errorf("high duration = %d, want %d", high.DurationMinutes, models.MaxPlanDuration)
	}
}

// TestBuildSoftFailsOnLookupErrors verifies that collaborator failures
// produce defaults, never an error or panic.
func TestBuildSoftFailsOnLookupErrors(t *testing.T) {
	b := newTestBuilder(
		&mockCatalog{err: errors.New("catalog down")},
		&mockProfiles{err: errors.New("profiles down")},
		&mockHistory{err: errors.New("history down")},
	)

	gc := b.Build(context.Background(), models.PlanRequest{UserID: 1, Goal: "strength"})
	if gc.Goal != models.GoalStrength {
		t.Errorf("goal = %q, want strength", gc.Goal)
	}
	if len(gc.Candidates) != 0 || len(gc.RecentDigest) != 0 {
		t.Errorf("candidates/digest = %d/%d, want empty", len(gc.Candidates), len(gc.RecentDigest))
	}
	if gc.Experience != models.LevelBeginner {
		t.Errorf("experience = %q, want beginner", gc.Experience)
	}
}

func TestBuildUsesProfileLevelWhenUnspecified(t *testing.T) {
	profiles := &mockProfiles{profile: &models.UserProfile{
		UserID:       1,
		FitnessLevel: models.LevelAdvanced,
		CreatedAt:    time.Now().Add(-24 * 30 * 24 * time.Hour),
	}}
	b := newTestBuilder(&mockCatalog{}, profiles, &mockHistory{})

	gc := b.Build(context.Background(), models.PlanRequest{UserID: 1})
	if gc.Level != models.LevelAdvanced {
		t.Errorf("level = %q, want advanced from profile", gc.Level)
	}

	// An explicit request level wins over the profile.
	gc = b.Build(context.Background(), models.PlanRequest{UserID: 1, FitnessLevel: "beginner"})
	if gc.Level != models.LevelBeginner {
		t.Errorf("level = %q, want beginner from request", gc.Level)
	}
}

func TestClassifyExperience(t *testing.T) {
	month := 30 * 24 * time.Hour
	cases := []struct {
		desc     string
		age      time.Duration
		workouts int
		declared models.FitnessLevel
		want     models.FitnessLevel
	}{
		{"new account", 1 * month, 2, models.LevelAdvanced, models.LevelBeginner},
		{"six months thirty workouts", 6 * month, 30, models.LevelIntermediate, models.LevelIntermediate},
		{"veteran", 24 * month, 200, models.LevelAdvanced, models.LevelAdvanced},
		{"veteran declaring beginner", 24 * month, 200, models.LevelBeginner, models.LevelBeginner},
		{"old account few workouts", 24 * month, 5, models.LevelAdvanced, models.LevelBeginner},
	}
	for _, tc := range cases {
		if got := classifyExperience(tc.age, tc.workouts, tc.declared); got != tc.want {
			t.Errorf("%s: experience = %q, want %q", tc.desc, got, tc.want)
		}
	}
}

func TestBuildCandidatesBounded(t *testing.T) {
	many := make([]models.Exercise, 40)
	for i := range many {
		many[i] = models.Exercise{ID: string(rune('a' + i)), Name: "Exercise"}
	}
	b := newTestBuilder(&mockCatalog{exercises: many}, &mockProfiles{}, &mockHistory{})

	gc := b.Build(context.Background(), models.PlanRequest{UserID: 1})
	if len(gc.Candidates) > maxCandidates {
		t.Errorf("candidates = %d, want <= %d", len(gc.Candidates), maxCandidates)
	}
}

func TestBuildDigestOrdering(t *testing.T) {
	history := &mockHistory{workouts: workoutsWith(
		[]string{"Squat", "Bench Press"},
		[]string{"Squat", "Deadlift"},
		[]string{"Squat", "Bench Press"},
	)}
	b := newTestBuilder(&mockCatalog{}, &mockProfiles{}, history)

	gc := b.Build(context.Background(), models.PlanRequest{UserID: 1})
	want := []ExerciseFrequency{
		{Name: "Squat", Count: 3},
		{Name: "Bench Press", Count: 2},
		{Name: "Deadlift", Count: 1},
	}
	if !reflect.DeepEqual(gc.RecentDigest, want) {
		t.Errorf("digest = %+v, want %+v", gc.RecentDigest, want)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := normalizeTags([]string{" Dumbbell", "barbell", "BARBELL", "", "cable "})
	want := []string{"barbell", "cable", "dumbbell"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeTags = %v, want %v", got, want)
	}
}
