package genai

import (
	"strings"
	"testing"

	"github.com/claude/repsmith/internal/models"
)

func promptContext() *GenerationContext {
	return &GenerationContext{
		UserID:          1,
		Goal:            models.GoalStrength,
		Level:           models.LevelIntermediate,
		Experience:      models.LevelIntermediate,
		DurationMinutes: 45,
		Equipment:       []string{"barbell", "rack"},
		MuscleGroups:    []string{"back", "legs"},
		Candidates: []models.Exercise{
			{ID: "sq", Name: "Back Squat", PrimaryMuscles: []string{"quads"}, Equipment: []string{"barbell"}, Difficulty: "intermediate"},
			{ID: "dl", Name: "Deadlift", PrimaryMuscles: []string{"back"}, Equipment: []string{"barbell"}, Difficulty: "intermediate"},
		},
		RecentDigest: []ExerciseFrequency{{Name: "Back Squat", Count: 5}},
	}
}

// Same context, same prompt: cache keys and tests depend on this.
func TestCompilePromptDeterministic(t *testing.T) {
	gc := promptContext()
	if CompilePrompt(gc) != CompilePrompt(gc) {
		t.Error("CompilePrompt is not deterministic for an identical context")
	}
}

func TestCompilePromptContent(t *testing.T) {
	text := CompilePrompt(promptContext())

	for _, want := range []string{
		"Goal: strength",
		"Session duration: 45 minutes",
		"barbell, rack",
		"Back Squat",
		"Deadlift",
		"rest_seconds",
		"1-10",  // sets bounds from the schema
		"15-300", // rest bounds from the schema
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestCompilePromptBodyweightDefault(t *testing.T) {
	gc := promptContext()
	gc.Equipment = nil
	text := CompilePrompt(gc)
	if !strings.Contains(text, "bodyweight only") {
		t.Error("prompt missing bodyweight default for empty equipment")
	}
}

func TestCompileRankingPromptContent(t *testing.T) {
	base := &models.Exercise{ID: "bp", Name: "Bench Press", PrimaryMuscles: []string{"chest"}, Equipment: []string{"barbell"}, Difficulty: "intermediate"}
	candidates := []models.Exercise{
		{ID: "db", Name: "Dumbbell Press", PrimaryMuscles: []string{"chest"}, Equipment: []string{"dumbbell"}, Difficulty: "beginner"},
	}

	text := CompileRankingPrompt(base, candidates)
	if !strings.Contains(text, "Bench Press") || !strings.Contains(text, "id=db") {
		t.Errorf("ranking prompt missing base or candidate: %q", text)
	}
	if CompileRankingPrompt(base, candidates) != text {
		t.Error("CompileRankingPrompt is not deterministic")
	}
}
