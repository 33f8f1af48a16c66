package genai

import (
	"reflect"
	"strings"
	"testing"

	"github.com/claude/repsmith/internal/models"
)

func TestSynthesizeDeterministic(t *testing.T) {
	gc := &GenerationContext{
		UserID:          3,
		Goal:            models.GoalHypertrophy,
		Experience:      models.LevelIntermediate,
		DurationMinutes: 60,
		RecentDigest: []ExerciseFrequency{
			{Name: "Incline Bench Press", Count: 9},
			{Name: "Pull-Up", Count: 7},
		},
	}

	a := Synthesize(gc)
	b := Synthesize(gc)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Synthesize not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestSynthesizeUnknownGoalUsesGeneralTemplate(t *testing.T) {
	gc := &GenerationContext{
		UserID:          1,
		Goal:            models.Goal("crossfit"),
		Experience:      models.LevelBeginner,
		DurationMinutes: 30,
	}
	plan := Synthesize(gc)

	general := fallbackTemplates[models.GoalGeneralFitness]
	if plan.Name != general.Name {
		t.Errorf("name = %q, want general template %q", plan.Name, general.Name)
	}
}

// TestSynthesizeBlendsHistory verifies the blend step: the first template
// slots take the caller's most-frequent exercise names while keeping the
// template's set/rep/rest structure.
func TestSynthesizeBlendsHistory(t *testing.T) {
	gc := &GenerationContext{
		UserID:          3,
		Goal:            models.GoalStrength,
		Experience:      models.LevelAdvanced,
		DurationMinutes: 60,
		RecentDigest: []ExerciseFrequency{
			{Name: "Front Squat", Count: 12},
			{Name: "Incline Press", Count: 10},
			{Name: "Pendlay Row", Count: 8},
			{Name: "Face Pull", Count: 6},
		},
	}
	plan := Synthesize(gc)
	tmpl := fallbackTemplates[models.GoalStrength]

	for i := 0; i < blendSlots; i++ {
		if plan.Exercises[i].Name != gc.RecentDigest[i].Name {
			t.Errorf("slot %d name = %q, want %q", i, plan.Exercises[i].Name, gc.RecentDigest[i].Name)
		}
		if plan.Exercises[i].Sets != tmpl.Exercises[i].Sets ||
			plan.Exercises[i].Reps != tmpl.Exercises[i].Reps ||
			plan.Exercises[i].RestSeconds != tmpl.Exercises[i].RestSeconds {
			t.Errorf("slot %d structure changed: %+v, want template %+v", i, plan.Exercises[i], tmpl.Exercises[i])
		}
	}
	// Slots past the blend window keep the template names.
	if plan.Exercises[blendSlots].Name != tmpl.Exercises[blendSlots].Name {
		t.Errorf("slot %d = %q, want template name %q",
			blendSlots, plan.Exercises[blendSlots].Name, tmpl.Exercises[blendSlots].Name)
	}
}

func TestSynthesizeNoHistoryKeepsTemplate(t *testing.T) {
	gc := &GenerationContext{
		UserID:          2,
		Goal:            models.GoalEndurance,
		Experience:      models.LevelBeginner,
		DurationMinutes: 40,
	}
	plan := Synthesize(gc)
	tmpl := fallbackTemplates[models.GoalEndurance]

	for i, ex := range plan.Exercises {
		if ex.Name != tmpl.Exercises[i].Name {
			t.Errorf("slot %d = %q, want %q", i, ex.Name, tmpl.Exercises[i].Name)
		}
	}
}

// TestSynthesizeTemplatesWithinBounds checks every template against the
// plan field ranges, since templates bypass the parser's clamping.
func TestSynthesizeTemplatesWithinBounds(t *testing.T) {
	for goal, tmpl := range fallbackTemplates {
		if len(tmpl.Exercises) < 4 || len(tmpl.Exercises) > 7 {
			t.Errorf("%s: %d exercises, want 4-7", goal, len(tmpl.Exercises))
		}
		for _, ex := range tmpl.Exercises {
			if ex.Sets < models.MinSets || ex.Sets > models.MaxSets {
				t.Errorf("%s/%s: sets = %d out of range", goal, ex.Name, ex.Sets)
			}
			if ex.Reps < models.MinReps || ex.Reps > models.MaxReps {
				t.Errorf("%s/%s: reps = %d out of range", goal, ex.Name, ex.Reps)
			}
			if ex.RestSeconds < models.MinRestSeconds || ex.RestSeconds > models.MaxRestSeconds {
				t.Errorf("%s/%s: rest = %d out of range", goal, ex.Name, ex.RestSeconds)
			}
			if ex.Note == "" {
				t.Errorf("%s/%s: missing coaching note", goal, ex.Name)
			}
		}
	}
}

func TestStrengthTemplateNaming(t *testing.T) {
	plan := Synthesize(&GenerationContext{
		Goal:            models.GoalStrength,
		DurationMinutes: 45,
	})
	if !strings.Contains(plan.Name, "Strength") {
		t.Errorf("name = %q, want it to contain %q", plan.Name, "Strength")
	}
	if plan.DurationMinutes != 45 {
		t.Errorf("duration = %d, want 45", plan.DurationMinutes)
	}
}
