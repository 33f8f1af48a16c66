package genai

import (
	"fmt"
	"strings"

	"github.com/claude/repsmith/internal/models"
)

// CompilePrompt renders a GenerationContext into the instruction payload
// for the remote endpoint. Pure function: the same context always yields
// the same text, which keeps cache keys and tests stable.
//
// The embedded schema description steers the model toward parseable
// output. It is a mitigation only; the parser never trusts it.
func CompilePrompt(gc *GenerationContext) string {
	var b strings.Builder

	b.WriteString("You are a certified strength and conditioning coach. ")
	b.WriteString("Create a single workout plan for the following athlete.\n\n")

	fmt.Fprintf(&b, "Goal: %s\n", gc.Goal)
	fmt.Fprintf(&b, "Declared level: %s\n", gc.Level)
	fmt.Fprintf(&b, "Observed experience: %s\n", gc.Experience)
	fmt.Fprintf(&b, "Session duration: %d minutes\n", gc.DurationMinutes)

	if len(gc.Equipment) > 0 {
		fmt.Fprintf(&b, "Available equipment: %s\n", strings.Join(gc.Equipment, ", "))
	} else {
		b.WriteString("Available equipment: bodyweight only\n")
	}
	if len(gc.MuscleGroups) > 0 {
		fmt.Fprintf(&b, "Target muscle groups: %s\n", strings.Join(gc.MuscleGroups, ", "))
	}

	if len(gc.Candidates) > 0 {
		b.WriteString("\nChoose exercises only from this list:\n")
		for _, ex := range gc.Candidates {
			fmt.Fprintf(&b, "- %s (muscles: %s; equipment: %s; difficulty: %s)\n",
				ex.Name,
				strings.Join(ex.PrimaryMuscles, "/"),
				strings.Join(ex.Equipment, "/"),
				ex.Difficulty)
		}
	}

	if len(gc.RecentDigest) > 0 {
		b.WriteString("\nRecently performed exercises (most frequent first):\n")
		for _, f := range gc.RecentDigest {
			fmt.Fprintf(&b, "- %s (%d sessions)\n", f.Name, f.Count)
		}
	}

	b.WriteString("\nRespond with a single JSON object and nothing else. Schema:\n")
	b.WriteString(outputSchema)

	return b.String()
}

// outputSchema documents the exact response shape, including the numeric
// bounds the validator will enforce.
var outputSchema = fmt.Sprintf(`{
  "name": "string, required",
  "description": "string",
  "duration_minutes": "integer, %d-%d",
  "difficulty": "beginner|intermediate|advanced",
  "exercises": [
    {
      "name": "string, required",
      "sets": "integer, %d-%d",
      "reps": "integer, %d-%d",
      "rest_seconds": "integer, %d-%d",
      "note": "string, one coaching cue",
      "intensity": "light|moderate|hard"
    }
  ],
  "warmup": "string",
  "cooldown": "string"
}
`,
	models.MinPlanDuration, models.MaxPlanDuration,
	models.MinSets, models.MaxSets,
	models.MinReps, models.MaxReps,
	models.MinRestSeconds, models.MaxRestSeconds,
)

// CompileRankingPrompt renders the alternative-ranking instruction for a
// base exercise and its candidate substitutes. Deterministic, like
// CompilePrompt.
func CompileRankingPrompt(base *models.Exercise, candidates []models.Exercise) string {
	var b strings.Builder

	b.WriteString("You are a strength coach choosing substitute exercises.\n")
	fmt.Fprintf(&b, "Original exercise: %s (muscles: %s; equipment: %s; difficulty: %s)\n\n",
		base.Name,
		strings.Join(base.PrimaryMuscles, "/"),
		strings.Join(base.Equipment, "/"),
		base.Difficulty)

	b.WriteString("Candidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id=%s name=%s muscles=%s equipment=%s difficulty=%s\n",
			c.ID, c.Name,
			strings.Join(c.PrimaryMuscles, "/"),
			strings.Join(c.Equipment, "/"),
			c.Difficulty)
	}

	b.WriteString("\nScore each candidate 0-100 on how well it substitutes for the original.\n")
	b.WriteString("Respond with a single JSON array and nothing else. Schema:\n")
	b.WriteString(`[{"id": "candidate id", "score": "number 0-100", "reason": "short string"}]` + "\n")

	return b.String()
}
