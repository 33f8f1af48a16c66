package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/repsmith/internal/models"
)

// ErrUnparseable marks remote output that yielded no usable plan: no
// structured block, a decode failure, or missing mandatory fields. The
// retry controller treats it as an attempt failure.
var ErrUnparseable = errors.New("unparseable generation output")

// wirePlan is the loosely typed shape decoded from remote output. Numeric
// fields use looseInt because the endpoint sometimes emits numbers as
// strings or floats.
type wirePlan struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	DurationMinutes looseInt       `json:"duration_minutes"`
	Difficulty      string         `json:"difficulty"`
	Exercises       []wireExercise `json:"exercises"`
	Warmup          string         `json:"warmup"`
	Cooldown        string         `json:"cooldown"`
}

type wireExercise struct {
	Name        string   `json:"name"`
	Sets        looseInt `json:"sets"`
	Reps        looseInt `json:"reps"`
	RestSeconds looseInt `json:"rest_seconds"`
	Note        string   `json:"note"`
	Intensity   string   `json:"intensity"`
}

// looseInt decodes a JSON number, numeric string, or null into an int.
type looseInt int

func (l *looseInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*l = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*l = 0
		return nil
	}
	*l = looseInt(f)
	return nil
}

// ParsePlan extracts and validates a workout plan from raw remote output.
// The endpoint routinely wraps its answer in prose or code fences, so the
// first plausible structured block is isolated before decoding. Numeric
// fields outside their declared range are repaired by clamping, not
// rejected; only a missing name or an empty exercise list is fatal.
func ParsePlan(raw string) (*models.WorkoutPlan, error) {
	block := extractBlock(raw)
	if block == "" {
		return nil, fmt.Errorf("%w: no structured block found", ErrUnparseable)
	}

	var wp wirePlan
	if err := json.Unmarshal([]byte(block), &wp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	if strings.TrimSpace(wp.Name) == "" {
		return nil, fmt.Errorf("%w: missing plan name", ErrUnparseable)
	}

	plan := &models.WorkoutPlan{
		Name:            strings.TrimSpace(wp.Name),
		Description:     strings.TrimSpace(wp.Description),
		DurationMinutes: clamp(int(wp.DurationMinutes), models.MinPlanDuration, models.MaxPlanDuration),
		Difficulty:      string(models.ParseFitnessLevel(wp.Difficulty)),
		Warmup:          strings.TrimSpace(wp.Warmup),
		Cooldown:        strings.TrimSpace(wp.Cooldown),
	}

	for _, we := range wp.Exercises {
		name := strings.TrimSpace(we.Name)
		if name == "" {
			continue
		}
		plan.Exercises = append(plan.Exercises, models.PlanExercise{
			Name:        name,
			Sets:        clamp(int(we.Sets), models.MinSets, models.MaxSets),
			Reps:        clamp(int(we.Reps), models.MinReps, models.MaxReps),
			RestSeconds: clamp(int(we.RestSeconds), models.MinRestSeconds, models.MaxRestSeconds),
			Note:        strings.TrimSpace(we.Note),
			Intensity:   normalizeIntensity(we.Intensity),
		})
	}

	if len(plan.Exercises) == 0 {
		return nil, fmt.Errorf("%w: no exercises", ErrUnparseable)
	}

	return plan, nil
}

// extractBlock isolates the structured part of raw output: a fenced code
// block if present, otherwise the longest balanced brace or bracket span.
func extractBlock(raw string) string {
	if fenced := extractFenced(raw); fenced != "" {
		return fenced
	}
	return longestBalancedSpan(raw)
}

func extractFenced(raw string) string {
	start := strings.Index(raw, "```")
	if start < 0 {
		return ""
	}
	rest := raw[start+3:]
	// Skip the language tag (e.g. "json") on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// longestBalancedSpan returns the longest substring starting at '{' or '['
// whose brackets balance, skipping bracket characters inside JSON strings.
func longestBalancedSpan(raw string) string {
	var best string
	for i := 0; i < len(raw); i++ {
		open := raw[i]
		if open != '{' && open != '[' {
			continue
		}
		if span := balancedFrom(raw, i); len(span) > len(best) {
			best = span
		}
	}
	return best
}

func balancedFrom(raw string, start int) string {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeIntensity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return "light"
	case "hard":
		return "hard"
	default:
		return "moderate"
	}
}

// QualityScore rates a parsed plan's structural completeness on a 0-100
// rubric: exercise count up to 30, description 15, coaching-note coverage
// up to 20, rep-range variety up to 20, warmup and cooldown 15. Used for
// observability only, never for correctness gating.
func QualityScore(plan *models.WorkoutPlan) int {
	score := 0

	// Exercise count: 5 points each, capped at 6 exercises.
	n := len(plan.Exercises)
	if n > 6 {
		n = 6
	}
	score += n * 5

	if plan.Description != "" {
		score += 15
	}

	// Coaching-note coverage, proportional.
	if len(plan.Exercises) > 0 {
		noted := 0
		for _, ex := range plan.Exercises {
			if ex.Note != "" {
				noted++
			}
		}
		score += 20 * noted / len(plan.Exercises)
	}

	// Rep-range variety: distinct rep counts, 5 points each up to 4.
	reps := map[int]bool{}
	for _, ex := range plan.Exercises {
		reps[ex.Reps] = true
	}
	variety := len(reps)
	if variety > 4 {
		variety = 4
	}
	score += variety * 5

	if plan.Warmup != "" {
		score += 8
	}
	if plan.Cooldown != "" {
		score += 7
	}

	if score > 100 {
		score = 100
	}
	return score
}
