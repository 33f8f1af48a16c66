package genai

import (
	"github.com/claude/repsmith/internal/models"
)

// fallbackQuality is the fixed score stamped on synthesized plans. It
// reflects template provenance, not the remote rubric: a template is
// complete but generic.
const fallbackQuality = 45

// blendSlots is how many leading template slots the caller's
// most-frequent exercises may overwrite.
const blendSlots = 3

// planTemplate is a static, goal-keyed workout skeleton.
type planTemplate struct {
	Name        string
	Description string
	Exercises   []models.PlanExercise
	Warmup      string
	Cooldown    string
}

var fallbackTemplates = map[models.Goal]planTemplate{
	models.GoalStrength: {
		Name:        "Foundation Strength Session",
		Description: "Heavy compound lifts with full recovery between sets. Progress load week to week.",
		Exercises: []models.PlanExercise{
			{Name: "Barbell Back Squat", Sets: 5, Reps: 5, RestSeconds: 180, Note: "Brace hard, drive through mid-foot.", Intensity: "hard"},
			{Name: "Barbell Bench Press", Sets: 5, Reps: 5, RestSeconds: 180, Note: "Keep shoulder blades pinned.", Intensity: "hard"},
			{Name: "Barbell Row", Sets: 4, Reps: 6, RestSeconds: 150, Note: "Pull to the lower ribs, no momentum.", Intensity: "moderate"},
			{Name: "Overhead Press", Sets: 3, Reps: 6, RestSeconds: 150, Note: "Squeeze glutes to protect the lower back.", Intensity: "moderate"},
			{Name: "Romanian Deadlift", Sets: 3, Reps: 8, RestSeconds: 150, Note: "Hinge, keep the bar close.", Intensity: "moderate"},
		},
		Warmup:   "5 minutes easy rowing, then empty-bar sets of each main lift.",
		Cooldown: "Light stretching for hips, chest, and hamstrings.",
	},
	models.GoalHypertrophy: {
		Name:        "Volume Hypertrophy Session",
		Description: "Moderate loads, controlled tempo, short rests to maximize muscle growth stimulus.",
		Exercises: []models.PlanExercise{
			{Name: "Incline Dumbbell Press", Sets: 4, Reps: 10, RestSeconds: 90, Note: "Two seconds down, one second up.", Intensity: "moderate"},
			{Name: "Lat Pulldown", Sets: 4, Reps: 12, RestSeconds: 90, Note: "Lead with the elbows.", Intensity: "moderate"},
			{Name: "Leg Press", Sets: 4, Reps: 12, RestSeconds: 120, Note: "Full depth without lifting the hips.", Intensity: "moderate"},
			{Name: "Seated Dumbbell Shoulder Press", Sets: 3, Reps: 12, RestSeconds: 90, Note: "Stop one rep short of failure.", Intensity: "moderate"},
			{Name: "Cable Curl", Sets: 3, Reps: 15, RestSeconds: 60, Note: "Constant tension, no swinging.", Intensity: "light"},
			{Name: "Triceps Pushdown", Sets: 3, Reps: 15, RestSeconds: 60, Note: "Lock the elbows at your sides.", Intensity: "light"},
		},
		Warmup:   "5 minutes incline walking plus band pull-aparts.",
		Cooldown: "Stretch worked muscle groups, 30 seconds each.",
	},
	models.GoalEndurance: {
		Name:        "Muscular Endurance Circuit",
		Description: "High-rep circuit with minimal rest to build work capacity and aerobic fitness.",
		Exercises: []models.PlanExercise{
			{Name: "Kettlebell Swing", Sets: 4, Reps: 20, RestSeconds: 45, Note: "Snap the hips, arms stay loose.", Intensity: "moderate"},
			{Name: "Goblet Squat", Sets: 4, Reps: 15, RestSeconds: 45, Note: "Elbows inside the knees at the bottom.", Intensity: "moderate"},
			{Name: "Push-Up", Sets: 4, Reps: 15, RestSeconds: 45, Note: "Straight line from head to heels.", Intensity: "moderate"},
			{Name: "Inverted Row", Sets: 4, Reps: 12, RestSeconds: 45, Note: "Pause briefly at the top.", Intensity: "moderate"},
			{Name: "Mountain Climbers", Sets: 3, Reps: 30, RestSeconds: 30, Note: "Steady rhythm, hips low.", Intensity: "hard"},
		},
		Warmup:   "5 minutes easy jogging and dynamic leg swings.",
		Cooldown: "5 minutes walking, then calf and hip flexor stretches.",
	},
	models.GoalWeightLoss: {
		Name:        "Metabolic Conditioning Session",
		Description: "Full-body supersets that keep the heart rate elevated for maximum energy expenditure.",
		Exercises: []models.PlanExercise{
			{Name: "Dumbbell Thruster", Sets: 4, Reps: 12, RestSeconds: 60, Note: "One fluid motion from squat to press.", Intensity: "hard"},
			{Name: "Renegade Row", Sets: 4, Reps: 10, RestSeconds: 60, Note: "Hips square to the floor.", Intensity: "moderate"},
			{Name: "Walking Lunge", Sets: 3, Reps: 20, RestSeconds: 60, Note: "Knee tracks over the toes.", Intensity: "moderate"},
			{Name: "Burpee", Sets: 3, Reps: 12, RestSeconds: 60, Note: "Step back instead of jumping if form slips.", Intensity: "hard"},
			{Name: "Plank", Sets: 3, Reps: 1, RestSeconds: 45, Note: "Hold 45 seconds, brace the whole trunk.", Intensity: "moderate"},
		},
		Warmup:   "5 minutes jump rope or brisk incline walk.",
		Cooldown: "Easy walking until heart rate settles, then full-body stretch.",
	},
	models.GoalGeneralFitness: {
		Name:        "Balanced Full-Body Session",
		Description: "One movement per pattern: squat, hinge, push, pull, carry. A sustainable default.",
		Exercises: []models.PlanExercise{
			{Name: "Goblet Squat", Sets: 3, Reps: 10, RestSeconds: 90, Note: "Sit between the hips, chest tall.", Intensity: "moderate"},
			{Name: "Dumbbell Romanian Deadlift", Sets: 3, Reps: 10, RestSeconds: 90, Note: "Soft knees, long spine.", Intensity: "moderate"},
			{Name: "Push-Up", Sets: 3, Reps: 12, RestSeconds: 60, Note: "Elevate hands to adjust difficulty.", Intensity: "moderate"},
			{Name: "One-Arm Dumbbell Row", Sets: 3, Reps: 10, RestSeconds: 60, Note: "Row to the hip, not the shoulder.", Intensity: "moderate"},
			{Name: "Farmer Carry", Sets: 3, Reps: 1, RestSeconds: 90, Note: "40 meters per set, tall posture.", Intensity: "moderate"},
		},
		Warmup:   "5 minutes of easy cardio and arm circles.",
		Cooldown: "Gentle full-body stretching.",
	},
}

// Synthesize deterministically produces a policy-compliant plan from the
// goal's static template, blended with the caller's recent history. Pure:
// no I/O, cannot fail, identical inputs yield identical output.
//
// The blend step overwrites the first slots' exercise names with the
// caller's most-frequently-performed exercises while keeping the
// template's set/rep/rest structure, personalizing the fallback without
// the remote service.
func Synthesize(gc *GenerationContext) *models.WorkoutPlan {
	tmpl, ok := fallbackTemplates[gc.Goal]
	if !ok {
		tmpl = fallbackTemplates[models.GoalGeneralFitness]
	}

	exercises := make([]models.PlanExercise, len(tmpl.Exercises))
	copy(exercises, tmpl.Exercises)

	n := len(gc.RecentDigest)
	if n > blendSlots {
		n = blendSlots
	}
	if n > len(exercises) {
		n = len(exercises)
	}
	for i := 0; i < n; i++ {
		exercises[i].Name = gc.RecentDigest[i].Name
	}

	return &models.WorkoutPlan{
		UserID:          gc.UserID,
		Name:            tmpl.Name,
		Description:     tmpl.Description,
		DurationMinutes: gc.DurationMinutes,
		Difficulty:      string(gc.Experience),
		Exercises:       exercises,
		Warmup:          tmpl.Warmup,
		Cooldown:        tmpl.Cooldown,
	}
}
