package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/claude/repsmith/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// splitList parses a comma-separated parameter into a clean slice.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// --- Tool definitions ---

var toolGeneratePlan = mcp.NewTool("generate_workout_plan",
	mcp.WithDescription("Generate a personalized workout plan. Always returns a complete plan: remote generation falls back to a deterministic template when the model endpoint is unavailable. Check metadata.source to see which path produced it."),
	mcp.WithString("goal", mcp.Description("Training goal. Defaults to general_fitness."), mcp.Enum("strength", "hypertrophy", "endurance", "weight_loss", "general_fitness")),
	mcp.WithNumber("duration_minutes", mcp.Description("Target session length in minutes (10-180). Defaults to 45.")),
	mcp.WithString("fitness_level", mcp.Description("Declared fitness level. Workout history can lower but never raise it."), mcp.Enum("beginner", "intermediate", "advanced")),
	mcp.WithString("equipment", mcp.Description("Comma-separated available equipment (e.g. 'barbell,dumbbell'). Empty means bodyweight only.")),
)

var toolSuggestAlternatives = mcp.NewTool("suggest_alternatives",
	mcp.WithDescription("Rank substitute exercises for a given exercise, best first. Uses the model endpoint for ranking when available and a muscle/equipment similarity heuristic otherwise."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Catalog ID of the exercise to replace")),
	mcp.WithString("equipment", mcp.Description("Comma-separated equipment the user has access to")),
	mcp.WithString("difficulty", mcp.Description("Restrict alternatives to this difficulty"), mcp.Enum("beginner", "intermediate", "advanced")),
	mcp.WithNumber("limit", mcp.Description("Maximum alternatives to return (default 5)")),
)

var toolGetRecentWorkouts = mcp.NewTool("get_recent_workouts",
	mcp.WithDescription("Retrieve the user's most recent logged workouts, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum workouts to return. Defaults to 30.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("Search the exercise catalog with optional equipment and muscle group filters."),
	mcp.WithString("equipment", mcp.Description("Comma-separated equipment filter; matches exercises needing nothing outside the list")),
	mcp.WithString("muscles", mcp.Description("Comma-separated muscle groups; matches exercises hitting any of them")),
	mcp.WithNumber("limit", mcp.Description("Maximum results to return")),
)

var toolGetGenerationStats = mcp.NewTool("get_generation_stats",
	mcp.WithDescription("Report generation engine counters: calls by source (remote/cache/fallback), retry attempts, average latency, and cache hit rate."),
)

// --- Tool handlers ---

func (h *handlers) generatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planReq := models.PlanRequest{
		UserID:          UserIDFromContext(ctx),
		Goal:            req.GetString("goal", ""),
		FitnessLevel:    req.GetString("fitness_level", ""),
		DurationMinutes: req.GetInt("duration_minutes", 0),
		Equipment:       splitList(req.GetString("equipment", "")),
	}

	plan, err := h.engine.Generate(ctx, planReq)
	if err != nil {
		h.log.Error("mcp generate_workout_plan", "error", err)
		return mcp.NewToolResultError("generation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) suggestAlternatives(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	criteria := models.AlternativeCriteria{
		Equipment:  splitList(req.GetString("equipment", "")),
		Difficulty: req.GetString("difficulty", ""),
		Limit:      req.GetInt("limit", 0),
	}

	alts, err := h.engine.SuggestAlternatives(ctx, exerciseID, criteria)
	if err != nil {
		h.log.Error("mcp suggest_alternatives", "error", err)
		return mcp.NewToolResultError("lookup failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(alts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	limit := req.GetInt("limit", 30)

	workouts, err := h.ds.GetRecentWorkouts(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := models.ExerciseFilter{
		Equipment:    splitList(req.GetString("equipment", "")),
		MuscleGroups: splitList(req.GetString("muscles", "")),
		Limit:        req.GetInt("limit", 0),
	}

	exercises, err := h.ds.FindExercises(ctx, filter)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getGenerationStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := h.engine.Metrics().Snapshot()
	hits, misses := h.engine.Cache().Stats()

	result, err := mcp.NewToolResultJSON(map[string]any{
		"generation": snap,
		"cache": map[string]any{
			"entries": h.engine.Cache().Len(),
			"hits":    hits,
			"misses":  misses,
		},
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) recentPlans(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	plans, err := h.ds.QueryPlans(ctx, uid, 10)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(plans)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
