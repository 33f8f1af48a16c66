package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/repsmith/internal/genai"
	"github.com/claude/repsmith/internal/models"
	"github.com/claude/repsmith/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// DataSource abstracts the data layer for MCP tools. *storage.DB satisfies
// this interface.
type DataSource interface {
	GetRecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error)
	QueryPlans(ctx context.Context, userID, limit int) ([]models.PlanRow, error)
	FindExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// New creates an MCP server with all tools and resources registered.
func New(engine *genai.Engine, ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepSmith", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepSmith workout planning server. Generate workout plans, find exercise alternatives, and review training history. All data is scoped to the authenticated user."),
	)

	h := &handlers{engine: engine, ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGeneratePlan, Handler: h.generatePlan},
		server.ServerTool{Tool: toolSuggestAlternatives, Handler: h.suggestAlternatives},
		server.ServerTool{Tool: toolGetRecentWorkouts, Handler: h.getRecentWorkouts},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetGenerationStats, Handler: h.getGenerationStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentPlans, Handler: h.recentPlans},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	engine *genai.Engine
	ds     DataSource
	log    *slog.Logger
}

// --- Resource definitions ---

var resRecentPlans = mcp.NewResource(
	"repsmith://recent_plans",
	"Recent Plans",
	mcp.WithResourceDescription("The user's most recently generated workout plans with source and quality metadata"),
	mcp.WithMIMEType("application/json"),
)
