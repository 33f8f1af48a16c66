package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/repsmith/internal/genai"
	"github.com/claude/repsmith/internal/models"
	"github.com/claude/repsmith/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"tailscale.com/client/tailscale/apitype"
)

// Store abstracts the data layer for HTTP handlers. *storage.DB satisfies
// this; tests substitute an in-memory implementation.
type Store interface {
	FindExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id string) (*models.Exercise, error)
	GetRecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error)
	QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutRow, error)
	InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error)
	InsertPlan(ctx context.Context, plan *models.WorkoutPlan, goal models.Goal) error
	GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*models.WorkoutPlan, error)
	QueryPlans(ctx context.Context, userID, limit int) ([]models.PlanRow, error)
	UpsertProfile(ctx context.Context, p models.UserProfile) error
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// WhoIsClient resolves a remote address to a Tailscale identity. Satisfied
// by the tsnet local client.
type WhoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     Store
	engine *genai.Engine
	log    *slog.Logger
	apiKey string
	whois  WhoIsClient
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, engine *genai.Engine, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		engine: engine,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables identity resolution through the tsnet local client.
// Without it every request runs as the dev user.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{id}/alternatives", s.handleAlternatives)
		r.Get("/workouts", s.handleQueryWorkouts)
		r.Get("/plans", s.handleListPlans)
		r.Get("/plans/{id}", s.handleGetPlan)
		r.Get("/genai/stats", s.handleGenAIStats)

		// Mutating endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/plans/generate", s.handleGeneratePlan)
			r.Post("/workouts", s.handleLogWorkout)
			r.Post("/profile", s.handleUpsertProfile)
		})
	})
}
