package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repsmith/internal/genai"
	"github.com/claude/repsmith/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.UserID == 0 {
		req.UserID = userIDFromContext(r)
	}

	plan, err := s.engine.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, genai.ErrInvalidRequest) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("generate error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Persistence is best-effort: the caller already has the plan in hand.
	if err := s.db.InsertPlan(r.Context(), plan, models.ParseGoal(req.Goal)); err != nil {
		s.log.Warn("plan persistence failed", "plan_id", plan.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	uid := userIDParam(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	plans, err := s.db.QueryPlans(r.Context(), uid, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan ID"})
		return
	}

	plan, err := s.db.GetPlan(r.Context(), planID, userIDParam(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	filter := models.ExerciseFilter{
		Equipment:    splitParam(r, "equipment"),
		MuscleGroups: splitParam(r, "muscles"),
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	exercises, err := s.db.FindExercises(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleAlternatives(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "id")
	criteria := models.AlternativeCriteria{
		Equipment:  splitParam(r, "equipment"),
		Difficulty: r.URL.Query().Get("difficulty"),
	}
	criteria.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	alts, err := s.engine.SuggestAlternatives(r.Context(), exerciseID, criteria)
	if err != nil {
		if errors.Is(err, genai.ErrInvalidRequest) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, alts)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	uid := userIDParam(r)

	if r.URL.Query().Get("start") == "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		workouts, err := s.db.GetRecentWorkouts(r.Context(), uid, limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, workouts)
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	workouts, err := s.db.QueryWorkouts(r.Context(), uid, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var row models.WorkoutRow
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if row.UserID == 0 {
		row.UserID = userIDFromContext(r)
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.PerformedAt.IsZero() {
		row.PerformedAt = time.Now().UTC()
	}
	if row.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	inserted, err := s.db.InsertWorkout(r.Context(), row)
	if err != nil {
		s.log.Error("workout insert error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": row.ID, "inserted": inserted})
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if p.UserID == 0 {
		p.UserID = userIDFromContext(r)
	}
	p.FitnessLevel = models.ParseFitnessLevel(string(p.FitnessLevel))

	if err := s.db.UpsertProfile(r.Context(), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGenAIStats(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Metrics().Snapshot()
	hits, misses := s.engine.Cache().Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"generation": snap,
		"cache": map[string]any{
			"entries": s.engine.Cache().Len(),
			"hits":    hits,
			"misses":  misses,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// userIDParam prefers an explicit user_id query parameter, falling back to
// the identity middleware.
func userIDParam(r *http.Request) int {
	if v := r.URL.Query().Get("user_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			return id
		}
	}
	return userIDFromContext(r)
}

func splitParam(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
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

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
