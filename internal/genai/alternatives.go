package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/claude/repsmith/internal/models"
)

// maxAlternatives bounds the ranked result on both paths.
const maxAlternatives = 5

// Local similarity weights. Chosen to favor muscle carryover over
// logistics: a substitute that hits the same muscles with different
// equipment beats one that shares a rack but trains something else.
const (
	weightMuscleOverlap    = 0.40
	weightEquipmentOverlap = 0.25
	weightDifficultyMatch  = 0.20
	weightCategoryMatch    = 0.15
)

// SuggestAlternatives ranks substitutes for an exercise. Candidates come
// from the catalog by primary-muscle overlap plus the criteria filters;
// when the remote path is available they are re-ranked by the model
// through the same retry controller, otherwise (or on exhaustion) a
// deterministic local similarity score ranks the same candidate set. Both
// paths return at most five results, descending by score.
func (e *Engine) SuggestAlternatives(ctx context.Context, exerciseID string, criteria models.AlternativeCriteria) ([]models.Alternative, error) {
	if exerciseID == "" {
		return nil, fmt.Errorf("%w: exercise id is required", ErrInvalidRequest)
	}

	base, err := e.builder.catalog.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown exercise %q", ErrInvalidRequest, exerciseID)
	}

	candidates, err := e.builder.catalog.FindExercises(ctx, models.ExerciseFilter{
		MuscleGroups: base.PrimaryMuscles,
		Equipment:    normalizeTags(criteria.Equipment),
		ExcludeIDs:   []string{base.ID},
		Limit:        25,
	})
	if err != nil {
		return nil, fmt.Errorf("finding candidates: %w", err)
	}
	if criteria.Difficulty != "" {
		candidates = filterDifficulty(candidates, criteria.Difficulty)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	limit := criteria.Limit
	if limit <= 0 || limit > maxAlternatives {
		limit = maxAlternatives
	}

	if e.opts.Enabled && e.client != nil {
		ranked, err := e.rankRemote(ctx, base, candidates)
		if err == nil {
			return capAlternatives(ranked, limit), nil
		}
		e.log.Info("remote ranking exhausted, using local similarity", "exercise", base.Name, "error", err)
	}

	return capAlternatives(rankLocal(base, candidates), limit), nil
}

// wireRanking is one scored candidate in the remote ranking response.
type wireRanking struct {
	ID     string   `json:"id"`
	Score  looseInt `json:"score"`
	Reason string   `json:"reason"`
}

func (e *Engine) rankRemote(ctx context.Context, base *models.Exercise, candidates []models.Exercise) ([]models.Alternative, error) {
	prompt := CompileRankingPrompt(base, candidates)
	params := GenerationParams{MaxTokens: 1024, Temperature: 0.2}

	var ranked []models.Alternative
	_, err := e.controller.Run(ctx, func(attemptCtx context.Context) error {
		raw, err := e.client.Complete(attemptCtx, prompt, params)
		if err != nil {
			if attemptCtx.Err() != nil {
				return fmt.Errorf("attempt deadline: %w", attemptCtx.Err())
			}
			return err
		}

		block := extractBlock(raw)
		if block == "" {
			return fmt.Errorf("%w: no structured block found", ErrUnparseable)
		}
		var rankings []wireRanking
		if err := json.Unmarshal([]byte(block), &rankings); err != nil {
			return fmt.Errorf("%w: %v", ErrUnparseable, err)
		}

		byID := make(map[string]models.Exercise, len(candidates))
		for _, c := range candidates {
			byID[c.ID] = c
		}

		var out []models.Alternative
		for _, r := range rankings {
			ex, ok := byID[r.ID]
			if !ok {
				continue
			}
			score := float64(clamp(int(r.Score), 0, 100)) / 100
			out = append(out, models.Alternative{Exercise: ex, Score: score, Reason: r.Reason})
		}
		if len(out) == 0 {
			return fmt.Errorf("%w: no known candidates in ranking", ErrUnparseable)
		}

		sortAlternatives(out)
		ranked = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// rankLocal scores every candidate with the weighted similarity sum.
// Deterministic for a given candidate set.
func rankLocal(base *models.Exercise, candidates []models.Exercise) []models.Alternative {
	out := make([]models.Alternative, 0, len(candidates))
	for _, c := range candidates {
		score := weightMuscleOverlap*overlap(base.PrimaryMuscles, c.PrimaryMuscles) +
			weightEquipmentOverlap*overlap(base.Equipment, c.Equipment) +
			weightDifficultyMatch*match(base.Difficulty, c.Difficulty) +
			weightCategoryMatch*match(base.Category, c.Category)
		out = append(out, models.Alternative{
			Exercise: c,
			Score:    score,
			Reason:   fmt.Sprintf("shares %s", strings.Join(intersect(base.PrimaryMuscles, c.PrimaryMuscles), ", ")),
		})
	}
	sortAlternatives(out)
	return out
}

func sortAlternatives(alts []models.Alternative) {
	sort.Slice(alts, func(i, j int) bool {
		if alts[i].Score != alts[j].Score {
			return alts[i].Score > alts[j].Score
		}
		return alts[i].Exercise.Name < alts[j].Exercise.Name
	})
}

func capAlternatives(alts []models.Alternative, limit int) []models.Alternative {
	if len(alts) > limit {
		alts = alts[:limit]
	}
	return alts
}

func filterDifficulty(candidates []models.Exercise, difficulty string) []models.Exercise {
	var out []models.Exercise
	for _, c := range candidates {
		if strings.EqualFold(c.Difficulty, difficulty) {
			out = append(out, c)
		}
	}
	return out
}

// overlap is the Jaccard-style share of a's items present in b.
func overlap(a, b []string) float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(len(intersect(a, b))) / float64(len(a))
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[strings.ToLower(s)] = true
	}
	var out []string
	for _, s := range a {
		if set[strings.ToLower(s)] {
			out = append(out, s)
		}
	}
	return out
}

func match(a, b string) float64 {
	if a != "" && strings.EqualFold(a, b) {
		return 1
	}
	return 0
}
