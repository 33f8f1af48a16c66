package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/repsmith/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidRequest marks malformed input: the only condition under which
// Generate returns an error. Remote unavailability never does; it surfaces
// as metadata.source = fallback.
var ErrInvalidRequest = errors.New("invalid generation request")

// Engine is the top-level generation orchestrator. It sequences cache
// lookup, context build, retry-protected remote generation, validation,
// fallback on exhaustion, cache write, and metrics update.
type Engine struct {
	opts       Options
	client     RemoteClient
	builder    *ContextBuilder
	controller *Controller
	cache      *ResultCache
	metrics    *Collector
	audit      *AuditLog
	log        *slog.Logger
}

// NewEngine wires an engine. client may be nil when opts.Enabled is false;
// audit may be nil to disable the local audit log.
func NewEngine(opts Options, client RemoteClient, builder *ContextBuilder, audit *AuditLog, log *slog.Logger) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:       opts,
		client:     client,
		builder:    builder,
		controller: NewController(opts.MaxRetries, opts.AttemptTimeout, opts.BaseDelay, log),
		cache:      NewResultCache(opts.CacheTTL, opts.CacheMaxEntries),
		metrics:    NewCollector(),
		audit:      audit,
		log:        log,
	}
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *Collector {
	return e.metrics
}

// Cache returns the engine's result cache.
func (e *Engine) Cache() *ResultCache {
	return e.cache
}

// Generate produces a workout plan for the request. The caller always
// receives a well-formed, range-clamped plan within the controller's
// worst-case budget; an error means malformed input, nothing else.
func (e *Engine) Generate(ctx context.Context, req models.PlanRequest) (*models.WorkoutPlan, error) {
	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}

	start := time.Now()
	gc := e.builder.Build(ctx, req)
	key := Fingerprint(gc)

	if cached, ok := e.cache.Get(key); ok {
		cached.Metadata.Source = models.SourceCache
		e.finish(cached, models.SourceCache, 0, time.Since(start))
		return cached, nil
	}

	if e.opts.Enabled && e.client != nil {
		plan, attempts, err := e.generateRemote(ctx, gc)
		if err == nil {
			plan.ID = uuid.New()
			plan.UserID = gc.UserID
			plan.Metadata = models.PlanMetadata{
				Source:      models.SourceRemote,
				Model:       e.opts.Model,
				GeneratedAt: time.Now().UTC(),
				Elapsed:     time.Since(start),
				Quality:     QualityScore(plan),
			}
			e.cache.Put(key, plan)
			e.finish(plan, models.SourceRemote, attempts, plan.Metadata.Elapsed)
			return plan, nil
		}
		// All attempts exhausted (timeout, transport, or unparseable on
		// every try). Absorbed here; the fallback below always answers.
		e.log.Info("remote generation exhausted, synthesizing fallback",
			"user_id", gc.UserID, "attempts", attempts, "error", err)

		plan = e.synthesize(gc, start)
		e.finish(plan, models.SourceFallback, attempts, plan.Metadata.Elapsed)
		return plan, nil
	}

	plan := e.synthesize(gc, start)
	e.finish(plan, models.SourceFallback, 0, plan.Metadata.Elapsed)
	return plan, nil
}

// generateRemote runs the compile-invoke-parse sequence under the retry
// controller. Unparseable output counts as an attempt failure and is
// retried like a timeout.
func (e *Engine) generateRemote(ctx context.Context, gc *GenerationContext) (*models.WorkoutPlan, int, error) {
	prompt := CompilePrompt(gc)
	params := GenerationParams{MaxTokens: 4096, Temperature: 0.7}

	var plan *models.WorkoutPlan
	records, err := e.controller.Run(ctx, func(attemptCtx context.Context) error {
		raw, err := e.client.Complete(attemptCtx, prompt, params)
		if err != nil {
			if attemptCtx.Err() != nil {
				return fmt.Errorf("attempt deadline: %w", attemptCtx.Err())
			}
			return err
		}
		parsed, err := ParsePlan(raw)
		if err != nil {
			return err
		}
		plan = parsed
		return nil
	})
	if err != nil {
		return nil, len(records), err
	}
	return plan, len(records), nil
}

func (e *Engine) synthesize(gc *GenerationContext, start time.Time) *models.WorkoutPlan {
	plan := Synthesize(gc)
	plan.ID = uuid.New()
	plan.Metadata = models.PlanMetadata{
		Source:      models.SourceFallback,
		Model:       "fallback",
		GeneratedAt: time.Now().UTC(),
		Elapsed:     time.Since(start),
		Quality:     fallbackQuality,
	}
	return plan
}

// finish updates metrics and the audit log, exactly once per Generate.
func (e *Engine) finish(plan *models.WorkoutPlan, source models.PlanSource, attempts int, elapsed time.Duration) {
	e.metrics.Record(source, attempts, elapsed)
	if e.audit != nil {
		if err := e.audit.Record(plan.UserID, source, attempts, plan.Metadata.Quality, elapsed); err != nil {
			e.log.Warn("audit write failed", "error", err)
		}
	}
}
