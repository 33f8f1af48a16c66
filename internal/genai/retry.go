package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrExhausted is returned by Controller.Run after every attempt has
// failed. The individual failure reasons are logged per attempt and
// collapsed into this single signal for the orchestrator.
var ErrExhausted = errors.New("generation attempts exhausted")

// controllerState is the explicit attempt-loop state. Modeling the loop as
// a small machine keeps the attempt-count and backoff invariants
// independently testable.
type controllerState int

const (
	stateIdle controllerState = iota
	stateAttempting
	stateSucceeded
	stateExhausted
)

func (s controllerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAttempting:
		return "attempting"
	case stateSucceeded:
		return "succeeded"
	case stateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// AttemptRecord captures one attempt's outcome for logging and metrics.
type AttemptRecord struct {
	Number  int
	Elapsed time.Duration
	Err     error
}

// Controller runs an operation under a fixed attempt budget. Each attempt
// gets its own deadline; failed attempts back off exponentially
// (baseDelay × 2^(attempt-1)). Cancellation of the caller's ctx aborts the
// whole loop immediately, backoff included.
type Controller struct {
	maxAttempts    int
	attemptTimeout time.Duration
	baseDelay      time.Duration
	log            *slog.Logger
}

// NewController creates a retry controller.
func NewController(maxAttempts int, attemptTimeout, baseDelay time.Duration, log *slog.Logger) *Controller {
	return &Controller{
		maxAttempts:    maxAttempts,
		attemptTimeout: attemptTimeout,
		baseDelay:      baseDelay,
		log:            log,
	}
}

// WorstCase returns the latency ceiling of a full Run: every attempt
// spending its whole deadline plus every backoff delay. This bound is the
// end-to-end request latency ceiling and callers size their own timeouts
// against it.
func (c *Controller) WorstCase() time.Duration {
	total := time.Duration(c.maxAttempts) * c.attemptTimeout
	for i := 1; i < c.maxAttempts; i++ {
		total += c.baseDelay << uint(i-1)
	}
	return total
}

// Run invokes attempt up to maxAttempts times. Each invocation receives a
// child context carrying the per-attempt deadline; when the deadline wins
// the race the attempt is abandoned, not waited on. Returns the attempt
// records and nil on success, or the records and ErrExhausted.
func (c *Controller) Run(ctx context.Context, attempt func(ctx context.Context) error) ([]AttemptRecord, error) {
	state := stateIdle
	records := make([]AttemptRecord, 0, c.maxAttempts)

	for n := 1; n <= c.maxAttempts; n++ {
		if n > 1 {
			delay := c.baseDelay << uint(n-2)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				c.log.Debug("caller gone during backoff", "attempt", n, "state", state.String())
				return records, fmt.Errorf("%w: %w", ErrExhausted, ctx.Err())
			}
		}

		if err := ctx.Err(); err != nil {
			return records, fmt.Errorf("%w: %w", ErrExhausted, err)
		}

		state = stateAttempting
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		start := time.Now()
		err := attempt(attemptCtx)
		cancel()
		elapsed := time.Since(start)

		records = append(records, AttemptRecord{Number: n, Elapsed: elapsed, Err: err})

		if err == nil {
			state = stateSucceeded
			return records, nil
		}

		c.log.Warn("generation attempt failed",
			"attempt", n,
			"of", c.maxAttempts,
			"elapsed", elapsed.String(),
			"reason", failureReason(err),
			"error", err,
		)

		// Caller disconnected: stop consuming the attempt budget.
		if ctx.Err() != nil {
			break
		}
	}

	state = stateExhausted
	c.log.Info("generation exhausted", "attempts", len(records), "state", state.String())
	return records, ErrExhausted
}

// failureReason classifies an attempt error for logging: timeout,
// unparseable output, or transport.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrUnparseable):
		return "unparseable"
	default:
		return "transport"
	}
}
