package genai

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/claude/repsmith/internal/models"
)

// Fingerprint derives the cache key from the normalized request fields:
// user, goal, level, duration rounded to the nearest 5 minutes, and the
// sorted equipment list. Requests that normalize identically share a key.
func Fingerprint(gc *GenerationContext) string {
	rounded := ((gc.DurationMinutes + 2) / 5) * 5
	raw := fmt.Sprintf("%d|%s|%s|%d|%s",
		gc.UserID, gc.Goal, gc.Level, rounded, strings.Join(gc.Equipment, ","))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	plan       models.WorkoutPlan
	insertedAt time.Time
}

// ResultCache is a TTL- and size-bounded store for successful remote
// generations. A single mutex is enough at the expected write rate.
// Entries are replaced, never mutated in place.
//
// Concurrent identical requests are not coalesced: a stampede on one key
// performs redundant remote calls. Accepted trade-off given the low
// collision probability; single-flight would be the enhancement.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	hits       int64
	misses     int64
}

// NewResultCache creates a cache with the given TTL and capacity.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns a copy of the cached plan for key, or false. Entries older
// than the TTL are never returned; they are deleted on sight.
func (c *ResultCache) Get(key string) (*models.WorkoutPlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Since(entry.insertedAt) > c.ttl {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	plan := entry.plan
	plan.Exercises = append([]models.PlanExercise(nil), entry.plan.Exercises...)
	return &plan, true
}

// Put stores a plan under key, evicting the oldest insertion when full.
func (c *ResultCache) Put(key string, plan *models.WorkoutPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	stored := *plan
	stored.Exercises = append([]models.PlanExercise(nil), plan.Exercises...)
	c.entries[key] = cacheEntry{plan: stored, insertedAt: time.Now()}
}

func (c *ResultCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.insertedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Len returns the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns lifetime hit and miss counts.
func (c *ResultCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
