package genai

import (
	"fmt"
	"testing"
	"time"

	"github.com/claude/repsmith/internal/models"
)

func testPlan(name string) *models.WorkoutPlan {
	return &models.WorkoutPlan{
		Name: name,
		Exercises: []models.PlanExercise{
			{Name: "Squat", Sets: 3, Reps: 5, RestSeconds: 120},
		},
	}
}

func TestCacheHitReturnsCopy(t *testing.T) {
	c := NewResultCache(time.Minute, 4)
	c.Put("k", testPlan("Plan A"))

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get = miss, want hit")
	}
	if got.Name != "Plan A" {
		t.Errorf("name = %q, want %q", got.Name, "Plan A")
	}

	// Mutating the returned plan must not affect the stored entry.
	got.Exercises[0].Sets = 99
	again, _ := c.Get("k")
	if again.Exercises[0].Sets != 3 {
		t.Errorf("stored sets = %d after caller mutation, want 3", again.Exercises[0].Sets)
	}
}

func TestCacheExpiredEntryNeverReturned(t *testing.T) {
	c := NewResultCache(10*time.Millisecond, 4)
	c.Put("k", testPlan("Plan A"))

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Get returned an expired entry")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after expiry read, want 0", c.Len())
	}
}

func TestCacheEvictsOldestInsertion(t *testing.T) {
	c := NewResultCache(time.Minute, 2)

	c.Put("first", testPlan("First"))
	time.Sleep(2 * time.Millisecond)
	c.Put("second", testPlan("Second"))
	time.Sleep(2 * time.Millisecond)
	c.Put("third", testPlan("Third"))

	if _, ok := c.Get("first"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := c.Get("second"); !ok {
		t.Error("second entry was evicted, want kept")
	}
	if _, ok := c.Get("third"); !ok {
		t.Error("third entry was evicted, want kept")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheStats(t *testing.T) {
	c := NewResultCache(time.Minute, 4)
	c.Put("k", testPlan("Plan A"))

	c.Get("k")
	c.Get("k")
	c.Get("missing")

	hits, misses := c.Stats()
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestFingerprintNormalization(t *testing.T) {
	base := &GenerationContext{
		UserID:          7,
		Goal:            models.GoalStrength,
		Level:           models.LevelIntermediate,
		DurationMinutes: 45,
		Equipment:       []string{"barbell", "dumbbell"},
	}

	// Duration rounds to the nearest 5: 44 and 46 share a key with 45.
	near := *base
	near.DurationMinutes = 44
	if Fingerprint(base) != Fingerprint(&near) {
		t.Error("durations 45 and 44 produced different fingerprints")
	}

	far := *base
	far.DurationMinutes = 60
	if Fingerprint(base) == Fingerprint(&far) {
		t.Error("durations 45 and 60 produced the same fingerprint")
	}

	otherUser := *base
	otherUser.UserID = 8
	if Fingerprint(base) == Fingerprint(&otherUser) {
		t.Error("different users produced the same fingerprint")
	}

	otherGoal := *base
	otherGoal.Goal = models.GoalEndurance
	if Fingerprint(base) == Fingerprint(&otherGoal) {
		t.Error("different goals produced the same fingerprint")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewResultCache(time.Minute, 16)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%20)
				c.Put(key, testPlan(key))
				c.Get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if c.Len() > 16 {
		t.Errorf("Len = %d, want <= capacity 16", c.Len())
	}
}
