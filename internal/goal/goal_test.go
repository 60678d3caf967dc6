// ABOUTME: Tests for the goal engine.
// ABOUTME: Covers validation, sticky completion, over-achievement, and deadline stats.
package goal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
)

func setupEngine(t *testing.T, today clock.Day) *Engine {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewEngine(db, clock.NewFixed(today))
}

func TestCreateRejectsInvalidGoal(t *testing.T) {
	e := setupEngine(t, clock.NewDay(2024, time.June, 15))

	_, err := e.Create(models.NewGoal("owner-1", "", models.GoalCount, 12))
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("empty title: want ErrInvalidInput, got %v", err)
	}

	_, err = e.Create(models.NewGoal("owner-1", "Read", models.GoalCount, 0))
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("zero target: want ErrInvalidInput, got %v", err)
	}
}

func TestIncrementCompletesAtTarget(t *testing.T) {
	e := setupEngine(t, clock.NewDay(2024, time.June, 15))

	g, err := e.Create(models.NewGoal("owner-1", "Read 12 books", models.GoalCount, 12))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Twelve increments of 1: completed flips exactly on the 12th.
	for i := 1; i <= 12; i++ {
		g, err = e.IncrementProgress("owner-1", g.ID, 1)
		if err != nil {
			t.Fatalf("increment %d failed: %v", i, err)
		}
		wantCompleted := i >= 12
		if g.Completed != wantCompleted {
			t.Errorf("after %d increments: completed=%v, want %v", i, g.Completed, wantCompleted)
		}
	}
	if g.CompletedAt == nil {
		t.Error("CompletedAt should be set on completion")
	}

	// A 13th increment is accepted: value uncapped, display at 100.
	g, err = e.IncrementProgress("owner-1", g.ID, 1)
	if err != nil {
		t.Fatalf("over-achievement increment failed: %v", err)
	}
	if !g.Completed {
		t.Error("completed must stay true")
	}
	if g.CurrentValue != 13 {
		t.Errorf("CurrentValue: got %d, want 13", g.CurrentValue)
	}
	if g.ProgressPercentage() != 100 {
		t.Errorf("displayed percentage: got %.1f, want 100", g.ProgressPercentage())
	}
}

func TestIncrementRejectsNonPositiveDelta(t *testing.T) {
	e := setupEngine(t, clock.NewDay(2024, time.June, 15))
	g, err := e.Create(models.NewGoal("owner-1", "Read", models.GoalCount, 12))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, delta := range []int{0, -1} {
		if _, err := e.IncrementProgress("owner-1", g.ID, delta); !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("delta %d: want ErrInvalidInput, got %v", delta, err)
		}
	}

	// Rejected before any write: no increments recorded.
	got, err := e.Get("owner-1", g.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CurrentValue != 0 {
		t.Errorf("invalid deltas must not be clamped and applied: value %d", got.CurrentValue)
	}
}

func TestIncrementUnknownGoal(t *testing.T) {
	e := setupEngine(t, clock.NewDay(2024, time.June, 15))
	_, err := e.IncrementProgress("owner-1", uuid.New(), 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestCompletionPersistsAcrossReads(t *testing.T) {
	e := setupEngine(t, clock.NewDay(2024, time.June, 15))
	g, err := e.Create(models.NewGoal("owner-1", "Read", models.GoalCount, 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.IncrementProgress("owner-1", g.ID, 5); err != nil {
		t.Fatalf("IncrementProgress failed: %v", err)
	}

	got, err := e.Get("owner-1", g.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Completed {
		t.Error("completed should persist")
	}
	if got.CurrentValue != 5 {
		t.Errorf("CurrentValue: got %d, want 5", got.CurrentValue)
	}
}

func TestDeleteGoal(t *testing.T) {
	e := setupEngine(t, clock.NewDay(2024, time.June, 15))
	g, err := e.Create(models.NewGoal("owner-1", "Read", models.GoalCount, 12))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := e.Delete("owner-1", g.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := e.Get("owner-1", g.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("want ErrNotFound after delete, got %v", err)
	}
	if err := e.Delete("owner-1", g.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	e := setupEngine(t, today)

	done, err := e.Create(models.NewGoal("owner-1", "Done", models.GoalCount, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.IncrementProgress("owner-1", done.ID, 1); err != nil {
		t.Fatalf("IncrementProgress failed: %v", err)
	}

	soon := models.NewGoal("owner-1", "Due soon", models.GoalCount, 10).
		WithDeadline(today.AddDays(3))
	if _, err := e.Create(soon); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.IncrementProgress("owner-1", soon.ID, 5); err != nil {
		t.Fatalf("IncrementProgress failed: %v", err)
	}

	far := models.NewGoal("owner-1", "Due later", models.GoalCount, 10).
		WithDeadline(today.AddDays(30))
	if _, err := e.Create(far); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stats, err := e.GetStats("owner-1")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalGoals != 3 || stats.CompletedGoals != 1 || stats.InProgressGoals != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.UpcomingDeadlines != 1 {
		t.Errorf("UpcomingDeadlines: got %d, want 1", stats.UpcomingDeadlines)
	}
	// (50 + 0) / 2
	if stats.AverageProgress != 25 {
		t.Errorf("AverageProgress: got %.1f, want 25", stats.AverageProgress)
	}
}
