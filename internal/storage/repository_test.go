// ABOUTME: Tests for the SQLite Repository implementation.
// ABOUTME: Verifies habit/check-in/goal/unlock operations and owner scoping.
package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateAndGetHabit(t *testing.T) {
	db := setupTestDB(t)

	h := models.NewHabit("owner-1", "Read").WithDescription("20 pages a day")
	if err := db.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	got, err := db.GetHabit("owner-1", h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.ID != h.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, h.ID)
	}
	if got.Name != "Read" {
		t.Errorf("Name mismatch: got %q", got.Name)
	}
	if got.Description == nil || *got.Description != "20 pages a day" {
		t.Errorf("Description mismatch: got %v", got.Description)
	}
	if !got.Active {
		t.Error("new habit should be active")
	}
}

func TestGetHabitScopedByOwner(t *testing.T) {
	db := setupTestDB(t)

	h := models.NewHabit("owner-1", "Read")
	if err := db.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	// Another owner must not see it.
	_, err := db.GetHabit("owner-2", h.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("cross-owner read should be ErrNotFound, got %v", err)
	}
}

func TestGetHabitNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetHabit("owner-1", uuid.New())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestListHabitsActiveFilter(t *testing.T) {
	db := setupTestDB(t)

	h1 := models.NewHabit("owner-1", "Read")
	h2 := models.NewHabit("owner-1", "Run")
	for _, h := range []*models.Habit{h1, h2} {
		if err := db.CreateHabit(h); err != nil {
			t.Fatalf("CreateHabit failed: %v", err)
		}
	}
	if err := db.ArchiveHabit("owner-1", h2.ID); err != nil {
		t.Fatalf("ArchiveHabit failed: %v", err)
	}

	active, err := db.ListHabits("owner-1", true)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != h1.ID {
		t.Errorf("expected only the active habit, got %d", len(active))
	}

	all, err := db.ListHabits("owner-1", false)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 habits, got %d", len(all))
	}
}

func TestResolveHabitIDByPrefix(t *testing.T) {
	db := setupTestDB(t)

	h := models.NewHabit("owner-1", "Read")
	if err := db.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	id, err := db.ResolveHabitID("owner-1", h.ID.String()[:8])
	if err != nil {
		t.Fatalf("ResolveHabitID failed: %v", err)
	}
	if id != h.ID {
		t.Errorf("resolved %v, want %v", id, h.ID)
	}

	if _, err := db.ResolveHabitID("owner-1", "zzzzzzzz"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown prefix should be ErrNotFound, got %v", err)
	}
}

func TestAppendCheckInDuplicateDay(t *testing.T) {
	db := setupTestDB(t)

	h := models.NewHabit("owner-1", "Read")
	if err := db.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	day := clock.NewDay(2024, time.January, 5)
	if err := db.AppendCheckIn(models.NewCheckIn(h.ID, day)); err != nil {
		t.Fatalf("AppendCheckIn failed: %v", err)
	}

	err := db.AppendCheckIn(models.NewCheckIn(h.ID, day))
	if !errors.Is(err, apperror.ErrAlreadyCheckedIn) {
		t.Errorf("duplicate day should be ErrAlreadyCheckedIn, got %v", err)
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("ErrAlreadyCheckedIn should also match ErrConflict")
	}

	// Exactly one record stored.
	checkIns, err := db.ListCheckIns(h.ID, clock.Day{}, clock.Day{})
	if err != nil {
		t.Fatalf("ListCheckIns failed: %v", err)
	}
	if len(checkIns) != 1 {
		t.Errorf("expected 1 check-in, got %d", len(checkIns))
	}
}

func TestListCheckInsRangeAndOrder(t *testing.T) {
	db := setupTestDB(t)

	h := models.NewHabit("owner-1", "Read")
	if err := db.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	days := []clock.Day{
		clock.NewDay(2024, time.January, 3),
		clock.NewDay(2024, time.January, 1),
		clock.NewDay(2024, time.January, 5),
	}
	for _, day := range days {
		if err := db.AppendCheckIn(models.NewCheckIn(h.ID, day)); err != nil {
			t.Fatalf("AppendCheckIn failed: %v", err)
		}
	}

	got, err := db.ListCheckIns(h.ID,
		clock.NewDay(2024, time.January, 2), clock.NewDay(2024, time.January, 5))
	if err != nil {
		t.Fatalf("ListCheckIns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 check-ins in range, got %d", len(got))
	}
	if got[0].Day.Dom != 3 || got[1].Day.Dom != 5 {
		t.Errorf("expected ascending day order, got %v then %v", got[0].Day, got[1].Day)
	}
}

func TestListOwnerCheckInsJoinsHabits(t *testing.T) {
	db := setupTestDB(t)

	mine := models.NewHabit("owner-1", "Read")
	theirs := models.NewHabit("owner-2", "Run")
	for _, h := range []*models.Habit{mine, theirs} {
		if err := db.CreateHabit(h); err != nil {
			t.Fatalf("CreateHabit failed: %v", err)
		}
	}

	day := clock.NewDay(2024, time.March, 1)
	if err := db.AppendCheckIn(models.NewCheckIn(mine.ID, day)); err != nil {
		t.Fatalf("AppendCheckIn failed: %v", err)
	}
	if err := db.AppendCheckIn(models.NewCheckIn(theirs.ID, day)); err != nil {
		t.Fatalf("AppendCheckIn failed: %v", err)
	}

	got, err := db.ListOwnerCheckIns("owner-1", clock.Day{}, clock.Day{})
	if err != nil {
		t.Fatalf("ListOwnerCheckIns failed: %v", err)
	}
	if len(got) != 1 || got[0].HabitID != mine.ID {
		t.Errorf("owner scope leaked: got %d check-ins", len(got))
	}
}

func TestGoalCurrentValueFromIncrements(t *testing.T) {
	db := setupTestDB(t)

	g := models.NewGoal("owner-1", "Read 12 books", models.GoalCount, 12).WithUnit("books")
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.AppendProgress(models.NewProgressIncrement(g.ID, 2)); err != nil {
			t.Fatalf("AppendProgress failed: %v", err)
		}
	}

	got, err := db.GetGoal("owner-1", g.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if got.CurrentValue != 6 {
		t.Errorf("CurrentValue: got %d, want 6", got.CurrentValue)
	}
	if got.Unit == nil || *got.Unit != "books" {
		t.Errorf("Unit mismatch: got %v", got.Unit)
	}
}

func TestGoalDeadlineRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	deadline := clock.NewDay(2024, time.December, 31)
	g := models.NewGoal("owner-1", "Read", models.GoalCount, 12).WithDeadline(deadline)
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	got, err := db.GetGoal("owner-1", g.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if got.Deadline == nil || *got.Deadline != deadline {
		t.Errorf("Deadline mismatch: got %v, want %v", got.Deadline, deadline)
	}
}

func TestDeleteGoalRemovesIncrements(t *testing.T) {
	db := setupTestDB(t)

	g := models.NewGoal("owner-1", "Read", models.GoalCount, 12)
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if err := db.AppendProgress(models.NewProgressIncrement(g.ID, 3)); err != nil {
		t.Fatalf("AppendProgress failed: %v", err)
	}

	if err := db.DeleteGoal("owner-1", g.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}

	if _, err := db.GetGoal("owner-1", g.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("want ErrNotFound after delete, got %v", err)
	}
	incs, err := db.ListProgress(g.ID)
	if err != nil {
		t.Fatalf("ListProgress failed: %v", err)
	}
	if len(incs) != 0 {
		t.Errorf("increments should cascade on delete, got %d", len(incs))
	}
}

func TestRecordUnlockIdempotent(t *testing.T) {
	db := setupTestDB(t)

	first := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	u := &models.AchievementUnlock{OwnerID: "owner-1", AchievementID: "week_warrior", UnlockedAt: first}
	if err := db.RecordUnlock(u); err != nil {
		t.Fatalf("RecordUnlock failed: %v", err)
	}

	// Second record with a later timestamp is ignored.
	later := &models.AchievementUnlock{OwnerID: "owner-1", AchievementID: "week_warrior", UnlockedAt: first.AddDate(0, 0, 5)}
	if err := db.RecordUnlock(later); err != nil {
		t.Fatalf("RecordUnlock (repeat) failed: %v", err)
	}

	unlocks, err := db.ListUnlocks("owner-1")
	if err != nil {
		t.Fatalf("ListUnlocks failed: %v", err)
	}
	if len(unlocks) != 1 {
		t.Fatalf("expected 1 unlock, got %d", len(unlocks))
	}
	if !unlocks[0].UnlockedAt.Equal(first) {
		t.Errorf("original unlock timestamp should survive: got %v", unlocks[0].UnlockedAt)
	}
}

func TestGetAllData(t *testing.T) {
	db := setupTestDB(t)

	h := models.NewHabit("owner-1", "Read")
	if err := db.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if err := db.AppendCheckIn(models.NewCheckIn(h.ID, clock.NewDay(2024, time.May, 1))); err != nil {
		t.Fatalf("AppendCheckIn failed: %v", err)
	}
	g := models.NewGoal("owner-1", "Read 12 books", models.GoalCount, 12)
	if err := db.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if err := db.AppendProgress(models.NewProgressIncrement(g.ID, 1)); err != nil {
		t.Fatalf("AppendProgress failed: %v", err)
	}

	data, err := db.GetAllData("owner-1")
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	if len(data.Habits) != 1 || len(data.CheckIns) != 1 || len(data.Goals) != 1 || len(data.Increments) != 1 {
		t.Errorf("unexpected export counts: %d habits, %d check-ins, %d goals, %d increments",
			len(data.Habits), len(data.CheckIns), len(data.Goals), len(data.Increments))
	}
}
