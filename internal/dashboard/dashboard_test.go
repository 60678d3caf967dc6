// ABOUTME: Tests for the dashboard composer.
// ABOUTME: Covers summary math, graceful degradation, weekly view, and the leaderboard.
package dashboard

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
)

func setupComposer(t *testing.T, today clock.Day) (*Composer, storage.Repository) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewComposer(db, clock.NewFixed(today), nil), db
}

func newBackdatedHabit(t *testing.T, repo storage.Repository, owner, name string, createdOn clock.Day) *models.Habit {
	t.Helper()
	h := models.NewHabit(owner, name)
	h.CreatedAt = createdOn.Time()
	if err := repo.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	return h
}

func TestSummarize(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	c, repo := setupComposer(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	read := newBackdatedHabit(t, repo, "owner-1", "Read", origin)
	run := newBackdatedHabit(t, repo, "owner-1", "Run", origin)

	// Read: 3-day streak ending today. Run: unchecked today.
	for _, d := range []clock.Day{today.AddDays(-2), today.AddDays(-1), today} {
		if err := repo.AppendCheckIn(models.NewCheckIn(read.ID, d)); err != nil {
			t.Fatalf("AppendCheckIn failed: %v", err)
		}
	}
	if err := repo.AppendCheckIn(models.NewCheckIn(run.ID, today.AddDays(-1))); err != nil {
		t.Fatalf("AppendCheckIn failed: %v", err)
	}

	g := models.NewGoal("owner-1", "Read 12 books", models.GoalCount, 12)
	if err := repo.CreateGoal(g); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	s, err := c.Summarize("owner-1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.TodayProgress == nil || *s.TodayProgress != 50 {
		t.Errorf("want todayProgress 50, got %v", s.TodayProgress)
	}
	if *s.CompletedToday != 1 || *s.RemainingToday != 1 {
		t.Errorf("want 1 completed / 1 remaining, got %d / %d", *s.CompletedToday, *s.RemainingToday)
	}
	if *s.LongestStreak != 3 {
		t.Errorf("want longest streak 3, got %d", *s.LongestStreak)
	}
	if *s.TotalCheckIns != 4 {
		t.Errorf("want 4 total check-ins, got %d", *s.TotalCheckIns)
	}
	if *s.DaysActive != 3 {
		t.Errorf("want 3 active days, got %d", *s.DaysActive)
	}
	if *s.ActiveGoals != 1 {
		t.Errorf("want 1 active goal, got %d", *s.ActiveGoals)
	}
	if s.Motivation == "" {
		t.Error("motivation should never be empty with the static fallback")
	}
	if len(s.Degraded) != 0 {
		t.Errorf("nothing should degrade, got %v", s.Degraded)
	}
}

func TestSummarizeEmptyAccount(t *testing.T) {
	c, _ := setupComposer(t, clock.NewDay(2024, time.June, 15))

	s, err := c.Summarize("owner-1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if *s.TodayProgress != 0 || *s.ActiveGoals != 0 {
		t.Errorf("empty account should summarize to zeros: %+v", s)
	}
}

type failingGoalsRepo struct {
	storage.Repository
}

func (f *failingGoalsRepo) ListGoals(ownerID string) ([]*models.Goal, error) {
	return nil, errors.New("store unreachable")
}

func TestSummarizeDegradesGoalsSection(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	db, err := storage.Open(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := NewComposer(&failingGoalsRepo{Repository: db}, clock.NewFixed(today), nil)

	s, err := c.Summarize("owner-1")
	if err != nil {
		t.Fatalf("one failed section should not fail the summary: %v", err)
	}
	if s.ActiveGoals != nil {
		t.Error("failed goals section should be omitted")
	}
	if s.TodayProgress == nil {
		t.Error("habits section should still be present")
	}
	if len(s.Degraded) != 1 || s.Degraded[0] != "goals" {
		t.Errorf("want degraded [goals], got %v", s.Degraded)
	}
}

type brokenMotivation struct{}

func (brokenMotivation) Quote() (string, error) { return "", errors.New("generator down") }

func TestSummarizeFallsBackOnMotivationFailure(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	db, err := storage.Open(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := NewComposer(db, clock.NewFixed(today), brokenMotivation{})
	s, err := c.Summarize("owner-1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Motivation == "" {
		t.Error("broken motivation source should fall back to static quotes")
	}
	if len(s.Degraded) != 0 {
		t.Errorf("motivation failure should not mark the summary degraded, got %v", s.Degraded)
	}
}

func TestWeekly(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15) // a Saturday
	c, repo := setupComposer(t, today)

	h := newBackdatedHabit(t, repo, "owner-1", "Read", clock.NewDay(2024, time.January, 1))
	if err := repo.AppendCheckIn(models.NewCheckIn(h.ID, today)); err != nil {
		t.Fatalf("AppendCheckIn failed: %v", err)
	}

	days, err := c.Weekly("owner-1")
	if err != nil {
		t.Fatalf("Weekly failed: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("want 7 days, got %d", len(days))
	}
	last := days[6]
	if last.Date != today || last.DayName != "Sat" {
		t.Errorf("last day should be today (Sat), got %s %s", last.Date, last.DayName)
	}
	if last.Completed != 1 || last.CompletionRate != 100 {
		t.Errorf("want 1 completed at 100%%, got %d at %v", last.Completed, last.CompletionRate)
	}
	if days[0].Date != today.AddDays(-6) {
		t.Errorf("window should start 6 days back, got %s", days[0].Date)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	c, repo := setupComposer(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	cold := newBackdatedHabit(t, repo, "owner-1", "Cold", origin)
	hot := newBackdatedHabit(t, repo, "owner-1", "Hot", origin)

	if err := repo.AppendCheckIn(models.NewCheckIn(cold.ID, today.AddDays(-10))); err != nil {
		t.Fatalf("AppendCheckIn failed: %v", err)
	}
	for _, d := range []clock.Day{today.AddDays(-1), today} {
		if err := repo.AppendCheckIn(models.NewCheckIn(hot.ID, d)); err != nil {
			t.Fatalf("AppendCheckIn failed: %v", err)
		}
	}

	entries, err := c.Leaderboard("owner-1")
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].HabitName != "Hot" || entries[0].CurrentStreak != 2 {
		t.Errorf("Hot should lead with streak 2, got %+v", entries[0])
	}
}

func TestStaticQuotesRotateDaily(t *testing.T) {
	a := NewStaticQuotes(clock.NewFixed(clock.NewDay(2024, time.June, 15)))
	b := NewStaticQuotes(clock.NewFixed(clock.NewDay(2024, time.June, 16)))

	qa, _ := a.Quote()
	qb, _ := b.Quote()
	if qa == "" || qb == "" {
		t.Fatal("quotes should never be empty")
	}
	if qa == qb {
		t.Error("consecutive days should rotate the quote")
	}

	again, _ := a.Quote()
	if again != qa {
		t.Error("same day should yield the same quote")
	}
}
