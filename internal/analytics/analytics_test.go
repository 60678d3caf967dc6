// ABOUTME: Tests for the analytics aggregator.
// ABOUTME: Covers trend rate math, weekly bucketing, heatmap quantization, and calendar views.
package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
)

func setupAggregator(t *testing.T, today clock.Day) (*Aggregator, storage.Repository) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewAggregator(db, clock.NewFixed(today)), db
}

// addHabit creates a habit whose CreatedAt predates the analytics window,
// so it counts toward every day's denominator.
func addHabit(t *testing.T, repo storage.Repository, owner, name string, createdOn clock.Day) *models.Habit {
	t.Helper()
	h := models.NewHabit(owner, name)
	h.CreatedAt = createdOn.Time()
	if err := repo.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	return h
}

func mustCheckIn(t *testing.T, repo storage.Repository, habitID uuid.UUID, days ...clock.Day) {
	t.Helper()
	for _, day := range days {
		if err := repo.AppendCheckIn(models.NewCheckIn(habitID, day)); err != nil {
			t.Fatalf("AppendCheckIn(%s) failed: %v", day, err)
		}
	}
}

func TestDailyTrendsRates(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	a, repo := setupAggregator(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	h1 := addHabit(t, repo, "owner-1", "Read", origin)
	h2 := addHabit(t, repo, "owner-1", "Run", origin)

	// Both habits on the 14th, one on the 15th, nothing on the 13th.
	mustCheckIn(t, repo, h1.ID, today.AddDays(-1), today)
	mustCheckIn(t, repo, h2.ID, today.AddDays(-1))

	trends, err := a.Trends("owner-1", "daily", 3)
	if err != nil {
		t.Fatalf("Trends failed: %v", err)
	}
	if len(trends.DataPoints) != 3 {
		t.Fatalf("want 3 points, got %d", len(trends.DataPoints))
	}

	rates := []float64{0, 100, 50}
	for i, want := range rates {
		if got := trends.DataPoints[i].CompletionRate; got != want {
			t.Errorf("point %d: want rate %v, got %v", i, want, got)
		}
	}
	if trends.TotalCheckIns != 3 {
		t.Errorf("want 3 total check-ins, got %d", trends.TotalCheckIns)
	}
	// mean of (0, 100, 50) = 50
	if trends.AverageCompletionRate != 50 {
		t.Errorf("want average 50, got %d", trends.AverageCompletionRate)
	}
}

func TestDailyTrendsZeroHabits(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	a, _ := setupAggregator(t, today)

	trends, err := a.Trends("owner-1", "daily", 7)
	if err != nil {
		t.Fatalf("Trends failed: %v", err)
	}
	for _, p := range trends.DataPoints {
		if p.CompletionRate != 0 || p.TotalHabits != 0 {
			t.Errorf("empty account should yield zero rates, got %+v", p)
		}
	}
}

func TestDailyTrendsExcludesHabitBeforeCreation(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	a, repo := setupAggregator(t, today)

	// Habit created mid-window: earlier days have no denominator.
	h := addHabit(t, repo, "owner-1", "Read", today.AddDays(-1))
	mustCheckIn(t, repo, h.ID, today.AddDays(-1), today)

	trends, err := a.Trends("owner-1", "daily", 3)
	if err != nil {
		t.Fatalf("Trends failed: %v", err)
	}
	if got := trends.DataPoints[0].TotalHabits; got != 0 {
		t.Errorf("day before creation should have 0 habits, got %d", got)
	}
	if got := trends.DataPoints[1].CompletionRate; got != 100 {
		t.Errorf("creation day should be 100%%, got %v", got)
	}
}

func TestWeeklyTrendsBucketsOnSunday(t *testing.T) {
	// 2024-06-15 is a Saturday; a 10-day window spans Thu Jun 6 .. Sat Jun 15,
	// wrapping to a new bucket on Sunday Jun 9.
	today := clock.NewDay(2024, time.June, 15)
	a, repo := setupAggregator(t, today)

	h := addHabit(t, repo, "owner-1", "Read", clock.NewDay(2024, time.January, 1))
	mustCheckIn(t, repo, h.ID,
		clock.NewDay(2024, time.June, 7),
		clock.NewDay(2024, time.June, 9),
		clock.NewDay(2024, time.June, 10),
	)

	trends, err := a.Trends("owner-1", "weekly", 10)
	if err != nil {
		t.Fatalf("Trends failed: %v", err)
	}
	if len(trends.DataPoints) != 2 {
		t.Fatalf("want 2 weekly buckets, got %d", len(trends.DataPoints))
	}

	first, second := trends.DataPoints[0], trends.DataPoints[1]
	if first.Date != clock.NewDay(2024, time.June, 6) {
		t.Errorf("first bucket should start Jun 6, got %s", first.Date)
	}
	if second.Date != clock.NewDay(2024, time.June, 9) {
		t.Errorf("second bucket should start Sunday Jun 9, got %s", second.Date)
	}
	if first.CheckIns != 1 || second.CheckIns != 2 {
		t.Errorf("want bucket check-ins 1 and 2, got %d and %d", first.CheckIns, second.CheckIns)
	}
	if second.Label != "Week 23" {
		t.Errorf("want ISO week label 'Week 23', got %q", second.Label)
	}
}

func TestTrendsRejectsBadInput(t *testing.T) {
	a, _ := setupAggregator(t, clock.NewDay(2024, time.June, 15))

	if _, err := a.Trends("owner-1", "daily", 0); err == nil {
		t.Error("zero window should be rejected")
	}
	if _, err := a.Trends("owner-1", "hourly", 7); err == nil {
		t.Error("unknown period should be rejected")
	}
}

func TestHeatmapLevels(t *testing.T) {
	today := clock.NewDay(2024, time.December, 31)
	a, repo := setupAggregator(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	habits := make([]*models.Habit, 8)
	for i := range habits {
		habits[i] = addHabit(t, repo, "owner-1", "Habit", origin)
	}

	// Busiest day has 8 check-ins, so counts 1,2,4,8 land on
	// levels 1,1,2,4.
	day1 := clock.NewDay(2024, time.March, 1)
	day2 := clock.NewDay(2024, time.March, 2)
	day4 := clock.NewDay(2024, time.March, 3)
	day8 := clock.NewDay(2024, time.March, 4)
	mustCheckIn(t, repo, habits[0].ID, day1, day2, day4, day8)
	mustCheckIn(t, repo, habits[1].ID, day2, day4, day8)
	for _, h := range habits[2:4] {
		mustCheckIn(t, repo, h.ID, day4, day8)
	}
	for _, h := range habits[4:] {
		mustCheckIn(t, repo, h.ID, day8)
	}

	hm, err := a.Heatmap("owner-1", 2024)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if len(hm.Cells) != 366 {
		t.Fatalf("2024 should have 366 cells, got %d", len(hm.Cells))
	}

	levels := make(map[clock.Day]int)
	for _, c := range hm.Cells {
		levels[c.Date] = c.Level
	}
	for day, want := range map[clock.Day]int{day1: 1, day2: 1, day4: 2, day8: 4} {
		if levels[day] != want {
			t.Errorf("%s: want level %d, got %d", day, want, levels[day])
		}
	}
	if levels[clock.NewDay(2024, time.March, 10)] != 0 {
		t.Error("empty day should be level 0")
	}

	if hm.DaysWithActivity != 4 {
		t.Errorf("want 4 active days, got %d", hm.DaysWithActivity)
	}
	if hm.TotalCheckIns != 15 {
		t.Errorf("want 15 total check-ins, got %d", hm.TotalCheckIns)
	}
	// habits[0] checked four consecutive days
	if hm.LongestStreak != 4 {
		t.Errorf("want longest streak 4, got %d", hm.LongestStreak)
	}
}

func TestQuantizeLevelPinsBusiestDay(t *testing.T) {
	// The busiest day must always render at level 4, whatever the maximum.
	for _, maxCount := range []int{1, 2, 3, 5, 6, 7, 11} {
		if got := quantizeLevel(maxCount, maxCount); got != 4 {
			t.Errorf("quantizeLevel(%d, %d) = %d, want 4", maxCount, maxCount, got)
		}
	}

	tests := []struct {
		count    int
		maxCount int
		want     int
	}{
		{count: 0, maxCount: 6, want: 0},
		{count: 0, maxCount: 0, want: 0},
		{count: 1, maxCount: 6, want: 1},
		{count: 2, maxCount: 6, want: 2},
		{count: 3, maxCount: 6, want: 2},
		{count: 4, maxCount: 6, want: 3},
		{count: 5, maxCount: 6, want: 4},
		{count: 1, maxCount: 1, want: 4},
	}
	for _, tt := range tests {
		if got := quantizeLevel(tt.count, tt.maxCount); got != tt.want {
			t.Errorf("quantizeLevel(%d, %d) = %d, want %d", tt.count, tt.maxCount, got, tt.want)
		}
	}
}

func TestHeatmapBusiestDayLevelSparseYear(t *testing.T) {
	today := clock.NewDay(2024, time.December, 31)
	a, repo := setupAggregator(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	h1 := addHabit(t, repo, "owner-1", "Read", origin)
	h2 := addHabit(t, repo, "owner-1", "Meditate", origin)

	// Busiest day has only 2 check-ins; it still renders at level 4.
	busy := clock.NewDay(2024, time.May, 10)
	quiet := clock.NewDay(2024, time.May, 12)
	mustCheckIn(t, repo, h1.ID, busy, quiet)
	mustCheckIn(t, repo, h2.ID, busy)

	hm, err := a.Heatmap("owner-1", 2024)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	levels := make(map[clock.Day]int)
	for _, c := range hm.Cells {
		levels[c.Date] = c.Level
	}
	if levels[busy] != 4 {
		t.Errorf("busiest day: want level 4, got %d", levels[busy])
	}
	if levels[quiet] != 2 {
		t.Errorf("half-of-max day: want level 2, got %d", levels[quiet])
	}
}

func TestHeatmapStreakSpansHabits(t *testing.T) {
	today := clock.NewDay(2024, time.December, 31)
	a, repo := setupAggregator(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	h1 := addHabit(t, repo, "owner-1", "Read", origin)
	h2 := addHabit(t, repo, "owner-1", "Meditate", origin)

	// Two habits alternating March 1-4: no single habit runs longer than
	// one day, but the account is active four days straight.
	mustCheckIn(t, repo, h1.ID,
		clock.NewDay(2024, time.March, 1),
		clock.NewDay(2024, time.March, 3))
	mustCheckIn(t, repo, h2.ID,
		clock.NewDay(2024, time.March, 2),
		clock.NewDay(2024, time.March, 4))

	hm, err := a.Heatmap("owner-1", 2024)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if hm.LongestStreak != 4 {
		t.Errorf("want longest streak 4 across habits, got %d", hm.LongestStreak)
	}
}

func TestHeatmapWeekColumns(t *testing.T) {
	a, _ := setupAggregator(t, clock.NewDay(2024, time.December, 31))

	// 2024-01-01 is a Monday, so Jan 1..6 sit in the partial column 0
	// and Sunday Jan 7 opens column 1.
	hm, err := a.Heatmap("owner-1", 2024)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}

	weeks := make(map[clock.Day]int)
	for _, c := range hm.Cells {
		weeks[c.Date] = c.Week
	}
	if got := weeks[clock.NewDay(2024, time.January, 1)]; got != 0 {
		t.Errorf("Jan 1 should be column 0, got %d", got)
	}
	if got := weeks[clock.NewDay(2024, time.January, 6)]; got != 0 {
		t.Errorf("Jan 6 should be column 0, got %d", got)
	}
	if got := weeks[clock.NewDay(2024, time.January, 7)]; got != 1 {
		t.Errorf("Sunday Jan 7 should open column 1, got %d", got)
	}
	if got := weeks[clock.NewDay(2024, time.January, 14)]; got != 2 {
		t.Errorf("Jan 14 should be column 2, got %d", got)
	}
}

func TestHeatmapEmptyYear(t *testing.T) {
	a, _ := setupAggregator(t, clock.NewDay(2024, time.June, 15))

	hm, err := a.Heatmap("owner-1", 2023)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	for _, c := range hm.Cells {
		if c.Level != 0 || c.Count != 0 {
			t.Fatalf("empty year should be all zeros, got %+v", c)
		}
	}
	if hm.LongestStreak != 0 || hm.DaysWithActivity != 0 {
		t.Errorf("empty year stats should be zero: %+v", hm)
	}
}

func TestPerHabitSortsByRate(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	a, repo := setupAggregator(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	slacker := addHabit(t, repo, "owner-1", "Slacker", origin)
	steady := addHabit(t, repo, "owner-1", "Steady", origin)

	mustCheckIn(t, repo, slacker.ID, today.AddDays(-5))
	mustCheckIn(t, repo, steady.ID, today.AddDays(-2), today.AddDays(-1), today)

	results, err := a.PerHabit("owner-1", 10)
	if err != nil {
		t.Fatalf("PerHabit failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 habits, got %d", len(results))
	}
	if results[0].HabitName != "Steady" {
		t.Errorf("highest rate should sort first, got %q", results[0].HabitName)
	}
	if results[0].CompletionRate != 30 {
		t.Errorf("want 30%% over 10 days, got %v", results[0].CompletionRate)
	}
	if results[0].CurrentStreak != 3 {
		t.Errorf("want current streak 3, got %d", results[0].CurrentStreak)
	}
}

func TestPerHabitWindowExcludesOldCheckIns(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	a, repo := setupAggregator(t, today)

	h := addHabit(t, repo, "owner-1", "Read", clock.NewDay(2024, time.January, 1))
	mustCheckIn(t, repo, h.ID, today.AddDays(-30), today)

	results, err := a.PerHabit("owner-1", 7)
	if err != nil {
		t.Fatalf("PerHabit failed: %v", err)
	}
	if results[0].TotalCheckIns != 1 {
		t.Errorf("old check-in should fall outside window, got %d", results[0].TotalCheckIns)
	}
	// Longest streak still considers full history.
	if results[0].LongestStreak != 1 {
		t.Errorf("want longest streak 1, got %d", results[0].LongestStreak)
	}
}

func TestMonthCalendar(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)
	a, repo := setupAggregator(t, today)

	origin := clock.NewDay(2024, time.January, 1)
	h1 := addHabit(t, repo, "owner-1", "Read", origin)
	h2 := addHabit(t, repo, "owner-1", "Run", origin)

	mustCheckIn(t, repo, h1.ID, clock.NewDay(2024, time.June, 1), clock.NewDay(2024, time.June, 2))
	mustCheckIn(t, repo, h2.ID, clock.NewDay(2024, time.June, 2))
	// Outside the requested month.
	mustCheckIn(t, repo, h1.ID, clock.NewDay(2024, time.May, 31))

	month, err := a.Month("owner-1", 2024, time.June)
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	if month.TotalDaysInMonth != 30 {
		t.Errorf("June has 30 days, got %d", month.TotalDaysInMonth)
	}
	if month.DaysWithCheckIns != 2 {
		t.Errorf("want 2 checked days, got %d", month.DaysWithCheckIns)
	}
	if len(month.CheckedDates) != 2 || month.CheckedDates[0] != clock.NewDay(2024, time.June, 1) {
		t.Errorf("unexpected checked dates: %v", month.CheckedDates)
	}
	// 2 of 30 days -> 6.7%
	if month.MonthlyCompletionRate != 6.7 {
		t.Errorf("want 6.7%%, got %v", month.MonthlyCompletionRate)
	}
	for _, hm := range month.Habits {
		if hm.HabitName == "Read" && hm.CheckInCount != 2 {
			t.Errorf("Read should have 2 check-ins in June, got %d", hm.CheckInCount)
		}
	}
}

func TestMonthRejectsBadMonth(t *testing.T) {
	a, _ := setupAggregator(t, clock.NewDay(2024, time.June, 15))

	if _, err := a.Month("owner-1", 2024, time.Month(13)); err == nil {
		t.Error("month 13 should be rejected")
	}
}
