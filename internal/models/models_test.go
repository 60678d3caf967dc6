// ABOUTME: Tests for habit, goal, and achievement model validation and derivations.
// ABOUTME: Covers percentage clamping, deadline math, and validation failures.
package models

import (
	"errors"
	"testing"
	"time"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
)

func TestHabitValidate(t *testing.T) {
	h := NewHabit("owner-1", "Read")
	if err := h.Validate(); err != nil {
		t.Fatalf("valid habit rejected: %v", err)
	}
	if h.Frequency != FrequencyDaily {
		t.Errorf("default frequency: got %s, want DAILY", h.Frequency)
	}
	if h.Icon == "" {
		t.Error("expected default icon")
	}

	bad := NewHabit("owner-1", "   ")
	if err := bad.Validate(); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("blank name should be ErrInvalidInput, got %v", err)
	}

	noOwner := NewHabit("", "Read")
	if err := noOwner.Validate(); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("missing owner should be ErrInvalidInput, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	g := NewGoal("owner-1", "Read 12 books", GoalCount, 12)
	if err := g.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}

	cases := []*Goal{
		NewGoal("owner-1", "", GoalCount, 12),
		NewGoal("owner-1", "t", GoalCount, 0),
		NewGoal("owner-1", "t", GoalCount, -5),
		NewGoal("owner-1", "t", GoalType("BOGUS"), 12),
		NewGoal("", "t", GoalCount, 12),
	}
	for i, g := range cases {
		if err := g.Validate(); !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("case %d: want ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestGoalProgressPercentageClamped(t *testing.T) {
	g := NewGoal("o", "Read", GoalCount, 12)

	g.CurrentValue = 6
	if pct := g.ProgressPercentage(); pct != 50 {
		t.Errorf("got %.1f, want 50", pct)
	}

	// Over-achievement displays as 100, value stays uncapped.
	g.CurrentValue = 13
	if pct := g.ProgressPercentage(); pct != 100 {
		t.Errorf("got %.1f, want 100", pct)
	}
	if g.CurrentValue != 13 {
		t.Error("current value must not be clamped in storage")
	}
}

func TestGoalDaysRemaining(t *testing.T) {
	today := clock.NewDay(2024, time.June, 15)

	g := NewGoal("o", "Read", GoalCount, 12)
	if g.DaysRemaining(today) != nil {
		t.Error("no deadline should yield nil, not zero")
	}

	g.WithDeadline(clock.NewDay(2024, time.June, 20))
	if n := g.DaysRemaining(today); n == nil || *n != 5 {
		t.Errorf("got %v, want 5", n)
	}

	g.WithDeadline(clock.NewDay(2024, time.June, 10))
	if n := g.DaysRemaining(today); n == nil || *n != -5 {
		t.Errorf("got %v, want -5", n)
	}
	if !g.Overdue(today) {
		t.Error("past deadline should be overdue")
	}

	g.Completed = true
	if g.Overdue(today) {
		t.Error("completed goal is never overdue")
	}
}

func TestAchievementProgressPercentage(t *testing.T) {
	a := Achievement{
		AchievementRule:  AchievementRule{ID: "week_warrior", Threshold: 7},
		CurrentProgress:  14,
		RequiredProgress: 7,
	}
	if pct := a.ProgressPercentage(); pct != 100 {
		t.Errorf("got %.1f, want 100 (clamped)", pct)
	}

	a.CurrentProgress = 3
	want := float64(3) * 100 / 7
	if pct := a.ProgressPercentage(); pct != want {
		t.Errorf("got %.2f, want %.2f", pct, want)
	}
}

func TestDefaultRulesUseKnownMetrics(t *testing.T) {
	known := map[string]bool{
		MetricLongestStreak:  true,
		MetricTotalCheckIns:  true,
		MetricGoalsCompleted: true,
		MetricTotalHabits:    true,
		MetricPerfectDay:     true,
	}
	seen := map[string]bool{}
	for _, r := range DefaultAchievementRules {
		if !known[r.Metric] {
			t.Errorf("rule %s references unknown metric %q", r.ID, r.Metric)
		}
		if seen[r.ID] {
			t.Errorf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true
		if r.Threshold <= 0 {
			t.Errorf("rule %s has non-positive threshold", r.ID)
		}
	}
}
