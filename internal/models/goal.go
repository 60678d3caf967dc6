// ABOUTME: Goal and ProgressIncrement models for measurable targets.
// ABOUTME: Progress is an append-only increment log; completion is sticky once reached.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
)

// GoalType classifies what a goal's target value measures.
type GoalType string

const (
	GoalCount    GoalType = "COUNT"    // e.g. read 12 books
	GoalStreak   GoalType = "STREAK"   // e.g. 30-day meditation streak
	GoalDuration GoalType = "DURATION" // e.g. 6000 minutes of exercise
)

// IsValidGoalType checks if a string is a known goal type.
func IsValidGoalType(s string) bool {
	switch GoalType(s) {
	case GoalCount, GoalStreak, GoalDuration:
		return true
	}
	return false
}

// Goal is a measurable target a user sets for themselves.
type Goal struct {
	ID           uuid.UUID
	OwnerID      string
	Title        string
	Description  *string
	Type         GoalType
	TargetValue  int
	CurrentValue int
	Unit         *string
	Icon         string
	Deadline     *clock.Day
	Completed    bool
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// NewGoal creates a new Goal with generated UUID and current timestamp.
func NewGoal(ownerID, title string, goalType GoalType, target int) *Goal {
	return &Goal{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Type:        goalType,
		TargetValue: target,
		Icon:        "🎯",
		CreatedAt:   time.Now(),
	}
}

// WithDescription sets the goal description.
func (g *Goal) WithDescription(desc string) *Goal {
	g.Description = &desc
	return g
}

// WithUnit sets the unit of measurement (books, km, minutes, ...).
func (g *Goal) WithUnit(unit string) *Goal {
	g.Unit = &unit
	return g
}

// WithIcon sets the display icon.
func (g *Goal) WithIcon(icon string) *Goal {
	g.Icon = icon
	return g
}

// WithDeadline sets an optional deadline date.
func (g *Goal) WithDeadline(d clock.Day) *Goal {
	g.Deadline = &d
	return g
}

// Validate checks required fields before any write.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return apperror.Invalid("goal title is required")
	}
	if g.OwnerID == "" {
		return apperror.Invalid("owner id is required")
	}
	if g.TargetValue <= 0 {
		return apperror.Invalid("goal target must be positive")
	}
	if !IsValidGoalType(string(g.Type)) {
		return apperror.Invalid("unknown goal type: " + string(g.Type))
	}
	return nil
}

// ProgressPercentage returns current progress clamped to [0,100] for
// display. Computed fresh on each read; never stored.
func (g *Goal) ProgressPercentage() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	pct := float64(g.CurrentValue) * 100 / float64(g.TargetValue)
	if pct > 100 {
		return 100
	}
	return pct
}

// DaysRemaining returns whole days until the deadline as seen from today.
// Negative means overdue. Nil when the goal has no deadline.
func (g *Goal) DaysRemaining(today clock.Day) *int {
	if g.Deadline == nil {
		return nil
	}
	n := g.Deadline.Sub(today)
	return &n
}

// Overdue reports whether the deadline has passed without completion.
func (g *Goal) Overdue(today clock.Day) bool {
	if g.Deadline == nil || g.Completed {
		return false
	}
	return today.After(*g.Deadline)
}

// ProgressIncrement is one applied delta in a goal's append-only progress
// log. Deltas are always positive; decrements are not supported.
type ProgressIncrement struct {
	ID        uuid.UUID
	GoalID    uuid.UUID
	Delta     int
	AppliedAt time.Time
}

// NewProgressIncrement creates an increment for the given goal.
func NewProgressIncrement(goalID uuid.UUID, delta int) *ProgressIncrement {
	return &ProgressIncrement{
		ID:        uuid.New(),
		GoalID:    goalID,
		Delta:     delta,
		AppliedAt: time.Now(),
	}
}
