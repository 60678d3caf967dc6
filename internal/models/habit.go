// ABOUTME: Habit, CheckIn, and derived HabitState models.
// ABOUTME: Check-ins are keyed by calendar day; streak state is always recomputed, never stored.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
)

// HabitFrequency is how often a habit expects a check-in.
type HabitFrequency string

const (
	FrequencyDaily HabitFrequency = "DAILY"
)

// Habit represents a recurring habit owned by a single user.
type Habit struct {
	ID          uuid.UUID
	OwnerID     string
	Name        string
	Description *string
	Icon        string
	Frequency   HabitFrequency
	Active      bool
	CreatedAt   time.Time
}

// NewHabit creates a new Habit with generated UUID and current timestamp.
func NewHabit(ownerID, name string) *Habit {
	return &Habit{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Icon:      "✅",
		Frequency: FrequencyDaily,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// WithDescription sets the habit description.
func (h *Habit) WithDescription(desc string) *Habit {
	h.Description = &desc
	return h
}

// WithIcon sets the display icon.
func (h *Habit) WithIcon(icon string) *Habit {
	h.Icon = icon
	return h
}

// Validate checks required fields before any write.
func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return apperror.Invalid("habit name is required")
	}
	if h.OwnerID == "" {
		return apperror.Invalid("owner id is required")
	}
	return nil
}

// CheckIn records that a habit's activity occurred on a calendar day.
// At most one exists per (habit, day).
type CheckIn struct {
	ID        uuid.UUID
	HabitID   uuid.UUID
	Day       clock.Day
	Notes     *string
	CreatedAt time.Time
}

// NewCheckIn creates a CheckIn for the given habit and day.
func NewCheckIn(habitID uuid.UUID, day clock.Day) *CheckIn {
	return &CheckIn{
		ID:        uuid.New(),
		HabitID:   habitID,
		Day:       day,
		CreatedAt: time.Now(),
	}
}

// WithNotes sets notes on the check-in.
func (c *CheckIn) WithNotes(notes string) *CheckIn {
	c.Notes = &notes
	return c
}

// HabitState is derived streak state for one habit. It is recomputed from
// check-in history on every read.
type HabitState struct {
	CurrentStreak  int
	LongestStreak  int
	TotalCheckIns  int
	CheckedInToday bool
	LastCheckIn    clock.Day // zero when no check-ins exist
}
