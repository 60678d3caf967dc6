// ABOUTME: Repository interface for the habit event store.
// ABOUTME: Defines the owner-scoped contract the engines consume; storage mechanics stay behind it.
package storage

import (
	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

// Repository defines the storage interface for habit data. Every method is
// scoped by owner; no call ever aggregates across owners. This interface
// allows swapping implementations (SQLite, Charm KV, test fakes).
type Repository interface {
	// Habit operations
	CreateHabit(h *models.Habit) error
	GetHabit(ownerID string, id uuid.UUID) (*models.Habit, error)
	ListHabits(ownerID string, activeOnly bool) ([]*models.Habit, error)
	UpdateHabit(h *models.Habit) error
	ArchiveHabit(ownerID string, id uuid.UUID) error
	ResolveHabitID(ownerID, idOrPrefix string) (uuid.UUID, error)

	// Check-in event log (append-only)
	AppendCheckIn(c *models.CheckIn) error
	HasCheckIn(habitID uuid.UUID, day clock.Day) (bool, error)
	ListCheckIns(habitID uuid.UUID, from, to clock.Day) ([]*models.CheckIn, error)
	ListOwnerCheckIns(ownerID string, from, to clock.Day) ([]*models.CheckIn, error)

	// Goal operations
	CreateGoal(g *models.Goal) error
	GetGoal(ownerID string, id uuid.UUID) (*models.Goal, error)
	ListGoals(ownerID string) ([]*models.Goal, error)
	UpdateGoal(g *models.Goal) error
	DeleteGoal(ownerID string, id uuid.UUID) error
	ResolveGoalID(ownerID, idOrPrefix string) (uuid.UUID, error)

	// Goal progress log (append-only)
	AppendProgress(p *models.ProgressIncrement) error
	ListProgress(goalID uuid.UUID) ([]*models.ProgressIncrement, error)

	// Achievement unlocks (sticky facts)
	RecordUnlock(u *models.AchievementUnlock) error
	ListUnlocks(ownerID string) ([]*models.AchievementUnlock, error)

	// Export
	GetAllData(ownerID string) (*ExportData, error)

	// Lifecycle
	Close() error
}

// ExportData bundles everything an owner has recorded, for JSON export.
type ExportData struct {
	Habits     []*models.Habit             `json:"habits"`
	CheckIns   []*models.CheckIn           `json:"check_ins"`
	Goals      []*models.Goal              `json:"goals"`
	Increments []*models.ProgressIncrement `json:"progress_increments"`
	Unlocks    []*models.AchievementUnlock `json:"achievement_unlocks"`
}
