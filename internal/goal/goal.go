// ABOUTME: Goal Engine: lifecycle, progress increments, and completion detection.
// ABOUTME: Completion is sticky; progress is an append-only log summed on read.
package goal

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
)

// Engine manages goals and their progress.
type Engine struct {
	repo storage.Repository
	clk  *clock.Clock

	// Serializes increment-then-complete per owner so two racing
	// increments cannot both skip the completion write.
	mu sync.Mutex
}

// NewEngine creates a goal engine over the given store and clock.
func NewEngine(repo storage.Repository, clk *clock.Clock) *Engine {
	return &Engine{repo: repo, clk: clk}
}

// Create validates and stores a new goal.
func (e *Engine) Create(g *models.Goal) (*models.Goal, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := e.repo.CreateGoal(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Get returns one of the owner's goals with derived progress fields.
func (e *Engine) Get(ownerID string, goalID uuid.UUID) (*models.Goal, error) {
	return e.repo.GetGoal(ownerID, goalID)
}

// List returns the owner's goals, newest first.
func (e *Engine) List(ownerID string) ([]*models.Goal, error) {
	return e.repo.ListGoals(ownerID)
}

// IncrementProgress applies a positive delta to a goal and recomputes
// completion. Increments on an already-completed goal are accepted and count
// toward over-achievement; completed never reverts.
func (e *Engine) IncrementProgress(ownerID string, goalID uuid.UUID, delta int) (*models.Goal, error) {
	if delta <= 0 {
		return nil, apperror.Invalid(fmt.Sprintf("progress delta must be positive, got %d", delta))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.repo.GetGoal(ownerID, goalID)
	if err != nil {
		return nil, err
	}

	if err := e.repo.AppendProgress(models.NewProgressIncrement(g.ID, delta)); err != nil {
		return nil, err
	}

	g.CurrentValue += delta
	if g.CurrentValue >= g.TargetValue && !g.Completed {
		g.Completed = true
		now := e.clk.Now()
		g.CompletedAt = &now
		if err := e.repo.UpdateGoal(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Update persists edits to a goal's descriptive fields. Target changes are
// validated; completion state is recomputed against the new target but never
// reverts once set.
func (e *Engine) Update(g *models.Goal) (*models.Goal, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	current, err := e.repo.GetGoal(g.OwnerID, g.ID)
	if err != nil {
		return nil, err
	}

	g.CurrentValue = current.CurrentValue
	g.Completed = current.Completed
	g.CompletedAt = current.CompletedAt
	if !g.Completed && g.CurrentValue >= g.TargetValue {
		g.Completed = true
		now := e.clk.Now()
		g.CompletedAt = &now
	}

	if err := e.repo.UpdateGoal(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes a goal and its increment log.
func (e *Engine) Delete(ownerID string, goalID uuid.UUID) error {
	return e.repo.DeleteGoal(ownerID, goalID)
}

// Stats summarizes an owner's goals.
type Stats struct {
	TotalGoals        int
	CompletedGoals    int
	InProgressGoals   int
	UpcomingDeadlines int
	AverageProgress   float64
}

// GetStats computes goal statistics for the owner. Upcoming deadlines are
// incomplete goals due within the next 7 days.
func (e *Engine) GetStats(ownerID string) (*Stats, error) {
	goals, err := e.repo.ListGoals(ownerID)
	if err != nil {
		return nil, err
	}

	today := e.clk.Today()
	horizon := today.AddDays(7)

	stats := &Stats{TotalGoals: len(goals)}
	var progressSum float64
	var inProgress int
	for _, g := range goals {
		if g.Completed {
			stats.CompletedGoals++
			continue
		}
		inProgress++
		progressSum += g.ProgressPercentage()
		if g.Deadline != nil && !g.Deadline.Before(today) && !g.Deadline.After(horizon) {
			stats.UpcomingDeadlines++
		}
	}
	stats.InProgressGoals = inProgress
	if inProgress > 0 {
		stats.AverageProgress = roundTenth(progressSum / float64(inProgress))
	}
	return stats, nil
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
