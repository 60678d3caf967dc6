// ABOUTME: Streak Engine: check-in writes and derived streak state.
// ABOUTME: Streaks are recomputed from the check-in log on every read; nothing incremental is stored.
package streak

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
)

// Engine computes streak state and performs check-ins.
type Engine struct {
	repo storage.Repository
	clk  *clock.Clock

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewEngine creates a streak engine over the given store and clock.
func NewEngine(repo storage.Repository, clk *clock.Clock) *Engine {
	return &Engine{
		repo:  repo,
		clk:   clk,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// habitLock returns the mutex serializing check-ins for one habit. The
// unique (habit, day) index in storage is the backstop; the lock keeps the
// exists-then-insert sequence atomic so the loser of a race sees a clean
// ErrAlreadyCheckedIn instead of a constraint error.
func (e *Engine) habitLock(habitID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[habitID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[habitID] = l
	}
	return l
}

// CheckIn appends a check-in for the habit on the given day. A zero day
// means today in the engine's timezone. Duplicate check-ins return the
// current state together with ErrAlreadyCheckedIn so callers can show
// feedback without treating the request as failed.
func (e *Engine) CheckIn(ownerID string, habitID uuid.UUID, day clock.Day, notes string) (*models.HabitState, error) {
	habit, err := e.repo.GetHabit(ownerID, habitID)
	if err != nil {
		return nil, err
	}

	today := e.clk.Today()
	if day.IsZero() {
		day = today
	}
	if day.After(today) {
		return nil, apperror.Invalid("cannot check in for a future day " + day.String())
	}

	lock := e.habitLock(habit.ID)
	lock.Lock()
	defer lock.Unlock()

	exists, err := e.repo.HasCheckIn(habit.ID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		state, serr := e.ComputeState(ownerID, habitID)
		if serr != nil {
			return nil, serr
		}
		return state, apperror.ErrAlreadyCheckedIn
	}

	c := models.NewCheckIn(habit.ID, day)
	if notes != "" {
		c.WithNotes(notes)
	}
	if err := e.repo.AppendCheckIn(c); err != nil {
		return nil, err
	}

	return e.ComputeState(ownerID, habitID)
}

// ComputeState scans the habit's check-in history and derives streak state.
func (e *Engine) ComputeState(ownerID string, habitID uuid.UUID) (*models.HabitState, error) {
	if _, err := e.repo.GetHabit(ownerID, habitID); err != nil {
		return nil, err
	}

	checkIns, err := e.repo.ListCheckIns(habitID, clock.Day{}, clock.Day{})
	if err != nil {
		return nil, err
	}

	days := make([]clock.Day, len(checkIns))
	for i, c := range checkIns {
		days[i] = c.Day
	}
	return Derive(days, e.clk.Today()), nil
}

// Derive computes HabitState from a habit's check-in days (ascending) as
// seen from today. Exposed for the analytics aggregator, which already has
// the day sets in hand.
func Derive(days []clock.Day, today clock.Day) *models.HabitState {
	state := &models.HabitState{TotalCheckIns: len(days)}
	if len(days) == 0 {
		return state
	}

	have := make(map[clock.Day]bool, len(days))
	for _, d := range days {
		have[d] = true
	}
	state.CheckedInToday = have[today]
	state.LastCheckIn = days[len(days)-1]

	// Current streak: walk backward from today. A missing check-in today
	// does not break the streak; the day just isn't counted yet.
	cursor := today
	if !have[cursor] {
		cursor = cursor.AddDays(-1)
	}
	for have[cursor] {
		state.CurrentStreak++
		cursor = cursor.AddDays(-1)
	}

	state.LongestStreak = LongestRun(days)
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	return state
}

// LongestRun returns the length of the longest run of consecutive days in
// an ascending day list.
func LongestRun(days []clock.Day) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// History returns the habit's check-ins for the trailing number of days.
func (e *Engine) History(ownerID string, habitID uuid.UUID, days int) ([]*models.CheckIn, error) {
	if days <= 0 {
		return nil, apperror.Invalid(fmt.Sprintf("history window must be positive, got %d", days))
	}
	if _, err := e.repo.GetHabit(ownerID, habitID); err != nil {
		return nil, err
	}
	today := e.clk.Today()
	return e.repo.ListCheckIns(habitID, today.AddDays(-days+1), today)
}
