// ABOUTME: Repository implementation over Charm Cloud KV storage.
// ABOUTME: Uses type-prefixed JSON records and client-side filtering and sorting.
package charm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
)

func habitKey(ownerID string, id uuid.UUID) string {
	return habitPrefix + ownerID + ":" + id.String()
}

func checkInKey(habitID uuid.UUID, day clock.Day) string {
	return checkInPrefix + habitID.String() + ":" + day.String()
}

func goalKey(ownerID string, id uuid.UUID) string {
	return goalPrefix + ownerID + ":" + id.String()
}

func progressKey(goalID, id uuid.UUID) string {
	return progressPrefix + goalID.String() + ":" + id.String()
}

func unlockKey(ownerID, achievementID string) string {
	return unlockPrefix + ownerID + ":" + achievementID
}

// CreateHabit stores a new habit in the KV store.
func (c *Client) CreateHabit(h *models.Habit) error {
	data, err := marshalJSON(h)
	if err != nil {
		return fmt.Errorf("marshal habit: %w", err)
	}
	return c.set(habitKey(h.OwnerID, h.ID), data)
}

// GetHabit retrieves one of the owner's habits by ID.
func (c *Client) GetHabit(ownerID string, id uuid.UUID) (*models.Habit, error) {
	data, ok, err := c.get(habitKey(ownerID, id))
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	if !ok {
		return nil, apperror.NotFound("habit", id.String())
	}
	return unmarshalJSON[models.Habit](data)
}

// ListHabits retrieves the owner's habits, newest first.
func (c *Client) ListHabits(ownerID string, activeOnly bool) ([]*models.Habit, error) {
	allData, err := c.listByPrefix(habitPrefix + ownerID + ":")
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	var habits []*models.Habit
	for _, data := range allData {
		h, err := unmarshalJSON[models.Habit](data)
		if err != nil {
			continue // Skip invalid entries
		}
		if activeOnly && !h.Active {
			continue
		}
		habits = append(habits, h)
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
	return habits, nil
}

// UpdateHabit persists changes to a habit's editable fields.
func (c *Client) UpdateHabit(h *models.Habit) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := habitKey(h.OwnerID, h.ID)
	if _, ok, err := c.getLocked(key); err != nil {
		return fmt.Errorf("update habit: %w", err)
	} else if !ok {
		return apperror.NotFound("habit", h.ID.String())
	}

	data, err := marshalJSON(h)
	if err != nil {
		return fmt.Errorf("marshal habit: %w", err)
	}
	return c.setLocked(key, data)
}

// ArchiveHabit marks a habit inactive. Check-in history is retained.
func (c *Client) ArchiveHabit(ownerID string, id uuid.UUID) error {
	h, err := c.GetHabit(ownerID, id)
	if err != nil {
		return err
	}
	h.Active = false
	return c.UpdateHabit(h)
}

// ResolveHabitID resolves a full ID or unambiguous ID prefix to a habit ID.
func (c *Client) ResolveHabitID(ownerID, idOrPrefix string) (uuid.UUID, error) {
	return c.resolveID(habitPrefix, "habit", ownerID, idOrPrefix)
}

// AppendCheckIn appends a check-in event. A second check-in for the same
// (habit, day) surfaces as ErrAlreadyCheckedIn.
func (c *Client) AppendCheckIn(ci *models.CheckIn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := checkInKey(ci.HabitID, ci.Day)
	if _, ok, err := c.getLocked(key); err != nil {
		return fmt.Errorf("append check-in: %w", err)
	} else if ok {
		return apperror.ErrAlreadyCheckedIn
	}

	data, err := marshalJSON(ci)
	if err != nil {
		return fmt.Errorf("marshal check-in: %w", err)
	}
	return c.setLocked(key, data)
}

// HasCheckIn reports whether a check-in exists for the habit on the day.
func (c *Client) HasCheckIn(habitID uuid.UUID, day clock.Day) (bool, error) {
	_, ok, err := c.get(checkInKey(habitID, day))
	if err != nil {
		return false, fmt.Errorf("has check-in: %w", err)
	}
	return ok, nil
}

// ListCheckIns retrieves a habit's check-ins ordered by day ascending.
// Zero from/to days leave that bound open.
func (c *Client) ListCheckIns(habitID uuid.UUID, from, to clock.Day) ([]*models.CheckIn, error) {
	allData, err := c.listByPrefix(checkInPrefix + habitID.String() + ":")
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return filterCheckIns(allData, from, to)
}

// ListOwnerCheckIns retrieves check-ins across all the owner's habits,
// ordered by day ascending.
func (c *Client) ListOwnerCheckIns(ownerID string, from, to clock.Day) ([]*models.CheckIn, error) {
	habits, err := c.ListHabits(ownerID, false)
	if err != nil {
		return nil, err
	}

	var allData [][]byte
	for _, h := range habits {
		data, err := c.listByPrefix(checkInPrefix + h.ID.String() + ":")
		if err != nil {
			return nil, fmt.Errorf("list check-ins: %w", err)
		}
		allData = append(allData, data...)
	}
	return filterCheckIns(allData, from, to)
}

func filterCheckIns(allData [][]byte, from, to clock.Day) ([]*models.CheckIn, error) {
	var checkIns []*models.CheckIn
	for _, data := range allData {
		ci, err := unmarshalJSON[models.CheckIn](data)
		if err != nil {
			continue
		}
		if !from.IsZero() && ci.Day.Before(from) {
			continue
		}
		if !to.IsZero() && ci.Day.After(to) {
			continue
		}
		checkIns = append(checkIns, ci)
	}

	sort.Slice(checkIns, func(i, j int) bool {
		return checkIns[i].Day.Before(checkIns[j].Day)
	})
	return checkIns, nil
}

// CreateGoal stores a new goal in the KV store.
func (c *Client) CreateGoal(g *models.Goal) error {
	data, err := marshalJSON(g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}
	return c.set(goalKey(g.OwnerID, g.ID), data)
}

// GetGoal retrieves one of the owner's goals by ID, with CurrentValue
// derived from the progress log.
func (c *Client) GetGoal(ownerID string, id uuid.UUID) (*models.Goal, error) {
	data, ok, err := c.get(goalKey(ownerID, id))
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	if !ok {
		return nil, apperror.NotFound("goal", id.String())
	}

	g, err := unmarshalJSON[models.Goal](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal goal: %w", err)
	}
	if err := c.fillCurrentValue(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGoals retrieves the owner's goals, newest first, with derived values.
func (c *Client) ListGoals(ownerID string) ([]*models.Goal, error) {
	allData, err := c.listByPrefix(goalPrefix + ownerID + ":")
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	var goals []*models.Goal
	for _, data := range allData {
		g, err := unmarshalJSON[models.Goal](data)
		if err != nil {
			continue
		}
		if err := c.fillCurrentValue(g); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

// UpdateGoal persists changes to a goal's stored fields. CurrentValue is
// derived, never written.
func (c *Client) UpdateGoal(g *models.Goal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := goalKey(g.OwnerID, g.ID)
	if _, ok, err := c.getLocked(key); err != nil {
		return fmt.Errorf("update goal: %w", err)
	} else if !ok {
		return apperror.NotFound("goal", g.ID.String())
	}

	stored := *g
	stored.CurrentValue = 0
	data, err := marshalJSON(&stored)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}
	return c.setLocked(key, data)
}

// DeleteGoal removes a goal and its progress log.
func (c *Client) DeleteGoal(ownerID string, id uuid.UUID) error {
	if _, ok, err := c.get(goalKey(ownerID, id)); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	} else if !ok {
		return apperror.NotFound("goal", id.String())
	}

	increments, err := c.ListProgress(id)
	if err != nil {
		return err
	}
	for _, p := range increments {
		if err := c.delete(progressKey(id, p.ID)); err != nil {
			return fmt.Errorf("delete goal progress: %w", err)
		}
	}
	return c.delete(goalKey(ownerID, id))
}

// ResolveGoalID resolves a full ID or unambiguous ID prefix to a goal ID.
func (c *Client) ResolveGoalID(ownerID, idOrPrefix string) (uuid.UUID, error) {
	return c.resolveID(goalPrefix, "goal", ownerID, idOrPrefix)
}

// AppendProgress appends a progress increment to a goal's log.
func (c *Client) AppendProgress(p *models.ProgressIncrement) error {
	data, err := marshalJSON(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	return c.set(progressKey(p.GoalID, p.ID), data)
}

// ListProgress retrieves a goal's increments ordered by application time.
func (c *Client) ListProgress(goalID uuid.UUID) ([]*models.ProgressIncrement, error) {
	allData, err := c.listByPrefix(progressPrefix + goalID.String() + ":")
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	var increments []*models.ProgressIncrement
	for _, data := range allData {
		p, err := unmarshalJSON[models.ProgressIncrement](data)
		if err != nil {
			continue
		}
		increments = append(increments, p)
	}

	sort.Slice(increments, func(i, j int) bool {
		return increments[i].AppliedAt.Before(increments[j].AppliedAt)
	})
	return increments, nil
}

// RecordUnlock persists an achievement unlock. Re-recording keeps the
// first unlock timestamp.
func (c *Client) RecordUnlock(u *models.AchievementUnlock) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := unlockKey(u.OwnerID, u.AchievementID)
	if _, ok, err := c.getLocked(key); err != nil {
		return fmt.Errorf("record unlock: %w", err)
	} else if ok {
		return nil
	}

	data, err := marshalJSON(u)
	if err != nil {
		return fmt.Errorf("marshal unlock: %w", err)
	}
	return c.setLocked(key, data)
}

// ListUnlocks retrieves the owner's persisted achievement unlocks.
func (c *Client) ListUnlocks(ownerID string) ([]*models.AchievementUnlock, error) {
	allData, err := c.listByPrefix(unlockPrefix + ownerID + ":")
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}

	var unlocks []*models.AchievementUnlock
	for _, data := range allData {
		u, err := unmarshalJSON[models.AchievementUnlock](data)
		if err != nil {
			continue
		}
		unlocks = append(unlocks, u)
	}
	return unlocks, nil
}

// GetAllData bundles everything the owner has recorded, for JSON export.
func (c *Client) GetAllData(ownerID string) (*storage.ExportData, error) {
	habits, err := c.ListHabits(ownerID, false)
	if err != nil {
		return nil, err
	}
	checkIns, err := c.ListOwnerCheckIns(ownerID, clock.Day{}, clock.Day{})
	if err != nil {
		return nil, err
	}
	goals, err := c.ListGoals(ownerID)
	if err != nil {
		return nil, err
	}
	var increments []*models.ProgressIncrement
	for _, g := range goals {
		ps, err := c.ListProgress(g.ID)
		if err != nil {
			return nil, err
		}
		increments = append(increments, ps...)
	}
	unlocks, err := c.ListUnlocks(ownerID)
	if err != nil {
		return nil, err
	}

	return &storage.ExportData{
		Habits:     habits,
		CheckIns:   checkIns,
		Goals:      goals,
		Increments: increments,
		Unlocks:    unlocks,
	}, nil
}

func (c *Client) fillCurrentValue(g *models.Goal) error {
	increments, err := c.ListProgress(g.ID)
	if err != nil {
		return err
	}
	total := 0
	for _, p := range increments {
		total += p.Delta
	}
	g.CurrentValue = total
	return nil
}

// resolveID resolves a full ID or prefix within a type- and owner-scoped
// key range.
func (c *Client) resolveID(keyPrefix, kind, ownerID, idOrPrefix string) (uuid.UUID, error) {
	if id, err := uuid.Parse(idOrPrefix); err == nil {
		return id, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve id: %w", err)
	}

	scopedPrefix := keyPrefix + ownerID + ":"
	var matches []string
	for _, key := range keys {
		k := string(key)
		if !strings.HasPrefix(k, scopedPrefix) {
			continue
		}
		id := strings.TrimPrefix(k, scopedPrefix)
		if strings.HasPrefix(id, idOrPrefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return uuid.Nil, apperror.NotFound(kind, idOrPrefix)
	case 1:
		return uuid.Parse(matches[0])
	default:
		return uuid.Nil, fmt.Errorf("ambiguous id prefix %q matches %d records", idOrPrefix, len(matches))
	}
}
