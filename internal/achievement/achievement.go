// ABOUTME: Achievement Engine: rule evaluation over aggregate metrics.
// ABOUTME: Rules are table rows; unlocks are persisted sticky facts that never revert.
package achievement

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
	"github.com/harperreed/habits/internal/streak"
)

// Engine evaluates achievement rules for an owner.
type Engine struct {
	repo  storage.Repository
	clk   *clock.Clock
	rules []models.AchievementRule
}

var knownMetrics = map[string]bool{
	models.MetricLongestStreak:  true,
	models.MetricTotalCheckIns:  true,
	models.MetricGoalsCompleted: true,
	models.MetricTotalHabits:    true,
	models.MetricPerfectDay:     true,
}

// NewEngine creates an achievement engine with the given rule table. A rule
// referencing an unknown metric is a configuration error, caught here at
// load time rather than during evaluation.
func NewEngine(repo storage.Repository, clk *clock.Clock, rules []models.AchievementRule) (*Engine, error) {
	if rules == nil {
		rules = models.DefaultAchievementRules
	}
	for _, r := range rules {
		if !knownMetrics[r.Metric] {
			return nil, fmt.Errorf("achievement rule %q references unknown metric %q", r.ID, r.Metric)
		}
		if r.Threshold <= 0 {
			return nil, fmt.Errorf("achievement rule %q has non-positive threshold %d", r.ID, r.Threshold)
		}
	}
	return &Engine{repo: repo, clk: clk, rules: rules}, nil
}

// Rules returns the engine's rule table.
func (e *Engine) Rules() []models.AchievementRule {
	return e.rules
}

// Evaluate computes the full achievement list for an owner: each rule
// annotated with unlock state and progress. Newly satisfied rules are
// persisted as unlocks; previously persisted unlocks stay unlocked even if
// the underlying metric has since dropped.
func (e *Engine) Evaluate(ownerID string) ([]*models.Achievement, error) {
	metrics, err := e.snapshot(ownerID)
	if err != nil {
		return nil, err
	}

	unlocked := make(map[string]*models.AchievementUnlock)
	persisted, err := e.repo.ListUnlocks(ownerID)
	if err != nil {
		return nil, err
	}
	for _, u := range persisted {
		unlocked[u.AchievementID] = u
	}

	results := make([]*models.Achievement, 0, len(e.rules))
	for _, rule := range e.rules {
		a := &models.Achievement{
			AchievementRule:  rule,
			RequiredProgress: rule.Threshold,
		}

		value := metrics[rule.Metric]
		if prior, ok := unlocked[rule.ID]; ok {
			a.Unlocked = true
			at := prior.UnlockedAt
			a.UnlockedAt = &at
			a.CurrentProgress = rule.Threshold
		} else if value >= rule.Threshold {
			now := e.clk.Now()
			if err := e.repo.RecordUnlock(&models.AchievementUnlock{
				OwnerID:       ownerID,
				AchievementID: rule.ID,
				UnlockedAt:    now,
			}); err != nil {
				return nil, err
			}
			a.Unlocked = true
			a.UnlockedAt = &now
			a.CurrentProgress = rule.Threshold
		} else {
			a.CurrentProgress = value
		}

		results = append(results, a)
	}

	// Unlocked first, then closest to unlocking.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Unlocked != results[j].Unlocked {
			return results[i].Unlocked
		}
		return results[i].ProgressPercentage() > results[j].ProgressPercentage()
	})
	return results, nil
}

// snapshot builds the metric map the rules are evaluated against.
func (e *Engine) snapshot(ownerID string) (map[string]int, error) {
	allHabits, err := e.repo.ListHabits(ownerID, false)
	if err != nil {
		return nil, err
	}
	active := make([]*models.Habit, 0, len(allHabits))
	for _, h := range allHabits {
		if h.Active {
			active = append(active, h)
		}
	}

	checkIns, err := e.repo.ListOwnerCheckIns(ownerID, clock.Day{}, clock.Day{})
	if err != nil {
		return nil, err
	}
	byHabit := make(map[uuid.UUID][]clock.Day)
	for _, c := range checkIns {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c.Day)
	}

	today := e.clk.Today()
	longestStreak := 0
	checkedToday := 0
	for _, h := range active {
		state := streak.Derive(byHabit[h.ID], today)
		if state.LongestStreak > longestStreak {
			longestStreak = state.LongestStreak
		}
		if state.CheckedInToday {
			checkedToday++
		}
	}

	goals, err := e.repo.ListGoals(ownerID)
	if err != nil {
		return nil, err
	}
	goalsCompleted := 0
	for _, g := range goals {
		if g.Completed {
			goalsCompleted++
		}
	}

	perfectDay := 0
	if len(active) > 0 && checkedToday == len(active) {
		perfectDay = 1
	}

	return map[string]int{
		models.MetricLongestStreak:  longestStreak,
		models.MetricTotalCheckIns:  len(checkIns),
		models.MetricGoalsCompleted: goalsCompleted,
		models.MetricTotalHabits:    len(allHabits),
		models.MetricPerfectDay:     perfectDay,
	}, nil
}
