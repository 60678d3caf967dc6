// ABOUTME: Achievement rules and the evaluated Achievement result type.
// ABOUTME: Rules are data (metric name + threshold) so new achievements are table rows, not code.
package models

import "time"

// Metric names a rule can reference. A rule's metric is resolved against the
// snapshot map built by the achievement engine.
const (
	MetricLongestStreak  = "longest_streak"
	MetricTotalCheckIns  = "total_check_ins"
	MetricGoalsCompleted = "goals_completed"
	MetricTotalHabits    = "total_habits"
	MetricPerfectDay     = "perfect_day"
)

// AchievementRule is a threshold condition over a named aggregate metric.
type AchievementRule struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    string
	Metric      string
	Threshold   int
}

// DefaultAchievementRules is the built-in achievement table.
var DefaultAchievementRules = []AchievementRule{
	// Streak achievements
	{ID: "first_streak", Name: "First Flame", Description: "Get your first 3-day streak", Icon: "🔥", Category: "STREAK", Metric: MetricLongestStreak, Threshold: 3},
	{ID: "week_warrior", Name: "Week Warrior", Description: "Maintain a 7-day streak", Icon: "⭐", Category: "STREAK", Metric: MetricLongestStreak, Threshold: 7},
	{ID: "fortnight_fighter", Name: "Fortnight Fighter", Description: "Maintain a 14-day streak", Icon: "💪", Category: "STREAK", Metric: MetricLongestStreak, Threshold: 14},
	{ID: "habit_master", Name: "Habit Master", Description: "Achieve a 30-day streak", Icon: "🏆", Category: "STREAK", Metric: MetricLongestStreak, Threshold: 30},
	{ID: "legendary", Name: "Legendary", Description: "Achieve a 100-day streak", Icon: "👑", Category: "STREAK", Metric: MetricLongestStreak, Threshold: 100},

	// Consistency achievements
	{ID: "getting_started", Name: "Getting Started", Description: "Complete 10 total check-ins", Icon: "🌱", Category: "CONSISTENCY", Metric: MetricTotalCheckIns, Threshold: 10},
	{ID: "consistent", Name: "Consistent", Description: "Complete 50 total check-ins", Icon: "💎", Category: "CONSISTENCY", Metric: MetricTotalCheckIns, Threshold: 50},
	{ID: "dedicated", Name: "Dedicated", Description: "Complete 100 total check-ins", Icon: "🎯", Category: "CONSISTENCY", Metric: MetricTotalCheckIns, Threshold: 100},
	{ID: "unstoppable", Name: "Unstoppable", Description: "Complete 500 total check-ins", Icon: "🚀", Category: "CONSISTENCY", Metric: MetricTotalCheckIns, Threshold: 500},

	// Milestone achievements
	{ID: "first_habit", Name: "First Step", Description: "Create your first habit", Icon: "👣", Category: "MILESTONE", Metric: MetricTotalHabits, Threshold: 1},
	{ID: "habit_collector", Name: "Habit Collector", Description: "Create 5 habits", Icon: "📚", Category: "MILESTONE", Metric: MetricTotalHabits, Threshold: 5},
	{ID: "perfect_day", Name: "Perfect Day", Description: "Complete all habits in a day", Icon: "✨", Category: "MILESTONE", Metric: MetricPerfectDay, Threshold: 1},

	// Goal achievements
	{ID: "goal_getter", Name: "Goal Getter", Description: "Complete your first goal", Icon: "🥇", Category: "GOAL", Metric: MetricGoalsCompleted, Threshold: 1},
	{ID: "overachiever", Name: "Overachiever", Description: "Complete 5 goals", Icon: "🎖️", Category: "GOAL", Metric: MetricGoalsCompleted, Threshold: 5},
}

// Achievement is an evaluated rule for one owner: the rule plus unlock state
// and progress toward the threshold.
type Achievement struct {
	AchievementRule

	Unlocked         bool
	UnlockedAt       *time.Time
	CurrentProgress  int
	RequiredProgress int
}

// ProgressPercentage returns progress toward the threshold clamped to
// [0,100].
func (a *Achievement) ProgressPercentage() float64 {
	if a.RequiredProgress <= 0 {
		return 0
	}
	pct := float64(a.CurrentProgress) * 100 / float64(a.RequiredProgress)
	if pct > 100 {
		return 100
	}
	return pct
}

// AchievementUnlock is the persisted sticky fact that an owner unlocked an
// achievement. Once recorded it is never removed by re-evaluation.
type AchievementUnlock struct {
	OwnerID       string
	AchievementID string
	UnlockedAt    time.Time
}
