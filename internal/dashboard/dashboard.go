// ABOUTME: Dashboard composer: today's summary, weekly view, and streak leaderboard.
// ABOUTME: Degrades gracefully when a sub-aggregation fails instead of failing the whole summary.
package dashboard

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/analytics"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/storage"
	"github.com/harperreed/habits/internal/streak"
)

// MotivationSource supplies a short motivational line. Implementations may
// call out to an external generator; failures fall back to static quotes.
type MotivationSource interface {
	Quote() (string, error)
}

// StaticQuotes is the built-in fallback motivation source. The pick rotates
// daily so repeated summaries on one day show the same line.
type StaticQuotes struct {
	clk *clock.Clock
}

func NewStaticQuotes(clk *clock.Clock) *StaticQuotes {
	return &StaticQuotes{clk: clk}
}

var fallbackQuotes = []string{
	"Small steps every day add up to big results.",
	"You don't have to be perfect, just consistent.",
	"The streak you keep today is the habit you own tomorrow.",
	"Show up for yourself, even on the hard days.",
	"Progress, not perfection.",
	"Every check-in is a vote for the person you want to become.",
	"Momentum beats motivation.",
}

func (s *StaticQuotes) Quote() (string, error) {
	epoch := clock.NewDay(2020, 1, 1)
	idx := s.clk.Today().Sub(epoch) % len(fallbackQuotes)
	if idx < 0 {
		idx += len(fallbackQuotes)
	}
	return fallbackQuotes[idx], nil
}

// Composer assembles dashboard views from the engine packages.
type Composer struct {
	repo       storage.Repository
	clk        *clock.Clock
	aggregator *analytics.Aggregator
	motivation MotivationSource
}

// NewComposer creates a dashboard composer. If motivation is nil the static
// quote rotation is used.
func NewComposer(repo storage.Repository, clk *clock.Clock, motivation MotivationSource) *Composer {
	if motivation == nil {
		motivation = NewStaticQuotes(clk)
	}
	return &Composer{
		repo:       repo,
		clk:        clk,
		aggregator: analytics.NewAggregator(repo, clk),
		motivation: motivation,
	}
}

// Summary is the at-a-glance dashboard. Sections that could not be computed
// are nil, with their names listed in Degraded.
type Summary struct {
	TodayProgress  *float64 `json:"todayProgress,omitempty"`
	CompletedToday *int     `json:"completedToday,omitempty"`
	RemainingToday *int     `json:"remainingToday,omitempty"`
	LongestStreak  *int     `json:"longestStreak,omitempty"`
	TotalCheckIns  *int     `json:"totalCheckIns,omitempty"`
	DaysActive     *int     `json:"daysActive,omitempty"`
	ActiveGoals    *int     `json:"activeGoals,omitempty"`
	Motivation     string   `json:"motivation,omitempty"`
	Degraded       []string `json:"degraded,omitempty"`
}

// Summarize builds the owner's summary. A failed sub-aggregation drops its
// section rather than failing the request; only when every section fails is
// an error returned.
func (c *Composer) Summarize(ownerID string) (*Summary, error) {
	s := &Summary{}
	var errs []error

	if habits, err := c.habitsSection(ownerID); err != nil {
		s.Degraded = append(s.Degraded, "habits")
		errs = append(errs, err)
	} else {
		s.TodayProgress = &habits.todayProgress
		s.CompletedToday = &habits.completedToday
		s.RemainingToday = &habits.remainingToday
		s.LongestStreak = &habits.longestStreak
		s.TotalCheckIns = &habits.totalCheckIns
		s.DaysActive = &habits.daysActive
	}

	if goals, err := c.repo.ListGoals(ownerID); err != nil {
		s.Degraded = append(s.Degraded, "goals")
		errs = append(errs, err)
	} else {
		active := 0
		for _, g := range goals {
			if !g.Completed {
				active++
			}
		}
		s.ActiveGoals = &active
	}

	// The motivation source already falls back internally; a failure here
	// just leaves the field empty.
	if quote, err := c.motivation.Quote(); err == nil {
		s.Motivation = quote
	} else if fallback, err := NewStaticQuotes(c.clk).Quote(); err == nil {
		s.Motivation = fallback
	}

	if len(errs) > 0 && s.TodayProgress == nil && s.ActiveGoals == nil {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

type habitsSection struct {
	todayProgress  float64
	completedToday int
	remainingToday int
	longestStreak  int
	totalCheckIns  int
	daysActive     int
}

func (c *Composer) habitsSection(ownerID string) (*habitsSection, error) {
	today := c.clk.Today()
	habits, err := c.repo.ListHabits(ownerID, true)
	if err != nil {
		return nil, err
	}

	sec := &habitsSection{}
	activeDays := make(map[clock.Day]bool)
	for _, h := range habits {
		checkIns, err := c.repo.ListCheckIns(h.ID, clock.Day{}, clock.Day{})
		if err != nil {
			return nil, err
		}
		days := make([]clock.Day, len(checkIns))
		checkedToday := false
		for i, ci := range checkIns {
			days[i] = ci.Day
			activeDays[ci.Day] = true
			if ci.Day == today {
				checkedToday = true
			}
		}
		state := streak.Derive(days, today)
		if state.LongestStreak > sec.longestStreak {
			sec.longestStreak = state.LongestStreak
		}
		sec.totalCheckIns += len(checkIns)
		if checkedToday {
			sec.completedToday++
		}
	}

	sec.remainingToday = len(habits) - sec.completedToday
	sec.daysActive = len(activeDays)
	if len(habits) > 0 {
		sec.todayProgress = float64(int(float64(sec.completedToday)*1000/float64(len(habits))+0.5)) / 10
	}
	return sec, nil
}

// WeeklyDay is one day of the trailing week.
type WeeklyDay struct {
	Date           clock.Day `json:"date"`
	DayName        string    `json:"dayName"`
	Completed      int       `json:"completed"`
	Total          int       `json:"total"`
	CompletionRate float64   `json:"completionRate"`
}

// Weekly returns the last 7 calendar days ending today, one point per day.
func (c *Composer) Weekly(ownerID string) ([]WeeklyDay, error) {
	trends, err := c.aggregator.Trends(ownerID, "daily", 7)
	if err != nil {
		return nil, err
	}

	days := make([]WeeklyDay, 0, len(trends.DataPoints))
	for _, p := range trends.DataPoints {
		days = append(days, WeeklyDay{
			Date:           p.Date,
			DayName:        p.Date.DayName(),
			Completed:      p.CheckIns,
			Total:          p.TotalHabits,
			CompletionRate: p.CompletionRate,
		})
	}
	return days, nil
}

// LeaderboardEntry is one habit's standing in the streak leaderboard.
type LeaderboardEntry struct {
	HabitID       uuid.UUID `json:"habitId"`
	HabitName     string    `json:"habitName"`
	Icon          string    `json:"icon"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
}

// Leaderboard ranks the owner's active habits by current streak, longest
// streak breaking ties.
func (c *Composer) Leaderboard(ownerID string) ([]LeaderboardEntry, error) {
	today := c.clk.Today()
	habits, err := c.repo.ListHabits(ownerID, true)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(habits))
	for _, h := range habits {
		checkIns, err := c.repo.ListCheckIns(h.ID, clock.Day{}, clock.Day{})
		if err != nil {
			return nil, err
		}
		days := make([]clock.Day, len(checkIns))
		for i, ci := range checkIns {
			days[i] = ci.Day
		}
		state := streak.Derive(days, today)
		entries = append(entries, LeaderboardEntry{
			HabitID:       h.ID,
			HabitName:     h.Name,
			Icon:          h.Icon,
			CurrentStreak: state.CurrentStreak,
			LongestStreak: state.LongestStreak,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CurrentStreak != entries[j].CurrentStreak {
			return entries[i].CurrentStreak > entries[j].CurrentStreak
		}
		return entries[i].LongestStreak > entries[j].LongestStreak
	})
	return entries, nil
}
