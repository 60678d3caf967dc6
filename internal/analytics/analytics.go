// ABOUTME: Analytics Aggregator: trend series, activity heatmap, and per-habit breakdowns.
// ABOUTME: Read-only over the check-in log; all date bucketing happens here, never in a renderer.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
	"github.com/harperreed/habits/internal/storage"
	"github.com/harperreed/habits/internal/streak"
)

// Aggregator builds analytics series from check-in history.
type Aggregator struct {
	repo storage.Repository
	clk  *clock.Clock
}

// NewAggregator creates an analytics aggregator over the given store.
func NewAggregator(repo storage.Repository, clk *clock.Clock) *Aggregator {
	return &Aggregator{repo: repo, clk: clk}
}

// TrendPoint is one bucket in a trend series.
type TrendPoint struct {
	Date           clock.Day `json:"date"`
	Label          string    `json:"label"`
	CheckIns       int       `json:"checkIns"`
	TotalHabits    int       `json:"totalHabits"`
	CompletionRate float64   `json:"completionRate"`
}

// TrendData is a daily or weekly trend series over a trailing window.
type TrendData struct {
	Period                string       `json:"period"`
	DataPoints            []TrendPoint `json:"dataPoints"`
	AverageCompletionRate int          `json:"averageCompletionRate"`
	TotalCheckIns         int          `json:"totalCheckIns"`
}

// Trends builds a trend series. period is "daily" or "weekly"; windowSize is
// the number of trailing calendar days ending today.
func (a *Aggregator) Trends(ownerID, period string, windowSize int) (*TrendData, error) {
	if windowSize <= 0 {
		return nil, apperror.Invalid(fmt.Sprintf("window size must be positive, got %d", windowSize))
	}
	switch period {
	case "daily":
		return a.dailyTrends(ownerID, windowSize)
	case "weekly":
		return a.weeklyTrends(ownerID, windowSize)
	default:
		return nil, apperror.Invalid("unknown trend period " + period)
	}
}

func (a *Aggregator) dailyTrends(ownerID string, windowSize int) (*TrendData, error) {
	points, total, err := a.dailyPoints(ownerID, windowSize)
	if err != nil {
		return nil, err
	}
	return &TrendData{
		Period:                "daily",
		DataPoints:            points,
		AverageCompletionRate: averageRate(points),
		TotalCheckIns:         total,
	}, nil
}

// weeklyTrends buckets the daily series into weeks. A new bucket opens
// whenever the weekday wraps to Sunday; buckets are labeled with the ISO
// week number of their first day. The two conventions intentionally differ
// from the heatmap grid (see Heatmap).
func (a *Aggregator) weeklyTrends(ownerID string, windowSize int) (*TrendData, error) {
	daily, total, err := a.dailyPoints(ownerID, windowSize)
	if err != nil {
		return nil, err
	}

	var buckets [][]TrendPoint
	for _, p := range daily {
		if len(buckets) == 0 || p.Date.Weekday() == time.Sunday {
			buckets = append(buckets, nil)
		}
		buckets[len(buckets)-1] = append(buckets[len(buckets)-1], p)
	}

	points := make([]TrendPoint, 0, len(buckets))
	for _, bucket := range buckets {
		first := bucket[0]
		wp := TrendPoint{
			Date:        first.Date,
			Label:       fmt.Sprintf("Week %d", first.Date.ISOWeek()),
			TotalHabits: first.TotalHabits,
		}
		var rateSum float64
		for _, p := range bucket {
			wp.CheckIns += p.CheckIns
			rateSum += p.CompletionRate
			if p.TotalHabits > wp.TotalHabits {
				wp.TotalHabits = p.TotalHabits
			}
		}
		wp.CompletionRate = roundTenth(rateSum / float64(len(bucket)))
		points = append(points, wp)
	}

	return &TrendData{
		Period:                "weekly",
		DataPoints:            points,
		AverageCompletionRate: averageRate(points),
		TotalCheckIns:         total,
	}, nil
}

// dailyPoints builds one point per day for the trailing window. A habit
// counts toward a day's denominator only once it existed on that day; days
// with no active habits yield rate 0, never a division error.
func (a *Aggregator) dailyPoints(ownerID string, windowSize int) ([]TrendPoint, int, error) {
	today := a.clk.Today()
	start := today.AddDays(-windowSize + 1)

	habits, err := a.repo.ListHabits(ownerID, true)
	if err != nil {
		return nil, 0, err
	}
	createdOn := make([]clock.Day, len(habits))
	for i, h := range habits {
		createdOn[i] = clock.DayOf(h.CreatedAt)
	}

	checkIns, err := a.repo.ListOwnerCheckIns(ownerID, start, today)
	if err != nil {
		return nil, 0, err
	}
	countByDay := make(map[clock.Day]int)
	for _, c := range checkIns {
		countByDay[c.Day]++
	}

	points := make([]TrendPoint, 0, windowSize)
	for _, day := range clock.Range(start, today) {
		active := 0
		for _, created := range createdOn {
			if !created.After(day) {
				active++
			}
		}

		count := countByDay[day]
		rate := 0.0
		if active > 0 {
			rate = roundTenth(float64(count) * 100 / float64(active))
		}
		points = append(points, TrendPoint{
			Date:           day,
			Label:          day.String(),
			CheckIns:       count,
			TotalHabits:    active,
			CompletionRate: rate,
		})
	}
	return points, len(checkIns), nil
}

// HeatmapCell is one calendar day's quantized activity intensity.
type HeatmapCell struct {
	Date    clock.Day    `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Week    int          `json:"week"`
	Count   int          `json:"count"`
	Level   int          `json:"level"`
}

// HeatmapData is a year of daily activity cells plus summary stats.
type HeatmapData struct {
	Year             int           `json:"year"`
	Cells            []HeatmapCell `json:"cells"`
	TotalCheckIns    int           `json:"totalCheckIns"`
	DaysWithActivity int           `json:"daysWithActivity"`
	LongestStreak    int           `json:"longestStreak"`
}

// Heatmap builds the year's activity grid. Levels are quantized from the
// year's own maximum daily count so sparse and dense years both spread over
// 0..4. Grid columns are Sunday-anchored: the first Sunday on or after
// January 1 opens the first full column, with any leading days in column 0.
func (a *Aggregator) Heatmap(ownerID string, year int) (*HeatmapData, error) {
	if year < 1 {
		return nil, apperror.Invalid(fmt.Sprintf("invalid year %d", year))
	}

	start := clock.NewDay(year, time.January, 1)
	end := clock.NewDay(year, time.December, 31)

	checkIns, err := a.repo.ListOwnerCheckIns(ownerID, start, end)
	if err != nil {
		return nil, err
	}
	countByDay := make(map[clock.Day]int)
	for _, c := range checkIns {
		countByDay[c.Day]++
	}

	maxCount := 0
	for _, n := range countByDay {
		if n > maxCount {
			maxCount = n
		}
	}

	firstSunday := clock.FirstSundayOnOrAfter(start)
	lead := 0
	if firstSunday != start {
		lead = 1
	}

	days := clock.Range(start, end)
	cells := make([]HeatmapCell, 0, len(days))
	for _, day := range days {
		week := 0
		if !day.Before(firstSunday) {
			week = day.Sub(firstSunday)/7 + lead
		}
		count := countByDay[day]
		cells = append(cells, HeatmapCell{
			Date:    day,
			Weekday: day.Weekday(),
			Week:    week,
			Count:   count,
			Level:   quantizeLevel(count, maxCount),
		})
	}

	// Longest run of consecutive active days, across all habits.
	activeDays := make([]clock.Day, 0, len(countByDay))
	for day := range countByDay {
		activeDays = append(activeDays, day)
	}
	sort.Slice(activeDays, func(i, j int) bool { return activeDays[i].Before(activeDays[j]) })
	longest := streak.LongestRun(activeDays)

	return &HeatmapData{
		Year:             year,
		Cells:            cells,
		TotalCheckIns:    len(checkIns),
		DaysWithActivity: len(countByDay),
		LongestStreak:    longest,
	}, nil
}

// quantizeLevel maps a daily count onto levels 0..4 relative to the year's
// busiest day. Zero activity is always level 0; the busiest day is always
// level 4.
func quantizeLevel(count, maxCount int) int {
	if count == 0 || maxCount == 0 {
		return 0
	}
	level := (4*count + maxCount - 1) / maxCount
	if level > 4 {
		level = 4
	}
	return level
}

// HabitBreakdown is one habit's completion statistics over a window.
type HabitBreakdown struct {
	HabitID        uuid.UUID `json:"habitId"`
	HabitName      string    `json:"habitName"`
	Icon           string    `json:"icon"`
	TotalCheckIns  int       `json:"totalCheckIns"`
	PeriodDays     int       `json:"periodDays"`
	CompletionRate float64   `json:"completionRate"`
	CurrentStreak  int       `json:"currentStreak"`
	LongestStreak  int       `json:"longestStreak"`
}

// PerHabit computes completion rates for each active habit over the
// trailing window, sorted by rate descending.
func (a *Aggregator) PerHabit(ownerID string, days int) ([]HabitBreakdown, error) {
	if days <= 0 {
		return nil, apperror.Invalid(fmt.Sprintf("period must be positive, got %d", days))
	}

	habits, err := a.repo.ListHabits(ownerID, true)
	if err != nil {
		return nil, err
	}

	today := a.clk.Today()
	start := today.AddDays(-days + 1)

	results := make([]HabitBreakdown, 0, len(habits))
	for _, h := range habits {
		all, err := a.repo.ListCheckIns(h.ID, clock.Day{}, clock.Day{})
		if err != nil {
			return nil, err
		}
		allDays := make([]clock.Day, len(all))
		windowed := 0
		for i, c := range all {
			allDays[i] = c.Day
			if !c.Day.Before(start) && !c.Day.After(today) {
				windowed++
			}
		}
		state := streak.Derive(allDays, today)

		results = append(results, HabitBreakdown{
			HabitID:        h.ID,
			HabitName:      h.Name,
			Icon:           h.Icon,
			TotalCheckIns:  windowed,
			PeriodDays:     days,
			CompletionRate: roundTenth(float64(windowed) * 100 / float64(days)),
			CurrentStreak:  state.CurrentStreak,
			LongestStreak:  state.LongestStreak,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletionRate > results[j].CompletionRate
	})
	return results, nil
}

// MonthData is the calendar view of one month's activity.
type MonthData struct {
	Year                  int          `json:"year"`
	Month                 time.Month   `json:"month"`
	CheckedDates          []clock.Day  `json:"checkedDates"`
	Habits                []HabitMonth `json:"habits"`
	TotalDaysInMonth      int          `json:"totalDaysInMonth"`
	DaysWithCheckIns      int          `json:"daysWithCheckIns"`
	MonthlyCompletionRate float64      `json:"monthlyCompletionRate"`
}

// HabitMonth is one habit's checked days within a month.
type HabitMonth struct {
	HabitID       uuid.UUID   `json:"habitId"`
	HabitName     string      `json:"habitName"`
	Icon          string      `json:"icon"`
	CheckedDates  []clock.Day `json:"checkedDates"`
	CheckInCount  int         `json:"checkInCount"`
	CurrentStreak int         `json:"currentStreak"`
}

// Month builds the calendar data for one month.
func (a *Aggregator) Month(ownerID string, year int, month time.Month) (*MonthData, error) {
	if month < time.January || month > time.December {
		return nil, apperror.Invalid(fmt.Sprintf("invalid month %d", month))
	}

	start := clock.NewDay(year, month, 1)
	end := clock.DayOf(start.Time().AddDate(0, 1, -1))
	daysInMonth := end.Dom

	habits, err := a.repo.ListHabits(ownerID, true)
	if err != nil {
		return nil, err
	}

	today := a.clk.Today()
	allChecked := make(map[clock.Day]bool)
	habitData := make([]HabitMonth, 0, len(habits))
	for _, h := range habits {
		monthCheckIns, err := a.repo.ListCheckIns(h.ID, start, end)
		if err != nil {
			return nil, err
		}
		checked := make([]clock.Day, len(monthCheckIns))
		for i, c := range monthCheckIns {
			checked[i] = c.Day
			allChecked[c.Day] = true
		}

		state, err := a.stateFor(ownerID, h.ID, today)
		if err != nil {
			return nil, err
		}
		habitData = append(habitData, HabitMonth{
			HabitID:       h.ID,
			HabitName:     h.Name,
			Icon:          h.Icon,
			CheckedDates:  checked,
			CheckInCount:  len(checked),
			CurrentStreak: state.CurrentStreak,
		})
	}

	checkedDates := make([]clock.Day, 0, len(allChecked))
	for d := range allChecked {
		checkedDates = append(checkedDates, d)
	}
	sort.Slice(checkedDates, func(i, j int) bool { return checkedDates[i].Before(checkedDates[j]) })

	return &MonthData{
		Year:                  year,
		Month:                 month,
		CheckedDates:          checkedDates,
		Habits:                habitData,
		TotalDaysInMonth:      daysInMonth,
		DaysWithCheckIns:      len(allChecked),
		MonthlyCompletionRate: roundTenth(float64(len(allChecked)) * 100 / float64(daysInMonth)),
	}, nil
}

func (a *Aggregator) stateFor(ownerID string, habitID uuid.UUID, today clock.Day) (*models.HabitState, error) {
	checkIns, err := a.repo.ListCheckIns(habitID, clock.Day{}, clock.Day{})
	if err != nil {
		return nil, err
	}
	days := make([]clock.Day, len(checkIns))
	for i, c := range checkIns {
		days[i] = c.Day
	}
	return streak.Derive(days, today), nil
}

func averageRate(points []TrendPoint) int {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.CompletionRate
	}
	return int(sum/float64(len(points)) + 0.5)
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
