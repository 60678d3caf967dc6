// ABOUTME: Analytics, achievement, and dashboard HTTP handlers.
// ABOUTME: Pure read endpoints; all bucketing happens in the engine packages.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/models"
)

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperror.Invalid("invalid " + name + " " + v)
	}
	return n, nil
}

// Trends returns the daily or weekly completion-rate series.
func (s *Server) Trends(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "daily"
	}
	window, err := queryInt(r, "window", 30)
	if err != nil {
		s.respondError(w, err)
		return
	}

	trends, err := s.aggregator.Trends(ownerID(r), period, window)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, trends)
}

// Heatmap returns the year's activity grid.
func (s *Server) Heatmap(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", s.clk.Today().Year)
	if err != nil {
		s.respondError(w, err)
		return
	}

	heatmap, err := s.aggregator.Heatmap(ownerID(r), year)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, heatmap)
}

// PerHabit returns per-habit completion breakdowns over a trailing window.
func (s *Server) PerHabit(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		s.respondError(w, err)
		return
	}

	breakdowns, err := s.aggregator.PerHabit(ownerID(r), days)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, breakdowns)
}

// Month returns the calendar view for one month.
func (s *Server) Month(w http.ResponseWriter, r *http.Request) {
	today := s.clk.Today()
	year, err := queryInt(r, "year", today.Year)
	if err != nil {
		s.respondError(w, err)
		return
	}
	month, err := queryInt(r, "month", int(today.Month))
	if err != nil {
		s.respondError(w, err)
		return
	}

	data, err := s.aggregator.Month(ownerID(r), year, time.Month(month))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, data)
}

type achievementResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Icon               string     `json:"icon"`
	Category           string     `json:"category"`
	Unlocked           bool       `json:"unlocked"`
	UnlockedAt         *time.Time `json:"unlockedAt,omitempty"`
	CurrentProgress    int        `json:"currentProgress"`
	RequiredProgress   int        `json:"requiredProgress"`
	ProgressPercentage float64    `json:"progressPercentage"`
}

// Achievements evaluates and returns all achievements for the owner.
func (s *Server) Achievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := s.achievements.Evaluate(ownerID(r))
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := make([]achievementResponse, 0, len(achievements))
	for _, a := range achievements {
		resp = append(resp, newAchievementResponse(a))
	}
	s.respond(w, http.StatusOK, resp)
}

func newAchievementResponse(a *models.Achievement) achievementResponse {
	return achievementResponse{
		ID:                 a.ID,
		Name:               a.Name,
		Description:        a.Description,
		Icon:               a.Icon,
		Category:           a.Category,
		Unlocked:           a.Unlocked,
		UnlockedAt:         a.UnlockedAt,
		CurrentProgress:    a.CurrentProgress,
		RequiredProgress:   a.RequiredProgress,
		ProgressPercentage: a.ProgressPercentage(),
	}
}

// Summary returns the at-a-glance dashboard. Degraded sections are omitted
// from the body; the response is still 200.
func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.Summarize(ownerID(r))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, summary)
}

// Weekly returns the last 7 calendar days of completion data.
func (s *Server) Weekly(w http.ResponseWriter, r *http.Request) {
	days, err := s.dashboard.Weekly(ownerID(r))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"days": days})
}

// Leaderboard ranks the owner's habits by current streak.
func (s *Server) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.dashboard.Leaderboard(ownerID(r))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, entries)
}
