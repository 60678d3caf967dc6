// ABOUTME: Goal and progress HTTP handlers.
// ABOUTME: Responses carry derived progress fields; the engine owns completion semantics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

type createGoalRequest struct {
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=COUNT STREAK DURATION"`
	TargetValue int    `json:"targetValue" validate:"required,gt=0"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Icon        string `json:"icon"`
	Deadline    string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

type updateGoalRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Unit        *string `json:"unit"`
	Icon        *string `json:"icon"`
	Deadline    *string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	TargetValue *int    `json:"targetValue" validate:"omitempty,gt=0"`
}

type progressRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type goalResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	Type               string     `json:"type"`
	TargetValue        int        `json:"targetValue"`
	CurrentValue       int        `json:"currentValue"`
	Unit               *string    `json:"unit,omitempty"`
	Icon               string     `json:"icon"`
	Deadline           *clock.Day `json:"deadline,omitempty"`
	ProgressPercentage float64    `json:"progressPercentage"`
	DaysRemaining      *int       `json:"daysRemaining,omitempty"`
	Overdue            bool       `json:"overdue"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func (s *Server) newGoalResponse(g *models.Goal) *goalResponse {
	today := s.clk.Today()
	return &goalResponse{
		ID:                 g.ID,
		Title:              g.Title,
		Description:        g.Description,
		Type:               string(g.Type),
		TargetValue:        g.TargetValue,
		CurrentValue:       g.CurrentValue,
		Unit:               g.Unit,
		Icon:               g.Icon,
		Deadline:           g.Deadline,
		ProgressPercentage: g.ProgressPercentage(),
		DaysRemaining:      g.DaysRemaining(today),
		Overdue:            g.Overdue(today),
		Completed:          g.Completed,
		CompletedAt:        g.CompletedAt,
		CreatedAt:          g.CreatedAt,
	}
}

// ListGoals returns the owner's goals with derived progress.
func (s *Server) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(ownerID(r))
	if err != nil {
		s.respondError(w, err)
		return
	}
	resp := make([]*goalResponse, 0, len(goals))
	for _, g := range goals {
		resp = append(resp, s.newGoalResponse(g))
	}
	s.respond(w, http.StatusOK, resp)
}

// CreateGoal creates a new goal for the owner.
func (s *Server) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	g := models.NewGoal(ownerID(r), req.Title, models.GoalType(req.Type), req.TargetValue)
	if req.Description != "" {
		g = g.WithDescription(req.Description)
	}
	if req.Unit != "" {
		g = g.WithUnit(req.Unit)
	}
	if req.Icon != "" {
		g = g.WithIcon(req.Icon)
	}
	if req.Deadline != "" {
		deadline, err := clock.ParseDay(req.Deadline)
		if err != nil {
			s.respondError(w, apperror.Invalid("invalid deadline "+req.Deadline))
			return
		}
		g = g.WithDeadline(deadline)
	}

	created, err := s.goals.Create(g)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, s.newGoalResponse(created))
}

// GetGoal returns one goal. The path ID may be a prefix.
func (s *Server) GetGoal(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveGoalID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	g, err := s.goals.Get(owner, id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, s.newGoalResponse(g))
}

// UpdateGoal patches a goal's editable fields. Progress and completion
// state are derived and cannot be set here.
func (s *Server) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveGoalID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req updateGoalRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	g, err := s.goals.Get(owner, id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if req.Title != nil {
		g.Title = *req.Title
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	if req.Unit != nil {
		g.Unit = req.Unit
	}
	if req.Icon != nil {
		g.Icon = *req.Icon
	}
	if req.TargetValue != nil {
		g.TargetValue = *req.TargetValue
	}
	if req.Deadline != nil {
		deadline, err := clock.ParseDay(*req.Deadline)
		if err != nil {
			s.respondError(w, apperror.Invalid("invalid deadline "+*req.Deadline))
			return
		}
		g.Deadline = &deadline
	}

	updated, err := s.goals.Update(g)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, s.newGoalResponse(updated))
}

// DeleteGoal removes a goal and its progress log.
func (s *Server) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveGoalID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.goals.Delete(owner, id); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

// LogProgress appends a progress increment and returns the updated goal.
func (s *Server) LogProgress(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveGoalID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req progressRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	g, err := s.goals.IncrementProgress(owner, id, req.Delta)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, s.newGoalResponse(g))
}

// GoalStats returns aggregate goal statistics for the owner.
func (s *Server) GoalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.goals.GetStats(ownerID(r))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{
		"totalGoals":        stats.TotalGoals,
		"completedGoals":    stats.CompletedGoals,
		"inProgressGoals":   stats.InProgressGoals,
		"upcomingDeadlines": stats.UpcomingDeadlines,
		"averageProgress":   stats.AverageProgress,
	})
}
