// ABOUTME: Habit and check-in HTTP handlers.
// ABOUTME: Request DTOs carry validator tags; responses augment habits with derived state.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

type createHabitRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type updateHabitRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

type checkInRequest struct {
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes string `json:"notes"`
}

type stateResponse struct {
	CurrentStreak  int    `json:"currentStreak"`
	LongestStreak  int    `json:"longestStreak"`
	TotalCheckIns  int    `json:"totalCheckIns"`
	CheckedInToday bool   `json:"checkedInToday"`
	LastCheckIn    string `json:"lastCheckIn,omitempty"`
}

type habitResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Icon        string         `json:"icon"`
	Frequency   string         `json:"frequency"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"createdAt"`
	State       *stateResponse `json:"state,omitempty"`
}

func newStateResponse(state *models.HabitState) *stateResponse {
	resp := &stateResponse{
		CurrentStreak:  state.CurrentStreak,
		LongestStreak:  state.LongestStreak,
		TotalCheckIns:  state.TotalCheckIns,
		CheckedInToday: state.CheckedInToday,
	}
	if !state.LastCheckIn.IsZero() {
		resp.LastCheckIn = state.LastCheckIn.String()
	}
	return resp
}

func newHabitResponse(h *models.Habit, state *models.HabitState) *habitResponse {
	resp := &habitResponse{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Icon:        h.Icon,
		Frequency:   string(h.Frequency),
		Active:      h.Active,
		CreatedAt:   h.CreatedAt,
	}
	if state != nil {
		resp.State = newStateResponse(state)
	}
	return resp
}

// ListHabits returns the owner's active habits augmented with streak state.
func (s *Server) ListHabits(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	habits, err := s.repo.ListHabits(owner, r.URL.Query().Get("all") == "")
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := make([]*habitResponse, 0, len(habits))
	for _, h := range habits {
		state, err := s.streaks.ComputeState(owner, h.ID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		resp = append(resp, newHabitResponse(h, state))
	}
	s.respond(w, http.StatusOK, resp)
}

// CreateHabit creates a new habit for the owner.
func (s *Server) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	h := models.NewHabit(ownerID(r), req.Name)
	if req.Description != "" {
		h = h.WithDescription(req.Description)
	}
	if req.Icon != "" {
		h = h.WithIcon(req.Icon)
	}
	if err := h.Validate(); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.repo.CreateHabit(h); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, newHabitResponse(h, &models.HabitState{}))
}

// GetHabit returns one habit with streak state. The path ID may be a prefix.
func (s *Server) GetHabit(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveHabitID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	h, err := s.repo.GetHabit(owner, id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	state, err := s.streaks.ComputeState(owner, id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, newHabitResponse(h, state))
}

// UpdateHabit patches a habit's editable fields.
func (s *Server) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveHabitID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req updateHabitRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	h, err := s.repo.GetHabit(owner, id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if req.Name != nil {
		h.Name = *req.Name
	}
	if req.Description != nil {
		h.Description = req.Description
	}
	if req.Icon != nil {
		h.Icon = *req.Icon
	}
	if err := h.Validate(); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.repo.UpdateHabit(h); err != nil {
		s.respondError(w, err)
		return
	}

	state, err := s.streaks.ComputeState(owner, id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, newHabitResponse(h, state))
}

// ArchiveHabit marks a habit inactive; its history is retained.
func (s *Server) ArchiveHabit(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveHabitID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.repo.ArchiveHabit(owner, id); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

// CheckIn records today's (or a given past day's) check-in. A duplicate
// returns 409 with the current state so clients can still render it.
func (s *Server) CheckIn(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveHabitID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req checkInRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	var day clock.Day
	if req.Date != "" {
		if day, err = clock.ParseDay(req.Date); err != nil {
			s.respondError(w, apperror.Invalid("invalid date "+req.Date))
			return
		}
	}

	state, err := s.streaks.CheckIn(owner, id, day, req.Notes)
	if errors.Is(err, apperror.ErrAlreadyCheckedIn) && state != nil {
		s.respond(w, http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
			"state": newStateResponse(state),
		})
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, newStateResponse(state))
}

type checkInResponse struct {
	Day       string    `json:"day"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// History returns the habit's check-ins over a trailing window of days.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	id, err := s.repo.ResolveHabitID(owner, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if days, err = strconv.Atoi(v); err != nil {
			s.respondError(w, apperror.Invalid("invalid days "+v))
			return
		}
	}

	checkIns, err := s.streaks.History(owner, id, days)
	if err != nil {
		s.respondError(w, err)
		return
	}
	resp := make([]checkInResponse, 0, len(checkIns))
	for _, c := range checkIns {
		resp = append(resp, checkInResponse{
			Day:       c.Day.String(),
			Notes:     c.Notes,
			CreatedAt: c.CreatedAt,
		})
	}
	s.respond(w, http.StatusOK, resp)
}
