// ABOUTME: Goal and progress-increment operations for SQLite storage.
// ABOUTME: Progress is append-only; current value is the sum of deltas.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

// CreateGoal stores a new goal in the database.
func (d *DB) CreateGoal(g *models.Goal) error {
	var deadline *string
	if g.Deadline != nil {
		s := g.Deadline.String()
		deadline = &s
	}

	query := `
		INSERT INTO goals (id, owner_id, title, description, goal_type, target_value,
			unit, icon, deadline, completed, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		g.ID.String(),
		g.OwnerID,
		g.Title,
		g.Description,
		string(g.Type),
		g.TargetValue,
		g.Unit,
		g.Icon,
		deadline,
		boolToInt(g.Completed),
		formatTimePtr(g.CompletedAt),
		g.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// GetGoal retrieves one of the owner's goals by ID, with CurrentValue
// populated from the increment log.
func (d *DB) GetGoal(ownerID string, id uuid.UUID) (*models.Goal, error) {
	query := goalSelect + " WHERE g.id = ? AND g.owner_id = ? GROUP BY g.id"
	g, err := scanGoal(d.db.QueryRow(query, id.String(), ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("goal", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// ListGoals retrieves the owner's goals, newest first, with current values.
func (d *DB) ListGoals(ownerID string) ([]*models.Goal, error) {
	query := goalSelect + " WHERE g.owner_id = ? GROUP BY g.id ORDER BY g.created_at DESC"
	rows, err := d.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("list goals: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal persists changes to a goal's editable fields and completion
// state. CurrentValue is derived and not written here.
func (d *DB) UpdateGoal(g *models.Goal) error {
	var deadline *string
	if g.Deadline != nil {
		s := g.Deadline.String()
		deadline = &s
	}

	query := `
		UPDATE goals
		SET title = ?, description = ?, goal_type = ?, target_value = ?,
			unit = ?, icon = ?, deadline = ?, completed = ?, completed_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := d.db.Exec(query,
		g.Title, g.Description, string(g.Type), g.TargetValue,
		g.Unit, g.Icon, deadline, boolToInt(g.Completed), formatTimePtr(g.CompletedAt),
		g.ID.String(), g.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireAffected(result, "goal", g.ID.String())
}

// DeleteGoal removes a goal and its increments (cascade).
func (d *DB) DeleteGoal(ownerID string, id uuid.UUID) error {
	result, err := d.db.Exec(
		"DELETE FROM goals WHERE id = ? AND owner_id = ?",
		id.String(), ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireAffected(result, "goal", id.String())
}

// ResolveGoalID resolves a full ID or unambiguous ID prefix to a goal ID.
func (d *DB) ResolveGoalID(ownerID, idOrPrefix string) (uuid.UUID, error) {
	return d.resolveID("goals", ownerID, idOrPrefix)
}

// AppendProgress appends a progress increment to a goal's log.
func (d *DB) AppendProgress(p *models.ProgressIncrement) error {
	query := `
		INSERT INTO progress_increments (id, goal_id, delta, applied_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		p.ID.String(),
		p.GoalID.String(),
		p.Delta,
		p.AppliedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append progress: %w", err)
	}
	return nil
}

// ListProgress retrieves a goal's increments in application order.
func (d *DB) ListProgress(goalID uuid.UUID) ([]*models.ProgressIncrement, error) {
	query := `
		SELECT id, goal_id, delta, applied_at
		FROM progress_increments
		WHERE goal_id = ?
		ORDER BY applied_at ASC
	`
	rows, err := d.db.Query(query, goalID.String())
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var increments []*models.ProgressIncrement
	for rows.Next() {
		var (
			p         models.ProgressIncrement
			idStr     string
			goalStr   string
			appliedAt string
		)
		if err := rows.Scan(&idStr, &goalStr, &p.Delta, &appliedAt); err != nil {
			return nil, fmt.Errorf("list progress: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse increment id: %w", err)
		}
		gid, err := uuid.Parse(goalStr)
		if err != nil {
			return nil, fmt.Errorf("parse goal id: %w", err)
		}
		p.ID = id
		p.GoalID = gid
		p.AppliedAt = parseTimestamp(appliedAt)
		increments = append(increments, &p)
	}
	return increments, rows.Err()
}

const goalSelect = `
	SELECT g.id, g.owner_id, g.title, g.description, g.goal_type, g.target_value,
		COALESCE(SUM(p.delta), 0) AS current_value,
		g.unit, g.icon, g.deadline, g.completed, g.completed_at, g.created_at
	FROM goals g
	LEFT JOIN progress_increments p ON p.goal_id = g.id
`

func scanGoal(s scanner) (*models.Goal, error) {
	var (
		g           models.Goal
		idStr       string
		goalType    string
		deadline    *string
		completed   int
		completedAt *string
		createdAt   string
	)
	if err := s.Scan(&idStr, &g.OwnerID, &g.Title, &g.Description, &goalType,
		&g.TargetValue, &g.CurrentValue, &g.Unit, &g.Icon, &deadline,
		&completed, &completedAt, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse goal id: %w", err)
	}
	g.ID = id
	g.Type = models.GoalType(goalType)
	g.Completed = completed != 0
	g.CreatedAt = parseTimestamp(createdAt)

	if deadline != nil {
		day, err := clock.ParseDay(*deadline)
		if err != nil {
			return nil, err
		}
		g.Deadline = &day
	}
	if completedAt != nil {
		t := parseTimestamp(*completedAt)
		g.CompletedAt = &t
	}
	return &g, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
