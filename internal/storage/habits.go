// ABOUTME: Habit and check-in operations for SQLite storage.
// ABOUTME: Enforces the one-check-in-per-day invariant with a unique index.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/apperror"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

// CreateHabit stores a new habit in the database.
func (d *DB) CreateHabit(h *models.Habit) error {
	query := `
		INSERT INTO habits (id, owner_id, name, description, icon, frequency, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		h.ID.String(),
		h.OwnerID,
		h.Name,
		h.Description,
		h.Icon,
		string(h.Frequency),
		boolToInt(h.Active),
		h.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create habit: %w", err)
	}
	return nil
}

// GetHabit retrieves one of the owner's habits by ID.
func (d *DB) GetHabit(ownerID string, id uuid.UUID) (*models.Habit, error) {
	query := `
		SELECT id, owner_id, name, description, icon, frequency, active, created_at
		FROM habits
		WHERE id = ? AND owner_id = ?
	`
	h, err := scanHabit(d.db.QueryRow(query, id.String(), ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("habit", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

// ListHabits retrieves the owner's habits, newest first.
func (d *DB) ListHabits(ownerID string, activeOnly bool) ([]*models.Habit, error) {
	query := `
		SELECT id, owner_id, name, description, icon, frequency, active, created_at
		FROM habits
		WHERE owner_id = ?
	`
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY created_at DESC"

	rows, err := d.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("list habits: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// UpdateHabit persists changes to a habit's editable fields.
func (d *DB) UpdateHabit(h *models.Habit) error {
	query := `
		UPDATE habits
		SET name = ?, description = ?, icon = ?, frequency = ?, active = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := d.db.Exec(query,
		h.Name, h.Description, h.Icon, string(h.Frequency), boolToInt(h.Active),
		h.ID.String(), h.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	return requireAffected(result, "habit", h.ID.String())
}

// ArchiveHabit marks a habit inactive. Check-in history is retained.
func (d *DB) ArchiveHabit(ownerID string, id uuid.UUID) error {
	result, err := d.db.Exec(
		"UPDATE habits SET active = 0 WHERE id = ? AND owner_id = ?",
		id.String(), ownerID,
	)
	if err != nil {
		return fmt.Errorf("archive habit: %w", err)
	}
	return requireAffected(result, "habit", id.String())
}

// ResolveHabitID resolves a full ID or unambiguous ID prefix to a habit ID.
func (d *DB) ResolveHabitID(ownerID, idOrPrefix string) (uuid.UUID, error) {
	return d.resolveID("habits", ownerID, idOrPrefix)
}

// AppendCheckIn appends a check-in event. A second check-in for the same
// (habit, day) violates the unique index and surfaces as ErrAlreadyCheckedIn.
func (d *DB) AppendCheckIn(c *models.CheckIn) error {
	query := `
		INSERT INTO check_ins (id, habit_id, day, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		c.ID.String(),
		c.HabitID.String(),
		c.Day.String(),
		c.Notes,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrAlreadyCheckedIn
		}
		return fmt.Errorf("append check-in: %w", err)
	}
	return nil
}

// HasCheckIn reports whether a check-in exists for the habit on the day.
func (d *DB) HasCheckIn(habitID uuid.UUID, day clock.Day) (bool, error) {
	var n int
	err := d.db.QueryRow(
		"SELECT COUNT(1) FROM check_ins WHERE habit_id = ? AND day = ?",
		habitID.String(), day.String(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has check-in: %w", err)
	}
	return n > 0, nil
}

// ListCheckIns retrieves a habit's check-ins ordered by day ascending.
// Zero from/to days leave that bound open.
func (d *DB) ListCheckIns(habitID uuid.UUID, from, to clock.Day) ([]*models.CheckIn, error) {
	query := "SELECT id, habit_id, day, notes, created_at FROM check_ins WHERE habit_id = ?"
	args := []interface{}{habitID.String()}
	query, args = appendDayBounds(query, args, from, to)
	query += " ORDER BY day ASC"

	return d.queryCheckIns(query, args...)
}

// ListOwnerCheckIns retrieves check-ins across all the owner's habits,
// ordered by day ascending.
func (d *DB) ListOwnerCheckIns(ownerID string, from, to clock.Day) ([]*models.CheckIn, error) {
	query := `
		SELECT c.id, c.habit_id, c.day, c.notes, c.created_at
		FROM check_ins c
		JOIN habits h ON h.id = c.habit_id
		WHERE h.owner_id = ?
	`
	args := []interface{}{ownerID}
	query, args = appendDayBounds(query, args, from, to)
	query += " ORDER BY c.day ASC"

	return d.queryCheckIns(query, args...)
}

func (d *DB) queryCheckIns(query string, args ...interface{}) ([]*models.CheckIn, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []*models.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("list check-ins: %w", err)
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

func appendDayBounds(query string, args []interface{}, from, to clock.Day) (string, []interface{}) {
	if !from.IsZero() {
		query += " AND day >= ?"
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += " AND day <= ?"
		args = append(args, to.String())
	}
	return query, args
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanHabit(s scanner) (*models.Habit, error) {
	var (
		h         models.Habit
		idStr     string
		freq      string
		active    int
		createdAt string
	)
	if err := s.Scan(&idStr, &h.OwnerID, &h.Name, &h.Description, &h.Icon, &freq, &active, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse habit id: %w", err)
	}
	h.ID = id
	h.Frequency = models.HabitFrequency(freq)
	h.Active = active != 0
	h.CreatedAt = parseTimestamp(createdAt)
	return &h, nil
}

func scanCheckIn(s scanner) (*models.CheckIn, error) {
	var (
		c         models.CheckIn
		idStr     string
		habitStr  string
		dayStr    string
		createdAt string
	)
	if err := s.Scan(&idStr, &habitStr, &dayStr, &c.Notes, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse check-in id: %w", err)
	}
	habitID, err := uuid.Parse(habitStr)
	if err != nil {
		return nil, fmt.Errorf("parse habit id: %w", err)
	}
	day, err := clock.ParseDay(dayStr)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.HabitID = habitID
	c.Day = day
	c.CreatedAt = parseTimestamp(createdAt)
	return &c, nil
}

// resolveID resolves a full ID or prefix within an owner-scoped table.
func (d *DB) resolveID(table, ownerID, idOrPrefix string) (uuid.UUID, error) {
	if id, err := uuid.Parse(idOrPrefix); err == nil {
		return id, nil
	}

	query := fmt.Sprintf("SELECT id FROM %s WHERE owner_id = ? AND id LIKE ?", table)
	rows, err := d.db.Query(query, ownerID, idOrPrefix+"%")
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve id: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("resolve id: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("resolve id: %w", err)
	}

	switch len(matches) {
	case 0:
		return uuid.Nil, apperror.NotFound(strings.TrimSuffix(table, "s"), idOrPrefix)
	case 1:
		return uuid.Parse(matches[0])
	default:
		return uuid.Nil, fmt.Errorf("ambiguous id prefix %q matches %d records", idOrPrefix, len(matches))
	}
}

func requireAffected(result sql.Result, kind, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if affected == 0 {
		return apperror.NotFound(kind, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTimestamp handles both RFC3339 (written by us) and the SQLite
// CURRENT_TIMESTAMP default format.
func parseTimestamp(s string) time.Time {
	for _, f := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
