// ABOUTME: Achievement unlock persistence for SQLite storage.
// ABOUTME: Unlocks are sticky facts; recording twice keeps the first timestamp.
package storage

import (
	"fmt"
	"time"

	"github.com/harperreed/habits/internal/models"
)

// RecordUnlock persists an achievement unlock. Idempotent: a second record
// for the same (owner, achievement) is ignored, preserving the original
// unlock timestamp.
func (d *DB) RecordUnlock(u *models.AchievementUnlock) error {
	query := `
		INSERT OR IGNORE INTO achievement_unlocks (owner_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
	`
	_, err := d.db.Exec(query,
		u.OwnerID,
		u.AchievementID,
		u.UnlockedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record unlock: %w", err)
	}
	return nil
}

// ListUnlocks retrieves all recorded unlocks for an owner.
func (d *DB) ListUnlocks(ownerID string) ([]*models.AchievementUnlock, error) {
	query := `
		SELECT owner_id, achievement_id, unlocked_at
		FROM achievement_unlocks
		WHERE owner_id = ?
		ORDER BY unlocked_at ASC
	`
	rows, err := d.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	var unlocks []*models.AchievementUnlock
	for rows.Next() {
		var (
			u          models.AchievementUnlock
			unlockedAt string
		)
		if err := rows.Scan(&u.OwnerID, &u.AchievementID, &unlockedAt); err != nil {
			return nil, fmt.Errorf("list unlocks: %w", err)
		}
		u.UnlockedAt = parseTimestamp(unlockedAt)
		unlocks = append(unlocks, &u)
	}
	return unlocks, rows.Err()
}
