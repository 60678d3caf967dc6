// ABOUTME: Full-data export for one owner.
// ABOUTME: Gathers habits, check-ins, goals, increments, and unlocks for JSON dumps.
package storage

import (
	"fmt"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

// GetAllData returns everything the owner has recorded.
func (d *DB) GetAllData(ownerID string) (*ExportData, error) {
	habits, err := d.ListHabits(ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("export habits: %w", err)
	}

	checkIns, err := d.ListOwnerCheckIns(ownerID, clock.Day{}, clock.Day{})
	if err != nil {
		return nil, fmt.Errorf("export check-ins: %w", err)
	}

	goals, err := d.ListGoals(ownerID)
	if err != nil {
		return nil, fmt.Errorf("export goals: %w", err)
	}

	var increments []*models.ProgressIncrement
	for _, g := range goals {
		incs, err := d.ListProgress(g.ID)
		if err != nil {
			return nil, fmt.Errorf("export progress: %w", err)
		}
		increments = append(increments, incs...)
	}

	unlocks, err := d.ListUnlocks(ownerID)
	if err != nil {
		return nil, fmt.Errorf("export unlocks: %w", err)
	}

	return &ExportData{
		Habits:     habits,
		CheckIns:   checkIns,
		Goals:      goals,
		Increments: increments,
		Unlocks:    unlocks,
	}, nil
}
