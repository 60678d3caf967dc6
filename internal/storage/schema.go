// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for habits, check-ins, goals, progress, and achievement unlocks.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		icon TEXT NOT NULL DEFAULT '✅',
		frequency TEXT NOT NULL DEFAULT 'DAILY',
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS check_ins (
		id TEXT PRIMARY KEY,
		habit_id TEXT NOT NULL,
		day TEXT NOT NULL,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (habit_id) REFERENCES habits(id) ON DELETE CASCADE,
		UNIQUE (habit_id, day)
	);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		goal_type TEXT NOT NULL,
		target_value INTEGER NOT NULL,
		unit TEXT,
		icon TEXT NOT NULL DEFAULT '🎯',
		deadline TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS progress_increments (
		id TEXT PRIMARY KEY,
		goal_id TEXT NOT NULL,
		delta INTEGER NOT NULL,
		applied_at DATETIME NOT NULL,
		FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS achievement_unlocks (
		owner_id TEXT NOT NULL,
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME NOT NULL,
		PRIMARY KEY (owner_id, achievement_id)
	);

	CREATE INDEX IF NOT EXISTS idx_habits_owner ON habits(owner_id, active);
	CREATE INDEX IF NOT EXISTS idx_check_ins_habit_day ON check_ins(habit_id, day DESC);
	CREATE INDEX IF NOT EXISTS idx_check_ins_day ON check_ins(day);
	CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner_id);
	CREATE INDEX IF NOT EXISTS idx_progress_goal ON progress_increments(goal_id, applied_at);
	`

	_, err := d.db.Exec(schema)
	return err
}
