package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Reference poses used by the classifier
		`CREATE TABLE IF NOT EXISTS reference_poses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			angles TEXT NOT NULL,
			fingerprint TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Labeled image pairs with both similarity orientations
		`CREATE TABLE IF NOT EXISTS labeled_pairs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			image1_path TEXT NOT NULL DEFAULT '',
			image1_answer TEXT NOT NULL,
			image1_result TEXT NOT NULL DEFAULT '',
			image2_path TEXT NOT NULL DEFAULT '',
			image2_answer TEXT NOT NULL,
			image2_result TEXT NOT NULL DEFAULT '',
			same INTEGER NOT NULL,
			original TEXT NOT NULL,
			flipped TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Workout records
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			duration_sec REAL NOT NULL DEFAULT 0,
			video_url TEXT NOT NULL DEFAULT '',
			total_score REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Pose segments of a record
		`CREATE TABLE IF NOT EXISTS record_timelines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			start_sec REAL NOT NULL,
			end_sec REAL NOT NULL,
			pose TEXT NOT NULL,
			score REAL NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_labeled_pairs_answers ON labeled_pairs(image1_answer, image2_answer)`,
		`CREATE INDEX IF NOT EXISTS idx_record_timelines_record_id ON record_timelines(record_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
