package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Words table - the gloss vocabulary
		`CREATE TABLE IF NOT EXISTS words (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			gloss TEXT NOT NULL UNIQUE,
			sample_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Videos table - one row per dataset video instance
		`CREATE TABLE IF NOT EXISTS videos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			word_id INTEGER NOT NULL REFERENCES words(id) ON DELETE CASCADE,
			video_id TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL DEFAULT '',
			fps REAL NOT NULL DEFAULT 0,
			signer_id INTEGER NOT NULL DEFAULT 0,
			split TEXT NOT NULL CHECK(split IN ('train', 'val', 'test')),
			local_path TEXT NOT NULL DEFAULT '',
			downloaded INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sequences table - extracted landmark sequences ready for the model
		`CREATE TABLE IF NOT EXISTS sequences (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL REFERENCES videos(video_id) ON DELETE CASCADE,
			frames INTEGER NOT NULL,
			landmarks INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_videos_word_id ON videos(word_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_split ON videos(split)`,
		`CREATE INDEX IF NOT EXISTS idx_sequences_video_id ON sequences(video_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
