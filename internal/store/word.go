package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Word represents one gloss in the vocabulary with its sample count.
type Word struct {
	ID          int64
	Gloss       string
	SampleCount int
	CreatedAt   time.Time
}

// WordRepository provides CRUD operations for vocabulary words.
type WordRepository struct {
	db *sql.DB
}

// Words returns the word repository for this store.
func (s *Store) Words() *WordRepository {
	return &WordRepository{db: s.db}
}

// Upsert inserts a word or updates its sample count if the gloss already
// exists. The word's ID is filled in on return.
func (r *WordRepository) Upsert(w *Word) error {
	_, err := r.db.Exec(
		`INSERT INTO words (gloss, sample_count, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(gloss) DO UPDATE SET sample_count = excluded.sample_count`,
		w.Gloss, w.SampleCount, time.Now(),
	)
	if err != nil {
		return err
	}

	return r.db.QueryRow(
		`SELECT id, created_at FROM words WHERE gloss = ?`, w.Gloss,
	).Scan(&w.ID, &w.CreatedAt)
}

// GetByGloss retrieves a word by its gloss text.
func (r *WordRepository) GetByGloss(gloss string) (*Word, error) {
	w := &Word{}

	err := r.db.QueryRow(
		`SELECT id, gloss, sample_count, created_at FROM words WHERE gloss = ?`,
		gloss,
	).Scan(&w.ID, &w.Gloss, &w.SampleCount, &w.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return w, nil
}

// List retrieves all words ordered by gloss.
func (r *WordRepository) List() ([]*Word, error) {
	rows, err := r.db.Query(
		`SELECT id, gloss, sample_count, created_at FROM words ORDER BY gloss`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []*Word
	for rows.Next() {
		w := &Word{}
		if err := rows.Scan(&w.ID, &w.Gloss, &w.SampleCount, &w.CreatedAt); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// Top retrieves the n words with the most samples.
func (r *WordRepository) Top(n int) ([]*Word, error) {
	rows, err := r.db.Query(
		`SELECT id, gloss, sample_count, created_at FROM words
		 ORDER BY sample_count DESC, gloss LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []*Word
	for rows.Next() {
		w := &Word{}
		if err := rows.Scan(&w.ID, &w.Gloss, &w.SampleCount, &w.CreatedAt); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// Count returns the number of words in the vocabulary.
func (r *WordRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&n)
	return n, err
}

// Delete removes a word and, through the foreign key cascade, its videos.
func (r *WordRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
