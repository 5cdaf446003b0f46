package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sequence represents one extracted landmark sequence: frames rows of
// flattened landmark coordinates, stored as a JSON matrix.
type Sequence struct {
	ID        string
	VideoID   string
	Frames    int
	Landmarks int
	Data      [][]float64
	CreatedAt time.Time
}

// LabeledSequence is a sequence joined with the gloss and split of the
// video it came from, ready to feed training or evaluation.
type LabeledSequence struct {
	Gloss string
	Split Split
	Data  [][]float64
}

// SequenceRepository provides CRUD operations for landmark sequences.
type SequenceRepository struct {
	db *sql.DB
}

// Sequences returns the sequence repository for this store.
func (s *Store) Sequences() *SequenceRepository {
	return &SequenceRepository{db: s.db}
}

// Put stores a landmark sequence for a video. A fresh ID is assigned and
// filled in on return.
func (r *SequenceRepository) Put(seq *Sequence) error {
	if len(seq.Data) == 0 {
		return fmt.Errorf("sequence for video %s has no frames", seq.VideoID)
	}

	seq.ID = uuid.New().String()
	seq.Frames = len(seq.Data)
	seq.Landmarks = len(seq.Data[0])
	seq.CreatedAt = time.Now()

	data, err := json.Marshal(seq.Data)
	if err != nil {
		return fmt.Errorf("failed to encode sequence data: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO sequences (id, video_id, frames, landmarks, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		seq.ID, seq.VideoID, seq.Frames, seq.Landmarks, string(data), seq.CreatedAt,
	)
	return err
}

// GetByVideoID retrieves all sequences extracted from a video.
func (r *SequenceRepository) GetByVideoID(videoID string) ([]*Sequence, error) {
	rows, err := r.db.Query(
		`SELECT id, video_id, frames, landmarks, data, created_at
		 FROM sequences WHERE video_id = ? ORDER BY created_at`,
		videoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seqs []*Sequence
	for rows.Next() {
		seq := &Sequence{}
		var data string
		if err := rows.Scan(&seq.ID, &seq.VideoID, &seq.Frames, &seq.Landmarks, &data, &seq.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &seq.Data); err != nil {
			return nil, fmt.Errorf("failed to decode sequence %s: %w", seq.ID, err)
		}
		seqs = append(seqs, seq)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seqs, nil
}

// ListBySplit retrieves all sequences in a dataset partition together with
// the gloss of the word each one belongs to.
func (r *SequenceRepository) ListBySplit(split Split) ([]*LabeledSequence, error) {
	rows, err := r.db.Query(
		`SELECT w.gloss, v.split, s.data
		 FROM sequences s
		 JOIN videos v ON v.video_id = s.video_id
		 JOIN words w ON w.id = v.word_id
		 WHERE v.split = ?
		 ORDER BY w.gloss, s.id`,
		string(split),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seqs []*LabeledSequence
	for rows.Next() {
		ls := &LabeledSequence{}
		var s, data string
		if err := rows.Scan(&ls.Gloss, &s, &data); err != nil {
			return nil, err
		}
		ls.Split = Split(s)
		if err := json.Unmarshal([]byte(data), &ls.Data); err != nil {
			return nil, fmt.Errorf("failed to decode sequence data: %w", err)
		}
		seqs = append(seqs, ls)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seqs, nil
}

// DeleteByVideoID removes all sequences extracted from a video.
func (r *SequenceRepository) DeleteByVideoID(videoID string) error {
	_, err := r.db.Exec(`DELETE FROM sequences WHERE video_id = ?`, videoID)
	return err
}

// Count returns the total number of stored sequences.
func (r *SequenceRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sequences`).Scan(&n)
	return n, err
}
