package store

import (
	"database/sql"
	"errors"
	"time"
)

// Split identifies which portion of the dataset a video belongs to.
type Split string

const (
	// SplitTrain marks videos used for parameter fitting.
	SplitTrain Split = "train"
	// SplitVal marks videos held out for validation during training.
	SplitVal Split = "val"
	// SplitTest marks videos reserved for final evaluation.
	SplitTest Split = "test"
)

// Valid reports whether the split is one of the known dataset partitions.
func (s Split) Valid() bool {
	switch s {
	case SplitTrain, SplitVal, SplitTest:
		return true
	}
	return false
}

// Video represents one dataset video instance for a word.
type Video struct {
	ID         int64
	WordID     int64
	VideoID    string
	URL        string
	FPS        float64
	SignerID   int
	Split      Split
	LocalPath  string
	Downloaded bool
	Processed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VideoRepository provides CRUD operations for dataset videos.
type VideoRepository struct {
	db *sql.DB
}

// Videos returns the video repository for this store.
func (s *Store) Videos() *VideoRepository {
	return &VideoRepository{db: s.db}
}

// Create inserts a new video into the database.
func (r *VideoRepository) Create(v *Video) error {
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now

	result, err := r.db.Exec(
		`INSERT INTO videos (word_id, video_id, url, fps, signer_id, split, local_path, downloaded, processed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.WordID, v.VideoID, v.URL, v.FPS, v.SignerID, string(v.Split),
		v.LocalPath, v.Downloaded, v.Processed, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return err
	}

	v.ID, err = result.LastInsertId()
	return err
}

// GetByVideoID retrieves a video by its dataset video identifier.
func (r *VideoRepository) GetByVideoID(videoID string) (*Video, error) {
	v := &Video{}
	var split string
	var downloaded, processed int

	err := r.db.QueryRow(
		`SELECT id, word_id, video_id, url, fps, signer_id, split, local_path, downloaded, processed, created_at, updated_at
		 FROM videos WHERE video_id = ?`,
		videoID,
	).Scan(&v.ID, &v.WordID, &v.VideoID, &v.URL, &v.FPS, &v.SignerID, &split,
		&v.LocalPath, &downloaded, &processed, &v.CreatedAt, &v.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	v.Split = Split(split)
	v.Downloaded = downloaded != 0
	v.Processed = processed != 0
	return v, nil
}

// ListBySplit retrieves all videos in a dataset partition.
func (r *VideoRepository) ListBySplit(split Split) ([]*Video, error) {
	rows, err := r.db.Query(
		`SELECT id, word_id, video_id, url, fps, signer_id, split, local_path, downloaded, processed, created_at, updated_at
		 FROM videos WHERE split = ? ORDER BY video_id`,
		string(split),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		v := &Video{}
		var s string
		var downloaded, processed int

		err := rows.Scan(&v.ID, &v.WordID, &v.VideoID, &v.URL, &v.FPS, &v.SignerID, &s,
			&v.LocalPath, &downloaded, &processed, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, err
		}

		v.Split = Split(s)
		v.Downloaded = downloaded != 0
		v.Processed = processed != 0
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return videos, nil
}

// MarkDownloaded records the local file path for a fetched video.
func (r *VideoRepository) MarkDownloaded(videoID, localPath string) error {
	result, err := r.db.Exec(
		`UPDATE videos SET downloaded = 1, local_path = ?, updated_at = ? WHERE video_id = ?`,
		localPath, time.Now(), videoID,
	)
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

// MarkProcessed records that landmarks have been extracted for a video.
func (r *VideoRepository) MarkProcessed(videoID string) error {
	result, err := r.db.Exec(
		`UPDATE videos SET processed = 1, updated_at = ? WHERE video_id = ?`,
		time.Now(), videoID,
	)
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

// SplitDistribution returns the number of videos in each dataset partition.
func (r *VideoRepository) SplitDistribution() (map[Split]int, error) {
	rows, err := r.db.Query(`SELECT split, COUNT(*) FROM videos GROUP BY split`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[Split]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		dist[Split(s)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dist, nil
}

// Count returns the total number of videos in the catalog.
func (r *VideoRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM videos`).Scan(&n)
	return n, err
}
