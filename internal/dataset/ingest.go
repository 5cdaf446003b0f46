// Package dataset ingests sign-language dataset metadata into the store and
// loads labeled landmark sequences back out for training and evaluation.
package dataset

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"os"

	"github.com/ayusman/glossnet/internal/store"
)

// entry mirrors one gloss record of the dataset metadata JSON.
type entry struct {
	Gloss     string     `json:"gloss"`
	Instances []instance `json:"instances"`
}

// instance mirrors one video instance of a gloss.
type instance struct {
	VideoID  string  `json:"video_id"`
	URL      string  `json:"url"`
	FPS      float64 `json:"fps"`
	SignerID int     `json:"signer_id"`
	Split    string  `json:"split"`
}

// Summary reports what an ingest run put into the store.
type Summary struct {
	Words   int
	Videos  int
	Skipped int
}

// Ingest reads dataset metadata JSON from r and loads the vocabulary and
// video catalog into the store. Glosses with no instances are skipped, as
// are duplicate video IDs. Instances without a valid split assignment are
// partitioned deterministically by video ID, roughly 70/15/15.
func Ingest(r io.Reader, s *store.Store) (*Summary, error) {
	var entries []entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse dataset metadata: %w", err)
	}

	words := s.Words()
	videos := s.Videos()
	sum := &Summary{}

	for _, e := range entries {
		if e.Gloss == "" || len(e.Instances) == 0 {
			sum.Skipped++
			continue
		}

		word := &store.Word{Gloss: e.Gloss, SampleCount: len(e.Instances)}
		if err := words.Upsert(word); err != nil {
			return nil, fmt.Errorf("failed to store word %q: %w", e.Gloss, err)
		}
		sum.Words++

		for _, inst := range e.Instances {
			if inst.VideoID == "" {
				sum.Skipped++
				continue
			}

			split := store.Split(inst.Split)
			if !split.Valid() {
				split = assignSplit(inst.VideoID)
			}

			v := &store.Video{
				WordID:   word.ID,
				VideoID:  inst.VideoID,
				URL:      inst.URL,
				FPS:      inst.FPS,
				SignerID: inst.SignerID,
				Split:    split,
			}
			if err := videos.Create(v); err != nil {
				// Duplicate video IDs across glosses appear in the wild;
				// keep the first occurrence.
				if _, lookupErr := videos.GetByVideoID(inst.VideoID); lookupErr == nil {
					log.Printf("dataset: skipping duplicate video %s for gloss %q", inst.VideoID, e.Gloss)
					sum.Skipped++
					continue
				}
				return nil, fmt.Errorf("failed to store video %s: %w", inst.VideoID, err)
			}
			sum.Videos++
		}
	}

	return sum, nil
}

// IngestFile ingests dataset metadata from a JSON file on disk.
func IngestFile(path string, s *store.Store) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset metadata: %w", err)
	}
	defer f.Close()

	return Ingest(f, s)
}

// assignSplit buckets a video into train/val/test by hashing its ID, so the
// assignment is stable across runs: 70% train, 15% val, 15% test.
func assignSplit(videoID string) store.Split {
	h := fnv.New32a()
	h.Write([]byte(videoID))
	switch n := h.Sum32() % 100; {
	case n < 70:
		return store.SplitTrain
	case n < 85:
		return store.SplitVal
	default:
		return store.SplitTest
	}
}
