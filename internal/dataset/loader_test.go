package dataset

import (
	"testing"

	"github.com/ayusman/glossnet/internal/store"
)

// seedSequences ingests a tiny vocabulary and stores one sequence per video.
func seedSequences(t *testing.T, s *store.Store, frames, landmarks int) {
	t.Helper()

	words := map[string][]string{
		"book":  {"07069", "07070"},
		"drink": {"12328"},
	}
	for gloss, videoIDs := range words {
		w := &store.Word{Gloss: gloss, SampleCount: len(videoIDs)}
		if err := s.Words().Upsert(w); err != nil {
			t.Fatalf("failed to upsert %q: %v", gloss, err)
		}
		for _, videoID := range videoIDs {
			v := &store.Video{WordID: w.ID, VideoID: videoID, Split: store.SplitTrain}
			if err := s.Videos().Create(v); err != nil {
				t.Fatalf("failed to create video %q: %v", videoID, err)
			}

			data := make([][]float64, frames)
			for i := range data {
				data[i] = make([]float64, landmarks)
			}
			seq := &store.Sequence{VideoID: videoID, Data: data}
			if err := s.Sequences().Put(seq); err != nil {
				t.Fatalf("failed to put sequence for %q: %v", videoID, err)
			}
		}
	}
}

func TestLoadLabels(t *testing.T) {
	s := newTestStore(t)
	seedSequences(t, s, 4, 6)

	labels, err := LoadLabels(s)
	if err != nil {
		t.Fatalf("LoadLabels() error = %v", err)
	}

	if labels.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", labels.Len())
	}

	// Classes follow sorted gloss order
	if class, err := labels.Class("book"); err != nil || class != 0 {
		t.Errorf("Class(book) = %d, %v; want 0, nil", class, err)
	}
	if class, err := labels.Class("drink"); err != nil || class != 1 {
		t.Errorf("Class(drink) = %d, %v; want 1, nil", class, err)
	}
	if gloss, err := labels.Gloss(1); err != nil || gloss != "drink" {
		t.Errorf("Gloss(1) = %q, %v; want drink, nil", gloss, err)
	}

	if _, err := labels.Class("missing"); err == nil {
		t.Error("Class() should fail for an unknown gloss")
	}
	if _, err := labels.Gloss(5); err == nil {
		t.Error("Gloss() should fail for an out-of-range class")
	}
}

func TestLoadLabels_EmptyVocabulary(t *testing.T) {
	s := newTestStore(t)

	if _, err := LoadLabels(s); err == nil {
		t.Error("LoadLabels() should fail on an empty vocabulary")
	}
}

func TestLoadSplit(t *testing.T) {
	s := newTestStore(t)
	seedSequences(t, s, 4, 6)

	labels, err := LoadLabels(s)
	if err != nil {
		t.Fatalf("LoadLabels() error = %v", err)
	}

	batch, dropped, err := LoadSplit(s, labels, store.SplitTrain, 4, 6)
	if err != nil {
		t.Fatalf("LoadSplit() error = %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(batch.Sequences) != 3 {
		t.Fatalf("got %d sequences, want 3", len(batch.Sequences))
	}

	rows, cols := batch.Targets.Dims()
	if rows != 3 || cols != 2 {
		t.Fatalf("Targets dims = (%d, %d), want (3, 2)", rows, cols)
	}

	// Every target row is one-hot
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += batch.Targets.At(i, j)
		}
		if sum != 1 {
			t.Errorf("target row %d sums to %v, want 1", i, sum)
		}
	}
}

func TestLoadSplit_DropsMismatchedShapes(t *testing.T) {
	s := newTestStore(t)
	seedSequences(t, s, 4, 6)

	labels, err := LoadLabels(s)
	if err != nil {
		t.Fatalf("LoadLabels() error = %v", err)
	}

	// Expecting a different shape than what was stored drops everything
	batch, dropped, err := LoadSplit(s, labels, store.SplitTrain, 8, 6)
	if err != nil {
		t.Fatalf("LoadSplit() error = %v", err)
	}
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
	if len(batch.Sequences) != 0 {
		t.Errorf("got %d sequences, want 0", len(batch.Sequences))
	}
	if batch.Targets != nil {
		t.Error("Targets should be nil for an empty batch")
	}
}

func TestLoadSplit_EmptyPartition(t *testing.T) {
	s := newTestStore(t)
	seedSequences(t, s, 4, 6)

	labels, err := LoadLabels(s)
	if err != nil {
		t.Fatalf("LoadLabels() error = %v", err)
	}

	batch, dropped, err := LoadSplit(s, labels, store.SplitTest, 4, 6)
	if err != nil {
		t.Fatalf("LoadSplit() error = %v", err)
	}
	if dropped != 0 || len(batch.Sequences) != 0 {
		t.Errorf("empty partition: dropped = %d, sequences = %d", dropped, len(batch.Sequences))
	}
}
