package store

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "glossnet-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestWordRepository_Upsert(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	word := &Word{Gloss: "book", SampleCount: 12}

	// Insert the word
	if err := repo.Upsert(word); err != nil {
		t.Fatalf("failed to upsert word: %v", err)
	}
	if word.ID == 0 {
		t.Error("ID should be set after upsert")
	}
	if word.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after upsert")
	}

	// Retrieve it back
	retrieved, err := repo.GetByGloss("book")
	if err != nil {
		t.Fatalf("failed to get word by gloss: %v", err)
	}
	if retrieved.SampleCount != 12 {
		t.Errorf("SampleCount mismatch: got %d, want 12", retrieved.SampleCount)
	}

	// Upserting the same gloss should update the count, not add a row
	word2 := &Word{Gloss: "book", SampleCount: 20}
	if err := repo.Upsert(word2); err != nil {
		t.Fatalf("failed to upsert existing word: %v", err)
	}
	if word2.ID != word.ID {
		t.Errorf("upsert changed the ID: got %d, want %d", word2.ID, word.ID)
	}

	retrieved, err = repo.GetByGloss("book")
	if err != nil {
		t.Fatalf("failed to get word after second upsert: %v", err)
	}
	if retrieved.SampleCount != 20 {
		t.Errorf("SampleCount not updated: got %d, want 20", retrieved.SampleCount)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("failed to count words: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 word after double upsert, got %d", count)
	}
}

func TestWordRepository_GetByGloss_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	_, err := repo.GetByGloss("nonexistent")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestWordRepository_List_OrderedByGloss(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	for _, g := range []string{"drink", "apple", "computer"} {
		if err := repo.Upsert(&Word{Gloss: g, SampleCount: 1}); err != nil {
			t.Fatalf("failed to upsert %q: %v", g, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list words: %v", err)
	}

	want := []string{"apple", "computer", "drink"}
	if len(list) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(list))
	}
	for i, g := range want {
		if list[i].Gloss != g {
			t.Errorf("list[%d].Gloss = %q, want %q", i, list[i].Gloss, g)
		}
	}
}

func TestWordRepository_Top(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	words := []*Word{
		{Gloss: "before", SampleCount: 5},
		{Gloss: "drink", SampleCount: 30},
		{Gloss: "book", SampleCount: 20},
	}
	for _, w := range words {
		if err := repo.Upsert(w); err != nil {
			t.Fatalf("failed to upsert %q: %v", w.Gloss, err)
		}
	}

	top, err := repo.Top(2)
	if err != nil {
		t.Fatalf("failed to get top words: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 words, got %d", len(top))
	}
	if top[0].Gloss != "drink" || top[1].Gloss != "book" {
		t.Errorf("top words = [%q, %q], want [drink, book]", top[0].Gloss, top[1].Gloss)
	}
}

func TestWordRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	word := &Word{Gloss: "book", SampleCount: 1}
	if err := repo.Upsert(word); err != nil {
		t.Fatalf("failed to upsert word: %v", err)
	}

	if err := repo.Delete(word.ID); err != nil {
		t.Fatalf("failed to delete word: %v", err)
	}

	_, err := repo.GetByGloss("book")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}

	// Deleting again should report not found
	if err := repo.Delete(word.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for repeated delete, got: %v", err)
	}
}

func TestWordRepository_Delete_CascadesToVideos(t *testing.T) {
	s := newTestStore(t)

	word := &Word{Gloss: "book", SampleCount: 1}
	if err := s.Words().Upsert(word); err != nil {
		t.Fatalf("failed to upsert word: %v", err)
	}

	video := &Video{WordID: word.ID, VideoID: "07069", Split: SplitTrain}
	if err := s.Videos().Create(video); err != nil {
		t.Fatalf("failed to create video: %v", err)
	}

	if err := s.Words().Delete(word.ID); err != nil {
		t.Fatalf("failed to delete word: %v", err)
	}

	_, err := s.Videos().GetByVideoID("07069")
	if err != ErrNotFound {
		t.Errorf("video should be cascade-deleted with its word, got: %v", err)
	}
}
