package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/glossnet/internal/store"
)

// Labels maps glosses to class indices. Indices follow the sorted gloss
// order from the store, so they are stable as long as the vocabulary is.
type Labels struct {
	glosses []string
	index   map[string]int
}

// LoadLabels builds the label mapping from the stored vocabulary.
func LoadLabels(s *store.Store) (*Labels, error) {
	words, err := s.Words().List()
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("vocabulary is empty; ingest a dataset first")
	}

	l := &Labels{index: make(map[string]int, len(words))}
	for i, w := range words {
		l.glosses = append(l.glosses, w.Gloss)
		l.index[w.Gloss] = i
	}
	return l, nil
}

// Len returns the number of classes.
func (l *Labels) Len() int { return len(l.glosses) }

// Gloss returns the gloss for a class index.
func (l *Labels) Gloss(class int) (string, error) {
	if class < 0 || class >= len(l.glosses) {
		return "", fmt.Errorf("class %d out of range [0, %d)", class, len(l.glosses))
	}
	return l.glosses[class], nil
}

// Class returns the class index for a gloss.
func (l *Labels) Class(gloss string) (int, error) {
	i, ok := l.index[gloss]
	if !ok {
		return 0, fmt.Errorf("gloss %q is not in the vocabulary", gloss)
	}
	return i, nil
}

// Batch is a set of landmark sequences with their one-hot target rows.
type Batch struct {
	Sequences []*mat.Dense
	Targets   *mat.Dense
}

// LoadSplit loads every sequence in a dataset partition as a single batch.
// Sequences whose shape does not match (frames, landmarks) are skipped with
// a count of how many were dropped.
func LoadSplit(s *store.Store, labels *Labels, split store.Split, frames, landmarks int) (*Batch, int, error) {
	seqs, err := s.Sequences().ListBySplit(split)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s sequences: %w", split, err)
	}

	batch := &Batch{}
	var rows []int
	dropped := 0

	for _, ls := range seqs {
		if len(ls.Data) != frames || len(ls.Data) > 0 && len(ls.Data[0]) != landmarks {
			dropped++
			continue
		}

		class, err := labels.Class(ls.Gloss)
		if err != nil {
			return nil, 0, err
		}

		m := mat.NewDense(frames, landmarks, nil)
		for i, row := range ls.Data {
			if len(row) != landmarks {
				return nil, 0, fmt.Errorf("sequence for %q has a ragged row", ls.Gloss)
			}
			m.SetRow(i, row)
		}

		batch.Sequences = append(batch.Sequences, m)
		rows = append(rows, class)
	}

	if len(batch.Sequences) > 0 {
		batch.Targets = mat.NewDense(len(rows), labels.Len(), nil)
		for i, class := range rows {
			batch.Targets.Set(i, class, 1)
		}
	}

	return batch, dropped, nil
}
