// Package recognize turns a live landmark feed into word predictions. It
// buffers incoming frames into the model's window and smooths the output so
// a single noisy frame does not flip the recognized word.
package recognize

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/glossnet/internal/dataset"
	"github.com/ayusman/glossnet/internal/landmark"
	"github.com/ayusman/glossnet/internal/model"
)

// Config holds tuning options for a live recognizer.
type Config struct {
	// MinConfidence suppresses predictions below this probability.
	MinConfidence float64
	// Smoothing is how many consecutive windows must agree on the top
	// class before it is reported. Zero or one reports every window.
	Smoothing int
}

// Result is one recognized word over the current window.
type Result struct {
	Class      int
	Gloss      string
	Confidence float64
	Probs      []float64
}

// Recognizer feeds landmark frames through a model one window at a time.
// It is not safe for concurrent use; create one per stream.
type Recognizer struct {
	config Config
	model  *model.Model
	labels *dataset.Labels

	window *mat.Dense
	filled int

	candidate int
	streak    int
}

// New creates a Recognizer for the given model and label mapping. Labels
// may be nil, in which case results carry class indices without glosses; a
// non-nil mapping must cover exactly the model's classes.
func New(m *model.Model, labels *dataset.Labels, config Config) (*Recognizer, error) {
	cfg := m.Config()
	if labels != nil && labels.Len() != cfg.NumClasses {
		return nil, fmt.Errorf("label mapping has %d glosses, model has %d classes", labels.Len(), cfg.NumClasses)
	}
	return &Recognizer{
		config:    config,
		model:     m,
		labels:    labels,
		window:    mat.NewDense(cfg.NumFrames, cfg.NumLandmarks, nil),
		candidate: -1,
	}, nil
}

// Feed adds one landmark frame and returns a result once a full window has
// accumulated and the smoothing criteria are met. A nil result with a nil
// error means no word is reported for this frame.
func (r *Recognizer) Feed(frame *landmark.Frame) (*Result, error) {
	cfg := r.model.Config()

	row := frame.Normalize().Flatten()
	if len(row) != cfg.NumLandmarks {
		return nil, fmt.Errorf("frame has %d values, model expects %d", len(row), cfg.NumLandmarks)
	}

	if r.filled < cfg.NumFrames {
		r.window.SetRow(r.filled, row)
		r.filled++
	} else {
		// Slide the window one frame
		for i := 1; i < cfg.NumFrames; i++ {
			r.window.SetRow(i-1, r.window.RawRowView(i))
		}
		r.window.SetRow(cfg.NumFrames-1, row)
	}

	if r.filled < cfg.NumFrames {
		return nil, nil
	}

	probs, err := r.model.Predict([]*mat.Dense{r.window}, model.ModeInference)
	if err != nil {
		return nil, err
	}

	rowProbs := probs.RawRowView(0)
	best := 0
	for j, p := range rowProbs {
		if p > rowProbs[best] {
			best = j
		}
	}

	if rowProbs[best] < r.config.MinConfidence {
		r.candidate = -1
		r.streak = 0
		return nil, nil
	}

	if best == r.candidate {
		r.streak++
	} else {
		r.candidate = best
		r.streak = 1
	}
	if r.streak < r.config.Smoothing {
		return nil, nil
	}

	res := &Result{
		Class:      best,
		Confidence: rowProbs[best],
		Probs:      append([]float64(nil), rowProbs...),
	}
	if r.labels != nil {
		if gloss, err := r.labels.Gloss(best); err == nil {
			res.Gloss = gloss
		}
	}
	return res, nil
}

// Reset clears the frame window and smoothing state.
func (r *Recognizer) Reset() {
	r.filled = 0
	r.candidate = -1
	r.streak = 0
}
