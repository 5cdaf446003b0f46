// Package model implements the gloss sequence classifier: a 1-D
// convolutional feature extractor over the time axis, a projection to the
// attention width, sinusoidal positional encoding, a self-attention encoder
// block, and a softmax classification head.
package model

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Mode selects training or inference behavior for a forward pass. Dropout
// and batch-statistics accumulation are active only in training mode. Mode
// has no default: every evaluation call states it explicitly, and the zero
// value is rejected.
type Mode int

const (
	ModeTraining Mode = iota + 1
	ModeInference
)

func (m Mode) String() string {
	switch m {
	case ModeTraining:
		return "training"
	case ModeInference:
		return "inference"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Model is an immutable pipeline of parameterized stages bound to one
// Config. The topology never changes after construction; parameter values
// are mutated only by an external optimizer.
//
// Any number of inference-mode Predict calls may run concurrently against a
// quiescent parameter set. Training-mode calls update the batch
// normalization running statistics and must not overlap with each other or
// with parameter updates; callers establish that exclusion.
type Model struct {
	cfg Config

	extractor  *featureExtractor
	projector  *dense
	positional *positionalEncoder
	attention  *attentionBlock
	head       *classificationHead

	rng      *rand.Rand
	coldOnce sync.Once
}

// New builds the forward pipeline for cfg. A violated Config invariant is
// reported as *ConfigError and no model is constructed.
func New(cfg Config) (*Model, error) {
	return build(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func build(cfg Config, rng *rand.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Model{cfg: cfg, rng: rng}
	m.extractor = newFeatureExtractor(cfg.NumLandmarks, cfg.ConvFilters, rng)
	m.projector = newDense(m.extractor.outWidth(), cfg.EmbedDim, rng)
	m.positional = &positionalEncoder{drop: &dropout{rate: cfg.DropoutRate, rng: rng}}

	var err error
	m.attention, err = newAttentionBlock(cfg.EmbedDim, cfg.AttentionHeads, cfg.FeedForwardDim, cfg.DropoutRate, rng)
	if err != nil {
		return nil, err
	}
	m.head = newClassificationHead(cfg.EmbedDim, cfg.NumClasses, cfg.DropoutRate, rng)
	return m, nil
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config { return m.cfg }

// StatsReady reports whether at least one training pass has initialized the
// batch normalization running statistics. Inference before that point
// produces defined but statistically meaningless output.
func (m *Model) StatsReady() bool { return m.extractor.ready() }

// Predict runs the forward pipeline over a batch of landmark sequences and
// returns one probability row per sequence. Every sequence must match the
// configured (frames, landmarks) shape exactly; a mismatch is reported as
// *ShapeError and no output is produced.
func (m *Model) Predict(batch []*mat.Dense, mode Mode) (*mat.Dense, error) {
	if mode != ModeTraining && mode != ModeInference {
		return nil, fmt.Errorf("model: mode must be training or inference, got %v", mode)
	}
	if len(batch) == 0 {
		return nil, errors.New("model: empty batch")
	}
	for i, x := range batch {
		rows, cols := x.Dims()
		if rows != m.cfg.NumFrames || cols != m.cfg.NumLandmarks {
			return nil, &ShapeError{
				Index:         i,
				GotFrames:     rows,
				GotLandmarks:  cols,
				WantFrames:    m.cfg.NumFrames,
				WantLandmarks: m.cfg.NumLandmarks,
			}
		}
	}

	if mode == ModeInference && !m.StatsReady() {
		m.coldOnce.Do(func() {
			log.Printf("model: inference before any training pass; normalization statistics are at their initialization values")
		})
	}

	seqs := m.extractor.forward(batch, mode)
	for i, x := range seqs {
		y := m.positional.forward(m.projector.apply(x), mode)
		seqs[i] = m.attention.forward(y, mode)
	}
	return m.head.forward(seqs, mode), nil
}
