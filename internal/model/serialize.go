package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Serialized model layout. JSON keeps float64 values exact (shortest
// round-trip encoding), so a reloaded model reproduces the original's
// inference output bit for bit.

type matrixState struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

type denseState struct {
	Weights matrixState `json:"weights"`
	Bias    []float64   `json:"bias"`
}

type batchNormState struct {
	Gain        []float64 `json:"gain"`
	Bias        []float64 `json:"bias"`
	RunningMean []float64 `json:"running_mean"`
	RunningVar  []float64 `json:"running_var"`
	Initialized bool      `json:"initialized"`
}

type convStageState struct {
	Taps []matrixState  `json:"taps"`
	Bias []float64      `json:"bias"`
	Norm batchNormState `json:"norm"`
}

type layerNormState struct {
	Gain []float64 `json:"gain"`
	Bias []float64 `json:"bias"`
}

type attentionState struct {
	Query denseState     `json:"query"`
	Key   denseState     `json:"key"`
	Value denseState     `json:"value"`
	Out   denseState     `json:"out"`
	FF1   denseState     `json:"ff1"`
	FF2   denseState     `json:"ff2"`
	Norm1 layerNormState `json:"norm1"`
	Norm2 layerNormState `json:"norm2"`
}

type headState struct {
	Hidden1 denseState `json:"hidden1"`
	Hidden2 denseState `json:"hidden2"`
	Out     denseState `json:"out"`
}

type modelState struct {
	Config    Config           `json:"config"`
	Conv      []convStageState `json:"conv_stages"`
	Projector denseState       `json:"projector"`
	Attention attentionState   `json:"attention"`
	Head      headState        `json:"head"`
}

func matrixToState(m *mat.Dense) matrixState {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return matrixState{Rows: rows, Cols: cols, Data: data}
}

func (s matrixState) matrix() (*mat.Dense, error) {
	if len(s.Data) != s.Rows*s.Cols {
		return nil, fmt.Errorf("matrix %dx%d has %d values", s.Rows, s.Cols, len(s.Data))
	}
	return mat.NewDense(s.Rows, s.Cols, s.Data), nil
}

func (d *dense) state() denseState {
	return denseState{Weights: matrixToState(d.w), Bias: append([]float64(nil), d.b...)}
}

func (d *dense) restore(s denseState) error {
	w, err := s.Weights.matrix()
	if err != nil {
		return err
	}
	wr, wc := d.w.Dims()
	if s.Weights.Rows != wr || s.Weights.Cols != wc {
		return fmt.Errorf("weights are %dx%d, want %dx%d", s.Weights.Rows, s.Weights.Cols, wr, wc)
	}
	if len(s.Bias) != len(d.b) {
		return fmt.Errorf("bias has %d values, want %d", len(s.Bias), len(d.b))
	}
	d.w = w
	copy(d.b, s.Bias)
	return nil
}

func (bn *batchNorm) state() batchNormState {
	return batchNormState{
		Gain:        append([]float64(nil), bn.gain...),
		Bias:        append([]float64(nil), bn.bias...),
		RunningMean: append([]float64(nil), bn.runningMean...),
		RunningVar:  append([]float64(nil), bn.runningVar...),
		Initialized: bn.initialized,
	}
}

func (bn *batchNorm) restore(s batchNormState) error {
	n := len(bn.gain)
	if len(s.Gain) != n || len(s.Bias) != n || len(s.RunningMean) != n || len(s.RunningVar) != n {
		return fmt.Errorf("normalization state has wrong channel count, want %d", n)
	}
	copy(bn.gain, s.Gain)
	copy(bn.bias, s.Bias)
	copy(bn.runningMean, s.RunningMean)
	copy(bn.runningVar, s.RunningVar)
	bn.initialized = s.Initialized
	return nil
}

func (s *convStage) state() convStageState {
	st := convStageState{Bias: append([]float64(nil), s.bias...), Norm: s.norm.state()}
	for _, tap := range s.taps {
		st.Taps = append(st.Taps, matrixToState(tap))
	}
	return st
}

func (s *convStage) restore(st convStageState) error {
	if len(st.Taps) != kernelWidth {
		return fmt.Errorf("conv stage has %d taps, want %d", len(st.Taps), kernelWidth)
	}
	taps := [kernelWidth]*mat.Dense{}
	for k, tap := range st.Taps {
		m, err := tap.matrix()
		if err != nil {
			return err
		}
		if tap.Rows != s.in || tap.Cols != s.out {
			return fmt.Errorf("conv tap %d is %dx%d, want %dx%d", k, tap.Rows, tap.Cols, s.in, s.out)
		}
		taps[k] = m
	}
	if len(st.Bias) != s.out {
		return fmt.Errorf("conv bias has %d values, want %d", len(st.Bias), s.out)
	}
	if err := s.norm.restore(st.Norm); err != nil {
		return err
	}
	s.taps = taps
	copy(s.bias, st.Bias)
	return nil
}

func (ln *layerNorm) state() layerNormState {
	return layerNormState{
		Gain: append([]float64(nil), ln.gain...),
		Bias: append([]float64(nil), ln.bias...),
	}
}

func (ln *layerNorm) restore(s layerNormState) error {
	if len(s.Gain) != len(ln.gain) || len(s.Bias) != len(ln.bias) {
		return fmt.Errorf("layer norm state has wrong width, want %d", len(ln.gain))
	}
	copy(ln.gain, s.Gain)
	copy(ln.bias, s.Bias)
	return nil
}

func (b *attentionBlock) state() attentionState {
	return attentionState{
		Query: b.query.state(),
		Key:   b.key.state(),
		Value: b.value.state(),
		Out:   b.out.state(),
		FF1:   b.ff1.state(),
		FF2:   b.ff2.state(),
		Norm1: b.norm1.state(),
		Norm2: b.norm2.state(),
	}
}

func (b *attentionBlock) restore(s attentionState) error {
	parts := []struct {
		name string
		d    *dense
		s    denseState
	}{
		{"query", b.query, s.Query},
		{"key", b.key, s.Key},
		{"value", b.value, s.Value},
		{"out", b.out, s.Out},
		{"ff1", b.ff1, s.FF1},
		{"ff2", b.ff2, s.FF2},
	}
	for _, p := range parts {
		if err := p.d.restore(p.s); err != nil {
			return fmt.Errorf("attention %s: %w", p.name, err)
		}
	}
	if err := b.norm1.restore(s.Norm1); err != nil {
		return fmt.Errorf("attention norm1: %w", err)
	}
	if err := b.norm2.restore(s.Norm2); err != nil {
		return fmt.Errorf("attention norm2: %w", err)
	}
	return nil
}

func (h *classificationHead) state() headState {
	return headState{
		Hidden1: h.hidden1.state(),
		Hidden2: h.hidden2.state(),
		Out:     h.out.state(),
	}
}

func (h *classificationHead) restore(s headState) error {
	if err := h.hidden1.restore(s.Hidden1); err != nil {
		return fmt.Errorf("head hidden1: %w", err)
	}
	if err := h.hidden2.restore(s.Hidden2); err != nil {
		return fmt.Errorf("head hidden2: %w", err)
	}
	if err := h.out.restore(s.Out); err != nil {
		return fmt.Errorf("head out: %w", err)
	}
	return nil
}

// Save writes the model's full topology and parameter values to w.
func (m *Model) Save(w io.Writer) error {
	state := modelState{
		Config:    m.cfg,
		Projector: m.projector.state(),
		Attention: m.attention.state(),
		Head:      m.head.state(),
	}
	for _, s := range m.extractor.stages {
		state.Conv = append(state.Conv, s.state())
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// Load reconstructs a model from a stream produced by Save. The reloaded
// model yields numerically identical inference output for the same input.
func Load(r io.Reader) (*Model, error) {
	var state modelState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}

	m, err := New(state.Config)
	if err != nil {
		return nil, err
	}
	if len(state.Conv) != len(m.extractor.stages) {
		return nil, fmt.Errorf("model has %d conv stages, want %d", len(state.Conv), len(m.extractor.stages))
	}
	for i, s := range m.extractor.stages {
		if err := s.restore(state.Conv[i]); err != nil {
			return nil, fmt.Errorf("conv stage %d: %w", i, err)
		}
	}
	if err := m.projector.restore(state.Projector); err != nil {
		return nil, fmt.Errorf("projector: %w", err)
	}
	if err := m.attention.restore(state.Attention); err != nil {
		return nil, err
	}
	if err := m.head.restore(state.Head); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveFile writes the model to the given path.
func (m *Model) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer f.Close()

	if err := m.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadFile reads a model from the given path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	return Load(f)
}
