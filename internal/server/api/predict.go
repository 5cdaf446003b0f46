package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/glossnet/internal/dataset"
	"github.com/ayusman/glossnet/internal/model"
)

// topPredictions is how many ranked alternatives each prediction carries.
const topPredictions = 5

// PredictHandler handles classification requests against a loaded model.
type PredictHandler struct {
	model  *model.Model
	labels *dataset.Labels
}

// NewPredictHandler creates a new PredictHandler with the given model and
// label mapping. The labels may be nil, in which case predictions carry
// class indices without glosses.
func NewPredictHandler(m *model.Model, labels *dataset.Labels) *PredictHandler {
	return &PredictHandler{model: m, labels: labels}
}

type predictRequest struct {
	Sequences [][][]float64 `json:"sequences"`
}

// Ranked is one gloss with its predicted probability.
type Ranked struct {
	Class      int     `json:"class"`
	Gloss      string  `json:"gloss,omitempty"`
	Confidence float64 `json:"confidence"`
}

type predictionResponse struct {
	Class      int      `json:"class"`
	Gloss      string   `json:"gloss,omitempty"`
	Confidence float64  `json:"confidence"`
	Top        []Ranked `json:"top"`
}

type predictResponse struct {
	Predictions []predictionResponse `json:"predictions"`
}

// ServeHTTP handles POST /api/predict.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Sequences) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sequence is required")
		return
	}

	cfg := h.model.Config()
	batch := make([]*mat.Dense, 0, len(req.Sequences))
	for i, seq := range req.Sequences {
		m, err := sequenceMatrix(seq, cfg.NumFrames, cfg.NumLandmarks)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Sequence %d: %v", i, err))
			return
		}
		batch = append(batch, m)
	}

	probs, err := h.model.Predict(batch, model.ModeInference)
	if err != nil {
		var shapeErr *model.ShapeError
		if errors.As(err, &shapeErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	resp := predictResponse{Predictions: make([]predictionResponse, 0, len(batch))}
	rows, _ := probs.Dims()
	for i := 0; i < rows; i++ {
		ranked := Rank(probs.RawRowView(i), h.labels)
		resp.Predictions = append(resp.Predictions, predictionResponse{
			Class:      ranked[0].Class,
			Gloss:      ranked[0].Gloss,
			Confidence: ranked[0].Confidence,
			Top:        ranked,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Rank returns the top predictions for one probability row, highest first.
func Rank(row []float64, labels *dataset.Labels) []Ranked {
	idx := make([]int, len(row))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return row[idx[a]] > row[idx[b]] })

	limit := topPredictions
	if limit > len(idx) {
		limit = len(idx)
	}

	ranked := make([]Ranked, 0, limit)
	for _, class := range idx[:limit] {
		r := Ranked{Class: class, Confidence: row[class]}
		if labels != nil {
			if gloss, err := labels.Gloss(class); err == nil {
				r.Gloss = gloss
			}
		}
		ranked = append(ranked, r)
	}
	return ranked
}

// sequenceMatrix converts a JSON frame matrix into a dense matrix, checking
// the shape the model expects.
func sequenceMatrix(seq [][]float64, frames, landmarks int) (*mat.Dense, error) {
	if len(seq) != frames {
		return nil, fmt.Errorf("has %d frames, want %d", len(seq), frames)
	}
	m := mat.NewDense(frames, landmarks, nil)
	for i, row := range seq {
		if len(row) != landmarks {
			return nil, fmt.Errorf("frame %d has %d values, want %d", i, len(row), landmarks)
		}
		m.SetRow(i, row)
	}
	return m, nil
}
