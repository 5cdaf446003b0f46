package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/glossnet/internal/model"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()

	m, err := model.New(model.Config{
		NumFrames:      6,
		NumLandmarks:   12,
		NumClasses:     4,
		ConvFilters:    []int{8},
		AttentionHeads: 2,
		EmbedDim:       16,
		FeedForwardDim: 32,
		DropoutRate:    0.1,
		LearningRate:   0.001,
	})
	if err != nil {
		t.Fatalf("failed to build model: %v", err)
	}
	return m
}

func predictBody(t *testing.T, frames, landmarks, count int) *bytes.Reader {
	t.Helper()

	seqs := make([][][]float64, count)
	for s := range seqs {
		seqs[s] = make([][]float64, frames)
		for i := range seqs[s] {
			seqs[s][i] = make([]float64, landmarks)
		}
	}
	body, err := json.Marshal(map[string]interface{}{"sequences": seqs})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewReader(body)
}

func TestPredictHandler(t *testing.T) {
	h := NewPredictHandler(testModel(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", predictBody(t, 6, 12, 2))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Predictions []struct {
			Class      int     `json:"class"`
			Gloss      string  `json:"gloss"`
			Confidence float64 `json:"confidence"`
		} `json:"predictions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Predictions) != 2 {
		t.Fatalf("len(predictions) = %d, want 2", len(resp.Predictions))
	}
	for i, p := range resp.Predictions {
		if p.Class < 0 || p.Class >= 4 {
			t.Errorf("prediction %d class = %d, want in [0, 4)", i, p.Class)
		}
		if p.Gloss != "" {
			t.Errorf("prediction %d gloss = %q, want empty without labels", i, p.Gloss)
		}
	}
}

func TestPredictHandler_MethodNotAllowed(t *testing.T) {
	h := NewPredictHandler(testModel(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestPredictHandler_InvalidJSON(t *testing.T) {
	h := NewPredictHandler(testModel(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPredictHandler_WrongFrameCount(t *testing.T) {
	h := NewPredictHandler(testModel(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", predictBody(t, 5, 12, 1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPredictHandler_WrongFrameWidth(t *testing.T) {
	h := NewPredictHandler(testModel(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", predictBody(t, 6, 10, 1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRank(t *testing.T) {
	row := []float64{0.1, 0.5, 0.05, 0.3, 0.05}

	ranked := Rank(row, nil)
	if len(ranked) != 5 {
		t.Fatalf("len(ranked) = %d, want 5", len(ranked))
	}
	if ranked[0].Class != 1 || ranked[1].Class != 3 || ranked[2].Class != 0 {
		t.Errorf("order = [%d, %d, %d], want [1, 3, 0]", ranked[0].Class, ranked[1].Class, ranked[2].Class)
	}

	// Fewer classes than the ranking depth
	short := Rank([]float64{0.6, 0.4}, nil)
	if len(short) != 2 {
		t.Errorf("len(ranked) = %d, want 2 for a 2-class row", len(short))
	}
}
