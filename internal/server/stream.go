package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/glossnet/internal/dataset"
	"github.com/ayusman/glossnet/internal/landmark"
	"github.com/ayusman/glossnet/internal/model"
	"github.com/ayusman/glossnet/internal/recognize"
	"github.com/ayusman/glossnet/internal/server/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StreamHandler recognizes signs over a live landmark feed. Each client
// sends one landmark frame per message; once a full window of frames has
// arrived, the handler classifies it and sends back ranked predictions.
type StreamHandler struct {
	model  *model.Model
	labels *dataset.Labels
}

// NewStreamHandler creates a new StreamHandler with the given model and
// label mapping.
func NewStreamHandler(m *model.Model, labels *dataset.Labels) *StreamHandler {
	return &StreamHandler{model: m, labels: labels}
}

type streamPrediction struct {
	Gloss      string       `json:"gloss,omitempty"`
	Class      int          `json:"class"`
	Confidence float64      `json:"confidence"`
	Top        []api.Ranked `json:"top"`
	Timestamp  int64        `json:"timestamp"`
}

// ServeHTTP handles WebSocket upgrade requests on /api/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	rec, err := recognize.New(h.model, h.labels, recognize.Config{})
	if err != nil {
		log.Printf("stream setup error: %v", err)
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	for {
		var frame landmark.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		result, err := rec.Feed(&frame)
		if err != nil {
			log.Printf("stream recognition error: %v", err)
			conn.WriteJSON(map[string]string{"error": err.Error()})
			continue
		}
		if result == nil {
			continue
		}

		msg := streamPrediction{
			Class:      result.Class,
			Gloss:      result.Gloss,
			Confidence: result.Confidence,
			Top:        api.Rank(result.Probs, h.labels),
			Timestamp:  time.Now().UnixMilli(),
		}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
