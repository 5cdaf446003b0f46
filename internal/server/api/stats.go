package api

import (
	"net/http"

	"github.com/ayusman/glossnet/internal/store"
)

// StatsHandler reports dataset catalog statistics.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a new StatsHandler with the given store.
func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

type statsResponse struct {
	Words     int            `json:"words"`
	Videos    int            `json:"videos"`
	Sequences int            `json:"sequences"`
	Splits    map[string]int `json:"splits"`
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	words, err := h.store.Words().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count words")
		return
	}
	videos, err := h.store.Videos().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count videos")
		return
	}
	sequences, err := h.store.Sequences().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count sequences")
		return
	}
	dist, err := h.store.Videos().SplitDistribution()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get split distribution")
		return
	}

	splits := make(map[string]int, len(dist))
	for split, n := range dist {
		splits[string(split)] = n
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Words:     words,
		Videos:    videos,
		Sequences: sequences,
		Splits:    splits,
	})
}
