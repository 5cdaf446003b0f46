package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/glossnet/internal/store"
)

// WordsHandler handles HTTP requests for the vocabulary.
type WordsHandler struct {
	store *store.Store
}

// NewWordsHandler creates a new WordsHandler with the given store.
func NewWordsHandler(s *store.Store) *WordsHandler {
	return &WordsHandler{store: s}
}

type wordResponse struct {
	ID          int64  `json:"id"`
	Gloss       string `json:"gloss"`
	SampleCount int    `json:"sample_count"`
	CreatedAt   string `json:"created_at"`
}

type listWordsResponse struct {
	Words []wordResponse `json:"words"`
}

// toWordResponse converts a store.Word to a wordResponse.
func toWordResponse(w *store.Word) wordResponse {
	return wordResponse{
		ID:          w.ID,
		Gloss:       w.Gloss,
		SampleCount: w.SampleCount,
		CreatedAt:   w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ServeHTTP implements the http.Handler interface and routes requests.
func (h *WordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Expected paths: /api/words or /api/words/{gloss}
	path := strings.TrimPrefix(r.URL.Path, "/api/words")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.list(w, r)
		return
	}
	h.get(w, r, path)
}

// list handles GET /api/words and returns the full vocabulary.
func (h *WordsHandler) list(w http.ResponseWriter, r *http.Request) {
	words, err := h.store.Words().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list words")
		return
	}

	response := listWordsResponse{
		Words: make([]wordResponse, 0, len(words)),
	}
	for _, word := range words {
		response.Words = append(response.Words, toWordResponse(word))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/words/{gloss} and returns a single word.
func (h *WordsHandler) get(w http.ResponseWriter, r *http.Request, gloss string) {
	word, err := h.store.Words().GetByGloss(gloss)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Word not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get word")
		return
	}

	writeJSON(w, http.StatusOK, toWordResponse(word))
}
