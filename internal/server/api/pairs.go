package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/samadhi/internal/evaluate"
	"github.com/ayusman/samadhi/internal/store"
)

// PairHandler handles the labeled pair dataset.
type PairHandler struct {
	store *store.Store
}

// NewPairHandler creates a new PairHandler with the given store.
func NewPairHandler(s *store.Store) *PairHandler {
	return &PairHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *PairHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSuffix(r.URL.Path, "/") != "/api/pairs" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.deleteAll(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type pairResponse struct {
	ID int64 `json:"id"`
	evaluate.LabeledPair
	CreatedAt string `json:"created_at"`
}

type pairsRequest struct {
	Pairs []evaluate.LabeledPair `json:"pairs"`
}

type listPairsResponse struct {
	Pairs []pairResponse `json:"pairs"`
}

func toPairResponses(pairs []*store.Pair) listPairsResponse {
	resp := listPairsResponse{Pairs: make([]pairResponse, 0, len(pairs))}
	for _, p := range pairs {
		resp.Pairs = append(resp.Pairs, pairResponse{ID: p.ID, LabeledPair: p.LabeledPair, CreatedAt: formatTime(p.CreatedAt)})
	}
	return resp
}

// list handles GET /api/pairs.
func (h *PairHandler) list(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.store.Pairs().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pairs")
		return
	}
	writeJSON(w, http.StatusOK, toPairResponses(pairs))
}

// create handles POST /api/pairs and appends to the dataset.
func (h *PairHandler) create(w http.ResponseWriter, r *http.Request) {
	var req pairsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Pairs) == 0 {
		writeError(w, http.StatusBadRequest, "Pairs are required")
		return
	}
	for _, p := range req.Pairs {
		if p.Image1.PoseAnswer == "" || p.Image2.PoseAnswer == "" {
			writeError(w, http.StatusBadRequest, "Every image needs a pose_answer")
			return
		}
	}

	created, err := h.store.Pairs().Create(req.Pairs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store pairs")
		return
	}
	writeJSON(w, http.StatusCreated, toPairResponses(created))
}

// deleteAll handles DELETE /api/pairs.
func (h *PairHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Pairs().DeleteAll(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete pairs")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
