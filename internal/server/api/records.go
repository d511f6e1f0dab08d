package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/samadhi/internal/store"
)

// RecordHandler handles HTTP requests for workout records.
type RecordHandler struct {
	store *store.Store
}

// NewRecordHandler creates a new RecordHandler with the given store.
func NewRecordHandler(s *store.Store) *RecordHandler {
	return &RecordHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *RecordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/records or /api/records/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/records")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type timelineEntry struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Pose     string  `json:"pose"`
	Score    float64 `json:"score"`
}

type createRecordRequest struct {
	StartedAt   string          `json:"started_at"`
	DurationSec float64         `json:"duration_sec"`
	VideoURL    string          `json:"video_url"`
	TotalScore  float64         `json:"total_score"`
	Timelines   []timelineEntry `json:"timelines"`
}

type recordResponse struct {
	ID          string          `json:"id"`
	StartedAt   string          `json:"started_at"`
	DurationSec float64         `json:"duration_sec"`
	VideoURL    string          `json:"video_url"`
	TotalScore  float64         `json:"total_score"`
	Timelines   []timelineEntry `json:"timelines"`
	CreatedAt   string          `json:"created_at"`
}

type listRecordsResponse struct {
	Records []recordResponse `json:"records"`
}

func toRecordResponse(rec *store.Record) recordResponse {
	resp := recordResponse{
		ID:          rec.ID,
		StartedAt:   formatTime(rec.StartedAt),
		DurationSec: rec.DurationSec,
		VideoURL:    rec.VideoURL,
		TotalScore:  rec.TotalScore,
		Timelines:   make([]timelineEntry, 0, len(rec.Timelines)),
		CreatedAt:   formatTime(rec.CreatedAt),
	}
	for _, e := range rec.Timelines {
		resp.Timelines = append(resp.Timelines, timelineEntry(e))
	}
	return resp
}

// list handles GET /api/records.
func (h *RecordHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Records().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records")
		return
	}

	response := listRecordsResponse{Records: make([]recordResponse, 0, len(records))}
	for _, rec := range records {
		response.Records = append(response.Records, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/records/{id}.
func (h *RecordHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Records().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get record")
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// create handles POST /api/records. A missing started_at means now.
func (h *RecordHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	started := time.Now()
	if req.StartedAt != "" {
		t, err := time.Parse(timeFormat, req.StartedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "started_at must be RFC 3339")
			return
		}
		started = t
	}
	if req.DurationSec < 0 || req.TotalScore < 0 || req.TotalScore > 100 {
		writeError(w, http.StatusBadRequest, "duration_sec must be non-negative and total_score within [0,100]")
		return
	}

	rec := &store.Record{
		ID:          uuid.New().String(),
		StartedAt:   started,
		DurationSec: req.DurationSec,
		VideoURL:    req.VideoURL,
		TotalScore:  req.TotalScore,
	}
	for _, e := range req.Timelines {
		if e.Pose == "" || e.EndSec < e.StartSec {
			writeError(w, http.StatusBadRequest, "Timeline entries need a pose and end_sec >= start_sec")
			return
		}
		rec.Timelines = append(rec.Timelines, store.TimelineEntry(e))
	}

	if err := h.store.Records().Create(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create record")
		return
	}
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// delete handles DELETE /api/records/{id}.
func (h *RecordHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Records().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
