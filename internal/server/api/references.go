package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/store"
)

// ReferenceHandler handles HTTP requests for reference pose resources.
type ReferenceHandler struct {
	store    *store.Store
	onChange func()
}

// NewReferenceHandler creates a new ReferenceHandler. onChange, when not
// nil, runs after every successful write so callers can reload the catalog.
func NewReferenceHandler(s *store.Store, onChange func()) *ReferenceHandler {
	return &ReferenceHandler{store: s, onChange: onChange}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ReferenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/references or /api/references/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/references")
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
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type referenceRequest struct {
	Name        string           `json:"name"`
	Angles      *pose.AngleSet   `json:"angles"`
	Fingerprint pose.Fingerprint `json:"fingerprint,omitempty"`
}

type referenceResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Angles      pose.AngleSet    `json:"angles"`
	Fingerprint pose.Fingerprint `json:"fingerprint,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type listReferencesResponse struct {
	References []referenceResponse `json:"references"`
}

func toReferenceResponse(ref *store.Reference) referenceResponse {
	return referenceResponse{
		ID:          ref.ID,
		Name:        ref.Name,
		Angles:      ref.Angles,
		Fingerprint: ref.Fingerprint,
		CreatedAt:   formatTime(ref.CreatedAt),
		UpdatedAt:   formatTime(ref.UpdatedAt),
	}
}

// validateReference applies the catalog rules to a single entry.
func validateReference(ref *store.Reference) error {
	_, err := classifier.NewCatalog([]classifier.Reference{ref.Classifier()})
	return err
}

func (h *ReferenceHandler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

// list handles GET /api/references.
func (h *ReferenceHandler) list(w http.ResponseWriter, r *http.Request) {
	refs, err := h.store.References().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list references")
		return
	}

	response := listReferencesResponse{
		References: make([]referenceResponse, 0, len(refs)),
	}
	for _, ref := range refs {
		response.References = append(response.References, toReferenceResponse(ref))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/references/{id}.
func (h *ReferenceHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	ref, err := h.store.References().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get reference")
		return
	}

	writeJSON(w, http.StatusOK, toReferenceResponse(ref))
}

// create handles POST /api/references.
func (h *ReferenceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Angles == nil {
		writeError(w, http.StatusBadRequest, "Angles are required")
		return
	}

	ref := &store.Reference{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Angles:      *req.Angles,
		Fingerprint: req.Fingerprint,
	}
	if err := validateReference(ref); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.References().Create(ref); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Reference name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create reference")
		return
	}

	h.changed()
	writeJSON(w, http.StatusCreated, toReferenceResponse(ref))
}

// update handles PUT /api/references/{id}. Omitted fields keep their values.
func (h *ReferenceHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	ref, err := h.store.References().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get reference")
		return
	}

	var req referenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name != "" {
		ref.Name = req.Name
	}
	if req.Angles != nil {
		ref.Angles = *req.Angles
	}
	if req.Fingerprint != nil {
		ref.Fingerprint = req.Fingerprint
	}
	if err := validateReference(ref); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.References().Update(ref); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Reference name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update reference")
		return
	}

	h.changed()
	writeJSON(w, http.StatusOK, toReferenceResponse(ref))
}

// delete handles DELETE /api/references/{id}.
func (h *ReferenceHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.References().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete reference")
		return
	}

	h.changed()
	w.WriteHeader(http.StatusNoContent)
}
