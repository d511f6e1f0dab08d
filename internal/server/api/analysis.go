package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/session"
	"github.com/ayusman/samadhi/internal/similarity"
)

// AnalysisHandler serves the stateless pose computations and the
// per-source smoothing state of a tracker:
//
//	POST   /api/angles
//	GET    /api/sources
//	DELETE /api/sources/{source}
//	POST   /api/vectorize
//	POST   /api/similarity
//	POST   /api/classify
type AnalysisHandler struct {
	tracker *session.Tracker
}

// NewAnalysisHandler creates a new AnalysisHandler backed by tracker.
func NewAnalysisHandler(t *session.Tracker) *AnalysisHandler {
	return &AnalysisHandler{tracker: t}
}

// ServeHTTP implements the http.Handler interface.
func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/")

	switch {
	case path == "angles":
		h.post(w, r, h.angles)
	case path == "vectorize":
		h.post(w, r, h.vectorize)
	case path == "similarity":
		h.post(w, r, h.compare)
	case path == "classify":
		h.post(w, r, h.classify)
	case path == "sources":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, sourcesResponse{Sources: nonNil(h.tracker.Sources())})
	case strings.HasPrefix(path, "sources/"):
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		source := strings.TrimPrefix(path, "sources/")
		if source == "" {
			writeError(w, http.StatusBadRequest, "Source is required")
			return
		}
		h.tracker.Reset(source)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (h *AnalysisHandler) post(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fn(w, r)
}

type sourcesResponse struct {
	Sources []string `json:"sources"`
}

type anglesRequest struct {
	Source    string          `json:"source"`
	Landmarks []pose.Landmark `json:"landmarks"`
}

type anglesResponse struct {
	Source string        `json:"source"`
	Angles pose.AngleSet `json:"angles"`
}

// angles handles POST /api/angles. Without a source the angles are raw.
func (h *AnalysisHandler) angles(w http.ResponseWriter, r *http.Request) {
	var req anglesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	set, err := pose.NewLandmarkSet(req.Landmarks)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var angles pose.AngleSet
	if req.Source == "" {
		angles = pose.ComputeAngles(&set, nil, "")
	} else {
		angles = h.tracker.Angles(req.Source, &set)
	}

	writeJSON(w, http.StatusOK, anglesResponse{Source: req.Source, Angles: angles})
}

type vectorizeRequest struct {
	Landmarks []pose.Landmark `json:"landmarks"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
}

type vectorizeResponse struct {
	Fingerprint pose.Fingerprint `json:"fingerprint"`
}

// vectorize handles POST /api/vectorize.
func (h *AnalysisHandler) vectorize(w http.ResponseWriter, r *http.Request) {
	var req vectorizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	set, err := pose.NewLandmarkSet(req.Landmarks)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fp, err := pose.Vectorize(&set, req.Height, req.Width)
	if err != nil {
		if errors.Is(err, pose.ErrZeroScale) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, vectorizeResponse{Fingerprint: fp})
}

type similarityRequest struct {
	A      []float64 `json:"a"`
	B      []float64 `json:"b"`
	Lambda *float64  `json:"lambda,omitempty"`
}

type similarityResponse struct {
	similarity.Result
	Lambda float64 `json:"lambda"`
	Valid  bool    `json:"valid"`
	Reason string  `json:"reason,omitempty"`
}

// compare handles POST /api/similarity. Vectors that cannot be compared
// give the neutral zero result with valid=false.
func (h *AnalysisHandler) compare(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lambda := h.tracker.Options().Lambda
	if req.Lambda != nil {
		lambda = *req.Lambda
	}

	res, err := similarity.CompareWith(req.A, req.B, lambda)
	resp := similarityResponse{Result: res, Lambda: lambda, Valid: err == nil}
	if err != nil {
		resp.Reason = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type classifyRequest struct {
	Angles      *pose.AngleSet   `json:"angles,omitempty"`
	Fingerprint pose.Fingerprint `json:"fingerprint,omitempty"`
	Lambda      *float64         `json:"lambda,omitempty"`
	MinScore    *float64         `json:"min_score,omitempty"`
}

type classifyResponse struct {
	classifier.Result
	Ranked []classifier.Match `json:"ranked"`
}

// classify handles POST /api/classify with either angles or a fingerprint.
func (h *AnalysisHandler) classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	catalog := h.tracker.Catalog()
	var res classifier.Result
	switch {
	case req.Angles != nil && req.Fingerprint != nil:
		writeError(w, http.StatusBadRequest, "Send either angles or fingerprint")
		return
	case req.Angles != nil:
		res = classifier.ClassifyAngles(*req.Angles, catalog)
	case req.Fingerprint != nil:
		if len(req.Fingerprint) != pose.FingerprintLen {
			writeError(w, http.StatusBadRequest, "Fingerprint must have 99 values")
			return
		}
		opts := h.tracker.Options()
		if req.Lambda != nil {
			opts.Lambda = *req.Lambda
		}
		if req.MinScore != nil {
			opts.MinScore = *req.MinScore
		}
		res = classifier.ClassifyFingerprint(req.Fingerprint, catalog, opts)
	default:
		writeError(w, http.StatusBadRequest, "Angles or fingerprint is required")
		return
	}

	writeJSON(w, http.StatusOK, classifyResponse{Result: res, Ranked: res.Ranked()})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
