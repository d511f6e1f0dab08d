package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/samadhi/internal/evaluate"
	"github.com/ayusman/samadhi/internal/report"
	"github.com/ayusman/samadhi/internal/store"
)

// EvaluateHandler sweeps thresholds and blend weights over labeled pairs:
//
//	POST /api/evaluate            curves for the posted or stored pairs
//	GET  /api/evaluate/chart      HTML chart of the stored pairs
//	GET  /api/evaluate/chart.png  PNG chart of the stored pairs
type EvaluateHandler struct {
	store   *store.Store
	lambdas []float64
}

// NewEvaluateHandler creates a new EvaluateHandler. Nil lambdas fall back
// to evaluate.DefaultLambdas. The store may be nil when pairs are always
// posted.
func NewEvaluateHandler(s *store.Store, lambdas []float64) *EvaluateHandler {
	return &EvaluateHandler{store: s, lambdas: lambdas}
}

// ServeHTTP implements the http.Handler interface.
func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/evaluate")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.evaluate(w, r)
	case "chart", "chart.png":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.chart(w, r, path == "chart.png")
	default:
		http.NotFound(w, r)
	}
}

type evaluateRequest struct {
	Pairs   []evaluate.LabeledPair `json:"pairs,omitempty"`
	Lambdas []float64              `json:"lambdas,omitempty"`
	Curves  bool                   `json:"curves,omitempty"`
}

type lambdaSummary struct {
	Lambda float64                      `json:"lambda"`
	Best   evaluate.ThresholdAccuracy   `json:"best"`
	Curve  []evaluate.ThresholdAccuracy `json:"curve,omitempty"`
}

type evaluateResponse struct {
	Pairs   int             `json:"pairs"`
	Lambdas []lambdaSummary `json:"lambdas"`
	Best    lambdaSummary   `json:"best"`
}

// evaluate handles POST /api/evaluate. Full curves are only included when
// the request sets curves=true.
func (h *EvaluateHandler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pairs := req.Pairs
	if len(pairs) == 0 {
		var err error
		if pairs, err = h.storedPairs(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load pairs")
			return
		}
	}

	curves, ok := h.sweep(w, pairs, req.Lambdas)
	if !ok {
		return
	}

	resp := evaluateResponse{Pairs: len(pairs), Lambdas: make([]lambdaSummary, 0, len(curves))}
	for _, c := range curves {
		s := lambdaSummary{Lambda: c.Lambda, Best: c.Best}
		if req.Curves {
			s.Curve = c.Curve
		}
		resp.Lambdas = append(resp.Lambdas, s)
	}
	if best, ok := evaluate.BestLambda(curves); ok {
		resp.Best = lambdaSummary{Lambda: best.Lambda, Best: best.Best}
	}

	writeJSON(w, http.StatusOK, resp)
}

// chart handles GET /api/evaluate/chart[.png]?lambdas=0,0.5,1.
func (h *EvaluateHandler) chart(w http.ResponseWriter, r *http.Request, png bool) {
	lambdas, err := parseLambdas(r.URL.Query().Get("lambdas"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pairs, err := h.storedPairs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load pairs")
		return
	}

	curves, ok := h.sweep(w, pairs, lambdas)
	if !ok {
		return
	}

	var buf bytes.Buffer
	contentType := "text/html; charset=utf-8"
	if png {
		contentType = "image/png"
		err = report.WritePNG(&buf, curves)
	} else {
		err = report.RenderHTML(&buf, curves)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *EvaluateHandler) storedPairs() ([]evaluate.LabeledPair, error) {
	if h.store == nil {
		return nil, nil
	}
	return h.store.Pairs().LabeledPairs()
}

func (h *EvaluateHandler) sweep(w http.ResponseWriter, pairs []evaluate.LabeledPair, lambdas []float64) ([]evaluate.LambdaCurve, bool) {
	if len(lambdas) == 0 {
		lambdas = h.lambdas
	}
	for _, l := range lambdas {
		if l < 0 || l > 1 {
			writeError(w, http.StatusBadRequest, "Lambdas must be between 0 and 1")
			return nil, false
		}
	}

	curves, err := evaluate.SweepLambdas(pairs, lambdas)
	if err != nil {
		if errors.Is(err, evaluate.ErrNoPairs) {
			writeError(w, http.StatusUnprocessableEntity, "No labeled pairs to evaluate")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Evaluation failed")
		return nil, false
	}
	return curves, true
}

// parseLambdas parses a comma-separated list of floats. Empty input is nil.
func parseLambdas(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lambda %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
