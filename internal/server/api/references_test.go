package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// do sends a JSON request to h and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func anglesOf(v float64) *pose.AngleSet {
	var a pose.AngleSet
	for j := range a {
		a[j] = v
	}
	return &a
}

func TestReferenceHandler_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	changes := 0
	handler := NewReferenceHandler(s, func() { changes++ })

	rec := do(t, handler, http.MethodPost, "/api/references", referenceRequest{Name: "tree", Angles: anglesOf(90)})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var created referenceResponse
	decode(t, rec, &created)
	if created.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if created.Angles[pose.JointSpine] != 90 {
		t.Errorf("spine = %v, want 90", created.Angles[pose.JointSpine])
	}
	if changes != 1 {
		t.Errorf("onChange calls = %d, want 1", changes)
	}

	rec = do(t, handler, http.MethodGet, "/api/references", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var list listReferencesResponse
	decode(t, rec, &list)
	if len(list.References) != 1 || list.References[0].Name != "tree" {
		t.Errorf("unexpected list: %+v", list.References)
	}
}

func TestReferenceHandler_Create_Invalid(t *testing.T) {
	s := newTestStore(t)
	handler := NewReferenceHandler(s, nil)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"invalid json", "{not json", http.StatusBadRequest},
		{"missing name", referenceRequest{Angles: anglesOf(90)}, http.StatusBadRequest},
		{"missing angles", referenceRequest{Name: "tree"}, http.StatusBadRequest},
		{"reserved name", referenceRequest{Name: "unknown", Angles: anglesOf(90)}, http.StatusBadRequest},
		{"angle out of range", referenceRequest{Name: "tree", Angles: anglesOf(200)}, http.StatusBadRequest},
		{"short fingerprint", referenceRequest{Name: "tree", Angles: anglesOf(90), Fingerprint: pose.Fingerprint{1, 2}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/api/references", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReferenceHandler_Create_Duplicate(t *testing.T) {
	s := newTestStore(t)
	handler := NewReferenceHandler(s, nil)

	do(t, handler, http.MethodPost, "/api/references", referenceRequest{Name: "tree", Angles: anglesOf(90)})
	rec := do(t, handler, http.MethodPost, "/api/references", referenceRequest{Name: "tree", Angles: anglesOf(80)})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestReferenceHandler_GetUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	handler := NewReferenceHandler(s, nil)

	ref := &store.Reference{ID: "ref-1", Name: "chair", Angles: *anglesOf(100)}
	if err := s.References().Create(ref); err != nil {
		t.Fatalf("failed to create reference: %v", err)
	}

	rec := do(t, handler, http.MethodGet, "/api/references/ref-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = do(t, handler, http.MethodPut, "/api/references/ref-1", referenceRequest{Name: "deep_chair"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var updated referenceResponse
	decode(t, rec, &updated)
	if updated.Name != "deep_chair" || updated.Angles[pose.JointNeck] != 100 {
		t.Errorf("update should change the name only: %+v", updated)
	}

	rec = do(t, handler, http.MethodDelete, "/api/references/ref-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec = do(t, handler, method, "/api/references/ref-1", referenceRequest{Name: "x"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete: expected status %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
}

func TestReferenceHandler_MethodNotAllowed(t *testing.T) {
	handler := NewReferenceHandler(newTestStore(t), nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/api/references"},
		{http.MethodPatch, "/api/references"},
		{http.MethodPost, "/api/references/some-id"},
	}
	for _, tt := range tests {
		rec := do(t, handler, tt.method, tt.path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
