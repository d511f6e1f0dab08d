package api

import (
	"net/http"
	"testing"
)

func TestRecordHandler_CreateGetDelete(t *testing.T) {
	s := newTestStore(t)
	handler := NewRecordHandler(s)

	body := createRecordRequest{
		StartedAt:   "2026-03-01T09:30:00Z",
		DurationSec: 42.5,
		VideoURL:    "https://example.com/flow.mp4",
		TotalScore:  81.25,
		Timelines: []timelineEntry{
			{StartSec: 0, EndSec: 12.5, Pose: "mountain", Score: 90},
			{StartSec: 12.5, EndSec: 40, Pose: "tree", Score: 72.5},
		},
	}
	rec := do(t, handler, http.MethodPost, "/api/records", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var created recordResponse
	decode(t, rec, &created)
	if created.ID == "" {
		t.Fatal("expected an id")
	}

	rec = do(t, handler, http.MethodGet, "/api/records/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got recordResponse
	decode(t, rec, &got)
	if got.StartedAt != "2026-03-01T09:30:00Z" {
		t.Errorf("started_at = %q", got.StartedAt)
	}
	if got.TotalScore != 81.25 || got.DurationSec != 42.5 || got.VideoURL != body.VideoURL {
		t.Errorf("record = %+v", got)
	}
	if len(got.Timelines) != 2 || got.Timelines[1] != body.Timelines[1] {
		t.Errorf("timelines = %+v", got.Timelines)
	}

	rec = do(t, handler, http.MethodGet, "/api/records", nil)
	var list listRecordsResponse
	decode(t, rec, &list)
	if len(list.Records) != 1 || list.Records[0].ID != created.ID {
		t.Errorf("list = %+v", list.Records)
	}

	rec = do(t, handler, http.MethodDelete, "/api/records/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	rec = do(t, handler, http.MethodGet, "/api/records/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
	rec = do(t, handler, http.MethodDelete, "/api/records/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestRecordHandler_Create_Invalid(t *testing.T) {
	s := newTestStore(t)
	handler := NewRecordHandler(s)

	tests := []struct {
		name string
		body interface{}
	}{
		{"malformed json", "{"},
		{"bad started_at", createRecordRequest{StartedAt: "yesterday"}},
		{"score above range", createRecordRequest{TotalScore: 101}},
		{"negative duration", createRecordRequest{DurationSec: -1}},
		{"reversed segment", createRecordRequest{Timelines: []timelineEntry{{StartSec: 5, EndSec: 1, Pose: "tree"}}}},
		{"segment without pose", createRecordRequest{Timelines: []timelineEntry{{StartSec: 0, EndSec: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/api/records", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestRecordHandler_MethodNotAllowed(t *testing.T) {
	handler := NewRecordHandler(newTestStore(t))

	if rec := do(t, handler, http.MethodPut, "/api/records", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /api/records: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if rec := do(t, handler, http.MethodPost, "/api/records/x", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/records/x: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
