package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/samadhi/internal/capture"
	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/detector"
	"github.com/ayusman/samadhi/internal/monitoring"
	"github.com/ayusman/samadhi/internal/pose/posetest"
	"github.com/ayusman/samadhi/internal/server"
	"github.com/ayusman/samadhi/internal/session"
	"github.com/ayusman/samadhi/internal/store"
	"github.com/ayusman/samadhi/testdata"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	monitoring.SetLogger(nil)

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	application := session.New(session.Config{Store: s, FPS: 50})
	mockDetector := detector.NewMockDetector()
	mockDetector.SetPoses(posetest.TPose())
	application.SetDetector(mockDetector)

	frames := capture.BlankFrames(2)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()
	application.SetCamera(capture.NewMockCamera(frames, true))
	application.SetEnabled(true)

	hub := server.NewObservationHub()
	application.OnObservation(hub.Publish)

	srv := server.New(server.Config{
		Store:        s,
		Tracker:      application.Tracker(),
		Preview:      application,
		Observations: hub,
		OnReferencesChanged: func() {
			if err := application.LoadCatalog(); err != nil {
				t.Errorf("LoadCatalog() error = %v", err)
			}
		},
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("SeedCatalog", func(t *testing.T) {
		if err := application.LoadCatalog(); err != nil {
			t.Fatalf("LoadCatalog() error = %v", err)
		}

		resp, err := client.Get(ts.URL + "/api/references")
		if err != nil {
			t.Fatalf("list references error = %v", err)
		}
		defer resp.Body.Close()

		var listed struct {
			References []struct {
				Name string `json:"name"`
			} `json:"references"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)

		if len(listed.References) != classifier.DefaultCatalog().Len() {
			t.Errorf("len(references) = %d, want %d", len(listed.References), classifier.DefaultCatalog().Len())
		}
	})

	t.Run("LiveObservations", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/observations"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial error = %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(2 * time.Second)
		for hub.Clients() == 0 {
			if time.Now().After(deadline) {
				t.Fatal("websocket client was not registered")
			}
			time.Sleep(5 * time.Millisecond)
		}

		if err := application.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var obs session.Observation
		if err := conn.ReadJSON(&obs); err != nil {
			t.Fatalf("read observation error = %v", err)
		}
		if !obs.Detected || obs.Pose != "t_pose" {
			t.Errorf("observation = %+v, want a detected t_pose", obs)
		}
	})

	t.Run("SaveSession", func(t *testing.T) {
		application.Stop()

		rec, err := application.SaveRecord()
		if err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}
		if len(rec.Timelines) != 1 || rec.Timelines[0].Pose != "t_pose" {
			t.Fatalf("timelines = %+v, want one t_pose segment", rec.Timelines)
		}

		resp, err := client.Get(ts.URL + "/api/records/" + rec.ID)
		if err != nil {
			t.Fatalf("get record error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after app operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_DatasetEvaluation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "data.db"))
	defer s.Close()

	ts := httptest.NewServer(server.New(server.Config{Store: s}))
	defer ts.Close()
	client := ts.Client()

	body := append(append([]byte(`{"pairs":`), testdata.PairsJSON()...), '}')
	resp, err := client.Post(ts.URL+"/api/pairs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("store pairs error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("store pairs status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()

	resp, err = client.Post(ts.URL+"/api/evaluate", "application/json", strings.NewReader(`{"lambdas": [0, 0.7, 1]}`))
	if err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		Pairs   int `json:"pairs"`
		Lambdas []struct {
			Lambda float64 `json:"lambda"`
			Best   struct {
				Threshold int     `json:"threshold"`
				Accuracy  float64 `json:"accuracy"`
			} `json:"best"`
		} `json:"lambdas"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	pairs, err := testdata.Pairs()
	if err != nil {
		t.Fatalf("testdata.Pairs() error = %v", err)
	}
	if result.Pairs != len(pairs) {
		t.Errorf("pairs = %d, want %d", result.Pairs, len(pairs))
	}
	if len(result.Lambdas) != 3 {
		t.Fatalf("len(lambdas) = %d, want 3", len(result.Lambdas))
	}
	for _, l := range result.Lambdas {
		if l.Best.Threshold != testdata.BestThreshold || l.Best.Accuracy != 1 {
			t.Errorf("lambda %v: best = %+v, want threshold %d at accuracy 1", l.Lambda, l.Best, testdata.BestThreshold)
		}
	}
}
