package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/samadhi/internal/capture"
	"github.com/ayusman/samadhi/internal/monitoring"
	"github.com/ayusman/samadhi/internal/pose/posetest"
	"github.com/ayusman/samadhi/internal/store"
)

func newTestApp(t *testing.T, s *store.Store) (*App, []func()) {
	t.Helper()
	monitoring.SetLogger(nil)

	app := New(Config{Store: s, FPS: 50})
	_, d := newTestTracker(posetest.TPose())
	app.SetDetector(d)

	frames := capture.BlankFrames(3)
	closers := []func(){}
	for _, f := range frames {
		closers = append(closers, func() { f.Close() })
	}
	app.SetCamera(capture.NewMockCamera(frames, true))
	return app, closers
}

func TestApp_CaptureLoop_Observations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, closers := newTestApp(t, nil)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	got := make(chan Observation, 64)
	app.OnObservation(func(o Observation) {
		select {
		case got <- o:
		default:
		}
	})

	app.SetEnabled(true)
	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer app.Stop()

	select {
	case obs := <-got:
		if !obs.Detected {
			t.Error("expected a detected pose")
		}
		if obs.Pose != "t_pose" {
			t.Errorf("Pose = %q, want t_pose", obs.Pose)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no observation within 2s")
	}

	if app.LastObservation().Pose != "t_pose" {
		t.Errorf("LastObservation().Pose = %q", app.LastObservation().Pose)
	}
	if jpg := app.Preview(); len(jpg) < 2 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		t.Error("expected a JPEG preview of the last frame")
	}
}

func TestApp_CaptureLoop_Disabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, closers := newTestApp(t, nil)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	app.Stop()

	if d := app.Tracker().Detector(); d != nil {
		if calls := d.(interface{ Calls() int }).Calls(); calls != 0 {
			t.Errorf("disabled app ran detection %d times", calls)
		}
	}
}

func TestApp_ReferenceVideo_RecordsTimeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	app, closers := newTestApp(t, s)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	if err := app.LoadCatalog(); err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	refFrames := capture.BlankFrames(3)
	defer func() {
		for _, f := range refFrames {
			f.Close()
		}
	}()
	app.SetReference(capture.NewMockCamera(refFrames, false))

	if _, err := app.SaveRecord(); err != ErrNoSession {
		t.Errorf("SaveRecord() before a session: got %v, want ErrNoSession", err)
	}

	app.SetEnabled(true)
	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for app.Running() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if app.Running() {
		app.Stop()
		t.Fatal("loop should stop when the reference video ends")
	}

	segments := app.Timeline()
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %+v", segments)
	}
	if segments[0].Pose != "t_pose" || segments[0].Open {
		t.Errorf("segment = %+v, want closed t_pose", segments[0])
	}
	if segments[0].Score != 100 {
		t.Errorf("following an identical pose should score 100, got %v", segments[0].Score)
	}

	rec, err := app.SaveRecord()
	if err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}
	stored, err := s.Records().GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.TotalScore != 100 || len(stored.Timelines) != 1 {
		t.Errorf("stored record = %+v", stored)
	}
}
