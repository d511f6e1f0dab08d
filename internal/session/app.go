package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/samadhi/internal/capture"
	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/detector"
	"github.com/ayusman/samadhi/internal/monitoring"
	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/store"
	"github.com/ayusman/samadhi/internal/timeline"
)

var (
	// ErrRunning is returned when an operation needs a stopped session.
	ErrRunning = errors.New("session still running")
	// ErrNoSession is returned before any session was started.
	ErrNoSession = errors.New("no session recorded")
)

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store
	// Camera configures the subject's camera.
	Camera capture.Config
	// ReferenceVideo is an optional video the subject follows. When set,
	// frames are scored against it and the timeline follows its poses.
	ReferenceVideo string
	// ReferenceURL is recorded with finished sessions.
	ReferenceURL string
	// Source is the smoothing key of the subject's camera.
	Source  string
	FPS     int
	Options classifier.Options
}

// App ties a camera, an optional reference video and a Tracker into a
// capture loop that reports one Observation per frame.
type App struct {
	config    Config
	camera    capture.Camera
	reference capture.Camera
	tracker   *Tracker
	clipper   *timeline.Clipper
	listeners []func(Observation)
	last      Observation
	preview   []byte
	enabled   bool
	started   time.Time
	elapsed   time.Duration
	lastAt    time.Duration
	mu        sync.RWMutex
	stopMu    sync.Mutex
	stopCh    chan struct{}
	done      chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Source == "" {
		config.Source = pose.SourceWebcam
	}
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.Options == (classifier.Options{}) {
		config.Options = classifier.DefaultOptions()
	}
	if config.Camera.FPS <= 0 {
		config.Camera.FPS = config.FPS
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.Camera),
		clipper: timeline.NewClipper(),
		last:    Observation{Source: config.Source, Pose: classifier.Unknown, Match: classifier.Unknown},
	}
	if config.ReferenceVideo != "" {
		a.reference = capture.NewCamera(capture.Config{VideoPath: config.ReferenceVideo, FPS: config.FPS})
	}

	// Try MediaPipe first, fall back to mock detector
	var d detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		d = mp
		monitoring.Logf("Using MediaPipe pose detection")
	} else {
		monitoring.Logf("MediaPipe not available (%v), using mock detector", err)
		d = detector.NewMockDetector()
	}
	a.tracker = NewTracker(d, nil, config.Options)

	return a
}

// Tracker returns the tracker shared by the capture loop and API callers.
func (a *App) Tracker() *Tracker {
	return a.tracker
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.tracker.SetDetector(d)
}

// SetCamera replaces the subject camera. Takes effect on the next Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetReference replaces the reference video source. Nil disables it.
func (a *App) SetReference(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reference = c
}

// SetEnabled enables or disables frame analysis.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame analysis is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnObservation registers fn to receive every observation. fn runs on the
// capture goroutine and must not block.
func (a *App) OnObservation(fn func(Observation)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// LastObservation returns the most recent observation.
func (a *App) LastObservation() Observation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Preview returns the latest subject frame as JPEG, or nil before the
// first frame.
func (a *App) Preview() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.preview
}

// LoadCatalog loads the reference poses from the store. An empty table is
// seeded with classifier.DefaultCatalog.
func (a *App) LoadCatalog() error {
	if a.config.Store == nil {
		return nil
	}

	refs := a.config.Store.References()
	c, err := refs.Catalog()
	if errors.Is(err, classifier.ErrEmptyCatalog) {
		n, seedErr := refs.Seed(classifier.DefaultCatalog(), uuid.NewString)
		if seedErr != nil {
			return fmt.Errorf("seed references: %w", seedErr)
		}
		monitoring.Logf("Seeded %d default reference poses", n)
		c, err = refs.Catalog()
	}
	if err != nil {
		return fmt.Errorf("load references: %w", err)
	}

	a.tracker.SetCatalog(c)
	monitoring.Logf("Loaded %d reference poses", c.Len())
	return nil
}

// Start opens the sources and begins the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.FPS)

	if a.reference != nil {
		if err := a.reference.Open(); err != nil {
			a.camera.Close()
			return fmt.Errorf("open reference video: %w", err)
		}
	}

	a.clipper.Reset()
	a.started = time.Now()
	a.elapsed, a.lastAt = 0, 0
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	monitoring.Logf("Capture loop started")
	return nil
}

// Stop halts the capture loop, closes the open timeline segment and
// releases the sources. The detector stays usable for API callers.
func (a *App) Stop() {
	a.stopMu.Lock()
	defer a.stopMu.Unlock()

	a.mu.RLock()
	stopCh, done := a.stopCh, a.done
	a.mu.RUnlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	a.mu.Lock()
	defer a.mu.Unlock()

	a.elapsed = time.Since(a.started)
	a.clipper.Close(a.lastAt)

	if err := a.camera.Close(); err != nil {
		monitoring.Logf("Error closing camera: %v", err)
	}
	if a.reference != nil {
		if err := a.reference.Close(); err != nil {
			monitoring.Logf("Error closing reference video: %v", err)
		}
	}
	a.stopCh, a.done = nil, nil

	monitoring.Logf("Capture loop stopped")
}

// Close stops the loop and closes the detector.
func (a *App) Close() error {
	a.Stop()
	if d := a.tracker.Detector(); d != nil {
		return d.Close()
	}
	return nil
}

// Running reports whether the capture loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Timeline returns the pose segments of the current or last session.
func (a *App) Timeline() []timeline.Segment {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.clipper.Segments()
}

// SaveRecord stores the last finished session as a workout record.
func (a *App) SaveRecord() (*store.Record, error) {
	if a.config.Store == nil {
		return nil, errors.New("no store configured")
	}
	if a.Running() {
		return nil, ErrRunning
	}

	a.mu.RLock()
	if a.started.IsZero() {
		a.mu.RUnlock()
		return nil, ErrNoSession
	}
	segments := a.clipper.Segments()
	rec := &store.Record{
		ID:          uuid.NewString(),
		StartedAt:   a.started,
		DurationSec: a.elapsed.Seconds(),
		VideoURL:    a.config.ReferenceURL,
		TotalScore:  a.clipper.TotalScore(),
	}
	a.mu.RUnlock()

	for _, s := range segments {
		rec.Timelines = append(rec.Timelines, store.TimelineEntry{
			StartSec: s.Start.Seconds(),
			EndSec:   s.End.Seconds(),
			Pose:     s.Pose,
			Score:    s.Score,
		})
	}

	if err := a.config.Store.Records().Create(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
