// Package session runs pose analysis over frames: detection, smoothed joint
// angles, fingerprints and classification against the reference catalog.
package session

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/samadhi/internal/capture"
	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/detector"
	"github.com/ayusman/samadhi/internal/evaluate"
	"github.com/ayusman/samadhi/internal/pose"
)

// ErrNoPose is returned when the detector finds nobody in a still image.
var ErrNoPose = errors.New("no pose detected")

// Observation is the analysis of one frame from one source.
type Observation struct {
	Source   string        `json:"source"`
	At       time.Duration `json:"at"`
	Detected bool          `json:"detected"`

	Angles      pose.AngleSet    `json:"angles"`
	Fingerprint pose.Fingerprint `json:"fingerprint,omitempty"`

	// Pose is the nearest reference by joint angles.
	Pose         string  `json:"pose"`
	PoseDistance float64 `json:"pose_distance"`
	Mirrored     bool    `json:"mirrored"`

	// Match is the reference fingerprint accepted by the score gate.
	Match      string  `json:"match"`
	MatchScore float64 `json:"match_score"`

	// Similarity is the mixed score against the reference video frame.
	// Zero when no reference is playing.
	Similarity float64 `json:"similarity,omitempty"`
}

// Tracker turns detections into observations. Smoothing state is kept per
// source. A Tracker is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	detector detector.Detector
	smoother *pose.SmootherStore
	catalog  *classifier.Catalog
	opts     classifier.Options
}

// NewTracker creates a tracker. A nil catalog falls back to
// classifier.DefaultCatalog.
func NewTracker(d detector.Detector, c *classifier.Catalog, opts classifier.Options) *Tracker {
	if c == nil {
		c = classifier.DefaultCatalog()
	}
	return &Tracker{
		detector: d,
		smoother: pose.NewSmootherStore(),
		catalog:  c,
		opts:     opts,
	}
}

// SetDetector replaces the detector.
func (t *Tracker) SetDetector(d detector.Detector) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.detector = d
}

// Detector returns the current detector.
func (t *Tracker) Detector() detector.Detector {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detector
}

// SetCatalog replaces the reference catalog.
func (t *Tracker) SetCatalog(c *classifier.Catalog) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.catalog = c
}

// Catalog returns the current reference catalog.
func (t *Tracker) Catalog() *classifier.Catalog {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.catalog
}

// Options returns the fingerprint classification options.
func (t *Tracker) Options() classifier.Options {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opts
}

// Angles measures smoothed joint angles for source.
func (t *Tracker) Angles(source string, set *pose.LandmarkSet) pose.AngleSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return pose.ComputeAngles(set, t.smoother, source)
}

// Reset discards the smoothing history of source.
func (t *Tracker) Reset(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.smoother.Reset(source)
}

// ResetAll discards the smoothing history of every source.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.smoother.ResetAll()
}

// Sources lists the sources with smoothing history.
func (t *Tracker) Sources() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.smoother.Sources()
}

// Process detects the pose in frame and analyzes it for source.
func (t *Tracker) Process(source string, frame *gocv.Mat) (Observation, error) {
	d := t.Detector()
	if d == nil {
		return Observation{Source: source, Pose: classifier.Unknown, Match: classifier.Unknown}, nil
	}

	det, err := d.Detect(frame)
	if err != nil {
		return Observation{}, fmt.Errorf("detect %s: %w", source, err)
	}
	if det != nil && (det.Width == 0 || det.Height == 0) {
		det.Width, det.Height = frame.Cols(), frame.Rows()
	}
	return t.Analyze(source, det), nil
}

// Analyze measures and classifies a detection. A nil detection yields an
// undetected observation and leaves the smoothing history untouched.
func (t *Tracker) Analyze(source string, det *detector.Detection) Observation {
	obs := Observation{Source: source, Pose: classifier.Unknown, Match: classifier.Unknown}
	if det == nil {
		return obs
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	obs.Detected = true
	obs.Angles = pose.ComputeAngles(det.AngleLandmarks(), t.smoother, source)

	byAngle := classifier.ClassifyAngles(obs.Angles, t.catalog)
	obs.Pose = byAngle.BestLabel
	if ranked := byAngle.Ranked(); len(ranked) > 0 {
		obs.PoseDistance = ranked[0].Score
		obs.Mirrored = ranked[0].Mirrored
	}

	fp, err := pose.Vectorize(&det.Image, det.Height, det.Width)
	if err != nil {
		return obs
	}
	obs.Fingerprint = fp

	byFingerprint := classifier.ClassifyFingerprint(fp, t.catalog, t.opts)
	obs.Match = byFingerprint.BestLabel
	if ranked := byFingerprint.Ranked(); len(ranked) > 0 {
		obs.MatchScore = ranked[0].Score
	}
	return obs
}

// ImageInput is one still image of a labeled pair.
type ImageInput struct {
	Path   string
	Answer string
	Image  image.Image
}

// ProcessImagePair detects both images and a mirrored copy of the second,
// then compares the first against both orientations. The pair is labeled
// same when both answers name the same pose.
func (t *Tracker) ProcessImagePair(a, b ImageInput) (evaluate.LabeledPair, error) {
	obsA, err := t.still(pose.SourceImage1, a.Image)
	if err != nil {
		return evaluate.LabeledPair{}, fmt.Errorf("image1 %s: %w", a.Path, err)
	}
	obsB, err := t.still(pose.SourceImage2, b.Image)
	if err != nil {
		return evaluate.LabeledPair{}, fmt.Errorf("image2 %s: %w", b.Path, err)
	}
	obsFlipped, err := t.still(pose.SourceImage2, capture.MirrorImage(b.Image))
	if err != nil {
		return evaluate.LabeledPair{}, fmt.Errorf("image2 %s mirrored: %w", b.Path, err)
	}

	same := a.Answer != "" && a.Answer == b.Answer
	pair := evaluate.ComparePair(obsA.Fingerprint, obsB.Fingerprint, obsFlipped.Fingerprint, same)
	pair.Image1 = evaluate.PairImage{Path: a.Path, PoseAnswer: a.Answer, PoseResult: obsA.Pose}
	pair.Image2 = evaluate.PairImage{Path: b.Path, PoseAnswer: b.Answer, PoseResult: obsB.Pose}
	return pair, nil
}

// still analyzes a single image with fresh smoothing history.
func (t *Tracker) still(source string, img image.Image) (Observation, error) {
	mat, err := capture.ImageToMat(img)
	if err != nil {
		return Observation{}, err
	}
	defer mat.Close()

	t.Reset(source)
	obs, err := t.Process(source, mat)
	if err != nil {
		return Observation{}, err
	}
	if !obs.Detected {
		return Observation{}, ErrNoPose
	}
	return obs, nil
}
