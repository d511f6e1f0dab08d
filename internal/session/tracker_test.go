package session

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/detector"
	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/pose/posetest"
)

func newTestTracker(sets ...pose.LandmarkSet) (*Tracker, *detector.MockDetector) {
	d := detector.NewMockDetector()
	if len(sets) > 0 {
		d.SetPoses(sets...)
	}
	return NewTracker(d, nil, classifier.DefaultOptions()), d
}

func TestTracker_Process(t *testing.T) {
	tr, d := newTestTracker(posetest.Standing())

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	obs, err := tr.Process(pose.SourceWebcam, &frame)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if d.Calls() != 1 {
		t.Errorf("detector calls = %d, want 1", d.Calls())
	}
	if !obs.Detected {
		t.Fatal("expected a detection")
	}
	if obs.Pose != "mountain" {
		t.Errorf("Pose = %q, want mountain", obs.Pose)
	}
	if len(obs.Fingerprint) != pose.FingerprintLen {
		t.Errorf("fingerprint length = %d, want %d", len(obs.Fingerprint), pose.FingerprintLen)
	}
	// The built-in catalog carries no fingerprints.
	if obs.Match != classifier.Unknown {
		t.Errorf("Match = %q, want %q", obs.Match, classifier.Unknown)
	}
	if got := tr.Sources(); len(got) != 1 || got[0] != pose.SourceWebcam {
		t.Errorf("Sources() = %v, want [webcam]", got)
	}
}

func TestTracker_Process_DetectorError(t *testing.T) {
	tr, d := newTestTracker()
	d.SetError(errors.New("service down"))

	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if _, err := tr.Process(pose.SourceWebcam, &frame); err == nil {
		t.Fatal("expected detector error to propagate")
	}
}

func TestTracker_Analyze_NoDetection(t *testing.T) {
	tr, _ := newTestTracker()

	obs := tr.Analyze(pose.SourceVideo, nil)
	if obs.Detected {
		t.Error("nil detection should not be reported as detected")
	}
	if obs.Pose != classifier.Unknown || obs.Match != classifier.Unknown {
		t.Errorf("labels = %q/%q, want unknown", obs.Pose, obs.Match)
	}
	if len(tr.Sources()) != 0 {
		t.Error("a missing detection must not create smoothing history")
	}
}

func TestTracker_Analyze_FingerprintMatch(t *testing.T) {
	set := posetest.TPose()
	fp, err := pose.Vectorize(&set, 480, 640)
	if err != nil {
		t.Fatalf("Vectorize() error = %v", err)
	}
	c, err := classifier.NewCatalog([]classifier.Reference{
		{Name: "t_pose", Angles: pose.ComputeAngles(&set, nil, ""), Fingerprint: fp},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	tr, _ := newTestTracker()
	tr.SetCatalog(c)

	shifted := posetest.Shifted(set, 0.05, -0.02, 0.8)
	obs := tr.Analyze(pose.SourceWebcam, &detector.Detection{Image: shifted, Width: 640, Height: 480})
	if obs.Match != "t_pose" {
		t.Errorf("Match = %q, want t_pose", obs.Match)
	}
	if obs.MatchScore < 99.9 {
		t.Errorf("MatchScore = %v, want ~100", obs.MatchScore)
	}
}

func TestTracker_Reset(t *testing.T) {
	tr, _ := newTestTracker()
	set := posetest.TPose()

	tr.Angles(pose.SourceWebcam, &set)
	tr.Angles(pose.SourceVideo, &set)
	tr.Reset(pose.SourceWebcam)

	if got := tr.Sources(); len(got) != 1 || got[0] != pose.SourceVideo {
		t.Errorf("Sources() after Reset = %v, want [video]", got)
	}

	tr.ResetAll()
	if len(tr.Sources()) != 0 {
		t.Error("ResetAll should clear every source")
	}
}

func TestTracker_ProcessImagePair(t *testing.T) {
	tr, _ := newTestTracker(posetest.TPose())
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))

	pair, err := tr.ProcessImagePair(
		ImageInput{Path: "a.jpg", Answer: "t_pose", Image: img},
		ImageInput{Path: "b.jpg", Answer: "t_pose", Image: img},
	)
	if err != nil {
		t.Fatalf("ProcessImagePair() error = %v", err)
	}

	if !pair.Same {
		t.Error("pairs with equal answers should be labeled same")
	}
	if pair.Original.MixedScore != 100 {
		t.Errorf("identical poses should score 100, got %v", pair.Original.MixedScore)
	}
	if pair.Image1.PoseResult != "t_pose" || pair.Image2.PoseResult != "t_pose" {
		t.Errorf("pose results = %q/%q, want t_pose", pair.Image1.PoseResult, pair.Image2.PoseResult)
	}
	if pair.Image2.Path != "b.jpg" {
		t.Errorf("Image2.Path = %q, want b.jpg", pair.Image2.Path)
	}
}

func TestTracker_ProcessImagePair_NoPose(t *testing.T) {
	tr, d := newTestTracker()
	d.SetDetections(nil)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	_, err := tr.ProcessImagePair(ImageInput{Image: img}, ImageInput{Image: img})
	if !errors.Is(err, ErrNoPose) {
		t.Errorf("expected ErrNoPose, got %v", err)
	}
}
