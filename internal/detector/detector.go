// Package detector adapts external body pose detectors to pose landmark sets.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/samadhi/internal/pose"
)

// Detection is one detected body. Image landmarks are normalized to the
// frame (x, y in [0,1]); World landmarks are metric and centred on the hips.
// Width and Height are the frame size the image landmarks refer to.
type Detection struct {
	Image    pose.LandmarkSet
	World    pose.LandmarkSet
	HasWorld bool
	Width    int
	Height   int
}

// AngleLandmarks returns the landmark set joint angles should be measured
// on: world landmarks when the detector supplies them, image landmarks
// otherwise.
func (d *Detection) AngleLandmarks() *pose.LandmarkSet {
	if d.HasWorld {
		return &d.World
	}
	return &d.Image
}

// Detector defines the interface for body pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected body.
	// Returns nil if no body is detected.
	Detect(frame *gocv.Mat) (*Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity selects the landmark model (0 lite, 1 full, 2 heavy).
	ModelComplexity int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		ModelComplexity: 1,
	}
}
