package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/pose/posetest"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a fixed sequence of detections, repeating the last one.
type MockDetector struct {
	mu     sync.Mutex
	script []*Detection
	next   int
	err    error
	calls  int
}

// NewMockDetector creates a MockDetector that always sees the standing preset.
func NewMockDetector() *MockDetector {
	m := &MockDetector{}
	m.SetPoses(posetest.Standing())
	return m
}

// SetPoses replaces the script with one detection per landmark set. World
// landmarks mirror the image landmarks and the frame is 640x480.
func (m *MockDetector) SetPoses(sets ...pose.LandmarkSet) {
	dets := make([]*Detection, len(sets))
	for i, s := range sets {
		dets[i] = &Detection{Image: s, World: s, HasWorld: true, Width: 640, Height: 480}
	}
	m.SetDetections(dets...)
}

// SetDetections replaces the script. A nil entry means nobody in frame.
func (m *MockDetector) SetDetections(dets ...*Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = dets
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted detection or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) == 0 {
		return nil, nil
	}

	d := m.script[min(m.next, len(m.script)-1)]
	if m.next < len(m.script) {
		m.next++
	}
	if d == nil {
		return nil, nil
	}
	det := *d
	return &det, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
