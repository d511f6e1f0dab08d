// Package capture provides camera and video capture using GoCV (OpenCV)
// and still-image helpers for re-detection.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned when a non-looping video has no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Config configures a capture source.
type Config struct {
	// DeviceID selects a camera device. Ignored when VideoPath is set.
	DeviceID int
	// VideoPath plays a video file instead of a camera.
	VideoPath string
	// Loop restarts a video file at its end.
	Loop bool
	// Mirror flips frames horizontally, as a selfie view.
	Mirror bool
	FPS    int
}

// cameraImpl manages video capture from a camera device or file using GoCV.
type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a Camera for the given config. FPS defaults to DefaultFPS.
func NewCamera(config Config) Camera {
	fps := config.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &cameraImpl{
		config: config,
		fps:    fps,
	}
}

// Open opens the device or file for capturing frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.config.VideoPath != "" {
		capture, err = gocv.VideoCaptureFile(c.config.VideoPath)
	} else {
		capture, err = gocv.OpenVideoCapture(c.config.DeviceID)
	}
	if err != nil {
		return err
	}

	if c.config.VideoPath == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the source and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame, mirrored when configured.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		if c.config.VideoPath == "" {
			return nil, errors.New("failed to read frame from camera")
		}
		if !c.config.Loop {
			return nil, ErrEndOfStream
		}

		c.capture.Set(gocv.VideoCapturePosFrames, 0)
		mat = gocv.NewMat()
		if ok := c.capture.Read(&mat); !ok || mat.Empty() {
			mat.Close()
			return nil, ErrEndOfStream
		}
	}

	if c.config.Mirror {
		gocv.Flip(mat, &mat, 1)
	}

	return &mat, nil
}

// Position returns the playback offset of a video file in milliseconds.
// Cameras report 0.
func (c *cameraImpl) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil || c.config.VideoPath == "" {
		return 0
	}
	return c.capture.Get(gocv.VideoCapturePosMsec)
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil && c.config.VideoPath == "" {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the source is currently open.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
