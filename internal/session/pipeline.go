package session

import (
	"errors"
	"time"

	"github.com/ayusman/samadhi/internal/capture"
	"github.com/ayusman/samadhi/internal/monitoring"
	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/similarity"
	"gocv.io/x/gocv"
)

// positioner is implemented by video sources that know their playback offset.
type positioner interface {
	Position() float64
}

// runPipeline is the capture loop. Each tick it:
//  1. reads and analyzes a subject frame
//  2. reads and analyzes a reference video frame, when one is playing
//  3. scores the subject against the reference in both orientations
//  4. feeds the timeline and notifies listeners
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if !a.step() {
				return
			}
		}
	}
}

// step processes one tick. It returns false when the reference video ended.
func (a *App) step() bool {
	a.mu.RLock()
	camera, reference := a.camera, a.reference
	opts := a.config.Options
	a.mu.RUnlock()

	frame, err := camera.ReadFrame()
	if err != nil {
		monitoring.Logf("Error reading frame: %v", err)
		return true
	}
	a.keepPreview(frame)
	obs, err := a.tracker.Process(a.config.Source, frame)
	frame.Close()
	if err != nil {
		monitoring.Logf("Error analyzing frame: %v", err)
		return true
	}
	at := time.Since(a.started)

	label, score := obs.Pose, clampScore(100*(1-obs.PoseDistance))
	if !obs.Detected {
		score = 0
	}

	if reference != nil {
		refFrame, err := reference.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			monitoring.Logf("Reference video finished")
			a.stopAsync()
			return false
		}
		if err != nil {
			monitoring.Logf("Error reading reference frame: %v", err)
			return true
		}
		refObs, err := a.tracker.Process(pose.SourceVideo, refFrame)
		refFrame.Close()
		if err != nil {
			monitoring.Logf("Error analyzing reference frame: %v", err)
			return true
		}

		if p, ok := reference.(positioner); ok && p.Position() > 0 {
			at = time.Duration(p.Position() * float64(time.Millisecond))
		}
		obs.Similarity = followScore(obs.Fingerprint, refObs.Fingerprint, opts.Lambda)
		label, score = refObs.Pose, obs.Similarity
	}
	obs.At = at

	a.mu.Lock()
	a.clipper.Observe(label, score, at)
	a.lastAt = at
	a.last = obs
	listeners := append([]func(Observation){}, a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(obs)
	}
	return true
}

// keepPreview stores frame as the JPEG served to preview clients.
func (a *App) keepPreview(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return
	}
	jpg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.mu.Lock()
	a.preview = jpg
	a.mu.Unlock()
}

// stopAsync releases the sources from outside the loop goroutine.
func (a *App) stopAsync() {
	go a.Stop()
}

// followScore is the better mixed score of the subject, as seen and
// mirrored, against the reference. Missing fingerprints score 0.
func followScore(subject, reference pose.Fingerprint, lambda float64) float64 {
	if len(subject) == 0 || len(reference) == 0 {
		return 0
	}
	r, _ := similarity.CompareWith(subject, reference, lambda)
	m, _ := similarity.CompareWith(pose.MirrorFingerprint(subject), reference, lambda)
	return max(r.MixedScore, m.MixedScore)
}

func clampScore(v float64) float64 {
	return min(max(v, 0), 100)
}
