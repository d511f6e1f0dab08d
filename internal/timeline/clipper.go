// Package timeline cuts a stream of classified frames into per-pose
// segments scored by the mean similarity observed during each segment.
package timeline

import (
	"time"

	"github.com/ayusman/samadhi/internal/classifier"
)

// Segment is one stretch of a single reference pose. Start and End are
// offsets from the start of the session.
type Segment struct {
	Pose  string        `json:"pose"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Score float64       `json:"score"`
	Open  bool          `json:"open,omitempty"`
}

// Clipper accumulates segments. It is not safe for concurrent use.
type Clipper struct {
	segments []Segment
	current  string
	sum      float64
	samples  int
}

// NewClipper creates an empty clipper.
func NewClipper() *Clipper {
	return &Clipper{}
}

// Observe records one frame: the label of the reference pose and the
// similarity between the subject and the reference at offset at.
//
// A label change closes the open segment. A known label then opens a new
// one; the unknown label leaves the clipper idle until a known pose
// appears. Scores are only collected while a segment is open.
func (c *Clipper) Observe(label string, score float64, at time.Duration) {
	if label != c.current {
		c.Close(at)
		c.current = label
		if label != "" && label != classifier.Unknown {
			c.segments = append(c.segments, Segment{Pose: label, Start: at, Open: true})
		}
	}

	if c.isOpen() {
		c.sum += score
		c.samples++
	}
}

// Close ends the open segment at offset at, scoring it with the mean of its
// samples. It is a no-op when no segment is open.
func (c *Clipper) Close(at time.Duration) {
	if !c.isOpen() {
		return
	}

	last := &c.segments[len(c.segments)-1]
	last.End = at
	last.Score = c.mean()
	last.Open = false

	c.current = ""
	c.sum, c.samples = 0, 0
}

// Segments returns a copy of all segments. An open segment carries its
// running mean score and a zero End.
func (c *Clipper) Segments() []Segment {
	out := make([]Segment, len(c.segments))
	copy(out, c.segments)
	if c.isOpen() {
		out[len(out)-1].Score = c.mean()
	}
	return out
}

// TotalScore is the mean score of the closed segments, or 0 if there are none.
func (c *Clipper) TotalScore() float64 {
	var sum float64
	var n int
	for _, s := range c.segments {
		if s.Open {
			continue
		}
		sum += s.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Reset discards all segments.
func (c *Clipper) Reset() {
	*c = Clipper{}
}

func (c *Clipper) isOpen() bool {
	return len(c.segments) > 0 && c.segments[len(c.segments)-1].Open
}

func (c *Clipper) mean() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}
