package pose

import (
	"math"
	"sort"
)

// DeadZone is the smallest angle change in degrees accepted as real motion.
// Smaller changes are treated as tracking jitter.
const DeadZone = 2.0

// Well-known tracking sources.
const (
	SourceWebcam = "webcam"
	SourceVideo  = "video"
	SourceImage1 = "image1"
	SourceImage2 = "image2"
)

// History is the last accepted angle per joint for one tracking source.
type History struct {
	angles AngleSet
	set    [NumJoints]bool
}

// Last returns the last accepted angle for j and whether one exists.
func (h *History) Last(j Joint) (float64, bool) {
	return h.angles[j], h.set[j]
}

// Angles returns the last accepted angles, zero where none was accepted yet.
func (h *History) Angles() AngleSet {
	return h.angles
}

// SmootherStore holds one angle history per tracking source. Histories are
// created lazily on first use.
//
// A SmootherStore is not safe for concurrent use. Each source must only be
// written by one stream at a time; callers running several streams in
// parallel either serialize access or keep one store per stream.
type SmootherStore struct {
	histories map[string]*History
}

// NewSmootherStore creates an empty store.
func NewSmootherStore() *SmootherStore {
	return &SmootherStore{
		histories: make(map[string]*History),
	}
}

// History returns the history for source, or nil if the source has not been
// observed since it was created or last reset.
func (s *SmootherStore) History(source string) *History {
	return s.histories[source]
}

func (s *SmootherStore) history(source string) *History {
	h, ok := s.histories[source]
	if !ok {
		h = &History{}
		s.histories[source] = h
	}
	return h
}

// Smooth applies the dead-zone filter to one joint reading.
//
// When ok is false the reading is unavailable and the last accepted value
// (or 0) is returned without touching the history. The first available
// reading is always accepted. Later readings within DeadZone of the last
// accepted value return that value unchanged; anything further is adopted.
func (s *SmootherStore) Smooth(source string, j Joint, value float64, ok bool) float64 {
	h := s.history(source)

	prev, hasPrev := h.angles[j], h.set[j]
	if !ok {
		if hasPrev {
			return prev
		}
		return 0
	}

	if hasPrev && math.Abs(value-prev) < DeadZone {
		return prev
	}

	h.angles[j] = value
	h.set[j] = true
	return value
}

// Reset clears the history of one source.
func (s *SmootherStore) Reset(source string) {
	delete(s.histories, source)
}

// ResetAll clears every source.
func (s *SmootherStore) ResetAll() {
	s.histories = make(map[string]*History)
}

// Sources returns the observed sources in sorted order.
func (s *SmootherStore) Sources() []string {
	out := make([]string, 0, len(s.histories))
	for k := range s.histories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ComputeAngles measures all joints of set and smooths them through store
// under source. A nil store returns raw angles with unavailable joints as 0.
func ComputeAngles(set *LandmarkSet, store *SmootherStore, source string) AngleSet {
	centers := map[int]Landmark{
		shoulderCenter: Midpoint(set[LeftShoulder], set[RightShoulder]),
		hipCenter:      Midpoint(set[LeftHip], set[RightHip]),
		kneeCenter:     Midpoint(set[LeftKnee], set[RightKnee]),
	}
	point := func(i int) Landmark {
		if i < 0 {
			return centers[i]
		}
		return set[i]
	}

	var out AngleSet
	for j := Joint(0); j < NumJoints; j++ {
		spec := jointSpecs[j]
		deg, ok := Angle(point(spec.a), point(spec.b), point(spec.c))

		if store == nil {
			out[j] = deg
			continue
		}
		out[j] = store.Smooth(source, j, deg, ok)
	}

	return out
}
