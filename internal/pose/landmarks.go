// Package pose provides body landmark types, joint-angle geometry, temporal
// smoothing and landmark fingerprinting.
package pose

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Body landmark indices following the MediaPipe pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// ConfidenceFloor is the minimum visibility for a landmark to take part in
// angle or fingerprint computation.
const ConfidenceFloor = 0.5

// ErrLandmarkCount is returned when a landmark slice does not hold exactly
// NumLandmarks points.
var ErrLandmarkCount = errors.New("landmark set must contain 33 points")

// landmarkPairs lists left/right counterparts. The nose has none.
var landmarkPairs = [...][2]int{
	{LeftEyeInner, RightEyeInner},
	{LeftEye, RightEye},
	{LeftEyeOuter, RightEyeOuter},
	{LeftEar, RightEar},
	{MouthLeft, MouthRight},
	{LeftShoulder, RightShoulder},
	{LeftElbow, RightElbow},
	{LeftWrist, RightWrist},
	{LeftPinky, RightPinky},
	{LeftIndex, RightIndex},
	{LeftThumb, RightThumb},
	{LeftHip, RightHip},
	{LeftKnee, RightKnee},
	{LeftAnkle, RightAnkle},
	{LeftHeel, RightHeel},
	{LeftFootIndex, RightFootIndex},
}

// Landmark is a single detected body point. Visibility is the detector's
// confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// UnmarshalJSON decodes a landmark, treating a missing visibility as fully visible.
func (l *Landmark) UnmarshalJSON(data []byte) error {
	var raw struct {
		X          float64  `json:"x"`
		Y          float64  `json:"y"`
		Z          float64  `json:"z"`
		Visibility *float64 `json:"visibility"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.X, l.Y, l.Z = raw.X, raw.Y, raw.Z
	l.Visibility = 1
	if raw.Visibility != nil {
		l.Visibility = *raw.Visibility
	}
	return nil
}

// Visible reports whether the landmark meets the confidence floor.
func (l Landmark) Visible() bool {
	return l.Visibility >= ConfidenceFloor
}

// LandmarkSet is the full 33-point skeleton for one detection.
type LandmarkSet [NumLandmarks]Landmark

// NewLandmarkSet copies points into a LandmarkSet. It fails fast when the
// slice length is not NumLandmarks.
func NewLandmarkSet(points []Landmark) (LandmarkSet, error) {
	var set LandmarkSet
	if len(points) != NumLandmarks {
		return set, fmt.Errorf("%w: got %d", ErrLandmarkCount, len(points))
	}
	copy(set[:], points)
	return set, nil
}

// Points returns the landmarks as a slice.
func (s *LandmarkSet) Points() []Landmark {
	return s[:]
}
