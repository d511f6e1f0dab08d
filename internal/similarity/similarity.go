// Package similarity scores how alike two pose vectors are by blending a
// cosine "direction" score with a normalized Euclidean "magnitude" score.
package similarity

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultLambda is the weight given to the direction score.
	DefaultLambda = 0.7

	// Epsilon guards the Euclidean normalization and the exact-match check.
	Epsilon = 1e-4
)

var (
	ErrEmpty          = errors.New("empty vector")
	ErrLengthMismatch = errors.New("vector lengths differ")
	ErrZeroVector     = errors.New("zero magnitude vector")
)

// Result holds the components of one comparison. EuclideanDiff is the
// distance already normalized by the summed magnitudes, so a stored Result
// can be re-blended with another lambda through MixedScore.
type Result struct {
	Cosine        float64 `json:"cosine"`
	EuclideanDiff float64 `json:"euclidean_diff"`
	MixedScore    float64 `json:"mixed_score"`
}

// Compare scores a against b with DefaultLambda.
//
// Malformed input returns the zero Result with an error; callers that only
// need a score can ignore the error and use MixedScore 0 as "no match".
func Compare(a, b []float64) (Result, error) {
	return CompareWith(a, b, DefaultLambda)
}

// CompareWith scores a against b blending with lambda.
func CompareWith(a, b []float64, lambda float64) (Result, error) {
	if len(a) == 0 || len(b) == 0 {
		return Result{}, ErrEmpty
	}
	if len(a) != len(b) {
		return Result{}, ErrLengthMismatch
	}

	magA, magB := floats.Norm(a, 2), floats.Norm(b, 2)
	if magA == 0 || magB == 0 {
		return Result{}, ErrZeroVector
	}

	r := Result{
		Cosine:        clamp(floats.Dot(a, b)/(magA*magB), -1, 1),
		EuclideanDiff: floats.Distance(a, b, 2) / (magA + magB + Epsilon),
	}
	r.MixedScore = MixedScore(r, lambda)
	return r, nil
}

// MixedScore blends the components of r into a 0-100 score:
// lambda*direction + (1-lambda)*magnitude. lambda is clamped to [0,1].
// Near-identical vectors score exactly 100. The zero Result, returned for
// comparisons that could not be made, scores 0.
func MixedScore(r Result, lambda float64) float64 {
	if r == (Result{}) {
		return 0
	}
	if 1-r.Cosine < Epsilon && r.EuclideanDiff < Epsilon {
		return 100
	}

	lambda = clamp(lambda, 0, 1)
	direction := (clamp(r.Cosine, -1, 1) + 1) / 2 * 100
	magnitude := clamp((1-r.EuclideanDiff)*100, 0, 100)

	mixed := lambda*direction + (1-lambda)*magnitude
	return round3(clamp(mixed, 0, 100))
}

// Cosine returns the cosine similarity of a and b clamped to [-1,1].
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmpty
	}
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	magA, magB := floats.Norm(a, 2), floats.Norm(b, 2)
	if magA == 0 || magB == 0 {
		return 0, ErrZeroVector
	}
	return clamp(floats.Dot(a, b)/(magA*magB), -1, 1), nil
}

// AngleDistance is 1 - cosine similarity, in [0,2]; lower is more alike.
// Vectors that cannot be compared are at distance 1.
func AngleDistance(a, b []float64) float64 {
	c, err := Cosine(a, b)
	if err != nil {
		return 1
	}
	return 1 - c
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
