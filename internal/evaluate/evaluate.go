// Package evaluate calibrates the similarity blend weight and decision
// threshold against labeled pose pairs.
package evaluate

import (
	"errors"
	"fmt"

	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/similarity"
)

// MaxThreshold is the highest threshold swept. Thresholds run 0..MaxThreshold.
const MaxThreshold = 100

// DefaultLambdas are the blend weights swept when none are given.
var DefaultLambdas = []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}

var ErrNoPairs = errors.New("no labeled pairs")

// PairImage describes one side of a labeled pair.
type PairImage struct {
	Path       string `json:"path,omitempty"`
	PoseAnswer string `json:"pose_answer"`
	PoseResult string `json:"pose_result,omitempty"`
}

// LabeledPair is two images with a ground-truth "same pose" label and the
// similarity components of image1 against image2 as given (Original) and
// against image2 flipped horizontally (Flipped).
type LabeledPair struct {
	Image1   PairImage         `json:"image1"`
	Image2   PairImage         `json:"image2"`
	Same     bool              `json:"same"`
	Original similarity.Result `json:"original"`
	Flipped  similarity.Result `json:"flipped"`
}

// Score returns the pair's effective mixed score under lambda: the better of
// the two orientations.
func (p LabeledPair) Score(lambda float64) float64 {
	return max(
		similarity.MixedScore(p.Original, lambda),
		similarity.MixedScore(p.Flipped, lambda),
	)
}

// best returns the similarity components of the better orientation.
func (p LabeledPair) best(lambda float64) similarity.Result {
	if similarity.MixedScore(p.Flipped, lambda) > similarity.MixedScore(p.Original, lambda) {
		return p.Flipped
	}
	return p.Original
}

// ComparePair builds a pair from fingerprints. Comparisons that are not
// possible keep the neutral zero result.
func ComparePair(a, b, bFlipped pose.Fingerprint, same bool) LabeledPair {
	orig, _ := similarity.Compare(a, b)
	flipped, _ := similarity.Compare(a, bFlipped)
	return LabeledPair{Same: same, Original: orig, Flipped: flipped}
}

// Confusion counts predictions against ground truth.
type Confusion struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Total returns the number of counted predictions.
func (c Confusion) Total() int {
	return c.TP + c.TN + c.FP + c.FN
}

// ThresholdAccuracy holds the metrics at one threshold.
type ThresholdAccuracy struct {
	Threshold int       `json:"threshold"`
	Accuracy  float64   `json:"accuracy"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1        float64   `json:"f1"`
	Confusion Confusion `json:"confusion"`
}

// EvaluateThresholds sweeps thresholds 0..100 over pairs scored with
// lambda. A pair is predicted same when its score is at least the threshold.
func EvaluateThresholds(pairs []LabeledPair, lambda float64) ([]ThresholdAccuracy, error) {
	if len(pairs) == 0 {
		return nil, ErrNoPairs
	}

	scores := make([]float64, len(pairs))
	same := make([]bool, len(pairs))
	for i, p := range pairs {
		scores[i] = p.Score(lambda)
		same[i] = p.Same
	}

	return EvaluateScores(scores, same)
}

// EvaluateScores sweeps thresholds over precomputed effective scores.
func EvaluateScores(scores []float64, same []bool) ([]ThresholdAccuracy, error) {
	if len(scores) == 0 {
		return nil, ErrNoPairs
	}
	if len(scores) != len(same) {
		return nil, fmt.Errorf("%d scores but %d labels", len(scores), len(same))
	}

	out := make([]ThresholdAccuracy, 0, MaxThreshold+1)
	for threshold := 0; threshold <= MaxThreshold; threshold++ {
		var c Confusion
		for i, s := range scores {
			predicted := s >= float64(threshold)
			switch {
			case same[i] && predicted:
				c.TP++
			case !same[i] && !predicted:
				c.TN++
			case !same[i] && predicted:
				c.FP++
			default:
				c.FN++
			}
		}
		out = append(out, metrics(threshold, c))
	}

	return out, nil
}

func metrics(threshold int, c Confusion) ThresholdAccuracy {
	precision := ratio(c.TP, c.TP+c.FP)
	recall := ratio(c.TP, c.TP+c.FN)

	var f1 float64
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return ThresholdAccuracy{
		Threshold: threshold,
		Accuracy:  ratio(c.TP+c.TN, c.Total()),
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Confusion: c,
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// BestThreshold returns the entry with the highest accuracy. Ties go to the
// lowest threshold. ok is false for an empty curve.
func BestThreshold(curve []ThresholdAccuracy) (best ThresholdAccuracy, ok bool) {
	if len(curve) == 0 {
		return ThresholdAccuracy{}, false
	}
	best = curve[0]
	for _, ta := range curve[1:] {
		if ta.Accuracy > best.Accuracy {
			best = ta
		}
	}
	return best, true
}

// LambdaCurve is the threshold sweep for one blend weight.
type LambdaCurve struct {
	Lambda float64             `json:"lambda"`
	Curve  []ThresholdAccuracy `json:"curve"`
	Best   ThresholdAccuracy   `json:"best"`
}

// SweepLambdas runs EvaluateThresholds independently for each lambda, in
// the given order. Nil lambdas use DefaultLambdas.
func SweepLambdas(pairs []LabeledPair, lambdas []float64) ([]LambdaCurve, error) {
	if len(lambdas) == 0 {
		lambdas = DefaultLambdas
	}

	out := make([]LambdaCurve, 0, len(lambdas))
	for _, l := range lambdas {
		curve, err := EvaluateThresholds(pairs, l)
		if err != nil {
			return nil, err
		}
		best, _ := BestThreshold(curve)
		out = append(out, LambdaCurve{Lambda: l, Curve: curve, Best: best})
	}
	return out, nil
}

// BestLambda returns the curve whose best accuracy is highest, the earliest
// on ties.
func BestLambda(curves []LambdaCurve) (LambdaCurve, bool) {
	if len(curves) == 0 {
		return LambdaCurve{}, false
	}
	best := curves[0]
	for _, c := range curves[1:] {
		if c.Best.Accuracy > best.Best.Accuracy {
			best = c
		}
	}
	return best, true
}
