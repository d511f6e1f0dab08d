package classifier

import (
	"math"
	"sort"

	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/similarity"
)

// Unknown is the label given when no reference is close enough.
const Unknown = "unknown"

// DefaultMinScore is the lowest mixed score accepted as a fingerprint match.
const DefaultMinScore = 80.0

// Metric tells how to read the scores in a Result.
type Metric string

const (
	// MetricAngleDistance is 1 - cosine over joint angles. Lower is better.
	MetricAngleDistance Metric = "angle_distance"
	// MetricMixedScore is the 0-100 mixed similarity. Higher is better.
	MetricMixedScore Metric = "mixed_score"
)

// Result is the outcome of classifying one subject. Distances holds the
// best-orientation score for every reference that was compared.
type Result struct {
	BestLabel string             `json:"best_label"`
	Metric    Metric             `json:"metric"`
	Distances map[string]float64 `json:"distances"`

	order    []string
	mirrored map[string]bool
}

// Match is one ranked entry of a Result.
type Match struct {
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	Mirrored bool    `json:"mirrored"`
}

// Ranked returns every compared reference, best first. Equal scores keep
// catalog order.
func (r Result) Ranked() []Match {
	matches := make([]Match, 0, len(r.order))
	for _, name := range r.order {
		matches = append(matches, Match{
			Label:    name,
			Score:    r.Distances[name],
			Mirrored: r.mirrored[name],
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if r.Metric == MetricMixedScore {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Score < matches[j].Score
	})

	return matches
}

func newResult(m Metric, n int) Result {
	return Result{
		BestLabel: Unknown,
		Metric:    m,
		Distances: make(map[string]float64, n),
		order:     make([]string, 0, n),
		mirrored:  make(map[string]bool, n),
	}
}

func (r *Result) record(name string, score float64, mirrored bool) {
	r.Distances[name] = score
	r.order = append(r.order, name)
	r.mirrored[name] = mirrored
}

// ClassifyAngles finds the reference whose joint angles point in the most
// similar direction to angles, trying the subject both as given and
// mirrored. An empty catalog yields Unknown.
func ClassifyAngles(angles pose.AngleSet, c *Catalog) Result {
	res := newResult(MetricAngleDistance, c.Len())

	subject := angles.Slice()
	mirrored := pose.MirrorAngles(angles).Slice()

	best := math.Inf(1)
	for i := 0; i < c.Len(); i++ {
		ref := c.refs[i]
		target := ref.Angles.Slice()

		d := similarity.AngleDistance(subject, target)
		dm := similarity.AngleDistance(mirrored, target)
		useMirror := dm < d
		if useMirror {
			d = dm
		}

		res.record(ref.Name, d, useMirror)
		if d < best {
			best = d
			res.BestLabel = ref.Name
		}
	}

	return res
}

// Options tunes fingerprint classification.
type Options struct {
	// Lambda is the direction weight of the mixed score.
	Lambda float64
	// MinScore is the lowest score accepted as a match.
	MinScore float64
}

// DefaultOptions returns similarity.DefaultLambda and DefaultMinScore.
func DefaultOptions() Options {
	return Options{Lambda: similarity.DefaultLambda, MinScore: DefaultMinScore}
}

// ClassifyFingerprint finds the reference fingerprint with the highest
// mixed score against fp, trying fp both as given and mirrored. The best
// reference is only reported when it reaches opts.MinScore; otherwise the
// label is Unknown. References without a fingerprint are skipped.
func ClassifyFingerprint(fp pose.Fingerprint, c *Catalog, opts Options) Result {
	res := newResult(MetricMixedScore, c.Len())
	mirrored := pose.MirrorFingerprint(fp)

	best := math.Inf(-1)
	for i := 0; i < c.Len(); i++ {
		ref := c.refs[i]
		if len(ref.Fingerprint) == 0 {
			continue
		}

		// Malformed comparisons score 0.
		s, _ := similarity.CompareWith(fp, ref.Fingerprint, opts.Lambda)
		sm, _ := similarity.CompareWith(mirrored, ref.Fingerprint, opts.Lambda)
		score := s.MixedScore
		useMirror := sm.MixedScore > score
		if useMirror {
			score = sm.MixedScore
		}

		res.record(ref.Name, score, useMirror)
		if score >= opts.MinScore && score > best {
			best = score
			res.BestLabel = ref.Name
		}
	}

	return res
}
