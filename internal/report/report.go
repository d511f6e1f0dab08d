// Package report renders accuracy-versus-threshold curves, one series per
// blend weight, as HTML (go-echarts) or PNG (gonum/plot).
package report

import (
	"errors"
	"fmt"

	"github.com/ayusman/samadhi/internal/evaluate"
)

// ErrNoCurves is returned when there is nothing to draw.
var ErrNoCurves = errors.New("no accuracy curves")

// seriesName labels the curve of one blend weight.
func seriesName(c evaluate.LambdaCurve) string {
	return fmt.Sprintf("lambda=%.1f", c.Lambda)
}

// subtitle summarizes the best operating point.
func subtitle(curves []evaluate.LambdaCurve) string {
	best, ok := evaluate.BestLambda(curves)
	if !ok {
		return ""
	}
	return fmt.Sprintf("best lambda=%.1f threshold=%d accuracy=%.1f%%",
		best.Lambda, best.Best.Threshold, best.Best.Accuracy*100)
}
