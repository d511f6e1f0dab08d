package pose

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Angle returns the angle in degrees at vertex b between rays b→a and b→c,
// rounded to 0.1°. ok is false when any point is below the confidence floor
// or either ray has zero length.
func Angle(a, b, c Landmark) (deg float64, ok bool) {
	if !a.Visible() || !b.Visible() || !c.Visible() {
		return 0, false
	}

	ba := []float64{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
	bc := []float64{c.X - b.X, c.Y - b.Y, c.Z - b.Z}

	magBA := floats.Norm(ba, 2)
	magBC := floats.Norm(bc, 2)
	if magBA == 0 || magBC == 0 {
		return 0, false
	}

	cos := floats.Dot(ba, bc) / (magBA * magBC)
	cos = math.Max(-1, math.Min(1, cos))

	return roundTo(math.Acos(cos)*180/math.Pi, 1), true
}

// Midpoint averages two landmarks. The midpoint is only as visible as the
// less visible of the two.
func Midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b Landmark) float64 {
	return floats.Distance(
		[]float64{a.X, a.Y, a.Z},
		[]float64{b.X, b.Y, b.Z},
		2,
	)
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
