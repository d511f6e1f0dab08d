package pose

import (
	"errors"
	"fmt"
)

// FingerprintLen is the length of a flattened fingerprint: x, y, z per landmark.
const FingerprintLen = NumLandmarks * 3

// ErrZeroScale is returned when the shoulders coincide and the landmark set
// cannot be normalized. The frame should be skipped.
var ErrZeroScale = errors.New("shoulder distance is zero")

// Fingerprint is a translation and scale invariant pose vector.
type Fingerprint []float64

// Vectorize converts image-normalized landmarks into a fingerprint.
//
// Coordinates are first scaled to pixels using the frame size. The hip
// centre is the origin and the shoulder width is the unit of length.
// Landmarks below the confidence floor are emitted as [0,0,0] so the
// fingerprint length stays fixed.
func Vectorize(set *LandmarkSet, height, width int) (Fingerprint, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	h, w := float64(height), float64(width)
	toPixels := func(l Landmark) Landmark {
		return Landmark{X: l.X * w, Y: l.Y * h, Z: l.Z * w, Visibility: l.Visibility}
	}

	anchor := Midpoint(toPixels(set[LeftHip]), toPixels(set[RightHip]))
	scale := Distance(toPixels(set[LeftShoulder]), toPixels(set[RightShoulder]))
	if scale == 0 {
		return nil, ErrZeroScale
	}

	fp := make(Fingerprint, FingerprintLen)
	for i, l := range set {
		if !l.Visible() {
			continue
		}
		p := toPixels(l)
		fp[i*3] = (p.X - anchor.X) / scale
		fp[i*3+1] = (p.Y - anchor.Y) / scale
		fp[i*3+2] = (p.Z - anchor.Z) / scale
	}

	return fp, nil
}

// MirrorFingerprint reflects a fingerprint about the vertical body axis:
// paired landmarks swap places and x changes sign. Unknown landmarks stay
// [0,0,0]. Fingerprints of the wrong length are returned as a copy.
func MirrorFingerprint(fp Fingerprint) Fingerprint {
	out := make(Fingerprint, len(fp))
	copy(out, fp)
	if len(fp) != FingerprintLen {
		return out
	}

	for _, p := range landmarkPairs {
		l, r := p[0]*3, p[1]*3
		copy(out[l:l+3], fp[r:r+3])
		copy(out[r:r+3], fp[l:l+3])
	}
	for i := 0; i < FingerprintLen; i += 3 {
		out[i] = -out[i]
	}

	return out
}
