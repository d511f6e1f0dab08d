package pose_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/pose/posetest"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestVectorize(t *testing.T) {
	set := posetest.Standing()

	fp, err := pose.Vectorize(&set, 100, 100)
	require.NoError(t, err)
	require.Len(t, fp, pose.FingerprintLen)

	// Hip centre is the origin and shoulder width (20px) the unit.
	assert.InDelta(t, 0.3, fp[pose.LeftHip*3], 1e-9)
	assert.InDelta(t, -0.3, fp[pose.RightHip*3], 1e-9)
	assert.InDelta(t, 0.0, fp[pose.LeftHip*3+1], 1e-9)
	assert.InDelta(t, 0.5, fp[pose.LeftShoulder*3], 1e-9)
	assert.InDelta(t, -1.35, fp[pose.LeftShoulder*3+1], 1e-9)
}

func TestVectorize_Invariance(t *testing.T) {
	base := posetest.Squat()
	want, err := pose.Vectorize(&base, 480, 640)
	require.NoError(t, err)

	tests := []struct {
		name          string
		dx, dy, scale float64
	}{
		{"translated", 0.1, -0.05, 1},
		{"shrunk", 0, 0, 0.6},
		{"translated and grown", -0.2, 0.1, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved := posetest.Shifted(base, tt.dx, tt.dy, tt.scale)
			got, err := pose.Vectorize(&moved, 480, 640)
			require.NoError(t, err)

			if diff := cmp.Diff(want, got, approx); diff != "" {
				t.Errorf("fingerprint changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVectorize_LowVisibility(t *testing.T) {
	set := posetest.WithVisibility(posetest.Standing(), pose.LeftWrist, 0.2)

	fp, err := pose.Vectorize(&set, 100, 100)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0}, []float64(fp[pose.LeftWrist*3:pose.LeftWrist*3+3]))
	assert.NotZero(t, fp[pose.RightWrist*3])
}

func TestVectorize_Errors(t *testing.T) {
	t.Run("coincident shoulders", func(t *testing.T) {
		set := posetest.Standing()
		set[pose.RightShoulder] = set[pose.LeftShoulder]

		_, err := pose.Vectorize(&set, 100, 100)
		assert.True(t, errors.Is(err, pose.ErrZeroScale))
	})

	t.Run("invalid frame size", func(t *testing.T) {
		set := posetest.Standing()

		_, err := pose.Vectorize(&set, 0, 100)
		assert.Error(t, err)
		_, err = pose.Vectorize(&set, 100, -1)
		assert.Error(t, err)
	})
}

func TestMirrorFingerprint(t *testing.T) {
	t.Run("symmetric pose mirrors onto itself", func(t *testing.T) {
		set := posetest.Standing()
		fp, err := pose.Vectorize(&set, 100, 100)
		require.NoError(t, err)

		if diff := cmp.Diff(fp, pose.MirrorFingerprint(fp), approx); diff != "" {
			t.Errorf("mirror differs (-want +got):\n%s", diff)
		}
	})

	t.Run("mirroring twice is the identity", func(t *testing.T) {
		set := posetest.LeftArmRaised()
		fp, err := pose.Vectorize(&set, 480, 640)
		require.NoError(t, err)

		once := pose.MirrorFingerprint(fp)
		assert.NotEqual(t, fp, once)
		assert.Equal(t, fp, pose.MirrorFingerprint(once))
	})

	t.Run("raised arm moves to the other side", func(t *testing.T) {
		set := posetest.LeftArmRaised()
		fp, err := pose.Vectorize(&set, 100, 100)
		require.NoError(t, err)

		m := pose.MirrorFingerprint(fp)
		assert.InDelta(t, fp[pose.LeftWrist*3+1], m[pose.RightWrist*3+1], 1e-12)
		assert.InDelta(t, -fp[pose.LeftWrist*3], m[pose.RightWrist*3], 1e-12)
	})

	t.Run("input is not modified", func(t *testing.T) {
		fp := make(pose.Fingerprint, pose.FingerprintLen)
		fp[pose.LeftHip*3] = 0.3
		pose.MirrorFingerprint(fp)
		assert.Equal(t, 0.3, fp[pose.LeftHip*3])
	})

	t.Run("wrong length is copied unchanged", func(t *testing.T) {
		fp := pose.Fingerprint{1, 2, 3}
		assert.Equal(t, fp, pose.MirrorFingerprint(fp))
	})
}
