// Package posetest provides preset landmark sets for tests and mock detectors.
package posetest

import "github.com/ayusman/samadhi/internal/pose"

// Standing returns a front-facing upright pose with arms hanging at the sides.
// Coordinates are image-normalized; y grows downwards and the subject's left
// side appears on the right of the frame.
func Standing() pose.LandmarkSet {
	var s pose.LandmarkSet

	set := func(i int, x, y, z float64) {
		s[i] = pose.Landmark{X: x, Y: y, Z: z, Visibility: 0.99}
	}

	// Head
	set(pose.Nose, 0.50, 0.15, -0.02)
	set(pose.LeftEyeInner, 0.51, 0.13, -0.02)
	set(pose.LeftEye, 0.52, 0.13, -0.02)
	set(pose.LeftEyeOuter, 0.53, 0.13, -0.02)
	set(pose.RightEyeInner, 0.49, 0.13, -0.02)
	set(pose.RightEye, 0.48, 0.13, -0.02)
	set(pose.RightEyeOuter, 0.47, 0.13, -0.02)
	set(pose.LeftEar, 0.55, 0.14, 0.01)
	set(pose.RightEar, 0.45, 0.14, 0.01)
	set(pose.MouthLeft, 0.51, 0.17, -0.02)
	set(pose.MouthRight, 0.49, 0.17, -0.02)

	// Arms hanging, slightly bent
	set(pose.LeftShoulder, 0.60, 0.25, 0)
	set(pose.RightShoulder, 0.40, 0.25, 0)
	set(pose.LeftElbow, 0.62, 0.38, 0.01)
	set(pose.RightElbow, 0.38, 0.38, 0.01)
	set(pose.LeftWrist, 0.63, 0.50, -0.01)
	set(pose.RightWrist, 0.37, 0.50, -0.01)
	set(pose.LeftPinky, 0.635, 0.53, -0.01)
	set(pose.RightPinky, 0.365, 0.53, -0.01)
	set(pose.LeftIndex, 0.625, 0.54, -0.02)
	set(pose.RightIndex, 0.375, 0.54, -0.02)
	set(pose.LeftThumb, 0.62, 0.52, -0.02)
	set(pose.RightThumb, 0.38, 0.52, -0.02)

	// Legs straight
	set(pose.LeftHip, 0.56, 0.52, 0)
	set(pose.RightHip, 0.44, 0.52, 0)
	set(pose.LeftKnee, 0.56, 0.70, 0.01)
	set(pose.RightKnee, 0.44, 0.70, 0.01)
	set(pose.LeftAnkle, 0.56, 0.88, 0.02)
	set(pose.RightAnkle, 0.44, 0.88, 0.02)
	set(pose.LeftHeel, 0.56, 0.90, 0.05)
	set(pose.RightHeel, 0.44, 0.90, 0.05)
	set(pose.LeftFootIndex, 0.56, 0.93, -0.04)
	set(pose.RightFootIndex, 0.44, 0.93, -0.04)

	return s
}

// TPose returns the standing pose with both arms stretched out horizontally.
func TPose() pose.LandmarkSet {
	s := Standing()
	for _, side := range []struct {
		shoulder, elbow, wrist, pinky, index, thumb int
		dir                                         float64
	}{
		{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.LeftPinky, pose.LeftIndex, pose.LeftThumb, 1},
		{pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightPinky, pose.RightIndex, pose.RightThumb, -1},
	} {
		sx := s[side.shoulder].X
		move(&s, side.elbow, sx+side.dir*0.13, 0.25, 0)
		move(&s, side.wrist, sx+side.dir*0.25, 0.25, 0)
		move(&s, side.pinky, sx+side.dir*0.28, 0.26, 0)
		move(&s, side.index, sx+side.dir*0.29, 0.25, 0)
		move(&s, side.thumb, sx+side.dir*0.27, 0.24, -0.01)
	}
	return s
}

// Squat returns a squat: hips lowered, knees bent forward, arms reaching ahead.
func Squat() pose.LandmarkSet {
	s := Standing()

	move(&s, pose.LeftHip, 0.56, 0.66, 0.10)
	move(&s, pose.RightHip, 0.44, 0.66, 0.10)
	move(&s, pose.LeftKnee, 0.58, 0.72, -0.12)
	move(&s, pose.RightKnee, 0.42, 0.72, -0.12)

	move(&s, pose.LeftShoulder, 0.60, 0.40, -0.02)
	move(&s, pose.RightShoulder, 0.40, 0.40, -0.02)
	move(&s, pose.LeftElbow, 0.60, 0.40, -0.17)
	move(&s, pose.RightElbow, 0.40, 0.40, -0.17)
	move(&s, pose.LeftWrist, 0.60, 0.40, -0.30)
	move(&s, pose.RightWrist, 0.40, 0.40, -0.30)
	move(&s, pose.LeftIndex, 0.60, 0.41, -0.34)
	move(&s, pose.RightIndex, 0.40, 0.41, -0.34)

	for _, i := range []int{
		pose.Nose, pose.LeftEyeInner, pose.LeftEye, pose.LeftEyeOuter,
		pose.RightEyeInner, pose.RightEye, pose.RightEyeOuter,
		pose.LeftEar, pose.RightEar, pose.MouthLeft, pose.MouthRight,
	} {
		s[i].Y += 0.15
	}

	return s
}

// LeftArmRaised returns the standing pose with only the left arm raised
// straight overhead. It is asymmetric and useful for mirror tests.
func LeftArmRaised() pose.LandmarkSet {
	s := Standing()
	move(&s, pose.LeftElbow, 0.61, 0.12, 0)
	move(&s, pose.LeftWrist, 0.62, 0.00, 0)
	move(&s, pose.LeftIndex, 0.62, -0.03, -0.01)
	move(&s, pose.LeftPinky, 0.63, -0.02, 0)
	move(&s, pose.LeftThumb, 0.61, -0.02, -0.01)
	return s
}

// Shifted returns s translated and uniformly scaled in image space.
func Shifted(s pose.LandmarkSet, dx, dy, scale float64) pose.LandmarkSet {
	out := s
	for i := range out {
		out[i].X = out[i].X*scale + dx
		out[i].Y = out[i].Y*scale + dy
		out[i].Z = out[i].Z * scale
	}
	return out
}

// WithVisibility returns s with landmark i set to the given visibility.
func WithVisibility(s pose.LandmarkSet, i int, v float64) pose.LandmarkSet {
	s[i].Visibility = v
	return s
}

func move(s *pose.LandmarkSet, i int, x, y, z float64) {
	s[i].X, s[i].Y, s[i].Z = x, y, z
}
