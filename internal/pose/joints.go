package pose

import (
	"encoding/json"
	"fmt"
)

// Joint identifies one of the tracked joint angles.
type Joint int

// Tracked joints. Order is stable and used as the AngleSet index.
const (
	JointLeftElbow Joint = iota
	JointRightElbow
	JointLeftShoulder
	JointRightShoulder
	JointLeftKnee
	JointRightKnee
	JointLeftHip
	JointRightHip
	JointSpine
	JointLeftHipShoulderAlign
	JointRightHipShoulderAlign
	JointLeftWrist
	JointRightWrist
	JointLeftAnkle
	JointRightAnkle
	JointNeck
	NumJoints
)

var jointNames = [NumJoints]string{
	JointLeftElbow:             "left_elbow",
	JointRightElbow:            "right_elbow",
	JointLeftShoulder:          "left_shoulder",
	JointRightShoulder:         "right_shoulder",
	JointLeftKnee:              "left_knee",
	JointRightKnee:             "right_knee",
	JointLeftHip:               "left_hip",
	JointRightHip:              "right_hip",
	JointSpine:                 "spine",
	JointLeftHipShoulderAlign:  "left_hip_shoulder_align",
	JointRightHipShoulderAlign: "right_hip_shoulder_align",
	JointLeftWrist:             "left_wrist",
	JointRightWrist:            "right_wrist",
	JointLeftAnkle:             "left_ankle",
	JointRightAnkle:            "right_ankle",
	JointNeck:                  "neck",
}

// String returns the joint's wire name.
func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJoint looks up a joint by its wire name.
func ParseJoint(name string) (Joint, bool) {
	for j, n := range jointNames {
		if n == name {
			return Joint(j), true
		}
	}
	return 0, false
}

// jointPairs lists left/right counterparts. Spine and neck sit on the axis
// of symmetry and are not swapped.
var jointPairs = [...][2]Joint{
	{JointLeftShoulder, JointRightShoulder},
	{JointLeftElbow, JointRightElbow},
	{JointLeftWrist, JointRightWrist},
	{JointLeftHip, JointRightHip},
	{JointLeftKnee, JointRightKnee},
	{JointLeftAnkle, JointRightAnkle},
	{JointLeftHipShoulderAlign, JointRightHipShoulderAlign},
}

// AngleSet holds one angle in degrees per joint.
type AngleSet [NumJoints]float64

// Slice returns the angles as a vector in joint order.
func (a AngleSet) Slice() []float64 {
	out := make([]float64, NumJoints)
	copy(out, a[:])
	return out
}

// MarshalJSON encodes the set as an object keyed by joint name.
func (a AngleSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumJoints)
	for j := Joint(0); j < NumJoints; j++ {
		m[j.String()] = a[j]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by joint name. Every joint must be
// present and no unknown keys are accepted.
func (a *AngleSet) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var out AngleSet
	seen := 0
	for name, v := range m {
		j, ok := ParseJoint(name)
		if !ok {
			return fmt.Errorf("unknown joint %q", name)
		}
		out[j] = v
		seen++
	}
	if seen != int(NumJoints) {
		return fmt.Errorf("angle set has %d joints, expected %d", seen, NumJoints)
	}

	*a = out
	return nil
}

// MirrorAngles swaps every left/right joint pair.
func MirrorAngles(a AngleSet) AngleSet {
	out := a
	for _, p := range jointPairs {
		out[p[0]], out[p[1]] = a[p[1]], a[p[0]]
	}
	return out
}

// jointSpec names the three points of a joint angle, vertex in the middle.
// Negative indices refer to derived centre points.
type jointSpec struct {
	a, b, c int
}

// Derived centre points used by the spine angle.
const (
	shoulderCenter = -1 - iota
	hipCenter
	kneeCenter
)

var jointSpecs = [NumJoints]jointSpec{
	JointLeftElbow:             {LeftShoulder, LeftElbow, LeftWrist},
	JointRightElbow:            {RightShoulder, RightElbow, RightWrist},
	JointLeftShoulder:          {LeftElbow, LeftShoulder, LeftHip},
	JointRightShoulder:         {RightElbow, RightShoulder, RightHip},
	JointLeftKnee:              {LeftHip, LeftKnee, LeftAnkle},
	JointRightKnee:             {RightHip, RightKnee, RightAnkle},
	JointLeftHip:               {LeftShoulder, LeftHip, LeftKnee},
	JointRightHip:              {RightShoulder, RightHip, RightKnee},
	JointSpine:                 {shoulderCenter, hipCenter, kneeCenter},
	JointLeftHipShoulderAlign:  {LeftShoulder, LeftHip, RightHip},
	JointRightHipShoulderAlign: {RightShoulder, RightHip, LeftHip},
	JointLeftWrist:             {LeftElbow, LeftWrist, LeftIndex},
	JointRightWrist:            {RightElbow, RightWrist, RightIndex},
	JointLeftAnkle:             {LeftKnee, LeftAnkle, LeftHeel},
	JointRightAnkle:            {RightKnee, RightAnkle, RightHeel},
	JointNeck:                  {LeftShoulder, LeftEar, Nose},
}
