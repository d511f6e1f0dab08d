package pose

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJoint(t *testing.T) {
	for j := Joint(0); j < NumJoints; j++ {
		got, ok := ParseJoint(j.String())
		require.True(t, ok, j.String())
		assert.Equal(t, j, got)
	}

	_, ok := ParseJoint("left_tail")
	assert.False(t, ok)
	assert.Equal(t, "joint(99)", Joint(99).String())
}

func TestAngleSet_JSON(t *testing.T) {
	var a AngleSet
	for j := range a {
		a[j] = float64(j) * 10
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"left_hip_shoulder_align":90`)

	var back AngleSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestAngleSet_UnmarshalJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing joints", `{"left_elbow": 90}`},
		{"unknown joint", `{"left_elbow":1,"right_elbow":1,"left_shoulder":1,"right_shoulder":1,"left_knee":1,"right_knee":1,"left_hip":1,"right_hip":1,"spine":1,"left_hip_shoulder_align":1,"right_hip_shoulder_align":1,"left_wrist":1,"right_wrist":1,"left_ankle":1,"right_ankle":1,"tail":1}`},
		{"not an object", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AngleSet
			assert.Error(t, json.Unmarshal([]byte(tt.body), &a))
		})
	}
}

func TestMirrorAngles_Pairs(t *testing.T) {
	var a AngleSet
	a[JointLeftElbow] = 30
	a[JointRightElbow] = 150
	a[JointSpine] = 175
	a[JointNeck] = 60

	m := MirrorAngles(a)

	assert.Equal(t, 150.0, m[JointLeftElbow])
	assert.Equal(t, 30.0, m[JointRightElbow])
	assert.Equal(t, 175.0, m[JointSpine])
	assert.Equal(t, 60.0, m[JointNeck])
}
