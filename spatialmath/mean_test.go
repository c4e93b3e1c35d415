package spatialmath

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/estimator/logging"
)

func TestMeanPoseIdentical(t *testing.T) {
	samples := []WeightedPose{
		{0.5, poseA},
		{2, poseA},
		{7.25, poseA.Clone()},
	}
	mean, err := MeanPose(logging.NewTestLogger(t), samples)
	test.That(t, err, test.ShouldBeNil)
	expectPoseAlmostEqual(t, mean, poseA)
	test.That(t, quat.Abs(mean.Orientation()), test.ShouldAlmostEqual, 1, poseTol)
	test.That(t, mean.TimeOffset(), test.ShouldEqual, 0.)
	test.That(t, MaxAngularDeviation(mean, samples), test.ShouldAlmostEqual, 0, 1e-6)
}

func TestMeanPoseWeightedCentroid(t *testing.T) {
	samples := []WeightedPose{
		{1, NewPoseFromQuat(quat.Number{Real: 1}, r3.Vector{}, 0)},
		{3, NewPoseFromQuat(quat.Number{Real: 1}, r3.Vector{X: 2}, 0)},
	}
	mean, err := MeanPose(nil, samples)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mean.Point(), test.ShouldResemble, r3.Vector{X: 1.5})
	test.That(t, mean.Orientation(), test.ShouldResemble, quat.Number{Real: 1})
}

func TestMeanPoseNearbyRotations(t *testing.T) {
	small := NewPoseFromQuat((&R4AA{Theta: 0.1, RX: 0, RY: 0, RZ: 1}).ToQuat(), r3.Vector{}, 0)
	other := NewPoseFromQuat((&R4AA{Theta: 0.2, RX: 0, RY: 0, RZ: 1}).ToQuat(), r3.Vector{}, 0)

	mean, err := MeanPose(nil, []WeightedPose{{1, small}, {1, other}})
	test.That(t, err, test.ShouldBeNil)
	// Equal weights about a common axis land halfway.
	test.That(t, AngleBetween(quat.Number{Real: 1}, mean.Orientation()), test.ShouldAlmostEqual, 0.15, 1e-9)
}

func TestMeanPoseSignAmbiguity(t *testing.T) {
	// -q is the same rotation as q, but the component-wise mean does not know that: the two
	// samples cancel out entirely and leave an orientation that cannot be normalized.
	q := quat.Number{Real: 0.6, Kmag: 0.8}
	samples := []WeightedPose{
		{1, NewPoseFromQuat(q, r3.Vector{X: 1}, 0)},
		{1, NewPoseFromQuat(Flip(q), r3.Vector{X: 1}, 0)},
	}
	mean, err := MeanPose(nil, samples)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mean.IsValid(), test.ShouldBeFalse)
	test.That(t, mean.Point(), test.ShouldResemble, r3.Vector{X: 1})
}

func TestMeanPoseLogsEachSample(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	_, err := MeanPose(logger, []WeightedPose{{1, poseA}, {2, poseB}, {3, poseC}})
	test.That(t, err, test.ShouldBeNil)

	sampleLogs := logs.FilterMessage("mean pose sample").All()
	test.That(t, sampleLogs, test.ShouldHaveLength, 3)
	test.That(t, sampleLogs[1].ContextMap()["weight"], test.ShouldEqual, 2.)
	test.That(t, sampleLogs[1].ContextMap()["pose"], test.ShouldEqual, poseB.String())
}

func TestMeanPoseErrors(t *testing.T) {
	_, err := MeanPose(nil, nil)
	test.That(t, errors.Is(err, ErrNoPoses), test.ShouldBeTrue)

	_, err = MeanPose(nil, []WeightedPose{{1, poseA}, {-1, poseB}})
	test.That(t, errors.Is(err, ErrZeroTotalWeight), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "2 poses")
}

func TestMaxAngularDeviation(t *testing.T) {
	samples := []WeightedPose{
		{1, NewZeroPose()},
		{1, NewPoseFromQuat((&R4AA{Theta: math.Pi / 2, RX: 1, RY: 0, RZ: 0}).ToQuat(), r3.Vector{}, 0)},
	}
	test.That(t, MaxAngularDeviation(NewZeroPose(), samples), test.ShouldAlmostEqual, math.Pi/2, poseTol)
}
