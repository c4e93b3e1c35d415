package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/estimator/logging"
)

var (
	// ErrNoPoses is returned when a mean is requested over an empty set of poses.
	ErrNoPoses = errors.New("cannot compute the mean of zero poses")
	// ErrZeroTotalWeight is returned when the pose weights sum to zero.
	ErrZeroTotalWeight = errors.New("pose weights sum to zero")
)

// WeightedPose is a pose and the weight it contributes to a mean.
type WeightedPose struct {
	Weight float64
	Pose   *Pose
}

// MeanPose returns the weighted mean of the given poses. Weights are not validated; they are only
// required to have a non-zero sum.
//
// Translations are averaged exactly. Rotations are averaged component-wise, treating each
// quaternion as a point in R4, which only approximates the mean rotation when the inputs are close
// to each other and share the same sign. See
// https://wiki.unity3d.com/index.php/Averaging_Quaternions_and_Vectors and
// "Rotation Averaging" (Hartley et al., IJCV 2013). The result has no time offset.
//
// Each sample is logged at debug level when logger is non-nil.
func MeanPose(logger logging.Logger, samples []WeightedPose) (*Pose, error) {
	if len(samples) == 0 {
		return nil, ErrNoPoses
	}

	// TODO: replace the component-wise rotation mean with a pose graph optimization,
	// T_mean = argmin_T sum ||T_i - T||^2.
	var weightTotal float64
	for _, sample := range samples {
		weightTotal += sample.Weight
	}
	if weightTotal == 0 {
		return nil, errors.Wrapf(ErrZeroTotalWeight, "over %d poses", len(samples))
	}

	var tMean r3.Vector
	for _, sample := range samples {
		if logger != nil {
			logger.Debugw("mean pose sample", "weight", sample.Weight, "pose", sample.Pose.String())
		}
		tMean = tMean.Add(sample.Pose.translation.Mul(sample.Weight))
	}
	tMean = r3.Vector{X: tMean.X / weightTotal, Y: tMean.Y / weightTotal, Z: tMean.Z / weightTotal}

	var qMean quat.Number
	for _, sample := range samples {
		qMean = quat.Add(qMean, quat.Scale(sample.Weight, sample.Pose.orientation))
	}
	qMean = quat.Number{
		Real: qMean.Real / weightTotal,
		Imag: qMean.Imag / weightTotal,
		Jmag: qMean.Jmag / weightTotal,
		Kmag: qMean.Kmag / weightTotal,
	}

	return NewPoseFromQuat(qMean, tMean, 0), nil
}

// MaxAngularDeviation returns the largest rotation angle, in radians, between mean and any sample.
// MeanPose's rotation average degrades as this grows.
func MaxAngularDeviation(mean *Pose, samples []WeightedPose) float64 {
	var maxAngle float64
	for _, sample := range samples {
		if angle := AngleBetween(mean.orientation, sample.Pose.orientation); angle > maxAngle {
			maxAngle = angle
		}
	}
	return maxAngle
}
