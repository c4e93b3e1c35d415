// Package spatialmath defines spatial mathematical operations
package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/estimator/ros"
)

// Pose is a rigid transform, a rotation followed by a translation, plus the time offset between
// the two sensor streams it relates. A Pose is never mutated after construction; every operation
// returns a new Pose.
//
// The homogeneous transform is computed when the Pose is built and always agrees with the
// orientation and translation.
type Pose struct {
	orientation quat.Number
	translation r3.Vector
	transform   mgl64.Mat4
	timeOffset  float64
}

// NewZeroPose returns the identity pose: no rotation, no translation and no time offset.
func NewZeroPose() *Pose {
	return &Pose{
		orientation: quat.Number{Real: 1},
		transform:   mgl64.Ident4(),
	}
}

// NewPoseFromQuat builds a pose from a rotation quaternion, a translation and a time offset.
// q is normalized. A zero q cannot be normalized and yields a pose that is not IsValid.
func NewPoseFromQuat(q quat.Number, t r3.Vector, timeOffset float64) *Pose {
	q = normalizeQuat(q)
	return &Pose{
		orientation: q,
		translation: t,
		transform:   homogeneous(QuatToRotationMatrix(q), t),
		timeOffset:  timeOffset,
	}
}

// NewPoseFromRotationMatrix builds a pose from a 3x3 rotation matrix, a translation and a time offset.
// The matrix is used as-is for the rotation block of the transform.
func NewPoseFromRotationMatrix(r mgl64.Mat3, t r3.Vector, timeOffset float64) *Pose {
	return &Pose{
		orientation: RotationMatrixToQuat(r),
		translation: t,
		transform:   homogeneous(r, t),
		timeOffset:  timeOffset,
	}
}

// NewPoseFromTransform builds a pose from a 4x4 homogeneous transform and a time offset.
// The matrix is stored as-is as the pose's transform.
func NewPoseFromTransform(m mgl64.Mat4, timeOffset float64) *Pose {
	col := m.Col(3)
	return &Pose{
		orientation: RotationMatrixToQuat(m.Mat3()),
		translation: r3.Vector{X: col[0], Y: col[1], Z: col[2]},
		transform:   m,
		timeOffset:  timeOffset,
	}
}

// NewPoseFromOdometry builds a pose from the position and orientation of an odometry message.
// Odometry carries no time offset, so it is zero.
func NewPoseFromOdometry(odom *ros.OdometryMessage) *Pose {
	o := odom.Orientation()
	p := odom.Position()
	return NewPoseFromQuat(
		quat.Number{Real: o.W, Imag: o.X, Jmag: o.Y, Kmag: o.Z},
		r3.Vector{X: p.X, Y: p.Y, Z: p.Z},
		0,
	)
}

func homogeneous(r mgl64.Mat3, t r3.Vector) mgl64.Mat4 {
	m := r.Mat4()
	m.SetCol(3, mgl64.Vec4{t.X, t.Y, t.Z, 1})
	return m
}

// Clone returns a Pose identical to this one.
func (p *Pose) Clone() *Pose {
	// No need for deep copies here, everything is a value all the way down
	c := *p
	return &c
}

// Orientation returns the unit rotation quaternion.
func (p *Pose) Orientation() quat.Number {
	return p.orientation
}

// Point returns the translation.
func (p *Pose) Point() r3.Vector {
	return p.translation
}

// Transform returns the 4x4 homogeneous transform.
func (p *Pose) Transform() mgl64.Mat4 {
	return p.transform
}

// RotationMatrix returns the rotation block of the homogeneous transform.
func (p *Pose) RotationMatrix() mgl64.Mat3 {
	return p.transform.Mat3()
}

// TimeOffset returns the time offset, in seconds, carried alongside the transform.
func (p *Pose) TimeOffset() float64 {
	return p.timeOffset
}

// WithTimeOffset returns a copy of the pose carrying the given time offset.
func (p *Pose) WithTimeOffset(timeOffset float64) *Pose {
	c := p.Clone()
	c.timeOffset = timeOffset
	return c
}

// IsValid returns whether the orientation is a unit quaternion. It is false only for poses built
// from a zero (or otherwise non-normalizable) quaternion.
func (p *Pose) IsValid() bool {
	return math.Abs(quat.Abs(p.orientation)-1) < unitNormTolerance
}

// Compose returns pose1 composed with pose2: the transform that applies pose2 first, then pose1,
// i.e. T1 * T2. The time offset of the result is zero; neither input's offset is carried over.
func Compose(pose1, pose2 *Pose) *Pose {
	// t12 = t1 + q1 * t2
	// q12 = q1 * q2
	return NewPoseFromQuat(
		quat.Mul(pose1.orientation, pose2.orientation),
		RotatePoint(pose1.orientation, pose2.translation).Add(pose1.translation),
		0,
	)
}

// Compose returns p composed with other, see the package level Compose.
func (p *Pose) Compose(other *Pose) *Pose {
	return Compose(p, other)
}

// Inverse returns the pose undoing p. The time offset of the result is zero.
func (p *Pose) Inverse() *Pose {
	inv := quat.Inv(p.orientation)
	return NewPoseFromQuat(inv, RotatePoint(inv, p.translation).Mul(-1), 0)
}

// TransformPoint applies the pose to a point: rotate, then translate.
func (p *Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return RotatePoint(p.orientation, pt).Add(p.translation)
}

// String renders the translation, the quaternion in x y z w order, and the time offset.
// Numbers use %g with six significant digits and single spaces, without column padding.
// It is meant for logs; nothing parses it back.
func (p *Pose) String() string {
	return fmt.Sprintf("t: [%.6g %.6g %.6g], q: [%.6g %.6g %.6g %.6g], td: %.6g",
		p.translation.X, p.translation.Y, p.translation.Z,
		p.orientation.Imag, p.orientation.Jmag, p.orientation.Kmag, p.orientation.Real,
		p.timeOffset)
}

// PoseAlmostEqual returns whether two poses have approximately the same translation and rotation.
// Time offsets are not compared.
func PoseAlmostEqual(a, b *Pose, tol float64) bool {
	return a.translation.Sub(b.translation).Norm() < tol && QuaternionAlmostEqual(a.orientation, b.orientation, tol)
}
