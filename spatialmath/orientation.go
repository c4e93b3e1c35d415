package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// unitNormTolerance is how far from 1 the norm of an orientation may drift and still count as a rotation.
const unitNormTolerance = 1e-9

// normalizeQuat scales q to unit norm. A zero quaternion has no direction and is returned unchanged.
func normalizeQuat(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return q
	}
	return quat.Scale(1/n, q)
}

// RotatePoint rotates p by the unit quaternion q.
func RotatePoint(q quat.Number, p r3.Vector) r3.Vector {
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// QuatToRotationMatrix returns the 3x3 rotation matrix of a unit quaternion.
func QuatToRotationMatrix(q quat.Number) mgl64.Mat3 {
	return toMgl(q).Mat4().Mat3()
}

// RotationMatrixToQuat converts a proper rotation matrix to a unit quaternion.
func RotationMatrixToQuat(r mgl64.Mat3) quat.Number {
	return normalizeQuat(fromMgl(mgl64.Mat4ToQuat(r.Mat4())))
}

func toMgl(q quat.Number) mgl64.Quat {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}

func fromMgl(q mgl64.Quat) quat.Number {
	return quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]}
}

// QuaternionAlmostEqual returns whether two quaternions describe approximately the same rotation.
// q and -q are the same rotation, so both signs are checked.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return quatWithin(a, b, tol) || quatWithin(a, Flip(b), tol)
}

func quatWithin(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// OrientationBetween returns the rotation taking q1 to q2.
func OrientationBetween(q1, q2 quat.Number) quat.Number {
	return quat.Mul(q2, quat.Conj(q1))
}

// AngleBetween returns the magnitude, in radians, of the rotation taking q1 to q2.
func AngleBetween(q1, q2 quat.Number) float64 {
	return math.Abs(QuatToR4AA(OrientationBetween(q1, q2)).Theta)
}
