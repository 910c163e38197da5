// Package math provides the coordinate-system conversions used when moving
// engine data (left-handed, Y up) into interchange space (right-handed, Y up).
//
// Vectors, quaternions and matrices are mathgl's mgl32 types.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// gimbalThreshold is the |sin(pitch)| above which Euler decomposition
// collapses yaw into roll.
const gimbalThreshold = 0.9999995

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() mgl32.Quat {
	return mgl32.QuatIdent()
}

// Quat builds a quaternion from components stored as X, Y, Z, W.
func Quat(x, y, z, w float32) mgl32.Quat {
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// MirrorQuat converts an engine rotation into interchange space by
// negating the Y and Z imaginary components: (x, -y, -z, w).
func MirrorQuat(q mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.V[0], -q.V[1], -q.V[2]}}
}

// QuatToEuler converts a quaternion to Euler angles in degrees using the
// XYZ rotation order (R = Rz * Ry * Rx), the order interchange formats expect.
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	x, y, z, w := float64(q.V[0]), float64(q.V[1]), float64(q.V[2]), float64(q.W)

	// Work on the normalized rotation; packed quaternions are not unit length.
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n < 1e-12 {
		return mgl32.Vec3{}
	}
	x, y, z, w = x/n, y/n, z/n, w/n

	sinPitch := 2 * (w*y - x*z)
	var rx, ry, rz float64
	if math.Abs(sinPitch) >= gimbalThreshold {
		ry = math.Copysign(math.Pi/2, sinPitch)
		rx = math.Atan2(-2*(y*z-w*x), 1-2*(x*x+z*z))
		rz = 0
	} else {
		rx = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
		ry = math.Asin(sinPitch)
		rz = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	}

	return mgl32.Vec3{
		float32(rx * 180 / math.Pi),
		float32(ry * 180 / math.Pi),
		float32(rz * 180 / math.Pi),
	}
}

// EulerToQuat is the inverse of QuatToEuler: angles in degrees, XYZ order.
func EulerToQuat(e mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(mgl32.DegToRad(e[0]), mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(mgl32.DegToRad(e[1]), mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(mgl32.DegToRad(e[2]), mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx).Normalize()
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis mgl32.Vec3, angle float32) mgl32.Quat {
	return mgl32.QuatRotate(angle, axis)
}
