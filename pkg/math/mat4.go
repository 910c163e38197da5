package math

import "github.com/go-gl/mathgl/mgl32"

// MirrorX negates the X component of a position or direction.
func MirrorX(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{-v[0], v[1], v[2]}
}

// MirrorX4 negates the X component of a four-component vector and keeps W.
func MirrorX4(v mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{-v[0], v[1], v[2], v[3]}
}

// ReflectX returns the reflection matrix that flips the X axis.
func ReflectX() mgl32.Mat4 {
	return mgl32.Scale3D(-1, 1, 1)
}

// ConvertMatrix changes the basis of a full transform matrix by reflecting
// on both sides: R * m * R. A matrix needs the conjugation, a single
// reflection would also mirror the result.
func ConvertMatrix(m mgl32.Mat4) mgl32.Mat4 {
	r := ReflectX()
	return r.Mul4(m).Mul4(r)
}

// TRS composes translation, rotation and scale into a matrix (T * R * S).
func TRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(r.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}
