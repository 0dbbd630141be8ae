package pose

import "github.com/go-gl/mathgl/mgl32"

// Orientation is the device's rotation for one frame, sampled once per frame
// from the IMU. Internally a 3x3 rotation matrix in the OpenGL convention
// (column vectors, Y up, camera looking down -Z).
type Orientation struct {
	m mgl32.Mat3
}

func IdentityOrientation() Orientation {
	return Orientation{m: mgl32.Ident3()}
}

// OrientationFromEuler builds an orientation from the legacy sensor path:
// yaw about Y, then roll about Z, then pitch about X, all in radians.
func OrientationFromEuler(yaw, pitch, roll float32) Orientation {
	m := mgl32.Rotate3DY(yaw).Mul3(mgl32.Rotate3DZ(roll)).Mul3(mgl32.Rotate3DX(pitch))
	return Orientation{m: m}
}

// OrientationFromMatrix builds an orientation from the rotation-vector sensor
// path: a 9 float rotation matrix in row-major order, as produced by the
// platform's getRotationMatrixFromVector.
func OrientationFromMatrix(rowMajor [9]float32) Orientation {
	return Orientation{m: mgl32.Mat3(rowMajor).Transpose()}
}

// Mat3 returns the rotation as a column-major 3x3 matrix.
func (o Orientation) Mat3() mgl32.Mat3 {
	return o.m
}

// RowMajor returns the rotation as 9 floats in row-major order, the inverse
// of OrientationFromMatrix. Session logs store this form.
func (o Orientation) RowMajor() [9]float32 {
	return [9]float32(o.m.Transpose())
}
