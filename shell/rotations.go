package shell

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func spin(v r3.Vec) (S *r3.Mat) {
	S = r3.NewMat(nil)
	S.Skew(v)
	return
}

// rotationQuaternion is the unit quaternion of the rotation vector theta
func rotationQuaternion(theta r3.Vec) quat.Number {
	return quat.Number(r3.NewRotation(r3.Norm(theta), theta))
}

func quaternionMatrix(q quat.Number) *r3.Mat { return r3.Rotation(q).Mat() }

// rotationVector extracts the rotation vector of the rotation matrix R using
// Shepperd's quaternion extraction, angle in [0, pi]
func rotationVector(R *r3.Mat) r3.Vec {
	var (
		tr = R.At(0, 0) + R.At(1, 1) + R.At(2, 2)
		q  quat.Number
	)
	switch {
	case tr >= R.At(0, 0) && tr >= R.At(1, 1) && tr >= R.At(2, 2):
		s := 2 * math.Sqrt(1+tr)
		q = quat.Number{
			Real: 0.25 * s,
			Imag: (R.At(2, 1) - R.At(1, 2)) / s,
			Jmag: (R.At(0, 2) - R.At(2, 0)) / s,
			Kmag: (R.At(1, 0) - R.At(0, 1)) / s,
		}
	case R.At(0, 0) >= R.At(1, 1) && R.At(0, 0) >= R.At(2, 2):
		s := 2 * math.Sqrt(1+2*R.At(0, 0)-tr)
		q = quat.Number{
			Real: (R.At(2, 1) - R.At(1, 2)) / s,
			Imag: 0.25 * s,
			Jmag: (R.At(0, 1) + R.At(1, 0)) / s,
			Kmag: (R.At(0, 2) + R.At(2, 0)) / s,
		}
	case R.At(1, 1) >= R.At(2, 2):
		s := 2 * math.Sqrt(1+2*R.At(1, 1)-tr)
		q = quat.Number{
			Real: (R.At(0, 2) - R.At(2, 0)) / s,
			Imag: (R.At(0, 1) + R.At(1, 0)) / s,
			Jmag: 0.25 * s,
			Kmag: (R.At(1, 2) + R.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+2*R.At(2, 2)-tr)
		q = quat.Number{
			Real: (R.At(1, 0) - R.At(0, 1)) / s,
			Imag: (R.At(0, 2) + R.At(2, 0)) / s,
			Jmag: (R.At(1, 2) + R.At(2, 1)) / s,
			Kmag: 0.25 * s,
		}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	sinHalf := r3.Norm(v)
	if sinHalf < 1.e-14 {
		return r3.Scale(2/q.Real, v)
	}
	return r3.Scale(2*math.Atan2(sinHalf, q.Real)/sinHalf, v)
}

// rotationJacobian returns H(theta) mapping spin variations onto
// variations of the rotation vector theta
func rotationJacobian(theta r3.Vec) (H *r3.Mat) {
	var (
		angle = r3.Norm(theta)
		eta   float64
	)
	if angle < 0.05 {
		a2 := angle * angle
		eta = 1./12. + a2/720. + a2*a2/30240.
	} else {
		half := 0.5 * angle
		eta = (1 - half*math.Cos(half)/math.Sin(half)) / (angle * angle)
	}
	S := spin(theta)
	S2 := r3.NewMat(nil)
	S2.Mul(S, S)
	H = r3.Eye()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			H.Set(i, j, H.At(i, j)-0.5*S.At(i, j)+eta*S2.At(i, j))
		}
	}
	return
}
