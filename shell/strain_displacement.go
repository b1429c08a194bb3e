package shell

import (
	"math"

	"github.com/notargets/goshell/utils"
)

// strainDisplacement assembles the 8x24 generalized strain operator. The
// membrane rows take the area coordinate gradients mx, my, the curvature rows
// the isoparametric ones, and the transverse shear rows the assumed block.
func strainDisplacement(sf ShapeFunctions, mx, my [NumNodes]float64, Bs utils.Matrix) (B utils.Matrix) {
	B = utils.NewMatrix(NumStrains, NumDOF)
	for i := 0; i < NumNodes; i++ {
		var (
			c      = NodeDOF * i
			dx, dy = sf.DNdX[i], sf.DNdY[i]
		)
		// membrane
		B.Set(0, c, mx[i])
		B.Set(1, c+1, my[i])
		B.Set(2, c, my[i])
		B.Set(2, c+1, mx[i])
		// bending
		B.Set(3, c+4, dx)
		B.Set(4, c+3, -dy)
		B.Set(5, c+3, -dx)
		B.Set(5, c+4, dy)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < NumDOF; j++ {
			B.Set(6+i, j, Bs.At(i, j))
		}
	}
	return
}

// bendingSignInverted returns B with the curvature rows negated, the
// operator used on the transposed side of the element integrals
func bendingSignInverted(B utils.Matrix) (B1 utils.Matrix) {
	B1 = B.Copy()
	for i := 3; i < 6; i++ {
		for j := 0; j < NumDOF; j++ {
			B1.Set(i, j, -B1.At(i, j))
		}
	}
	return
}

// sectionRotation maps element frame generalized strains onto the section
// axes rotated by angle about the shell normal
func sectionRotation(angle float64) (T utils.Matrix) {
	var (
		c, s = math.Cos(angle), math.Sin(angle)
	)
	T = utils.NewMatrix(NumStrains, NumStrains)
	for blk := 0; blk < 2; blk++ {
		o := 3 * blk
		T.Set(o, o, c*c).Set(o, o+1, s*s).Set(o, o+2, c*s)
		T.Set(o+1, o, s*s).Set(o+1, o+1, c*c).Set(o+1, o+2, -c*s)
		T.Set(o+2, o, -2*c*s).Set(o+2, o+1, 2*c*s).Set(o+2, o+2, c*c-s*s)
	}
	T.Set(6, 6, c).Set(6, 7, s)
	T.Set(7, 6, -s).Set(7, 7, c)
	return
}
