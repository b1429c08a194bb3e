package shell

import (
	"math"

	"github.com/notargets/goshell/utils"
)

// mitc4Params carries the assumed transverse shear interpolation of the
// quad. Covariant shear strains are sampled at the four edge midpoints
// and interpolated across the element.
type mitc4Params struct {
	ax, ay, bx, by, cx, cy float64
	// maps the tying directions (r, s) onto local x, y
	tr [2][2]float64
	// covariant shear at the tying points, rows ordered by edge 4-1, 1-2, 2-3, 3-4
	bsNat utils.Matrix
}

func newMITC4Params(lcs *LocalCoordinateSystem) (p mitc4Params) {
	var (
		x1, x2, x3, x4 = lcs.X(0), lcs.X(1), lcs.X(2), lcs.X(3)
		y1, y2, y3, y4 = lcs.Y(0), lcs.Y(1), lcs.Y(2), lcs.Y(3)
	)
	p.ax = -x1 + x2 + x3 - x4
	p.bx = x1 - x2 + x3 - x4
	p.cx = -x1 - x2 + x3 + x4
	p.ay = -y1 + y2 + y3 - y4
	p.by = y1 - y2 + y3 - y4
	p.cy = -y1 - y2 + y3 + y4

	alpha := math.Atan2(p.ay, p.ax)
	beta := math.Atan2(p.cy, p.cx)
	p.tr = [2][2]float64{
		{math.Sin(beta), -math.Sin(alpha)},
		{-math.Cos(beta), math.Cos(alpha)},
	}

	var (
		x21, y21 = x2 - x1, y2 - y1
		x34, y34 = x3 - x4, y3 - y4
		x41, y41 = x4 - x1, y4 - y1
		x32, y32 = x3 - x2, y3 - y2
	)
	p.bsNat = utils.NewMatrix(4, NumDOF)
	// each tying row couples the w and (rx, ry) columns of the two edge nodes
	setEdge := func(row, nodeA, nodeB int, dx, dy float64) {
		for _, node := range []int{nodeA, nodeB} {
			sign := 0.5
			if node == nodeA {
				sign = -0.5
			}
			p.bsNat.Set(row, NodeDOF*node+2, sign)
			p.bsNat.Set(row, NodeDOF*node+3, -dy/4)
			p.bsNat.Set(row, NodeDOF*node+4, dx/4)
		}
	}
	setEdge(0, 0, 3, x41, y41)
	setEdge(1, 0, 1, x21, y21)
	setEdge(2, 1, 2, x32, y32)
	setEdge(3, 3, 2, x34, y34)
	return
}

// shearB returns the 2x24 assumed shear strain-displacement block (g13, g23)
// at (xi, eta)
func (p mitc4Params) shearB(xi, eta, detJ float64) (Bs utils.Matrix) {
	var (
		lenR  = math.Sqrt((p.cx+xi*p.bx)*(p.cx+xi*p.bx)+(p.cy+xi*p.by)*(p.cy+xi*p.by)) / (4 * detJ)
		lenS  = math.Sqrt((p.ax+eta*p.bx)*(p.ax+eta*p.bx)+(p.ay+eta*p.by)*(p.ay+eta*p.by)) / (4 * detJ)
		data  = p.bsNat.Data()
		gamma [2][NumDOF]float64
	)
	for j := 0; j < NumDOF; j++ {
		gamma[0][j] = lenR * (0.5*(1-eta)*data[1*NumDOF+j] + 0.5*(1+eta)*data[3*NumDOF+j])
		gamma[1][j] = lenS * (0.5*(1-xi)*data[0*NumDOF+j] + 0.5*(1+xi)*data[2*NumDOF+j])
	}
	Bs = utils.NewMatrix(2, NumDOF)
	for i := 0; i < 2; i++ {
		for j := 0; j < NumDOF; j++ {
			Bs.Set(i, j, p.tr[i][0]*gamma[0][j]+p.tr[i][1]*gamma[1][j])
		}
	}
	return
}
