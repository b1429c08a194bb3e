package shell

import (
	"fmt"

	"github.com/notargets/goshell/utils"
)

// agqParams holds the quadrilateral area coordinate data of the reference
// planform used by the membrane rows and the incompatible membrane modes
type agqParams struct {
	area float64
	// g[i] is the area of the sub-triangle opposite corner i+2 over the total
	g    [NumNodes]float64
	b, c [NumNodes]float64
	// bubble content of the external shape functions along L1*L3 and L2*L4,
	// which makes them reproduce 1, x and y
	q1, q2 [NumNodes]float64
	// constant gradient correction restoring the edge compatible mean
	hx, hy [NumNodes]float64
}

func newAGQParams(lcs *LocalCoordinateSystem) (p agqParams, err error) {
	var (
		x  = [NumNodes]float64{lcs.X(0), lcs.X(1), lcs.X(2), lcs.X(3)}
		y  = [NumNodes]float64{lcs.Y(0), lcs.Y(1), lcs.Y(2), lcs.Y(3)}
		sf [NumGauss]ShapeFunctions
	)
	for igp := 0; igp < NumGauss; igp++ {
		sf[igp] = EvaluateJacobian(gaussXI[igp], gaussETA[igp], lcs)
		if !(sf[igp].DetJ > 0) {
			err = geometryError(igp, sf[igp].DetJ)
			return
		}
	}
	triangleArea := func(i, j, k int) float64 {
		return 0.5 * ((x[j]-x[i])*(y[k]-y[i]) - (x[k]-x[i])*(y[j]-y[i]))
	}
	// sub-triangles 412, 123, 234, 341
	sub := [NumNodes]float64{
		triangleArea(3, 0, 1),
		triangleArea(0, 1, 2),
		triangleArea(1, 2, 3),
		triangleArea(2, 3, 0),
	}
	p.area = 0.5 * (sub[0] + sub[1] + sub[2] + sub[3])
	for i := range sub {
		p.g[i] = sub[i] / p.area
		if !(p.g[i] > 0) {
			err = fmt.Errorf("%w: planform is not convex, g = %v", ErrGeometry, p.g)
			return
		}
	}
	// L_i vanishes on the side (j, k)
	for i := 0; i < NumNodes; i++ {
		j, k := (i+1)%NumNodes, (i+2)%NumNodes
		p.b[i] = y[j] - y[k]
		p.c[i] = x[k] - x[j]
	}
	if err = p.bubbleContent(x, y); err != nil {
		return
	}

	// the patch test fixes the mean of every external gradient to the edge
	// compatible value, the remainder is a constant shift
	var (
		mx, my    [NumNodes]float64
		totalArea float64
	)
	for igp := 0; igp < NumGauss; igp++ {
		dA := gaussW[igp] * sf[igp].DetJ
		dx, dy := p.externalGradients(gaussXI[igp], gaussETA[igp])
		for i := 0; i < NumNodes; i++ {
			mx[i] += dA * dx[i]
			my[i] += dA * dy[i]
		}
		totalArea += dA
	}
	for i := 0; i < NumNodes; i++ {
		next, prev := (i+1)%NumNodes, (i+3)%NumNodes
		p.hx[i] = 0.5*(y[next]-y[prev])/totalArea - mx[i]/totalArea
		p.hy[i] = 0.5*(x[prev]-x[next])/totalArea - my[i]/totalArea
	}
	return
}

// bubbleContent fits the L1*L3 and L2*L4 content of the product shape
// functions so the sum reproduces every linear field. Each bubble is read at
// a side midpoint where the other one vanishes, and the nodal amplitudes are
// the least squares linear fit through the corners.
func (p *agqParams) bubbleContent(x, y [NumNodes]float64) (err error) {
	var (
		F = utils.NewMatrix(NumNodes, 3)
	)
	for i := 0; i < NumNodes; i++ {
		F.Set(i, 0, 1).Set(i, 1, x[i]).Set(i, 2, y[i])
	}
	Ginv, err := F.TransposeMul(F).Inverse()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeometry, err)
	}
	content := func(xi, eta float64, side [2]int, bubble int) utils.Vector {
		var (
			P, _, _ = p.productShapes(xi, eta)
			phi, _  = p.bubbles(xi, eta)
			fit     = utils.NewVector(3)
		)
		for m := 0; m < 3; m++ {
			f := 0.5 * (F.At(side[0], m) + F.At(side[1], m))
			for i := 0; i < NumNodes; i++ {
				f -= P[i] * F.At(i, m)
			}
			fit.Set(m, f/phi[bubble])
		}
		return F.MulVec(Ginv.MulVec(fit))
	}
	copy(p.q1[:], content(0, -1, [2]int{0, 1}, 0).Data())
	copy(p.q2[:], content(1, 0, [2]int{1, 2}, 1).Data())
	return
}

// areaCoordinates returns L_1..L_4 at the natural point (xi, eta)
func (p agqParams) areaCoordinates(xi, eta float64) (L [NumNodes]float64) {
	g1, g2, g3, g4 := p.g[0], p.g[1], p.g[2], p.g[3]
	L[0] = 0.25 * (1 - xi) * (g2*(1-eta) + g3*(1+eta))
	L[1] = 0.25 * (1 - eta) * (g4*(1-xi) + g3*(1+xi))
	L[2] = 0.25 * (1 + xi) * (g1*(1-eta) + g4*(1+eta))
	L[3] = 0.25 * (1 + eta) * (g2*(1+xi) + g1*(1-xi))
	return
}

// productShapes returns the corner functions L_i*L_i+1 scaled to unity at
// their node, with their Cartesian gradients
func (p agqParams) productShapes(xi, eta float64) (P, dx, dy [NumNodes]float64) {
	var (
		L    = p.areaCoordinates(xi, eta)
		oo2A = 0.5 / p.area
	)
	for i := 0; i < NumNodes; i++ {
		j := (i + 1) % NumNodes
		s := 1 / (p.g[(i+1)%NumNodes] * p.g[(i+3)%NumNodes])
		P[i] = s * L[i] * L[j]
		dx[i] = s * oo2A * (p.b[i]*L[j] + p.b[j]*L[i])
		dy[i] = s * oo2A * (p.c[i]*L[j] + p.c[j]*L[i])
	}
	return
}

// bubbles returns L1*L3 and L2*L4 with their gradients as {d/dx, d/dy}
func (p agqParams) bubbles(xi, eta float64) (phi [2]float64, grad [2][2]float64) {
	var (
		L    = p.areaCoordinates(xi, eta)
		oo2A = 0.5 / p.area
	)
	phi[0] = L[0] * L[2]
	phi[1] = L[1] * L[3]
	grad[0] = [2]float64{oo2A * (p.b[0]*L[2] + p.b[2]*L[0]), oo2A * (p.c[0]*L[2] + p.c[2]*L[0])}
	grad[1] = [2]float64{oo2A * (p.b[1]*L[3] + p.b[3]*L[1]), oo2A * (p.c[1]*L[3] + p.c[3]*L[1])}
	return
}

// externalGradients returns the Cartesian gradients of the nodal membrane
// shape functions at (xi, eta)
func (p agqParams) externalGradients(xi, eta float64) (dNdx, dNdy [NumNodes]float64) {
	var (
		_, dx, dy = p.productShapes(xi, eta)
		_, grad   = p.bubbles(xi, eta)
	)
	for i := 0; i < NumNodes; i++ {
		dNdx[i] = dx[i] + p.q1[i]*grad[0][0] + p.q2[i]*grad[1][0] + p.hx[i]
		dNdy[i] = dy[i] + p.q1[i]*grad[0][1] + p.q2[i]*grad[1][1] + p.hy[i]
	}
	return
}

// internalB returns the 8x4 strain block of the internal modes L1*L3 and
// L2*L4, applied to u (columns 0,1) and v (columns 2,3)
func (p agqParams) internalB(xi, eta float64) (BQ utils.Matrix) {
	var (
		_, grad      = p.bubbles(xi, eta)
		phi1x, phi1y = grad[0][0], grad[0][1]
		phi2x, phi2y = grad[1][0], grad[1][1]
	)
	BQ = utils.NewMatrix(NumStrains, NumInternal)
	BQ.Set(0, 0, phi1x)
	BQ.Set(0, 1, phi2x)
	BQ.Set(1, 2, phi1y)
	BQ.Set(1, 3, phi2y)
	BQ.Set(2, 0, phi1y)
	BQ.Set(2, 1, phi2y)
	BQ.Set(2, 2, phi1x)
	BQ.Set(2, 3, phi2x)
	return
}

// meanInternalB is the area weighted mean of the internal strain block over
// the quadrature, subtracted from every point so constant stress states do
// no work on the internal modes
func (p agqParams) meanInternalB(lcs *LocalCoordinateSystem) (mean utils.Matrix, err error) {
	var (
		totalArea float64
	)
	mean = utils.NewMatrix(NumStrains, NumInternal)
	for igp := 0; igp < NumGauss; igp++ {
		sf := EvaluateJacobian(gaussXI[igp], gaussETA[igp], lcs)
		if !(sf.DetJ > 0) {
			err = geometryError(igp, sf.DetJ)
			return
		}
		dA := gaussW[igp] * sf.DetJ
		mean.AddScaled(dA, p.internalB(gaussXI[igp], gaussETA[igp]))
		totalArea += dA
	}
	mean.Scale(1 / totalArea)
	return
}
