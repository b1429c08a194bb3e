package shell

// ShapeFunctions holds the bilinear shape functions of the quad at one
// natural point, with the Jacobian of the map to the local plane
type ShapeFunctions struct {
	N             [NumNodes]float64
	DNdXi, DNdEta [NumNodes]float64
	J, InvJ       [2][2]float64
	DetJ          float64
	DNdX, DNdY    [NumNodes]float64
}

// EvaluateJacobian computes the shape functions and the Jacobian at (xi, eta).
// A non-positive DetJ marks a degenerate or inverted element; the inverse and
// the Cartesian derivatives are left zero in that case.
func EvaluateJacobian(xi, eta float64, lcs *LocalCoordinateSystem) (sf ShapeFunctions) {
	sf.N = [NumNodes]float64{
		0.25 * (1 - xi) * (1 - eta),
		0.25 * (1 + xi) * (1 - eta),
		0.25 * (1 + xi) * (1 + eta),
		0.25 * (1 - xi) * (1 + eta),
	}
	sf.DNdXi = [NumNodes]float64{
		-0.25 * (1 - eta),
		0.25 * (1 - eta),
		0.25 * (1 + eta),
		-0.25 * (1 + eta),
	}
	sf.DNdEta = [NumNodes]float64{
		-0.25 * (1 - xi),
		-0.25 * (1 + xi),
		0.25 * (1 + xi),
		0.25 * (1 - xi),
	}
	for i := 0; i < NumNodes; i++ {
		x, y := lcs.X(i), lcs.Y(i)
		sf.J[0][0] += sf.DNdXi[i] * x
		sf.J[0][1] += sf.DNdXi[i] * y
		sf.J[1][0] += sf.DNdEta[i] * x
		sf.J[1][1] += sf.DNdEta[i] * y
	}
	sf.DetJ = sf.J[0][0]*sf.J[1][1] - sf.J[0][1]*sf.J[1][0]
	if !(sf.DetJ > 0) {
		return
	}
	oodet := 1 / sf.DetJ
	sf.InvJ = [2][2]float64{
		{sf.J[1][1] * oodet, -sf.J[0][1] * oodet},
		{-sf.J[1][0] * oodet, sf.J[0][0] * oodet},
	}
	for i := 0; i < NumNodes; i++ {
		sf.DNdX[i] = sf.InvJ[0][0]*sf.DNdXi[i] + sf.InvJ[0][1]*sf.DNdEta[i]
		sf.DNdY[i] = sf.InvJ[1][0]*sf.DNdXi[i] + sf.InvJ[1][1]*sf.DNdEta[i]
	}
	return
}
