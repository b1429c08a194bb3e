package shell

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/notargets/goshell/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAreaCoordinates(tst *testing.T) {

	chk.PrintTitle("AreaCoordinates")

	var (
		lcs    = NewLocalCoordinateSystem(distortedQuad)
		agq, _ = newAGQParams(lcs)
	)
	chk.Float64(tst, "area", 1e-13, agq.area, distortedQuadArea)
	chk.Float64(tst, "g1 + g3", 1e-14, agq.g[0]+agq.g[2], 1)
	chk.Float64(tst, "g2 + g4", 1e-14, agq.g[1]+agq.g[3], 1)

	// L_i is the area of the triangle (P, j, k) over the quad area
	xi, eta := 0.3, -0.2
	var (
		L      = agq.areaCoordinates(xi, eta)
		sf     = EvaluateJacobian(xi, eta, lcs)
		px, py float64
	)
	for i := 0; i < NumNodes; i++ {
		px += sf.N[i] * lcs.X(i)
		py += sf.N[i] * lcs.Y(i)
	}
	var sum float64
	for i := 0; i < NumNodes; i++ {
		j, k := (i+1)%NumNodes, (i+2)%NumNodes
		tri := 0.5 * ((lcs.X(j)-px)*(lcs.Y(k)-py) - (lcs.X(k)-px)*(lcs.Y(j)-py))
		chk.Float64(tst, io.Sf("L%d", i+1), 1e-14, L[i], tri/agq.area)
		sum += L[i]
	}
	chk.Float64(tst, "sum L", 1e-14, sum, 1)

	// corner 1 lies on sides 2-3 and 3-4
	L = agq.areaCoordinates(-1, -1)
	chk.Float64(tst, "L3 @ node 1", 1e-15, L[2], 0)
	chk.Float64(tst, "L4 @ node 1", 1e-15, L[3], 0)
}

func TestMeanInternalB(t *testing.T) {
	lcs := NewLocalCoordinateSystem(distortedQuad)
	agq, err := newAGQParams(lcs)
	require.NoError(t, err)
	mean, err := agq.meanInternalB(lcs)
	require.NoError(t, err)

	// the corrected modes integrate to zero, so constant stress does no work on them
	integral := utils.NewMatrix(NumStrains, NumInternal)
	for igp := 0; igp < NumGauss; igp++ {
		sf := EvaluateJacobian(gaussXI[igp], gaussETA[igp], lcs)
		BQ := agq.internalB(gaussXI[igp], gaussETA[igp]).Subtract(mean)
		integral.AddScaled(gaussW[igp]*sf.DetJ, BQ)
	}
	assert.InDelta(t, 0, integral.MaxAbs(), 1e-14)

	// only membrane rows are enriched
	BQ := agq.internalB(0.1, 0.4)
	for i := 3; i < NumStrains; i++ {
		for j := 0; j < NumInternal; j++ {
			assert.Equal(t, 0., BQ.At(i, j))
		}
	}
	assert.NotEqual(t, 0., mean.MaxAbs())

	_, err = newAGQParams(NewLocalCoordinateSystem(concaveQuad))
	assert.ErrorIs(t, err, ErrGeometry)
}

func TestExternalGradients(tst *testing.T) {

	chk.PrintTitle("ExternalGradients")

	lcs := NewLocalCoordinateSystem(distortedQuad)
	agq, err := newAGQParams(lcs)
	if err != nil {
		tst.Fatalf("%v", err)
	}

	// gradients of 1, x and y are reproduced at every point
	for _, pt := range [][2]float64{{0.3, -0.2}, {-0.7, 0.9}, {1, 1}, {-1, 0.1}} {
		dx, dy := agq.externalGradients(pt[0], pt[1])
		var sx, sy, xx, xy, yx, yy float64
		for i := 0; i < NumNodes; i++ {
			sx += dx[i]
			sy += dy[i]
			xx += dx[i] * lcs.X(i)
			xy += dy[i] * lcs.X(i)
			yx += dx[i] * lcs.Y(i)
			yy += dy[i] * lcs.Y(i)
		}
		tag := io.Sf("(%g,%g)", pt[0], pt[1])
		chk.Float64(tst, "d1/dx "+tag, 1e-13, sx, 0)
		chk.Float64(tst, "d1/dy "+tag, 1e-13, sy, 0)
		chk.Float64(tst, "dx/dx "+tag, 1e-13, xx, 1)
		chk.Float64(tst, "dx/dy "+tag, 1e-13, xy, 0)
		chk.Float64(tst, "dy/dx "+tag, 1e-13, yx, 0)
		chk.Float64(tst, "dy/dy "+tag, 1e-13, yy, 1)
	}

	// the quadrature mean is the edge compatible one
	var mx, my [NumNodes]float64
	for igp := 0; igp < NumGauss; igp++ {
		sf := EvaluateJacobian(gaussXI[igp], gaussETA[igp], lcs)
		dx, dy := agq.externalGradients(gaussXI[igp], gaussETA[igp])
		for i := 0; i < NumNodes; i++ {
			mx[i] += gaussW[igp] * sf.DetJ * dx[i] / distortedQuadArea
			my[i] += gaussW[igp] * sf.DetJ * dy[i] / distortedQuadArea
		}
	}
	for i := 0; i < NumNodes; i++ {
		next, prev := (i+1)%NumNodes, (i+3)%NumNodes
		chk.Float64(tst, io.Sf("mean dN%d/dx", i+1), 1e-13, mx[i], 0.5*(lcs.Y(next)-lcs.Y(prev))/distortedQuadArea)
		chk.Float64(tst, io.Sf("mean dN%d/dy", i+1), 1e-13, my[i], 0.5*(lcs.X(prev)-lcs.X(next))/distortedQuadArea)
	}
}

func TestExternalGradientsParallelogram(t *testing.T) {
	// area coordinates are linear in xi and eta on a parallelogram, so the
	// membrane gradients coincide with the bilinear ones
	for _, quad := range [][NumNodes]r3.Vec{unitSquare, parallelogram} {
		lcs := NewLocalCoordinateSystem(quad)
		agq, err := newAGQParams(lcs)
		require.NoError(t, err)
		for _, pt := range [][2]float64{{0.3, -0.2}, {-0.6, 0.8}} {
			var (
				sf     = EvaluateJacobian(pt[0], pt[1], lcs)
				dx, dy = agq.externalGradients(pt[0], pt[1])
			)
			assert.InDeltaSlice(t, sf.DNdX[:], dx[:], 1e-13)
			assert.InDeltaSlice(t, sf.DNdY[:], dy[:], 1e-13)
		}
	}
}
