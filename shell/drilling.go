package shell

import (
	"github.com/notargets/goshell/utils"
)

// drillingRow links the drilling rotation to the skew part of the in-plane
// displacement gradient: ed = (v,x - u,y)/2 - rz
func drillingRow(sf ShapeFunctions) (Bd utils.Vector) {
	Bd = utils.NewVector(NumDOF)
	for i := 0; i < NumNodes; i++ {
		Bd.Set(NodeDOF*i, -0.5*sf.DNdY[i])
		Bd.Set(NodeDOF*i+1, 0.5*sf.DNdX[i])
		Bd.Set(NodeDOF*i+5, -sf.N[i])
	}
	return
}

// blendedDrillingRow adds a small fraction of the fully integrated row at a
// Gauss point to the reduced (center) row
func blendedDrillingRow(center utils.Vector, sf ShapeFunctions) (Bd utils.Vector) {
	return center.Copy().AddScaled(drillingFullIntegrationFactor, drillingRow(sf))
}
