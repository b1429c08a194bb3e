package shell

import "math"

const (
	NumNodes    = 4
	NodeDOF     = 6
	NumDOF      = NumNodes * NodeDOF
	NumStrains  = 8
	NumGauss    = 4
	NumInternal = 4
)

// Fraction of the fully integrated drilling row blended into the center row
const drillingFullIntegrationFactor = 1.0e-2

var (
	gaussCoord = 1. / math.Sqrt(3.)
	gaussXI    = [NumGauss]float64{-gaussCoord, gaussCoord, gaussCoord, -gaussCoord}
	gaussETA   = [NumGauss]float64{-gaussCoord, -gaussCoord, gaussCoord, gaussCoord}
	gaussW     = [NumGauss]float64{1, 1, 1, 1}
)

type calculationOptions uint8

const (
	optUpdate calculationOptions = 1 << iota
	optLHS
	optRHS
	optLHSIsInitial
)

func (o calculationOptions) has(flag calculationOptions) bool { return o&flag != 0 }
