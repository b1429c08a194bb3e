package shell

import (
	"fmt"

	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

type ElementLoad interface {
	elementLoad()
}

// SurfacePressure acts along the reference normal e3
type SurfacePressure struct {
	Pressure float64
}

// SelfWeight applies the global body acceleration to the areal mass
type SelfWeight struct {
	Accel r3.Vec
}

func (SurfacePressure) elementLoad() {}
func (SelfWeight) elementLoad()      {}

func (e *ShellQ4) ZeroLoad() { e.load.Zero() }

// AddLoad integrates the distributed load onto the nodal translations and
// accumulates factor times the result into the external load
func (e *ShellQ4) AddLoad(load ElementLoad, factor float64) (err error) {
	if !e.initialized {
		return fmt.Errorf("%w: element %d", ErrNotInitialized, e.tag)
	}
	var (
		lcs0    = e.transformation.ReferenceCoordinateSystem()
		dir     r3.Vec
		density = func(igp int) float64 { return 1 }
	)
	switch l := load.(type) {
	case SurfacePressure:
		dir = r3.Scale(l.Pressure, lcs0.E3())
	case SelfWeight:
		dir = l.Accel
		density = func(igp int) float64 { return e.sections[igp].ArealRho() }
	default:
		return fmt.Errorf("%w: element %d: %T", ErrUnknownLoad, e.tag, load)
	}
	for igp := 0; igp < NumGauss; igp++ {
		sf := EvaluateJacobian(gaussXI[igp], gaussETA[igp], lcs0)
		if !(sf.DetJ > 0) {
			return fmt.Errorf("element %d: %w", e.tag, geometryError(igp, sf.DetJ))
		}
		dA := gaussW[igp] * sf.DetJ
		for a := 0; a < NumNodes; a++ {
			f := r3.Scale(factor*sf.N[a]*dA*density(igp), dir)
			e.load.AddAt(NodeDOF*a, f.X).AddAt(NodeDOF*a+1, f.Y).AddAt(NodeDOF*a+2, f.Z)
		}
	}
	return
}

// AddInertiaLoadToUnbalance subtracts M·RV(accel) from the external load
func (e *ShellQ4) AddInertiaLoadToUnbalance(accel []float64) (err error) {
	var (
		M  utils.Matrix
		ra = utils.NewVector(NumDOF)
	)
	if M, err = e.massMatrix(); err != nil {
		return
	}
	if M.MaxAbs() == 0 {
		return
	}
	for a, n := range e.nodes {
		copy(ra.Data()[NodeDOF*a:NodeDOF*(a+1)], n.RV(accel))
	}
	e.load.Sub(M.MulVec(ra))
	return
}
