package shell

import (
	"fmt"

	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/mat"
)

// Mass returns the translational mass, lumped or consistent. Rotational
// inertia is neglected.
func (e *ShellQ4) Mass() (M *mat.Dense, err error) {
	var Mm utils.Matrix
	if Mm, err = e.massMatrix(); err != nil {
		return
	}
	return Mm.M, nil
}

func (e *ShellQ4) massMatrix() (M utils.Matrix, err error) {
	if !e.initialized {
		err = fmt.Errorf("%w: element %d", ErrNotInitialized, e.tag)
		return
	}
	lcs0 := e.transformation.ReferenceCoordinateSystem()
	M = utils.NewMatrix(NumDOF, NumDOF)
	for igp := 0; igp < NumGauss; igp++ {
		sf := EvaluateJacobian(gaussXI[igp], gaussETA[igp], lcs0)
		if !(sf.DetJ > 0) {
			err = fmt.Errorf("element %d: %w", e.tag, geometryError(igp, sf.DetJ))
			return
		}
		rhoA := e.sections[igp].ArealRho() * gaussW[igp] * sf.DetJ
		if rhoA == 0 {
			continue
		}
		for a := 0; a < NumNodes; a++ {
			if e.lumpedMass {
				for i := 0; i < 3; i++ {
					M.AddAt(NodeDOF*a+i, NodeDOF*a+i, sf.N[a]*rhoA)
				}
				continue
			}
			for b := 0; b < NumNodes; b++ {
				for i := 0; i < 3; i++ {
					M.AddAt(NodeDOF*a+i, NodeDOF*b+i, sf.N[a]*sf.N[b]*rhoA)
				}
			}
		}
	}
	return
}

// Damp returns the Rayleigh damping matrix
func (e *ShellQ4) Damp() (C *mat.Dense, err error) {
	var Cm utils.Matrix
	if Cm, err = e.dampingMatrix(); err != nil {
		return
	}
	return Cm.M, nil
}

func (e *ShellQ4) dampingMatrix() (C utils.Matrix, err error) {
	var (
		r   = e.rayleigh
		ctx *evalContext
	)
	C = utils.NewMatrix(NumDOF, NumDOF)
	if r.AlphaM != 0 {
		var M utils.Matrix
		if M, err = e.massMatrix(); err != nil {
			return
		}
		C.AddScaled(r.AlphaM, M)
	}
	if r.BetaK != 0 {
		if ctx, err = e.calculateAll(optLHS); err != nil {
			return
		}
		C.AddScaled(r.BetaK, ctx.K)
	}
	if r.BetaK0 != 0 {
		if ctx, err = e.calculateAll(optLHS | optLHSIsInitial); err != nil {
			return
		}
		C.AddScaled(r.BetaK0, ctx.K)
	}
	if r.BetaKc != 0 {
		C.AddScaled(r.BetaKc, e.kCommit)
	}
	return
}

// ResistingForceIncInertia adds the inertial and Rayleigh damping forces of
// the nodal trial accelerations and velocities to the resisting force
func (e *ShellQ4) ResistingForceIncInertia() (R *mat.VecDense, err error) {
	var (
		ctx *evalContext
		M   utils.Matrix
	)
	if ctx, err = e.calculateAll(optRHS); err != nil {
		return
	}
	if M, err = e.massMatrix(); err != nil {
		return
	}
	accel, vel := utils.NewVector(NumDOF), utils.NewVector(NumDOF)
	for a := 0; a < NumNodes; a++ {
		n := e.nodes[a]
		copy(accel.Data()[NodeDOF*a:NodeDOF*(a+1)], n.TrialAccel())
		copy(vel.Data()[NodeDOF*a:NodeDOF*(a+1)], n.TrialVel())
	}
	R = ctx.R.AddVec(M.MulVec(accel)).V
	if !e.rayleigh.IsZero() {
		var C utils.Matrix
		if C, err = e.dampingMatrix(); err != nil {
			return nil, err
		}
		R.AddVec(R, C.MulVec(vel).V)
	}
	return
}
