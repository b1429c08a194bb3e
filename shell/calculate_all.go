package shell

import (
	"fmt"

	"github.com/notargets/goshell/utils"
	"go.uber.org/multierr"
)

func geometryError(igp int, detJ float64) error {
	return fmt.Errorf("%w: gauss point %d has det J = %g", ErrGeometry, igp, detJ)
}

// calculateAll runs the Gauss loop for the requested operators. The global
// tangent and residual are returned in the context; only optUpdate writes
// the element state and the section trial deformations.
func (e *ShellQ4) calculateAll(options calculationOptions) (ctx *evalContext, err error) {
	if !e.initialized {
		err = fmt.Errorf("%w: element %d", ErrNotInitialized, e.tag)
		return
	}
	var (
		initial = options.has(optLHSIsInitial)
		lcs0    = e.transformation.ReferenceCoordinateSystem()
		lcs     = lcs0
	)
	if !e.transformation.IsLinear() && options.has(optLHS) && !initial {
		options |= optRHS
	}
	ctx = newEvalContext(options)

	if !initial {
		ctx.UG = e.transformation.GlobalDisplacements()
		if options.has(optUpdate) {
			if err = e.transformation.Update(ctx.UG); err != nil {
				return
			}
		}
		lcs = e.transformation.LocalCoordinateSystem(ctx.UG)
		ctx.UL = e.transformation.LocalDisplacements(lcs, ctx.UG)
	}

	// geometric data of the reference planform
	var (
		mitc   = newMITC4Params(lcs0)
		agq    agqParams
		bqMean utils.Matrix
	)
	if agq, err = newAGQParams(lcs0); err == nil {
		bqMean, err = agq.meanInternalB(lcs0)
		bqMean.SetReadOnly("BQmean")
	}
	if err != nil {
		err = fmt.Errorf("element %d: %w", e.tag, err)
		return
	}
	centerDrill := drillingRow(EvaluateJacobian(0, 0, lcs0))

	if options.has(optUpdate) {
		e.updateInternalDOFs(ctx.UL)
	}
	var (
		Q            = utils.NewVector(NumInternal)
		T            = sectionRotation(e.angle)
		materialErrs error
	)
	if !initial {
		Q = e.state.Q
	}

	for igp := 0; igp < NumGauss; igp++ {
		xi, eta := gaussXI[igp], gaussETA[igp]
		sf := EvaluateJacobian(xi, eta, lcs0)
		if !(sf.DetJ > 0) {
			err = fmt.Errorf("element %d: %w", e.tag, geometryError(igp, sf.DetJ))
			return
		}
		mx, my := agq.externalGradients(xi, eta)
		var (
			dA  = gaussW[igp] * sf.DetJ
			B   = strainDisplacement(sf, mx, my, mitc.shearB(xi, eta, sf.DetJ))
			B1  = bendingSignInverted(B)
			BQ  = agq.internalB(xi, eta).Subtract(bqMean)
			Bd  = blendedDrillingRow(centerDrill, sf)
			sec = e.sections[igp]
		)
		if options.has(optUpdate) {
			strain := B.MulVec(ctx.UL).AddVec(BQ.MulVec(Q))
			if errS := sec.SetTrialSectionDeformation(T.MulVec(strain).Data()); errS != nil {
				materialErrs = multierr.Append(materialErrs, fmt.Errorf("gauss point %d: %w", igp, errS))
			}
		}
		ctx.drill[igp] = Bd.Dot(ctx.UL)

		// section response rotated back to the element frame
		var Dsec utils.Matrix
		if initial {
			Dsec = utils.Matrix{M: sec.InitialTangent()}
		} else {
			Dsec = utils.Matrix{M: sec.SectionTangent()}
		}
		D := T.TransposeMul(Dsec).Mul(T)

		if !initial {
			S := T.TransposeMulVec(utils.NewVector(NumStrains, append([]float64(nil), sec.StressResultant()...)))
			ctx.QResidual.AddScaled(dA, BQ.TransposeMulVec(S))
			if options.has(optRHS) {
				ctx.R.AddScaled(dA, B1.TransposeMulVec(S))
				ctx.R.AddScaled(dA*e.drillStiffness*ctx.drill[igp], Bd)
			}
		}
		if options.has(optLHS) {
			ctx.K.AddTripleProduct(dA, B1, D, B)
			for i, bi := range Bd.Data() {
				if bi == 0 {
					continue
				}
				for j, bj := range Bd.Data() {
					ctx.K.AddAt(i, j, dA*e.drillStiffness*bi*bj)
				}
			}
		}
		ctx.KQQ.AddTripleProduct(dA, BQ, D, BQ)
		ctx.KQU.AddTripleProduct(dA, BQ, D, B)
		ctx.KUQ.AddTripleProduct(dA, B1, D, BQ)
	}

	// static condensation of the internal dofs
	KQQInv, errInv := ctx.KQQ.Inverse()
	if errInv != nil {
		err = fmt.Errorf("%w: element %d: %v", ErrCondensationSingular, e.tag, errInv)
		return
	}
	L := ctx.KUQ.Mul(KQQInv)
	if options.has(optLHS) {
		ctx.K.Subtract(L.Mul(ctx.KQU))
	}
	if options.has(optRHS) {
		ctx.R.Sub(L.MulVec(ctx.QResidual))
	}
	if options.has(optUpdate) {
		e.state.KQQInv = KQQInv
		e.state.KQU = ctx.KQU.Copy()
		e.state.QResidual = ctx.QResidual.Copy()
		e.state.drill = ctx.drill
	}

	// back to the global frame
	if initial {
		ctx.K = toGlobalMatrix(lcs0.Orientation(), ctx.K)
	} else if options.has(optLHS) || options.has(optRHS) {
		var RL utils.Vector
		if options.has(optRHS) {
			RL = ctx.R
		}
		K, R := e.transformation.TransformToGlobal(lcs, ctx.UG, ctx.UL, ctx.K, RL, options.has(optLHS))
		if options.has(optLHS) {
			ctx.K = K
		}
		if options.has(optRHS) {
			ctx.R = R.Sub(e.load)
		}
	}
	if materialErrs != nil {
		err = fmt.Errorf("%w: element %d: %w", ErrMaterialFailure, e.tag, materialErrs)
	}
	return
}

// updateInternalDOFs corrects the internal dofs with the condensation data
// stored by the previous update, so the correction lags one update behind
// the displacement field it is applied to
func (e *ShellQ4) updateInternalDOFs(UL utils.Vector) {
	var (
		s  = &e.state
		dU = UL.Copy().Sub(s.U)
	)
	rhs := s.QResidual.Copy().AddVec(s.KQU.MulVec(dU))
	s.Q.Sub(s.KQQInv.MulVec(rhs))
	s.U = UL.Copy()
}
