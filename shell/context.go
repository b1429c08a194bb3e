package shell

import (
	"github.com/notargets/goshell/utils"
)

// evaluationState is the mutable part of the element that survives between
// calls. Only Update and the commit/revert lifecycle write it.
type evaluationState struct {
	Q, QCommit         utils.Vector // internal membrane dofs
	U, UCommit         utils.Vector // local displacements at the last update
	drill, drillCommit [NumGauss]float64
	// condensation data stored by the last update, consumed by the next one
	KQQInv    utils.Matrix
	KQU       utils.Matrix
	QResidual utils.Vector
}

func newEvaluationState() evaluationState {
	return evaluationState{
		Q:         utils.NewVector(NumInternal),
		QCommit:   utils.NewVector(NumInternal),
		U:         utils.NewVector(NumDOF),
		UCommit:   utils.NewVector(NumDOF),
		KQQInv:    utils.NewMatrix(NumInternal, NumInternal),
		KQU:       utils.NewMatrix(NumInternal, NumDOF),
		QResidual: utils.NewVector(NumInternal),
	}
}

func (s *evaluationState) commit() {
	s.QCommit = s.Q.Copy()
	s.UCommit = s.U.Copy()
	s.drillCommit = s.drill
}

func (s *evaluationState) revertToLastCommit() {
	s.Q = s.QCommit.Copy()
	s.U = s.UCommit.Copy()
	s.drill = s.drillCommit
}

// evalContext is the scratch of one calculateAll call, never shared
type evalContext struct {
	options calculationOptions
	UG, UL  utils.Vector
	K       utils.Matrix
	R       utils.Vector
	// condensation accumulators, rebuilt from zero on every call
	KQQ, KQU, KUQ utils.Matrix
	QResidual     utils.Vector
	drill         [NumGauss]float64
}

func newEvalContext(options calculationOptions) *evalContext {
	return &evalContext{
		options:   options,
		UG:        utils.NewVector(NumDOF),
		UL:        utils.NewVector(NumDOF),
		K:         utils.NewMatrix(NumDOF, NumDOF),
		R:         utils.NewVector(NumDOF),
		KQQ:       utils.NewMatrix(NumInternal, NumInternal),
		KQU:       utils.NewMatrix(NumInternal, NumDOF),
		KUQ:       utils.NewMatrix(NumDOF, NumInternal),
		QResidual: utils.NewVector(NumInternal),
	}
}
