package shell

import (
	"fmt"

	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame tags, written and read in this order
const (
	tagElementData = iota + 1
	tagLoad
	tagInternalDOFs
	tagDisplacements
	tagDrillingStrains
	tagCondensationInverse
	tagCondensationCoupling
	tagCondensationResidual
	tagCommittedStiffness
)

const elementDataLength = 18

// SendSelf writes the element configuration, the transformation state, the
// load, the internal dof state and the sections to ch
func (e *ShellQ4) SendSelf(ch domain.Channel) (err error) {
	var (
		data = utils.NewVector(elementDataLength)
		s    = &e.state
	)
	data.Set(0, float64(e.tag))
	for i, tag := range e.nodeTags {
		data.Set(1+i, float64(tag))
	}
	if e.IsCorotational() {
		data.Set(5, 1)
	}
	data.Set(6, e.drillStiffness).Set(7, e.angle)
	if e.lumpedMass {
		data.Set(8, 1)
	}
	data.Set(9, e.rayleigh.AlphaM).Set(10, e.rayleigh.BetaK).Set(11, e.rayleigh.BetaK0).Set(12, e.rayleigh.BetaKc)
	if e.localX != nil {
		data.Set(13, 1).Set(14, e.localX.X).Set(15, e.localX.Y).Set(16, e.localX.Z)
	}
	if e.initialized {
		data.Set(17, 1)
	}

	sends := []func() error{
		func() error { return ch.SendVector(tagElementData, data.V) },
		func() error { return e.transformation.SendSelf(ch) },
		func() error { return ch.SendVector(tagLoad, e.load.V) },
		func() error {
			return ch.SendVector(tagInternalDOFs, concat(s.Q.Data(), s.QCommit.Data()).V)
		},
		func() error {
			return ch.SendVector(tagDisplacements, concat(s.U.Data(), s.UCommit.Data()).V)
		},
		func() error {
			return ch.SendVector(tagDrillingStrains, concat(s.drill[:], s.drillCommit[:]).V)
		},
		func() error { return ch.SendMatrix(tagCondensationInverse, s.KQQInv.M) },
		func() error { return ch.SendMatrix(tagCondensationCoupling, s.KQU.M) },
		func() error { return ch.SendVector(tagCondensationResidual, s.QResidual.V) },
		func() error { return ch.SendMatrix(tagCommittedStiffness, e.kCommit.M) },
	}
	for _, sec := range e.sections {
		sec := sec
		sends = append(sends, func() error { return sec.SendSelf(ch) })
	}
	for _, send := range sends {
		if err = send(); err != nil {
			return fmt.Errorf("%w: element %d: %w", ErrSerialization, e.tag, err)
		}
	}
	return
}

// RecvSelf restores an element written by SendSelf. The transformation is
// rebuilt from the persisted kinematics flag, the sections must already be
// present. SetDomain must follow to resolve the nodes; it keeps the
// restored state.
func (e *ShellQ4) RecvSelf(ch domain.Channel) (err error) {
	var (
		data   = utils.NewVector(elementDataLength)
		qs     = utils.NewVector(2 * NumInternal)
		us     = utils.NewVector(2 * NumDOF)
		drills = utils.NewVector(2 * NumGauss)
		state  = newEvaluationState()
		load   = utils.NewVector(NumDOF)
		kc     = utils.NewMatrix(NumDOF, NumDOF)
	)
	wrap := func(err error) error {
		return fmt.Errorf("%w: element %d: %w", ErrSerialization, e.tag, err)
	}
	if err = ch.RecvVector(tagElementData, data.V); err != nil {
		return wrap(err)
	}
	transformation := NewCoordinateTransformation(data.AtVec(5) == 1)
	recvs := []func() error{
		func() error { return transformation.RecvSelf(ch) },
		func() error { return ch.RecvVector(tagLoad, load.V) },
		func() error { return ch.RecvVector(tagInternalDOFs, qs.V) },
		func() error { return ch.RecvVector(tagDisplacements, us.V) },
		func() error { return ch.RecvVector(tagDrillingStrains, drills.V) },
		func() error { return ch.RecvMatrix(tagCondensationInverse, state.KQQInv.M) },
		func() error { return ch.RecvMatrix(tagCondensationCoupling, state.KQU.M) },
		func() error { return ch.RecvVector(tagCondensationResidual, state.QResidual.V) },
		func() error { return ch.RecvMatrix(tagCommittedStiffness, kc.M) },
	}
	for i, sec := range e.sections {
		sec := sec
		if sec == nil {
			return wrap(fmt.Errorf("no section at gauss point %d", i))
		}
		recvs = append(recvs, func() error { return sec.RecvSelf(ch) })
	}
	for _, recv := range recvs {
		if err = recv(); err != nil {
			return wrap(err)
		}
	}

	e.tag = int(data.AtVec(0))
	for i := range e.nodeTags {
		e.nodeTags[i] = int(data.AtVec(1 + i))
	}
	e.transformation = transformation
	e.drillStiffness, e.angle = data.AtVec(6), data.AtVec(7)
	e.lumpedMass = data.AtVec(8) == 1
	e.rayleigh = Rayleigh{AlphaM: data.AtVec(9), BetaK: data.AtVec(10), BetaK0: data.AtVec(11), BetaKc: data.AtVec(12)}
	e.localX = nil
	if data.AtVec(13) == 1 {
		e.localX = &r3.Vec{X: data.AtVec(14), Y: data.AtVec(15), Z: data.AtVec(16)}
	}
	e.load = load
	e.kCommit = kc
	state.Q = utils.NewVector(NumInternal, append([]float64(nil), qs.Data()[:NumInternal]...))
	state.QCommit = utils.NewVector(NumInternal, append([]float64(nil), qs.Data()[NumInternal:]...))
	state.U = utils.NewVector(NumDOF, append([]float64(nil), us.Data()[:NumDOF]...))
	state.UCommit = utils.NewVector(NumDOF, append([]float64(nil), us.Data()[NumDOF:]...))
	copy(state.drill[:], drills.Data()[:NumGauss])
	copy(state.drillCommit[:], drills.Data()[NumGauss:])
	e.state = state
	e.restored = data.AtVec(17) == 1
	e.initialized = false
	return
}

func concat(parts ...[]float64) utils.Vector {
	var all []float64
	for _, p := range parts {
		all = append(all, p...)
	}
	return utils.NewVector(len(all), all)
}
