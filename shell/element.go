/*
Package shell implements a four node flat shell element.

The membrane uses bilinear displacements enriched with two incompatible
quadratic modes in area coordinates, corrected to pass the patch test and
condensed out at element level. Transverse shear follows the MITC4 assumed
strain field. The drilling rotation is tied to the in-plane rotation by a
penalty that mixes reduced and full integration. Kinematics are either
linear or corotational.

Nodal degrees of freedom are ordered ux uy uz rx ry rz.
*/
package shell

import (
	"fmt"
	"math"

	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/section"
	"github.com/notargets/goshell/utils"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

type Rayleigh struct {
	AlphaM, BetaK, BetaK0, BetaKc float64
}

func (r Rayleigh) IsZero() bool { return r == Rayleigh{} }

type ShellQ4 struct {
	tag            int
	nodeTags       [NumNodes]int
	nodes          [NumNodes]domain.Node
	sections       [NumGauss]section.Section
	transformation CoordinateTransformation
	load           utils.Vector
	drillStiffness float64
	angle          float64
	localX         *r3.Vec
	lumpedMass     bool
	rayleigh       Rayleigh
	kCommit        utils.Matrix
	state          evaluationState
	initialized    bool
	restored       bool
}

type Option func(e *ShellQ4)

func WithCorotational() Option {
	return func(e *ShellQ4) { e.transformation = NewCoordinateTransformation(true) }
}

func WithLumpedMass() Option {
	return func(e *ShellQ4) { e.lumpedMass = true }
}

// WithLocalX orients the section axes along the projection of x on the
// element plane
func WithLocalX(x r3.Vec) Option {
	return func(e *ShellQ4) { e.localX = &x }
}

func WithRayleigh(r Rayleigh) Option {
	return func(e *ShellQ4) { e.rayleigh = r }
}

func NewShellQ4(tag int, nodeTags [NumNodes]int, proto section.Section, opts ...Option) (e *ShellQ4, err error) {
	if proto == nil {
		err = fmt.Errorf("element %d: nil section", tag)
		return
	}
	e = &ShellQ4{
		tag:            tag,
		nodeTags:       nodeTags,
		transformation: NewCoordinateTransformation(false),
		load:           utils.NewVector(NumDOF),
		kCommit:        utils.NewMatrix(NumDOF, NumDOF),
		state:          newEvaluationState(),
	}
	for i := range e.sections {
		e.sections[i] = proto.Copy()
	}
	for _, opt := range opts {
		opt(e)
	}
	return
}

func (e *ShellQ4) Tag() int { return e.tag }

func (e *ShellQ4) NodeTags() []int {
	tags := make([]int, NumNodes)
	copy(tags, e.nodeTags[:])
	return tags
}

func (e *ShellQ4) IsCorotational() bool { return !e.transformation.IsLinear() }

func (e *ShellQ4) Section(igp int) section.Section { return e.sections[igp] }

func (e *ShellQ4) DrillingStiffness() float64 { return e.drillStiffness }

// Angle is the rotation of the section axes from the element e1 axis
func (e *ShellQ4) Angle() float64 { return e.angle }

func (e *ShellQ4) Transformation() CoordinateTransformation { return e.transformation }

// SetDomain resolves the nodes and fixes the drilling penalty and the
// section orientation. The internal state is zeroed unless it was just
// received from a channel.
func (e *ShellQ4) SetDomain(d domain.Domain) (err error) {
	var (
		nodes [NumNodes]domain.Node
	)
	for i, tag := range e.nodeTags {
		if nodes[i], err = d.Node(tag); err != nil {
			return fmt.Errorf("element %d: %w", e.tag, err)
		}
	}
	if err = e.transformation.SetDomain(nodes); err != nil {
		return fmt.Errorf("element %d: %w", e.tag, err)
	}
	e.nodes = nodes
	lcs0 := e.transformation.ReferenceCoordinateSystem()

	e.drillStiffness = 0
	for _, sec := range e.sections {
		e.drillStiffness += sec.InitialTangent().At(2, 2)
	}
	e.drillStiffness /= float64(NumGauss)

	e.angle = 0
	if e.localX != nil {
		e3 := lcs0.E3()
		vp := r3.Sub(*e.localX, r3.Scale(r3.Dot(*e.localX, e3), e3))
		if r3.Norm(vp) > 1.e-10*r3.Norm(*e.localX) {
			e.angle = math.Atan2(r3.Dot(vp, lcs0.E2()), r3.Dot(vp, lcs0.E1()))
		}
	}
	if !e.restored {
		e.state = newEvaluationState()
	}
	e.restored = false
	e.initialized = true
	return
}

func (e *ShellQ4) Update() (err error) {
	_, err = e.calculateAll(optUpdate)
	return
}

func (e *ShellQ4) TangentStiff() (K *mat.Dense, err error) {
	var ctx *evalContext
	if ctx, err = e.calculateAll(optLHS); err != nil {
		return
	}
	return ctx.K.M, nil
}

func (e *ShellQ4) InitialStiff() (K *mat.Dense, err error) {
	var ctx *evalContext
	if ctx, err = e.calculateAll(optLHS | optLHSIsInitial); err != nil {
		return
	}
	return ctx.K.M, nil
}

func (e *ShellQ4) ResistingForce() (R *mat.VecDense, err error) {
	var ctx *evalContext
	if ctx, err = e.calculateAll(optRHS); err != nil {
		return
	}
	return ctx.R.V, nil
}

func (e *ShellQ4) CommitState() (err error) {
	for _, sec := range e.sections {
		err = multierr.Append(err, sec.CommitState())
	}
	e.transformation.CommitState()
	e.state.commit()
	if e.rayleigh.BetaKc != 0 {
		ctx, errK := e.calculateAll(optLHS)
		if errK != nil {
			return multierr.Append(err, errK)
		}
		e.kCommit = ctx.K
	}
	return
}

func (e *ShellQ4) RevertToLastCommit() (err error) {
	for _, sec := range e.sections {
		err = multierr.Append(err, sec.RevertToLastCommit())
	}
	e.transformation.RevertToLastCommit()
	e.state.revertToLastCommit()
	return
}

func (e *ShellQ4) RevertToStart() (err error) {
	for _, sec := range e.sections {
		err = multierr.Append(err, sec.RevertToStart())
	}
	e.transformation.RevertToStart()
	e.state = newEvaluationState()
	e.kCommit = utils.NewMatrix(NumDOF, NumDOF)
	return
}
