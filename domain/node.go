package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const NodeDOF = 6

// Node is the view of a mesh node that elements consume
type Node interface {
	Tag() int
	Crds() r3.Vec
	TrialDisp() []float64
	TrialVel() []float64
	TrialAccel() []float64
	// RV maps a ground acceleration onto the node's degrees of freedom
	RV(accel []float64) []float64
}

type BasicNode struct {
	tag                   int
	crds                  r3.Vec
	disp, vel, accel      []float64
	commitDisp, commitVel []float64
	commitAccel           []float64
	influence             *mat.Dense
}

func NewBasicNode(tag int, x, y, z float64) (n *BasicNode) {
	n = &BasicNode{
		tag:         tag,
		crds:        r3.Vec{X: x, Y: y, Z: z},
		disp:        make([]float64, NodeDOF),
		vel:         make([]float64, NodeDOF),
		accel:       make([]float64, NodeDOF),
		commitDisp:  make([]float64, NodeDOF),
		commitVel:   make([]float64, NodeDOF),
		commitAccel: make([]float64, NodeDOF),
	}
	return
}

func (n *BasicNode) Tag() int              { return n.tag }
func (n *BasicNode) Crds() r3.Vec          { return n.crds }
func (n *BasicNode) TrialDisp() []float64  { return n.disp }
func (n *BasicNode) TrialVel() []float64   { return n.vel }
func (n *BasicNode) TrialAccel() []float64 { return n.accel }

func (n *BasicNode) SetTrialDisp(u []float64) error { return setDOF(n.disp, u) }
func (n *BasicNode) SetTrialVel(v []float64) error  { return setDOF(n.vel, v) }
func (n *BasicNode) SetTrialAccel(a []float64) error {
	return setDOF(n.accel, a)
}

// IncrTrialDisp adds du to the trial displacement
func (n *BasicNode) IncrTrialDisp(du []float64) error {
	if len(du) != NodeDOF {
		return fmt.Errorf("node %d: increment has %d components, expected %d", n.tag, len(du), NodeDOF)
	}
	for i := range n.disp {
		n.disp[i] += du[i]
	}
	return nil
}

func (n *BasicNode) CommitState() {
	copy(n.commitDisp, n.disp)
	copy(n.commitVel, n.vel)
	copy(n.commitAccel, n.accel)
}

func (n *BasicNode) RevertToLastCommit() {
	copy(n.disp, n.commitDisp)
	copy(n.vel, n.commitVel)
	copy(n.accel, n.commitAccel)
}

// SetInfluence sets the NodeDOF x nAccel matrix used by RV, identity when unset
func (n *BasicNode) SetInfluence(R *mat.Dense) error {
	if nr, _ := R.Dims(); nr != NodeDOF {
		return fmt.Errorf("node %d: influence matrix has %d rows, expected %d", n.tag, nr, NodeDOF)
	}
	n.influence = R
	return nil
}

func (n *BasicNode) RV(accel []float64) (rv []float64) {
	rv = make([]float64, NodeDOF)
	if n.influence == nil {
		copy(rv, accel)
		return
	}
	_, nc := n.influence.Dims()
	if len(accel) < nc {
		return
	}
	mat.NewVecDense(NodeDOF, rv).MulVec(n.influence, mat.NewVecDense(nc, accel[:nc]))
	return
}

func setDOF(dst, src []float64) error {
	if len(src) != NodeDOF {
		return fmt.Errorf("expected %d nodal components, got %d", NodeDOF, len(src))
	}
	copy(dst, src)
	return nil
}
