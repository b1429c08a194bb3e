package shell

import (
	"fmt"

	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// CoordinateTransformation moves element quantities between the global
// frame and the element local frame
type CoordinateTransformation interface {
	IsLinear() bool
	SetDomain(nodes [NumNodes]domain.Node) error
	GlobalDisplacements() utils.Vector
	Update(UG utils.Vector) error
	ReferenceCoordinateSystem() *LocalCoordinateSystem
	LocalCoordinateSystem(UG utils.Vector) *LocalCoordinateSystem
	LocalDisplacements(lcs *LocalCoordinateSystem, UG utils.Vector) utils.Vector
	// TransformToGlobal returns the global tangent (when wantTangent) and
	// residual from their local counterparts
	TransformToGlobal(lcs *LocalCoordinateSystem, UG, UL utils.Vector, KL utils.Matrix, RL utils.Vector,
		wantTangent bool) (KG utils.Matrix, RG utils.Vector)
	CommitState()
	RevertToLastCommit()
	RevertToStart()
	SendSelf(ch domain.Channel) error
	RecvSelf(ch domain.Channel) error
}

// NewCoordinateTransformation selects the kinematics by the persisted flag
func NewCoordinateTransformation(corotational bool) CoordinateTransformation {
	if corotational {
		return NewCorotationalTransformation()
	}
	return NewLinearTransformation()
}

// nodalFrame gathers the node references and the reference frame shared by
// both kinematics
type nodalFrame struct {
	nodes     [NumNodes]domain.Node
	reference *LocalCoordinateSystem
}

func (nf *nodalFrame) setDomain(nodes [NumNodes]domain.Node) (err error) {
	var (
		p [NumNodes]r3.Vec
	)
	for i, n := range nodes {
		if n == nil {
			err = fmt.Errorf("%w: node %d is nil", ErrNotInitialized, i)
			return
		}
		p[i] = n.Crds()
	}
	nf.nodes = nodes
	nf.reference = NewLocalCoordinateSystem(p)
	return
}

func (nf *nodalFrame) GlobalDisplacements() (UG utils.Vector) {
	UG = utils.NewVector(NumDOF)
	if nf.nodes[0] == nil {
		return
	}
	for i, n := range nf.nodes {
		copy(UG.Data()[NodeDOF*i:NodeDOF*(i+1)], n.TrialDisp())
	}
	return
}

func (nf *nodalFrame) ReferenceCoordinateSystem() *LocalCoordinateSystem { return nf.reference }

// rotationBlocks returns the 24x24 block diagonal matrix of the frame rotation
func rotationBlocks(R *r3.Mat) (T utils.Matrix) {
	T = utils.NewMatrix(NumDOF, NumDOF)
	for blk := 0; blk < 2*NumNodes; blk++ {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				T.Set(3*blk+i, 3*blk+j, R.At(i, j))
			}
		}
	}
	return
}

// toGlobalMatrix applies Tᵀ KL T for the block rotation T of the frame R
func toGlobalMatrix(R *r3.Mat, KL utils.Matrix) utils.Matrix {
	T := rotationBlocks(R)
	return T.TransposeMul(KL).Mul(T)
}

func toGlobalVector(R *r3.Mat, RL utils.Vector) (RG utils.Vector) {
	RG = utils.NewVector(NumDOF)
	for blk := 0; blk < 2*NumNodes; blk++ {
		v := R.MulVecTrans(r3.Vec{X: RL.AtVec(3 * blk), Y: RL.AtVec(3*blk + 1), Z: RL.AtVec(3*blk + 2)})
		RG.Set(3*blk, v.X).Set(3*blk+1, v.Y).Set(3*blk+2, v.Z)
	}
	return
}
