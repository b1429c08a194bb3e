package shell

import (
	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// LinearTransformation keeps the reference frame for the whole analysis
type LinearTransformation struct {
	nodalFrame
}

func NewLinearTransformation() *LinearTransformation { return &LinearTransformation{} }

func (lt *LinearTransformation) IsLinear() bool { return true }

func (lt *LinearTransformation) SetDomain(nodes [NumNodes]domain.Node) error {
	return lt.setDomain(nodes)
}

func (lt *LinearTransformation) Update(UG utils.Vector) error { return nil }

func (lt *LinearTransformation) LocalCoordinateSystem(UG utils.Vector) *LocalCoordinateSystem {
	return lt.reference
}

func (lt *LinearTransformation) LocalDisplacements(lcs *LocalCoordinateSystem, UG utils.Vector) (UL utils.Vector) {
	var (
		data = UG.Data()
	)
	UL = utils.NewVector(NumDOF)
	for blk := 0; blk < 2*NumNodes; blk++ {
		v := lcs.ToLocal(r3.Vec{X: data[3*blk], Y: data[3*blk+1], Z: data[3*blk+2]})
		UL.Set(3*blk, v.X).Set(3*blk+1, v.Y).Set(3*blk+2, v.Z)
	}
	return
}

func (lt *LinearTransformation) TransformToGlobal(lcs *LocalCoordinateSystem, UG, UL utils.Vector,
	KL utils.Matrix, RL utils.Vector, wantTangent bool) (KG utils.Matrix, RG utils.Vector) {
	if wantTangent {
		KG = toGlobalMatrix(lcs.Orientation(), KL)
	}
	if RL.V != nil {
		RG = toGlobalVector(lcs.Orientation(), RL)
	}
	return
}

func (lt *LinearTransformation) CommitState()        {}
func (lt *LinearTransformation) RevertToLastCommit() {}
func (lt *LinearTransformation) RevertToStart()      {}

func (lt *LinearTransformation) SendSelf(ch domain.Channel) error { return nil }
func (lt *LinearTransformation) RecvSelf(ch domain.Channel) error { return nil }
