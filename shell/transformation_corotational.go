package shell

import (
	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// CorotationalTransformation follows the element frame through large rigid
// rotations, leaving small deformational displacements for the local
// formulation. Nodal orientations are unit quaternions updated
// multiplicatively from the rotation increment since the last commit.
type CorotationalTransformation struct {
	nodalFrame
	qTrial, qCommit     [NumNodes]quat.Number
	rotTrial, rotCommit [NumNodes]r3.Vec
}

func NewCorotationalTransformation() (ct *CorotationalTransformation) {
	ct = &CorotationalTransformation{}
	ct.RevertToStart()
	return
}

func (ct *CorotationalTransformation) IsLinear() bool { return false }

func (ct *CorotationalTransformation) SetDomain(nodes [NumNodes]domain.Node) error {
	return ct.setDomain(nodes)
}

func (ct *CorotationalTransformation) Update(UG utils.Vector) error {
	data := UG.Data()
	for a := 0; a < NumNodes; a++ {
		theta := r3.Vec{X: data[NodeDOF*a+3], Y: data[NodeDOF*a+4], Z: data[NodeDOF*a+5]}
		dq := rotationQuaternion(r3.Sub(theta, ct.rotCommit[a]))
		ct.qTrial[a] = quat.Mul(dq, ct.qCommit[a])
		ct.rotTrial[a] = theta
	}
	return nil
}

func (ct *CorotationalTransformation) currentPositions(UG utils.Vector) (p [NumNodes]r3.Vec) {
	data := UG.Data()
	for a, n := range ct.nodes {
		u := r3.Vec{X: data[NodeDOF*a], Y: data[NodeDOF*a+1], Z: data[NodeDOF*a+2]}
		p[a] = r3.Add(n.Crds(), u)
	}
	return
}

func (ct *CorotationalTransformation) LocalCoordinateSystem(UG utils.Vector) *LocalCoordinateSystem {
	return NewLocalCoordinateSystem(ct.currentPositions(UG))
}

// LocalDisplacements returns the deformational displacements
// ud = R(x - c) - R0(X - C) and rotations log(R Ra R0ᵀ)
func (ct *CorotationalTransformation) LocalDisplacements(lcs *LocalCoordinateSystem, UG utils.Vector) (UL utils.Vector) {
	var (
		R  = lcs.Orientation()
		R0 = ct.reference.Orientation()
	)
	UL = utils.NewVector(NumDOF)
	for a := 0; a < NumNodes; a++ {
		ud := r3.Sub(lcs.LocalNode(a), ct.reference.LocalNode(a))
		RRa := r3.NewMat(nil)
		RRa.Mul(R, quaternionMatrix(ct.qTrial[a]))
		Rd := r3.NewMat(nil)
		Rd.Mul(RRa, R0.T())
		td := rotationVector(Rd)
		UL.Set(NodeDOF*a, ud.X).Set(NodeDOF*a+1, ud.Y).Set(NodeDOF*a+2, ud.Z)
		UL.Set(NodeDOF*a+3, td.X).Set(NodeDOF*a+4, td.Y).Set(NodeDOF*a+5, td.Z)
	}
	return
}

// spinFitter returns G, the 3x24 map from local nodal displacement
// variations to the spin of the element frame
func spinFitter(lcs *LocalCoordinateSystem) (G utils.Matrix) {
	var (
		c1  = [NumNodes]float64{-0.5, 0.5, 0.5, -0.5}
		c2  = [NumNodes]float64{-0.5, -0.5, 0.5, 0.5}
		e1v r3.Vec
		e2v r3.Vec
	)
	for k := 0; k < NumNodes; k++ {
		e1v = r3.Add(e1v, r3.Scale(c1[k], lcs.LocalNode(k)))
		e2v = r3.Add(e2v, r3.Scale(c2[k], lcs.LocalNode(k)))
	}
	a, b1, b2 := e1v.X, e2v.X, e2v.Y
	G = utils.NewMatrix(3, NumDOF)
	for k := 0; k < NumNodes; k++ {
		G.Set(0, NodeDOF*k+2, (a*c2[k]-b1*c1[k])/(a*b2))
		G.Set(1, NodeDOF*k+2, -c1[k]/a)
		G.Set(2, NodeDOF*k+1, c1[k]/a)
	}
	return
}

// projector removes the rigid body part of local displacement variations
func projector(lcs *LocalCoordinateSystem, G utils.Matrix) (P utils.Matrix) {
	P = utils.NewMatrix(NumDOF, NumDOF)
	for a := 0; a < NumNodes; a++ {
		S := spin(lcs.LocalNode(a))
		for b := 0; b < NumNodes; b++ {
			delta := 0.
			if a == b {
				delta = 1
			}
			for i := 0; i < 3; i++ {
				P.AddAt(NodeDOF*a+i, NodeDOF*b+i, delta-0.25)
				P.AddAt(NodeDOF*a+3+i, NodeDOF*b+3+i, delta)
				for j := 0; j < 3; j++ {
					// translation columns of node b
					var sg float64
					for k := 0; k < 3; k++ {
						sg += S.At(i, k) * G.At(k, NodeDOF*b+j)
					}
					P.AddAt(NodeDOF*a+i, NodeDOF*b+j, sg)
					P.AddAt(NodeDOF*a+3+i, NodeDOF*b+j, -G.At(i, NodeDOF*b+j))
				}
			}
		}
	}
	return
}

func (ct *CorotationalTransformation) TransformToGlobal(lcs *LocalCoordinateSystem, UG, UL utils.Vector,
	KL utils.Matrix, RL utils.Vector, wantTangent bool) (KG utils.Matrix, RG utils.Vector) {
	var (
		G  = spinFitter(lcs)
		P  = projector(lcs, G)
		H  = utils.NewMatrix(NumDOF, NumDOF)
		ul = UL.Data()
	)
	for a := 0; a < NumNodes; a++ {
		Ha := rotationJacobian(r3.Vec{X: ul[NodeDOF*a+3], Y: ul[NodeDOF*a+4], Z: ul[NodeDOF*a+5]})
		for i := 0; i < 3; i++ {
			H.Set(NodeDOF*a+i, NodeDOF*a+i, 1)
			for j := 0; j < 3; j++ {
				H.Set(NodeDOF*a+3+i, NodeDOF*a+3+j, Ha.At(i, j))
			}
		}
	}
	fP := P.TransposeMulVec(H.TransposeMulVec(RL))
	if wantTangent {
		var (
			K   = P.TransposeMul(H.TransposeMul(KL).Mul(H)).Mul(P)
			Fnm = utils.NewMatrix(NumDOF, 3)
			Fn  = utils.NewMatrix(NumDOF, 3)
			Mm  = utils.NewMatrix(NumDOF, NumDOF)
			fl  = RL.Data()
			fp  = fP.Data()
		)
		for a := 0; a < NumNodes; a++ {
			n := spin(r3.Vec{X: fp[NodeDOF*a], Y: fp[NodeDOF*a+1], Z: fp[NodeDOF*a+2]})
			m := spin(r3.Vec{X: fp[NodeDOF*a+3], Y: fp[NodeDOF*a+4], Z: fp[NodeDOF*a+5]})
			ml := spin(r3.Vec{X: fl[NodeDOF*a+3], Y: fl[NodeDOF*a+4], Z: fl[NodeDOF*a+5]})
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					Fnm.Set(NodeDOF*a+i, j, n.At(i, j))
					Fnm.Set(NodeDOF*a+3+i, j, m.At(i, j))
					Fn.Set(NodeDOF*a+i, j, n.At(i, j))
					Mm.Set(NodeDOF*a+3+i, NodeDOF*a+3+j, -0.5*ml.At(i, j))
				}
			}
		}
		K.AddScaled(-1, Fnm.Mul(G))
		K.AddScaled(-1, G.TransposeMul(Fn.Transpose()).Mul(P))
		K.Add(P.TransposeMul(Mm.Mul(H).Mul(P)))
		KG = toGlobalMatrix(lcs.Orientation(), K)
	}
	RG = toGlobalVector(lcs.Orientation(), fP)
	return
}

func (ct *CorotationalTransformation) CommitState() {
	ct.qCommit = ct.qTrial
	ct.rotCommit = ct.rotTrial
}

func (ct *CorotationalTransformation) RevertToLastCommit() {
	ct.qTrial = ct.qCommit
	ct.rotTrial = ct.rotCommit
}

func (ct *CorotationalTransformation) RevertToStart() {
	for a := 0; a < NumNodes; a++ {
		ct.qTrial[a] = quat.Number{Real: 1}
		ct.qCommit[a] = quat.Number{Real: 1}
		ct.rotTrial[a] = r3.Vec{}
		ct.rotCommit[a] = r3.Vec{}
	}
}

const tagCorotationalState = 100

// SendSelf writes one 4x14 frame, one row per node:
// trial quaternion, committed quaternion, trial rotation, committed rotation
func (ct *CorotationalTransformation) SendSelf(ch domain.Channel) error {
	state := mat.NewDense(NumNodes, 14, nil)
	for a := 0; a < NumNodes; a++ {
		state.SetRow(a, []float64{
			ct.qTrial[a].Real, ct.qTrial[a].Imag, ct.qTrial[a].Jmag, ct.qTrial[a].Kmag,
			ct.qCommit[a].Real, ct.qCommit[a].Imag, ct.qCommit[a].Jmag, ct.qCommit[a].Kmag,
			ct.rotTrial[a].X, ct.rotTrial[a].Y, ct.rotTrial[a].Z,
			ct.rotCommit[a].X, ct.rotCommit[a].Y, ct.rotCommit[a].Z,
		})
	}
	return ch.SendMatrix(tagCorotationalState, state)
}

func (ct *CorotationalTransformation) RecvSelf(ch domain.Channel) (err error) {
	state := mat.NewDense(NumNodes, 14, nil)
	if err = ch.RecvMatrix(tagCorotationalState, state); err != nil {
		return
	}
	for a := 0; a < NumNodes; a++ {
		r := state.RawRowView(a)
		ct.qTrial[a] = quat.Number{Real: r[0], Imag: r[1], Jmag: r[2], Kmag: r[3]}
		ct.qCommit[a] = quat.Number{Real: r[4], Imag: r[5], Jmag: r[6], Kmag: r[7]}
		ct.rotTrial[a] = r3.Vec{X: r[8], Y: r[9], Z: r[10]}
		ct.rotCommit[a] = r3.Vec{X: r[11], Y: r[12], Z: r[13]}
	}
	return
}
