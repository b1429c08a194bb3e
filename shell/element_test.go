package shell

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func membraneStiffness() (mem float64) { return testE * testH / (1 - testNu*testNu) }

func TestShellQ4MembranePatch(t *testing.T) {
	var (
		a, b, c, d = 1.e-3, 2.e-4, -3.e-4, 5.e-4
		e, mesh    = newTestElement(t, distortedQuad, newTestSection(t))
	)
	setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
		return [NodeDOF]float64{a*p.X + b*p.Y, c*p.X + d*p.Y, 0, 0, 0, 0.5 * (c - b)}
	})
	// the second update applies the lagged internal dof correction
	require.NoError(t, e.Update())
	require.NoError(t, e.Update())

	var (
		mem    = membraneStiffness()
		exx    = []float64{a, d, b + c}
		sxx    = mem * (exx[0] + testNu*exx[1])
		syy    = mem * (exx[1] + testNu*exx[0])
		sxy    = mem * 0.5 * (1 - testNu) * exx[2]
		strain = []float64{a, d, b + c, 0, 0, 0, 0, 0}
		stress = []float64{sxx, syy, sxy, 0, 0, 0, 0, 0}
	)
	strains, err := e.Response("strains")
	require.NoError(t, err)
	stresses, err := e.Response("stresses")
	require.NoError(t, err)
	for igp := 0; igp < NumGauss; igp++ {
		assert.InDeltaSlice(t, strain, strains[igp*NumStrains:(igp+1)*NumStrains], 1e-15)
		assert.InDeltaSlice(t, stress, stresses[igp*NumStrains:(igp+1)*NumStrains], 1e-12)
	}
	Q, err := e.Response("internalDOFs")
	require.NoError(t, err)
	assert.InDelta(t, 0, maxAbs(Q), 1e-15)
	drill, err := e.Response("drillingStrains")
	require.NoError(t, err)
	assert.InDelta(t, 0, maxAbs(drill), 1e-15)

	// nodal forces of a constant stress field: f_a = (n_prev l_prev + n_next l_next) . sigma / 2
	R, err := e.ResistingForce()
	require.NoError(t, err)
	for i := 0; i < NumNodes; i++ {
		var (
			prev, next = distortedQuad[(i+3)%NumNodes], distortedQuad[(i+1)%NumNodes]
			nx, ny     = 0.5 * (next.Y - prev.Y), 0.5 * (prev.X - next.X)
		)
		assert.InDelta(t, sxx*nx+sxy*ny, R.AtVec(NodeDOF*i), 1e-12)
		assert.InDelta(t, sxy*nx+syy*ny, R.AtVec(NodeDOF*i+1), 1e-12)
		for dof := 2; dof < NodeDOF; dof++ {
			assert.InDelta(t, 0, R.AtVec(NodeDOF*i+dof), 1e-12)
		}
	}
	assert.False(t, utils.IsNan(R.RawVector().Data))
}

func TestShellQ4BendingPatch(t *testing.T) {
	var (
		k       = 1.e-3
		e, mesh = newTestElement(t, distortedQuad, newTestSection(t))
	)
	// ry = k x and w = -k x^2/2 give k11 = k without transverse shear
	setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
		return [NodeDOF]float64{0, 0, -0.5 * k * p.X * p.X, 0, k * p.X, 0}
	})
	require.NoError(t, e.Update())
	strains, err := e.Response("strains")
	require.NoError(t, err)
	for igp := 0; igp < NumGauss; igp++ {
		assert.InDeltaSlice(t, []float64{0, 0, 0, k, 0, 0, 0, 0},
			strains[igp*NumStrains:(igp+1)*NumStrains], 1e-15)
	}

	// rx = -k y and w = -k y^2/2 give k22 = k
	setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
		return [NodeDOF]float64{0, 0, -0.5 * k * p.Y * p.Y, -k * p.Y, 0, 0}
	})
	require.NoError(t, e.Update())
	strains, err = e.Response("strains")
	require.NoError(t, err)
	for igp := 0; igp < NumGauss; igp++ {
		assert.InDeltaSlice(t, []float64{0, 0, 0, 0, k, 0, 0, 0},
			strains[igp*NumStrains:(igp+1)*NumStrains], 1e-15)
	}
}

func TestShellQ4RigidBodyLinear(t *testing.T) {
	var (
		w       = r3.Vec{X: 1.e-6, Y: -2.e-6, Z: 3.e-6}
		tr      = r3.Vec{X: 1.e-5, Y: 2.e-5, Z: -1.e-5}
		e, mesh = newTestElement(t, distortedQuad, newTestSection(t))
	)
	setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
		u := r3.Add(tr, r3.Cross(w, p))
		return [NodeDOF]float64{u.X, u.Y, u.Z, w.X, w.Y, w.Z}
	})
	require.NoError(t, e.Update())
	R, err := e.ResistingForce()
	require.NoError(t, err)
	assert.InDelta(t, 0, maxAbs(R.RawVector().Data), 1e-15)
}

func TestShellQ4RigidBodyCorotational(t *testing.T) {
	var (
		axis  = r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3})
		angle = math.Pi / 3
		rot   = r3.NewRotation(angle, axis)
		theta = r3.Scale(angle, axis)
		tr    = r3.Vec{X: 0.3, Y: -0.2, Z: 0.5}
	)
	warped := distortedQuad
	for i, z := range []float64{0.1, -0.05, 0.08, -0.02} {
		warped[i].Z = z
	}
	for _, crds := range [][NumNodes]r3.Vec{distortedQuad, warped} {
		e, mesh := newTestElement(t, crds, newTestSection(t), WithCorotational())
		setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
			u := r3.Add(tr, r3.Sub(rot.Rotate(p), p))
			return [NodeDOF]float64{u.X, u.Y, u.Z, theta.X, theta.Y, theta.Z}
		})
		require.NoError(t, e.Update())
		R, err := e.ResistingForce()
		require.NoError(t, err)
		assert.InDelta(t, 0, maxAbs(R.RawVector().Data), 1e-9)
		strains, err := e.Response("strains")
		require.NoError(t, err)
		assert.InDelta(t, 0, maxAbs(strains), 1e-14)
	}
}

func TestShellQ4CorotationalMatchesLinearAtRest(t *testing.T) {
	lin, _ := newTestElement(t, distortedQuad, newTestSection(t))
	cor, _ := newTestElement(t, distortedQuad, newTestSection(t), WithCorotational())
	assert.True(t, cor.IsCorotational())
	assert.False(t, lin.IsCorotational())
	Kl, err := lin.TangentStiff()
	require.NoError(t, err)
	Kc, err := cor.TangentStiff()
	require.NoError(t, err)
	assert.InDelta(t, 0, maxAbsDiff(Kl.RawMatrix().Data, Kc.RawMatrix().Data), 1e-9)
	// initial stiffness ignores the kinematics
	K0, err := cor.InitialStiff()
	require.NoError(t, err)
	assert.InDelta(t, 0, maxAbsDiff(Kl.RawMatrix().Data, K0.RawMatrix().Data), 1e-9)
}

func setElementDisplacements(t *testing.T, mesh *domain.Mesh, U []float64) {
	for i, tag := range mesh.Tags() {
		n, err := mesh.BasicNode(tag)
		require.NoError(t, err)
		require.NoError(t, n.SetTrialDisp(U[NodeDOF*i:NodeDOF*(i+1)]))
	}
}

func TestShellQ4CorotationalTangent(t *testing.T) {
	var (
		axis    = r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3})
		angle   = 0.8
		rot     = r3.NewRotation(angle, axis)
		theta   = r3.Scale(angle, axis)
		base    = make([]float64, NumDOF)
		e, mesh = newTestElement(t, distortedQuad, newTestSection(t), WithCorotational())
	)
	// large rigid rotation plus a small deformation
	for i, p := range distortedQuad {
		u := r3.Sub(rot.Rotate(p), p)
		copy(base[NodeDOF*i:], []float64{u.X, u.Y, u.Z, theta.X, theta.Y, theta.Z})
	}
	for i := range base {
		base[i] += 1.e-2 * math.Sin(float64(3*i+1))
	}
	setElementDisplacements(t, mesh, base)
	require.NoError(t, e.Update())
	require.NoError(t, e.CommitState())
	K, err := e.TangentStiff()
	require.NoError(t, err)

	// central differences of the resisting force about the committed state
	var (
		h    = 1.e-7
		U    = make([]float64, NumDOF)
		Kfd  = mat.NewDense(NumDOF, NumDOF, nil)
		kMax = maxAbs(K.RawMatrix().Data)
	)
	for j := 0; j < NumDOF; j++ {
		var Rp, Rm *mat.VecDense
		copy(U, base)
		U[j] += h
		setElementDisplacements(t, mesh, U)
		require.NoError(t, e.Update())
		Rp, err = e.ResistingForce()
		require.NoError(t, err)
		U[j] -= 2 * h
		setElementDisplacements(t, mesh, U)
		require.NoError(t, e.Update())
		Rm, err = e.ResistingForce()
		require.NoError(t, err)
		for i := 0; i < NumDOF; i++ {
			Kfd.Set(i, j, (Rp.AtVec(i)-Rm.AtVec(i))/(2*h))
		}
	}
	assert.Less(t, maxAbsDiff(K.RawMatrix().Data, Kfd.RawMatrix().Data), 1.e-4*kMax)
}

func TestShellQ4SymmetryAndIdempotence(t *testing.T) {
	e, mesh := newTestElement(t, distortedQuad, newTestSection(t))
	setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
		return [NodeDOF]float64{1.e-3 * p.X * p.Y, -2.e-4 * p.X, 1.e-3 * p.Y * p.Y, 1.e-4, 0, 2.e-4 * p.X}
	})
	require.NoError(t, e.Update())
	K1, err := e.TangentStiff()
	require.NoError(t, err)
	K2, err := e.TangentStiff()
	require.NoError(t, err)
	R1, err := e.ResistingForce()
	require.NoError(t, err)
	R2, err := e.ResistingForce()
	require.NoError(t, err)
	assert.Equal(t, K1.RawMatrix().Data, K2.RawMatrix().Data)
	assert.Equal(t, R1.RawVector().Data, R2.RawVector().Data)

	Km := utils.Matrix{M: K1}
	assert.Less(t, Km.Asymmetry(), 1.e-12*Km.MaxAbs())
	// the drilling penalty is the initial membrane shear modulus
	assert.InDelta(t, testE*testH/(2*(1+testNu)), e.DrillingStiffness(), 1e-10)
}

func TestShellQ4ZeroEnergyModes(t *testing.T) {
	// six rigid body modes and no spurious ones, flat and warped
	warpedSquare := [NumNodes]r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0, Z: 0.05}, {X: 1, Y: 1, Z: -0.05}, {X: 0, Y: 1, Z: 0.05},
	}
	for _, crds := range [][NumNodes]r3.Vec{distortedQuad, warpedSquare} {
		for _, opts := range [][]Option{nil, {WithCorotational()}} {
			e, _ := newTestElement(t, crds, newTestSection(t), opts...)
			require.NoError(t, e.Update())
			K, err := e.TangentStiff()
			require.NoError(t, err)
			assert.Equal(t, 6, utils.Matrix{M: K}.CountZeroModes(1.e-10))
		}
	}
}

func TestShellQ4Mass(t *testing.T) {
	var (
		rhoA = testRho * testH * distortedQuadArea
	)
	for _, lumped := range []bool{true, false} {
		var opts []Option
		if lumped {
			opts = append(opts, WithLumpedMass())
		}
		e, _ := newTestElement(t, distortedQuad, newTestSection(t), opts...)
		M, err := e.Mass()
		require.NoError(t, err)
		for dir := 0; dir < 3; dir++ {
			var total, diag float64
			for a := 0; a < NumNodes; a++ {
				diag += M.At(NodeDOF*a+dir, NodeDOF*a+dir)
				for b := 0; b < NumNodes; b++ {
					total += M.At(NodeDOF*a+dir, NodeDOF*b+dir)
				}
			}
			assert.InDelta(t, rhoA, total, 1e-13)
			if lumped {
				assert.InDelta(t, rhoA, diag, 1e-13)
			}
		}
		for a := 0; a < NumNodes; a++ {
			for dof := 3; dof < NodeDOF; dof++ {
				assert.Equal(t, 0., M.At(NodeDOF*a+dof, NodeDOF*a+dof))
			}
		}
	}
}

func TestShellQ4InertiaAndDamping(t *testing.T) {
	var (
		rhoA    = testRho * testH * distortedQuadArea
		e, mesh = newTestElement(t, distortedQuad, newTestSection(t), WithRayleigh(Rayleigh{AlphaM: 0.1}))
	)
	for _, tag := range mesh.Tags() {
		n, _ := mesh.BasicNode(tag)
		require.NoError(t, n.SetTrialAccel([]float64{1, 0, 0, 0, 0, 0}))
		require.NoError(t, n.SetTrialVel([]float64{0, 2, 0, 0, 0, 0}))
	}
	R, err := e.ResistingForceIncInertia()
	require.NoError(t, err)
	var fx, fy float64
	for a := 0; a < NumNodes; a++ {
		fx += R.AtVec(NodeDOF * a)
		fy += R.AtVec(NodeDOF*a + 1)
	}
	assert.InDelta(t, rhoA, fx, 1e-13)
	assert.InDelta(t, 0.1*2*rhoA, fy, 1e-13)

	M, err := e.Mass()
	require.NoError(t, err)
	C, err := e.Damp()
	require.NoError(t, err)
	var Ms mat.Dense
	Ms.Scale(0.1, M)
	assert.InDeltaSlice(t, Ms.RawMatrix().Data, C.RawMatrix().Data, 1e-15)
}

func TestShellQ4Scenario(t *testing.T) {
	// unit square, node 2 pulled along the element x axis, the others held
	e, mesh := newTestElement(t, unitSquare, newTestSection(t))
	n2, _ := mesh.BasicNode(2)
	require.NoError(t, n2.SetTrialDisp([]float64{1, 0, 0, 0, 0, 0}))
	require.NoError(t, e.Update())
	R, err := e.ResistingForce()
	require.NoError(t, err)

	var reaction [3]float64
	var moment float64
	for a, p := range unitSquare {
		f := R.RawVector().Data[NodeDOF*a : NodeDOF*(a+1)]
		if a != 1 {
			for i := 0; i < 3; i++ {
				reaction[i] += f[i]
			}
		}
		moment += p.X*f[1] - p.Y*f[0] + f[5]
	}
	assert.Greater(t, R.AtVec(NodeDOF), 0.)
	assert.InDelta(t, -R.AtVec(NodeDOF), reaction[0], 1e-10)
	assert.InDelta(t, -R.AtVec(NodeDOF+1), reaction[1], 1e-10)
	assert.InDelta(t, 0, reaction[2], 1e-10)
	assert.InDelta(t, 0, moment, 1e-10)

	// pure extension of the right side excites no drilling mode
	setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
		return [NodeDOF]float64{1.e-3 * p.X, 0, 0, 0, 0, 0}
	})
	require.NoError(t, e.Update())
	drill, err := e.Response("drillingStrains")
	require.NoError(t, err)
	assert.InDeltaSlice(t, make([]float64, NumGauss), drill, 1e-17)
}

func TestShellQ4CommitRevert(t *testing.T) {
	e, mesh := newTestElement(t, distortedQuad, newTestSection(t))
	bend := func(scale float64) func(p r3.Vec) [NodeDOF]float64 {
		return func(p r3.Vec) [NodeDOF]float64 {
			return [NodeDOF]float64{scale * 1.e-3 * p.X * p.Y, 0, 0, 0, 0, 0}
		}
	}
	setDisplacements(t, mesh, bend(1))
	require.NoError(t, e.Update())
	require.NoError(t, e.Update())
	require.NoError(t, e.CommitState())
	committed, err := e.Response("internalDOFs")
	require.NoError(t, err)
	assert.Greater(t, maxAbs(committed), 1.e-4)
	committedStrains, _ := e.Response("strains")

	setDisplacements(t, mesh, bend(2))
	require.NoError(t, e.Update())
	require.NoError(t, e.Update())
	trial, _ := e.Response("internalDOFs")
	assert.InDeltaSlice(t, []float64{2 * committed[0], 2 * committed[1], 2 * committed[2], 2 * committed[3]},
		trial, 1e-15)

	require.NoError(t, e.RevertToLastCommit())
	reverted, _ := e.Response("internalDOFs")
	assert.Equal(t, committed, reverted)
	revertedStrains, _ := e.Response("strains")
	assert.Equal(t, committedStrains, revertedStrains)

	require.NoError(t, e.RevertToStart())
	start, _ := e.Response("internalDOFs")
	assert.Equal(t, make([]float64, NumInternal), start)
}

func TestShellQ4SectionAngle(t *testing.T) {
	plain, _ := newTestElement(t, distortedQuad, newTestSection(t))
	rotated, mesh := newTestElement(t, distortedQuad, newTestSection(t), WithLocalX(r3.Vec{X: 1, Y: 1, Z: 0.3}))
	assert.InDelta(t, math.Pi/4, rotated.Angle(), 1e-14)
	assert.Equal(t, 0., plain.Angle())

	// isotropic sections do not see the orientation
	Kp, err := plain.TangentStiff()
	require.NoError(t, err)
	Kr, err := rotated.TangentStiff()
	require.NoError(t, err)
	assert.Less(t, maxAbsDiff(Kp.RawMatrix().Data, Kr.RawMatrix().Data), 1.e-12*maxAbs(Kp.RawMatrix().Data))

	// strains are reported in the section axes
	exx := 1.e-3
	setDisplacements(t, mesh, func(p r3.Vec) [NodeDOF]float64 {
		return [NodeDOF]float64{exx * p.X, 0, 0, 0, 0, 0}
	})
	require.NoError(t, rotated.Update())
	strains, err := rotated.Response("strains")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5 * exx, 0.5 * exx, -exx}, strains[:3], 1e-15)
}

func TestShellQ4Loads(t *testing.T) {
	var (
		rhoA = testRho * testH * distortedQuadArea
		p    = 3.
		e, _ = newTestElement(t, distortedQuad, newTestSection(t))
	)
	sumDOF := func(R *mat.VecDense, dof int) (s float64) {
		for a := 0; a < NumNodes; a++ {
			s += R.AtVec(NodeDOF*a + dof)
		}
		return
	}
	require.NoError(t, e.AddLoad(SurfacePressure{Pressure: p}, 2))
	R, err := e.ResistingForce()
	require.NoError(t, err)
	assert.InDelta(t, -2*p*distortedQuadArea, sumDOF(R, 2), 1e-12)

	e.ZeroLoad()
	require.NoError(t, e.AddLoad(SelfWeight{Accel: r3.Vec{Z: -9.81}}, 1))
	R, err = e.ResistingForce()
	require.NoError(t, err)
	assert.InDelta(t, 9.81*rhoA, sumDOF(R, 2), 1e-12)

	e.ZeroLoad()
	require.NoError(t, e.AddInertiaLoadToUnbalance([]float64{0, 1, 0, 0, 0, 0}))
	R, err = e.ResistingForce()
	require.NoError(t, err)
	assert.InDelta(t, rhoA, sumDOF(R, 1), 1e-13)
	assert.InDelta(t, 0, sumDOF(R, 2), 1e-15)

	assert.ErrorIs(t, e.AddLoad(unsupportedLoad{}, 1), ErrUnknownLoad)
}

type unsupportedLoad struct{}

func (unsupportedLoad) elementLoad() {}

func TestShellQ4Errors(t *testing.T) {
	// not attached to a domain
	e, err := NewShellQ4(7, [NumNodes]int{1, 2, 3, 4}, newTestSection(t))
	require.NoError(t, err)
	_, err = e.TangentStiff()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = NewShellQ4(7, [NumNodes]int{1, 2, 3, 4}, nil)
	assert.Error(t, err)

	// missing node
	mesh := domain.NewMesh()
	require.NoError(t, mesh.AddNode(domain.NewBasicNode(1, 0, 0, 0)))
	assert.ErrorIs(t, e.SetDomain(mesh), domain.ErrNodeNotFound)

	// inverted geometry
	e, _ = newTestElement(t, concaveQuad, newTestSection(t))
	_, err = e.TangentStiff()
	assert.ErrorIs(t, err, ErrGeometry)
	_, err = e.Mass()
	assert.ErrorIs(t, err, ErrGeometry)

	// no membrane stiffness leaves the internal modes unrestrained
	e, _ = newTestElement(t, distortedQuad, &faultySection{ElasticMembranePlate: newTestSection(t), zeroMembrane: true})
	_, err = e.TangentStiff()
	assert.ErrorIs(t, err, ErrCondensationSingular)

	// section failures are collected over the Gauss points
	e, _ = newTestElement(t, distortedQuad, &faultySection{ElasticMembranePlate: newTestSection(t), fail: true})
	err = e.Update()
	assert.ErrorIs(t, err, ErrMaterialFailure)
	assert.True(t, errors.Is(err, errSectionDiverged))
	assert.Contains(t, err.Error(), "gauss point 0")
	assert.Contains(t, err.Error(), "gauss point 3")

	e, _ = newTestElement(t, distortedQuad, newTestSection(t))
	_, err = e.Response("plasticMultiplier")
	assert.ErrorIs(t, err, ErrUnknownResponse)
	force, err := e.Response("globalForce")
	require.NoError(t, err)
	assert.Len(t, force, NumDOF)
	assert.Equal(t, []int{1, 2, 3, 4}, e.NodeTags())
	assert.Equal(t, 1, e.Tag())
}
