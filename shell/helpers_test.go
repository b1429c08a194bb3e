package shell

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/section"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	testE   = 1.e4
	testNu  = 0.3
	testH   = 0.1
	testRho = 2.
)

var (
	// center lines along x and y, so the element frame is the global frame
	distortedQuad = [NumNodes]r3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: -0.2}, {X: 2.4, Y: 1.6}, {X: 0.1, Y: 1.4},
	}
	distortedQuadArea = 3.44
	parallelogram     = [NumNodes]r3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2.6, Y: 1.5}, {X: 0.6, Y: 1.5},
	}
	unitSquare = [NumNodes]r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
	// node 3 folds inward, det J < 0 at the third Gauss point
	concaveQuad = [NumNodes]r3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0.3, Y: 0.3}, {X: 0, Y: 2},
	}
)

func newTestSection(t *testing.T) *section.ElasticMembranePlate {
	sec, err := section.NewElasticMembranePlate(testE, testNu, testH, testRho)
	require.NoError(t, err)
	return sec
}

// newTestElement builds element 1 on nodes 1..4 at crds
func newTestElement(t *testing.T, crds [NumNodes]r3.Vec, proto section.Section,
	opts ...Option) (e *ShellQ4, mesh *domain.Mesh) {
	mesh = domain.NewMesh()
	for i, p := range crds {
		require.NoError(t, mesh.AddNode(domain.NewBasicNode(i+1, p.X, p.Y, p.Z)))
	}
	e, err := NewShellQ4(1, [NumNodes]int{1, 2, 3, 4}, proto, opts...)
	require.NoError(t, err)
	require.NoError(t, e.SetDomain(mesh))
	return
}

// setDisplacements imposes the nodal field f evaluated at the node coordinates
func setDisplacements(t *testing.T, mesh *domain.Mesh, f func(p r3.Vec) [NodeDOF]float64) {
	for _, tag := range mesh.Tags() {
		n, err := mesh.BasicNode(tag)
		require.NoError(t, err)
		u := f(n.Crds())
		require.NoError(t, n.SetTrialDisp(u[:]))
	}
}

func elementDisplacements(mesh *domain.Mesh) (U []float64) {
	for _, tag := range mesh.Tags() {
		n, _ := mesh.Node(tag)
		U = append(U, n.TrialDisp()...)
	}
	return
}

func maxAbs(data []float64) (max float64) {
	for _, val := range data {
		max = math.Max(max, math.Abs(val))
	}
	return
}

func maxAbsDiff(a, b []float64) (max float64) {
	for i := range a {
		max = math.Max(max, math.Abs(a[i]-b[i]))
	}
	return
}

func nearVec(a, b []float64, tol float64) (l bool) {
	for i, val := range a {
		if !near(b[i], val, tol) {
			fmt.Printf("Diff = %v, Left[%d] = %v, Right[%d] = %v\n", math.Abs(val-b[i]), i, val, i, b[i])
			return false
		}
	}
	return true
}

func near(a, b float64, tolI ...float64) (l bool) {
	var (
		tol float64
	)
	if len(tolI) == 0 {
		tol = 1.e-08
	} else {
		tol = tolI[0]
	}
	bound := math.Max(tol, tol*math.Abs(a))
	if math.Abs(a-b) <= bound {
		l = true
	}
	return
}

var errSectionDiverged = errors.New("return mapping did not converge")

// faultySection wraps the elastic plate to produce material failures or a
// section without membrane stiffness
type faultySection struct {
	*section.ElasticMembranePlate
	fail         bool
	zeroMembrane bool
}

func (s *faultySection) SetTrialSectionDeformation(strain []float64) error {
	if s.fail {
		return errSectionDiverged
	}
	return s.ElasticMembranePlate.SetTrialSectionDeformation(strain)
}

func (s *faultySection) tangent() *mat.Dense {
	D := mat.DenseCopyOf(s.ElasticMembranePlate.SectionTangent())
	if s.zeroMembrane {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				D.Set(i, j, 0)
			}
		}
	}
	return D
}

func (s *faultySection) SectionTangent() *mat.Dense { return s.tangent() }
func (s *faultySection) InitialTangent() *mat.Dense { return s.tangent() }

func (s *faultySection) Copy() section.Section {
	return &faultySection{
		ElasticMembranePlate: s.ElasticMembranePlate.Copy().(*section.ElasticMembranePlate),
		fail:                 s.fail,
		zeroMembrane:         s.zeroMembrane,
	}
}
