package assembly

import (
	"errors"
	"fmt"
	"sort"

	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrSingular     = errors.New("singular stiffness")
	ErrNotConverged = errors.New("equilibrium iterations did not converge")
	ErrDiverged     = errors.New("non finite values in the solution")
)

// Element is the part of an element the model drives
type Element interface {
	Tag() int
	NodeTags() []int
	SetDomain(d domain.Domain) error
	Update() error
	TangentStiff() (*mat.Dense, error)
	ResistingForce() (*mat.VecDense, error)
	CommitState() error
}

type Model struct {
	Mesh           *domain.Mesh
	Elements       []Element
	ParallelDegree int // < 1 uses all cores
	fixed          map[int]float64
	loads          map[int]float64
}

func NewModel(mesh *domain.Mesh, ParallelDegree int) (m *Model) {
	m = &Model{
		Mesh:           mesh,
		ParallelDegree: ParallelDegree,
		fixed:          make(map[int]float64),
		loads:          make(map[int]float64),
	}
	return
}

// AddElement connects the element to the mesh nodes
func (m *Model) AddElement(e Element) (err error) {
	if err = e.SetDomain(m.Mesh); err != nil {
		return
	}
	m.Elements = append(m.Elements, e)
	return
}

func (m *Model) NumEquations() int { return m.Mesh.NumNodes() * domain.NodeDOF }

// Fix prescribes the total value of one nodal dof
func (m *Model) Fix(tag, dof int, value float64) (err error) {
	var eq int
	if eq, err = m.equation(tag, dof); err != nil {
		return
	}
	m.fixed[eq] = value
	return
}

// FixNode prescribes all dofs of a node
func (m *Model) FixNode(tag int, values [domain.NodeDOF]float64) (err error) {
	for dof, v := range values {
		if err = m.Fix(tag, dof, v); err != nil {
			return
		}
	}
	return
}

// AddNodalLoad accumulates a reference load on one nodal dof
func (m *Model) AddNodalLoad(tag, dof int, value float64) (err error) {
	var eq int
	if eq, err = m.equation(tag, dof); err != nil {
		return
	}
	m.loads[eq] += value
	return
}

func (m *Model) IsFixed(eq int) (fixed bool) {
	_, fixed = m.fixed[eq]
	return
}

func (m *Model) equation(tag, dof int) (eq int, err error) {
	if dof < 0 || dof >= domain.NodeDOF {
		err = fmt.Errorf("node %d: dof %d out of range", tag, dof)
		return
	}
	return m.Mesh.EquationNumber(tag, dof)
}

// ElementIndex maps the element dofs onto global equations
func (m *Model) ElementIndex(e Element) (I utils.Index, err error) {
	tags := e.NodeTags()
	I = utils.NewIndex(len(tags) * domain.NodeDOF)
	for a, tag := range tags {
		for dof := 0; dof < domain.NodeDOF; dof++ {
			if I[a*domain.NodeDOF+dof], err = m.equation(tag, dof); err != nil {
				return
			}
		}
	}
	return
}

// UpdateElements runs the element state updates in parallel, one goroutine
// per partition of the element list
func (m *Model) UpdateElements() (err error) {
	if len(m.Elements) == 0 {
		return
	}
	pm := utils.NewPartitionMap(m.ParallelDegree, len(m.Elements))
	return pm.ForEachBucket(func(bn, kMin, kMax int) (err error) {
		for k := kMin; k < kMax; k++ {
			if err = m.Elements[k].Update(); err != nil {
				return
			}
		}
		return
	})
}

// Assemble evaluates all elements in parallel, then scatters the element
// tangents and resisting forces serially into the global system
func (m *Model) Assemble() (K utils.CSR, R []float64, err error) {
	var (
		NE   = len(m.Elements)
		neq  = m.NumEquations()
		Kel  = make([]utils.Matrix, NE)
		Rel  = make([]*mat.VecDense, NE)
		Iel  = make([]utils.Index, NE)
		Kdok = utils.NewDOK(neq, neq)
	)
	R = make([]float64, neq)
	if NE != 0 {
		pm := utils.NewPartitionMap(m.ParallelDegree, NE)
		err = pm.ForEachBucket(func(bn, kMin, kMax int) (err error) {
			for k := kMin; k < kMax; k++ {
				e := m.Elements[k]
				if Iel[k], err = m.ElementIndex(e); err != nil {
					return
				}
				var Ke *mat.Dense
				if Ke, err = e.TangentStiff(); err != nil {
					return
				}
				Kel[k] = utils.Matrix{M: Ke}
				if Rel[k], err = e.ResistingForce(); err != nil {
					return
				}
			}
			return
		})
		if err != nil {
			return
		}
	}
	for k := 0; k < NE; k++ {
		if err = Kdok.Scatter(Iel[k], Kel[k]); err != nil {
			return
		}
		for i, gi := range Iel[k] {
			R[gi] += Rel[k].AtVec(i)
		}
	}
	K = Kdok.ToCSR()
	return
}

// FreeEquations lists the unconstrained equations in ascending order
func (m *Model) FreeEquations() (free utils.Index) {
	for eq := 0; eq < m.NumEquations(); eq++ {
		if !m.IsFixed(eq) {
			free = append(free, eq)
		}
	}
	return
}

func (m *Model) fixedEquations() (fixed []int) {
	for eq := range m.fixed {
		fixed = append(fixed, eq)
	}
	sort.Ints(fixed)
	return
}

// CommitState commits the nodes and every element
func (m *Model) CommitState() (err error) {
	m.Mesh.CommitState()
	for _, e := range m.Elements {
		if err = e.CommitState(); err != nil {
			return fmt.Errorf("element %d: %w", e.Tag(), err)
		}
	}
	return
}
