package assembly

import (
	"fmt"
	"math"

	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// relative accuracy demanded from the linear solve of each Newton step
const solveTolerance = 1.e-8

type SolverOptions struct {
	MaxIterations int
	Tolerance     float64 // on the free residual norm, relative to the largest of the load and force norms
}

func DefaultSolverOptions() SolverOptions {
	return SolverOptions{MaxIterations: 25, Tolerance: 1.e-10}
}

type Solution struct {
	Iterations int
	Residual   float64
	// Reactions holds R - P on the constrained equations and zero elsewhere
	Reactions []float64
}

// SolveStatic imposes the prescribed dofs, iterates Newton-Raphson on the
// free equations until the residual converges and commits the result
func (m *Model) SolveStatic(opts SolverOptions) (sol Solution, err error) {
	var (
		neq  = m.NumEquations()
		free = m.FreeEquations()
		P    = make([]float64, neq)
		pos  = make([]int, neq)
	)
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 1
	}
	for eq, v := range m.loads {
		P[eq] = v
	}
	for eq := range pos {
		pos[eq] = -1
	}
	for i, eq := range free {
		pos[eq] = i
	}
	if err = m.imposeFixed(); err != nil {
		return
	}
	var (
		K utils.CSR
		R []float64
	)
	for sol.Iterations = 0; sol.Iterations <= opts.MaxIterations; sol.Iterations++ {
		if err = m.UpdateElements(); err != nil {
			return
		}
		if K, R, err = m.Assemble(); err != nil {
			return
		}
		rf := make([]float64, len(free))
		for i, eq := range free {
			rf[i] = P[eq] - R[eq]
		}
		if utils.IsNan(rf) {
			err = fmt.Errorf("%w: residual at iteration %d", ErrDiverged, sol.Iterations)
			return
		}
		sol.Residual = floats.Norm(rf, 2)
		scale := math.Max(1, math.Max(floats.Norm(P, 2), floats.Norm(R, 2)))
		if sol.Residual <= opts.Tolerance*scale {
			break
		}
		if sol.Iterations == opts.MaxIterations {
			err = fmt.Errorf("%w: residual %g after %d iterations", ErrNotConverged, sol.Residual, sol.Iterations)
			return
		}
		var du []float64
		if du, err = solveFree(K, pos, rf); err != nil {
			return
		}
		if err = m.incrementFree(free, du); err != nil {
			return
		}
	}
	sol.Reactions = make([]float64, neq)
	for _, eq := range m.fixedEquations() {
		sol.Reactions[eq] = R[eq] - P[eq]
	}
	err = m.CommitState()
	return
}

// solveFree extracts the free block of K and solves it densely
func solveFree(K utils.CSR, pos []int, rf []float64) (du []float64, err error) {
	nf := len(rf)
	if nf == 0 {
		return
	}
	var (
		Kff = mat.NewDense(nf, nf, nil)
		x   mat.VecDense
	)
	K.DoNonZero(func(i, j int, v float64) {
		if pi, pj := pos[i], pos[j]; pi >= 0 && pj >= 0 {
			Kff.Set(pi, pj, v)
		}
	})
	if err = x.SolveVec(Kff, mat.NewVecDense(nf, rf)); err != nil {
		err = fmt.Errorf("%w: %v", ErrSingular, err)
		return
	}
	du = x.RawVector().Data
	if utils.IsNan(du) {
		err = fmt.Errorf("%w: displacement increment", ErrDiverged)
		return
	}
	// residual of the dense solve, measured on the assembled sparse tangent
	var (
		dU    = make([]float64, len(pos))
		res   = make([]float64, nf)
		kmax  float64
		scale float64
	)
	for eq, p := range pos {
		if p >= 0 {
			dU[eq] = du[p]
		}
	}
	for eq, v := range K.MulVec(dU) {
		if p := pos[eq]; p >= 0 {
			res[p] = v - rf[p]
		}
	}
	for _, v := range Kff.RawMatrix().Data {
		kmax = math.Max(kmax, math.Abs(v))
	}
	scale = math.Max(floats.Norm(rf, 2), kmax*floats.Norm(du, 2))
	if r := floats.Norm(res, 2); r > solveTolerance*scale {
		err = fmt.Errorf("%w: free tangent is ill conditioned, solve residual %g", ErrSingular, r)
	}
	return
}

func (m *Model) nodeOf(eq int) (n *domain.BasicNode, dof int, err error) {
	tag := m.Mesh.Tags()[eq/domain.NodeDOF]
	n, err = m.Mesh.BasicNode(tag)
	dof = eq % domain.NodeDOF
	return
}

func (m *Model) imposeFixed() (err error) {
	for _, eq := range m.fixedEquations() {
		var (
			n   *domain.BasicNode
			dof int
		)
		if n, dof, err = m.nodeOf(eq); err != nil {
			return
		}
		u := append([]float64(nil), n.TrialDisp()...)
		u[dof] = m.fixed[eq]
		if err = n.SetTrialDisp(u); err != nil {
			return
		}
	}
	return
}

func (m *Model) incrementFree(free utils.Index, du []float64) (err error) {
	var (
		tags = m.Mesh.Tags()
		incr = make([][]float64, len(tags))
	)
	for i, eq := range free {
		a := eq / domain.NodeDOF
		if incr[a] == nil {
			incr[a] = make([]float64, domain.NodeDOF)
		}
		incr[a][eq%domain.NodeDOF] = du[i]
	}
	for a, d := range incr {
		if d == nil {
			continue
		}
		var n *domain.BasicNode
		if n, err = m.Mesh.BasicNode(tags[a]); err != nil {
			return
		}
		if err = n.IncrTrialDisp(d); err != nil {
			return
		}
	}
	return
}
