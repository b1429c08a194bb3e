package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) (R DOK) {
	return DOK{sparse.NewDOK(nr, nc)}
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

// AddAt accumulates val into (i,j), the finite element assembly primitive
func (m DOK) AddAt(i, j int, val float64) DOK { // Changes receiver
	if val == 0 {
		return m
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

// Scatter adds the dense block A into the rows/columns listed in I
func (m DOK) Scatter(I Index, A Matrix) (err error) { // Changes receiver
	var (
		nr, nc = A.Dims()
		nI     = len(I)
		data   = A.RawMatrix().Data
	)
	if nr != nI || nc != nI {
		err = fmt.Errorf("length of index and block are not equal: len(I) = %v, block = %v x %v", nI, nr, nc)
		return
	}
	for i, gi := range I {
		if gi < 0 {
			continue
		}
		for j, gj := range I {
			if gj < 0 {
				continue
			}
			m.AddAt(gi, gj, data[i*nc+j])
		}
	}
	return
}

func (m DOK) ToCSR() CSR {
	return CSR{M: m.M.ToCSR()}
}

type CSR struct {
	M *sparse.CSR
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

// DoNonZero visits every stored entry
func (m CSR) DoNonZero(fn func(i, j int, v float64)) { m.M.DoNonZero(fn) }

// MulVec returns m·x
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, _ = m.Dims()
	)
	y = make([]float64, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
	return
}
