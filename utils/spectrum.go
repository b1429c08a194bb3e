package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SymmetricEigenvalues returns the eigenvalues of the symmetric part of m in
// ascending order
func (m Matrix) SymmetricEigenvalues() (values []float64, ok bool) {
	var (
		nr, nc = m.Dims()
		eig    mat.EigenSym
	)
	if nr != nc {
		panic("eigenvalues only defined for square matrices")
	}
	S := mat.NewSymDense(nr, nil)
	for i := 0; i < nr; i++ {
		for j := i; j < nr; j++ {
			S.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	if ok = eig.Factorize(S, false); !ok {
		return
	}
	values = eig.Values(nil)
	return
}

// CountZeroModes counts the eigenvalues below tol times the largest magnitude
func (m Matrix) CountZeroModes(tol float64) (n int) {
	values, ok := m.SymmetricEigenvalues()
	if !ok {
		return -1
	}
	var vmax float64
	for _, v := range values {
		vmax = math.Max(vmax, math.Abs(v))
	}
	for _, v := range values {
		if math.Abs(v) <= tol*vmax {
			n++
		}
	}
	return
}

func (m Matrix) ConditionNumber() float64 {
	var svd mat.SVD
	if !svd.Factorize(m.M, mat.SVDNone) {
		return math.Inf(1)
	}
	values := svd.Values(nil)
	if len(values) == 0 || values[len(values)-1] == 0 {
		return math.Inf(1)
	}
	return values[0] / values[len(values)-1]
}
