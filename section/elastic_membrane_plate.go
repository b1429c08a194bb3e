package section

import (
	"fmt"

	"github.com/notargets/goshell/domain"
	"gonum.org/v1/gonum/mat"
)

const shearCorrection = 5. / 6.

// ElasticMembranePlate is an isotropic homogeneous plate of thickness H
type ElasticMembranePlate struct {
	E, Nu, H, Rho float64
	D             *mat.Dense
	trial, commit []float64
	stress        []float64
}

func NewElasticMembranePlate(E, nu, h, rho float64) (sec *ElasticMembranePlate, err error) {
	if E <= 0 || h <= 0 || nu <= -1 || nu >= 0.5 || rho < 0 {
		err = fmt.Errorf("%w: E = %v, nu = %v, h = %v, rho = %v", ErrInvalidSection, E, nu, h, rho)
		return
	}
	sec = &ElasticMembranePlate{
		E: E, Nu: nu, H: h, Rho: rho,
		trial:  make([]float64, NumStrains),
		commit: make([]float64, NumStrains),
		stress: make([]float64, NumStrains),
	}
	sec.D = sec.tangent()
	return
}

func (sec *ElasticMembranePlate) tangent() (D *mat.Dense) {
	var (
		E, nu, h = sec.E, sec.Nu, sec.H
		G        = 0.5 * E / (1 + nu)
		mem      = E * h / (1 - nu*nu)
		bend     = -E * h * h * h / (12 * (1 - nu*nu))
		shear    = shearCorrection * G * h
	)
	D = mat.NewDense(NumStrains, NumStrains, nil)
	for i, fac := range []float64{mem, bend} {
		o := 3 * i
		D.Set(o, o, fac)
		D.Set(o+1, o+1, fac)
		D.Set(o, o+1, fac*nu)
		D.Set(o+1, o, fac*nu)
		D.Set(o+2, o+2, fac*0.5*(1-nu))
	}
	D.Set(6, 6, shear)
	D.Set(7, 7, shear)
	return
}

func (sec *ElasticMembranePlate) SetTrialSectionDeformation(strain []float64) error {
	if len(strain) != NumStrains {
		return fmt.Errorf("%w: deformation has %d components, expected %d", ErrInvalidSection, len(strain), NumStrains)
	}
	copy(sec.trial, strain)
	mat.NewVecDense(NumStrains, sec.stress).MulVec(sec.D, mat.NewVecDense(NumStrains, sec.trial))
	return nil
}

func (sec *ElasticMembranePlate) SectionDeformation() []float64 { return sec.trial }
func (sec *ElasticMembranePlate) StressResultant() []float64    { return sec.stress }
func (sec *ElasticMembranePlate) SectionTangent() *mat.Dense    { return sec.D }
func (sec *ElasticMembranePlate) InitialTangent() *mat.Dense    { return sec.D }
func (sec *ElasticMembranePlate) ArealRho() float64             { return sec.Rho * sec.H }

func (sec *ElasticMembranePlate) CommitState() error {
	copy(sec.commit, sec.trial)
	return nil
}

func (sec *ElasticMembranePlate) RevertToLastCommit() error {
	return sec.SetTrialSectionDeformation(sec.commit)
}

func (sec *ElasticMembranePlate) RevertToStart() error {
	for i := range sec.commit {
		sec.commit[i] = 0
	}
	return sec.SetTrialSectionDeformation(sec.commit)
}

func (sec *ElasticMembranePlate) Copy() Section {
	cp, _ := NewElasticMembranePlate(sec.E, sec.Nu, sec.H, sec.Rho)
	copy(cp.commit, sec.commit)
	_ = cp.SetTrialSectionDeformation(sec.trial)
	return cp
}

const (
	tagProperties = iota + 1
	tagCommittedDeformation
)

func (sec *ElasticMembranePlate) SendSelf(ch domain.Channel) (err error) {
	props := mat.NewVecDense(4, []float64{sec.E, sec.Nu, sec.H, sec.Rho})
	if err = ch.SendVector(tagProperties, props); err != nil {
		return
	}
	return ch.SendVector(tagCommittedDeformation, mat.NewVecDense(NumStrains, sec.commit))
}

func (sec *ElasticMembranePlate) RecvSelf(ch domain.Channel) (err error) {
	var (
		props  = mat.NewVecDense(4, nil)
		commit = mat.NewVecDense(NumStrains, nil)
	)
	if err = ch.RecvVector(tagProperties, props); err != nil {
		return
	}
	if err = ch.RecvVector(tagCommittedDeformation, commit); err != nil {
		return
	}
	sec.E, sec.Nu, sec.H, sec.Rho = props.AtVec(0), props.AtVec(1), props.AtVec(2), props.AtVec(3)
	sec.D = sec.tangent()
	sec.trial = make([]float64, NumStrains)
	sec.stress = make([]float64, NumStrains)
	sec.commit = make([]float64, NumStrains)
	copy(sec.commit, commit.RawVector().Data)
	return sec.RevertToLastCommit()
}
