// Package section holds the stress-resultant contract evaluated at each
// shell Gauss point, and a linear elastic implementation of it.
//
// Generalized strains and stresses are ordered
//
//	e11 e22 e12 k11 k22 k12 g13 g23
//
// Bending quantities follow the shell sign convention: the bending block of
// the stress resultant and of the tangents is returned with negated sign.
package section

import (
	"errors"

	"github.com/notargets/goshell/domain"
	"gonum.org/v1/gonum/mat"
)

const NumStrains = 8

var ErrInvalidSection = errors.New("invalid section")

type Section interface {
	SetTrialSectionDeformation(strain []float64) error
	SectionDeformation() []float64
	StressResultant() []float64
	SectionTangent() *mat.Dense
	InitialTangent() *mat.Dense
	ArealRho() float64
	CommitState() error
	RevertToLastCommit() error
	RevertToStart() error
	Copy() Section
	SendSelf(ch domain.Channel) error
	RecvSelf(ch domain.Channel) error
}
