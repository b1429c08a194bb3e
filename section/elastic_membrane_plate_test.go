package section

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/notargets/goshell/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestElasticMembranePlate(tst *testing.T) {

	chk.PrintTitle("ElasticMembranePlate")

	sec, err := NewElasticMembranePlate(200, 0.25, 0.1, 7.8)
	require.NoError(tst, err)

	G := 200 / 2.5
	chk.Float64(tst, "membrane shear", 1e-12, sec.InitialTangent().At(2, 2), G*0.1)
	chk.Float64(tst, "areal density", 1e-15, sec.ArealRho(), 0.78)
	chk.Float64(tst, "bending D11", 1e-12, sec.SectionTangent().At(3, 3), -200*1e-3/(12*(1-0.0625)))
	chk.Float64(tst, "transverse shear", 1e-12, sec.SectionTangent().At(6, 6), 5./6.*G*0.1)
	assert.True(tst, mat.Equal(sec.SectionTangent(), sec.SectionTangent().T()))

	// stress follows D and commit/revert restore the deformation
	eps := []float64{1e-3, 0, 0, 0.5, 0, 0, 0, 2e-3}
	require.NoError(tst, sec.SetTrialSectionDeformation(eps))
	chk.Float64(tst, "N11", 1e-12, sec.StressResultant()[0], 200*0.1/(1-0.0625)*1e-3)
	assert.Less(tst, sec.StressResultant()[3], 0.)
	require.NoError(tst, sec.CommitState())
	require.NoError(tst, sec.SetTrialSectionDeformation(make([]float64, NumStrains)))
	require.NoError(tst, sec.RevertToLastCommit())
	chk.Array(tst, "reverted", 1e-15, sec.SectionDeformation(), eps)
	require.NoError(tst, sec.RevertToStart())
	chk.Array(tst, "start", 1e-15, sec.StressResultant(), make([]float64, NumStrains))

	// bad input
	assert.Error(tst, sec.SetTrialSectionDeformation([]float64{1}))
	_, err = NewElasticMembranePlate(200, 0.5, 0.1, 1)
	assert.True(tst, errors.Is(err, ErrInvalidSection))
}

func TestElasticMembranePlateSendRecv(tst *testing.T) {
	sec, err := NewElasticMembranePlate(30e3, 0.2, 0.3, 2.4)
	require.NoError(tst, err)
	require.NoError(tst, sec.SetTrialSectionDeformation([]float64{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(tst, sec.CommitState())

	ch := domain.NewMemoryChannel()
	require.NoError(tst, sec.SendSelf(ch))
	other := &ElasticMembranePlate{}
	require.NoError(tst, other.RecvSelf(ch))
	assert.Equal(tst, sec.E, other.E)
	assert.True(tst, mat.Equal(sec.D, other.D))
	chk.Array(tst, "stress", 1e-12, other.StressResultant(), sec.StressResultant())

	cp := sec.Copy()
	chk.Array(tst, "copy", 1e-15, cp.SectionDeformation(), sec.SectionDeformation())
	require.NoError(tst, cp.SetTrialSectionDeformation(make([]float64, NumStrains)))
	assert.NotEqual(tst, cp.SectionDeformation()[0], sec.SectionDeformation()[0])
}
