package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var caseYAML = []byte(`
Title: "Reacting Shear Layer"
CFL: 0.4
FinalTime: 2.0e-3
FluxType: Lax
InitType: Smooth
Nx: 64
Ny: 32
Nz: 16
NRanks: 4
XMax: 0.02
YMax: 0.01
ZMax: 0.005
Chemistry: arrhenius
Species:
  - Name: H2
    MolecularWeight: 2.016
    Cp: 14300.
    HeatOfFormation: 0.
  - Name: O2
    MolecularWeight: 31.9988
    Cp: 918.
  - Name: H2O
    MolecularWeight: 18.0153
    Cp: 1996.
    HeatOfFormation: -13.4e6
Reactions:
  - A: 1.1e10
    b: 0.
    Ea: 8.0e7
    Reactants: {H2: 2, O2: 1}
    Products: {H2O: 2}
BCs:
  YMin: reflective
  YMax: reflective
`)

func TestParse(t *testing.T) {
	var (
		ip  = &InputParameters3D{}
		err = ip.Parse(caseYAML)
	)
	assert.NoError(t, err)
	assert.Equal(t, "Reacting Shear Layer", ip.Title)
	assert.Equal(t, 64, ip.Nx)
	assert.Equal(t, 4, ip.NRanks)
	assert.Equal(t, 3, len(ip.Species))
	assert.Equal(t, "H2O", ip.Species[2].Name)
	assert.Equal(t, -13.4e6, ip.Species[2].Enthalp)
	assert.Equal(t, 1, len(ip.Reactions))
	assert.Equal(t, 2., ip.Reactions[0].Reactants["H2"])
	assert.Equal(t, 2., ip.Reactions[0].Products["H2O"])

	// Defaults fill in for omitted keys
	assert.Equal(t, 3, ip.NGhost)
	assert.Equal(t, 1.4, ip.Gamma)
	assert.Equal(t, 10, ip.CheckInterval)
	assert.Equal(t, "arrhenius", ip.Chemistry)
	// Unlisted faces default to periodic, listed ones are kept
	assert.Equal(t, "reflective", ip.BCs["YMin"])
	assert.Equal(t, "periodic", ip.BCs["XMin"])
	assert.Equal(t, "periodic", ip.BCs["ZMax"])
}

func TestValidate(t *testing.T) {
	base := func() *InputParameters3D {
		return &InputParameters3D{
			Nx: 32, Ny: 8, Nz: 8, NRanks: 4,
			Species: []SpeciesParameters{{Name: "N2", W: 28.0134}},
		}
	}
	{ // A well-formed case passes and gains defaults
		ip := base()
		assert.NoError(t, ip.Validate())
		assert.Equal(t, 0.5, ip.CFL)
		assert.Equal(t, "none", ip.Chemistry)
	}
	{ // Decomposition must divide the first axis
		ip := base()
		ip.NRanks = 5
		assert.Error(t, ip.Validate())
	}
	{ // Slabs thinner than the ghost depth can not feed the exchange
		ip := base()
		ip.NRanks = 16
		assert.Error(t, ip.Validate())
	}
	{ // At least one species
		ip := base()
		ip.Species = nil
		assert.Error(t, ip.Validate())
	}
	{ // Surrogate chemistry needs a weights file
		ip := base()
		ip.Chemistry = "surrogate"
		assert.Error(t, ip.Validate())
	}
	{ // Arrhenius chemistry needs reactions
		ip := base()
		ip.Chemistry = "arrhenius"
		assert.Error(t, ip.Validate())
	}
	{ // Non-positive extents are rejected
		ip := base()
		ip.Nz = 0
		assert.Error(t, ip.Validate())
	}
}
