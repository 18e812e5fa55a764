package NS3D

import (
	"fmt"
	"math"

	"github.com/flowphys/gocns/InputParameters"
)

// RUniversal is the universal gas constant in J/(kmol K).
const RUniversal = 8314.46261815324

// Species carries the constants of one mixture component.
type Species struct {
	Name  string
	W     float64 // Molecular weight, kg/kmol
	Cp    float64 // Specific heat at constant pressure, J/(kg K)
	MuRef float64 // Reference viscosity at TRef
	TRef  float64
	SMu   float64 // Sutherland temperature
	Pr    float64
	Le    float64 // Lewis number; zero selects the binary-diffusion estimate
	Hf    float64 // Heat of formation at reference temperature, J/kg
}

// Mixture evaluates thermodynamic closures for a multi-species gas with
// calorically perfect components. All methods are pure per-cell math.
type Mixture struct {
	Species []Species
	Nspec   int
}

// NewMixture resolves the species table. gamma is the specific-heat
// ratio used to fill in an omitted Cp; zero selects the diatomic 1.4.
func NewMixture(params []InputParameters.SpeciesParameters, gamma float64) (mx *Mixture) {
	mx = &Mixture{
		Species: make([]Species, len(params)),
		Nspec:   len(params),
	}
	if gamma == 0 {
		gamma = 1.4
	}
	for n, sp := range params {
		if sp.W <= 0 {
			panic(fmt.Errorf("species %s has non-positive molecular weight %g", sp.Name, sp.W))
		}
		s := Species{
			Name:  sp.Name,
			W:     sp.W,
			Cp:    sp.Cp,
			MuRef: sp.MuRef,
			TRef:  sp.TRef,
			SMu:   sp.SMu,
			Pr:    sp.Pr,
			Le:    sp.Lewis,
			Hf:    sp.Enthalp,
		}
		// Defaults for air-like components when the input omits them.
		// An omitted Cp follows from the configured specific-heat ratio
		// under the calorically perfect closure
		if s.Cp == 0 {
			s.Cp = gamma / (gamma - 1.) * RUniversal / s.W
		}
		if s.MuRef == 0 {
			s.MuRef = 1.716e-5
		}
		if s.TRef == 0 {
			s.TRef = 273.15
		}
		if s.SMu == 0 {
			s.SMu = 110.4
		}
		if s.Pr == 0 {
			s.Pr = 0.72
		}
		mx.Species[n] = s
	}
	return
}

// R is the mixture gas constant for mass fractions yi at cell index ind.
func (mx *Mixture) R(Yi [][]float64, ind int) (r float64) {
	for n := range mx.Species {
		r += Yi[n][ind] / mx.Species[n].W
	}
	r *= RUniversal
	return
}

func (mx *Mixture) CpMix(Yi [][]float64, ind int) (cp float64) {
	for n := range mx.Species {
		cp += Yi[n][ind] * mx.Species[n].Cp
	}
	return
}

// HForm is the mixture heat of formation, the composition-dependent
// offset of internal energy.
func (mx *Mixture) HForm(Yi [][]float64, ind int) (hf float64) {
	for n := range mx.Species {
		hf += Yi[n][ind] * mx.Species[n].Hf
	}
	return
}

// InternalEnergy is the specific internal energy at temperature T.
func (mx *Mixture) InternalEnergy(Yi [][]float64, ind int, T float64) (e float64) {
	cv := mx.CpMix(Yi, ind) - mx.R(Yi, ind)
	e = cv*T + mx.HForm(Yi, ind)
	return
}

// TemperatureFromEnergy inverts InternalEnergy for T.
func (mx *Mixture) TemperatureFromEnergy(Yi [][]float64, ind int, e float64) (T float64) {
	cv := mx.CpMix(Yi, ind) - mx.R(Yi, ind)
	T = (e - mx.HForm(Yi, ind)) / cv
	return
}

// SoundSpeed for the local mixture state.
func (mx *Mixture) SoundSpeed(Yi [][]float64, ind int, T float64) (c float64) {
	var (
		r     = mx.R(Yi, ind)
		cp    = mx.CpMix(Yi, ind)
		gamma = cp / (cp - r)
	)
	c = math.Sqrt(gamma * r * T)
	return
}

// Viscosity is the Sutherland-law dynamic viscosity of one species.
func (s *Species) Viscosity(T float64) (mu float64) {
	mu = s.MuRef * math.Pow(T/s.TRef, 1.5) * (s.TRef + s.SMu) / (T + s.SMu)
	return
}

// SpeciesIndex returns the index of a named species or -1.
func (mx *Mixture) SpeciesIndex(name string) int {
	for n := range mx.Species {
		if mx.Species[n].Name == name {
			return n
		}
	}
	return -1
}
