package NS3D

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/flowphys/gocns/InputParameters"
	"github.com/flowphys/gocns/utils"
)

// SourceTerm is the chemistry source-term provider contract shared by
// the direct stiff integrator and the inference surrogate: a pure
// function of the thermochemical state over a half step, selected at
// configuration time. Implementations overwrite the species densities
// and leave total mass and momentum untouched. The direct integrator
// holds the internal energy fixed across the half step; the surrogate
// rewrites it from the oracle's predicted temperature. Either way the
// remaining primitives follow from the caloric closure at the next
// conversion.
type SourceTerm interface {
	Name() string
	Apply(f *Fields, mx *Mixture, halfDt float64) error
}

// Reaction is one elementary irreversible reaction with resolved
// species indices.
type Reaction struct {
	A, B, Ea float64
	NuR, NuP []float64 // Stoichiometric coefficients per species
}

// ArrheniusSource integrates the declared mechanism directly with fixed
// explicit subcycling of the half step at constant density and energy.
// Cells are independent, so the interior is sharded over NWorkers
// goroutines per rank; the integration dominates step cost whenever the
// mechanism is stiff.
type ArrheniusSource struct {
	Reactions []Reaction
	NSub      int
	NWorkers  int
}

func NewArrheniusSource(mx *Mixture, params []InputParameters.ReactionParameters) (src *ArrheniusSource, err error) {
	src = &ArrheniusSource{NSub: 10, NWorkers: runtime.NumCPU()}
	for _, rp := range params {
		r := Reaction{
			A: rp.A, B: rp.B, Ea: rp.Ea,
			NuR: make([]float64, mx.Nspec),
			NuP: make([]float64, mx.Nspec),
		}
		for name, nu := range rp.Reactants {
			n := mx.SpeciesIndex(name)
			if n < 0 {
				return nil, fmt.Errorf("reaction references unknown species %s", name)
			}
			r.NuR[n] = nu
		}
		for name, nu := range rp.Products {
			n := mx.SpeciesIndex(name)
			if n < 0 {
				return nil, fmt.Errorf("reaction references unknown species %s", name)
			}
			r.NuP[n] = nu
		}
		src.Reactions = append(src.Reactions, r)
	}
	return
}

func (src *ArrheniusSource) Name() string { return "arrhenius" }

func (src *ArrheniusSource) Apply(f *Fields, mx *Mixture, halfDt float64) (err error) {
	var (
		g  = f.G
		wg sync.WaitGroup
		pm = utils.NewPartitionMap(src.NWorkers, g.Nz)
	)
	// Shard the interior over k-planes; cells are independent and each
	// worker carries its own scratch, so the result does not depend on
	// the sharding.
	for w := 0; w < src.NWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			k0, k1 := pm.GetBucketRange(w)
			src.applyPlanes(f, mx, halfDt, g.NG+k0, g.NG+k1)
		}(w)
	}
	wg.Wait()
	return
}

func (src *ArrheniusSource) applyPlanes(f *Fields, mx *Mixture, halfDt float64, kMin, kMax int) {
	var (
		g     = f.G
		ns    = f.Nspec
		dtSub = halfDt / float64(src.NSub)
		conc  = make([]float64, ns)
		omega = make([]float64, ns)
		yi    = make([]float64, ns)
	)
	for k := kMin; k < kMax; k++ {
		for j := g.NG; j < g.NG+g.Ny; j++ {
			for i := g.NG; i < g.NG+g.Nxp; i++ {
				var (
					ind   = g.Index(i, j, k)
					rho   = f.Q.Rho[ind]
					oorho = 1. / rho
					u     = f.Q.U[ind]
					v     = f.Q.V[ind]
					w     = f.Q.W[ind]
					// Internal energy is held fixed over the reaction substep;
					// temperature responds through the formation enthalpy.
					e = f.U.E[ind]*oorho - 0.5*(u*u+v*v+w*w)
					T = f.Q.T[ind]
				)
				for sub := 0; sub < src.NSub; sub++ {
					for n := 0; n < ns; n++ {
						conc[n] = f.Rhoi[n][ind] / mx.Species[n].W
						omega[n] = 0
					}
					for _, r := range src.Reactions {
						q := r.A * math.Pow(T, r.B) * math.Exp(-r.Ea/(RUniversal*T))
						for n := 0; n < ns; n++ {
							if r.NuR[n] > 0 {
								q *= math.Pow(conc[n], r.NuR[n])
							}
						}
						for n := 0; n < ns; n++ {
							omega[n] += mx.Species[n].W * (r.NuP[n] - r.NuR[n]) * q
						}
					}
					var rhoSum float64
					for n := 0; n < ns; n++ {
						f.Rhoi[n][ind] += dtSub * omega[n]
						rhoSum += f.Rhoi[n][ind]
					}
					for n := 0; n < ns; n++ {
						yi[n] = f.Rhoi[n][ind] / rhoSum
					}
					// Recover T at the fixed internal energy for the next subcycle
					var cv, hf float64
					for n := 0; n < ns; n++ {
						cv += yi[n] * (mx.Species[n].Cp - RUniversal/mx.Species[n].W)
						hf += yi[n] * mx.Species[n].Hf
					}
					T = (e - hf) / cv
				}
			}
		}
	}
}
