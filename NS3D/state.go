package NS3D

import (
	"fmt"
	"math"

	"github.com/flowphys/gocns/grid"
)

// PrimitiveVars is the per-cell primitive state Q.
type PrimitiveVars struct {
	Rho, U, V, W, P, T []float64
}

// ConservedVars is the per-cell conservative state U.
type ConservedVars struct {
	Rho, RhoU, RhoV, RhoW, E []float64
}

// Fields bundles one rank's flow state: primitive and conservative
// variables plus species partial densities and mass fractions, all over
// the extended (ghost-inclusive) slab. Allocated once per run.
type Fields struct {
	G     *grid.Grid
	Q     PrimitiveVars
	U     ConservedVars
	Rhoi  [][]float64 // Species partial densities, [Nspec][ncell]
	Yi    [][]float64 // Species mass fractions, [Nspec][ncell]
	Nspec int
}

func NewFields(g *grid.Grid, nspec int) (f *Fields) {
	var (
		nc = g.Ncell()
	)
	f = &Fields{
		G:     g,
		Nspec: nspec,
		Rhoi:  make([][]float64, nspec),
		Yi:    make([][]float64, nspec),
	}
	f.Q = PrimitiveVars{
		Rho: make([]float64, nc), U: make([]float64, nc), V: make([]float64, nc),
		W: make([]float64, nc), P: make([]float64, nc), T: make([]float64, nc),
	}
	f.U = ConservedVars{
		Rho: make([]float64, nc), RhoU: make([]float64, nc), RhoV: make([]float64, nc),
		RhoW: make([]float64, nc), E: make([]float64, nc),
	}
	for n := 0; n < nspec; n++ {
		f.Rhoi[n] = make([]float64, nc)
		f.Yi[n] = make([]float64, nc)
	}
	return
}

// ConsFromPrim derives the conservative state from the primitive state
// at one cell. Pure transform, no side effects beyond the target arrays.
func (f *Fields) ConsFromPrim(mx *Mixture, ind int) {
	var (
		rho     = f.Q.Rho[ind]
		u, v, w = f.Q.U[ind], f.Q.V[ind], f.Q.W[ind]
		e       = mx.InternalEnergy(f.Yi, ind, f.Q.T[ind])
	)
	f.U.Rho[ind] = rho
	f.U.RhoU[ind] = rho * u
	f.U.RhoV[ind] = rho * v
	f.U.RhoW[ind] = rho * w
	f.U.E[ind] = rho * (e + 0.5*(u*u+v*v+w*w))
}

// PrimFromCons inverts ConsFromPrim at one cell. Mass fractions must be
// current (see MassFractions) since the caloric closure depends on them.
func (f *Fields) PrimFromCons(mx *Mixture, ind int) {
	var (
		rho    = f.U.Rho[ind]
		oorho  = 1. / rho
		u      = f.U.RhoU[ind] * oorho
		v      = f.U.RhoV[ind] * oorho
		w      = f.U.RhoW[ind] * oorho
		e      = f.U.E[ind]*oorho - 0.5*(u*u+v*v+w*w)
	)
	f.Q.Rho[ind] = rho
	f.Q.U[ind] = u
	f.Q.V[ind] = v
	f.Q.W[ind] = w
	f.Q.T[ind] = mx.TemperatureFromEnergy(f.Yi, ind, e)
	f.Q.P[ind] = rho * mx.R(f.Yi, ind) * f.Q.T[ind]
}

// MassFractions re-derives Yi from the species densities at one cell and
// enforces the species constraint sum(Yi) == 1 by renormalization. The
// renormalized fractions are written back into the partial densities so
// the two stay consistent.
func (f *Fields) MassFractions(ind int) {
	var (
		rhoSum float64
	)
	for n := 0; n < f.Nspec; n++ {
		rhoSum += f.Rhoi[n][ind]
	}
	if rhoSum <= 0 {
		// Leave it for the admissibility sweep to report
		for n := 0; n < f.Nspec; n++ {
			f.Yi[n][ind] = math.NaN()
		}
		return
	}
	oorho := 1. / rhoSum
	for n := 0; n < f.Nspec; n++ {
		f.Yi[n][ind] = f.Rhoi[n][ind] * oorho
		f.Rhoi[n][ind] = f.Yi[n][ind] * f.Q.Rho[ind]
	}
}

// ConvertAll runs cons->prim then mass fractions over every extended
// cell. Used after stage updates, when U and Rhoi are current.
func (f *Fields) ConvertAll(mx *Mixture) {
	var (
		nc = f.G.Ncell()
	)
	for ind := 0; ind < nc; ind++ {
		rhoSum := 0.
		for n := 0; n < f.Nspec; n++ {
			rhoSum += f.Rhoi[n][ind]
		}
		if rhoSum > 0 {
			oorho := 1. / rhoSum
			for n := 0; n < f.Nspec; n++ {
				f.Yi[n][ind] = f.Rhoi[n][ind] * oorho
			}
		}
		f.PrimFromCons(mx, ind)
		// Rescale partial densities onto the updated mixture density
		for n := 0; n < f.Nspec; n++ {
			f.Rhoi[n][ind] = f.Yi[n][ind] * f.Q.Rho[ind]
		}
	}
}

// ConsAll derives the mass fractions and the conservative state from
// the primitive state and partial densities over every extended cell.
// Used after a restore, when Q and Rhoi are current and U is not.
func (f *Fields) ConsAll(mx *Mixture) {
	var (
		nc = f.G.Ncell()
	)
	for ind := 0; ind < nc; ind++ {
		f.MassFractions(ind)
		f.ConsFromPrim(mx, ind)
	}
}

// FillGhostDerived re-derives the dependent ghost-cell quantities after
// a ghost fill: mass fractions from the copied species densities (with
// the species constraint re-enforced) and the conservative state from
// the copied primitives. Interior cells are untouched.
func (f *Fields) FillGhostDerived(mx *Mixture) {
	var (
		g = f.G
	)
	for k := 0; k < g.NzT; k++ {
		for j := 0; j < g.NyT; j++ {
			for i := 0; i < g.NxT; i++ {
				if g.Interior(i, j, k) {
					continue
				}
				ind := g.Index(i, j, k)
				f.MassFractions(ind)
				f.ConsFromPrim(mx, ind)
			}
		}
	}
}

// CheckAdmissible sweeps the interior for NaN or non-physical state and
// reports the first offending cell. A hit is fatal to the run: the
// scheme mutates state in place and offers no rollback.
func (f *Fields) CheckAdmissible() (err error) {
	var (
		g = f.G
	)
	for k := g.NG; k < g.NG+g.Nz; k++ {
		for j := g.NG; j < g.NG+g.Ny; j++ {
			for i := g.NG; i < g.NG+g.Nxp; i++ {
				ind := g.Index(i, j, k)
				rho, p, T := f.Q.Rho[ind], f.Q.P[ind], f.Q.T[ind]
				if math.IsNaN(rho) || math.IsNaN(p) || math.IsNaN(T) ||
					math.IsNaN(f.U.E[ind]) ||
					rho <= 0 || p <= 0 || T <= 0 {
					err = fmt.Errorf(
						"non-physical state at rank %d cell [%d,%d,%d]: rho=%g p=%g T=%g",
						g.Rank, i-g.NG+g.IMin, j-g.NG, k-g.NG, rho, p, T)
					return
				}
			}
		}
	}
	return
}
