package NS3D

import (
	"math"

	"github.com/flowphys/gocns/grid"
)

// binaryDiffC scales the Fuller-type binary diffusion estimate
// D_ij = C * T^1.75 * sqrt(1/Wi+1/Wj) / p.
const binaryDiffC = 3.16e-4

// Transport holds the mixture-averaged transport coefficients, one
// value per extended cell, plus the binary-diffusion and mole-fraction
// temporaries reused every update. Fully data-parallel across cells.
type Transport struct {
	Mu    []float64   // Mixture dynamic viscosity
	Kappa []float64   // Mixture thermal conductivity
	Di    [][]float64 // Mixture-averaged diffusivity per species
	xmol  []float64   // Per-cell mole fraction scratch, Nspec
	mus   []float64   // Per-cell species viscosity scratch, Nspec
	dbin  []float64   // Per-cell binary diffusion scratch, Nspec*Nspec
}

func NewTransport(g *grid.Grid, nspec int) (tr *Transport) {
	tr = &Transport{
		Mu:    make([]float64, g.Ncell()),
		Kappa: make([]float64, g.Ncell()),
		Di:    make([][]float64, nspec),
		xmol:  make([]float64, nspec),
		mus:   make([]float64, nspec),
		dbin:  make([]float64, nspec*nspec),
	}
	for n := 0; n < nspec; n++ {
		tr.Di[n] = make([]float64, g.Ncell())
	}
	return
}

// Update recomputes all coefficients from the local composition and
// thermodynamic state: Sutherland species viscosities combined by the
// Wilke mixture rule, conductivities via species Prandtl numbers, and
// mixture-averaged diffusivities from Fuller binary estimates or, for
// species declaring a Lewis number, from the thermal diffusivity.
func (tr *Transport) Update(f *Fields, mx *Mixture) {
	var (
		nc   = f.G.Ncell()
		ns   = mx.Nspec
		xm   = tr.xmol
		mus  = tr.mus
		dbin = tr.dbin
	)
	for ind := 0; ind < nc; ind++ {
		T, p := f.Q.T[ind], f.Q.P[ind]
		if T <= 0 || p <= 0 {
			continue // The admissibility sweep owns reporting this
		}
		// Mole fractions
		var xsum float64
		for n := 0; n < ns; n++ {
			xm[n] = f.Yi[n][ind] / mx.Species[n].W
			xsum += xm[n]
		}
		for n := 0; n < ns; n++ {
			xm[n] /= xsum
			mus[n] = mx.Species[n].Viscosity(T)
		}
		// Wilke combination for viscosity and conductivity
		var muMix, kapMix float64
		for i := 0; i < ns; i++ {
			var denom float64
			for j := 0; j < ns; j++ {
				wi, wj := mx.Species[i].W, mx.Species[j].W
				t := 1. + math.Sqrt(mus[i]/mus[j])*math.Pow(wj/wi, 0.25)
				phi := t * t / math.Sqrt(8.*(1.+wi/wj))
				denom += xm[j] * phi
			}
			kapI := mus[i] * mx.Species[i].Cp / mx.Species[i].Pr
			muMix += xm[i] * mus[i] / denom
			kapMix += xm[i] * kapI / denom
		}
		tr.Mu[ind] = muMix
		tr.Kappa[ind] = kapMix
		// Binary diffusion estimates, then the mixture-averaged rule. A
		// declared species Lewis number bypasses the estimate and ties
		// the diffusivity to the mixture thermal diffusivity instead
		var (
			t175  = math.Pow(T, 1.75)
			alpha = kapMix / (f.Q.Rho[ind] * mx.CpMix(f.Yi, ind))
		)
		for i := 0; i < ns; i++ {
			for j := 0; j < ns; j++ {
				wi, wj := mx.Species[i].W, mx.Species[j].W
				dbin[i*ns+j] = binaryDiffC * t175 * math.Sqrt(1./wi+1./wj) / p
			}
		}
		for i := 0; i < ns; i++ {
			if le := mx.Species[i].Le; le > 0 {
				tr.Di[i][ind] = alpha / le
				continue
			}
			if ns == 1 {
				tr.Di[i][ind] = dbin[0]
				continue
			}
			var denom float64
			for j := 0; j < ns; j++ {
				if j == i {
					continue
				}
				denom += xm[j] / dbin[i*ns+j]
			}
			if denom > 0 {
				tr.Di[i][ind] = (1. - xm[i]) / denom
			} else {
				tr.Di[i][ind] = dbin[i*ns+i]
			}
		}
	}
}

// Gradients stores cell-centered physical-space gradients of velocity,
// temperature and mass fractions, derived by central differencing in
// logical space and rotation through the metric tensor.
type Gradients struct {
	Vel [3][3][]float64 // Vel[c][d] = d(u_c)/d(x_d)
	T   [3][]float64    // dT/dx_d
	Y   [][3][]float64  // [Nspec] dY/dx_d
}

func NewGradients(g *grid.Grid, nspec int) (gr *Gradients) {
	gr = &Gradients{Y: make([][3][]float64, nspec)}
	for d := 0; d < 3; d++ {
		for c := 0; c < 3; c++ {
			gr.Vel[c][d] = make([]float64, g.Ncell())
		}
		gr.T[d] = make([]float64, g.Ncell())
		for n := 0; n < nspec; n++ {
			gr.Y[n][d] = make([]float64, g.Ncell())
		}
	}
	return
}

func (gr *Gradients) Update(f *Fields, m *grid.Metrics) {
	var (
		g      = f.G
		stride = [3]int{1, g.NxT, g.NxT * g.NyT}
		nTot   = [3]int{g.NxT, g.NyT, g.NzT}
		mets   = [3][3][]float64{
			{m.XiX, m.EtaX, m.ZetaX},
			{m.XiY, m.EtaY, m.ZetaY},
			{m.XiZ, m.EtaZ, m.ZetaZ},
		}
		scalars = append([][]float64{f.Q.U, f.Q.V, f.Q.W, f.Q.T}, f.Yi...)
	)
	targets := make([][3][]float64, 0, 4+f.Nspec)
	targets = append(targets, gr.Vel[0], gr.Vel[1], gr.Vel[2], gr.T)
	targets = append(targets, gr.Y...)
	for k := 0; k < g.NzT; k++ {
		for j := 0; j < g.NyT; j++ {
			for i := 0; i < g.NxT; i++ {
				var (
					ind = g.Index(i, j, k)
					pos = [3]int{i, j, k}
					dl  [3]float64 // logical derivatives of the current scalar
				)
				for n, a := range scalars {
					for d := 0; d < 3; d++ {
						if pos[d] == 0 || pos[d] == nTot[d]-1 {
							dl[d] = 0
							continue
						}
						s := stride[d]
						dl[d] = 0.5 * (a[ind+s] - a[ind-s])
					}
					for c := 0; c < 3; c++ {
						targets[n][c][ind] = mets[c][0][ind]*dl[0] +
							mets[c][1][ind]*dl[1] + mets[c][2][ind]*dl[2]
					}
				}
			}
		}
	}
}
