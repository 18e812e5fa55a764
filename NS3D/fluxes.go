package NS3D

import (
	"fmt"
	"math"
	"strings"

	"github.com/flowphys/gocns/grid"
)

type FluxType uint

const (
	FLUX_LaxFriedrichs FluxType = iota // Domain-global splitting speed per direction
	FLUX_Rusanov                       // Locally evaluated splitting speed
)

var (
	FluxNames = map[string]FluxType{
		"lax":     FLUX_LaxFriedrichs,
		"rusanov": FLUX_Rusanov,
	}
	FluxPrintNames = []string{"Lax Friedrichs", "Rusanov"}
)

func (ft FluxType) Print() (txt string) {
	txt = FluxPrintNames[ft]
	return
}

func NewFluxType(label string) (ft FluxType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if ft, ok = FluxNames[label]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
		panic(err)
	}
	return
}

// dirMetrics returns the metric derivative arrays of one logical
// direction: d(xi_d)/dx, /dy, /dz.
func dirMetrics(m *grid.Metrics, d int) (mx, my, mz []float64) {
	switch d {
	case 0:
		mx, my, mz = m.XiX, m.XiY, m.XiZ
	case 1:
		mx, my, mz = m.EtaX, m.EtaY, m.EtaZ
	default:
		mx, my, mz = m.ZetaX, m.ZetaY, m.ZetaZ
	}
	return
}

// ComputeLambda fills the splitting speed field for direction d:
// lambda = J * (|Uhat| + c*|grad xi_d|) per cell, the spectral radius of
// the contravariant flux Jacobian. For the Lax Friedrichs flux the
// domain-wide maximum replaces the local value: the reduction crosses
// ranks so the two sides of a decomposition boundary build the same
// split pair and the face flux stays single valued.
func (ns *NS) ComputeLambda(rs *RankState, d int) {
	var (
		g          = rs.G
		mxm        = ns.Mixture
		mx, my, mz = dirMetrics(rs.M, d)
		lam        = rs.RK.Lam
		lamMax     float64
	)
	for ind := 0; ind < g.Ncell(); ind++ {
		uhat := mx[ind]*rs.F.Q.U[ind] + my[ind]*rs.F.Q.V[ind] + mz[ind]*rs.F.Q.W[ind]
		gmag := math.Sqrt(mx[ind]*mx[ind] + my[ind]*my[ind] + mz[ind]*mz[ind])
		c := mxm.SoundSpeed(rs.F.Yi, ind, rs.F.Q.T[ind])
		lam[ind] = rs.M.J[ind] * (math.Abs(uhat) + c*gmag)
		if lam[ind] > lamMax {
			lamMax = lam[ind]
		}
	}
	if ns.FluxCalcAlgo == FLUX_LaxFriedrichs {
		lamMax = ns.reduceMax(g.Rank, lamMax)
		for ind := range lam {
			lam[ind] = lamMax
		}
	}
}

// SplitFluxFlow decomposes the bulk (mass, momentum, energy)
// contravariant flux into the upwind-stable pair f+/f- at every cell.
func (ns *NS) SplitFluxFlow(rs *RankState, d int) {
	var (
		g          = rs.G
		f          = rs.F
		mx, my, mz = dirMetrics(rs.M, d)
		lam        = rs.RK.Lam
		Fp, Fm     = rs.RK.Fp, rs.RK.Fm
		J          = rs.M.J
	)
	for ind := 0; ind < g.Ncell(); ind++ {
		var (
			rho     = f.Q.Rho[ind]
			u, v, w = f.Q.U[ind], f.Q.V[ind], f.Q.W[ind]
			p       = f.Q.P[ind]
			uhat    = mx[ind]*u + my[ind]*v + mz[ind]*w
			jac     = J[ind]
			fhat    [5]float64
			cons    = [5]float64{f.U.Rho[ind], f.U.RhoU[ind], f.U.RhoV[ind], f.U.RhoW[ind], f.U.E[ind]}
		)
		fhat[0] = jac * rho * uhat
		fhat[1] = jac * (rho*u*uhat + mx[ind]*p)
		fhat[2] = jac * (rho*v*uhat + my[ind]*p)
		fhat[3] = jac * (rho*w*uhat + mz[ind]*p)
		fhat[4] = jac * (f.U.E[ind] + p) * uhat
		for n := 0; n < 5; n++ {
			Fp[n][ind] = 0.5 * (fhat[n] + lam[ind]*cons[n])
			Fm[n][ind] = 0.5 * (fhat[n] - lam[ind]*cons[n])
		}
	}
}

// SplitFluxSpecies does the same decomposition for every species
// advective flux, sharing the splitting speed with the bulk engine.
func (ns *NS) SplitFluxSpecies(rs *RankState, d int) {
	var (
		g          = rs.G
		f          = rs.F
		mx, my, mz = dirMetrics(rs.M, d)
		lam        = rs.RK.Lam
		Fp, Fm     = rs.RK.Fsp, rs.RK.Fsm
		J          = rs.M.J
	)
	for ind := 0; ind < g.Ncell(); ind++ {
		uhat := mx[ind]*f.Q.U[ind] + my[ind]*f.Q.V[ind] + mz[ind]*f.Q.W[ind]
		juh := J[ind] * uhat
		for n := 0; n < f.Nspec; n++ {
			rsp := f.Rhoi[n][ind]
			Fp[n][ind] = 0.5 * (juh*rsp + lam[ind]*rsp)
			Fm[n][ind] = 0.5 * (juh*rsp - lam[ind]*rsp)
		}
	}
}

// reconstructFace builds the single numerical flux at the face between
// cells ind-s and ind from the split pair, blending the 5-point
// high-order upwind candidate against the first-order candidate by the
// sensor weight. Falls to pure low order where the wide stencil has no
// support, which keeps domain-boundary faces well defined.
func reconstructFace(Fp, Fm []float64, ind, s int, phiF float64, wide bool) (fhat float64) {
	var (
		lo = Fp[ind-s] + Fm[ind]
	)
	if !wide {
		fhat = lo
		return
	}
	hiP := (2*Fp[ind-3*s] - 13*Fp[ind-2*s] + 47*Fp[ind-s] + 27*Fp[ind] - 3*Fp[ind+s]) / 60
	hiM := (2*Fm[ind+2*s] - 13*Fm[ind+s] + 47*Fm[ind] + 27*Fm[ind-s] - 3*Fm[ind-2*s]) / 60
	fhat = (1-phiF)*(hiP+hiM) + phiF*lo
	return
}

// eachFace visits every direction-d face adjoining an interior cell:
// the face between extended cells ind-s and ind, stored at ind.
func eachFace(g *grid.Grid, d int, visit func(ind, s, posD, nD int)) {
	var (
		stride = [3]int{1, g.NxT, g.NxT * g.NyT}
		s      = stride[d]
		hi     = [3]int{g.NG + g.Nxp, g.NG + g.Ny, g.NG + g.Nz}
		nD     = [3]int{g.NxT, g.NyT, g.NzT}[d]
	)
	// The face index runs one past the interior along d
	hi[d]++
	for k := g.NG; k < hi[2]; k++ {
		for j := g.NG; j < hi[1]; j++ {
			for i := g.NG; i < hi[0]; i++ {
				pos := [3]int{i, j, k}
				visit(g.Index(i, j, k), s, pos[d], nD)
			}
		}
	}
}

// ReconstructFlow produces the bulk face fluxes for direction d,
// advective reconstruction plus viscous correction, into RK.Fface.
func (ns *NS) ReconstructFlow(rs *RankState, d int) {
	var (
		phi    = rs.Sensor.Phi[d]
		Fp, Fm = rs.RK.Fp, rs.RK.Fm
		Ff     = rs.RK.Fface
	)
	eachFace(rs.G, d, func(ind, s, posD, nD int) {
		var (
			phiF = math.Max(phi[ind-s], phi[ind])
			wide = posD-3 >= 0 && posD+2 <= nD-1
		)
		for n := 0; n < 5; n++ {
			Ff[n][ind] = reconstructFace(Fp[n], Fm[n], ind, s, phiF, wide)
		}
		visc := ns.viscousFlowFace(rs, d, ind-s, ind)
		for n := 0; n < 5; n++ {
			Ff[n][ind] -= visc[n]
		}
	})
}

// ReconstructSpecies produces the species face fluxes for direction d
// into RK.Fsface, sharing the sensor field with the bulk engine.
func (ns *NS) ReconstructSpecies(rs *RankState, d int) {
	var (
		phi    = rs.Sensor.Phi[d]
		Fp, Fm = rs.RK.Fsp, rs.RK.Fsm
		Ff     = rs.RK.Fsface
		nspec  = rs.F.Nspec
	)
	eachFace(rs.G, d, func(ind, s, posD, nD int) {
		var (
			phiF = math.Max(phi[ind-s], phi[ind])
			wide = posD-3 >= 0 && posD+2 <= nD-1
		)
		for n := 0; n < nspec; n++ {
			Ff[n][ind] = reconstructFace(Fp[n], Fm[n], ind, s, phiF, wide)
		}
		visc := ns.viscousSpeciesFace(rs, d, ind-s, ind)
		for n := 0; n < nspec; n++ {
			Ff[n][ind] -= visc[n]
		}
	})
}

// viscousFlowFace assembles the viscous momentum stress, heat flux and
// enthalpy diffusion at one face by centered averaging of the
// cell-centered gradients and transport coefficients.
func (ns *NS) viscousFlowFace(rs *RankState, d, indL, indR int) (fv [5]float64) {
	var (
		f          = rs.F
		tr, gr     = rs.Tr, rs.Gr
		mx, my, mz = dirMetrics(rs.M, d)
		avg        = func(a []float64) float64 { return 0.5 * (a[indL] + a[indR]) }
		mu         = avg(tr.Mu)
		kap        = avg(tr.Kappa)
		jac        = avg(rs.M.J)
		mhat       = [3]float64{avg(mx), avg(my), avg(mz)}
		du         [3][3]float64
		tau        [3][3]float64
		vel        = [3]float64{avg(f.Q.U), avg(f.Q.V), avg(f.Q.W)}
		rho        = avg(f.Q.Rho)
		Tface      = avg(f.Q.T)
	)
	for c := 0; c < 3; c++ {
		for dd := 0; dd < 3; dd++ {
			du[c][dd] = avg(gr.Vel[c][dd])
		}
	}
	divU := du[0][0] + du[1][1] + du[2][2]
	for c := 0; c < 3; c++ {
		for dd := 0; dd < 3; dd++ {
			tau[c][dd] = mu * (du[c][dd] + du[dd][c])
			if c == dd {
				tau[c][dd] -= (2. / 3.) * mu * divU
			}
		}
	}
	// Momentum: sum_l mhat_l * tau_cl
	for c := 0; c < 3; c++ {
		var s float64
		for l := 0; l < 3; l++ {
			s += mhat[l] * tau[c][l]
		}
		fv[1+c] = jac * s
	}
	// Energy: work of the stress + conduction + species enthalpy diffusion
	for l := 0; l < 3; l++ {
		theta := kap * avg(gr.T[l])
		for c := 0; c < 3; c++ {
			theta += vel[c] * tau[c][l]
		}
		for n := 0; n < f.Nspec; n++ {
			hs := ns.Mixture.Species[n].Cp*Tface + ns.Mixture.Species[n].Hf
			theta += rho * avg(tr.Di[n]) * hs * avg(gr.Y[n][l])
		}
		fv[4] += jac * mhat[l] * theta
	}
	return
}

// viscousSpeciesFace assembles the diffusive species mass fluxes.
func (ns *NS) viscousSpeciesFace(rs *RankState, d, indL, indR int) (fv []float64) {
	var (
		f          = rs.F
		tr, gr     = rs.Tr, rs.Gr
		mx, my, mz = dirMetrics(rs.M, d)
		avg        = func(a []float64) float64 { return 0.5 * (a[indL] + a[indR]) }
		jac        = avg(rs.M.J)
		mhat       = [3]float64{avg(mx), avg(my), avg(mz)}
		rho        = avg(f.Q.Rho)
	)
	fv = rs.RK.viscSpec
	for n := 0; n < f.Nspec; n++ {
		var s float64
		for l := 0; l < 3; l++ {
			s += mhat[l] * avg(gr.Y[n][l])
		}
		fv[n] = jac * rho * avg(tr.Di[n]) * s
	}
	return
}

// AccumulateDivergence adds direction d's net face flux difference into
// the divergence accumulators. Each face value is counted exactly once,
// with opposite sign contribution to its two adjoining cells.
func (ns *NS) AccumulateDivergence(rs *RankState, d int, species bool) {
	var (
		g      = rs.G
		stride = [3]int{1, g.NxT, g.NxT * g.NyT}
		s      = stride[d]
	)
	if species {
		for n := 0; n < rs.F.Nspec; n++ {
			Ff, div := rs.RK.Fsface[n], rs.RK.DivS[n]
			g.EachInterior(func(i, j, k int) {
				ind := g.Index(i, j, k)
				div[ind] += Ff[ind+s] - Ff[ind]
			})
		}
		return
	}
	for n := 0; n < 5; n++ {
		Ff, div := rs.RK.Fface[n], rs.RK.DivU[n]
		g.EachInterior(func(i, j, k int) {
			ind := g.Index(i, j, k)
			div[ind] += Ff[ind+s] - Ff[ind]
		})
	}
}
