package NS3D

import (
	"math"

	"github.com/flowphys/gocns/grid"
)

// RungeKutta3SSP holds one rank's preallocated integrator workspace:
// the stage-1 baseline snapshots, the split-flux pair, face flux and
// divergence accumulators. Allocated once, reused every step.
type RungeKutta3SSP struct {
	U0       [][]float64 // Stage baseline of the conserved state, 5 arrays
	Rhoi0    [][]float64 // Stage baseline of the species densities
	Lam      []float64   // Splitting speed field for the current direction
	Fp, Fm   [][]float64 // Split bulk flux pair, 5 arrays
	Fface    [][]float64 // Reconstructed bulk face flux, 5 arrays
	Fsp, Fsm [][]float64 // Split species flux pair
	Fsface   [][]float64 // Reconstructed species face flux
	DivU     [][]float64 // Bulk divergence accumulator, 5 arrays
	DivS     [][]float64 // Species divergence accumulator
	viscSpec []float64   // Per-face species viscous flux scratch
}

func NewRungeKutta3SSP(g *grid.Grid, nspec int) (rk *RungeKutta3SSP) {
	var (
		nc    = g.Ncell()
		alloc = func(n int) (a [][]float64) {
			a = make([][]float64, n)
			for i := range a {
				a[i] = make([]float64, nc)
			}
			return
		}
	)
	rk = &RungeKutta3SSP{
		U0:       alloc(5),
		Rhoi0:    alloc(nspec),
		Lam:      make([]float64, nc),
		Fp:       alloc(5),
		Fm:       alloc(5),
		Fface:    alloc(5),
		Fsp:      alloc(nspec),
		Fsm:      alloc(nspec),
		Fsface:   alloc(nspec),
		DivU:     alloc(5),
		DivS:     alloc(nspec),
		viscSpec: make([]float64, nspec),
	}
	return
}

// consArrays exposes the conserved state as an indexed array set for
// the stage arithmetic.
func consArrays(f *Fields) [5][]float64 {
	return [5][]float64{f.U.Rho, f.U.RhoU, f.U.RhoV, f.U.RhoW, f.U.E}
}

// Step advances one rank's state by one full SSP-RK3 step of size dt,
// with the optional reaction half-step applied before stage 1 and again
// after stage 3 (operator splitting; this placement is intentional and
// must not be reordered). Every stage ends with conversion, ghost fill
// and halo exchange, so ranks stay in lock step.
func (ns *NS) Step(rs *RankState, dt float64) (err error) {
	if ns.Chem != nil {
		if err = ns.Chem.Apply(rs.F, ns.Mixture, 0.5*dt); err != nil {
			return
		}
		rs.F.ConvertAll(ns.Mixture)
		ns.GhostFill(rs)
	}
	for stage := 1; stage <= 3; stage++ {
		ns.Stage(rs, dt, stage)
	}
	if ns.Chem != nil {
		if err = ns.Chem.Apply(rs.F, ns.Mixture, 0.5*dt); err != nil {
			return
		}
		rs.F.ConvertAll(ns.Mixture)
		ns.GhostFill(rs)
	}
	return
}

// Stage runs one RK stage: recompute mixture properties, sensor and
// gradients against the current working state, rebuild both flux
// engines direction by direction, apply the divergence update, blend
// against the stage-1 baseline, then convert and refresh ghosts.
func (ns *NS) Stage(rs *RankState, dt float64, stage int) {
	var (
		g    = rs.G
		f    = rs.F
		rk   = rs.RK
		st   = rs.Stream
		cons = consArrays(f)
	)
	if stage == 1 {
		// Snapshot the stage baseline
		for n := 0; n < 5; n++ {
			copy(rk.U0[n], cons[n])
		}
		for n := 0; n < f.Nspec; n++ {
			copy(rk.Rhoi0[n], f.Rhoi[n])
		}
	}
	st.Reset(BufQ, BufU, BufRhoi, BufYi, BufGhosts)
	st.Launch(Kernel{
		Name: "mixtureTransport", Reads: []BufferID{BufQ, BufYi}, Writes: []BufferID{BufTrans},
		Run: func() { rs.Tr.Update(f, ns.Mixture) },
	})
	st.Launch(Kernel{
		Name: "shockSensor", Reads: []BufferID{BufQ}, Writes: []BufferID{BufPhi},
		Run: func() { rs.Sensor.Update(f) },
	})
	st.Launch(Kernel{
		Name: "gradients", Reads: []BufferID{BufQ, BufYi}, Writes: []BufferID{BufGrad},
		Run: func() { rs.Gr.Update(f, rs.M) },
	})
	for n := 0; n < 5; n++ {
		zero(rk.DivU[n])
	}
	for n := 0; n < f.Nspec; n++ {
		zero(rk.DivS[n])
	}
	for d := 0; d < 3; d++ {
		d := d
		st.Launch(Kernel{
			Name: "splitSpeed", Reads: []BufferID{BufQ, BufU}, Writes: []BufferID{BufLam},
			Run: func() { ns.ComputeLambda(rs, d) },
		})
		// Species transport first, then bulk flow, per the stage ordering
		st.Launch(Kernel{
			Name: "splitSpecies", Reads: []BufferID{BufQ, BufRhoi, BufLam}, Writes: []BufferID{BufSplit},
			Run: func() { ns.SplitFluxSpecies(rs, d) },
		})
		st.Launch(Kernel{
			Name: "reconstructSpecies", Reads: []BufferID{BufSplit, BufPhi, BufTrans, BufGrad}, Writes: []BufferID{BufFace},
			Run: func() { ns.ReconstructSpecies(rs, d) },
		})
		st.Launch(Kernel{
			Name: "divergenceSpecies", Reads: []BufferID{BufFace}, Writes: []BufferID{BufDiv},
			Run: func() { ns.AccumulateDivergence(rs, d, true) },
		})
		st.Launch(Kernel{
			Name: "splitFlow", Reads: []BufferID{BufQ, BufU, BufLam}, Writes: []BufferID{BufSplit},
			Run: func() { ns.SplitFluxFlow(rs, d) },
		})
		st.Launch(Kernel{
			Name: "reconstructFlow", Reads: []BufferID{BufSplit, BufPhi, BufTrans, BufGrad}, Writes: []BufferID{BufFace},
			Run: func() { ns.ReconstructFlow(rs, d) },
		})
		st.Launch(Kernel{
			Name: "divergenceFlow", Reads: []BufferID{BufFace}, Writes: []BufferID{BufDiv},
			Run: func() { ns.AccumulateDivergence(rs, d, false) },
		})
	}
	st.Launch(Kernel{
		Name: "stageUpdate", Reads: []BufferID{BufDiv, BufU, BufRhoi}, Writes: []BufferID{BufU, BufRhoi},
		Run: func() {
			var (
				b0, b1 = stageWeights(stage)
				J      = rs.M.J
			)
			if stage == 3 {
				rs.Resid = [5]float64{}
			}
			g.EachInterior(func(i, j, k int) {
				ind := g.Index(i, j, k)
				dtByJ := dt / J[ind]
				for n := 0; n < f.Nspec; n++ {
					upd := f.Rhoi[n][ind] - dtByJ*rk.DivS[n][ind]
					f.Rhoi[n][ind] = b0*rk.Rhoi0[n][ind] + b1*upd
				}
				for n := 0; n < 5; n++ {
					upd := cons[n][ind] - dtByJ*rk.DivU[n][ind]
					blended := b0*rk.U0[n][ind] + b1*upd
					if stage == 3 {
						if r := math.Abs(blended - rk.U0[n][ind]); r > rs.Resid[n] {
							rs.Resid[n] = r
						}
					}
					cons[n][ind] = blended
				}
			})
		},
	})
	st.Launch(Kernel{
		Name: "convert", Reads: []BufferID{BufU, BufRhoi}, Writes: []BufferID{BufQ, BufYi},
		Run: func() { f.ConvertAll(ns.Mixture) },
	})
	ns.GhostFill(rs)
}

// stageWeights are the convex blending weights applied to (baseline,
// freshly updated working state) per stage.
func stageWeights(stage int) (b0, b1 float64) {
	switch stage {
	case 1:
		return 0., 1.
	case 2:
		return 1. / 4., 3. / 4.
	default:
		return 1. / 3., 2. / 3.
	}
}

// MaxWaveSpeed is this rank's largest logical-space signal speed over
// all three directions, used for the CFL time step.
func (ns *NS) MaxWaveSpeed(rs *RankState) (lam float64) {
	var (
		g = rs.G
		f = rs.F
	)
	for d := 0; d < 3; d++ {
		mx, my, mz := dirMetrics(rs.M, d)
		g.EachInterior(func(i, j, k int) {
			ind := g.Index(i, j, k)
			uhat := mx[ind]*f.Q.U[ind] + my[ind]*f.Q.V[ind] + mz[ind]*f.Q.W[ind]
			gmag := math.Sqrt(mx[ind]*mx[ind] + my[ind]*my[ind] + mz[ind]*mz[ind])
			c := ns.Mixture.SoundSpeed(f.Yi, ind, f.Q.T[ind])
			if l := math.Abs(uhat) + c*gmag; l > lam {
				lam = l
			}
		})
	}
	return
}

func zero(a []float64) {
	for i := range a {
		a[i] = 0
	}
}
