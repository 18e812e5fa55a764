package NS3D

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/flowphys/gocns/InputParameters"
	"github.com/flowphys/gocns/grid"
)

// NS is the compressible, multi-species, reacting Navier-Stokes solver
// on a structured curvilinear multi-block grid: one rank per
// decomposition slab, each driving its own compute stream, coupled only
// through halo exchange, collective reductions and collective I/O.
type NS struct {
	IP                  *InputParameters.InputParameters3D
	Mixture             *Mixture
	FluxCalcAlgo        FluxType
	Case                InitType
	BCs                 [6]BCType
	Chem                SourceTerm
	NRanks              int
	CFL                 float64
	FinalTime           float64
	MaxIterations       int
	XSpan, YSpan, ZSpan float64
	Exchanger           *Exchanger
	Ranks               []*RankState
	Checkpointer        *Checkpointer

	// Collective reduction scratch, one slot per rank
	collectVals []float64
	collectErrs []error
}

// RankState is everything one rank owns exclusively: its grid slab,
// metrics, flow state and kernel workspaces. No cross-rank aliasing.
type RankState struct {
	G      *grid.Grid
	M      *grid.Metrics
	F      *Fields
	Tr     *Transport
	Gr     *Gradients
	Sensor *ShockSensor
	RK     *RungeKutta3SSP
	Stream *Stream
	Resid  [5]float64 // Stage-3 update magnitude per equation, for reporting
}

// NewNS3D builds the solver from validated input parameters. nProcs is
// the launched rank count; a mismatch against the configured
// decomposition is a fatal configuration error, detected before any
// state is allocated or any compute begins.
func NewNS3D(ip *InputParameters.InputParameters3D, nProcs int) (ns *NS) {
	if err := ip.Validate(); err != nil {
		panic(err)
	}
	if nProcs != ip.NRanks {
		panic(fmt.Errorf("launched with %d ranks but the decomposition expects %d", nProcs, ip.NRanks))
	}
	ns = &NS{
		IP:            ip,
		Mixture:       NewMixture(ip.Species, ip.Gamma),
		NRanks:        ip.NRanks,
		CFL:           ip.CFL,
		FinalTime:     ip.FinalTime,
		MaxIterations: ip.MaxIterations,
		XSpan:         span(ip.XMax), YSpan: span(ip.YMax), ZSpan: span(ip.ZMax),
		Exchanger:     NewExchanger(ip.NRanks),
	}
	if ns.MaxIterations == 0 {
		ns.MaxIterations = math.MaxInt
	}
	if len(ip.FluxType) != 0 {
		ns.FluxCalcAlgo = NewFluxType(ip.FluxType)
	}
	if len(ip.InitType) != 0 {
		ns.Case = NewInitType(ip.InitType)
	}
	for fc := FaceXMin; fc <= FaceZMax; fc++ {
		ns.BCs[fc] = NewBCType(ip.BCs[fc.Print()])
	}
	if (ns.BCs[FaceXMin] == BC_Periodic) != (ns.BCs[FaceXMax] == BC_Periodic) {
		panic(fmt.Errorf("periodic boundary along the first axis requires both XMin and XMax periodic"))
	}
	switch ip.Chemistry {
	case "none":
	case "arrhenius":
		src, err := NewArrheniusSource(ns.Mixture, ip.Reactions)
		if err != nil {
			panic(err)
		}
		ns.Chem = src
	case "surrogate":
		src, err := LoadSurrogate(ip.SurrogateFile, ns.Mixture.Nspec)
		if err != nil {
			panic(err)
		}
		ns.Chem = src
	default:
		panic(fmt.Errorf("unknown chemistry source %s", ip.Chemistry))
	}

	ns.Ranks = make([]*RankState, ns.NRanks)
	for r := 0; r < ns.NRanks; r++ {
		g := grid.NewGrid(r, ns.NRanks, ip.Nx, ip.Ny, ip.Nz, ip.NGhost)
		var (
			m   *grid.Metrics
			err error
		)
		if len(ip.MetricsFile) != 0 {
			if m, err = grid.LoadMetrics(g, ip.MetricsFile); err != nil {
				panic(err)
			}
		} else {
			m = grid.NewUniformMetrics(g, ns.XSpan, ns.YSpan, ns.ZSpan)
		}
		ns.Ranks[r] = &RankState{
			G:      g,
			M:      m,
			F:      NewFields(g, ns.Mixture.Nspec),
			Tr:     NewTransport(g, ns.Mixture.Nspec),
			Gr:     NewGradients(g, ns.Mixture.Nspec),
			Sensor: NewShockSensor(g, ip.SensorKappa),
			RK:     NewRungeKutta3SSP(g, ns.Mixture.Nspec),
			Stream: NewStream(),
		}
	}
	ns.Checkpointer = NewCheckpointer(ns)
	ns.collectVals = make([]float64, ns.NRanks)
	ns.collectErrs = make([]error, ns.NRanks)
	return
}

func span(v float64) float64 {
	if v == 0 {
		return 1.
	}
	return v
}

// GhostFill applies the boundary-condition policy on physical faces and
// refreshes the first-axis halos from the neighbor ranks, then
// re-derives the dependent ghost quantities. The exchange ends in a
// collective barrier, so no rank computes fluxes against stale halos.
func (ns *NS) GhostFill(rs *RankState) {
	var (
		f         = rs.F
		periodicX = ns.BCs[FaceXMin] == BC_Periodic
	)
	ApplyBC(f, FaceYMin, ns.BCs[FaceYMin])
	ApplyBC(f, FaceYMax, ns.BCs[FaceYMax])
	ApplyBC(f, FaceZMin, ns.BCs[FaceZMin])
	ApplyBC(f, FaceZMax, ns.BCs[FaceZMax])
	ns.Exchanger.Exchange(f, periodicX)
	if !periodicX {
		if rs.G.Rank == 0 {
			ApplyBC(f, FaceXMin, ns.BCs[FaceXMin])
		}
		if rs.G.Rank == ns.NRanks-1 {
			ApplyBC(f, FaceXMax, ns.BCs[FaceXMax])
		}
	}
	f.FillGhostDerived(ns.Mixture)
}

// reduceMax is the collective max across ranks. Every rank must call it
// once per reduction or the run stalls at the barrier.
func (ns *NS) reduceMax(rank int, v float64) (m float64) {
	ns.collectVals[rank] = v
	ns.Exchanger.Barrier.Wait()
	for _, x := range ns.collectVals {
		if x > m {
			m = x
		}
	}
	ns.Exchanger.Barrier.Wait()
	return
}

// shareError publishes this rank's step error and reports whether any
// rank failed. Fatal conditions stop every rank at the same step.
func (ns *NS) shareError(rank int, err error) error {
	ns.collectErrs[rank] = err
	ns.Exchanger.Barrier.Wait()
	for _, e := range ns.collectErrs {
		if e != nil {
			err = e
			break
		}
	}
	ns.Exchanger.Barrier.Wait()
	return err
}

// Solve runs the lock-step time loop across all ranks until the
// configured end time, iteration cap, or a fatal fault.
func (ns *NS) Solve() (err error) {
	var (
		wg      sync.WaitGroup
		errs    = make([]error, ns.NRanks)
		elapsed time.Duration
	)
	ns.PrintInitialization()
	start := time.Now()
	for r := 0; r < ns.NRanks; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			errs[r] = ns.runRank(ns.Ranks[r])
		}(r)
	}
	wg.Wait()
	elapsed = time.Since(start)
	for _, e := range errs {
		if e != nil {
			err = e
			break
		}
	}
	ns.PrintFinal(elapsed)
	return
}

func (ns *NS) runRank(rs *RankState) (err error) {
	var (
		Time     float64
		steps    int
		finished bool
		ip       = ns.IP
		rank     = rs.G.Rank
	)
	if len(ip.RestartFile) != 0 {
		if err = ns.Checkpointer.Restore(rs, ip.RestartFile); err == nil {
			rs.F.ConsAll(ns.Mixture)
		}
	} else {
		ns.InitializeSolution(rs)
	}
	// Share the restore outcome before any rank touches a halo channel,
	// so a partial failure aborts the run instead of stranding the
	// surviving ranks in the exchange
	if err = ns.shareError(rank, err); err != nil {
		return
	}
	ns.GhostFill(rs)
	for !finished {
		lam := ns.reduceMax(rank, ns.MaxWaveSpeed(rs))
		dt := ns.CFL / lam
		if Time+dt > ns.FinalTime {
			dt = ns.FinalTime - Time
		}
		if err = ns.Step(rs, dt); err == nil {
			steps++
			Time += dt
			if steps%ip.CheckInterval == 0 {
				err = rs.F.CheckAdmissible()
			}
		}
		if err = ns.shareError(rank, err); err != nil {
			return
		}
		finished = Time >= ns.FinalTime || steps >= ns.MaxIterations
		// The write conditions depend only on lock-step state, so every
		// rank takes the same branches and the collectives stay aligned
		var (
			ioErr   error
			snapNow = ip.SnapshotInterval > 0 && (steps%ip.SnapshotInterval == 0 || finished)
			chkpNow = ip.CheckpointInterval > 0 && (steps%ip.CheckpointInterval == 0 || finished)
		)
		if snapNow {
			ioErr = ns.WriteSnapshot(rs, steps)
		}
		if chkpNow {
			if werr := ns.Checkpointer.Write(rs, steps); ioErr == nil {
				ioErr = werr
			}
		}
		if snapNow || chkpNow {
			if err = ns.shareError(rank, ioErr); err != nil {
				return
			}
		}
		if rank == 0 && (steps%10 == 0 || steps == 1 || finished) {
			ns.PrintUpdate(Time, dt, steps)
		}
	}
	return
}

func (ns *NS) PrintInitialization() {
	fmt.Printf("Compressible Reacting Navier-Stokes in 3 Dimensions\n")
	fmt.Printf("Grid %d x %d x %d over %d ranks, %d species\n",
		ns.IP.Nx, ns.IP.Ny, ns.IP.Nz, ns.NRanks, ns.Mixture.Nspec)
	fmt.Printf("Algorithm: %s, Initialization: %s\n", ns.FluxCalcAlgo.Print(), ns.Case.Print())
	if ns.Chem != nil {
		fmt.Printf("Chemistry source: %s\n", ns.Chem.Name())
	}
	fmt.Printf("Solving until finaltime = %8.5f\n", ns.FinalTime)
	fmt.Printf("    iter    time      dt")
	fmt.Printf("       Res0       Res1       Res2       Res3       Res4\n")
}

func (ns *NS) PrintUpdate(Time, dt float64, steps int) {
	format := "%11.4e"
	fmt.Printf("%8d%8.5f%8.5f", steps, Time, dt)
	for n := 0; n < 5; n++ {
		var maxR float64
		for _, rs := range ns.Ranks {
			if rs.Resid[n] > maxR {
				maxR = rs.Resid[n]
			}
		}
		fmt.Printf(format, maxR)
	}
	fmt.Printf("\n")
}

func (ns *NS) PrintFinal(elapsed time.Duration) {
	cells := ns.IP.Nx * ns.IP.Ny * ns.IP.Nz
	fmt.Printf("\nElapsed %v over %d cells\n", elapsed, cells)
}
