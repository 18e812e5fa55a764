package NS3D

import (
	"fmt"

	"github.com/flowphys/gocns/utils"
)

// exchangedArrays lists the per-cell arrays refreshed by ghost fill and
// halo exchange: the primitive state plus the species densities.
func (f *Fields) exchangedArrays() (arrays [][]float64) {
	arrays = [][]float64{f.Q.Rho, f.Q.U, f.Q.V, f.Q.W, f.Q.P, f.Q.T}
	arrays = append(arrays, f.Rhoi...)
	return
}

// Exchanger is the point-to-point halo exchange fabric between ranks
// along the decomposition axis, plus the collective barrier every rank
// must reach before flux computation proceeds. Messages are keyed by the
// receiving rank id; each direction carries at most one message per
// exchange so the channels are buffered to depth one and a rank may
// safely exchange with itself on a single-rank periodic run.
type Exchanger struct {
	NRanks    int
	fromLeft  []chan []float64 // fromLeft[r] receives the slab sent rightward by r's left neighbor
	fromRight []chan []float64
	Barrier   *utils.Barrier
}

func NewExchanger(nRanks int) (ex *Exchanger) {
	ex = &Exchanger{
		NRanks:    nRanks,
		fromLeft:  make([]chan []float64, nRanks),
		fromRight: make([]chan []float64, nRanks),
		Barrier:   utils.NewBarrier(nRanks),
	}
	for r := 0; r < nRanks; r++ {
		ex.fromLeft[r] = make(chan []float64, 1)
		ex.fromRight[r] = make(chan []float64, 1)
	}
	return
}

// Exchange refreshes this rank's first-axis ghost layers from the owning
// neighbors' boundary-adjacent interior cells. Ghosts are rank-local
// copies, never authoritative. All sends complete before any receive is
// consumed, and no rank returns until every rank has reached the
// barrier.
func (ex *Exchanger) Exchange(f *Fields, periodicX bool) {
	var (
		g         = f.G
		r         = g.Rank
		arrays    = f.exchangedArrays()
		sendRight = r < ex.NRanks-1 || periodicX
		sendLeft  = r > 0 || periodicX
	)
	if ex.NRanks != g.NRanks {
		panic(fmt.Errorf("exchanger built for %d ranks, grid decomposed over %d", ex.NRanks, g.NRanks))
	}
	if sendRight {
		ex.fromLeft[g.RightRank()] <- packSlab(f, arrays, g.Nxp)
	}
	if sendLeft {
		ex.fromRight[g.LeftRank()] <- packSlab(f, arrays, g.NG)
	}
	if sendLeft { // A left send implies a left neighbor that sends back
		unpackSlab(f, arrays, <-ex.fromLeft[r], 0)
	}
	if sendRight {
		unpackSlab(f, arrays, <-ex.fromRight[r], g.NG+g.Nxp)
	}
	ex.Barrier.Wait()
}

// packSlab copies NG extended-plane columns starting at extended index
// iStart into a fresh wire buffer, all arrays concatenated.
func packSlab(f *Fields, arrays [][]float64, iStart int) (buf []float64) {
	var (
		g  = f.G
		nn = 0
	)
	buf = make([]float64, len(arrays)*g.NG*g.NyT*g.NzT)
	for _, a := range arrays {
		for c := 0; c < g.NG; c++ {
			for k := 0; k < g.NzT; k++ {
				for j := 0; j < g.NyT; j++ {
					buf[nn] = a[g.Index(iStart+c, j, k)]
					nn++
				}
			}
		}
	}
	return
}

func unpackSlab(f *Fields, arrays [][]float64, buf []float64, iStart int) {
	var (
		g  = f.G
		nn = 0
	)
	for _, a := range arrays {
		for c := 0; c < g.NG; c++ {
			for k := 0; k < g.NzT; k++ {
				for j := 0; j < g.NyT; j++ {
					a[g.Index(iStart+c, j, k)] = buf[nn]
					nn++
				}
			}
		}
	}
}
