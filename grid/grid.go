package grid

import "fmt"

// Grid describes one rank's slab of the global structured index space.
// The decomposition is 1-D along the first logical axis: rank r owns the
// contiguous global range [IMin,IMax) plus NG ghost layers on every face.
type Grid struct {
	Rank, NRanks  int
	Nx, Ny, Nz    int // Global interior extents
	Nxp           int // Interior extent of this rank's slab along the first axis
	NG            int // Ghost layer depth
	IMin, IMax    int // Global first-axis range owned by this rank
	NxT, NyT, NzT int // Extended extents including ghost layers
}

func NewGrid(rank, nRanks, Nx, Ny, Nz, NG int) (g *Grid) {
	if Nx%nRanks != 0 {
		panic(fmt.Errorf("global extent Nx=%d not divisible by %d ranks", Nx, nRanks))
	}
	Nxp := Nx / nRanks
	g = &Grid{
		Rank:   rank,
		NRanks: nRanks,
		Nx:     Nx, Ny: Ny, Nz: Nz,
		Nxp: Nxp,
		NG:  NG,
		IMin: rank * Nxp, IMax: (rank + 1) * Nxp,
		NxT: Nxp + 2*NG, NyT: Ny + 2*NG, NzT: Nz + 2*NG,
	}
	return
}

// Ncell is the extended (ghost-inclusive) cell count of the slab.
func (g *Grid) Ncell() int { return g.NxT * g.NyT * g.NzT }

// Index maps extended-space logical coordinates to the flat cell index.
// i runs over [0,NxT), interior cells start at NG.
func (g *Grid) Index(i, j, k int) int {
	return i + g.NxT*(j+g.NyT*k)
}

// Interior reports whether the extended coordinates lie in the interior.
func (g *Grid) Interior(i, j, k int) bool {
	return i >= g.NG && i < g.NG+g.Nxp &&
		j >= g.NG && j < g.NG+g.Ny &&
		k >= g.NG && k < g.NG+g.Nz
}

// EachInterior visits every interior cell of the slab in k-outer order.
func (g *Grid) EachInterior(f func(i, j, k int)) {
	for k := g.NG; k < g.NG+g.Nz; k++ {
		for j := g.NG; j < g.NG+g.Ny; j++ {
			for i := g.NG; i < g.NG+g.Nxp; i++ {
				f(i, j, k)
			}
		}
	}
}

// LeftRank and RightRank identify the neighbor ranks along the
// decomposition axis, wrapping periodically. A single-rank run is its
// own neighbor, which turns the exchange into a local periodic copy.
func (g *Grid) LeftRank() int  { return (g.Rank - 1 + g.NRanks) % g.NRanks }
func (g *Grid) RightRank() int { return (g.Rank + 1) % g.NRanks }
