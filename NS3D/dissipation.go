package NS3D

import (
	"math"

	"github.com/flowphys/gocns/grid"
)

// ShockSensor carries the per-cell, per-direction blending weight phi in
// [0,1] that steers flux reconstruction between the high-order and the
// dissipative low-order stencils. phi rises toward 1 across pressure
// discontinuities. One sensor field is shared by the bulk and species
// flux engines so both see the same smoothness classification.
type ShockSensor struct {
	Kappa float64      // Sharpness of the pressure switch
	Phi   [3][]float64 // One array per logical direction
}

func NewShockSensor(g *grid.Grid, kappa float64) (sd *ShockSensor) {
	sd = &ShockSensor{Kappa: kappa}
	for d := 0; d < 3; d++ {
		sd.Phi[d] = make([]float64, g.Ncell())
	}
	return
}

// Update recomputes phi from the current pressure field using the
// normalized second difference of pressure along each direction. Cells
// on the extended-array rim keep phi=1 so any stencil touching them
// falls back to low order.
func (sd *ShockSensor) Update(f *Fields) {
	var (
		g      = f.G
		p      = f.Q.P
		stride = [3]int{1, g.NxT, g.NxT * g.NyT}
		nTot   = [3]int{g.NxT, g.NyT, g.NzT}
	)
	for d := 0; d < 3; d++ {
		phi := sd.Phi[d]
		s := stride[d]
		for k := 0; k < g.NzT; k++ {
			for j := 0; j < g.NyT; j++ {
				for i := 0; i < g.NxT; i++ {
					ind := g.Index(i, j, k)
					c := [3]int{i, j, k}[d]
					if c == 0 || c == nTot[d]-1 {
						phi[ind] = 1.
						continue
					}
					num := math.Abs(p[ind+s] - 2*p[ind] + p[ind-s])
					den := p[ind+s] + 2*p[ind] + p[ind-s]
					phi[ind] = math.Min(1., sd.Kappa*num/den)
				}
			}
		}
	}
}
