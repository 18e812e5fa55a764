package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridDecomposition(t *testing.T) {
	{ // Four ranks tile the global first axis without gaps or overlap
		var (
			Nx, Ny, Nz = 32, 8, 4
			NG         = 3
			nRanks     = 4
			covered    = make([]int, Nx)
		)
		for r := 0; r < nRanks; r++ {
			g := NewGrid(r, nRanks, Nx, Ny, Nz, NG)
			assert.Equal(t, Nx/nRanks, g.Nxp)
			assert.Equal(t, g.Nxp+2*NG, g.NxT)
			assert.Equal(t, Ny+2*NG, g.NyT)
			for i := g.IMin; i < g.IMax; i++ {
				covered[i]++
			}
		}
		for i := 0; i < Nx; i++ {
			assert.Equal(t, 1, covered[i])
		}
	}
	{ // Neighbor ranks wrap periodically
		g := NewGrid(0, 4, 32, 8, 4, 3)
		assert.Equal(t, 3, g.LeftRank())
		assert.Equal(t, 1, g.RightRank())
		g = NewGrid(3, 4, 32, 8, 4, 3)
		assert.Equal(t, 2, g.RightRank())
	}
	{ // A single rank is its own neighbor
		g := NewGrid(0, 1, 8, 8, 8, 3)
		assert.Equal(t, 0, g.LeftRank())
		assert.Equal(t, 0, g.RightRank())
	}
	{ // Indivisible extents are a configuration error
		assert.Panics(t, func() { NewGrid(0, 3, 32, 8, 4, 3) })
	}
}

func TestGridIndexing(t *testing.T) {
	var (
		g = NewGrid(0, 1, 6, 5, 4, 3)
	)
	// Flat index advances by 1 along i, NxT along j, NxT*NyT along k
	assert.Equal(t, 0, g.Index(0, 0, 0))
	assert.Equal(t, 1, g.Index(1, 0, 0))
	assert.Equal(t, g.NxT, g.Index(0, 1, 0))
	assert.Equal(t, g.NxT*g.NyT, g.Index(0, 0, 1))
	assert.Equal(t, g.Ncell()-1, g.Index(g.NxT-1, g.NyT-1, g.NzT-1))

	// EachInterior visits exactly the interior cells, each once
	seen := make(map[int]int)
	g.EachInterior(func(i, j, k int) {
		assert.True(t, g.Interior(i, j, k))
		seen[g.Index(i, j, k)]++
	})
	assert.Equal(t, g.Nxp*g.Ny*g.Nz, len(seen))
	for _, c := range seen {
		assert.Equal(t, 1, c)
	}
	assert.False(t, g.Interior(g.NG-1, g.NG, g.NG))
	assert.False(t, g.Interior(g.NG+g.Nxp, g.NG, g.NG))
}

func TestUniformMetrics(t *testing.T) {
	var (
		g          = NewGrid(1, 2, 8, 4, 4, 3)
		xm, ym, zm = 2.0, 1.0, 0.5
		m          = NewUniformMetrics(g, xm, ym, zm)
		dx, dy, dz = xm / 8, ym / 4, zm / 4
	)
	ind := g.Index(g.NG, g.NG, g.NG)
	assert.True(t, near(m.XiX[ind], 1/dx))
	assert.True(t, near(m.EtaY[ind], 1/dy))
	assert.True(t, near(m.ZetaZ[ind], 1/dz))
	assert.Equal(t, 0., m.XiY[ind])
	assert.Equal(t, 0., m.EtaX[ind])
	assert.True(t, near(m.J[ind], dx*dy*dz))
	// Rank 1 owns the second half of the x span; first interior cell
	// center sits half a cell past the midpoint
	assert.True(t, near(m.X[ind], xm/2+dx/2))
	assert.True(t, near(m.Y[ind], dy/2))
	assert.True(t, near(m.Z[ind], dz/2))
	// Ghost coordinates extend past the low domain edge
	indG := g.Index(g.NG, g.NG-1, g.NG)
	assert.True(t, near(m.Y[indG], -dy/2))
}

func near(a, b float64) (l bool) {
	if math.Abs(a-b) < 1.e-10*math.Max(math.Abs(a), 1) {
		l = true
	}
	return
}
