package NS3D

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowphys/gocns/grid"
)

func TestFaceGeometry(t *testing.T) {
	assert.Equal(t, 0, FaceXMin.Axis())
	assert.Equal(t, 1, FaceYMax.Axis())
	assert.Equal(t, 2, FaceZMin.Axis())
	assert.False(t, FaceYMin.High())
	assert.True(t, FaceZMax.High())
	assert.Equal(t, "YMax", FaceYMax.Print())
}

func TestBCTypeNames(t *testing.T) {
	assert.Equal(t, BC_Periodic, NewBCType("Periodic"))
	assert.Equal(t, BC_Reflective, NewBCType("reflective"))
	assert.Equal(t, BC_Outflow, NewBCType("outflow"))
	assert.Panics(t, func() { NewBCType("inflow") })
}

func TestApplyBC(t *testing.T) {
	var (
		mx = testMixture()
		g  = grid.NewGrid(0, 1, 6, 6, 6, 3)
	)
	build := func() *Fields {
		f := NewFields(g, mx.Nspec)
		g.EachInterior(func(i, j, k int) {
			ind := g.Index(i, j, k)
			f.Q.Rho[ind] = 1. + 0.1*float64(j)
			f.Q.U[ind] = 10.
			f.Q.V[ind] = float64(j - g.NG + 1) // Nonzero normal velocity at YMin
			f.Q.W[ind] = -2.
			f.Q.P[ind] = 101325.
			f.Q.T[ind] = 300.
			f.Rhoi[0][ind] = 0.4 * f.Q.Rho[ind]
			f.Rhoi[1][ind] = 0.6 * f.Q.Rho[ind]
		})
		return f
	}

	{ // Reflective: mirror image with the normal velocity negated
		f := build()
		ApplyBC(f, FaceYMin, BC_Reflective)
		for c := 0; c < g.NG; c++ {
			var (
				gInd = g.Index(g.NG+1, g.NG-1-c, g.NG+2)
				sInd = g.Index(g.NG+1, g.NG+c, g.NG+2)
			)
			assert.Equal(t, f.Q.Rho[sInd], f.Q.Rho[gInd])
			assert.Equal(t, -f.Q.V[sInd], f.Q.V[gInd])
			assert.Equal(t, f.Q.U[sInd], f.Q.U[gInd]) // Tangential velocity kept
			assert.Equal(t, f.Rhoi[1][sInd], f.Rhoi[1][gInd])
		}
	}
	{ // Outflow: every ghost layer clones the last interior plane
		f := build()
		ApplyBC(f, FaceYMax, BC_Outflow)
		edge := g.Index(g.NG+1, g.NG+g.Ny-1, g.NG+2)
		for c := 0; c < g.NG; c++ {
			gInd := g.Index(g.NG+1, g.NG+g.Ny+c, g.NG+2)
			assert.Equal(t, f.Q.Rho[edge], f.Q.Rho[gInd])
			assert.Equal(t, f.Q.V[edge], f.Q.V[gInd])
		}
	}
	{ // Periodic on a tangential face wraps to the opposite side
		f := build()
		ApplyBC(f, FaceYMin, BC_Periodic)
		for c := 0; c < g.NG; c++ {
			var (
				gInd = g.Index(g.NG+1, g.NG-1-c, g.NG+2)
				sInd = g.Index(g.NG+1, g.NG-1-c+g.Ny, g.NG+2)
			)
			assert.Equal(t, f.Q.Rho[sInd], f.Q.Rho[gInd])
		}
	}
}
