package NS3D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowphys/gocns/grid"
)

func TestReconstructFaceLinearExact(t *testing.T) {
	var (
		n      = 12
		Fp     = make([]float64, n)
		Fm     = make([]float64, n)
		ind, s = 6, 1
	)
	// Linear split fluxes: the 5-point upwind interpolant must land on
	// the exact face value, making the scheme linearity preserving
	for i := 0; i < n; i++ {
		Fp[i] = 1. + 2.*float64(i)
		Fm[i] = 3. - 0.5*float64(i)
	}
	var (
		xf   = float64(ind) - 0.5
		want = (1. + 2.*xf) + (3. - 0.5*xf)
	)
	assert.True(t, near(reconstructFace(Fp, Fm, ind, s, 0., true), want))

	// Sensor fully on selects the first-order pair
	lo := Fp[ind-1] + Fm[ind]
	assert.True(t, near(reconstructFace(Fp, Fm, ind, s, 1., true), lo))

	// Without stencil support only the low-order candidate is legal
	assert.True(t, near(reconstructFace(Fp, Fm, ind, s, 0., false), lo))

	// Constant split fluxes reconstruct to the same constant for any
	// blending weight, so uniform states cannot generate ripples
	for i := 0; i < n; i++ {
		Fp[i] = 4.
		Fm[i] = -1.5
	}
	for _, phi := range []float64{0., 0.3, 1.} {
		assert.True(t, near(reconstructFace(Fp, Fm, ind, s, phi, true), 2.5))
	}
}

func TestReconstructFaceRefinementDecay(t *testing.T) {
	// Max interpolation error of the high-order candidate on a smooth
	// profile at a given resolution
	faceErr := func(n int) (errMax float64) {
		var (
			h  = 1. / float64(n)
			Fp = make([]float64, n)
			Fm = make([]float64, n)
		)
		for i := 0; i < n; i++ {
			x := float64(i) * h
			Fp[i] = math.Sin(2. * math.Pi * x)
			Fm[i] = math.Cos(2. * math.Pi * x)
		}
		for ind := 3; ind < n-2; ind++ {
			var (
				xf   = (float64(ind) - 0.5) * h
				want = math.Sin(2.*math.Pi*xf) + math.Cos(2.*math.Pi*xf)
				e    = math.Abs(reconstructFace(Fp, Fm, ind, 1, 0., true) - want)
			)
			if e > errMax {
				errMax = e
			}
		}
		return
	}
	var (
		coarse = faceErr(32)
		fine   = faceErr(64)
	)
	// Fifth-order interpolant: halving h should cut the error by about
	// 2^5; allow a generous margin below the asymptotic rate
	assert.Greater(t, coarse/fine, 20.)
}

func TestEachFaceCoverage(t *testing.T) {
	var (
		g = grid.NewGrid(0, 1, 6, 5, 4, 3)
	)
	for d := 0; d < 3; d++ {
		var (
			nFaces int
			ext    = [3]int{g.Nxp, g.Ny, g.Nz}
			want   = 1
		)
		for a := 0; a < 3; a++ {
			if a == d {
				want *= ext[a] + 1
			} else {
				want *= ext[a]
			}
		}
		eachFace(g, d, func(ind, s, posD, nD int) {
			nFaces++
			assert.Equal(t, [3]int{1, g.NxT, g.NxT * g.NyT}[d], s)
		})
		assert.Equal(t, want, nFaces)
	}
}

func TestShockSensor(t *testing.T) {
	var (
		mx = testMixture()
		g  = grid.NewGrid(0, 1, 8, 4, 4, 3)
		f  = NewFields(g, mx.Nspec)
		sd = NewShockSensor(g, 10.)
	)
	for ind := 0; ind < g.Ncell(); ind++ {
		f.Q.P[ind] = 101325.
	}
	sd.Update(f)
	mid := g.Index(g.NG+3, g.NG+1, g.NG+1)
	// Smooth pressure leaves the sensor off in the interior
	assert.Equal(t, 0., sd.Phi[0][mid])
	assert.Equal(t, 0., sd.Phi[1][mid])
	// Rim cells always force low order
	assert.Equal(t, 1., sd.Phi[0][g.Index(0, 0, 0)])

	// A pressure jump along x wakes the x sensor but not the y sensor
	for ind := 0; ind < g.Ncell(); ind++ {
		f.Q.P[ind] = 101325.
	}
	for k := 0; k < g.NzT; k++ {
		for j := 0; j < g.NyT; j++ {
			for i := g.NG + 4; i < g.NxT; i++ {
				f.Q.P[g.Index(i, j, k)] = 10. * 101325.
			}
		}
	}
	sd.Update(f)
	atJump := g.Index(g.NG+4, g.NG+1, g.NG+1)
	assert.Greater(t, sd.Phi[0][atJump], 0.5)
	assert.Equal(t, 0., sd.Phi[1][atJump])
}

func TestFluxTypeNames(t *testing.T) {
	assert.Equal(t, FLUX_LaxFriedrichs, NewFluxType("Lax"))
	assert.Equal(t, FLUX_Rusanov, NewFluxType("Rusanov"))
	assert.Panics(t, func() { NewFluxType("roe") })
}
