package NS3D

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/hdf5"

	"github.com/flowphys/gocns/grid"
)

// writeSurrogateFile builds a trivially invertible trained model for a
// two-species mixture: zero hidden weights collapse the tanh layer, so
// the prediction is exp of the output bias for every cell.
func writeSurrogateFile(t *testing.T, fileName string, b2 []float64) {
	f, err := hdf5.CreateFile(fileName, hdf5.F_ACC_TRUNC)
	require.NoError(t, err)
	defer f.Close()
	var (
		hidden, nin, nout = 3, 4, 3
		ones              = func(n int) []float64 {
			v := make([]float64, n)
			for i := range v {
				v[i] = 1.
			}
			return v
		}
	)
	write := func(name string, dims []uint, data []float64) {
		space, err := hdf5.CreateSimpleDataspace(dims, nil)
		require.NoError(t, err)
		defer space.Close()
		dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
		require.NoError(t, err)
		defer dset.Close()
		require.NoError(t, dset.Write(&data))
	}
	write("w1", []uint{uint(hidden), uint(nin)}, make([]float64, hidden*nin))
	write("b1", []uint{uint(hidden)}, make([]float64, hidden))
	write("w2", []uint{uint(nout), uint(hidden)}, make([]float64, nout*hidden))
	write("b2", []uint{uint(nout)}, b2)
	write("mean", []uint{uint(nin)}, make([]float64, nin))
	write("scale", []uint{uint(nin)}, ones(nin))
	write("omean", []uint{uint(nout)}, make([]float64, nout))
	write("oscale", []uint{uint(nout)}, ones(nout))
	write("lambda", []uint{1}, []float64{0.})
}

func TestSurrogateInference(t *testing.T) {
	var (
		fileName = filepath.Join(t.TempDir(), "model.h5")
		// Bias-only network predicting T=1000 and raw Y={0.3, 0.3},
		// which renormalizes to an even split
		b2 = []float64{math.Log(1000.), math.Log(0.3), math.Log(0.3)}
	)
	writeSurrogateFile(t, fileName, b2)
	src, err := LoadSurrogate(fileName, 2)
	require.NoError(t, err)
	assert.Equal(t, "surrogate", src.Name())

	var (
		mx = testMixture()
		g  = grid.NewGrid(0, 1, 4, 4, 4, 3)
		f  = NewFields(g, mx.Nspec)
	)
	g.EachInterior(func(i, j, k int) {
		ind := g.Index(i, j, k)
		f.Q.Rho[ind] = 1.0
		f.Q.T[ind] = 300.
		f.Yi[0][ind], f.Yi[1][ind] = 0.2, 0.8
		for n := 0; n < 2; n++ {
			f.Rhoi[n][ind] = f.Yi[n][ind]
		}
		f.Q.P[ind] = f.Q.Rho[ind] * mx.R(f.Yi, ind) * f.Q.T[ind]
		f.ConsFromPrim(mx, ind)
	})
	assert.NoError(t, src.Apply(f, mx, 1.e-6))

	ind := g.Index(g.NG+1, g.NG+1, g.NG+1)
	assert.True(t, near(f.Yi[0][ind], 0.5))
	assert.True(t, near(f.Yi[1][ind], 0.5))
	assert.True(t, near(f.Rhoi[0][ind], 0.5))
	// Quiescent cell: the rewritten total energy is the internal energy
	// at the predicted temperature and composition
	want := f.Q.Rho[ind] * mx.InternalEnergy(f.Yi, ind, 1000.)
	assert.True(t, near(f.U.E[ind], want))
	// Momentum stays with the flow solver
	assert.Equal(t, 0., f.U.RhoU[ind])
}

func TestLoadSurrogateShapeMismatch(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "model.h5")
	writeSurrogateFile(t, fileName, []float64{0., 0., 0.})
	// The file carries a two-species model
	_, err := LoadSurrogate(fileName, 3)
	assert.Error(t, err)
}
