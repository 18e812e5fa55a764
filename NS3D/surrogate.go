package NS3D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"
)

// SurrogateSource replaces the stiff chemical integrator with a trained
// regression model: a two-layer dense network consuming the normalized
// thermochemical state {T, p, Y} per cell and producing the predicted
// post-reaction-step state {T, Y}. Features pass through a Box-Cox
// power transform with parameter Lambda before mean/scale
// normalization; outputs invert the same chain. The forward pass is a
// pure batched function with no hidden state; invalid predictions flow
// into the state and surface at the NaN admissibility sweep.
type SurrogateSource struct {
	W1, W2        *mat.Dense
	B1, B2        []float64
	Mean, Scale   []float64 // Input feature normalization, length nin
	OMean, OScale []float64 // Output feature normalization, length nout
	Lambda        float64
	nin, nout     int
	hidden        int
}

func (src *SurrogateSource) Name() string { return "surrogate" }

// LoadSurrogate reads the trained weights and normalization constants.
// The feature layout is fixed: inputs [T, p, Y_0..Y_{n-1}], outputs
// [T, Y_0..Y_{n-1}]; a shape mismatch against the configured species
// count is a fatal configuration error.
func LoadSurrogate(fileName string, nspec int) (src *SurrogateSource, err error) {
	f, err := hdf5.OpenFile(fileName, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("opening surrogate file %s: %w", fileName, err)
	}
	defer f.Close()

	src = &SurrogateSource{nin: nspec + 2, nout: nspec + 1}
	read := func(name string) (data []float64, dims []uint) {
		if err != nil {
			return
		}
		var dset *hdf5.Dataset
		if dset, err = f.OpenDataset(name); err != nil {
			err = fmt.Errorf("surrogate dataset %s: %w", name, err)
			return
		}
		defer dset.Close()
		space := dset.Space()
		defer space.Close()
		if dims, _, err = space.SimpleExtentDims(); err != nil {
			return
		}
		n := 1
		for _, d := range dims {
			n *= int(d)
		}
		data = make([]float64, n)
		err = dset.Read(&data)
		return
	}
	w1, w1d := read("w1")
	b1, _ := read("b1")
	w2, w2d := read("w2")
	b2, _ := read("b2")
	src.Mean, _ = read("mean")
	src.Scale, _ = read("scale")
	src.OMean, _ = read("omean")
	src.OScale, _ = read("oscale")
	lam, _ := read("lambda")
	if err != nil {
		return nil, err
	}
	if len(w1d) != 2 || int(w1d[1]) != src.nin {
		return nil, fmt.Errorf("surrogate w1 shaped %v, wants [hidden %d]", w1d, src.nin)
	}
	src.hidden = int(w1d[0])
	if len(w2d) != 2 || int(w2d[0]) != src.nout || int(w2d[1]) != src.hidden {
		return nil, fmt.Errorf("surrogate w2 shaped %v, wants [%d %d]", w2d, src.nout, src.hidden)
	}
	if len(src.Mean) != src.nin || len(src.Scale) != src.nin ||
		len(src.OMean) != src.nout || len(src.OScale) != src.nout {
		return nil, fmt.Errorf("surrogate normalization lengths do not match feature counts")
	}
	src.W1 = mat.NewDense(src.hidden, src.nin, w1)
	src.W2 = mat.NewDense(src.nout, src.hidden, w2)
	src.B1, src.B2 = b1, b2
	src.Lambda = lam[0]
	return
}

// BoxCox and its inverse implement the feature nonlinearity.
func BoxCox(v, lambda float64) float64 {
	if lambda == 0 {
		return math.Log(v)
	}
	return (math.Pow(v, lambda) - 1.) / lambda
}

func BoxCoxInv(z, lambda float64) float64 {
	if lambda == 0 {
		return math.Exp(z)
	}
	return math.Pow(lambda*z+1., 1./lambda)
}

// Apply runs one batched inference over this rank's interior cells and
// overwrites the species densities and energy with the de-normalized
// prediction. Re-entrant: all scratch is local, so concurrent ranks can
// share one loaded model.
func (src *SurrogateSource) Apply(f *Fields, mx *Mixture, halfDt float64) (err error) {
	var (
		g     = f.G
		batch = g.Nxp * g.Ny * g.Nz
		xd    = make([]float64, batch*src.nin)
		inds  = make([]int, 0, batch)
	)
	_ = halfDt // The model was trained at the solver's half-step interval
	row := 0
	g.EachInterior(func(i, j, k int) {
		ind := g.Index(i, j, k)
		inds = append(inds, ind)
		xd[row*src.nin+0] = (BoxCox(f.Q.T[ind], src.Lambda) - src.Mean[0]) / src.Scale[0]
		xd[row*src.nin+1] = (BoxCox(f.Q.P[ind], src.Lambda) - src.Mean[1]) / src.Scale[1]
		for n := 0; n < f.Nspec; n++ {
			xd[row*src.nin+2+n] = (BoxCox(f.Yi[n][ind], src.Lambda) - src.Mean[2+n]) / src.Scale[2+n]
		}
		row++
	})
	var (
		x = mat.NewDense(batch, src.nin, xd)
		h = mat.NewDense(batch, src.hidden, nil)
		o = mat.NewDense(batch, src.nout, nil)
	)
	h.Mul(x, src.W1.T())
	hd := h.RawMatrix()
	for r := 0; r < batch; r++ {
		for c := 0; c < src.hidden; c++ {
			hd.Data[r*hd.Stride+c] = math.Tanh(hd.Data[r*hd.Stride+c] + src.B1[c])
		}
	}
	o.Mul(h, src.W2.T())
	od := o.RawMatrix()
	for r := 0; r < batch; r++ {
		var (
			ind    = inds[r]
			rho    = f.Q.Rho[ind]
			u      = f.Q.U[ind]
			v      = f.Q.V[ind]
			w      = f.Q.W[ind]
			denorm = func(c int) float64 {
				z := od.Data[r*od.Stride+c] + src.B2[c]
				return BoxCoxInv(z*src.OScale[c]+src.OMean[c], src.Lambda)
			}
			T = denorm(0)
		)
		var ysum float64
		for n := 0; n < f.Nspec; n++ {
			f.Yi[n][ind] = denorm(1 + n)
			ysum += f.Yi[n][ind]
		}
		for n := 0; n < f.Nspec; n++ {
			f.Yi[n][ind] /= ysum
			f.Rhoi[n][ind] = f.Yi[n][ind] * rho
		}
		e := mx.InternalEnergy(f.Yi, ind, T)
		f.U.E[ind] = rho * (e + 0.5*(u*u+v*v+w*w))
	}
	return
}
