package grid

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// MetricNames are the dataset names of the nine curvilinear derivative
// metrics in a metrics file, in storage order.
var MetricNames = []string{"xix", "xiy", "xiz", "etax", "etay", "etaz", "zetax", "zetay", "zetaz"}

// Metrics holds the curvilinear metric tensor, Jacobian and physical
// coordinates for one rank's extended slab. Read-only during stepping.
type Metrics struct {
	// Derivative metrics, one value per extended cell: d(xi)/dx etc.
	XiX, XiY, XiZ       []float64
	EtaX, EtaY, EtaZ    []float64
	ZetaX, ZetaY, ZetaZ []float64
	J                   []float64 // Coordinate Jacobian det(dx/dxi)
	X, Y, Z             []float64 // Physical cell center coordinates
}

func (m *Metrics) terms() []*[]float64 {
	return []*[]float64{
		&m.XiX, &m.XiY, &m.XiZ,
		&m.EtaX, &m.EtaY, &m.EtaZ,
		&m.ZetaX, &m.ZetaY, &m.ZetaZ,
	}
}

// NewUniformMetrics builds the analytic metrics of a uniform Cartesian
// grid spanning [0,xMax]x[0,yMax]x[0,zMax], including ghost extension.
func NewUniformMetrics(g *Grid, xMax, yMax, zMax float64) (m *Metrics) {
	var (
		ncell = g.Ncell()
		dx    = xMax / float64(g.Nx)
		dy    = yMax / float64(g.Ny)
		dz    = zMax / float64(g.Nz)
	)
	m = &Metrics{}
	for _, t := range m.terms() {
		*t = make([]float64, ncell)
	}
	m.J = make([]float64, ncell)
	m.X = make([]float64, ncell)
	m.Y = make([]float64, ncell)
	m.Z = make([]float64, ncell)
	jac := dx * dy * dz
	for k := 0; k < g.NzT; k++ {
		for j := 0; j < g.NyT; j++ {
			for i := 0; i < g.NxT; i++ {
				ind := g.Index(i, j, k)
				m.XiX[ind] = 1. / dx
				m.EtaY[ind] = 1. / dy
				m.ZetaZ[ind] = 1. / dz
				m.J[ind] = jac
				// Ghost coordinates extend past the domain, used only by the snapshot writer
				m.X[ind] = (float64(g.IMin+i-g.NG) + 0.5) * dx
				m.Y[ind] = (float64(j-g.NG) + 0.5) * dy
				m.Z[ind] = (float64(k-g.NG) + 0.5) * dz
			}
		}
	}
	return
}

// LoadMetrics reads this rank's slab of a pre-computed metrics file. The
// file carries one (Nx,Ny,Nz) float64 dataset per metric name plus "jac"
// and coordinates "x","y","z"; the slab is sliced along the first axis.
// Ghost metric cells are filled by nearest-interior extension.
func LoadMetrics(g *Grid, fileName string) (m *Metrics, err error) {
	f, err := hdf5.OpenFile(fileName, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("opening metrics file %s: %w", fileName, err)
	}
	defer f.Close()

	m = &Metrics{}
	fields := append([]string{}, MetricNames...)
	fields = append(fields, "jac", "x", "y", "z")
	targets := m.terms()
	targets = append(targets, &m.J, &m.X, &m.Y, &m.Z)
	for n, name := range fields {
		if *targets[n], err = readSlab(g, f, name); err != nil {
			return nil, err
		}
	}
	return
}

func readSlab(g *Grid, f *hdf5.File, name string) (data []float64, err error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("metrics dataset %s: %w", name, err)
	}
	defer dset.Close()

	filespace := dset.Space()
	defer filespace.Close()
	dims, _, err := filespace.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	if len(dims) != 3 || int(dims[0]) != g.Nx || int(dims[1]) != g.Ny || int(dims[2]) != g.Nz {
		return nil, fmt.Errorf("metrics dataset %s shaped %v, runtime grid wants [%d %d %d]",
			name, dims, g.Nx, g.Ny, g.Nz)
	}
	var (
		offset = []uint{uint(g.IMin), 0, 0}
		count  = []uint{uint(g.Nxp), uint(g.Ny), uint(g.Nz)}
		slab   = make([]float64, g.Nxp*g.Ny*g.Nz)
	)
	if err = filespace.SelectHyperslab(offset, nil, count, nil); err != nil {
		return nil, err
	}
	memspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return nil, err
	}
	defer memspace.Close()
	if err = dset.ReadSubset(&slab, memspace, filespace); err != nil {
		return nil, fmt.Errorf("reading metrics dataset %s: %w", name, err)
	}

	// Scatter the interior slab into the extended array, then extend
	// each face outward into the ghost layers.
	data = make([]float64, g.Ncell())
	for k := 0; k < g.Nz; k++ {
		for j := 0; j < g.Ny; j++ {
			for i := 0; i < g.Nxp; i++ {
				data[g.Index(i+g.NG, j+g.NG, k+g.NG)] = slab[(i*g.Ny+j)*g.Nz+k]
			}
		}
	}
	extendGhost(g, data)
	return
}

func extendGhost(g *Grid, data []float64) {
	clamp := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	for k := 0; k < g.NzT; k++ {
		for j := 0; j < g.NyT; j++ {
			for i := 0; i < g.NxT; i++ {
				if g.Interior(i, j, k) {
					continue
				}
				src := g.Index(
					clamp(i, g.NG, g.NG+g.Nxp-1),
					clamp(j, g.NG, g.NG+g.Ny-1),
					clamp(k, g.NG, g.NG+g.Nz-1))
				data[g.Index(i, j, k)] = data[src]
			}
		}
	}
}
