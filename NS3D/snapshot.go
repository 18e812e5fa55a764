package NS3D

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// WriteSnapshot emits a legacy-VTK structured grid file for this
// rank's interior cells, one file per rank per output step. Fields are
// written at float32 precision, which is plenty for visualization.
func (ns *NS) WriteSnapshot(rs *RankState, steps int) (err error) {
	var (
		g    = rs.G
		ip   = ns.IP
		name = filepath.Join(outputDir(ns),
			fmt.Sprintf("snap_r%03d_%06d.vtk", g.Rank, steps))
	)
	if err = os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return
	}
	fh, err := os.Create(name)
	if err != nil {
		return
	}
	defer fh.Close()
	var (
		w    = bufio.NewWriter(fh)
		npts = g.Nxp * g.Ny * g.Nz
		f    = rs.F
		m    = rs.M
	)
	fmt.Fprintf(w, "# vtk DataFile Version 2.0\n")
	fmt.Fprintf(w, "%s rank %d step %d\n", ip.Title, g.Rank, steps)
	fmt.Fprintf(w, "ASCII\n")
	fmt.Fprintf(w, "DATASET STRUCTURED_GRID\n")
	fmt.Fprintf(w, "DIMENSIONS %d %d %d\n", g.Nxp, g.Ny, g.Nz)
	fmt.Fprintf(w, "POINTS %d float\n", npts)
	ns.eachVTKCell(rs, func(ind int) {
		fmt.Fprintf(w, "%.7e %.7e %.7e\n",
			float32(m.X[ind]), float32(m.Y[ind]), float32(m.Z[ind]))
	})
	fmt.Fprintf(w, "\nPOINT_DATA %d\n", npts)
	scalars := []struct {
		name string
		data []float64
	}{
		{"density", f.Q.Rho},
		{"u", f.Q.U},
		{"v", f.Q.V},
		{"w", f.Q.W},
		{"pressure", f.Q.P},
		{"temperature", f.Q.T},
		{"viscosity", rs.Tr.Mu},
		{"conductivity", rs.Tr.Kappa},
	}
	for _, sp := range ip.SnapshotSpecies {
		n := ns.Mixture.SpeciesIndex(sp)
		if n < 0 {
			return fmt.Errorf("snapshot species %s is not in the mixture", sp)
		}
		scalars = append(scalars, struct {
			name string
			data []float64
		}{"Y_" + sp, f.Yi[n]})
	}
	for _, sc := range scalars {
		fmt.Fprintf(w, "SCALARS %s float\n", sc.name)
		fmt.Fprintf(w, "LOOKUP_TABLE default\n")
		ns.eachVTKCell(rs, func(ind int) {
			fmt.Fprintf(w, "%.7e\n", float32(sc.data[ind]))
		})
	}
	fmt.Fprintf(w, "SCALARS sensor float\n")
	fmt.Fprintf(w, "LOOKUP_TABLE default\n")
	ns.eachVTKCell(rs, func(ind int) {
		phi := math.Max(rs.Sensor.Phi[0][ind],
			math.Max(rs.Sensor.Phi[1][ind], rs.Sensor.Phi[2][ind]))
		fmt.Fprintf(w, "%.7e\n", float32(phi))
	})
	err = w.Flush()
	return
}

// eachVTKCell visits interior cells in VTK point order, first index
// fastest.
func (ns *NS) eachVTKCell(rs *RankState, visit func(ind int)) {
	var (
		g = rs.G
	)
	for k := g.NG; k < g.NG+g.Nz; k++ {
		for j := g.NG; j < g.NG+g.Ny; j++ {
			for i := g.NG; i < g.NG+g.Nxp; i++ {
				visit(g.Index(i, j, k))
			}
		}
	}
}
