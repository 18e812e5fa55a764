package NS3D

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/hdf5"
)

const (
	dsetQ    = "Q"
	dsetRhoi = "rhoi"
)

// Checkpointer performs the collective restart I/O: one shared file per
// checkpoint holding two datasets, the primitive-equivalent field and
// the species-density field, each chunked per rank along the leading
// axis. Every rank must participate in a write or it hangs at the
// enclosing barriers; the library calls themselves are serialized
// through a mutex since the HDF5 runtime is not thread safe.
type Checkpointer struct {
	ns      *NS
	mu      sync.Mutex
	pending string // File created by rank 0 for the current collective write
}

func NewCheckpointer(ns *NS) *Checkpointer {
	return &Checkpointer{ns: ns}
}

// qArrays is the checkpointed primitive-equivalent variable set.
func qArrays(f *Fields) [][]float64 {
	return [][]float64{f.Q.Rho, f.Q.U, f.Q.V, f.Q.W, f.Q.P, f.Q.T}
}

func (cp *Checkpointer) fileDims(nvar int) []uint {
	var (
		g = cp.ns.Ranks[0].G
	)
	return []uint{uint(cp.ns.NRanks), uint(g.NxT), uint(g.NyT), uint(g.NzT), uint(nvar)}
}

// Write saves the full-domain state for this step. Rank 0 creates the
// file and its datasets; all ranks then write their own chunk.
func (cp *Checkpointer) Write(rs *RankState, steps int) (err error) {
	var (
		ns = cp.ns
		g  = rs.G
	)
	if g.Rank == 0 {
		name := filepath.Join(outputDir(ns), fmt.Sprintf("restart_%06d.h5", steps))
		if err = cp.create(name); err == nil {
			cp.pending = name
		}
	}
	// The error shares double as the enclosing barriers: every rank sees
	// a creation or chunk failure and exits the collective together
	// instead of leaving survivors parked a barrier generation behind
	if err = ns.shareError(g.Rank, err); err != nil {
		return
	}
	cp.mu.Lock()
	err = cp.writeChunk(rs, cp.pending)
	cp.mu.Unlock()
	err = ns.shareError(g.Rank, err)
	return
}

func (cp *Checkpointer) create(name string) (err error) {
	if err = os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return
	}
	f, err := hdf5.CreateFile(name, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("creating checkpoint %s: %w", name, err)
	}
	defer f.Close()
	for _, ds := range []struct {
		name string
		nvar int
	}{{dsetQ, 6}, {dsetRhoi, cp.ns.Mixture.Nspec}} {
		space, errS := hdf5.CreateSimpleDataspace(cp.fileDims(ds.nvar), nil)
		if errS != nil {
			return errS
		}
		dset, errD := f.CreateDataset(ds.name, hdf5.T_NATIVE_DOUBLE, space)
		if errD != nil {
			space.Close()
			return errD
		}
		dset.Close()
		space.Close()
	}
	return
}

func (cp *Checkpointer) writeChunk(rs *RankState, name string) (err error) {
	f, err := hdf5.OpenFile(name, hdf5.F_ACC_RDWR)
	if err != nil {
		return fmt.Errorf("opening checkpoint %s: %w", name, err)
	}
	defer f.Close()
	if err = cp.accessChunk(rs, f, dsetQ, qArrays(rs.F), false); err != nil {
		return
	}
	err = cp.accessChunk(rs, f, dsetRhoi, rs.F.Rhoi, false)
	return
}

// Restore loads this rank's chunk from a restart file. A layout
// mismatch against the runtime decomposition is fatal.
func (cp *Checkpointer) Restore(rs *RankState, name string) (err error) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	f, err := hdf5.OpenFile(name, hdf5.F_ACC_RDONLY)
	if err != nil {
		return fmt.Errorf("opening restart %s: %w", name, err)
	}
	defer f.Close()
	if err = cp.accessChunk(rs, f, dsetQ, qArrays(rs.F), true); err != nil {
		return
	}
	err = cp.accessChunk(rs, f, dsetRhoi, rs.F.Rhoi, true)
	return
}

// accessChunk moves one rank's chunk of one dataset between the file
// and the given per-variable arrays, in either direction.
func (cp *Checkpointer) accessChunk(rs *RankState, f *hdf5.File, name string, arrays [][]float64, read bool) (err error) {
	var (
		g    = rs.G
		nvar = len(arrays)
		want = cp.fileDims(nvar)
	)
	dset, err := f.OpenDataset(name)
	if err != nil {
		return fmt.Errorf("checkpoint dataset %s: %w", name, err)
	}
	defer dset.Close()
	filespace := dset.Space()
	defer filespace.Close()
	dims, _, err := filespace.SimpleExtentDims()
	if err != nil {
		return
	}
	if len(dims) != len(want) {
		return fmt.Errorf("checkpoint dataset %s has rank %d, wants %d", name, len(dims), len(want))
	}
	for n := range want {
		if dims[n] != want[n] {
			return fmt.Errorf("checkpoint dataset %s shaped %v does not match runtime layout %v",
				name, dims, want)
		}
	}
	var (
		offset = []uint{uint(g.Rank), 0, 0, 0, 0}
		count  = []uint{1, uint(g.NxT), uint(g.NyT), uint(g.NzT), uint(nvar)}
		buf    = make([]float64, g.Ncell()*nvar)
	)
	if err = filespace.SelectHyperslab(offset, nil, count, nil); err != nil {
		return
	}
	memspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return
	}
	defer memspace.Close()
	if read {
		if err = dset.ReadSubset(&buf, memspace, filespace); err != nil {
			return
		}
		cp.scatter(rs, buf, arrays)
		return
	}
	cp.gather(rs, buf, arrays)
	err = dset.WriteSubset(&buf, memspace, filespace)
	return
}

func (cp *Checkpointer) gather(rs *RankState, buf []float64, arrays [][]float64) {
	var (
		g    = rs.G
		nvar = len(arrays)
		nn   int
	)
	for i := 0; i < g.NxT; i++ {
		for j := 0; j < g.NyT; j++ {
			for k := 0; k < g.NzT; k++ {
				ind := g.Index(i, j, k)
				for v := 0; v < nvar; v++ {
					buf[nn] = arrays[v][ind]
					nn++
				}
			}
		}
	}
}

func (cp *Checkpointer) scatter(rs *RankState, buf []float64, arrays [][]float64) {
	var (
		g    = rs.G
		nvar = len(arrays)
		nn   int
	)
	for i := 0; i < g.NxT; i++ {
		for j := 0; j < g.NyT; j++ {
			for k := 0; k < g.NzT; k++ {
				ind := g.Index(i, j, k)
				for v := 0; v < nvar; v++ {
					arrays[v][ind] = buf[nn]
					nn++
				}
			}
		}
	}
}

func outputDir(ns *NS) string {
	if len(ns.IP.OutputDir) != 0 {
		return ns.IP.OutputDir
	}
	return "."
}
