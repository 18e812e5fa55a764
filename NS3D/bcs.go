package NS3D

import (
	"fmt"
	"strings"
)

type Face int

const (
	FaceXMin Face = iota
	FaceXMax
	FaceYMin
	FaceYMax
	FaceZMin
	FaceZMax
)

var FaceNames = []string{"XMin", "XMax", "YMin", "YMax", "ZMin", "ZMax"}

func (fc Face) Print() (txt string) {
	txt = FaceNames[fc]
	return
}

// Axis is the logical axis normal to the face: 0, 1 or 2.
func (fc Face) Axis() int { return int(fc) / 2 }

// High reports whether the face sits at the maximum end of its axis.
func (fc Face) High() bool { return int(fc)%2 == 1 }

type BCType uint

const (
	BC_Periodic BCType = iota
	BC_Reflective
	BC_Outflow
)

var (
	BCNames = map[string]BCType{
		"periodic":   BC_Periodic,
		"reflective": BC_Reflective,
		"outflow":    BC_Outflow,
	}
	BCPrintNames = []string{"Periodic", "Reflective", "Outflow"}
)

func (bc BCType) Print() (txt string) {
	txt = BCPrintNames[bc]
	return
}

func NewBCType(label string) (bc BCType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if bc, ok = BCNames[label]; !ok {
		err = fmt.Errorf("unable to use boundary condition named %s", label)
		panic(err)
	}
	return
}

// ApplyBC populates the ghost layers of one physical (domain edge) face.
// It sweeps the full extent of the two tangential axes so that edge and
// corner ghosts inherit the tangential fills already applied. Periodic
// faces along the decomposition axis are not handled here; they are
// resolved by the halo exchange.
func ApplyBC(f *Fields, face Face, bc BCType) {
	var (
		g          = f.G
		axLen      = [3]int{g.Nxp, g.Ny, g.Nz}
		axTot      = [3]int{g.NxT, g.NyT, g.NzT}
		axis       = face.Axis()
		n          = axLen[axis]
		NG         = g.NG
	)
	// source returns the extended-space source index along the face
	// normal for ghost layer c in [0,NG)
	source := func(c int) (gi, si int) {
		if face.High() {
			gi = NG + n + c
			switch bc {
			case BC_Periodic:
				si = gi - n
			case BC_Reflective:
				si = NG + n - 1 - c
			case BC_Outflow:
				si = NG + n - 1
			}
		} else {
			gi = NG - 1 - c
			switch bc {
			case BC_Periodic:
				si = gi + n
			case BC_Reflective:
				si = NG + c
			case BC_Outflow:
				si = NG
			}
		}
		return
	}
	// The normal velocity flips sign under reflection
	var sign [3]float64
	sign[0], sign[1], sign[2] = 1, 1, 1
	if bc == BC_Reflective {
		sign[axis] = -1
	}
	fill := func(gInd, sInd int) {
		f.Q.Rho[gInd] = f.Q.Rho[sInd]
		f.Q.U[gInd] = sign[0] * f.Q.U[sInd]
		f.Q.V[gInd] = sign[1] * f.Q.V[sInd]
		f.Q.W[gInd] = sign[2] * f.Q.W[sInd]
		f.Q.P[gInd] = f.Q.P[sInd]
		f.Q.T[gInd] = f.Q.T[sInd]
		for sp := 0; sp < f.Nspec; sp++ {
			f.Rhoi[sp][gInd] = f.Rhoi[sp][sInd]
		}
	}
	for c := 0; c < NG; c++ {
		gi, si := source(c)
		switch axis {
		case 0:
			for k := 0; k < axTot[2]; k++ {
				for j := 0; j < axTot[1]; j++ {
					fill(g.Index(gi, j, k), g.Index(si, j, k))
				}
			}
		case 1:
			for k := 0; k < axTot[2]; k++ {
				for i := 0; i < axTot[0]; i++ {
					fill(g.Index(i, gi, k), g.Index(i, si, k))
				}
			}
		case 2:
			for j := 0; j < axTot[1]; j++ {
				for i := 0; i < axTot[0]; i++ {
					fill(g.Index(i, j, gi), g.Index(i, j, si))
				}
			}
		}
	}
}
