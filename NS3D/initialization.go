package NS3D

import (
	"fmt"
	"math"
	"strings"
)

type InitType uint

const (
	INIT_Uniform InitType = iota
	INIT_Smooth
	INIT_HotSpot
)

var (
	InitNames = map[string]InitType{
		"uniform": INIT_Uniform,
		"smooth":  INIT_Smooth,
		"hotspot": INIT_HotSpot,
	}
	InitPrintNames = []string{"Uniform Quiescent", "Smooth Density Wave", "Ignition Hot Spot"}
)

func (it InitType) Print() (txt string) {
	txt = InitPrintNames[it]
	return
}

func NewInitType(label string) (it InitType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if it, ok = InitNames[label]; !ok {
		err = fmt.Errorf("unable to use initialization named %s", label)
		panic(err)
	}
	return
}

// Reference ambient conditions shared by the analytic initializers.
const (
	initP   = 101325.
	initT   = 300.
	initVel = 50.
)

// InitializeSolution fills one rank's extended state analytically, with
// equal mass fractions across the declared species. The first ghost
// fill after construction makes the ghosts authoritative copies.
func (ns *NS) InitializeSolution(rs *RankState) {
	var (
		f  = rs.F
		m  = rs.M
		g  = rs.G
		mx = ns.Mixture
		nc = g.Ncell()
		ys = 1. / float64(f.Nspec)
	)
	for ind := 0; ind < nc; ind++ {
		for n := 0; n < f.Nspec; n++ {
			f.Yi[n][ind] = ys
		}
		var (
			p = initP
			T = initT
			u = 0.
		)
		switch ns.Case {
		case INIT_Smooth:
			// Smooth advected density wave: constant velocity and
			// pressure, sinusoidal temperature perturbation
			x := m.X[ind]
			T = initT * (1. + 0.1*math.Sin(2.*math.Pi*x/ns.XSpan))
			u = initVel
		case INIT_HotSpot:
			x, y, z := m.X[ind], m.Y[ind], m.Z[ind]
			cx, cy, cz := 0.5*ns.XSpan, 0.5*ns.YSpan, 0.5*ns.ZSpan
			r2 := (x-cx)*(x-cx) + (y-cy)*(y-cy) + (z-cz)*(z-cz)
			sigma := 0.05 * ns.XSpan
			T = initT + 1200.*math.Exp(-r2/(2*sigma*sigma))
		}
		rho := p / (mx.R(f.Yi, ind) * T)
		f.Q.Rho[ind] = rho
		f.Q.U[ind] = u
		f.Q.V[ind] = 0
		f.Q.W[ind] = 0
		f.Q.P[ind] = p
		f.Q.T[ind] = T
		for n := 0; n < f.Nspec; n++ {
			f.Rhoi[n][ind] = f.Yi[n][ind] * rho
		}
		f.ConsFromPrim(mx, ind)
	}
}
