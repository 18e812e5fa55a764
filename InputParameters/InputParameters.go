package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// SpeciesParameters holds the per-species constants used by the mixture
// thermodynamic and transport closures.
type SpeciesParameters struct {
	Name    string  `json:"Name" yaml:"Name"`
	W       float64 `json:"MolecularWeight" yaml:"MolecularWeight"` // kg/kmol
	Cp      float64 `json:"Cp" yaml:"Cp"`                          // J/(kg K), calorically perfect
	MuRef   float64 `json:"MuRef" yaml:"MuRef"`                    // Reference dynamic viscosity at TRef
	TRef    float64 `json:"TRef" yaml:"TRef"`
	SMu     float64 `json:"SutherlandT" yaml:"SutherlandT"` // Sutherland temperature
	Pr      float64 `json:"Prandtl" yaml:"Prandtl"`
	Lewis   float64 `json:"Lewis" yaml:"Lewis"`
	Enthalp float64 `json:"HeatOfFormation" yaml:"HeatOfFormation"` // J/kg at reference temperature
}

// ReactionParameters declares one elementary irreversible reaction with
// Arrhenius rate k = A * T^b * exp(-Ea/(Ru*T)).
type ReactionParameters struct {
	A         float64            `json:"A" yaml:"A"`
	B         float64            `json:"b" yaml:"b"`
	Ea        float64            `json:"Ea" yaml:"Ea"` // J/kmol
	Reactants map[string]float64 `json:"Reactants" yaml:"Reactants"`
	Products  map[string]float64 `json:"Products" yaml:"Products"`
}

// Parameters obtained from the YAML input file
type InputParameters3D struct {
	Title              string               `json:"Title" yaml:"Title"`
	CFL                float64              `json:"CFL" yaml:"CFL"`
	FinalTime          float64              `json:"FinalTime" yaml:"FinalTime"`
	FluxType           string               `json:"FluxType" yaml:"FluxType"`
	InitType           string               `json:"InitType" yaml:"InitType"`
	Nx                 int                  `json:"Nx" yaml:"Nx"`
	Ny                 int                  `json:"Ny" yaml:"Ny"`
	Nz                 int                  `json:"Nz" yaml:"Nz"`
	NGhost             int                  `json:"NGhost" yaml:"NGhost"`
	NRanks             int                  `json:"NRanks" yaml:"NRanks"`
	XMax               float64              `json:"XMax" yaml:"XMax"`
	YMax               float64              `json:"YMax" yaml:"YMax"`
	ZMax               float64              `json:"ZMax" yaml:"ZMax"`
	Gamma              float64              `json:"Gamma" yaml:"Gamma"`
	BCs                map[string]string    `json:"BCs" yaml:"BCs"` // Key is face name: XMin, XMax, YMin, YMax, ZMin, ZMax
	Species            []SpeciesParameters  `json:"Species" yaml:"Species"`
	Reactions          []ReactionParameters `json:"Reactions" yaml:"Reactions"`
	Chemistry          string               `json:"Chemistry" yaml:"Chemistry"` // none, arrhenius, surrogate
	SurrogateFile      string               `json:"SurrogateFile" yaml:"SurrogateFile"`
	MetricsFile        string               `json:"MetricsFile" yaml:"MetricsFile"` // Empty selects the analytic uniform grid
	RestartFile        string               `json:"RestartFile" yaml:"RestartFile"`
	CheckpointInterval int                  `json:"CheckpointInterval" yaml:"CheckpointInterval"`
	SnapshotInterval   int                  `json:"SnapshotInterval" yaml:"SnapshotInterval"`
	SnapshotSpecies    []string             `json:"SnapshotSpecies" yaml:"SnapshotSpecies"`
	OutputDir          string               `json:"OutputDir" yaml:"OutputDir"`
	MaxIterations      int                  `json:"MaxIterations" yaml:"MaxIterations"`
	CheckInterval      int                  `json:"CheckInterval" yaml:"CheckInterval"` // Steps between NaN/admissibility sweeps
	SensorKappa        float64              `json:"SensorKappa" yaml:"SensorKappa"`     // Shock sensor sharpness
}

func (ip *InputParameters3D) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	return ip.Validate()
}

// Validate applies defaults and rejects configurations that can not be
// run. Called before any solver state is allocated.
func (ip *InputParameters3D) Validate() error {
	if ip.Nx <= 0 || ip.Ny <= 0 || ip.Nz <= 0 {
		return fmt.Errorf("grid extents must be positive, have [%d,%d,%d]", ip.Nx, ip.Ny, ip.Nz)
	}
	if ip.NGhost == 0 {
		ip.NGhost = 3
	}
	if ip.NRanks == 0 {
		ip.NRanks = 1
	}
	if ip.Nx%ip.NRanks != 0 {
		return fmt.Errorf("Nx=%d is not divisible by NRanks=%d", ip.Nx, ip.NRanks)
	}
	if ip.Nx/ip.NRanks < ip.NGhost {
		return fmt.Errorf("rank slab width %d is thinner than the ghost depth %d", ip.Nx/ip.NRanks, ip.NGhost)
	}
	if len(ip.Species) == 0 {
		return fmt.Errorf("at least one species must be declared")
	}
	if ip.Gamma == 0 {
		ip.Gamma = 1.4
	}
	if ip.CFL == 0 {
		ip.CFL = 0.5
	}
	if ip.CheckInterval == 0 {
		ip.CheckInterval = 10
	}
	if ip.SensorKappa == 0 {
		ip.SensorKappa = 10.
	}
	if ip.Chemistry == "" {
		ip.Chemistry = "none"
	}
	if ip.Chemistry == "surrogate" && len(ip.SurrogateFile) == 0 {
		return fmt.Errorf("surrogate chemistry requires a SurrogateFile")
	}
	if ip.Chemistry == "arrhenius" && len(ip.Reactions) == 0 {
		return fmt.Errorf("arrhenius chemistry requires a Reactions block")
	}
	for _, face := range []string{"XMin", "XMax", "YMin", "YMax", "ZMin", "ZMax"} {
		if _, present := ip.BCs[face]; !present {
			if ip.BCs == nil {
				ip.BCs = make(map[string]string)
			}
			ip.BCs[face] = "periodic"
		}
	}
	return nil
}

func (ip *InputParameters3D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.FluxType)
	fmt.Printf("[%s]\t= InitType\n", ip.InitType)
	fmt.Printf("[%d x %d x %d]\t\t= Grid, %d ghost layers\n", ip.Nx, ip.Ny, ip.Nz, ip.NGhost)
	fmt.Printf("[%d]\t\t\t\t= Ranks\n", ip.NRanks)
	fmt.Printf("[%d]\t\t\t\t= Species\n", len(ip.Species))
	fmt.Printf("[%s]\t\t\t= Chemistry\n", ip.Chemistry)
	keys := make([]string, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}
