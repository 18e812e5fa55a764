/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/flowphys/gocns/InputParameters"
	"github.com/flowphys/gocns/NS3D"
)

type Model3D struct {
	ICFile  string
	NRanks  int
	Profile bool
}

// ThreeDCmd represents the NS3D command
var ThreeDCmd = &cobra.Command{
	Use:   "NS3D",
	Short: "Three dimensional multi-species reacting Navier-Stokes solver",
	Long: `Three dimensional multi-species reacting Navier-Stokes solver on a
curvilinear structured grid, decomposed into slabs run by parallel ranks`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("NS3D called")
		m3d := &Model3D{}
		if m3d.ICFile, err = cmd.Flags().GetString("inputParametersFile"); err != nil {
			panic(err)
		}
		m3d.NRanks, _ = cmd.Flags().GetInt("ranks")
		m3d.Profile, _ = cmd.Flags().GetBool("profile")
		ip := processInput3D(m3d)
		Run3D(m3d, ip)
	},
}

func processInput3D(m3d *Model3D) (ip *InputParameters.InputParameters3D) {
	var (
		err error
	)
	if len(m3d.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputParametersFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Reacting Shear Layer"
CFL: 0.5
FluxType: Lax
InitType: Smooth
Nx: 64
Ny: 32
Nz: 32
NRanks: 4
FinalTime: 1.e-3
Species:
  - Name: O2
    MolecularWeight: 31.9988
    Cp: 918.0
  - Name: N2
    MolecularWeight: 28.0134
    Cp: 1040.0
BCs:
  XMin: periodic
  XMax: periodic
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(m3d.ICFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.InputParameters3D{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	if m3d.NRanks != 0 {
		ip.NRanks = m3d.NRanks
	}
	return
}

func init() {
	rootCmd.AddCommand(ThreeDCmd)
	ThreeDCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file with the case definition:\n\t- grid and decomposition\n\t- species and reactions\n\t- BCs, CFL, output cadence")
	ThreeDCmd.Flags().IntP("ranks", "p", 0, "number of parallel ranks, overrides the input file when nonzero")
	ThreeDCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

func Run3D(m3d *Model3D, ip *InputParameters.InputParameters3D) {
	if m3d.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	nProcs := ip.NRanks
	if nProcs == 0 {
		nProcs = 1 // Validate defaults an unset decomposition to a single rank
	}
	c := NS3D.NewNS3D(ip, nProcs)
	if err := c.Solve(); err != nil {
		fmt.Printf("solver failed: %s\n", err.Error())
		os.Exit(1)
	}
}
