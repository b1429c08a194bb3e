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
	"os"

	"github.com/cpmech/gosl/io"
	"github.com/notargets/goshell/InputParameters"
	"github.com/notargets/goshell/assembly"
	"github.com/notargets/goshell/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const exampleFile = `
########################################
Title: "Cantilever"
Material:
  E: 10000
  Nu: 0.3
  Thickness: 0.1
Corotational: false
Nodes:
  1: [0, 0, 0]
  2: [1, 0, 0]
  3: [0, 1, 0]
  4: [1, 1, 0]
Elements:
  1: [1, 2, 4, 3]
Fix: # node: {dof: value}, dofs 0-5 = ux uy uz rx ry rz
  1: {0: 0, 1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
  3: {0: 0, 1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
Loads:
  2: {2: 0.01}
  4: {2: 0.01}
Responses: [stresses]
########################################
`

// ElementCmd represents the element command
var ElementCmd = &cobra.Command{
	Use:   "element",
	Short: "Static solution of a shell model read from a YAML input file",
	Long:  `Static solution of a shell model read from a YAML input file`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		inputFile, _ := cmd.Flags().GetString("inputFile")
		verbose, _ := cmd.Flags().GetBool("verbose")
		ip := processInput(inputFile)
		if verbose {
			ip.Print()
		}
		if _, _, err = RunElement(ip, viper.GetInt("parallelDegree")); err != nil {
			io.PfRed("error: %v\n", err)
			os.Exit(1)
		}
		if verbose {
			fmt.Println(utils.GetMemUsage())
		}
	},
}

func processInput(inputFile string) (ip *InputParameters.ElementInput) {
	var (
		err error
	)
	if len(inputFile) == 0 {
		err = fmt.Errorf("must supply an input file (-I, --inputFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = os.ReadFile(inputFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.ElementInput{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(ElementCmd)
	ElementCmd.Flags().StringP("inputFile", "I", "", "YAML file describing nodes, elements, material, constraints and loads")
	ElementCmd.Flags().BoolP("verbose", "v", false, "print the input parameters and memory usage")
}

// RunElement builds the model, solves it and prints the results
func RunElement(ip *InputParameters.ElementInput, ParallelDegree int) (sm *ShellModel, sol assembly.Solution, err error) {
	if sm, err = BuildModel(ip, ParallelDegree); err != nil {
		return
	}
	io.Pforan("%s: %d nodes, %d elements\n", ip.Title, sm.Mesh.NumNodes(), len(sm.Shells))
	if sol, err = sm.SolveStatic(solverOptions(ip)); err != nil {
		return
	}
	io.Pf("converged in %d iterations, residual %g\n\n", sol.Iterations, sol.Residual)
	responses := ip.Responses
	if len(responses) == 0 {
		responses = []string{"stresses"}
	}
	err = sm.Report(sol, responses)
	return
}
