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
	"math"
	"os"

	"github.com/cpmech/gosl/io"
	"github.com/notargets/goshell/InputParameters"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PatchCmd represents the patch command
var PatchCmd = &cobra.Command{
	Use:   "patch",
	Short: "MacNeal-Harder membrane patch test",
	Long: `
Solves the five element membrane patch with the linear field
u = a (x + y/2), v = a (y + x/2) imposed on the outer corners and compares the
inner node displacements and the element stresses with the exact solution.

goshell patch --corotational`,
	Run: func(cmd *cobra.Command, args []string) {
		corotational, _ := cmd.Flags().GetBool("corotational")
		amplitude, _ := cmd.Flags().GetFloat64("amplitude")
		res, err := RunPatch(corotational, amplitude, viper.GetInt("parallelDegree"))
		if err != nil {
			io.PfRed("error: %v\n", err)
			os.Exit(1)
		}
		io.Pf("max displacement error = %13.6e (relative %9.3e)\n", res.DisplacementError, res.DisplacementError/res.MaxDisplacement)
		io.Pf("max stress error       = %13.6e (relative %9.3e)\n", res.StressError, res.StressError/res.MaxStress)
		if res.Passed(1.e-10) {
			io.Pforan("patch test passed\n")
		} else {
			io.PfRed("patch test not passed to 1e-10\n")
		}
	},
}

func init() {
	rootCmd.AddCommand(PatchCmd)
	PatchCmd.Flags().BoolP("corotational", "c", false, "use corotational kinematics")
	PatchCmd.Flags().Float64P("amplitude", "a", 1.e-3, "strain amplitude of the imposed field")
}

var (
	patchE, patchNu, patchH = 1.e6, 0.25, 1.e-3
	patchNodes              = map[int][3]float64{
		1: {0, 0, 0}, 2: {0.24, 0, 0}, 3: {0.24, 0.12, 0}, 4: {0, 0.12, 0},
		5: {0.04, 0.02, 0}, 6: {0.18, 0.03, 0}, 7: {0.16, 0.08, 0}, 8: {0.08, 0.08, 0},
	}
	patchElements = map[int][4]int{
		1: {1, 2, 6, 5}, 2: {2, 3, 7, 6}, 3: {3, 4, 8, 7}, 4: {4, 1, 5, 8}, 5: {5, 6, 7, 8},
	}
)

type PatchResult struct {
	DisplacementError, MaxDisplacement float64
	StressError, MaxStress             float64
	Iterations                         int
}

func (pr PatchResult) Passed(tol float64) bool {
	return pr.DisplacementError <= tol*pr.MaxDisplacement && pr.StressError <= tol*pr.MaxStress
}

func patchField(a float64, x [3]float64) []float64 {
	return []float64{a * (x[0] + 0.5*x[1]), a * (x[1] + 0.5*x[0]), 0, 0, 0, 0}
}

func patchInput(corotational bool, a float64) (ip *InputParameters.ElementInput) {
	ip = &InputParameters.ElementInput{
		Title:        "MacNeal-Harder patch",
		Material:     InputParameters.Material{E: patchE, Nu: patchNu, Thickness: patchH},
		Corotational: corotational,
		LocalX:       []float64{1, 0, 0},
		Nodes:        patchNodes,
		Elements:     patchElements,
		Fix:          make(map[int]map[int]float64),
	}
	for tag := 1; tag <= 4; tag++ {
		ip.Fix[tag] = make(map[int]float64)
		for dof, v := range patchField(a, patchNodes[tag]) {
			ip.Fix[tag][dof] = v
		}
	}
	return
}

// RunPatch solves the membrane patch and measures it against the exact
// homogeneous state
func RunPatch(corotational bool, a float64, ParallelDegree int) (res PatchResult, err error) {
	var (
		ip = patchInput(corotational, a)
		sm *ShellModel
	)
	if sm, err = BuildModel(ip, ParallelDegree); err != nil {
		return
	}
	sol, err := sm.SolveStatic(solverOptions(ip))
	if err != nil {
		return
	}
	res.Iterations = sol.Iterations
	for _, tag := range sm.Mesh.Tags() {
		n, err := sm.Mesh.BasicNode(tag)
		if err != nil {
			return res, err
		}
		for dof, u := range patchField(a, patchNodes[tag]) {
			res.MaxDisplacement = math.Max(res.MaxDisplacement, math.Abs(u))
			res.DisplacementError = math.Max(res.DisplacementError, math.Abs(n.TrialDisp()[dof]-u))
		}
	}
	var (
		c     = patchE / (1 - patchNu*patchNu)
		N     = patchH * c * (1 + patchNu) * a
		Nxy   = patchH * patchE / (2 * (1 + patchNu)) * a
		exact = []float64{N, N, Nxy, 0, 0, 0, 0, 0}
	)
	res.MaxStress = N
	for _, e := range sm.Shells {
		var s []float64
		if s, err = e.Response("stresses"); err != nil {
			return
		}
		for i, v := range s {
			res.StressError = math.Max(res.StressError, math.Abs(v-exact[i%len(exact)]))
		}
	}
	return
}
