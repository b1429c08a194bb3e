package cmd

import (
	"fmt"

	"github.com/cpmech/gosl/io"
	"github.com/notargets/goshell/InputParameters"
	"github.com/notargets/goshell/assembly"
	"github.com/notargets/goshell/domain"
	"github.com/notargets/goshell/readfiles"
	"github.com/notargets/goshell/section"
	"github.com/notargets/goshell/shell"
	"gonum.org/v1/gonum/spatial/r3"
)

type ShellModel struct {
	*assembly.Model
	Shells []*shell.ShellQ4
}

func elementOptions(ip *InputParameters.ElementInput) (opts []shell.Option) {
	if ip.Corotational {
		opts = append(opts, shell.WithCorotational())
	}
	if ip.LumpedMass {
		opts = append(opts, shell.WithLumpedMass())
	}
	if len(ip.LocalX) == 3 {
		opts = append(opts, shell.WithLocalX(r3.Vec{X: ip.LocalX[0], Y: ip.LocalX[1], Z: ip.LocalX[2]}))
	}
	r := shell.Rayleigh{
		AlphaM: ip.Rayleigh.AlphaM, BetaK: ip.Rayleigh.BetaK,
		BetaK0: ip.Rayleigh.BetaK0, BetaKc: ip.Rayleigh.BetaKc,
	}
	if !r.IsZero() {
		opts = append(opts, shell.WithRayleigh(r))
	}
	return
}

// mergeMesh adds the mesh nodes and elements to the input and turns the
// marker constraints into nodal ones
func mergeMesh(ip *InputParameters.ElementInput, mesh *readfiles.SU2Mesh) (err error) {
	if ip.Nodes == nil {
		ip.Nodes = make(map[int][3]float64)
	}
	if ip.Elements == nil {
		ip.Elements = make(map[int][4]int)
	}
	if ip.Fix == nil {
		ip.Fix = make(map[int]map[int]float64)
	}
	for tag, x := range mesh.Nodes {
		if _, present := ip.Nodes[tag]; present {
			return fmt.Errorf("node %d defined in the input and in the mesh", tag)
		}
		ip.Nodes[tag] = x
	}
	for tag, el := range mesh.Elements {
		if _, present := ip.Elements[tag]; present {
			return fmt.Errorf("element %d defined in the input and in the mesh", tag)
		}
		ip.Elements[tag] = el
	}
	for name, dofs := range ip.FixMarkers {
		nodes, present := mesh.Markers[name]
		if !present {
			return fmt.Errorf("marker %q not found in the mesh", name)
		}
		for _, tag := range nodes {
			if ip.Fix[tag] == nil {
				ip.Fix[tag] = make(map[int]float64)
			}
			for dof, v := range dofs {
				ip.Fix[tag][dof] = v
			}
		}
	}
	return
}

// BuildModel creates nodes, elements, constraints and loads from the input
func BuildModel(ip *InputParameters.ElementInput, ParallelDegree int) (sm *ShellModel, err error) {
	if len(ip.MeshFile) != 0 {
		var mesh *readfiles.SU2Mesh
		if mesh, err = readfiles.ReadSU2(ip.MeshFile, false); err != nil {
			return
		}
		if err = mergeMesh(ip, mesh); err != nil {
			return
		}
		ip.MeshFile = ""
	}
	if err = ip.Validate(); err != nil {
		return
	}
	var (
		mesh = domain.NewMesh()
		sec  *section.ElasticMembranePlate
	)
	for _, tag := range ip.SortedNodes() {
		x := ip.Nodes[tag]
		if err = mesh.AddNode(domain.NewBasicNode(tag, x[0], x[1], x[2])); err != nil {
			return
		}
	}
	mp := ip.Material
	if sec, err = section.NewElasticMembranePlate(mp.E, mp.Nu, mp.Thickness, mp.Rho); err != nil {
		return
	}
	if ip.ParallelDegree != 0 {
		ParallelDegree = ip.ParallelDegree
	}
	sm = &ShellModel{Model: assembly.NewModel(mesh, ParallelDegree)}
	opts := elementOptions(ip)
	for _, tag := range ip.SortedElements() {
		var e *shell.ShellQ4
		if e, err = shell.NewShellQ4(tag, ip.Elements[tag], sec, opts...); err != nil {
			return
		}
		if err = sm.AddElement(e); err != nil {
			return
		}
		if ip.Pressure != 0 {
			if err = e.AddLoad(shell.SurfacePressure{Pressure: ip.Pressure}, 1); err != nil {
				return
			}
		}
		if len(ip.SelfWeight) == 3 {
			g := r3.Vec{X: ip.SelfWeight[0], Y: ip.SelfWeight[1], Z: ip.SelfWeight[2]}
			if err = e.AddLoad(shell.SelfWeight{Accel: g}, 1); err != nil {
				return
			}
		}
		sm.Shells = append(sm.Shells, e)
	}
	for _, tag := range ip.SortedFix() {
		for dof, v := range ip.Fix[tag] {
			if err = sm.Fix(tag, dof, v); err != nil {
				return
			}
		}
	}
	for _, tag := range ip.SortedLoads() {
		for dof, v := range ip.Loads[tag] {
			if err = sm.AddNodalLoad(tag, dof, v); err != nil {
				return
			}
		}
	}
	return
}

func solverOptions(ip *InputParameters.ElementInput) (opts assembly.SolverOptions) {
	opts = assembly.DefaultSolverOptions()
	if ip.MaxIterations > 0 {
		opts.MaxIterations = ip.MaxIterations
	}
	if ip.Tolerance > 0 {
		opts.Tolerance = ip.Tolerance
	}
	return
}

// Report prints nodal displacements, reactions and the requested element responses
func (sm *ShellModel) Report(sol assembly.Solution, responses []string) (err error) {
	io.Pf("%6s %13s %13s %13s %13s %13s %13s\n", "node", "ux", "uy", "uz", "rx", "ry", "rz")
	for _, tag := range sm.Mesh.Tags() {
		var n *domain.BasicNode
		if n, err = sm.Mesh.BasicNode(tag); err != nil {
			return
		}
		io.Pf("%6d", tag)
		for _, u := range n.TrialDisp() {
			io.Pf(" %13.6e", u)
		}
		io.Pf("\n")
	}
	io.Pf("\nreactions\n")
	for _, tag := range sm.Mesh.Tags() {
		var (
			eq    int
			fixed bool
		)
		if eq, err = sm.Mesh.EquationNumber(tag, 0); err != nil {
			return
		}
		for dof := 0; dof < domain.NodeDOF; dof++ {
			fixed = fixed || sm.IsFixed(eq+dof)
		}
		if !fixed {
			continue
		}
		io.Pf("%6d", tag)
		for _, r := range sol.Reactions[eq : eq+domain.NodeDOF] {
			io.Pf(" %13.6e", r)
		}
		io.Pf("\n")
	}
	for _, name := range responses {
		io.Pf("\n%s\n", name)
		for _, e := range sm.Shells {
			var values []float64
			if values, err = e.Response(name); err != nil {
				return fmt.Errorf("element %d: %w", e.Tag(), err)
			}
			io.Pf("%6d %v\n", e.Tag(), io.Sf("%13.6e", values))
		}
	}
	return
}
