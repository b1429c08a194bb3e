package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
	"go.uber.org/multierr"
)

type Material struct {
	E         float64 `json:"E"`
	Nu        float64 `json:"Nu"`
	Thickness float64 `json:"Thickness"`
	Rho       float64 `json:"Rho"`
}

type Rayleigh struct {
	AlphaM float64 `json:"AlphaM"`
	BetaK  float64 `json:"BetaK"`
	BetaK0 float64 `json:"BetaK0"`
	BetaKc float64 `json:"BetaKc"`
}

// Parameters of a shell model obtained from the YAML input file
type ElementInput struct {
	Title          string                     `json:"Title"`
	Material       Material                   `json:"Material"`
	Corotational   bool                       `json:"Corotational"`
	LumpedMass     bool                       `json:"LumpedMass"`
	LocalX         []float64                  `json:"LocalX"` // Optional section x axis, projected on each element
	Rayleigh       Rayleigh                   `json:"Rayleigh"`
	MeshFile       string                     `json:"MeshFile"`   // Optional SU2 quadrilateral mesh, merged with Nodes and Elements
	FixMarkers     map[string]map[int]float64 `json:"FixMarkers"` // First key is SU2 marker name, second is dof
	Nodes          map[int][3]float64         `json:"Nodes"`
	Elements       map[int][4]int             `json:"Elements"`
	Fix            map[int]map[int]float64    `json:"Fix"`   // First key is node tag, second is dof
	Loads          map[int]map[int]float64    `json:"Loads"` // First key is node tag, second is dof
	Pressure       float64                    `json:"Pressure"`
	SelfWeight     []float64                  `json:"SelfWeight"`
	ParallelDegree int                        `json:"ParallelDegree"`
	MaxIterations  int                        `json:"MaxIterations"`
	Tolerance      float64                    `json:"Tolerance"`
	Responses      []string                   `json:"Responses"`
}

func (ip *ElementInput) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// Validate reports every inconsistency in the input at once
func (ip *ElementInput) Validate() (err error) {
	if len(ip.Elements) == 0 {
		err = multierr.Append(err, fmt.Errorf("no elements"))
	}
	for _, tag := range sortedKeys(ip.Elements) {
		for _, n := range ip.Elements[tag] {
			if _, present := ip.Nodes[n]; !present {
				err = multierr.Append(err, fmt.Errorf("element %d: node %d not defined", tag, n))
			}
		}
	}
	check := func(name string, m map[int]map[int]float64) {
		for _, tag := range sortedKeys(m) {
			if _, present := ip.Nodes[tag]; !present {
				err = multierr.Append(err, fmt.Errorf("%s: node %d not defined", name, tag))
			}
			for dof := range m[tag] {
				if dof < 0 || dof > 5 {
					err = multierr.Append(err, fmt.Errorf("%s: node %d: dof %d out of range", name, tag, dof))
				}
			}
		}
	}
	check("Fix", ip.Fix)
	check("Loads", ip.Loads)
	if len(ip.LocalX) != 0 && len(ip.LocalX) != 3 {
		err = multierr.Append(err, fmt.Errorf("LocalX must have 3 components, has %d", len(ip.LocalX)))
	}
	if len(ip.SelfWeight) != 0 && len(ip.SelfWeight) != 3 {
		err = multierr.Append(err, fmt.Errorf("SelfWeight must have 3 components, has %d", len(ip.SelfWeight)))
	}
	return
}

func (ip *ElementInput) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5g\t\t= E\n", ip.Material.E)
	fmt.Printf("%8.5f\t\t= Nu\n", ip.Material.Nu)
	fmt.Printf("%8.5g\t\t= Thickness\n", ip.Material.Thickness)
	fmt.Printf("[%v]\t\t\t= Corotational\n", ip.Corotational)
	fmt.Printf("[%d]\t\t\t\t= Nodes\n", len(ip.Nodes))
	fmt.Printf("[%d]\t\t\t\t= Elements\n", len(ip.Elements))
	for _, key := range sortedKeys(ip.Fix) {
		fmt.Printf("Fix[%d] = %v\n", key, ip.Fix[key])
	}
	for _, key := range sortedKeys(ip.Loads) {
		fmt.Printf("Loads[%d] = %v\n", key, ip.Loads[key])
	}
}

func sortedKeys[V any](m map[int]V) (keys []int) {
	keys = make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return
}

// SortedNodes returns the node tags in ascending order
func (ip *ElementInput) SortedNodes() []int { return sortedKeys(ip.Nodes) }

// SortedElements returns the element tags in ascending order
func (ip *ElementInput) SortedElements() []int { return sortedKeys(ip.Elements) }

// SortedFix returns the tags of nodes with prescribed dofs in ascending order
func (ip *ElementInput) SortedFix() []int { return sortedKeys(ip.Fix) }

// SortedLoads returns the tags of loaded nodes in ascending order
func (ip *ElementInput) SortedLoads() []int { return sortedKeys(ip.Loads) }
