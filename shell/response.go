package shell

import (
	"fmt"
)

// Response returns a named read only view of the element state:
// force (aliases forces, globalForce, globalForces), stresses, strains,
// drillingStrains, internalDOFs. Section quantities are in section axes,
// one block of NumStrains per Gauss point.
func (e *ShellQ4) Response(name string) (values []float64, err error) {
	switch name {
	case "force", "forces", "globalForce", "globalForces":
		var ctx *evalContext
		if ctx, err = e.calculateAll(optRHS); err != nil {
			return
		}
		values = append(values, ctx.R.Data()...)
	case "stresses":
		for _, sec := range e.sections {
			values = append(values, sec.StressResultant()...)
		}
	case "strains":
		for _, sec := range e.sections {
			values = append(values, sec.SectionDeformation()...)
		}
	case "drillingStrains":
		values = append(values, e.state.drill[:]...)
	case "internalDOFs":
		values = append(values, e.state.Q.Data()...)
	default:
		err = fmt.Errorf("%w: element %d: %q", ErrUnknownResponse, e.tag, name)
	}
	return
}
