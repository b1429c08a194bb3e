package shell

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// LocalCoordinateSystem is the element frame built from four node positions.
// The orientation rows are the local axes, so it maps global to local.
type LocalCoordinateSystem struct {
	center      r3.Vec
	e1, e2, e3  r3.Vec
	local       [NumNodes]r3.Vec
	orientation *r3.Mat
	area        float64
}

func NewLocalCoordinateSystem(p [NumNodes]r3.Vec) (lcs *LocalCoordinateSystem) {
	var (
		center r3.Vec
	)
	for _, pt := range p {
		center = r3.Add(center, pt)
	}
	center = r3.Scale(0.25, center)
	// Center lines of the quad define the in-plane directions
	e1v := r3.Sub(r3.Scale(0.5, r3.Add(p[1], p[2])), r3.Scale(0.5, r3.Add(p[0], p[3])))
	e2v := r3.Sub(r3.Scale(0.5, r3.Add(p[2], p[3])), r3.Scale(0.5, r3.Add(p[0], p[1])))
	e3 := r3.Unit(r3.Cross(e1v, e2v))
	e1 := r3.Unit(e1v)
	e2 := r3.Cross(e3, e1)
	lcs = &LocalCoordinateSystem{
		center: center,
		e1:     e1,
		e2:     e2,
		e3:     e3,
		orientation: r3.NewMat([]float64{
			e1.X, e1.Y, e1.Z,
			e2.X, e2.Y, e2.Z,
			e3.X, e3.Y, e3.Z,
		}),
	}
	for i, pt := range p {
		lcs.local[i] = lcs.orientation.MulVec(r3.Sub(pt, center))
	}
	lcs.area = 0.5 * ((lcs.X(2)-lcs.X(0))*(lcs.Y(3)-lcs.Y(1)) - (lcs.X(3)-lcs.X(1))*(lcs.Y(2)-lcs.Y(0)))
	return
}

func (lcs *LocalCoordinateSystem) X(i int) float64 { return lcs.local[i].X }
func (lcs *LocalCoordinateSystem) Y(i int) float64 { return lcs.local[i].Y }

// Warpage is the out of plane offset of node i from the mean plane
func (lcs *LocalCoordinateSystem) Warpage(i int) float64 { return lcs.local[i].Z }

func (lcs *LocalCoordinateSystem) LocalNode(i int) r3.Vec { return lcs.local[i] }
func (lcs *LocalCoordinateSystem) Center() r3.Vec         { return lcs.center }
func (lcs *LocalCoordinateSystem) E1() r3.Vec             { return lcs.e1 }
func (lcs *LocalCoordinateSystem) E2() r3.Vec             { return lcs.e2 }
func (lcs *LocalCoordinateSystem) E3() r3.Vec             { return lcs.e3 }
func (lcs *LocalCoordinateSystem) Orientation() *r3.Mat   { return lcs.orientation }

// Area is the signed area of the projected quad, positive for counter
// clockwise node order about e3
func (lcs *LocalCoordinateSystem) Area() float64 { return lcs.area }

func (lcs *LocalCoordinateSystem) ToLocal(v r3.Vec) r3.Vec  { return lcs.orientation.MulVec(v) }
func (lcs *LocalCoordinateSystem) ToGlobal(v r3.Vec) r3.Vec { return lcs.orientation.MulVecTrans(v) }
