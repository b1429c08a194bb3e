package shell

import "errors"

var (
	ErrGeometry             = errors.New("degenerate element geometry")
	ErrCondensationSingular = errors.New("internal dof condensation matrix is singular")
	ErrMaterialFailure      = errors.New("section failed to accept trial deformation")
	ErrSerialization        = errors.New("element serialization failed")
	ErrUnknownResponse      = errors.New("unknown element response")
	ErrUnknownLoad          = errors.New("unsupported element load")
	ErrNotInitialized       = errors.New("element domain not set")
)
