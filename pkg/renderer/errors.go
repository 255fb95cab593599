package renderer

import "errors"

var (
	ErrNoScene          = errors.New("renderer: no scene specified")
	ErrNoCamera         = errors.New("renderer: no camera specified")
	ErrInvalidConfig    = errors.New("renderer: invalid configuration")
	ErrWorkerPoolClosed = errors.New("renderer: worker pool closed unexpectedly")
	ErrTileFailed       = errors.New("renderer: tile render failed")
)
