package geometry

import "errors"

var (
	ErrInvalidSphere    = errors.New("geometry: invalid sphere")
	ErrDegenerateCamera = errors.New("geometry: degenerate camera")
)
