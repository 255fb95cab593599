package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// parallelTolerance bounds |sin| between the up and view vectors below which
// they are treated as parallel
const parallelTolerance = 1e-9

// CameraConfig contains all parameters needed to construct a camera
type CameraConfig struct {
	Eye    core.Vec3 // Camera position
	LookAt core.Vec3 // Point the camera is looking at
	Up     core.Vec3 // Approximate up direction; need not be orthogonal to the view
	Width  int       // Image width in pixels
	Height int       // Image height in pixels
	FovY   float64   // Full vertical field of view in radians, in (0, π)
}

// MergeCameraConfig returns base with every set field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.Eye.IsZero() {
		result.Eye = override.Eye
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.Height > 0 {
		result.Height = override.Height
	}
	if override.FovY > 0 {
		result.FovY = override.FovY
	}
	return result
}

// Camera generates primary rays for pixels.
//
// The field of view is embedded into the basis: the up vector is scaled by
// tan(FovY/2) and the right vector by tan(FovY/2)*width/height. Pixel row 0
// is the top of the image.
type Camera struct {
	eye   core.Vec3
	view  core.Vec3 // unit view direction
	up    core.Vec3 // unit up, orthogonal to view
	right core.Vec3 // unit right, view x up

	scaledUp    core.Vec3
	scaledRight core.Vec3

	width  int
	height int
	fovY   float64
}

// NewCamera creates a camera, rejecting configurations that would produce a
// degenerate basis
func NewCamera(config CameraConfig) (*Camera, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d must be positive", ErrDegenerateCamera, config.Width, config.Height)
	}
	if !(config.FovY > 0 && config.FovY < math.Pi) {
		return nil, fmt.Errorf("%w: vertical fov %g must be in (0, pi)", ErrDegenerateCamera, config.FovY)
	}
	if !config.Eye.IsFinite() || !config.LookAt.IsFinite() || !config.Up.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite eye, look-at or up vector", ErrDegenerateCamera)
	}

	viewDir := config.LookAt.Subtract(config.Eye)
	if viewDir.IsZero() {
		return nil, fmt.Errorf("%w: look-at point equals eye %v", ErrDegenerateCamera, config.Eye)
	}
	if config.Up.IsZero() {
		return nil, fmt.Errorf("%w: up vector is zero", ErrDegenerateCamera)
	}

	view := viewDir.Normalize()
	upHint := config.Up.Normalize()

	rightDir := view.Cross(upHint)
	if rightDir.Length() < parallelTolerance {
		return nil, fmt.Errorf("%w: up %v is parallel to view direction %v", ErrDegenerateCamera, config.Up, view)
	}
	right := rightDir.Normalize()

	// Re-derive up so the basis is exactly orthonormal
	up := right.Cross(view)

	halfHeight := math.Tan(config.FovY / 2)
	aspect := float64(config.Width) / float64(config.Height)

	return &Camera{
		eye:         config.Eye,
		view:        view,
		up:          up,
		right:       right,
		scaledUp:    up.Multiply(halfHeight),
		scaledRight: right.Multiply(halfHeight * aspect),
		width:       config.Width,
		height:      config.Height,
		fovY:        config.FovY,
	}, nil
}

// MustNewCamera is like NewCamera but panics on error. It is meant for
// hard-coded configurations.
func MustNewCamera(config CameraConfig) *Camera {
	camera, err := NewCamera(config)
	if err != nil {
		panic(err)
	}
	return camera
}

// GetRay returns the primary ray through pixel (x, y). Coordinates outside
// the image are extrapolated.
func (c *Camera) GetRay(x, y int) core.Ray {
	xn := float64(x)*2.0/float64(c.width) - 1.0
	yn := 1.0 - float64(y)*2.0/float64(c.height)
	return c.GetRayNDC(xn, yn)
}

// GetRayNDC returns the ray for normalized device coordinates, where (-1, 1)
// is the top-left image corner and (1, -1) the bottom-right one
func (c *Camera) GetRayNDC(xn, yn float64) core.Ray {
	direction := c.view.
		Add(c.scaledRight.Multiply(xn)).
		Add(c.scaledUp.Multiply(yn))

	return core.NewRay(c.eye, direction.Normalize())
}

// Eye returns the camera position
func (c *Camera) Eye() core.Vec3 { return c.eye }

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 { return c.view }

// Up returns the unit up direction of the orthonormal basis
func (c *Camera) Up() core.Vec3 { return c.up }

// Right returns the unit right direction of the orthonormal basis
func (c *Camera) Right() core.Vec3 { return c.right }

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.width }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.height }

// FovY returns the vertical field of view in radians
func (c *Camera) FovY() float64 { return c.fovY }
