package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray with one sample path.
	// The sampler must not be shared between goroutines.
	RayColor(ray core.Ray, sampler core.Sampler) core.Vec3
}
