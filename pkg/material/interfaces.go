package material

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Albedo is the fraction of incoming light the diffuse surface re-emits per channel
var Albedo = core.NewVec3(0.95, 0.95, 0.95)

// Emission is the radiance returned by light-tagged geometry
var Emission = core.NewVec3(2.0, 2.0, 2.0)

// ScatterOffset moves scattered ray origins off the surface to avoid
// re-intersecting it due to floating point error
const ScatterOffset = 1e-4

// Scattering selects how non-emissive surfaces scatter incoming rays.
// It is a closed set; add variants here and handle them in Scatter.
type Scattering int

const (
	// Diffuse is ideal Lambertian scattering with cosine-weighted sampling
	Diffuse Scattering = iota
)

// String returns the scattering model name
func (s Scattering) String() string {
	switch s {
	case Diffuse:
		return "diffuse"
	default:
		return fmt.Sprintf("Scattering(%d)", int(s))
	}
}

// Scatter samples an outgoing ray leaving point with surface normal.
// It reports false when no usable direction could be produced.
func (s Scattering) Scatter(point, normal core.Vec3, sampler core.Sampler) (core.Ray, bool) {
	switch s {
	case Diffuse:
		return scatterDiffuse(point, normal, sampler)
	default:
		return core.Ray{}, false
	}
}
