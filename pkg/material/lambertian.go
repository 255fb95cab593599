package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// scatterDiffuse draws a cosine-weighted direction around normal.
//
// The sampling pdf cos(θ)/π cancels the Lambertian BRDF albedo/π times the
// cosine term, so callers weight the incoming radiance by the albedo alone.
func scatterDiffuse(point, normal core.Vec3, sampler core.Sampler) (core.Ray, bool) {
	direction := core.SampleCosineHemisphere(normal, sampler.Get2D())
	if direction.IsZero() || !direction.IsFinite() {
		return core.Ray{}, false
	}

	origin := point.Add(direction.Multiply(ScatterOffset))
	return core.NewRay(origin, direction), true
}
