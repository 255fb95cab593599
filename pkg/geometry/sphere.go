package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

var _ Shape = (*Sphere)(nil)

// NewSphere creates a new sphere. The radius must be positive and finite.
func NewSphere(center core.Vec3, radius float64) (*Sphere, error) {
	if !center.IsFinite() {
		return nil, fmt.Errorf("%w: center %v is not finite", ErrInvalidSphere, center)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: radius %g must be positive", ErrInvalidSphere, radius)
	}

	return &Sphere{
		Center: center,
		Radius: radius,
	}, nil
}

// Hit tests if a ray intersects with the sphere and returns the nearest
// intersection in front of the ray origin. A ray starting inside the sphere
// hits the exit point. The ray direction must be unit length.
func (s *Sphere) Hit(ray core.Ray) (Intersection, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// With a unit direction the quadratic reduces to t² + 2bt + c = 0
	b := ray.Direction.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - c
	if discriminant < 0 {
		return Intersection{}, false
	}

	sqrtD := math.Sqrt(discriminant)
	t1 := -b - sqrtD
	t2 := -b + sqrtD

	// Both roots behind the origin
	if t2 < 0 {
		return Intersection{}, false
	}

	t := t2
	if t1 > 0 {
		t = t1
	}

	// Outward normal (from center to hit point)
	normal := ray.At(t).Subtract(s.Center).Normalize()

	return Intersection{T: t, Normal: normal}, true
}
