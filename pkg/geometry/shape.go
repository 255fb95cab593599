package geometry

import "github.com/df07/go-sphere-pathtracer/pkg/core"

// Intersection contains information about a ray-object intersection.
// It does not keep the ray; the hit point is recomputed from it on demand.
type Intersection struct {
	T      float64   // Parameter t along the ray (> 0)
	Normal core.Vec3 // Unit outward surface normal at the hit
}

// Point returns the hit point along the ray that produced the intersection
func (i Intersection) Point(ray core.Ray) core.Vec3 {
	return ray.At(i.T)
}

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray) (Intersection, bool)
}
