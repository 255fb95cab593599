package scene

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Geometry is a sphere tagged as either a light source or an ordinary
// diffuse surface
type Geometry struct {
	Sphere *geometry.Sphere
	Light  bool
}

// Scene contains the geometry and background of a render. It must not be
// modified once rendering starts; it is then shared by all workers.
type Scene struct {
	Background core.Vec3  // Color returned for rays that hit nothing
	Geometries []Geometry // Objects in the scene
}

// NewScene creates an empty scene with the given background color
func NewScene(background core.Vec3) *Scene {
	return &Scene{
		Background: background,
		Geometries: make([]Geometry, 0),
	}
}

// AddSphere adds an ordinary diffuse sphere
func (s *Scene) AddSphere(center core.Vec3, radius float64) error {
	return s.add(center, radius, false)
}

// AddLight adds an emissive sphere
func (s *Scene) AddLight(center core.Vec3, radius float64) error {
	return s.add(center, radius, true)
}

func (s *Scene) add(center core.Vec3, radius float64, light bool) error {
	sphere, err := geometry.NewSphere(center, radius)
	if err != nil {
		return err
	}
	s.Geometries = append(s.Geometries, Geometry{Sphere: sphere, Light: light})
	return nil
}

// Intersect finds the geometry nearest along the ray. On equal distances the
// geometry added first wins.
func (s *Scene) Intersect(ray core.Ray) (*Geometry, geometry.Intersection, bool) {
	var closest *Geometry
	var closestHit geometry.Intersection
	closestSoFar := math.Inf(1)

	for i := range s.Geometries {
		g := &s.Geometries[i]
		hit, isHit := g.Sphere.Hit(ray)
		if !isHit || hit.T >= closestSoFar {
			continue
		}
		closestSoFar = hit.T
		closest = g
		closestHit = hit
	}

	return closest, closestHit, closest != nil
}

// LightCount returns the number of light-tagged geometries
func (s *Scene) LightCount() int {
	count := 0
	for _, g := range s.Geometries {
		if g.Light {
			count++
		}
	}
	return count
}
