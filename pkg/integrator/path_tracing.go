package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing over a sphere scene
type PathTracingIntegrator struct {
	scene      *scene.Scene
	config     core.SamplingConfig
	scattering material.Scattering
}

// NewPathTracingIntegrator creates a new path tracing integrator for the scene
func NewPathTracingIntegrator(s *scene.Scene, config core.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		scene:      s,
		config:     config,
		scattering: material.Diffuse,
	}
}

// Config returns the sampling configuration the integrator was created with
func (pt *PathTracingIntegrator) Config() core.SamplingConfig {
	return pt.config
}

// RayColor traces one path of at most MaxDepth segments
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	return pt.Trace(ray, pt.config.MaxDepth, sampler)
}

// Trace returns the radiance carried back along ray.
//
// Paths that run out of depth or leave the scene pick up the background
// color. Lights end the path with their emission. Diffuse surfaces scatter
// once and attenuate the recursive estimate by the albedo.
func (pt *PathTracingIntegrator) Trace(ray core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	// Out of bounces: no sampler draws happen at this depth
	if depth <= 0 {
		return pt.scene.Background
	}

	hitGeometry, hit, isHit := pt.scene.Intersect(ray)
	if !isHit {
		return pt.scene.Background
	}

	if hitGeometry.Light {
		return material.Emission
	}

	scattered, ok := pt.scattering.Scatter(hit.Point(ray), hit.Normal, sampler)
	if !ok {
		// Degenerate bounce contributes background instead of aborting the path
		return pt.scene.Background
	}

	return material.Albedo.MultiplyVec(pt.Trace(scattered, depth-1, sampler))
}

// MultiTrace averages samples independent Trace estimates for ray
func (pt *PathTracingIntegrator) MultiTrace(ray core.Ray, depth, samples int, sampler core.Sampler) core.Vec3 {
	if samples <= 0 {
		return pt.scene.Background
	}

	var sum core.Vec3
	for i := 0; i < samples; i++ {
		sum = sum.Add(pt.Trace(ray, depth, sampler))
	}
	return sum.Multiply(1.0 / float64(samples))
}
