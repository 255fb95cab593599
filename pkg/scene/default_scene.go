package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

const (
	// Radius of the spheres used as nearly flat walls
	wallRadius = 100000.0
	// Half extent of the box enclosed by the walls
	boxHalfSize = 2000.0
)

// Description bundles a scene with the camera and sampling parameters it is
// meant to be rendered with
type Description struct {
	Name     string
	Summary  string
	Scene    *Scene
	Camera   geometry.CameraConfig
	Sampling core.SamplingConfig
}

// DefaultBackground is the grey returned for rays escaping the scene
func DefaultBackground() core.Vec3 {
	return core.NewVec3(0.3, 0.3, 0.3)
}

// DefaultCameraConfig looks at the origin from 10 units down the -Y axis with +Z up
func DefaultCameraConfig() geometry.CameraConfig {
	return geometry.CameraConfig{
		Eye:    core.NewVec3(0, -10, 0),
		LookAt: core.NewVec3(0, 0, 0),
		Up:     core.NewVec3(0, 0, 1),
		Width:  200,
		Height: 200,
		FovY:   1.0,
	}
}

// NewDefaultScene creates the reference scene: a small light hovering above
// a unit diffuse sphere, with one huge sphere acting as a wall on the +X side
func NewDefaultScene() *Description {
	s := NewScene(DefaultBackground())
	mustAdd(s.AddLight(core.NewVec3(0, 0, 2), 0.5))
	mustAdd(s.AddSphere(core.NewVec3(0, 0, 0), 1.0))
	mustAdd(s.AddSphere(core.NewVec3(wallRadius+boxHalfSize, 0, 0), wallRadius))

	return &Description{
		Name:     "default",
		Summary:  "Light above a diffuse sphere next to a wall",
		Scene:    s,
		Camera:   DefaultCameraConfig(),
		Sampling: core.DefaultSamplingConfig(),
	}
}

// NewBoxScene encloses the default scene in wall spheres, leaving the
// -Y wall open behind the camera
func NewBoxScene() *Description {
	d := NewDefaultScene()
	d.Name = "box"
	d.Summary = "Default scene enclosed by wall spheres on five sides"

	offset := wallRadius + boxHalfSize
	walls := []core.Vec3{
		core.NewVec3(-offset, 0, 0),
		core.NewVec3(0, offset, 0),
		core.NewVec3(0, 0, offset),
		core.NewVec3(0, 0, -offset),
	}
	for _, center := range walls {
		mustAdd(d.Scene.AddSphere(center, wallRadius))
	}

	// Light has to bounce around more before reaching the camera
	d.Sampling.MaxDepth = 8
	return d
}

// NewLightScene contains only the light sphere from the default scene
func NewLightScene() *Description {
	s := NewScene(DefaultBackground())
	mustAdd(s.AddLight(core.NewVec3(0, 0, 2), 0.5))

	return &Description{
		Name:     "light",
		Summary:  "A single light sphere",
		Scene:    s,
		Camera:   DefaultCameraConfig(),
		Sampling: core.DefaultSamplingConfig(),
	}
}

// NewEmptyScene has no geometry; every pixel renders as the background
func NewEmptyScene() *Description {
	return &Description{
		Name:     "empty",
		Summary:  "No geometry, background only",
		Scene:    NewScene(DefaultBackground()),
		Camera:   DefaultCameraConfig(),
		Sampling: core.SamplingConfig{SamplesPerPixel: 1, MaxDepth: 1},
	}
}

func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}
