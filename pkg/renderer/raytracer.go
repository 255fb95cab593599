package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Raytracer is the single-threaded reference renderer
type Raytracer struct {
	scene      *scene.Scene
	camera     *geometry.Camera
	config     core.SamplingConfig
	integrator *integrator.PathTracingIntegrator
}

// NewRaytracer creates a new raytracer. Zero samples or depth are allowed and
// yield the background color.
func NewRaytracer(s *scene.Scene, camera *geometry.Camera, config core.SamplingConfig) (*Raytracer, error) {
	if s == nil {
		return nil, ErrNoScene
	}
	if camera == nil {
		return nil, ErrNoCamera
	}
	if config.SamplesPerPixel < 0 || config.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: samples per pixel %d, max depth %d", ErrInvalidConfig, config.SamplesPerPixel, config.MaxDepth)
	}

	return &Raytracer{
		scene:      s,
		camera:     camera,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(s, config),
	}, nil
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int { return rt.camera.Width() }

// Height returns the image height in pixels
func (rt *Raytracer) Height() int { return rt.camera.Height() }

// Config returns the sampling configuration
func (rt *Raytracer) Config() core.SamplingConfig { return rt.config }

// Integrator returns the path tracing integrator used for every pixel
func (rt *Raytracer) Integrator() *integrator.PathTracingIntegrator { return rt.integrator }

// Vec3ToColor converts a linear color to RGBA by clamping each channel to
// [0,1] and truncating channel*255. No gamma correction is applied.
func Vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// RenderPass renders every pixel with SamplesPerPixel samples, drawing all
// randomness from sampler, and returns the image
func (rt *Raytracer) RenderPass(sampler core.Sampler) *image.RGBA {
	img, _ := rt.RenderPassContext(context.Background(), sampler)
	return img
}

// RenderPassContext is RenderPass with cancellation checked once per row.
// A cancelled render returns ctx.Err() and no image.
func (rt *Raytracer) RenderPassContext(ctx context.Context, sampler core.Sampler) (*image.RGBA, error) {
	width, height := rt.Width(), rt.Height()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			logger.Warningf("reference render cancelled at row %d of %d", y, height)
			return nil, err
		}
		for x := 0; x < width; x++ {
			ray := rt.camera.GetRay(x, y)
			colorVec := rt.integrator.MultiTrace(ray, rt.config.MaxDepth, rt.config.SamplesPerPixel, sampler)
			img.SetRGBA(x, y, Vec3ToColor(colorVec))
		}
	}

	return img, nil
}
