package renderer

import (
	"image"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera     *geometry.Camera
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given camera and integrator
func NewTileRenderer(camera *geometry.Camera, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		integrator: integratorInst,
	}
}

// RenderTileBounds tops up every pixel within bounds to targetSamples samples.
// Only the pixelStats entries inside bounds are written.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := tr.samplePixel(i, j, &pixelStats[j][i], sampler, targetSamples)
			tr.updateStats(&stats, samplesUsed)
		}
	}

	tr.finalizeStats(&stats)
	return stats
}

// samplePixel takes samples until the pixel holds targetSamples in total
func (tr *TileRenderer) samplePixel(i, j int, ps *PixelStats, sampler core.Sampler, targetSamples int) int {
	initialSampleCount := ps.SampleCount

	// The primary ray is the same for every sample of a pixel
	ray := tr.camera.GetRay(i, j)
	for ps.SampleCount < targetSamples {
		ps.AddSample(tr.integrator.RayColor(ray, sampler))
	}

	return ps.SampleCount - initialSampleCount
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels:    bounds.Dx() * bounds.Dy(),
		TotalSamples:   0,
		AverageSamples: 0,
		MaxSamples:     maxSamples,
		MinSamples:     maxSamples, // Start with max, will be reduced
		MaxSamplesUsed: 0,
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels == 0 {
		return
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
}
