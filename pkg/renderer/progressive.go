package renderer

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/log"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

var logger = log.New("renderer")

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize           int   // Size of each square tile in pixels
	InitialSamples     int   // Samples for first pass
	MaxSamplesPerPixel int   // Maximum total samples per pixel
	MaxPasses          int   // Maximum number of passes
	NumWorkers         int   // Number of parallel workers (0 = use CPU count)
	Seed               int64 // Base seed; tile i draws from seed+i
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:           32,
		InitialSamples:     1,
		MaxSamplesPerPixel: 25,
		MaxPasses:          5,
		NumWorkers:         0, // Auto-detect CPU count
		Seed:               42,
	}
}

// Validate reports whether the configuration can drive a render
func (c ProgressiveConfig) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.TileSize)
	case c.MaxPasses <= 0:
		return fmt.Errorf("%w: max passes %d", ErrInvalidConfig, c.MaxPasses)
	case c.MaxSamplesPerPixel <= 0:
		return fmt.Errorf("%w: max samples per pixel %d", ErrInvalidConfig, c.MaxSamplesPerPixel)
	case c.InitialSamples <= 0 || c.InitialSamples > c.MaxSamplesPerPixel:
		return fmt.Errorf("%w: initial samples %d outside [1, %d]", ErrInvalidConfig, c.InitialSamples, c.MaxSamplesPerPixel)
	}
	return nil
}

// ProgressiveRaytracer renders in passes, adding samples to every pixel in
// parallel tiles until MaxSamplesPerPixel is reached
type ProgressiveRaytracer struct {
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile        // Tile management
	currentPass   int            // Progressive state
	pixelStats    [][]PixelStats // Shared pixel statistics array (global image coordinates)
	workerPool    *WorkerPool    // Worker pool for parallel processing
}

// NewProgressiveRaytracer creates a new progressive raytracer. Only MaxDepth
// is taken from sampling; the sample count comes from config.
func NewProgressiveRaytracer(s *scene.Scene, camera *geometry.Camera, sampling core.SamplingConfig, config ProgressiveConfig) (*ProgressiveRaytracer, error) {
	if s == nil {
		return nil, ErrNoScene
	}
	if camera == nil {
		return nil, ErrNoCamera
	}
	if sampling.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth %d", ErrInvalidConfig, sampling.MaxDepth)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	width, height := camera.Width(), camera.Height()
	tiles := NewTileGrid(width, height, config.TileSize, config.Seed)

	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	pathTracer := integrator.NewPathTracingIntegrator(s, sampling)
	workerPool := NewWorkerPool(NewTileRenderer(camera, pathTracer), len(tiles), config.NumWorkers)

	return &ProgressiveRaytracer{
		width:       width,
		height:      height,
		config:      config,
		tiles:       tiles,
		currentPass: 0,
		pixelStats:  pixelStats,
		workerPool:  workerPool,
	}, nil
}

// NumWorkers returns the number of goroutines rendering tiles
func (pr *ProgressiveRaytracer) NumWorkers() int {
	return pr.workerPool.GetNumWorkers()
}

// NumTiles returns the number of tiles the image is split into
func (pr *ProgressiveRaytracer) NumTiles() int {
	return len(pr.tiles)
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	targetSamples := pr.config.InitialSamples + (passNumber-1)*samplesPerPass

	// For the final pass, use all remaining samples
	if passNumber >= pr.config.MaxPasses {
		targetSamples = pr.config.MaxSamplesPerPixel
	}

	return targetSamples
}

// PlannedPasses returns the number of passes RenderProgressive will emit: the
// first pass whose target reaches MaxSamplesPerPixel, or MaxPasses
func (pr *ProgressiveRaytracer) PlannedPasses() int {
	for pass := 1; pass < pr.config.MaxPasses; pass++ {
		if pr.getSamplesForPass(pass) >= pr.config.MaxSamplesPerPixel {
			return pass
		}
	}
	return pr.config.MaxPasses
}

// RenderPass renders a single progressive pass using parallel processing.
// Passes must be rendered in order; the pool stops when RenderProgressive ends.
func (pr *ProgressiveRaytracer) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	pr.currentPass = passNumber
	targetSamples := pr.getSamplesForPass(passNumber)

	logger.Debugf("pass %d: target %d samples per pixel (using %d workers)",
		passNumber, targetSamples, pr.workerPool.GetNumWorkers())

	pr.workerPool.Start()

	for taskID, tile := range pr.tiles {
		task := TileTask{
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        taskID,
			PixelStats:    pr.pixelStats,
		}
		if err := pr.workerPool.SubmitTask(task); err != nil {
			return nil, RenderStats{}, err
		}
	}

	// Wait for all tiles and dispatch callbacks from this goroutine only
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, ErrWorkerPoolClosed
		}
		if result.Error != nil {
			return nil, RenderStats{}, result.Error
		}

		tile := pr.tiles[result.TaskID]
		tile.PassesCompleted++
		logger.Debugf("pass %d: tile %d done by worker %d (%d samples)",
			passNumber, tile.ID, result.WorkerID, result.Stats.TotalSamples)

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / pr.config.TileSize,
				TileY:      tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:  pr.extractTileImage(tile),
				PassNumber: passNumber,

				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.PlannedPasses(),
			})
		}
	}

	img, stats := pr.assembleCurrentImage(targetSamples)
	return img, stats, nil
}

// extractTileImage extracts a tile image from the shared pixel stats array
func (pr *ProgressiveRaytracer) extractTileImage(tile *Tile) *image.RGBA {
	bounds := tile.Bounds
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			stats := &pr.pixelStats[y][x]
			if stats.SampleCount > 0 {
				tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, Vec3ToColor(stats.GetColor()))
			}
		}
	}

	return tileImage
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	Duration   time.Duration
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA // Image data for just this tile
	PassNumber int         // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders all passes in a background goroutine and streams
// the results. Cancellation is checked between passes. If options.TileUpdates
// is false the tile channel is closed immediately. Tile events are dropped
// when the tile channel is full. A ProgressiveRaytracer renders only once.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		logger.Infof("starting progressive rendering: %d passes, %d tiles, %d workers",
			pr.PlannedPasses(), len(pr.tiles), pr.workerPool.GetNumWorkers())

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				logger.Warningf("rendering cancelled before pass %d", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					default:
					}
				}
			}

			img, stats, err := pr.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			passTime := time.Since(startTime)
			logger.Infof("pass %d completed in %v (%.1f samples/pixel)", pass, passTime, stats.AverageSamples)

			isLast := pass == pr.config.MaxPasses || stats.MinSamples >= pr.config.MaxSamplesPerPixel
			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				Duration:   passTime,
				IsLast:     isLast,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			if isLast {
				break
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Render runs every pass to completion and returns the last one
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (PassResult, error) {
	passChan, _, errChan := pr.RenderProgressive(ctx, RenderOptions{})

	var last PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		return last, err
	}
	return last, nil
}

// assembleCurrentImage creates an image from the current state of the shared pixel stats
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))

	stats := RenderStats{
		TotalPixels:    pr.width * pr.height,
		TotalSamples:   0,
		AverageSamples: 0,
		MaxSamples:     targetSamples,
		MinSamples:     pr.config.MaxSamplesPerPixel, // Start high, will be reduced
		MaxSamplesUsed: 0,
	}

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			pixel := &pr.pixelStats[y][x]
			img.SetRGBA(x, y, Vec3ToColor(pixel.GetColor()))

			stats.TotalSamples += pixel.SampleCount
			stats.MinSamples = min(stats.MinSamples, pixel.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, pixel.SampleCount)
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}

	return img, stats
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-specific random stream for deterministic results
}

// NewTile creates a new tile whose random stream is seeded with seed+id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:              id,
		Bounds:          bounds,
		PassesCompleted: 0,
		Sampler:         core.NewRandomSampler(rand.New(rand.NewSource(seed + int64(id)))),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image in row-major order
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
