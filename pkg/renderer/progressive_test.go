package renderer

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func TestProgressiveSampleCalculation(t *testing.T) {
	testCases := []struct {
		name     string
		initial  int
		max      int
		passes   int
		expected []int
	}{
		// (50-1)/6 = 8 samples per pass, final pass tops up to 50
		{"even split", 1, 50, 7, []int{1, 9, 17, 25, 33, 41, 50}},
		{"single pass", 1, 25, 1, []int{25}},
		{"more passes than samples", 1, 3, 5, []int{1, 1, 1, 1, 3}},
		{"default", 1, 25, 5, []int{1, 7, 13, 19, 25}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pr := &ProgressiveRaytracer{config: ProgressiveConfig{
				InitialSamples:     tc.initial,
				MaxSamplesPerPixel: tc.max,
				MaxPasses:          tc.passes,
			}}
			for pass := 1; pass <= tc.passes; pass++ {
				if got := pr.getSamplesForPass(pass); got != tc.expected[pass-1] {
					t.Errorf("Pass %d: expected %d total samples, got %d", pass, tc.expected[pass-1], got)
				}
			}
		})
	}
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultProgressiveConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if config.MaxSamplesPerPixel != core.DefaultSamplingConfig().SamplesPerPixel {
		t.Errorf("Expected default max samples %d, got %d", core.DefaultSamplingConfig().SamplesPerPixel, config.MaxSamplesPerPixel)
	}

	invalid := []func(*ProgressiveConfig){
		func(c *ProgressiveConfig) { c.TileSize = 0 },
		func(c *ProgressiveConfig) { c.MaxPasses = 0 },
		func(c *ProgressiveConfig) { c.MaxSamplesPerPixel = 0 },
		func(c *ProgressiveConfig) { c.InitialSamples = 0 },
		func(c *ProgressiveConfig) { c.InitialSamples = c.MaxSamplesPerPixel + 1 },
	}
	for i, mutate := range invalid {
		c := DefaultProgressiveConfig()
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestNewTileGrid(t *testing.T) {
	width, height, tileSize := 400, 225, 64
	tiles := NewTileGrid(width, height, tileSize, 42)

	expectedTilesX := (width + tileSize - 1) / tileSize   // 7 tiles
	expectedTilesY := (height + tileSize - 1) / tileSize  // 4 tiles
	expectedTotalTiles := expectedTilesX * expectedTilesY // 28 tiles

	if len(tiles) != expectedTotalTiles {
		t.Errorf("Expected %d tiles, got %d", expectedTotalTiles, len(tiles))
	}

	covered := make([][]bool, height)
	for y := range covered {
		covered[y] = make([]bool, width)
	}

	for i, tile := range tiles {
		if tile.ID != i {
			t.Errorf("Tile %d has ID %d", i, tile.ID)
		}
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				if x >= width || y >= height {
					t.Errorf("Tile %d extends beyond image bounds at (%d,%d)", tile.ID, x, y)
					continue
				}
				if covered[y][x] {
					t.Errorf("Pixel (%d,%d) is covered by multiple tiles", x, y)
				}
				covered[y][x] = true
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !covered[y][x] {
				t.Errorf("Pixel (%d,%d) is not covered by any tile", x, y)
			}
		}
	}
}

func TestTileDeterministicRandom(t *testing.T) {
	bounds := image.Rect(0, 0, 64, 64)
	tile1 := NewTile(3, bounds, 42)
	tile2 := NewTile(3, bounds, 42)

	val1 := tile1.Sampler.Get1D()
	val2 := tile2.Sampler.Get1D()
	if val1 != val2 {
		t.Errorf("Tiles with same ID and seed should produce same random values: %f != %f", val1, val2)
	}

	// Tile 3 with seed 42 shares its stream with tile 4 with seed 41
	if NewTile(4, bounds, 41).Sampler.Get1D() != val1 {
		t.Error("Expected tile streams to be seeded with seed+id")
	}

	if NewTile(4, bounds, 42).Sampler.Get1D() == val1 {
		t.Error("Tiles with different IDs should produce different random values")
	}
}

func newTestProgressive(t *testing.T, d *scene.Description, width, height int, config ProgressiveConfig) *ProgressiveRaytracer {
	t.Helper()
	pr, err := NewProgressiveRaytracer(d.Scene, testCamera(t, width, height), d.Sampling, config)
	if err != nil {
		t.Fatalf("NewProgressiveRaytracer error: %v", err)
	}
	return pr
}

func TestNewProgressiveRaytracer_Errors(t *testing.T) {
	d := scene.NewDefaultScene()
	camera := testCamera(t, 4, 4)

	if _, err := NewProgressiveRaytracer(nil, camera, d.Sampling, DefaultProgressiveConfig()); !errors.Is(err, ErrNoScene) {
		t.Errorf("Expected ErrNoScene, got %v", err)
	}
	if _, err := NewProgressiveRaytracer(d.Scene, nil, d.Sampling, DefaultProgressiveConfig()); !errors.Is(err, ErrNoCamera) {
		t.Errorf("Expected ErrNoCamera, got %v", err)
	}
	bad := DefaultProgressiveConfig()
	bad.TileSize = -1
	if _, err := NewProgressiveRaytracer(d.Scene, camera, d.Sampling, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestProgressive_EmptySceneIsBackground(t *testing.T) {
	d := scene.NewEmptyScene()
	config := DefaultProgressiveConfig()
	config.TileSize = 5
	config.MaxSamplesPerPixel = 3
	config.MaxPasses = 2
	pr := newTestProgressive(t, d, 12, 9, config)

	result, err := pr.Render(context.Background())
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !result.IsLast || result.PassNumber != 2 {
		t.Errorf("Expected last pass 2, got pass %d (last=%v)", result.PassNumber, result.IsLast)
	}

	expected := Vec3ToColor(d.Scene.Background)
	for y := 0; y < 9; y++ {
		for x := 0; x < 12; x++ {
			if got := result.Image.RGBAAt(x, y); got != expected {
				t.Fatalf("Pixel (%d,%d) = %v, want %v", x, y, got, expected)
			}
		}
	}
	if result.Stats.MinSamples != 3 || result.Stats.TotalSamples != 12*9*3 {
		t.Errorf("Unexpected stats %+v", result.Stats)
	}
}

func TestProgressive_PassesStreamInOrder(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.TileSize = 4
	config.MaxSamplesPerPixel = 6
	config.MaxPasses = 3
	config.NumWorkers = 2
	pr := newTestProgressive(t, scene.NewDefaultScene(), 8, 8, config)

	passChan, tileChan, errChan := pr.RenderProgressive(context.Background(), RenderOptions{TileUpdates: true})

	tileEvents := 0
	done := make(chan struct{})
	go func() {
		for range tileChan {
			tileEvents++
		}
		close(done)
	}()

	expectedSamples := []int{1, 3, 6}
	pass := 0
	for result := range passChan {
		if result.PassNumber != pass+1 {
			t.Errorf("Expected pass %d, got %d", pass+1, result.PassNumber)
		}
		if result.Stats.MinSamples != expectedSamples[pass] || result.Stats.MaxSamplesUsed != expectedSamples[pass] {
			t.Errorf("Pass %d: expected %d samples per pixel, got min %d max %d",
				result.PassNumber, expectedSamples[pass], result.Stats.MinSamples, result.Stats.MaxSamplesUsed)
		}
		if result.IsLast != (pass == 2) {
			t.Errorf("Pass %d: unexpected IsLast %v", result.PassNumber, result.IsLast)
		}
		pass++
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	<-done

	if pass != 3 {
		t.Errorf("Expected 3 passes, got %d", pass)
	}
	if tileEvents == 0 || tileEvents > 3*pr.NumTiles() {
		t.Errorf("Unexpected number of tile events %d", tileEvents)
	}
}

func TestProgressive_DeterministicAcrossWorkers(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.TileSize = 3
	config.MaxSamplesPerPixel = 4
	config.MaxPasses = 2
	config.Seed = 7

	render := func(workers int) *image.RGBA {
		c := config
		c.NumWorkers = workers
		result, err := newTestProgressive(t, scene.NewDefaultScene(), 10, 10, c).Render(context.Background())
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		return result.Image
	}

	single := render(1)
	parallel := render(4)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if single.RGBAAt(x, y) != parallel.RGBAAt(x, y) {
				t.Fatalf("Pixel (%d,%d) differs between 1 and 4 workers: %v vs %v",
					x, y, single.RGBAAt(x, y), parallel.RGBAAt(x, y))
			}
		}
	}
}

func TestProgressive_LightSceneConverges(t *testing.T) {
	d := scene.NewLightScene()
	config := DefaultProgressiveConfig()
	config.TileSize = 8
	config.MaxSamplesPerPixel = 10
	config.MaxPasses = 2
	pr := newTestProgressive(t, d, 40, 40, config)

	result, err := pr.Render(context.Background())
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	camera := testCamera(t, 40, 40)
	light := d.Scene.Geometries[0].Sphere
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			expected := d.Scene.Background
			if _, isHit := light.Hit(camera.GetRay(x, y)); isHit {
				expected = material.Emission.Clamp(0, 1)
			}
			got := result.Image.RGBAAt(x, y)
			// Allow 5% around the expected channel value
			if math.Abs(float64(got.R)/255-expected.X) > 0.05 {
				t.Errorf("Pixel (%d,%d) red %d, expected about %f", x, y, got.R, expected.X)
			}
		}
	}
}

func TestProgressive_Cancelled(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.TileSize = 4
	pr := newTestProgressive(t, scene.NewDefaultScene(), 8, 8, config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pr.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestProgressivePlannedPasses(t *testing.T) {
	testCases := []struct {
		name     string
		initial  int
		max      int
		passes   int
		expected int
	}{
		{"full schedule", 1, 50, 7, 7},
		{"single pass", 1, 25, 1, 1},
		{"initial reaches max", 1, 1, 5, 1},
		{"initial equals max", 4, 4, 3, 1},
		{"more passes than samples", 1, 3, 5, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pr := &ProgressiveRaytracer{config: ProgressiveConfig{
				InitialSamples:     tc.initial,
				MaxSamplesPerPixel: tc.max,
				MaxPasses:          tc.passes,
			}}
			if got := pr.PlannedPasses(); got != tc.expected {
				t.Errorf("Expected %d planned passes, got %d", tc.expected, got)
			}
		})
	}
}

func TestProgressive_StopsWhenSamplesReached(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.TileSize = 4
	config.InitialSamples = 1
	config.MaxSamplesPerPixel = 1
	config.MaxPasses = 5
	config.NumWorkers = 2
	pr := newTestProgressive(t, scene.NewDefaultScene(), 8, 8, config)

	passChan, tileChan, errChan := pr.RenderProgressive(context.Background(), RenderOptions{TileUpdates: true})

	tileTotals := make(chan int, 100)
	go func() {
		for tile := range tileChan {
			tileTotals <- tile.TotalPasses
		}
		close(tileTotals)
	}()

	var passes []PassResult
	for result := range passChan {
		passes = append(passes, result)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(passes) != 1 || !passes[0].IsLast {
		t.Fatalf("Expected a single last pass, got %d passes", len(passes))
	}
	for total := range tileTotals {
		if total != 1 {
			t.Errorf("Tile reported %d total passes, want 1", total)
		}
	}
}
