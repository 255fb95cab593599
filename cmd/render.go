package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// renderOptions collects everything the render command needs
type renderOptions struct {
	Scene     string
	Camera    geometry.CameraConfig // Set fields override the scene camera
	SPP       *int                  // Overrides samples per pixel when set
	Depth     *int                  // Overrides max depth when set
	Workers   int
	TileSize  int
	Passes    int
	Seed      int64
	Reference bool
	Out       string
}

// passSummary is one row of the render statistics table
type passSummary struct {
	Pass         int
	Samples      int
	TotalSamples int
	Duration     time.Duration
}

// renderResult describes a finished render
type renderResult struct {
	Scene      *scene.Description
	Image      *image.RGBA
	Passes     []passSummary
	Workers    int
	Tiles      int
	RenderTime time.Duration
	Luminance  float64
	OutPath    string
}

// RenderScene renders a built-in scene or JSON scene file and writes the image.
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderOptions{
		Scene: "default",
		Camera: geometry.CameraConfig{
			Width:  ctx.Int("width"),
			Height: ctx.Int("height"),
		},
		Workers:   ctx.Int("workers"),
		TileSize:  ctx.Int("tile-size"),
		Passes:    ctx.Int("passes"),
		Seed:      ctx.Int64("seed"),
		Reference: ctx.Bool("reference"),
		Out:       ctx.String("out"),
	}
	if ctx.NArg() > 1 {
		return fmt.Errorf("expected at most one scene argument, got %d", ctx.NArg())
	}
	if ctx.NArg() == 1 {
		opts.Scene = ctx.Args().First()
	}
	if ctx.IsSet("spp") {
		spp := ctx.Int("spp")
		opts.SPP = &spp
	}
	if ctx.IsSet("depth") {
		depth := ctx.Int("depth")
		opts.Depth = &depth
	}

	// Stop between passes on Ctrl+C
	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := renderScene(renderCtx, opts)
	if err != nil {
		return err
	}

	displayRenderStats(result)
	logger.Noticef("wrote %s", result.OutPath)
	return nil
}

// loadScene resolves a built-in scene name or a path to a JSON scene file
func loadScene(name string) (*scene.Description, error) {
	if loaders.IsSceneFile(name) {
		return loaders.LoadSceneFile(name)
	}
	return scene.Lookup(name)
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneName string, now time.Time) string {
	base := filepath.Base(sceneName)
	base = base[:len(base)-len(filepath.Ext(base))]
	if base == "" || base == "." {
		base = "scene"
	}
	return filepath.Join("output", base, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func renderScene(ctx context.Context, opts renderOptions) (*renderResult, error) {
	if opts.Out != "" {
		if _, err := output.FormatFromPath(opts.Out); err != nil {
			return nil, err
		}
	}

	d, err := loadScene(opts.Scene)
	if err != nil {
		return nil, err
	}

	cameraConfig := geometry.MergeCameraConfig(d.Camera, opts.Camera)
	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return nil, err
	}

	sampling := d.Sampling
	if opts.SPP != nil {
		sampling.SamplesPerPixel = *opts.SPP
	}
	if opts.Depth != nil {
		sampling.MaxDepth = *opts.Depth
	}

	logger.Infof("rendering scene %q (%dx%d, %d spp, depth %d)",
		d.Name, camera.Width(), camera.Height(), sampling.SamplesPerPixel, sampling.MaxDepth)

	start := time.Now()
	var result *renderResult
	if opts.Reference {
		result, err = renderReference(ctx, d, camera, sampling, opts.Seed)
	} else {
		result, err = renderProgressive(ctx, d, camera, sampling, opts)
	}
	if err != nil {
		return nil, err
	}
	result.Scene = d
	result.RenderTime = time.Since(start)
	result.Luminance = renderer.CalculateAverageLuminance(result.Image)

	result.OutPath = opts.Out
	if result.OutPath == "" {
		id := d.Name
		if loaders.IsSceneFile(opts.Scene) {
			id = opts.Scene
		}
		result.OutPath = defaultOutputPath(id, time.Now())
	}
	if err := output.Save(result.OutPath, result.Image); err != nil {
		return nil, err
	}

	return result, nil
}

func renderReference(ctx context.Context, d *scene.Description, camera *geometry.Camera, sampling core.SamplingConfig, seed int64) (*renderResult, error) {
	rt, err := renderer.NewRaytracer(d.Scene, camera, sampling)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := rt.RenderPassContext(ctx, core.NewSeededSampler(seed))
	if err != nil {
		return nil, err
	}
	pixels := camera.Width() * camera.Height()

	return &renderResult{
		Image: img,
		Passes: []passSummary{{
			Pass:         1,
			Samples:      sampling.SamplesPerPixel,
			TotalSamples: pixels * sampling.SamplesPerPixel,
			Duration:     time.Since(start),
		}},
		Workers: 1,
		Tiles:   1,
	}, nil
}

func renderProgressive(ctx context.Context, d *scene.Description, camera *geometry.Camera, sampling core.SamplingConfig, opts renderOptions) (*renderResult, error) {
	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = sampling.SamplesPerPixel
	config.NumWorkers = opts.Workers
	config.Seed = opts.Seed
	if opts.TileSize > 0 {
		config.TileSize = opts.TileSize
	}
	if opts.Passes > 0 {
		config.MaxPasses = opts.Passes
	}

	pr, err := renderer.NewProgressiveRaytracer(d.Scene, camera, sampling, config)
	if err != nil {
		return nil, err
	}

	passChan, _, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{})

	result := &renderResult{
		Workers: pr.NumWorkers(),
		Tiles:   pr.NumTiles(),
	}
	for pass := range passChan {
		result.Image = pass.Image
		result.Passes = append(result.Passes, passSummary{
			Pass:         pass.PassNumber,
			Samples:      pass.Stats.MinSamples,
			TotalSamples: pass.Stats.TotalSamples,
			Duration:     pass.Duration,
		})
	}
	if err := <-errChan; err != nil {
		return nil, err
	}

	return result, nil
}

func displayRenderStats(result *renderResult) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Samples/pixel", "Total samples", "Render time"})
	for _, pass := range result.Passes {
		table.Append([]string{
			fmt.Sprintf("%d", pass.Pass),
			fmt.Sprintf("%d", pass.Samples),
			fmt.Sprintf("%d", pass.TotalSamples),
			pass.Duration.String(),
		})
	}

	bounds := result.Image.Bounds()
	table.SetFooter([]string{
		fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		fmt.Sprintf("%d workers", result.Workers),
		fmt.Sprintf("lum %.4f", result.Luminance),
		result.RenderTime.String(),
	})

	table.Render()
	logger.Noticef("render statistics for %q (%d tiles)\n%s", result.Scene.Name, result.Tiles, buf.String())
}
