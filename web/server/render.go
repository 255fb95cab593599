package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"net/http"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent when a pass finishes
type PassUpdate struct {
	PassNumber       int     `json:"passNumber"`
	TotalPasses      int     `json:"totalPasses"`
	ElapsedMs        int64   `json:"elapsedMs"`
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	AverageSamples   float64 `json:"averageSamples"`
	MaxSamples       int     `json:"maxSamples"`
	MinSamples       int     `json:"minSamples"`
	MaxSamplesUsed   int     `json:"maxSamplesUsed"`
	AverageLuminance float64 `json:"averageLuminance"`
	GeometryCount    int     `json:"geometryCount"`
	IsLast           bool    `json:"isLast"`
	ImageData        string  `json:"imageData"` // Base64 encoded PNG of the whole image
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Description
	Raytracer *renderer.ProgressiveRaytracer
	Passes    int
}

// handleRender handles progressive rendering with real-time tile streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Every event goes through one writer goroutine; the handler waits for
	// it so nothing touches w after the handler returns
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)

	pipeline, err := s.setupRenderingPipeline(req)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}
	webLogger.Infof("rendering %q: %d tiles on %d workers", pipeline.Scene.Name,
		pipeline.Raytracer.NumTiles(), pipeline.Raytracer.NumWorkers())

	startTime := time.Now()
	passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	s.handleRenderingEvents(ctx, sseEventChan, consoleChan, webLogger, passChan, tileChan, errChan, pipeline, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes events until the channel is closed or the client goes away
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan <-chan SSEEvent) {
	disconnected := false
	for event := range sseEventChan {
		if disconnected {
			continue // keep draining so senders never block
		}
		if ctx.Err() != nil {
			disconnected = true
			continue
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			disconnected = true
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest) (*RenderingPipeline, error) {
	d, err := s.loadScene(req.Scene)
	if err != nil {
		return nil, err
	}

	camera, err := geometry.NewCamera(geometry.MergeCameraConfig(d.Camera, geometry.CameraConfig{
		Width:  req.Width,
		Height: req.Height,
	}))
	if err != nil {
		return nil, err
	}

	sampling := d.Sampling
	if req.MaxSamples > 0 {
		sampling.SamplesPerPixel = req.MaxSamples
	}
	if req.MaxDepth >= 0 {
		sampling.MaxDepth = req.MaxDepth
	}

	config := renderer.DefaultProgressiveConfig()
	config.TileSize = req.TileSize
	config.MaxSamplesPerPixel = sampling.SamplesPerPixel
	config.MaxPasses = req.MaxPasses
	config.Seed = req.Seed

	raytracer, err := renderer.NewProgressiveRaytracer(d.Scene, camera, sampling, config)
	if err != nil {
		return nil, err
	}
	return &RenderingPipeline{
		Scene:     d,
		Raytracer: raytracer,
		Passes:    raytracer.PlannedPasses(),
	}, nil
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent, consoleChan <-chan ConsoleMessage,
	webLogger *WebLogger, passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult,
	errChan <-chan error, pipeline *RenderingPipeline, startTime time.Time) {

	for passChan != nil || tileChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			webLogger.Infof("pass %d/%d done, %d samples/pixel", passResult.PassNumber, pipeline.Passes, passResult.Stats.MinSamples)
			s.handlePassComplete(ctx, sseEventChan, passResult, pipeline, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case msg := <-consoleChan:
			s.forwardConsoleMessage(ctx, sseEventChan, msg)

		case <-ctx.Done():
			return
		}
	}

	if err := <-errChan; err != nil {
		webLogger.Errorf("rendering failed: %v", err)
		s.drainConsole(ctx, sseEventChan, consoleChan)
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	webLogger.Infof("rendering completed in %v", time.Since(startTime).Round(time.Millisecond))
	s.drainConsole(ctx, sseEventChan, consoleChan)

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan<- SSEEvent, passResult renderer.PassResult, pipeline *RenderingPipeline, startTime time.Time) {
	imageData, err := s.imageToBase64PNG(passResult.Image)
	if err != nil {
		logger.Errorf("error encoding pass %d image: %v", passResult.PassNumber, err)
		return
	}

	update := PassUpdate{
		PassNumber:       passResult.PassNumber,
		TotalPasses:      pipeline.Passes,
		ElapsedMs:        time.Since(startTime).Milliseconds(),
		TotalPixels:      passResult.Stats.TotalPixels,
		TotalSamples:     passResult.Stats.TotalSamples,
		AverageSamples:   passResult.Stats.AverageSamples,
		MaxSamples:       passResult.Stats.MaxSamples,
		MinSamples:       passResult.Stats.MinSamples,
		MaxSamplesUsed:   passResult.Stats.MaxSamplesUsed,
		AverageLuminance: renderer.CalculateAverageLuminance(passResult.Image),
		GeometryCount:    len(pipeline.Scene.Scene.Geometries),
		IsLast:           passResult.IsLast,
		ImageData:        imageData,
	}
	s.sendJSONEvent(ctx, sseEventChan, "passComplete", update)
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tileResult renderer.TileCompletionResult) {
	tileData, err := s.imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		logger.Errorf("error encoding tile image (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}
	s.sendJSONEvent(ctx, sseEventChan, "tile", update)
}

func (s *Server) forwardConsoleMessage(ctx context.Context, sseEventChan chan<- SSEEvent, msg ConsoleMessage) {
	s.sendJSONEvent(ctx, sseEventChan, "console", msg)
}

// drainConsole forwards console messages that are already queued
func (s *Server) drainConsole(ctx context.Context, sseEventChan chan<- SSEEvent, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.forwardConsoleMessage(ctx, sseEventChan, msg)
		default:
			return
		}
	}
}

func (s *Server) sendJSONEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("error marshaling %s event: %v", eventType, err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	values := r.URL.Query()
	var err error
	if req.MaxSamples, err = parseIntParam(values, "maxSamples", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", -1, 0, MaxDepth); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", renderer.DefaultProgressiveConfig().MaxPasses, 1, MaxPasses); err != nil {
		return nil, err
	}
	if req.TileSize, err = parseIntParam(values, "tileSize", DefaultTileSize, 1, MaxImageSize); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", int(renderer.DefaultProgressiveConfig().Seed), math.MinInt32, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	if req.Width*req.Height > 800*600 && req.MaxSamples > 100 {
		logger.Warning("large image with high samples may render slowly")
	}

	return req, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := output.Encode(&buf, output.PNG, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}
