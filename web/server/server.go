package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/log"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

var logger = log.New("server")

// Request limits
const (
	DefaultTileSize = 32
	MaxImageSize    = 2000
	MaxSamples      = 10000
	MaxPasses       = 1000
	MaxDepth        = 100
)

// Server streams progressive renders of built-in and file scenes over HTTP
type Server struct {
	port     int
	sceneDir string
	catalog  *sceneCatalog
}

// NewServer creates a new web server. Scene files are looked up by name in
// sceneDir; an empty sceneDir serves built-in scenes only.
func NewServer(port int, sceneDir string) *Server {
	return &Server{port: port, sceneDir: sceneDir, catalog: newSceneCatalog(sceneDir)}
}

// RenderRequest represents a render or inspect request from the client.
// Zero sizes and sampling values fall back to the scene's own settings.
type RenderRequest struct {
	Scene      string `json:"scene"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	MaxSamples int    `json:"maxSamples"`
	MaxDepth   int    `json:"maxDepth"`
	MaxPasses  int    `json:"maxPasses"`
	TileSize   int    `json:"tileSize"`
	Seed       int64  `json:"seed"`
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start serves requests until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()
	logger.Noticef("listening on http://localhost:%d", s.port)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Notice("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sceneEntry is one element of the /api/scenes response
type sceneEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// handleScenes lists the scenes this server can render
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes := scene.ListBuiltinScenes()
	if s.sceneDir != "" {
		files, err := s.catalog.list()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		scenes = append(scenes, files...)
	}

	entries := make([]sceneEntry, 0, len(scenes))
	for _, info := range scenes {
		entries = append(entries, sceneEntry{
			ID:          info.ID,
			Name:        info.DisplayName,
			Description: info.Description,
			Type:        info.Type,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	d, err := s.loadScene(sceneName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := map[string]interface{}{
		"scene": sceneName,
		"name":  d.Name,
		"defaults": map[string]interface{}{
			"width":           d.Camera.Width,
			"height":          d.Camera.Height,
			"samplesPerPixel": d.Sampling.SamplesPerPixel,
			"maxDepth":        d.Sampling.MaxDepth,
			"tileSize":        DefaultTileSize,
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": 1, "max": MaxImageSize},
			"height":     map[string]int{"min": 1, "max": MaxImageSize},
			"maxSamples": map[string]int{"min": 1, "max": MaxSamples},
			"maxDepth":   map[string]int{"min": 0, "max": MaxDepth},
			"maxPasses":  map[string]int{"min": 1, "max": MaxPasses},
		},
		"geometries": len(d.Scene.Geometries),
		"lights":     d.Scene.LightCount(),
	}
	writeJSON(w, http.StatusOK, response)
}

// loadScene resolves a built-in scene, then a scene file in the scene directory
func (s *Server) loadScene(name string) (*scene.Description, error) {
	d, err := scene.Lookup(name)
	if err == nil || s.sceneDir == "" {
		return d, err
	}

	fileScene, ok, loadErr := s.catalog.load(name)
	if !ok && loadErr == nil {
		return nil, err
	}
	return fileScene, loadErr
}

// parseCommonSceneParams parses the parameters shared by render and inspect
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	values := r.URL.Query()

	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, MaxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, MaxImageSize); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warningf("error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
