package loaders

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sauerbraten/jsonfile"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

var ErrInvalidSceneFile = errors.New("loaders: invalid scene file")

// vec3 is a JSON [x, y, z] triple
type vec3 [3]float64

func (v *vec3) toVec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// SceneFile is the on-disk scene description. Pointer fields are optional
// and fall back to the default scene's values when missing.
type SceneFile struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Background  *vec3         `json:"background"`
	Camera      cameraFile    `json:"camera"`
	Sampling    samplingFile  `json:"sampling"`
	Spheres     []sphereEntry `json:"spheres"`
}

type cameraFile struct {
	Eye    *vec3    `json:"eye"`
	LookAt *vec3    `json:"lookAt"`
	Up     *vec3    `json:"up"`
	Width  *int     `json:"width"`
	Height *int     `json:"height"`
	FovY   *float64 `json:"fovy"`
}

type samplingFile struct {
	SamplesPerPixel *int `json:"samplesPerPixel"`
	MaxDepth        *int `json:"maxDepth"`
}

type sphereEntry struct {
	Center *vec3   `json:"center"`
	Radius float64 `json:"radius"`
	Light  bool    `json:"light"`
}

// ParseSceneFile reads a scene file without building the scene. Lines
// starting with // are treated as comments. Escaped quotes in strings are
// rejected: the comment filter strips whitespace after them.
func ParseSceneFile(path string) (*SceneFile, error) {
	if err := checkEscapedQuotes(path); err != nil {
		return nil, err
	}

	// jsonfile does not close the file it opens
	var f SceneFile
	if err := jsonfile.ParseFile(path, &f); err != nil {
		return nil, fmt.Errorf("loaders: reading %s: %w", path, err)
	}
	return &f, nil
}

func checkEscapedQuotes(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loaders: reading %s: %w", path, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := bytes.TrimSpace(scanner.Bytes())
		if bytes.HasPrefix(text, []byte("//")) {
			continue
		}
		if bytes.Contains(text, []byte(`\"`)) {
			return fmt.Errorf("%w: %s:%d: escaped quotes are not supported", ErrInvalidSceneFile, path, line)
		}
	}
	return scanner.Err()
}

// LoadSceneFile reads a JSON scene file and builds the scene it describes.
// The scene name defaults to the file name without extension.
func LoadSceneFile(path string) (*scene.Description, error) {
	f, err := ParseSceneFile(path)
	if err != nil {
		return nil, err
	}
	return f.Describe(path)
}

// Describe builds the scene and names it after path when the file has no
// name of its own
func (f *SceneFile) Describe(path string) (*scene.Description, error) {
	d, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = sceneNameFromPath(path)
	}
	return d, nil
}

// Build turns the parsed file into a scene description
func (f *SceneFile) Build() (*scene.Description, error) {
	defaults := scene.NewDefaultScene()

	background := defaults.Scene.Background
	if f.Background != nil {
		background = f.Background.toVec3()
	}
	if !background.IsFinite() {
		return nil, fmt.Errorf("%w: background %v is not finite", ErrInvalidSceneFile, background)
	}

	s := scene.NewScene(background)
	for i, entry := range f.Spheres {
		if entry.Center == nil {
			return nil, fmt.Errorf("%w: sphere %d has no center", ErrInvalidSceneFile, i)
		}

		var err error
		if entry.Light {
			err = s.AddLight(entry.Center.toVec3(), entry.Radius)
		} else {
			err = s.AddSphere(entry.Center.toVec3(), entry.Radius)
		}
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
	}

	return &scene.Description{
		Name:     f.Name,
		Summary:  f.Description,
		Scene:    s,
		Camera:   f.cameraConfig(defaults),
		Sampling: f.samplingConfig(defaults),
	}, nil
}

func (f *SceneFile) cameraConfig(defaults *scene.Description) geometry.CameraConfig {
	config := defaults.Camera
	c := f.Camera
	if c.Eye != nil {
		config.Eye = c.Eye.toVec3()
	}
	if c.LookAt != nil {
		config.LookAt = c.LookAt.toVec3()
	}
	if c.Up != nil {
		config.Up = c.Up.toVec3()
	}
	if c.Width != nil {
		config.Width = *c.Width
	}
	if c.Height != nil {
		config.Height = *c.Height
	}
	if c.FovY != nil {
		config.FovY = *c.FovY
	}
	return config
}

func (f *SceneFile) samplingConfig(defaults *scene.Description) core.SamplingConfig {
	config := defaults.Sampling
	if f.Sampling.SamplesPerPixel != nil {
		config.SamplesPerPixel = *f.Sampling.SamplesPerPixel
	}
	if f.Sampling.MaxDepth != nil {
		config.MaxDepth = *f.Sampling.MaxDepth
	}
	return config
}

// IsSceneFile reports whether name looks like a scene file path rather than
// a built-in scene name
func IsSceneFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// ListSceneFiles returns metadata for every .json scene file in dir, sorted
// by display name. Files that fail to parse are skipped.
func ListSceneFiles(dir string) ([]scene.SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("loaders: scanning %s: %w", dir, err)
	}

	scenes := make([]scene.SceneInfo, 0, len(files))
	for _, path := range files {
		f, err := ParseSceneFile(path)
		if err != nil {
			continue
		}

		id := sceneNameFromPath(path)
		displayName := f.Name
		if displayName == "" {
			displayName = scene.TitleCase(id)
		}
		scenes = append(scenes, scene.SceneInfo{
			ID:          id,
			DisplayName: displayName,
			Description: f.Description,
			Type:        "file",
			FilePath:    path,
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

func sceneNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
