package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SceneInfo represents a scene available to the CLI with its metadata
type SceneInfo struct {
	ID          string // Unique identifier used on the command line
	DisplayName string // Human readable name
	Description string // Optional description
	Type        string // "builtin" or "file"
	FilePath    string // Path to scene file (file type only)
}

// builtinFactories maps scene IDs to their constructors. Each call builds a
// fresh scene so callers may modify the result freely.
var builtinFactories = map[string]func() *Description{
	"default": NewDefaultScene,
	"box":     NewBoxScene,
	"light":   NewLightScene,
	"empty":   NewEmptyScene,
}

// ErrUnknownScene is returned by Lookup for names that are not built in
var ErrUnknownScene = errors.New("scene: unknown scene")

// Builtins returns freshly constructed built-in scenes sorted by name
func Builtins() []*Description {
	names := BuiltinNames()
	scenes := make([]*Description, 0, len(names))
	for _, name := range names {
		scenes = append(scenes, builtinFactories[name]())
	}
	return scenes
}

// BuiltinNames returns the sorted IDs of the built-in scenes
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinFactories))
	for name := range builtinFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the built-in scene with the given name (case insensitive)
func Lookup(name string) (*Description, error) {
	factory, ok := builtinFactories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScene, name, strings.Join(BuiltinNames(), ", "))
	}
	return factory(), nil
}

// ListBuiltinScenes returns metadata for the built-in scenes sorted by ID
func ListBuiltinScenes() []SceneInfo {
	descriptions := Builtins()
	infos := make([]SceneInfo, 0, len(descriptions))
	for _, d := range descriptions {
		infos = append(infos, SceneInfo{
			ID:          d.Name,
			DisplayName: TitleCase(d.Name),
			Description: d.Summary,
			Type:        "builtin",
		})
	}
	return infos
}

// TitleCase converts a filename-style string to title case
// e.g., "box-closed" -> "Box Closed"
func TitleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
