package scene

import (
	"errors"
	"sort"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"box-closed", "Box Closed"},
		{"light_only", "Light Only"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := TitleCase(tc.input)
			if result != tc.expected {
				t.Errorf("TitleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestBuiltinNames_Sorted(t *testing.T) {
	names := BuiltinNames()
	expected := []string{"box", "default", "empty", "light"}
	if len(names) != len(expected) {
		t.Fatalf("BuiltinNames() = %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("BuiltinNames()[%d] = %q, want %q", i, names[i], expected[i])
		}
	}
	if !sort.StringsAreSorted(names) {
		t.Error("BuiltinNames() should be sorted")
	}
}

func TestBuiltins_MatchNames(t *testing.T) {
	for i, d := range Builtins() {
		if d.Name != BuiltinNames()[i] {
			t.Errorf("Builtins()[%d].Name = %q, want %q", i, d.Name, BuiltinNames()[i])
		}
		if d.Scene == nil {
			t.Errorf("Scene %q has no scene", d.Name)
		}
		if d.Summary == "" {
			t.Errorf("Scene %q has no summary", d.Name)
		}
	}
}

func TestLookup(t *testing.T) {
	testCases := []struct {
		name       string
		wantName   string
		geometries int
		lights     int
	}{
		{"default", "default", 3, 1},
		{"  DEFAULT ", "default", 3, 1},
		{"box", "box", 7, 1},
		{"light", "light", 1, 1},
		{"empty", "empty", 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Lookup(tc.name)
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tc.name, err)
			}
			if d.Name != tc.wantName {
				t.Errorf("Name = %q, want %q", d.Name, tc.wantName)
			}
			if got := len(d.Scene.Geometries); got != tc.geometries {
				t.Errorf("Geometry count = %d, want %d", got, tc.geometries)
			}
			if got := d.Scene.LightCount(); got != tc.lights {
				t.Errorf("Light count = %d, want %d", got, tc.lights)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("cornell-box")
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestLookup_ReturnsFreshScene(t *testing.T) {
	first, _ := Lookup("default")
	if err := first.Scene.AddSphere(first.Camera.Eye, 1); err != nil {
		t.Fatalf("AddSphere error: %v", err)
	}

	second, _ := Lookup("default")
	if len(second.Scene.Geometries) != 3 {
		t.Errorf("Modifying one lookup leaked into the next: %d geometries", len(second.Scene.Geometries))
	}
}

func TestListBuiltinScenes(t *testing.T) {
	infos := ListBuiltinScenes()
	if len(infos) != len(BuiltinNames()) {
		t.Fatalf("ListBuiltinScenes() returned %d scenes, want %d", len(infos), len(BuiltinNames()))
	}

	for _, info := range infos {
		if info.ID == "" || info.DisplayName == "" {
			t.Errorf("Scene info missing fields: %+v", info)
		}
		if info.Type != "builtin" {
			t.Errorf("Invalid scene type: %s", info.Type)
		}
		if info.FilePath != "" {
			t.Errorf("Built-in scene %q should not have a file path", info.ID)
		}
	}
}
