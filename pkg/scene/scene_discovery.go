package scene

import (
	"fmt"
	"sort"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Spheres     int    `json:"spheres"`
}

var builtins = map[string]struct {
	description string
	create      func() *Scene
}{
	"default": {"Reference scene with red, green and blue spheres", NewDefaultScene},
	"stacked": {"Two spheres on the camera axis, the nearer one occluding", NewStackedScene},
	"empty":   {"No spheres, background only", NewEmptyScene},
	"grid":    {"9x7 grid of spheres colored around the OKLCH hue wheel", NewSphereGridScene},
}

// ByName creates a fresh instance of a built-in scene
func ByName(name string) (*Scene, error) {
	entry, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return entry.create(), nil
}

// ListScenes returns the built-in scenes sorted by ID
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for id, entry := range builtins {
		scenes = append(scenes, SceneInfo{
			ID:          id,
			Description: entry.description,
			Spheres:     entry.create().Len(),
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}
