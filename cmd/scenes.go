package cmd

import (
	"bytes"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// ListScenes prints the built-in scenes and the scene files found in the
// scene directory.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	scenes, err := availableScenes(ctx.String("dir"))
	if err != nil {
		return err
	}

	logger.Noticef("available scenes\n%s", sceneTable(scenes))
	return nil
}

// availableScenes returns built-in scenes followed by the files in dir
func availableScenes(dir string) ([]scene.SceneInfo, error) {
	scenes := scene.ListBuiltinScenes()
	if dir == "" {
		return scenes, nil
	}

	files, err := loaders.ListSceneFiles(dir)
	if err != nil {
		return nil, err
	}
	return append(scenes, files...), nil
}

func sceneTable(scenes []scene.SceneInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Name", "Type", "Description"})
	for _, info := range scenes {
		id := info.ID
		if info.FilePath != "" {
			id = info.FilePath
		}
		table.Append([]string{id, info.DisplayName, info.Type, info.Description})
	}
	table.Render()
	return buf.String()
}
