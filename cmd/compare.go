package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
)

// CompareImages reports the difference between two rendered images. It fails
// when the RMSE exceeds the threshold flag.
func CompareImages(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 2 {
		return fmt.Errorf("expected two image arguments, got %d", ctx.NArg())
	}

	diff, err := compareImageFiles(ctx.Args().Get(0), ctx.Args().Get(1))
	if err != nil {
		return err
	}

	logger.Noticef("image comparison\n%s", diffTable(ctx.Args().Get(0), ctx.Args().Get(1), diff))

	if threshold := ctx.Float64("threshold"); threshold > 0 && diff.RMSE > threshold {
		return fmt.Errorf("images differ: RMSE %.6f exceeds threshold %.6f", diff.RMSE, threshold)
	}
	return nil
}

func compareImageFiles(pathA, pathB string) (loaders.ImageDiff, error) {
	a, err := loaders.LoadImage(pathA)
	if err != nil {
		return loaders.ImageDiff{}, err
	}
	b, err := loaders.LoadImage(pathB)
	if err != nil {
		return loaders.ImageDiff{}, err
	}
	return a.Compare(b)
}

func diffTable(pathA, pathB string, diff loaders.ImageDiff) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Image", "Mean luminance"})
	table.Append([]string{pathA, fmt.Sprintf("%.4f", diff.LuminanceA)})
	table.Append([]string{pathB, fmt.Sprintf("%.4f", diff.LuminanceB)})
	table.SetFooter([]string{
		fmt.Sprintf("RMSE %.6f, max %.4f", diff.RMSE, diff.MaxChannelError),
		fmt.Sprintf("%d/%d pixels differ", diff.DifferentPixels, diff.TotalPixels),
	})
	table.Render()
	return buf.String()
}
