package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sheetviz/internal/chart"
	"sheetviz/internal/theme"
	"sheetviz/internal/workspace"
)

var (
	renderX      string
	renderY      []string
	renderKind   string
	renderFormat string
	renderOutput string
	renderDark   bool
	renderWidth  int
	renderHeight int
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a chart of a spreadsheet to an image",
	Long: `Render a line or bar chart of a spreadsheet as SVG or PNG.

The X axis defaults to the first column and the Y axes default to every
numeric column. --dark defaults to the theme saved by the viewer.

Examples:
  sheetviz render sales.csv
  sheetviz render sales.xlsx -x Month -y Sales -y Profit --kind bar
  sheetviz render sales.xlsx --format png -o sales.png`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderX, "x", "x", "", "X axis column (default: first column)")
	renderCmd.Flags().StringSliceVarP(&renderY, "y", "y", nil, "Y axis column, repeatable (default: all numeric columns)")
	renderCmd.Flags().StringVar(&renderKind, "kind", string(workspace.Line), "Chart kind (line or bar)")
	renderCmd.Flags().StringVar(&renderFormat, "format", chart.FormatSVG, "Image format (svg or png)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file path (default: <file>.<format>)")
	renderCmd.Flags().BoolVar(&renderDark, "dark", false, "Dark background")
	renderCmd.Flags().IntVar(&renderWidth, "width", chart.DefaultWidth, "Image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", chart.DefaultHeight, "Image height in pixels")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath := args[0]

	if renderFormat != chart.FormatSVG && renderFormat != chart.FormatPNG {
		return fmt.Errorf("--format must be 'svg' or 'png', got %q", renderFormat)
	}
	kind, err := workspace.ParseChartKind(renderKind)
	if err != nil {
		return err
	}

	d, err := decodeFile(filePath)
	if err != nil {
		return err
	}

	ws := workspace.New()
	ok, err := ws.Load(d)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s has no data rows", filePath)
	}
	if renderX != "" {
		if err := ws.SelectX(renderX); err != nil {
			return err
		}
	}
	ys := renderY
	if len(ys) == 0 {
		ys = d.Numeric()
	}
	var seen []string
	for _, y := range ys {
		if slices.Contains(seen, y) {
			continue
		}
		seen = append(seen, y)
		if err := ws.ToggleY(y); err != nil {
			return err
		}
	}
	if err := ws.SelectChartKind(kind); err != nil {
		return err
	}

	view := chart.Build(ws.Snapshot())
	if !view.Renderable {
		return fmt.Errorf("%s: %s", filePath, view.Message)
	}

	dark := renderDark
	if !cmd.Flags().Changed("dark") {
		dark = savedDark()
	}

	var buf bytes.Buffer
	err = chart.Render(&buf, view, chart.RenderOptions{
		Format: renderFormat,
		Width:  renderWidth,
		Height: renderHeight,
		Dark:   dark,
		Title:  d.FileName,
	})
	if err != nil {
		return err
	}

	output := renderOutput
	if output == "" {
		output = strings.TrimSuffix(filePath, filepath.Ext(filePath)) + "." + renderFormat
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// savedDark reads the viewer's persisted theme. Any failure means light.
func savedDark() bool {
	cfg, err := loadConfig()
	if err != nil {
		log.Debugf("[render] %v", err)
		return false
	}
	th, err := theme.Load(theme.NewFileStore(cfg.ThemeFile()))
	if err != nil {
		log.Debugf("[render] %v", err)
		return false
	}
	return th.Dark()
}
