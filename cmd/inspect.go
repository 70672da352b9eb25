package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sheetviz/internal/chart"
	"sheetviz/internal/sheet"
	"sheetviz/internal/workspace"
)

var (
	inspectJSON    bool
	inspectPreview int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the columns of a spreadsheet and which of them are numeric",
	Long: `Decode a CSV, XLSX or XLS file the same way the viewer does and print
its columns, the numeric columns a chart can use as Y axes, and summary
statistics for each numeric column. Exits with status 2 when no column
is numeric, since such a file cannot be charted.

Examples:
  sheetviz inspect sales.xlsx
  sheetviz inspect sales.csv --json
  sheetviz inspect sales.csv --preview 5`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output JSON")
	inspectCmd.Flags().IntVar(&inspectPreview, "preview", 0, "Number of data rows to include")
	rootCmd.AddCommand(inspectCmd)
}

type inspectReport struct {
	File      string          `json:"file"`
	Format    string          `json:"format"`
	Size      int64           `json:"size"`
	Rows      int             `json:"rows"`
	Fields    []string        `json:"fields"`
	Numeric   []string        `json:"numeric"`
	Summaries []chart.Summary `json:"summaries"`
	Preview   []sheet.Row     `json:"preview,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	d, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	report := inspect(d, inspectPreview)

	if inspectJSON {
		if err := jsonPrint(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), report)
	}
	if len(report.Numeric) == 0 {
		return &ExitError{Code: 2}
	}
	return nil
}

// decodeFile reads a spreadsheet from disk without a row limit.
func decodeFile(path string) (*sheet.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := sheet.Decode(path, f, sheet.DecodeOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if info, err := f.Stat(); err == nil {
		d.FileSize = info.Size()
	}
	return d, nil
}

func inspect(d *sheet.Dataset, preview int) inspectReport {
	report := inspectReport{
		File:      d.FileName,
		Format:    d.Format,
		Size:      d.FileSize,
		Rows:      d.Len(),
		Fields:    d.Fields,
		Numeric:   d.Numeric(),
		Summaries: []chart.Summary{},
	}
	if report.Fields == nil {
		report.Fields = []string{}
	}
	if report.Numeric == nil {
		report.Numeric = []string{}
	}
	if preview > 0 {
		report.Preview = d.Rows[:min(preview, d.Len())]
	}

	ws := workspace.New()
	if ok, _ := ws.Load(d); !ok {
		return report
	}
	for _, field := range report.Numeric {
		if err := ws.ToggleY(field); err != nil {
			return report
		}
	}
	view := chart.Build(ws.Snapshot())
	if view.Renderable {
		report.Summaries = chart.Summarize(view.Series)
	}
	return report
}

func printReport(w io.Writer, r inspectReport) {
	fmt.Fprintf(w, "File:    %s (%s, %d bytes)\n", r.File, r.Format, r.Size)
	fmt.Fprintf(w, "Rows:    %d\n", r.Rows)

	fields := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		if slices.Contains(r.Numeric, f) {
			fields[i] = color.GreenString(f)
			continue
		}
		fields[i] = f
	}
	fmt.Fprintf(w, "Fields:  %s\n", strings.Join(fields, ", "))

	if len(r.Numeric) == 0 {
		fmt.Fprintln(w, color.YellowString("No numeric columns found"))
		return
	}
	fmt.Fprintf(w, "Numeric: %s\n\n", strings.Join(r.Numeric, ", "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tCOUNT\tSUM\tMEAN\tMEDIAN\tMIN\tMAX\tSTD")
	for _, s := range r.Summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			s.Field, s.Count, s.Sum, s.Mean, s.Median, s.Min, s.Max, s.Std)
	}
	tw.Flush()

	if len(r.Preview) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(r.Fields, "\t"))
		for _, row := range r.Preview {
			cells := make([]string, len(r.Fields))
			for i, f := range r.Fields {
				cells[i] = row[f].String()
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		tw.Flush()
	}
}
