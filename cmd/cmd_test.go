package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetviz/internal/chart"
	"sheetviz/internal/workspace"
)

const salesCSV = "Month,Sales,Profit,Notes\nJan,100,20,ok\nFeb,150,35,late\nMar,120,25,ok\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolate points the theme file at a temp dir and restores the flag globals.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("SHEETVIZ_DATA_ROOT", root)

	origEnv := envFile
	origJSON, origPreview := inspectJSON, inspectPreview
	origX, origY, origKind := renderX, renderY, renderKind
	origFormat, origOutput, origDark := renderFormat, renderOutput, renderDark
	origW, origH := renderWidth, renderHeight
	t.Cleanup(func() {
		envFile = origEnv
		inspectJSON, inspectPreview = origJSON, origPreview
		renderX, renderY, renderKind = origX, origY, origKind
		renderFormat, renderOutput, renderDark = origFormat, origOutput, origDark
		renderWidth, renderHeight = origW, origH
	})

	envFile = ""
	renderX, renderY, renderKind = "", nil, string(workspace.Line)
	renderFormat, renderOutput, renderDark = chart.FormatSVG, "", false
	renderWidth, renderHeight = 400, 300
	return root
}

func TestInspect_Report(t *testing.T) {
	d, err := decodeFile(writeFile(t, "sales.csv", salesCSV))
	require.NoError(t, err)

	r := inspect(d, 2)
	assert.Equal(t, "sales.csv", r.File)
	assert.Equal(t, "csv", r.Format)
	assert.Equal(t, int64(len(salesCSV)), r.Size)
	assert.Equal(t, 3, r.Rows)
	assert.Equal(t, []string{"Sales", "Profit"}, r.Numeric)
	require.Len(t, r.Summaries, 2)
	assert.Equal(t, 370.0, r.Summaries[0].Sum)
	assert.Len(t, r.Preview, 2)
}

func TestInspect_TextOutput(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	inspectCmd.SetOut(&out)
	t.Cleanup(func() { inspectCmd.SetOut(nil) })

	require.NoError(t, runInspect(inspectCmd, []string{writeFile(t, "sales.csv", salesCSV)}))
	assert.Contains(t, out.String(), "Rows:    3")
	assert.Contains(t, out.String(), "Numeric: Sales, Profit")
	assert.Contains(t, out.String(), "370.00")
}

func TestInspect_JSONOutput(t *testing.T) {
	isolate(t)
	inspectJSON = true
	var out bytes.Buffer
	inspectCmd.SetOut(&out)
	t.Cleanup(func() { inspectCmd.SetOut(nil) })

	require.NoError(t, runInspect(inspectCmd, []string{writeFile(t, "sales.csv", salesCSV)}))

	var report struct {
		Fields  []string `json:"fields"`
		Numeric []string `json:"numeric"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, []string{"Month", "Sales", "Profit", "Notes"}, report.Fields)
	assert.Equal(t, []string{"Sales", "Profit"}, report.Numeric)
}

func TestInspect_NoNumericColumns(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	inspectCmd.SetOut(&out)
	t.Cleanup(func() { inspectCmd.SetOut(nil) })

	err := runInspect(inspectCmd, []string{writeFile(t, "names.csv", "Name\nann\nbob\n")})
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, out.String(), "No numeric columns found")
}

func TestInspect_BadFile(t *testing.T) {
	isolate(t)
	err := runInspect(inspectCmd, []string{writeFile(t, "broken.xlsx", "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestRender_DefaultsToAllNumericColumns(t *testing.T) {
	isolate(t)
	path := writeFile(t, "sales.csv", salesCSV)
	var out bytes.Buffer
	renderCmd.SetOut(&out)
	t.Cleanup(func() { renderCmd.SetOut(nil) })

	require.NoError(t, runRender(renderCmd, []string{path}))

	want := strings.TrimSuffix(path, ".csv") + ".svg"
	assert.Equal(t, want+"\n", out.String())
	svg, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "Profit")
}

func TestRender_BarPNG(t *testing.T) {
	isolate(t)
	path := writeFile(t, "sales.csv", salesCSV)
	renderX, renderY = "Notes", []string{"Sales", "Sales"}
	renderKind, renderFormat = "bar", chart.FormatPNG
	renderOutput = filepath.Join(t.TempDir(), "out.png")
	renderCmd.SetOut(&bytes.Buffer{})
	t.Cleanup(func() { renderCmd.SetOut(nil) })

	require.NoError(t, runRender(renderCmd, []string{path}))
	png, err := os.ReadFile(renderOutput)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestRender_Errors(t *testing.T) {
	isolate(t)
	path := writeFile(t, "sales.csv", salesCSV)

	renderFormat = "gif"
	assert.ErrorContains(t, runRender(renderCmd, []string{path}), "--format")

	renderFormat = chart.FormatSVG
	renderKind = "pie"
	assert.ErrorIs(t, runRender(renderCmd, []string{path}), workspace.ErrInvalidKind)

	renderKind = "line"
	renderY = []string{"Notes"}
	assert.ErrorIs(t, runRender(renderCmd, []string{path}), workspace.ErrNotNumeric)

	renderY = nil
	names := writeFile(t, "names.csv", "Name\nann\n")
	assert.ErrorContains(t, runRender(renderCmd, []string{names}), chart.MessageSelectAxes)

	empty := writeFile(t, "empty.csv", "a,b\n")
	assert.ErrorContains(t, runRender(renderCmd, []string{empty}), "no data rows")
}

func TestTheme_Command(t *testing.T) {
	root := isolate(t)
	var out bytes.Buffer
	themeCmd.SetOut(&out)
	t.Cleanup(func() { themeCmd.SetOut(nil) })

	require.NoError(t, runTheme(themeCmd, nil))
	assert.Equal(t, "light\n", out.String())
	_, err := os.Stat(filepath.Join(root, "theme.json"))
	assert.True(t, os.IsNotExist(err), "showing the theme must not write it")

	out.Reset()
	require.NoError(t, runTheme(themeCmd, []string{"toggle"}))
	assert.Equal(t, "dark\n", out.String())

	out.Reset()
	require.NoError(t, runTheme(themeCmd, []string{"light"}))
	assert.Equal(t, "light\n", out.String())

	data, err := os.ReadFile(filepath.Join(root, "theme.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"light"`)
}

func TestSavedDark(t *testing.T) {
	isolate(t)
	assert.False(t, savedDark())
	require.NoError(t, runTheme(themeCmd, []string{"dark"}))
	assert.True(t, savedDark())
}
