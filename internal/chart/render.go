package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sheetviz/internal/workspace"
)

const (
	FormatSVG = "svg"
	FormatPNG = "png"

	DefaultWidth  = 960
	DefaultHeight = 450

	maxLabels = 24
)

var (
	ErrNotRenderable = errors.New("chart is not renderable")
	ErrUnknownFormat = errors.New("unknown image format")
)

var palette = []drawing.Color{
	gochart.ColorBlue,
	gochart.ColorGreen,
	gochart.ColorOrange,
	gochart.ColorRed,
	gochart.ColorCyan,
	gochart.ColorYellow,
}

// RenderOptions configures the image. Zero sizes fall back to the defaults.
type RenderOptions struct {
	Format string
	Width  int
	Height int
	Dark   bool
	Title  string
}

// ContentType returns the MIME type of an image format.
func ContentType(format string) string {
	if format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Render draws a renderable view as a line or grouped bar chart.
func Render(w io.Writer, v View, opts RenderOptions) error {
	if !v.Renderable || len(v.Series) == 0 {
		return ErrNotRenderable
	}
	provider, err := rendererFor(opts.Format)
	if err != nil {
		return err
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	labels := v.Labels()
	xs := make([]float64, len(labels))
	for i := range xs {
		xs[i] = float64(i + 1)
	}

	series := make([]gochart.Series, 0, len(v.Series))
	for i, s := range v.Series {
		color := palette[i%len(palette)]
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			ys[j] = p.Y
		}
		if v.Kind == workspace.Bar {
			series = append(series, barSeries{
				name:   s.Field,
				style:  gochart.Style{FillColor: color.WithAlpha(220), StrokeColor: color, StrokeWidth: 1},
				xs:     xs,
				ys:     ys,
				index:  i,
				groups: len(v.Series),
			})
			continue
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Field,
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: color, StrokeWidth: 2, DotColor: color, DotWidth: 3},
		})
	}

	fg, bg := themeColors(opts.Dark)
	axis := gochart.Style{FontColor: fg, StrokeColor: fg}
	lo, hi := yBounds(v.Series)
	minX, maxX := 0.5, float64(len(labels))+0.5

	ch := gochart.Chart{
		Title:      opts.Title,
		TitleStyle: gochart.Style{FontColor: fg},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{FillColor: bg, Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		Canvas:     gochart.Style{FillColor: bg},
		XAxis: gochart.XAxis{
			Name:      v.XKey,
			NameStyle: axis,
			Style:     axis,
			Range:     &gochart.ContinuousRange{Min: minX, Max: maxX},
			Ticks:     xTicks(labels, minX, maxX),
		},
		YAxis: gochart.YAxis{
			Style: axis,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
			Ticks: yTicks(lo, hi, 5),
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch, gochart.Style{FillColor: bg, FontColor: fg, StrokeColor: fg})}

	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("rendering %s chart: %w", v.Kind, err)
	}
	return nil
}

func rendererFor(format string) (gochart.RendererProvider, error) {
	switch format {
	case "", FormatSVG:
		return gochart.SVG, nil
	case FormatPNG:
		return gochart.PNG, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func themeColors(dark bool) (fg, bg drawing.Color) {
	if dark {
		return drawing.ColorFromHex("e2e8f0"), drawing.ColorFromHex("0f172a")
	}
	return drawing.ColorFromHex("0f172a"), gochart.ColorWhite
}

// yBounds always includes zero so bars have a baseline.
func yBounds(series []Series) (lo, hi float64) {
	for _, s := range series {
		for _, p := range s.Points {
			lo = math.Min(lo, p.Y)
			hi = math.Max(hi, p.Y)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// xTicks labels every row, thinning labels out past maxLabels. The outer
// ticks pin the axis to [minX, maxX] so a single row still has a width.
func xTicks(labels []string, minX, maxX float64) []gochart.Tick {
	step := 1
	if len(labels) > maxLabels {
		step = int(math.Ceil(float64(len(labels)) / maxLabels))
	}
	ticks := make([]gochart.Tick, 0, len(labels)/step+2)
	ticks = append(ticks, gochart.Tick{Value: minX})
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i + 1), Label: labels[i]})
	}
	return append(ticks, gochart.Tick{Value: maxX})
}

func yTicks(lo, hi float64, intervals int) []gochart.Tick {
	ticks := make([]gochart.Tick, 0, intervals+1)
	step := (hi - lo) / float64(intervals)
	for i := 0; i <= intervals; i++ {
		v := lo + float64(i)*step
		ticks = append(ticks, gochart.Tick{Value: v, Label: formatTick(v)})
	}
	return ticks
}

func formatTick(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// barSeries draws one member of a bar group. Bars of the same row sit side
// by side inside 80% of the row's slot.
type barSeries struct {
	name   string
	style  gochart.Style
	xs     []float64
	ys     []float64
	index  int
	groups int
}

func (bs barSeries) GetName() string { return bs.name }
func (bs barSeries) GetStyle() gochart.Style { return bs.style }
func (bs barSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (bs barSeries) Len() int { return len(bs.ys) }
func (bs barSeries) GetValues(i int) (x, y float64) { return bs.xs[i], bs.ys[i] }

func (bs barSeries) Validate() error {
	if len(bs.xs) != len(bs.ys) {
		return fmt.Errorf("bar series %q: %d x values for %d y values", bs.name, len(bs.xs), len(bs.ys))
	}
	return nil
}

func (bs barSeries) Render(r gochart.Renderer, canvas gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	style := bs.style.InheritFrom(defaults)
	slot := float64(xrange.Translate(1) - xrange.Translate(0))
	group := slot * 0.8
	width := group / float64(bs.groups)
	base := canvas.Bottom - yrange.Translate(0)

	r.SetFillColor(style.GetFillColor())
	r.SetStrokeColor(style.GetStrokeColor())
	r.SetStrokeWidth(style.GetStrokeWidth())
	for i := range bs.ys {
		center := float64(canvas.Left + xrange.Translate(bs.xs[i]))
		left := int(center - group/2 + float64(bs.index)*width)
		right := int(center - group/2 + float64(bs.index+1)*width)
		top := canvas.Bottom - yrange.Translate(bs.ys[i])
		r.MoveTo(left, base)
		r.LineTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, base)
		r.Close()
		r.FillStroke()
	}
}
