// Package chart shapes a workspace state into renderable series and draws
// them.
package chart

import (
	"sheetviz/internal/sheet"
	"sheetviz/internal/workspace"
)

const (
	MessageNoData     = "Upload a file to start visualizing your data"
	MessageSelectAxes = "Select X and Y axes to render chart"
)

// Point is one (X, Y) pair taken from a single row.
type Point struct {
	X sheet.Value `json:"x"`
	Y float64     `json:"y"`
}

// Series is one Y field paired with the X field, in row order.
type Series struct {
	Field  string  `json:"field"`
	Points []Point `json:"points"`
}

// View is everything a renderer needs. Records, XKey, YKeys and Kind are the
// raw payload for a client side charting library; Series is the same data
// pre-paired for server side rendering.
type View struct {
	Renderable bool                `json:"renderable"`
	Message    string              `json:"message,omitempty"`
	Kind       workspace.ChartKind `json:"kind"`
	XKey       string              `json:"xKey,omitempty"`
	YKeys      []string            `json:"yKeys,omitempty"`
	Records    []sheet.Row         `json:"records,omitempty"`
	Series     []Series            `json:"series,omitempty"`
}

// Build derives the view from a state. It is recomputed on every call.
func Build(s workspace.State) View {
	v := View{Kind: s.Kind}
	if !s.Loaded() {
		v.Message = MessageNoData
		return v
	}
	if s.X == "" || len(s.Y) == 0 {
		v.Message = MessageSelectAxes
		return v
	}

	d := s.Dataset
	v.Renderable = true
	v.XKey = s.X
	v.YKeys = append([]string(nil), s.Y...)
	v.Records = d.Rows
	v.Series = make([]Series, 0, len(s.Y))
	for _, field := range s.Y {
		series := Series{Field: field, Points: make([]Point, 0, d.Len())}
		for _, row := range d.Rows {
			y, _ := sheet.Coerce(row[field])
			series.Points = append(series.Points, Point{X: row[s.X], Y: y})
		}
		v.Series = append(v.Series, series)
	}
	return v
}

// Labels returns the X value of every row as axis labels.
func (v View) Labels() []string {
	if len(v.Series) == 0 {
		return nil
	}
	labels := make([]string, len(v.Series[0].Points))
	for i, p := range v.Series[0].Points {
		labels[i] = p.X.String()
	}
	return labels
}
