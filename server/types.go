package server

import (
	"sheetviz/internal/chart"
	"sheetviz/internal/sheet"
)

// PageData feeds index.html.
type PageData struct {
	Dark      bool
	Loaded    bool
	FileName  string
	FileSize  int64
	RowCount  int
	Fields    []string
	Numeric   []string
	X         string
	Y         []string
	Kind      string
	Kinds     []string
	View      chart.View
	Summaries []chart.Summary
	Preview   []sheet.Row
	Error     string
	Year      int
}

// APIResponse is the envelope of every JSON API reply.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StateData describes a workspace over the API.
type StateData struct {
	Loaded     bool     `json:"loaded"`
	FileName   string   `json:"fileName,omitempty"`
	FileSize   int64    `json:"fileSize,omitempty"`
	RowCount   int      `json:"rowCount"`
	Fields     []string `json:"fields"`
	Numeric    []string `json:"numeric"`
	X          string   `json:"x"`
	Y          []string `json:"y"`
	Kind       string   `json:"kind"`
	Generation uint64   `json:"generation"`
	Theme      string   `json:"theme"`
	Ignored    bool     `json:"ignored,omitempty"`
	Stale      bool     `json:"stale,omitempty"`
}

// ValidateData describes a decoded file that was not loaded.
type ValidateData struct {
	FileName string   `json:"fileName"`
	FileSize int64    `json:"fileSize"`
	Format   string   `json:"format"`
	RowCount int      `json:"rowCount"`
	Fields   []string `json:"fields"`
	Numeric  []string `json:"numeric"`
}

// ChartData is the API form of a chart view.
type ChartData struct {
	chart.View
	Summaries []chart.Summary `json:"summaries,omitempty"`
}

type fieldRequest struct {
	Field string `json:"field" form:"field" binding:"required"`
}

type kindRequest struct {
	Kind string `json:"kind" form:"kind" binding:"required"`
}

type themeRequest struct {
	Theme string `json:"theme" form:"theme"`
}
