package server

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"sheetviz/internal/chart"
	"sheetviz/internal/workspace"
)

const previewRows = 10

func (s *Server) pageData(ws *workspace.Workspace) PageData {
	state := ws.Snapshot()
	view := chart.Build(state)
	data := PageData{
		Dark:   s.theme.Dark(),
		Loaded: state.Loaded(),
		X:      state.X,
		Y:      state.Y,
		Kind:   string(state.Kind),
		Kinds:  []string{string(workspace.Line), string(workspace.Bar)},
		View:   view,
		Year:   time.Now().Year(),
	}
	if d := state.Dataset; data.Loaded {
		data.FileName = d.FileName
		data.FileSize = d.FileSize
		data.RowCount = d.Len()
		data.Fields = d.Fields
		data.Numeric = d.Numeric()
		data.Preview = d.Rows[:min(previewRows, d.Len())]
	}
	if view.Renderable {
		data.Summaries = chart.Summarize(view.Series)
	}
	return data
}

func (s *Server) render(c *gin.Context, status int, errMsg string) {
	data := s.pageData(currentWorkspace(c))
	data.Error = errMsg
	c.Header("Cache-Control", "no-cache")
	c.HTML(status, "index.html", data)
}

// fail re-renders the page with a banner instead of redirecting.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	s.render(c, errorStatus(err), err.Error())
}

func (s *Server) back(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) indexHandler(c *gin.Context) {
	s.render(c, http.StatusOK, "")
}

func (s *Server) uploadHandler(c *gin.Context) {
	_, err := s.upload(c, currentWorkspace(c))
	if err != nil && !errors.Is(err, errNoFile) {
		s.fail(c, err)
		return
	}
	s.back(c)
}

func (s *Server) selectXHandler(c *gin.Context) {
	if err := currentWorkspace(c).SelectX(c.PostForm("field")); err != nil {
		s.fail(c, err)
		return
	}
	s.back(c)
}

func (s *Server) toggleYHandler(c *gin.Context) {
	if err := currentWorkspace(c).ToggleY(c.PostForm("field")); err != nil {
		s.fail(c, err)
		return
	}
	s.back(c)
}

func (s *Server) kindHandler(c *gin.Context) {
	if err := currentWorkspace(c).SelectChartKind(workspace.ChartKind(c.PostForm("kind"))); err != nil {
		s.fail(c, err)
		return
	}
	s.back(c)
}

func (s *Server) themeHandler(c *gin.Context) {
	if _, err := s.theme.Toggle(); err != nil {
		log.Errorf("[theme] %v", err)
		s.fail(c, err)
		return
	}
	s.back(c)
}

func (s *Server) chartImageHandler(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := chart.Build(currentWorkspace(c).Snapshot())
		if !view.Renderable {
			c.String(http.StatusConflict, view.Message)
			return
		}
		var buf bytes.Buffer
		err := chart.Render(&buf, view, chart.RenderOptions{
			Format: format,
			Width:  s.cfg.ChartWidth,
			Height: s.cfg.ChartHeight,
			Dark:   s.theme.Dark(),
		})
		if err != nil {
			log.Errorf("[chart] %v", err)
			c.String(http.StatusInternalServerError, "Failed to render chart")
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, chart.ContentType(format), buf.Bytes())
	}
}
