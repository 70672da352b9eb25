package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sheetviz/internal/chart"
	"sheetviz/internal/theme"
	"sheetviz/internal/workspace"
)

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   s.Version,
	})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func apiError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, APIResponse{Success: false, Error: err.Error()})
}

func (s *Server) stateData(ws *workspace.Workspace) StateData {
	state := ws.Snapshot()
	data := StateData{
		Fields:     []string{},
		Numeric:    []string{},
		X:          state.X,
		Y:          state.Y,
		Kind:       string(state.Kind),
		Generation: state.Generation,
		Theme:      string(s.theme.Mode()),
	}
	if data.Y == nil {
		data.Y = []string{}
	}
	if d := state.Dataset; state.Loaded() {
		data.Loaded = true
		data.FileName = d.FileName
		data.FileSize = d.FileSize
		data.RowCount = d.Len()
		data.Fields = d.Fields
		if numeric := d.Numeric(); numeric != nil {
			data.Numeric = numeric
		}
	}
	return data
}

func (s *Server) apiState(c *gin.Context) {
	ok(c, s.stateData(currentWorkspace(c)))
}

func (s *Server) apiUpload(c *gin.Context) {
	ws := currentWorkspace(c)
	res, err := s.upload(c, ws)
	if err != nil {
		apiError(c, errorStatus(err), err)
		return
	}
	data := s.stateData(ws)
	data.Ignored = res.Ignored
	data.Stale = res.Stale
	ok(c, data)
}

// apiValidate decodes a file and reports its shape without loading it.
func (s *Server) apiValidate(c *gin.Context) {
	header, err := s.formFile(c)
	if err != nil {
		apiError(c, errorStatus(err), err)
		return
	}
	d, err := s.decode(header)
	if err != nil {
		apiError(c, errorStatus(err), err)
		return
	}
	data := ValidateData{
		FileName: d.FileName,
		FileSize: d.FileSize,
		Format:   d.Format,
		RowCount: d.Len(),
		Fields:   d.Fields,
		Numeric:  d.Numeric(),
	}
	if data.Fields == nil {
		data.Fields = []string{}
	}
	if data.Numeric == nil {
		data.Numeric = []string{}
	}
	ok(c, data)
}

func (s *Server) apiSelectX(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBind(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	ws := currentWorkspace(c)
	if err := ws.SelectX(req.Field); err != nil {
		apiError(c, errorStatus(err), err)
		return
	}
	ok(c, s.stateData(ws))
}

func (s *Server) apiToggleY(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBind(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	ws := currentWorkspace(c)
	if err := ws.ToggleY(req.Field); err != nil {
		apiError(c, errorStatus(err), err)
		return
	}
	ok(c, s.stateData(ws))
}

func (s *Server) apiKind(c *gin.Context) {
	var req kindRequest
	if err := c.ShouldBind(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	kind, err := workspace.ParseChartKind(req.Kind)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	ws := currentWorkspace(c)
	if err := ws.SelectChartKind(kind); err != nil {
		apiError(c, errorStatus(err), err)
		return
	}
	ok(c, s.stateData(ws))
}

func (s *Server) apiChart(c *gin.Context) {
	view := chart.Build(currentWorkspace(c).Snapshot())
	data := ChartData{View: view}
	if view.Renderable {
		data.Summaries = chart.Summarize(view.Series)
	}
	ok(c, data)
}

func (s *Server) apiTheme(c *gin.Context) {
	ok(c, gin.H{"theme": s.theme.Mode()})
}

// apiSetTheme sets the theme named in the body, or toggles without one.
func (s *Server) apiSetTheme(c *gin.Context) {
	var req themeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			apiError(c, http.StatusBadRequest, err)
			return
		}
	}

	if req.Theme == "" {
		if _, err := s.theme.Toggle(); err != nil {
			apiError(c, http.StatusInternalServerError, err)
			return
		}
		ok(c, gin.H{"theme": s.theme.Mode()})
		return
	}

	mode, err := theme.ParseMode(req.Theme)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	if err := s.theme.Set(mode); err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{"theme": s.theme.Mode()})
}
