// Package server serves the spreadsheet viewer: an HTML page driven by form
// posts, the rendered chart images and a JSON API over the same state.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"sheetviz/config"
	"sheetviz/internal/theme"
	"sheetviz/internal/workspace"
)

const (
	sessionCookie = "sheetviz_sid"
	workspaceKey  = "workspace"
)

// Server owns the per-browser workspaces and the process-wide theme.
type Server struct {
	Version string

	cfg      config.Config
	theme    *theme.Theme
	sessions *sessions
	engine   *gin.Engine
}

// New wires the router. th is shared by every session.
func New(cfg config.Config, th *theme.Theme) *Server {
	s := &Server{
		Version:  "dev",
		cfg:      cfg,
		theme:    th,
		sessions: newSessions(cfg.SessionTTL, cfg.MaxSessions),
	}
	s.engine = s.router()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.MaxMultipartMemory = s.cfg.MaxUploadSize
	router.SetHTMLTemplate(parseTemplates())

	router.GET("/api/health", s.healthHandler)

	// Reads see the caller's workspace if it has one; only state changes
	// create a session.
	read, write := s.withSession(false), s.withSession(true)

	router.GET("/", read, s.indexHandler)
	router.POST("/upload", write, s.uploadHandler)
	router.POST("/axis/x", write, s.selectXHandler)
	router.POST("/axis/y", write, s.toggleYHandler)
	router.POST("/kind", write, s.kindHandler)
	router.POST("/theme", read, s.themeHandler)
	router.GET("/chart.svg", read, s.chartImageHandler("svg"))
	router.GET("/chart.png", read, s.chartImageHandler("png"))

	api := router.Group("/api")
	api.GET("/state", read, s.apiState)
	api.POST("/upload", write, s.apiUpload)
	api.POST("/validate", s.apiValidate)
	api.POST("/axis/x", write, s.apiSelectX)
	api.POST("/axis/y", write, s.apiToggleY)
	api.POST("/kind", write, s.apiKind)
	api.GET("/chart", read, s.apiChart)
	api.GET("/theme", s.apiTheme)
	api.POST("/theme", s.apiSetTheme)

	return router
}

// withSession attaches the caller's workspace. With create set, a session
// and cookie are issued when the caller has none; otherwise an unknown
// caller gets an empty workspace that is never stored.
func (s *Server) withSession(create bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		if !create {
			ws, ok := s.sessions.lookup(id)
			if !ok {
				ws = workspace.New()
			}
			c.Set(workspaceKey, ws)
			c.Next()
			return
		}

		ws, id := s.sessions.get(id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

func currentWorkspace(c *gin.Context) *workspace.Workspace {
	return c.MustGet(workspaceKey).(*workspace.Workspace)
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Infof("[server] running on http://%s", s.cfg.Addr())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infof("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
