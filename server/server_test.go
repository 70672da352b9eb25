package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetviz/config"
	"sheetviz/internal/theme"
)

const monthlyCSV = "Month,Sales,Profit,Notes\nJan,100,20,ok\nFeb,150,35,late\nMar,120,25,ok\n"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	return config.Config{
		MaxUploadSize: 1 << 20,
		MaxRows:       100,
		SessionTTL:    time.Hour,
		MaxSessions:   10,
		ChartWidth:    400,
		ChartHeight:   300,
	}
}

func newTestServer(t *testing.T) (*Server, *theme.MemoryStore) {
	t.Helper()
	store := theme.NewMemoryStore()
	th, err := theme.Load(store)
	require.NoError(t, err)
	return New(testConfig(), th), store
}

// client replays the session cookie like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, s *Server) *client {
	return &client{t: t, handler: s.Handler()}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, values map[string]string) *httptest.ResponseRecorder {
	form := make([]string, 0, len(values))
	for k, v := range values {
		form = append(form, k+"="+v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(strings.Join(form, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(path, name, content string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(c.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

type stateReply struct {
	Success bool      `json:"success"`
	Data    StateData `json:"data"`
	Error   string    `json:"error"`
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateReply {
	t.Helper()
	var reply stateReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	s.Version = "1.2.3"
	rec := newClient(t, s).get("/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestIndex_Placeholder(t *testing.T) {
	s, _ := newTestServer(t)
	rec := newClient(t, s).get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload a file to start visualizing your data")
	assert.NotContains(t, rec.Body.String(), `class="dark"`)
}

func TestIndex_UploadAndSelect(t *testing.T) {
	s, _ := newTestServer(t)
	c := newClient(t, s)

	rec := c.upload("/upload", "months.csv", monthlyCSV)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	page := c.get("/").Body.String()
	assert.Contains(t, page, "Select X and Y axes to render chart")
	assert.Contains(t, page, "months.csv")
	assert.Contains(t, page, `<option value="Month" selected>`)
	assert.Contains(t, page, `value="Profit"`)
	assert.NotContains(t, page, `name="field" value="Notes"`)

	require.Equal(t, http.StatusSeeOther, c.postForm("/axis/y", map[string]string{"field": "Sales"}).Code)
	page = c.get("/").Body.String()
	assert.Contains(t, page, `src="/chart.svg"`)
	assert.Contains(t, page, "Preview")
}

func TestIndex_BadUploadShowsError(t *testing.T) {
	s, _ := newTestServer(t)
	c := newClient(t, s)

	rec := c.upload("/upload", "broken.xlsx", "definitely not a zip")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "xlsx error")
}

func TestIndex_EmptyUploadFormRedirects(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := newClient(t, s).do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestChartImage(t *testing.T) {
	s, _ := newTestServer(t)
	c := newClient(t, s)

	rec := c.get("/chart.svg")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Upload a file to start visualizing your data", rec.Body.String())

	c.upload("/api/upload", "months.csv", monthlyCSV)
	assert.Equal(t, http.StatusConflict, c.get("/chart.svg").Code)

	c.postJSON("/api/axis/y", `{"field":"Sales"}`)
	rec = c.get("/chart.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "<svg")

	c.postForm("/kind", map[string]string{"kind": "bar"})
	rec = c.get("/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestTheme_TogglePersists(t *testing.T) {
	s, store := newTestServer(t)
	c := newClient(t, s)

	rec := c.postForm("/theme", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	v, _ := store.Get(theme.Key)
	assert.Equal(t, "dark", v)
	assert.Contains(t, c.get("/").Body.String(), `class="dark"`)

	c.postForm("/theme", nil)
	v, _ = store.Get(theme.Key)
	assert.Equal(t, "light", v)
}

func TestSessions_AreIsolated(t *testing.T) {
	s, _ := newTestServer(t)
	alice, bob := newClient(t, s), newClient(t, s)

	alice.upload("/api/upload", "months.csv", monthlyCSV)
	assert.True(t, decodeState(t, alice.get("/api/state")).Data.Loaded)
	assert.False(t, decodeState(t, bob.get("/api/state")).Data.Loaded)
	assert.Equal(t, 1, s.sessions.len())
}

func TestSessions_ReadsDoNotCreateSessions(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/", "/api/state", "/api/chart", "/chart.svg", "/api/theme", "/api/health"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Empty(t, rec.Result().Cookies(), path)
	}
	assert.Equal(t, 0, s.sessions.len())

	c := newClient(t, s)
	c.postForm("/axis/x", map[string]string{"field": "Month"})
	assert.Equal(t, 1, s.sessions.len())
	require.Len(t, c.cookies, 1)
	assert.Equal(t, sessionCookie, c.cookies[0].Name)
}

func TestSessions_CappedByMaxSessions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 2
	th, err := theme.Load(theme.NewMemoryStore())
	require.NoError(t, err)
	s := New(cfg, th)
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.sessions.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	first := newClient(t, s)
	first.upload("/api/upload", "months.csv", monthlyCSV)
	for i := 0; i < 3; i++ {
		newClient(t, s).upload("/api/upload", "months.csv", monthlyCSV)
	}
	assert.Equal(t, 2, s.sessions.len())
	assert.False(t, decodeState(t, first.get("/api/state")).Data.Loaded, "oldest session was evicted")
}
