package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/njchilds90/gosymdiff/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postTool(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

const squareExpr = `{"type":"mul","a":{"type":"var","name":"x"},"b":{"type":"var","name":"x"}}`

func TestTool_Derivative(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec, out := postTool(t, h, `{"tool":"derivative","params":{"expr":`+squareExpr+`,"var":"x","bindings":{"x":4}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "((x * 1) + (x * 1))", out["string"])

	result := out["result"].(map[string]interface{})
	assert.Equal(t, 8.0, result["value"])
	assert.Equal(t, "add", result["expr"].(map[string]interface{})["type"])
}

func TestTool_ErrorInBody(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec, out := postTool(t, h, `{"tool":"evaluate","params":{"expr":{"type":"var","name":"y"}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, out["error"], "undefined variable")
}

func TestTool_PathLimitFromConfig(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Limits.MaxPaths = 2 }).Handler()
	_, out := postTool(t, h, `{"tool":"gradient","params":{"expr":`+squareExpr+`}}`)
	assert.Contains(t, out["error"], "limit is 2")
}

func TestTool_RejectsBadRequests(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	cases := map[string]string{
		"unknown_field": `{"tool":"evaluate","extra":1}`,
		"trailing":      `{"tool":"evaluate"} {"tool":"evaluate"}`,
		"not_json":      `tool=evaluate`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, out := postTool(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestTool_BodyTooLarge(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Server.MaxBodyBytes = 32 }).Handler()
	body := `{"tool":"evaluate","params":{"expr":` + squareExpr + `}}`
	rec, _ := postTool(t, h, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestTool_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSchemaAndHealth(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var spec struct {
		Tools []map[string]interface{} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.NotEmpty(t, spec.Tools)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	s := New(cfg, slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	postTool(t, s.Handler(), `{"tool":"count_paths","params":{"expr":`+squareExpr+`}}`)
	assert.Contains(t, buf.String(), "tool=count_paths")
	assert.Contains(t, buf.String(), "request=1")
}

func TestHTTPServer_Timeouts(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, nil).HTTPServer(cfg.Server)
	assert.Equal(t, cfg.Server.Addr, srv.Addr)
	assert.Equal(t, cfg.Server.ReadHeaderTimeout.Std(), srv.ReadHeaderTimeout)
	assert.Equal(t, cfg.Server.IdleTimeout.Std(), srv.IdleTimeout)
}
