package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvrach/chatmark/internal/annotate"
	"github.com/lvrach/chatmark/internal/config"
	"github.com/lvrach/chatmark/internal/richtext"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testRouter(t *testing.T, token string) http.Handler {
	t.Helper()
	cfg := config.NewDefault().Server
	if token != "" {
		cfg.Auth.Mode = config.AuthModeToken
	}
	return NewRouter(cfg, token, richtext.New(), discardLogger)
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := testRouter(t, "secret")
	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := do(t, h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String(), path)
	}
}

func TestCompile(t *testing.T) {
	h := testRouter(t, "")

	rec := do(t, h, http.MethodPost, "/v1/compile", `{"text":"text **bold space**"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got annotate.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "text bold space", got.FinalText)
	assert.Equal(t, []annotate.Annotation{{Kind: annotate.Bold, Start: 5, Length: 10}}, got.Annotations)
}

func TestCompile_WireFormat(t *testing.T) {
	h := testRouter(t, "")

	rec := do(t, h, http.MethodPost, "/v1/compile", `{"text":"[x](https://x.io)"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"finalText":"x","annotations":[{"type":2,"start":0,"length":1,"content":"https://x.io"}]}`,
		rec.Body.String())
}

func TestCompile_Batch(t *testing.T) {
	h := testRouter(t, "")

	rec := do(t, h, http.MethodPost, "/v1/compile", `{"texts":["*a*","b"]}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got compileBatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, "a", got.Results[0].FinalText)
	assert.Equal(t, "b", got.Results[1].FinalText)
	assert.Empty(t, got.Results[1].Annotations)
}

func TestCompile_BadRequests(t *testing.T) {
	h := testRouter(t, "")

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"text":`},
		{"empty text", `{"text":"  "}`},
		{"missing text", `{}`},
		{"both fields", `{"text":"a","texts":["b"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/compile", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestCompile_BodyTooLarge(t *testing.T) {
	cfg := config.NewDefault().Server
	cfg.MaxBodyBytes = 16
	h := NewRouter(cfg, "", richtext.New(), discardLogger)

	rec := do(t, h, http.MethodPost, "/v1/compile", `{"text":"`+strings.Repeat("a", 64)+`"}`, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAuth(t *testing.T) {
	h := testRouter(t, "secret")

	rec := do(t, h, http.MethodPost, "/v1/compile", `{"text":"a"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/compile", `{"text":"a"}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/compile", `{"text":"a"}`, "secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := NewRouter(config.NewDefault().Server, "", richtext.New(), logger)

	do(t, h, http.MethodGet, "/health/live", "", "")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "/health/live", line["path"])
	assert.EqualValues(t, 200, line["status"])
	assert.NotEmpty(t, line["request_id"])
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := config.NewDefault().Server
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	errc := make(chan error, 1)
	go func() { errc <- Run(ctx, cfg, "", richtext.New(), discardLogger, ready) }()

	addr := <-ready
	resp, err := http.Get("http://" + addr + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_TokenModeRequiresToken(t *testing.T) {
	cfg := config.NewDefault().Server
	cfg.Auth.Mode = config.AuthModeToken

	err := Run(context.Background(), cfg, "", richtext.New(), discardLogger, nil)
	assert.Error(t, err)
}
