package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvrach/chatmark/internal/annotate"
	"github.com/lvrach/chatmark/internal/config"
	"github.com/lvrach/chatmark/internal/richtext"
	"github.com/lvrach/chatmark/internal/server"
)

func TestCompile_AgainstServer(t *testing.T) {
	cfg := config.NewDefault().Server
	cfg.Auth.Mode = config.AuthModeToken
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(server.NewRouter(cfg, "secret", richtext.New(), logger))
	defer srv.Close()

	c := Client{BaseURL: srv.URL + "/", Token: "secret"}
	require.NoError(t, c.Ping(context.Background()))

	res, err := c.Compile(context.Background(), "~~gone~~")
	require.NoError(t, err)
	assert.Equal(t, "gone", res.FinalText)
	assert.Equal(t, []annotate.Annotation{{Kind: annotate.Strikethrough, Start: 0, Length: 4}}, res.Annotations)
}

func TestCompile_Unauthorized(t *testing.T) {
	cfg := config.NewDefault().Server
	cfg.Auth.Mode = config.AuthModeToken
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(server.NewRouter(cfg, "secret", richtext.New(), logger))
	defer srv.Close()

	_, err := Client{BaseURL: srv.URL}.Compile(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestCompile_SendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/compile", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var p payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "hello", p.Text)

		_, _ = w.Write([]byte(`{"finalText":"hello","annotations":[]}`))
	}))
	defer srv.Close()

	res, err := Client{BaseURL: srv.URL}.Compile(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", res.FinalText)
}

func TestCompile_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := Client{BaseURL: srv.URL}.Compile(context.Background(), "x")
	assert.Error(t, err)
}

func TestPing_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := Client{BaseURL: srv.URL}.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
