package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"tutord/internal/app"
	"tutord/internal/config"
	"tutord/internal/httpapi"
)

// newOrigin serves body as the remote model asset. When gate is non-nil the
// handler flushes the first half and waits on it before sending the rest.
func newOrigin(t *testing.T, body []byte, gate <-chan struct{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		if gate == nil {
			_, _ = w.Write(body)
			return
		}
		half := len(body) / 2
		_, _ = w.Write(body[:half])
		w.(http.Flusher).Flush()
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write(body[half:])
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newServer wires a full runtime behind the HTTP API.
func newServer(t *testing.T, sourceURL string, minSize int64) (*httptest.Server, *app.Runtime) {
	t.Helper()
	cfg := config.Config{
		DataDir: t.TempDir(),
		Asset:   config.AssetConfig{FileName: "gemma.task", SourceURL: sourceURL, MinSizeBytes: minSize},
	}
	cfg.ApplyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rt, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(rt))
	t.Cleanup(srv.Close)
	return srv, rt
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodGet, url, nil)
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodPost, url, payload)
}

func httpDo(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, rd)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func newOriginStatus(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(status), status)
	}))
	t.Cleanup(srv.Close)
	return srv
}
