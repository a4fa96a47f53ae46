package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"tutord/internal/config"
	"tutord/internal/download"
	"tutord/internal/manager"
	"tutord/pkg/types"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testConfig(t *testing.T, srcURL string, minSize int64) config.Config {
	t.Helper()
	cfg := config.Config{
		DataDir: t.TempDir(),
		Asset:   config.AssetConfig{FileName: "gemma.task", SourceURL: srcURL, MinSizeBytes: minSize},
	}
	cfg.ApplyDefaults()
	return cfg
}

type authRecorder struct {
	mu  sync.Mutex
	got string
}

func (a *authRecorder) set(v string) {
	a.mu.Lock()
	a.got = v
	a.mu.Unlock()
}

func (a *authRecorder) get() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.got
}

// assetServer serves size bytes and records the Authorization header.
func assetServer(t *testing.T, size int, rec *authRecorder) *httptest.Server {
	t.Helper()
	body := make([]byte, size)
	for i := range body {
		body[i] = byte(i)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec != nil {
			rec.set(r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRuntimeDownloadInitializeGenerate(t *testing.T) {
	var auth authRecorder
	srv := assetServer(t, 4096, &auth)
	cfg := testConfig(t, srv.URL+"/gemma.task", 2048)
	cfg.Download.AuthToken = "hf_test"
	rt, err := New(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if a := rt.Asset(); a.Exists || a.Valid {
		t.Fatalf("asset should be missing: %+v", a)
	}
	res, err := rt.Download(testCtx(t), types.DownloadRequest{})
	if err != nil || !res.Success || res.BytesWritten != 4096 {
		t.Fatalf("download: res=%+v err=%v", res, err)
	}
	if got := auth.get(); got != "Bearer hf_test" {
		t.Fatalf("authorization=%q", got)
	}
	if res.DestinationPath != filepath.Join(cfg.Asset.Dir, "gemma.task") {
		t.Fatalf("dest=%q", res.DestinationPath)
	}
	if a := rt.Asset(); !a.Valid || a.SizeBytes != 4096 {
		t.Fatalf("asset should be valid: %+v", a)
	}

	ir, err := rt.Initialize(testCtx(t), types.InitializeRequest{})
	if err != nil || !ir.Success || ir.BackendName != "mock" {
		t.Fatalf("initialize: %+v err=%v", ir, err)
	}
	st := rt.Status()
	if st.Session == nil || st.Session.MaxSequenceTokens != config.DefaultMaxTokens {
		t.Fatalf("expected configured token default in session: %+v", st.Session)
	}

	gr, err := rt.Generate(testCtx(t), types.GenerateRequest{Prompt: "What is a fraction?"})
	if err != nil || gr.Text == "" {
		t.Fatalf("generate: %+v err=%v", gr, err)
	}
	if err := rt.Close(testCtx(t)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if rt.Ready() {
		t.Fatalf("expected not ready after close")
	}
}

func TestRuntimeInitializeUndersized(t *testing.T) {
	cfg := testConfig(t, "https://example.com/m.task", 100)
	rt, err := New(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := rt.Locator().ResolvePath()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := rt.Initialize(testCtx(t), types.InitializeRequest{})
	if !manager.IsAssetMissingOrUndersized(err) || res.Success || res.ErrorMessage == "" {
		t.Fatalf("expected rejection, got res=%+v err=%v", res, err)
	}
	if _, err := rt.Generate(testCtx(t), types.GenerateRequest{Prompt: "hi"}); !manager.IsNotInitialized(err) {
		t.Fatalf("expected not initialized, got %v", err)
	}
}

func TestRuntimeStartDownloadRejectsSecond(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "8")
		_, _ = w.Write([]byte("abcd"))
		w.(http.Flusher).Flush()
		<-release
		_, _ = w.Write([]byte("efgh"))
	}))
	defer srv.Close()
	defer close(release)

	rt, err := New(context.Background(), testConfig(t, srv.URL, 1), Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	first, err := rt.StartDownload(types.DownloadRequest{})
	if err != nil || !first.Started {
		t.Fatalf("first start: %+v err=%v", first, err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for rt.Progress().BytesTransferred < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("first download made no progress: %+v", rt.Progress())
		}
		time.Sleep(time.Millisecond)
	}
	if p := rt.Progress(); !p.IsDownloading || p.TotalBytes != 8 || p.FractionComplete != 0.5 {
		t.Fatalf("unexpected progress: %+v", p)
	}
	if _, err := rt.StartDownload(types.DownloadRequest{}); !download.IsAlreadyInProgress(err) {
		t.Fatalf("expected already in progress, got %v", err)
	}
	if !rt.CancelDownload() {
		t.Fatalf("expected cancel to acknowledge a running download")
	}
	for rt.Progress().IsDownloading {
		if time.Now().After(deadline) {
			t.Fatalf("download did not stop after cancel")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRuntimeDownloadOutlivesCaller(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	rt, err := New(context.Background(), testConfig(t, srv.URL, 1), Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := rt.Download(ctx, types.DownloadRequest{}); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !rt.Progress().IsDownloading {
		t.Fatalf("download should keep running after the caller gives up")
	}
	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for rt.Progress().IsDownloading {
		if time.Now().After(deadline) {
			t.Fatalf("download never finished")
		}
		time.Sleep(time.Millisecond)
	}
	if a := rt.Asset(); a.SizeBytes != int64(len("payload")) {
		t.Fatalf("unexpected asset: %+v", a)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "https://example.com/m.task", 1)
	cfg.Backend.Kind = "tflite"
	if _, err := New(context.Background(), cfg, Options{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestRuntimeInitializeRefusedWhileDownloading(t *testing.T) {
	const size = 8 * 1024
	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(size))
		_, _ = w.Write(make([]byte, size/2))
		w.(http.Flusher).Flush()
		<-release
		_, _ = w.Write(make([]byte, size/2))
	}))
	defer srv.Close()
	defer unblock()

	rt, err := New(context.Background(), testConfig(t, srv.URL, 1024), Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := rt.StartDownload(types.DownloadRequest{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for rt.Progress().BytesTransferred < size/2 {
		if time.Now().After(deadline) {
			t.Fatalf("download made no progress: %+v", rt.Progress())
		}
		time.Sleep(time.Millisecond)
	}
	// the partial file already passes the size threshold
	if !rt.Asset().Valid {
		t.Fatalf("expected partial file above the threshold: %+v", rt.Asset())
	}
	res, err := rt.Initialize(testCtx(t), types.InitializeRequest{})
	if !download.IsAlreadyInProgress(err) || res.Success {
		t.Fatalf("expected refusal while downloading, got res=%+v err=%v", res, err)
	}
	if rt.Ready() || rt.Manager().Phase() != manager.PhaseUninitialized {
		t.Fatalf("manager must stay uninitialized, got %s", rt.Manager().Phase())
	}

	unblock()
	for rt.Progress().IsDownloading {
		if time.Now().After(deadline) {
			t.Fatalf("download never finished")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := rt.Initialize(testCtx(t), types.InitializeRequest{}); err != nil {
		t.Fatalf("initialize after download: %v", err)
	}
	if !rt.Ready() {
		t.Fatalf("expected ready after download completed")
	}
}

func TestRuntimeStartDownloadRejectsUnsupportedSource(t *testing.T) {
	rt, err := New(context.Background(), testConfig(t, "https://example.com/m.task", 1), Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	res, err := rt.StartDownload(types.DownloadRequest{SourceURL: "ftp://mirror.local/gemma.task"})
	if !download.IsInvalidRequest(err) || res.Success || res.Started {
		t.Fatalf("expected invalid request, got res=%+v err=%v", res, err)
	}
	if rt.Progress().IsDownloading {
		t.Fatalf("nothing should be running")
	}
}
