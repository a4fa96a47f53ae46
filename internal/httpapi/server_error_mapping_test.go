package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutord/internal/download"
	"tutord/internal/manager"
	"tutord/pkg/types"
)

func TestInitializeErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"in progress", manager.ErrAlreadyInProgress, http.StatusConflict},
		{"dependency", fmt.Errorf("wrap: %w", manager.ErrDependencyUnavailable("llama missing")), http.StatusServiceUnavailable},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := &mockService{initRes: types.InitializeResponse{ErrorMessage: c.err.Error()}, initErr: c.err}
			w := postJSON(t, NewMux(svc), "/initialize", `{}`)
			if w.Code != c.want {
				t.Fatalf("status=%d want %d", w.Code, c.want)
			}
			e := decodeError(t, w)
			if e.Success || e.Code != c.want || e.ErrorMessage != c.err.Error() {
				t.Fatalf("unexpected payload: %+v", e)
			}
		})
	}
}

func TestInitializeRejectedAssetIs422(t *testing.T) {
	// a real rejection produced by the manager
	m := manager.NewWithConfig(manager.ManagerConfig{MinAssetSizeBytes: 1})
	_, err := m.Initialize(context.Background(), "/does/not/exist.task", manager.InitConfig{})
	if err == nil {
		t.Fatalf("expected rejection")
	}
	w := postJSON(t, NewMux(&mockService{initErr: err}), "/initialize", `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty prompt", manager.ErrEmptyPrompt, http.StatusBadRequest},
		{"not initialized", manager.ErrNotInitialized, http.StatusConflict},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := postJSON(t, NewMux(&mockService{genErr: c.err}), "/generate", `{"prompt":"  "}`)
			if w.Code != c.want {
				t.Fatalf("status=%d want %d", w.Code, c.want)
			}
		})
	}
}

func TestDownloadErrorMapping(t *testing.T) {
	upstream := upstreamError(t)
	if download.HTTPStatusOf(upstream) != http.StatusForbidden {
		t.Fatalf("expected upstream 403, got %v", upstream)
	}
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"in progress", download.ErrAlreadyInProgress, http.StatusConflict},
		{"cancelled", download.ErrCancelled, http.StatusConflict},
		// the upstream 403 must not become our own status
		{"upstream", upstream, http.StatusBadGateway},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := postJSON(t, NewMux(&mockService{downloadErr: c.err}), "/download", `{}`)
			if w.Code != c.want {
				t.Fatalf("status=%d want %d", w.Code, c.want)
			}
		})
	}

	w := postJSON(t, NewMux(&mockService{startErr: download.ErrAlreadyInProgress}), "/download?async=1", `{}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("async status=%d", w.Code)
	}
}

// upstreamError produces a real 403 failure from the download coordinator.
func upstreamError(t *testing.T) error {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gated model", http.StatusForbidden)
	}))
	defer srv.Close()
	c := download.New(nil, download.Options{SourceURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Download(ctx, download.Request{DestinationPath: t.TempDir() + "/m.task"}, nil)
	return err
}
