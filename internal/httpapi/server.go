// Package httpapi exposes the tutor model runtime over HTTP.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tutord/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	// Download blocks until the transfer ends or ctx is done; in the latter
	// case the transfer keeps running.
	Download(ctx context.Context, req types.DownloadRequest) (types.DownloadResponse, error)
	StartDownload(req types.DownloadRequest) (types.DownloadResponse, error)
	Progress() types.ProgressResponse
	CancelDownload() bool
	Initialize(ctx context.Context, req types.InitializeRequest) (types.InitializeResponse, error)
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Dispose(ctx context.Context) error
	Asset() types.AssetStatus
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	h := &handlers{svc: svc}

	r.Group(func(r chi.Router) {
		r.Use(requireBearer)
		r.Post("/download", h.download)
		r.Post("/download/cancel", h.cancelDownload)
		r.Post("/initialize", h.initialize)
		r.Post("/generate", h.generate)
		r.Delete("/session", h.dispose)
	})

	r.Get("/download/progress", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Progress())
	})
	r.Get("/asset", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Asset())
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not initialized"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Accept", "Authorization", "Content-Type", "X-Log-Level"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}

// requireBearer enforces the configured token on the routes it wraps.
func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(authToken)) != 1 {
			unauthorizedTotal.Inc()
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type handlers struct {
	svc Service
}

// decodeJSON reads a JSON body into v. An empty body is accepted when
// allowEmpty is set and leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	if allowEmpty && r.ContentLength == 0 {
		return true
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// fail writes err unless the client or server went away first.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, lvl LogLevel, op string, start time.Time, err error) {
	if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
		return
	}
	status := statusForError(err)
	writeJSONError(w, status, err.Error())
	logOpEnd(r, lvl, op, status, start, err)
}

func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	var req types.DownloadRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	logOp(r, lvl, "download")

	if async := r.URL.Query().Get("async"); async == "1" || async == "true" {
		res, err := h.svc.StartDownload(req)
		if err != nil {
			h.fail(w, r, lvl, "download", start, err)
			return
		}
		writeJSON(w, http.StatusAccepted, res)
		logOpEnd(r, lvl, "download", http.StatusAccepted, start, nil)
		return
	}

	ctx, cancel := handlerContext(r.Context(), 0)
	defer cancel()
	res, err := h.svc.Download(ctx, req)
	if err != nil {
		h.fail(w, r, lvl, "download", start, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
	logOpEnd(r, lvl, "download", http.StatusOK, start, nil)
}

func (h *handlers) cancelDownload(w http.ResponseWriter, r *http.Request) {
	running := h.svc.CancelDownload()
	if lvl := requestLogLevel(r); lvl >= LevelInfo && zlog != nil {
		zlog.Info().Bool("running", running).Msg("download cancel requested")
	}
	writeJSON(w, http.StatusOK, types.CancelResponse{Acknowledged: true})
}

func (h *handlers) initialize(w http.ResponseWriter, r *http.Request) {
	var req types.InitializeRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if req.MaxSequenceTokens < 0 || req.BackendThreadHint < 0 {
		writeJSONError(w, http.StatusBadRequest, "max_sequence_tokens and backend_thread_hint must be >= 0")
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	logOp(r, lvl, "initialize")

	ctx, cancel := handlerContext(r.Context(), 0)
	defer cancel()
	res, err := h.svc.Initialize(ctx, req)
	if err != nil {
		h.fail(w, r, lvl, "initialize", start, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
	logOpEnd(r, lvl, "initialize", http.StatusOK, start, nil)
}

func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	logOp(r, lvl, "generate")

	ctx, cancel := handlerContext(r.Context(), generateTimeout)
	defer cancel()
	res, err := h.svc.Generate(ctx, req)
	if err != nil {
		h.fail(w, r, lvl, "generate", start, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
	logOpEnd(r, lvl, "generate", http.StatusOK, start, nil)
}

func (h *handlers) dispose(w http.ResponseWriter, r *http.Request) {
	lvl := requestLogLevel(r)
	start := time.Now()
	ctx, cancel := handlerContext(r.Context(), 0)
	defer cancel()
	if err := h.svc.Dispose(ctx); err != nil {
		h.fail(w, r, lvl, "dispose", start, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logOpEnd(r, lvl, "dispose", http.StatusNoContent, start, nil)
}
