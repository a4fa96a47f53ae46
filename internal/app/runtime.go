// Package app assembles the asset locator, download coordinator and model
// manager from configuration and exposes them as one service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tutord/internal/asset"
	"tutord/internal/config"
	"tutord/internal/download"
	"tutord/internal/manager"
	"tutord/pkg/types"
)

// Runtime owns the single asset, downloader and model session of a process.
type Runtime struct {
	cfg config.Config
	loc *asset.Locator
	dl  *download.Coordinator
	mgr *manager.Manager
	log zerolog.Logger

	// baseCtx outlives HTTP requests so a client disconnect does not stop a download.
	baseCtx context.Context
}

// Options injects collaborators, mainly for tests.
type Options struct {
	Logger    *zerolog.Logger
	Backend   manager.Backend
	Client    *http.Client
	Publisher manager.EventPublisher
}

// New builds a Runtime. ctx bounds background downloads started through it.
func New(ctx context.Context, cfg config.Config, opts Options) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loc := asset.NewLocator(asset.Descriptor{
		Dir:          cfg.Asset.Dir,
		FileName:     cfg.Asset.FileName,
		SourceURL:    cfg.Asset.SourceURL,
		MinSizeBytes: cfg.Asset.MinSizeBytes,
		SHA256:       cfg.Asset.SHA256,
	})

	client := opts.Client
	if client == nil {
		client = newDownloadClient(cfg.Download.ConnectTimeout.D())
	}
	dlLog := log.With().Str("component", "download").Logger()
	dl := download.New(loc, download.Options{
		AuthToken: cfg.Download.AuthToken,
		ChunkSize: cfg.Download.ChunkSize,
		Client:    client,
		UserAgent: cfg.Download.UserAgent,
		Logger:    &dlLog,
	})

	backend := opts.Backend
	if backend == nil {
		b, err := manager.NewBackend(cfg.Backend.Kind, manager.MockOptions{
			InitDelay:  cfg.Backend.MockInitDelay.D(),
			TokenDelay: cfg.Backend.MockTokenDelay.D(),
		})
		if err != nil {
			return nil, err
		}
		backend = b
	}
	mgrLog := log.With().Str("component", "manager").Logger()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Backend:           backend,
		DefaultAssetPath:  loc.ResolvePath(),
		MinAssetSizeBytes: cfg.Asset.MinSizeBytes,
		Publisher:         opts.Publisher,
		Logger:            &mgrLog,
		AssetGuard: func(path string) error {
			if dl.Writing(path) {
				return fmt.Errorf("%s is being downloaded: %w", path, download.ErrAlreadyInProgress)
			}
			return nil
		},
	})

	return &Runtime{cfg: cfg, loc: loc, dl: dl, mgr: mgr, log: log, baseCtx: ctx}, nil
}

// newDownloadClient bounds connection setup but not the body transfer,
// which for a multi-gigabyte asset can take arbitrarily long.
func newDownloadClient(connectTimeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if connectTimeout > 0 {
		tr.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext
		tr.TLSHandshakeTimeout = connectTimeout
		tr.ResponseHeaderTimeout = connectTimeout
	}
	return &http.Client{Transport: tr}
}

// Config returns the effective configuration.
func (r *Runtime) Config() config.Config { return r.cfg }

// Locator returns the asset locator.
func (r *Runtime) Locator() *asset.Locator { return r.loc }

// Manager returns the model manager.
func (r *Runtime) Manager() *manager.Manager { return r.mgr }

// Coordinator returns the download coordinator.
func (r *Runtime) Coordinator() *download.Coordinator { return r.dl }

func toDownloadRequest(req types.DownloadRequest) download.Request {
	return download.Request{
		SourceURL:       strings.TrimSpace(req.SourceURL),
		DestinationPath: strings.TrimSpace(req.DestinationPath),
		AuthToken:       req.AuthToken,
	}
}

// Download starts a download and waits for its outcome. If ctx ends first
// the download keeps running in the background and ctx.Err() is returned.
func (r *Runtime) Download(ctx context.Context, req types.DownloadRequest) (types.DownloadResponse, error) {
	type outcome struct {
		res download.Result
		err error
	}
	done := make(chan outcome, 1)
	r.dl.Start(r.baseCtx, toDownloadRequest(req), download.Callbacks{
		OnComplete: func(res download.Result) { done <- outcome{res: res} },
		OnError:    func(err error) { done <- outcome{err: err} },
	})
	select {
	case o := <-done:
		if o.err != nil {
			return types.DownloadResponse{Success: false, ErrorMessage: o.err.Error()}, o.err
		}
		return types.DownloadResponse{Success: true, DestinationPath: o.res.Path, BytesWritten: o.res.BytesWritten}, nil
	case <-ctx.Done():
		return types.DownloadResponse{}, ctx.Err()
	}
}

// StartDownload begins a background download and returns once it is
// running. A rejection (a download already running, an unusable source or
// destination) is returned directly; later failures are only logged.
func (r *Runtime) StartDownload(req types.DownloadRequest) (types.DownloadResponse, error) {
	var (
		mu       sync.Mutex
		returned bool
		syncErr  error
	)
	r.dl.Start(r.baseCtx, toDownloadRequest(req), download.Callbacks{
		OnComplete: func(res download.Result) {
			r.log.Info().Str("dest", res.Path).Int64("bytes", res.BytesWritten).Msg("background download finished")
		},
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			if !returned {
				syncErr = err
				return
			}
			if !download.IsCancelled(err) {
				r.log.Error().Err(err).Msg("background download failed")
			}
		},
	})
	mu.Lock()
	returned = true
	err := syncErr
	mu.Unlock()
	if err != nil {
		return types.DownloadResponse{Success: false, ErrorMessage: err.Error()}, err
	}
	return types.DownloadResponse{Success: true, Started: true, DestinationPath: r.destination(req)}, nil
}

func (r *Runtime) destination(req types.DownloadRequest) string {
	if p := strings.TrimSpace(req.DestinationPath); p != "" {
		return p
	}
	return r.loc.ResolvePath()
}

// Progress reports the current download state.
func (r *Runtime) Progress() types.ProgressResponse {
	s := r.dl.State()
	return types.ProgressResponse{
		IsDownloading:    s.IsDownloading,
		FractionComplete: s.Fraction(),
		BytesTransferred: s.BytesTransferred,
		TotalBytes:       s.TotalBytes,
	}
}

// CancelDownload requests cancellation and reports whether a download was running.
func (r *Runtime) CancelDownload() bool { return r.dl.Cancel() }

// Initialize validates the asset and starts a model session. Zero numeric
// fields take the configured backend defaults. An asset that a running
// download is still writing is refused with download.ErrAlreadyInProgress.
func (r *Runtime) Initialize(ctx context.Context, req types.InitializeRequest) (types.InitializeResponse, error) {
	cfg := manager.InitConfig{
		UseAcceleratedBackend: req.UseAcceleratedBackend,
		MaxSequenceTokens:     req.MaxSequenceTokens,
		BackendThreadHint:     req.BackendThreadHint,
	}
	if cfg.MaxSequenceTokens == 0 {
		cfg.MaxSequenceTokens = r.cfg.Backend.MaxSequenceTokens
	}
	if cfg.BackendThreadHint == 0 {
		cfg.BackendThreadHint = r.cfg.Backend.ThreadHint
	}
	res, err := r.mgr.Initialize(ctx, strings.TrimSpace(req.AssetPath), cfg)
	out := types.InitializeResponse{Success: res.Success, BackendName: res.BackendName, SessionID: res.SessionID}
	if err != nil {
		out.Success = false
		out.ErrorMessage = err.Error()
	}
	return out, err
}

// Generate runs one prompt through the active session.
func (r *Runtime) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	res, err := r.mgr.Generate(ctx, req.Prompt, manager.SamplingParams{
		Temperature: float32(req.Temperature),
		TopK:        req.TopK,
		TopP:        float32(req.TopP),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return types.GenerateResponse{}, err
	}
	return types.GenerateResponse{Text: res.Text, ElapsedMillis: res.ElapsedMillis, TokensPerSecond: res.TokensPerSecond}, nil
}

// Dispose ends the active session.
func (r *Runtime) Dispose(ctx context.Context) error { return r.mgr.Dispose(ctx) }

// Asset reports the local asset state.
func (r *Runtime) Asset() types.AssetStatus { return r.loc.Status() }

// Ready reports whether generate calls are accepted.
func (r *Runtime) Ready() bool { return r.mgr.Ready() }

// Status aggregates manager, download and asset state.
func (r *Runtime) Status() types.StatusResponse {
	st := r.mgr.Status()
	st.Download = r.Progress()
	st.Asset = r.Asset()
	return st
}

// Close cancels any running download and disposes the session.
func (r *Runtime) Close(ctx context.Context) error {
	r.dl.Cancel()
	err := r.mgr.Dispose(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.log.Warn().Err(err).Msg("runtime close: dispose interrupted")
	}
	return err
}
