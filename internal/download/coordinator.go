// Package download fetches the model asset over HTTP into local storage with
// bearer authorization, chunked progress reporting and cooperative cancellation.
//
// At most one download runs at a time per Coordinator. The file is written in
// place; a failed or cancelled transfer can leave a truncated file behind, and
// it is up to the initialization gate's size check to reject it.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"tutord/internal/asset"
	"tutord/internal/common/fsutil"
)

const (
	defaultChunkSize = 64 * 1024
	defaultUserAgent = "tutord/0.1"
)

// State is the observable state of the coordinator.
type State struct {
	IsDownloading    bool
	BytesTransferred int64
	// TotalBytes is -1 when the server did not send a content length.
	TotalBytes      int64
	CancelRequested bool
	// Destination is the file being written, empty when idle.
	Destination string
}

// Fraction returns BytesTransferred/TotalBytes, or 0 when the total is unknown.
func (s State) Fraction() float64 {
	if s.TotalBytes <= 0 {
		return 0
	}
	f := float64(s.BytesTransferred) / float64(s.TotalBytes)
	if f > 1 {
		f = 1
	}
	return f
}

// Request overrides coordinator defaults for a single download.
type Request struct {
	SourceURL       string
	DestinationPath string
	AuthToken       string
}

// Result describes a completed download.
type Result struct {
	Path         string
	BytesWritten int64
}

// Callbacks receive the outcome of Start. Any of them may be nil.
// Exactly one of OnComplete or OnError is invoked per Start call.
type Callbacks struct {
	OnProgress func(fraction float64)
	OnComplete func(Result)
	OnError    func(error)
}

func (cb Callbacks) progress(f float64) {
	if cb.OnProgress != nil {
		cb.OnProgress(f)
	}
}

func (cb Callbacks) complete(r Result) {
	if cb.OnComplete != nil {
		cb.OnComplete(r)
	}
}

func (cb Callbacks) fail(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// Options configures a Coordinator.
type Options struct {
	// SourceURL defaults to the locator descriptor's SourceURL.
	SourceURL string
	// AuthToken is sent as "Authorization: Bearer <token>" when non-empty.
	AuthToken string
	// ChunkSize is the read buffer size; defaults to 64 KiB.
	ChunkSize int
	// Client defaults to a client without an overall timeout.
	Client    *http.Client
	UserAgent string
	Logger    *zerolog.Logger
}

// Coordinator serializes asset downloads.
type Coordinator struct {
	loc       *asset.Locator
	client    *http.Client
	sourceURL string
	authToken string
	chunkSize int
	userAgent string
	log       zerolog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// New constructs a Coordinator writing to the locator's path by default.
func New(loc *asset.Locator, opts Options) *Coordinator {
	c := &Coordinator{
		loc:       loc,
		client:    opts.Client,
		sourceURL: opts.SourceURL,
		authToken: opts.AuthToken,
		chunkSize: opts.ChunkSize,
		userAgent: opts.UserAgent,
		log:       zerolog.Nop(),
		state:     State{TotalBytes: -1},
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.chunkSize <= 0 {
		c.chunkSize = defaultChunkSize
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.sourceURL == "" && loc != nil {
		c.sourceURL = loc.Descriptor().SourceURL
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	return c
}

// State returns a copy of the current download state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns whether a download is running and its completed fraction.
func (c *Coordinator) Progress() (bool, float64) {
	s := c.State()
	return s.IsDownloading, s.Fraction()
}

// Cancel requests the running download to stop. It reports whether a
// download was running.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsDownloading {
		return false
	}
	c.state.CancelRequested = true
	if c.cancel != nil {
		c.cancel()
	}
	c.log.Info().Msg("download event=cancel_requested")
	return true
}

// Writing reports whether a running download is writing to path.
func (c *Coordinator) Writing(path string) bool {
	c.mu.Lock()
	dest := c.state.Destination
	running := c.state.IsDownloading
	c.mu.Unlock()
	return running && dest != "" && samePath(dest, path)
}

func samePath(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

// Start begins a download in the background and reports through cb.
// A rejected request (a download already running, a missing or non-HTTP
// source, a missing destination) reaches cb.OnError synchronously and the
// running download is not affected.
func (c *Coordinator) Start(ctx context.Context, req Request, cb Callbacks) {
	dctx, req, err := c.begin(ctx, req)
	if err != nil {
		cb.fail(err)
		return
	}
	go func() {
		res, err := c.run(dctx, req, cb.progress)
		if err != nil {
			cb.fail(err)
			return
		}
		cb.complete(res)
	}()
}

// Download runs a download to completion on the calling goroutine.
func (c *Coordinator) Download(ctx context.Context, req Request, onProgress func(float64)) (Result, error) {
	dctx, req, err := c.begin(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return c.run(dctx, req, onProgress)
}

// begin validates req and claims the single download slot.
func (c *Coordinator) begin(ctx context.Context, req Request) (context.Context, Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.IsDownloading {
		downloadsTotal.WithLabelValues(resultLabel(ErrAlreadyInProgress)).Inc()
		c.log.Warn().Msg("download event=rejected reason=already_in_progress")
		return nil, req, ErrAlreadyInProgress
	}
	req, err := c.resolve(req)
	if err != nil {
		downloadsTotal.WithLabelValues(resultLabel(err)).Inc()
		c.log.Warn().Err(err).Msg("download event=rejected reason=invalid_request")
		return nil, req, err
	}
	dctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = State{IsDownloading: true, TotalBytes: -1, Destination: req.DestinationPath}
	inProgress.Set(1)
	return dctx, req, nil
}

// finish releases the download slot and resets state.
func (c *Coordinator) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = State{TotalBytes: -1}
	inProgress.Set(0)
}

func (c *Coordinator) cancelRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.CancelRequested
}

func (c *Coordinator) resolve(req Request) (Request, error) {
	if req.SourceURL == "" {
		req.SourceURL = c.sourceURL
	}
	if req.DestinationPath == "" && c.loc != nil {
		req.DestinationPath = c.loc.ResolvePath()
	}
	if req.AuthToken == "" {
		req.AuthToken = c.authToken
	}
	if strings.TrimSpace(req.SourceURL) == "" {
		return req, invalidRequestError{msg: "no source url"}
	}
	if strings.TrimSpace(req.DestinationPath) == "" {
		return req, invalidRequestError{msg: "no destination path"}
	}
	u, err := url.Parse(req.SourceURL)
	if err != nil {
		return req, invalidRequestError{msg: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return req, invalidRequestError{msg: fmt.Sprintf("unsupported source url %q", req.SourceURL)}
	}
	return req, nil
}

func (c *Coordinator) run(ctx context.Context, req Request, onProgress func(float64)) (res Result, err error) {
	defer c.finish()
	startTs := time.Now()
	defer func() {
		downloadsTotal.WithLabelValues(resultLabel(err)).Inc()
		if err != nil {
			c.log.Error().Err(err).Str("dest", req.DestinationPath).Msg("download event=failed")
		}
	}()

	c.log.Info().Str("url", req.SourceURL).Str("dest", req.DestinationPath).Msg("download event=start")

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.SourceURL, nil)
	if err != nil {
		return Result{}, invalidRequestError{msg: err.Error()}
	}
	hreq.Header.Set("User-Agent", c.userAgent)
	if req.AuthToken != "" {
		hreq.Header.Set("Authorization", "Bearer "+req.AuthToken)
	}

	resp, err := c.client.Do(hreq)
	if err != nil {
		if c.stopped(ctx) {
			return Result{}, ErrCancelled
		}
		return Result{}, errNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Result{}, errHTTPStatus(resp.StatusCode, msg)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = -1
	}
	c.mu.Lock()
	c.state.TotalBytes = total
	c.mu.Unlock()

	if err := fsutil.EnsureParentDir(req.DestinationPath); err != nil {
		return Result{}, err
	}
	f, err := os.Create(req.DestinationPath)
	if err != nil {
		return Result{}, fmt.Errorf("create %s: %w", req.DestinationPath, err)
	}
	defer f.Close()

	pw := &progressWriter{
		total: total,
		hash:  sha256.New(),
		onUpdate: func(written int64) {
			c.mu.Lock()
			c.state.BytesTransferred = written
			c.mu.Unlock()
		},
		report: onProgress,
	}
	out := io.MultiWriter(f, pw)
	buf := make([]byte, c.chunkSize)
	for {
		if c.stopped(ctx) {
			return Result{}, ErrCancelled
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return Result{}, fmt.Errorf("write %s: %w", req.DestinationPath, werr)
			}
			bytesTotal.Add(float64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if c.stopped(ctx) {
				return Result{}, ErrCancelled
			}
			return Result{}, errNetwork(readErr)
		}
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("close %s: %w", req.DestinationPath, err)
	}

	if want := c.expectedDigest(); want != "" {
		if got := hex.EncodeToString(pw.hash.Sum(nil)); got != want {
			return Result{}, errDigest(got, want)
		}
	}

	size, ok := fsutil.RegularFileSize(req.DestinationPath)
	if !ok {
		return Result{}, errors.New("downloaded file disappeared: " + req.DestinationPath)
	}
	c.log.Info().
		Str("dest", req.DestinationPath).
		Str("size", humanize.Bytes(uint64(size))).
		Dur("dur", time.Since(startTs)).
		Msg("download event=complete")
	return Result{Path: req.DestinationPath, BytesWritten: size}, nil
}

// stopped reports whether the download should stop before the next chunk.
func (c *Coordinator) stopped(ctx context.Context) bool {
	return c.cancelRequested() || ctx.Err() != nil
}

func (c *Coordinator) expectedDigest() string {
	if c.loc == nil {
		return ""
	}
	return c.loc.Descriptor().SHA256
}
