package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// createModelFile creates a sparse file of exactly size bytes and returns its path.
func createModelFile(t *testing.T, dir, name string, size int64) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return p
}

// spyBackend counts calls and returns configured results.
type spyBackend struct {
	mu        sync.Mutex
	initErr   error
	genErr    error
	reply     string
	genDelay  time.Duration
	initCalls int
	genCalls  int
	disposals int
	lastPath  string
	lastCfg   InitConfig
	lastParam SamplingParams
	// block, when set, holds Initialize until closed
	block chan struct{}
	// disposeBlock, when set, holds Dispose until closed
	disposeBlock chan struct{}
	loaded       bool
}

func (s *spyBackend) Name() string { return "spy" }

func (s *spyBackend) Initialize(ctx context.Context, modelPath string, cfg InitConfig) error {
	s.mu.Lock()
	s.initCalls++
	s.lastPath = modelPath
	s.lastCfg = cfg
	block := s.block
	err := s.initErr
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err == nil {
		s.mu.Lock()
		s.loaded = true
		s.mu.Unlock()
	}
	return err
}

func (s *spyBackend) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	s.mu.Lock()
	s.genCalls++
	s.lastParam = params
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		return "", errors.New("backend not loaded")
	}
	if s.genDelay > 0 {
		if err := sleepCtx(ctx, s.genDelay); err != nil {
			return "", err
		}
	}
	if s.genErr != nil {
		return "", s.genErr
	}
	return s.reply, nil
}

func (s *spyBackend) Dispose() error {
	s.mu.Lock()
	block := s.disposeBlock
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	s.mu.Lock()
	s.disposals++
	s.loaded = false
	s.mu.Unlock()
	return nil
}

func (s *spyBackend) counts() (initCalls, genCalls, disposals int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initCalls, s.genCalls, s.disposals
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// readyManager returns a manager with a ready session backed by spy.
func readyManager(t *testing.T, spy *spyBackend) *Manager {
	t.Helper()
	p := createModelFile(t, t.TempDir(), "gemma.task", 2048)
	m := NewWithConfig(ManagerConfig{Backend: spy, DefaultAssetPath: p, MinAssetSizeBytes: 1024})
	if _, err := m.Initialize(testCtx(t), "", InitConfig{MaxSequenceTokens: 512}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return m
}
