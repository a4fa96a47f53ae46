package manager

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"
)

// MockOptions tunes the simulated backend.
type MockOptions struct {
	// InitDelay simulates model loading time.
	InitDelay time.Duration
	// TokenDelay is slept once per generated word.
	TokenDelay time.Duration
	// Replies overrides the canned responses.
	Replies []string
}

var defaultMockReplies = []string{
	"Great question! Let's break it down step by step so it is easy to follow.",
	"Think of it like this: every big idea is built from a few small ones. Let's look at each.",
	"Here is a short explanation, followed by an example you can try on your own.",
	"Nice work getting this far. Let's review the key points and then practice together.",
}

// mockBackend simulates an on-device runner with canned tutor replies.
type mockBackend struct {
	opts MockOptions

	mu     sync.Mutex
	loaded string
}

// NewMockBackend returns a Backend that never touches the model file contents.
func NewMockBackend(opts MockOptions) Backend {
	if len(opts.Replies) == 0 {
		opts.Replies = defaultMockReplies
	}
	return &mockBackend{opts: opts}
}

func (b *mockBackend) Name() string { return "mock" }

func (b *mockBackend) Initialize(ctx context.Context, modelPath string, cfg InitConfig) error {
	if strings.TrimSpace(modelPath) == "" {
		return errors.New("model path is empty")
	}
	if err := sleepCtx(ctx, b.opts.InitDelay); err != nil {
		return err
	}
	b.mu.Lock()
	b.loaded = modelPath
	b.mu.Unlock()
	return nil
}

func (b *mockBackend) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()
	if loaded == "" {
		return "", errors.New("mock model not initialized")
	}
	// pick a reply deterministically from the prompt hash
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	words := strings.Fields(b.opts.Replies[int(h.Sum32()%uint32(len(b.opts.Replies)))])
	if params.MaxTokens > 0 && len(words) > params.MaxTokens {
		words = words[:params.MaxTokens]
	}
	for range words {
		if err := sleepCtx(ctx, b.opts.TokenDelay); err != nil {
			return "", err
		}
	}
	return strings.Join(words, " "), nil
}

func (b *mockBackend) Dispose() error {
	b.mu.Lock()
	b.loaded = ""
	b.mu.Unlock()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
