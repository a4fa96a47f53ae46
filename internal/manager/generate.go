package manager

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Generate forwards prompt to the backend and wraps the result with timing.
//
// A prompt that trims to nothing fails with ErrEmptyPrompt whatever the
// state; otherwise a manager without a ready session fails with
// ErrNotInitialized and the backend is not called. Sampling parameters are
// passed through unchecked. Calls are admitted one at a time.
func (m *Manager) Generate(ctx context.Context, prompt string, params SamplingParams) (GenerationResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return GenerationResult{}, ErrEmptyPrompt
	}
	if !m.Ready() {
		return GenerationResult{}, ErrNotInitialized
	}

	release, err := m.beginGeneration(ctx)
	if err != nil {
		return GenerationResult{}, err
	}
	defer release()

	// The session may have been disposed while waiting for the slot.
	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()
	if sess == nil || !sess.Ready {
		return GenerationResult{}, ErrNotInitialized
	}

	start := time.Now()
	text, err := m.backend.Generate(ctx, prompt, params)
	elapsed := time.Since(start)
	if err != nil {
		generateDuration.WithLabelValues(sess.Backend, "error").Observe(elapsed.Seconds())
		m.log.Error().Err(err).Str("session", sess.ID).Msg("manager event=generate_error")
		return GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	generateDuration.WithLabelValues(sess.Backend, "ok").Observe(elapsed.Seconds())

	res := GenerationResult{
		Text:            text,
		ElapsedMillis:   elapsed.Milliseconds(),
		TokensPerSecond: tokensPerSecond(text, elapsed),
	}
	m.mu.Lock()
	m.generations++
	m.mu.Unlock()
	m.log.Debug().
		Str("session", sess.ID).
		Int64("elapsed_ms", res.ElapsedMillis).
		Float64("tps", res.TokensPerSecond).
		Msg("manager event=generate_done")
	m.publish(Event{Name: "generate_done", SessionID: sess.ID, Fields: map[string]any{"elapsed_ms": res.ElapsedMillis}})
	return res, nil
}

// beginGeneration reserves the single in-flight slot. Returns a release func to be deferred.
func (m *Manager) beginGeneration(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	select {
	case m.genCh <- struct{}{}:
		return func() { <-m.genCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}
