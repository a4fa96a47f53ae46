package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutord/internal/common/fsutil"
)

// Initialize validates the asset at assetPath and initializes the backend.
//
// Phases: uninitialized -> validating -> initializing -> ready. A missing or
// undersized asset ends the attempt in rejected without calling the backend;
// a backend error ends it in failed. Both are terminal for the attempt and a
// new call starts over at validating. While ready, Initialize returns success
// without calling the backend again. An empty assetPath uses the configured
// default. A refusal from the asset guard is returned as is and the phase is
// left unchanged. No timeout is applied; ctx is handed to the backend.
func (m *Manager) Initialize(ctx context.Context, assetPath string, cfg InitConfig) (InitResult, error) {
	startTs := time.Now()
	if strings.TrimSpace(assetPath) == "" {
		assetPath = m.defaultAsset
	}

	m.mu.Lock()
	if m.phase == PhaseReady && m.session != nil {
		res := InitResult{Success: true, BackendName: m.session.Backend, SessionID: m.session.ID}
		m.mu.Unlock()
		m.log.Debug().Str("session", res.SessionID).Msg("manager event=init_noop already ready")
		return res, nil
	}
	if m.phase.busy() {
		m.mu.Unlock()
		initializeTotal.WithLabelValues("in_progress").Inc()
		return InitResult{Reason: ErrAlreadyInProgress.Error()}, ErrAlreadyInProgress
	}
	if m.guard != nil {
		if err := m.guard(assetPath); err != nil {
			m.mu.Unlock()
			initializeTotal.WithLabelValues("guarded").Inc()
			m.log.Warn().Err(err).Str("asset", assetPath).Msg("manager event=init_refused")
			return InitResult{Reason: err.Error()}, err
		}
	}
	m.phase = PhaseValidating
	m.err = ""
	m.mu.Unlock()

	m.log.Info().Str("asset", assetPath).Msg("manager event=init_start")
	m.publish(Event{Name: "init_start", Fields: map[string]any{"asset": assetPath}})

	// Validating: existence + minimum size stand in for an integrity check.
	size, ok := fsutil.RegularFileSize(assetPath)
	if !ok || size < m.minSize {
		var err error
		if !ok {
			err = assetRejectedError{msg: fmt.Sprintf("%s does not exist", assetPath)}
		} else {
			err = assetRejectedError{msg: fmt.Sprintf("%s is %d bytes, need at least %d", assetPath, size, m.minSize)}
		}
		m.endAttempt(PhaseRejected, err)
		initializeTotal.WithLabelValues("rejected").Inc()
		m.log.Warn().Err(err).Msg("manager event=init_rejected")
		m.publish(Event{Name: "init_rejected", Fields: map[string]any{"asset": assetPath, "size": size, "error": err.Error()}})
		return InitResult{Reason: err.Error()}, err
	}

	m.mu.Lock()
	m.phase = PhaseInitializing
	m.mu.Unlock()

	if err := m.backend.Initialize(ctx, assetPath, cfg); err != nil {
		wrapped := backendInitError{cause: err}
		_ = m.backend.Dispose()
		m.endAttempt(PhaseFailed, wrapped)
		initializeTotal.WithLabelValues("failed").Inc()
		m.log.Error().Err(err).Str("backend", m.backend.Name()).Msg("manager event=init_failed")
		m.publish(Event{Name: "init_failed", Fields: map[string]any{"asset": assetPath, "error": err.Error()}})
		return InitResult{Reason: wrapped.Error(), BackendName: m.backend.Name()}, wrapped
	}

	sess := &Session{
		ID:         uuid.NewString(),
		Ready:      true,
		AssetPath:  assetPath,
		Config:     cfg,
		Backend:    m.backend.Name(),
		ReadySince: timeNow(),
	}
	m.mu.Lock()
	m.session = sess
	m.phase = PhaseReady
	m.err = ""
	m.initsTotal++
	m.mu.Unlock()

	initializeTotal.WithLabelValues("ready").Inc()
	m.log.Info().
		Str("session", sess.ID).
		Str("backend", sess.Backend).
		Bool("accelerated", cfg.UseAcceleratedBackend).
		Int("max_tokens", cfg.MaxSequenceTokens).
		Dur("dur", time.Since(startTs)).
		Msg("manager event=init_ready")
	m.publish(Event{Name: "init_ready", SessionID: sess.ID, Fields: map[string]any{"backend": sess.Backend, "dur_ms": int(time.Since(startTs) / time.Millisecond)}})
	return InitResult{Success: true, BackendName: sess.Backend, SessionID: sess.ID}, nil
}

// endAttempt records a terminal failure for the current attempt.
func (m *Manager) endAttempt(p Phase, err error) {
	m.mu.Lock()
	m.phase = p
	m.session = nil
	m.err = err.Error()
	m.mu.Unlock()
}
