package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// timeNow is swapped in tests.
var timeNow = time.Now

type Manager struct {
	mu           sync.RWMutex
	phase        Phase
	session      *Session
	err          string
	backend      Backend
	defaultAsset string
	minSize      int64
	publisher    EventPublisher
	log          zerolog.Logger
	guard        func(path string) error

	// genCh admits a single in-flight generate call.
	genCh chan struct{}

	startTime   time.Time
	initsTotal  uint64
	generations uint64
}

// New constructs a Manager with the given backend and validation threshold.
func New(backend Backend, defaultAssetPath string, minAssetSizeBytes int64) *Manager {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(ManagerConfig{
		Backend:           backend,
		DefaultAssetPath:  defaultAssetPath,
		MinAssetSizeBytes: minAssetSizeBytes,
	})
}

// SetEventPublisher replaces the event publisher. A nil publisher drops events.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
}

// Ready reports whether a session is ready to accept generate calls.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase == PhaseReady && m.session != nil && m.session.Ready
}

// Phase returns the current initialization phase.
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// BackendName returns the configured backend name.
func (m *Manager) BackendName() string { return m.backend.Name() }

// MinAssetSizeBytes returns the validation threshold.
func (m *Manager) MinAssetSizeBytes() int64 { return m.minSize }

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(e)
}
