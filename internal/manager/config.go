package manager

import (
	"github.com/rs/zerolog"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Backend performs the actual initialization and generation.
	// Defaults to the mock backend when nil.
	Backend Backend
	// DefaultAssetPath is used when Initialize is called with an empty path.
	DefaultAssetPath string
	// MinAssetSizeBytes is the size an asset must reach to pass validation.
	MinAssetSizeBytes int64
	// Publisher receives lifecycle events; defaults to a no-op publisher.
	Publisher EventPublisher
	// Logger defaults to zerolog.Nop().
	Logger *zerolog.Logger
	// AssetGuard, when set, is consulted before validation. A non-nil error
	// refuses the attempt and leaves the phase untouched.
	AssetGuard func(path string) error
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		phase:        PhaseUninitialized,
		backend:      cfg.Backend,
		defaultAsset: cfg.DefaultAssetPath,
		minSize:      cfg.MinAssetSizeBytes,
		publisher:    cfg.Publisher,
		log:          zerolog.Nop(),
		genCh:        make(chan struct{}, 1),
		guard:        cfg.AssetGuard,
	}
	// Apply defaults if unset
	if m.backend == nil {
		m.backend = NewMockBackend(MockOptions{})
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	}
	if m.minSize < 0 {
		m.minSize = 0
	}
	m.startTime = timeNow()
	return m
}
