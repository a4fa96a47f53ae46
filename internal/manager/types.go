package manager

import "time"

// Phase is the initialization state of the manager.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseValidating    Phase = "validating"
	PhaseInitializing  Phase = "initializing"
	PhaseReady         Phase = "ready"
	PhaseRejected      Phase = "rejected"
	PhaseFailed        Phase = "failed"
	PhaseDisposing     Phase = "disposing"
)

// busy reports whether an initialization attempt or a teardown is running.
func (p Phase) busy() bool {
	return p == PhaseValidating || p == PhaseInitializing || p == PhaseDisposing
}

// InitConfig is handed verbatim to the backend on initialization.
type InitConfig struct {
	UseAcceleratedBackend bool
	MaxSequenceTokens     int
	BackendThreadHint     int
}

// SamplingParams are passed through to the backend without range checks.
type SamplingParams struct {
	Temperature float32
	TopK        int
	TopP        float32
	// MaxTokens of 0 lets the backend decide.
	MaxTokens int
}

// Session records a successfully initialized backend.
type Session struct {
	ID         string
	Ready      bool
	AssetPath  string
	Config     InitConfig
	Backend    string
	ReadySince time.Time
}

// InitResult is the outcome of Initialize.
type InitResult struct {
	Success     bool
	Reason      string
	BackendName string
	SessionID   string
}

// GenerationResult wraps backend output with timing metadata.
type GenerationResult struct {
	Text            string
	ElapsedMillis   int64
	TokensPerSecond float64
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	Phase   Phase
	Session *Session
	Err     string
}
