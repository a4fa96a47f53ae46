//go:build !llama

package manager

// This file provides a no-CGO stub for the llama backend. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real backend lives in adapter_llama.go (tagged 'llama').

import "context"

// llamaBuilt indicates this binary was compiled without llama support.
var llamaBuilt = false

const llamaMissing = "llama support not built (missing 'llama' build tag)"

type llamaBackend struct{}

// NewLlamaBackend returns a stub that refuses to initialize.
func NewLlamaBackend() Backend { return llamaBackend{} }

func (llamaBackend) Name() string { return "llama.cpp (unavailable)" }

func (llamaBackend) Initialize(ctx context.Context, modelPath string, cfg InitConfig) error {
	// Fail fast: llama runtime not available in this build.
	return ErrDependencyUnavailable(llamaMissing)
}

func (llamaBackend) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	// Should never be called because Initialize returns an error.
	return "", ErrDependencyUnavailable(llamaMissing)
}

func (llamaBackend) Dispose() error { return nil }
