package manager

import "context"

// Backend abstracts the inference runtime behind the manager.
// Concrete implementations (mock, llama.cpp) are selected by injection.
type Backend interface {
	// Name identifies the backend in status output, e.g. "mock" or "llama.cpp (gpu)".
	Name() string
	// Initialize loads the model at modelPath. It is called at most once per
	// successful session and receives the caller's InitConfig verbatim.
	Initialize(ctx context.Context, modelPath string, cfg InitConfig) error
	// Generate returns the completion for prompt. Implementations should
	// return when the context is canceled.
	Generate(ctx context.Context, prompt string, params SamplingParams) (string, error)
	// Dispose releases any resources acquired by Initialize.
	Dispose() error
}
