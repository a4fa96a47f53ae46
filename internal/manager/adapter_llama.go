//go:build llama

package manager

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// gpuLayersAll offloads every layer when the accelerated backend is requested.
const gpuLayersAll = 999

// llamaBackend owns an in-process go-llama.cpp model.
type llamaBackend struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
	gpu     bool
}

// NewLlamaBackend returns the in-process llama.cpp backend.
func NewLlamaBackend() Backend { return &llamaBackend{} }

func (b *llamaBackend) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gpu {
		return "llama.cpp (gpu)"
	}
	return "llama.cpp (cpu)"
}

func (b *llamaBackend) Initialize(ctx context.Context, modelPath string, cfg InitConfig) error {
	if strings.TrimSpace(modelPath) == "" {
		return errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(zn(cfg.MaxSequenceTokens, 1024)),
	}
	if cfg.UseAcceleratedBackend {
		mo = append(mo, llama.SetGPULayers(gpuLayersAll))
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return err
	}
	b.mu.Lock()
	if b.model != nil {
		b.model.Free()
	}
	b.model = m
	b.threads = cfg.BackendThreadHint
	b.gpu = cfg.UseAcceleratedBackend
	b.mu.Unlock()
	return nil
}

func (b *llamaBackend) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	b.mu.Lock()
	model, threads := b.model, b.threads
	b.mu.Unlock()
	if model == nil {
		return "", errors.New("llama model not initialized")
	}
	// Stop prediction once the context is canceled
	model.SetTokenCallback(func(string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := model.Predict(prompt, mapSamplingToPredictOptions(params, threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (b *llamaBackend) Dispose() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.model != nil {
		b.model.Free()
		b.model = nil
	}
	return nil
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// mapSamplingToPredictOptions converts sampling params into go-llama.cpp options
func mapSamplingToPredictOptions(p SamplingParams, threads int) []llama.PredictOption {
	return []llama.PredictOption{
		llama.SetTokens(zn(p.MaxTokens, llama.DefaultOptions.Tokens)),
		llama.SetThreads(zn(threads, llama.DefaultOptions.Threads)),
		llama.SetTopP(zf(p.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(p.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(p.Temperature, llama.DefaultOptions.Temperature)),
	}
}
