package manager

import (
	"fmt"
	"strings"
)

// Backend kinds accepted by NewBackend.
const (
	BackendMock  = "mock"
	BackendLlama = "llama"
)

// NewBackend selects a backend implementation by kind.
func NewBackend(kind string, mock MockOptions) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendMock:
		return NewMockBackend(mock), nil
	case BackendLlama:
		return NewLlamaBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s|%s)", kind, BackendMock, BackendLlama)
	}
}
