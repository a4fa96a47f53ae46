package manager

import (
	"fmt"

	"tutord/internal/common/fsutil"
)

// SanityReport describes runtime checks for the asset and backend.
type SanityReport struct {
	Backend     string `json:"backend"`
	LlamaBuilt  bool   `json:"llama_built"`
	AssetPath   string `json:"asset_path"`
	AssetFound  bool   `json:"asset_found"`
	AssetSize   int64  `json:"asset_size"`
	MinSize     int64  `json:"min_size"`
	AssetPassed bool   `json:"asset_passed"`
	Error       string `json:"error,omitempty"`
}

// SanityCheck reports whether the default asset would pass validation.
// It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	r := SanityReport{
		Backend:    m.backend.Name(),
		LlamaBuilt: llamaBuilt,
		AssetPath:  m.defaultAsset,
		MinSize:    m.minSize,
	}
	if m.defaultAsset == "" {
		r.Error = "no asset path configured"
		return r
	}
	size, ok := fsutil.RegularFileSize(m.defaultAsset)
	r.AssetFound = ok
	r.AssetSize = size
	switch {
	case !ok:
		r.Error = "asset not found"
	case size < m.minSize:
		r.Error = fmt.Sprintf("asset undersized: %d < %d bytes", size, m.minSize)
	default:
		r.AssetPassed = true
	}
	return r
}
