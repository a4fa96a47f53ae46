// Package asset maps the model asset to its on-device location and answers
// existence and size questions about it.
package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tutord/internal/common/fsutil"
	"tutord/pkg/types"
)

// Descriptor is the static description of the model asset.
type Descriptor struct {
	// Dir is the private storage directory; a leading '~' is expanded.
	Dir string
	// FileName is the asset file name inside Dir.
	FileName string
	// SourceURL is where the asset is downloaded from.
	SourceURL string
	// MinSizeBytes is the smallest size accepted as a complete download.
	MinSizeBytes int64
	// SHA256 is an optional lowercase hex digest of the asset content.
	SHA256 string
}

// Locator resolves a Descriptor to a filesystem path.
type Locator struct {
	desc Descriptor
	path string
}

// NewLocator builds a Locator. The path is resolved once.
func NewLocator(d Descriptor) *Locator {
	dir, err := fsutil.ExpandHome(d.Dir)
	if err != nil {
		dir = d.Dir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	d.SHA256 = strings.ToLower(strings.TrimSpace(d.SHA256))
	return &Locator{desc: d, path: filepath.Join(dir, d.FileName)}
}

// Descriptor returns the descriptor the locator was built from.
func (l *Locator) Descriptor() Descriptor { return l.desc }

// ResolvePath returns the absolute path of the asset.
func (l *Locator) ResolvePath() string { return l.path }

// Exists reports whether a regular file is present at the asset path.
// I/O errors are treated as absence.
func (l *Locator) Exists() bool {
	_, ok := fsutil.RegularFileSize(l.path)
	return ok
}

// SizeBytes returns the asset size, or 0 when it does not exist.
func (l *Locator) SizeBytes() int64 {
	sz, _ := fsutil.RegularFileSize(l.path)
	return sz
}

// Valid reports whether the asset exists and meets the minimum size.
func (l *Locator) Valid() bool {
	return l.Exists() && l.SizeBytes() >= l.desc.MinSizeBytes
}

// Status returns a wire view of the asset.
func (l *Locator) Status() types.AssetStatus {
	sz, ok := fsutil.RegularFileSize(l.path)
	return types.AssetStatus{
		Path:         l.path,
		Exists:       ok,
		SizeBytes:    sz,
		MinSizeBytes: l.desc.MinSizeBytes,
		Valid:        ok && sz >= l.desc.MinSizeBytes,
	}
}

// VerifyDigest hashes the asset and compares it to the configured SHA256.
// It returns nil when no digest is configured.
func (l *Locator) VerifyDigest() error {
	if l.desc.SHA256 == "" {
		return nil
	}
	got, err := FileSHA256(l.path)
	if err != nil {
		return err
	}
	if got != l.desc.SHA256 {
		return fmt.Errorf("sha256 mismatch for %s: calculated %s, expected %s", l.path, got, l.desc.SHA256)
	}
	return nil
}

// FileSHA256 returns the lowercase hex SHA-256 of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
