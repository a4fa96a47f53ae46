package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

// sparseFile creates a file of the given logical size without writing its contents.
func sparseFile(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestResolvePathIsDeterministic(t *testing.T) {
	d := t.TempDir()
	l := NewLocator(Descriptor{Dir: d, FileName: "gemma.task"})
	want := filepath.Join(d, "gemma.task")
	if got := l.ResolvePath(); got != want {
		t.Fatalf("ResolvePath=%q want %q", got, want)
	}
	if l.ResolvePath() != NewLocator(Descriptor{Dir: d, FileName: "gemma.task"}).ResolvePath() {
		t.Fatalf("expected identical paths for identical descriptors")
	}
}

func TestMissingAsset(t *testing.T) {
	l := NewLocator(Descriptor{Dir: t.TempDir(), FileName: "absent.task", MinSizeBytes: 1})
	if l.Exists() {
		t.Fatalf("expected Exists=false")
	}
	if sz := l.SizeBytes(); sz != 0 {
		t.Fatalf("expected size 0, got %d", sz)
	}
	if l.Valid() {
		t.Fatalf("expected Valid=false")
	}
	st := l.Status()
	if st.Exists || st.SizeBytes != 0 || st.Valid {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestDirectoryIsNotAnAsset(t *testing.T) {
	d := t.TempDir()
	if err := os.Mkdir(filepath.Join(d, "gemma.task"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	l := NewLocator(Descriptor{Dir: d, FileName: "gemma.task"})
	if l.Exists() || l.SizeBytes() != 0 {
		t.Fatalf("directory should be treated as absent")
	}
}

func TestValidAgainstThreshold(t *testing.T) {
	d := t.TempDir()
	l := NewLocator(Descriptor{Dir: d, FileName: "gemma.task", MinSizeBytes: 900_000_000})
	sparseFile(t, l.ResolvePath(), 850_000_000)
	if !l.Exists() {
		t.Fatalf("expected Exists=true")
	}
	if l.Valid() {
		t.Fatalf("850MB should not satisfy a 900MB threshold")
	}
	sparseFile(t, l.ResolvePath(), 950_000_000)
	if got := l.SizeBytes(); got != 950_000_000 {
		t.Fatalf("size=%d", got)
	}
	if !l.Valid() {
		t.Fatalf("950MB should satisfy a 900MB threshold")
	}
}

func TestVerifyDigest(t *testing.T) {
	d := t.TempDir()
	content := []byte("weights")
	sum := sha256.Sum256(content)
	l := NewLocator(Descriptor{Dir: d, FileName: "m.task", SHA256: hex.EncodeToString(sum[:])})
	if err := os.WriteFile(l.ResolvePath(), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.VerifyDigest(); err != nil {
		t.Fatalf("VerifyDigest: %v", err)
	}
	if err := os.WriteFile(l.ResolvePath(), []byte("corrupt"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.VerifyDigest(); err == nil {
		t.Fatalf("expected digest mismatch")
	}
	if err := NewLocator(Descriptor{Dir: d, FileName: "m.task"}).VerifyDigest(); err != nil {
		t.Fatalf("no digest configured should pass, got %v", err)
	}
}
