package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("warn", &buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
	buf.Reset()
	off := newLogger("off", &buf)
	off.Error().Msg("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

// writeConfig writes a YAML config pointing the asset into dir.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	p := filepath.Join(dir, "tutord.yaml")
	body := "log_level: \"off\"\nasset:\n  dir: " + dir + "\n  file_name: gemma.task\n  min_size_bytes: 16\n" + extra
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	g := &globalOpts{configPath: writeConfig(t, dir, ""), logLevel: "debug", dataDir: "/srv/tutord"}
	cfg, err := g.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.DataDir != "/srv/tutord" || cfg.Asset.Dir != dir {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestCheckMissingAsset(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "check", "--config", writeConfig(t, dir, ""))
	if err == nil {
		t.Fatalf("expected error for missing asset")
	}
	if !strings.Contains(out, "exists:   false") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestDownloadThenGenerate(t *testing.T) {
	payload := bytes.Repeat([]byte("w"), 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "  source_url: "+srv.URL+"/gemma.task\n")

	out, err := run(t, "download", "--config", cfgPath, "--quiet")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.Contains(out, "downloaded ") {
		t.Fatalf("unexpected output: %q", out)
	}

	if out, err := run(t, "check", "--config", cfgPath, "--json"); err != nil || !strings.Contains(out, `"valid": true`) {
		t.Fatalf("check: out=%q err=%v", out, err)
	}

	out, err = run(t, "generate", "--config", cfgPath, "What", "is", "a", "noun?")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("expected a reply")
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	if _, err := run(t, "generate"); err == nil {
		t.Fatalf("expected args error")
	}
}
