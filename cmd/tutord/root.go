package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tutord/internal/config"
)

// globalOpts holds persistent flag values.
type globalOpts struct {
	configPath string
	logLevel   string
	dataDir    string
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}
	root := &cobra.Command{
		Use:           "tutord",
		Short:         "On-device tutor model runtime: download, initialize and serve the model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("TUTORD_CONFIG"), "Config file (.yaml|.yml|.json|.toml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (defaults TUTORD_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "Private storage directory (defaults TUTORD_DATA_DIR or ~/.tutord)")

	root.AddCommand(
		newServeCmd(g),
		newDownloadCmd(g),
		newCheckCmd(g),
		newGenerateCmd(g),
	)
	return root
}

// load resolves configuration: file, then environment, then flags, then defaults.
func (g *globalOpts) load() (config.Config, error) {
	cfg, err := config.LoadOrDefault(g.configPath, func(c *config.Config) {
		if g.logLevel != "" {
			c.LogLevel = g.logLevel
		}
		if g.dataDir != "" {
			c.DataDir = g.dataDir
		}
	})
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger writing JSON lines to w.
func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "off":
		lvl = zerolog.Disabled
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("svc", "tutord").Logger()
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
