package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tutord/internal/app"
	"tutord/internal/httpapi"
)

func newServeCmd(g *globalOpts) *cobra.Command {
	var (
		addr        string
		corsOrigins string
		autoInit    bool
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "  tutord serve --addr :8080\n  tutord serve --config tutord.yaml --init",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if corsOrigins != "" {
				cfg.Server.CORSEnabled = true
				cfg.Server.CORSOrigins = splitCSV(corsOrigins)
			}
			log := newLogger(cfg.LogLevel, os.Stderr)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := app.New(ctx, cfg, app.Options{Logger: &log})
			if err != nil {
				return err
			}

			httpapi.SetLogger(log)
			httpapi.SetDefaultLogLevel(cfg.LogLevel)
			httpapi.SetBaseContext(ctx)
			httpapi.SetMaxBodyBytes(cfg.Server.MaxBodyBytes)
			httpapi.SetGenerateTimeout(cfg.Server.GenerateTimeout.D())
			httpapi.SetCORSOptions(cfg.Server.CORSEnabled, cfg.Server.CORSOrigins, nil, nil)
			httpapi.SetAuthToken(cfg.Server.AuthToken)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpapi.NewMux(rt),
				ReadHeaderTimeout: 10 * time.Second,
			}

			if autoInit && rt.Locator().Valid() {
				go func() {
					if _, err := rt.Initialize(ctx, typesInitFromConfig(cfg)); err != nil {
						log.Error().Err(err).Msg("startup initialize failed")
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().
					Str("addr", cfg.Addr).
					Str("asset", rt.Locator().ResolvePath()).
					Str("backend", rt.Manager().BackendName()).
					Msg("tutord listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			// Graceful shutdown (Ctrl+C / SIGTERM)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown error")
			}
			if err := rt.Close(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("runtime close error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080 (defaults TUTORD_ADDR or :8080)")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated CORS origins; enables CORS when set")
	cmd.Flags().BoolVar(&autoInit, "init", false, "Initialize the backend at startup when the asset is present")
	return cmd
}
