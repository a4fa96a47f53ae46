package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"tutord/internal/app"
	"tutord/internal/download"
)

func newDownloadCmd(g *globalOpts) *cobra.Command {
	var (
		url   string
		dest  string
		token string
		quiet bool
	)
	cmd := &cobra.Command{
		Use:     "download",
		Short:   "Download the model asset with a progress bar (Ctrl+C cancels)",
		Example: "  tutord download\n  TUTORD_AUTH_TOKEN=hf_xxx tutord download --url https://huggingface.co/.../model.task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel, os.Stderr)
			rt, err := app.New(context.Background(), cfg, app.Options{Logger: &log})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bar := progressbar.NewOptions(
				1000,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("downloading "+cfg.Asset.FileName),
				progressbar.OptionShowBytes(false),
				progressbar.OptionClearOnFinish(),
			)
			onProgress := func(fraction float64) {
				if quiet {
					return
				}
				if err := bar.Set(int(fraction * 1000)); err != nil {
					log.Debug().Err(err).Msg("progress bar update")
				}
			}

			res, err := rt.Coordinator().Download(ctx, download.Request{
				SourceURL:       url,
				DestinationPath: dest,
				AuthToken:       token,
			}, onProgress)
			_ = bar.Finish()
			if err != nil {
				if download.IsCancelled(err) {
					return fmt.Errorf("download cancelled; partial file left at %s", rt.Locator().ResolvePath())
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s (%s)\n", res.Path, humanize.Bytes(uint64(res.BytesWritten)))
			if minSize := cfg.Asset.MinSizeBytes; res.BytesWritten < minSize {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: file is smaller than the %s minimum and will be rejected\n", humanize.Bytes(uint64(minSize)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Source URL (defaults to asset.source_url)")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination path (defaults to the asset location)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (defaults TUTORD_AUTH_TOKEN)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Disable the progress bar")
	return cmd
}
