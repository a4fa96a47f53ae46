package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tutord/internal/app"
)

func newCheckCmd(g *globalOpts) *cobra.Command {
	var (
		verify bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report the local asset path, size and validity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			rt, err := app.New(context.Background(), cfg, app.Options{})
			if err != nil {
				return err
			}
			st := rt.Asset()
			report := rt.Manager().SanityCheck()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(map[string]any{"asset": st, "sanity": report}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "path:     %s\n", st.Path)
				fmt.Fprintf(out, "exists:   %t\n", st.Exists)
				fmt.Fprintf(out, "size:     %s (%d bytes)\n", humanize.Bytes(uint64(st.SizeBytes)), st.SizeBytes)
				fmt.Fprintf(out, "minimum:  %s\n", humanize.Bytes(uint64(st.MinSizeBytes)))
				fmt.Fprintf(out, "valid:    %t\n", st.Valid)
				fmt.Fprintf(out, "backend:  %s (llama built: %t)\n", report.Backend, report.LlamaBuilt)
			}
			if verify && st.Exists && cfg.Asset.SHA256 != "" {
				if err := rt.Locator().VerifyDigest(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sha256:   ok")
			}
			if !st.Valid {
				return fmt.Errorf("asset not usable: %s", report.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Also verify asset.sha256 when configured")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
