package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tutord/internal/app"
	"tutord/internal/config"
	"tutord/pkg/types"
)

func typesInitFromConfig(cfg config.Config) types.InitializeRequest {
	return types.InitializeRequest{
		UseAcceleratedBackend: cfg.Backend.UseAcceleratedBackend,
		MaxSequenceTokens:     cfg.Backend.MaxSequenceTokens,
		BackendThreadHint:     cfg.Backend.ThreadHint,
	}
}

func newGenerateCmd(g *globalOpts) *cobra.Command {
	var (
		temperature float64
		topK        int
		topP        float64
		maxTokens   int
		accelerated bool
	)
	cmd := &cobra.Command{
		Use:     "generate <prompt>",
		Short:   "Initialize the configured backend and print one reply",
		Example: "  tutord generate \"Explain fractions with pizza\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("accelerated") {
				cfg.Backend.UseAcceleratedBackend = accelerated
			}
			log := newLogger(cfg.LogLevel, os.Stderr)
			ctx := cmd.Context()
			rt, err := app.New(ctx, cfg, app.Options{Logger: &log})
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(ctx) }()

			if _, err := rt.Initialize(ctx, typesInitFromConfig(cfg)); err != nil {
				return err
			}
			res, err := rt.Generate(ctx, types.GenerateRequest{
				Prompt:      strings.Join(args, " "),
				Temperature: temperature,
				TopK:        topK,
				TopP:        topP,
				MaxTokens:   maxTokens,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			fmt.Fprintf(cmd.ErrOrStderr(), "(%d ms, %.1f tokens/s)\n", res.ElapsedMillis, res.TokensPerSecond)
			return nil
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", 0.8, "Sampling temperature")
	cmd.Flags().IntVar(&topK, "top-k", 40, "Top-K sampling")
	cmd.Flags().Float64Var(&topP, "top-p", 0.95, "Top-P sampling")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum new tokens (0 lets the backend decide)")
	cmd.Flags().BoolVar(&accelerated, "accelerated", false, "Prefer the accelerated backend")
	return cmd
}
